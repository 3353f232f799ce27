package coordinator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/branchbound/parsearch/emit"
	"github.com/branchbound/parsearch/pool"
	"github.com/branchbound/parsearch/search"
	"github.com/branchbound/parsearch/store"
	"github.com/branchbound/parsearch/transport"
	"github.com/branchbound/parsearch/wire"
)

// HubConfig tunes the hub's seeding, balancing, and termination
// behavior.
type HubConfig struct {
	// InitialFrontierSize is the node-pool size the seed phase grows to
	// before distributing to workers.
	InitialFrontierSize int

	// Rho is the load metric's exponent: Σ|incumbent-quality|^Rho.
	Rho float64

	// DonorThreshold and ReceiverThreshold gate a rebalance: a donor's
	// load must exceed DonorThreshold*mean, a receiver's must fall
	// below ReceiverThreshold*mean.
	DonorThreshold    float64
	ReceiverThreshold float64

	// ZeroThreshold is the total-load floor below which, combined with
	// every worker reporting idle, the hub declares termination.
	ZeroThreshold float64

	// Period is the wall-clock interval between load-balance and
	// termination checks.
	Period time.Duration
}

// Hub is the coordinator's rank-0 role: it seeds the initial frontier,
// distributes it to workers, balances load between them, tracks the
// global incumbent, and detects termination. It mirrors the original
// library's AlpsKnowledgeBrokerMPI master loop, generalized to this
// package's transport abstraction.
type Hub struct {
	cfg    HubConfig
	t      transport.Transport
	client search.Client
	exec   *search.Executor
	broker *pool.Broker[*search.Node, search.Solution]

	metrics *Metrics
	emitter emit.Emitter
	store   store.Store
	runID   string
	step    int

	loads          map[int]float64
	idle           map[int]bool
	incumbentOwner int
	bestPayload    []float64
}

// NewHub builds a Hub around root, the locally computed search root,
// and broker, the shared node/solution pools and registry. t must be
// rank 0. st persists the solution archive and periodic incumbent
// checkpoints under runID; a nil st defaults to an in-process
// store.MemStore, so a Hub always has somewhere to persist to.
func NewHub(cfg HubConfig, t transport.Transport, client search.Client, root *search.Node, broker *pool.Broker[*search.Node, search.Solution], metrics *Metrics, emitter emit.Emitter, st store.Store, runID string) *Hub {
	if emitter == nil {
		emitter = emit.NewNullEmitter()
	}
	if metrics == nil {
		metrics = NewMetrics(prometheus.NewRegistry())
	}
	if st == nil {
		st = store.NewMemStore()
	}
	return &Hub{
		cfg:            cfg,
		t:              t,
		client:         client,
		exec:           search.NewExecutor(client, broker.Nodes, root),
		broker:         broker,
		metrics:        metrics,
		emitter:        emitter,
		store:          st,
		runID:          runID,
		loads:          make(map[int]float64),
		idle:           make(map[int]bool),
		incumbentOwner: t.Rank(),
	}
}

// Run drives the full hub lifecycle: startup broadcast, seed, distribute,
// coordinate, collect. It returns the best solution found anywhere in
// the search.
func (h *Hub) Run(ctx context.Context, modelPayload, paramsPayload []byte) (search.Solution, error) {
	modelMsg := search.Model{Payload: modelPayload}.Encode().Bytes()
	if err := h.t.Broadcast(ctx, TagModel, modelMsg); err != nil {
		return search.Solution{}, fmt.Errorf("coordinator: broadcast model: %w", err)
	}
	if err := h.t.Broadcast(ctx, TagParams, paramsPayload); err != nil {
		return search.Solution{}, fmt.Errorf("coordinator: broadcast params: %w", err)
	}

	if err := h.exec.SeedUntil(ctx, h.cfg.InitialFrontierSize); err != nil {
		return search.Solution{}, err
	}

	workers := h.t.Size() - 1
	if workers <= 0 || h.exec.Nodes().Empty() {
		if err := h.exec.Drain(ctx); err != nil {
			return search.Solution{}, err
		}
		return h.collect(ctx, workers), nil
	}

	if err := h.distribute(ctx, workers); err != nil {
		return search.Solution{}, err
	}
	if err := h.coordinate(ctx, workers); err != nil {
		return search.Solution{}, err
	}
	return h.collect(ctx, workers), nil
}

// distribute dequeues every seeded node, round-robins it to workers
// 1..workers tagged NODE, then signals FINISH_INIT to each.
func (h *Hub) distribute(ctx context.Context, workers int) error {
	next := 1
	for !h.exec.Nodes().Empty() {
		n, ok := h.exec.Nodes().Pop()
		if !ok {
			break
		}
		payload, err := encodeNode(h.client, n)
		if err != nil {
			return err
		}
		if err := h.t.Send(ctx, next, TagNode, payload); err != nil {
			return err
		}
		next++
		if next > workers {
			next = 1
		}
	}
	for w := 1; w <= workers; w++ {
		if err := h.t.Send(ctx, w, TagFinishInit, nil); err != nil {
			return err
		}
	}
	return nil
}

// coordinate runs the polling/balance/termination loop until every
// worker is idle with negligible total load.
func (h *Hub) coordinate(ctx context.Context, workers int) error {
	ticker := time.NewTicker(h.cfg.Period)
	defer ticker.Stop()

	for {
		if msg, ok := h.t.TryRecv(); ok {
			if err := h.handle(ctx, msg); err != nil {
				return err
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := h.rebalance(ctx, workers); err != nil {
				return err
			}
			h.persistCheckpoint(ctx)
			if h.terminated(workers) {
				return nil
			}
		case <-time.After(time.Millisecond):
		}
	}
}

func (h *Hub) handle(ctx context.Context, msg transport.Message) error {
	switch msg.Tag {
	case TagIncumbent:
		m, err := DecodeIncumbentMsg(wire.NewBufferFromBytes("", msg.Payload), h.broker.Registry)
		if err != nil {
			return err
		}
		if m.Solution.Objective >= h.broker.Incumbent() {
			return nil
		}
		h.broker.SetIncumbent(m.Solution.Objective)
		h.incumbentOwner = m.Solution.OwnerID
		h.bestPayload = m.Solution.Payload
		h.metrics.SetIncumbent(m.Solution.Objective)
		h.persistSolution(ctx, m.Solution)
		h.emitter.Emit(emit.Event{Msg: "incumbent_improved", Meta: map[string]any{"value": m.Solution.Objective, "owner": m.Solution.OwnerID}})
		update := IncumbentUpdateMsg{Value: m.Solution.Objective}.Encode().Bytes()
		return h.t.Broadcast(ctx, TagIncumbentUpdate, update)

	case TagLoadReport:
		m, err := DecodeLoadReportMsg(wire.NewBufferFromBytes("", msg.Payload))
		if err != nil {
			return err
		}
		h.loads[msg.From] = m.Value
		h.idle[msg.From] = m.Value == 0
		return nil

	case TagIdle:
		h.idle[msg.From] = true
		return nil

	default:
		return nil
	}
}

// rebalance asks every worker to refresh its load report, then, if the
// spread between the busiest and idlest worker crosses the configured
// thresholds, asks the busiest to donate to the idlest.
func (h *Hub) rebalance(ctx context.Context, workers int) error {
	if err := h.t.Broadcast(ctx, TagAskLoad, nil); err != nil {
		return err
	}
	if len(h.loads) == 0 {
		return nil
	}

	var sum float64
	for _, l := range h.loads {
		sum += l
	}
	mean := sum / float64(len(h.loads))
	if mean == 0 {
		return nil
	}

	donor, maxLoad := 0, math.Inf(-1)
	receiver, minLoad := 0, math.Inf(1)
	for w := 1; w <= workers; w++ {
		l, ok := h.loads[w]
		if !ok {
			continue
		}
		if l > maxLoad {
			maxLoad, donor = l, w
		}
		if l < minLoad {
			minLoad, receiver = l, w
		}
	}

	if donor == 0 || receiver == 0 || donor == receiver {
		return nil
	}
	if maxLoad <= h.cfg.DonorThreshold*mean || minLoad >= h.cfg.ReceiverThreshold*mean {
		return nil
	}

	payload := AskDonorMsg{Receiver: receiver}.Encode().Bytes()
	if err := h.t.Send(ctx, donor, TagAskDonor, payload); err != nil {
		return err
	}
	h.metrics.IncBalanceEvent(fmt.Sprintf("%d", donor), fmt.Sprintf("%d", receiver))
	return nil
}

// terminated reports whether every worker is idle and the total
// reported load has fallen below the zero threshold.
func (h *Hub) terminated(workers int) bool {
	var sum float64
	for _, l := range h.loads {
		sum += l
	}
	if sum >= h.cfg.ZeroThreshold {
		return false
	}
	for w := 1; w <= workers; w++ {
		if !h.idle[w] {
			return false
		}
	}
	return true
}

// collect broadcasts TERMINATE to every worker (if any), persists the
// final solution and a closing checkpoint, and returns the best
// solution known anywhere: the local archive or whichever worker last
// reported a better incumbent.
func (h *Hub) collect(ctx context.Context, workers int) search.Solution {
	if workers > 0 {
		_ = h.t.Broadcast(ctx, TagTerminate, nil)
		h.metrics.IncTerminate()
	}

	result := search.Solution{Payload: h.bestPayload, Objective: h.broker.Incumbent(), OwnerID: h.incumbentOwner}
	if best, ok := h.broker.Solutions.Best(); ok && best.Quality() <= h.broker.Incumbent() {
		result = best
	}

	h.persistSolution(ctx, result)
	h.persistCheckpoint(ctx)
	return result
}

// persistSolution appends sol to the run's solution archive, logging
// rather than failing the search if the store is unavailable.
func (h *Hub) persistSolution(ctx context.Context, sol search.Solution) {
	rec := store.SolutionRecord{RunID: h.runID, Payload: sol.Payload, Objective: sol.Objective, OwnerID: sol.OwnerID}
	if err := h.store.SaveSolution(ctx, rec); err != nil {
		h.emitter.Emit(emit.Event{Msg: "solution_save_failed", Meta: map[string]any{"error": err.Error()}})
	}
}

// persistCheckpoint saves a point-in-time snapshot of the run's
// incumbent, enough to report progress or resume accounting after a
// crash.
func (h *Hub) persistCheckpoint(ctx context.Context) {
	h.step++
	cp := store.Checkpoint{RunID: h.runID, Step: h.step, Incumbent: h.broker.Incumbent(), SavedAt: time.Now()}
	if err := h.store.SaveCheckpoint(ctx, cp); err != nil {
		h.emitter.Emit(emit.Event{Msg: "checkpoint_save_failed", Meta: map[string]any{"error": err.Error()}})
	}
}
