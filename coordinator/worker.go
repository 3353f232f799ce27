package coordinator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/branchbound/parsearch/emit"
	"github.com/branchbound/parsearch/param"
	"github.com/branchbound/parsearch/pool"
	"github.com/branchbound/parsearch/search"
	"github.com/branchbound/parsearch/store"
	"github.com/branchbound/parsearch/transport"
	"github.com/branchbound/parsearch/wire"
)

// WorkerConfig tunes one worker process's bounded-unit size and load
// metric exponent.
type WorkerConfig struct {
	// UnitSize is the maximum number of nodes processed per main-loop
	// iteration before polling messages again.
	UnitSize int

	// Rho is the load metric's exponent, matching the hub's.
	Rho float64

	// OnModel, if set, is called once with the decoded MODEL payload
	// during startup, letting the caller build or configure the
	// concrete client before any nodes arrive.
	OnModel func(payload []byte) error

	// Params, if set, receives the decoded PARAMS payload via Unpack.
	Params *param.Set
}

// Worker is the coordinator's rank>0 role: it receives the model and
// parameters, accumulates an initial frontier from the hub, then
// interleaves bounded subtree execution with message polling until
// TERMINATE, mirroring AlpsSubTreeWorker's cooperative loop.
//
// A worker may hold more than one independent root at once — every
// node it receives from the hub or a donating peer becomes the root of
// its own local subtree, since that node's true ancestry lives in
// another process's arena. All of those subtrees share one node pool
// and one solution archive via broker.
type Worker struct {
	cfg    WorkerConfig
	t      transport.Transport
	client search.Client
	exec   *search.Executor
	broker *pool.Broker[*search.Node, search.Solution]

	metrics *Metrics
	emitter emit.Emitter
	store   store.Store
	runID   string

	paused        bool
	lastPublished float64
}

// NewWorker builds a Worker with an empty executor; it grows subtrees
// only once NODE messages arrive. st persists every locally improved
// solution under runID; a nil st defaults to an in-process
// store.MemStore.
func NewWorker(cfg WorkerConfig, t transport.Transport, client search.Client, broker *pool.Broker[*search.Node, search.Solution], metrics *Metrics, emitter emit.Emitter, st store.Store, runID string) *Worker {
	if emitter == nil {
		emitter = emit.NewNullEmitter()
	}
	if metrics == nil {
		metrics = NewMetrics(prometheus.NewRegistry())
	}
	if st == nil {
		st = store.NewMemStore()
	}
	return &Worker{
		cfg:           cfg,
		t:             t,
		client:        client,
		exec:          search.NewEmptyExecutor(client, broker.Nodes),
		broker:        broker,
		metrics:       metrics,
		emitter:       emitter,
		store:         st,
		runID:         runID,
		lastPublished: math.Inf(1),
	}
}

// Run receives startup state, accumulates the initial frontier, then
// runs the main loop until TERMINATE or ctx is cancelled. It returns
// the best solution this worker's archive holds.
func (w *Worker) Run(ctx context.Context) (search.Solution, error) {
	if err := w.receiveInit(ctx); err != nil {
		return search.Solution{}, err
	}
	if err := w.mainLoop(ctx); err != nil {
		return search.Solution{}, err
	}
	best, ok := w.broker.Solutions.Best()
	if !ok {
		return search.Solution{}, nil
	}
	return best, nil
}

// receiveInit handles the MODEL/PARAMS handshake and then loops
// installing NODE messages into the local executor until FINISH_INIT.
func (w *Worker) receiveInit(ctx context.Context) error {
	model, err := w.t.Recv(ctx)
	if err != nil {
		return err
	}
	if model.Tag != TagModel {
		return fmt.Errorf("coordinator: worker expected MODEL, got tag %d", model.Tag)
	}
	decodedModel, err := search.DecodeByTag[search.Model](w.broker.Registry, wire.NewBufferFromBytes(search.ModelWireTag, model.Payload))
	if err != nil {
		return err
	}
	if w.cfg.OnModel != nil {
		if err := w.cfg.OnModel(decodedModel.Payload); err != nil {
			return err
		}
	}

	params, err := w.t.Recv(ctx)
	if err != nil {
		return err
	}
	if params.Tag != TagParams {
		return fmt.Errorf("coordinator: worker expected PARAMS, got tag %d", params.Tag)
	}
	if w.cfg.Params != nil && len(params.Payload) > 0 {
		if err := w.cfg.Params.Unpack(wire.NewBufferFromBytes("", params.Payload)); err != nil {
			return err
		}
	}

	for {
		msg, err := w.t.Recv(ctx)
		if err != nil {
			return err
		}
		switch msg.Tag {
		case TagNode:
			n, err := decodeNode(w.broker.Registry, msg.Payload)
			if err != nil {
				return err
			}
			w.exec.AddRoot(n)
		case TagFinishInit:
			return nil
		default:
			// any other tag this early is unexpected; ignore rather than fail,
			// since a slow hub's first rebalance tick can race FINISH_INIT.
		}
	}
}

// mainLoop interleaves bounded subtree execution with non-blocking
// message polling until TERMINATE arrives or ctx is cancelled.
func (w *Worker) mainLoop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		didWork := false
		if !w.paused && !w.exec.Nodes().Empty() {
			if err := w.exec.BoundedUnit(ctx, w.cfg.UnitSize); err != nil {
				return err
			}
			didWork = true
		}

		terminate, handled, err := w.drainMessages(ctx)
		if err != nil {
			return err
		}
		if terminate {
			return nil
		}

		if err := w.publishIfImproved(ctx); err != nil {
			return err
		}

		if w.exec.Nodes().Empty() {
			if err := w.t.Send(ctx, 0, TagIdle, nil); err != nil {
				return err
			}
		}

		if !didWork && handled == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Millisecond):
			}
		}
	}
}

// drainMessages handles every currently queued message without
// blocking, reporting the count handled and whether TERMINATE was
// among them.
func (w *Worker) drainMessages(ctx context.Context) (terminate bool, handled int, err error) {
	for {
		msg, ok := w.t.TryRecv()
		if !ok {
			return false, handled, nil
		}
		handled++
		switch msg.Tag {
		case TagAskDonor:
			if aerr := w.handleAskDonor(ctx, msg.Payload); aerr != nil {
				return false, handled, aerr
			}
		case TagAskLoad:
			if aerr := w.reportLoad(ctx); aerr != nil {
				return false, handled, aerr
			}
		case TagAskPause:
			w.paused = true
		case TagAskCont:
			w.paused = false
		case TagIncumbentUpdate:
			m, derr := DecodeIncumbentUpdateMsg(wire.NewBufferFromBytes("", msg.Payload))
			if derr != nil {
				return false, handled, derr
			}
			w.broker.SetIncumbent(m.Value)
		case TagNode:
			n, derr := decodeNode(w.broker.Registry, msg.Payload)
			if derr != nil {
				return false, handled, derr
			}
			w.exec.AddRoot(n)
		case TagTerminate:
			return true, handled, nil
		}
	}
}

func (w *Worker) handleAskDonor(ctx context.Context, payload []byte) error {
	m, err := DecodeAskDonorMsg(wire.NewBufferFromBytes("", payload))
	if err != nil {
		return err
	}
	n, ok := w.exec.Nodes().Pop()
	if !ok {
		return nil
	}
	encoded, err := encodeNode(w.client, n)
	if err != nil {
		return err
	}
	if err := w.t.Send(ctx, m.Receiver, TagNode, encoded); err != nil {
		return err
	}
	w.metrics.IncBalanceEvent(fmt.Sprintf("%d", w.t.Rank()), fmt.Sprintf("%d", m.Receiver))
	return nil
}

func (w *Worker) reportLoad(ctx context.Context) error {
	load := Load(w.exec.Nodes(), w.broker.Incumbent(), w.cfg.Rho)
	w.metrics.SetLoad(load)
	w.metrics.SetQueueDepth(w.exec.Nodes().Size())
	payload := LoadReportMsg{Value: load}.Encode().Bytes()
	return w.t.Send(ctx, 0, TagLoadReport, payload)
}

func (w *Worker) publishIfImproved(ctx context.Context) error {
	best, ok := w.broker.Solutions.Best()
	if !ok || best.Quality() >= w.lastPublished {
		return nil
	}
	w.lastPublished = best.Quality()
	w.metrics.SetIncumbent(best.Quality())

	sol := best
	sol.OwnerID = w.t.Rank()

	rec := store.SolutionRecord{RunID: w.runID, Payload: sol.Payload, Objective: sol.Objective, OwnerID: sol.OwnerID}
	if err := w.store.SaveSolution(ctx, rec); err != nil {
		w.emitter.Emit(emit.Event{Msg: "solution_save_failed", Meta: map[string]any{"error": err.Error()}})
	}

	payload := IncumbentMsg{Solution: sol}.Encode().Bytes()
	return w.t.Send(ctx, 0, TagIncumbent, payload)
}
