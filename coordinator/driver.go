package coordinator

import (
	"context"

	"github.com/branchbound/parsearch/emit"
	"github.com/branchbound/parsearch/pool"
	"github.com/branchbound/parsearch/search"
	"github.com/branchbound/parsearch/store"
	"github.com/branchbound/parsearch/transport"
	"github.com/branchbound/parsearch/wire"
)

// DriverConfig wires every piece a process needs to run either the hub
// or a worker role.
//
// The specification places this wiring point in the search package as
// search.Driver, but doing so in Go would create an import cycle — the
// wiring point necessarily calls into Hub and Worker, which import
// search, and a package cannot import something that imports it. It
// lives here instead, as coordinator.Driver, with the same
// responsibility: decide hub-vs-worker from the transport's rank and
// drive the right role to completion. See DESIGN.md for the recorded
// decision.
type DriverConfig struct {
	Transport transport.Transport
	Registry  *wire.Registry
	Hub       HubConfig
	Worker    WorkerConfig

	// SolutionCapacity bounds the shared solution archive.
	SolutionCapacity int

	Metrics *Metrics
	Emitter emit.Emitter

	// Store persists the solution archive and periodic incumbent
	// checkpoints. A nil Store defaults to an in-process store.MemStore,
	// so a process always has somewhere to persist to even if the
	// caller hasn't configured durable storage.
	Store store.Store

	// RunID keys every record Store saves for this search.
	RunID string

	// NewClient builds the concrete search.Client for this process,
	// given the broker it will read and update shared state through.
	NewClient func(broker *pool.Broker[*search.Node, search.Solution]) search.Client

	// NewRoot builds the subtree root. Only called, and only needed, on
	// rank 0.
	NewRoot func(client search.Client) *search.Node

	ModelPayload  []byte
	ParamsPayload []byte
}

// Driver is the top-level entry point a process's main function calls
// once its transport is connected.
type Driver struct {
	cfg DriverConfig
}

// NewDriver builds a Driver from cfg.
func NewDriver(cfg DriverConfig) *Driver {
	return &Driver{cfg: cfg}
}

// Run picks hub-vs-worker by transport.Rank() == 0 and drives that role
// to completion, returning the best solution found anywhere in the
// search.
func (d *Driver) Run(ctx context.Context) (search.Solution, error) {
	registry := d.cfg.Registry
	if registry == nil {
		registry = wire.NewRegistry()
	}
	broker := pool.NewBroker[*search.Node, search.Solution](
		pool.NewNodePool[*search.Node](),
		pool.NewSolutionPool[search.Solution](d.cfg.SolutionCapacity),
		registry,
	)
	client := d.cfg.NewClient(broker)
	search.RegisterKinds(broker.Registry, client)

	if d.cfg.Transport.Rank() == 0 {
		root := d.cfg.NewRoot(client)
		hub := NewHub(d.cfg.Hub, d.cfg.Transport, client, root, broker, d.cfg.Metrics, d.cfg.Emitter, d.cfg.Store, d.cfg.RunID)
		return hub.Run(ctx, d.cfg.ModelPayload, d.cfg.ParamsPayload)
	}

	worker := NewWorker(d.cfg.Worker, d.cfg.Transport, client, broker, d.cfg.Metrics, d.cfg.Emitter, d.cfg.Store, d.cfg.RunID)
	return worker.Run(ctx)
}
