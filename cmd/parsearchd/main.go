// Command parsearchd is the process entry point for one rank of a
// parallel branch-and-bound search: parse a parameter file plus
// key/value overrides, stand up a transport/wsnet connection, and drive
// the coordinator's hub or worker role to completion.
//
// It links examples/knapsack as its reference client so the binary runs
// standalone with no other problem definition supplied.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/branchbound/parsearch/coordinator"
	"github.com/branchbound/parsearch/emit"
	"github.com/branchbound/parsearch/examples/knapsack"
	"github.com/branchbound/parsearch/param"
	"github.com/branchbound/parsearch/pool"
	"github.com/branchbound/parsearch/search"
	"github.com/branchbound/parsearch/store"
	"github.com/branchbound/parsearch/transport"
	"github.com/branchbound/parsearch/transport/wsnet"
	"github.com/branchbound/parsearch/wire"
)

func main() {
	if err := run(); err != nil {
		log.Printf("parsearchd: %v", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: %s <param-file> [keyword value]...", os.Args[0])
	}

	params, err := newParamSet()
	if err != nil {
		return err
	}
	if err := params.ReadFile(os.Args[1]); err != nil {
		return err
	}
	if err := params.ReadArgs(os.Args[2:]); err != nil {
		return err
	}

	rank, err := params.Int("Rank")
	if err != nil {
		return err
	}
	size, err := params.Int("Size")
	if err != nil {
		return err
	}
	addr, err := params.String("Addr")
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var t transport.Transport
	if rank == 0 {
		t, err = wsnet.ListenHub(ctx, addr, int(size))
	} else {
		t, err = wsnet.DialWorker(ctx, addr, int(rank), int(size))
	}
	if err != nil {
		return fmt.Errorf("connect transport: %w", err)
	}

	registry := prometheus.NewRegistry()
	if metricsAddr, _ := params.String("MetricsAddr"); metricsAddr != "" {
		serveMetrics(metricsAddr, registry)
	}

	inst, err := knapsackInstance(params)
	if err != nil {
		return err
	}

	driverCfg, err := buildDriverConfig(params, t, inst, coordinator.NewMetrics(registry))
	if err != nil {
		return err
	}

	solution, err := coordinator.NewDriver(driverCfg).Run(ctx)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	log.Printf("parsearchd: rank %d done, best objective %v, payload %v", rank, solution.Objective, solution.Payload)
	return nil
}

// newParamSet declares every keyword parsearchd and its linked client
// understand, with defaults a single-rank smoke run can use unmodified.
func newParamSet() (*param.Set, error) {
	return param.New(
		param.WithDefaultInt("Rank", 0),
		param.WithDefaultInt("Size", 1),
		param.WithDefaultString("Addr", "localhost:7077"),
		param.WithDefaultString("MetricsAddr", ""),

		param.WithDefaultInt("UnitSize", 32),
		param.WithDefaultInt("InitialFrontier", 16),
		param.WithDefaultReal("Rho", 2),
		param.WithDefaultReal("DonorThreshold", 1.5),
		param.WithDefaultReal("ReceiverThreshold", 0.5),
		param.WithDefaultReal("ZeroThreshold", 1e-6),
		param.WithDefaultInt("PeriodMs", 50),
		param.WithDefaultInt("SolutionCapacity", 1),

		param.WithDefaultString("RunID", "parsearchd"),
		param.WithDefaultString("StoreDriver", ""),
		param.WithDefaultString("StorePath", ""),

		param.WithDefaultStringArray("Weights", []string{"2", "3", "4", "5"}),
		param.WithDefaultStringArray("Values", []string{"3", "4", "5", "6"}),
		param.WithDefaultInt("Capacity", 5),
	)
}

func knapsackInstance(params *param.Set) (knapsack.Instance, error) {
	weights, err := params.StringArray("Weights")
	if err != nil {
		return knapsack.Instance{}, err
	}
	values, err := params.StringArray("Values")
	if err != nil {
		return knapsack.Instance{}, err
	}
	capacity, err := params.Int("Capacity")
	if err != nil {
		return knapsack.Instance{}, err
	}
	if len(weights) != len(values) {
		return knapsack.Instance{}, fmt.Errorf("parsearchd: Weights and Values length mismatch (%d vs %d)", len(weights), len(values))
	}

	inst := knapsack.Instance{Weights: make([]int, len(weights)), Values: make([]int, len(values)), Capacity: int(capacity)}
	for i := range weights {
		if _, err := fmt.Sscanf(weights[i], "%d", &inst.Weights[i]); err != nil {
			return knapsack.Instance{}, fmt.Errorf("parsearchd: parsing Weights[%d]: %w", i, err)
		}
		if _, err := fmt.Sscanf(values[i], "%d", &inst.Values[i]); err != nil {
			return knapsack.Instance{}, fmt.Errorf("parsearchd: parsing Values[%d]: %w", i, err)
		}
	}
	return inst, nil
}

func buildDriverConfig(params *param.Set, t transport.Transport, inst knapsack.Instance, metrics *coordinator.Metrics) (coordinator.DriverConfig, error) {
	unitSize, err := params.Int("UnitSize")
	if err != nil {
		return coordinator.DriverConfig{}, err
	}
	frontier, err := params.Int("InitialFrontier")
	if err != nil {
		return coordinator.DriverConfig{}, err
	}
	rho, err := params.Real("Rho")
	if err != nil {
		return coordinator.DriverConfig{}, err
	}
	donorThreshold, err := params.Real("DonorThreshold")
	if err != nil {
		return coordinator.DriverConfig{}, err
	}
	receiverThreshold, err := params.Real("ReceiverThreshold")
	if err != nil {
		return coordinator.DriverConfig{}, err
	}
	zeroThreshold, err := params.Real("ZeroThreshold")
	if err != nil {
		return coordinator.DriverConfig{}, err
	}
	periodMs, err := params.Int("PeriodMs")
	if err != nil {
		return coordinator.DriverConfig{}, err
	}
	solutionCapacity, err := params.Int("SolutionCapacity")
	if err != nil {
		return coordinator.DriverConfig{}, err
	}
	runID, err := params.String("RunID")
	if err != nil {
		return coordinator.DriverConfig{}, err
	}
	st, err := openStore(params)
	if err != nil {
		return coordinator.DriverConfig{}, err
	}

	return coordinator.DriverConfig{
		Transport:        t,
		Registry:         wire.NewRegistry(),
		SolutionCapacity: int(solutionCapacity),
		Metrics:          metrics,
		Store:            st,
		RunID:            runID,
		Hub: coordinator.HubConfig{
			InitialFrontierSize: int(frontier),
			Rho:                 rho,
			DonorThreshold:      donorThreshold,
			ReceiverThreshold:   receiverThreshold,
			ZeroThreshold:       zeroThreshold,
			Period:              time.Duration(periodMs) * time.Millisecond,
		},
		Worker: coordinator.WorkerConfig{
			UnitSize: int(unitSize),
			Rho:      rho,
			Params:   params,
		},
		Emitter: emit.NewLogEmitter(os.Stderr, false),
		NewClient: func(broker *pool.Broker[*search.Node, search.Solution]) search.Client {
			return knapsack.NewClient(inst, broker)
		},
		NewRoot: func(client search.Client) *search.Node {
			return client.(*knapsack.Client).Root()
		},
	}, nil
}

// openStore builds the Store this run persists its solution archive and
// checkpoints to. StoreDriver selects the backend ("sqlite" or "mysql"),
// with StorePath as its file path or DSN; an empty StoreDriver falls
// back to SQLite if StorePath is set, otherwise an in-process MemStore
// for a quick standalone run.
func openStore(params *param.Set) (store.Store, error) {
	driver, err := params.String("StoreDriver")
	if err != nil {
		return nil, err
	}
	path, err := params.String("StorePath")
	if err != nil {
		return nil, err
	}
	switch driver {
	case "mysql":
		return store.NewMySQLStore(path)
	case "sqlite":
		return store.NewSQLiteStore(path)
	case "":
		if path == "" {
			return store.NewMemStore(), nil
		}
		return store.NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("parsearchd: unknown StoreDriver %q", driver)
	}
}

// serveMetrics starts a background Prometheus scrape endpoint over registry,
// the same registry the coordinator's Metrics writes to.
func serveMetrics(addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil { //nolint:gosec // operator-configured diagnostic endpoint, not internet-facing
			log.Printf("parsearchd: metrics server: %v", err)
		}
	}()
}
