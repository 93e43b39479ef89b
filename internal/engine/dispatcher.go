// Package engine applies ledger entries to per-client accounts across a
// fixed pool of workers. Entries are partitioned by client id, so one
// worker owns a client's whole history and no account state is ever
// shared between goroutines.
package engine

import (
	"context"
	"maps"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iho/payengine/internal/domain"
	"github.com/iho/payengine/internal/infrastructure/metrics"
)

const defaultQueueSize = 256

// Options configure a Dispatcher.
type Options struct {
	// Workers is the pool size. Zero or negative means host parallelism.
	Workers int
	// QueueSize is the per-worker inbound channel capacity.
	QueueSize int
	// Logger receives rejection diagnostics at debug level. Pass
	// zerolog.Nop() to silence.
	Logger zerolog.Logger
	// Metrics collects processing counters. Nil gets a private registry.
	Metrics *metrics.Metrics
}

// Dispatcher fans a single entry stream out to a fixed worker pool and
// merges the per-worker account maps once the stream is exhausted.
//
// Routing is static: worker index is clientID mod pool size, so a given
// client's entries are always applied in arrival order by the same worker.
type Dispatcher struct {
	workers []*worker
}

// NewDispatcher spawns the worker pool and starts routing entries from in.
// The caller signals end of input by closing in; until then every worker
// keeps waiting. Consume the final state with CollectResults.
func NewDispatcher(in <-chan domain.Entry, opts Options) *Dispatcher {
	n := opts.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n < 1 {
		n = 1
	}

	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	m := opts.Metrics
	if m == nil {
		m = metrics.New(prometheus.NewRegistry())
	}

	d := &Dispatcher{
		workers: make([]*worker, 0, n),
	}

	for i := 0; i < n; i++ {
		w := newWorker(i, queueSize, opts.Logger, m)
		d.workers = append(d.workers, w)
		go w.run()
	}

	go d.route(in)

	return d
}

// route forwards every entry to its partition and closes all worker
// channels once the source is exhausted, which lets the pool finalize.
func (d *Dispatcher) route(in <-chan domain.Entry) {
	n := len(d.workers)

	for entry := range in {
		d.workers[int(entry.ClientID)%n].in <- entry
	}

	for _, w := range d.workers {
		close(w.in)
	}
}

// CollectResults awaits every worker in pool order and returns the union
// of their account maps. Partitions are disjoint by construction, so the
// merge needs no conflict resolution.
//
// A worker fault is process-level: no partial results are returned.
func (d *Dispatcher) CollectResults(ctx context.Context) (map[domain.ClientID]*domain.Account, error) {
	merged := make(map[domain.ClientID]*domain.Account)

	for _, w := range d.workers {
		select {
		case result := <-w.out:
			if result.err != nil {
				return nil, result.err
			}
			maps.Copy(merged, result.accounts)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return merged, nil
}
