package payments

import (
	"errors"
	"iter"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine processes a sequence of transactions on a fixed pool of workers.
//
// Transactions are routed to worker client%Workers, so all transactions of a client are
// applied by the same worker, in input order. Workers share nothing.
type Engine struct {
	cfg    Config
	logger *zap.Logger

	hook func(worker int, tx Transaction) // see worker.hook
}

// NewEngine creates an engine. Out of range settings fall back to their defaults and a
// nil logger discards diagnostics.
func NewEngine(cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg.normalize(), logger: logger}
}

// Config returns the effective engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Run processes src until it is exhausted and returns the final state of every client.
//
// An error item in src aborts the run with no partial result. It is returned as is when it
// is a *ReadError, wrapped in a *ParseError otherwise. A worker that panics is logged and
// its clients are missing from the result.
func (e *Engine) Run(src iter.Seq2[Transaction, error]) ([]ClientState, error) {
	batches, err := e.Stream(src)
	if err != nil {
		return nil, err
	}
	states, _, err := Collect(batches)
	return states, err
}

// Stream ingests src and returns a channel that receives the batch of each worker as soon
// as it finishes. The channel is closed once every worker has reported.
//
// Ingestion errors are returned directly, after every worker has terminated.
func (e *Engine) Stream(src iter.Seq2[Transaction, error]) (<-chan Batch, error) {
	d := e.start()
	if err := d.ingest(src); err != nil {
		d.closeQueues()
		for range d.results {
			// wait for the workers to drain their queues.
		}
		d.logger.Error("run aborted", zap.Error(err))
		return nil, err
	}
	d.closeQueues()
	return d.results, nil
}

// dispatch is the state of a single run.
type dispatch struct {
	workers []*worker
	results chan Batch
	logger  *zap.Logger

	aborted   chan struct{}
	abortOnce sync.Once
	abortErr  error
}

// start spawns the workers and the join coordinator that closes results.
func (e *Engine) start() *dispatch {
	logger := e.logger.With(zap.String("run", uuid.NewString()))
	d := &dispatch{
		workers: make([]*worker, e.cfg.Workers),
		results: make(chan Batch, e.cfg.Workers),
		logger:  logger,
		aborted: make(chan struct{}),
	}

	var wg sync.WaitGroup
	for i := range d.workers {
		w := newWorker(i, e.cfg, logger, d.abort)
		w.hook = e.hook
		d.workers[i] = w
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.run(d.results)
		}()
	}
	go func() {
		wg.Wait()
		close(d.results)
	}()

	logger.Debug("run started", zap.Int("workers", e.cfg.Workers), zap.Int("queue", e.cfg.QueueSize))
	return d
}

// abort records the first fatal error raised by a worker and stops ingestion.
func (d *dispatch) abort(err error) {
	d.abortOnce.Do(func() {
		d.abortErr = err
		close(d.aborted)
	})
}

// ingest reads src once and queues each transaction on the worker owning its client.
func (d *dispatch) ingest(src iter.Seq2[Transaction, error]) error {
	position := 0
	for tx, err := range src {
		position++
		if err != nil {
			var readErr *ReadError
			if errors.As(err, &readErr) {
				return err
			}
			return &ParseError{Position: position, Err: err}
		}
		w := d.workers[int(tx.Client)%len(d.workers)]
		if err := d.send(w, tx); err != nil {
			return err
		}
	}
	d.logger.Debug("input exhausted", zap.Int("transactions", position))
	return nil
}

// send blocks until w accepts tx, w is dead or the run is aborted.
func (d *dispatch) send(w *worker, tx Transaction) error {
	// Checked first so that a dead worker with room left in its queue is reported.
	select {
	case <-w.done:
		return &SendError{Worker: w.index, Client: tx.Client, Tx: tx.Tx}
	case <-d.aborted:
		return d.abortErr
	default:
	}

	select {
	case w.queue <- tx:
		return nil
	case <-w.done:
		return &SendError{Worker: w.index, Client: tx.Client, Tx: tx.Tx}
	case <-d.aborted:
		return d.abortErr
	}
}

func (d *dispatch) closeQueues() {
	for _, w := range d.workers {
		close(w.queue)
	}
}
