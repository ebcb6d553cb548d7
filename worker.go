package payments

import (
	"go.uber.org/zap"
)

// worker owns the ledger of one client partition and consumes its private queue.
type worker struct {
	index  int
	queue  chan Transaction
	done   chan struct{} // closed when the worker stops consuming queue.
	ledger *Ledger
	policy MissingAmountPolicy
	logger *zap.Logger

	abort   func(error)         // signals a fatal error to the dispatcher.
	skipped map[uint16]struct{} // clients excluded by the SkipClient policy.
	stats   Stats
	err     error // fatal error, the worker only drains its queue once set.

	hook func(worker int, tx Transaction) // called before each apply, tests only.
}

func newWorker(index int, cfg Config, logger *zap.Logger, abort func(error)) *worker {
	logger = logger.With(zap.Int("worker", index))
	return &worker{
		index:   index,
		queue:   make(chan Transaction, cfg.QueueSize),
		done:    make(chan struct{}),
		ledger:  NewLedger(logger),
		policy:  cfg.MissingAmount,
		logger:  logger,
		abort:   abort,
		skipped: make(map[uint16]struct{}),
	}
}

// run consumes the queue until it is closed, then sends the worker batch to results.
// A panic is recovered and logged; the worker then contributes no batch.
func (w *worker) run(results chan<- Batch) {
	defer close(w.done)
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("worker task failed",
				zap.Error(ErrWorkerPanic),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()

	for tx := range w.queue {
		w.process(tx)
	}

	results <- Batch{
		Worker: w.index,
		States: w.ledger.States(),
		Stats:  w.stats,
		Err:    w.err,
	}
}

func (w *worker) process(tx Transaction) {
	if w.err != nil {
		return
	}
	if _, ok := w.skipped[tx.Client]; ok {
		w.logger.Warn("transaction of skipped client ignored",
			zap.Uint16("client", tx.Client), zap.Uint32("tx", tx.Tx))
		w.stats.count(Ignored)
		return
	}
	if w.hook != nil {
		w.hook(w.index, tx)
	}

	outcome, err := w.ledger.Apply(tx)
	w.stats.count(outcome)
	if err == nil {
		return
	}

	w.logger.Error("failed to apply transaction",
		zap.Error(err),
		zap.Uint16("client", tx.Client),
		zap.Uint32("tx", tx.Tx),
		zap.Stringer("policy", w.policy))

	switch w.policy {
	case SkipClient:
		w.skipped[tx.Client] = struct{}{}
	case AbortRun:
		w.err = err
		w.abort(err)
	}
}
