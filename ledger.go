package payments

import (
	"go.uber.org/zap"
)

// Outcome tells what applying a transaction did to the ledger.
type Outcome int

const (
	// Applied means the transaction changed the client state.
	Applied Outcome = iota
	// Ignored means the transaction was rejected by a business rule (locked account,
	// insufficient funds, unknown disputed transaction). State is unchanged.
	Ignored
	// Invalid means the transaction broke the input contract (missing amount). State is unchanged.
	Invalid
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Ignored:
		return "ignored"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Ledger holds the states of a set of clients and the amounts that can be disputed.
//
// A Ledger is not safe for concurrent use. The engine gives each worker its own
// Ledger, and a client always lands on the same worker.
type Ledger struct {
	clients  map[uint16]*ClientState
	disputes *registry
	logger   *zap.Logger
}

// NewLedger creates an empty ledger. A nil logger discards diagnostics.
func NewLedger(logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		clients:  make(map[uint16]*ClientState),
		disputes: newRegistry(),
		logger:   logger,
	}
}

// Client returns the current state of a client, and false if the ledger never saw it.
func (l *Ledger) Client(client uint16) (ClientState, bool) {
	s, ok := l.clients[client]
	if !ok {
		return ClientState{}, false
	}
	return *s, true
}

// States returns a copy of every client state, in no particular order.
func (l *Ledger) States() []ClientState {
	states := make([]ClientState, 0, len(l.clients))
	for _, s := range l.clients {
		states = append(states, *s)
	}
	return states
}

// Len returns the number of clients in the ledger.
func (l *Ledger) Len() int { return len(l.clients) }

// state returns the client state, creating it on first use.
func (l *Ledger) state(client uint16) *ClientState {
	s, ok := l.clients[client]
	if !ok {
		s = &ClientState{Client: client}
		l.clients[client] = s
	}
	return s
}

// Apply applies a single transaction to the client it references.
//
// Business-rule rejections are not errors: they are logged as warnings and reported as
// Ignored. The only error is a deposit or withdrawal without amount (*MissingAmountError).
func (l *Ledger) Apply(tx Transaction) (Outcome, error) {
	s := l.state(tx.Client)
	log := l.logger.With(zap.Uint16("client", tx.Client), zap.Uint32("tx", tx.Tx))

	if s.Locked {
		log.Warn("transaction on locked account ignored", zap.Stringer("type", tx.Type))
		return Ignored, nil
	}

	switch tx.Type {
	case Deposit:
		if err := tx.Validate(); err != nil {
			return Invalid, err
		}
		amount := *tx.Amount
		s.Available = s.Available.Add(amount)
		s.Total = s.Total.Add(amount)
		if !l.disputes.record(tx.Client, tx.Tx, amount) {
			log.Warn("duplicated deposit tx id, keeping the first amount for disputes")
		}

	case Withdrawal:
		if err := tx.Validate(); err != nil {
			return Invalid, err
		}
		amount := *tx.Amount
		if s.Available.LessThan(amount) {
			log.Warn("insufficient funds for withdrawal",
				zap.Stringer("amount", amount),
				zap.Stringer("available", s.Available))
			return Ignored, nil
		}
		s.Available = s.Available.Sub(amount)
		s.Total = s.Total.Sub(amount)

	case Dispute:
		amount, ok := l.disputes.lookup(tx.Client, tx.Tx)
		if !ok {
			log.Warn("dispute for unknown transaction")
			return Ignored, nil
		}
		s.Held = s.Held.Add(amount)
		s.Available = s.Available.Sub(amount)

	case Resolve:
		amount, ok := l.disputes.lookup(tx.Client, tx.Tx)
		if !ok {
			log.Warn("resolve for unknown transaction")
			return Ignored, nil
		}
		s.Held = s.Held.Sub(amount)
		s.Available = s.Available.Add(amount)
		l.disputes.settle(tx.Client, tx.Tx)

	case Chargeback:
		amount, ok := l.disputes.lookup(tx.Client, tx.Tx)
		if !ok {
			log.Warn("chargeback for unknown transaction")
			return Ignored, nil
		}
		// available was already reduced when the dispute moved the funds to held.
		s.Held = s.Held.Sub(amount)
		s.Total = s.Total.Sub(amount)
		s.Locked = true
		l.disputes.settle(tx.Client, tx.Tx)

	default:
		log.Warn("unsupported transaction type ignored", zap.Stringer("type", tx.Type))
		return Ignored, nil
	}

	return Applied, nil
}
