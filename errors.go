package payments

import (
	"errors"
	"fmt"
)

// ErrWorkerPanic is attached to log entries of workers that terminated on a panic.
var ErrWorkerPanic = errors.New("worker panic recovered")

// ErrQueueClosed is wrapped by SendError when a worker stopped consuming its queue.
var ErrQueueClosed = errors.New("worker queue closed")

// ParseError reports an input item that could not be turned into a transaction.
// Position is the 1-based index of the item in the input sequence.
type ParseError struct {
	Position int
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: %v", e.Position, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ReadError reports a failure of the underlying reader. Unlike a ParseError, the input
// itself may be valid.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string { return fmt.Sprintf("read error: %v", e.Err) }

func (e *ReadError) Unwrap() error { return e.Err }

// FieldError identifies the field of a textual record that failed to parse.
type FieldError struct {
	Field  string // type, client, tx or amount
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %s, got %q", e.Field, e.Reason, e.Value)
}

// MissingAmountError reports a deposit or withdrawal that carries no amount.
type MissingAmountError struct {
	Type   TransactionType
	Client uint16
	Tx     uint32
}

func (e *MissingAmountError) Error() string {
	return fmt.Sprintf("client %d received a %s (tx %d) with no amount", e.Client, e.Type, e.Tx)
}

// SendError reports a transaction that could not be queued to its worker.
type SendError struct {
	Worker int
	Client uint16
	Tx     uint32
}

func (e *SendError) Error() string {
	return fmt.Sprintf("cannot send tx %d of client %d to worker %d: %v", e.Tx, e.Client, e.Worker, ErrQueueClosed)
}

func (e *SendError) Unwrap() error { return ErrQueueClosed }
