package payments

import (
	"fmt"
	"strings"
)

// TransactionType is a typed string identifying the kind of a transaction.
type TransactionType string

// Transaction types, as spelled in the input.
const (
	Deposit    TransactionType = "deposit"
	Withdrawal TransactionType = "withdrawal"
	Dispute    TransactionType = "dispute"
	Resolve    TransactionType = "resolve"
	Chargeback TransactionType = "chargeback"
)

// TransactionTypes lists every transaction type in a stable order.
var TransactionTypes = []TransactionType{Deposit, Withdrawal, Dispute, Resolve, Chargeback}

// ParseTransactionType parses a keyword into a TransactionType. Surrounding spaces are ignored.
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(strings.TrimSpace(s)); t {
	case Deposit, Withdrawal, Dispute, Resolve, Chargeback:
		return t, nil
	default:
		return "", fmt.Errorf("unknown transaction type: %q", s)
	}
}

// RequiresAmount reports whether transactions of this type must carry an amount.
func (t TransactionType) RequiresAmount() bool {
	return t == Deposit || t == Withdrawal
}

func (t TransactionType) String() string { return string(t) }
