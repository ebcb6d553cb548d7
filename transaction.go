package payments

import "fmt"

// Transaction is an immutable input record.
//
// Amount is set for deposits and withdrawals and nil for disputes, resolves and chargebacks.
// Nothing prevents a malformed record from reaching the engine, which is why Validate exists.
type Transaction struct {
	Type   TransactionType
	Client uint16
	Tx     uint32
	Amount *Amount
}

// NewDeposit creates a deposit of amount into the client account.
func NewDeposit(client uint16, tx uint32, amount Amount) Transaction {
	return Transaction{Type: Deposit, Client: client, Tx: tx, Amount: &amount}
}

// NewWithdrawal creates a withdrawal of amount from the client account.
func NewWithdrawal(client uint16, tx uint32, amount Amount) Transaction {
	return Transaction{Type: Withdrawal, Client: client, Tx: tx, Amount: &amount}
}

// NewDispute creates a dispute of the client transaction tx.
func NewDispute(client uint16, tx uint32) Transaction {
	return Transaction{Type: Dispute, Client: client, Tx: tx}
}

// NewResolve creates a resolution of the disputed client transaction tx.
func NewResolve(client uint16, tx uint32) Transaction {
	return Transaction{Type: Resolve, Client: client, Tx: tx}
}

// NewChargeback creates a chargeback of the disputed client transaction tx.
func NewChargeback(client uint16, tx uint32) Transaction {
	return Transaction{Type: Chargeback, Client: client, Tx: tx}
}

// Validate checks that the amount is present when the type requires one.
func (t Transaction) Validate() error {
	if t.Type.RequiresAmount() && t.Amount == nil {
		return &MissingAmountError{Type: t.Type, Client: t.Client, Tx: t.Tx}
	}
	return nil
}

func (t Transaction) String() string {
	if t.Amount == nil {
		return fmt.Sprintf("%s,%d,%d,", t.Type, t.Client, t.Tx)
	}
	return fmt.Sprintf("%s,%d,%d,%s", t.Type, t.Client, t.Tx, t.Amount)
}

// MarshalJSON implements the json.Marshaler interface for Transaction. The amount is omitted when absent.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", t.Type)
	w.Append("client", t.Client)
	w.Append("tx", t.Tx)
	w.Optional("amount", t.Amount)
	return w.MarshalJSON()
}
