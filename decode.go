package payments

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
)

// ParseTransaction parses a single textual record "type,client,tx[,amount]".
//
// Fields are trimmed. An empty or absent amount leaves Amount nil; whether the type
// requires one is checked later, by the ledger.
func ParseTransaction(record string) (Transaction, error) {
	fields := strings.Split(record, ",")
	for len(fields) < 4 {
		fields = append(fields, "")
	}
	return parseFields(fields[0], fields[1], fields[2], fields[3])
}

func parseFields(typ, client, tx, amount string) (Transaction, error) {
	typ, client, tx, amount = strings.TrimSpace(typ), strings.TrimSpace(client), strings.TrimSpace(tx), strings.TrimSpace(amount)

	if typ == "" {
		return Transaction{}, &FieldError{Field: "type", Reason: "is required"}
	}
	t, err := ParseTransactionType(typ)
	if err != nil {
		return Transaction{}, &FieldError{Field: "type", Value: typ, Reason: "is not a known transaction type"}
	}

	if client == "" {
		return Transaction{}, &FieldError{Field: "client", Reason: "is required"}
	}
	c, err := strconv.ParseUint(client, 10, 16)
	if err != nil {
		return Transaction{}, &FieldError{Field: "client", Value: client, Reason: "must be a u16"}
	}

	if tx == "" {
		return Transaction{}, &FieldError{Field: "tx", Reason: "is required"}
	}
	id, err := strconv.ParseUint(tx, 10, 32)
	if err != nil {
		return Transaction{}, &FieldError{Field: "tx", Value: tx, Reason: "must be a u32"}
	}

	result := Transaction{Type: t, Client: uint16(c), Tx: uint32(id)}
	if amount != "" {
		a, err := ParseAmount(amount)
		if err != nil {
			return Transaction{}, &FieldError{Field: "amount", Value: amount, Reason: "must be a decimal"}
		}
		result.Amount = &a
	}
	return result, nil
}

// columns locates the transaction fields in a CSV header.
type columns struct {
	typ, client, tx, amount int // -1 when absent
}

func parseHeader(header []string) (columns, error) {
	cols := columns{-1, -1, -1, -1}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "type":
			cols.typ = i
		case "client":
			cols.client = i
		case "tx":
			cols.tx = i
		case "amount":
			cols.amount = i
		}
	}
	var errs error
	if cols.typ < 0 {
		errs = errors.Join(errs, errors.New("missing column \"type\""))
	}
	if cols.client < 0 {
		errs = errors.Join(errs, errors.New("missing column \"client\""))
	}
	if cols.tx < 0 {
		errs = errors.Join(errs, errors.New("missing column \"tx\""))
	}
	if errs != nil {
		return cols, fmt.Errorf("invalid header %q: %w", strings.Join(header, ","), errs)
	}
	return cols, nil
}

func (c columns) field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}

// DecodeTransactions reads CSV with a "type,client,tx,amount" header and yields one
// transaction per record.
//
// Iteration stops after the first error, which is yielded as the last item. Failures of r
// are yielded as *ReadError, malformed records as *csv.ParseError or *FieldError. The
// header is not an item: the first record has position 1.
func DecodeTransactions(r io.Reader) iter.Seq2[Transaction, error] {
	return func(yield func(Transaction, error) bool) {
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true
		reader.ReuseRecord = true

		header, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			yield(Transaction{}, readError(fmt.Errorf("could not read header: %w", err)))
			return
		}
		cols, err := parseHeader(header)
		if err != nil {
			yield(Transaction{}, err)
			return
		}

		for {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(Transaction{}, readError(err))
				return
			}
			tx, err := parseFields(
				cols.field(record, cols.typ),
				cols.field(record, cols.client),
				cols.field(record, cols.tx),
				cols.field(record, cols.amount),
			)
			if !yield(tx, err) || err != nil {
				return
			}
		}
	}
}

// readError keeps CSV syntax errors as they are and wraps reader failures in a *ReadError.
func readError(err error) error {
	var syntax *csv.ParseError
	if errors.As(err, &syntax) {
		return err
	}
	return &ReadError{Err: err}
}

// Transactions adapts a slice to the engine input.
func Transactions(txs ...Transaction) iter.Seq2[Transaction, error] {
	return func(yield func(Transaction, error) bool) {
		for _, tx := range txs {
			if !yield(tx, nil) {
				return
			}
		}
	}
}

// Records adapts textual records to the engine input, parsing them lazily with ParseTransaction.
func Records(records ...string) iter.Seq2[Transaction, error] {
	return func(yield func(Transaction, error) bool) {
		for _, rec := range records {
			tx, err := ParseTransaction(rec)
			if !yield(tx, err) || err != nil {
				return
			}
		}
	}
}
