package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/payments"
	"github.com/google/subcommands"
)

// checkCmd validates a transactions file without running the engine.
type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "validate a transactions file" }
func (*checkCmd) Usage() string {
	return `pay check <transactions.csv>

  Parses every record of the file. Reports the position of the first invalid record, or
  the number of transactions per type.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {}

func (c *checkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	in, err := openInput(f)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening input: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer in.Close()

	report, err := check(in)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(report.Markdown())
	return subcommands.ExitSuccess
}

// checkReport counts the transactions of a file.
type checkReport struct {
	counts  map[payments.TransactionType]int
	missing int // deposits and withdrawals without amount.
	total   int
}

// check reads r to the end or to the first invalid record.
func check(r io.Reader) (*checkReport, error) {
	report := &checkReport{counts: make(map[payments.TransactionType]int)}
	position := 0
	for tx, err := range payments.DecodeTransactions(r) {
		position++
		var readErr *payments.ReadError
		if errors.As(err, &readErr) {
			return report, err
		}
		if err != nil {
			return report, &payments.ParseError{Position: position, Err: err}
		}
		report.counts[tx.Type]++
		report.total++
		if tx.Validate() != nil {
			report.missing++
		}
	}
	return report, nil
}

// Markdown returns the report as a markdown table.
func (r *checkReport) Markdown() string {
	var b strings.Builder
	b.WriteString("| Type | Count |\n|:-----|------:|\n")
	for _, typ := range payments.TransactionTypes {
		fmt.Fprintf(&b, "| %s | %d |\n", typ, r.counts[typ])
	}
	fmt.Fprintf(&b, "| **total** | **%d** |\n", r.total)
	if r.missing > 0 {
		fmt.Fprintf(&b, "\n%d deposits or withdrawals have no amount.\n", r.missing)
	}
	return b.String()
}
