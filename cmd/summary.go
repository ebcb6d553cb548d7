package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/payments"
	"github.com/etnz/payments/renderer"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	engineFlags
	currency string
	html     bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display a report of the client accounts" }
func (*summaryCmd) Usage() string {
	return `pay summary [-currency <code>] [-html] <transactions.csv>

  Processes the file and displays the client accounts, the locked accounts and the
  transaction counters.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	c.engineFlags.SetFlags(f)
	f.StringVar(&c.currency, "currency", "", "Format amounts as money in this ISO 4217 currency, e.g. USD.")
	f.BoolVar(&c.html, "html", false, "Print the report as HTML instead of rendering it in the terminal.")
}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.config()
	if err != nil {
		fmt.Fprintf(stderr, "Error in engine settings: %v\n", err)
		return subcommands.ExitUsageError
	}
	in, err := openInput(f)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening input: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer in.Close()

	logger, err := openLogger()
	if err != nil {
		fmt.Fprintf(stderr, "Error opening log: %v\n", err)
		return subcommands.ExitFailure
	}
	defer logger.Close()

	batches, err := payments.NewEngine(cfg, logger.Zap()).Stream(payments.DecodeTransactions(in))
	if err != nil {
		fmt.Fprintf(stderr, "Error processing transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	states, stats, err := payments.Collect(batches)
	if err != nil {
		fmt.Fprintf(stderr, "Error processing transactions: %v\n", err)
		return subcommands.ExitFailure
	}

	summary, err := renderer.NewSummary(states, stats, c.currency)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	md, err := renderer.RenderSummary(summary)
	if err != nil {
		fmt.Fprintf(stderr, "Error rendering summary: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.html {
		html, err := renderer.ToHTML(md)
		if err != nil {
			fmt.Fprintf(stderr, "Error rendering summary: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprint(stdout, html)
		return subcommands.ExitSuccess
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}
