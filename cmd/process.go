package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"iter"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/payments"
	"github.com/google/subcommands"
)

// processCmd runs the engine on a transactions file.
type processCmd struct {
	engineFlags
	stream bool
	format string
	query  string
}

func (*processCmd) Name() string     { return "process" }
func (*processCmd) Synopsis() string { return "compute client accounts from a transactions file" }
func (*processCmd) Usage() string {
	return `pay process [-workers N] [-stream=false] [-format csv|json] [-query <jsonpath>] <transactions.csv>

  Processes every transaction of the file and prints the final state of each client.

  In CSV the clients of each worker are printed as soon as the worker is done. With
  -stream=false, or in JSON, all clients are printed at the end, sorted by id.
`
}

func (c *processCmd) SetFlags(f *flag.FlagSet) {
	c.engineFlags.SetFlags(f)
	f.BoolVar(&c.stream, "stream", true, "Print the clients of each worker as soon as it is done.")
	f.StringVar(&c.format, "format", "csv", "Output format: csv or json.")
	f.StringVar(&c.query, "query", "", "JSONPath query applied to the json output, e.g. '$[?(@.locked)].client'.")
}

func (c *processCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.config()
	if err != nil {
		fmt.Fprintf(stderr, "Error in engine settings: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.format != "csv" && c.format != "json" {
		fmt.Fprintf(stderr, "Unknown format %q, expected csv or json\n", c.format)
		return subcommands.ExitUsageError
	}
	if c.query != "" && c.format != "json" {
		fmt.Fprintln(stderr, "-query requires -format json")
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

	engine := payments.NewEngine(cfg, logger.Zap())
	src := payments.DecodeTransactions(in)

	switch {
	case c.format == "json":
		err = processJSON(stdout, engine, src, c.query)
	case c.stream:
		err = processStream(stdout, engine, src)
	default:
		err = processCSV(stdout, engine, src)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error processing transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// processStream writes the clients of each worker as soon as it reports.
// Rows written before a failing batch stay written.
func processStream(w io.Writer, engine *payments.Engine, src iter.Seq2[payments.Transaction, error]) error {
	batches, err := engine.Stream(src)
	if err != nil {
		return err
	}
	enc := payments.NewCSVEncoder(w)
	var runErr error
	for b := range batches {
		if b.Err != nil {
			if runErr == nil {
				runErr = b.Err
			}
			continue
		}
		if runErr != nil {
			continue
		}
		if err := enc.Encode(b.States...); err != nil {
			runErr = err
		}
	}
	if runErr != nil {
		return runErr
	}
	return enc.Flush()
}

// processCSV writes every client sorted by id once all workers are done.
func processCSV(w io.Writer, engine *payments.Engine, src iter.Seq2[payments.Transaction, error]) error {
	states, err := engine.Run(src)
	if err != nil {
		return err
	}
	payments.SortByClient(states)
	return payments.EncodeClientStates(w, states)
}

// processJSON writes every client as JSON, optionally filtered by a JSONPath query.
func processJSON(w io.Writer, engine *payments.Engine, src iter.Seq2[payments.Transaction, error], query string) error {
	states, err := engine.Run(src)
	if err != nil {
		return err
	}
	payments.SortByClient(states)
	if query == "" {
		return payments.EncodeJSON(w, states)
	}

	var b bytes.Buffer
	if err := payments.EncodeJSON(&b, states); err != nil {
		return err
	}
	var jobj any
	if err := json.Unmarshal(b.Bytes(), &jobj); err != nil {
		return err
	}
	jval, err := jsonpath.Get(query, jobj)
	if err != nil {
		return fmt.Errorf("error in query %q: %w", query, err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jval)
}
