// Package cmd implements the pay command line tool.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/etnz/payments"
	"github.com/etnz/payments/logging"
	"github.com/google/subcommands"
)

// Commands lists the pay subcommands.
var Commands = []subcommands.Command{
	&processCmd{},
	&checkCmd{},
	&summaryCmd{},
	&topicCmd{},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	for _, cmd := range Commands {
		c.Register(cmd, "")
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var logFile = flag.String("log-file", "", "Path to the diagnostics log file. Defaults to $"+logging.EnvFile+", no logs when empty.")
var logLevel = flag.String("log-level", "", "Log level: debug, info, warn or error. Defaults to $"+logging.EnvLevel+" or info.")

// stdout and stderr are replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// openLogger opens the diagnostics logger configured by the environment and the global flags.
func openLogger() (*logging.Logger, error) {
	cfg := logging.ConfigFromEnv()
	if *logFile != "" {
		cfg.Path = *logFile
	}
	if *logLevel != "" {
		cfg.Level = *logLevel
	}
	return logging.New(cfg)
}

// openInput opens the single input file named on the command line, "-" being stdin.
func openInput(f *flag.FlagSet) (io.ReadCloser, error) {
	if f.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one input file, got %d", f.NArg())
	}
	name := f.Arg(0)
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}

// engineFlags are the engine settings shared by the subcommands that run it.
type engineFlags struct {
	workers int
	queue   int
	missing string
}

func (e *engineFlags) SetFlags(f *flag.FlagSet) {
	f.IntVar(&e.workers, "workers", 0, "Number of workers. Defaults to $"+payments.EnvWorkers+" or the number of CPUs.")
	f.IntVar(&e.queue, "queue", 0, "Capacity of each worker queue. Defaults to $"+payments.EnvQueueSize+" or 1024.")
	f.StringVar(&e.missing, "missing-amount", "", "What to do with a deposit or withdrawal without amount: skip-transaction, skip-client or abort. Defaults to $"+payments.EnvMissingAmount+" or skip-transaction.")
}

// config merges the flags over the environment.
func (e *engineFlags) config() (payments.Config, error) {
	cfg, err := payments.ConfigFromEnv()
	if err != nil {
		return cfg, err
	}
	if _, ok := os.LookupEnv(payments.EnvWorkers); !ok {
		cfg.Workers = runtime.NumCPU()
	}
	if e.workers > 0 {
		cfg.Workers = e.workers
	}
	if e.queue > 0 {
		cfg.QueueSize = e.queue
	}
	if e.missing != "" {
		p, err := payments.ParseMissingAmountPolicy(e.missing)
		if err != nil {
			return cfg, err
		}
		cfg.MissingAmount = p
	}
	return cfg, nil
}
