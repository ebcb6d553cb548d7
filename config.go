package payments

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvWorkers       = "PAY_WORKERS"
	EnvQueueSize     = "PAY_QUEUE_SIZE"
	EnvMissingAmount = "PAY_MISSING_AMOUNT"
)

// DefaultQueueSize is the capacity of each worker queue.
const DefaultQueueSize = 1024

// MissingAmountPolicy decides what a worker does with a deposit or withdrawal that has no amount.
type MissingAmountPolicy string

const (
	// SkipTransaction logs the error and skips the transaction.
	SkipTransaction MissingAmountPolicy = "skip-transaction"
	// SkipClient logs the error and ignores every later transaction of the same client.
	SkipClient MissingAmountPolicy = "skip-client"
	// AbortRun makes the whole run fail with the *MissingAmountError.
	AbortRun MissingAmountPolicy = "abort"
)

// ParseMissingAmountPolicy parses a policy name.
func ParseMissingAmountPolicy(s string) (MissingAmountPolicy, error) {
	switch p := MissingAmountPolicy(s); p {
	case SkipTransaction, SkipClient, AbortRun:
		return p, nil
	default:
		return "", fmt.Errorf("unknown missing amount policy: %q", s)
	}
}

func (p MissingAmountPolicy) String() string { return string(p) }

// Config holds the engine settings.
type Config struct {
	Workers       int                 // number of concurrent workers, 1 when < 1.
	QueueSize     int                 // capacity of each worker queue, DefaultQueueSize when < 1.
	MissingAmount MissingAmountPolicy // SkipTransaction when empty.
}

// DefaultConfig returns a single worker configuration.
func DefaultConfig() Config {
	return Config{Workers: 1, QueueSize: DefaultQueueSize, MissingAmount: SkipTransaction}
}

// ConfigFromEnv returns DefaultConfig overridden by the PAY_* environment variables that are set.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	var errs error

	if v, ok := os.LookupEnv(EnvWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("%s: %w", EnvWorkers, err))
		} else {
			cfg.Workers = n
		}
	}
	if v, ok := os.LookupEnv(EnvQueueSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("%s: %w", EnvQueueSize, err))
		} else {
			cfg.QueueSize = n
		}
	}
	if v, ok := os.LookupEnv(EnvMissingAmount); ok {
		p, err := ParseMissingAmountPolicy(v)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("%s: %w", EnvMissingAmount, err))
		} else {
			cfg.MissingAmount = p
		}
	}
	return cfg.normalize(), errs
}

// normalize replaces out of range values by their defaults.
func (c Config) normalize() Config {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.QueueSize < 1 {
		c.QueueSize = DefaultQueueSize
	}
	if c.MissingAmount == "" {
		c.MissingAmount = SkipTransaction
	}
	return c
}
