package cmd

import (
	"github.com/etnz/payments"
	"github.com/etnz/payments/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Complete handles shell completion requests and exits when the shell asked for one.
// It must be called before flags are parsed.
//
// Install it with `COMP_INSTALL=1 pay`.
func Complete() {
	completion().Complete("pay")
}

func completion() *complete.Command {
	topics, _ := docs.GetAllTopics()

	var policies predict.Set
	for _, p := range []payments.MissingAmountPolicy{payments.SkipTransaction, payments.SkipClient, payments.AbortRun} {
		policies = append(policies, p.String())
	}
	engine := map[string]complete.Predictor{
		"workers":        predict.Something,
		"queue":          predict.Something,
		"missing-amount": policies,
	}
	with := func(flags map[string]complete.Predictor) map[string]complete.Predictor {
		for k, v := range engine {
			flags[k] = v
		}
		return flags
	}
	csvFiles := predict.Files("*.csv")

	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"log-file":  predict.Files("*"),
			"log-level": predict.Set{"debug", "info", "warn", "error"},
		},
		Sub: map[string]*complete.Command{
			"process": {
				Flags: with(map[string]complete.Predictor{
					"stream": predict.Set{"true", "false"},
					"format": predict.Set{"csv", "json"},
					"query":  predict.Something,
				}),
				Args: csvFiles,
			},
			"check": {Args: csvFiles},
			"summary": {
				Flags: with(map[string]complete.Predictor{
					"currency": predict.Something,
					"html":     predict.Nothing,
				}),
				Args: csvFiles,
			},
			"topic": {
				Flags: map[string]complete.Predictor{"list": predict.Nothing},
				Args:  append(predict.Set{"all"}, topics...),
			},
			"help":  {},
		},
	}
}
