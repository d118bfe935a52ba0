package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/uktax/cgtpool"
	"github.com/uktax/cgtpool/renderer"
)

// incomeCmd holds the flags for the 'income' subcommand.
type incomeCmd struct{}

func (*incomeCmd) Name() string     { return "income" }
func (*incomeCmd) Synopsis() string { return "per-tax-year income side-channel summary" }
func (*incomeCmd) Usage() string {
	return `cgt income

  Summarizes income events (dividends, interest, staking rewards, excess
  reportable income) per UK tax year. Income never affects pool matching.
`
}

func (c *incomeCmd) SetFlags(f *flag.FlagSet) {}

func (c *incomeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	events, err := DecodeEvents()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	engine := cgtpool.NewEngine().WithLogger(Logger())
	result, err := engine.Process(events)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error matching events: %v\n", err)
		if result == nil || len(result.Pools) == 0 {
			return subcommands.ExitFailure
		}
	}

	report := cgtpool.Aggregate(result)
	printMarkdown(renderer.IncomeMarkdown(report))
	return subcommands.ExitSuccess
}
