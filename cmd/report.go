package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/uktax/cgtpool"
	"github.com/uktax/cgtpool/renderer"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	year    string
	jsonOut bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "per-tax-year capital gains report" }
func (*reportCmd) Usage() string {
	return `cgt report [-year <tax year>] [-json]

  Matches every disposal in the event stream against the same-day,
  bed-&-breakfast and Section 104 rules and prints gains per UK tax year.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.year, "year", "", "Restrict the report to one tax year, e.g. 2023/24")
	f.BoolVar(&c.jsonOut, "json", false, "Print matched disposal records as JSONL instead of markdown")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
		fmt.Fprintln(os.Stderr, "Continuing with the pools that succeeded.")
	}

	if c.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		for _, d := range result.Disposals() {
			if err := enc.Encode(d); err != nil {
				fmt.Fprintf(os.Stderr, "Error encoding disposal: %v\n", err)
				return subcommands.ExitFailure
			}
		}
		return subcommands.ExitSuccess
	}

	report := cgtpool.Aggregate(result)

	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return subcommands.ExitFailure
	}
	cfg.Annotate(report)

	if c.year != "" {
		year, err := cgtpool.ParseTaxYear(c.year)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
		summary := report.Year(year)
		if summary == nil {
			fmt.Fprintf(os.Stderr, "No disposals in tax year %s.\n", year)
			return subcommands.ExitSuccess
		}
		report = &cgtpool.TaxReport{Years: []cgtpool.TaxYearSummary{*summary}}
	}

	printMarkdown(renderer.TaxReportMarkdown(report))
	return subcommands.ExitSuccess
}
