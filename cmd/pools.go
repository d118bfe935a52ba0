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

// poolsCmd holds the flags for the 'pools' subcommand.
type poolsCmd struct{}

func (*poolsCmd) Name() string     { return "pools" }
func (*poolsCmd) Synopsis() string { return "residual Section 104 holdings per pool" }
func (*poolsCmd) Usage() string {
	return `cgt pools

  Prints the Section 104 pooled quantity, cost and average cost of every
  pool as of the end of the event stream.
`
}

func (c *poolsCmd) SetFlags(f *flag.FlagSet) {}

func (c *poolsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	printMarkdown(renderer.HoldingsMarkdown(result))
	return subcommands.ExitSuccess
}
