package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/uktax/cgtpool"
)

// fmtCmd holds the flags for the 'fmt' subcommand.
type fmtCmd struct {
	write bool
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the event file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `cgt fmt [-w]

  Validates the event stream, sorts it by date and sequence, assigns ids to
  events that lack one, and prints it back in canonical JSONL form. With -w
  the events file is rewritten in place.
`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.write, "w", false, "Rewrite the events file instead of printing to stdout")
}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	events, err := DecodeEvents()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if !c.write {
		if err := cgtpool.EncodeEvents(os.Stdout, events); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	out, err := os.CreateTemp(".", "events-*.jsonl")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating temporary file: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := cgtpool.EncodeEvents(out, events); err != nil {
		out.Close()
		os.Remove(out.Name())
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := os.Rename(out.Name(), *eventsFile); err != nil {
		os.Remove(out.Name())
		fmt.Fprintf(os.Stderr, "Error replacing %q: %v\n", *eventsFile, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Formatted %s.\n", *eventsFile)
	return subcommands.ExitSuccess
}
