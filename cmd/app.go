// Package cmd implements the CLI application to compute UK CGT reports.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/uktax/cgtpool"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&reportCmd{}, "reports")
	c.Register(&incomeCmd{}, "reports")
	c.Register(&poolsCmd{}, "reports")

	c.Register(&fmtCmd{}, "events")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var eventsFile = flag.String("events-file", "events.jsonl", "Path to the normalized event stream (JSONL format)")
var configFile = flag.String("config-file", "", "Path to the annotation config (YAML), optional")
var verbose = flag.Bool("verbose", false, "Log every match decision to stderr")

// Logger returns the engine logger selected by the -verbose flag.
func Logger() zerolog.Logger {
	if !*verbose {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.DebugLevel).
		With().
		Timestamp().
		Logger()
}

// DecodeEvents reads the event stream from the -events-file flag.
func DecodeEvents() ([]cgtpool.Event, error) {
	f, err := os.Open(*eventsFile)
	if err != nil {
		return nil, fmt.Errorf("could not open events file %q: %w", *eventsFile, err)
	}
	defer f.Close()
	return cgtpool.DecodeEvents(f)
}

// LoadConfig reads the optional annotation config from the -config-file flag.
// A missing flag yields an empty config.
func LoadConfig() (*cgtpool.Config, error) {
	if *configFile == "" {
		return &cgtpool.Config{}, nil
	}
	return cgtpool.LoadConfig(*configFile)
}

// printMarkdown renders markdown to the terminal, falling back to the raw
// text when rendering fails or output is not a terminal style target.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
