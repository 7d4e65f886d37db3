// Package main implements the arctic CLI tool.
//
// arctic drives the CTI engine's demo and benchmark harness from the
// command line. It is a thin wrapper: all of the work happens in
// internal/harness and the root cti façade.
//
// Usage:
//
//	arctic -d scenario.yaml      # run a demo against a scenario
//	arctic -b scenario.yaml      # run a timed benchmark against a scenario
//	arctic -v 2 -d scenario.yaml # run a demo with verbose logging
package main

import (
	"fmt"
	"os"

	"github.com/jschewts/arctic/internal/cti/diagnostics"
)

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		printUsage()
		os.Exit(1)
	}

	if cfg.help {
		printUsage()
		return
	}

	diagnostics.SetVerbosity(cfg.verbosity)

	switch {
	case cfg.demo:
		err = runDemoCommand(cfg.scenario)
	case cfg.benchmark:
		err = runBenchmarkCommand(cfg.scenario)
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`arctic - Charge Transfer Inefficiency engine

USAGE:
    arctic [flags] <scenario.yaml>

FLAGS:
    -h, --help            Show this help message
    -v, --verbosity <n>   Set verbosity (0=quiet, 1=standard, 2=verbose)
    -d, --demo            Run a demo: add CTI, remove CTI, report round-trip error
    -b, --benchmark       Run a timed benchmark over repeated AddCTI calls

EXAMPLES:
    arctic -d scenario.yaml
    arctic -v 2 -b scenario.yaml
`)
}
