package main

import (
	"context"
	"fmt"

	"github.com/jschewts/arctic/internal/harness"
)

// runBenchmarkCommand loads the scenario at path and runs
// harness.RunBenchmark, printing the timing summary.
func runBenchmarkCommand(path string) error {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return err
	}
	result, err := harness.RunBenchmark(context.Background(), scenario)
	if err != nil {
		return err
	}
	fmt.Printf("benchmark run %s: %d repeats, total %v, mean %v\n",
		result.RunID, result.Repeats, result.TotalTime, result.MeanPerCall)
	return nil
}
