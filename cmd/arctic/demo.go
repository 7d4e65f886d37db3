package main

import (
	"context"
	"fmt"

	"github.com/jschewts/arctic/internal/harness"
)

// runDemoCommand loads the scenario at path and runs harness.RunDemo,
// printing a short summary.
func runDemoCommand(path string) error {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return err
	}
	result, err := harness.RunDemo(context.Background(), scenario)
	if err != nil {
		return err
	}
	fmt.Printf("demo run %s: max |corrected - original| = %g\n", result.RunID, result.MaxAbsDiff)
	return nil
}
