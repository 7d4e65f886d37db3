package harness

import (
	"context"
	"time"

	"github.com/google/uuid"

	cti "github.com/jschewts/arctic"
	"github.com/jschewts/arctic/internal/cti/diagnostics"
)

// BenchmarkResult reports wall-clock timing for repeated AddCTI calls
// over a scenario's image.
type BenchmarkResult struct {
	RunID       string
	Repeats     int
	TotalTime   time.Duration
	MeanPerCall time.Duration
}

// RunBenchmark repeats AddCTI over the scenario's image Repeats times and
// reports wall-clock timing, tagging the run with a UUID so repeated
// invocations can be told apart in logs.
func RunBenchmark(ctx context.Context, s *Scenario) (*BenchmarkResult, error) {
	if s.Repeats <= 0 {
		s.Repeats = 1
	}
	runID := uuid.New().String()
	log := diagnostics.Logger()
	log.Info("starting benchmark run", "run_id", runID, "scenario", s.Name, "repeats", s.Repeats)

	original, err := buildImage(s)
	if err != nil {
		return nil, err
	}
	parallel, err := s.Parallel.build()
	if err != nil {
		return nil, err
	}
	serial, err := s.Serial.build()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	for i := 0; i < s.Repeats; i++ {
		img := original.Clone()
		if err := cti.AddCTI(ctx, img, parallel, serial); err != nil {
			return nil, err
		}
	}
	total := time.Since(start)

	result := &BenchmarkResult{
		RunID:       runID,
		Repeats:     s.Repeats,
		TotalTime:   total,
		MeanPerCall: total / time.Duration(s.Repeats),
	}
	log.Info("benchmark run complete", "run_id", runID, "total", total, "mean_per_call", result.MeanPerCall)
	return result, nil
}
