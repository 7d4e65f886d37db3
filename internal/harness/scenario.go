// Package harness loads YAML scenario files and drives the façade
// through a demo run (add CTI, remove CTI, report the difference) or a
// timed benchmark run, giving the demo/benchmark collaborator of
// spec.md §1 a real, user-editable configuration format instead of the
// original's hard-coded run_demo().
package harness

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jschewts/arctic/internal/cti/cerrors"
	"github.com/jschewts/arctic/internal/cti/trap"
)

// TrapConfig describes one trap species by kind plus its parameters.
// Only the fields the chosen Kind needs are read; the rest are ignored.
type TrapConfig struct {
	Kind string `yaml:"kind"` // instant_capture | slow_capture | instant_capture_continuum | slow_capture_continuum

	Density                float64 `yaml:"density"`
	ReleaseTimescale       float64 `yaml:"release_timescale"`
	CaptureTimescale       float64 `yaml:"capture_timescale"`
	MedianReleaseTimescale float64 `yaml:"median_release_timescale"`
	Shape                  float64 `yaml:"shape"`
}

// Species constructs the concrete trap.Species this config describes.
func (c TrapConfig) Species() (trap.Species, error) {
	switch c.Kind {
	case "instant_capture":
		return trap.NewInstantCapture(c.Density, c.ReleaseTimescale)
	case "slow_capture":
		return trap.NewSlowCapture(c.Density, c.ReleaseTimescale, c.CaptureTimescale)
	case "instant_capture_continuum":
		return trap.NewInstantCaptureContinuum(c.Density, c.MedianReleaseTimescale, c.Shape)
	case "slow_capture_continuum":
		return trap.NewSlowCaptureContinuum(c.Density, c.CaptureTimescale, c.MedianReleaseTimescale, c.Shape)
	default:
		return nil, &cerrors.ConfigurationError{
			Component: "harness",
			Field:     "kind",
			Message:   "unrecognised trap kind " + c.Kind,
		}
	}
}

// DirectionConfig describes one clocking direction's ROE, CCD, and trap
// parameters plus the express/offset/row-window knobs.
type DirectionConfig struct {
	DwellTimes     []float64    `yaml:"dwell_times"`
	FullWellDepth  float64      `yaml:"full_well_depth"`
	WellNotchDepth float64      `yaml:"well_notch_depth"`
	WellFillPower  float64      `yaml:"well_fill_power"`
	Traps          []TrapConfig `yaml:"traps"`

	EmptyTrapsBetweenColumns    bool `yaml:"empty_traps_between_columns"`
	EmptyTrapsForFirstTransfers bool `yaml:"empty_traps_for_first_transfers"`

	Express int `yaml:"express"`
	Offset  int `yaml:"offset"`
	Start   int `yaml:"start"`
	Stop    int `yaml:"stop"`
}

// imageConfig describes the synthetic test image a demo or benchmark run
// should build when no image file is given: zeros with one bright row
// (one bright pixel per column), mirroring original_source's demo fixture.
type imageConfig struct {
	Path        string  `yaml:"path"`
	Rows        int     `yaml:"rows"`
	Cols        int     `yaml:"cols"`
	BrightRow   int     `yaml:"bright_row"`
	BrightValue float64 `yaml:"bright_value"`
}

// Scenario is the top-level shape of a harness YAML file.
type Scenario struct {
	Name     string           `yaml:"name"`
	Image    imageConfig      `yaml:"image"`
	Parallel *DirectionConfig `yaml:"parallel"`
	Serial   *DirectionConfig `yaml:"serial"`

	NIterations int `yaml:"n_iterations"` // demo: remove_cti iteration count, default 5
	Repeats     int `yaml:"repeats"`      // benchmark: add_cti repeat count, default 1
}

// LoadScenario reads and parses a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &cerrors.IOError{Path: path, Op: "read scenario", Err: err}
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, &cerrors.IOError{Path: path, Op: "parse scenario", Err: err}
	}
	if s.NIterations <= 0 {
		s.NIterations = 5
	}
	if s.Repeats <= 0 {
		s.Repeats = 1
	}
	return &s, nil
}
