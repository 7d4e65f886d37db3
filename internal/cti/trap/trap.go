// Package trap implements the species parameters for charge traps.
//
// A species is one of InstantCapture, SlowCapture, InstantCaptureContinuum,
// or SlowCaptureContinuum (spec.md §3.1). Each exposes density, capture
// rate, and emission rate through the Species interface so that
// trapmanager can dispatch on behaviour without a type switch, the way
// the teacher dispatches VarState's fast/slow read paths through methods
// rather than a tag field.
package trap

import "github.com/jschewts/arctic/internal/cti/cerrors"

// Discipline selects the watermarking scheme a species requires. Species
// grouped into one TrapManager must share a Discipline (spec.md §3.1).
type Discipline int

const (
	// Occupancy watermarks store, per slab, the fraction of traps filled.
	Occupancy Discipline = iota
	// ElapsedTime watermarks store, per slab, time elapsed since filling
	// (used by the continuum variants, spec.md §4.3.2).
	ElapsedTime
)

func (d Discipline) String() string {
	switch d {
	case Occupancy:
		return "occupancy"
	case ElapsedTime:
		return "elapsed-time"
	default:
		return "unknown"
	}
}

// Species is the common contract every trap variant satisfies.
type Species interface {
	// Density is the trap density for this species.
	Density() float64
	// CaptureRate is 1/capture_timescale, or 0 for an instantaneous-capture
	// species.
	CaptureRate() float64
	// EmissionRate is 1/release_timescale.
	EmissionRate() float64
	// IsInstantCapture reports whether capture is treated as instantaneous.
	IsInstantCapture() bool
	// Discipline reports the watermarking scheme this species requires.
	Discipline() Discipline
}

// Continuum is implemented by the two continuum variants, exposing the
// parameters of the release-timescale distribution.
type Continuum interface {
	Species
	// MedianReleaseTimescale is the median of the log-normal distribution
	// of release timescales across the continuum's sub-species.
	MedianReleaseTimescale() float64
	// Shape is the log-normal distribution's shape parameter (sigma of the
	// underlying normal in log-space).
	Shape() float64
}

func validateDensity(density float64) error {
	if density < 0 {
		return &cerrors.ConfigurationError{
			Component: "trap",
			Field:     "density",
			Message:   "must be non-negative",
		}
	}
	return nil
}

func validateTimescale(field string, timescale float64) error {
	if timescale <= 0 {
		return &cerrors.ConfigurationError{
			Component: "trap",
			Field:     field,
			Message:   "must be strictly positive",
		}
	}
	return nil
}

// InstantCapture is a species whose capture is treated as instantaneous;
// only release has a finite timescale.
type InstantCapture struct {
	density          float64
	releaseTimescale float64
}

// NewInstantCapture validates and constructs an InstantCapture species.
func NewInstantCapture(density, releaseTimescale float64) (*InstantCapture, error) {
	if err := validateDensity(density); err != nil {
		return nil, err
	}
	if err := validateTimescale("release_timescale", releaseTimescale); err != nil {
		return nil, err
	}
	return &InstantCapture{density: density, releaseTimescale: releaseTimescale}, nil
}

func (t *InstantCapture) Density() float64      { return t.density }
func (t *InstantCapture) CaptureRate() float64   { return 0 }
func (t *InstantCapture) EmissionRate() float64  { return 1 / t.releaseTimescale }
func (t *InstantCapture) IsInstantCapture() bool { return true }
func (t *InstantCapture) Discipline() Discipline { return Occupancy }

// SlowCapture adds a finite capture_timescale: capture and release may both
// act within the same dwell time.
type SlowCapture struct {
	density          float64
	releaseTimescale float64
	captureTimescale float64
}

// NewSlowCapture validates and constructs a SlowCapture species.
func NewSlowCapture(density, releaseTimescale, captureTimescale float64) (*SlowCapture, error) {
	if err := validateDensity(density); err != nil {
		return nil, err
	}
	if err := validateTimescale("release_timescale", releaseTimescale); err != nil {
		return nil, err
	}
	if err := validateTimescale("capture_timescale", captureTimescale); err != nil {
		return nil, err
	}
	return &SlowCapture{
		density:          density,
		releaseTimescale: releaseTimescale,
		captureTimescale: captureTimescale,
	}, nil
}

func (t *SlowCapture) Density() float64       { return t.density }
func (t *SlowCapture) CaptureRate() float64   { return 1 / t.captureTimescale }
func (t *SlowCapture) EmissionRate() float64  { return 1 / t.releaseTimescale }
func (t *SlowCapture) IsInstantCapture() bool { return false }
func (t *SlowCapture) Discipline() Discipline { return Occupancy }

// InstantCaptureContinuum is an InstantCapture species whose release
// timescale is drawn from a log-normal distribution across a continuum of
// sub-species sharing one watermark.
type InstantCaptureContinuum struct {
	density  float64
	medianTs float64
	shape    float64
}

// NewInstantCaptureContinuum validates and constructs the species.
func NewInstantCaptureContinuum(density, medianReleaseTimescale, shape float64) (*InstantCaptureContinuum, error) {
	if err := validateDensity(density); err != nil {
		return nil, err
	}
	if err := validateTimescale("median_release_timescale", medianReleaseTimescale); err != nil {
		return nil, err
	}
	if shape <= 0 {
		return nil, &cerrors.ConfigurationError{
			Component: "trap",
			Field:     "shape",
			Message:   "must be strictly positive",
		}
	}
	return &InstantCaptureContinuum{density: density, medianTs: medianReleaseTimescale, shape: shape}, nil
}

func (t *InstantCaptureContinuum) Density() float64               { return t.density }
func (t *InstantCaptureContinuum) CaptureRate() float64            { return 0 }
func (t *InstantCaptureContinuum) EmissionRate() float64           { return 1 / t.medianTs }
func (t *InstantCaptureContinuum) IsInstantCapture() bool          { return true }
func (t *InstantCaptureContinuum) Discipline() Discipline          { return ElapsedTime }
func (t *InstantCaptureContinuum) MedianReleaseTimescale() float64 { return t.medianTs }
func (t *InstantCaptureContinuum) Shape() float64                  { return t.shape }

// SlowCaptureContinuum is the SlowCapture analogue of
// InstantCaptureContinuum: finite capture_timescale plus a continuum of
// release timescales.
type SlowCaptureContinuum struct {
	density          float64
	captureTimescale float64
	medianTs         float64
	shape            float64
}

// NewSlowCaptureContinuum validates and constructs the species.
func NewSlowCaptureContinuum(density, captureTimescale, medianReleaseTimescale, shape float64) (*SlowCaptureContinuum, error) {
	if err := validateDensity(density); err != nil {
		return nil, err
	}
	if err := validateTimescale("capture_timescale", captureTimescale); err != nil {
		return nil, err
	}
	if err := validateTimescale("median_release_timescale", medianReleaseTimescale); err != nil {
		return nil, err
	}
	if shape <= 0 {
		return nil, &cerrors.ConfigurationError{
			Component: "trap",
			Field:     "shape",
			Message:   "must be strictly positive",
		}
	}
	return &SlowCaptureContinuum{
		density:          density,
		captureTimescale: captureTimescale,
		medianTs:         medianReleaseTimescale,
		shape:            shape,
	}, nil
}

func (t *SlowCaptureContinuum) Density() float64               { return t.density }
func (t *SlowCaptureContinuum) CaptureRate() float64            { return 1 / t.captureTimescale }
func (t *SlowCaptureContinuum) EmissionRate() float64           { return 1 / t.medianTs }
func (t *SlowCaptureContinuum) IsInstantCapture() bool          { return false }
func (t *SlowCaptureContinuum) Discipline() Discipline          { return ElapsedTime }
func (t *SlowCaptureContinuum) MedianReleaseTimescale() float64 { return t.medianTs }
func (t *SlowCaptureContinuum) Shape() float64                  { return t.shape }
