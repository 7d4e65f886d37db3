// Package ccd maps a free-electron count to the fractional pixel volume the
// corresponding electron cloud occupies (spec.md §3.2, §4.2).
package ccd

import (
	"math"

	"github.com/jschewts/arctic/internal/cti/cerrors"
)

// Phase carries the physical parameters of one CCD clocking phase.
type Phase struct {
	fullWellDepth  float64
	wellNotchDepth float64
	wellFillPower  float64
}

// NewPhase validates and constructs a Phase.
//
// full_well_depth must exceed well_notch_depth, and well_fill_power must
// be strictly positive; otherwise NewPhase returns a ConfigurationError
// (spec.md §7).
func NewPhase(fullWellDepth, wellNotchDepth, wellFillPower float64) (*Phase, error) {
	if fullWellDepth <= wellNotchDepth {
		return nil, &cerrors.ConfigurationError{
			Component: "ccd",
			Field:     "full_well_depth",
			Message:   "must exceed well_notch_depth",
		}
	}
	if wellFillPower <= 0 {
		return nil, &cerrors.ConfigurationError{
			Component: "ccd",
			Field:     "well_fill_power",
			Message:   "must be strictly positive",
		}
	}
	return &Phase{
		fullWellDepth:  fullWellDepth,
		wellNotchDepth: wellNotchDepth,
		wellFillPower:  wellFillPower,
	}, nil
}

// FullWellDepth returns the phase's full well depth.
func (p *Phase) FullWellDepth() float64 { return p.fullWellDepth }

// WellNotchDepth returns the phase's well notch depth.
func (p *Phase) WellNotchDepth() float64 { return p.wellNotchDepth }

// WellFillPower returns the phase's well fill power exponent.
func (p *Phase) WellFillPower() float64 { return p.wellFillPower }

// CloudFractionalVolume maps a non-negative electron count to a fractional
// volume in [0, 1].
//
// For n_e <= notch it returns 0 (no capture possible). For n_e >= full_well
// it returns 1. Between, it follows
//
//	((n_e - notch) / (full_well - notch)) ^ well_fill_power
//
// clamped to [0, 1]. The function is pure and monotonic non-decreasing
// (spec.md §4.2, property P3). A negative nElectrons is a caller-contract
// violation and returns a DomainError rather than silently clamping.
func (p *Phase) CloudFractionalVolume(nElectrons float64) (float64, error) {
	if nElectrons < 0 {
		return 0, &cerrors.DomainError{
			Message: "cloud_fractional_volume: electron count must be non-negative",
		}
	}
	if nElectrons <= p.wellNotchDepth {
		return 0, nil
	}
	if nElectrons >= p.fullWellDepth {
		return 1, nil
	}
	frac := (nElectrons - p.wellNotchDepth) / (p.fullWellDepth - p.wellNotchDepth)
	v := math.Pow(frac, p.wellFillPower)
	return clamp(v, 0, 1), nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CCD is one or more phases; the engine uses a single phase per transfer.
type CCD struct {
	Phases []*Phase
}

// NewCCD wraps one or more phases into a CCD. At least one phase is
// required.
func NewCCD(phases ...*Phase) (*CCD, error) {
	if len(phases) == 0 {
		return nil, &cerrors.ConfigurationError{
			Component: "ccd",
			Field:     "phases",
			Message:   "at least one phase is required",
		}
	}
	return &CCD{Phases: phases}, nil
}

// Phase0 returns the first (and, for single-phase clocking, only) phase.
func (c *CCD) Phase0() *Phase { return c.Phases[0] }
