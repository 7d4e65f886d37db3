// Package roe carries the readout-electronics parameters that govern one
// clocking direction's dwell times and reset policy, and generates the
// express matrix that lets a Clocker amortise identical transfers
// (spec.md §3.4, §4.4).
package roe

import (
	"fmt"

	"github.com/patrickmn/go-cache"

	"github.com/jschewts/arctic/internal/cti/cerrors"
)

// ROE carries the dwell times for one clocking step through a pixel (or
// multiple steps for multi-phase clocking) and the reset/optimisation
// policy flags.
type ROE struct {
	DwellTimes []float64

	EmptyTrapsBetweenColumns    bool
	EmptyTrapsForFirstTransfers bool
	UseIntegerExpressMatrix     bool

	PruneNElectrons float64
	PruneFrequency  int

	matrices *cache.Cache
}

// NewROE validates and constructs a ROE. At least one dwell time is
// required.
func NewROE(dwellTimes []float64, opts ...Option) (*ROE, error) {
	if len(dwellTimes) == 0 {
		return nil, &cerrors.ConfigurationError{
			Component: "roe",
			Field:     "dwell_times",
			Message:   "at least one dwell time is required",
		}
	}
	for i, dt := range dwellTimes {
		if dt <= 0 {
			return nil, &cerrors.ConfigurationError{
				Component: "roe",
				Field:     "dwell_times",
				Message:   fmt.Sprintf("dwell_times[%d] must be strictly positive", i),
			}
		}
	}
	r := &ROE{
		DwellTimes:              append([]float64(nil), dwellTimes...),
		UseIntegerExpressMatrix: true,
		PruneFrequency:          1,
		matrices:                cache.New(cache.NoExpiration, cache.NoExpiration),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Option configures optional ROE fields at construction time.
type Option func(*ROE)

func WithEmptyTrapsBetweenColumns(v bool) Option    { return func(r *ROE) { r.EmptyTrapsBetweenColumns = v } }
func WithEmptyTrapsForFirstTransfers(v bool) Option { return func(r *ROE) { r.EmptyTrapsForFirstTransfers = v } }
func WithUseIntegerExpressMatrix(v bool) Option {
	return func(r *ROE) { r.UseIntegerExpressMatrix = v }
}
func WithPruning(nElectrons float64, frequency int) Option {
	return func(r *ROE) { r.PruneNElectrons = nElectrons; r.PruneFrequency = frequency }
}

// TotalDwellTime sums the per-step dwell times, the total time a pixel's
// charge spends clocking through one transfer.
func (r *ROE) TotalDwellTime() float64 {
	total := 0.0
	for _, dt := range r.DwellTimes {
		total += dt
	}
	return total
}

// ExpressMatrix returns the cached (nRow, express, offset)-keyed express
// matrix, generating it on first use (spec.md §4.4, §2.1: memoized with
// go-cache since the same image geometry is reused across repeated
// add_cti/remove_cti calls).
func (r *ROE) ExpressMatrix(nRow, express, offset int) (Matrix, error) {
	key := fmt.Sprintf("%d:%d:%d:%t", nRow, express, offset, r.UseIntegerExpressMatrix)
	if cached, ok := r.matrices.Get(key); ok {
		return cached.(Matrix), nil
	}
	m, err := NewExpressMatrix(nRow, express, offset, r.UseIntegerExpressMatrix)
	if err != nil {
		return nil, err
	}
	r.matrices.Set(key, m, cache.NoExpiration)
	return m, nil
}
