// Package trapmanager drives one watermark.Stack through the
// release-then-capture transfer update for a group of trap species that
// share a watermarking discipline (spec.md §4.3).
//
// A Manager is the per-group, per-pixel state machine: it owns one
// watermark.Stack plus the fill-probability coefficients derived from the
// dwell time, and exposes ReleaseAndCapture as the single mutating
// operation a Clocker calls once per transfer.
package trapmanager

import (
	"math"

	"github.com/jschewts/arctic/internal/cti/ccd"
	"github.com/jschewts/arctic/internal/cti/trap"
	"github.com/jschewts/arctic/internal/cti/watermark"
)

// Manager is the common contract every trap-group state machine satisfies
// (spec.md §4.3). Species is dispatched through trap.Species rather than a
// type switch; InstantCapture, SlowCapture, and the continuum variants each
// get their own Manager implementation sharing the base type below.
type Manager interface {
	Initialise(maxNTransfers int) error
	Reset()
	Store()
	Restore()
	SetFillProbabilitiesFromDwellTime(dwellTime float64)
	NTrappedElectrons() float64
	ReleaseAndCapture(nFreeElectrons float64) (float64, error)
}

// base holds the fields and bookkeeping every Manager variant needs: the
// species list, their extracted per-species rates, the CCD phase used to
// map electron counts to cloud volume, and the watermark stack itself.
type base struct {
	species  []trap.Species
	density  []float64
	capture  []float64
	emit     []float64
	ccdPhase *ccd.Phase

	nWatermarksPerTransfer int
	stack                  *watermark.Stack

	pFillFromEmpty []float64
	pFillFromFull  []float64
	pRelease       []float64
	pEmptyRelease  []float64
}

func newBase(species []trap.Species, phase *ccd.Phase, nWatermarksPerTransfer int) *base {
	n := len(species)
	density := make([]float64, n)
	capture := make([]float64, n)
	emit := make([]float64, n)
	for i, s := range species {
		density[i] = s.Density()
		capture[i] = s.CaptureRate()
		emit[i] = s.EmissionRate()
	}
	return &base{
		species:                species,
		density:                density,
		capture:                capture,
		emit:                   emit,
		ccdPhase:               phase,
		nWatermarksPerTransfer: nWatermarksPerTransfer,
		pFillFromEmpty:         make([]float64, n),
		pFillFromFull:          make([]float64, n),
		pRelease:               make([]float64, n),
		pEmptyRelease:          make([]float64, n),
	}
}

func (b *base) nSpecies() int { return len(b.species) }

// Initialise allocates the watermark stack at capacity N =
// max_n_transfers*n_watermarks_per_transfer + 1 (spec.md §3.3).
func (b *base) Initialise(maxNTransfers int) error {
	capacity := watermark.Capacity(maxNTransfers, b.nWatermarksPerTransfer)
	b.stack = watermark.NewStack(b.nSpecies(), capacity)
	return nil
}

func (b *base) Reset() { b.stack.Reset() }

func (b *base) Store() { b.stack.Store() }

func (b *base) Restore() { b.stack.Restore() }

// SetFillProbabilitiesFromDwellTime precomputes, per species, the fill
// fractions reachable within one dwell time (spec.md §4.3, Lindegren 1998
// §3.2). Instant-capture species (capture_rate == 0) fill completely
// whenever they get the chance.
func (b *base) SetFillProbabilitiesFromDwellTime(dwellTime float64) {
	for i := range b.species {
		totalRate := b.capture[i] + b.emit[i]
		var exponentialFactor float64
		if totalRate > 0 {
			exponentialFactor = (1 - math.Exp(-totalRate*dwellTime)) / totalRate
		}

		if b.capture[i] == 0 {
			b.pFillFromEmpty[i] = 1
		} else {
			b.pFillFromEmpty[i] = b.capture[i] * exponentialFactor
		}
		b.pFillFromFull[i] = 1 - b.emit[i]*exponentialFactor
		b.pRelease[i] = math.Exp(-b.emit[i] * dwellTime)
		b.pEmptyRelease[i] = 1 - b.pRelease[i]
	}
}

// NTrappedElectrons sums volumes[i]*fills[i,s]*density[s] over the active
// window (spec.md §4.3).
func (b *base) NTrappedElectrons() float64 {
	return b.stack.NTrappedElectrons(b.density)
}
