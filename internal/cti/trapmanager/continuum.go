package trapmanager

import (
	"math"

	"github.com/jschewts/arctic/internal/cti/ccd"
	"github.com/jschewts/arctic/internal/cti/trap"
)

// survivalFraction is the fraction of a log-normal-distributed continuum of
// traps still holding their electron after elapsed time t: traps whose
// individual release timescale exceeds t haven't released yet, so this is
// the complementary CDF of the log-normal timescale distribution
// evaluated at t, which has a closed form in terms of the error function
// (spec.md §4.3.2).
func survivalFraction(elapsed, medianTimescale, shape float64) float64 {
	if elapsed <= 0 {
		return 1
	}
	cdf := 0.5 * (1 + math.Erf(math.Log(elapsed/medianTimescale)/(shape*math.Sqrt2)))
	return 1 - cdf
}

// continuumBase extends base with the per-species (median, shape) pairs
// and interprets the stack's "fill" buffer as an elapsed-time watermark: a
// slab's fills[i,s] is time elapsed since that slab's electrons were
// captured, not a fill fraction. NTrappedElectrons overrides the base's
// fraction-based computation accordingly.
type continuumBase struct {
	*base
	medianTimescale []float64
	shape           []float64
	dwellTime       float64
	zero            []float64
}

func newContinuumBase(species []trap.Species, phase *ccd.Phase, nWatermarksPerTransfer int) *continuumBase {
	n := len(species)
	median := make([]float64, n)
	shape := make([]float64, n)
	for i, sp := range species {
		c, ok := sp.(trap.Continuum)
		if !ok {
			continue
		}
		median[i] = c.MedianReleaseTimescale()
		shape[i] = c.Shape()
	}
	return &continuumBase{
		base:            newBase(species, phase, nWatermarksPerTransfer),
		medianTimescale: median,
		shape:           shape,
		zero:            make([]float64, n),
	}
}

func (m *continuumBase) SetFillProbabilitiesFromDwellTime(dwellTime float64) {
	m.base.SetFillProbabilitiesFromDwellTime(dwellTime)
	m.dwellTime = dwellTime
}

// NTrappedElectrons sums density-weighted survival fractions over the
// active window instead of reading fills as fractions directly.
func (m *continuumBase) NTrappedElectrons() float64 {
	s := m.stack
	n := m.nSpecies()
	total := 0.0
	for i := s.IFirstActive(); i < s.IAboveActive(); i++ {
		row := 0.0
		for sp := 0; sp < n; sp++ {
			elapsed := s.FillAt(i, sp)
			row += survivalFraction(elapsed, m.medianTimescale[sp], m.shape[sp]) * m.density[sp]
		}
		total += row * s.VolumeAt(i)
	}
	return total
}

func (m *continuumBase) age() error {
	s := m.stack
	n := m.nSpecies()
	for i := s.IFirstActive(); i < s.IAboveActive(); i++ {
		for sp := 0; sp < n; sp++ {
			if err := s.SetFillAt(i, sp, s.FillAt(i, sp)+m.dwellTime); err != nil {
				return err
			}
		}
	}
	return nil
}

// InstantCaptureContinuumManager is the elapsed-time-watermark analogue of
// InstantCaptureManager: capture is instantaneous, but release integrates
// over a continuum of timescales rather than one fixed emission rate.
type InstantCaptureContinuumManager struct {
	*continuumBase
}

func NewInstantCaptureContinuumManager(species []trap.Species, phase *ccd.Phase) *InstantCaptureContinuumManager {
	return &InstantCaptureContinuumManager{continuumBase: newContinuumBase(species, phase, 1)}
}

func (m *InstantCaptureContinuumManager) ReleaseAndCapture(nFreeElectrons float64) (float64, error) {
	nBefore := m.NTrappedElectrons()
	if err := m.age(); err != nil {
		return 0, err
	}
	nAfterAge := m.NTrappedElectrons()
	nReleased := nBefore - nAfterAge

	s := m.stack
	vCloud, err := m.ccdPhase.CloudFractionalVolume(nFreeElectrons + nReleased)
	if err != nil {
		return 0, err
	}
	if vCloud == 0 {
		return nReleased, nil
	}

	iFirstActive, nActive, iAboveActive := s.IFirstActive(), s.NActive(), s.IAboveActive()
	iAbove, _ := s.IndexAboveVolume(vCloud)

	n := m.nSpecies()
	nWouldCapture := 0.0
	cumulative, next := 0.0, 0.0
	for i := iFirstActive; i <= iAbove; i++ {
		cumulative = next
		next += s.VolumeAt(i)
		row := 0.0
		for sp := 0; sp < n; sp++ {
			row += (1 - survivalFraction(s.FillAt(i, sp), m.medianTimescale[sp], m.shape[sp])) * m.density[sp]
		}
		if i == iAbove {
			nWouldCapture += row * (vCloud - cumulative)
		} else {
			nWouldCapture += row * (next - cumulative)
		}
	}

	total := nFreeElectrons + nReleased
	enough := total / nWouldCapture
	var nCaptured float64
	if enough >= 1.0 {
		if err := insertFull(s, m.zero, vCloud, iAbove, iFirstActive, nActive, iAboveActive); err != nil {
			return 0, err
		}
		nCaptured = nWouldCapture
	} else {
		if err := insertPartial(s, m.zero, enough, vCloud, iAbove, iFirstActive, nActive, iAboveActive); err != nil {
			return 0, err
		}
		nCaptured = nWouldCapture * enough
	}
	return nReleased - nCaptured, nil
}

// SlowCaptureContinuumManager combines a finite capture timescale with a
// continuum of release timescales.
type SlowCaptureContinuumManager struct {
	*continuumBase
}

func NewSlowCaptureContinuumManager(species []trap.Species, phase *ccd.Phase) *SlowCaptureContinuumManager {
	return &SlowCaptureContinuumManager{continuumBase: newContinuumBase(species, phase, 2)}
}

// ReleaseAndCapture ages the elapsed-time watermark for release and grows
// the watermark window for capture, blending new slabs' ages toward zero
// in proportion to the fraction of demand that could be met. Mirrors
// InstantCaptureContinuumManager's nWouldCapture/enough split so a cloud too
// small to fill every newly-reached trap only partially resets their ages,
// rather than always collapsing to age zero regardless of how many
// electrons are actually available.
func (m *SlowCaptureContinuumManager) ReleaseAndCapture(nFreeElectrons float64) (float64, error) {
	nBefore := m.NTrappedElectrons()
	if err := m.age(); err != nil {
		return 0, err
	}

	s := m.stack
	vCloud, err := m.ccdPhase.CloudFractionalVolume(nFreeElectrons)
	if err != nil {
		return 0, err
	}
	if vCloud == 0 {
		return nBefore - m.NTrappedElectrons(), nil
	}

	iFirstActive, nActive, iAboveActive := s.IFirstActive(), s.NActive(), s.IAboveActive()
	iAbove, _ := s.IndexAboveVolume(vCloud)

	n := m.nSpecies()
	nWouldCapture := 0.0
	cumulative, next := 0.0, 0.0
	for i := iFirstActive; i <= iAbove; i++ {
		cumulative = next
		next += s.VolumeAt(i)
		row := 0.0
		for sp := 0; sp < n; sp++ {
			row += (1 - survivalFraction(s.FillAt(i, sp), m.medianTimescale[sp], m.shape[sp])) * m.density[sp]
		}
		if i == iAbove {
			nWouldCapture += row * (vCloud - cumulative)
		} else {
			nWouldCapture += row * (next - cumulative)
		}
	}

	enough := nFreeElectrons / nWouldCapture
	if enough >= 1.0 {
		if err := insertFull(s, m.zero, vCloud, iAbove, iFirstActive, nActive, iAboveActive); err != nil {
			return 0, err
		}
	} else {
		if err := insertPartial(s, m.zero, enough, vCloud, iAbove, iFirstActive, nActive, iAboveActive); err != nil {
			return 0, err
		}
	}

	nAfter := m.NTrappedElectrons()
	return nBefore - nAfter, nil
}
