package trapmanager

import (
	"github.com/jschewts/arctic/internal/cti/ccd"
	"github.com/jschewts/arctic/internal/cti/trap"
)

// InstantCaptureManager drives a group of InstantCapture species through
// the release-then-instant-capture algorithm (spec.md §4.3.1), ported line for
// line from the reference release_and_capture implementation.
type InstantCaptureManager struct {
	*base
	full []float64 // all-1s destination vector, lazily sized to nSpecies
}

// NewInstantCaptureManager constructs a manager for one species group. One
// new watermark can be created per transfer (n_watermarks_per_transfer=1):
// the capture is treated as instantaneous, so a transfer adds at most one
// slab, splitting at most one existing slab at the cloud boundary.
func NewInstantCaptureManager(species []trap.Species, phase *ccd.Phase) *InstantCaptureManager {
	return &InstantCaptureManager{base: newBase(species, phase, 1)}
}

// ReleaseAndCapture runs one transfer's release then capture and returns
// the net electron delta: positive means traps handed electrons back to
// the free cloud, negative means the cloud lost electrons to traps.
func (m *InstantCaptureManager) ReleaseAndCapture(nFreeElectrons float64) (float64, error) {
	nReleased, err := m.release()
	if err != nil {
		return 0, err
	}
	nCaptured, err := m.capture(nFreeElectrons + nReleased)
	if err != nil {
		return 0, err
	}
	return nReleased - nCaptured, nil
}

func (m *InstantCaptureManager) release() (float64, error) {
	s := m.stack
	n := m.nSpecies()
	nReleased := 0.0
	for i := s.IFirstActive(); i < s.IAboveActive(); i++ {
		thisSlab := 0.0
		for sp := 0; sp < n; sp++ {
			delta := s.FillAt(i, sp) * m.pEmptyRelease[sp]
			thisSlab += delta * m.density[sp]
			if err := s.SetFillAt(i, sp, s.FillAt(i, sp)-delta); err != nil {
				return 0, err
			}
		}
		nReleased += thisSlab * s.VolumeAt(i)
	}
	return nReleased, nil
}

// capture mirrors n_electrons_captured: nFreeElectrons here is already
// n_free + n_released, the total pool available for trapping.
func (m *InstantCaptureManager) capture(nFreeElectrons float64) (float64, error) {
	s := m.stack
	n := m.nSpecies()

	vCloud, err := m.ccdPhase.CloudFractionalVolume(nFreeElectrons)
	if err != nil {
		return 0, err
	}
	if vCloud == 0 {
		return 0, nil
	}

	iAbove, _ := s.IndexAboveVolume(vCloud)

	nWouldCapture := 0.0
	cumulative := 0.0
	nextCumulative := 0.0
	for i := s.IFirstActive(); i <= iAbove; i++ {
		thisSlab := 0.0
		cumulative = nextCumulative
		nextCumulative += s.VolumeAt(i)
		for sp := 0; sp < n; sp++ {
			thisSlab += (1 - s.FillAt(i, sp)) * m.density[sp]
		}
		if i == iAbove {
			nWouldCapture += thisSlab * (vCloud - cumulative)
		} else {
			nWouldCapture += thisSlab * (nextCumulative - cumulative)
		}
	}

	enough := nFreeElectrons / nWouldCapture
	iFirstActive := s.IFirstActive()
	nActive := s.NActive()
	iAboveActive := s.IAboveActive()

	if m.full == nil || len(m.full) != n {
		m.full = make([]float64, n)
		for sp := range m.full {
			m.full[sp] = 1
		}
	}

	if enough >= 1.0 {
		if err := insertFull(s, m.full, vCloud, iAbove, iFirstActive, nActive, iAboveActive); err != nil {
			return 0, err
		}
		return nWouldCapture, nil
	}

	nCaptured := nWouldCapture * enough
	if err := insertPartial(s, m.full, enough, vCloud, iAbove, iFirstActive, nActive, iAboveActive); err != nil {
		return 0, err
	}
	return nCaptured, nil
}
