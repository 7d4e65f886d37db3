package trapmanager

import (
	"github.com/jschewts/arctic/internal/cti/ccd"
	"github.com/jschewts/arctic/internal/cti/trap"
)

// SlowCaptureManager drives a group of species whose capture has a finite
// timescale, so capture and release both act within one dwell time rather
// than release-then-instant-capture (spec.md §4.3.2). It reuses the same
// watermark topology as InstantCaptureManager: insertFull collapses the
// slabs under the new cloud into one, same as the instant case. Since that
// collapsed slab may swallow volume that was already trapped (blending
// toward p_fill_from_full) as well as volume the cloud has newly reached
// (blending toward p_fill_from_empty), the destination passed to insertFull
// is computed per call as the volume-weighted mix of the two rather than a
// constant vector.
type SlowCaptureManager struct {
	*base
}

// NewSlowCaptureManager constructs a manager for one species group.
func NewSlowCaptureManager(species []trap.Species, phase *ccd.Phase) *SlowCaptureManager {
	return &SlowCaptureManager{base: newBase(species, phase, 2)}
}

// ReleaseAndCapture applies one transfer's combined release/capture update.
// Electron accounting is derived from the trapped-electron total before
// and after, since capture and release are not separable passes here.
func (m *SlowCaptureManager) ReleaseAndCapture(nFreeElectrons float64) (float64, error) {
	s := m.stack
	n := m.nSpecies()
	nBefore := s.NTrappedElectrons(m.density)

	vCloud, err := m.ccdPhase.CloudFractionalVolume(nFreeElectrons)
	if err != nil {
		return 0, err
	}

	iFirstActive := s.IFirstActive()
	nActive := s.NActive()
	iAboveActive := s.IAboveActive()

	var iAbove int
	if vCloud > 0 {
		iAbove, _ = s.IndexAboveVolume(vCloud)
	} else {
		iAbove = iFirstActive
	}

	// Slabs at or below the new cloud boundary are about to be collapsed
	// into the new slab by insertFull, so their from-full blend is folded
	// into dest, computed from the fills as they stand before this
	// transfer's release pass.
	var dest []float64
	if vCloud > 0 {
		dest = m.collapseDest(vCloud, iFirstActive, iAboveActive)
	}

	// Slabs from iAbove up keep (the remainder of) their volume above the
	// cloud and only release.
	for i := iAbove; i < iAboveActive; i++ {
		for sp := 0; sp < n; sp++ {
			old := s.FillAt(i, sp)
			target := old * m.pRelease[sp]
			if err := s.SetFillAt(i, sp, target); err != nil {
				return 0, err
			}
		}
	}

	if vCloud > 0 {
		if err := insertFull(s, dest, vCloud, iAbove, iFirstActive, nActive, iAboveActive); err != nil {
			return 0, err
		}
	}

	nAfter := s.NTrappedElectrons(m.density)
	return nBefore - nAfter, nil
}

// collapseDest computes, per species, the fill the new collapsed slab
// should carry when insertFull merges the active slabs under vCloud into
// one: the portion of vCloud that overlaps already-active volume blends
// that slab's existing fill toward p_fill_from_full, while any volume
// beyond the existing active region starts from empty and blends toward
// p_fill_from_empty. Reads the stack's current volumes and fills, so it
// runs before the release pass and insertFull mutate them.
func (m *SlowCaptureManager) collapseDest(vCloud float64, iFirstActive, iAboveActive int) []float64 {
	s := m.stack
	n := m.nSpecies()
	dest := make([]float64, n)

	remaining := vCloud
	for i := iFirstActive; i < iAboveActive && remaining > 0; i++ {
		seg := s.VolumeAt(i)
		if seg > remaining {
			seg = remaining
		}
		for sp := 0; sp < n; sp++ {
			old := s.FillAt(i, sp)
			target := old*m.pFillFromFull[sp] + (1-old)*m.pFillFromEmpty[sp]
			dest[sp] += seg * target
		}
		remaining -= seg
	}
	if remaining > 0 {
		for sp := 0; sp < n; sp++ {
			dest[sp] += remaining * m.pFillFromEmpty[sp]
		}
	}
	for sp := 0; sp < n; sp++ {
		dest[sp] /= vCloud
	}
	return dest
}
