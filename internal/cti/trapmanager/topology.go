package trapmanager

import "github.com/jschewts/arctic/internal/cti/watermark"

// insertFull grows the active watermark window to cover vCloud, writing
// dest[s] as the fill fraction of every species in the newly-covered
// region. InstantCaptureManager calls this with dest all 1s (full
// capture); SlowCaptureManager calls it with the volume-weighted mix of
// p_fill_from_full and p_fill_from_empty that collapseDest computes,
// reusing the same four topology cases (spec.md §4.3.1, §4.3.2). The
// cells a collapse leaves below the new bottom slab are reset to the
// empty sentinel.
func insertFull(s *watermark.Stack, dest []float64, vCloud float64, iAbove, iFirstActive, nActive, iAboveActive int) error {
	n := len(dest)

	switch {
	case nActive == 0:
		if err := s.SetVolumeAt(0, vCloud); err != nil {
			return err
		}
		for sp := 0; sp < n; sp++ {
			if err := s.SetFillAt(0, sp, dest[sp]); err != nil {
				return err
			}
		}
		return s.SetActiveWindow(0, 1)

	case iAbove == iFirstActive:
		if err := s.GrowBelow(); err != nil {
			return err
		}
		bottom := s.IFirstActive()
		if err := s.SetVolumeAt(bottom+1, s.VolumeAt(bottom+1)-vCloud); err != nil {
			return err
		}
		if err := s.SetVolumeAt(bottom, vCloud); err != nil {
			return err
		}
		for sp := 0; sp < n; sp++ {
			if err := s.SetFillAt(bottom, sp, dest[sp]); err != nil {
				return err
			}
		}
		return s.SetActiveWindow(bottom, nActive+1)

	case iAbove == iAboveActive:
		newFirst := iAbove - 1
		for i := iFirstActive; i < newFirst; i++ { // indices are in range: they were active
			_ = s.SetVolumeAt(i, 0)
			for sp := 0; sp < n; sp++ {
				_ = s.SetFillAt(i, sp, 0)
			}
		}
		if err := s.SetVolumeAt(newFirst, vCloud); err != nil {
			return err
		}
		for sp := 0; sp < n; sp++ {
			if err := s.SetFillAt(newFirst, sp, dest[sp]); err != nil {
				return err
			}
		}
		return s.SetActiveWindow(newFirst, 1)

	default:
		previousTotal := 0.0
		for i := iFirstActive; i <= iAbove; i++ {
			previousTotal += s.VolumeAt(i)
		}
		if err := s.SetVolumeAt(iAbove, previousTotal-vCloud); err != nil {
			return err
		}
		newNActive := nActive + iFirstActive - iAbove + 1
		newFirst := iAbove - 1
		for i := iFirstActive; i < newFirst; i++ { // indices are in range: they were active
			_ = s.SetVolumeAt(i, 0)
			for sp := 0; sp < n; sp++ {
				_ = s.SetFillAt(i, sp, 0)
			}
		}
		if err := s.SetVolumeAt(newFirst, vCloud); err != nil {
			return err
		}
		for sp := 0; sp < n; sp++ {
			if err := s.SetFillAt(newFirst, sp, dest[sp]); err != nil {
				return err
			}
		}
		return s.SetActiveWindow(newFirst, newNActive)
	}
}

// insertPartial is the `enough < 1` analogue of insertFull: every newly
// reached slab is blended toward dest[s] by the fraction enough rather
// than set outright, so slabs that already held a fill keep (1-enough) of
// it. In the cloud-below-the-stack case the new bottom slab's fill is
// dest[s]*enough.
func insertPartial(s *watermark.Stack, dest []float64, enough, vCloud float64, iAbove, iFirstActive, nActive, iAboveActive int) error {
	n := len(dest)

	switch {
	case nActive == 0:
		if err := s.SetVolumeAt(0, vCloud); err != nil {
			return err
		}
		for sp := 0; sp < n; sp++ {
			if err := s.SetFillAt(0, sp, dest[sp]*enough); err != nil {
				return err
			}
		}
		return s.SetActiveWindow(0, 1)

	case iAbove == iFirstActive:
		if err := s.GrowBelow(); err != nil {
			return err
		}
		bottom := s.IFirstActive()
		if err := s.SetVolumeAt(bottom+1, s.VolumeAt(bottom+1)-vCloud); err != nil {
			return err
		}
		if err := s.SetVolumeAt(bottom, vCloud); err != nil {
			return err
		}
		for sp := 0; sp < n; sp++ {
			if err := s.SetFillAt(bottom, sp, dest[sp]*enough); err != nil {
				return err
			}
		}
		return s.SetActiveWindow(bottom, nActive+1)

	case iAbove == iAboveActive:
		volumeBelow := 0.0
		for i := iFirstActive; i < iAbove; i++ {
			volumeBelow += s.VolumeAt(i)
		}
		if err := s.SetVolumeAt(iAbove, vCloud-volumeBelow); err != nil {
			return err
		}
		newNActive := nActive + 1
		for i := iFirstActive; i < iFirstActive+newNActive; i++ {
			for sp := 0; sp < n; sp++ {
				f := s.FillAt(i, sp)
				if err := s.SetFillAt(i, sp, f*(1-enough)+dest[sp]*enough); err != nil {
					return err
				}
			}
		}
		return s.SetActiveWindow(iFirstActive, newNActive)

	default:
		if err := s.ShiftUpFrom(iAbove); err != nil {
			return err
		}
		volumeBelow := 0.0
		for i := iFirstActive; i < iAbove; i++ {
			volumeBelow += s.VolumeAt(i)
		}
		newVolume := vCloud - volumeBelow
		if err := s.SetVolumeAt(iAbove, newVolume); err != nil {
			return err
		}
		if err := s.SetVolumeAt(iAbove+1, s.VolumeAt(iAbove+1)-newVolume); err != nil {
			return err
		}
		newNActive := nActive + 1
		for i := iFirstActive; i <= iAbove; i++ {
			for sp := 0; sp < n; sp++ {
				f := s.FillAt(i, sp)
				if err := s.SetFillAt(i, sp, f*(1-enough)+dest[sp]*enough); err != nil {
					return err
				}
			}
		}
		return s.SetActiveWindow(iFirstActive, newNActive)
	}
}
