// Package cti is the root façade: AddCTI and RemoveCTI are the two
// programmatic entry points that translate a direction's ROE, CCD, and
// trap configuration into a clocker.Direction and drive an image through
// it. Everything else in this module is an implementation detail reached
// through here.
package cti

import (
	"context"

	"github.com/jschewts/arctic/internal/cti/ccd"
	"github.com/jschewts/arctic/internal/cti/clocker"
	"github.com/jschewts/arctic/internal/cti/image"
	"github.com/jschewts/arctic/internal/cti/roe"
	"github.com/jschewts/arctic/internal/cti/trap"
)

// Direction bundles one clocking direction's configuration: its ROE
// (dwell times and reset policy), its CCD (cloud-volume mapping), the
// trap species to clock against, and the express/offset/row-window
// parameters. A Direction with a zero-value Traps container clocks
// nothing in that direction — the engine passes electrons through
// unchanged, matching the original's None-able trap-list parameters
// (SPEC_FULL.md §4.8) without threading a nil pointer through the core.
type Direction struct {
	ROE   *roe.ROE
	CCD   *ccd.CCD
	Traps trap.Container

	Express int
	Offset  int
	Start   int
	Stop    int // -1 means "to the end of the column/row"
}

func (d Direction) toClockerDirection() *clocker.Direction {
	if d.Traps.Empty() {
		return nil
	}
	return &clocker.Direction{
		ROE:     d.ROE,
		CCD:     d.CCD,
		Traps:   d.Traps,
		Express: d.Express,
		Offset:  d.Offset,
		Start:   d.Start,
		Stop:    d.Stop,
	}
}

// AddCTI adds charge transfer inefficiency trails to img in place: it
// clocks the parallel direction (down each column) and then the serial
// direction (along each row), each independently configured. Either
// direction may be the zero Direction to skip it.
func AddCTI(ctx context.Context, img image.Image, parallel, serial Direction) error {
	return clocker.AddCTI(ctx, img, parallel.toClockerDirection(), serial.toClockerDirection())
}

// RemoveCTI inverts AddCTI: starting from an observed image, it repeats a
// forward-model-and-subtract-residual step nIterations times (typically
// 3-5) and returns the corrected image. The observed image is never
// mutated.
func RemoveCTI(ctx context.Context, observed image.Image, nIterations int, parallel, serial Direction) (image.Image, error) {
	return clocker.RemoveCTI(ctx, observed, nIterations, parallel.toClockerDirection(), serial.toClockerDirection())
}
