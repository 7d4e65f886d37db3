// Package clocker drives an image through the parallel-then-serial
// clocking loop that is the CTI engine's one mutating entry point
// (spec.md §4.5). Columns are mutually independent and fan out across
// goroutines with errgroup; within a column, transfers are strictly
// sequential.
package clocker

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jschewts/arctic/internal/cti/ccd"
	"github.com/jschewts/arctic/internal/cti/diagnostics"
	"github.com/jschewts/arctic/internal/cti/image"
	"github.com/jschewts/arctic/internal/cti/roe"
	"github.com/jschewts/arctic/internal/cti/trap"
	"github.com/jschewts/arctic/internal/cti/trapmanager"
)

// Direction bundles one clocking direction's ROE, CCD, and trap
// configuration, plus the express/offset/window parameters that scope
// which rows of each column are clocked.
type Direction struct {
	ROE   *roe.ROE
	CCD   *ccd.CCD
	Traps trap.Container

	Express int
	Offset  int
	Start   int
	Stop    int // -1 conventionally means "to the end" (spec.md §6.3)
}

// AddCTI adds CTI trails to img by clocking the parallel direction (rows,
// per column) and then the serial direction (columns, per row, via a
// transpose) in place, fanning columns out across goroutines
// (spec.md §4.5).
func AddCTI(ctx context.Context, img image.Image, parallel, serial *Direction) error {
	if err := clockDirection(ctx, img, parallel); err != nil {
		return err
	}
	if serial == nil || serial.Traps.Empty() {
		return nil
	}
	transposed := transpose(img)
	if err := clockDirection(ctx, transposed, serial); err != nil {
		return err
	}
	copyInto(img, transpose(transposed))
	return nil
}

// clockDirection runs one direction's column-by-column clocking,
// fanning out across goroutines with errgroup (spec.md §5: columns are
// mutually independent and embarrassingly parallel; no shared mutable
// state across column workers, so each goroutine gets its own manager
// set, built fresh inside clockColumn).
func clockDirection(ctx context.Context, img image.Image, dir *Direction) error {
	if dir == nil || dir.Traps.Empty() {
		return nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	for c := 0; c < img.NCol(); c++ {
		c := c
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			col := img.Column(c)
			if err := clockColumn(col, dir); err != nil {
				return err
			}
			img.SetColumn(c, col)
			return nil
		})
	}
	return g.Wait()
}

// clockColumn runs dir's express loop over one column, in place. It owns
// its own fresh TrapManager set so it is safe to call concurrently for
// different columns.
func clockColumn(col []float64, dir *Direction) error {
	nRow := len(col)
	stop := dir.Stop
	if stop < 0 || stop > nRow {
		stop = nRow
	}
	start := dir.Start
	if start < 0 {
		start = 0
	}

	managers := trapmanager.NewManagers(dir.Traps, dir.CCD.Phase0())
	maxNTransfers := nRow + dir.Offset
	for _, m := range managers {
		if err := m.Initialise(maxNTransfers); err != nil {
			return err
		}
	}
	dwellTime := dir.ROE.TotalDwellTime()
	for _, m := range managers {
		m.SetFillProbabilitiesFromDwellTime(dwellTime)
	}
	for _, m := range managers {
		m.Store()
	}

	matrix, err := dir.ROE.ExpressMatrix(nRow, dir.Express, dir.Offset)
	if err != nil {
		return err
	}

	pruneCounter := 0
	log := diagnostics.Logger()

	for e := 0; e < matrix.NExpress(); e++ {
		for _, m := range managers {
			m.Restore()
		}
		firstTransferDone := false

		for row := start; row < stop; row++ {
			mult := matrix[e][row]
			if mult <= 0 {
				continue
			}

			pruneCounter++
			if dir.ROE.PruneNElectrons > 0 &&
				col[row] < dir.ROE.PruneNElectrons &&
				pruneCounter%dir.ROE.PruneFrequency != 0 {
				continue
			}

			if dir.ROE.EmptyTrapsForFirstTransfers && !firstTransferDone {
				for _, m := range managers {
					m.Reset()
				}
			}
			firstTransferDone = true

			nFree := col[row]
			if nFree < 0 {
				// A negative pixel (RemoveCTI's correction step can produce
				// one) holds no free electrons for traps to capture.
				nFree = 0
			}
			totalDelta := 0.0
			for _, m := range managers {
				delta, err := m.ReleaseAndCapture(nFree)
				if err != nil {
					return err
				}
				totalDelta += delta
			}
			col[row] += totalDelta * mult
		}
		log.Debug("express iteration complete", "iteration", e)
	}

	if dir.ROE.EmptyTrapsBetweenColumns {
		for _, m := range managers {
			m.Reset()
		}
	}
	return nil
}

func transpose(img image.Image) image.Image {
	nRow, nCol := img.NRow(), img.NCol()
	out := image.New(nCol, nRow)
	for r := 0; r < nRow; r++ {
		for c := 0; c < nCol; c++ {
			out[c][r] = img[r][c]
		}
	}
	return out
}

func copyInto(dst, src image.Image) {
	for r := range dst {
		copy(dst[r], src[r])
	}
}
