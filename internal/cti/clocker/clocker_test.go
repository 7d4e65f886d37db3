package clocker

import (
	"context"
	"testing"

	"github.com/jschewts/arctic/internal/cti/ccd"
	"github.com/jschewts/arctic/internal/cti/image"
	"github.com/jschewts/arctic/internal/cti/roe"
	"github.com/jschewts/arctic/internal/cti/trap"
)

func testDirection(t *testing.T) *Direction {
	t.Helper()
	phase, err := ccd.NewPhase(1000, 0, 1)
	if err != nil {
		t.Fatalf("NewPhase: %v", err)
	}
	c, err := ccd.NewCCD(phase)
	if err != nil {
		t.Fatalf("NewCCD: %v", err)
	}
	species, err := trap.NewInstantCapture(10, 3)
	if err != nil {
		t.Fatalf("NewInstantCapture: %v", err)
	}
	group, err := trap.NewGroup(species)
	if err != nil {
		t.Fatalf("NewGroup: %v", err)
	}
	r, err := roe.NewROE([]float64{1})
	if err != nil {
		t.Fatalf("NewROE: %v", err)
	}
	return &Direction{
		ROE:     r,
		CCD:     c,
		Traps:   trap.NewContainer(group),
		Express: 0,
		Stop:    -1,
	}
}

func TestAddCTIWithNoTrapsLeavesImageUnchanged(t *testing.T) {
	img := image.New(5, 3)
	img[2][1] = 100
	before := img.Clone()

	empty := &Direction{Traps: trap.Container{}}
	if err := AddCTI(context.Background(), img, empty, nil); err != nil {
		t.Fatalf("AddCTI: %v", err)
	}
	for r := range img {
		for c := range img[r] {
			if img[r][c] != before[r][c] {
				t.Fatalf("image changed at [%d][%d]: %g != %g", r, c, img[r][c], before[r][c])
			}
		}
	}
}

func TestAddCTIProducesATrailBehindABrightPixel(t *testing.T) {
	nRow, nCol := 10, 1
	img := image.New(nRow, nCol)
	img[0][0] = 500

	dir := testDirection(t)
	if err := AddCTI(context.Background(), img, dir, nil); err != nil {
		t.Fatalf("AddCTI: %v", err)
	}

	if img[0][0] >= 500 {
		t.Fatalf("expected the bright pixel to lose electrons to traps, got %g", img[0][0])
	}
	trailed := false
	for r := 1; r < nRow; r++ {
		if img[r][0] > 0 {
			trailed = true
		}
	}
	if !trailed {
		t.Fatalf("expected a trailing wake of released electrons behind the bright pixel")
	}
}

func TestAddCTINeverIncreasesTotalFreeElectrons(t *testing.T) {
	nRow, nCol := 8, 1
	img := image.New(nRow, nCol)
	img[0][0] = 800
	before := sum(img)

	dir := testDirection(t)
	if err := AddCTI(context.Background(), img, dir, nil); err != nil {
		t.Fatalf("AddCTI: %v", err)
	}

	// Electrons move between pixels and traps; traps that haven't released
	// by the time the column ends hold the difference, so total free
	// electrons can only decrease, never increase.
	after := sum(img)
	if after > before+1e-6 {
		t.Fatalf("free electron total increased: before=%g after=%g", before, after)
	}
}

func TestRemoveCTIRoundTripsThroughAddCTI(t *testing.T) {
	nRow, nCol := 6, 1
	observed := image.New(nRow, nCol)
	observed[0][0] = 400

	dir := testDirection(t)
	corrected, err := RemoveCTI(context.Background(), observed, 3, dir, nil)
	if err != nil {
		t.Fatalf("RemoveCTI: %v", err)
	}

	// Forward-modelling the correction should land close to the original
	// observation (the fixed point the Jacobi iteration is seeking).
	forward := corrected.Clone()
	if err := AddCTI(context.Background(), forward, dir, nil); err != nil {
		t.Fatalf("AddCTI: %v", err)
	}
	for r := range forward {
		diff := forward[r][0] - observed[r][0]
		if diff < 0 {
			diff = -diff
		}
		if diff > 5 {
			t.Fatalf("row %d: forward-modelled correction diverged from observation by %g", r, diff)
		}
	}
}

func sum(img image.Image) float64 {
	total := 0.0
	for _, row := range img {
		for _, v := range row {
			total += v
		}
	}
	return total
}
