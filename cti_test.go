package cti

import (
	"context"
	"testing"

	"github.com/jschewts/arctic/internal/cti/ccd"
	"github.com/jschewts/arctic/internal/cti/image"
	"github.com/jschewts/arctic/internal/cti/roe"
	"github.com/jschewts/arctic/internal/cti/trap"
)

func testDirection(t *testing.T) Direction {
	t.Helper()
	phase, err := ccd.NewPhase(1000, 0, 1)
	if err != nil {
		t.Fatalf("NewPhase: %v", err)
	}
	c, err := ccd.NewCCD(phase)
	if err != nil {
		t.Fatalf("NewCCD: %v", err)
	}
	species, err := trap.NewInstantCapture(10, 1)
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
	return Direction{
		ROE:   r,
		CCD:   c,
		Traps: trap.NewContainer(group),
		Stop:  -1,
	}
}

func TestAddCTIWithZeroDirectionsLeavesImageUnchanged(t *testing.T) {
	img := image.New(4, 2)
	img[1][0] = 50
	before := img.Clone()

	if err := AddCTI(context.Background(), img, Direction{}, Direction{}); err != nil {
		t.Fatalf("AddCTI: %v", err)
	}
	for r := range img {
		for c := range img[r] {
			if img[r][c] != before[r][c] {
				t.Fatalf("image changed at [%d][%d]", r, c)
			}
		}
	}
}

func TestAddCTIStopMinusOneMeansEntireColumn(t *testing.T) {
	nRow := 6
	img := image.New(nRow, 1)
	img[0][0] = 300

	dir := testDirection(t)
	dir.Stop = -1
	if err := AddCTI(context.Background(), img, dir, Direction{}); err != nil {
		t.Fatalf("AddCTI: %v", err)
	}
	if img[nRow-1][0] == 0 {
		t.Fatalf("expected the trail to reach the last row when stop=-1, got %v", img)
	}
}

func TestRemoveCTIRecoversObservedImage(t *testing.T) {
	observed := image.New(5, 1)
	observed[0][0] = 200

	dir := testDirection(t)
	corrected, err := RemoveCTI(context.Background(), observed, 5, dir, Direction{})
	if err != nil {
		t.Fatalf("RemoveCTI: %v", err)
	}

	forward := corrected.Clone()
	if err := AddCTI(context.Background(), forward, dir, Direction{}); err != nil {
		t.Fatalf("AddCTI: %v", err)
	}
	for r := range forward {
		diff := forward[r][0] - observed[r][0]
		if diff < 0 {
			diff = -diff
		}
		if diff > 1 {
			t.Fatalf("row %d: residual %g too large after correction", r, diff)
		}
	}
}

func TestAddCTIEmptyImageIsInvariant(t *testing.T) {
	img := image.New(4, 3)
	dir := testDirection(t)
	if err := AddCTI(context.Background(), img, dir, Direction{}); err != nil {
		t.Fatalf("AddCTI: %v", err)
	}
	for r := range img {
		for c := range img[r] {
			if img[r][c] != 0 {
				t.Fatalf("zero image changed at [%d][%d] = %g", r, c, img[r][c])
			}
		}
	}
}
