package trapmanager

import (
	"math"
	"testing"

	"github.com/jschewts/arctic/internal/cti/ccd"
	"github.com/jschewts/arctic/internal/cti/trap"
)

func testPhase(t *testing.T) *ccd.Phase {
	t.Helper()
	p, err := ccd.NewPhase(1000, 0, 1)
	if err != nil {
		t.Fatalf("NewPhase: %v", err)
	}
	return p
}

func newTestInstantManager(t *testing.T, density, releaseTimescale float64) *InstantCaptureManager {
	t.Helper()
	sp, err := trap.NewInstantCapture(density, releaseTimescale)
	if err != nil {
		t.Fatalf("NewInstantCapture: %v", err)
	}
	m := NewInstantCaptureManager([]trap.Species{sp}, testPhase(t))
	if err := m.Initialise(10); err != nil {
		t.Fatalf("Initialise: %v", err)
	}
	m.SetFillProbabilitiesFromDwellTime(1.0)
	return m
}

func TestInstantCaptureManagerFirstCaptureFillsBottomSlab(t *testing.T) {
	m := newTestInstantManager(t, 10, 1)

	delta, err := m.ReleaseAndCapture(500)
	if err != nil {
		t.Fatalf("ReleaseAndCapture: %v", err)
	}
	if delta >= 0 {
		t.Fatalf("expected net capture (negative delta) on first transfer, got %g", delta)
	}
	if m.stack.NActive() != 1 {
		t.Fatalf("expected one active watermark, got %d", m.stack.NActive())
	}
	if got := m.stack.VolumeAt(m.stack.IFirstActive()); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("expected bottom slab volume 0.5 for n_e=500 of full_well=1000, got %g", got)
	}
	if got := m.stack.FillAt(m.stack.IFirstActive(), 0); got != 1 {
		t.Fatalf("expected bottom slab fully filled, got %g", got)
	}
}

func TestInstantCaptureManagerNoCaptureWhenCloudEmpty(t *testing.T) {
	m := newTestInstantManager(t, 10, 1)

	delta, err := m.ReleaseAndCapture(0)
	if err != nil {
		t.Fatalf("ReleaseAndCapture: %v", err)
	}
	if delta != 0 {
		t.Fatalf("expected zero delta for an empty cloud, got %g", delta)
	}
	if m.stack.NActive() != 0 {
		t.Fatalf("expected no active watermarks, got %d", m.stack.NActive())
	}
}

func TestInstantCaptureManagerReleaseAfterCapture(t *testing.T) {
	m := newTestInstantManager(t, 10, 1)

	if _, err := m.ReleaseAndCapture(500); err != nil {
		t.Fatalf("first transfer: %v", err)
	}
	trappedBefore := m.NTrappedElectrons()
	if trappedBefore <= 0 {
		t.Fatalf("expected electrons trapped after first capture, got %g", trappedBefore)
	}

	// A much smaller cloud on the next transfer should only release, net
	// positive electrons returned to the free pool, and never push trapped
	// electrons negative or above what was already held.
	delta, err := m.ReleaseAndCapture(1)
	if err != nil {
		t.Fatalf("second transfer: %v", err)
	}
	trappedAfter := m.NTrappedElectrons()
	if trappedAfter > trappedBefore {
		t.Fatalf("trapped electrons should not increase on a release-dominated transfer: before=%g after=%g", trappedBefore, trappedAfter)
	}
	_ = delta
}

func TestInstantCaptureManagerSumVolumesStaysWithinPixel(t *testing.T) {
	m := newTestInstantManager(t, 10, 5)

	for _, n := range []float64{100, 900, 50, 999, 1, 600} {
		if _, err := m.ReleaseAndCapture(n); err != nil {
			t.Fatalf("ReleaseAndCapture(%g): %v", n, err)
		}
		if sum := m.stack.SumVolumes(); sum > 1+1e-9 {
			t.Fatalf("watermark volumes should never exceed the pixel: sum=%g after n=%g", sum, n)
		}
	}
}

func TestInstantCaptureManagerPartialCaptureBlendsTowardEnough(t *testing.T) {
	// A huge density with a tiny electron count forces the partial-capture
	// branch: not enough electrons exist to fill even the smallest cloud's
	// worth of empty traps.
	m := newTestInstantManager(t, 1e6, 1)

	delta, err := m.ReleaseAndCapture(1)
	if err != nil {
		t.Fatalf("ReleaseAndCapture: %v", err)
	}
	if delta >= 0 {
		t.Fatalf("expected net capture even in the partial-capture branch, got %g", delta)
	}
	fill := m.stack.FillAt(m.stack.IFirstActive(), 0)
	if fill <= 0 || fill >= 1 {
		t.Fatalf("expected a partial fill strictly between 0 and 1, got %g", fill)
	}
}

func TestInstantCaptureManagerStoreRestoreRoundTrips(t *testing.T) {
	m := newTestInstantManager(t, 10, 1)
	if _, err := m.ReleaseAndCapture(500); err != nil {
		t.Fatalf("ReleaseAndCapture: %v", err)
	}
	m.Store()

	if _, err := m.ReleaseAndCapture(900); err != nil {
		t.Fatalf("second ReleaseAndCapture: %v", err)
	}

	m.Restore()
	if got := m.stack.NActive(); got != 1 {
		t.Fatalf("expected restored state to have one active watermark, got %d", got)
	}
	if got := m.stack.VolumeAt(m.stack.IFirstActive()); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("restored bottom slab volume should be 0.5, got %g", got)
	}
}

func TestSlowCaptureManagerConvergesTowardEquilibrium(t *testing.T) {
	sp, err := trap.NewSlowCapture(10, 1, 1)
	if err != nil {
		t.Fatalf("NewSlowCapture: %v", err)
	}
	m := NewSlowCaptureManager([]trap.Species{sp}, testPhase(t))
	if err := m.Initialise(20); err != nil {
		t.Fatalf("Initialise: %v", err)
	}
	m.SetFillProbabilitiesFromDwellTime(1.0)

	var trapped float64
	for i := 0; i < 10; i++ {
		if _, err := m.ReleaseAndCapture(500); err != nil {
			t.Fatalf("ReleaseAndCapture iteration %d: %v", i, err)
		}
		trapped = m.NTrappedElectrons()
		if trapped < 0 {
			t.Fatalf("trapped electron count went negative at iteration %d: %g", i, trapped)
		}
	}
	if trapped == 0 {
		t.Fatalf("expected some electrons trapped after repeated exposure to a steady cloud")
	}
}

func TestNewManagerDispatchesOnDisciplineAndCaptureKind(t *testing.T) {
	phase := testPhase(t)

	instant, _ := trap.NewInstantCapture(10, 1)
	slow, _ := trap.NewSlowCapture(10, 1, 1)
	instantContinuum, _ := trap.NewInstantCaptureContinuum(10, 1, 0.5)
	slowContinuum, _ := trap.NewSlowCaptureContinuum(10, 1, 1, 0.5)

	cases := []struct {
		name    string
		species trap.Species
		want    string
	}{
		{"instant", instant, "*trapmanager.InstantCaptureManager"},
		{"slow", slow, "*trapmanager.SlowCaptureManager"},
		{"instant-continuum", instantContinuum, "*trapmanager.InstantCaptureContinuumManager"},
		{"slow-continuum", slowContinuum, "*trapmanager.SlowCaptureContinuumManager"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			g, err := trap.NewGroup(c.species)
			if err != nil {
				t.Fatalf("NewGroup: %v", err)
			}
			mgr := NewManager(g, phase)
			got := typeName(mgr)
			if got != c.want {
				t.Fatalf("NewManager(%s) = %s, want %s", c.name, got, c.want)
			}
		})
	}
}

func typeName(m Manager) string {
	switch m.(type) {
	case *InstantCaptureManager:
		return "*trapmanager.InstantCaptureManager"
	case *SlowCaptureManager:
		return "*trapmanager.SlowCaptureManager"
	case *InstantCaptureContinuumManager:
		return "*trapmanager.InstantCaptureContinuumManager"
	case *SlowCaptureContinuumManager:
		return "*trapmanager.SlowCaptureContinuumManager"
	default:
		return "unknown"
	}
}
