package trapmanager

import (
	"github.com/jschewts/arctic/internal/cti/ccd"
	"github.com/jschewts/arctic/internal/cti/trap"
)

// NewManager picks the concrete Manager implementation for a trap group,
// dispatching on discipline and on whether every species in the group
// treats capture as instantaneous (spec.md §3.1, §4.3.2).
func NewManager(group trap.Group, phase *ccd.Phase) Manager {
	allInstant := true
	for _, s := range group.Species {
		if !s.IsInstantCapture() {
			allInstant = false
			break
		}
	}

	switch group.Discipline() {
	case trap.ElapsedTime:
		if allInstant {
			return NewInstantCaptureContinuumManager(group.Species, phase)
		}
		return NewSlowCaptureContinuumManager(group.Species, phase)
	default:
		if allInstant {
			return NewInstantCaptureManager(group.Species, phase)
		}
		return NewSlowCaptureManager(group.Species, phase)
	}
}

// NewManagers builds one Manager per group in a container.
func NewManagers(c trap.Container, phase *ccd.Phase) []Manager {
	managers := make([]Manager, len(c.Groups))
	for i, g := range c.Groups {
		managers[i] = NewManager(g, phase)
	}
	return managers
}
