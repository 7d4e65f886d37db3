package trap

import (
	"strconv"

	"github.com/jschewts/arctic/internal/cti/cerrors"
)

// Group is a list of species that share a watermarking discipline and so
// may be managed by a single TrapManager (spec.md §3.1).
type Group struct {
	Species []Species
}

// Discipline returns the shared discipline of the group. Callers must
// validate the group with NewGroup first; an empty group has no defined
// discipline and returns Occupancy by convention.
func (g Group) Discipline() Discipline {
	if len(g.Species) == 0 {
		return Occupancy
	}
	return g.Species[0].Discipline()
}

// NewGroup validates that every species shares one discipline and returns
// the Group, or a ConfigurationError naming the offending species index.
func NewGroup(species ...Species) (Group, error) {
	if len(species) == 0 {
		return Group{}, nil
	}
	want := species[0].Discipline()
	for i, s := range species {
		if s.Discipline() != want {
			return Group{}, &cerrors.ConfigurationError{
				Component: "trap",
				Field:     "discipline",
				Message: "species must share a watermarking discipline within a group " +
					"(mixed occupancy/elapsed-time species at index " + strconv.Itoa(i) + ")",
			}
		}
	}
	return Group{Species: species}, nil
}

// Container holds one or more Groups for a clocking direction (parallel or
// serial). Absence of a species group is represented as an empty
// Container, never a nil pointer (spec.md §9), so the façade never needs
// to distinguish "no traps configured" from "a pointer to no traps".
type Container struct {
	Groups []Group
}

// NewContainer wraps groups into a Container. It does no validation of
// its own; each Group is validated when built with NewGroup.
func NewContainer(groups ...Group) Container {
	return Container{Groups: groups}
}

// Empty reports whether the container has no species at all, i.e. this
// direction's clocking has no traps and the engine should pass electrons
// through unchanged.
func (c Container) Empty() bool {
	for _, g := range c.Groups {
		if len(g.Species) > 0 {
			return false
		}
	}
	return true
}
