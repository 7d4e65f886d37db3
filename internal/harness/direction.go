package harness

import (
	"github.com/jschewts/arctic/internal/cti/ccd"
	"github.com/jschewts/arctic/internal/cti/roe"
	"github.com/jschewts/arctic/internal/cti/trap"

	cti "github.com/jschewts/arctic"
)

// build turns a DirectionConfig into a cti.Direction, constructing the
// ROE, CCD, and trap.Container it describes. A nil DirectionConfig
// builds the zero Direction, which the façade treats as "skip this
// direction".
func (dc *DirectionConfig) build() (cti.Direction, error) {
	if dc == nil {
		return cti.Direction{}, nil
	}

	phase, err := ccd.NewPhase(dc.FullWellDepth, dc.WellNotchDepth, dc.WellFillPower)
	if err != nil {
		return cti.Direction{}, err
	}
	c, err := ccd.NewCCD(phase)
	if err != nil {
		return cti.Direction{}, err
	}

	species := make([]trap.Species, 0, len(dc.Traps))
	for _, tc := range dc.Traps {
		s, err := tc.Species()
		if err != nil {
			return cti.Direction{}, err
		}
		species = append(species, s)
	}
	group, err := trap.NewGroup(species...)
	if err != nil {
		return cti.Direction{}, err
	}

	r, err := roe.NewROE(dc.DwellTimes,
		roe.WithEmptyTrapsBetweenColumns(dc.EmptyTrapsBetweenColumns),
		roe.WithEmptyTrapsForFirstTransfers(dc.EmptyTrapsForFirstTransfers),
	)
	if err != nil {
		return cti.Direction{}, err
	}

	return cti.Direction{
		ROE:     r,
		CCD:     c,
		Traps:   trap.NewContainer(group),
		Express: dc.Express,
		Offset:  dc.Offset,
		Start:   dc.Start,
		Stop:    dc.Stop,
	}, nil
}
