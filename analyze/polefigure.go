/*package analyze computes orientation statistics for collections of grain
orientations: spherical kernel density estimates and their assembly into
pole figure grids.
*/
package analyze

import (
	"fmt"
)

// Mineral identifies one of the two modeled mineral phases. The value
// doubles as the phase index into grain orientation records.
type Mineral int

const (
	Olivine Mineral = iota
	Enstatite
	MineralCount
)

// ParseMineral converts a configuration name into a Mineral.
func ParseMineral(s string) (Mineral, error) {
	switch s {
	case "Olivine":
		return Olivine, nil
	case "Enstatite":
		return Enstatite, nil
	}
	return 0, fmt.Errorf("unknown mineral '%s': must be 'Olivine' or 'Enstatite'", s)
}

func (m Mineral) String() string {
	switch m {
	case Olivine:
		return "olivine"
	case Enstatite:
		return "enstatite"
	}
	return fmt.Sprintf("Mineral(%d)", int(m))
}

// FilePrefix is the short tag used when composing output file names.
func (m Mineral) FilePrefix() string {
	switch m {
	case Olivine:
		return "oli_"
	case Enstatite:
		return "ens_"
	}
	return "unk_"
}

// CrystalAxis identifies a crystal axis. The value doubles as the row index
// into a grain's rotation matrix.
type CrystalAxis int

const (
	AAxis CrystalAxis = iota
	BAxis
	CAxis
)

// ParseCrystalAxis converts a configuration name into a CrystalAxis.
func ParseCrystalAxis(s string) (CrystalAxis, error) {
	switch s {
	case "AAxis":
		return AAxis, nil
	case "BAxis":
		return BAxis, nil
	case "CAxis":
		return CAxis, nil
	}
	return 0, fmt.Errorf(
		"unknown crystal axis '%s': must be 'AAxis', 'BAxis' or 'CAxis'", s,
	)
}

func (a CrystalAxis) String() string {
	switch a {
	case AAxis:
		return "a-axis"
	case BAxis:
		return "b-axis"
	case CAxis:
		return "c-axis"
	}
	return fmt.Sprintf("CrystalAxis(%d)", int(a))
}

// FilePrefix is the short tag used when composing output file names.
func (a CrystalAxis) FilePrefix() string {
	switch a {
	case AAxis:
		return "A-"
	case BAxis:
		return "B-"
	case CAxis:
		return "C-"
	}
	return "?-"
}

// PoleFigure holds the density field for a single (crystal axis, mineral)
// pair: the n x n count matrix over the sampling grid and the maximum used
// to scale its color map. After NormalizeMaxCounts, MaxCount is shared by
// every axis of the same mineral.
type PoleFigure struct {
	Mineral  Mineral
	Axis     CrystalAxis
	Counts   [][]float64
	MaxCount float64
}

// MaxOf returns the largest entry of a count matrix.
func MaxOf(counts [][]float64) float64 {
	max := 0.0
	for i := range counts {
		for _, c := range counts[i] {
			if c > max {
				max = c
			}
		}
	}
	return max
}

// NormalizeMaxCounts rewrites the MaxCount of every pole figure so that,
// per mineral, all crystal axes share the maximum over that mineral's
// column. The grid is indexed [axis][mineral]. This keeps one color scale
// per mineral row in the final figure.
func NormalizeMaxCounts(grid [][]*PoleFigure) {
	if len(grid) == 0 {
		return
	}

	for mi := range grid[0] {
		max := 0.0
		for ai := range grid {
			if grid[ai][mi].MaxCount > max {
				max = grid[ai][mi].MaxCount
			}
		}
		for ai := range grid {
			grid[ai][mi].MaxCount = max
		}
	}
}
