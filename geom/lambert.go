package geom

import (
	"fmt"
	"math"
)

// Hemisphere selects which half of the sphere the Lambert grid is projected
// onto.
type Hemisphere int

const (
	UpperHemisphere Hemisphere = iota
	LowerHemisphere
)

// ParseHemisphere converts a configuration string into a Hemisphere.
func ParseHemisphere(s string) (Hemisphere, error) {
	switch s {
	case "upper":
		return UpperHemisphere, nil
	case "lower":
		return LowerHemisphere, nil
	}
	return 0, fmt.Errorf("unknown hemisphere '%s': must be 'upper' or 'lower'", s)
}

// maskSlack is the tolerance added to the projected disk radius before a
// grid point is masked out.
const maskSlack = 0.001

// LambertGrid is an n x n sampling grid in the Lambert equal-area
// projection. XPlane and ZPlane hold the planar coordinates of every cell,
// X, Y and Z the corresponding unit vectors on the chosen hemisphere, and
// Valid marks the cells that fall inside the projected disk of radius
// sqrt(2). The grid is never mutated after construction, so it can be
// shared freely between goroutines.
type LambertGrid struct {
	N      int
	RPlane float64

	XPlane, ZPlane [][]float64
	X, Y, Z        [][]float64
	Valid          [][]bool
}

// NewLambertGrid builds an n x n grid of planar points spanning
// [-sqrt(2), sqrt(2)] in both directions and maps each point onto the
// requested hemisphere with the inverse Lambert equal-area projection. The
// full sphere's projection fits inside the planar square; points outside
// the disk of radius sqrt(2) keep their slot (downstream indexing relies on
// fixed dimensions) but are marked invalid.
func NewLambertGrid(n int, hemisphere Hemisphere) (*LambertGrid, error) {
	if n < 2 {
		return nil, fmt.Errorf("lambert grid needs at least 2 points per side, got %d", n)
	}

	g := &LambertGrid{N: n, RPlane: math.Sqrt2}

	lin := make([]float64, n)
	for i := range lin {
		lin[i] = -g.RPlane + 2*g.RPlane*float64(i)/float64(n-1)
	}

	g.XPlane = newMatrix(n)
	g.ZPlane = newMatrix(n)
	g.X = newMatrix(n)
	g.Y = newMatrix(n)
	g.Z = newMatrix(n)
	g.Valid = make([][]bool, n)
	for i := range g.Valid {
		g.Valid[i] = make([]bool, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			// Rows run top to bottom, so the planar Z axis is flipped.
			X, Z := lin[j], lin[n-1-i]
			g.XPlane[i][j] = X
			g.ZPlane[i][j] = Z

			s := X*X + Z*Z
			f := math.Sqrt(math.Max(0, 1-s/4))

			x := f * X
			var y, z float64
			if hemisphere == UpperHemisphere {
				y = 1 - s/2
				z = f * Z
			} else {
				y = -(1 - s/2)
				z = f * -Z
			}

			// Guard against round-off before using these as unit vectors.
			mag := math.Sqrt(x*x + y*y + z*z)
			if mag > 0 {
				x, y, z = x/mag, y/mag, z/mag
			}
			g.X[i][j], g.Y[i][j], g.Z[i][j] = x, y, z

			g.Valid[i][j] = math.Sqrt(s) < g.RPlane+maskSlack
		}
	}

	return g, nil
}

// UnitVectors flattens the grid's hemisphere points into a single slice in
// row-major order, the layout OrientationCounts consumes.
func (g *LambertGrid) UnitVectors() [][3]float64 {
	vecs := make([][3]float64, g.N*g.N)
	for i := 0; i < g.N; i++ {
		for j := 0; j < g.N; j++ {
			vecs[i*g.N+j] = [3]float64{g.X[i][j], g.Y[i][j], g.Z[i][j]}
		}
	}
	return vecs
}

func newMatrix(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}
