package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLambertGridTooSmall(t *testing.T) {
	for _, n := range []int{-1, 0, 1} {
		if _, err := NewLambertGrid(n, UpperHemisphere); err == nil {
			t.Errorf("NewLambertGrid(%d) did not fail.", n)
		}
	}
}

func TestLambertGridUnitVectors(t *testing.T) {
	for _, hemi := range []Hemisphere{UpperHemisphere, LowerHemisphere} {
		g, err := NewLambertGrid(21, hemi)
		assert.NoError(t, err)

		for i := 0; i < g.N; i++ {
			for j := 0; j < g.N; j++ {
				norm := math.Sqrt(
					g.X[i][j]*g.X[i][j] + g.Y[i][j]*g.Y[i][j] + g.Z[i][j]*g.Z[i][j],
				)
				if math.Abs(norm-1) > 1e-12 {
					t.Errorf("hemisphere %d: point (%d, %d) has norm %g.",
						hemi, i, j, norm)
				}
			}
		}
	}
}

func TestLambertGridOrientation(t *testing.T) {
	g, err := NewLambertGrid(5, UpperHemisphere)
	assert.NoError(t, err)

	// Columns run left to right, rows top to bottom.
	assert.InDelta(t, -math.Sqrt2, g.XPlane[0][0], 1e-12, "left column")
	assert.InDelta(t, math.Sqrt2, g.XPlane[0][4], 1e-12, "right column")
	assert.InDelta(t, math.Sqrt2, g.ZPlane[0][0], 1e-12, "top row")
	assert.InDelta(t, -math.Sqrt2, g.ZPlane[4][0], 1e-12, "bottom row")
}

func TestLambertGridCenterAndCorners(t *testing.T) {
	g, err := NewLambertGrid(11, UpperHemisphere)
	assert.NoError(t, err)

	mid := g.N / 2
	assert.True(t, g.Valid[mid][mid], "center valid")
	assert.InDelta(t, 1, g.Y[mid][mid], 1e-12, "center points at the pole")

	// Corner cells sit at planar radius 2, outside the projected disk.
	for _, idx := range [][2]int{{0, 0}, {0, 10}, {10, 0}, {10, 10}} {
		if g.Valid[idx[0]][idx[1]] {
			t.Errorf("corner (%d, %d) was not masked out.", idx[0], idx[1])
		}
	}

	low, err := NewLambertGrid(11, LowerHemisphere)
	assert.NoError(t, err)
	assert.InDelta(t, -1, low.Y[mid][mid], 1e-12, "lower center points down")
}

func TestLambertGridUnitVectorsLayout(t *testing.T) {
	g, err := NewLambertGrid(7, UpperHemisphere)
	assert.NoError(t, err)

	vecs := g.UnitVectors()
	assert.Equal(t, g.N*g.N, len(vecs), "length")

	for i := 0; i < g.N; i++ {
		for j := 0; j < g.N; j++ {
			v := vecs[i*g.N+j]
			if v[0] != g.X[i][j] || v[1] != g.Y[i][j] || v[2] != g.Z[i][j] {
				t.Errorf("flattened vector (%d, %d) does not match the grid.", i, j)
			}
		}
	}
}

func TestParseHemisphere(t *testing.T) {
	h, err := ParseHemisphere("upper")
	assert.NoError(t, err)
	assert.Equal(t, UpperHemisphere, h, "upper")

	h, err = ParseHemisphere("lower")
	assert.NoError(t, err)
	assert.Equal(t, LowerHemisphere, h, "lower")

	if _, err := ParseHemisphere("sideways"); err == nil {
		t.Errorf("ParseHemisphere accepted 'sideways'.")
	}
}
