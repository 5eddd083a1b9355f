package render

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGradient(t *testing.T) {
	for _, name := range []string{"Batlow", "Simple"} {
		g, err := ParseGradient(name)
		if err != nil {
			t.Errorf("ParseGradient(%s) failed: %s", name, err)
		} else if g.Name() != name {
			t.Errorf("ParseGradient(%s).Name() = %s.", name, g.Name())
		}
	}

	if _, err := ParseGradient("viridis"); err == nil {
		t.Errorf("ParseGradient accepted 'viridis'.")
	}
}

func TestGradientEndpoints(t *testing.T) {
	g, err := ParseGradient("Simple")
	assert.NoError(t, err)

	assert.Equal(t, color.NRGBA{0xff, 0xff, 0xff, 0xff}, g.At(0), "low end")
	assert.Equal(t, g.At(0), g.At(-0.5), "clamped below")
	assert.Equal(t, g.At(1), g.At(1.5), "clamped above")
	assert.Equal(t, g.At(0), g.At(math.NaN()), "NaN maps to the low end")
}

func TestGradientInterpolates(t *testing.T) {
	g, err := ParseGradient("Simple")
	assert.NoError(t, err)

	// Quarter of the way from white to orange.
	c := g.At(0.25)
	assert.Equal(t, uint8(0xff), c.R, "red stays saturated")
	if c.G >= 0xff || c.B >= 0xff {
		t.Errorf("At(0.25) = %v did not move off white.", c)
	}

	mid := g.At(0.5)
	assert.Equal(t, color.NRGBA{255, 165, 0, 255}, mid, "middle stop")
}
