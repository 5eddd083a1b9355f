/*package render turns assembled pole figure grids into raster images and
plain text dumps. Text layout inside the figures is deliberately minimal;
everything a reader needs to identify a panel is encoded in the output file
name.
*/
package render

import (
	"fmt"
	"image/color"
	"math"
)

type gradientStop struct {
	pos     float64
	r, g, b float64
}

// Gradient is a piecewise linear color ramp over [0, 1].
type Gradient struct {
	name  string
	stops []gradientStop
}

// batlowStops approximates the Batlow perceptual colormap with a handful of
// anchor colors.
var batlowStops = []gradientStop{
	{0.00, 0.005, 0.098, 0.349},
	{0.20, 0.078, 0.302, 0.384},
	{0.40, 0.286, 0.427, 0.318},
	{0.60, 0.608, 0.506, 0.200},
	{0.80, 0.937, 0.561, 0.395},
	{1.00, 0.980, 0.800, 0.980},
}

var simpleStops = []gradientStop{
	{0.00, 1.000, 1.000, 1.000},
	{0.50, 1.000, 0.647, 0.000},
	{1.00, 0.700, 0.000, 0.000},
}

// ParseGradient converts a configuration name into a Gradient.
func ParseGradient(name string) (*Gradient, error) {
	switch name {
	case "Batlow":
		return &Gradient{name, batlowStops}, nil
	case "Simple":
		return &Gradient{name, simpleStops}, nil
	}
	return nil, fmt.Errorf("unknown color scale '%s': must be 'Batlow' or 'Simple'", name)
}

func (g *Gradient) Name() string { return g.name }

// At evaluates the ramp at t, clamping t into [0, 1]. NaN maps to the low
// end of the ramp.
func (g *Gradient) At(t float64) color.NRGBA {
	if math.IsNaN(t) || t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	stops := g.stops
	for i := 0; i < len(stops)-1; i++ {
		lo, hi := stops[i], stops[i+1]
		if t > hi.pos {
			continue
		}

		frac := 0.0
		if hi.pos > lo.pos {
			frac = (t - lo.pos) / (hi.pos - lo.pos)
		}
		return color.NRGBA{
			R: toByte(lo.r + (hi.r-lo.r)*frac),
			G: toByte(lo.g + (hi.g-lo.g)*frac),
			B: toByte(lo.b + (hi.b-lo.b)*frac),
			A: 0xff,
		}
	}

	last := stops[len(stops)-1]
	return color.NRGBA{toByte(last.r), toByte(last.g), toByte(last.b), 0xff}
}

func toByte(x float64) uint8 {
	v := math.Round(x * 255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
