package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/cpo-tools/gocpo/analyze"
	"github.com/cpo-tools/gocpo/geom"
)

const (
	// Gamma is the exponent of the power-law color scale normalization.
	// Changing it changes what the colors mean, so it is fixed rather
	// than configurable.
	Gamma = 1.0

	normalCellPx   = 800
	smallCellPx    = 500
	normalLegendPx = 200
	smallLegendPx  = 150

	// Padding around the projected disk, in planar units.
	planePad = 0.05
)

var (
	white = color.NRGBA{0xff, 0xff, 0xff, 0xff}
	black = color.NRGBA{0x00, 0x00, 0x00, 0xff}
)

// WritePoleFigureSheet renders a pole figure grid to a PNG file. The grid
// is indexed [axis][mineral]; crystal axes run left to right and minerals
// top to bottom, with one color legend strip per mineral on the right.
// Every panel of a mineral row is scaled against that row's shared
// MaxCount, so NormalizeMaxCounts must have run first.
func WritePoleFigureSheet(
	fname string,
	grid [][]*analyze.PoleFigure,
	lam *geom.LambertGrid,
	grad *Gradient,
	small bool,
) error {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return fmt.Errorf("empty pole figure grid")
	}
	nAxes, nMinerals := len(grid), len(grid[0])

	cellPx, legendPx := normalCellPx, normalLegendPx
	if small {
		cellPx, legendPx = smallCellPx, smallLegendPx
	}

	img := image.NewNRGBA(image.Rect(0, 0, nAxes*cellPx+legendPx, nMinerals*cellPx))
	fill(img, white)

	for ai := 0; ai < nAxes; ai++ {
		for mi := 0; mi < nMinerals; mi++ {
			drawPanel(img, grid[ai][mi], lam, grad, ai*cellPx, mi*cellPx, cellPx)
		}
	}
	for mi := 0; mi < nMinerals; mi++ {
		drawLegend(img, grad, nAxes*cellPx, mi*cellPx, legendPx, cellPx)
	}

	f, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("could not create %s: %s", fname, err)
	}

	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("could not encode %s: %s", fname, err)
	}
	return f.Close()
}

// drawPanel rasterizes one density matrix into a cellPx x cellPx square
// with its upper-left corner at (x0, y0). Pixels map linearly onto the
// padded planar square; each one picks up the color of the nearest grid
// cell, or stays white outside the valid disk.
func drawPanel(
	img *image.NRGBA, pf *analyze.PoleFigure, lam *geom.LambertGrid,
	grad *Gradient, x0, y0, cellPx int,
) {
	n := lam.N
	r := lam.RPlane
	span := 2 * (r + planePad)
	step := 2 * r / float64(n-1)

	// Circle line width of roughly two pixels, in planar units.
	lineW := span / float64(cellPx)

	for py := 0; py < cellPx; py++ {
		for px := 0; px < cellPx; px++ {
			X := -r - planePad + (float64(px)+0.5)/float64(cellPx)*span
			Z := r + planePad - (float64(py)+0.5)/float64(cellPx)*span

			rad := math.Sqrt(X*X + Z*Z)
			if math.Abs(rad-r) < lineW {
				img.SetNRGBA(x0+px, y0+py, black)
				continue
			}

			j := int(math.Round((X + r) / step))
			i := n - 1 - int(math.Round((Z+r)/step))
			if i < 0 || i >= n || j < 0 || j >= n || !lam.Valid[i][j] {
				continue
			}

			t := 0.0
			if pf.MaxCount > 0 {
				t = math.Pow(pf.Counts[i][j], Gamma) / math.Pow(pf.MaxCount, Gamma)
			}
			img.SetNRGBA(x0+px, y0+py, grad.At(t))
		}
	}
}

// drawLegend draws a vertical color ramp for one mineral row, low values
// at the bottom.
func drawLegend(img *image.NRGBA, grad *Gradient, x0, y0, legendPx, cellPx int) {
	barW := legendPx / 4
	margin := cellPx / 10
	barH := cellPx - 2*margin

	for py := 0; py < barH; py++ {
		t := 1 - float64(py)/float64(barH-1)
		c := grad.At(t)
		for px := 0; px < barW; px++ {
			img.SetNRGBA(x0+legendPx/4+px, y0+margin+py, c)
		}
	}
}

func fill(img *image.NRGBA, c color.NRGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}
