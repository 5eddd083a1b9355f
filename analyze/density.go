package analyze

import (
	"fmt"
	"math"

	"github.com/cpo-tools/gocpo/geom"
)

// OrientationCounts estimates a smoothed orientation density field from a
// set of unit vectors, following the contouring method of Robin and Jowett
// (Tectonophysics, 1986): each vector contributes a spherical Gaussian
// weight exp(k*(cos(alpha)-1)) to every grid point, where alpha is the
// angle between them. The absolute value of the dot product makes the
// statistic antipodally symmetric, which is what crystal axes without
// polarity need.
//
// The concentration k follows table 3, grown with the sample count but
// capped at 100, and the counts are scaled so a uniform distribution sits
// three standard deviations (eq 13b) below an even value. These constants
// define the units of the output density and are kept verbatim.
//
// Every grid point is evaluated, including points outside the valid
// projection disk; applying the mask is the consumer's job.
func OrientationCounts(vecs [][3]float64, grid *geom.LambertGrid) ([][]float64, error) {
	n := len(vecs)
	if n == 0 {
		return nil, fmt.Errorf("orientation counts need at least one vector")
	}

	k := math.Min(100, 2*(1+float64(n)/9))
	stdDev := math.Sqrt(float64(n) * (k/2 - 1) / (k * k))
	norm := 3 * stdDev

	counts := make([][]float64, grid.N)
	for i := range counts {
		counts[i] = make([]float64, grid.N)
		for j := range counts[i] {
			gx, gy, gz := grid.X[i][j], grid.Y[i][j], grid.Z[i][j]

			sum := 0.0
			for _, v := range vecs {
				cosAlpha := math.Abs(v[0]*gx + v[1]*gy + v[2]*gz)
				sum += math.Exp(k * (cosAlpha - 1))
			}
			counts[i][j] = sum / norm
		}
	}

	return counts, nil
}
