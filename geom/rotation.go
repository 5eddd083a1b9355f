/*package geom contains the geometric primitives used when turning grain
orientations into points on a hemisphere: Z-X-Z Euler angle conversions and
the Lambert equal-area sampling grid.
*/
package geom

import (
	"math"
)

// RotationMatrix is a 3x3 orthonormal rotation matrix. Its rows are the
// crystal a-, b- and c-axis unit vectors expressed in the sample reference
// frame.
type RotationMatrix [3][3]float64

// ThetaClass classifies the middle Euler angle of a rotation. The two
// degenerate classes lose a degree of freedom (gimbal lock) and need
// separate handling when recovering Euler angles.
type ThetaClass int

const (
	ThetaGeneric ThetaClass = iota
	ThetaZero
	ThetaPi
)

// ClassifyTheta reports which branch of the Euler angle recovery applies to
// the given theta. acos returns exactly 0 and exactly Pi at the endpoints,
// so exact comparison is the right test here.
func ClassifyTheta(theta float64) ThetaClass {
	switch theta {
	case 0:
		return ThetaZero
	case math.Pi:
		return ThetaPi
	}
	return ThetaGeneric
}

// EulerToRotation builds a rotation matrix from proper Z-X-Z Euler angles.
// All angles are in radians.
func EulerToRotation(phi1, theta, phi2 float64) *RotationMatrix {
	sinPhi1, cosPhi1 := math.Sincos(phi1)
	sinTheta, cosTheta := math.Sincos(theta)
	sinPhi2, cosPhi2 := math.Sincos(phi2)

	m := &RotationMatrix{}

	m[0][0] = cosPhi2*cosPhi1 - cosTheta*sinPhi1*sinPhi2
	m[0][1] = -cosPhi2*sinPhi1 - cosTheta*cosPhi1*sinPhi2
	m[0][2] = -sinPhi2 * sinTheta

	m[1][0] = sinPhi2*cosPhi1 + cosTheta*sinPhi1*cosPhi2
	m[1][1] = -sinPhi2*sinPhi1 + cosTheta*cosPhi1*cosPhi2
	m[1][2] = cosPhi2 * sinTheta

	m[2][0] = -sinTheta * sinPhi1
	m[2][1] = -sinTheta * cosPhi1
	m[2][2] = cosTheta

	return m
}

// ToEuler recovers Z-X-Z Euler angles from a rotation matrix. In the
// degenerate theta = 0 and theta = Pi configurations phi1 is fixed at zero
// and phi2 is solved from the remaining entries, so recomposing the angles
// reproduces the input matrix even though the individual angles are not
// unique. All returned angles are normalized into [0, 2*Pi).
func (m *RotationMatrix) ToEuler() (phi1, theta, phi2 float64) {
	theta = math.Acos(m[2][2])

	switch ClassifyTheta(theta) {
	case ThetaGeneric:
		sinTheta := math.Sin(theta)
		phi1 = math.Atan2(m[2][0]/-sinTheta, m[2][1]/-sinTheta)
		phi2 = math.Atan2(m[0][2]/-sinTheta, m[1][2]/sinTheta)
	case ThetaZero:
		phi1 = 0
		phi2 = -phi1 - math.Atan2(m[0][1], m[0][0])
	case ThetaPi:
		phi1 = 0
		phi2 = phi1 + math.Atan2(m[0][1], m[0][0])
	}

	return wrapAngle(phi1), wrapAngle(theta), wrapAngle(phi2)
}

// wrapAngle maps x into [0, 2*Pi).
func wrapAngle(x float64) float64 {
	return x - 2*math.Pi*math.Floor(x/(2*math.Pi))
}

// Row returns the i'th row of the matrix as a unit vector.
func (m *RotationMatrix) Row(i int) [3]float64 {
	return [3]float64{m[i][0], m[i][1], m[i][2]}
}

// Determinant computes the determinant of the matrix. Proper rotations
// have determinant +1.
func (m *RotationMatrix) Determinant() float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}
