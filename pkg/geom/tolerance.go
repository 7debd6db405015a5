package geom

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// Tolerances used throughout the geometry kernel, in mm
const (
	TolMM            = 1e-7 // Two points closer than this are the same point
	MinSegmentLength = 1e-6 // Segments shorter than this are dropped
)

// TolDeg converts a chord tolerance on a circle of the given radius into
// an angular tolerance in degrees.
func TolDeg(tol, radius float64) float64 {
	if radius == 0 {
		return 0
	}
	return tol / radius * 180 / math.Pi
}

// IsClose reports whether a and b differ by at most tol
func IsClose(a, b, tol float64) bool {
	return scalar.EqualWithinAbs(a, b, tol)
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
func radians(deg float64) float64 { return deg * math.Pi / 180 }
