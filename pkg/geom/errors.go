package geom

import (
	"errors"
	"fmt"
)

var (
	// ErrAmbiguousArc is returned when an arc is given a center and a start
	// point but neither a sweep angle nor an end point.
	ErrAmbiguousArc = errors.New("arc needs either an angle or an end point")

	// ErrCollinearArc is returned for three-point arcs whose points lie on a line
	ErrCollinearArc = errors.New("points are collinear, this is not an arc")

	// ErrIdenticalCircles is returned when intersecting a circle with itself
	ErrIdenticalCircles = errors.New("identical circles have infinitely many intersections")

	// ErrInvalidShape is returned when an operation leaves no valid outline
	ErrInvalidShape = errors.New("operation results in an invalid shape")

	// ErrZeroLength is returned when a direction is requested from a zero vector
	ErrZeroLength = errors.New("vector has zero length")
)

// ToleranceError reports a value that is off by more than the allowed tolerance
type ToleranceError struct {
	What     string  // Quantity that was checked
	Expected float64 // Value it should have had
	Actual   float64 // Value it had
	Tol      float64 // Allowed deviation
}

func (e *ToleranceError) Error() string {
	return fmt.Sprintf("%s: expected %g, got %g (residual %g exceeds tolerance %g)",
		e.What, e.Expected, e.Actual, e.Actual-e.Expected, e.Tol)
}
