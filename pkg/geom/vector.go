// Package geom is the 2D geometry kernel used to build footprints.
//
// Coordinates are millimetres in the board coordinate system: X grows to the
// right and Y grows downwards. Angles are degrees. A positive rotation turns
// a point clockwise as seen on the board, which is the mathematical
// counter-clockwise direction with the Y axis flipped.
package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vector2D is a point or a direction in the board plane
type Vector2D struct {
	X float64
	Y float64
}

// Vec is shorthand for Vector2D{X: x, Y: y}
func Vec(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

func (v Vector2D) r2() r2.Vec { return r2.Vec{X: v.X, Y: v.Y} }

func fromR2(p r2.Vec) Vector2D { return Vector2D{X: p.X, Y: p.Y} }

// Add returns v + o
func (v Vector2D) Add(o Vector2D) Vector2D {
	return fromR2(r2.Add(v.r2(), o.r2()))
}

// Sub returns v - o
func (v Vector2D) Sub(o Vector2D) Vector2D {
	return fromR2(r2.Sub(v.r2(), o.r2()))
}

// Scale returns v * f
func (v Vector2D) Scale(f float64) Vector2D {
	return fromR2(r2.Scale(f, v.r2()))
}

// Neg returns -v
func (v Vector2D) Neg() Vector2D {
	return Vector2D{X: -v.X, Y: -v.Y}
}

// Dot returns the dot product of v and o
func (v Vector2D) Dot(o Vector2D) float64 {
	return r2.Dot(v.r2(), o.r2())
}

// Cross returns the z component of the cross product v x o
func (v Vector2D) Cross(o Vector2D) float64 {
	return r2.Cross(v.r2(), o.r2())
}

// Norm returns the euclidean length of v
func (v Vector2D) Norm() float64 {
	return r2.Norm(v.r2())
}

// Distance returns the distance between v and o
func (v Vector2D) Distance(o Vector2D) float64 {
	return v.Sub(o).Norm()
}

// IsClose reports whether v and o are at most tol apart
func (v Vector2D) IsClose(o Vector2D, tol float64) bool {
	return v.Distance(o) <= tol
}

// Normalize returns the unit vector in the direction of v.
// Vectors shorter than tol have no direction and yield ErrZeroLength.
func (v Vector2D) Normalize(tol float64) (Vector2D, error) {
	n := v.Norm()
	if n <= tol {
		return Vector2D{}, fmt.Errorf("failed to normalize %v: %w", v, ErrZeroLength)
	}
	return v.Scale(1 / n), nil
}

// Resize returns a vector with the direction of v and the given length
func (v Vector2D) Resize(length, tol float64) (Vector2D, error) {
	u, err := v.Normalize(tol)
	if err != nil {
		return Vector2D{}, err
	}
	return u.Scale(length), nil
}

// Orthogonal returns v turned by 90 degrees: (-y, x)
func (v Vector2D) Orthogonal() Vector2D {
	return Vector2D{X: -v.Y, Y: v.X}
}

// Rotate returns v rotated by angle degrees around origin
func (v Vector2D) Rotate(angle float64, origin Vector2D) Vector2D {
	if angle == 0 {
		return v
	}
	return fromR2(r2.Rotate(v.r2(), radians(angle), origin.r2()))
}

// Angle returns the direction of v in degrees, in (-180, 180]
func (v Vector2D) Angle() float64 {
	a := degrees(math.Atan2(v.Y, v.X))
	if a <= -180 {
		a += 360
	}
	return a
}

// ToPolar returns the length and direction of v relative to origin
func (v Vector2D) ToPolar(origin Vector2D) (radius, angle float64) {
	d := v.Sub(origin)
	return d.Norm(), d.Angle()
}

// FromPolar returns the point at the given distance and direction from origin
func FromPolar(radius, angle float64, origin Vector2D) Vector2D {
	rad := radians(angle)
	return Vector2D{
		X: origin.X + radius*math.Cos(rad),
		Y: origin.Y + radius*math.Sin(rad),
	}
}

// Lerp returns the point at fraction t on the way from v to o
func (v Vector2D) Lerp(o Vector2D, t float64) Vector2D {
	return v.Add(o.Sub(v).Scale(t))
}

// RoundToGrid rounds both components away from zero onto the grid
func (v Vector2D) RoundToGrid(grid float64) Vector2D {
	return Vector2D{X: RoundToGrid(v.X, grid), Y: RoundToGrid(v.Y, grid)}
}

// String formats v as "(x, y)"
func (v Vector2D) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}
