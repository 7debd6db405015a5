package geom

import (
	"fmt"
	"math"
)

// Circle is a full circle. A radius of 0 is a valid point circle.
type Circle struct {
	Center Vector2D
	Radius float64
}

// NewCircle returns the circle around center; negative radii are mirrored
func NewCircle(center Vector2D, radius float64) Circle {
	return Circle{Center: center, Radius: math.Abs(radius)}
}

// Translated returns the circle moved by v
func (c Circle) Translated(v Vector2D) Circle {
	return Circle{Center: c.Center.Add(v), Radius: c.Radius}
}

// Rotated returns the circle rotated by angle degrees around origin
func (c Circle) Rotated(angle float64, origin Vector2D) Circle {
	return Circle{Center: c.Center.Rotate(angle, origin), Radius: c.Radius}
}

func (c Circle) Transformed(m Motion) Shape {
	return Circle{Center: m.Apply(c.Center), Radius: c.Radius}
}

// Atoms returns the circle as one full arc starting at angle 0
func (c Circle) Atoms() []Atom {
	return []Atom{c.Arc()}
}

// Arc returns the circle as one full arc starting at angle 0
func (c Circle) Arc() Arc {
	return Arc{Center: c.Center, Start: c.Center.Add(Vector2D{X: c.Radius}), Angle: 360}
}

func (c Circle) BBox() BoundingBox {
	d := Vector2D{X: c.Radius, Y: c.Radius}
	return BoundingBox{Min: c.Center.Sub(d), Max: c.Center.Add(d)}
}

// IsPointOnSelf reports whether p is within tol of the circumference
func (c Circle) IsPointOnSelf(p Vector2D, tol float64) bool {
	return math.Abs(p.Distance(c.Center)-c.Radius) <= tol
}

// IsPointInside reports whether p is enclosed by the circle
func (c Circle) IsPointInside(p Vector2D, strict bool, tol float64) bool {
	d := p.Distance(c.Center)
	if strict {
		return d < c.Radius-tol
	}
	return d <= c.Radius+tol
}

// Inflated returns the circle with its radius changed by amount
func (c Circle) Inflated(amount float64) (ClosedShape, error) {
	if amount < 0 && -amount > c.Radius-TolMM {
		return nil, fmt.Errorf("cannot deflate circle of radius %g by %g: %w", c.Radius, -amount, ErrInvalidShape)
	}
	return Circle{Center: c.Center, Radius: c.Radius + amount}, nil
}

// IsEqual reports whether both circles coincide within tol
func (c Circle) IsEqual(o Circle, tol float64) bool {
	return math.Abs(c.Radius-o.Radius) <= tol && c.Center.IsClose(o.Center, tol)
}
