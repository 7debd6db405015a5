package geom

// Shape is implemented by every geometric primitive of the kernel
type Shape interface {
	// BBox returns the axis aligned bounding box of the outline
	BBox() BoundingBox
	// IsPointOnSelf reports whether p lies on the outline within tol
	IsPointOnSelf(p Vector2D, tol float64) bool
	// Atoms decomposes the outline into lines and arcs
	Atoms() []Atom
	// Transformed returns a copy moved by m
	Transformed(m Motion) Shape
}

// Atom is a line or an arc, the segments every outline decomposes into
type Atom interface {
	Shape
	StartPoint() Vector2D
	EndPoint() Vector2D
	MidPoint() Vector2D
	Length() float64
	// Reversed returns the same segment traversed from end to start
	Reversed() Atom
}

// ClosedShape is a shape with an inside
type ClosedShape interface {
	Shape
	// IsPointInside reports whether p is enclosed by the outline. Points on
	// the outline count as inside unless strict is set.
	IsPointInside(p Vector2D, strict bool, tol float64) bool
	// Inflated returns the outline grown (amount > 0) or shrunk (amount < 0)
	Inflated(amount float64) (ClosedShape, error)
}

// Motion is a rigid transformation: a rotation around Origin followed by a
// translation by Offset
type Motion struct {
	Angle  float64  // Rotation in degrees
	Origin Vector2D // Pivot of the rotation
	Offset Vector2D // Translation applied after the rotation
}

// Translation returns a motion that only translates
func Translation(v Vector2D) Motion {
	return Motion{Offset: v}
}

// Rotation returns a motion that only rotates
func Rotation(angle float64, origin Vector2D) Motion {
	return Motion{Angle: angle, Origin: origin}
}

// Apply moves p
func (m Motion) Apply(p Vector2D) Vector2D {
	return p.Rotate(m.Angle, m.Origin).Add(m.Offset)
}

// Then returns the motion that applies m first and next afterwards.
// The result is expressed as a rotation around (0, 0) plus an offset.
func (m Motion) Then(next Motion) Motion {
	return Motion{
		Angle:  m.Angle + next.Angle,
		Offset: next.Apply(m.Apply(Vector2D{})),
	}
}

// TranslateShape returns s moved by v
func TranslateShape(s Shape, v Vector2D) Shape {
	return s.Transformed(Translation(v))
}

// RotateShape returns s rotated by angle degrees around origin
func RotateShape(s Shape, angle float64, origin Vector2D) Shape {
	return s.Transformed(Rotation(angle, origin))
}
