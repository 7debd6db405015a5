package geom

import "math"

// BoundingBox is an axis aligned rectangle
type BoundingBox struct {
	Min Vector2D // Top-left corner
	Max Vector2D // Bottom-right corner
}

// NewBoundingBox returns an empty box that grows with Include
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Vector2D{X: math.Inf(1), Y: math.Inf(1)},
		Max: Vector2D{X: math.Inf(-1), Y: math.Inf(-1)},
	}
}

// BoundingBoxOf returns the smallest box containing all points
func BoundingBoxOf(points ...Vector2D) BoundingBox {
	bb := NewBoundingBox()
	for _, p := range points {
		bb.Include(p)
	}
	return bb
}

// IsEmpty reports whether nothing has been included yet
func (bb BoundingBox) IsEmpty() bool {
	return bb.Min.X > bb.Max.X || bb.Min.Y > bb.Max.Y
}

// Include grows the box to contain p
func (bb *BoundingBox) Include(p Vector2D) {
	bb.Min.X = math.Min(bb.Min.X, p.X)
	bb.Min.Y = math.Min(bb.Min.Y, p.Y)
	bb.Max.X = math.Max(bb.Max.X, p.X)
	bb.Max.Y = math.Max(bb.Max.Y, p.Y)
}

// IncludeBox grows the box to contain other
func (bb *BoundingBox) IncludeBox(other BoundingBox) {
	if !other.IsEmpty() {
		bb.Include(other.Min)
		bb.Include(other.Max)
	}
}

// Width returns the horizontal extent
func (bb BoundingBox) Width() float64 {
	return bb.Max.X - bb.Min.X
}

// Height returns the vertical extent
func (bb BoundingBox) Height() float64 {
	return bb.Max.Y - bb.Min.Y
}

// Size returns width and height as a vector
func (bb BoundingBox) Size() Vector2D {
	return Vector2D{X: bb.Width(), Y: bb.Height()}
}

// Center returns the middle of the box
func (bb BoundingBox) Center() Vector2D {
	return bb.Min.Lerp(bb.Max, 0.5)
}

// Contains reports whether p lies within the box (borders included)
func (bb BoundingBox) Contains(p Vector2D) bool {
	return p.X >= bb.Min.X && p.X <= bb.Max.X &&
		p.Y >= bb.Min.Y && p.Y <= bb.Max.Y
}

// Intersects reports whether the boxes overlap or touch
func (bb BoundingBox) Intersects(other BoundingBox) bool {
	return bb.Min.X <= other.Max.X && bb.Max.X >= other.Min.X &&
		bb.Min.Y <= other.Max.Y && bb.Max.Y >= other.Min.Y
}

// Inflated returns the box grown by amount on every side
func (bb BoundingBox) Inflated(amount float64) BoundingBox {
	if bb.IsEmpty() {
		return bb
	}
	d := Vector2D{X: amount, Y: amount}
	return BoundingBox{Min: bb.Min.Sub(d), Max: bb.Max.Add(d)}
}

// Translated returns the box moved by v
func (bb BoundingBox) Translated(v Vector2D) BoundingBox {
	if bb.IsEmpty() {
		return bb
	}
	return BoundingBox{Min: bb.Min.Add(v), Max: bb.Max.Add(v)}
}

// Corners returns the four corners clockwise from the top-left
func (bb BoundingBox) Corners() [4]Vector2D {
	return [4]Vector2D{
		bb.Min,
		{X: bb.Max.X, Y: bb.Min.Y},
		bb.Max,
		{X: bb.Min.X, Y: bb.Max.Y},
	}
}
