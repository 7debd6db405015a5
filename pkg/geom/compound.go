package geom

import (
	"fmt"
	"math"
)

// CompoundPolygon is a closed outline made of lines and arcs, each segment
// starting where the previous one ends
type CompoundPolygon struct {
	Segments []Atom
}

// PathElement is one entry of the outline stream of a compound polygon:
// either a corner point or an arc
type PathElement struct {
	Point Vector2D
	Arc   *Arc // Set for arc elements
}

// NewCompoundPolygon appends the segments one after the other. A segment
// given backwards is reversed. If the last segment does not end at the
// start of the first one, a closing line is added.
func NewCompoundPolygon(segments ...Atom) (CompoundPolygon, error) {
	var out []Atom
	for _, s := range segments {
		if s.Length() < MinSegmentLength {
			continue
		}
		if len(out) == 0 {
			out = append(out, s)
			continue
		}
		end := out[len(out)-1].EndPoint()
		switch {
		case s.StartPoint().IsClose(end, TolMM):
			out = append(out, s)
		case s.EndPoint().IsClose(end, TolMM):
			out = append(out, s.Reversed())
		default:
			return CompoundPolygon{}, fmt.Errorf("segment starting at %v does not continue the outline at %v: %w",
				s.StartPoint(), end, ErrInvalidShape)
		}
	}
	if len(out) == 0 {
		return CompoundPolygon{}, fmt.Errorf("compound polygon without segments: %w", ErrInvalidShape)
	}
	if first, last := out[0].StartPoint(), out[len(out)-1].EndPoint(); !first.IsClose(last, TolMM) {
		out = append(out, Line{Start: last, End: first})
	}
	return CompoundPolygon{Segments: out}, nil
}

// CompoundFromShape returns the outline of a closed shape as a compound polygon
func CompoundFromShape(s ClosedShape) CompoundPolygon {
	if c, ok := s.(CompoundPolygon); ok {
		return c
	}
	return CompoundPolygon{Segments: append([]Atom(nil), s.Atoms()...)}
}

func (c CompoundPolygon) Atoms() []Atom { return c.Segments }

func (c CompoundPolygon) BBox() BoundingBox { return bboxOfAtoms(c.Segments) }

// Translated returns the outline moved by v
func (c CompoundPolygon) Translated(v Vector2D) CompoundPolygon {
	return CompoundPolygon{Segments: transformAtoms(c.Segments, Translation(v))}
}

// Rotated returns the outline rotated by angle degrees around origin
func (c CompoundPolygon) Rotated(angle float64, origin Vector2D) CompoundPolygon {
	return CompoundPolygon{Segments: transformAtoms(c.Segments, Rotation(angle, origin))}
}

func (c CompoundPolygon) Transformed(m Motion) Shape {
	return CompoundPolygon{Segments: transformAtoms(c.Segments, m)}
}

func (c CompoundPolygon) IsPointOnSelf(p Vector2D, tol float64) bool {
	for _, s := range c.Segments {
		if s.IsPointOnSelf(p, tol) {
			return true
		}
	}
	return false
}

func (c CompoundPolygon) IsPointInside(p Vector2D, strict bool, tol float64) bool {
	return pointInOutline(c.Segments, p, strict, tol)
}

// Area returns the enclosed area
func (c CompoundPolygon) Area() float64 {
	return math.Abs(SignedArea(c.Segments))
}

// IsClockwise reports whether the outline turns clockwise on the board
func (c CompoundPolygon) IsClockwise() bool {
	return SignedArea(c.Segments) > 0
}

// MakeClockwise returns the outline traversed clockwise
func (c CompoundPolygon) MakeClockwise() CompoundPolygon {
	if c.IsClockwise() {
		return c
	}
	return CompoundPolygon{Segments: reverseLoop(c.Segments)}
}

// HasArcs reports whether any segment is an arc
func (c CompoundPolygon) HasArcs() bool {
	for _, s := range c.Segments {
		if _, ok := s.(Arc); ok {
			return true
		}
	}
	return false
}

// Polygon returns the corner points when the outline has no arcs
func (c CompoundPolygon) Polygon() (Polygon, bool) {
	if c.HasArcs() {
		return Polygon{}, false
	}
	return polygonFromLines(c.Segments), true
}

// PointsAndArcs returns the outline as a stream of corner points and arcs.
// A corner point that coincides with the start of the following arc is
// left out, as is a closing point equal to the first one.
func (c CompoundPolygon) PointsAndArcs() []PathElement {
	var out []PathElement
	var last *Vector2D
	for _, s := range c.Segments {
		switch a := s.(type) {
		case Arc:
			if last != nil && len(out) > 0 && out[len(out)-1].Arc == nil && last.IsClose(a.Start, TolMM) {
				out = out[:len(out)-1]
			}
			arc := a
			out = append(out, PathElement{Arc: &arc})
			end := a.EndPoint()
			last = &end
		default:
			if last == nil {
				out = append(out, PathElement{Point: s.StartPoint()})
			}
			end := s.EndPoint()
			out = append(out, PathElement{Point: end})
			last = &end
		}
	}
	if len(out) > 1 && out[len(out)-1].Arc == nil && c.Segments[0].StartPoint().IsClose(*last, TolMM) {
		out = out[:len(out)-1]
	}
	return out
}

// Simplify drops short segments, removes loops split off by self
// intersections and merges colinear lines and arcs on the same circle
func (c CompoundPolygon) Simplify() (CompoundPolygon, error) {
	atoms, err := simplifyOutline(c.Segments, TolMM)
	if err != nil {
		return CompoundPolygon{}, err
	}
	return CompoundPolygon{Segments: atoms}, nil
}

// Inflated grows (amount > 0) or shrinks (amount < 0) the outline. Lines
// move along their outward normal and arcs change their radius. Corners
// that open up are closed with an arc around the original corner, corners
// that overlap are trimmed at the intersection of their segments.
func (c CompoundPolygon) Inflated(amount float64) (ClosedShape, error) {
	out, err := c.inflate(amount, TolMM)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c CompoundPolygon) inflate(amount, tol float64) (CompoundPolygon, error) {
	src := c.MakeClockwise()
	if amount == 0 {
		return src, nil
	}
	var offset, originals []Atom
	for _, s := range src.Segments {
		o, ok := offsetAtom(s, amount)
		if !ok {
			continue
		}
		offset = append(offset, o)
		originals = append(originals, s)
	}
	n := len(offset)
	if n == 0 {
		return CompoundPolygon{}, fmt.Errorf("inflation by %g removes every segment: %w", amount, ErrInvalidShape)
	}

	// joints[k] is inserted between offset[k-1] and offset[k]
	joints := make([]Atom, n)
	for k := 0; k < n; k++ {
		prev := (k - 1 + n) % n
		corner := originals[k].StartPoint()
		pe, ns := offset[prev].EndPoint(), offset[k].StartPoint()
		if pe.IsClose(ns, tol) {
			continue
		}
		if !pe.IsClose(corner, tol) {
			if gap, err := NewArcEnds(corner, pe, ns, false); err == nil && gap.Angle*amount > 0 {
				joints[k] = gap
				continue
			}
		}
		pts := intersectAtoms(offset[prev], offset[k], intersectOptions{infinite: true, tol: tol})
		if len(pts) == 0 {
			joints[k] = Line{Start: pe, End: ns}
			continue
		}
		p := closestPoint(pts, corner)
		offset[prev] = withEnd(offset[prev], p)
		offset[k] = withStart(offset[k], p)
	}

	var atoms []Atom
	for k := 0; k < n; k++ {
		if joints[k] != nil {
			atoms = append(atoms, joints[k])
		}
		if amount < 0 && isFlipped(offset[k], originals[k], tol) {
			return CompoundPolygon{}, fmt.Errorf("deflation by %g turns a segment around: %w", -amount, ErrInvalidShape)
		}
		atoms = append(atoms, offset[k])
	}
	atoms = removeShortAtoms(atoms, MinSegmentLength)
	if len(atoms) == 0 || SignedArea(atoms) <= 0 {
		return CompoundPolygon{}, fmt.Errorf("inflation by %g results in an invalid shape: %w", amount, ErrInvalidShape)
	}
	return CompoundPolygon{Segments: atoms}.Simplify()
}

// offsetAtom moves a segment of a clockwise outline outwards by amount. Arcs
// shrunk below zero radius are dropped.
func offsetAtom(s Atom, amount float64) (Atom, bool) {
	switch a := s.(type) {
	case Line:
		dir, err := a.UnitDirection()
		if err != nil {
			return nil, false
		}
		off := dir.Orthogonal().Neg().Scale(amount)
		return Line{Start: a.Start.Add(off), End: a.End.Add(off)}, true
	case Arc:
		r := a.Radius()
		nr := r + amount
		if a.Angle < 0 {
			nr = r - amount
		}
		if nr < 0 || r == 0 {
			return nil, false
		}
		start := a.Center.Add(a.Start.Sub(a.Center).Scale(nr / r))
		return Arc{Center: a.Center, Start: start, Angle: a.Angle}, true
	}
	return s, true
}

// isFlipped reports whether trimming turned a segment against its original
// direction
func isFlipped(s, orig Atom, tol float64) bool {
	switch a := s.(type) {
	case Line:
		o := orig.(Line)
		return a.Direction().Dot(o.Direction()) <= 0 && a.Length() > tol
	case Arc:
		o := orig.(Arc)
		return a.Angle*o.Angle < 0 && a.Length() > tol
	}
	return false
}

func closestPoint(pts []Vector2D, to Vector2D) Vector2D {
	best := pts[0]
	for _, p := range pts[1:] {
		if p.Distance(to) < best.Distance(to) {
			best = p
		}
	}
	return best
}
