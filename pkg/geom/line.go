package geom

import (
	"math"
	"sort"
)

// Line is a straight segment from Start to End
type Line struct {
	Start Vector2D
	End   Vector2D
}

// NewLine returns the segment from start to end
func NewLine(start, end Vector2D) Line {
	return Line{Start: start, End: end}
}

func (l Line) StartPoint() Vector2D { return l.Start }
func (l Line) EndPoint() Vector2D   { return l.End }

// MidPoint returns the point halfway between start and end
func (l Line) MidPoint() Vector2D {
	return l.Start.Lerp(l.End, 0.5)
}

// Length returns the length of the segment
func (l Line) Length() float64 {
	return l.Start.Distance(l.End)
}

// Direction returns End - Start
func (l Line) Direction() Vector2D {
	return l.End.Sub(l.Start)
}

// UnitDirection returns the normalized direction of the segment
func (l Line) UnitDirection() (Vector2D, error) {
	return l.Direction().Normalize(TolMM)
}

// Angle returns the direction of the segment in degrees
func (l Line) Angle() float64 {
	return l.Direction().Angle()
}

// Reversed returns the segment from End to Start
func (l Line) Reversed() Atom {
	return Line{Start: l.End, End: l.Start}
}

// Homogeneous returns the line through the segment in homogeneous coordinates
func (l Line) Homogeneous() [3]float64 {
	s, e := l.Start, l.End
	return [3]float64{s.Y - e.Y, e.X - s.X, s.X*e.Y - s.Y*e.X}
}

// Translated returns the segment moved by v
func (l Line) Translated(v Vector2D) Line {
	return Line{Start: l.Start.Add(v), End: l.End.Add(v)}
}

// Rotated returns the segment rotated by angle degrees around origin
func (l Line) Rotated(angle float64, origin Vector2D) Line {
	return Line{Start: l.Start.Rotate(angle, origin), End: l.End.Rotate(angle, origin)}
}

func (l Line) moved(m Motion) Line {
	return Line{Start: m.Apply(l.Start), End: m.Apply(l.End)}
}

func (l Line) Transformed(m Motion) Shape { return l.moved(m) }

func (l Line) BBox() BoundingBox {
	return BoundingBoxOf(l.Start, l.End)
}

func (l Line) Atoms() []Atom { return []Atom{l} }

// IsPointOnSelf reports whether p is within tol of the segment
func (l Line) IsPointOnSelf(p Vector2D, tol float64) bool {
	return l.isPointOnSegment(p, false, tol)
}

// DistanceToPoint returns the distance from p to the closest point of the segment
func (l Line) DistanceToPoint(p Vector2D) float64 {
	d := l.Direction()
	n2 := d.Dot(d)
	if n2 == 0 {
		return p.Distance(l.Start)
	}
	t := math.Max(0, math.Min(1, p.Sub(l.Start).Dot(d)/n2))
	return p.Distance(l.Start.Add(d.Scale(t)))
}

func (l Line) isPointOnSegment(p Vector2D, excludeEnds bool, tol float64) bool {
	if l.DistanceToPoint(p) > tol {
		return false
	}
	if excludeEnds && (p.IsClose(l.Start, tol) || p.IsClose(l.End, tol)) {
		return false
	}
	return true
}

// isPointWithinExtent checks a point already known to be on the infinite
// line against the extent of the segment
func (l Line) isPointWithinExtent(p Vector2D, excludeEnds bool, tol float64) bool {
	bb := l.BBox()
	if p.X < bb.Min.X-tol || p.X > bb.Max.X+tol || p.Y < bb.Min.Y-tol || p.Y > bb.Max.Y+tol {
		return false
	}
	if excludeEnds && (p.IsClose(l.Start, tol) || p.IsClose(l.End, tol)) {
		return false
	}
	return true
}

// SortPointsAlong orders points by their distance from the start point
func (l Line) SortPointsAlong(points []Vector2D) []Vector2D {
	sorted := append([]Vector2D(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Distance(l.Start) < sorted[j].Distance(l.Start)
	})
	return sorted
}
