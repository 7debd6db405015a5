package geom

import (
	"fmt"
	"math"
)

// Rectangle is an axis aligned rectangle rotated by Angle around its center
type Rectangle struct {
	Center Vector2D
	Size   Vector2D
	Angle  float64
}

// RectangleFromCorners returns the unrotated rectangle spanned by two corners
func RectangleFromCorners(a, b Vector2D) Rectangle {
	return Rectangle{
		Center: a.Lerp(b, 0.5),
		Size:   Vector2D{X: math.Abs(b.X - a.X), Y: math.Abs(b.Y - a.Y)},
	}
}

// Corners returns the four corners clockwise, starting top-left before rotation
func (r Rectangle) Corners() []Vector2D {
	h := r.Size.Scale(0.5)
	local := []Vector2D{{X: -h.X, Y: -h.Y}, {X: h.X, Y: -h.Y}, {X: h.X, Y: h.Y}, {X: -h.X, Y: h.Y}}
	pts := make([]Vector2D, 4)
	for i, p := range local {
		pts[i] = p.Rotate(r.Angle, Vector2D{}).Add(r.Center)
	}
	return pts
}

// Polygon returns the outline as a polygon
func (r Rectangle) Polygon() Polygon {
	return Polygon{Points: r.Corners()}
}

func (r Rectangle) Atoms() []Atom { return r.Polygon().Atoms() }

func (r Rectangle) BBox() BoundingBox { return BoundingBoxOf(r.Corners()...) }

func (r Rectangle) Transformed(m Motion) Shape {
	return Rectangle{Center: m.Apply(r.Center), Size: r.Size, Angle: r.Angle + m.Angle}
}

func (r Rectangle) IsPointOnSelf(p Vector2D, tol float64) bool {
	return r.Polygon().IsPointOnSelf(p, tol)
}

func (r Rectangle) IsPointInside(p Vector2D, strict bool, tol float64) bool {
	local := p.Sub(r.Center).Rotate(-r.Angle, Vector2D{})
	hx, hy := r.Size.X/2, r.Size.Y/2
	if strict {
		return math.Abs(local.X) < hx-tol && math.Abs(local.Y) < hy-tol
	}
	return math.Abs(local.X) <= hx+tol && math.Abs(local.Y) <= hy+tol
}

// Inflated grows every side by amount
func (r Rectangle) Inflated(amount float64) (ClosedShape, error) {
	if amount < 0 && -amount > math.Min(r.Size.X, r.Size.Y)/2-TolMM {
		return nil, fmt.Errorf("cannot deflate %gx%g rectangle by %g: %w", r.Size.X, r.Size.Y, -amount, ErrInvalidShape)
	}
	return Rectangle{Center: r.Center, Size: r.Size.Add(Vector2D{X: 2 * amount, Y: 2 * amount}), Angle: r.Angle}, nil
}

// RoundRectangle is a rectangle with all four corners rounded by Radius
type RoundRectangle struct {
	Center Vector2D
	Size   Vector2D
	Radius float64
	Angle  float64
}

// Outline returns 4 lines and 4 arcs in clockwise order, or the plain
// rectangle when the radius is 0
func (r RoundRectangle) Outline() CompoundPolygon {
	if r.Radius <= 0 {
		return CompoundFromShape(Rectangle{Center: r.Center, Size: r.Size, Angle: r.Angle})
	}
	cr := r.Radius
	at := r.Center.Sub(r.Size.Scale(0.5))
	w, h := r.Size.X, r.Size.Y
	segs := []Atom{
		Line{Start: Vec(at.X+cr, at.Y), End: Vec(at.X+w-cr, at.Y)},
		Arc{Start: Vec(at.X+w-cr, at.Y), Center: Vec(at.X+w-cr, at.Y+cr), Angle: 90},
		Line{Start: Vec(at.X+w, at.Y+cr), End: Vec(at.X+w, at.Y+h-cr)},
		Arc{Start: Vec(at.X+w, at.Y+h-cr), Center: Vec(at.X+w-cr, at.Y+h-cr), Angle: 90},
		Line{Start: Vec(at.X+w-cr, at.Y+h), End: Vec(at.X+cr, at.Y+h)},
		Arc{Start: Vec(at.X+cr, at.Y+h), Center: Vec(at.X+cr, at.Y+h-cr), Angle: 90},
		Line{Start: Vec(at.X, at.Y+h-cr), End: Vec(at.X, at.Y+cr)},
		Arc{Start: Vec(at.X, at.Y+cr), Center: Vec(at.X+cr, at.Y+cr), Angle: 90},
	}
	segs = removeShortAtoms(segs, MinSegmentLength)
	return CompoundPolygon{Segments: transformAtoms(segs, Rotation(r.Angle, r.Center))}
}

func (r RoundRectangle) Atoms() []Atom { return r.Outline().Segments }

func (r RoundRectangle) BBox() BoundingBox { return r.Outline().BBox() }

func (r RoundRectangle) Transformed(m Motion) Shape {
	return RoundRectangle{Center: m.Apply(r.Center), Size: r.Size, Radius: r.Radius, Angle: r.Angle + m.Angle}
}

func (r RoundRectangle) IsPointOnSelf(p Vector2D, tol float64) bool {
	return r.Outline().IsPointOnSelf(p, tol)
}

func (r RoundRectangle) IsPointInside(p Vector2D, strict bool, tol float64) bool {
	return r.Outline().IsPointInside(p, strict, tol)
}

// Inflated grows the size by 2*amount and the radius by amount
func (r RoundRectangle) Inflated(amount float64) (ClosedShape, error) {
	if amount < 0 && -amount > math.Min(r.Size.X, r.Size.Y)/2-TolMM {
		return nil, fmt.Errorf("cannot deflate rounded rectangle by %g: %w", -amount, ErrInvalidShape)
	}
	return RoundRectangle{
		Center: r.Center,
		Size:   r.Size.Add(Vector2D{X: 2 * amount, Y: 2 * amount}),
		Radius: math.Max(0, r.Radius+amount),
		Angle:  r.Angle,
	}, nil
}

// Trapezoid is an isosceles trapezoid of the given bounding size. A
// negative SideAngle makes the top edge the shorter one, a positive one the
// bottom edge. Corners are rounded by Radius.
type Trapezoid struct {
	Center    Vector2D
	Size      Vector2D
	SideAngle float64 // Angle of the slanted sides against the vertical, degrees
	Radius    float64
	Angle     float64 // Rotation around the center
}

// Outline returns the segments of the trapezoid in clockwise order
func (t Trapezoid) Outline() CompoundPolygon {
	at := t.Center.Sub(t.Size.Scale(0.5))
	w, h := t.Size.X, t.Size.Y
	aa := math.Abs(t.SideAngle)
	dx := h * math.Tan(radians(aa))
	cr := t.Radius

	var segs []Atom
	switch {
	case t.SideAngle == 0 && cr == 0:
		segs = Rectangle{Center: t.Center, Size: t.Size}.Atoms()
	case t.SideAngle == 0:
		segs = RoundRectangle{Center: t.Center, Size: t.Size, Radius: cr}.Atoms()
	case cr == 0 && t.SideAngle < 0:
		segs = Polygon{Points: []Vector2D{
			Vec(at.X+dx, at.Y), Vec(at.X+w-dx, at.Y), Vec(at.X+w, at.Y+h), Vec(at.X, at.Y+h),
		}}.Atoms()
	case cr == 0:
		segs = Polygon{Points: []Vector2D{
			Vec(at.X, at.Y), Vec(at.X+w, at.Y), Vec(at.X+w-dx, at.Y+h), Vec(at.X+dx, at.Y+h),
		}}.Atoms()
	default:
		half := radians((90 - aa) / 2)
		dx2 := cr * math.Tan(half)
		dx3 := cr / math.Tan(half)
		ds2 := cr * math.Sin(radians(aa))
		dc2 := cr * math.Cos(radians(aa))
		if t.SideAngle < 0 {
			ctl := Vec(at.X+dx+dx2, at.Y+cr)
			ctr := Vec(at.X+w-dx-dx2, at.Y+cr)
			cbr := Vec(at.X+w-dx3, at.Y+h-cr)
			cbl := Vec(at.X+dx3, at.Y+h-cr)
			segs = []Atom{
				Arc{Start: Vec(ctl.X-dc2, ctl.Y-ds2), Center: ctl, Angle: 90 - aa},
				Line{Start: Vec(ctl.X, at.Y), End: Vec(ctr.X, at.Y)},
				Arc{Start: Vec(ctr.X, at.Y), Center: ctr, Angle: 90 - aa},
				Line{Start: Vec(ctr.X+dc2, ctr.Y-ds2), End: Vec(cbr.X+dc2, cbr.Y-ds2)},
				Arc{Start: Vec(cbr.X+dc2, cbr.Y-ds2), Center: cbr, Angle: 90 + aa},
				Line{Start: Vec(cbr.X, at.Y+h), End: Vec(cbl.X, at.Y+h)},
				Arc{Start: Vec(cbl.X, at.Y+h), Center: cbl, Angle: 90 + aa},
				Line{Start: Vec(cbl.X-dc2, cbl.Y-ds2), End: Vec(ctl.X-dc2, ctl.Y-ds2)},
			}
		} else {
			ctl := Vec(at.X+dx3, at.Y+cr)
			ctr := Vec(at.X+w-dx3, at.Y+cr)
			cbr := Vec(at.X+w-dx-dx2, at.Y+h-cr)
			cbl := Vec(at.X+dx+dx2, at.Y+h-cr)
			segs = []Atom{
				Arc{Start: Vec(ctl.X-dc2, ctl.Y+ds2), Center: ctl, Angle: 90 + aa},
				Line{Start: Vec(ctl.X, at.Y), End: Vec(ctr.X, at.Y)},
				Arc{Start: Vec(ctr.X, at.Y), Center: ctr, Angle: 90 + aa},
				Line{Start: Vec(ctr.X+dc2, ctr.Y+ds2), End: Vec(cbr.X+dc2, cbr.Y+ds2)},
				Arc{Start: Vec(cbr.X+dc2, cbr.Y+ds2), Center: cbr, Angle: 90 - aa},
				Line{Start: Vec(cbr.X, at.Y+h), End: Vec(cbl.X, at.Y+h)},
				Arc{Start: Vec(cbl.X, at.Y+h), Center: cbl, Angle: 90 - aa},
				Line{Start: Vec(cbl.X-dc2, cbl.Y+ds2), End: Vec(ctl.X-dc2, ctl.Y+ds2)},
			}
		}
		segs = removeShortAtoms(segs, MinSegmentLength)
	}
	return CompoundPolygon{Segments: transformAtoms(segs, Rotation(t.Angle, t.Center))}
}

// Polygon returns the corner points of a trapezoid without rounding
func (t Trapezoid) Polygon() (Polygon, bool) {
	return t.Outline().Polygon()
}

func (t Trapezoid) Atoms() []Atom { return t.Outline().Segments }

func (t Trapezoid) BBox() BoundingBox { return t.Outline().BBox() }

func (t Trapezoid) Transformed(m Motion) Shape {
	out := t
	out.Center = m.Apply(t.Center)
	out.Angle += m.Angle
	return out
}

func (t Trapezoid) IsPointOnSelf(p Vector2D, tol float64) bool {
	return t.Outline().IsPointOnSelf(p, tol)
}

func (t Trapezoid) IsPointInside(p Vector2D, strict bool, tol float64) bool {
	return t.Outline().IsPointInside(p, strict, tol)
}

func (t Trapezoid) Inflated(amount float64) (ClosedShape, error) {
	return t.Outline().Inflated(amount)
}

// Cross is two perpendicular lines through Center
type Cross struct {
	Center Vector2D
	Size   Vector2D
	Angle  float64
}

func (c Cross) Atoms() []Atom {
	h := c.Size.Scale(0.5)
	pts := []Vector2D{{X: -h.X}, {X: h.X}, {Y: -h.Y}, {Y: h.Y}}
	for i, p := range pts {
		pts[i] = p.Rotate(c.Angle, Vector2D{}).Add(c.Center)
	}
	return []Atom{Line{Start: pts[0], End: pts[1]}, Line{Start: pts[2], End: pts[3]}}
}

func (c Cross) BBox() BoundingBox { return bboxOfAtoms(c.Atoms()) }

func (c Cross) Transformed(m Motion) Shape {
	return Cross{Center: m.Apply(c.Center), Size: c.Size, Angle: c.Angle + m.Angle}
}

func (c Cross) IsPointOnSelf(p Vector2D, tol float64) bool {
	for _, a := range c.Atoms() {
		if a.IsPointOnSelf(p, tol) {
			return true
		}
	}
	return false
}

// Stadium is the convex hull of two circles of equal radius
type Stadium struct {
	Center1 Vector2D
	Center2 Vector2D
	Radius  float64
}

// StadiumInRectangle returns the stadium inscribed in an unrotated rectangle
func StadiumInRectangle(r Rectangle) Stadium {
	if r.Size.X > r.Size.Y {
		rad := r.Size.Y / 2
		return Stadium{
			Center1: Vec(r.Center.X-r.Size.X/2+rad, r.Center.Y),
			Center2: Vec(r.Center.X+r.Size.X/2-rad, r.Center.Y),
			Radius:  rad,
		}
	}
	rad := r.Size.X / 2
	return Stadium{
		Center1: Vec(r.Center.X, r.Center.Y-r.Size.Y/2+rad),
		Center2: Vec(r.Center.X, r.Center.Y+r.Size.Y/2-rad),
		Radius:  rad,
	}
}

// Outline returns arc, line, arc, line in clockwise order. Coinciding
// centers yield a full circle.
func (s Stadium) Outline() CompoundPolygon {
	axis := s.Center2.Sub(s.Center1)
	perp, err := axis.Orthogonal().Resize(s.Radius, TolMM)
	if err != nil {
		return CompoundFromShape(Circle{Center: s.Center1, Radius: s.Radius})
	}
	c1, c2 := s.Center1, s.Center2
	return CompoundPolygon{Segments: []Atom{
		Arc{Center: c1, Start: c1.Add(perp), Angle: 180},
		Line{Start: c1.Sub(perp), End: c2.Sub(perp)},
		Arc{Center: c2, Start: c2.Sub(perp), Angle: 180},
		Line{Start: c2.Add(perp), End: c1.Add(perp)},
	}}
}

func (s Stadium) Atoms() []Atom { return s.Outline().Segments }

func (s Stadium) BBox() BoundingBox { return s.Outline().BBox() }

func (s Stadium) Transformed(m Motion) Shape {
	return Stadium{Center1: m.Apply(s.Center1), Center2: m.Apply(s.Center2), Radius: s.Radius}
}

func (s Stadium) IsPointOnSelf(p Vector2D, tol float64) bool {
	return s.Outline().IsPointOnSelf(p, tol)
}

// IsPointInside checks the distance of p to the axis between the centers
func (s Stadium) IsPointInside(p Vector2D, strict bool, tol float64) bool {
	d := Line{Start: s.Center1, End: s.Center2}.DistanceToPoint(p)
	if strict {
		return d < s.Radius-tol
	}
	return d <= s.Radius+tol
}

// Inflated changes the radius by amount
func (s Stadium) Inflated(amount float64) (ClosedShape, error) {
	if amount < 0 && -amount > s.Radius-TolMM {
		return nil, fmt.Errorf("cannot deflate stadium of radius %g by %g: %w", s.Radius, -amount, ErrInvalidShape)
	}
	return Stadium{Center1: s.Center1, Center2: s.Center2, Radius: s.Radius + amount}, nil
}
