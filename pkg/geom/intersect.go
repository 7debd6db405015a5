package geom

import (
	"errors"
	"math"
)

// intersectOptions tunes how atom intersections are filtered
type intersectOptions struct {
	excludeTangents bool // Drop single touching points
	excludeEndsA    bool // Drop points on the ends of the first atom
	excludeEndsB    bool // Drop points on the ends of the second atom
	infinite        bool // Treat lines as infinitely long and arcs as circles
	tol             float64
}

// IntersectLines returns the intersection of two segments, or of the lines
// through them when infinite is set. Parallel lines do not intersect.
func IntersectLines(l1, l2 Line, infinite bool) []Vector2D {
	return intersectLines(l1, l2, intersectOptions{infinite: infinite, tol: TolMM})
}

func intersectLines(l1, l2 Line, opt intersectOptions) []Vector2D {
	d1, d2 := l1.Direction(), l2.Direction()
	n1, n2 := d1.Norm(), d2.Norm()
	cross := d1.Cross(d2)
	if n1 <= opt.tol || n2 <= opt.tol || math.Abs(cross) <= opt.tol*n1*n2 {
		return nil
	}
	h1, h2 := l1.Homogeneous(), l2.Homogeneous()
	x := h1[1]*h2[2] - h1[2]*h2[1]
	y := h1[2]*h2[0] - h1[0]*h2[2]
	z := h1[0]*h2[1] - h1[1]*h2[0]
	p := Vector2D{X: x / z, Y: y / z}
	if opt.infinite {
		return []Vector2D{p}
	}
	if l1.isPointOnSegment(p, opt.excludeEndsA, opt.tol) && l2.isPointOnSegment(p, opt.excludeEndsB, opt.tol) {
		return []Vector2D{p}
	}
	return nil
}

// IntersectLineCircle returns the points where the segment (or the line
// through it when infinite is set) crosses or touches the circle
func IntersectLineCircle(l Line, c Circle, infinite bool) []Vector2D {
	return intersectLineCircle(l, c, intersectOptions{infinite: infinite, tol: TolMM})
}

func intersectLineCircle(l Line, c Circle, opt intersectOptions) []Vector2D {
	d := l.Direction()
	n2 := d.Dot(d)
	if n2 <= opt.tol*opt.tol {
		if c.IsPointOnSelf(l.Start, opt.tol) && !opt.excludeEndsA {
			return []Vector2D{l.Start}
		}
		return nil
	}
	t := c.Center.Sub(l.Start).Dot(d) / n2
	foot := l.Start.Add(d.Scale(t))
	dist := foot.Distance(c.Center)
	if dist > c.Radius+opt.tol {
		return nil
	}
	var pts []Vector2D
	if math.Abs(dist-c.Radius) <= opt.tol {
		if opt.excludeTangents {
			return nil
		}
		pts = []Vector2D{foot}
	} else {
		h := math.Sqrt(c.Radius*c.Radius - dist*dist)
		u := d.Scale(1 / math.Sqrt(n2))
		pts = []Vector2D{foot.Sub(u.Scale(h)), foot.Add(u.Scale(h))}
	}
	if opt.infinite {
		return pts
	}
	return filterPoints(pts, func(p Vector2D) bool {
		return l.isPointOnSegment(p, opt.excludeEndsA, opt.tol)
	})
}

// IntersectCircles returns the 0, 1 or 2 points two circles share. Two
// point circles at the same location share that point. Identical circles
// yield ErrIdenticalCircles.
func IntersectCircles(c1, c2 Circle, excludeTangents bool) ([]Vector2D, error) {
	return intersectCircles(c1, c2, excludeTangents, TolMM)
}

func intersectCircles(c1, c2 Circle, excludeTangents bool, tol float64) ([]Vector2D, error) {
	r1, r2 := c1.Radius, c2.Radius
	delta := c2.Center.Sub(c1.Center)
	d := delta.Norm()
	if d <= tol {
		switch {
		case r1 <= tol && r2 <= tol:
			if excludeTangents {
				return nil, nil
			}
			return []Vector2D{c1.Center}, nil
		case math.Abs(r1-r2) <= tol:
			return nil, ErrIdenticalCircles
		}
		return nil, nil
	}
	if d > r1+r2+tol || d+tol < math.Abs(r1-r2) {
		return nil, nil
	}
	u := delta.Scale(1 / d)
	a := (d*d + r1*r1 - r2*r2) / (2 * d)
	h2 := r1*r1 - a*a
	if math.Abs(math.Abs(a)-r1) <= tol || h2 <= 0 {
		if excludeTangents {
			return nil, nil
		}
		return []Vector2D{c1.Center.Add(u.Scale(a))}, nil
	}
	base := c1.Center.Add(u.Scale(a))
	off := u.Orthogonal().Scale(math.Sqrt(h2))
	return []Vector2D{base.Add(off), base.Sub(off)}, nil
}

// IntersectArcs returns the points two arcs share. Arcs on the same circle
// share the end points of each arc that lie on the other one.
func IntersectArcs(a1, a2 Arc) []Vector2D {
	return intersectArcs(a1, a2, intersectOptions{tol: TolMM})
}

func intersectArcs(a1, a2 Arc, opt intersectOptions) []Vector2D {
	pts, err := intersectCircles(a1.Circle(), a2.Circle(), opt.excludeTangents, opt.tol)
	if errors.Is(err, ErrIdenticalCircles) {
		return overlappingArcPoints(a1, a2, opt)
	}
	if opt.infinite {
		return pts
	}
	return filterPoints(pts, func(p Vector2D) bool {
		return a1.isPointOnArc(p, opt.excludeEndsA, opt.tol) && a2.isPointOnArc(p, opt.excludeEndsB, opt.tol)
	})
}

// overlappingArcPoints handles arcs on the same circle
func overlappingArcPoints(a1, a2 Arc, opt intersectOptions) []Vector2D {
	var pts []Vector2D
	for _, p := range []Vector2D{a1.Start, a1.EndPoint()} {
		if !opt.excludeEndsA && a2.isPointOnArc(p, opt.excludeEndsB, opt.tol) {
			pts = appendUnique(pts, p, opt.tol)
		}
	}
	for _, p := range []Vector2D{a2.Start, a2.EndPoint()} {
		if !opt.excludeEndsB && a1.isPointOnArc(p, opt.excludeEndsA, opt.tol) {
			pts = appendUnique(pts, p, opt.tol)
		}
	}
	return pts
}

// IntersectLineArc returns the points where a segment meets an arc
func IntersectLineArc(l Line, a Arc) []Vector2D {
	return intersectLineArc(l, a, intersectOptions{tol: TolMM})
}

// intersectLineArc treats the line as atom A and the arc as atom B
func intersectLineArc(l Line, a Arc, opt intersectOptions) []Vector2D {
	pts := intersectLineCircle(l, a.Circle(), opt)
	if opt.infinite {
		return pts
	}
	return filterPoints(pts, func(p Vector2D) bool {
		return a.isPointOnArc(p, opt.excludeEndsB, opt.tol)
	})
}

// intersectAtoms dispatches on the concrete atom types
func intersectAtoms(a, b Atom, opt intersectOptions) []Vector2D {
	switch sa := a.(type) {
	case Line:
		switch sb := b.(type) {
		case Line:
			return intersectLines(sa, sb, opt)
		case Arc:
			return intersectLineArc(sa, sb, opt)
		}
	case Arc:
		switch sb := b.(type) {
		case Line:
			return intersectLineArc(sb, sa, opt.swapped())
		case Arc:
			return intersectArcs(sa, sb, opt)
		}
	}
	return nil
}

func (o intersectOptions) swapped() intersectOptions {
	o.excludeEndsA, o.excludeEndsB = o.excludeEndsB, o.excludeEndsA
	return o
}

// Intersect returns every point where the outlines of a and b meet.
// Points closer than TolMM are reported once.
func Intersect(a, b Shape) []Vector2D {
	return intersectShapes(a, b, intersectOptions{tol: TolMM})
}

// IntersectStrict is Intersect without touching points: tangents and
// points on segment ends are dropped
func IntersectStrict(a, b Shape) []Vector2D {
	return intersectShapes(a, b, intersectOptions{
		excludeTangents: true,
		excludeEndsA:    true,
		excludeEndsB:    true,
		tol:             TolMM,
	})
}

func intersectShapes(a, b Shape, opt intersectOptions) []Vector2D {
	var pts []Vector2D
	bb := b.BBox().Inflated(opt.tol)
	atomsB := b.Atoms()
	for _, sa := range a.Atoms() {
		if !sa.BBox().Inflated(opt.tol).Intersects(bb) {
			continue
		}
		for _, sb := range atomsB {
			for _, p := range intersectAtoms(sa, sb, opt) {
				pts = appendUnique(pts, p, opt.tol)
			}
		}
	}
	return pts
}

func filterPoints(pts []Vector2D, keep func(Vector2D) bool) []Vector2D {
	var out []Vector2D
	for _, p := range pts {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func appendUnique(pts []Vector2D, p Vector2D, tol float64) []Vector2D {
	for _, q := range pts {
		if q.IsClose(p, tol) {
			return pts
		}
	}
	return append(pts, p)
}
