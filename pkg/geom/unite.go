package geom

import (
	"fmt"
	"sort"
)

// Unite returns the outlines of the union of a and b. Disjoint shapes are
// returned unchanged, a shape nested in the other one disappears, and
// overlapping shapes are merged into one or more closed outlines that keep
// their arcs. The outline enclosing the largest area comes first.
func Unite(a, b ClosedShape) ([]CompoundPolygon, error) {
	ca := CompoundFromShape(a).MakeClockwise()
	cb := CompoundFromShape(b).MakeClockwise()
	if len(ca.Segments) == 0 || len(cb.Segments) == 0 {
		return nil, fmt.Errorf("cannot unite an empty outline: %w", ErrInvalidShape)
	}

	crossing := IntersectStrict(ca, cb)
	if len(crossing) == 0 {
		switch {
		case isOutlineInside(ca, cb):
			return []CompoundPolygon{cb}, nil
		case isOutlineInside(cb, ca):
			return []CompoundPolygon{ca}, nil
		}
		if len(Intersect(ca, cb)) == 0 {
			return []CompoundPolygon{ca, cb}, nil
		}
	}

	var pieces []Atom
	for _, p := range Cut(ca, cb) {
		mid := p.MidPoint()
		if cb.IsPointOnSelf(mid, TolMM) {
			if runsAlong(cb, p) {
				pieces = append(pieces, p)
			}
			continue
		}
		if !cb.IsPointInside(mid, true, TolMM) {
			pieces = append(pieces, p)
		}
	}
	for _, p := range Cut(cb, ca) {
		mid := p.MidPoint()
		if !ca.IsPointInside(mid, false, TolMM) {
			pieces = append(pieces, p)
		}
	}

	loops, err := chainLoops(pieces, TolMM)
	if err != nil {
		return nil, fmt.Errorf("failed to unite outlines: %w", err)
	}
	var out []CompoundPolygon
	for _, loop := range loops {
		merged := mergeAtoms(removeShortAtoms(loop, MinSegmentLength), TolMM)
		if len(merged) == 0 {
			continue
		}
		out = append(out, CompoundPolygon{Segments: merged})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("union leaves no outline: %w", ErrInvalidShape)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Area() > out[j].Area() })
	return out, nil
}

// isOutlineInside reports whether sample points along every segment of
// inner lie inside or on outer
func isOutlineInside(inner, outer CompoundPolygon) bool {
	for _, s := range inner.Segments {
		for _, p := range samplePoints(s, 4) {
			if !outer.IsPointInside(p, false, TolMM) {
				return false
			}
		}
	}
	return true
}

// samplePoints returns n+1 points evenly spread along a line or arc
func samplePoints(a Atom, n int) []Vector2D {
	pts := make([]Vector2D, 0, n+1)
	for k := 0; k <= n; k++ {
		f := float64(k) / float64(n)
		switch s := a.(type) {
		case Arc:
			pts = append(pts, s.Start.Rotate(s.Angle*f, s.Center))
		default:
			pts = append(pts, a.StartPoint().Lerp(a.EndPoint(), f))
		}
	}
	return pts
}

// runsAlong reports whether piece lies on the outline of c and runs in the
// same direction as the outline does there
func runsAlong(c CompoundPolygon, piece Atom) bool {
	mid := piece.MidPoint()
	t := tangentAt(piece, mid)
	for _, s := range c.Segments {
		if s.IsPointOnSelf(mid, TolMM) {
			return tangentAt(s, mid).Dot(t) > 0
		}
	}
	return false
}

// tangentAt returns the direction of travel of an atom at point p
func tangentAt(a Atom, p Vector2D) Vector2D {
	switch s := a.(type) {
	case Line:
		return s.Direction()
	case Arc:
		t := p.Sub(s.Center).Orthogonal()
		if s.Angle < 0 {
			return t.Neg()
		}
		return t
	}
	return Vector2D{}
}

// chainLoops joins pieces end to start into closed loops
func chainLoops(pieces []Atom, tol float64) ([][]Atom, error) {
	used := make([]bool, len(pieces))
	var loops [][]Atom
	for first := range pieces {
		if used[first] {
			continue
		}
		used[first] = true
		loop := []Atom{pieces[first]}
		start := pieces[first].StartPoint()
		for !loop[len(loop)-1].EndPoint().IsClose(start, tol) {
			end := loop[len(loop)-1].EndPoint()
			next := -1
			for i, p := range pieces {
				if !used[i] && p.StartPoint().IsClose(end, tol) {
					next = i
					break
				}
			}
			if next < 0 {
				return nil, fmt.Errorf("outline is open at %v: %w", end, ErrInvalidShape)
			}
			used[next] = true
			loop = append(loop, pieces[next])
		}
		loops = append(loops, loop)
	}
	return loops, nil
}
