package geom

import (
	"fmt"
	"math"
)

// An outline is a closed loop of atoms where every atom ends where the next
// one starts. The helpers in this file operate on such loops.

// SignedArea returns the area enclosed by a closed loop of atoms. It is
// positive when the loop turns clockwise on the board (Y down).
func SignedArea(atoms []Atom) float64 {
	var area float64
	for _, a := range atoms {
		s, e := a.StartPoint(), a.EndPoint()
		area += (s.X*e.Y - e.X*s.Y) / 2
		if arc, ok := a.(Arc); ok {
			theta := radians(arc.Angle)
			r := arc.Radius()
			area += r * r / 2 * (theta - math.Sin(theta))
		}
	}
	return area
}

// pointInOutline counts crossings of a ray from p towards +X with the loop
func pointInOutline(atoms []Atom, p Vector2D, strict bool, tol float64) bool {
	for _, a := range atoms {
		if a.IsPointOnSelf(p, tol) {
			return !strict
		}
	}
	crossings := 0
	for _, a := range atoms {
		switch s := a.(type) {
		case Line:
			if crossesRay(s.Start, s.End, p) {
				x := s.Start.X + (p.Y-s.Start.Y)*(s.End.X-s.Start.X)/(s.End.Y-s.Start.Y)
				if x > p.X {
					crossings++
				}
			}
		case Arc:
			r := s.Radius()
			if r <= tol {
				continue
			}
			top, bottom := s.Center.Add(Vector2D{Y: -r}), s.Center.Add(Vector2D{Y: r})
			for _, piece := range s.SplitAt([]Vector2D{top, bottom}, tol) {
				start, end := piece.Start, piece.EndPoint()
				if !crossesRay(start, end, p) {
					continue
				}
				dy := p.Y - s.Center.Y
				dx := math.Sqrt(math.Max(0, r*r-dy*dy))
				if piece.MidPoint().X < s.Center.X {
					dx = -dx
				}
				if s.Center.X+dx > p.X {
					crossings++
				}
			}
		}
	}
	return crossings%2 == 1
}

// crossesRay applies the half open rule to the segment from a to b
func crossesRay(a, b, p Vector2D) bool {
	return (a.Y > p.Y) != (b.Y > p.Y)
}

// withStart returns the atom shortened or extended to start at p
func withStart(a Atom, p Vector2D) Atom {
	switch s := a.(type) {
	case Line:
		return Line{Start: p, End: s.End}
	case Arc:
		return Arc{Center: s.Center, Start: p, Angle: s.Angle - s.relativeAngleNear(p, false)}
	}
	return a
}

// withEnd returns the atom shortened or extended to end at p
func withEnd(a Atom, p Vector2D) Atom {
	switch s := a.(type) {
	case Line:
		return Line{Start: s.Start, End: p}
	case Arc:
		return Arc{Center: s.Center, Start: s.Start, Angle: s.relativeAngleNear(p, true)}
	}
	return a
}

// relativeAngleNear is RelativeAngle where points close to the start count
// as 0, or as a full turn when atEnd is set and the arc is longer than half
// a circle
func (a Arc) relativeAngleNear(p Vector2D, atEnd bool) float64 {
	rel := a.RelativeAngle(p)
	tolD := TolDeg(TolMM, a.Radius())
	sign := float64(a.Direction())
	if math.Abs(rel) > 360-tolD {
		rel -= sign * 360
	}
	if atEnd && math.Abs(rel) <= tolD && math.Abs(a.Angle) > 180 {
		rel = sign * 360
	}
	return rel
}

// removeShortAtoms drops atoms shorter than minLength
func removeShortAtoms(atoms []Atom, minLength float64) []Atom {
	out := atoms[:0:0]
	for _, a := range atoms {
		if a.Length() >= minLength {
			out = append(out, a)
		}
	}
	return out
}

// areLinesParallel reports whether l2 continues along the line through l1
func areLinesParallel(l1, l2 Line, tol float64) bool {
	d1 := l1.Direction()
	n := d1.Norm()
	if n == 0 {
		return true
	}
	return math.Abs(d1.Cross(l2.Direction()))/n <= tol
}

// areArcsOnSameCircle reports whether both arcs share center and radius
func areArcsOnSameCircle(a1, a2 Arc, tol float64) bool {
	return a1.Center.IsClose(a2.Center, tol) && math.Abs(a1.Radius()-a2.Radius()) <= tol
}

// mergeAtoms joins neighbouring colinear lines and neighbouring arcs on the
// same circle. The loop is treated as closed, so the last atom may merge
// into the first.
func mergeAtoms(atoms []Atom, tol float64) []Atom {
	out := append([]Atom(nil), atoms...)
	for i := 0; i < len(out) && len(out) > 1; {
		prev := (i - 1 + len(out)) % len(out)
		switch a := out[prev].(type) {
		case Line:
			if b, ok := out[i].(Line); ok && areLinesParallel(a, b, tol) {
				out[prev] = Line{Start: a.Start, End: b.End}
				out = append(out[:i], out[i+1:]...)
				continue
			}
		case Arc:
			if b, ok := out[i].(Arc); ok && areArcsOnSameCircle(a, b, tol) && a.Direction() == b.Direction() {
				out[prev] = Arc{Center: a.Center, Start: a.Start, Angle: a.Angle + b.Angle}
				out = append(out[:i], out[i+1:]...)
				continue
			}
		}
		i++
	}
	return out
}

// keepOuterOutline removes loops that self intersections split off the
// outline. The left most atom is always on the outer outline, so of the two
// loops created at an intersection the one containing it is kept.
func keepOuterOutline(atoms []Atom, tol float64) ([]Atom, error) {
	segs := append([]Atom(nil), atoms...)
	maxPasses := 4*len(segs) + 16
	for pass := 0; ; pass++ {
		if len(segs) < 2 {
			return nil, fmt.Errorf("outline collapsed during simplification: %w", ErrInvalidShape)
		}
		if pass > maxPasses {
			return nil, fmt.Errorf("outline simplification does not converge: %w", ErrInvalidShape)
		}
		changed := false
		left := leftMostAtom(segs)
		n := len(segs)
	scan:
		for i := 1; i < n; i++ {
			for j := 0; j < i; j++ {
				adjacent := i-j == 1 || (i == n-1 && j == 0)
				pts := intersectAtoms(segs[i], segs[j], intersectOptions{
					excludeEndsA: adjacent,
					excludeEndsB: adjacent,
					tol:          tol,
				})
				if len(pts) == 0 {
					continue
				}
				p := pts[0]
				if j < left && left < i {
					segs[j] = withStart(segs[j], p)
					segs[i] = withEnd(segs[i], p)
					if !adjacent {
						segs = append([]Atom(nil), segs[j:i+1]...)
					}
				} else {
					segs[j] = withEnd(segs[j], p)
					segs[i] = withStart(segs[i], p)
					if !adjacent {
						segs = append(segs[:j+1], segs[i:]...)
					}
				}
				segs = removeShortAtoms(segs, MinSegmentLength)
				changed = true
				break scan
			}
		}
		if !changed {
			return segs, nil
		}
	}
}

func leftMostAtom(atoms []Atom) int {
	idx := 0
	left := math.Inf(1)
	for i, a := range atoms {
		if x := a.BBox().Min.X; x < left {
			left = x
			idx = i
		}
	}
	return idx
}

// simplifyOutline removes short atoms, split off loops and merges colinear
// neighbours
func simplifyOutline(atoms []Atom, tol float64) ([]Atom, error) {
	atoms = removeShortAtoms(atoms, MinSegmentLength)
	atoms, err := keepOuterOutline(atoms, tol)
	if err != nil {
		return nil, err
	}
	atoms = mergeAtoms(atoms, tol)
	if len(atoms) == 0 || math.Abs(SignedArea(atoms)) <= tol*tol {
		return nil, fmt.Errorf("simplified outline encloses no area: %w", ErrInvalidShape)
	}
	return atoms, nil
}

// chainAtoms orders atoms into a closed loop, reversing atoms that are
// given backwards
func chainAtoms(atoms []Atom, tol float64) ([]Atom, error) {
	if len(atoms) == 0 {
		return nil, nil
	}
	used := make([]bool, len(atoms))
	loop := []Atom{atoms[0]}
	used[0] = true
	for len(loop) < len(atoms) {
		end := loop[len(loop)-1].EndPoint()
		found := false
		for i, a := range atoms {
			if used[i] {
				continue
			}
			switch {
			case a.StartPoint().IsClose(end, tol):
				loop = append(loop, a)
			case a.EndPoint().IsClose(end, tol):
				loop = append(loop, a.Reversed())
			default:
				continue
			}
			used[i] = true
			found = true
			break
		}
		if !found {
			return nil, fmt.Errorf("segments do not connect at %v: %w", end, ErrInvalidShape)
		}
	}
	if !loop[len(loop)-1].EndPoint().IsClose(loop[0].StartPoint(), tol) {
		return nil, fmt.Errorf("segments do not form a closed loop: %w", ErrInvalidShape)
	}
	return loop, nil
}

// reverseLoop returns the loop traversed in the opposite direction
func reverseLoop(atoms []Atom) []Atom {
	out := make([]Atom, len(atoms))
	for i, a := range atoms {
		out[len(atoms)-1-i] = a.Reversed()
	}
	return out
}

func bboxOfAtoms(atoms []Atom) BoundingBox {
	bb := NewBoundingBox()
	for _, a := range atoms {
		bb.IncludeBox(a.BBox())
	}
	return bb
}

func transformAtoms(atoms []Atom, m Motion) []Atom {
	out := make([]Atom, len(atoms))
	for i, a := range atoms {
		out[i] = a.Transformed(m).(Atom)
	}
	return out
}
