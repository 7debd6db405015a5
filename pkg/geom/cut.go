package geom

// Cut splits every segment of shape at the points where it meets the
// outline of cutter and returns all pieces in order
func Cut(shape, cutter Shape) []Atom {
	var out []Atom
	for _, a := range shape.Atoms() {
		pts := intersectShapes(a, cutter, intersectOptions{tol: TolMM})
		out = append(out, SplitAtom(a, pts)...)
	}
	return out
}

// SplitAtom cuts a line or arc at the given points. Points not on the
// segment or on its ends are ignored.
func SplitAtom(a Atom, pts []Vector2D) []Atom {
	switch s := a.(type) {
	case Line:
		var pieces []Atom
		start := s.Start
		for _, p := range s.SortPointsAlong(pts) {
			if !s.isPointOnSegment(p, true, TolMM) || p.Distance(start) < MinSegmentLength {
				continue
			}
			pieces = append(pieces, Line{Start: start, End: p})
			start = p
		}
		return append(pieces, Line{Start: start, End: s.End})
	case Arc:
		var pieces []Atom
		for _, piece := range s.SplitAt(pts, TolMM) {
			pieces = append(pieces, piece)
		}
		return pieces
	}
	return []Atom{a}
}

// Keepout returns the pieces of shape that are not inside keepout. Pieces
// running along the outline of keepout are kept.
func Keepout(keepout ClosedShape, shape Shape) []Atom {
	var out []Atom
	for _, piece := range Cut(shape, keepout) {
		if !keepout.IsPointInside(piece.MidPoint(), true, TolMM) {
			out = append(out, piece)
		}
	}
	return out
}

// KeepoutAll applies every keepout in turn to the segments of shapes
func KeepoutAll(keepouts []ClosedShape, shapes []Shape) []Atom {
	var atoms []Atom
	for _, s := range shapes {
		atoms = append(atoms, s.Atoms()...)
	}
	for _, k := range keepouts {
		bb := k.BBox()
		var next []Atom
		for _, a := range atoms {
			if !a.BBox().Intersects(bb) {
				next = append(next, a)
				continue
			}
			next = append(next, Keepout(k, a)...)
		}
		atoms = next
	}
	return atoms
}
