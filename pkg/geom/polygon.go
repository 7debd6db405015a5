package geom

import (
	"fmt"
	"math"
)

// Polygon is a closed outline through Points. The closing segment from the
// last point back to the first is implicit.
type Polygon struct {
	Points []Vector2D
}

// NewPolygon returns the polygon through points. Consecutive duplicates and
// a repeated first point at the end are removed.
func NewPolygon(points ...Vector2D) Polygon {
	var pts []Vector2D
	for _, p := range points {
		if len(pts) > 0 && pts[len(pts)-1].IsClose(p, TolMM) {
			continue
		}
		pts = append(pts, p)
	}
	if len(pts) > 1 && pts[0].IsClose(pts[len(pts)-1], TolMM) {
		pts = pts[:len(pts)-1]
	}
	return Polygon{Points: pts}
}

// PolygonFromBBox returns the rectangle of bb, clockwise from the top-left
func PolygonFromBBox(bb BoundingBox) Polygon {
	c := bb.Corners()
	return NewPolygon(c[:]...)
}

// Segments returns the edges of the closed polygon
func (p Polygon) Segments() []Line {
	n := len(p.Points)
	if n < 2 {
		return nil
	}
	segs := make([]Line, n)
	for i := range p.Points {
		segs[i] = Line{Start: p.Points[i], End: p.Points[(i+1)%n]}
	}
	return segs
}

func (p Polygon) Atoms() []Atom {
	segs := p.Segments()
	atoms := make([]Atom, len(segs))
	for i, s := range segs {
		atoms[i] = s
	}
	return atoms
}

func (p Polygon) BBox() BoundingBox {
	return BoundingBoxOf(p.Points...)
}

// Translated returns the polygon moved by v
func (p Polygon) Translated(v Vector2D) Polygon {
	return p.moved(Translation(v))
}

// Rotated returns the polygon rotated by angle degrees around origin
func (p Polygon) Rotated(angle float64, origin Vector2D) Polygon {
	return p.moved(Rotation(angle, origin))
}

func (p Polygon) moved(m Motion) Polygon {
	pts := make([]Vector2D, len(p.Points))
	for i, pt := range p.Points {
		pts[i] = m.Apply(pt)
	}
	return Polygon{Points: pts}
}

func (p Polygon) Transformed(m Motion) Shape { return p.moved(m) }

// MirroredX returns the polygon mirrored at the vertical line x = axis
func (p Polygon) MirroredX(axis float64) Polygon {
	pts := make([]Vector2D, len(p.Points))
	for i, pt := range p.Points {
		pts[i] = Vector2D{X: 2*axis - pt.X, Y: pt.Y}
	}
	return Polygon{Points: pts}
}

// MirroredY returns the polygon mirrored at the horizontal line y = axis
func (p Polygon) MirroredY(axis float64) Polygon {
	pts := make([]Vector2D, len(p.Points))
	for i, pt := range p.Points {
		pts[i] = Vector2D{X: pt.X, Y: 2*axis - pt.Y}
	}
	return Polygon{Points: pts}
}

func (p Polygon) IsPointOnSelf(pt Vector2D, tol float64) bool {
	for _, s := range p.Segments() {
		if s.IsPointOnSelf(pt, tol) {
			return true
		}
	}
	return false
}

func (p Polygon) IsPointInside(pt Vector2D, strict bool, tol float64) bool {
	return pointInOutline(p.Atoms(), pt, strict, tol)
}

// Area returns the enclosed area
func (p Polygon) Area() float64 {
	return math.Abs(SignedArea(p.Atoms()))
}

// IsClockwise reports whether the points turn clockwise on the board
func (p Polygon) IsClockwise() bool {
	var sum float64
	n := len(p.Points)
	for i, a := range p.Points {
		b := p.Points[(i+1)%n]
		sum += (b.X - a.X) * (b.Y + a.Y)
	}
	return sum < 0
}

// MakeClockwise returns the polygon with its points in clockwise order
func (p Polygon) MakeClockwise() Polygon {
	if p.IsClockwise() {
		return p
	}
	pts := make([]Vector2D, len(p.Points))
	for i, pt := range p.Points {
		pts[len(pts)-1-i] = pt
	}
	return Polygon{Points: pts}
}

// Simplify drops short segments, removes loops split off by self
// intersections and merges colinear neighbouring segments
func (p Polygon) Simplify() (Polygon, error) {
	atoms, err := simplifyOutline(p.Atoms(), TolMM)
	if err != nil {
		return Polygon{}, err
	}
	return polygonFromLines(atoms), nil
}

func polygonFromLines(atoms []Atom) Polygon {
	pts := make([]Vector2D, len(atoms))
	for i, a := range atoms {
		pts[i] = a.StartPoint()
	}
	return Polygon{Points: pts}
}

// Inflated grows (amount > 0) or shrinks (amount < 0) the polygon. Every
// edge is moved outwards along its normal and neighbouring edges are joined
// at their intersection. Corners sharper than 90 degrees get an extra
// segment when growing so the outline keeps its distance at the tip.
func (p Polygon) Inflated(amount float64) (ClosedShape, error) {
	q, err := p.inflate(amount, TolMM)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// offsetEdge is an edge of a polygon being inflated
type offsetEdge struct {
	line   Line
	dir    Vector2D // Unit direction before the offset
	normal Vector2D // Outward unit normal
	corner Vector2D // Start point before the offset
}

func (p Polygon) inflate(amount, tol float64) (Polygon, error) {
	src := p.MakeClockwise()
	if len(src.Points) < 3 {
		return Polygon{}, fmt.Errorf("polygon with %d points cannot be inflated: %w", len(src.Points), ErrInvalidShape)
	}
	if amount == 0 {
		return src, nil
	}

	var edges []offsetEdge
	for _, s := range src.Segments() {
		dir, err := s.UnitDirection()
		if err != nil {
			continue
		}
		normal := dir.Orthogonal().Neg()
		off := normal.Scale(amount)
		edges = append(edges, offsetEdge{
			line:   Line{Start: s.Start.Add(off), End: s.End.Add(off)},
			dir:    dir,
			normal: normal,
			corner: s.Start,
		})
	}

	needsSimplify := false
	for i := 0; i < len(edges) && len(edges) > 2; {
		prev := (i - 1 + len(edges)) % len(edges)
		if edges[i].dir.Dot(edges[prev].dir) <= -tol {
			needsSimplify = true
			if amount > 0 {
				forward, err := edges[i].normal.Add(edges[prev].normal).Normalize(tol)
				if err != nil {
					return Polygon{}, fmt.Errorf("inflation by %g folds back onto itself: %w", amount, ErrInvalidShape)
				}
				start := edges[i].corner.Add(forward.Scale(amount))
				chamfer := offsetEdge{
					line:   Line{Start: start, End: start.Add(forward.Orthogonal())},
					dir:    forward.Orthogonal(),
					normal: forward,
					corner: edges[i].corner,
				}
				edges = append(edges[:i], append([]offsetEdge{chamfer}, edges[i:]...)...)
				prev = (i - 1 + len(edges)) % len(edges)
			}
		}
		pts := intersectLines(edges[prev].line, edges[i].line, intersectOptions{infinite: true, tol: tol})
		if len(pts) == 0 {
			// Colinear neighbours merge into one edge
			edges[prev].line.End = edges[i].line.End
			edges = append(edges[:i], edges[i+1:]...)
			continue
		}
		edges[prev].line.End = pts[0]
		edges[i].line.Start = pts[0]
		if edges[prev].line.Length() <= tol {
			edges = append(edges[:prev], edges[prev+1:]...)
			if prev < i {
				continue
			}
		}
		i++
	}

	atoms := make([]Atom, 0, len(edges))
	for _, e := range edges {
		if e.line.Length() < MinSegmentLength {
			continue
		}
		if amount < 0 && e.line.Direction().Dot(e.dir) <= 0 {
			return Polygon{}, fmt.Errorf("deflation by %g turns an edge around: %w", -amount, ErrInvalidShape)
		}
		atoms = append(atoms, e.line)
	}
	if len(atoms) < 3 {
		return Polygon{}, fmt.Errorf("inflation by %g leaves %d segments: %w", amount, len(atoms), ErrInvalidShape)
	}
	out := polygonFromLines(atoms)
	if amount < 0 && !out.IsClockwise() {
		return Polygon{}, fmt.Errorf("deflation by %g reverses the outline: %w", -amount, ErrInvalidShape)
	}
	if needsSimplify {
		return out.Simplify()
	}
	return out, nil
}

// RoundToGrid snaps the vertices onto the grid. When outwards is set every
// coordinate is rounded away from the inside of the polygon so the area can
// only grow, otherwise to the nearest grid point.
func (p Polygon) RoundToGrid(grid float64, outwards bool) Polygon {
	pts := append([]Vector2D(nil), p.Points...)
	if !outwards {
		for i, pt := range pts {
			pts[i] = Vector2D{X: RoundToGridNearest(pt.X, grid), Y: RoundToGridNearest(pt.Y, grid)}
		}
		return Polygon{Points: pts}
	}
	up, down := RoundToGridUp, RoundToGridDown
	if !p.IsClockwise() {
		up, down = down, up
	}
	n := len(pts)
	for i := range pts {
		a, b := &pts[i], &pts[(i+1)%n]
		switch {
		case a.X < b.X: // Top edge of a clockwise outline
			a.Y, b.Y = down(a.Y, grid), down(b.Y, grid)
		case a.X > b.X:
			a.Y, b.Y = up(a.Y, grid), up(b.Y, grid)
		}
		switch {
		case a.Y > b.Y: // Left edge
			a.X, b.X = down(a.X, grid), down(b.X, grid)
		case a.Y < b.Y:
			a.X, b.X = up(a.X, grid), up(b.X, grid)
		}
	}
	return Polygon{Points: pts}
}
