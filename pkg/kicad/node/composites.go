package node

import (
	"fmt"
	"math"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
)

// atomNodes turns outline segments into line and arc nodes
func atomNodes(atoms []geom.Atom, d Drawing) []Node {
	nodes := make([]Node, 0, len(atoms))
	for _, a := range atoms {
		switch s := a.(type) {
		case geom.Line:
			nodes = append(nodes, &Line{Drawing: d, Line: s})
		case geom.Arc:
			nodes = append(nodes, &Arc{Drawing: d, Arc: s})
		}
	}
	return nodes
}

// outlineNode returns a single filled or unfilled closed shape node
func outlineNode(c geom.CompoundPolygon, d Drawing, fill bool) Node {
	if p, ok := c.Polygon(); ok {
		return &Polygon{Drawing: d, Polygon: p, Fill: fill}
	}
	return &CompoundPolygon{Drawing: d, CompoundPolygon: c, Fill: fill}
}

// RectLine draws the outline of an axis aligned rectangle, optionally
// grown by Offset on every side
type RectLine struct {
	Base
	Drawing
	Start  geom.Vector2D
	End    geom.Vector2D
	Offset float64
	Fill   bool
}

func NewRectLine(start, end geom.Vector2D, layer string) *RectLine {
	r := &RectLine{Drawing: Drawing{Layer: layer}, Start: start, End: end}
	bind(r)
	return r
}

func (r *RectLine) Kind() Kind { return KindRectLine }

// Corners returns the corners after applying the offset
func (r *RectLine) Corners() (geom.Vector2D, geom.Vector2D) {
	s, e := r.Start, r.End
	if r.Offset != 0 {
		o := geom.Vec(r.Offset, r.Offset)
		s = geom.Vec(math.Min(r.Start.X, r.End.X), math.Min(r.Start.Y, r.End.Y)).Sub(o)
		e = geom.Vec(math.Max(r.Start.X, r.End.X), math.Max(r.Start.Y, r.End.Y)).Add(o)
	}
	return s, e
}

func (r *RectLine) VirtualChildren() ([]Node, error) {
	s, e := r.Corners()
	pts := []geom.Vector2D{s, geom.Vec(s.X, e.Y), e, geom.Vec(e.X, s.Y)}
	if r.Fill {
		return adopt(r, []Node{&Polygon{Drawing: r.Drawing, Polygon: geom.Polygon{Points: pts}, Fill: true}}), nil
	}
	nodes := make([]Node, 4)
	for i := range pts {
		nodes[i] = &Line{Drawing: r.Drawing, Line: geom.NewLine(pts[i], pts[(i+1)%4])}
	}
	return adopt(r, nodes), nil
}

func (r *RectLine) Describe() string {
	s, e := r.Corners()
	return fmt.Sprintf("RectLine [start: %v end: %v]", s, e)
}

// PolygonLine draws a polyline through Points, closed when Closed is set
type PolygonLine struct {
	Base
	Drawing
	Points []geom.Vector2D
	Closed bool
}

// NewPolygonLine returns a polyline. Repeating the first point at the end
// closes it.
func NewPolygonLine(points []geom.Vector2D, layer string) *PolygonLine {
	p := &PolygonLine{Drawing: Drawing{Layer: layer}, Points: points}
	if n := len(points); n > 2 && points[0] == points[n-1] {
		p.Points = points[:n-1]
		p.Closed = true
	}
	bind(p)
	return p
}

func (p *PolygonLine) Kind() Kind { return KindPolygonLine }

func (p *PolygonLine) VirtualChildren() ([]Node, error) {
	var nodes []Node
	for i := 1; i < len(p.Points); i++ {
		nodes = append(nodes, &Line{Drawing: p.Drawing, Line: geom.NewLine(p.Points[i-1], p.Points[i])})
	}
	if p.Closed && len(p.Points) > 2 {
		nodes = append(nodes, &Line{Drawing: p.Drawing, Line: geom.NewLine(p.Points[len(p.Points)-1], p.Points[0])})
	}
	return adopt(p, nodes), nil
}

func (p *PolygonLine) Describe() string {
	return fmt.Sprintf("PolygonLine [points: %d, closed: %t]", len(p.Points), p.Closed)
}

// RoundRect draws a rectangle outline with rounded corners
type RoundRect struct {
	Base
	Drawing
	Start  geom.Vector2D // Top left corner
	Size   geom.Vector2D
	Radius float64
}

// NewRoundRect returns a round rectangle centered on center
func NewRoundRect(center, size geom.Vector2D, radius float64, layer string) (*RoundRect, error) {
	if radius < 0 {
		return nil, fmt.Errorf("corner radius %g must be >= 0: %w", radius, geom.ErrInvalidShape)
	}
	r := &RoundRect{Drawing: Drawing{Layer: layer}, Start: center.Sub(size.Scale(0.5)), Size: size, Radius: radius}
	bind(r)
	return r, nil
}

func (r *RoundRect) Kind() Kind { return KindRoundRect }

func (r *RoundRect) VirtualChildren() ([]Node, error) {
	at, w, h, cr := r.Start, r.Size.X, r.Size.Y, r.Radius
	if cr == 0 {
		return adopt(r, []Node{&Rect{Drawing: r.Drawing, Start: at, End: at.Add(r.Size)}}), nil
	}
	line := func(x1, y1, x2, y2 float64) Node {
		return &Line{Drawing: r.Drawing, Line: geom.NewLine(geom.Vec(x1, y1), geom.Vec(x2, y2))}
	}
	arc := func(cx, cy, sx, sy, angle float64) Node {
		return &Arc{Drawing: r.Drawing, Arc: geom.NewArcAngle(geom.Vec(cx, cy), geom.Vec(sx, sy), angle)}
	}
	return adopt(r, []Node{
		line(at.X+cr, at.Y, at.X+w-cr, at.Y),
		line(at.X+w, at.Y+cr, at.X+w, at.Y+h-cr),
		line(at.X+w-cr, at.Y+h, at.X+cr, at.Y+h),
		line(at.X, at.Y+h-cr, at.X, at.Y+cr),
		arc(at.X+cr, at.Y+cr, at.X, at.Y+cr, 90),
		arc(at.X+w-cr, at.Y+cr, at.X+w-cr, at.Y, 90),
		arc(at.X+cr, at.Y+h-cr, at.X, at.Y+h-cr, -90),
		arc(at.X+w-cr, at.Y+h-cr, at.X+w, at.Y+h-cr, 90),
	}), nil
}

func (r *RoundRect) Describe() string {
	return fmt.Sprintf("RoundRect [start: %v size: %v radius: %g]", r.Start, r.Size, r.Radius)
}

// ChamferedRect is a rectangle with the selected corners cut at 45 degrees
type ChamferedRect struct {
	Base
	Drawing
	At      geom.Vector2D // Center
	Size    geom.Vector2D
	Chamfer *ChamferSizeHandler
	Corners CornerSelection
	Fill    bool
}

func NewChamferedRect(at, size geom.Vector2D, chamfer *ChamferSizeHandler, corners CornerSelection, layer string) *ChamferedRect {
	c := &ChamferedRect{Drawing: Drawing{Layer: layer}, At: at, Size: size, Chamfer: chamfer, Corners: corners}
	bind(c)
	return c
}

func (c *ChamferedRect) Kind() Kind { return KindChamferedRect }

func (c *ChamferedRect) VirtualChildren() ([]Node, error) {
	h := c.Size.Scale(0.5)
	tl, br := c.At.Sub(h), c.At.Add(h)
	if !c.Corners.IsAnySelected() || c.Chamfer == nil {
		return adopt(c, []Node{&Rect{Drawing: c.Drawing, Start: tl, End: br, Fill: c.Fill}}), nil
	}
	cs, err := c.Chamfer.ChamferSize(math.Min(c.Size.X, c.Size.Y))
	if err != nil {
		return nil, fmt.Errorf("failed to expand chamfered rect: %w", err)
	}
	var pts []geom.Vector2D
	if c.Corners.TopLeft {
		pts = append(pts, geom.Vec(tl.X, tl.Y+cs))
	} else {
		pts = append(pts, tl)
	}
	if c.Corners.BottomLeft {
		pts = append(pts, geom.Vec(tl.X, br.Y-cs), geom.Vec(tl.X+cs, br.Y))
	} else {
		pts = append(pts, geom.Vec(tl.X, br.Y))
	}
	if c.Corners.BottomRight {
		pts = append(pts, geom.Vec(br.X-cs, br.Y), geom.Vec(br.X, br.Y-cs))
	} else {
		pts = append(pts, br)
	}
	if c.Corners.TopRight {
		pts = append(pts, geom.Vec(br.X, tl.Y+cs), geom.Vec(br.X-cs, tl.Y))
	} else {
		pts = append(pts, geom.Vec(br.X, tl.Y))
	}
	if c.Corners.TopLeft {
		pts = append(pts, geom.Vec(tl.X+cs, tl.Y))
	}
	return adopt(c, []Node{&Polygon{Drawing: c.Drawing, Polygon: geom.Polygon{Points: pts}, Fill: c.Fill}}), nil
}

func (c *ChamferedRect) Describe() string {
	return fmt.Sprintf("ChamferedRect [at: %v size: %v corners: %v]", c.At, c.Size, c.Corners.List())
}

// Trapezoid draws a trapezoid outline as one polygon
type Trapezoid struct {
	Base
	Drawing
	Shape geom.Trapezoid
	Fill  bool
}

func NewTrapezoid(shape geom.Trapezoid, layer string) *Trapezoid {
	t := &Trapezoid{Drawing: Drawing{Layer: layer}, Shape: shape}
	bind(t)
	return t
}

func (t *Trapezoid) Kind() Kind { return KindTrapezoid }

func (t *Trapezoid) VirtualChildren() ([]Node, error) {
	return adopt(t, []Node{outlineNode(t.Shape.Outline(), t.Drawing, t.Fill)}), nil
}

func (t *Trapezoid) Describe() string {
	return fmt.Sprintf("Trapezoid [center: %v size: %v side angle: %g radius: %g]",
		t.Shape.Center, t.Shape.Size, t.Shape.SideAngle, t.Shape.Radius)
}

// Cross draws two perpendicular lines
type Cross struct {
	Base
	Drawing
	Shape geom.Cross
}

func NewCross(shape geom.Cross, layer string) *Cross {
	c := &Cross{Drawing: Drawing{Layer: layer}, Shape: shape}
	bind(c)
	return c
}

func (c *Cross) Kind() Kind { return KindCross }

func (c *Cross) VirtualChildren() ([]Node, error) {
	return adopt(c, atomNodes(c.Shape.Atoms(), c.Drawing)), nil
}

func (c *Cross) Describe() string {
	return fmt.Sprintf("Cross [center: %v size: %v angle: %g]", c.Shape.Center, c.Shape.Size, c.Shape.Angle)
}

// Stadium draws the hull of two circles. Unfilled stadiums expand into
// lines and arcs, filled ones into a compound polygon.
type Stadium struct {
	Base
	Drawing
	Shape geom.Stadium
	Fill  bool
}

func NewStadium(shape geom.Stadium, layer string) *Stadium {
	s := &Stadium{Drawing: Drawing{Layer: layer}, Shape: shape}
	bind(s)
	return s
}

func (s *Stadium) Kind() Kind { return KindStadium }

func (s *Stadium) VirtualChildren() ([]Node, error) {
	outline := s.Shape.Outline()
	if s.Fill {
		return adopt(s, []Node{&CompoundPolygon{Drawing: s.Drawing, CompoundPolygon: outline, Fill: true}}), nil
	}
	return adopt(s, atomNodes(outline.Segments, s.Drawing)), nil
}

func (s *Stadium) Describe() string {
	return fmt.Sprintf("Stadium [center1: %v center2: %v radius: %g]", s.Shape.Center1, s.Shape.Center2, s.Shape.Radius)
}

// Func expands into whatever Expand returns. The returned nodes must be
// fresh or already owned by the Func.
type Func struct {
	Base
	Name   string
	Expand func() ([]Node, error)
}

func NewFunc(name string, expand func() ([]Node, error)) *Func {
	f := &Func{Name: name, Expand: expand}
	bind(f)
	return f
}

func (f *Func) Kind() Kind { return KindFunc }

func (f *Func) VirtualChildren() ([]Node, error) {
	if f.Expand == nil {
		return nil, nil
	}
	nodes, err := f.Expand()
	if err != nil {
		return nil, fmt.Errorf("failed to expand %s: %w", f.Name, err)
	}
	for _, n := range nodes {
		if f.isSelfOrAncestor(n.base()) {
			return nil, &RecursionDetectedError{Path: append(f.pathFrom(n.base()), n.Kind())}
		}
		if p := n.base().parent; p != nil && p != &f.Base {
			return nil, &MultipleParentsError{Child: n.Kind(), Parent: kindOf(p)}
		}
	}
	return adopt(f, nodes), nil
}

func (f *Func) Describe() string { return "Func [" + f.Name + "]" }
