package node

import (
	"fmt"
	"math"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
)

// LineStyle is the stroke pattern of drawn shapes
type LineStyle string

const (
	StyleSolid      LineStyle = "solid"
	StyleDash       LineStyle = "dash"
	StyleDot        LineStyle = "dot"
	StyleDashDot    LineStyle = "dash_dot"
	StyleDashDotDot LineStyle = "dash_dot_dot"
)

// Drawing holds the attributes shared by drawn shapes
type Drawing struct {
	Layer string
	Width *float64  // nil uses the default width of the layer
	Style LineStyle // Empty means solid
}

// Width returns a pointer to w for use in Drawing
func Width(w float64) *float64 { return &w }

// StrokeWidth returns the explicit width or def
func (d Drawing) StrokeWidth(def float64) float64 {
	if d.Width == nil {
		return def
	}
	return *d.Width
}

// LineStyle returns the stroke pattern, solid when unset
func (d Drawing) LineStyle() LineStyle {
	if d.Style == "" {
		return StyleSolid
	}
	return d.Style
}

func (d Drawing) describe() string {
	if d.Width == nil {
		return "layer: " + d.Layer
	}
	return fmt.Sprintf("layer: %s, width: %g", d.Layer, *d.Width)
}

// Line is a straight segment
type Line struct {
	Base
	Drawing
	geom.Line
}

// NewLine returns a line on layer
func NewLine(start, end geom.Vector2D, layer string) *Line {
	l := &Line{Drawing: Drawing{Layer: layer}, Line: geom.NewLine(start, end)}
	bind(l)
	return l
}

func (l *Line) Kind() Kind { return KindLine }

func (l *Line) Transformed(m geom.Motion) Primitive {
	out := &Line{Drawing: l.Drawing, Line: geom.NewLine(m.Apply(l.Start), m.Apply(l.End))}
	out.UUID = l.UUID
	return out
}

func (l *Line) Describe() string {
	return fmt.Sprintf("Line [start: %v end: %v %s]", l.Start, l.End, l.describe())
}

// Arc is a circular arc
type Arc struct {
	Base
	Drawing
	geom.Arc
}

// NewArc returns an arc on layer
func NewArc(a geom.Arc, layer string) *Arc {
	n := &Arc{Drawing: Drawing{Layer: layer}, Arc: a}
	bind(n)
	return n
}

func (a *Arc) Kind() Kind { return KindArc }

func (a *Arc) Transformed(m geom.Motion) Primitive {
	out := &Arc{Drawing: a.Drawing, Arc: geom.Arc{Center: m.Apply(a.Center), Start: m.Apply(a.Start), Angle: a.Angle}}
	out.UUID = a.UUID
	return out
}

func (a *Arc) Describe() string {
	return fmt.Sprintf("Arc [center: %v start: %v angle: %g %s]", a.Center, a.Start, a.Angle, a.describe())
}

// Circle is a full circle, optionally filled
type Circle struct {
	Base
	Drawing
	geom.Circle
	Fill bool
}

// NewCircle returns a circle on layer
func NewCircle(center geom.Vector2D, radius float64, layer string) *Circle {
	c := &Circle{Drawing: Drawing{Layer: layer}, Circle: geom.NewCircle(center, radius)}
	bind(c)
	return c
}

func (c *Circle) Kind() Kind { return KindCircle }

func (c *Circle) Transformed(m geom.Motion) Primitive {
	out := &Circle{Drawing: c.Drawing, Circle: geom.Circle{Center: m.Apply(c.Center), Radius: c.Radius}, Fill: c.Fill}
	out.UUID = c.UUID
	return out
}

func (c *Circle) Describe() string {
	return fmt.Sprintf("Circle [center: %v radius: %g %s]", c.Center, c.Radius, c.describe())
}

// Polygon is a closed outline through straight segments
type Polygon struct {
	Base
	Drawing
	geom.Polygon
	Fill bool
}

// NewPolygon returns a polygon through points on layer
func NewPolygon(points []geom.Vector2D, layer string) *Polygon {
	p := &Polygon{Drawing: Drawing{Layer: layer}, Polygon: geom.NewPolygon(points...)}
	bind(p)
	return p
}

func (p *Polygon) Kind() Kind { return KindPolygon }

func (p *Polygon) Transformed(m geom.Motion) Primitive {
	pts := make([]geom.Vector2D, len(p.Points))
	for i, pt := range p.Points {
		pts[i] = m.Apply(pt)
	}
	out := &Polygon{Drawing: p.Drawing, Polygon: geom.Polygon{Points: pts}, Fill: p.Fill}
	out.UUID = p.UUID
	return out
}

func (p *Polygon) Describe() string {
	return fmt.Sprintf("Polygon [points: %d %s]", len(p.Points), p.describe())
}

// CompoundPolygon is a closed outline of lines and arcs
type CompoundPolygon struct {
	Base
	Drawing
	geom.CompoundPolygon
	Fill bool
}

// NewCompoundPolygon returns a compound polygon on layer
func NewCompoundPolygon(c geom.CompoundPolygon, layer string) *CompoundPolygon {
	n := &CompoundPolygon{Drawing: Drawing{Layer: layer}, CompoundPolygon: c}
	bind(n)
	return n
}

func (c *CompoundPolygon) Kind() Kind { return KindCompoundPolygon }

func (c *CompoundPolygon) Transformed(m geom.Motion) Primitive {
	moved := c.CompoundPolygon.Transformed(m).(geom.CompoundPolygon)
	out := &CompoundPolygon{Drawing: c.Drawing, CompoundPolygon: moved, Fill: c.Fill}
	out.UUID = c.UUID
	return out
}

func (c *CompoundPolygon) Describe() string {
	return fmt.Sprintf("CompoundPolygon [segments: %d %s]", len(c.Segments), c.describe())
}

// Rect is an axis aligned rectangle written natively by the file format
type Rect struct {
	Base
	Drawing
	Start geom.Vector2D
	End   geom.Vector2D
	Fill  bool
}

// NewRect returns the rectangle spanned by two corners
func NewRect(start, end geom.Vector2D, layer string) *Rect {
	r := &Rect{Drawing: Drawing{Layer: layer}, Start: start, End: end}
	bind(r)
	return r
}

func (r *Rect) Kind() Kind { return KindRect }

// TopLeft returns the corner with the smallest coordinates
func (r *Rect) TopLeft() geom.Vector2D {
	return geom.Vec(math.Min(r.Start.X, r.End.X), math.Min(r.Start.Y, r.End.Y))
}

// BottomRight returns the corner with the largest coordinates
func (r *Rect) BottomRight() geom.Vector2D {
	return geom.Vec(math.Max(r.Start.X, r.End.X), math.Max(r.Start.Y, r.End.Y))
}

// BBox returns the bounding box of the rectangle
func (r *Rect) BBox() geom.BoundingBox {
	return geom.BoundingBoxOf(r.Start, r.End)
}

// Transformed keeps the rectangle native for rotations by multiples of 90
// degrees and turns it into a polygon otherwise
func (r *Rect) Transformed(m geom.Motion) Primitive {
	if !isQuarterTurn(m.Angle) {
		tl, br := r.TopLeft(), r.BottomRight()
		corners := []geom.Vector2D{tl, geom.Vec(br.X, tl.Y), br, geom.Vec(tl.X, br.Y)}
		for i, c := range corners {
			corners[i] = m.Apply(c)
		}
		out := &Polygon{Drawing: r.Drawing, Polygon: geom.Polygon{Points: corners}, Fill: r.Fill}
		out.UUID = r.UUID
		return out
	}
	out := &Rect{Drawing: r.Drawing, Start: m.Apply(r.Start), End: m.Apply(r.End), Fill: r.Fill}
	out.UUID = r.UUID
	return out
}

func (r *Rect) Describe() string {
	return fmt.Sprintf("Rect [start: %v end: %v %s]", r.Start, r.End, r.describe())
}

func isQuarterTurn(angle float64) bool {
	q := math.Mod(math.Abs(angle), 90)
	return q < 1e-9 || 90-q < 1e-9
}
