package recipe

import (
	"fmt"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/footprint"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/node"
)

// shapeNode builds the node of a drawn shape
func (b *Builder) shapeNode(s *Shape, ev *evaluator) (node.Node, error) {
	d := node.Drawing{Layer: s.Layer, Width: ev.ptr(s.Width), Style: node.LineStyle(s.Style)}
	if d.Layer == "" {
		return nil, fmt.Errorf("missing layer")
	}

	var n node.Node
	switch s.Kind {
	case "line":
		l := node.NewLine(ev.need(s.Start, "start"), ev.need(s.End, "end"), d.Layer)
		l.Drawing = d
		n = l
	case "arc":
		a, err := b.arc(s, ev)
		if err != nil {
			return nil, err
		}
		arc := node.NewArc(a, d.Layer)
		arc.Drawing = d
		n = arc
	case "circle":
		c := node.NewCircle(ev.need(s.Center, "center"), ev.num(s.Radius), d.Layer)
		c.Drawing, c.Fill = d, s.Fill
		n = c
	case "rect":
		r := node.NewRect(ev.need(s.Start, "start"), ev.need(s.End, "end"), d.Layer)
		r.Drawing, r.Fill = d, s.Fill
		n = r
	case "polygon":
		p := node.NewPolygon(ev.vecs(s.Points), d.Layer)
		p.Drawing, p.Fill = d, s.Fill
		n = p
	case "polyline":
		p := node.NewPolygonLine(ev.vecs(s.Points), d.Layer)
		p.Drawing = d
		p.Closed = p.Closed || s.Closed
		n = p
	case "roundrect":
		r, err := node.NewRoundRect(ev.need(s.Center, "center"), ev.need(s.Size, "size"), ev.num(s.Radius), d.Layer)
		if ev.err != nil {
			return nil, ev.err
		}
		if err != nil {
			return nil, err
		}
		r.Drawing = d
		n = r
	case "chamfered_rect":
		ratio := ev.opt(s.Chamfer, b.style.ChamferRatio)
		h, err := node.NewChamferSizeHandler(&ratio, nil, nil)
		if err != nil {
			return nil, err
		}
		corners := node.AllCorners
		if len(s.Corners) > 0 {
			if corners, err = node.CornersFromNames(s.Corners); err != nil {
				return nil, err
			}
		}
		c := node.NewChamferedRect(ev.need(s.Center, "center"), ev.need(s.Size, "size"), h, corners, d.Layer)
		c.Drawing, c.Fill = d, s.Fill
		n = c
	case "trapezoid":
		t := node.NewTrapezoid(geom.Trapezoid{
			Center:    ev.need(s.Center, "center"),
			Size:      ev.need(s.Size, "size"),
			SideAngle: ev.num(s.SideAngle),
			Radius:    ev.num(s.Radius),
			Angle:     ev.num(s.Rotation),
		}, d.Layer)
		t.Drawing, t.Fill = d, s.Fill
		n = t
	case "cross":
		c := node.NewCross(geom.Cross{
			Center: ev.need(s.Center, "center"),
			Size:   ev.need(s.Size, "size"),
			Angle:  ev.num(s.Rotation),
		}, d.Layer)
		c.Drawing = d
		n = c
	case "stadium":
		st := node.NewStadium(geom.Stadium{
			Center1: ev.need(s.Start, "start"),
			Center2: ev.need(s.End, "end"),
			Radius:  ev.num(s.Radius),
		}, d.Layer)
		st.Drawing, st.Fill = d, s.Fill
		n = st
	default:
		return nil, fmt.Errorf("unknown shape kind %q", s.Kind)
	}
	if ev.err != nil {
		return nil, ev.err
	}
	return n, nil
}

// arc accepts center+start+angle, center+mid+angle and start+mid+end
func (b *Builder) arc(s *Shape, ev *evaluator) (geom.Arc, error) {
	var p geom.ArcParams
	pt := func(v *Vec) *geom.Vector2D {
		if v == nil {
			return nil
		}
		out := ev.vec(*v)
		return &out
	}
	p.Center, p.Start, p.Mid, p.End = pt(s.Center), pt(s.Start), pt(s.Mid), pt(s.End)
	p.Angle = ev.ptr(s.Angle)
	if ev.err != nil {
		return geom.Arc{}, ev.err
	}
	return geom.NewArc(p)
}

// closedShape returns the area covered by a keepout shape
func (b *Builder) closedShape(s *Shape, ev *evaluator) (geom.ClosedShape, error) {
	var out geom.ClosedShape
	switch s.Kind {
	case "circle":
		out = geom.NewCircle(ev.need(s.Center, "center"), ev.num(s.Radius))
	case "rect":
		out = geom.RectangleFromCorners(ev.need(s.Start, "start"), ev.need(s.End, "end"))
	case "roundrect":
		out = geom.RoundRectangle{
			Center: ev.need(s.Center, "center"),
			Size:   ev.need(s.Size, "size"),
			Radius: ev.num(s.Radius),
			Angle:  ev.num(s.Rotation),
		}
	case "polygon":
		out = geom.NewPolygon(ev.vecs(s.Points)...)
	case "trapezoid":
		out = geom.Trapezoid{
			Center:    ev.need(s.Center, "center"),
			Size:      ev.need(s.Size, "size"),
			SideAngle: ev.num(s.SideAngle),
			Radius:    ev.num(s.Radius),
			Angle:     ev.num(s.Rotation),
		}
	case "stadium":
		out = geom.Stadium{
			Center1: ev.need(s.Start, "start"),
			Center2: ev.need(s.End, "end"),
			Radius:  ev.num(s.Radius),
		}
	default:
		return nil, fmt.Errorf("%q cannot be used as keepout", s.Kind)
	}
	if ev.err != nil {
		return nil, ev.err
	}
	return out, nil
}

// keepouts collects the areas silkscreen must avoid: the explicit keepouts
// and, when requested, every pad grown by the silk clearance
func (b *Builder) keepouts(fp *footprint.Footprint, spec *Footprint, ev *evaluator) ([]geom.ClosedShape, error) {
	var out []geom.ClosedShape
	for i := range spec.Keepouts {
		k, err := b.closedShape(&spec.Keepouts[i], ev)
		if err != nil {
			return nil, fmt.Errorf("keepout %d: %w", i+1, err)
		}
		out = append(out, k)
	}
	if !spec.KeepoutPads {
		return out, nil
	}

	prims, err := node.Flatten(fp)
	if err != nil {
		return nil, err
	}
	clearance := b.style.SilkPadClearance + b.style.SilkWidth/2
	for _, pad := range node.Filter[*node.Pad](prims) {
		k, err := padOutline(pad).Inflated(clearance)
		if err != nil {
			return nil, fmt.Errorf("pad %q: %w", pad.Number, err)
		}
		out = append(out, k)
	}
	return out, nil
}

// padOutline approximates the copper of a pad; custom pads use their
// bounding rectangle
func padOutline(p *node.Pad) geom.ClosedShape {
	if p.Shape == node.ShapeCustom {
		bb := p.BBox()
		return geom.RectangleFromCorners(bb.Min, bb.Max)
	}
	return p.Outline()
}

// applyKeepouts cuts the outline primitives among nodes. Filled shapes and
// primitives clear of every keepout pass through unchanged.
func applyKeepouts(nodes []node.Node, keepouts []geom.ClosedShape) []node.Node {
	var out []node.Node
	for _, n := range nodes {
		shape, d, ok := outlineOf(n)
		if !ok || !touches(shape.BBox(), keepouts) {
			out = append(out, n)
			continue
		}
		for _, a := range geom.KeepoutAll(keepouts, []geom.Shape{shape}) {
			switch s := a.(type) {
			case geom.Line:
				l := node.NewLine(s.Start, s.End, d.Layer)
				l.Drawing = d
				out = append(out, l)
			case geom.Arc:
				arc := node.NewArc(s, d.Layer)
				arc.Drawing = d
				out = append(out, arc)
			}
		}
	}
	return out
}

func touches(bb geom.BoundingBox, keepouts []geom.ClosedShape) bool {
	for _, k := range keepouts {
		if bb.Intersects(k.BBox()) {
			return true
		}
	}
	return false
}

// outlineOf returns the geometry of an unfilled drawn primitive
func outlineOf(n node.Node) (geom.Shape, node.Drawing, bool) {
	switch e := n.(type) {
	case *node.Line:
		return e.Line, e.Drawing, true
	case *node.Arc:
		return e.Arc, e.Drawing, true
	case *node.Circle:
		return e.Circle, e.Drawing, !e.Fill
	case *node.Polygon:
		return e.Polygon, e.Drawing, !e.Fill
	case *node.CompoundPolygon:
		return e.CompoundPolygon, e.Drawing, !e.Fill
	case *node.Rect:
		return geom.RectangleFromCorners(e.Start, e.End), e.Drawing, !e.Fill
	}
	return nil, node.Drawing{}, false
}
