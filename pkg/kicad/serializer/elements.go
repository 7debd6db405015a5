package serializer

import (
	"strings"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/node"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/sexp/kicadsexp"
)

func str(head, v string) *kicadsexp.List {
	return kicadsexp.NewList(head, kicadsexp.Quoted(v))
}

func sym(head string, v ...string) *kicadsexp.List {
	l := kicadsexp.NewList(head)
	for _, s := range v {
		l.Append(kicadsexp.Symbol(s))
	}
	return l
}

func number(head string, v ...float64) *kicadsexp.List {
	l := kicadsexp.NewList(head)
	for _, f := range v {
		l.Append(kicadsexp.Number(f))
	}
	return l
}

func xy(head string, p geom.Vector2D) *kicadsexp.List {
	return number(head, p.X, p.Y)
}

func flag(head string, b bool) *kicadsexp.List {
	return kicadsexp.NewList(head, kicadsexp.Bool(b))
}

func quotedList(head string, v []string) *kicadsexp.List {
	l := kicadsexp.NewList(head)
	for _, s := range v {
		l.Append(kicadsexp.Quoted(s))
	}
	return l
}

// withUUID appends the uuid of elements that are referenced by a group
func withUUID(l *kicadsexp.List, id uuid.UUID) *kicadsexp.List {
	if id != uuid.Nil {
		l.Append(str("uuid", id.String()))
	}
	return l
}

func (s *Serializer) stroke(d node.Drawing) *kicadsexp.List {
	return kicadsexp.NewList("stroke",
		number("width", d.StrokeWidth(s.style.LineWidth(d.Layer))),
		sym("type", string(d.LineStyle())),
	)
}

func (s *Serializer) line(l *node.Line) *kicadsexp.List {
	return withUUID(kicadsexp.NewList("fp_line",
		xy("start", l.Start),
		xy("end", l.End),
		s.stroke(l.Drawing),
		str("layer", l.Layer),
	), l.UUID)
}

// arcPointList returns start, mid and end with the negative sweep swap
func arcPointList(a geom.Arc) []kicadsexp.Sexp {
	start, end := arcPoints(a)
	return []kicadsexp.Sexp{xy("start", start), xy("mid", a.MidPoint()), xy("end", end)}
}

func (s *Serializer) arc(a *node.Arc) *kicadsexp.List {
	l := kicadsexp.NewList("fp_arc", arcPointList(a.Arc)...)
	l.Append(s.stroke(a.Drawing), str("layer", a.Layer))
	return withUUID(l, a.UUID)
}

func (s *Serializer) circle(c *node.Circle) *kicadsexp.List {
	return withUUID(kicadsexp.NewList("fp_circle",
		xy("center", c.Center),
		xy("end", c.Center.Add(geom.Vec(c.Radius, 0))),
		s.stroke(c.Drawing),
		flag("fill", c.Fill),
		str("layer", c.Layer),
	), c.UUID)
}

func (s *Serializer) rect(r *node.Rect) *kicadsexp.List {
	return withUUID(kicadsexp.NewList("fp_rect",
		xy("start", r.TopLeft()),
		xy("end", r.BottomRight()),
		s.stroke(r.Drawing),
		flag("fill", r.Fill),
		str("layer", r.Layer),
	), r.UUID)
}

func pointList(points []geom.Vector2D) *kicadsexp.List {
	pts := kicadsexp.NewList("pts")
	for _, p := range points {
		pts.Append(xy("xy", p))
	}
	return pts
}

func (s *Serializer) polygon(p *node.Polygon) *kicadsexp.List {
	return withUUID(kicadsexp.NewList("fp_poly",
		pointList(p.Points),
		s.stroke(p.Drawing),
		flag("fill", p.Fill),
		str("layer", p.Layer),
	), p.UUID)
}

func (s *Serializer) compoundPolygon(c *node.CompoundPolygon) *kicadsexp.List {
	pts := kicadsexp.NewList("pts")
	for _, e := range c.PointsAndArcs() {
		if e.Arc == nil {
			pts.Append(xy("xy", e.Point))
			continue
		}
		// KiCad keeps the direction of arcs inside outlines
		pts.Append(kicadsexp.NewList("arc",
			xy("start", e.Arc.Start),
			xy("mid", e.Arc.MidPoint()),
			xy("end", e.Arc.EndPoint()),
		))
	}
	return withUUID(kicadsexp.NewList("fp_poly",
		pts,
		s.stroke(c.Drawing),
		flag("fill", c.Fill),
		str("layer", c.Layer),
	), c.UUID)
}

func textBody(l *kicadsexp.List, t node.TextAttrs) *kicadsexp.List {
	l.Append(number("at", t.At.X, t.At.Y, t.Rotation), str("layer", t.Layer))
	if t.Hide {
		l.Append(flag("hide", true))
	}
	effects := kicadsexp.NewList("effects", kicadsexp.NewList("font",
		xy("size", t.Size),
		number("thickness", t.Thickness),
	))
	var justify []string
	if t.Mirror {
		justify = append(justify, "mirror")
	}
	justify = append(justify, strings.Fields(t.Justify)...)
	if len(justify) > 0 {
		effects.Append(sym("justify", justify...))
	}
	return l.Append(effects)
}

func (s *Serializer) property(p *node.Property) *kicadsexp.List {
	l := kicadsexp.NewList("property", kicadsexp.Quoted(p.Name), kicadsexp.Quoted(p.Text))
	return withUUID(textBody(l, p.TextAttrs), p.UUID)
}

func (s *Serializer) text(t *node.Text) *kicadsexp.List {
	l := kicadsexp.NewList("fp_text", kicadsexp.Symbol("user"), kicadsexp.Quoted(t.Text))
	return withUUID(textBody(l, t.TextAttrs), t.UUID)
}

func group(g *node.Group) *kicadsexp.List {
	return kicadsexp.NewList("group",
		kicadsexp.Quoted(g.Name),
		str("uuid", g.UUID.String()),
		quotedList("members", g.Members()),
	)
}

func xyz(head string, v node.Vector3D) *kicadsexp.List {
	return kicadsexp.NewList(head, number("xyz", v.X, v.Y, v.Z))
}

func model(m *node.Model) *kicadsexp.List {
	return kicadsexp.NewList("model",
		kicadsexp.Quoted(m.Filename),
		xyz("offset", m.Offset),
		xyz("scale", m.Scale),
		xyz("rotate", m.Rotate),
	)
}
