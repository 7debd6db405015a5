// Package preview renders footprints to SVG for visual review. Every layer
// becomes one group, drawn back to front.
package preview

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/footprint"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/node"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/style"
)

// Options control the drawing
type Options struct {
	Scale  float64 // Pixels per mm
	Margin float64 // Border around the footprint in mm
}

// DefaultOptions returns 40 px/mm with a 1 mm border
func DefaultOptions() Options {
	return Options{Scale: 40, Margin: 1}
}

// Renderer draws footprints
type Renderer struct {
	style style.Style
	opts  Options
}

// New returns a renderer using st for default stroke widths
func New(st style.Style, opts Options) *Renderer {
	if opts.Scale <= 0 {
		opts.Scale = DefaultOptions().Scale
	}
	return &Renderer{style: st, opts: opts}
}

// Stacking order, bottom first
var layerOrder = []string{
	"B.CrtYd", "B.Fab", "B.Adhes", "B.Paste", "B.Mask", "B.Cu", "B.SilkS",
	"Edge.Cuts", "Dwgs.User", "Cmts.User", "Eco1.User", "Eco2.User",
	"F.Fab", "F.Adhes", "F.Cu", "F.Paste", "F.Mask", "F.SilkS", "F.CrtYd",
}

const drillGroup = "Drills"

type path struct {
	d     string
	style string
}

type label struct {
	at    geom.Vector2D // Pixels
	text  string
	attrs []string
}

type layer struct {
	paths  []path
	labels []label
}

type scene struct {
	t      Transform
	layers map[string]*layer
}

func (s *scene) layer(name string) *layer {
	l, ok := s.layers[name]
	if !ok {
		l = &layer{}
		s.layers[name] = l
	}
	return l
}

// Render writes the SVG drawing of fp to w
func (r *Renderer) Render(w io.Writer, fp *footprint.Footprint) error {
	prims, err := node.Flatten(fp)
	if err != nil {
		return fmt.Errorf("failed to flatten %s: %w", fp.Name, err)
	}
	box, err := node.BoundingBox(fp)
	if err != nil {
		return err
	}
	if box.IsEmpty() {
		box = geom.BoundingBoxOf(geom.Vector2D{})
	}
	box = box.Inflated(r.opts.Margin)

	sc := &scene{t: Transform{Origin: box.Min, Scale: r.opts.Scale}, layers: map[string]*layer{}}
	for _, p := range prims {
		r.add(sc, p)
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	width := int(math.Ceil(sc.t.Length(box.Width())))
	height := int(math.Ceil(sc.t.Length(box.Height())))
	canvas.Start(width, height)
	canvas.Title(fp.Name)
	canvas.Rect(0, 0, width, height, "fill:"+hex(colorBackground))
	for _, name := range stacked(sc.layers) {
		l := sc.layers[name]
		c := layerColor(name)
		if name == drillGroup {
			c = colorBackground
		}
		canvas.Group(fmt.Sprintf(`id="%s"`, name), fmt.Sprintf(`class="%s"`, layerClass(name)), "opacity:"+opacity(c))
		for _, p := range l.paths {
			canvas.Path(p.d, p.style)
		}
		for _, t := range l.labels {
			canvas.Text(int(math.Round(t.at.X)), int(math.Round(t.at.Y)), t.text, t.attrs...)
		}
		canvas.Gend()
	}
	canvas.End()

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}
	return nil
}

// stacked returns the layer names in drawing order; unknown layers go
// below the front layers and drills on top
func stacked(layers map[string]*layer) []string {
	var known, other []string
	for name := range layers {
		if slices.Contains(layerOrder, name) || name == drillGroup {
			known = append(known, name)
		} else {
			other = append(other, name)
		}
	}
	rank := func(name string) int {
		if name == drillGroup {
			return len(layerOrder)
		}
		return slices.Index(layerOrder, name)
	}
	slices.SortFunc(known, func(a, b string) int { return rank(a) - rank(b) })
	slices.Sort(other)

	split := len(known)
	for i, name := range known {
		if strings.HasPrefix(name, "F.") {
			split = i
			break
		}
	}
	out := slices.Clone(known[:split])
	out = append(out, other...)
	return append(out, known[split:]...)
}

func (r *Renderer) add(sc *scene, p node.Primitive) {
	switch e := p.(type) {
	case *node.Line:
		r.stroke(sc, e.Drawing, e.Line.Atoms(), false, false)
	case *node.Arc:
		r.stroke(sc, e.Drawing, e.Arc.Atoms(), false, false)
	case *node.Circle:
		r.stroke(sc, e.Drawing, e.Circle.Atoms(), true, e.Fill)
	case *node.Polygon:
		r.stroke(sc, e.Drawing, e.Polygon.Atoms(), true, e.Fill)
	case *node.CompoundPolygon:
		r.stroke(sc, e.Drawing, e.CompoundPolygon.Atoms(), true, e.Fill)
	case *node.Rect:
		r.stroke(sc, e.Drawing, geom.RectangleFromCorners(e.Start, e.End).Atoms(), true, e.Fill)
	case *node.Text:
		r.text(sc, e.TextAttrs)
	case *node.Property:
		r.text(sc, e.TextAttrs)
	case *node.Pad:
		r.pad(sc, e)
	}
}

func (r *Renderer) stroke(sc *scene, d node.Drawing, atoms []geom.Atom, closed, fill bool) {
	c := hex(layerColor(d.Layer))
	w := sc.t.Length(d.StrokeWidth(r.style.LineWidth(d.Layer)))
	css := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%s;stroke-linecap:round;stroke-linejoin:round", c, num(w))
	if fill {
		css = fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%s;stroke-linejoin:round", c, c, num(w))
	}
	switch d.LineStyle() {
	case node.StyleDash:
		css += fmt.Sprintf(";stroke-dasharray:%s,%s", num(4*w), num(2*w))
	case node.StyleDot:
		css += fmt.Sprintf(";stroke-dasharray:%s,%s", num(w/10), num(2*w))
	case node.StyleDashDot, node.StyleDashDotDot:
		css += fmt.Sprintf(";stroke-dasharray:%s,%s,%s,%s", num(4*w), num(2*w), num(w/10), num(2*w))
	}
	l := sc.layer(d.Layer)
	l.paths = append(l.paths, path{d: sc.t.pathData(atoms, closed), style: css})
}

func (r *Renderer) text(sc *scene, t node.TextAttrs) {
	if t.Hide || t.Text == "" {
		return
	}
	at := sc.t.Apply(t.At)
	attrs := []string{fmt.Sprintf("text-anchor:middle;dominant-baseline:central;font-family:monospace;font-size:%spx;fill:%s",
		num(sc.t.Length(t.Size.Y)), hex(layerColor(t.Layer)))}
	if t.Rotation != 0 {
		attrs = append(attrs, fmt.Sprintf(`transform="rotate(%s %s %s)"`, num(-t.Rotation), num(at.X), num(at.Y)))
	}
	l := sc.layer(t.Layer)
	l.labels = append(l.labels, label{at: at, text: t.Text, attrs: attrs})
}

func (r *Renderer) pad(sc *scene, p *node.Pad) {
	atoms := p.Outline().Atoms()
	if p.Shape == node.ShapeCustom {
		m := geom.Motion{Angle: -p.Rotation, Offset: p.At}
		for _, prim := range p.Primitives {
			if s, ok := prim.Transformed(m).(interface{ Atoms() []geom.Atom }); ok {
				atoms = append(atoms, s.Atoms()...)
			}
		}
	}
	d := sc.t.pathData(atoms, true)
	for _, name := range expandLayers(p.Layers) {
		l := sc.layer(name)
		l.paths = append(l.paths, path{d: d, style: "fill:" + hex(layerColor(name)) + ";stroke:none"})
	}
	if hole, ok := p.DrillOutline(); ok {
		l := sc.layer(drillGroup)
		l.paths = append(l.paths, path{d: sc.t.pathData(hole.Atoms(), true), style: "fill:" + hex(colorBackground) + ";stroke:" + hex(colorDrill)})
	}
}

// expandLayers resolves wildcard layers such as *.Cu to both sides
func expandLayers(layers []string) []string {
	var out []string
	for _, l := range layers {
		if rest, ok := strings.CutPrefix(l, "*."); ok {
			out = append(out, "F."+rest, "B."+rest)
			continue
		}
		out = append(out, l)
	}
	return out
}
