// Package modfile reads KiCad footprint files (.kicad_mod) back into plain
// structs, so generated output can be checked without KiCad.
package modfile

import (
	"math"
	"strings"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/sexp"
)

// MinSupportedVersion is the first footprint format with quoted layer
// names (KiCad 6.0)
const MinSupportedVersion = 20211014

// Footprint is the content of one footprint file
type Footprint struct {
	Name             string
	Version          int
	Generator        string
	GeneratorVersion string
	Layer            string
	Description      string
	Tags             []string
	Attributes       []string // Placement type followed by flags
	EmbeddedFonts    bool

	Properties []sexp.Property
	Texts      []Text
	Lines      []Line
	Arcs       []Arc
	Circles    []Circle
	Rects      []Rect
	Polys      []Poly
	Pads       []Pad
	Groups     []Group
	Models     []Model
}

// Property returns the value of the named property
func (f *Footprint) Property(name string) (string, bool) {
	for _, p := range f.Properties {
		if p.Key == name {
			return p.Value, true
		}
	}
	return "", false
}

// Text is an fp_text node
type Text struct {
	Kind     string // user, reference or value
	Text     string
	Position sexp.PositionAngle
	Layer    string
	Hide     bool
	Effects  sexp.Effects
}

// Line is an fp_line node
type Line struct {
	Start, End geom.Vector2D
	Stroke     sexp.Stroke
	Layer      string
	UUID       string
}

// Arc is an fp_arc node given by three points
type Arc struct {
	Start, Mid, End geom.Vector2D
	Stroke          sexp.Stroke
	Layer           string
	UUID            string
}

// Circle is an fp_circle node
type Circle struct {
	Center, End geom.Vector2D
	Stroke      sexp.Stroke
	Fill        bool
	Layer       string
	UUID        string
}

// Radius is the distance from center to the end point
func (c Circle) Radius() float64 {
	return c.End.Sub(c.Center).Norm()
}

// Rect is an fp_rect node
type Rect struct {
	Start, End geom.Vector2D
	Stroke     sexp.Stroke
	Fill       bool
	Layer      string
	UUID       string
}

// Poly is an fp_poly node. Arc segments of the outline are flattened to
// their three points.
type Poly struct {
	Points []geom.Vector2D
	Stroke sexp.Stroke
	Fill   bool
	Layer  string
	UUID   string
}

// Pad is a pad node
type Pad struct {
	Number      string
	Type        string // thru_hole, smd, connect, np_thru_hole
	Shape       string // circle, rect, oval, roundrect, trapezoid, custom
	Position    sexp.PositionAngle
	Size        geom.Vector2D
	Drill       geom.Vector2D // Zero for SMD pads
	DrillOffset geom.Vector2D
	Layers      []string
	Property    string
	RRatio      float64
	Chamfer     []string
	Primitives  int // Number of primitives of a custom pad
	UUID        string
}

// Group is a group node
type Group struct {
	Name    string
	UUID    string
	Members []string
}

// Model is a 3D model reference
type Model struct {
	Path                  string
	Offset, Scale, Rotate [3]float64
}

// BBox returns the bounding box of the pads and drawings on layer. An
// empty layer selects every layer.
func (f *Footprint) BBox(layer string) geom.BoundingBox {
	box := geom.NewBoundingBox()
	on := func(l string) bool { return layer == "" || l == layer }

	for _, p := range f.Pads {
		if layer != "" && !padOnLayer(p, layer) {
			continue
		}
		// Rotated pads are approximated by their circumscribed square
		h := p.Size.Scale(0.5)
		if math.Mod(p.Position.Angle, 180) != 0 {
			r := h.Norm()
			h = geom.Vec(r, r)
		}
		box.Include(p.Position.Sub(h))
		box.Include(p.Position.Add(h))
	}
	for _, l := range f.Lines {
		if on(l.Layer) {
			box.Include(l.Start)
			box.Include(l.End)
		}
	}
	for _, a := range f.Arcs {
		if on(a.Layer) {
			box.Include(a.Start)
			box.Include(a.Mid)
			box.Include(a.End)
		}
	}
	for _, c := range f.Circles {
		if on(c.Layer) {
			r := geom.Vec(c.Radius(), c.Radius())
			box.Include(c.Center.Sub(r))
			box.Include(c.Center.Add(r))
		}
	}
	for _, r := range f.Rects {
		if on(r.Layer) {
			box.Include(r.Start)
			box.Include(r.End)
		}
	}
	for _, p := range f.Polys {
		if on(p.Layer) {
			for _, pt := range p.Points {
				box.Include(pt)
			}
		}
	}
	return box
}

func padOnLayer(p Pad, layer string) bool {
	for _, l := range p.Layers {
		if l == layer || (strings.HasPrefix(l, "*.") && strings.HasSuffix(layer, l[1:])) {
			return true
		}
	}
	return false
}
