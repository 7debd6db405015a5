package node

import (
	"fmt"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
)

// Well known property names
const (
	PropReference   = "Reference"
	PropValue       = "Value"
	PropDatasheet   = "Datasheet"
	PropDescription = "Description"
	PropFootprint   = "Footprint"
)

// TextAttrs holds the placement and font of texts and properties
type TextAttrs struct {
	Text      string
	At        geom.Vector2D
	Rotation  float64
	Layer     string
	Size      geom.Vector2D
	Thickness float64
	Justify   string // Space separated, e.g. "left bottom"
	Mirror    bool
	Hide      bool
}

// DefaultTextAttrs returns silkscreen text with the library font
func DefaultTextAttrs(text string, at geom.Vector2D) TextAttrs {
	return TextAttrs{
		Text:      text,
		At:        at,
		Layer:     "F.SilkS",
		Size:      geom.Vec(1, 1),
		Thickness: 0.15,
	}
}

// BBox estimates the extent from the character count
func (t TextAttrs) BBox() geom.BoundingBox {
	h := geom.Vec(float64(len(t.Text))*t.Size.X/2, t.Size.Y/2)
	return geom.BoundingBoxOf(t.At.Sub(h), t.At.Add(h))
}

func (t TextAttrs) moved(m geom.Motion) TextAttrs {
	t.At = m.Apply(t.At)
	t.Rotation -= m.Angle
	return t
}

func (t TextAttrs) describe() string {
	s := fmt.Sprintf("text: %q, at: %v, layer: %s, size: %v, thickness: %g", t.Text, t.At, t.Layer, t.Size, t.Thickness)
	if t.Justify != "" {
		s += ", justify: " + t.Justify
	}
	return s
}

// Text is free user text
type Text struct {
	Base
	TextAttrs
}

func NewText(attrs TextAttrs) *Text {
	t := &Text{TextAttrs: attrs}
	bind(t)
	return t
}

func (t *Text) Kind() Kind { return KindText }

func (t *Text) Transformed(m geom.Motion) Primitive {
	out := &Text{TextAttrs: t.moved(m)}
	out.UUID = t.UUID
	return out
}

func (t *Text) Describe() string { return "Text [" + t.describe() + "]" }

// Property is a named footprint field such as the reference designator
type Property struct {
	Base
	TextAttrs
	Name string
}

func NewProperty(name string, attrs TextAttrs) *Property {
	p := &Property{Name: name, TextAttrs: attrs}
	bind(p)
	return p
}

func (p *Property) Kind() Kind { return KindProperty }

func (p *Property) Transformed(m geom.Motion) Primitive {
	out := &Property{Name: p.Name, TextAttrs: p.moved(m)}
	out.UUID = p.UUID
	return out
}

func (p *Property) Describe() string {
	return fmt.Sprintf("Property %s [%s]", p.Name, p.describe())
}
