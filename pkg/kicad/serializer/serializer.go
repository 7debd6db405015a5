// Package serializer writes footprint trees in the KiCad footprint file
// format.
//
// The footprint is flattened, every primitive is mapped to a tagged list
// and the body is sorted by a canonical key, so the output does not depend
// on the order in which the generator appended its nodes.
package serializer

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/OpenTraceLab/fpgen/pkg/kicad/footprint"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/node"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/sexp/kicadsexp"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/style"
)

// Options are the format constants written in the file header
type Options struct {
	Version          int
	Generator        string
	GeneratorVersion string
}

// DefaultOptions returns the KiCad 9 header
func DefaultOptions() Options {
	return Options{
		Version:          20241229,
		Generator:        "kicad-footprint-generator",
		GeneratorVersion: "9.0",
	}
}

// Serializer converts footprints to S-expressions
type Serializer struct {
	style style.Style
	opts  Options
}

// New returns a serializer using st for default stroke widths
func New(st style.Style) *Serializer {
	return &Serializer{style: st, opts: DefaultOptions()}
}

// WithOptions returns a copy of s writing the given header constants
func (s *Serializer) WithOptions(opts Options) *Serializer {
	out := *s
	out.opts = opts
	return &out
}

// Serialize returns the file content of fp
func (s *Serializer) Serialize(fp *footprint.Footprint) (string, error) {
	tree, err := s.Tree(fp)
	if err != nil {
		return "", err
	}
	return kicadsexp.Format(tree), nil
}

// Write writes the file content of fp to w
func (s *Serializer) Write(w io.Writer, fp *footprint.Footprint) error {
	tree, err := s.Tree(fp)
	if err != nil {
		return err
	}
	return kicadsexp.Write(w, tree)
}

type bodyEntry struct {
	key  key
	text string
	elem *kicadsexp.List
}

// Tree returns the tagged-list form of fp
func (s *Serializer) Tree(fp *footprint.Footprint) (*kicadsexp.List, error) {
	prims, err := node.Flatten(fp)
	if err != nil {
		return nil, fmt.Errorf("failed to flatten footprint %s: %w", fp.Name, err)
	}

	var (
		props  []*node.Property
		models []*node.Model
		body   []bodyEntry
	)
	for _, p := range prims {
		switch e := p.(type) {
		case *node.Property:
			props = append(props, e)
			continue
		case *node.Model:
			models = append(models, e)
			continue
		}
		elem, err := s.element(p)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize %s: %w", p.Kind(), err)
		}
		k, err := sortKey(p)
		if err != nil {
			return nil, fmt.Errorf("failed to sort %s: %w", p.Kind(), err)
		}
		body = append(body, bodyEntry{key: k, text: elem.String(), elem: elem})
	}

	// The text form breaks ties between elements with equal keys, so the
	// result is independent of the input order.
	slices.SortStableFunc(body, func(a, b bodyEntry) int {
		if c := compareKeys(a.key, b.key); c != 0 {
			return c
		}
		return cmp.Compare(a.text, b.text)
	})

	root := s.header(fp)
	slices.SortStableFunc(props, func(a, b *node.Property) int {
		if c := cmp.Compare(propertyRank(a.Name), propertyRank(b.Name)); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	for _, p := range props {
		root.Append(s.property(p))
	}
	s.attributes(root, fp)
	for _, e := range body {
		root.Append(e.elem)
	}
	root.Append(kicadsexp.NewList("embedded_fonts", kicadsexp.Bool(false)))
	for _, m := range models {
		root.Append(model(m))
	}
	return root, nil
}

func (s *Serializer) header(fp *footprint.Footprint) *kicadsexp.List {
	root := kicadsexp.NewList("footprint", kicadsexp.Quoted(fp.Name))
	root.Append(
		kicadsexp.NewList("version", kicadsexp.Number(s.opts.Version)),
		str("generator", s.opts.Generator),
		str("generator_version", s.opts.GeneratorVersion),
		str("layer", "F.Cu"),
	)
	if d := fp.Description(); d != "" {
		root.Append(str("descr", d))
	}
	if tags := fp.Tags(); len(tags) > 0 {
		root.Append(str("tags", strings.Join(tags, " ")))
	}
	return root
}

func (s *Serializer) attributes(root *kicadsexp.List, fp *footprint.Footprint) {
	var attrs []kicadsexp.Sexp
	if fp.Type != footprint.Unspecified {
		attrs = append(attrs, kicadsexp.Symbol(fp.Type.String()))
	}
	flags := []struct {
		set  bool
		name string
	}{
		{fp.NotInSchematic, "board_only"},
		{fp.ExcludeFromPositionFiles, "exclude_from_pos_files"},
		{fp.ExcludeFromBOM, "exclude_from_bom"},
		{fp.AllowSoldermaskBridges, "allow_soldermask_bridges"},
		{fp.DNP, "dnp"},
	}
	for _, f := range flags {
		if f.set {
			attrs = append(attrs, kicadsexp.Symbol(f.name))
		}
	}
	if len(attrs) > 0 {
		root.Append(kicadsexp.NewList("attr", attrs...))
	}

	margins := []struct {
		name string
		v    *float64
	}{
		{"solder_mask_margin", fp.MaskMargin},
		{"solder_paste_margin", fp.PasteMargin},
		{"solder_paste_margin_ratio", fp.PasteMarginRatio},
		{"clearance", fp.Clearance},
	}
	for _, m := range margins {
		if m.v != nil && *m.v != 0 {
			root.Append(number(m.name, *m.v))
		}
	}
	if fp.ZoneConnection != node.ZoneInherit {
		root.Append(kicadsexp.NewList("zone_connect", kicadsexp.Number(fp.ZoneConnection)))
	}
}

// propertyRank puts the fields KiCad expects first in their usual order
func propertyRank(name string) int {
	switch name {
	case node.PropReference:
		return 0
	case node.PropValue:
		return 1
	case node.PropDatasheet:
		return 2
	case node.PropDescription:
		return 3
	}
	return 4
}

func (s *Serializer) element(p node.Primitive) (*kicadsexp.List, error) {
	switch e := p.(type) {
	case *node.Line:
		return s.line(e), nil
	case *node.Arc:
		return s.arc(e), nil
	case *node.Circle:
		return s.circle(e), nil
	case *node.Rect:
		return s.rect(e), nil
	case *node.Polygon:
		return s.polygon(e), nil
	case *node.CompoundPolygon:
		return s.compoundPolygon(e), nil
	case *node.Text:
		return s.text(e), nil
	case *node.Pad:
		return s.pad(e)
	case *node.Group:
		return group(e), nil
	}
	return nil, fmt.Errorf("unsupported element %s", p.Kind())
}
