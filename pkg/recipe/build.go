package recipe

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/footprint"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/node"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/style"
)

// Builder turns recipe instances into footprint trees
type Builder struct {
	style style.Style
}

// NewBuilder returns a builder that takes its defaults from st
func NewBuilder(st style.Style) *Builder {
	return &Builder{style: st}
}

// Build assembles the footprint of one instance
func (b *Builder) Build(inst Instance) (*footprint.Footprint, error) {
	if inst.Err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", inst.Name, inst.Err)
	}
	fp, err := b.build(inst)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", inst.Name, err)
	}
	return fp, nil
}

func (b *Builder) build(inst Instance) (*footprint.Footprint, error) {
	spec := inst.Spec
	ev := &evaluator{sc: inst.Scope}

	typ, err := footprint.ParseType(spec.Type)
	if err != nil {
		return nil, err
	}
	fp := footprint.New(inst.Name, typ)
	fp.SetDescription(ev.text(spec.Description))
	for _, t := range spec.Tags {
		fp.AddTags(ev.text(t))
	}
	if err := b.applyAttributes(fp, spec.Attributes, ev); err != nil {
		return nil, err
	}

	for i := range spec.Pads {
		n, err := b.padNode(&spec.Pads[i], ev)
		if err != nil {
			return nil, fmt.Errorf("pad %d: %w", i+1, err)
		}
		if err := fp.Append(n); err != nil {
			return nil, err
		}
	}

	keepouts, err := b.keepouts(fp, spec, ev)
	if err != nil {
		return nil, err
	}
	groups := map[string][]node.Node{}
	var groupOrder []string
	for i := range spec.Shapes {
		s := &spec.Shapes[i]
		n, err := b.shapeNode(s, ev)
		if err != nil {
			return nil, fmt.Errorf("shape %d (%s): %w", i+1, s.Kind, err)
		}
		nodes := []node.Node{n}
		if s.Group != "" || (len(keepouts) > 0 && isSilk(s.Layer)) {
			if nodes, err = primitives(n); err != nil {
				return nil, err
			}
		}
		if len(keepouts) > 0 && isSilk(s.Layer) {
			nodes = applyKeepouts(nodes, keepouts)
		}
		if err := fp.Extend(nodes...); err != nil {
			return nil, err
		}
		if s.Group != "" {
			if _, ok := groups[s.Group]; !ok {
				groupOrder = append(groupOrder, s.Group)
			}
			groups[s.Group] = append(groups[s.Group], nodes...)
		}
	}
	for _, name := range groupOrder {
		if err := fp.Append(fp.Group(name, groups[name]...)); err != nil {
			return nil, err
		}
	}

	for _, t := range spec.Texts {
		attrs := b.textAttrs(t, t.Text, "F.SilkS", ev)
		if err := fp.Append(node.NewText(attrs)); err != nil {
			return nil, err
		}
	}
	if ev.err != nil {
		return nil, ev.err
	}

	if spec.Courtyard != nil {
		if err := b.addCourtyard(fp, spec.Courtyard, ev); err != nil {
			return nil, err
		}
	}
	if err := b.addProperties(fp, spec.Properties, ev); err != nil {
		return nil, err
	}
	if spec.Model != nil {
		m := node.NewModel(ev.text(strings.ReplaceAll(spec.Model.Path, "{name}", inst.Name)))
		m.Offset = vector3(ev.triple(spec.Model.Offset, [3]float64{}))
		m.Scale = vector3(ev.triple(spec.Model.Scale, [3]float64{1, 1, 1}))
		m.Rotate = vector3(ev.triple(spec.Model.Rotate, [3]float64{}))
		if err := fp.Append(m); err != nil {
			return nil, err
		}
	}
	return fp, ev.err
}

func vector3(v [3]float64) node.Vector3D {
	return node.Vector3D{X: v[0], Y: v[1], Z: v[2]}
}

func (b *Builder) applyAttributes(fp *footprint.Footprint, a Attributes, ev *evaluator) error {
	fp.ExcludeFromBOM = a.ExcludeFromBOM
	fp.ExcludeFromPositionFiles = a.ExcludeFromPositionFiles
	fp.AllowSoldermaskBridges = a.AllowSoldermaskBridges
	fp.NotInSchematic = a.BoardOnly
	fp.DNP = a.DNP
	fp.MaskMargin = ev.ptr(a.MaskMargin)
	fp.PasteMargin = ev.ptr(a.PasteMargin)
	fp.Clearance = ev.ptr(a.Clearance)
	if a.PasteMarginRatio != nil {
		if err := fp.SetPasteMarginRatio(ev.num(*a.PasteMarginRatio)); err != nil {
			return err
		}
	}
	return ev.err
}

func (b *Builder) textAttrs(t Text, text, layer string, ev *evaluator) node.TextAttrs {
	attrs := node.TextAttrs{
		Text:      ev.text(text),
		At:        ev.vec(t.At),
		Rotation:  ev.num(t.Rotation),
		Layer:     layer,
		Size:      geom.Vec(b.style.TextSize, b.style.TextSize),
		Thickness: ev.opt(t.Thickness, b.style.TextThickness),
		Justify:   t.Justify,
		Mirror:    t.Mirror,
		Hide:      t.Hide,
	}
	if t.Layer != "" {
		attrs.Layer = t.Layer
	}
	if t.Size != nil {
		attrs.Size = ev.vec(*t.Size)
	}
	return attrs
}

// addProperties places Reference above and Value below the footprint
// unless the recipe positions them
func (b *Builder) addProperties(fp *footprint.Footprint, p Properties, ev *evaluator) error {
	box, err := node.BoundingBox(fp)
	if err != nil {
		return err
	}
	if box.IsEmpty() {
		box = geom.BoundingBoxOf(geom.Vector2D{})
	}
	x := geom.RoundToGridNearest(box.Center().X, b.style.Grid)
	above := geom.Vec(x, geom.RoundToGridDown(box.Min.Y-b.style.TextSize, b.style.Grid))
	below := geom.Vec(x, geom.RoundToGridUp(box.Max.Y+b.style.TextSize, b.style.Grid))

	ref := b.property(p.Reference, "REF**", "F.SilkS", above, ev)
	val := b.property(p.Value, fp.Name, "F.Fab", below, ev)
	props := []*node.Property{
		node.NewProperty(node.PropReference, ref),
		node.NewProperty(node.PropValue, val),
	}
	if p.Datasheet != "" {
		attrs := b.textAttrs(Text{}, p.Datasheet, "F.Fab", ev)
		attrs.Hide = true
		props = append(props, node.NewProperty(node.PropDatasheet, attrs))
	}
	if ev.err != nil {
		return ev.err
	}
	for _, prop := range props {
		if err := fp.Append(prop); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) property(t *Text, text, layer string, at geom.Vector2D, ev *evaluator) node.TextAttrs {
	if t == nil {
		attrs := b.textAttrs(Text{}, text, layer, ev)
		attrs.At = at
		return attrs
	}
	if t.Text != "" {
		text = t.Text
	}
	return b.textAttrs(*t, text, layer, ev)
}

// addCourtyard draws a rectangle around the pads and the measured layers,
// grown by the clearance and snapped outwards to the courtyard grid
func (b *Builder) addCourtyard(fp *footprint.Footprint, c *Courtyard, ev *evaluator) error {
	layers := c.Layers
	if layers == nil {
		layers = []string{"F.Fab", "B.Fab"}
	}
	layer := c.Layer
	if layer == "" {
		layer = "F.CrtYd"
	}
	clearance := ev.opt(c.Clearance, b.style.CourtyardOffset)
	if ev.err != nil {
		return ev.err
	}

	prims, err := node.Flatten(fp)
	if err != nil {
		return err
	}
	box := geom.NewBoundingBox()
	for _, p := range prims {
		if pad, ok := p.(*node.Pad); ok {
			box.IncludeBox(pad.BBox())
			continue
		}
		d, ok := drawingOf(p)
		if !ok || !slices.Contains(layers, d.Layer) {
			continue
		}
		if bb, ok := p.(interface{ BBox() geom.BoundingBox }); ok {
			box.IncludeBox(bb.BBox())
		}
	}
	if box.IsEmpty() {
		return fmt.Errorf("courtyard has nothing to enclose")
	}
	box = box.Inflated(clearance)
	grid := b.style.CourtyardGrid
	start := geom.Vec(geom.RoundToGridDown(box.Min.X, grid), geom.RoundToGridDown(box.Min.Y, grid))
	end := geom.Vec(geom.RoundToGridUp(box.Max.X, grid), geom.RoundToGridUp(box.Max.Y, grid))
	return fp.Append(node.NewRectLine(start, end, layer))
}

// padNode returns a pad or a pad array
func (b *Builder) padNode(p *Pad, ev *evaluator) (node.Node, error) {
	spec, err := b.padSpec(p, ev)
	if err != nil {
		return nil, err
	}
	if p.Array == nil {
		pad, err := node.NewPad(spec)
		if err != nil {
			return nil, err
		}
		return pad, nil
	}

	a := p.Array
	count := ev.num(a.Count)
	arr, err := node.NewPadArray(spec, int(math.Round(count)), ev.vec(a.Center), ev.vec(a.Pitch))
	if ev.err != nil {
		return nil, ev.err
	}
	if err != nil {
		return nil, err
	}
	arr.Initial = int(math.Round(ev.opt(a.Initial, 1)))
	arr.Increment = int(math.Round(ev.opt(a.Increment, 1)))
	arr.Prefix = a.Prefix
	for _, h := range a.Hidden {
		arr.Hidden = append(arr.Hidden, int(math.Round(ev.num(h))))
	}
	arr.Pad1Shape = node.PadShape(a.Pad1Shape)
	if ev.err != nil {
		return nil, ev.err
	}
	// The template must validate as a pad even though arrays place copies
	if _, err := node.NewPad(spec); err != nil {
		return nil, err
	}
	return arr, nil
}

var padTypes = map[string]node.PadType{
	"smd":          node.PadSMT,
	"smt":          node.PadSMT,
	"thru_hole":    node.PadTHT,
	"tht":          node.PadTHT,
	"np_thru_hole": node.PadNPTH,
	"npth":         node.PadNPTH,
	"connect":      node.PadConnect,
}

var zoneConnections = map[string]node.ZoneConnection{
	"":        node.ZoneInherit,
	"inherit": node.ZoneInherit,
	"none":    node.ZoneNone,
	"thermal": node.ZoneThermalRelief,
	"solid":   node.ZoneSolid,
}

var unusedLayerModes = map[string]node.UnconnectedLayerMode{
	"":          node.KeepAllLayers,
	"keep":      node.KeepAllLayers,
	"remove":    node.RemoveAllLayers,
	"keep_ends": node.RemoveExceptStartAndEnd,
}

func (b *Builder) padSpec(p *Pad, ev *evaluator) (node.PadSpec, error) {
	typ, ok := padTypes[strings.ToLower(p.Type)]
	if !ok {
		return node.PadSpec{}, fmt.Errorf("unknown pad type %q: %w", p.Type, node.ErrInvalidPad)
	}
	zc, ok := zoneConnections[p.ZoneConnection]
	if !ok {
		return node.PadSpec{}, fmt.Errorf("unknown zone connection %q", p.ZoneConnection)
	}
	unused, ok := unusedLayerModes[p.UnusedLayers]
	if !ok {
		return node.PadSpec{}, fmt.Errorf("unknown unused layer mode %q", p.UnusedLayers)
	}

	spec := node.PadSpec{
		Number:                 ev.text(p.Number),
		Type:                   typ,
		Shape:                  node.PadShape(p.Shape),
		At:                     ev.vec(p.At),
		Rotation:               ev.num(p.Rotation),
		Size:                   ev.vec(p.Size),
		Layers:                 p.Layers,
		FabProperty:            node.FabProperty(p.Property),
		Anchor:                 node.AnchorShape(p.Anchor),
		ZoneShape:              node.ZoneShape(p.ZoneShape),
		SolderMaskMargin:       ev.num(p.SolderMaskMargin),
		SolderPasteMargin:      ev.num(p.SolderPasteMargin),
		SolderPasteMarginRatio: ev.num(p.SolderPasteMarginRatio),
		ZoneConnection:         zc,
		Clearance:              ev.ptr(p.Clearance),
		ThermalBridgeAngle:     ev.ptr(p.ThermalBridgeAngle),
		UnconnectedLayers:      unused,
		DieLength:              ev.num(p.DieLength),
	}
	if p.Drill != nil {
		d := ev.vec(*p.Drill)
		spec.Drill = &d
	}
	if p.Offset != nil {
		spec.Offset = ev.vec(*p.Offset)
	}
	if spec.Layers == nil {
		spec.Layers = defaultLayers(typ)
	}
	if spec.Shape == "" {
		spec.Shape = node.ShapeRect
	}

	if needsRadius(p) {
		maxRadius := ev.opt(p.MaxRadius, b.style.RoundRectMaxRadius)
		h, err := node.NewRoundRadiusHandler(ev.opt(p.RadiusRatio, b.style.RoundRectRatio), &maxRadius, ev.ptr(p.ExactRadius))
		if err != nil {
			return node.PadSpec{}, err
		}
		spec.RoundRadius = h
	}
	if len(p.ChamferCorners) > 0 {
		corners, err := node.CornersFromNames(p.ChamferCorners)
		if err != nil {
			return node.PadSpec{}, err
		}
		ratio := ev.opt(p.ChamferRatio, b.style.ChamferRatio)
		h, err := node.NewChamferSizeHandler(&ratio, nil, nil)
		if err != nil {
			return node.PadSpec{}, err
		}
		spec.ChamferCorners = corners
		spec.Chamfer = h
	}
	for i := range p.Primitives {
		s := &p.Primitives[i]
		n, err := b.shapeNode(s, ev)
		if err != nil {
			return node.PadSpec{}, fmt.Errorf("primitive %d (%s): %w", i+1, s.Kind, err)
		}
		prims, err := node.Flatten(n)
		if err != nil {
			return node.PadSpec{}, err
		}
		spec.Primitives = append(spec.Primitives, prims...)
	}
	return spec, ev.err
}

// needsRadius reports whether the pad or its array's first pad is a round
// rect, or a radius is given explicitly
func needsRadius(p *Pad) bool {
	if p.Shape == string(node.ShapeRoundRect) || p.ExactRadius != nil || p.RadiusRatio != nil {
		return true
	}
	return p.Array != nil && p.Array.Pad1Shape == string(node.ShapeRoundRect)
}

func defaultLayers(t node.PadType) []string {
	switch t {
	case node.PadSMT:
		return slices.Clone(node.LayersSMT)
	case node.PadNPTH:
		return slices.Clone(node.LayersNPTH)
	case node.PadConnect:
		return slices.Clone(node.LayersConnectFront)
	}
	return slices.Clone(node.LayersTHT)
}

// primitives returns the flattened primitives of n as appendable nodes
func primitives(n node.Node) ([]node.Node, error) {
	prims, err := node.Flatten(n)
	if err != nil {
		return nil, err
	}
	nodes := make([]node.Node, len(prims))
	for i, p := range prims {
		nodes[i] = p
	}
	return nodes, nil
}

func isSilk(layer string) bool {
	return strings.HasSuffix(layer, ".SilkS")
}

func drawingOf(p node.Node) (node.Drawing, bool) {
	switch e := p.(type) {
	case *node.Line:
		return e.Drawing, true
	case *node.Arc:
		return e.Drawing, true
	case *node.Circle:
		return e.Drawing, true
	case *node.Polygon:
		return e.Drawing, true
	case *node.CompoundPolygon:
		return e.Drawing, true
	case *node.Rect:
		return e.Drawing, true
	}
	return node.Drawing{}, false
}
