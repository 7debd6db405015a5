package serializer

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/node"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/sexp/kicadsexp"
)

var fabProperties = map[node.FabProperty]string{
	node.FabBGA:            "pad_prop_bga",
	node.FabFiducialGlobal: "pad_prop_fiducial_glob",
	node.FabFiducialLocal:  "pad_prop_fiducial_loc",
	node.FabTestpoint:      "pad_prop_testpoint",
	node.FabHeatsink:       "pad_prop_heatsink",
	node.FabCastellated:    "pad_prop_castellated",
}

// Order in which custom pad primitives are grouped
var primitiveOrder = []node.Kind{node.KindArc, node.KindCircle, node.KindLine, node.KindPolygon}

// padRotation returns the rotation in [0, 360) and whether it is written
func padRotation(r float64) (float64, bool) {
	r = math.Mod(r, 360)
	if r < 0 {
		r += 360
	}
	switch kicadsexp.FormatNumber(r) {
	case "0", "360":
		return 0, false
	}
	return r, true
}

func (s *Serializer) pad(p *node.Pad) (*kicadsexp.List, error) {
	shape := p.Shape
	ratio := p.RadiusRatio()
	if shape == node.ShapeRoundRect && ratio == 0 {
		shape = node.ShapeRect
	}

	l := kicadsexp.NewList("pad", kicadsexp.Quoted(p.Number), kicadsexp.Symbol(p.Type), kicadsexp.Symbol(shape))
	if rot, ok := padRotation(p.Rotation); ok {
		l.Append(number("at", p.At.X, p.At.Y, rot))
	} else {
		l.Append(xy("at", p.At))
	}
	l.Append(xy("size", p.Size))

	if (p.Type == node.PadTHT || p.Type == node.PadNPTH) && p.Drill != nil {
		var drill *kicadsexp.List
		if math.Abs(p.Drill.X-p.Drill.Y) < geom.TolMM {
			drill = number("drill", p.Drill.X)
		} else {
			drill = sym("drill", "oval").Append(kicadsexp.Number(p.Drill.X), kicadsexp.Number(p.Drill.Y))
		}
		if math.Abs(p.Offset.X) > geom.TolMM || math.Abs(p.Offset.Y) > geom.TolMM {
			drill.Append(xy("offset", p.Offset))
		}
		l.Append(drill)
	}
	if prop, ok := fabProperties[p.FabProperty]; ok {
		l.Append(sym("property", prop))
	}

	layers, err := SortLayers(p.Layers)
	if err != nil {
		return nil, fmt.Errorf("pad %q: %w", p.Number, err)
	}
	l.Append(quotedList("layers", layers))

	if p.Type == node.PadTHT {
		remove := p.UnconnectedLayers != node.KeepAllLayers
		l.Append(flag("remove_unused_layers", remove))
		if remove {
			l.Append(flag("keep_end_layers", p.UnconnectedLayers == node.RemoveExceptStartAndEnd))
		}
	}

	switch shape {
	case node.ShapeRoundRect:
		l.Append(number("roundrect_rratio", ratio))
		if p.Chamfer != nil && p.ChamferCorners.IsAnySelected() {
			l.Append(number("chamfer_ratio", p.ChamferRatio()), chamferCorners(p.ChamferCorners))
		}
	case node.ShapeCustom:
		l.Append(kicadsexp.NewList("options",
			sym("clearance", string(p.ZoneShape)),
			sym("anchor", string(p.Anchor)),
		))
		prims, err := s.padPrimitives(p.Primitives)
		if err != nil {
			return nil, fmt.Errorf("pad %q: %w", p.Number, err)
		}
		l.Append(prims)
	}

	if p.DieLength > geom.TolMM {
		l.Append(number("die_length", p.DieLength))
	}
	if p.SolderMaskMargin != 0 {
		l.Append(number("solder_mask_margin", p.SolderMaskMargin))
	}
	if p.SolderPasteMarginRatio != 0 {
		l.Append(number("solder_paste_margin_ratio", p.SolderPasteMarginRatio))
	}
	if p.SolderPasteMargin != 0 {
		l.Append(number("solder_paste_margin", p.SolderPasteMargin))
	}
	if p.ZoneConnection != node.ZoneInherit {
		l.Append(kicadsexp.NewList("zone_connect", kicadsexp.Number(p.ZoneConnection)))
	}
	if p.Clearance != nil && math.Abs(*p.Clearance) > geom.TolMM {
		l.Append(number("clearance", *p.Clearance))
	}
	if p.ThermalBridgeWidth != nil && *p.ThermalBridgeWidth > geom.TolMM {
		l.Append(number("thermal_bridge_width", *p.ThermalBridgeWidth))
	}
	if a := p.EffectiveThermalBridgeAngle(); a != p.DefaultThermalBridgeAngle() {
		l.Append(number("thermal_bridge_angle", a))
	}
	if p.ThermalGap != nil && math.Abs(*p.ThermalGap) > geom.TolMM {
		l.Append(number("thermal_gap", *p.ThermalGap))
	}
	return withUUID(l, p.UUID), nil
}

func chamferCorners(c node.CornerSelection) *kicadsexp.List {
	l := kicadsexp.NewList("chamfer")
	for _, sel := range []struct {
		on   bool
		name string
	}{
		{c.TopLeft, "top_left"},
		{c.TopRight, "top_right"},
		{c.BottomLeft, "bottom_left"},
		{c.BottomRight, "bottom_right"},
	} {
		if sel.on {
			l.Append(kicadsexp.Symbol(sel.name))
		}
	}
	return l
}

// padPrimitives writes the outline of a custom pad in pad coordinates
func (s *Serializer) padPrimitives(prims []node.Primitive) (*kicadsexp.List, error) {
	rank := func(p node.Primitive) int { return slices.Index(primitiveOrder, p.Kind()) }
	for _, p := range prims {
		if rank(p) < 0 {
			return nil, fmt.Errorf("unsupported custom pad primitive %s", p.Kind())
		}
	}
	sorted := slices.Clone(prims)
	slices.SortStableFunc(sorted, func(a, b node.Primitive) int { return cmp.Compare(rank(a), rank(b)) })

	out := kicadsexp.NewList("primitives")
	for _, p := range sorted {
		var (
			l    *kicadsexp.List
			d    node.Drawing
			fill bool
		)
		switch e := p.(type) {
		case *node.Polygon:
			l, d, fill = kicadsexp.NewList("gr_poly", pointList(e.Points)), e.Drawing, e.Fill
		case *node.Line:
			l, d = kicadsexp.NewList("gr_line", xy("start", e.Start), xy("end", e.End)), e.Drawing
		case *node.Circle:
			end := e.Center.Add(geom.Vec(e.Radius, 0))
			l, d, fill = kicadsexp.NewList("gr_circle", xy("center", e.Center), xy("end", end)), e.Drawing, e.Fill
		case *node.Arc:
			l, d = kicadsexp.NewList("gr_arc", arcPointList(e.Arc)...), e.Drawing
		}
		l.Append(number("width", d.StrokeWidth(s.style.PadPrimitive)))
		if fill {
			l.Append(flag("fill", true))
		}
		out.Append(l)
	}
	return out, nil
}
