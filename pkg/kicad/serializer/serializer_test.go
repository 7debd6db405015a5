package serializer

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/footprint"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/node"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/sexp/kicadsexp"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/style"
)

const sampleFootprint = `(footprint "example_footprint"
	(version 20241229)
	(generator "kicad-footprint-generator")
	(generator_version "9.0")
	(layer "F.Cu")
	(descr "A example footprint")
	(tags "example")
	(property "Reference" "REF**"
		(at 0 -3 0)
		(layer "F.SilkS")
		(effects
			(font
				(size 1 1)
				(thickness 0.15)
			)
		)
	)
	(property "Value" "example_footprint"
		(at 1.5 3 0)
		(layer "F.Fab")
		(effects
			(font
				(size 1 1)
				(thickness 0.15)
			)
		)
	)
	(attr through_hole)
	(fp_line
		(start -2 -2)
		(end -2 2)
		(stroke
			(width 0.12)
			(type solid)
		)
		(layer "F.SilkS")
	)
	(fp_line
		(start -2 2)
		(end 5 2)
		(stroke
			(width 0.12)
			(type solid)
		)
		(layer "F.SilkS")
	)
	(fp_line
		(start 5 -2)
		(end -2 -2)
		(stroke
			(width 0.12)
			(type solid)
		)
		(layer "F.SilkS")
	)
	(fp_line
		(start 5 2)
		(end 5 -2)
		(stroke
			(width 0.12)
			(type solid)
		)
		(layer "F.SilkS")
	)
	(fp_line
		(start -2.25 -2.25)
		(end -2.25 2.25)
		(stroke
			(width 0.05)
			(type solid)
		)
		(layer "F.CrtYd")
	)
	(fp_line
		(start -2.25 2.25)
		(end 5.25 2.25)
		(stroke
			(width 0.05)
			(type solid)
		)
		(layer "F.CrtYd")
	)
	(fp_line
		(start 5.25 -2.25)
		(end -2.25 -2.25)
		(stroke
			(width 0.05)
			(type solid)
		)
		(layer "F.CrtYd")
	)
	(fp_line
		(start 5.25 2.25)
		(end 5.25 -2.25)
		(stroke
			(width 0.05)
			(type solid)
		)
		(layer "F.CrtYd")
	)
	(pad "1" thru_hole rect
		(at 0 0)
		(size 2 2)
		(drill 1.2)
		(layers "*.Cu" "*.Mask")
		(remove_unused_layers no)
	)
	(pad "2" thru_hole circle
		(at 3 0)
		(size 2 2)
		(drill 1.2)
		(layers "*.Cu" "*.Mask")
		(remove_unused_layers no)
	)
	(embedded_fonts no)
	(model "example.3dshapes/example_footprint.wrl"
		(offset
			(xyz 0 0 0)
		)
		(scale
			(xyz 1 1 1)
		)
		(rotate
			(xyz 0 0 0)
		)
	)
)
`

func thtPad(t *testing.T, number string, shape node.PadShape, at geom.Vector2D) *node.Pad {
	t.Helper()
	drill := geom.Vec(1.2, 1.2)
	p, err := node.NewPad(node.PadSpec{
		Number: number,
		Type:   node.PadTHT,
		Shape:  shape,
		At:     at,
		Size:   geom.Vec(2, 2),
		Drill:  &drill,
		Layers: node.LayersTHT,
	})
	if err != nil {
		t.Fatalf("NewPad(%q) unexpected error: %v", number, err)
	}
	return p
}

// sample builds the example footprint, appending the body in the given order
func sample(t *testing.T, reversed bool) *footprint.Footprint {
	t.Helper()
	fp := footprint.New("example_footprint", footprint.THT)
	fp.SetDescription("A example footprint")
	fp.SetTags("example")

	value := node.DefaultTextAttrs("example_footprint", geom.Vec(1.5, 3))
	value.Layer = "F.Fab"
	nodes := []node.Node{
		node.NewProperty(node.PropReference, node.DefaultTextAttrs("REF**", geom.Vec(0, -3))),
		node.NewProperty(node.PropValue, value),
		node.NewRectLine(geom.Vec(-2, -2), geom.Vec(5, 2), "F.SilkS"),
		node.NewRectLine(geom.Vec(-2.25, -2.25), geom.Vec(5.25, 2.25), "F.CrtYd"),
		thtPad(t, "1", node.ShapeRect, geom.Vec(0, 0)),
		thtPad(t, "2", node.ShapeCircle, geom.Vec(3, 0)),
		node.NewModel("example.3dshapes/example_footprint.wrl"),
	}
	if reversed {
		slices.Reverse(nodes)
	}
	if err := fp.Extend(nodes...); err != nil {
		t.Fatalf("Extend() unexpected error: %v", err)
	}
	return fp
}

func serialize(t *testing.T, fp *footprint.Footprint) string {
	t.Helper()
	out, err := New(style.Default()).Serialize(fp)
	if err != nil {
		t.Fatalf("Serialize() unexpected error: %v", err)
	}
	return out
}

func TestSerializeSampleFootprint(t *testing.T) {
	got := serialize(t, sample(t, false))
	if got != sampleFootprint {
		t.Errorf("Serialize() mismatch\ngot:\n%s\nwant:\n%s", got, sampleFootprint)
	}
}

func TestSerializeDeterministic(t *testing.T) {
	fp := sample(t, false)
	first := serialize(t, fp)
	if second := serialize(t, fp); second != first {
		t.Errorf("second Serialize() differs from the first")
	}
	if reversed := serialize(t, sample(t, true)); reversed != first {
		t.Errorf("Serialize() depends on append order\ngot:\n%s\nwant:\n%s", reversed, first)
	}
}

func TestSerializeParsesBack(t *testing.T) {
	out := serialize(t, sample(t, false))
	sexps, err := kicadsexp.ParseString(out)
	if err != nil {
		t.Fatalf("ParseString() unexpected error: %v", err)
	}
	if len(sexps) != 1 {
		t.Fatalf("ParseString() returned %d expressions, want 1", len(sexps))
	}
	if got := kicadsexp.Format(sexps[0]); got != out {
		t.Errorf("Format(ParseString()) differs from the serialized text\ngot:\n%s", got)
	}
}

func TestSmallValueSortStability(t *testing.T) {
	build := func(order []int) string {
		fp := footprint.New("tiny", footprint.SMD)
		lines := []node.Node{
			node.NewLine(geom.Vec(1e-15, 0), geom.Vec(1, 1), "F.Fab"),
			node.NewLine(geom.Vec(0, 0), geom.Vec(1, 0), "F.Fab"),
		}
		for _, i := range order {
			if err := fp.Append(lines[i]); err != nil {
				t.Fatalf("Append() unexpected error: %v", err)
			}
		}
		return serialize(t, fp)
	}

	a := build([]int{0, 1})
	b := build([]int{1, 0})
	if a != b {
		t.Fatalf("Serialize() depends on append order\n%s\n%s", a, b)
	}
	first := strings.Index(a, "(end 1 0)")
	second := strings.Index(a, "(end 1 1)")
	if first < 0 || second < 0 || first > second {
		t.Errorf("lines with equal quantized start are not ordered by end point:\n%s", a)
	}
}

func TestNaturalSort(t *testing.T) {
	numbers := []string{"1", "a1", "a10", "a2", "", "2"}
	slices.SortFunc(numbers, CompareNatural)
	want := []string{"", "1", "2", "a1", "a2", "a10"}
	if !slices.Equal(numbers, want) {
		t.Errorf("sorted = %q, want %q", numbers, want)
	}
}

func TestCompareNatural(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"A2", "A10", -1},
		{"A10", "B1", -1},
		{"10", "9", 1},
		{"01", "1", 0},
		{"EP", "EP", 0},
		{"2", "A", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := CompareNatural(tt.a, tt.b); got != tt.want {
				t.Errorf("CompareNatural(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestLayerPriority(t *testing.T) {
	tests := []struct {
		layer   string
		want    int
		wantErr bool
	}{
		{"*.Cu", -1000, false},
		{"F.Cu", 0, false},
		{"B.Cu", 2, false},
		{"In1.Cu", 4, false},
		{"In30.Cu", 62, false},
		{"User.3", 41, false},
		{"F.Fab", 35, false},
		{"F.Silk", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.layer, func(t *testing.T) {
			got, err := LayerPriority(tt.layer)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LayerPriority(%q) error = %v, wantErr %v", tt.layer, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownLayer) {
					t.Errorf("LayerPriority(%q) error = %v, want ErrUnknownLayer", tt.layer, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("LayerPriority(%q) = %d, want %d", tt.layer, got, tt.want)
			}
		})
	}
}

func TestSortLayers(t *testing.T) {
	got, err := SortLayers([]string{"F.Mask", "F.Paste", "F.Cu"})
	if err != nil {
		t.Fatalf("SortLayers() unexpected error: %v", err)
	}
	want := []string{"F.Cu", "F.Mask", "F.Paste"}
	if !slices.Equal(got, want) {
		t.Errorf("SortLayers() = %q, want %q", got, want)
	}
}

func TestSerializeUnknownLayer(t *testing.T) {
	fp := footprint.New("bad", footprint.SMD)
	if err := fp.Append(node.NewLine(geom.Vec(0, 0), geom.Vec(1, 0), "Top")); err != nil {
		t.Fatalf("Append() unexpected error: %v", err)
	}
	_, err := New(style.Default()).Serialize(fp)
	if !errors.Is(err, ErrUnknownLayer) {
		t.Errorf("Serialize() error = %v, want ErrUnknownLayer", err)
	}
}

func TestSerializeElements(t *testing.T) {
	arc := node.NewArc(geom.NewArcAngle(geom.Vec(0, 0), geom.Vec(1, 0), -90), "F.SilkS")
	circle := node.NewCircle(geom.Vec(1, 1), 0.5, "F.Fab")
	circle.Fill = true
	text := node.NewText(node.DefaultTextAttrs("${REFERENCE}", geom.Vec(0, 0)))
	text.Layer = "F.Fab"
	text.Justify = "left"
	text.Mirror = true
	rect := node.NewRect(geom.Vec(2, 2), geom.Vec(-2, -1), "Dwgs.User")
	rect.Width = node.Width(0.3)

	tests := []struct {
		name string
		prim node.Primitive
		want []string
	}{
		{
			name: "negative arc swaps ends",
			prim: arc,
			want: []string{"(start 0 -1)", "(mid 0.707107 -0.707107)", "(end 1 0)", "(width 0.12)"},
		},
		{
			name: "filled circle",
			prim: circle,
			want: []string{"(center 1 1)", "(end 1.5 1)", "(fill yes)", "(width 0.1)"},
		},
		{
			name: "user text",
			prim: text,
			want: []string{`(fp_text user "${REFERENCE}"`, "(at 0 0 0)", "(justify mirror left)"},
		},
		{
			name: "rect corners",
			prim: rect,
			want: []string{"(fp_rect", "(start -2 -1)", "(end 2 2)", "(width 0.3)", "(fill no)"},
		},
	}

	s := New(style.Default())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := s.element(tt.prim)
			if err != nil {
				t.Fatalf("element() unexpected error: %v", err)
			}
			got := kicadsexp.Format(l)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("element() = %s\nmissing %q", got, w)
				}
			}
		})
	}
}

func TestSerializePads(t *testing.T) {
	rr, err := node.NewRoundRadiusHandler(0.25, nil, nil)
	if err != nil {
		t.Fatalf("NewRoundRadiusHandler() unexpected error: %v", err)
	}
	flat, err := node.NewRoundRadiusHandler(0, nil, nil)
	if err != nil {
		t.Fatalf("NewRoundRadiusHandler() unexpected error: %v", err)
	}
	drill := geom.Vec(0.8, 1.2)
	gap := 0.3

	tests := []struct {
		name    string
		spec    node.PadSpec
		want    []string
		notWant []string
	}{
		{
			name: "round rect",
			spec: node.PadSpec{Number: "1", Type: node.PadSMT, Shape: node.ShapeRoundRect, Size: geom.Vec(1, 2), RoundRadius: rr, Layers: node.LayersSMT},
			want: []string{`(pad "1" smd roundrect`, "(roundrect_rratio 0.25)", `(layers "F.Cu" "F.Mask" "F.Paste")`},
		},
		{
			name: "zero ratio decays to rect",
			spec: node.PadSpec{Number: "2", Type: node.PadSMT, Shape: node.ShapeRoundRect, Size: geom.Vec(1, 2), RoundRadius: flat, Layers: node.LayersSMT},
			want:    []string{`(pad "2" smd rect`},
			notWant: []string{"roundrect_rratio"},
		},
		{
			name: "chamfered round rect",
			spec: node.PadSpec{
				Number: "3", Type: node.PadSMT, Shape: node.ShapeRoundRect, Size: geom.Vec(1, 1),
				RoundRadius: rr, ChamferCorners: node.CornerSelection{TopLeft: true, BottomRight: true}, Layers: node.LayersSMT,
			},
			want: []string{"(chamfer_ratio 0.25)", "(chamfer top_left bottom_right)"},
		},
		{
			name: "oval drill with offset and rotation",
			spec: node.PadSpec{
				Number: "4", Type: node.PadTHT, Shape: node.ShapeOval, Size: geom.Vec(1.5, 2), Rotation: -90,
				Drill: &drill, Offset: geom.Vec(0.1, 0), Layers: node.LayersTHT, UnconnectedLayers: node.RemoveExceptStartAndEnd,
			},
			want: []string{"(at 0 0 270)", "(drill oval 0.8 1.2", "(offset 0.1 0)", "(remove_unused_layers yes)", "(keep_end_layers yes)", "thru_hole oval"},
		},
		{
			name: "fab property and margins",
			spec: node.PadSpec{
				Number: "5", Type: node.PadSMT, Shape: node.ShapeCircle, Size: geom.Vec(1, 1), Layers: node.LayersSMT,
				FabProperty: node.FabTestpoint, SolderMaskMargin: 0.05, ZoneConnection: node.ZoneSolid, ThermalGap: &gap,
			},
			want:    []string{"(property pad_prop_testpoint)", "(solder_mask_margin 0.05)", "(zone_connect 3)", "(thermal_gap 0.3)"},
			notWant: []string{"thermal_bridge_angle", "(at 0 0 0)"},
		},
	}

	s := New(style.Default())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := node.NewPad(tt.spec)
			if err != nil {
				t.Fatalf("NewPad() unexpected error: %v", err)
			}
			l, err := s.pad(p)
			if err != nil {
				t.Fatalf("pad() unexpected error: %v", err)
			}
			got := kicadsexp.Format(l)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("pad() = %s\nmissing %q", got, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Errorf("pad() = %s\nunexpected %q", got, w)
				}
			}
		})
	}
}

func TestSerializeCustomPad(t *testing.T) {
	poly := node.NewPolygon([]geom.Vector2D{geom.Vec(-1, -1), geom.Vec(1, -1), geom.Vec(0, 1)}, "F.Cu")
	poly.Fill = true
	p, err := node.NewPad(node.PadSpec{
		Number: "1", Type: node.PadSMT, Shape: node.ShapeCustom, Size: geom.Vec(0.5, 0.5), Layers: node.LayersSMT,
		Primitives: []node.Primitive{
			poly,
			node.NewLine(geom.Vec(0, 0), geom.Vec(1, 0), "F.Cu"),
		},
	})
	if err != nil {
		t.Fatalf("NewPad() unexpected error: %v", err)
	}
	l, err := New(style.Default()).pad(p)
	if err != nil {
		t.Fatalf("pad() unexpected error: %v", err)
	}
	got := kicadsexp.Format(l)
	line := strings.Index(got, "(gr_line")
	polygon := strings.Index(got, "(gr_poly")
	if line < 0 || polygon < 0 || line > polygon {
		t.Errorf("primitives not grouped by kind:\n%s", got)
	}
	for _, w := range []string{"(clearance outline)", "(anchor circle)", "(width 0)", "(fill yes)"} {
		if !strings.Contains(got, w) {
			t.Errorf("pad() = %s\nmissing %q", got, w)
		}
	}
}

func TestSerializeGroup(t *testing.T) {
	fp := footprint.New("grouped", footprint.SMD)
	a := node.NewLine(geom.Vec(0, 0), geom.Vec(1, 0), "F.Fab")
	b := node.NewLine(geom.Vec(0, 1), geom.Vec(1, 1), "F.Fab")
	if err := fp.Extend(a, b); err != nil {
		t.Fatalf("Extend() unexpected error: %v", err)
	}
	g := fp.Group("outline", a, b)
	if err := fp.Append(g); err != nil {
		t.Fatalf("Append() unexpected error: %v", err)
	}

	out := serialize(t, fp)
	for _, id := range g.Members() {
		if strings.Count(out, `"`+id+`"`) != 2 {
			t.Errorf("member %s should appear as element uuid and group member:\n%s", id, out)
		}
	}
	if !strings.Contains(out, `(group "outline"`) {
		t.Errorf("group missing:\n%s", out)
	}
	if again := serialize(t, fp); again != out {
		t.Errorf("group uuids are not stable across serializations")
	}
}
