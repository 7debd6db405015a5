package preview

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/footprint"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/node"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/style"
)

func sampleFootprint(t *testing.T) *footprint.Footprint {
	t.Helper()
	fp := footprint.New("TestPoint", footprint.THT)
	drill := geom.Vec(0.8, 0.8)
	pad, err := node.NewPad(node.PadSpec{
		Number: "1", Type: node.PadTHT, Shape: node.ShapeCircle,
		Size: geom.Vec(2, 2), Drill: &drill, Layers: node.LayersTHT,
	})
	if err != nil {
		t.Fatalf("NewPad() unexpected error: %v", err)
	}
	silk := node.NewCircle(geom.Vec(0, 0), 1.5, "F.SilkS")
	fab := node.NewLine(geom.Vec(-1, 0), geom.Vec(1, 0), "F.Fab")
	fab.Style = node.StyleDash
	ref := node.NewProperty(node.PropReference, node.DefaultTextAttrs("TP<1>", geom.Vec(0, -2)))
	hidden := node.DefaultTextAttrs("hidden", geom.Vec(0, 2))
	hidden.Hide = true
	if err := fp.Extend(pad, silk, fab, ref, node.NewText(hidden)); err != nil {
		t.Fatalf("Extend() unexpected error: %v", err)
	}
	return fp
}

func render(t *testing.T, fp *footprint.Footprint, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	if err := New(style.Default(), opts).Render(&buf, fp); err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	return buf.String()
}

// groupIDs returns the ids of the layer groups in document order and fails
// on malformed XML
func groupIDs(t *testing.T, doc string) []string {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(doc))
	var ids []string
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return ids
		}
		if err != nil {
			t.Fatalf("invalid SVG: %v", err)
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "g" {
			for _, a := range se.Attr {
				if a.Name.Local == "id" {
					ids = append(ids, a.Value)
				}
			}
		}
	}
}

func TestRenderLayers(t *testing.T) {
	out := render(t, sampleFootprint(t), DefaultOptions())

	got := strings.Join(groupIDs(t, out), " ")
	want := "B.Mask B.Cu F.Fab F.Cu F.Mask F.SilkS Drills"
	if got != want {
		t.Errorf("layer groups = %q, want %q", got, want)
	}
	if !strings.Contains(out, "TP&lt;1&gt;") {
		t.Error("Render() did not write the escaped reference text")
	}
	if strings.Contains(out, "hidden") {
		t.Error("Render() wrote a hidden text")
	}
	if !strings.Contains(out, "stroke-dasharray") {
		t.Error("Render() ignored the dashed line style")
	}
}

func TestRenderSize(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		width string
	}{
		// hidden texts still count, the one at y = 2 spans x = -3..3
		{"default", DefaultOptions(), `width="320"`},
		{"scale", Options{Scale: 10, Margin: 1}, `width="80"`},
		{"no margin", Options{Scale: 10}, `width="60"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, sampleFootprint(t), tt.opts)
			if !strings.Contains(out, tt.width) {
				t.Errorf("Render() missing %s in %.80q", tt.width, out)
			}
		})
	}
}

func TestRenderEmpty(t *testing.T) {
	out := render(t, footprint.New("Empty", footprint.Unspecified), Options{Scale: 10, Margin: 1})
	if ids := groupIDs(t, out); len(ids) != 0 {
		t.Errorf("layer groups = %v, want none", ids)
	}
}

func TestPathData(t *testing.T) {
	tr := Transform{Origin: geom.Vec(-1, -1), Scale: 10}
	tests := []struct {
		name   string
		atoms  []geom.Atom
		closed bool
		want   string
	}{
		{
			name:  "line",
			atoms: []geom.Atom{geom.NewLine(geom.Vec(0, 0), geom.Vec(1, 0))},
			want:  "M 10 10 L 20 10",
		},
		{
			name:   "closed chain",
			atoms:  geom.Polygon{Points: []geom.Vector2D{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}}.Atoms(),
			closed: true,
			want:   "M 10 10 L 20 10 L 20 20 L 10 10 Z",
		},
		{
			name: "jump",
			atoms: []geom.Atom{
				geom.NewLine(geom.Vec(0, 0), geom.Vec(1, 0)),
				geom.NewLine(geom.Vec(0, 1), geom.Vec(1, 1)),
			},
			want: "M 10 10 L 20 10 M 10 20 L 20 20",
		},
		{
			name:  "quarter arc",
			atoms: []geom.Atom{geom.Arc{Center: geom.Vec(0, 0), Start: geom.Vec(1, 0), Angle: 90}},
			want:  "M 20 10 A 10 10 0 0 1 10 20",
		},
		{
			name:   "full circle",
			atoms:  geom.NewCircle(geom.Vec(0, 0), 1).Atoms(),
			closed: true,
			want:   "M 20 10 A 10 10 0 0 1 0 10 A 10 10 0 0 1 20 10 Z",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.pathData(tt.atoms, tt.closed); got != tt.want {
				t.Errorf("pathData() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransformInverse(t *testing.T) {
	tr := Transform{Origin: geom.Vec(-2.5, 1), Scale: 40}
	p := geom.Vec(1.25, -0.5)
	if got := tr.ApplyInverse(tr.Apply(p)); !got.IsClose(p, 1e-9) {
		t.Errorf("ApplyInverse(Apply(%v)) = %v", p, got)
	}
}

func TestLayerClass(t *testing.T) {
	tests := map[string]string{
		"F.Cu":      "copper",
		"In1.Cu":    "copper",
		"B.SilkS":   "silkscreen",
		"F.CrtYd":   "courtyard",
		"Edge.Cuts": "edge",
		"Cmts.User": "user",
		"Drills":    "other",
	}
	for layer, want := range tests {
		if got := layerClass(layer); got != want {
			t.Errorf("layerClass(%q) = %q, want %q", layer, got, want)
		}
	}
}
