package recipe

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/footprint"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/node"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/serializer"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/style"
)

const sampleRecipe = `
vars:
  fab: 0.1
footprints:
  - name: R_{size}
    type: smd
    description: "Resistor, , size {size}"
    tags: [resistor, "R_{size}"]
    variants:
      - {size: 1}
      - {size: 2}
    vars:
      half: size / 2
    attributes:
      solder_paste_margin_ratio: -0.1
    properties:
      datasheet: https://example.com/r.pdf
    pads:
      - number: "1"
        type: smd
        shape: roundrect
        at: [-half, 0]
        size: [0.8, 0.9]
      - number: "2"
        type: smd
        shape: roundrect
        at: [half, 0]
        size: [0.8, 0.9]
    shapes:
      - kind: rect
        layer: F.Fab
        width: fab
        start: [-half, -0.4]
        end: [half, 0.4]
      - kind: line
        layer: F.SilkS
        start: [-half, -0.6]
        end: [half, -0.6]
        group: silk
    courtyard: {}
    model:
      path: ${KICAD9_3DMODEL_DIR}/Resistor_SMD.3dshapes/{name}.wrl

  - name: PinHeader_1x04
    type: tht
    pads:
      - type: thru_hole
        shape: oval
        size: [1.7, 1.0]
        drill: 1.0
        array:
          count: 4
          pitch: [0, 2.54]
          center: [0, 3.81]
          pad1_shape: rect
`

func loadSample(t *testing.T) []Instance {
	t.Helper()
	f, err := Parse(strings.NewReader(sampleRecipe))
	require.NoError(t, err)
	return f.Instances()
}

func build(t *testing.T, inst Instance) *footprint.Footprint {
	t.Helper()
	fp, err := NewBuilder(style.Default()).Build(inst)
	require.NoError(t, err)
	return fp
}

func flatten(t *testing.T, fp *footprint.Footprint) []node.Primitive {
	t.Helper()
	prims, err := node.Flatten(fp)
	require.NoError(t, err)
	return prims
}

func TestInstances(t *testing.T) {
	insts := loadSample(t)
	names := make([]string, len(insts))
	for i, inst := range insts {
		names[i] = inst.Name
		assert.NoError(t, inst.Err)
	}
	assert.Equal(t, []string{"R_1", "R_2", "PinHeader_1x04"}, names)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"no footprints", "vars: {a: 1}\n"},
		{"unknown field", "footprints:\n  - name: X\n    colour: red\n"},
		{"bad expression", "footprints:\n  - name: X\n    vars: {a: '1 +'}\n"},
		{"bad vector", "footprints:\n  - name: X\n    pads:\n      - at: [1, 2, 3]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestBuildSMD(t *testing.T) {
	fp := build(t, loadSample(t)[0])

	assert.Equal(t, "R_1", fp.Name)
	assert.Equal(t, footprint.SMD, fp.Type)
	assert.Equal(t, "Resistor, size 1", fp.Description())
	assert.Equal(t, []string{"resistor", "R_1"}, fp.Tags())
	require.NotNil(t, fp.PasteMarginRatio)
	assert.InDelta(t, -0.1, *fp.PasteMarginRatio, 1e-9)

	prims := flatten(t, fp)
	pads := node.Filter[*node.Pad](prims)
	require.Len(t, pads, 2)
	assert.InDelta(t, -0.5, pads[0].At.X, 1e-9)
	assert.InDelta(t, 0.5, pads[1].At.X, 1e-9)
	assert.Equal(t, node.LayersSMT, pads[0].Layers)
	assert.InDelta(t, 0.25, pads[0].RadiusRatio(), 1e-9)

	rects := node.Filter[*node.Rect](prims)
	require.Len(t, rects, 1)
	require.NotNil(t, rects[0].Width)
	assert.InDelta(t, 0.1, *rects[0].Width, 1e-9)

	t.Run("courtyard", func(t *testing.T) {
		var crt []*node.Line
		for _, l := range node.Filter[*node.Line](prims) {
			if l.Layer == "F.CrtYd" {
				crt = append(crt, l)
			}
		}
		require.Len(t, crt, 4)
		box := geom.NewBoundingBox()
		for _, l := range crt {
			box.IncludeBox(l.BBox())
		}
		assert.InDelta(t, -1.15, box.Min.X, 1e-9)
		assert.InDelta(t, -0.7, box.Min.Y, 1e-9)
		assert.InDelta(t, 1.15, box.Max.X, 1e-9)
		assert.InDelta(t, 0.7, box.Max.Y, 1e-9)
	})

	t.Run("properties", func(t *testing.T) {
		props := map[string]*node.Property{}
		for _, p := range node.Filter[*node.Property](prims) {
			props[p.Name] = p
		}
		require.Contains(t, props, node.PropReference)
		require.Contains(t, props, node.PropValue)
		require.Contains(t, props, node.PropDatasheet)
		assert.Equal(t, "REF**", props[node.PropReference].Text)
		assert.Equal(t, "F.SilkS", props[node.PropReference].Layer)
		assert.InDelta(t, -1.7, props[node.PropReference].At.Y, 1e-9)
		assert.Equal(t, "R_1", props[node.PropValue].Text)
		assert.Equal(t, "F.Fab", props[node.PropValue].Layer)
		assert.InDelta(t, 1.7, props[node.PropValue].At.Y, 1e-9)
		assert.True(t, props[node.PropDatasheet].Hide)
	})

	t.Run("group", func(t *testing.T) {
		groups := node.Filter[*node.Group](prims)
		require.Len(t, groups, 1)
		assert.Equal(t, "silk", groups[0].Name)
		assert.Len(t, groups[0].Members(), 1)
	})

	t.Run("model", func(t *testing.T) {
		models := node.Filter[*node.Model](prims)
		require.Len(t, models, 1)
		assert.Equal(t, "${KICAD9_3DMODEL_DIR}/Resistor_SMD.3dshapes/R_1.wrl", models[0].Filename)
		assert.Equal(t, node.Vector3D{X: 1, Y: 1, Z: 1}, models[0].Scale)
	})

	t.Run("serializes", func(t *testing.T) {
		out, err := serializer.New(style.Default()).Serialize(fp)
		require.NoError(t, err)
		assert.Contains(t, out, `(footprint "R_1"`)
		assert.Contains(t, out, `(pad "1" smd roundrect`)
	})
}

func TestBuildPadArray(t *testing.T) {
	fp := build(t, loadSample(t)[2])
	assert.Equal(t, footprint.THT, fp.Type)

	pads := node.Filter[*node.Pad](flatten(t, fp))
	require.Len(t, pads, 4)
	for i, p := range pads {
		assert.Equal(t, []string{"1", "2", "3", "4"}[i], p.Number)
		assert.InDelta(t, float64(i)*2.54, p.At.Y, 1e-9)
		assert.Equal(t, node.LayersTHT, p.Layers)
		require.NotNil(t, p.Drill)
		assert.Equal(t, geom.Vec(1, 1), *p.Drill)
	}
	assert.Equal(t, node.ShapeRect, pads[0].Shape)
	assert.Equal(t, node.ShapeOval, pads[1].Shape)
}

func TestBuildKeepout(t *testing.T) {
	doc := `
footprints:
  - name: Cut
    shapes:
      - kind: line
        layer: F.SilkS
        start: [-2, 0]
        end: [2, 0]
      - kind: line
        layer: F.Fab
        start: [-2, 0]
        end: [2, 0]
    keepouts:
      - kind: circle
        center: [0, 0]
        radius: 1
`
	f, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	fp := build(t, f.Instances()[0])

	var silk, fab []*node.Line
	for _, l := range node.Filter[*node.Line](flatten(t, fp)) {
		switch l.Layer {
		case "F.SilkS":
			silk = append(silk, l)
		case "F.Fab":
			fab = append(fab, l)
		}
	}
	assert.Len(t, fab, 1, "keepouts only cut silkscreen")
	require.Len(t, silk, 2)
	ends := []float64{silk[0].Start.X, silk[0].End.X, silk[1].Start.X, silk[1].End.X}
	slices.Sort(ends)
	assert.InDeltaSlice(t, []float64{-2, -1, 1, 2}, ends, 1e-9)
}

func TestBuildKeepoutPads(t *testing.T) {
	doc := `
footprints:
  - name: Pads
    type: smd
    keepout_pads: true
    pads:
      - {number: "1", type: smd, shape: rect, at: [0, 0], size: [1, 1]}
    shapes:
      - {kind: line, layer: F.SilkS, start: [-3, 0], end: [3, 0]}
      - {kind: line, layer: F.SilkS, start: [-3, 2], end: [3, 2]}
`
	f, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	fp := build(t, f.Instances()[0])

	lines := node.Filter[*node.Line](flatten(t, fp))
	require.Len(t, lines, 3)
	// the pad keepout reaches 0.5 + 0.2 + 0.06 from the center
	gap := 0.5 + style.Default().SilkPadClearance + style.Default().SilkWidth/2
	for _, l := range lines {
		if l.Start.Y != 0 {
			continue
		}
		x := l.End.X
		if l.Start.X > 0 {
			x = l.Start.X
		}
		assert.InDelta(t, gap, abs(x), 1e-9)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name:    "undefined variable",
			doc:     "footprints:\n  - name: X\n    pads:\n      - {type: smd, size: [w, 1]}\n",
			wantErr: ErrUndefinedVariable,
		},
		{
			name:    "cyclic variable",
			doc:     "footprints:\n  - name: X\n    vars: {a: b, b: a}\n",
			wantErr: ErrCyclicVariable,
		},
		{
			name:    "invalid pad",
			doc:     "footprints:\n  - name: X\n    pads:\n      - {type: thru_hole, size: [1, 1]}\n",
			wantErr: node.ErrInvalidPad,
		},
		{
			name:    "paste ratio",
			doc:     "footprints:\n  - name: X\n    attributes: {solder_paste_margin_ratio: 2}\n",
			wantErr: footprint.ErrPasteRatio,
		},
		{
			name: "unknown shape",
			doc:  "footprints:\n  - name: X\n    shapes:\n      - {kind: blob, layer: F.Fab}\n",
		},
		{
			name: "missing point",
			doc:  "footprints:\n  - name: X\n    shapes:\n      - {kind: line, layer: F.Fab, start: [0, 0]}\n",
		},
		{
			name: "courtyard of nothing",
			doc:  "footprints:\n  - name: X\n    courtyard: {}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(strings.NewReader(tt.doc))
			require.NoError(t, err)
			_, err = NewBuilder(style.Default()).Build(f.Instances()[0])
			require.Error(t, err)
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Build() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
