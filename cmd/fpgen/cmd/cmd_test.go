package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/fpgen/pkg/kicad/style"
	"github.com/OpenTraceLab/fpgen/pkg/recipe"
)

const batchRecipe = `
footprints:
  - name: R_{size}
    type: smd
    variants:
      - {size: 1}
      - {size: 2}
    pads:
      - {number: "1", type: smd, shape: roundrect, at: [-size / 2, 0], size: [0.8, 0.9]}
      - {number: "2", type: smd, shape: roundrect, at: [size / 2, 0], size: [0.8, 0.9]}
    shapes:
      - {kind: rect, layer: F.Fab, start: [-size / 2, -0.4], end: [size / 2, 0.4]}
    courtyard: {}
  - name: Broken
    pads:
      - {type: thru_hole, size: [1, 1]}
`

func writeRecipe(t *testing.T) *recipe.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "r.yaml")
	require.NoError(t, os.WriteFile(path, []byte(batchRecipe), 0o644))
	f, err := recipe.LoadFile(path)
	require.NoError(t, err)
	return f
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	steps := 0
	b := &batch{style: style.Default(), dir: dir, step: func() { steps++ }}
	b.run(writeRecipe(t))

	assert.Equal(t, 3, steps)
	assert.Equal(t, []string{"Broken"}, b.failed)
	require.Len(t, b.written, 2)
	for _, name := range []string{"R_1", "R_2"} {
		path := filepath.Join(dir, name+".kicad_mod")
		assert.Contains(t, b.written, path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		r := verify(data)
		assert.Empty(t, r.Problems, "verify(%s)", name)
	}
}

func TestBatchOnly(t *testing.T) {
	dir := t.TempDir()
	b := &batch{style: style.Default(), dir: dir, only: "R_2"}
	b.run(writeRecipe(t))

	assert.Equal(t, []string{filepath.Join(dir, "R_2.kicad_mod")}, b.written)
	assert.ElementsMatch(t, []string{"R_1", "Broken"}, b.skipped)
	assert.Empty(t, b.failed)
}

const unorderedPads = `(footprint "X"
	(version 20241229)
	(generator "kicad-footprint-generator")
	(layer "F.Cu")
	(pad "2" smd rect
		(at 1 0)
		(size 1 1)
		(layers "F.Cu")
	)
	(pad "1" smd rect
		(at -1 0)
		(size 1 1)
		(layers "F.Cu")
	)
)
`

func TestVerify(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string // Substring of a reported problem, empty for none
	}{
		{"pad order", unorderedPads, `pad "1" is written after pad "2"`},
		{"indentation", strings.ReplaceAll(unorderedPads, "\t", "  "), "not in canonical format, first difference at line 2"},
		{"not a footprint", "(kicad_pcb (version 1))\n", "not a KiCad footprint file"},
		{"syntax", "(footprint \"X\"\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := verify([]byte(tt.data))
			require.NotEmpty(t, r.Problems)
			if tt.want != "" {
				assert.Contains(t, strings.Join(r.Problems, "\n"), tt.want)
			}
		})
	}
}

func TestBuildNamed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.yaml")
	require.NoError(t, os.WriteFile(path, []byte(batchRecipe), 0o644))

	fp, err := buildNamed(path, "R_1", style.Default())
	require.NoError(t, err)
	assert.Equal(t, "R_1", fp.Name)

	_, err = buildNamed(path, "R_3", style.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "have: R_1, R_2, Broken")
}

func TestConfigStyle(t *testing.T) {
	t.Setenv("FPGEN_SILK_WIDTH", "0.15")
	t.Setenv("FPGEN_OUTPUT_DIR", "out")
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "out", cfg.OutputDir)
	st := cfg.Style()
	assert.InDelta(t, 0.15, st.SilkWidth, 1e-9)
	assert.InDelta(t, style.Default().FabWidth, st.FabWidth, 1e-9)
}
