package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/fpgen/pkg/kicad/serializer"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/style"
	"github.com/OpenTraceLab/fpgen/pkg/recipe"
)

var (
	outputDir string
	onlyName  string
)

var generateCmd = &cobra.Command{
	Use:   "generate <recipe.yaml>...",
	Short: "Generate footprint files from recipes",
	Long: `Builds every footprint and variant of the given recipes and writes
one <name>.kicad_mod file per footprint.

A footprint that fails to build is reported and skipped; the remaining
footprints are still written. The exit status is 1 if any footprint failed.

Environment:
  FPGEN_OUTPUT_DIR        default output directory
  FPGEN_SILK_WIDTH        silkscreen line width (mm)
  FPGEN_FAB_WIDTH         fabrication line width (mm)
  FPGEN_COURTYARD_WIDTH   courtyard line width (mm)`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default $FPGEN_OUTPUT_DIR or .)")
	generateCmd.Flags().StringVar(&onlyName, "only", "", "only generate the footprint with this name")
}

// batch writes the footprints of a set of recipes
type batch struct {
	style  style.Style
	dir    string
	only   string
	report io.Writer // Per footprint status lines, may be nil
	step   func()    // Called after every footprint, may be nil

	written []string
	failed  []string
	skipped []string
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	dir := outputDir
	if dir == "" {
		dir = cfg.OutputDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files := make(map[string]*recipe.File, len(args))
	total := 0
	for _, path := range args {
		f, err := recipe.LoadFile(path)
		if err != nil {
			return err
		}
		files[path] = f
		total += len(f.Instances())
	}

	b := &batch{style: cfg.Style(), dir: dir, only: onlyName}
	var bar *progressbar.ProgressBar
	if verbose {
		b.report = os.Stdout
	} else {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("generating"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		b.step = func() { _ = bar.Add(1) }
	}

	for _, path := range args {
		logf("Reading %s", path)
		b.run(files[path])
	}
	if bar != nil {
		_ = bar.Finish()
	}

	fmt.Printf("%s %d written", styles.ok.Render("OK"), len(b.written))
	if len(b.skipped) > 0 {
		fmt.Printf(", %s %d", styles.skip.Render("SKIP"), len(b.skipped))
	}
	if len(b.failed) > 0 {
		fmt.Printf(", %s %d", styles.fail.Render("FAIL"), len(b.failed))
	}
	fmt.Println()

	if len(b.failed) > 0 {
		return fmt.Errorf("%d footprint(s) failed", len(b.failed))
	}
	if onlyName != "" && len(b.written) == 0 {
		return fmt.Errorf("no footprint named %q", onlyName)
	}
	return nil
}

// run builds and writes every instance of f. Failures are recorded and do
// not stop the batch.
func (b *batch) run(f *recipe.File) {
	builder := recipe.NewBuilder(b.style)
	ser := serializer.New(b.style)
	for _, inst := range f.Instances() {
		if b.step != nil {
			b.step()
		}
		if b.only != "" && inst.Name != b.only {
			b.skipped = append(b.skipped, inst.Name)
			continue
		}
		path, err := b.write(builder, ser, inst)
		if err != nil {
			warnf("%v, skipping", err)
			b.failed = append(b.failed, inst.Name)
			continue
		}
		b.written = append(b.written, path)
		if b.report != nil {
			fmt.Fprintf(b.report, "%s %s\n", styles.ok.Render("OK  "), path)
		}
	}
}

func (b *batch) write(builder *recipe.Builder, ser *serializer.Serializer, inst recipe.Instance) (string, error) {
	fp, err := builder.Build(inst)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := ser.Write(&buf, fp); err != nil {
		return "", fmt.Errorf("failed to serialize %s: %w", inst.Name, err)
	}
	path := filepath.Join(b.dir, fp.Name+".kicad_mod")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
