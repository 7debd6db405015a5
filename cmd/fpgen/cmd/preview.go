package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/fpgen/pkg/preview"
)

var (
	previewName   string
	previewOutput string
	previewScale  float64
)

var previewCmd = &cobra.Command{
	Use:   "preview <recipe.yaml>",
	Short: "Render a footprint to SVG",
	Long: `Builds one footprint of a recipe and draws it as an SVG image with one
group per layer. Without -o the image is written to <name>.svg.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().StringVar(&previewName, "name", "", "footprint name (required)")
	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "", "output file")
	previewCmd.Flags().Float64Var(&previewScale, "scale", preview.DefaultOptions().Scale, "pixels per mm")
	_ = previewCmd.MarkFlagRequired("name")
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	st := cfg.Style()
	fp, err := buildNamed(args[0], previewName, st)
	if err != nil {
		return err
	}

	out := previewOutput
	if out == "" {
		out = fp.Name + ".svg"
	}
	file, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create preview: %w", err)
	}
	defer file.Close()

	opts := preview.DefaultOptions()
	opts.Scale = previewScale
	if err := preview.New(st, opts).Render(file, fp); err != nil {
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}
	fmt.Printf("Wrote %s\n", out)
	return nil
}
