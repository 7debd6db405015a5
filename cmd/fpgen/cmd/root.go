package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "fpgen",
	Short: "fpgen - KiCad footprint generator",
	Long: `fpgen builds KiCad footprints (.kicad_mod) from YAML recipes:
  - generate footprint files for every recipe and variant
  - render an SVG preview of a footprint
  - check generated files for format and ordering problems

Examples:
  fpgen generate resistors.yaml -o out/         # Write all footprints
  fpgen preview resistors.yaml --name R_0603    # Draw one footprint
  fpgen verify out/*.kicad_mod                  # Check generated files
  fpgen tree resistors.yaml --name R_0603        # Show the node tree`,
	Version:       "0.9.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func logf(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[INFO] "+format+"\n", args...)
	}
}

func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s "+format+"\n", append([]any{styles.warn.Render("[WARN]")}, args...)...)
}
