package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/fpgen/pkg/kicad/node"
)

var (
	treeName    string
	treeVirtual bool
)

var treeCmd = &cobra.Command{
	Use:   "tree <recipe.yaml>",
	Short: "Print the node tree of a footprint",
	Long: `Builds one footprint of a recipe and prints its node tree, one node per
line. With --virtual the generated primitives of compound nodes are listed
as well.`,
	Args: cobra.ExactArgs(1),
	RunE: runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().StringVar(&treeName, "name", "", "footprint name (required)")
	treeCmd.Flags().BoolVar(&treeVirtual, "virtual", false, "include virtual children")
	_ = treeCmd.MarkFlagRequired("name")
}

func runTree(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	fp, err := buildNamed(args[0], treeName, cfg.Style())
	if err != nil {
		return err
	}

	render := node.RenderTree
	if treeVirtual {
		render = node.CompleteRenderTree
	}
	tree, err := render(fp)
	if err != nil {
		return fmt.Errorf("failed to render tree: %w", err)
	}
	fmt.Println(tree)
	return nil
}
