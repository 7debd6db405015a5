package cmd

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/OpenTraceLab/fpgen/pkg/kicad/footprint"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/style"
	"github.com/OpenTraceLab/fpgen/pkg/recipe"
)

// buildNamed builds the footprint called name from a recipe file
func buildNamed(path, name string, st style.Style) (*footprint.Footprint, error) {
	f, err := recipe.LoadFile(path)
	if err != nil {
		return nil, err
	}
	insts := f.Instances()
	inst, ok := lo.Find(insts, func(i recipe.Instance) bool { return i.Name == name })
	if !ok {
		names := lo.Map(insts, func(i recipe.Instance, _ int) string { return i.Name })
		return nil, fmt.Errorf("no footprint named %q in %s (have: %s)", name, path, strings.Join(names, ", "))
	}
	return recipe.NewBuilder(st).Build(inst)
}
