package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/kelseyhightower/envconfig"

	"github.com/OpenTraceLab/fpgen/pkg/kicad/style"
)

// Config holds defaults that can be set from the environment
type Config struct {
	OutputDir      string  `envconfig:"OUTPUT_DIR" default:"."`
	SilkWidth      float64 `envconfig:"SILK_WIDTH"`
	FabWidth       float64 `envconfig:"FAB_WIDTH"`
	CourtyardWidth float64 `envconfig:"COURTYARD_WIDTH"`
}

// LoadConfig reads FPGEN_* variables
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("fpgen", &cfg); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	return &cfg, nil
}

// Style returns the library defaults with the configured widths applied
func (c *Config) Style() style.Style {
	st := style.Default()
	if c.SilkWidth > 0 {
		st.SilkWidth = c.SilkWidth
	}
	if c.FabWidth > 0 {
		st.FabWidth = c.FabWidth
	}
	if c.CourtyardWidth > 0 {
		st.CourtyardWidth = c.CourtyardWidth
	}
	return st
}

var styles = struct {
	ok, fail, warn, skip lipgloss.Style
}{
	ok:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	fail: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	warn: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	skip: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
}
