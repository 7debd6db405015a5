// Package style holds the drawing conventions of the footprint library.
//
// A Style is passed explicitly to everything that needs defaults; there is
// no package level state.
package style

import "strings"

// Style collects default widths, clearances and rounding rules
type Style struct {
	SilkWidth      float64 // F/B.SilkS
	FabWidth       float64 // F/B.Fab
	CourtyardWidth float64 // F/B.CrtYd
	DefaultWidth   float64 // Every other layer
	PadPrimitive   float64 // Custom pad primitives

	Grid               float64 // Rounding grid for generated geometry (mm)
	CourtyardGrid      float64 // Courtyard corners snap outwards to this grid
	CourtyardOffset    float64 // Courtyard clearance around the body
	SilkPadClearance   float64 // Silkscreen clearance to pads
	SilkFabOffset      float64 // Silkscreen offset outside the fab outline
	TextSize           float64 // Default property text height
	TextThickness      float64 // Default property stroke thickness
	ChamferRatio       float64 // Default chamfer ratio of chamfered pads
	RoundRectRatio     float64 // Default corner ratio of round rect pads
	RoundRectMaxRadius float64 // Radius cap of round rect pads
}

// Default returns the KiCad library conventions
func Default() Style {
	return Style{
		SilkWidth:          0.12,
		FabWidth:           0.10,
		CourtyardWidth:     0.05,
		DefaultWidth:       0.15,
		PadPrimitive:       0,
		Grid:               0.01,
		CourtyardGrid:      0.01,
		CourtyardOffset:    0.25,
		SilkPadClearance:   0.2,
		SilkFabOffset:      0.11,
		TextSize:           1,
		TextThickness:      0.15,
		ChamferRatio:       0.25,
		RoundRectRatio:     0.25,
		RoundRectMaxRadius: 0.25,
	}
}

// LineWidth returns the default stroke width of a layer
func (s Style) LineWidth(layer string) float64 {
	switch {
	case strings.HasSuffix(layer, ".SilkS") && isSided(layer):
		return s.SilkWidth
	case strings.HasSuffix(layer, ".Fab") && isSided(layer):
		return s.FabWidth
	case strings.HasSuffix(layer, ".CrtYd") && isSided(layer):
		return s.CourtyardWidth
	}
	return s.DefaultWidth
}

// isSided reports whether layer belongs to the front or back side
func isSided(layer string) bool {
	return strings.HasPrefix(layer, "F.") || strings.HasPrefix(layer, "B.")
}
