// Package sexp provides navigation helpers over parsed KiCad S-expressions
// and the small value types shared by the footprint file readers.
package sexp

import "github.com/OpenTraceLab/fpgen/pkg/geom"

// PositionAngle is an (at X Y [angle]) node. Footprint files store
// millimetres and degrees, no conversion is needed.
type PositionAngle struct {
	geom.Vector2D
	Angle float64 // Rotation in degrees, 0 when omitted
}

// Stroke defines line/outline appearance
type Stroke struct {
	Width float64 // Line width in mm
	Type  string  // Line type (solid, dash, dot, etc.)
}

// Font represents font properties
type Font struct {
	Face      string        // Font face name (optional)
	Size      geom.Vector2D // Glyph width and height in mm
	Thickness float64       // Line thickness for stroke fonts
	Bold      bool
	Italic    bool
}

// Justify represents text justification
type Justify struct {
	Horizontal string // left, center, right
	Vertical   string // top, center, bottom
	Mirror     bool
}

// Effects represents text effects (font, justification, etc.)
type Effects struct {
	Font    Font
	Justify Justify
}

// Property is a (property "key" "value" ...) node of a footprint
type Property struct {
	Key      string
	Value    string
	Position PositionAngle
	Layer    string
	Hide     bool
	Effects  Effects
}
