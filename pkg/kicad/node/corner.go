package node

import (
	"fmt"
	"math"
)

// RoundRadiusHandler decides the corner radius of rounded pads. Exact takes
// precedence over Maximum, which caps Ratio.
type RoundRadiusHandler struct {
	Ratio   float64  // Fraction of the shortest side, in [0, 0.5]
	Maximum *float64 // Radius cap in mm
	Exact   *float64 // Fixed radius in mm
}

// NewRoundRadiusHandler validates ratio
func NewRoundRadiusHandler(ratio float64, maximum, exact *float64) (*RoundRadiusHandler, error) {
	if err := checkCornerRatio("radius ratio", ratio); err != nil {
		return nil, err
	}
	return &RoundRadiusHandler{Ratio: ratio, Maximum: maximum, Exact: exact}, nil
}

// RadiusRatio returns the effective ratio for a pad whose shortest side is
// shortest
func (h *RoundRadiusHandler) RadiusRatio(shortest float64) (float64, error) {
	return cornerRatio("round radius", h.Ratio, h.Maximum, h.Exact, shortest)
}

// Radius returns the effective corner radius in mm
func (h *RoundRadiusHandler) Radius(shortest float64) (float64, error) {
	r, err := h.RadiusRatio(shortest)
	return r * shortest, err
}

// RoundingRequested reports whether the handler yields a non-zero radius
func (h *RoundRadiusHandler) RoundingRequested() bool {
	return cornerRequested(h.Ratio, h.Maximum, h.Exact)
}

// LimitMaxRadius lowers the radius cap to limit
func (h *RoundRadiusHandler) LimitMaxRadius(limit float64) {
	if h.RoundingRequested() {
		h.Maximum = lowerCap(h.Maximum, limit)
	}
}

func (h *RoundRadiusHandler) String() string {
	return fmt.Sprintf("ratio %g, max %s, exact %s", h.Ratio, optional(h.Maximum), optional(h.Exact))
}

// DefaultChamferRatio is used when a chamfer handler is given no ratio
const DefaultChamferRatio = 0.25

// ChamferSizeHandler decides the chamfer size of chamfered pads with the
// same precedence as RoundRadiusHandler
type ChamferSizeHandler struct {
	Ratio   float64
	Maximum *float64
	Exact   *float64
}

// NewChamferSizeHandler validates ratio; a nil ratio uses
// DefaultChamferRatio
func NewChamferSizeHandler(ratio, maximum, exact *float64) (*ChamferSizeHandler, error) {
	r := DefaultChamferRatio
	if ratio != nil {
		r = *ratio
	}
	if err := checkCornerRatio("chamfer ratio", r); err != nil {
		return nil, err
	}
	return &ChamferSizeHandler{Ratio: r, Maximum: maximum, Exact: exact}, nil
}

func (h *ChamferSizeHandler) ChamferRatio(shortest float64) (float64, error) {
	return cornerRatio("chamfer", h.Ratio, h.Maximum, h.Exact, shortest)
}

// ChamferSize returns the effective chamfer leg length in mm
func (h *ChamferSizeHandler) ChamferSize(shortest float64) (float64, error) {
	r, err := h.ChamferRatio(shortest)
	return r * shortest, err
}

func (h *ChamferSizeHandler) ChamferRequested() bool {
	return cornerRequested(h.Ratio, h.Maximum, h.Exact)
}

func (h *ChamferSizeHandler) LimitMaxChamfer(limit float64) {
	if h.ChamferRequested() {
		h.Maximum = lowerCap(h.Maximum, limit)
	}
}

func (h *ChamferSizeHandler) String() string {
	return fmt.Sprintf("ratio %g, max %s, exact %s", h.Ratio, optional(h.Maximum), optional(h.Exact))
}

func checkCornerRatio(name string, ratio float64) error {
	if ratio < 0 || ratio > 0.5 {
		return fmt.Errorf("%s %g must be in range [0, 0.5]: %w", name, ratio, ErrInvalidPad)
	}
	return nil
}

func cornerRatio(name string, ratio float64, maximum, exact *float64, shortest float64) (float64, error) {
	if exact != nil {
		if *exact > shortest/2 {
			return 0, fmt.Errorf("requested %s of %g is too large for pad size of %g: %w", name, *exact, shortest, ErrInvalidPad)
		}
		if maximum != nil {
			return math.Min(*exact, *maximum) / shortest, nil
		}
		return *exact / shortest, nil
	}
	if maximum != nil && ratio*shortest > *maximum {
		return *maximum / shortest, nil
	}
	return ratio, nil
}

func cornerRequested(ratio float64, maximum, exact *float64) bool {
	if maximum != nil && *maximum == 0 {
		return false
	}
	if exact != nil && *exact == 0 {
		return false
	}
	return ratio != 0
}

func lowerCap(current *float64, limit float64) *float64 {
	if current != nil && *current < limit {
		return current
	}
	return &limit
}

func optional(v *float64) string {
	if v == nil {
		return "none"
	}
	return fmt.Sprintf("%g", *v)
}

// CornerSelection selects corners of a rectangle for chamfering
type CornerSelection struct {
	TopLeft     bool
	TopRight    bool
	BottomRight bool
	BottomLeft  bool
}

// AllCorners selects every corner
var AllCorners = CornerSelection{true, true, true, true}

// CornersFromList builds a selection from flags ordered top left, top
// right, bottom right, bottom left
func CornersFromList(flags []bool) (CornerSelection, error) {
	if len(flags) != 4 {
		return CornerSelection{}, fmt.Errorf("corner selection needs 4 flags, got %d", len(flags))
	}
	return CornerSelection{flags[0], flags[1], flags[2], flags[3]}, nil
}

// CornersFromNames builds a selection from corner names such as
// "top_left"; "all" selects every corner
func CornersFromNames(names []string) (CornerSelection, error) {
	var c CornerSelection
	for _, n := range names {
		switch n {
		case "top_left":
			c.TopLeft = true
		case "top_right":
			c.TopRight = true
		case "bottom_right":
			c.BottomRight = true
		case "bottom_left":
			c.BottomLeft = true
		case "all":
			c = AllCorners
		default:
			return CornerSelection{}, fmt.Errorf("unknown corner %q", n)
		}
	}
	return c, nil
}

func (c CornerSelection) IsAnySelected() bool {
	return c.TopLeft || c.TopRight || c.BottomRight || c.BottomLeft
}

// List returns the flags in the order top left, top right, bottom right,
// bottom left
func (c CornerSelection) List() []bool {
	return []bool{c.TopLeft, c.TopRight, c.BottomRight, c.BottomLeft}
}

// RotatedCW returns the selection after turning the rectangle a quarter
// turn clockwise
func (c CornerSelection) RotatedCW() CornerSelection {
	return CornerSelection{TopLeft: c.BottomLeft, TopRight: c.TopLeft, BottomRight: c.TopRight, BottomLeft: c.BottomRight}
}

func (c CornerSelection) RotatedCCW() CornerSelection {
	return CornerSelection{TopLeft: c.TopRight, TopRight: c.BottomRight, BottomRight: c.BottomLeft, BottomLeft: c.TopLeft}
}

func (c *CornerSelection) SetLeft(v bool)   { c.TopLeft, c.BottomLeft = v, v }
func (c *CornerSelection) SetTop(v bool)    { c.TopLeft, c.TopRight = v, v }
func (c *CornerSelection) SetRight(v bool)  { c.TopRight, c.BottomRight = v, v }
func (c *CornerSelection) SetBottom(v bool) { c.BottomLeft, c.BottomRight = v, v }
