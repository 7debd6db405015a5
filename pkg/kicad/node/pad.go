package node

import (
	"fmt"
	"math"
	"slices"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
)

// PadType is the electrical kind of a pad
type PadType string

const (
	PadTHT     PadType = "thru_hole"
	PadSMT     PadType = "smd"
	PadConnect PadType = "connect"
	PadNPTH    PadType = "np_thru_hole"
)

// PadShape is the copper shape of a pad
type PadShape string

const (
	ShapeCircle    PadShape = "circle"
	ShapeOval      PadShape = "oval"
	ShapeRect      PadShape = "rect"
	ShapeRoundRect PadShape = "roundrect"
	ShapeTrapezoid PadShape = "trapezoid"
	ShapeCustom    PadShape = "custom"
)

// Default layer sets
var (
	LayersSMT          = []string{"F.Cu", "F.Paste", "F.Mask"}
	LayersTHT          = []string{"*.Cu", "*.Mask"}
	LayersNPTH         = []string{"*.Cu", "*.Mask"}
	LayersConnectFront = []string{"F.Cu", "F.Mask"}
	LayersConnectBack  = []string{"B.Cu", "B.Mask"}
)

// AnchorShape is the anchor pad of a custom pad
type AnchorShape string

const (
	AnchorCircle AnchorShape = "circle"
	AnchorRect   AnchorShape = "rect"
)

// ZoneShape selects how a custom pad is seen by zone fills
type ZoneShape string

const (
	ZoneOutline    ZoneShape = "outline"
	ZoneConvexHull ZoneShape = "convexhull"
)

// FabProperty is the fabrication property of a pad
type FabProperty string

const (
	FabNone           FabProperty = ""
	FabBGA            FabProperty = "bga"
	FabFiducialGlobal FabProperty = "fiducial_global"
	FabFiducialLocal  FabProperty = "fiducial_local"
	FabTestpoint      FabProperty = "testpoint"
	FabHeatsink       FabProperty = "heatsink"
	FabCastellated    FabProperty = "castellated"
)

// ZoneConnection is the zone connection style of a pad or footprint
type ZoneConnection int

const (
	ZoneInherit ZoneConnection = iota
	ZoneNone
	ZoneThermalRelief
	ZoneSolid
)

// UnconnectedLayerMode controls copper on inner layers without a track
type UnconnectedLayerMode int

const (
	KeepAllLayers UnconnectedLayerMode = iota
	RemoveAllLayers
	RemoveExceptStartAndEnd
)

// PadSpec describes a pad before validation
type PadSpec struct {
	Number   string
	Type     PadType
	Shape    PadShape
	At       geom.Vector2D
	Rotation float64
	Size     geom.Vector2D
	Offset   geom.Vector2D
	Drill    *geom.Vector2D // Required for THT and NPTH pads
	Layers   []string

	FabProperty FabProperty

	RoundRadius    *RoundRadiusHandler // Required for round rect pads
	Chamfer        *ChamferSizeHandler
	ChamferCorners CornerSelection

	Primitives []Primitive // Required for custom pads, in pad coordinates
	Anchor     AnchorShape
	ZoneShape  ZoneShape

	SolderMaskMargin       float64
	SolderPasteMargin      float64
	SolderPasteMarginRatio float64
	ZoneConnection         ZoneConnection
	Clearance              *float64
	ThermalBridgeWidth     *float64
	ThermalBridgeAngle     *float64
	ThermalGap             *float64
	UnconnectedLayers      UnconnectedLayerMode
	DieLength              float64

	XMirror *float64 // Mirror axis x = value
	YMirror *float64 // Mirror axis y = value
}

// Pad is a validated pad
type Pad struct {
	Base
	PadSpec
}

// NewPad validates spec and returns the pad
func NewPad(spec PadSpec) (*Pad, error) {
	if err := validatePad(&spec); err != nil {
		return nil, fmt.Errorf("failed to create pad %q: %w", spec.Number, err)
	}
	if spec.XMirror != nil {
		spec.At.X = 2**spec.XMirror - spec.At.X
		spec.Offset.X = -spec.Offset.X
	}
	if spec.YMirror != nil {
		spec.At.Y = 2**spec.YMirror - spec.At.Y
		spec.Offset.Y = -spec.Offset.Y
	}
	spec.Layers = slices.Clone(spec.Layers)
	spec.Primitives = slices.Clone(spec.Primitives)
	p := &Pad{PadSpec: spec}
	bind(p)
	return p, nil
}

func validatePad(s *PadSpec) error {
	switch s.Type {
	case PadTHT, PadSMT, PadConnect, PadNPTH:
	case "":
		return fmt.Errorf("type not declared: %w", ErrInvalidPad)
	default:
		return fmt.Errorf("%q is an invalid pad type: %w", s.Type, ErrInvalidPad)
	}
	switch s.Shape {
	case ShapeCircle, ShapeOval, ShapeRect, ShapeRoundRect, ShapeTrapezoid, ShapeCustom:
	case "":
		return fmt.Errorf("shape not declared: %w", ErrInvalidPad)
	default:
		return fmt.Errorf("%q is an invalid pad shape: %w", s.Shape, ErrInvalidPad)
	}
	switch s.FabProperty {
	case FabNone, FabBGA, FabFiducialGlobal, FabFiducialLocal, FabTestpoint, FabHeatsink, FabCastellated:
	default:
		return fmt.Errorf("%q is an invalid fab property: %w", s.FabProperty, ErrInvalidPad)
	}
	if s.Size.X < 0 || s.Size.Y < 0 || (s.Size.X == 0 && s.Size.Y == 0) {
		return fmt.Errorf("pad size %v is invalid: %w", s.Size, ErrInvalidPad)
	}
	if s.Type == PadTHT || s.Type == PadNPTH {
		if s.Drill == nil || s.Drill.X <= 0 || s.Drill.Y <= 0 {
			return fmt.Errorf("drill size required: %w", ErrInvalidPad)
		}
	} else {
		s.Drill = nil
	}
	if len(s.Layers) == 0 {
		return fmt.Errorf("layers not declared: %w", ErrInvalidPad)
	}
	if s.Shape == ShapeOval && s.Size.X == s.Size.Y {
		s.Shape = ShapeCircle
	}
	switch s.Shape {
	case ShapeRoundRect:
		if s.RoundRadius == nil {
			return fmt.Errorf("round radius handler not declared for roundrect pads: %w", ErrInvalidPad)
		}
		if _, err := s.RoundRadius.RadiusRatio(s.shortestSide()); err != nil {
			return err
		}
		if s.ChamferCorners.IsAnySelected() {
			if s.Chamfer == nil {
				h, _ := NewChamferSizeHandler(nil, nil, nil)
				s.Chamfer = h
			}
			if _, err := s.Chamfer.ChamferRatio(s.shortestSide()); err != nil {
				return err
			}
		}
	case ShapeCustom:
		if len(s.Primitives) == 0 {
			return fmt.Errorf("primitives must be declared for custom pads: %w", ErrInvalidPad)
		}
		if s.Anchor == "" {
			s.Anchor = AnchorCircle
		}
		if s.Anchor != AnchorCircle && s.Anchor != AnchorRect {
			return fmt.Errorf("%q is an illegal anchor shape: %w", s.Anchor, ErrInvalidPad)
		}
		if s.ZoneShape == "" {
			s.ZoneShape = ZoneOutline
		}
		if s.ZoneShape != ZoneOutline && s.ZoneShape != ZoneConvexHull {
			return fmt.Errorf("%q is an illegal shape in zone option: %w", s.ZoneShape, ErrInvalidPad)
		}
	}
	return nil
}

func (s *PadSpec) shortestSide() float64 {
	return math.Min(s.Size.X, s.Size.Y)
}

func (p *Pad) Kind() Kind { return KindPad }

// RadiusRatio returns the effective corner ratio, 0 without rounding
func (p *Pad) RadiusRatio() float64 {
	if p.RoundRadius == nil {
		return 0
	}
	r, err := p.RoundRadius.RadiusRatio(p.shortestSide())
	if err != nil {
		return 0
	}
	return r
}

// ChamferRatio returns the effective chamfer ratio, 0 without chamfer
func (p *Pad) ChamferRatio() float64 {
	if p.Chamfer == nil || !p.ChamferCorners.IsAnySelected() {
		return 0
	}
	r, err := p.Chamfer.ChamferRatio(p.shortestSide())
	if err != nil {
		return 0
	}
	return r
}

// CornerRadius returns the corner radius in mm. For custom pads it is the
// largest half width of the primitives.
func (p *Pad) CornerRadius() float64 {
	if p.Shape == ShapeCustom {
		r := 0.0
		for _, prim := range p.Primitives {
			if d, ok := prim.(interface{ StrokeWidth(float64) float64 }); ok {
				r = math.Max(r, d.StrokeWidth(0)/2)
			}
		}
		return r
	}
	return p.RadiusRatio() * p.shortestSide()
}

// EffectiveThermalBridgeAngle returns the spoke angle written for the pad
func (p *Pad) EffectiveThermalBridgeAngle() float64 {
	if p.ThermalBridgeAngle != nil {
		return *p.ThermalBridgeAngle
	}
	return p.DefaultThermalBridgeAngle()
}

// DefaultThermalBridgeAngle is 45 degrees for round pads and 90 otherwise
func (p *Pad) DefaultThermalBridgeAngle() float64 {
	if p.Shape == ShapeCircle || (p.Shape == ShapeCustom && p.Anchor == AnchorCircle) {
		return 45
	}
	return 90
}

// BBox returns the bounding box of the copper
func (p *Pad) BBox() geom.BoundingBox {
	if p.Shape == ShapeCircle {
		h := p.Size.Scale(0.5)
		return geom.BoundingBoxOf(p.At.Sub(h), p.At.Add(h))
	}
	box := geom.Rectangle{Center: p.At, Size: p.Size, Angle: -p.Rotation}.BBox()
	if p.Shape == ShapeCustom {
		m := geom.Motion{Angle: -p.Rotation, Offset: p.At}
		for _, prim := range p.Primitives {
			box.IncludeBox(primitiveBBox(prim.Transformed(m)))
		}
	}
	return box
}

// Outline returns the copper shape in board coordinates. Trapezoid pads
// use their rectangle and custom pads their anchor.
func (p *Pad) Outline() geom.ClosedShape {
	switch {
	case p.Shape == ShapeCircle, p.Shape == ShapeCustom && p.Anchor == AnchorCircle:
		return geom.NewCircle(p.At, p.Size.X/2)
	case p.Shape == ShapeOval:
		st := geom.StadiumInRectangle(geom.Rectangle{Center: p.At, Size: p.Size})
		return st.Transformed(geom.Rotation(-p.Rotation, p.At)).(geom.Stadium)
	case p.Shape == ShapeRoundRect:
		return geom.RoundRectangle{Center: p.At, Size: p.Size, Radius: p.CornerRadius(), Angle: -p.Rotation}
	}
	return geom.Rectangle{Center: p.At, Size: p.Size, Angle: -p.Rotation}
}

// DrillOutline returns the hole in board coordinates, false without drill
func (p *Pad) DrillOutline() (geom.ClosedShape, bool) {
	if p.Drill == nil {
		return nil, false
	}
	center := p.At.Add(p.Offset.Rotate(-p.Rotation, geom.Vector2D{}))
	if math.Abs(p.Drill.X-p.Drill.Y) < geom.TolMM {
		return geom.NewCircle(center, p.Drill.X/2), true
	}
	st := geom.StadiumInRectangle(geom.Rectangle{Center: center, Size: *p.Drill})
	return st.Transformed(geom.Rotation(-p.Rotation, center)).(geom.Stadium), true
}

// Transformed moves the pad.The pad rotation counts clockwise in the file
// format, so it decreases when the board rotates positively.
func (p *Pad) Transformed(m geom.Motion) Primitive {
	out := &Pad{PadSpec: p.PadSpec}
	out.At = m.Apply(p.At)
	out.Rotation = p.Rotation - m.Angle
	out.XMirror, out.YMirror = nil, nil
	out.UUID = p.UUID
	return out
}

// WithNumber returns a detached copy at a new position with a new number
func (p *Pad) WithNumber(number string, at geom.Vector2D) *Pad {
	out := &Pad{PadSpec: p.PadSpec}
	out.Number = number
	out.At = at
	out.Layers = slices.Clone(p.Layers)
	bind(out)
	return out
}

func (p *Pad) Describe() string {
	drill := "none"
	if p.Drill != nil {
		drill = p.Drill.String()
	}
	return fmt.Sprintf("Pad [%q %s %s at: %v size: %v drill: %s layers: %v]",
		p.Number, p.Type, p.Shape, p.At, p.Size, drill, p.Layers)
}
