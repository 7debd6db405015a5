// Package recipe reads YAML footprint recipes and builds footprint trees
// from them.
//
// A recipe file holds global variables and a list of footprints. Every
// numeric field accepts a number or an expression over the variables, for
// example "pitch * (n - 1) / 2". A footprint with variants expands into one
// footprint per variant, each variant adding its own variables.
package recipe

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is a recipe document
type File struct {
	Vars       map[string]Num `yaml:"vars"`
	Footprints []Footprint    `yaml:"footprints"`
}

// Footprint describes one footprint or a family of variants
type Footprint struct {
	Name        string           `yaml:"name"` // May contain {var} placeholders
	Type        string           `yaml:"type"`
	Description string           `yaml:"description"`
	Tags        []string         `yaml:"tags"`
	Vars        map[string]Num   `yaml:"vars"`
	Variants    []map[string]Num `yaml:"variants"`
	Attributes  Attributes       `yaml:"attributes"`
	Properties  Properties       `yaml:"properties"`
	Texts       []Text           `yaml:"texts"`
	Shapes      []Shape          `yaml:"shapes"`
	Pads        []Pad            `yaml:"pads"`
	Keepouts    []Shape          `yaml:"keepouts"`
	KeepoutPads bool             `yaml:"keepout_pads"` // Cut silkscreen around pads
	Courtyard   *Courtyard       `yaml:"courtyard"`
	Model       *Model           `yaml:"model"`
}

// Attributes are the footprint flags and margins
type Attributes struct {
	ExcludeFromBOM           bool `yaml:"exclude_from_bom"`
	ExcludeFromPositionFiles bool `yaml:"exclude_from_pos_files"`
	AllowSoldermaskBridges   bool `yaml:"allow_soldermask_bridges"`
	BoardOnly                bool `yaml:"board_only"`
	DNP                      bool `yaml:"dnp"`
	MaskMargin               *Num `yaml:"solder_mask_margin"`
	PasteMargin              *Num `yaml:"solder_paste_margin"`
	PasteMarginRatio         *Num `yaml:"solder_paste_margin_ratio"`
	Clearance                *Num `yaml:"clearance"`
}

// Properties place the standard footprint fields
type Properties struct {
	Reference *Text  `yaml:"reference"`
	Value     *Text  `yaml:"value"`
	Datasheet string `yaml:"datasheet"`
}

// Text is a property placement or a user text
type Text struct {
	Text      string `yaml:"text"`
	At        Vec    `yaml:"at"`
	Rotation  Num    `yaml:"rotation"`
	Layer     string `yaml:"layer"`
	Size      *Vec   `yaml:"size"`
	Thickness *Num   `yaml:"thickness"`
	Justify   string `yaml:"justify"`
	Mirror    bool   `yaml:"mirror"`
	Hide      bool   `yaml:"hide"`
}

// Shape is a drawn element. Kind selects which fields apply:
//
//	line            start, end
//	arc             center, start, angle | start, mid, end
//	circle          center, radius
//	rect            start, end
//	polygon         points
//	polyline        points (open unless closed is set)
//	roundrect       center, size, radius
//	chamfered_rect  center, size, chamfer, corners
//	trapezoid       center, size, side_angle, radius, rotation
//	cross           center, size, rotation
//	stadium         start, end, radius
type Shape struct {
	Kind      string   `yaml:"kind"`
	Layer     string   `yaml:"layer"`
	Width     *Num     `yaml:"width"`
	Style     string   `yaml:"style"`
	Fill      bool     `yaml:"fill"`
	Group     string   `yaml:"group"`
	Start     *Vec     `yaml:"start"`
	End       *Vec     `yaml:"end"`
	Mid       *Vec     `yaml:"mid"`
	Center    *Vec     `yaml:"center"`
	Size      *Vec     `yaml:"size"`
	Radius    Num      `yaml:"radius"`
	Angle     *Num     `yaml:"angle"`
	Rotation  Num      `yaml:"rotation"`
	SideAngle Num      `yaml:"side_angle"`
	Chamfer   *Num     `yaml:"chamfer"` // Chamfer ratio
	Corners   []string `yaml:"corners"`
	Points    []Vec    `yaml:"points"`
	Closed    bool     `yaml:"closed"`
}

// Pad is a single pad, or a row of pads when Array is set
type Pad struct {
	Number   string   `yaml:"number"`
	Type     string   `yaml:"type"`
	Shape    string   `yaml:"shape"`
	At       Vec      `yaml:"at"`
	Rotation Num      `yaml:"rotation"`
	Size     Vec      `yaml:"size"`
	Drill    *Vec     `yaml:"drill"`
	Offset   *Vec     `yaml:"offset"`
	Layers   []string `yaml:"layers"`
	Property string   `yaml:"property"`

	RadiusRatio    *Num     `yaml:"radius_ratio"`
	MaxRadius      *Num     `yaml:"max_radius"`
	ExactRadius    *Num     `yaml:"radius"`
	ChamferRatio   *Num     `yaml:"chamfer_ratio"`
	ChamferCorners []string `yaml:"chamfer"`

	Primitives []Shape `yaml:"primitives"`
	Anchor     string  `yaml:"anchor"`
	ZoneShape  string  `yaml:"zone_shape"`

	SolderMaskMargin       Num    `yaml:"solder_mask_margin"`
	SolderPasteMargin      Num    `yaml:"solder_paste_margin"`
	SolderPasteMarginRatio Num    `yaml:"solder_paste_margin_ratio"`
	Clearance              *Num   `yaml:"clearance"`
	ThermalBridgeAngle     *Num   `yaml:"thermal_bridge_angle"`
	ZoneConnection         string `yaml:"zone_connect"`
	UnusedLayers           string `yaml:"unused_layers"` // keep, remove, keep_ends
	DieLength              Num    `yaml:"die_length"`

	Array *Array `yaml:"array"`
}

// Array places Count pads along Pitch starting at the centered position
type Array struct {
	Count     Num    `yaml:"count"`
	Pitch     Vec    `yaml:"pitch"`
	Center    Vec    `yaml:"center"`
	Initial   *Num   `yaml:"initial"`
	Increment *Num   `yaml:"increment"`
	Prefix    string `yaml:"prefix"`
	Hidden    []Num  `yaml:"hidden"`
	Pad1Shape string `yaml:"pad1_shape"`
}

// Courtyard generates a rectangle around the footprint
type Courtyard struct {
	Clearance *Num     `yaml:"clearance"`
	Layer     string   `yaml:"layer"`
	Layers    []string `yaml:"layers"` // Layers measured besides the pads
}

// Model references the 3D model; {name} expands to the footprint name
type Model struct {
	Path   string `yaml:"path"`
	Offset []Num  `yaml:"offset"`
	Scale  []Num  `yaml:"scale"`
	Rotate []Num  `yaml:"rotate"`
}

// LoadFile reads a recipe file
func LoadFile(filename string) (*File, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe: %w", err)
	}
	f, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return f, nil
}

// Parse decodes a recipe document
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty recipe")
		}
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}
	if len(f.Footprints) == 0 {
		return nil, fmt.Errorf("recipe defines no footprints")
	}
	return &f, nil
}

// Instance is a footprint recipe with its variables bound. Err holds a
// variable or naming problem; building the instance reports it.
type Instance struct {
	Name  string
	Spec  *Footprint
	Scope *Scope
	Err   error
}

// Instances expands variants and resolves names. A broken variable only
// affects the instances that see it.
func (f *File) Instances() []Instance {
	global := NewScope(nil, f.Vars)
	var out []Instance
	for i := range f.Footprints {
		spec := &f.Footprints[i]
		variants := spec.Variants
		if len(variants) == 0 {
			variants = []map[string]Num{nil}
		}
		for j, vars := range variants {
			// Footprint variables may depend on the variant
			inst := Instance{Spec: spec, Scope: NewScope(NewScope(global, vars), spec.Vars)}
			name, err := inst.Scope.Expand(spec.Name)
			switch {
			case err != nil:
				inst.Name = spec.Name
				inst.Err = fmt.Errorf("failed to expand name %q: %w", spec.Name, err)
			case name == "":
				inst.Name = fmt.Sprintf("footprint %d", i+1)
				inst.Err = fmt.Errorf("footprint %d has no name", i+1)
			default:
				inst.Name = name
			}
			if inst.Err == nil {
				if err := inst.Scope.Check(); err != nil {
					inst.Err = fmt.Errorf("variant %d: %w", j+1, err)
				}
			}
			out = append(out, inst)
		}
	}
	return out
}
