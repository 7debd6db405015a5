// Package footprint provides the root node of a generated footprint and its
// library metadata.
package footprint

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/OpenTraceLab/fpgen/pkg/kicad/node"
)

// Type is the placement type written as footprint attribute
type Type int

const (
	Unspecified Type = iota
	SMD
	THT
)

func (t Type) String() string {
	switch t {
	case SMD:
		return "smd"
	case THT:
		return "through_hole"
	}
	return "unspecified"
}

// ParseType maps a recipe type name to a Type
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "", "unspecified":
		return Unspecified, nil
	case "smd", "smt":
		return SMD, nil
	case "tht", "through_hole":
		return THT, nil
	}
	return Unspecified, fmt.Errorf("unknown footprint type %q", s)
}

// ErrPasteRatio is returned for paste margin ratios outside [-1, 1]
var ErrPasteRatio = errors.New("solder paste margin ratio must be between -1 and 1")

var commaFixer = regexp.MustCompile(`,(\s*,)+`)

// Footprint is the root of a footprint tree
type Footprint struct {
	node.Base

	Name string
	Type Type

	ExcludeFromBOM           bool
	ExcludeFromPositionFiles bool
	AllowSoldermaskBridges   bool
	NotInSchematic           bool
	DNP                      bool

	MaskMargin       *float64
	PasteMargin      *float64
	PasteMarginRatio *float64
	Clearance        *float64
	ZoneConnection   node.ZoneConnection

	// TStamp seeds reproducible uuids of groups and their members
	TStamp node.TStamp

	description string
	tags        []string
}

// New returns an empty footprint
func New(name string, typ Type) *Footprint {
	fp := &Footprint{Name: name, Type: typ, TStamp: node.NewTStamp(name)}
	node.Bind(fp)
	return fp
}

func (f *Footprint) Kind() node.Kind { return node.KindFootprint }

func (f *Footprint) Describe() string {
	return fmt.Sprintf("Footprint [name: %s, type: %s]", f.Name, f.Type)
}

// Description returns the library description
func (f *Footprint) Description() string { return f.description }

// SetDescription sets the description, collapsing runs of separators such
// as ", , ," into a single comma
func (f *Footprint) SetDescription(d string) {
	f.description = commaFixer.ReplaceAllString(d, ",")
}

// Tags returns the keywords in insertion order
func (f *Footprint) Tags() []string { return f.tags }

// AddTags appends keywords that are not present yet
func (f *Footprint) AddTags(tags ...string) {
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" && !slices.Contains(f.tags, t) {
			f.tags = append(f.tags, t)
		}
	}
}

// SetTags replaces the keywords
func (f *Footprint) SetTags(tags ...string) {
	f.tags = nil
	f.AddTags(tags...)
}

// SetPasteMarginRatio validates and sets the footprint paste ratio
func (f *Footprint) SetPasteMarginRatio(v float64) error {
	if math.Abs(v) > 1 {
		return fmt.Errorf("%g: %w", v, ErrPasteRatio)
	}
	f.PasteMarginRatio = &v
	return nil
}

// Group returns a group of members with uuids derived from the footprint
// seed. The group itself still has to be appended.
func (f *Footprint) Group(name string, members ...node.Node) *node.Group {
	return node.NewGroup(name, f.TStamp, members...)
}
