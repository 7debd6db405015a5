package node

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/samber/lo"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
)

// PadArray places Count copies of a pad along a row
type PadArray struct {
	Base
	Template PadSpec // At and Number are ignored
	Count    int
	Start    geom.Vector2D // Position of the first pad
	Spacing  geom.Vector2D
	Initial  int
	// Increment between pad numbers; 0 gives every pad the initial number
	Increment int
	Prefix    string
	// Hidden pad numbers keep their position but are not placed
	Hidden []int
	// Pad1Shape replaces the shape of pad 1 of through hole arrays
	Pad1Shape PadShape
}

// NewPadArray returns an array of count pads centered on center
func NewPadArray(template PadSpec, count int, center, spacing geom.Vector2D) (*PadArray, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%d is an invalid pad count: %w", count, ErrInvalidPad)
	}
	if spacing == (geom.Vector2D{}) {
		return nil, fmt.Errorf("pad spacing %v must be non-zero: %w", spacing, ErrInvalidPad)
	}
	a := &PadArray{
		Template:  template,
		Count:     count,
		Start:     center.Sub(spacing.Scale(float64(count-1) / 2)),
		Spacing:   spacing,
		Initial:   1,
		Increment: 1,
	}
	bind(a)
	return a, nil
}

func (a *PadArray) Kind() Kind { return KindPadArray }

// Numbers returns the pad numbers in placement order; hidden pads are
// returned as empty strings
func (a *PadArray) Numbers() []string {
	return lo.Times(a.Count, func(i int) string {
		n := a.Initial + i*a.Increment
		if slices.Contains(a.Hidden, n) {
			return ""
		}
		return a.Prefix + strconv.Itoa(n)
	})
}

func (a *PadArray) VirtualChildren() ([]Node, error) {
	var pads []Node
	for i, number := range a.Numbers() {
		if number == "" {
			continue
		}
		spec := a.Template
		spec.Number = number
		spec.At = a.Start.Add(a.Spacing.Scale(float64(i)))
		if a.Pad1Shape != "" && spec.Type == PadTHT && number == a.Prefix+"1" {
			spec.Shape = a.Pad1Shape
		}
		p, err := NewPad(spec)
		if err != nil {
			return nil, fmt.Errorf("failed to place pad %d of array: %w", i+1, err)
		}
		pads = append(pads, p)
	}
	return adopt(a, pads), nil
}

func (a *PadArray) Describe() string {
	return fmt.Sprintf("PadArray [count: %d start: %v spacing: %v]", a.Count, a.Start, a.Spacing)
}
