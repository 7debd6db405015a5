package node

import (
	"fmt"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
)

// Vector3D is a model offset, scale or rotation triple
type Vector3D struct {
	X, Y, Z float64
}

// Model references a 3D model of the part. Models do not follow board
// transformations; their placement is relative to the footprint origin.
type Model struct {
	Base
	Filename string
	Offset   Vector3D // mm
	Scale    Vector3D
	Rotate   Vector3D // Degrees around each axis
}

// NewModel returns a model at the origin with unit scale
func NewModel(filename string) *Model {
	m := &Model{Filename: filename, Scale: Vector3D{1, 1, 1}}
	bind(m)
	return m
}

func (m *Model) Kind() Kind { return KindModel }

func (m *Model) Transformed(geom.Motion) Primitive {
	out := &Model{Filename: m.Filename, Offset: m.Offset, Scale: m.Scale, Rotate: m.Rotate}
	out.UUID = m.UUID
	return out
}

func (m *Model) Describe() string {
	return fmt.Sprintf("Model [filename: %q, offset: %v, scale: %v, rotate: %v]", m.Filename, m.Offset, m.Scale, m.Rotate)
}
