// Package node is the footprint tree: containers, transformations,
// drawable primitives and composite nodes that expand into primitives.
//
// A node owns its explicit children. Composite nodes additionally expand
// into virtual children that are derived from their parameters every time
// they are queried, so mutating a composite is always reflected in the
// output. Flatten resolves the whole tree into primitives in board
// coordinates.
package node

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
)

// Kind names the variant of a node
type Kind string

const (
	KindContainer       Kind = "Container"
	KindTranslation     Kind = "Translation"
	KindRotation        Kind = "Rotation"
	KindFootprint       Kind = "Footprint"
	KindLine            Kind = "Line"
	KindArc             Kind = "Arc"
	KindCircle          Kind = "Circle"
	KindPolygon         Kind = "Polygon"
	KindCompoundPolygon Kind = "CompoundPolygon"
	KindRect            Kind = "Rect"
	KindPad             Kind = "Pad"
	KindProperty        Kind = "Property"
	KindText            Kind = "Text"
	KindModel           Kind = "Model"
	KindGroup           Kind = "Group"
	KindRectLine        Kind = "RectLine"
	KindPolygonLine     Kind = "PolygonLine"
	KindRoundRect       Kind = "RoundRect"
	KindChamferedRect   Kind = "ChamferedRect"
	KindTrapezoid       Kind = "Trapezoid"
	KindCross           Kind = "Cross"
	KindStadium         Kind = "Stadium"
	KindPadArray        Kind = "PadArray"
	KindFunc            Kind = "Func"
)

// Node is implemented by every element of the footprint tree. All node
// types embed Base, which provides the tree operations.
type Node interface {
	// Kind names the node variant
	Kind() Kind
	// Parent returns the owning node, nil for a root
	Parent() Node
	// Children returns the explicit children in insertion order
	Children() []Node
	// VirtualChildren returns the expansion of a composite node, derived
	// from its current parameters. Non-composite nodes return nil.
	VirtualChildren() ([]Node, error)
	// Append adds child as the last explicit child
	Append(child Node) error
	// Extend appends all children, or none of them if any is rejected
	Extend(children ...Node) error
	// Remove detaches an explicit child
	Remove(child Node) error
	// Insert moves all explicit children below n and appends n
	Insert(n Node) error
	// RealPosition maps a point and a rotation from the node's coordinate
	// system to the board through every transformation above it
	RealPosition(p geom.Vector2D, rotation float64) (geom.Vector2D, float64)

	base() *Base
}

// Primitive is a leaf node the footprint file knows directly
type Primitive interface {
	Node
	// Transformed returns a detached copy moved by m
	Transformed(m geom.Motion) Primitive
}

// transformer is implemented by nodes that move their subtree
type transformer interface {
	LocalMotion() geom.Motion
}

var (
	// ErrVirtualNode is returned when removing a node that belongs to the
	// expansion of a composite instead of its explicit children
	ErrVirtualNode = errors.New("node is a virtual child")

	// ErrNotChild is returned when removing a node that is not a child
	ErrNotChild = errors.New("node is not a child")

	// ErrInvalidPad is returned for missing or inconsistent pad parameters
	ErrInvalidPad = errors.New("invalid pad")
)

// MultipleParentsError is returned when a node that already has a parent
// is appended somewhere else
type MultipleParentsError struct {
	Child  Kind
	Parent Kind // Current owner
}

func (e *MultipleParentsError) Error() string {
	if e.Parent == "" {
		return fmt.Sprintf("%s is given twice in the same call", e.Child)
	}
	return fmt.Sprintf("%s already has parent %s, multiple parents are not allowed", e.Child, e.Parent)
}

// RecursionDetectedError reports a node that contains itself, either
// through explicit children or through a virtual expansion
type RecursionDetectedError struct {
	Path []Kind // From the outermost node to the repeated one
}

func (e *RecursionDetectedError) Error() string {
	parts := make([]string, len(e.Path))
	for i, k := range e.Path {
		parts[i] = string(k)
	}
	return "recursive node definition: " + strings.Join(parts, " -> ")
}

// Base holds the tree links. The zero value is an empty root.
type Base struct {
	parent   *Base
	self     Node
	children []Node

	// UUID is written as the element uuid when set
	UUID uuid.UUID
}

func (b *Base) base() *Base { return b }

// bind records the outer node embedding b
func bind(n Node) Node {
	n.base().self = n
	return n
}

// Bind must be called by constructors of node types declared in other
// packages so that their children can report them as parent
func Bind(n Node) { bind(n) }

func (b *Base) Parent() Node {
	if b.parent == nil {
		return nil
	}
	return b.parent.self
}

func (b *Base) Children() []Node {
	return b.children
}

// VirtualChildren of a plain node are empty
func (b *Base) VirtualChildren() ([]Node, error) {
	return nil, nil
}

func (b *Base) Append(child Node) error {
	return b.Extend(child)
}

func (b *Base) Extend(children ...Node) error {
	seen := make(map[*Base]bool, len(children))
	for _, c := range children {
		cb := c.base()
		if cb.parent != nil {
			return &MultipleParentsError{Child: c.Kind(), Parent: kindOf(cb.parent)}
		}
		if seen[cb] {
			return &MultipleParentsError{Child: c.Kind()}
		}
		if b.isSelfOrAncestor(cb) {
			return &RecursionDetectedError{Path: append(b.pathFrom(cb), c.Kind())}
		}
		seen[cb] = true
	}
	for _, c := range children {
		bind(c)
		c.base().parent = b
		b.children = append(b.children, c)
	}
	return nil
}

func (b *Base) isSelfOrAncestor(other *Base) bool {
	for a := b; a != nil; a = a.parent {
		if a == other {
			return true
		}
	}
	return false
}

// pathFrom lists the kinds from the ancestor anc down to b
func (b *Base) pathFrom(anc *Base) []Kind {
	var kinds []Kind
	for a := b; a != nil; a = a.parent {
		kinds = append([]Kind{kindOf(a)}, kinds...)
		if a == anc {
			break
		}
	}
	return kinds
}

func (b *Base) Remove(child Node) error {
	cb := child.base()
	for i, c := range b.children {
		if c.base() == cb {
			b.children = append(b.children[:i:i], b.children[i+1:]...)
			cb.parent = nil
			return nil
		}
	}
	if cb.parent == b {
		return fmt.Errorf("failed to remove %s: %w", child.Kind(), ErrVirtualNode)
	}
	return fmt.Errorf("failed to remove %s: %w", child.Kind(), ErrNotChild)
}

func (b *Base) Insert(n Node) error {
	nb := n.base()
	if nb.parent != nil {
		return &MultipleParentsError{Child: n.Kind(), Parent: kindOf(nb.parent)}
	}
	moved := b.children
	b.children = nil
	for _, c := range moved {
		c.base().parent = nil
	}
	if err := n.Extend(moved...); err != nil {
		return err
	}
	return b.Append(n)
}

func (b *Base) RealPosition(p geom.Vector2D, rotation float64) (geom.Vector2D, float64) {
	for a := b; a != nil; a = a.parent {
		if t, ok := a.self.(transformer); ok {
			m := t.LocalMotion()
			p = m.Apply(p)
			rotation += m.Angle
		}
	}
	return p, rotation
}

// adopt makes parent the owner of expanded nodes without listing them as
// explicit children
func adopt(parent Node, nodes []Node) []Node {
	pb := parent.base()
	for _, n := range nodes {
		bind(n)
		n.base().parent = pb
	}
	return nodes
}

func kindOf(b *Base) Kind {
	if b.self == nil {
		return KindContainer
	}
	return b.self.Kind()
}

// Root returns the topmost ancestor of n
func Root(n Node) Node {
	for n.Parent() != nil {
		n = n.Parent()
	}
	return n
}
