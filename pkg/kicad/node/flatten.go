package node

import (
	"strings"

	"github.com/samber/lo"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
)

type describer interface {
	Describe() string
}

type boxed interface {
	BBox() geom.BoundingBox
}

// Flatten resolves the tree below root into primitives in board
// coordinates. Transformations are applied to detached copies; the tree
// itself is not modified.
func Flatten(root Node) ([]Primitive, error) {
	w := &walker{onPath: map[Node]bool{}}
	if err := w.walk(root, geom.Motion{}); err != nil {
		return nil, err
	}
	return w.out, nil
}

type walker struct {
	path   []Node
	onPath map[Node]bool
	out    []Primitive
}

func (w *walker) enter(n Node) error {
	if w.onPath[n] {
		kinds := lo.Map(append(w.path, n), func(p Node, _ int) Kind { return p.Kind() })
		return &RecursionDetectedError{Path: kinds}
	}
	w.onPath[n] = true
	w.path = append(w.path, n)
	return nil
}

func (w *walker) leave(n Node) {
	delete(w.onPath, n)
	w.path = w.path[:len(w.path)-1]
}

func (w *walker) walk(n Node, m geom.Motion) error {
	if err := w.enter(n); err != nil {
		return err
	}
	defer w.leave(n)

	if t, ok := n.(transformer); ok {
		m = t.LocalMotion().Then(m)
	}
	if p, ok := n.(Primitive); ok {
		w.out = append(w.out, p.Transformed(m))
	}
	for _, c := range n.Children() {
		if err := w.walk(c, m); err != nil {
			return err
		}
	}
	virtual, err := n.VirtualChildren()
	if err != nil {
		return err
	}
	for _, c := range virtual {
		if err := w.walk(c, m); err != nil {
			return err
		}
	}
	return nil
}

// BoundingBox returns the extent of everything below root in board
// coordinates. Models and groups have no extent.
func BoundingBox(root Node) (geom.BoundingBox, error) {
	prims, err := Flatten(root)
	if err != nil {
		return geom.BoundingBox{}, err
	}
	box := geom.NewBoundingBox()
	for _, p := range prims {
		box.IncludeBox(primitiveBBox(p))
	}
	return box, nil
}

func primitiveBBox(p Primitive) geom.BoundingBox {
	if b, ok := p.(boxed); ok {
		return b.BBox()
	}
	return geom.NewBoundingBox()
}

// Filter returns the primitives of type T
func Filter[T Primitive](prims []Primitive) []T {
	return lo.FilterMap(prims, func(p Primitive, _ int) (T, bool) {
		t, ok := p.(T)
		return t, ok
	})
}

// RenderTree describes the explicit tree below root, one node per line
func RenderTree(root Node) (string, error) {
	return renderTree(root, false, map[Node]bool{})
}

// CompleteRenderTree is RenderTree including virtual children
func CompleteRenderTree(root Node) (string, error) {
	return renderTree(root, true, map[Node]bool{})
}

func renderTree(n Node, virtual bool, seen map[Node]bool) (string, error) {
	if seen[n] {
		return "", &RecursionDetectedError{Path: []Kind{n.Kind()}}
	}
	seen[n] = true

	symbol := "*"
	if n.Parent() == nil {
		symbol = "+"
	}
	var sb strings.Builder
	sb.WriteString(symbol + " " + renderText(n))

	children := n.Children()
	if virtual {
		vc, err := n.VirtualChildren()
		if err != nil {
			return "", err
		}
		children = append(children[:len(children):len(children)], vc...)
	}
	for _, c := range children {
		sub, err := renderTree(c, virtual, seen)
		if err != nil {
			return "", err
		}
		for _, line := range strings.Split(sub, "\n") {
			sb.WriteString("\n  " + line)
		}
	}
	return sb.String(), nil
}

func renderText(n Node) string {
	if d, ok := n.(describer); ok {
		return d.Describe()
	}
	return string(n.Kind())
}
