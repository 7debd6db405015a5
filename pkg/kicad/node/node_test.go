package node

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
)

func near(a, b geom.Vector2D) bool {
	return a.IsClose(b, 1e-6)
}

func mustContainer(t *testing.T, children ...Node) *Container {
	t.Helper()
	c, err := NewContainer(children...)
	if err != nil {
		t.Fatalf("NewContainer() unexpected error: %v", err)
	}
	return c
}

func TestAppendMultipleParents(t *testing.T) {
	l := NewLine(geom.Vec(0, 0), geom.Vec(1, 0), "F.Fab")
	first := mustContainer(t, l)
	second := mustContainer(t)

	err := second.Append(l)
	var mpe *MultipleParentsError
	if !errors.As(err, &mpe) {
		t.Fatalf("Append() error = %v, want MultipleParentsError", err)
	}
	if mpe.Child != KindLine || mpe.Parent != KindContainer {
		t.Errorf("MultipleParentsError = %+v, want Line owned by Container", mpe)
	}
	if l.Parent() != Node(first) {
		t.Errorf("Parent() changed after a rejected Append")
	}
	if len(second.Children()) != 0 {
		t.Errorf("rejected child was added")
	}
}

func TestExtendGivenTwice(t *testing.T) {
	l := NewLine(geom.Vec(0, 0), geom.Vec(1, 0), "F.Fab")
	other := NewLine(geom.Vec(0, 1), geom.Vec(1, 1), "F.Fab")
	c := mustContainer(t)

	err := c.Extend(other, l, l)
	var mpe *MultipleParentsError
	if !errors.As(err, &mpe) {
		t.Fatalf("Extend() error = %v, want MultipleParentsError", err)
	}
	if len(c.Children()) != 0 || other.Parent() != nil {
		t.Errorf("Extend() must not add any child when one is rejected")
	}
}

func TestAppendRecursion(t *testing.T) {
	outer := mustContainer(t)
	inner := mustContainer(t)
	if err := outer.Append(inner); err != nil {
		t.Fatalf("Append() unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		parent Node
		child  Node
		want   int
	}{
		{"self", outer, outer, 2},
		{"ancestor", inner, outer, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.parent.Append(tt.child)
			var rde *RecursionDetectedError
			if !errors.As(err, &rde) {
				t.Fatalf("Append() error = %v, want RecursionDetectedError", err)
			}
			if len(rde.Path) != tt.want {
				t.Errorf("Path = %v, want %d entries", rde.Path, tt.want)
			}
		})
	}
}

func TestFuncRecursion(t *testing.T) {
	f := NewFunc("loop", nil)
	c := mustContainer(t, NewTranslation(1, 0))
	if err := c.Children()[0].Append(f); err != nil {
		t.Fatalf("Append() unexpected error: %v", err)
	}
	f.Expand = func() ([]Node, error) { return []Node{c}, nil }

	_, err := Flatten(c)
	var rde *RecursionDetectedError
	if !errors.As(err, &rde) {
		t.Fatalf("Flatten() error = %v, want RecursionDetectedError", err)
	}
	if !strings.Contains(rde.Error(), "Func") {
		t.Errorf("Error() = %q, want the path through Func", rde.Error())
	}
}

func TestFuncForeignNode(t *testing.T) {
	l := NewLine(geom.Vec(0, 0), geom.Vec(1, 0), "F.Fab")
	mustContainer(t, l)
	f := NewFunc("steal", func() ([]Node, error) { return []Node{l}, nil })

	_, err := f.VirtualChildren()
	var mpe *MultipleParentsError
	if !errors.As(err, &mpe) {
		t.Errorf("VirtualChildren() error = %v, want MultipleParentsError", err)
	}
}

func TestRemove(t *testing.T) {
	l := NewLine(geom.Vec(0, 0), geom.Vec(1, 0), "F.Fab")
	c := mustContainer(t, l)
	if err := c.Remove(l); err != nil {
		t.Fatalf("Remove() unexpected error: %v", err)
	}
	if l.Parent() != nil || len(c.Children()) != 0 {
		t.Errorf("Remove() left the child attached")
	}
	if err := c.Remove(l); !errors.Is(err, ErrNotChild) {
		t.Errorf("Remove() of a detached node error = %v, want ErrNotChild", err)
	}

	r := NewRectLine(geom.Vec(0, 0), geom.Vec(1, 1), "F.SilkS")
	virtual, err := r.VirtualChildren()
	if err != nil {
		t.Fatalf("VirtualChildren() unexpected error: %v", err)
	}
	if err := r.Remove(virtual[0]); !errors.Is(err, ErrVirtualNode) {
		t.Errorf("Remove() of a virtual child error = %v, want ErrVirtualNode", err)
	}
}

func TestInsert(t *testing.T) {
	a := NewLine(geom.Vec(0, 0), geom.Vec(1, 0), "F.Fab")
	b := NewLine(geom.Vec(0, 1), geom.Vec(1, 1), "F.Fab")
	c := mustContainer(t, a, b)
	tr := NewTranslation(1, 2)

	if err := c.Insert(tr); err != nil {
		t.Fatalf("Insert() unexpected error: %v", err)
	}
	if got := c.Children(); len(got) != 1 || got[0] != Node(tr) {
		t.Fatalf("Children() = %v, want only the inserted node", got)
	}
	if got := tr.Children(); len(got) != 2 || got[0] != Node(a) || got[1] != Node(b) {
		t.Errorf("inserted node children = %v, want the former children in order", got)
	}
	if a.Parent() != Node(tr) {
		t.Errorf("Parent() = %v, want the inserted node", a.Parent())
	}
	if Root(a) != Node(c) {
		t.Errorf("Root() = %v, want the container", Root(a))
	}
}

func TestRealPosition(t *testing.T) {
	tr := NewTranslation(1, 2)
	rot := NewRotation(90, geom.Vec(0, 0))
	l := NewLine(geom.Vec(0, 0), geom.Vec(1, 0), "F.Fab")
	if err := rot.Append(l); err != nil {
		t.Fatalf("Append() unexpected error: %v", err)
	}
	if err := tr.Append(rot); err != nil {
		t.Fatalf("Append() unexpected error: %v", err)
	}

	p, r := l.RealPosition(geom.Vec(1, 0), 0)
	if !near(p, geom.Vec(1, 3)) {
		t.Errorf("RealPosition() point = %v, want (1, 3)", p)
	}
	if r != 90 {
		t.Errorf("RealPosition() rotation = %g, want 90", r)
	}
}

func TestFlattenTransforms(t *testing.T) {
	l := NewLine(geom.Vec(1, 0), geom.Vec(2, 0), "F.Fab")
	pad, err := NewPad(PadSpec{Number: "1", Type: PadSMT, Shape: ShapeRect, At: geom.Vec(1, 0), Size: geom.Vec(1, 0.5), Layers: LayersSMT})
	if err != nil {
		t.Fatalf("NewPad() unexpected error: %v", err)
	}
	rot := NewRotation(90, geom.Vec(0, 0))
	if err := rot.Extend(l, pad); err != nil {
		t.Fatalf("Extend() unexpected error: %v", err)
	}
	tr := NewTranslation(10, 0)
	if err := tr.Append(rot); err != nil {
		t.Fatalf("Append() unexpected error: %v", err)
	}

	prims, err := Flatten(tr)
	if err != nil {
		t.Fatalf("Flatten() unexpected error: %v", err)
	}
	lines := Filter[*Line](prims)
	pads := Filter[*Pad](prims)
	if len(lines) != 1 || len(pads) != 1 {
		t.Fatalf("Flatten() = %d lines, %d pads, want 1 and 1", len(lines), len(pads))
	}
	if !near(lines[0].Start, geom.Vec(10, 1)) || !near(lines[0].End, geom.Vec(10, 2)) {
		t.Errorf("line = %v -> %v, want (10, 1) -> (10, 2)", lines[0].Start, lines[0].End)
	}
	if !near(pads[0].At, geom.Vec(10, 1)) || pads[0].Rotation != -90 {
		t.Errorf("pad at %v rotation %g, want (10, 1) rotation -90", pads[0].At, pads[0].Rotation)
	}
	if l.Start != geom.Vec(1, 0) || pad.At != geom.Vec(1, 0) {
		t.Errorf("Flatten() modified the tree")
	}
}

func TestFlattenIdempotent(t *testing.T) {
	r, err := NewRoundRect(geom.Vec(0, 0), geom.Vec(4, 2), 0.5, "F.Fab")
	if err != nil {
		t.Fatalf("NewRoundRect() unexpected error: %v", err)
	}
	c := mustContainer(t, r)
	first, err := Flatten(c)
	if err != nil {
		t.Fatalf("Flatten() unexpected error: %v", err)
	}
	second, err := Flatten(c)
	if err != nil {
		t.Fatalf("Flatten() unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("Flatten() returned %d then %d primitives", len(first), len(second))
	}
	for i := range first {
		if a, b := first[i].(interface{ Describe() string }), second[i].(interface{ Describe() string }); a.Describe() != b.Describe() {
			t.Errorf("primitive %d = %s, then %s", i, a.Describe(), b.Describe())
		}
	}

	r.Radius = 0
	after, err := Flatten(c)
	if err != nil {
		t.Fatalf("Flatten() unexpected error: %v", err)
	}
	if len(Filter[*Rect](after)) != 1 {
		t.Errorf("expansion does not follow the changed radius: %d primitives", len(after))
	}
}

func TestBoundingBox(t *testing.T) {
	c := mustContainer(t,
		NewLine(geom.Vec(-1, 0), geom.Vec(2, 0), "F.Fab"),
		NewCircle(geom.Vec(0, 0), 1.5, "F.Fab"),
		NewModel("part.wrl"),
	)
	box, err := BoundingBox(c)
	if err != nil {
		t.Fatalf("BoundingBox() unexpected error: %v", err)
	}
	if !near(box.Min, geom.Vec(-1.5, -1.5)) || !near(box.Max, geom.Vec(2, 1.5)) {
		t.Errorf("BoundingBox() = %v - %v, want (-1.5, -1.5) - (2, 1.5)", box.Min, box.Max)
	}
}

func TestRenderTree(t *testing.T) {
	l := NewLine(geom.Vec(0, 0), geom.Vec(1, 0), "F.Fab")
	r := NewRectLine(geom.Vec(0, 0), geom.Vec(1, 1), "F.SilkS")
	tr := NewTranslation(1, 2)
	if err := tr.Append(l); err != nil {
		t.Fatalf("Append() unexpected error: %v", err)
	}
	c := mustContainer(t, tr, r)

	got, err := RenderTree(c)
	if err != nil {
		t.Fatalf("RenderTree() unexpected error: %v", err)
	}
	want := strings.Join([]string{
		"+ Container",
		"  * Translation [x: 1, y: 2]",
		"    * " + l.Describe(),
		"  * " + r.Describe(),
	}, "\n")
	if got != want {
		t.Errorf("RenderTree() =\n%s\nwant\n%s", got, want)
	}

	complete, err := CompleteRenderTree(c)
	if err != nil {
		t.Fatalf("CompleteRenderTree() unexpected error: %v", err)
	}
	if n := strings.Count(complete, "* Line"); n != 5 {
		t.Errorf("CompleteRenderTree() lists %d lines, want 5:\n%s", n, complete)
	}
}

func TestRectLine(t *testing.T) {
	tests := []struct {
		name      string
		offset    float64
		fill      bool
		wantLines int
		wantPolys int
		wantMin   geom.Vector2D
	}{
		{"outline", 0, false, 4, 0, geom.Vec(-2, -1)},
		{"offset", 0.5, false, 4, 0, geom.Vec(-2.5, -1.5)},
		{"filled", 0, true, 0, 1, geom.Vec(-2, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRectLine(geom.Vec(2, 1), geom.Vec(-2, -1), "F.Fab")
			r.Offset = tt.offset
			r.Fill = tt.fill
			prims, err := Flatten(r)
			if err != nil {
				t.Fatalf("Flatten() unexpected error: %v", err)
			}
			if got := len(Filter[*Line](prims)); got != tt.wantLines {
				t.Errorf("lines = %d, want %d", got, tt.wantLines)
			}
			if got := len(Filter[*Polygon](prims)); got != tt.wantPolys {
				t.Errorf("polygons = %d, want %d", got, tt.wantPolys)
			}
			box, _ := BoundingBox(r)
			if !near(box.Min, tt.wantMin) {
				t.Errorf("BoundingBox().Min = %v, want %v", box.Min, tt.wantMin)
			}
		})
	}
}

func TestPolygonLine(t *testing.T) {
	open := NewPolygonLine([]geom.Vector2D{geom.Vec(0, 0), geom.Vec(1, 0), geom.Vec(1, 1)}, "F.Fab")
	closed := NewPolygonLine([]geom.Vector2D{geom.Vec(0, 0), geom.Vec(1, 0), geom.Vec(1, 1), geom.Vec(0, 0)}, "F.Fab")

	tests := []struct {
		name string
		p    *PolygonLine
		want int
	}{
		{"open", open, 2},
		{"closed", closed, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vc, err := tt.p.VirtualChildren()
			if err != nil {
				t.Fatalf("VirtualChildren() unexpected error: %v", err)
			}
			if len(vc) != tt.want {
				t.Errorf("VirtualChildren() = %d lines, want %d", len(vc), tt.want)
			}
		})
	}
}

func TestRoundRect(t *testing.T) {
	if _, err := NewRoundRect(geom.Vec(0, 0), geom.Vec(1, 1), -1, "F.Fab"); !errors.Is(err, geom.ErrInvalidShape) {
		t.Errorf("NewRoundRect() negative radius error = %v, want ErrInvalidShape", err)
	}

	r, err := NewRoundRect(geom.Vec(0, 0), geom.Vec(4, 2), 0.5, "F.Fab")
	if err != nil {
		t.Fatalf("NewRoundRect() unexpected error: %v", err)
	}
	prims, err := Flatten(r)
	if err != nil {
		t.Fatalf("Flatten() unexpected error: %v", err)
	}
	lines, arcs := Filter[*Line](prims), Filter[*Arc](prims)
	if len(lines) != 4 || len(arcs) != 4 {
		t.Fatalf("Flatten() = %d lines, %d arcs, want 4 and 4", len(lines), len(arcs))
	}
	for _, a := range arcs {
		if math.Abs(a.Radius()-0.5) > 1e-9 {
			t.Errorf("arc radius = %g, want 0.5", a.Radius())
		}
	}
	box, _ := BoundingBox(r)
	if !near(box.Min, geom.Vec(-2, -1)) || !near(box.Max, geom.Vec(2, 1)) {
		t.Errorf("BoundingBox() = %v - %v, want (-2, -1) - (2, 1)", box.Min, box.Max)
	}
}

func TestChamferedRect(t *testing.T) {
	h, err := NewChamferSizeHandler(nil, nil, nil)
	if err != nil {
		t.Fatalf("NewChamferSizeHandler() unexpected error: %v", err)
	}

	tests := []struct {
		name       string
		corners    CornerSelection
		wantPoints int
		wantRects  int
	}{
		{"all corners", AllCorners, 8, 0},
		{"top left", CornerSelection{TopLeft: true}, 5, 0},
		{"none", CornerSelection{}, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChamferedRect(geom.Vec(0, 0), geom.Vec(2, 2), h, tt.corners, "F.Fab")
			prims, err := Flatten(c)
			if err != nil {
				t.Fatalf("Flatten() unexpected error: %v", err)
			}
			if got := len(Filter[*Rect](prims)); got != tt.wantRects {
				t.Errorf("rects = %d, want %d", got, tt.wantRects)
			}
			if tt.wantPoints == 0 {
				return
			}
			polys := Filter[*Polygon](prims)
			if len(polys) != 1 {
				t.Fatalf("polygons = %d, want 1", len(polys))
			}
			if got := len(polys[0].Points); got != tt.wantPoints {
				t.Errorf("points = %d, want %d", got, tt.wantPoints)
			}
			if tt.corners.TopLeft && !near(polys[0].Points[0], geom.Vec(-1, -0.5)) {
				t.Errorf("first point = %v, want (-1, -0.5)", polys[0].Points[0])
			}
		})
	}
}

func TestRectTransformed(t *testing.T) {
	r := NewRect(geom.Vec(0, 0), geom.Vec(2, 1), "F.Fab")

	if _, ok := r.Transformed(geom.Rotation(90, geom.Vec(0, 0))).(*Rect); !ok {
		t.Errorf("quarter turn must keep a native rect")
	}
	p, ok := r.Transformed(geom.Rotation(30, geom.Vec(0, 0))).(*Polygon)
	if !ok {
		t.Fatalf("30 degree rotation must produce a polygon")
	}
	if len(p.Points) != 4 {
		t.Errorf("polygon points = %d, want 4", len(p.Points))
	}
}
