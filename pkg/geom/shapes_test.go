package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertClosedLoop checks that every segment starts where the previous one ends
func assertClosedLoop(t *testing.T, atoms []Atom) {
	t.Helper()
	require.NotEmpty(t, atoms)
	for i, a := range atoms {
		next := atoms[(i+1)%len(atoms)]
		if !a.EndPoint().IsClose(next.StartPoint(), 1e-9) {
			t.Errorf("segment %d ends at %v, segment %d starts at %v", i, a.EndPoint(), (i+1)%len(atoms), next.StartPoint())
		}
	}
}

func TestRectangle(t *testing.T) {
	r := Rectangle{Center: Vec(1, 1), Size: Vec(4, 2)}
	assertClosedLoop(t, r.Atoms())
	assert.True(t, r.Polygon().IsClockwise())
	assert.InDelta(t, 8, r.Polygon().Area(), 1e-12)

	assert.True(t, r.IsPointInside(Vec(2.9, 1.9), true, TolMM))
	assert.False(t, r.IsPointInside(Vec(3, 1), true, TolMM))
	assert.True(t, r.IsPointInside(Vec(3, 1), false, TolMM))

	rot := Rectangle{Size: Vec(4, 2), Angle: 90}
	bb := rot.BBox()
	assert.InDelta(t, 2, bb.Width(), 1e-9)
	assert.InDelta(t, 4, bb.Height(), 1e-9)
	assert.True(t, rot.IsPointInside(Vec(0, 1.9), false, TolMM))
	assert.False(t, rot.IsPointInside(Vec(1.9, 0), false, TolMM))

	c := RectangleFromCorners(Vec(3, 4), Vec(1, 0))
	assert.Equal(t, Vec(2, 2), c.Center)
	assert.Equal(t, Vec(2, 4), c.Size)
}

func TestRectangleInflated(t *testing.T) {
	r := Rectangle{Size: Vec(2, 1)}
	got, err := r.Inflated(0.25)
	require.NoError(t, err)
	assert.Equal(t, Vec(2.5, 1.5), got.(Rectangle).Size)

	_, err = r.Inflated(-0.5)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestRoundRectangle(t *testing.T) {
	r := RoundRectangle{Size: Vec(4, 2), Radius: 0.5}
	out := r.Outline()
	require.Len(t, out.Segments, 8)
	assertClosedLoop(t, out.Segments)
	assert.True(t, out.IsClockwise())
	assert.InDelta(t, 8-(4-math.Pi)*0.25, out.Area(), 1e-9)

	assert.True(t, r.IsPointInside(Vec(1.8, 0.8), false, TolMM))
	assert.False(t, r.IsPointInside(Vec(1.95, 0.95), false, TolMM))
	assert.True(t, r.IsPointInside(Vec(0, 0), true, TolMM))

	bb := r.BBox()
	assert.InDelta(t, -2, bb.Min.X, 1e-9)
	assert.InDelta(t, 1, bb.Max.Y, 1e-9)

	sharp := RoundRectangle{Size: Vec(4, 2)}
	assert.Len(t, sharp.Outline().Segments, 4)
}

func TestRoundRectanglePointsAndArcs(t *testing.T) {
	path := RoundRectangle{Size: Vec(4, 2), Radius: 0.5}.Outline().PointsAndArcs()
	require.Len(t, path, 5)
	assert.Nil(t, path[0].Arc)
	assert.True(t, path[0].Point.IsClose(Vec(-1.5, -1), 1e-9))
	for _, e := range path[1:] {
		assert.NotNil(t, e.Arc)
	}
}

func TestTrapezoid(t *testing.T) {
	tests := []struct {
		name     string
		trap     Trapezoid
		wantSegs int
		wantArea float64
	}{
		{"rectangle", Trapezoid{Size: Vec(6, 2)}, 4, 12},
		{"narrow top", Trapezoid{Size: Vec(6, 2), SideAngle: -45}, 4, 8},
		{"narrow bottom", Trapezoid{Size: Vec(6, 2), SideAngle: 45}, 4, 8},
		{"rounded narrow top", Trapezoid{Size: Vec(6, 2), SideAngle: -45, Radius: 0.5}, 8, 0},
		{"rounded narrow bottom", Trapezoid{Size: Vec(6, 2), SideAngle: 45, Radius: 0.5}, 8, 0},
		{"rounded rectangle", Trapezoid{Size: Vec(6, 2), Radius: 0.5}, 8, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.trap.Outline()
			assert.Len(t, out.Segments, tt.wantSegs)
			assertClosedLoop(t, out.Segments)
			assert.True(t, out.IsClockwise(), "outline is not clockwise")
			if tt.wantArea > 0 {
				assert.InDelta(t, tt.wantArea, out.Area(), 1e-9)
			}
			bb := out.BBox()
			assert.InDelta(t, 2, bb.Height(), 1e-9)
			if tt.trap.Radius == 0 || tt.trap.SideAngle == 0 {
				assert.InDelta(t, 6, bb.Width(), 1e-9)
			}
		})
	}
}

func TestTrapezoidPolygon(t *testing.T) {
	p, ok := Trapezoid{Size: Vec(6, 2), SideAngle: -45}.Polygon()
	require.True(t, ok)
	assert.True(t, p.Points[0].IsClose(Vec(-1, -1), 1e-9))
	assert.True(t, p.Points[2].IsClose(Vec(3, 1), 1e-9))

	_, ok = Trapezoid{Size: Vec(6, 2), SideAngle: -45, Radius: 0.5}.Polygon()
	assert.False(t, ok)
}

func TestStadium(t *testing.T) {
	s := StadiumInRectangle(Rectangle{Center: Vec(1, 0), Size: Vec(4, 2)})
	assert.Equal(t, Vec(0, 0), s.Center1)
	assert.Equal(t, Vec(2, 0), s.Center2)
	assert.Equal(t, 1.0, s.Radius)

	out := s.Outline()
	require.Len(t, out.Segments, 4)
	assertClosedLoop(t, out.Segments)
	assert.True(t, out.IsClockwise())
	assert.InDelta(t, 4+math.Pi, out.Area(), 1e-9)

	assert.True(t, s.IsPointInside(Vec(-0.9, 0), true, TolMM))
	assert.False(t, s.IsPointInside(Vec(-0.9, 0.9), false, TolMM))
	assert.True(t, s.IsPointOnSelf(Vec(1, -1), TolMM))

	round := Stadium{Center1: Vec(1, 1), Center2: Vec(1, 1), Radius: 2}
	assert.Len(t, round.Outline().Segments, 1)
}

func TestCircle(t *testing.T) {
	c := NewCircle(Vec(1, 1), -2)
	assert.Equal(t, 2.0, c.Radius)
	assert.True(t, c.IsPointOnSelf(Vec(3, 1), TolMM))
	assert.True(t, c.IsPointInside(Vec(2, 2), true, TolMM))
	assert.False(t, c.IsPointInside(Vec(3, 1), true, TolMM))

	arc := c.Arc()
	assert.Equal(t, Vec(3, 1), arc.Start)
	assert.Equal(t, 360.0, arc.Angle)

	_, err := c.Inflated(-2)
	assert.ErrorIs(t, err, ErrInvalidShape)
	got, err := c.Inflated(0.5)
	require.NoError(t, err)
	assert.Equal(t, 2.5, got.(Circle).Radius)
}

func TestCross(t *testing.T) {
	c := Cross{Center: Vec(1, 1), Size: Vec(2, 4)}
	atoms := c.Atoms()
	require.Len(t, atoms, 2)
	assert.True(t, c.IsPointOnSelf(Vec(1, -1), TolMM))
	assert.True(t, c.IsPointOnSelf(Vec(0, 1), TolMM))
	assert.False(t, c.IsPointOnSelf(Vec(0, 0), TolMM))
}

func TestCompoundPolygon(t *testing.T) {
	c, err := NewCompoundPolygon(
		NewLine(Vec(0, 0), Vec(2, 0)),
		NewLine(Vec(2, 2), Vec(2, 0)), // given backwards
		NewArcAngle(Vec(1, 2), Vec(2, 2), 180),
	)
	require.NoError(t, err)
	require.Len(t, c.Segments, 4, "closing line is added")
	assertClosedLoop(t, c.Segments)
	assert.True(t, c.IsClockwise())
	assert.InDelta(t, 4+math.Pi/2, c.Area(), 1e-9)
	assert.True(t, c.HasArcs())
	_, ok := c.Polygon()
	assert.False(t, ok)

	_, err = NewCompoundPolygon(NewLine(Vec(0, 0), Vec(1, 0)), NewLine(Vec(5, 5), Vec(6, 5)))
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestCompoundInflate(t *testing.T) {
	c := CompoundFromShape(square(1))
	got, err := c.Inflated(0.5)
	require.NoError(t, err)
	out := got.(CompoundPolygon)

	// corners are rounded around the original vertices
	assert.Len(t, out.Segments, 8)
	assertClosedLoop(t, out.Segments)
	assert.InDelta(t, 9-(4-math.Pi)*0.25, out.Area(), 1e-9)

	shrunk, err := c.Inflated(-0.5)
	require.NoError(t, err)
	assert.InDelta(t, 1, shrunk.(CompoundPolygon).Area(), 1e-9)

	_, err = c.Inflated(-1.5)
	assert.ErrorIs(t, err, ErrInvalidShape)
}
