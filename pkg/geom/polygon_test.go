package geom

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(half float64) Polygon {
	return NewPolygon(Vec(-half, -half), Vec(half, -half), Vec(half, half), Vec(-half, half))
}

func TestNewPolygonDropsDuplicates(t *testing.T) {
	p := NewPolygon(Vec(0, 0), Vec(1, 0), Vec(1, 0), Vec(1, 1), Vec(0, 0))
	if len(p.Points) != 3 {
		t.Errorf("NewPolygon() has %d points, want 3: %v", len(p.Points), p.Points)
	}
}

func TestPolygonIsClockwise(t *testing.T) {
	tests := []struct {
		name string
		poly Polygon
		want bool
	}{
		{"square", square(1), true},
		{"reversed square", NewPolygon(Vec(-1, 1), Vec(1, 1), Vec(1, -1), Vec(-1, -1)), false},
		{"triangle", NewPolygon(Vec(0, 0), Vec(10, 0), Vec(0, 1)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.poly.IsClockwise(); got != tt.want {
				t.Errorf("IsClockwise() = %v, want %v", got, tt.want)
			}
			if got := SignedArea(tt.poly.Atoms()) > 0; got != tt.want {
				t.Errorf("SignedArea() > 0 = %v, want %v", got, tt.want)
			}
			if !tt.poly.MakeClockwise().IsClockwise() {
				t.Errorf("MakeClockwise() is not clockwise")
			}
		})
	}
}

func TestPolygonArea(t *testing.T) {
	assert.InDelta(t, 4, square(1).Area(), 1e-12)
	assert.InDelta(t, 5, NewPolygon(Vec(0, 0), Vec(10, 0), Vec(0, 1)).Area(), 1e-12)
}

func TestPolygonIsPointInside(t *testing.T) {
	// L-shaped outline
	p := NewPolygon(Vec(0, 0), Vec(2, 0), Vec(2, 1), Vec(1, 1), Vec(1, 2), Vec(0, 2))
	tests := []struct {
		name   string
		pt     Vector2D
		strict bool
		want   bool
	}{
		{"inside", Vec(0.5, 0.5), false, true},
		{"inside upper leg", Vec(0.5, 1.5), false, true},
		{"notch", Vec(1.5, 1.5), false, false},
		{"outside", Vec(3, 0.5), false, false},
		{"on edge", Vec(1, 0), false, true},
		{"on edge strict", Vec(1, 0), true, false},
		{"on vertex", Vec(1, 1), false, true},
		{"level with vertex", Vec(0.5, 1), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.IsPointInside(tt.pt, tt.strict, TolMM); got != tt.want {
				t.Errorf("IsPointInside(%v, %v) = %v, want %v", tt.pt, tt.strict, got, tt.want)
			}
		})
	}
}

func TestPolygonInflate(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		wantMin Vector2D
		wantMax Vector2D
		wantErr bool
	}{
		{"grow", 0.5, Vec(-1.5, -1.5), Vec(1.5, 1.5), false},
		{"shrink", -0.5, Vec(-0.5, -0.5), Vec(0.5, 0.5), false},
		{"unchanged", 0, Vec(-1, -1), Vec(1, 1), false},
		{"shrink too far", -1.5, Vector2D{}, Vector2D{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := square(1).Inflated(tt.amount)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidShape) {
					t.Errorf("Inflated() error = %v, want ErrInvalidShape", err)
				}
				return
			}
			require.NoError(t, err)
			bb := got.BBox()
			if !bb.Min.IsClose(tt.wantMin, 1e-9) || !bb.Max.IsClose(tt.wantMax, 1e-9) {
				t.Errorf("Inflated() bbox = %v..%v, want %v..%v", bb.Min, bb.Max, tt.wantMin, tt.wantMax)
			}
			assert.Len(t, got.(Polygon).Points, 4)
		})
	}
}

func TestPolygonInflateSharpCorners(t *testing.T) {
	tri := NewPolygon(Vec(0, 0), Vec(10, 0), Vec(0, 1))
	got, err := tri.Inflated(0.1)
	require.NoError(t, err)
	poly := got.(Polygon)

	// the right angle is kept, both sharper corners are cut
	assert.Len(t, poly.Points, 5)
	assert.True(t, poly.IsClockwise())
	for _, p := range tri.Points {
		assert.True(t, poly.IsPointInside(p, true, TolMM), "corner %v not inside inflated outline", p)
	}
	for _, p := range poly.Points {
		assert.False(t, tri.IsPointInside(p, false, TolMM), "inflated corner %v inside original", p)
	}
}

func TestPolygonSimplify(t *testing.T) {
	p := NewPolygon(Vec(0, 0), Vec(1, 0), Vec(2, 0), Vec(2, 2), Vec(0, 2))
	got, err := p.Simplify()
	require.NoError(t, err)
	assert.Len(t, got.Points, 4)
	assert.InDelta(t, 4, got.Area(), 1e-12)
}

func TestPolygonRoundToGrid(t *testing.T) {
	p := square(0.123)

	out := p.RoundToGrid(0.01, true)
	bb := out.BBox()
	assert.InDelta(t, -0.13, bb.Min.X, 1e-12)
	assert.InDelta(t, -0.13, bb.Min.Y, 1e-12)
	assert.InDelta(t, 0.13, bb.Max.X, 1e-12)
	assert.InDelta(t, 0.13, bb.Max.Y, 1e-12)

	near := p.RoundToGrid(0.01, false)
	for _, pt := range near.Points {
		assert.InDelta(t, 0.12, abs(pt.X), 1e-12)
		assert.InDelta(t, 0.12, abs(pt.Y), 1e-12)
	}
}

func TestPolygonMirrored(t *testing.T) {
	p := NewPolygon(Vec(0, 0), Vec(2, 0), Vec(2, 1))
	mx := p.MirroredX(1)
	assert.Equal(t, Vec(2, 0), mx.Points[0])
	assert.Equal(t, Vec(0, 1), mx.Points[2])
	my := p.MirroredY(0)
	assert.Equal(t, Vec(2, -1), my.Points[2])
	assert.NotEqual(t, p.IsClockwise(), mx.IsClockwise())
}

func TestPolygonTransformed(t *testing.T) {
	p := square(1).Transformed(Motion{Angle: 90, Offset: Vec(5, 0)}).(Polygon)
	assert.True(t, p.Points[0].IsClose(Vec(6, -1), 1e-9), "first point = %v", p.Points[0])
	assert.InDelta(t, 4, p.Area(), 1e-9)
}

func TestClipPolygons(t *testing.T) {
	a := square(1)
	b := square(1).Translated(Vec(1, 1))

	union := UnionPolygons(a, b)
	require.Len(t, union, 1)
	assert.InDelta(t, 7, union[0].Area(), 1e-9)

	inter := IntersectPolygons(a, b)
	require.Len(t, inter, 1)
	assert.InDelta(t, 1, inter[0].Area(), 1e-9)

	diff := DifferencePolygons(a, b)
	require.Len(t, diff, 1)
	assert.InDelta(t, 3, diff[0].Area(), 1e-9)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
