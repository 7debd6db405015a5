package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMotionThen(t *testing.T) {
	first := Rotation(90, Vec(1, 0))
	second := Translation(Vec(0, 5))
	m := first.Then(second)

	for _, p := range []Vector2D{Vec(0, 0), Vec(2, 3), Vec(-1, 4)} {
		want := second.Apply(first.Apply(p))
		got := m.Apply(p)
		assert.True(t, got.IsClose(want, 1e-9), "Then().Apply(%v) = %v, want %v", p, got, want)
	}
}

func TestTransformShapes(t *testing.T) {
	l := TranslateShape(NewLine(Vec(0, 0), Vec(1, 0)), Vec(1, 1)).(Line)
	assert.Equal(t, Vec(1, 1), l.Start)
	assert.Equal(t, Vec(2, 1), l.End)

	a := RotateShape(NewArcAngle(Vec(0, 0), Vec(1, 0), 90), 90, Vec(0, 0)).(Arc)
	assert.True(t, a.Start.IsClose(Vec(0, 1), 1e-9))
	assert.Equal(t, 90.0, a.Angle)

	c := TranslateShape(NewCircle(Vec(0, 0), 1), Vec(2, 0)).(Circle)
	assert.Equal(t, Vec(2, 0), c.Center)
}

func TestBoundingBox(t *testing.T) {
	bb := NewBoundingBox()
	assert.True(t, bb.IsEmpty())

	bb.Include(Vec(1, 2))
	bb.Include(Vec(-1, 5))
	assert.False(t, bb.IsEmpty())
	assert.Equal(t, Vec(-1, 2), bb.Min)
	assert.Equal(t, Vec(1, 5), bb.Max)
	assert.Equal(t, Vec(0, 3.5), bb.Center())
	assert.True(t, bb.Contains(Vec(0, 3)))
	assert.False(t, bb.Contains(Vec(0, 6)))

	other := BoundingBoxOf(Vec(0.5, 4), Vec(3, 8))
	assert.True(t, bb.Intersects(other))
	assert.False(t, bb.Intersects(other.Translated(Vec(10, 0))))

	inflated := bb.Inflated(1)
	assert.Equal(t, Vec(-2, 1), inflated.Min)
	assert.Equal(t, Vec(2, 6), inflated.Max)
}
