package node

import (
	"fmt"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
)

// Container groups nodes without changing them
type Container struct {
	Base
}

// NewContainer returns a container holding children
func NewContainer(children ...Node) (*Container, error) {
	c := &Container{}
	bind(c)
	if err := c.Extend(children...); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) Kind() Kind { return KindContainer }

// Translation moves its subtree by Offset
type Translation struct {
	Base
	Offset geom.Vector2D
}

// NewTranslation returns a translation by (x, y)
func NewTranslation(x, y float64) *Translation {
	t := &Translation{Offset: geom.Vec(x, y)}
	bind(t)
	return t
}

func (t *Translation) Kind() Kind { return KindTranslation }

func (t *Translation) LocalMotion() geom.Motion { return geom.Translation(t.Offset) }

func (t *Translation) Describe() string {
	return fmt.Sprintf("Translation [x: %g, y: %g]", t.Offset.X, t.Offset.Y)
}

// Rotation rotates its subtree by Angle degrees around Origin
type Rotation struct {
	Base
	Angle  float64
	Origin geom.Vector2D
}

// NewRotation returns a rotation around origin
func NewRotation(angle float64, origin geom.Vector2D) *Rotation {
	r := &Rotation{Angle: angle, Origin: origin}
	bind(r)
	return r
}

func (r *Rotation) Kind() Kind { return KindRotation }

func (r *Rotation) LocalMotion() geom.Motion { return geom.Rotation(r.Angle, r.Origin) }

func (r *Rotation) Describe() string {
	return fmt.Sprintf("Rotation [angle: %g, origin: %v]", r.Angle, r.Origin)
}
