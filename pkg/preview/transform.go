package preview

import (
	"fmt"
	"math"
	"strings"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
)

// Transform maps board millimetres to SVG pixels. Both are Y-down, so only
// translation and scale are needed.
type Transform struct {
	Origin geom.Vector2D // Board point drawn at pixel (0, 0)
	Scale  float64       // Pixels per mm
}

// Apply converts a board position to pixels
func (t Transform) Apply(p geom.Vector2D) geom.Vector2D {
	return p.Sub(t.Origin).Scale(t.Scale)
}

// ApplyInverse converts pixels back to a board position
func (t Transform) ApplyInverse(p geom.Vector2D) geom.Vector2D {
	if t.Scale == 0 {
		return t.Origin
	}
	return p.Scale(1 / t.Scale).Add(t.Origin)
}

// Length scales a board distance
func (t Transform) Length(mm float64) float64 {
	return mm * t.Scale
}

// pathData writes atoms as SVG path data. A jump between atoms starts a
// new subpath; closed subpaths end with Z.
func (t Transform) pathData(atoms []geom.Atom, closed bool) string {
	var b strings.Builder
	var cur geom.Vector2D
	for i, a := range atoms {
		start := a.StartPoint()
		if i == 0 || !cur.IsClose(start, geom.TolMM) {
			if i > 0 && closed {
				b.WriteString(" Z")
			}
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString("M " + t.point(start))
		}
		switch s := a.(type) {
		case geom.Line:
			b.WriteString(" L " + t.point(s.End))
		case geom.Arc:
			// SVG cannot draw a full circle as one arc
			if math.Abs(s.Angle) > 359.999 {
				half := geom.Arc{Center: s.Center, Start: s.Start, Angle: s.Angle / 2}
				b.WriteString(t.arc(half))
				half.Start = half.EndPoint()
				b.WriteString(t.arc(half))
			} else {
				b.WriteString(t.arc(s))
			}
		}
		cur = a.EndPoint()
	}
	if closed && len(atoms) > 0 {
		b.WriteString(" Z")
	}
	return b.String()
}

func (t Transform) arc(a geom.Arc) string {
	r := t.Length(a.Radius())
	large, sweep := 0, 0
	if math.Abs(a.Angle) > 180 {
		large = 1
	}
	if a.Angle > 0 {
		sweep = 1
	}
	return fmt.Sprintf(" A %s %s 0 %d %d %s", num(r), num(r), large, sweep, t.point(a.EndPoint()))
}

func (t Transform) point(p geom.Vector2D) string {
	q := t.Apply(p)
	return num(q.X) + " " + num(q.Y)
}

func num(v float64) string {
	s := strings.TrimRight(fmt.Sprintf("%.3f", v), "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
