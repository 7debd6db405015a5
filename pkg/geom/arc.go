package geom

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Arc is a circular segment in canonical form: the end point is the start
// point rotated by Angle degrees around Center. Angle lies in (-360, 360].
type Arc struct {
	Center Vector2D
	Start  Vector2D
	Angle  float64
}

// ArcParams collects the optional inputs an arc can be built from. Supported
// combinations are center+start+angle, center+mid+angle, center+end+angle,
// center+start+end (with LongWay) and start+mid+end.
type ArcParams struct {
	Center  *Vector2D
	Start   *Vector2D
	Mid     *Vector2D
	End     *Vector2D
	Angle   *float64
	LongWay bool // Pick the longer of the two arcs between start and end
}

// NewArc builds an arc from whichever parameterization p carries
func NewArc(p ArcParams) (Arc, error) {
	switch {
	case p.Center != nil && p.Angle != nil:
		switch {
		case p.Start != nil:
			return NewArcAngle(*p.Center, *p.Start, *p.Angle), nil
		case p.Mid != nil:
			return NewArcAngleMid(*p.Center, *p.Mid, *p.Angle), nil
		case p.End != nil:
			return NewArcAngleEnd(*p.Center, *p.End, *p.Angle), nil
		}
		return Arc{}, fmt.Errorf("arc with center and angle needs a start, mid or end point: %w", ErrAmbiguousArc)
	case p.Center != nil:
		if p.Start != nil && p.End != nil {
			return NewArcEnds(*p.Center, *p.Start, *p.End, p.LongWay)
		}
		return Arc{}, ErrAmbiguousArc
	case p.Start != nil && p.Mid != nil && p.End != nil:
		return NewArcThreePoint(*p.Start, *p.Mid, *p.End)
	}
	return Arc{}, fmt.Errorf("arc needs a center or three points: %w", ErrAmbiguousArc)
}

// NewArcAngle returns the arc starting at start and sweeping angle degrees
func NewArcAngle(center, start Vector2D, angle float64) Arc {
	return Arc{Center: center, Start: start, Angle: normalizeSweep(angle)}
}

// NewArcAngleMid returns the arc of the given sweep whose midpoint is mid
func NewArcAngleMid(center, mid Vector2D, angle float64) Arc {
	angle = normalizeSweep(angle)
	return Arc{Center: center, Start: mid.Rotate(-angle/2, center), Angle: angle}
}

// NewArcAngleEnd returns the arc of the given sweep ending at end
func NewArcAngleEnd(center, end Vector2D, angle float64) Arc {
	angle = normalizeSweep(angle)
	return Arc{Center: center, Start: end.Rotate(-angle, center), Angle: angle}
}

// NewArcEnds returns the arc from start to end around center. The shorter
// arc is chosen unless longWay is set. A half circle sweeps -180 degrees,
// or +180 degrees when longWay is set.
func NewArcEnds(center, start, end Vector2D, longWay bool) (Arc, error) {
	rs, as := start.ToPolar(center)
	re, ae := end.ToPolar(center)
	if math.Abs(rs-re) > TolMM {
		return Arc{}, &ToleranceError{What: "distance of arc end point from center", Expected: rs, Actual: re, Tol: TolMM}
	}
	angle := normalizeSweep(ae - as)
	if longWay {
		if math.Abs(angle) < 180 {
			angle = -math.Copysign(360-math.Abs(angle), angle)
		}
		if angle == -180 {
			angle = 180
		}
	} else {
		if math.Abs(angle) > 180 {
			angle = -math.Copysign(math.Abs(angle)-360, angle)
		}
		if angle == 180 {
			angle = -180
		}
	}
	return Arc{Center: center, Start: start, Angle: angle}, nil
}

// NewArcThreePoint returns the arc that starts at start, passes through mid
// and ends at end. Collinear points yield ErrCollinearArc. When start and
// end coincide the result is a full circle with mid diametrically opposite.
func NewArcThreePoint(start, mid, end Vector2D) (Arc, error) {
	if start.IsClose(end, TolMM) {
		if start.IsClose(mid, TolMM) {
			return Arc{}, fmt.Errorf("three-point arc through a single point: %w", ErrCollinearArc)
		}
		return Arc{Center: start.Lerp(mid, 0.5), Start: start, Angle: 360}, nil
	}
	chord := end.Sub(start)
	if math.Abs(chord.Cross(mid.Sub(start))) <= TolMM*chord.Norm() {
		return Arc{}, fmt.Errorf("start %v, mid %v, end %v: %w", start, mid, end, ErrCollinearArc)
	}

	// Circumcenter from the two perpendicular bisector equations
	a := mat.NewDense(2, 2, []float64{
		2 * (mid.X - start.X), 2 * (mid.Y - start.Y),
		2 * (end.X - mid.X), 2 * (end.Y - mid.Y),
	})
	b := mat.NewVecDense(2, []float64{
		mid.X*mid.X - start.X*start.X + mid.Y*mid.Y - start.Y*start.Y,
		end.X*end.X - mid.X*mid.X + end.Y*end.Y - mid.Y*mid.Y,
	})
	var c mat.VecDense
	if err := c.SolveVec(a, b); err != nil {
		return Arc{}, fmt.Errorf("failed to solve for arc center: %v: %w", err, ErrCollinearArc)
	}
	center := Vector2D{X: c.AtVec(0), Y: c.AtVec(1)}

	_, as := start.ToPolar(center)
	_, am := mid.ToPolar(center)
	_, ae := end.ToPolar(center)
	toEnd := mod360(ae - as)
	toMid := mod360(am - as)
	angle := toEnd
	if toMid > toEnd {
		angle = toEnd - 360
	}
	return Arc{Center: center, Start: start, Angle: angle}, nil
}

// MustArc panics when NewArc fails. Intended for literal fixtures.
func MustArc(a Arc, err error) Arc {
	if err != nil {
		panic(err)
	}
	return a
}

// normalizeSweep maps an angle into (-360, 360]
func normalizeSweep(angle float64) float64 {
	angle = math.Mod(angle, 720)
	if angle < 0 {
		angle += 720
	}
	if angle > 360 {
		angle -= 720
	}
	return angle
}

// mod360 maps an angle into [0, 360)
func mod360(angle float64) float64 {
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	if angle >= 360 {
		angle -= 360
	}
	return angle
}

// Radius returns the distance from the center to the start point
func (a Arc) Radius() float64 {
	return a.Start.Distance(a.Center)
}

func (a Arc) StartPoint() Vector2D { return a.Start }

// EndPoint returns the start point rotated by the sweep
func (a Arc) EndPoint() Vector2D {
	return a.Start.Rotate(a.Angle, a.Center)
}

// MidPoint returns the point halfway along the arc
func (a Arc) MidPoint() Vector2D {
	return a.Start.Rotate(a.Angle/2, a.Center)
}

// StartAngle returns the direction of the start point seen from the center
func (a Arc) StartAngle() float64 {
	return a.Start.Sub(a.Center).Angle()
}

// EndAngle returns StartAngle + Angle
func (a Arc) EndAngle() float64 {
	return a.StartAngle() + a.Angle
}

// Length returns the length of the arc
func (a Arc) Length() float64 {
	return math.Abs(radians(a.Angle)) * a.Radius()
}

// Direction returns +1 for a positive sweep and -1 for a negative one
func (a Arc) Direction() int {
	if a.Angle < 0 {
		return -1
	}
	return 1
}

// Reversed returns the arc traversed from end to start
func (a Arc) Reversed() Atom {
	return Arc{Center: a.Center, Start: a.EndPoint(), Angle: -a.Angle}
}

// Circle returns the circle the arc lies on
func (a Arc) Circle() Circle {
	return Circle{Center: a.Center, Radius: a.Radius()}
}

// Translated returns the arc moved by v
func (a Arc) Translated(v Vector2D) Arc {
	return Arc{Center: a.Center.Add(v), Start: a.Start.Add(v), Angle: a.Angle}
}

// Rotated returns the arc rotated by angle degrees around origin
func (a Arc) Rotated(angle float64, origin Vector2D) Arc {
	return Arc{Center: a.Center.Rotate(angle, origin), Start: a.Start.Rotate(angle, origin), Angle: a.Angle}
}

func (a Arc) moved(m Motion) Arc {
	return Arc{Center: m.Apply(a.Center), Start: m.Apply(a.Start), Angle: a.Angle}
}

func (a Arc) Transformed(m Motion) Shape { return a.moved(m) }

func (a Arc) Atoms() []Atom { return []Atom{a} }

// BBox includes the end points and every cardinal extreme the arc passes
func (a Arc) BBox() BoundingBox {
	bb := BoundingBoxOf(a.Start, a.EndPoint())
	r := a.Radius()
	for _, d := range []Vector2D{{X: r}, {X: -r}, {Y: r}, {Y: -r}} {
		p := a.Center.Add(d)
		if a.IsPointOnSelf(p, TolMM) {
			bb.Include(p)
		}
	}
	return bb
}

// RelativeAngle returns the angle from the start point to p, measured in
// the direction of the arc. The result has the sign of the sweep and a
// magnitude in [0, 360).
func (a Arc) RelativeAngle(p Vector2D) float64 {
	rel := p.Sub(a.Center).Angle() - a.StartAngle()
	if a.Angle < 0 {
		return -mod360(-rel)
	}
	return mod360(rel)
}

// IsPointOnSelf reports whether p lies on the arc within tol
func (a Arc) IsPointOnSelf(p Vector2D, tol float64) bool {
	return a.isPointOnArc(p, false, tol)
}

func (a Arc) isPointOnArc(p Vector2D, excludeEnds bool, tol float64) bool {
	r := a.Radius()
	if math.Abs(p.Distance(a.Center)-r) > tol {
		return false
	}
	if r <= tol {
		return !excludeEnds
	}
	return a.isAngleOnArc(a.RelativeAngle(p), excludeEnds, TolDeg(tol, r))
}

// isAngleOnArc checks a relative angle as returned by RelativeAngle
func (a Arc) isAngleOnArc(rel float64, excludeEnds bool, tolD float64) bool {
	sweep := math.Abs(a.Angle)
	rel = math.Abs(rel)
	if rel > 360-tolD {
		rel -= 360
	}
	if excludeEnds {
		return rel > tolD && rel < sweep-tolD
	}
	return rel >= -tolD && rel <= sweep+tolD
}

// SplitAt cuts the arc at every given point that lies strictly inside it
// and returns the pieces in order from start to end
func (a Arc) SplitAt(points []Vector2D, tol float64) []Arc {
	r := a.Radius()
	if r <= tol {
		return []Arc{a}
	}
	tolD := TolDeg(tol, r)
	var rels []float64
	for _, p := range points {
		if !a.isPointOnArc(p, true, tol) {
			continue
		}
		rel := math.Abs(a.RelativeAngle(p))
		if rel > 360-tolD {
			continue
		}
		rels = append(rels, rel)
	}
	sort.Float64s(rels)

	var pieces []Arc
	sign := float64(a.Direction())
	prev := 0.0
	for _, rel := range rels {
		if rel-prev <= tolD {
			continue
		}
		pieces = append(pieces, Arc{
			Center: a.Center,
			Start:  a.Start.Rotate(sign*prev, a.Center),
			Angle:  sign * (rel - prev),
		})
		prev = rel
	}
	pieces = append(pieces, Arc{
		Center: a.Center,
		Start:  a.Start.Rotate(sign*prev, a.Center),
		Angle:  sign * (math.Abs(a.Angle) - prev),
	})
	return pieces
}

// IsEqual reports whether both arcs have the same center, start and sweep
func (a Arc) IsEqual(o Arc, tol float64) bool {
	return a.Center.IsClose(o.Center, tol) && a.Start.IsClose(o.Start, tol) &&
		math.Abs(a.Angle-o.Angle) <= tol
}
