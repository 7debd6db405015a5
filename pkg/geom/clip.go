package geom

import (
	cgeom "github.com/ctessum/geom"
)

// Boolean operations on line-only polygons. Outer rings and holes of the
// result are returned as separate polygons.

func toClipPolygon(p Polygon) cgeom.Polygon {
	path := make(cgeom.Path, len(p.Points))
	for i, pt := range p.Points {
		path[i] = cgeom.Point{X: pt.X, Y: pt.Y}
	}
	return cgeom.Polygon{path}
}

func fromClipPolygon(cp cgeom.Polygon) []Polygon {
	var out []Polygon
	for _, path := range cp {
		pts := make([]Vector2D, len(path))
		for i, pt := range path {
			pts[i] = Vector2D{X: pt.X, Y: pt.Y}
		}
		if p := NewPolygon(pts...); len(p.Points) >= 3 {
			out = append(out, p)
		}
	}
	return out
}

// UnionPolygons merges all polygons into as few outlines as possible
func UnionPolygons(polys ...Polygon) []Polygon {
	if len(polys) == 0 {
		return nil
	}
	acc := toClipPolygon(polys[0])
	for _, p := range polys[1:] {
		acc = acc.Union(toClipPolygon(p)).(cgeom.Polygon)
	}
	return fromClipPolygon(acc)
}

// DifferencePolygons removes every clip polygon from subject
func DifferencePolygons(subject Polygon, clips ...Polygon) []Polygon {
	acc := toClipPolygon(subject)
	for _, c := range clips {
		acc = acc.Difference(toClipPolygon(c)).(cgeom.Polygon)
	}
	return fromClipPolygon(acc)
}

// IntersectPolygons returns the area covered by both polygons
func IntersectPolygons(a, b Polygon) []Polygon {
	return fromClipPolygon(toClipPolygon(a).Intersection(toClipPolygon(b)).(cgeom.Polygon))
}
