package modfile

import (
	"fmt"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/sexp"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/sexp/kicadsexp"
)

// parseStroke extracts the (stroke ...) child; footprints written before
// KiCad 7 use a bare (width w) instead
func parseStroke(node kicadsexp.Sexp) (sexp.Stroke, error) {
	if strokeNode, found := sexp.FindNode(node, "stroke"); found {
		return sexp.GetStroke(strokeNode)
	}
	stroke := sexp.Stroke{Type: "solid"}
	if widthNode, found := sexp.FindNode(node, "width"); found {
		width, err := sexp.GetFloat(widthNode, 1)
		if err != nil {
			return stroke, fmt.Errorf("failed to parse width: %w", err)
		}
		stroke.Width = width
	}
	return stroke, nil
}

// parseFill reads (fill yes|no); older files write (fill solid|none)
func parseFill(node kicadsexp.Sexp) bool {
	fillNode, found := sexp.FindNode(node, "fill")
	if !found {
		return false
	}
	v, _ := sexp.GetString(fillNode, 1)
	return v == "yes" || v == "solid"
}

// parseLine extracts an fp_line
// Expected format: (fp_line (start x y) (end x y) (stroke ...) (layer "L"))
func parseLine(node kicadsexp.Sexp) (Line, error) {
	line := Line{Layer: layerOf(node), UUID: uuidOf(node)}
	var err error
	if line.Start, err = sexp.GetChildXY(node, "start"); err != nil {
		return line, fmt.Errorf("failed to parse line start: %w", err)
	}
	if line.End, err = sexp.GetChildXY(node, "end"); err != nil {
		return line, fmt.Errorf("failed to parse line end: %w", err)
	}
	if line.Stroke, err = parseStroke(node); err != nil {
		return line, err
	}
	return line, nil
}

// parseArc extracts an fp_arc
// Expected format: (fp_arc (start x y) (mid x y) (end x y) (stroke ...) (layer "L"))
func parseArc(node kicadsexp.Sexp) (Arc, error) {
	arc := Arc{Layer: layerOf(node), UUID: uuidOf(node)}
	var err error
	if arc.Start, err = sexp.GetChildXY(node, "start"); err != nil {
		return arc, fmt.Errorf("failed to parse arc start: %w", err)
	}
	if arc.Mid, err = sexp.GetChildXY(node, "mid"); err != nil {
		return arc, fmt.Errorf("failed to parse arc mid: %w", err)
	}
	if arc.End, err = sexp.GetChildXY(node, "end"); err != nil {
		return arc, fmt.Errorf("failed to parse arc end: %w", err)
	}
	if arc.Stroke, err = parseStroke(node); err != nil {
		return arc, err
	}
	return arc, nil
}

// parseCircle extracts an fp_circle
// Expected format: (fp_circle (center x y) (end x y) (stroke ...) (fill yes) (layer "L"))
func parseCircle(node kicadsexp.Sexp) (Circle, error) {
	circle := Circle{Layer: layerOf(node), UUID: uuidOf(node), Fill: parseFill(node)}
	var err error
	if circle.Center, err = sexp.GetChildXY(node, "center"); err != nil {
		return circle, fmt.Errorf("failed to parse circle center: %w", err)
	}
	if circle.End, err = sexp.GetChildXY(node, "end"); err != nil {
		return circle, fmt.Errorf("failed to parse circle end: %w", err)
	}
	if circle.Stroke, err = parseStroke(node); err != nil {
		return circle, err
	}
	return circle, nil
}

// parseRect extracts an fp_rect
func parseRect(node kicadsexp.Sexp) (Rect, error) {
	rect := Rect{Layer: layerOf(node), UUID: uuidOf(node), Fill: parseFill(node)}
	var err error
	if rect.Start, err = sexp.GetChildXY(node, "start"); err != nil {
		return rect, fmt.Errorf("failed to parse rect start: %w", err)
	}
	if rect.End, err = sexp.GetChildXY(node, "end"); err != nil {
		return rect, fmt.Errorf("failed to parse rect end: %w", err)
	}
	if rect.Stroke, err = parseStroke(node); err != nil {
		return rect, err
	}
	return rect, nil
}

// parsePoly extracts an fp_poly
// Expected format: (fp_poly (pts (xy x y) (arc (start ..) (mid ..) (end ..)) ...) ...)
func parsePoly(node kicadsexp.Sexp) (Poly, error) {
	poly := Poly{Layer: layerOf(node), UUID: uuidOf(node), Fill: parseFill(node)}

	ptsNode, found := sexp.FindNode(node, "pts")
	if !found {
		return poly, fmt.Errorf("missing required 'pts' field")
	}
	for _, item := range sexp.GetListItems(ptsNode) {
		name, err := sexp.GetNodeName(item)
		if err != nil {
			continue
		}
		switch name {
		case "xy":
			p, err := sexp.GetXY(item)
			if err != nil {
				return poly, fmt.Errorf("failed to parse polygon point: %w", err)
			}
			poly.Points = append(poly.Points, p)
		case "arc":
			for _, key := range []string{"start", "mid", "end"} {
				p, err := sexp.GetChildXY(item, key)
				if err != nil {
					return poly, fmt.Errorf("failed to parse polygon arc: %w", err)
				}
				poly.Points = appendDistinct(poly.Points, p)
			}
		}
	}
	if len(poly.Points) < 2 {
		return poly, fmt.Errorf("polygon needs at least 2 points, got %d", len(poly.Points))
	}

	var err error
	if poly.Stroke, err = parseStroke(node); err != nil {
		return poly, err
	}
	return poly, nil
}

// appendDistinct drops a point equal to the last one, where an arc starts
// at the end of the previous segment
func appendDistinct(pts []geom.Vector2D, p geom.Vector2D) []geom.Vector2D {
	if n := len(pts); n > 0 && pts[n-1].IsClose(p, geom.TolMM) {
		return pts
	}
	return append(pts, p)
}
