package serializer

import (
	"cmp"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/node"
)

// ErrUnknownLayer is returned for layer names KiCad does not know
var ErrUnknownLayer = errors.New("unknown layer")

// Element priorities, lower values are written first
const (
	priorityShape = 100
	priorityText  = 200
	priorityPad   = 300
	priorityGroup = 600
	priorityModel = 1100
)

// Shape priorities within the same layer
const (
	shapeLine    = 0
	shapeRect    = 1
	shapeArc     = 2
	shapeCircle  = 3
	shapePolygon = 4
)

// keyDecimals is the quantum applied to coordinates before they are compared
const keyDecimals = 6

// Approximate layer order of the KiCad board file writer. Wildcards come
// first, copper layers are even numbers.
var layerPriorities = map[string]int{
	"*.Cu":      -1000,
	"F&B.Cu":    -999,
	"*.Adhes":   -998,
	"*.Paste":   -997,
	"*.SilkS":   -996,
	"*.Mask":    -995,
	"*.CrtYd":   -994,
	"*.Fab":     -993,
	"F.Cu":      0,
	"F.Mask":    1,
	"B.Cu":      2,
	"B.Mask":    3,
	"F.SilkS":   5,
	"B.SilkS":   7,
	"F.Adhes":   9,
	"B.Adhes":   11,
	"F.Paste":   13,
	"B.Paste":   15,
	"Dwgs.User": 17,
	"Cmts.User": 19,
	"Eco1.User": 21,
	"Eco2.User": 23,
	"Edge.Cuts": 25,
	"Margin":    27,
	"B.CrtYd":   29,
	"F.CrtYd":   31,
	"B.Fab":     33,
	"F.Fab":     35,
}

var (
	innerLayer = regexp.MustCompile(`^In(\d+)\.Cu$`)
	userLayer  = regexp.MustCompile(`^User\.(\d)$`)
	numberRun  = regexp.MustCompile(`\d+|[^\d]+`)
)

// LayerPriority returns the sort position of a layer name
func LayerPriority(layer string) (int, error) {
	if p, ok := layerPriorities[layer]; ok {
		return p, nil
	}
	if m := innerLayer.FindStringSubmatch(layer); m != nil {
		n, _ := strconv.Atoi(m[1])
		return (n + 1) * 2, nil
	}
	if m := userLayer.FindStringSubmatch(layer); m != nil {
		n, _ := strconv.Atoi(m[1])
		return 38 + n, nil
	}
	return 0, fmt.Errorf("%q: %w", layer, ErrUnknownLayer)
}

// SortLayers returns layers ordered by priority
func SortLayers(layers []string) ([]string, error) {
	type ranked struct {
		name string
		prio int
	}
	rs := make([]ranked, len(layers))
	for i, l := range layers {
		p, err := LayerPriority(l)
		if err != nil {
			return nil, err
		}
		rs[i] = ranked{l, p}
	}
	slices.SortStableFunc(rs, func(a, b ranked) int { return cmp.Compare(a.prio, b.prio) })
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.name
	}
	return out, nil
}

// key is a comparable sequence of numbers, strings and nested keys
type key []any

func compareKeys(a, b key) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareKeyItems(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

// Mixed types never meet at the same position in keys built here; the
// rank order only keeps the comparison total.
func compareKeyItems(a, b any) int {
	switch x := a.(type) {
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y)
		}
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(x, y)
		}
	case key:
		if y, ok := b.(key); ok {
			return compareKeys(x, y)
		}
	}
	return cmp.Compare(itemRank(a), itemRank(b))
}

func itemRank(v any) int {
	switch v.(type) {
	case float64:
		return 0
	case string:
		return 1
	}
	return 2
}

// quantize rounds to the comparison grid, mapping -0 to 0
func quantize(v float64) float64 {
	return scalar.RoundEven(v, keyDecimals) + 0
}

func point(p geom.Vector2D) []any {
	return []any{quantize(p.X), quantize(p.Y)}
}

func num(v int) float64 { return float64(v) }

// NaturalKey splits a pad number into digit and non-digit runs so that
// "A2" sorts before "A10" and numbers sort before letters
func NaturalKey(number string) key {
	runs := numberRun.FindAllString(number, -1)
	k := make(key, 0, len(runs))
	for _, r := range runs {
		if r[0] >= '0' && r[0] <= '9' {
			n, _ := strconv.ParseFloat(r, 64)
			k = append(k, key{1.0, n})
			continue
		}
		k = append(k, key{2.0, r})
	}
	return k
}

// CompareNatural orders pad numbers by NaturalKey
func CompareNatural(a, b string) int {
	return compareKeys(NaturalKey(a), NaturalKey(b))
}

var padShapeOrder = []node.PadShape{
	node.ShapeCircle, node.ShapeRect, node.ShapeOval,
	node.ShapeTrapezoid, node.ShapeRoundRect, node.ShapeCustom,
}

func padShapeIndex(s node.PadShape) float64 {
	for i, o := range padShapeOrder {
		if o == s {
			return num(i)
		}
	}
	return 1000
}

// sortKey returns the position of a primitive in the body of the file
func sortKey(p node.Primitive) (key, error) {
	lp := func(layer string) (float64, error) {
		v, err := LayerPriority(layer)
		return num(v), err
	}

	switch e := p.(type) {
	case *node.Text:
		l, err := lp(e.Layer)
		return key{num(priorityText), l}, err
	case *node.Property:
		l, err := lp(e.Layer)
		return key{num(priorityText), l}, err
	case *node.Line:
		l, err := lp(e.Layer)
		k := key{num(priorityShape), l, num(shapeLine)}
		k = append(k, point(e.Start)...)
		return append(k, point(e.End)...), err
	case *node.Arc:
		l, err := lp(e.Layer)
		start, end := arcPoints(e.Arc)
		k := key{num(priorityShape), l, num(shapeArc)}
		k = append(k, point(start)...)
		k = append(k, point(end)...)
		return append(k, point(e.Center)...), err
	case *node.Circle:
		l, err := lp(e.Layer)
		k := key{num(priorityShape), l, num(shapeCircle)}
		k = append(k, point(e.Center)...)
		return append(k, quantize(e.Radius)), err
	case *node.Rect:
		l, err := lp(e.Layer)
		k := key{num(priorityShape), l, num(shapeRect)}
		k = append(k, point(e.TopLeft())...)
		return append(k, point(e.BottomRight())...), err
	case *node.Polygon:
		l, err := lp(e.Layer)
		k := key{num(priorityShape), l, num(shapePolygon), num(len(e.Points))}
		for _, pt := range e.Points {
			k = append(k, key(point(pt)))
		}
		return k, err
	case *node.CompoundPolygon:
		l, err := lp(e.Layer)
		elems := e.PointsAndArcs()
		var pts key
		for _, pe := range elems {
			if pe.Arc == nil {
				pts = append(pts, point(pe.Point)...)
			}
		}
		return key{num(priorityShape), l, num(shapePolygon), num(len(elems)), pts}, err
	case *node.Pad:
		k := key{num(priorityPad), NaturalKey(e.Number)}
		k = append(k, point(e.At)...)
		k = append(k, point(e.Size)...)
		return append(k, padShapeIndex(e.Shape)), nil
	case *node.Group:
		k := key{num(priorityGroup)}
		if e.UUID != uuid.Nil {
			k = append(k, e.UUID.String())
		}
		if n := len(e.Members()); n > 0 {
			k = append(k, num(n))
		}
		return k, nil
	case *node.Model:
		return key{num(priorityModel)}, nil
	}
	return nil, fmt.Errorf("no sort key for %s", p.Kind())
}

// arcPoints returns start and end in the order KiCad normalises to, which
// swaps them for negative sweeps
func arcPoints(a geom.Arc) (start, end geom.Vector2D) {
	start, end = a.Start, a.EndPoint()
	if a.Angle < 0 {
		start, end = end, start
	}
	return start, end
}
