package sexp

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/sexp/kicadsexp"
)

// S-expression navigation helpers

// FindNode searches for a child list with the given key (first symbol).
// Example: FindNode(sexp, "at") finds (at 100 50) in a list
func FindNode(s kicadsexp.Sexp, key string) (kicadsexp.Sexp, bool) {
	for _, item := range SexpToSlice(s) {
		if item == nil || item.IsLeaf() {
			continue
		}
		if name, err := GetNodeName(item); err == nil && name == key {
			return item, true
		}
	}
	return nil, false
}

// FindAllNodes finds all child lists with the given key
func FindAllNodes(s kicadsexp.Sexp, key string) []kicadsexp.Sexp {
	var results []kicadsexp.Sexp
	for _, item := range SexpToSlice(s) {
		if item == nil || item.IsLeaf() {
			continue
		}
		if name, err := GetNodeName(item); err == nil && name == key {
			results = append(results, item)
		}
	}
	return results
}

// GetListItems returns all items in a list (excluding the first symbol/key)
// Example: GetListItems((layers "F.Cu" "B.Cu")) returns ["F.Cu", "B.Cu"]
func GetListItems(s kicadsexp.Sexp) []kicadsexp.Sexp {
	items := SexpToSlice(s)
	if len(items) <= 1 {
		return []kicadsexp.Sexp{}
	}
	return items[1:]
}

// SexpToSlice converts an s-expression list to a Go slice
func SexpToSlice(s kicadsexp.Sexp) []kicadsexp.Sexp {
	if s == nil || s.IsLeaf() {
		return nil
	}
	if l, ok := s.(*kicadsexp.List); ok {
		return l.Items()
	}

	var items []kicadsexp.Sexp
	for s != nil && !s.IsLeaf() && s.LeafCount() > 0 {
		items = append(items, s.Head())
		s = s.Tail()
	}
	return items
}

// Typed value extraction helpers

// GetString extracts the text of the atom at the given index in a list.
// Index 0 is the key, 1 is first value, etc. Symbols and quoted strings
// are both accepted.
func GetString(s kicadsexp.Sexp, index int) (string, error) {
	if s == nil || s.IsLeaf() {
		return "", fmt.Errorf("expected list, got leaf")
	}

	items := SexpToSlice(s)
	if index < 0 || index >= len(items) {
		return "", fmt.Errorf("index %d out of bounds (length %d)", index, len(items))
	}

	switch v := items[index].(type) {
	case kicadsexp.Symbol:
		return string(v), nil
	case kicadsexp.Quoted:
		return string(v), nil
	case kicadsexp.Number:
		return v.String(), nil
	}
	return "", fmt.Errorf("expected atom at index %d, got %T", index, items[index])
}

// GetFloat extracts a float64 value at the given index
func GetFloat(s kicadsexp.Sexp, index int) (float64, error) {
	if l, ok := s.(*kicadsexp.List); ok {
		if n, ok := l.Get(index).(kicadsexp.Number); ok {
			return float64(n), nil
		}
	}

	str, err := GetString(s, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse float %q: %w", str, err)
	}

	return val, nil
}

// GetInt extracts an int value at the given index
func GetInt(s kicadsexp.Sexp, index int) (int, error) {
	str, err := GetString(s, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("failed to parse int %q: %w", str, err)
	}

	return val, nil
}

// GetBool extracts a yes/no flag at the given index
func GetBool(s kicadsexp.Sexp, index int) (bool, error) {
	str, err := GetString(s, index)
	if err != nil {
		return false, err
	}
	switch str {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	}
	return false, fmt.Errorf("expected yes or no, got %q", str)
}

// GetStrings returns the text of every atom after the key
// Example: (layers "F.Cu" "F.Mask") returns ["F.Cu", "F.Mask"]
func GetStrings(s kicadsexp.Sexp) ([]string, error) {
	n := len(SexpToSlice(s))
	out := make([]string, 0, n)
	for i := 1; i < n; i++ {
		v, err := GetString(s, i)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Domain-specific extraction helpers

// GetXY extracts the coordinates of a (keyword X Y) node such as
// (start X Y), (end X Y) or (xy X Y)
func GetXY(s kicadsexp.Sexp) (geom.Vector2D, error) {
	if s == nil || s.IsLeaf() {
		return geom.Vector2D{}, fmt.Errorf("expected position list")
	}

	x, err := GetFloat(s, 1)
	if err != nil {
		return geom.Vector2D{}, fmt.Errorf("failed to parse X: %w", err)
	}

	y, err := GetFloat(s, 2)
	if err != nil {
		return geom.Vector2D{}, fmt.Errorf("failed to parse Y: %w", err)
	}

	return geom.Vec(x, y), nil
}

// GetChildXY finds the child node key and extracts its coordinates
func GetChildXY(s kicadsexp.Sexp, key string) (geom.Vector2D, error) {
	node, ok := FindNode(s, key)
	if !ok {
		return geom.Vector2D{}, fmt.Errorf("missing (%s ...) node", key)
	}
	return GetXY(node)
}

// GetPosition extracts a PositionAngle from an (at X Y [angle]) node
func GetPosition(s kicadsexp.Sexp) (PositionAngle, error) {
	key, err := GetNodeName(s)
	if err != nil {
		return PositionAngle{}, err
	}
	if key != "at" {
		return PositionAngle{}, fmt.Errorf("expected 'at', got %q", key)
	}

	xy, err := GetXY(s)
	if err != nil {
		return PositionAngle{}, err
	}

	result := PositionAngle{Vector2D: xy}
	if len(SexpToSlice(s)) > 3 {
		angle, err := GetFloat(s, 3)
		if err != nil {
			return PositionAngle{}, fmt.Errorf("failed to parse angle: %w", err)
		}
		result.Angle = angle
	}
	return result, nil
}

// GetXYZ extracts the triple from an (xyz X Y Z) node nested in s, as used
// by (offset (xyz ...)) in models
func GetXYZ(s kicadsexp.Sexp) ([3]float64, error) {
	var out [3]float64
	node, ok := FindNode(s, "xyz")
	if !ok {
		return out, fmt.Errorf("missing (xyz ...) node")
	}
	for i := range out {
		v, err := GetFloat(node, i+1)
		if err != nil {
			return out, fmt.Errorf("failed to parse xyz[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// GetStroke extracts stroke properties from (stroke ...) node
// Format: (stroke (width W) (type solid|dash|dot))
func GetStroke(s kicadsexp.Sexp) (Stroke, error) {
	stroke := Stroke{Type: "solid"}

	if s == nil || s.IsLeaf() {
		return stroke, fmt.Errorf("expected (stroke ...) list")
	}

	if widthNode, ok := FindNode(s, "width"); ok {
		width, err := GetFloat(widthNode, 1)
		if err != nil {
			return stroke, fmt.Errorf("failed to parse stroke width: %w", err)
		}
		stroke.Width = width
	}

	if typeNode, ok := FindNode(s, "type"); ok {
		if strokeType, err := GetString(typeNode, 1); err == nil {
			stroke.Type = strokeType
		}
	}

	return stroke, nil
}

// HasSymbol checks if a list contains a specific symbol
func HasSymbol(s kicadsexp.Sexp, symbol string) bool {
	for _, item := range SexpToSlice(s) {
		if sym, ok := item.(kicadsexp.Symbol); ok && string(sym) == symbol {
			return true
		}
	}
	return false
}

// GetNodeName returns the first symbol of a list (the node type/name)
func GetNodeName(s kicadsexp.Sexp) (string, error) {
	if s == nil {
		return "", fmt.Errorf("expected node, got nil")
	}
	if s.IsLeaf() {
		if sym, ok := s.(kicadsexp.Symbol); ok {
			return string(sym), nil
		}
		return "", fmt.Errorf("expected symbol leaf")
	}

	if sym, ok := s.Head().(kicadsexp.Symbol); ok {
		return string(sym), nil
	}

	return "", fmt.Errorf("expected symbol at head of list")
}

// GetEffects extracts text effects from an (effects ...) node
func GetEffects(s kicadsexp.Sexp) (Effects, error) {
	effects := Effects{}

	if s == nil || s.IsLeaf() {
		return effects, fmt.Errorf("expected (effects ...) list")
	}

	if fontNode, ok := FindNode(s, "font"); ok {
		font, err := GetFont(fontNode)
		if err != nil {
			return effects, err
		}
		effects.Font = font
	}

	if justifyNode, ok := FindNode(s, "justify"); ok {
		effects.Justify = GetJustify(justifyNode)
	} else {
		effects.Justify = Justify{Horizontal: "center", Vertical: "center"}
	}

	return effects, nil
}

// GetFont extracts font properties from a (font ...) node
func GetFont(s kicadsexp.Sexp) (Font, error) {
	font := Font{}

	if sizeNode, ok := FindNode(s, "size"); ok {
		size, err := GetXY(sizeNode)
		if err != nil {
			return font, fmt.Errorf("failed to parse font size: %w", err)
		}
		font.Size = size
	}

	if thicknessNode, ok := FindNode(s, "thickness"); ok {
		t, err := GetFloat(thicknessNode, 1)
		if err != nil {
			return font, fmt.Errorf("failed to parse font thickness: %w", err)
		}
		font.Thickness = t
	}

	font.Bold = HasSymbol(s, "bold")
	font.Italic = HasSymbol(s, "italic")

	if faceNode, ok := FindNode(s, "face"); ok {
		font.Face, _ = GetString(faceNode, 1)
	}

	return font, nil
}

// GetJustify extracts justification from a (justify ...) node
func GetJustify(s kicadsexp.Sexp) Justify {
	justify := Justify{
		Horizontal: "center",
		Vertical:   "center",
	}

	for _, item := range GetListItems(s) {
		sym, ok := item.(kicadsexp.Symbol)
		if !ok {
			continue
		}
		switch string(sym) {
		case "left", "right":
			justify.Horizontal = string(sym)
		case "top", "bottom":
			justify.Vertical = string(sym)
		case "mirror":
			justify.Mirror = true
		}
	}

	return justify
}

// GetProperty extracts a property from a (property ...) node
// Format: (property "key" "value" (at X Y angle) (layer "L") [(hide yes)] (effects ...))
func GetProperty(s kicadsexp.Sexp) (Property, error) {
	prop := Property{}

	key, err := GetString(s, 1)
	if err != nil {
		return prop, fmt.Errorf("failed to parse property key: %w", err)
	}
	prop.Key = key

	value, err := GetString(s, 2)
	if err != nil {
		return prop, fmt.Errorf("failed to parse value of property %q: %w", key, err)
	}
	prop.Value = value

	if atNode, ok := FindNode(s, "at"); ok {
		if prop.Position, err = GetPosition(atNode); err != nil {
			return prop, fmt.Errorf("failed to parse position of property %q: %w", key, err)
		}
	}

	if layerNode, ok := FindNode(s, "layer"); ok {
		prop.Layer, _ = GetString(layerNode, 1)
	}

	if hideNode, ok := FindNode(s, "hide"); ok {
		prop.Hide, _ = GetBool(hideNode, 1)
	}

	if effectsNode, ok := FindNode(s, "effects"); ok {
		if prop.Effects, err = GetEffects(effectsNode); err != nil {
			return prop, fmt.Errorf("failed to parse effects of property %q: %w", key, err)
		}
	}

	return prop, nil
}
