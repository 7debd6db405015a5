package recipe

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
)

// Num is a number or an expression over recipe variables
type Num struct {
	Value float64
	Expr  *Expr
	src   string
}

// Literal returns a constant Num
func Literal(v float64) Num { return Num{Value: v} }

// MustNum parses an expression and panics on syntax errors; for literals in
// tests
func MustNum(s string) Num {
	n, err := parseNum(s)
	if err != nil {
		panic(err)
	}
	return n
}

func parseNum(s string) (Num, error) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return Num{Value: v, src: s}, nil
	}
	e, err := ParseExpr(s)
	if err != nil {
		return Num{}, err
	}
	return Num{Expr: e, src: s}, nil
}

func (n *Num) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number or expression", node.Line)
	}
	v, err := parseNum(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*n = v
	return nil
}

// Eval returns the value of n
func (n Num) Eval(r Resolver) (float64, error) {
	if n.Expr == nil {
		return n.Value, nil
	}
	v, err := n.Expr.Eval(r)
	if err != nil {
		return 0, fmt.Errorf("failed to evaluate %q: %w", n.src, err)
	}
	return v, nil
}

func (n Num) String() string {
	if n.src != "" {
		return n.src
	}
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// Vec is a coordinate pair written as [x, y]. A single value sets both
// coordinates, which suits square sizes and round drills.
type Vec [2]Num

func (v *Vec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var n Num
		if err := n.UnmarshalYAML(node); err != nil {
			return err
		}
		*v = Vec{n, n}
		return nil
	case yaml.SequenceNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: expected [x, y], got %d values", node.Line, len(node.Content))
		}
		for i, c := range node.Content {
			if err := v[i].UnmarshalYAML(c); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("line %d: expected [x, y]", node.Line)
}

// Eval returns the point described by v
func (v Vec) Eval(r Resolver) (geom.Vector2D, error) {
	x, err := v[0].Eval(r)
	if err != nil {
		return geom.Vector2D{}, err
	}
	y, err := v[1].Eval(r)
	if err != nil {
		return geom.Vector2D{}, err
	}
	return geom.Vec(x, y), nil
}
