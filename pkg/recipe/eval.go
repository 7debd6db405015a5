package recipe

import (
	"fmt"

	"github.com/OpenTraceLab/fpgen/pkg/geom"
)

// evaluator evaluates recipe values and remembers the first error, so a
// block of fields can be read before checking once
type evaluator struct {
	sc  *Scope
	err error
}

func (e *evaluator) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *evaluator) num(n Num) float64 {
	if e.err != nil {
		return 0
	}
	v, err := n.Eval(e.sc)
	if err != nil {
		e.fail(err)
	}
	return v
}

// opt returns def for a missing value
func (e *evaluator) opt(n *Num, def float64) float64 {
	if n == nil {
		return def
	}
	return e.num(*n)
}

// ptr returns nil for a missing value
func (e *evaluator) ptr(n *Num) *float64 {
	if n == nil {
		return nil
	}
	v := e.num(*n)
	return &v
}

func (e *evaluator) vec(v Vec) geom.Vector2D {
	if e.err != nil {
		return geom.Vector2D{}
	}
	p, err := v.Eval(e.sc)
	if err != nil {
		e.fail(err)
	}
	return p
}

// need evaluates a required point, naming the field when it is missing
func (e *evaluator) need(v *Vec, field string) geom.Vector2D {
	if v == nil {
		e.fail(fmt.Errorf("missing %s", field))
		return geom.Vector2D{}
	}
	return e.vec(*v)
}

func (e *evaluator) vecs(vs []Vec) []geom.Vector2D {
	out := make([]geom.Vector2D, len(vs))
	for i, v := range vs {
		out[i] = e.vec(v)
	}
	return out
}

func (e *evaluator) triple(ns []Num, def [3]float64) [3]float64 {
	if ns == nil {
		return def
	}
	if len(ns) != 3 {
		e.fail(fmt.Errorf("expected 3 values, got %d", len(ns)))
		return def
	}
	return [3]float64{e.num(ns[0]), e.num(ns[1]), e.num(ns[2])}
}

func (e *evaluator) text(s string) string {
	if e.err != nil {
		return s
	}
	out, err := e.sc.Expand(s)
	if err != nil {
		e.fail(err)
	}
	return out
}
