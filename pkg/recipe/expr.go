package recipe

import (
	"errors"
	"fmt"
	"math"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	// ErrUndefinedVariable is returned for identifiers without a definition
	ErrUndefinedVariable = errors.New("undefined variable")

	// ErrCyclicVariable is returned when a variable depends on itself
	ErrCyclicVariable = errors.New("cyclic variable definition")

	// ErrUnknownFunction is returned for calls of functions that do not exist
	ErrUnknownFunction = errors.New("unknown function")

	// ErrDivisionByZero is returned when an expression divides by zero
	ErrDivisionByZero = errors.New("division by zero")
)

// ExprLexer tokenizes parameter expressions such as "pitch * (n - 1) / 2"
var ExprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Number", Pattern: `(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][-+]?[0-9]+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Operator", Pattern: `[-+*/(),]`},
})

// Expr is a sum of terms
type Expr struct {
	Head *Term     `parser:"@@"`
	Tail []*OpTerm `parser:"@@*"`
}

// OpTerm is an added or subtracted term
type OpTerm struct {
	Op   string `parser:"@(\"+\" | \"-\")"`
	Term *Term  `parser:"@@"`
}

// Term is a product of factors
type Term struct {
	Head *Unary     `parser:"@@"`
	Tail []*OpUnary `parser:"@@*"`
}

// OpUnary is a multiplied or divided factor
type OpUnary struct {
	Op    string `parser:"@(\"*\" | \"/\")"`
	Unary *Unary `parser:"@@"`
}

// Unary is an optionally negated primary
type Unary struct {
	Neg     bool     `parser:"@\"-\"?"`
	Primary *Primary `parser:"@@"`
}

// Primary is a literal, a call, a variable or a parenthesized expression
type Primary struct {
	Number *float64 `parser:"  @Number"`
	Call   *Call    `parser:"| @@"`
	Ident  *string  `parser:"| @Ident"`
	Sub    *Expr    `parser:"| \"(\" @@ \")\""`
}

// Call is a function call such as max(a, b)
type Call struct {
	Func string  `parser:"@Ident \"(\""`
	Args []*Expr `parser:"( @@ ( \",\" @@ )* )? \")\""`
}

var exprParser = participle.MustBuild[Expr](
	participle.Lexer(ExprLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// ParseExpr parses a parameter expression
func ParseExpr(s string) (*Expr, error) {
	e, err := exprParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("parse error in %q: %w", s, err)
	}
	return e, nil
}

// Resolver looks up the value of a variable
type Resolver interface {
	Lookup(name string) (float64, error)
}

// Eval evaluates the expression against r
func (e *Expr) Eval(r Resolver) (float64, error) {
	v, err := e.Head.eval(r)
	if err != nil {
		return 0, err
	}
	for _, t := range e.Tail {
		rhs, err := t.Term.eval(r)
		if err != nil {
			return 0, err
		}
		if t.Op == "+" {
			v += rhs
		} else {
			v -= rhs
		}
	}
	return v, nil
}

func (t *Term) eval(r Resolver) (float64, error) {
	v, err := t.Head.eval(r)
	if err != nil {
		return 0, err
	}
	for _, f := range t.Tail {
		rhs, err := f.Unary.eval(r)
		if err != nil {
			return 0, err
		}
		if f.Op == "*" {
			v *= rhs
			continue
		}
		if rhs == 0 {
			return 0, ErrDivisionByZero
		}
		v /= rhs
	}
	return v, nil
}

func (u *Unary) eval(r Resolver) (float64, error) {
	v, err := u.Primary.eval(r)
	if u.Neg {
		v = -v
	}
	return v, err
}

func (p *Primary) eval(r Resolver) (float64, error) {
	switch {
	case p.Number != nil:
		return *p.Number, nil
	case p.Call != nil:
		return p.Call.eval(r)
	case p.Ident != nil:
		return r.Lookup(*p.Ident)
	case p.Sub != nil:
		return p.Sub.Eval(r)
	}
	return 0, fmt.Errorf("empty expression")
}

type function struct {
	minArgs, maxArgs int // maxArgs < 0 is variadic
	apply            func(args []float64) float64
}

var functions = map[string]function{
	"sqrt":  {1, 1, func(a []float64) float64 { return math.Sqrt(a[0]) }},
	"abs":   {1, 1, func(a []float64) float64 { return math.Abs(a[0]) }},
	"round": {1, 1, func(a []float64) float64 { return math.Round(a[0]) }},
	"min": {1, -1, func(a []float64) float64 {
		m := a[0]
		for _, v := range a[1:] {
			m = math.Min(m, v)
		}
		return m
	}},
	"max": {1, -1, func(a []float64) float64 {
		m := a[0]
		for _, v := range a[1:] {
			m = math.Max(m, v)
		}
		return m
	}},
}

func (c *Call) eval(r Resolver) (float64, error) {
	fn, ok := functions[c.Func]
	if !ok {
		return 0, fmt.Errorf("%s: %w", c.Func, ErrUnknownFunction)
	}
	if len(c.Args) < fn.minArgs || (fn.maxArgs >= 0 && len(c.Args) > fn.maxArgs) {
		return 0, fmt.Errorf("%s takes %d argument(s), got %d", c.Func, fn.minArgs, len(c.Args))
	}
	args := make([]float64, len(c.Args))
	for i, a := range c.Args {
		v, err := a.Eval(r)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}
	v := fn.apply(args)
	if math.IsNaN(v) {
		return 0, fmt.Errorf("%s(%v) is not a number", c.Func, args)
	}
	return v, nil
}
