// Package kicadsexp is the tagged-list model of KiCad S-expression files.
//
// A file is a tree of lists whose elements are unquoted symbols, quoted
// strings, numbers or further lists. The same tree is produced by the
// streaming parser and consumed by the writer, so footprints can be built
// programmatically and read back without a concrete syntax in between.
package kicadsexp

import (
	"io"
	"strconv"
	"strings"
)

// Sexp represents an S-expression node.
// It can be either a leaf (atom) or a list.
type Sexp interface {
	// IsLeaf returns true if this is an atom (not a list)
	IsLeaf() bool

	// LeafCount returns the number of elements in a list (1 for atoms)
	LeafCount() int

	// Head returns the first element of a list (the atom itself for atoms)
	Head() Sexp

	// Tail returns the rest of the list after the first element (nil for atoms)
	Tail() Sexp

	// String returns the textual representation on a single line
	String() string
}

// Symbol is an unquoted atom: a keyword, an enum value or a number as read
// from a file
type Symbol string

func (s Symbol) IsLeaf() bool   { return true }
func (s Symbol) LeafCount() int { return 1 }
func (s Symbol) Head() Sexp     { return s }
func (s Symbol) Tail() Sexp     { return nil }
func (s Symbol) String() string { return string(s) }

// Quoted is a string atom that is written between double quotes
type Quoted string

func (q Quoted) IsLeaf() bool   { return true }
func (q Quoted) LeafCount() int { return 1 }
func (q Quoted) Head() Sexp     { return q }
func (q Quoted) Tail() Sexp     { return nil }
func (q Quoted) String() string { return quote(string(q)) }

// Number is a numeric atom. It is written with at most six decimals.
type Number float64

func (n Number) IsLeaf() bool   { return true }
func (n Number) LeafCount() int { return 1 }
func (n Number) Head() Sexp     { return n }
func (n Number) Tail() Sexp     { return nil }
func (n Number) String() string { return FormatNumber(float64(n)) }

// FormatNumber prints v in fixed notation with six decimals, dropping
// trailing zeros and the decimal point. Negative zero is printed as 0.
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// Bool returns the yes/no symbol KiCad uses for flags
func Bool(b bool) Symbol {
	if b {
		return Symbol("yes")
	}
	return Symbol("no")
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quote(s string) string {
	return `"` + quoteEscaper.Replace(s) + `"`
}

// List represents a list of S-expressions
type List struct {
	elements []Sexp
}

// NewList returns the list (head items...)
func NewList(head string, items ...Sexp) *List {
	elements := make([]Sexp, 0, len(items)+1)
	elements = append(elements, Symbol(head))
	elements = append(elements, items...)
	return &List{elements: elements}
}

// ListOf returns a list of the given elements without a head symbol
func ListOf(items ...Sexp) *List {
	return &List{elements: append([]Sexp(nil), items...)}
}

// Append adds items to the end of the list and returns it
func (l *List) Append(items ...Sexp) *List {
	l.elements = append(l.elements, items...)
	return l
}

// Items returns the elements of the list, including the head
func (l *List) Items() []Sexp {
	return l.elements
}

func (l *List) IsLeaf() bool { return false }

func (l *List) LeafCount() int {
	return len(l.elements)
}

func (l *List) Head() Sexp {
	if len(l.elements) == 0 {
		return nil
	}
	return l.elements[0]
}

func (l *List) Tail() Sexp {
	if len(l.elements) <= 1 {
		return nil
	}
	return &List{elements: l.elements[1:]}
}

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, elem := range l.elements {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(elem.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Get returns the element at the given index
func (l *List) Get(index int) Sexp {
	if index < 0 || index >= len(l.elements) {
		return nil
	}
	return l.elements[index]
}

// Len returns the number of elements in the list
func (l *List) Len() int {
	return len(l.elements)
}

// Name returns the head symbol of the list, or "" when there is none
func (l *List) Name() string {
	if sym, ok := l.Head().(Symbol); ok {
		return string(sym)
	}
	return ""
}

// Parse parses S-expressions from an io.Reader.
func Parse(r io.Reader) ([]Sexp, error) {
	parser := NewParser(r)
	return parser.ParseAll()
}

// ParseString parses S-expressions from a string
func ParseString(s string) ([]Sexp, error) {
	return Parse(strings.NewReader(s))
}
