package kicadsexp

import (
	"io"
	"strings"
)

// Format renders s in the tab indented layout of KiCad 8 and newer files.
//
// A list without sub-lists is written on one line. A list with sub-lists
// opens a block: the head line carries the atoms before the first sub-list,
// every following element goes on its own line one tab deeper, and the
// closing parenthesis gets a line of its own.
func Format(s Sexp) string {
	var b strings.Builder
	writeExpr(&b, s, "")
	return b.String()
}

// Write renders s like Format to w
func Write(w io.Writer, s Sexp) error {
	_, err := io.WriteString(w, Format(s))
	return err
}

func writeExpr(b *strings.Builder, s Sexp, indent string) {
	l, ok := s.(*List)
	if !ok || !hasSubList(l) {
		b.WriteString(indent)
		b.WriteString(s.String())
		b.WriteByte('\n')
		return
	}

	b.WriteString(indent)
	b.WriteByte('(')
	i := 0
	for ; i < len(l.elements) && l.elements[i].IsLeaf(); i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(l.elements[i].String())
	}
	b.WriteByte('\n')

	inner := indent + "\t"
	for _, elem := range l.elements[i:] {
		writeExpr(b, elem, inner)
	}
	b.WriteString(indent)
	b.WriteString(")\n")
}

func hasSubList(l *List) bool {
	for _, elem := range l.elements {
		if !elem.IsLeaf() {
			return true
		}
	}
	return false
}
