package recipe

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Scope resolves variables defined at one level of a recipe. Lookups that
// miss fall through to the parent; a variable is evaluated in the scope that
// defines it.
type Scope struct {
	parent *Scope
	defs   map[string]Num
	values map[string]float64
	active map[string]bool
}

// NewScope returns a scope with defs on top of parent, which may be nil
func NewScope(parent *Scope, defs map[string]Num) *Scope {
	return &Scope{
		parent: parent,
		defs:   defs,
		values: map[string]float64{},
		active: map[string]bool{},
	}
}

// Lookup returns the value of a variable
func (s *Scope) Lookup(name string) (float64, error) {
	for sc := s; sc != nil; sc = sc.parent {
		if _, ok := sc.defs[name]; ok {
			return sc.resolve(name)
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUndefinedVariable)
}

func (s *Scope) resolve(name string) (float64, error) {
	if v, ok := s.values[name]; ok {
		return v, nil
	}
	if s.active[name] {
		return 0, fmt.Errorf("%q: %w", name, ErrCyclicVariable)
	}
	s.active[name] = true
	defer delete(s.active, name)

	v, err := s.defs[name].Eval(s)
	if err != nil {
		return 0, fmt.Errorf("variable %q: %w", name, err)
	}
	s.values[name] = v
	return v, nil
}

// Names returns every visible variable name, sorted
func (s *Scope) Names() []string {
	var names []string
	for sc := s; sc != nil; sc = sc.parent {
		names = append(names, lo.Keys(sc.defs)...)
	}
	names = lo.Uniq(names)
	slices.Sort(names)
	return names
}

// Check evaluates every visible variable, reporting the first failure
func (s *Scope) Check() error {
	for _, name := range s.Names() {
		if _, err := s.Lookup(name); err != nil {
			return err
		}
	}
	return nil
}

var placeholder = regexp.MustCompile(`\$?\{[a-zA-Z_][a-zA-Z0-9_]*\}`)

// Expand replaces {name} placeholders in text with variable values.
// ${NAME} is left alone for KiCad path variables.
func (s *Scope) Expand(text string) (string, error) {
	var firstErr error
	out := placeholder.ReplaceAllStringFunc(text, func(m string) string {
		if strings.HasPrefix(m, "$") {
			return m
		}
		v, err := s.Lookup(strings.Trim(m, "{}"))
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return m
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	})
	return out, firstErr
}
