package rsgview

import (
	"fmt"
	"strconv"
	"strings"
)

// SExpr is one node of a parsed s-expression: either an atom or a list.
type SExpr struct {
	Atom   string
	List   []SExpr
	IsList bool
}

// Head returns the first child's atom text, or "" when e is an atom, an
// empty list, or a list starting with a nested list.
func (e SExpr) Head() string {
	if !e.IsList || len(e.List) == 0 || e.List[0].IsList {
		return ""
	}
	return e.List[0].Atom
}

// Args returns every child after the head.
func (e SExpr) Args() []SExpr {
	if !e.IsList || len(e.List) == 0 {
		return nil
	}
	return e.List[1:]
}

// Float parses an atom as a float.
func (e SExpr) Float() (float64, error) {
	if e.IsList {
		return 0, fmt.Errorf("expected number, got list %s: %w", e, ErrMalformedExpression)
	}
	return strconv.ParseFloat(e.Atom, 64)
}

// Int parses an atom as an integer.
func (e SExpr) Int() (int, error) {
	if e.IsList {
		return 0, fmt.Errorf("expected integer, got list %s: %w", e, ErrMalformedExpression)
	}
	return strconv.Atoi(e.Atom)
}

// String renders e back to text.
func (e SExpr) String() string {
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e SExpr) write(b *strings.Builder) {
	if !e.IsList {
		b.WriteString(e.Atom)
		return
	}
	b.WriteByte('(')
	for i, c := range e.List {
		if i > 0 {
			b.WriteByte(' ')
		}
		c.write(b)
	}
	b.WriteByte(')')
}

// floats parses every element of args as a float. It fails unless there
// are exactly n.
func floats(args []SExpr, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("want %d numbers, got %d", n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		v, err := a.Float()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ParseSExprs parses every top-level expression in data. Atoms are runs
// of characters other than whitespace and parentheses; lists nest to any
// depth. Unbalanced parentheses fail with ErrMalformedExpression.
func ParseSExprs(data []byte) ([]SExpr, error) {
	// stack[0] collects top-level expressions; each open list pushes a frame.
	stack := [][]SExpr{nil}
	i := 0
	for i < len(data) {
		c := data[i]
		switch {
		case isSpace(c):
			i++
		case c == '(':
			stack = append(stack, []SExpr{})
			i++
		case c == ')':
			if len(stack) == 1 {
				return nil, fmt.Errorf("unexpected ')' at offset %d: %w", i, ErrMalformedExpression)
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			parent := len(stack) - 1
			stack[parent] = append(stack[parent], SExpr{List: top, IsList: true})
			i++
		default:
			start := i
			for i < len(data) && !isSpace(data[i]) && data[i] != '(' && data[i] != ')' {
				i++
			}
			top := len(stack) - 1
			stack[top] = append(stack[top], SExpr{Atom: string(data[start:i])})
		}
	}
	if len(stack) != 1 {
		return nil, fmt.Errorf("%d unclosed list(s): %w", len(stack)-1, ErrMalformedExpression)
	}
	return stack[0], nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v' || c == 0
}
