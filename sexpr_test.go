package rsgview

import (
	"errors"
	"testing"
)

func TestParseSExprsNested(t *testing.T) {
	exprs, err := ParseSExprs([]byte("(RSG 0 1) ((nd TRF (SLT 1 2)) (nd BN))"))
	if err != nil {
		t.Fatalf("ParseSExprs: %v", err)
	}
	if len(exprs) != 2 {
		t.Fatalf("got %d top-level expressions, want 2", len(exprs))
	}
	if exprs[0].Head() != "RSG" {
		t.Errorf("Head = %q, want RSG", exprs[0].Head())
	}
	graph := exprs[1]
	if graph.Head() != "" {
		t.Errorf("graph Head = %q, want empty for a list of lists", graph.Head())
	}
	if len(graph.List) != 2 || graph.List[0].Head() != "nd" {
		t.Fatalf("graph = %s", graph)
	}
	if got := graph.String(); got != "((nd TRF (SLT 1 2)) (nd BN))" {
		t.Errorf("String = %q", got)
	}
}

func TestParseSExprsWhitespace(t *testing.T) {
	exprs, err := ParseSExprs([]byte("\n\t( a\r\nb )\x00"))
	if err != nil {
		t.Fatalf("ParseSExprs: %v", err)
	}
	if len(exprs) != 1 || len(exprs[0].List) != 2 {
		t.Fatalf("got %v", exprs)
	}
	if exprs[0].List[1].Atom != "b" {
		t.Errorf("second atom = %q, want b", exprs[0].List[1].Atom)
	}
}

func TestParseSExprsEmptyList(t *testing.T) {
	exprs, err := ParseSExprs([]byte("()"))
	if err != nil {
		t.Fatalf("ParseSExprs: %v", err)
	}
	if !exprs[0].IsList || len(exprs[0].List) != 0 {
		t.Errorf("got %#v, want empty list", exprs[0])
	}
	if exprs[0].Args() != nil {
		t.Error("Args of empty list is not nil")
	}
}

func TestParseSExprsUnbalanced(t *testing.T) {
	for _, in := range []string{"(a (b)", ")", "(a))", "((("} {
		_, err := ParseSExprs([]byte(in))
		if !errors.Is(err, ErrMalformedExpression) {
			t.Errorf("ParseSExprs(%q) error = %v, want ErrMalformedExpression", in, err)
		}
	}
}

func TestParseSExprsDeepNesting(t *testing.T) {
	const depth = 10000
	in := make([]byte, 0, 2*depth)
	for i := 0; i < depth; i++ {
		in = append(in, '(')
	}
	for i := 0; i < depth; i++ {
		in = append(in, ')')
	}
	if _, err := ParseSExprs(in); err != nil {
		t.Fatalf("ParseSExprs: %v", err)
	}
}

func TestSExprNumbers(t *testing.T) {
	if v, err := (SExpr{Atom: "-1.5e2"}).Float(); err != nil || v != -150 {
		t.Errorf("Float = %v, %v", v, err)
	}
	if _, err := (SExpr{Atom: "x"}).Float(); err == nil {
		t.Error("Float(x) succeeded")
	}
	if _, err := (SExpr{IsList: true}).Int(); !errors.Is(err, ErrMalformedExpression) {
		t.Errorf("Int(list) error = %v", err)
	}
}

func TestFloatsCount(t *testing.T) {
	args := []SExpr{{Atom: "1"}, {Atom: "2"}}
	if _, err := floats(args, 3); err == nil {
		t.Error("floats accepted 2 values for 3")
	}
	v, err := floats(args, 2)
	if err != nil || v[1] != 2 {
		t.Errorf("floats = %v, %v", v, err)
	}
}
