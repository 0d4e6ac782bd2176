package ast_test

import (
	"testing"

	"github.com/xyproto/furnc/internal/ast"
)

func TestIsBlockTrueForBareBlock(t *testing.T) {
	if !ast.IsBlock(&ast.Block{}) {
		t.Fatalf("expected a bare Block to be IsBlock")
	}
}

func TestIsBlockRecursesThroughFunctionBody(t *testing.T) {
	fn := &ast.Function{Body: &ast.Block{}}
	if !ast.IsBlock(fn) {
		t.Fatalf("expected a Function wrapping a Block to be IsBlock")
	}
}

func TestIsBlockFalseForNonBlockExpressions(t *testing.T) {
	exprs := []ast.Expr{
		&ast.IntLit{Value: 1},
		&ast.StringLit{Value: "s"},
		&ast.Variable{Name: "x"},
		&ast.Call{Callee: &ast.Variable{Name: "f"}},
		&ast.Function{Body: &ast.IntLit{Value: 1}},
	}
	for _, e := range exprs {
		if ast.IsBlock(e) {
			t.Fatalf("expected IsBlock(%#v) == false", e)
		}
	}
}

func TestDeclEmbeddingDistinguishesConstAndVarDecl(t *testing.T) {
	decl := ast.Decl{Name: "x", IsExported: true}
	cd := &ast.ConstDecl{Decl: decl}
	vd := &ast.VarDecl{Decl: decl}
	if cd.Name != "x" || vd.Name != "x" {
		t.Fatalf("expected embedded Decl fields to be promoted")
	}
	if !cd.IsExported || !vd.IsExported {
		t.Fatalf("expected IsExported to be promoted through embedding")
	}
}
