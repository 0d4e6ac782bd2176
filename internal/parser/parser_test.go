package parser_test

import (
	"testing"

	"github.com/xyproto/furnc/internal/ast"
	"github.com/xyproto/furnc/internal/lexer"
	"github.com/xyproto/furnc/internal/parser"
)

func parse(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	toks, err := lexer.New("t.fn", src).Tokenize()
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	stmts, err := parser.New("t.fn", toks).Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return stmts
}

func TestParsesPackageDecl(t *testing.T) {
	stmts := parse(t, "package demo;")
	if len(stmts) != 1 {
		t.Fatalf("stmt count = %d, want 1", len(stmts))
	}
	pd, ok := stmts[0].(*ast.PackageDecl)
	if !ok || pd.Name != "demo" {
		t.Fatalf("unexpected stmt: %#v", stmts[0])
	}
}

func TestParsesExportedConstWithInitializer(t *testing.T) {
	stmts := parse(t, "public x = 7;")
	cd, ok := stmts[0].(*ast.ConstDecl)
	if !ok || !cd.IsExported || cd.Name != "x" {
		t.Fatalf("unexpected stmt: %#v", stmts[0])
	}
	lit, ok := cd.Init.(*ast.IntLit)
	if !ok || lit.Value != 7 {
		t.Fatalf("unexpected init: %#v", cd.Init)
	}
}

func TestParsesTypedVarDeclWithoutInitializer(t *testing.T) {
	stmts := parse(t, "var count: u64;")
	vd, ok := stmts[0].(*ast.VarDecl)
	if !ok || vd.Name != "count" || vd.Init != nil {
		t.Fatalf("unexpected stmt: %#v", stmts[0])
	}
	if _, ok := vd.Type.(*ast.TypeUInt64); !ok {
		t.Fatalf("unexpected type annotation: %#v", vd.Type)
	}
}

func TestParsesCallWithArguments(t *testing.T) {
	stmts := parse(t, `print("hi", 1);`)
	es, ok := stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("unexpected stmt: %#v", stmts[0])
	}
	call, ok := es.Expr.(*ast.Call)
	if !ok || len(call.Args) != 2 {
		t.Fatalf("unexpected call: %#v", es.Expr)
	}
	callee, ok := call.Callee.(*ast.Variable)
	if !ok || callee.Name != "print" {
		t.Fatalf("unexpected callee: %#v", call.Callee)
	}
}

func TestParsesBareVariableAsNonCall(t *testing.T) {
	stmts := parse(t, "x;")
	es := stmts[0].(*ast.ExprStmt)
	if _, ok := es.Expr.(*ast.Variable); !ok {
		t.Fatalf("expected a bare Variable, got %#v", es.Expr)
	}
}

func TestParsesFunctionLiteral(t *testing.T) {
	stmts := parse(t, "let f = () { 42 };")
	cd := stmts[0].(*ast.ConstDecl)
	fn, ok := cd.Init.(*ast.Function)
	if !ok {
		t.Fatalf("unexpected init: %#v", cd.Init)
	}
	if _, ok := fn.Body.(*ast.Block); !ok {
		t.Fatalf("expected function body to be a Block, got %#v", fn.Body)
	}
}

func TestParsesBlockWithTailExpression(t *testing.T) {
	stmts := parse(t, "let x = { let a = 1; a };")
	cd := stmts[0].(*ast.ConstDecl)
	block, ok := cd.Init.(*ast.Block)
	if !ok {
		t.Fatalf("unexpected init: %#v", cd.Init)
	}
	if len(block.Stmts) != 1 {
		t.Fatalf("block stmt count = %d, want 1", len(block.Stmts))
	}
	if _, ok := block.Tail.(*ast.Variable); !ok {
		t.Fatalf("expected a Variable tail, got %#v", block.Tail)
	}
}

func TestParsesBlockWithNoTailExpression(t *testing.T) {
	stmts := parse(t, "let x = { let a = 1; };")
	cd := stmts[0].(*ast.ConstDecl)
	block := cd.Init.(*ast.Block)
	if block.Tail != nil {
		t.Fatalf("expected no tail, got %#v", block.Tail)
	}
}

func TestMissingTerminatorFails(t *testing.T) {
	toks, err := lexer.New("t.fn", "let x = 1").Tokenize()
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	if _, err := parser.New("t.fn", toks).Parse(); err == nil {
		t.Fatalf("expected a ParseError for the missing ';'")
	}
}

func TestMissingTypeAfterColonFails(t *testing.T) {
	toks, err := lexer.New("t.fn", "let x: ;").Tokenize()
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	if _, err := parser.New("t.fn", toks).Parse(); err == nil {
		t.Fatalf("expected a ParseError for the missing type after ':'")
	}
}
