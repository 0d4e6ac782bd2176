package irgen

import (
	"github.com/xyproto/furnc/internal/ast"
	"github.com/xyproto/furnc/internal/diag"
	"github.com/xyproto/furnc/internal/ir"
)

func (g *Generator) genStmt(s ast.Stmt) error {
	switch v := s.(type) {
	case *ast.ConstDecl:
		return g.genDecl(v.Decl, true)

	case *ast.VarDecl:
		return g.genDecl(v.Decl, false)

	case *ast.PackageDecl:
		return g.genPackageDecl(v)

	case *ast.ExprStmt:
		typ, err := g.genExpr(v.Expr)
		if err != nil {
			return err
		}
		if v.Final {
			return nil
		}
		// A statement-position expression discards its value: the
		// stack must return to its pre-statement size (spec.md §5).
		if typ.Size() > 0 {
			g.prog.AppendNode(ir.StackDealloc(typ.Size()))
			g.stackSz -= typ.Size()
		}
		return nil

	default:
		return diag.ParseError(s.Loc(), "unsupported statement")
	}
}
