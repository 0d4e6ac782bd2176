// Package irgen walks the AST the parser delivers and drives
// internal/ir's CompiledProgram together with the virtual stack/global
// memory model (spec.md §4.3). It is the largest component of the
// compiler's middle end.
package irgen

import (
	"github.com/xyproto/furnc/internal/ast"
	"github.com/xyproto/furnc/internal/ctimeval"
	"github.com/xyproto/furnc/internal/diag"
	"github.com/xyproto/furnc/internal/ir"
	"github.com/xyproto/furnc/internal/symtab"
	"github.com/xyproto/furnc/internal/typeval"
)

// Generator holds the single CompiledProgram instance by exclusive
// ownership while it walks the AST (spec.md §5): no other stage touches
// prog until Generate returns it to the caller.
type Generator struct {
	prog   *ir.Program
	scopes *symtab.ScopeStack

	stackSz  int
	globalSz int

	hasPackage bool
	packageLoc diag.Location
	globalLocs map[string]diag.Location
}

func newGenerator() *Generator {
	g := &Generator{
		prog:       ir.New(),
		scopes:     symtab.NewScopeStack(),
		globalLocs: make(map[string]diag.Location),
	}
	g.seedBuiltins()
	return g
}

// Generate lowers a complete statement list into a CompiledProgram,
// fatal-stopping at the first diagnostic (spec.md §7 policy).
func Generate(stmts []ast.Stmt) (*ir.Program, error) {
	g := newGenerator()
	for _, s := range stmts {
		if err := g.genStmt(s); err != nil {
			return nil, err
		}
	}
	if err := g.validateExports(); err != nil {
		return nil, err
	}
	return g.prog, nil
}

// validateExports re-checks, after generation completes, that every
// exported global other than `main` exists under a declared package
// name. The source's own check runs this same way: a post-pass scan of
// globals rather than a check at declaration time, since a `package`
// statement may follow the declarations it governs (spec.md §9, Open
// Questions).
func (g *Generator) validateExports() error {
	if g.hasPackage {
		return nil
	}
	for _, glob := range g.prog.Globals() {
		if !glob.IsExported || glob.Name == "main" {
			continue
		}
		return diag.ExportWithoutPackageError(g.globalLocs[glob.Name], glob.Name)
	}
	return nil
}

func (g *Generator) genPackageDecl(p *ast.PackageDecl) error {
	if g.hasPackage {
		return diag.DuplicatePackageError(p.Location, g.packageLoc)
	}
	g.prog.SetPackageName(p.Name)
	g.hasPackage = true
	g.packageLoc = p.Location
	return nil
}

func typeFromAnnotation(e ast.Expr) (typeval.Type, error) {
	switch e.(type) {
	case *ast.TypeUInt64:
		return typeval.TUInt64, nil
	case *ast.TypeString:
		return typeval.TStringSlice, nil
	default:
		return typeval.Type{}, diag.ParseError(e.Loc(), "expected a type")
	}
}

// tryFold attempts to resolve e to a compile-time constant without
// emitting any IR. ok=false (with a nil error) means e is legitimately
// not foldable — Block and Call results, and non-constant variables —
// exactly the cases §4.3 routes to a live gen_expr instead. A Function
// literal has no side-effect-free path: its body must be generated once
// to know a stable address and return type, so tryFold does emit in
// that one case.
func (g *Generator) tryFold(e ast.Expr) (ctimeval.Value, bool, error) {
	switch v := e.(type) {
	case *ast.IntLit:
		return ctimeval.UInt(v.Value), true, nil

	case *ast.StringLit:
		off := g.prog.AddStaticString(v.Value)
		return ctimeval.StringSlice(off, len(v.Value)), true, nil

	case *ast.Variable:
		variable := g.scopes.Lookup(v.Name)
		if variable == nil {
			return ctimeval.Value{}, false, diag.UnknownNameError(v.Loc(), v.Name)
		}
		if variable.ConstVal != nil {
			return *variable.ConstVal, true, nil
		}
		return ctimeval.Value{}, false, nil

	case *ast.Function:
		val, err := g.genFunctionLiteral(v)
		if err != nil {
			return ctimeval.Value{}, false, err
		}
		return val, true, nil

	case *ast.TypeUInt64:
		return ctimeval.TypeOf(typeval.TUInt64), true, nil

	case *ast.TypeString:
		return ctimeval.TypeOf(typeval.TStringSlice), true, nil

	default:
		return ctimeval.Value{}, false, nil
	}
}
