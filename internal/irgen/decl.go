package irgen

import (
	"github.com/xyproto/furnc/internal/ast"
	"github.com/xyproto/furnc/internal/ctimeval"
	"github.com/xyproto/furnc/internal/diag"
	"github.com/xyproto/furnc/internal/ir"
	"github.com/xyproto/furnc/internal/symtab"
	"github.com/xyproto/furnc/internal/typeval"
)

// genDecl lowers a ConstDecl/VarDecl (spec.md §4.3 "Declarations").
func (g *Generator) genDecl(d ast.Decl, isConstReq bool) error {
	isGlobal := !g.scopes.HasLocalScope()

	if d.IsExported && !isGlobal {
		return diag.ExportScopeError(d.Location, d.Name)
	}

	var declaredType *typeval.Type
	if d.Type != nil {
		t, err := typeFromAnnotation(d.Type)
		if err != nil {
			return err
		}
		declaredType = &t
	}

	if isGlobal {
		return g.genGlobalDecl(d, isConstReq, declaredType)
	}
	return g.genLocalDecl(d, isConstReq, declaredType)
}

func (g *Generator) genGlobalDecl(d ast.Decl, isConstReq bool, declaredType *typeval.Type) error {
	if d.Init == nil {
		if d.IsExported {
			return diag.ExportNotInitializedError(d.Location, d.Name)
		}
		return diag.GlobalNotConstantError(d.Location, d.Name)
	}

	val, ok, err := g.tryFold(d.Init)
	if err != nil {
		return err
	}
	if !ok {
		return diag.GlobalNotConstantError(d.Location, d.Name)
	}
	if val.Kind == ctimeval.KindType {
		return diag.TypeAsValueError(d.Location, val.TypeVal.String())
	}

	typ := val.ResultType()
	if declaredType != nil {
		typ = *declaredType
	}
	return g.addGlobal(d, typ, val, isConstReq)
}

// addGlobal records a GlobalInfo slot and a matching symbol-table
// binding. Every global — const or var — occupies a slot (scenario 1
// shows a `let` global still getting `_GLOB_0`); only the binding
// differs: a const global is inlined at use sites via ConstVal, a var
// global is read back through GlobalReadPush64 via GlobalPos.
func (g *Generator) addGlobal(d ast.Decl, typ typeval.Type, val ctimeval.Value, isConst bool) error {
	pos := g.globalSz
	g.prog.AddGlobal(ir.GlobalInfo{
		Pos:        pos,
		Name:       d.Name,
		IsExported: d.IsExported,
		IsConst:    isConst,
		Init:       val,
	})
	g.globalLocs[d.Name] = d.Location
	g.globalSz += typ.Size()

	variable := symtab.Variable{Name: d.Name, Type: typ}
	if isConst {
		v := val
		variable.ConstVal = &v
	} else {
		p := pos
		variable.GlobalPos = &p
	}
	g.scopes.Add(variable)
	return nil
}

func (g *Generator) genLocalDecl(d ast.Decl, isConstReq bool, declaredType *typeval.Type) error {
	if d.Init == nil {
		typ := typeval.TUInt64
		if declaredType != nil {
			typ = *declaredType
		}
		g.prog.AppendNode(ir.StackAlloc(typ.Size()))
		g.stackSz += typ.Size()
		loc := g.stackSz
		g.scopes.Add(symtab.Variable{Name: d.Name, Type: typ, StackLoc: &loc})
		return nil
	}

	if isConstReq {
		val, ok, err := g.tryFold(d.Init)
		if err != nil {
			return err
		}
		if ok {
			if val.Kind == ctimeval.KindType {
				return diag.TypeAsValueError(d.Location, val.TypeVal.String())
			}
			typ := val.ResultType()
			if declaredType != nil {
				typ = *declaredType
			}
			v := val
			g.scopes.Add(symtab.Variable{Name: d.Name, Type: typ, ConstVal: &v})
			return nil
		}
	}

	typ, err := g.genExpr(d.Init)
	if err != nil {
		return err
	}
	if declaredType != nil {
		typ = *declaredType
	}
	loc := g.stackSz
	g.scopes.Add(symtab.Variable{Name: d.Name, Type: typ, StackLoc: &loc})
	return nil
}
