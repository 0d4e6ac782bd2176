package irgen

import (
	"github.com/xyproto/furnc/internal/ast"
	"github.com/xyproto/furnc/internal/ctimeval"
	"github.com/xyproto/furnc/internal/diag"
	"github.com/xyproto/furnc/internal/ir"
	"github.com/xyproto/furnc/internal/symtab"
	"github.com/xyproto/furnc/internal/typeval"
)

// genCall implements spec.md §4.3's Call(callee, args) rule:
// StackAlloc the return slot, lower each argument left to right, lower
// the callee to push its address, emit Call, then reset stack_sz to
// just after the return slot (args and the callee address are consumed
// by the call). The grammar (§6.1) only ever builds Call.Callee as a
// bare Variable, so the callee is resolved by direct symbol lookup
// rather than a general gen_expr.
func (g *Generator) genCall(c *ast.Call) (typeval.Type, error) {
	calleeVar, ok := c.Callee.(*ast.Variable)
	if !ok {
		return typeval.Type{}, diag.NonCallableError(c.Loc(), "non-variable callee")
	}

	variable := g.scopes.Lookup(calleeVar.Name)
	if variable == nil {
		return typeval.Type{}, diag.UnknownNameError(calleeVar.Loc(), calleeVar.Name)
	}
	if variable.Type.Kind != typeval.FunctionPointer {
		return typeval.Type{}, diag.NonCallableError(c.Loc(), variable.Type.String())
	}
	retType := *variable.Type.Return

	g.prog.AppendNode(ir.StackAlloc(retType.Size()))
	g.stackSz += retType.Size()
	baseStackSz := g.stackSz

	for _, arg := range c.Args {
		if _, err := g.genExpr(arg); err != nil {
			return typeval.Type{}, err
		}
	}

	if err := g.genCalleeAddress(variable, calleeVar.Loc()); err != nil {
		return typeval.Type{}, err
	}

	// The peephole optimizer fuses an immediately preceding
	// PushAddressFromOffset into this Call, producing CallFromOffset
	// (spec.md §4.4). An external or stack/global-held function value
	// keeps the indirect form (scenario 4).
	g.prog.AppendNode(ir.Call())
	g.stackSz = baseStackSz

	return retType, nil
}

func (g *Generator) genCalleeAddress(variable *symtab.Variable, loc diag.Location) error {
	if variable.External != nil {
		info := ir.ExternalInfo{
			Name:        variable.External.Name,
			PackageName: variable.External.PackageName,
			IsConst:     variable.External.IsConst,
		}
		g.prog.AddExternal(info)
		g.prog.AppendNode(ir.ExternalReadPush64(info))
		g.stackSz += 8
		return nil
	}

	if variable.ConstVal != nil && variable.ConstVal.Kind == ctimeval.KindFunction {
		idx := g.prog.CountIR()
		offset := variable.ConstVal.FuncAddress - idx
		g.prog.AppendNode(ir.PushAddressFromOffset(int16(offset)))
		g.stackSz += 8
		return nil
	}

	if variable.StackLoc != nil {
		offset := g.stackSz - *variable.StackLoc
		g.prog.AppendNode(ir.StackReadPush64(offset))
		g.stackSz += 8
		return nil
	}

	if variable.GlobalPos != nil {
		g.prog.AppendNode(ir.GlobalReadPush64(*variable.GlobalPos))
		g.stackSz += 8
		return nil
	}

	return diag.NonCallableError(loc, variable.Type.String())
}
