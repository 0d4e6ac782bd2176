package irgen

import (
	"github.com/xyproto/furnc/internal/ast"
	"github.com/xyproto/furnc/internal/ctimeval"
	"github.com/xyproto/furnc/internal/diag"
	"github.com/xyproto/furnc/internal/ir"
	"github.com/xyproto/furnc/internal/typeval"
)

// genExpr lowers e, leaving the virtual stack grown by exactly
// size_of(type_of(e)) (spec.md §4.3's gen_expr contract).
func (g *Generator) genExpr(e ast.Expr) (typeval.Type, error) {
	switch v := e.(type) {
	case *ast.IntLit:
		g.prog.AppendNode(ir.Push64(v.Value))
		g.stackSz += typeval.TUInt64.Size()
		return typeval.TUInt64, nil

	case *ast.StringLit:
		off := g.prog.AddStaticString(v.Value)
		g.prog.AppendNode(ir.PushStaticStringPointer(off))
		g.prog.AppendNode(ir.Push64(uint64(len(v.Value))))
		g.stackSz += typeval.TStringSlice.Size()
		return typeval.TStringSlice, nil

	case *ast.Variable:
		return g.genVariableRead(v)

	case *ast.Call:
		return g.genCall(v)

	case *ast.Block:
		return g.genBlock(v)

	case *ast.Function:
		val, err := g.genFunctionLiteral(v)
		if err != nil {
			return typeval.Type{}, err
		}
		idx := g.prog.CountIR()
		g.prog.AppendNode(ir.PushAddressFromOffset(int16(val.FuncAddress - idx)))
		g.stackSz += 8
		return typeval.Func(val.FuncReturn), nil

	case *ast.TypeUInt64:
		return typeval.Type{}, diag.TypeAsValueError(v.Loc(), "u64")

	case *ast.TypeString:
		return typeval.Type{}, diag.TypeAsValueError(v.Loc(), "str")

	default:
		return typeval.Type{}, diag.ParseError(e.Loc(), "unsupported expression")
	}
}

// genVariableRead implements spec.md §4.3's Variable(name) rule: look
// up, then expand a constant, read an external, read a global (twice
// for 16-byte types), or read a stack local (twice, each offset
// recomputed after the other's push grows the stack — the corrected
// reading from spec.md §9's Open Questions).
func (g *Generator) genVariableRead(v *ast.Variable) (typeval.Type, error) {
	variable := g.scopes.Lookup(v.Name)
	if variable == nil {
		return typeval.Type{}, diag.UnknownNameError(v.Loc(), v.Name)
	}

	if variable.ConstVal != nil {
		return g.emitConst(*variable.ConstVal, v.Loc())
	}

	if variable.External != nil {
		info := ir.ExternalInfo{
			Name:        variable.External.Name,
			PackageName: variable.External.PackageName,
			IsConst:     variable.External.IsConst,
		}
		g.prog.AddExternal(info)
		g.prog.AppendNode(ir.ExternalReadPush64(info))
		g.stackSz += variable.Type.Size()
		return variable.Type, nil
	}

	if variable.GlobalPos != nil {
		pos := *variable.GlobalPos
		g.prog.AppendNode(ir.GlobalReadPush64(pos))
		g.stackSz += 8
		if variable.Type.Size() == 16 {
			g.prog.AppendNode(ir.GlobalReadPush64(pos + 8))
			g.stackSz += 8
		}
		return variable.Type, nil
	}

	if variable.StackLoc != nil {
		offset := g.stackSz - *variable.StackLoc
		g.prog.AppendNode(ir.StackReadPush64(offset))
		g.stackSz += 8
		if variable.Type.Size() == 16 {
			offset2 := g.stackSz - *variable.StackLoc
			g.prog.AppendNode(ir.StackReadPush64(offset2))
			g.stackSz += 8
		}
		return variable.Type, nil
	}

	return typeval.Type{}, diag.UnknownNameError(v.Loc(), v.Name)
}

// emitConst materializes a CTimeVal as a runtime push, exactly as if
// the value had been written as a literal at this point.
func (g *Generator) emitConst(v ctimeval.Value, loc diag.Location) (typeval.Type, error) {
	switch v.Kind {
	case ctimeval.KindUInt:
		g.prog.AppendNode(ir.Push64(v.UInt))
		g.stackSz += typeval.TUInt64.Size()
		return typeval.TUInt64, nil

	case ctimeval.KindInt:
		// The source's i128 constants are folded to a 64-bit runtime
		// representation; a full 128-bit value type is out of scope
		// (spec.md §1 Non-goals: "a full type system").
		g.prog.AppendNode(ir.Push64(uint64(v.Int.Int64())))
		g.stackSz += typeval.TUInt64.Size()
		return typeval.TUInt64, nil

	case ctimeval.KindStringSlice:
		g.prog.AppendNode(ir.PushStaticStringPointer(v.StrOffset))
		g.prog.AppendNode(ir.Push64(uint64(v.StrLen)))
		g.stackSz += typeval.TStringSlice.Size()
		return typeval.TStringSlice, nil

	case ctimeval.KindFunction:
		idx := g.prog.CountIR()
		g.prog.AppendNode(ir.PushAddressFromOffset(int16(v.FuncAddress - idx)))
		typ := typeval.Func(v.FuncReturn)
		g.stackSz += typ.Size()
		return typ, nil

	case ctimeval.KindType:
		return typeval.Type{}, diag.TypeAsValueError(loc, v.TypeVal.String())

	default:
		return typeval.Type{}, diag.FunctionNotInlinedError(loc)
	}
}

// popToStack implements spec.md §4.3's pop_to_stack(type, offset):
// emit one or two Pop64ToStack depending on type size, and shrink
// stack_sz by size_of(type).
func (g *Generator) popToStack(typ typeval.Type, offset int) {
	g.prog.AppendNode(ir.Pop64ToStack(offset))
	if typ.Size() == 16 {
		g.prog.AppendNode(ir.Pop64ToStack(offset + 8))
	}
	g.stackSz -= typ.Size()
}
