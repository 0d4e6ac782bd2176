package irgen

import (
	"github.com/xyproto/furnc/internal/ast"
	"github.com/xyproto/furnc/internal/ctimeval"
	"github.com/xyproto/furnc/internal/ir"
)

// genFunctionLiteral implements spec.md §4.3's Function(body) rule.
// Functions are lowered inline at the point the literal is reached: if
// we're nested inside a local scope, a JumpFromOffset placeholder skips
// the body so control doesn't fall into it; the body's first
// instruction index becomes the function's stable address, which the
// returned CTimeVal carries for every later call site (via
// PushAddressFromOffset, fused by the optimizer into CallFromOffset).
func (g *Generator) genFunctionLiteral(fn *ast.Function) (ctimeval.Value, error) {
	hasJump := g.scopes.HasLocalScope()
	var jumpIdx int
	if hasJump {
		jumpIdx = g.prog.AppendNode(ir.JumpFromOffset(0))
	}

	address := g.prog.CountIR()
	savedStackSz := g.stackSz
	g.stackSz = 0

	bodyType, err := g.genExpr(fn.Body)
	if err != nil {
		return ctimeval.Value{}, err
	}

	if bodyType.Size() > 0 {
		g.popToStack(bodyType, 0)
	}
	g.prog.AppendNode(ir.Return(0))

	if hasJump {
		target := g.prog.CountIR()
		g.prog.NodeMutAt(jumpIdx).Offset = int16(target - jumpIdx)
	}

	g.stackSz = savedStackSz
	return ctimeval.Function(address, bodyType), nil
}
