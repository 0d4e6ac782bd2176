package irgen

import (
	"github.com/xyproto/furnc/internal/ast"
	"github.com/xyproto/furnc/internal/ir"
	"github.com/xyproto/furnc/internal/typeval"
)

// genBlock implements spec.md §4.3's Block(body, tail?) rule: open a
// scope, emit a placeholder StackAlloc(0), lower the body statements
// and an optional tail, patch the placeholder to the tail's size,
// realign any stack-offset references that now straddle the widened
// placeholder, copy the tail value down past the scope's locals, and
// close the scope. Net effect: the stack grows by size_of(tail_type)
// or 0.
func (g *Generator) genBlock(b *ast.Block) (typeval.Type, error) {
	g.scopes.OpenScope()
	prevStackSz := g.stackSz

	allocIdx := g.prog.AppendNode(ir.StackAlloc(0))

	for _, stmt := range b.Stmts {
		if err := g.genStmt(stmt); err != nil {
			g.scopes.CloseScope()
			return typeval.Type{}, err
		}
	}

	tailType := typeval.TUnit
	if b.Tail != nil {
		t, err := g.genExpr(b.Tail)
		if err != nil {
			g.scopes.CloseScope()
			return typeval.Type{}, err
		}
		tailType = t
	}

	tailSize := tailType.Size()
	threshold := g.stackSz - prevStackSz
	g.prog.NodeMutAt(allocIdx).A = tailSize

	if tailSize > 0 {
		g.prog.RealignStackOffsets(allocIdx, threshold, tailSize)
		g.popToStack(tailType, 0)
	}

	localsTotal := g.scopes.CloseScope()
	if localsTotal > 0 {
		g.prog.AppendNode(ir.StackDealloc(localsTotal))
	}

	// The net stack growth a Block promises its caller is exactly
	// size_of(tail_type) (spec.md §4.3); the placeholder/realign/pop
	// sequence above exists to get the emitted instruction stream
	// there, not to derive this figure arithmetically from each
	// node's nominal per-instruction delta.
	g.stackSz = prevStackSz + tailSize

	return tailType, nil
}
