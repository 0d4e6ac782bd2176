package optimizer_test

import (
	"testing"

	"github.com/xyproto/furnc/internal/ir"
	"github.com/xyproto/furnc/internal/optimizer"
)

func TestElidesZeroStackAllocAndDealloc(t *testing.T) {
	prog := ir.New()
	prog.AppendNode(ir.StackAlloc(0))
	prog.AppendNode(ir.Push64(1))
	prog.AppendNode(ir.StackDealloc(0))

	optimizer.Run(prog)

	if got := prog.CountIR(); got != 1 {
		t.Fatalf("IR length = %d, want 1 (only the Push64 should survive): %v", got, prog.IR())
	}
	if prog.NodeAt(0).Kind != ir.KindPush64 {
		t.Fatalf("surviving node = %v, want Push64", prog.NodeAt(0))
	}
}

func TestCoalescesStackAllocPair(t *testing.T) {
	prog := ir.New()
	prog.AppendNode(ir.StackAlloc(8))
	prog.AppendNode(ir.StackAlloc(16))

	optimizer.Run(prog)

	if got := prog.CountIR(); got != 1 {
		t.Fatalf("IR length = %d, want 1", got)
	}
	if n := prog.NodeAt(0); n.Kind != ir.KindStackAlloc || n.A != 24 {
		t.Fatalf("coalesced node = %v, want StackAlloc(24)", n)
	}
}

func TestStackAllocDeallocNetsToSmallerAlloc(t *testing.T) {
	prog := ir.New()
	prog.AppendNode(ir.StackAlloc(24))
	prog.AppendNode(ir.StackDealloc(8))

	optimizer.Run(prog)

	if got := prog.CountIR(); got != 1 {
		t.Fatalf("IR length = %d, want 1", got)
	}
	if n := prog.NodeAt(0); n.Kind != ir.KindStackAlloc || n.A != 16 {
		t.Fatalf("result = %v, want StackAlloc(16)", n)
	}
}

func TestStackAllocDeallocNetsToDealloc(t *testing.T) {
	prog := ir.New()
	prog.AppendNode(ir.StackAlloc(8))
	prog.AppendNode(ir.StackDealloc(24))

	optimizer.Run(prog)

	if got := prog.CountIR(); got != 1 {
		t.Fatalf("IR length = %d, want 1", got)
	}
	if n := prog.NodeAt(0); n.Kind != ir.KindStackDealloc || n.A != 16 {
		t.Fatalf("result = %v, want StackDealloc(16)", n)
	}
}

func TestStackAllocLoadFusesToPush64(t *testing.T) {
	prog := ir.New()
	prog.AppendNode(ir.StackAlloc(8))
	prog.AppendNode(ir.Load64ToStack(99, 0))

	optimizer.Run(prog)

	if got := prog.CountIR(); got != 1 {
		t.Fatalf("IR length = %d, want 1", got)
	}
	if n := prog.NodeAt(0); n.Kind != ir.KindPush64 || n.Imm != 99 {
		t.Fatalf("result = %v, want Push64(99)", n)
	}
}

func TestPush64DeallocCancel(t *testing.T) {
	prog := ir.New()
	prog.AppendNode(ir.Push64(5))
	prog.AppendNode(ir.StackDealloc(8))

	optimizer.Run(prog)

	if got := prog.CountIR(); got != 0 {
		t.Fatalf("IR length = %d, want 0: %v", got, prog.IR())
	}
}

func TestPush64PopFusesToLoad(t *testing.T) {
	prog := ir.New()
	prog.AppendNode(ir.Push64(7))
	prog.AppendNode(ir.Pop64ToStack(16))

	optimizer.Run(prog)

	if got := prog.CountIR(); got != 1 {
		t.Fatalf("IR length = %d, want 1", got)
	}
	if n := prog.NodeAt(0); n.Kind != ir.KindLoad64ToStack || n.Imm != 7 || n.A != 8 {
		t.Fatalf("result = %v, want Load64ToStack(7, 8)", n)
	}
}

func TestPushAddressCallFusesWithOffsetPlusOne(t *testing.T) {
	prog := ir.New()
	prog.AppendNode(ir.PushAddressFromOffset(5))
	prog.AppendNode(ir.Call())

	optimizer.Run(prog)

	if got := prog.CountIR(); got != 1 {
		t.Fatalf("IR length = %d, want 1", got)
	}
	n := prog.NodeAt(0)
	if n.Kind != ir.KindCallFromOffset || n.Offset != 6 {
		t.Fatalf("result = %v, want CallFromOffset(6)", n)
	}
}

// Cascading: a zero-size alloc coalesces into the following StackAlloc(8),
// which then fuses with Load64ToStack(3, 0) into Push64(3), and the
// trailing zero-size dealloc is elided — all in one Run, exercising
// iterate-to-fixpoint (spec.md I5).
func TestCascadingRewritesReachFixpoint(t *testing.T) {
	prog := ir.New()
	prog.AppendNode(ir.StackAlloc(0))
	prog.AppendNode(ir.StackAlloc(8))
	prog.AppendNode(ir.Load64ToStack(3, 0))
	prog.AppendNode(ir.StackDealloc(0))

	optimizer.Run(prog)

	if got := prog.CountIR(); got != 1 {
		t.Fatalf("IR length = %d, want 1: %v", got, prog.IR())
	}
	if n := prog.NodeAt(0); n.Kind != ir.KindPush64 || n.Imm != 3 {
		t.Fatalf("result = %v, want Push64(3)", n)
	}
}

// Running the optimizer a second time over an already-fixpointed program
// must be a no-op (idempotence, spec.md §8).
func TestIdempotentOnAlreadyOptimizedProgram(t *testing.T) {
	prog := ir.New()
	prog.AppendNode(ir.Push64(1))
	prog.AppendNode(ir.Call())

	optimizer.Run(prog)
	before := append([]ir.Node(nil), prog.IR()...)

	optimizer.Run(prog)
	after := prog.IR()

	if len(before) != len(after) {
		t.Fatalf("second run changed IR length: before %d, after %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("second run changed node %d: %v -> %v", i, before[i], after[i])
		}
	}
}

// Realignment must still run across an optimizer rewrite: a reference
// whose host and target both follow an elided node must keep landing on
// its original target after the stream shrinks.
func TestRewriteRealignsLaterReference(t *testing.T) {
	prog := ir.New()
	prog.AppendNode(ir.StackAlloc(0))  // 0: elided
	prog.AppendNode(ir.Push64(1))      // 1
	idx := prog.AppendNode(ir.JumpFromOffset(0)) // 2: target recomputed below
	target := prog.AppendNode(ir.Push64(2))      // 3
	prog.NodeMutAt(idx).Offset = int16(target - idx)

	optimizer.Run(prog)

	// After eliding the StackAlloc(0), every index shifts down by one;
	// the jump must still land on its Push64(2) target.
	for i, n := range prog.IR() {
		if n.Kind == ir.KindJumpFromOffset {
			tgt := i + int(n.Offset)
			if prog.NodeAt(tgt).Kind != ir.KindPush64 || prog.NodeAt(tgt).Imm != 2 {
				t.Fatalf("jump target after optimization = %v, want Push64(2)", prog.NodeAt(tgt))
			}
		}
	}
}
