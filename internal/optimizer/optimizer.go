// Package optimizer implements the peephole passes over ir.Program
// described in spec.md §4.4: scan left-to-right, apply the first matching
// rewrite at the current index, restart at the same index, and iterate
// whole passes until one makes zero rewrites.
package optimizer

import "github.com/xyproto/furnc/internal/ir"

// Run optimizes prog in place, iterating to fixpoint (spec.md §4.4,
// invariant I5). It returns the number of passes executed, including the
// final no-op pass that confirms fixpoint.
func Run(prog *ir.Program) int {
	passes := 0
	for {
		passes++
		if !runPass(prog) {
			return passes
		}
	}
}

// runPass performs one left-to-right scan, applying rewrites as it finds
// them and restarting the scan at the same index after each one (so a
// freshly-produced pair at the same index is considered immediately,
// matching the "restart at the same index" rule rather than skipping
// ahead). It reports whether it made any rewrite at all.
func runPass(prog *ir.Program) bool {
	changed := false
	i := 0
	for i < prog.CountIR() {
		if rewriteAt(prog, i) {
			changed = true
			continue
		}
		i++
	}
	return changed
}

// rewriteAt tries every rule with its match starting at index i, applying
// the first one that matches. It reports whether a rewrite happened.
func rewriteAt(prog *ir.Program, i int) bool {
	if i+1 >= prog.CountIR() {
		return rewriteUnary(prog, i)
	}

	a := prog.NodeAt(i)
	b := prog.NodeAt(i + 1)

	switch {
	case a.Kind == ir.KindStackAlloc && b.Kind == ir.KindStackAlloc:
		replacePair(prog, i, ir.StackAlloc(a.A+b.A))
		return true

	case a.Kind == ir.KindStackAlloc && b.Kind == ir.KindStackDealloc:
		if a.A > b.A {
			replacePair(prog, i, ir.StackAlloc(a.A-b.A))
		} else {
			// a == b collapses to StackDealloc(0), elided by the unary
			// rule on the next restart at this index.
			replacePair(prog, i, ir.StackDealloc(b.A-a.A))
		}
		return true

	case a.Kind == ir.KindStackDealloc && b.Kind == ir.KindStackDealloc:
		replacePair(prog, i, ir.StackDealloc(a.A+b.A))
		return true

	case a.Kind == ir.KindStackDealloc && b.Kind == ir.KindStackAlloc:
		if a.A > b.A {
			replacePair(prog, i, ir.StackDealloc(a.A-b.A))
		} else {
			replacePair(prog, i, ir.StackAlloc(b.A-a.A))
		}
		return true

	case a.Kind == ir.KindStackAlloc && a.A == 8 && b.Kind == ir.KindLoad64ToStack && b.A == 0:
		replacePair(prog, i, ir.Push64(b.Imm))
		return true

	case a.Kind == ir.KindPush64 && b.Kind == ir.KindStackDealloc && b.A == 8:
		removePair(prog, i)
		return true

	case a.Kind == ir.KindPush64 && b.Kind == ir.KindPop64ToStack:
		replacePair(prog, i, ir.Load64ToStack(a.Imm, b.A-8))
		return true

	case a.Kind == ir.KindGlobalReadPush64 && b.Kind == ir.KindStackDealloc && b.A == 8:
		removePair(prog, i)
		return true

	case a.Kind == ir.KindGlobalReadPush64 && b.Kind == ir.KindPop64ToStack:
		replacePair(prog, i, ir.GlobalReadLoad64ToStack(a.A, b.A-8))
		return true

	case a.Kind == ir.KindStackReadPush64 && b.Kind == ir.KindStackDealloc && b.A == 8:
		removePair(prog, i)
		return true

	case a.Kind == ir.KindStackReadPush64 && b.Kind == ir.KindPop64ToStack:
		replacePair(prog, i, ir.StackReadLoad64ToStack(a.A, b.A-8))
		return true

	case a.Kind == ir.KindPushAddressFromOffset && b.Kind == ir.KindCall:
		// The fused CallFromOffset stands at the position of the push,
		// one step earlier than the Call it replaces, so the relative
		// target it must reach is one node further away (spec.md §4.4).
		replacePair(prog, i, ir.CallFromOffset(a.Offset+1))
		return true
	}

	return rewriteUnary(prog, i)
}

// rewriteUnary applies the single-node elision rules, which only need one
// node of lookahead.
func rewriteUnary(prog *ir.Program, i int) bool {
	n := prog.NodeAt(i)
	if (n.Kind == ir.KindStackAlloc || n.Kind == ir.KindStackDealloc) && n.A == 0 {
		prog.ShiftNodes(i, i)
		return true
	}
	return false
}

// replacePair removes the two nodes at i, i+1 and inserts repl in their
// place, going through ShiftNodes+InsertNode so realignment runs for both
// the deletion and the insertion (spec.md §4.4's explicit requirement).
func replacePair(prog *ir.Program, i int, repl ir.Node) {
	prog.ShiftNodes(i, i+1)
	prog.InsertNode(i, repl)
}

// removePair deletes the two nodes at i, i+1 with no replacement.
func removePair(prog *ir.Program, i int) {
	prog.ShiftNodes(i, i+1)
}
