// Package ir implements CompiledProgram: the positional IR stream, the
// global table, the external-symbol table, the interned static-string
// pool, and the reference-realignment service that keeps every relative
// reference into the stream valid across insertions and deletions
// (spec.md §3, §4.2).
package ir

import "fmt"

// Kind is the closed IRNode variant tag (spec.md §3).
type Kind int

const (
	KindPush64 Kind = iota
	KindLoad64ToStack
	KindPop64ToStack
	KindStackReadPush64
	KindStackReadLoad64ToStack
	KindGlobalReadPush64
	KindGlobalReadLoad64ToStack
	KindExternalReadPush64
	KindPushStaticStringPointer
	KindPushAddressFromOffset
	KindCallFromOffset
	KindCall
	KindJumpFromOffset
	KindStackAlloc
	KindStackDealloc
	KindReturn
)

func (k Kind) String() string {
	switch k {
	case KindPush64:
		return "Push64"
	case KindLoad64ToStack:
		return "Load64ToStack"
	case KindPop64ToStack:
		return "Pop64ToStack"
	case KindStackReadPush64:
		return "StackReadPush64"
	case KindStackReadLoad64ToStack:
		return "StackReadLoad64ToStack"
	case KindGlobalReadPush64:
		return "GlobalReadPush64"
	case KindGlobalReadLoad64ToStack:
		return "GlobalReadLoad64ToStack"
	case KindExternalReadPush64:
		return "ExternalReadPush64"
	case KindPushStaticStringPointer:
		return "PushStaticStringPointer"
	case KindPushAddressFromOffset:
		return "PushAddressFromOffset"
	case KindCallFromOffset:
		return "CallFromOffset"
	case KindCall:
		return "Call"
	case KindJumpFromOffset:
		return "JumpFromOffset"
	case KindStackAlloc:
		return "StackAlloc"
	case KindStackDealloc:
		return "StackDealloc"
	case KindReturn:
		return "Return"
	default:
		return "Unknown"
	}
}

// ExternalInfo names an externally linked symbol (spec.md §3).
type ExternalInfo struct {
	Name        string
	PackageName string
	IsConst     bool
}

// Node is a single IR instruction. Only the fields relevant to Kind are
// meaningful; helper constructors below are the intended way to build one.
type Node struct {
	Kind Kind

	// Push64, Load64ToStack
	Imm uint64

	// Load64ToStack, Pop64ToStack, StackReadPush64, StackReadLoad64ToStack,
	// GlobalReadPush64, GlobalReadLoad64ToStack, PushStaticStringPointer,
	// StackAlloc, StackDealloc: generic unsigned operand(s).
	A, B int

	// PushAddressFromOffset, CallFromOffset, JumpFromOffset: signed
	// relative index into the IR stream.
	Offset int16

	// Return
	ParamsSize int

	// ExternalReadPush64
	External ExternalInfo
}

func Push64(imm uint64) Node { return Node{Kind: KindPush64, Imm: imm} }

func Load64ToStack(imm uint64, offset int) Node {
	return Node{Kind: KindLoad64ToStack, Imm: imm, A: offset}
}

func Pop64ToStack(offset int) Node { return Node{Kind: KindPop64ToStack, A: offset} }

func StackReadPush64(offset int) Node { return Node{Kind: KindStackReadPush64, A: offset} }

func StackReadLoad64ToStack(src, dst int) Node {
	return Node{Kind: KindStackReadLoad64ToStack, A: src, B: dst}
}

func GlobalReadPush64(pos int) Node { return Node{Kind: KindGlobalReadPush64, A: pos} }

func GlobalReadLoad64ToStack(pos, off int) Node {
	return Node{Kind: KindGlobalReadLoad64ToStack, A: pos, B: off}
}

func ExternalReadPush64(info ExternalInfo) Node {
	return Node{Kind: KindExternalReadPush64, External: info}
}

func PushStaticStringPointer(pos int) Node {
	return Node{Kind: KindPushStaticStringPointer, A: pos}
}

func PushAddressFromOffset(offset int16) Node {
	return Node{Kind: KindPushAddressFromOffset, Offset: offset}
}

func CallFromOffset(offset int16) Node { return Node{Kind: KindCallFromOffset, Offset: offset} }

func Call() Node { return Node{Kind: KindCall} }

func JumpFromOffset(offset int16) Node { return Node{Kind: KindJumpFromOffset, Offset: offset} }

func StackAlloc(bytes int) Node { return Node{Kind: KindStackAlloc, A: bytes} }

func StackDealloc(bytes int) Node { return Node{Kind: KindStackDealloc, A: bytes} }

func Return(paramsSize int) Node { return Node{Kind: KindReturn, ParamsSize: paramsSize} }

// hasRelativeOffset reports whether this node kind carries a relative IR
// reference that realign_addresses must keep valid (spec.md §4.2).
func (n Node) hasRelativeOffset() bool {
	switch n.Kind {
	case KindPushAddressFromOffset, KindCallFromOffset, KindJumpFromOffset:
		return true
	default:
		return false
	}
}

// stackOffsetOperands returns, for nodes whose operand(s) are stack byte
// offsets, pointers to each such operand — used by realign_stack_offsets
// (spec.md §4.2).
func (n *Node) stackOffsetOperands() []*int {
	switch n.Kind {
	case KindPop64ToStack, KindLoad64ToStack, KindStackReadPush64:
		return []*int{&n.A}
	case KindStackReadLoad64ToStack:
		return []*int{&n.A, &n.B}
	case KindGlobalReadLoad64ToStack:
		return []*int{&n.B}
	default:
		return nil
	}
}

func (n Node) String() string {
	switch n.Kind {
	case KindPush64:
		return fmt.Sprintf("Push64(%d)", n.Imm)
	case KindLoad64ToStack:
		return fmt.Sprintf("Load64ToStack(%d, %d)", n.Imm, n.A)
	case KindPop64ToStack:
		return fmt.Sprintf("Pop64ToStack(%d)", n.A)
	case KindStackReadPush64:
		return fmt.Sprintf("StackReadPush64(%d)", n.A)
	case KindStackReadLoad64ToStack:
		return fmt.Sprintf("StackReadLoad64ToStack(%d, %d)", n.A, n.B)
	case KindGlobalReadPush64:
		return fmt.Sprintf("GlobalReadPush64(%d)", n.A)
	case KindGlobalReadLoad64ToStack:
		return fmt.Sprintf("GlobalReadLoad64ToStack(%d, %d)", n.A, n.B)
	case KindExternalReadPush64:
		return fmt.Sprintf("ExternalReadPush64(%s::%s)", n.External.PackageName, n.External.Name)
	case KindPushStaticStringPointer:
		return fmt.Sprintf("PushStaticStringPointer(%d)", n.A)
	case KindPushAddressFromOffset:
		return fmt.Sprintf("PushAddressFromOffset(%d)", n.Offset)
	case KindCallFromOffset:
		return fmt.Sprintf("CallFromOffset(%d)", n.Offset)
	case KindCall:
		return "Call"
	case KindJumpFromOffset:
		return fmt.Sprintf("JumpFromOffset(%d)", n.Offset)
	case KindStackAlloc:
		return fmt.Sprintf("StackAlloc(%d)", n.A)
	case KindStackDealloc:
		return fmt.Sprintf("StackDealloc(%d)", n.A)
	case KindReturn:
		return fmt.Sprintf("Return{params_size: %d}", n.ParamsSize)
	default:
		return "<invalid IRNode>"
	}
}
