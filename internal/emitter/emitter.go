// Package emitter is the one-pass formatter that turns an optimized
// ir.Program into NASM x86-64 assembly text (spec.md §6.3, extended in
// SPEC_FULL.md §6.3). It is a pure read-only consumer: by the time a
// Program reaches here, the IR generator and optimizer have exclusive
// ownership behind them (spec.md §5).
package emitter

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/xyproto/furnc/internal/ctimeval"
	"github.com/xyproto/furnc/internal/ir"
)

const defaultPackage = "main"

// Emit renders prog as a complete NASM source file.
func Emit(prog *ir.Program) string {
	pkg, ok := prog.PackageName()
	if !ok {
		pkg = defaultPackage
	}

	exported := lo.Filter(prog.Globals(), func(g ir.GlobalInfo, _ int) bool { return g.IsExported })

	var b strings.Builder
	fmt.Fprintf(&b, "; package %s, %d exported global(s)\n", pkg, len(exported))
	emitExterns(&b, prog)
	b.WriteString("\nsection .data\n")
	emitStaticStrings(&b, prog)
	emitExportDirectives(&b, exported, pkg)
	for _, g := range prog.Globals() {
		emitGlobalSlot(&b, g)
	}
	b.WriteString("\nsection .text\nglobal _start\n_start:\n\tcall OP_0\n\tmov rdi, 0\n\tmov rax, 60\n\tsyscall\n\n")
	emitText(&b, prog)
	return b.String()
}

func emitExterns(b *strings.Builder, prog *ir.Program) {
	for _, e := range prog.Externals() {
		if e.IsConst {
			fmt.Fprintf(b, "extern _PKG_%s_%s\n", e.PackageName, e.Name)
		} else {
			fmt.Fprintf(b, "extern _PKGv_%s_%s\n", e.PackageName, e.Name)
		}
	}
}

func emitStaticStrings(b *strings.Builder, prog *ir.Program) {
	for _, s := range prog.StaticStrings() {
		fmt.Fprintf(b, "_STR_%d: db ", s.Offset)
		for _, c := range []byte(s.Text) {
			fmt.Fprintf(b, "%d,", c)
		}
		b.WriteString("0\n")
	}
}

// emitExportDirectives prints the `global`/`equ` alias lines for exactly
// the exported globals — it is the sole consumer of the exported subset
// Emit computes, driving what gets emitted rather than just counting it.
func emitExportDirectives(b *strings.Builder, exported []ir.GlobalInfo, pkg string) {
	for _, g := range exported {
		prefix := "PKGv"
		if g.IsConst {
			prefix = "PKG"
		}
		fmt.Fprintf(b, "global _%s_%s_%s\n", prefix, pkg, g.Name)
		fmt.Fprintf(b, "_%s_%s_%s equ _GLOB_%d\n", prefix, pkg, g.Name, g.Pos)
	}
}

func emitGlobalSlot(b *strings.Builder, g ir.GlobalInfo) {
	switch g.Init.Kind {
	case ctimeval.KindStringSlice:
		// StringSlice occupies two consecutive 8-byte slots: pointer then
		// length (spec.md §3, §6.3).
		if g.IsConst {
			fmt.Fprintf(b, "_GLOB_%d equ _STR_%d\n", g.Pos, g.Init.StrOffset)
			fmt.Fprintf(b, "_GLOB_%d equ %d\n", g.Pos+8, g.Init.StrLen)
		} else {
			fmt.Fprintf(b, "_GLOB_%d: dq _STR_%d\n", g.Pos, g.Init.StrOffset)
			fmt.Fprintf(b, "_GLOB_%d: dq %d\n", g.Pos+8, g.Init.StrLen)
		}
	default:
		value := globalValueLiteral(g.Init)
		if g.IsConst {
			fmt.Fprintf(b, "_GLOB_%d equ %s\n", g.Pos, value)
		} else {
			fmt.Fprintf(b, "_GLOB_%d: dq %s\n", g.Pos, value)
		}
	}
}

func globalValueLiteral(v ctimeval.Value) string {
	switch v.Kind {
	case ctimeval.KindUInt:
		return fmt.Sprintf("%d", v.UInt)
	case ctimeval.KindInt:
		return v.Int.String()
	case ctimeval.KindFunction:
		return fmt.Sprintf("OP_%d", v.FuncAddress)
	default:
		return "0"
	}
}

func emitText(b *strings.Builder, prog *ir.Program) {
	for i, n := range prog.IR() {
		fmt.Fprintf(b, "OP_%d:\n", i)
		emitNode(b, i, n)
	}
}

func emitNode(b *strings.Builder, i int, n ir.Node) {
	switch n.Kind {
	case ir.KindPush64:
		fmt.Fprintf(b, "\tpush qword %d\n", n.Imm)
	case ir.KindLoad64ToStack:
		fmt.Fprintf(b, "\tmov qword [rsp+%d], %d\n", n.A, n.Imm)
	case ir.KindPop64ToStack:
		b.WriteString("\tpop rax\n")
		fmt.Fprintf(b, "\tmov [rsp+%d], rax\n", n.A-8)
	case ir.KindStackReadPush64:
		fmt.Fprintf(b, "\tpush qword [rsp+%d]\n", n.A)
	case ir.KindStackReadLoad64ToStack:
		fmt.Fprintf(b, "\tmov rax, [rsp+%d]\n", n.A)
		fmt.Fprintf(b, "\tmov [rsp+%d], rax\n", n.B)
	case ir.KindGlobalReadPush64:
		fmt.Fprintf(b, "\tpush qword [rel _GLOB_%d]\n", n.A)
	case ir.KindGlobalReadLoad64ToStack:
		fmt.Fprintf(b, "\tmov rax, [rel _GLOB_%d]\n", n.A)
		fmt.Fprintf(b, "\tmov [rsp+%d], rax\n", n.B)
	case ir.KindExternalReadPush64:
		if n.External.IsConst {
			fmt.Fprintf(b, "\tpush qword [rel _PKG_%s_%s]\n", n.External.PackageName, n.External.Name)
		} else {
			fmt.Fprintf(b, "\tpush qword _PKGv_%s_%s\n", n.External.PackageName, n.External.Name)
		}
	case ir.KindPushStaticStringPointer:
		fmt.Fprintf(b, "\tpush qword _STR_%d\n", n.A)
	case ir.KindPushAddressFromOffset:
		fmt.Fprintf(b, "\tpush qword OP_%d\n", i+int(n.Offset))
	case ir.KindCallFromOffset:
		fmt.Fprintf(b, "\tcall OP_%d\n", i+int(n.Offset))
	case ir.KindCall:
		b.WriteString("\tcall [rsp]\n")
	case ir.KindJumpFromOffset:
		fmt.Fprintf(b, "\tjmp OP_%d\n", i+int(n.Offset))
	case ir.KindStackAlloc:
		fmt.Fprintf(b, "\tsub rsp, %d\n", n.A)
	case ir.KindStackDealloc:
		fmt.Fprintf(b, "\tadd rsp, %d\n", n.A)
	case ir.KindReturn:
		if n.ParamsSize > 0 {
			fmt.Fprintf(b, "\tadd rsp, %d\n", n.ParamsSize)
		}
		b.WriteString("\tret\n")
	}
}
