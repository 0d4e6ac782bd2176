package ir

import (
	"github.com/samber/lo"

	"github.com/xyproto/furnc/internal/ctimeval"
)

// StaticString is one entry in the interned static-string pool. Offset is
// the cumulative byte count of every string interned before this one
// (spec.md §3, §4.3) — it doubles as a stable identifier into
// PushStaticStringPointer nodes.
type StaticString struct {
	Text   string
	Offset int
}

// Program is CompiledProgram: the IR stream, the global table, the
// external-symbol table, the interned static-string pool, and the
// reference-realignment service (spec.md §3, §4.2).
type Program struct {
	ir            []Node
	globals       []GlobalInfo
	externals     []ExternalInfo
	staticStrings []StaticString
	packageName   string
	hasPackage    bool

	internedOffset map[string]int
	cumulativeLen  int
}

func New() *Program {
	return &Program{internedOffset: make(map[string]int)}
}

// PackageName returns the declared package name, if any.
func (p *Program) PackageName() (string, bool) { return p.packageName, p.hasPackage }

func (p *Program) SetPackageName(name string) {
	p.packageName = name
	p.hasPackage = true
}

// AppendNode appends a node to the end of the IR stream and returns its
// index. Appending never needs realignment: nothing can reference an
// index past the current end of the stream yet.
func (p *Program) AppendNode(n Node) int {
	p.ir = append(p.ir, n)
	return len(p.ir) - 1
}

func (p *Program) CountIR() int { return len(p.ir) }

func (p *Program) NodeAt(pos int) Node { return p.ir[pos] }

func (p *Program) NodeMutAt(pos int) *Node { return &p.ir[pos] }

func (p *Program) SetNodeAt(pos int, n Node) { p.ir[pos] = n }

// IR returns the full instruction stream in index order. Callers must
// treat it as read-only; use InsertNode/ShiftNodes/SetNodeAt to mutate.
func (p *Program) IR() []Node { return p.ir }

func (p *Program) Globals() []GlobalInfo { return p.globals }

func (p *Program) AnyGlobalExists() bool { return len(p.globals) > 0 }

func (p *Program) GlobalCount() int { return len(p.globals) }

func (p *Program) AddGlobal(g GlobalInfo) { p.globals = append(p.globals, g) }

// GlobalMutAt returns a pointer to the global at slice index idx (not its
// Pos field) so callers can patch Init in place once a forward-referenced
// function's address is known.
func (p *Program) GlobalMutAt(idx int) *GlobalInfo { return &p.globals[idx] }

func (p *Program) Externals() []ExternalInfo { return p.externals }

// AddExternal registers an external symbol, deduplicating by
// (name, package) so repeated references to the same external emit one
// `extern` line.
func (p *Program) AddExternal(info ExternalInfo) int {
	if _, i, ok := lo.FindIndexOf(p.externals, func(e ExternalInfo) bool {
		return e.Name == info.Name && e.PackageName == info.PackageName
	}); ok {
		return i
	}
	p.externals = append(p.externals, info)
	return len(p.externals) - 1
}

// AddStaticString interns s, returning its stable offset identifier.
// Identical strings (by exact equality) collapse to the first-interned
// offset (spec.md I4); the cumulative counter is never decremented.
func (p *Program) AddStaticString(s string) int {
	if off, ok := p.internedOffset[s]; ok {
		return off
	}
	off := p.cumulativeLen
	p.staticStrings = append(p.staticStrings, StaticString{Text: s, Offset: off})
	p.internedOffset[s] = off
	p.cumulativeLen += len(s)
	return off
}

func (p *Program) StaticStrings() []StaticString { return p.staticStrings }

// InsertNode inserts node at pos, shifting every later index up by one,
// and realigns every reference that straddles pos (spec.md §4.2).
//
// realignAddresses must run against the pre-mutation array: it reads each
// node's own *current* slot as that node's host index, so the physical
// splice has to happen after the realignment pass, not before — otherwise
// every node whose slot moves would be realigned using its *new* index in
// place of its true old one, throwing off the ref_host/tgt boundary tests
// by exactly dir*count for nodes on the far side of pos.
func (p *Program) InsertNode(pos int, node Node) {
	p.realignAddresses(pos, 1, +1)
	p.ir = append(p.ir, Node{})
	copy(p.ir[pos+1:], p.ir[pos:])
	p.ir[pos] = node
}

// ShiftNodes removes the inclusive node range [start, end], shifting
// every later index down by the range's length, and realigns every
// reference that straddled the removed range (spec.md §4.2). As in
// InsertNode, realignment must happen before the physical removal.
func (p *Program) ShiftNodes(start, end int) {
	count := end - start + 1
	p.realignAddresses(start, count, -1)
	p.ir = append(p.ir[:start], p.ir[end+1:]...)
}

// realignAddresses is the central invariant machine (spec.md §4.2). A
// mutation of size `count` in direction `dir` (+1 insert, -1 delete) is
// about to happen at `pos`; p.ir is still in its pre-mutation shape. For
// every relative reference, let ref_host be the node's own (pre-mutation)
// index (0 for a global Function(address), which lives outside the
// stream) and tgt = ref_host + offset the absolute index it denotes:
//
//   - forward reference  (ref_host < pos <= tgt): offset += dir*count
//   - backward reference (tgt < pos <= ref_host): offset -= dir*count
//   - neither crosses pos: unchanged
func (p *Program) realignAddresses(pos, count, dir int) {
	for i := range p.ir {
		n := &p.ir[i]
		if !n.hasRelativeOffset() {
			continue
		}
		refHost := i
		tgt := refHost + int(n.Offset)

		switch {
		case refHost < pos && pos <= tgt:
			n.Offset += int16(dir * count)
		case tgt < pos && pos <= refHost:
			n.Offset -= int16(dir * count)
		}
	}

	for i := range p.globals {
		g := &p.globals[i]
		if g.Init.Kind != ctimeval.KindFunction {
			continue
		}
		if g.Init.FuncAddress > pos {
			g.Init.FuncAddress += dir * count
		}
	}
}

// RealignStackOffsets bumps every stack-offset operand occurring after
// afterIndex whose offset exceeds threshold by delta (spec.md §4.2). This
// is invoked when a block inserts a return-value allocation mid-stream
// and must update all references to already-allocated slots below it.
func (p *Program) RealignStackOffsets(afterIndex, threshold, delta int) {
	for i := afterIndex + 1; i < len(p.ir); i++ {
		for _, operand := range p.ir[i].stackOffsetOperands() {
			if *operand > threshold {
				*operand += delta
			}
		}
	}
}
