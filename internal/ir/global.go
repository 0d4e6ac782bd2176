package ir

import "github.com/xyproto/furnc/internal/ctimeval"

// GlobalInfo describes one entry in the program's global segment
// (spec.md §3).
type GlobalInfo struct {
	Pos        int // byte offset of this global in the global segment
	Name       string
	IsExported bool
	IsConst    bool
	Init       ctimeval.Value
}
