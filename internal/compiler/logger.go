package compiler

import (
	"fmt"
	"io"
)

// Logger traces pipeline stages, grounded on the teacher's VerboseMode +
// raw fmt.Fprintf(os.Stderr, ...) idiom (emit.go's BufferWrapper) rather
// than a structured logging library — no pack repo reaches for one for a
// short-lived CLI tool (SPEC_FULL.md §7.2).
type Logger interface {
	Stagef(format string, args ...any)
	Tracef(format string, args ...any)
}

// verboseLogger writes every Stagef/Tracef line to w.
type verboseLogger struct{ w io.Writer }

func NewVerboseLogger(w io.Writer) Logger { return verboseLogger{w} }

func (l verboseLogger) Stagef(format string, args ...any) {
	fmt.Fprintf(l.w, "== "+format+"\n", args...)
}

func (l verboseLogger) Tracef(format string, args ...any) {
	fmt.Fprintf(l.w, "   "+format+"\n", args...)
}

// quietLogger discards everything.
type quietLogger struct{}

func NewQuietLogger() Logger { return quietLogger{} }

func (quietLogger) Stagef(string, ...any) {}
func (quietLogger) Tracef(string, ...any) {}
