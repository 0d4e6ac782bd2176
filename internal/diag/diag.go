// Package diag implements the compiler's diagnostic reporting, grounded on
// the teacher's errors.go: a located error type with a rustc-style
// "-->"/"help:" formatted rendering. Unlike the teacher's
// ErrorCollector, which accumulates and keeps going, every diag.Error here
// is fatal: the compiler reports the first one and stops (spec.md §7).
package diag

import (
	"fmt"
	"strings"
)

// Stage names the pipeline stage that raised the error.
type Stage int

const (
	StageLex Stage = iota
	StageParse
	StageGenerate
	StageOptimize
	StageEmit
	StageAssemble
	StageLink
)

func (s Stage) String() string {
	switch s {
	case StageLex:
		return "lex"
	case StageParse:
		return "parse"
	case StageGenerate:
		return "generate"
	case StageOptimize:
		return "optimize"
	case StageEmit:
		return "emit"
	case StageAssemble:
		return "assemble"
	case StageLink:
		return "link"
	default:
		return "unknown"
	}
}

// Kind is the closed set of error kinds named in spec.md §7.
type Kind int

const (
	KindLexError Kind = iota
	KindParseError
	KindDuplicatePackage
	KindExportWithoutPackage
	KindExportScope
	KindGlobalNotConstant
	KindExportNotInitialized
	KindUnknownName
	KindNonCallable
	KindTypeAsValue
	KindFunctionNotInlined
)

func (k Kind) String() string {
	switch k {
	case KindLexError:
		return "LexError"
	case KindParseError:
		return "ParseError"
	case KindDuplicatePackage:
		return "DuplicatePackageError"
	case KindExportWithoutPackage:
		return "ExportWithoutPackageError"
	case KindExportScope:
		return "ExportScopeError"
	case KindGlobalNotConstant:
		return "GlobalNotConstantError"
	case KindExportNotInitialized:
		return "ExportNotInitializedError"
	case KindUnknownName:
		return "UnknownNameError"
	case KindNonCallable:
		return "NonCallableError"
	case KindTypeAsValue:
		return "TypeAsValueError"
	case KindFunctionNotInlined:
		return "FunctionNotInlinedError"
	default:
		return "UnknownError"
	}
}

// Location is a position in the source file.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Error is a single fatal compile-time diagnostic.
type Error struct {
	Stage    Stage
	Kind     Kind
	Message  string
	Location Location
	Help     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Location, e.Kind, e.Message)
}

// Format renders the error the way the teacher's CompilerError.Format does,
// minus color: the output is always plain text.
func (e *Error) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s]: %s\n", e.Stage, e.Kind, e.Message)
	fmt.Fprintf(&sb, "  --> %s\n", e.Location)
	if e.Help != "" {
		fmt.Fprintf(&sb, "  help: %s\n", e.Help)
	}
	return sb.String()
}

func newErr(stage Stage, kind Kind, loc Location, help string, format string, args ...any) *Error {
	return &Error{
		Stage:    stage,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
		Help:     help,
	}
}

// LexError reports an unexpected character or premature EOF.
func LexError(loc Location, format string, args ...any) *Error {
	return newErr(StageLex, KindLexError, loc, "", format, args...)
}

// ParseError reports a missing terminator/operator/name.
func ParseError(loc Location, format string, args ...any) *Error {
	return newErr(StageParse, KindParseError, loc, "", format, args...)
}

// DuplicatePackageError reports a second `package` declaration.
func DuplicatePackageError(loc Location, first Location) *Error {
	return newErr(StageGenerate, KindDuplicatePackage, loc,
		fmt.Sprintf("package was already declared at %s", first),
		"a source file may declare `package` at most once")
}

// ExportWithoutPackageError reports an exported non-main global with no
// package declaration in the program.
func ExportWithoutPackageError(loc Location, name string) *Error {
	return newErr(StageGenerate, KindExportWithoutPackage, loc,
		"declare `package <name>;` before any exported symbol other than `main`",
		"exported symbol %q requires a package declaration", name)
}

// ExportScopeError reports `public` used outside the global scope.
func ExportScopeError(loc Location, name string) *Error {
	return newErr(StageGenerate, KindExportScope, loc,
		"move this declaration to global scope",
		"%q is exported but declared in a local scope", name)
}

// GlobalNotConstantError reports a global whose initializer isn't a
// compile-time constant.
func GlobalNotConstantError(loc Location, name string) *Error {
	return newErr(StageGenerate, KindGlobalNotConstant, loc,
		"global initializers must be resolvable at compile time",
		"global %q has a non-constant initializer", name)
}

// ExportNotInitializedError reports an exported declaration with no
// initializer.
func ExportNotInitializedError(loc Location, name string) *Error {
	return newErr(StageGenerate, KindExportNotInitialized, loc,
		"give an initializer: `public let "+name+" = ...;`",
		"exported symbol %q has no initializer", name)
}

// UnknownNameError reports a failed variable lookup.
func UnknownNameError(loc Location, name string) *Error {
	return newErr(StageGenerate, KindUnknownName, loc, "",
		"undefined name %q", name)
}

// NonCallableError reports Call(e, ...) where e isn't a function pointer.
func NonCallableError(loc Location, typ string) *Error {
	return newErr(StageGenerate, KindNonCallable, loc, "",
		"cannot call a value of type %s", typ)
}

// TypeAsValueError reports `u64`/`str` used as a value expression.
func TypeAsValueError(loc Location, typ string) *Error {
	return newErr(StageGenerate, KindTypeAsValue, loc,
		"type tokens may only appear as type annotations",
		"%s used as a value", typ)
}

// FunctionNotInlinedError reports a Function literal reached in value
// position outside the constant-folding path.
func FunctionNotInlinedError(loc Location) *Error {
	return newErr(StageGenerate, KindFunctionNotInlined, loc,
		"function literals must be bound to a name and inlined at each call site",
		"function literal escaped constant folding")
}
