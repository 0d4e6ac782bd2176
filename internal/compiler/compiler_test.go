package compiler_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xyproto/furnc/internal/compiler"
)

// TestCompileStopsAtFirstStageError verifies a lex failure never reaches
// the assembler (spec.md §7: report the first error and stop).
func TestCompileStopsAtFirstStageError(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.fn")
	if err := os.WriteFile(src, []byte("let x = @;"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	_, err := compiler.Compile(compiler.Options{
		SourcePath: src,
		OutDir:     filepath.Join(dir, "out"),
		Assembler:  "/bin/false",
		Linker:     "/bin/false",
	}, nil)
	if err == nil {
		t.Fatalf("expected a lex error, got nil")
	}
}

// TestCompileReachesAssembleStage verifies a well-formed program makes it
// all the way through generation, optimization, and emission, producing
// an .asm file before the (here-stubbed) assembler is invoked.
func TestCompileReachesAssembleStage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "ok.fn")
	if err := os.WriteFile(src, []byte("package demo; public let x = 7;"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	out := filepath.Join(dir, "out")

	res, err := compiler.Compile(compiler.Options{
		SourcePath: src,
		OutDir:     out,
		Assembler:  "/bin/false",
		Linker:     "/bin/false",
		KeepASM:    true,
	}, nil)
	if err == nil {
		t.Fatalf("expected the stubbed assembler to fail")
	}
	if res == nil || res.AsmPath == "" {
		t.Fatalf("expected a Result with AsmPath set even though assembling failed: %+v", res)
	}
	if _, statErr := os.Stat(res.AsmPath); statErr != nil {
		t.Fatalf("asm file missing at %s: %v", res.AsmPath, statErr)
	}
}

func TestFormatErrorRendersDiagnostic(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.fn")
	os.WriteFile(src, []byte("public let x = 1;"), 0o644)

	_, err := compiler.Compile(compiler.Options{
		SourcePath: src,
		OutDir:     filepath.Join(dir, "out"),
		Assembler:  "/bin/false",
		Linker:     "/bin/false",
	}, nil)
	if err == nil {
		t.Fatalf("expected ExportWithoutPackageError")
	}
	formatted := compiler.FormatError(err)
	if formatted == "" {
		t.Fatalf("expected a non-empty formatted diagnostic")
	}
}
