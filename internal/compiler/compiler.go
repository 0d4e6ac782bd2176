// Package compiler wires lex -> parse -> IR generation -> optimization ->
// emission -> assemble -> link into the single driver the CLI calls,
// grounded on the teacher's cli.go cmdBuild (exec.Command-based
// assemble/link shelling-out) and compiler_state.go (the owning struct
// a pipeline stage hands exclusive access to the next, spec.md §5).
package compiler

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/xyproto/furnc/internal/diag"
	"github.com/xyproto/furnc/internal/emitter"
	"github.com/xyproto/furnc/internal/irgen"
	"github.com/xyproto/furnc/internal/lexer"
	"github.com/xyproto/furnc/internal/optimizer"
	"github.com/xyproto/furnc/internal/parser"
)

// Options configures one compile run (SPEC_FULL.md §6.4).
type Options struct {
	SourcePath  string
	OutDir      string
	Assembler   string
	Linker      string
	RuntimePath string
	Verbose     bool
	KeepASM     bool
}

// Result reports where each pipeline artifact landed.
type Result struct {
	AsmPath    string
	ObjectPath string
	RuntimeObj string
	BinaryPath string
	Passes     int
}

// Compile runs the full pipeline once. It stops and returns the first
// stage's error (spec.md §7: "the compiler reports the first error and
// stops"), wrapped as a *diag.Error where the failing stage already
// produces one, or a generic error for assemble/link/file-I/O failures.
func Compile(opts Options, logger Logger) (*Result, error) {
	if logger == nil {
		logger = NewQuietLogger()
	}

	src, err := os.ReadFile(opts.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", opts.SourcePath, err)
	}

	logger.Stagef("lex %s", opts.SourcePath)
	toks, err := lexer.New(opts.SourcePath, string(src)).Tokenize()
	if err != nil {
		return nil, err
	}
	logger.Tracef("%d tokens", len(toks))

	logger.Stagef("parse")
	stmts, err := parser.New(opts.SourcePath, toks).Parse()
	if err != nil {
		return nil, err
	}
	logger.Tracef("%d top-level statements", len(stmts))

	logger.Stagef("generate IR")
	prog, err := irgen.Generate(stmts)
	if err != nil {
		return nil, err
	}
	logger.Tracef("%d globals, %d externals, %d IR nodes", prog.GlobalCount(), len(prog.Externals()), prog.CountIR())

	logger.Stagef("optimize")
	passes := optimizer.Run(prog)
	logger.Tracef("%d passes to fixpoint, %d IR nodes remain", passes, prog.CountIR())

	logger.Stagef("emit")
	asm := emitter.Emit(prog)

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(opts.SourcePath), filepath.Ext(opts.SourcePath))
	asmPath := filepath.Join(opts.OutDir, base+".asm")
	if err := os.WriteFile(asmPath, []byte(asm), 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", asmPath, err)
	}

	res := &Result{AsmPath: asmPath, Passes: passes}

	logger.Stagef("assemble %s", asmPath)
	objPath := filepath.Join(opts.OutDir, base+".o")
	if err := assemble(opts.Assembler, asmPath, objPath); err != nil {
		return res, err
	}
	res.ObjectPath = objPath

	runtimeObj := filepath.Join(opts.OutDir, "rt.o")
	logger.Stagef("assemble runtime %s", opts.RuntimePath)
	if err := assemble(opts.Assembler, opts.RuntimePath, runtimeObj); err != nil {
		if !opts.KeepASM {
			os.Remove(asmPath)
		}
		return res, err
	}
	res.RuntimeObj = runtimeObj

	binPath := filepath.Join(opts.OutDir, base)
	logger.Stagef("link -> %s", binPath)
	if err := link(opts.Linker, binPath, objPath, runtimeObj); err != nil {
		return res, err
	}
	res.BinaryPath = binPath

	if !opts.KeepASM {
		os.Remove(asmPath)
	}
	return res, nil
}

func assemble(assembler, src, obj string) error {
	cmd := exec.Command(assembler, "-f", "elf64", "-o", obj, src)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed on %s: %w", assembler, src, err)
	}
	return nil
}

func link(linker, out string, objs ...string) error {
	args := append([]string{"-o", out}, objs...)
	cmd := exec.Command(linker, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed linking %v: %w", linker, objs, err)
	}
	return nil
}

// FormatError renders err the way the CLI reports the first failing
// stage (spec.md §7): a *diag.Error gets its rustc-style rendering, any
// other error (file I/O, assemble/link) gets a flat one-liner.
func FormatError(err error) string {
	if de, ok := err.(*diag.Error); ok {
		return de.Format()
	}
	return err.Error() + "\n"
}
