// Command furnc is the ahead-of-time compiler's CLI entry point
// (SPEC_FULL.md §6.4): a single cobra root command, no subcommands,
// taking exactly one positional source-file argument.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"

	"github.com/xyproto/furnc/internal/compiler"
	"github.com/xyproto/furnc/internal/watch"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		outDir    string
		assembler string
		linker    string
		runtime   string
		verbose   bool
		keepASM   bool
		watchMode bool
	)

	cmd := &cobra.Command{
		Use:   "furnc <source.fn>",
		Short: "Ahead-of-time compiler for the furnc source language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := compiler.Options{
				SourcePath:  args[0],
				OutDir:      outDir,
				Assembler:   assembler,
				Linker:      linker,
				RuntimePath: runtime,
				Verbose:     verbose,
				KeepASM:     keepASM,
			}

			build := func() bool {
				logger := compiler.Logger(compiler.NewQuietLogger())
				if opts.Verbose {
					logger = compiler.NewVerboseLogger(os.Stderr)
				}
				_, err := compiler.Compile(opts, logger)
				if err != nil {
					fmt.Fprint(os.Stderr, compiler.FormatError(err))
					return false
				}
				return true
			}

			if !watchMode {
				if !build() {
					return fmt.Errorf("build failed")
				}
				return nil
			}

			build()
			w, err := watch.New(opts.SourcePath, func(string) { build() })
			if err != nil {
				return fmt.Errorf("watch: %w", err)
			}
			defer w.Close()
			return w.Run()
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&outDir, "output", "o", env.Str("FURNC_OUT_DIR", "out"), "output directory for .asm/.o/linked binary")
	flags.StringVar(&assembler, "assembler", env.Str("FURNC_ASSEMBLER", "nasm"), "assembler binary to shell out to")
	flags.StringVar(&linker, "linker", env.Str("FURNC_LINKER", "ld"), "linker binary to shell out to")
	flags.StringVar(&runtime, "runtime", env.Str("FURNC_RUNTIME", "runtime/rt.asm"), "path to the runtime source assembled alongside the program")
	flags.BoolVarP(&verbose, "verbose", "v", env.Bool("FURNC_VERBOSE"), "trace each pipeline stage and print the optimizer's pass count")
	flags.BoolVar(&keepASM, "keep-asm", env.BoolOr("FURNC_KEEP_ASM", true), "keep the generated .asm (always written; when false it is deleted after a successful link or a failed runtime assembly)")
	flags.BoolVar(&watchMode, "watch", env.Bool("FURNC_WATCH"), "recompile whenever the source file changes")

	return cmd
}
