package irgen

import (
	"github.com/xyproto/furnc/internal/symtab"
	"github.com/xyproto/furnc/internal/typeval"
)

// seedBuiltins binds the external runtime's well-known symbols into the
// global scope before any source statement is generated. The grammar
// (spec.md §6.1) has no `extern` declaration syntax, so the symbols the
// linked runtime is documented to supply (spec.md §1: "an external
// runtime... that supplies symbols such as print") are predeclared
// rather than discovered from source text.
func (g *Generator) seedBuiltins() {
	g.scopes.Add(symtab.Variable{
		Name: "print",
		Type: typeval.Func(typeval.TUnit),
		External: &symtab.External{
			Name:        "print",
			PackageName: "runtime",
			IsConst:     true,
		},
	})
}
