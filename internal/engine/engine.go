// Package engine bundles the per-run collaborators internal/driver wires
// together and internal/parser drives, so neither package needs package-level
// mutable state (§9 design note).
package engine

import (
	"io"

	"github.com/tsavi/tlve/internal/level"
	"github.com/tsavi/tlve/internal/output"
	"github.com/tsavi/tlve/internal/parser"
	"github.com/tsavi/tlve/internal/registry"
	"github.com/tsavi/tlve/internal/streambuf"
)

// Engine bundles one run's shared state: the selected registry/structure,
// the print template table, the output engine and its destination writer,
// plus the buffer and level stack for whichever input file is currently
// being read.
type Engine struct {
	Registry  *registry.Registry
	Structure *registry.Structure
	Templates []*output.Template
	Out       *output.Engine
	Writer    io.Writer

	Buf   *streambuf.Buffer
	Stack *level.Stack
}

// New returns an Engine rendering structure's items through an output.Engine
// writing to w.
func New(reg *registry.Registry, structure *registry.Structure, templates []*output.Template, w io.Writer) *Engine {
	return &Engine{
		Registry:  reg,
		Structure: structure,
		Templates: templates,
		Out:       output.NewEngine(w),
		Writer:    w,
	}
}

// NewFile resets the buffer and level stack for the next input file
// (buffer's B_INIT, init_level) and returns a Parser wired to them and to
// e's output engine.
func (e *Engine) NewFile(sources []io.Reader) *parser.Parser {
	e.Buf = streambuf.New(0, sources)
	e.Stack = &level.Stack{}
	e.Stack.Init(e.Structure.ContentTL)
	return parser.NewParser(e.Buf, e.Stack, e.Structure, e.Registry, e.Out, e.Templates)
}

// DefaultTemplate returns the structure's resolved default print template,
// or nil if it has none (print_file_header/print_file_trailer's bracket).
func (e *Engine) DefaultTemplate() *output.Template {
	if e.Structure.PrintTemplate < 0 || e.Structure.PrintTemplate >= len(e.Templates) {
		return nil
	}
	return e.Templates[e.Structure.PrintTemplate]
}
