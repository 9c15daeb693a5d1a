package parser

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tsavi/tlve/internal/level"
	"github.com/tsavi/tlve/internal/output"
	"github.com/tsavi/tlve/internal/registry"
	"github.com/tsavi/tlve/internal/streambuf"
)

// Parser drives the per-triplet read loop for one already-opened, already
// reset input source: a Byte Buffer, a Level Stack, the active Structure and
// Registry, and the Output Engine items are handed to. Opening files,
// resetting these collaborators between files and finalizing a run belong to
// internal/driver, not here.
type Parser struct {
	Buf       *streambuf.Buffer
	Stack     *level.Stack
	Structure *registry.Structure
	Reg       *registry.Registry
	Out       *output.Engine

	// Templates is the print-template table built by internal/config;
	// registry handles (TLSchema.PrintTemplate, TLVRule.PrintTemplate,
	// Structure.PrintTemplate) index into it.
	Templates []*output.Template
}

// NewParser wires out's level/buffer-state callbacks to stack/buf and
// returns a ready Parser.
func NewParser(buf *streambuf.Buffer, stack *level.Stack, st *registry.Structure, reg *registry.Registry, out *output.Engine, templates []*output.Template) *Parser {
	out.CurrentLevelFn = stack.Depth
	out.BufferOKFn = func() bool { return buf.StateOf() == streambuf.OK }
	return &Parser{Buf: buf, Stack: stack, Structure: st, Reg: reg, Out: out, Templates: templates}
}

// stepResult carries the level-stack transition inputs alongside the
// finished Item, since those (form, content-TL) are parser-internal and
// have no place on output.Item.
type stepResult struct {
	item      *output.Item
	form      level.Form
	contentTL int
}

// Run executes the per-triplet loop (execute()'s inner while) for the
// current input source until it is exhausted, then returns nil. It returns
// an error on any fatal parse failure (mirroring buffer_error's abort
// behavior); the caller still owes a CheckPrematureEOF call afterwards.
func (p *Parser) Run() error {
	for {
		res, err := p.step()
		if err != nil {
			return err
		}
		if res == nil {
			return nil
		}

		item := res.item
		deferredUp := 0

		if item.Kind == output.KindConstructed {
			p.Out.Down(item)
		}
		if item.Kind != output.KindEndOfContents {
			p.Out.AddItem(item)
		}

		switch item.Kind {
		case output.KindConstructed:
			if err := p.Stack.Down(item.Length, res.contentTL, res.form); err != nil {
				return fmt.Errorf("parser: %w", err)
			}
		case output.KindEndOfContents:
			if p.Stack.Current().Form == level.FormIndefinite {
				p.Stack.Up()
				deferredUp = 1
			}
		}

		deferredUp += p.Stack.PopExhausted()

		p.Out.Print(p.templateAt(p.Structure.PrintTemplate), p.Buf.Printed)

		for ; deferredUp > 0; deferredUp-- {
			p.Out.Up()
		}
	}
}

// CheckPrematureEOF reports a fatal error if the source ended while levels
// were still open, naming how many bytes or end-of-content markers were
// still expected (check_premature_eof).
func (p *Parser) CheckPrematureEOF() error {
	waitBytes, hasBytes := p.Stack.FirstUnclosedDefiniteRemaining()
	waitEOC := p.Stack.OpenIndefiniteCount()
	if !hasBytes && waitEOC == 0 {
		return nil
	}
	msg := "unexpected end of file:"
	if hasBytes {
		msg += fmt.Sprintf(" expecting the file to be %d bytes larger", waitBytes)
	}
	if waitEOC > 0 {
		msg += fmt.Sprintf(" expecting the file to have %d end-of-content elements", waitEOC)
	}
	return errors.New(msg)
}

// step parses one triplet, matching parse_tlv. It returns (nil, nil) at a
// clean end of input.
func (p *Parser) step() (*stepResult, error) {
	p.Buf.Flush()
	if p.Buf.EOF() {
		return nil, nil
	}

	p.skipFillers()
	if p.Buf.EOF() {
		return nil, nil
	}

	lvl := p.Stack.Depth()
	fileOffset := p.Buf.FileOffset()
	totalOffset := p.Buf.TotalOffset()

	tl := p.Reg.TL(p.Stack.Current().ContentTL)
	if tl == nil {
		return nil, errors.New("parser: no tl schema bound to the current level")
	}

	t, err := readTL(p.Buf, tl, p.Structure.HexCaps)
	if err != nil {
		return nil, fmt.Errorf("parser: not a valid tag/length at level %d: %w", lvl, err)
	}

	p.Stack.Commit(int64(t.rawTLLength))
	p.Buf.Read(t.rawTLLength)

	path := p.Out.Path()
	rule := p.Structure.MatchTag(t.tag, t.tagNumeric, t.tagNum, path)

	if rule != nil && rule.MaybeConstructor && t.kind != output.KindConstructed {
		if maybeConstructed(p.Buf, p.Stack, tl, t, p.Structure.HexCaps) {
			t.kind = output.KindConstructed
			t.kindKnown = true
		}
	}

	if !t.kindKnown {
		if rule != nil && rule.KindOverride != registry.KindUnset {
			t.kind = mapRegistryKind(rule.KindOverride)
		} else {
			t.kind = output.KindPrimitive
		}
	}

	if rule != nil && rule.FormOverride != registry.FormUnset {
		if rule.FormOverride == registry.FormIndefinite {
			t.form = level.FormIndefinite
		} else {
			t.form = level.FormDefinite
		}
	}

	contentTL := p.Stack.Current().ContentTL
	if rule != nil && rule.ContentTL != registry.NoHandle {
		contentTL = rule.ContentTL
	}

	item := &output.Item{
		Tag:         t.tag,
		Kind:        t.kind,
		Level:       lvl,
		FileOffset:  fileOffset,
		TotalOffset: totalOffset,
		RawTL:       t.rawTL,
		RawTLLength: int64(t.rawTLLength),
		Length:      t.length,
		// RawValueLength mirrors the declared length even for a value that
		// is never read this way (constructed items, or a terminator-based
		// primitive whose real consumed count differs).
		RawValueLength: t.length,
	}
	if rule != nil {
		item.Name = rule.Name
		item.HoldName = rule.HoldName
		item.SourceEncoding = rule.FromEncoding
	}
	item.Template = p.templateAt(p.resolveTemplateHandle(rule, tl))

	if item.Kind == output.KindConstructed {
		return &stepResult{item: item, form: t.form, contentTL: contentTL}, nil
	}

	raw, consumed, err := readValue(p.Buf, tl, rule, t)
	if err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}
	if !p.Stack.EnoughSize(int64(consumed)) {
		return nil, fmt.Errorf("parser: element is larger than space left in parent element (level %d, tag %s)", lvl, t.tag)
	}

	converted, err := decodeValue(raw, rule, tl, p.Reg, t.typeStr, p.Structure.HexCaps)
	if err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}
	item.ConvertedValue = converted
	item.RawValue = raw

	p.Stack.Commit(int64(consumed))
	p.Buf.Read(consumed)

	return &stepResult{item: item, form: t.form, contentTL: contentTL}, nil
}

// skipFillers repeatedly consumes the structure's filler pattern, matching
// skip_fillers.
func (p *Parser) skipFillers() {
	filler := p.Structure.Filler
	if len(filler) == 0 {
		return
	}
	for {
		if !p.Buf.Needed(len(filler)) {
			return
		}
		if !bytes.Equal(p.Buf.Data()[:len(filler)], filler) {
			return
		}
		p.Stack.Commit(int64(len(filler)))
		p.Buf.Read(len(filler))
	}
}

func (p *Parser) resolveTemplateHandle(rule *registry.TLVRule, tl *registry.TLSchema) int {
	if rule != nil && rule.PrintTemplate != registry.NoHandle {
		return rule.PrintTemplate
	}
	if tl.PrintTemplate != registry.NoHandle {
		return tl.PrintTemplate
	}
	return p.Structure.PrintTemplate
}

func (p *Parser) templateAt(handle int) *output.Template {
	if handle == registry.NoHandle || handle < 0 || handle >= len(p.Templates) {
		return nil
	}
	return p.Templates[handle]
}
