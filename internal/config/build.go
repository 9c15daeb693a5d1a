package config

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tsavi/tlve/internal/field"
	"github.com/tsavi/tlve/internal/level"
	"github.com/tsavi/tlve/internal/output"
	"github.com/tsavi/tlve/internal/registry"
)

// Result is everything a loaded configuration produces: the full
// definition registry, the one structure selected by name, and the print
// template table the registry's resolved handles index into.
type Result struct {
	Registry  *registry.Registry
	Structure *registry.Structure
	Templates []*output.Template
}

const (
	stReading = iota
	stStructureReading
	stTypeMapReading
)

// builder accumulates parse_rc's global lists (tl, typemap, print) plus the
// one structure matching wantStructure, converting statements into the
// registry model as they're read.
type builder struct {
	reg           *registry.Registry
	wantStructure string
	printOverride string // -p: force every tl/tlv print template to this name

	state int

	structure *registry.Structure

	templates     []*output.Template
	templateIndex map[string]int

	curTypeMap *registry.TypeMap
}

// Load reads an rc-format configuration stream, keeping only the structure
// named structureName (defaulting to "default"), and, when printName is
// non-empty, forcing the structure's and every tl/tlv definition's print
// template to it,
// matching the -p option (parse_rc).
func Load(r io.Reader, structureName, printName string) (*Result, error) {
	if structureName == "" {
		structureName = "default"
	}

	b := &builder{
		reg:           registry.New(),
		wantStructure: structureName,
		printOverride: printName,
		templateIndex: map[string]int{},
	}

	lx := newLexer(r)
	for {
		raw, ok := lx.readLogicalLine()
		if !ok {
			break
		}
		st, err := parseStatement(raw, lx.line)
		if err != nil {
			return nil, err
		}
		if err := b.dispatch(st); err != nil {
			return nil, fmt.Errorf("config: line %d: %w", st.line, err)
		}
	}

	switch b.state {
	case stStructureReading:
		return nil, fmt.Errorf("config: structure definition has no end keyword")
	case stTypeMapReading:
		return nil, fmt.Errorf("config: typemap definition has no end keyword")
	}
	if b.structure == nil {
		return nil, fmt.Errorf("config: no structure named %q", structureName)
	}

	for _, tl := range b.reg.TLSchemas {
		if tl.DefaultPrintTemplate == "" {
			tl.DefaultPrintTemplate = b.structure.PrintTemplateName
		}
	}

	b.reg.Structures[b.structure.Name] = b.structure

	if err := b.reg.Resolve(b.templateIndex); err != nil {
		return nil, err
	}

	return &Result{Registry: b.reg, Structure: b.structure, Templates: b.templates}, nil
}

func (b *builder) dispatch(st *statement) error {
	switch st.keyword {
	case "structure":
		return b.onStructure(st)
	case "structure-end":
		if b.state == stStructureReading {
			b.state = stReading
		}
		return nil
	case "typemap":
		return b.onTypeMap(st)
	case "typemap-end":
		if b.state != stTypeMapReading {
			return fmt.Errorf("typemap-end keyword found")
		}
		b.state = stReading
		return nil
	case "map":
		return b.onMap(st)
	case "tl":
		return b.onTL(st)
	case "tlv":
		return b.onTLV(st)
	case "print":
		return b.onPrint(st)
	default:
		return fmt.Errorf("unknown keyword %q", st.keyword)
	}
}

func structureName(st *statement) (string, bool) {
	name, ok := st.str("name")
	return name, ok
}

func (b *builder) onStructure(st *statement) error {
	if b.state == stStructureReading {
		return fmt.Errorf("structure keyword in structure definition")
	}
	if b.state != stReading {
		return fmt.Errorf("structure keyword found")
	}

	name, _ := structureName(st)
	if name != b.wantStructure || b.structure != nil {
		return nil
	}

	s := &registry.Structure{
		Name:              name,
		PrintTemplateName: "default",
	}
	if b.printOverride != "" {
		s.PrintTemplateName = b.printOverride
	}

	for _, p := range st.params {
		switch p.name {
		case "print":
			if b.printOverride == "" {
				s.PrintTemplateName = string(p.value)
			}
		case "content-tl":
			s.TLName = string(p.value)
		case "filler":
			s.Filler = append([]byte(nil), p.value...)
		case "name":
			// already consumed above
		case "hex-caps":
			s.HexCaps = string(p.value) == "yes"
		default:
			return fmt.Errorf("unknown parameter for structure %q", p.name)
		}
	}
	if s.TLName == "" {
		return fmt.Errorf("structure must have a tag-length definition name")
	}

	b.structure = s
	b.state = stStructureReading
	return nil
}

func (b *builder) onTypeMap(st *statement) error {
	if b.state != stReading {
		return fmt.Errorf("typemap keyword found")
	}
	tm := &registry.TypeMap{}
	for _, p := range st.params {
		switch p.name {
		case "name":
			tm.Name = string(p.value)
		default:
			return fmt.Errorf("unknown parameter for typemap %q", p.name)
		}
	}
	b.reg.AddTypeMap(tm)
	b.curTypeMap = tm
	b.state = stTypeMapReading
	return nil
}

func (b *builder) onMap(st *statement) error {
	if b.state != stTypeMapReading {
		return fmt.Errorf("map keyword found outside a typemap definition")
	}
	var entry registry.TypeMapEntry
	haveType := false
	for _, p := range st.params {
		switch p.name {
		case "value":
			entry.SourceType = string(p.value)
		case "value-type":
			vt, err := valueTypeToken(string(p.value))
			if err != nil {
				return fmt.Errorf("mapping: %w", err)
			}
			entry.ValueType = vt
			haveType = true
		default:
			return fmt.Errorf("unknown parameter for mapping %q", p.name)
		}
	}
	if !haveType {
		return fmt.Errorf("mapping: value-type is required")
	}
	b.curTypeMap.Entries = append(b.curTypeMap.Entries, entry)
	return nil
}

func (b *builder) onTL(st *statement) error {
	if b.state != stReading {
		return fmt.Errorf("tl must not be defined here")
	}

	tl := &registry.TLSchema{}
	var lengthSet, termSet, tagSet bool
	var termValue []byte

	for _, p := range st.params {
		switch p.name {
		case "name":
			tl.Name = string(p.value)
		case "tag":
			d, err := parseDescriptor(string(p.value))
			if err != nil {
				return err
			}
			tl.Tag = d
			tagSet = true
		case "type":
			d, err := parseDescriptor(string(p.value))
			if err != nil {
				return err
			}
			if d.Encoding == field.EncBER {
				return fmt.Errorf("type cannot be used with ber")
			}
			tl.Type = d
			tl.HasType = true
		case "length":
			d, err := parseDescriptor(string(p.value))
			if err != nil {
				return err
			}
			tl.Length = d
			tl.HasLength = true
			lengthSet = true
		case "print":
			if b.printOverride == "" {
				tl.DefaultPrintTemplate = string(p.value)
			}
		case "value-term":
			termValue = append([]byte(nil), p.value...)
			termSet = true
		case "tl-included":
			switch string(p.value) {
			case "yes":
				tl.TLIncluded = true
			case "no":
				tl.TLIncluded = false
			default:
				return fmt.Errorf("tl: invalid value for tl-included")
			}
		case "type-map":
			tl.TypeMapName = string(p.value)
		default:
			return fmt.Errorf("tl: unknown parameter %q", p.name)
		}
	}

	if tl.Name == "" {
		return fmt.Errorf("tl: a definition must have a name")
	}
	if !tagSet {
		return fmt.Errorf("tl: a definition must have tag definition")
	}
	isBER := tl.Tag.Encoding == field.EncBER
	if !isBER {
		if !lengthSet && !termSet {
			return fmt.Errorf("tl: length or value-terminator must be defined")
		}
		if lengthSet && termSet {
			return fmt.Errorf("tl: length and value-terminator are mutually exclusive")
		}
	}

	if b.printOverride != "" {
		tl.DefaultPrintTemplate = b.printOverride
	}

	if isBER {
		tl.ValueTerminator = []byte{0, 0}
		tl.Form = level.FormIndefinite
		tl.HasLength = false
	} else if termSet {
		tl.ValueTerminator = termValue
		tl.Form = level.FormIndefinite
	} else {
		tl.Form = level.FormDefinite
	}

	b.reg.AddTLSchema(tl)
	return nil
}

func (b *builder) onTLV(st *statement) error {
	if b.state != stStructureReading {
		return nil
	}

	rule := &registry.TLVRule{
		ContentTL:     registry.NoHandle,
		PrintTemplate: registry.NoHandle,
	}
	holdMode := "" // "", "yes" or an explicit hold-variable name

	for _, p := range st.params {
		switch p.name {
		case "path":
			rule.Path = string(p.value)
			if strings.HasPrefix(rule.Path, "*") {
				rule.PathSuffix = true
			}
		case "name":
			rule.Name = string(p.value)
		case "tag":
			if err := setTag(rule, string(p.value), true); err != nil {
				return err
			}
		case "end-tag":
			if err := setTag(rule, string(p.value), false); err != nil {
				return err
			}
		case "form":
			f, err := formToken(string(p.value))
			if err != nil {
				return fmt.Errorf("tlv: %w", err)
			}
			rule.FormOverride = f
		case "type":
			k, err := kindToken(string(p.value))
			if err != nil {
				return fmt.Errorf("tlv: %w", err)
			}
			rule.KindOverride = k
		case "value-type":
			vt, err := valueTypeToken(string(p.value))
			if err != nil {
				return fmt.Errorf("tlv: %w", err)
			}
			rule.ValueType = vt
		case "content-tl":
			rule.ContentTLName = string(p.value)
		case "print":
			if b.printOverride == "" {
				rule.PrintTemplateName = string(p.value)
			}
		case "encoding":
			rule.FromEncoding = string(p.value)
		case "value-length-adjust":
			n, err := strconv.Atoi(string(p.value))
			if err != nil {
				return fmt.Errorf("tlv: invalid value-length-adjust")
			}
			rule.LengthAdjust = n
		case "format":
			rule.Format = string(p.value)
		case "maybe-constructed":
			switch string(p.value) {
			case "yes":
				rule.MaybeConstructor = true
			case "no":
				rule.MaybeConstructor = false
			default:
				return fmt.Errorf("tlv: invalid value for maybe-constructed")
			}
		case "hold":
			holdMode = string(p.value)
		default:
			return fmt.Errorf("tlv: unknown parameter %q", p.name)
		}
	}

	// hold=yes binds to this rule's own name; the name may have appeared
	// after hold= on the line, so resolve it only once the whole line has
	// been read (add_hold_list/add_or_find_hold_list deferred the same way
	// via a post-loop backfill).
	switch {
	case holdMode == "yes":
		rule.HoldName = rule.Name
	case holdMode != "" && holdMode != "no":
		rule.HoldName = holdMode
	}

	if rule.StartTag == "" {
		return fmt.Errorf("tlv: tag missing")
	}
	if rule.EndTag == "" {
		rule.EndTag = rule.StartTag
	}
	if b.printOverride != "" {
		rule.PrintTemplateName = b.printOverride
	}

	// A decimal tag/end-tag pair also gets a numeric range, used by
	// MatchTag when the owning TL schema's tag field is int-be/int-le/
	// uint-be/uint-le (search_tlvlist's int_tag/uint_tag comparison) rather
	// than the byte-string range comparison BER and string tags use.
	if n, err := strconv.ParseUint(rule.StartTag, 10, 64); err == nil {
		if n2, err2 := strconv.ParseUint(rule.EndTag, 10, 64); err2 == nil {
			rule.StartNum, rule.EndNum, rule.Numeric = n, n2, true
		}
	}

	b.structure.Rules = append(b.structure.Rules, rule)
	return nil
}

// setTag stores s, as written, as rule's start tag (or end tag when start is
// false): a BER "class-number" form like "U-2", a plain number or a literal
// byte string. It does not decide numeric comparison; onTLV sets Numeric
// afterwards, only when both tags parse as base-10 integers.
func setTag(rule *registry.TLVRule, s string, start bool) error {
	if start {
		rule.StartTag = s
	} else {
		rule.EndTag = s
	}
	return nil
}

func (b *builder) onPrint(st *statement) error {
	if b.state != stReading {
		return fmt.Errorf("printing definition found")
	}

	t := &output.Template{Content: "%v"}
	var name string

	for _, p := range st.params {
		switch p.name {
		case "name":
			name = string(p.value)
		case "file-start":
			t.FileHead = string(p.value)
		case "file-end":
			t.FileTrailer = string(p.value)
		case "constructor":
			t.LevelHead = string(p.value)
		case "constructor-end":
			t.LevelTrailer = string(p.value)
		case "value":
			t.Content = string(p.value)
		case "uvalue":
			// ucontent in the original: the template used for a tlv that
			// isn't named by the structure ("data to be printed for every
			// tlv which is not named using tlv info", tlve.h). Falls back
			// to Content itself when left unset (parserc.c's
			// "if ucontent == NULL, ucontent = content").
			t.UnnamedContent = string(p.value)
		case "indent":
			t.Indent = string(p.value)
		case "encoding":
			t.Encoding = string(p.value)
		case "separator":
			v := p.value
			if len(v) > 0 {
				t.Separator = v[0]
			}
		case "block-start":
			t.BlockStart = string(p.value)
		case "block-end":
			t.BlockEnd = string(p.value)
		default:
			return fmt.Errorf("print: unknown parameter %q", p.name)
		}
	}
	if name == "" {
		return fmt.Errorf("print: printing definition must have a name")
	}
	t.Name = name

	if idx, exists := b.templateIndex[name]; exists {
		b.templates[idx] = t
		return nil
	}
	idx := len(b.templates)
	b.templates = append(b.templates, t)
	b.templateIndex[name] = idx
	return nil
}
