// Package registry implements the Definition Registry component (§4.7): the
// configuration model for TL schemas, TLV rules, print templates and type
// maps, with tag lookup caching and path qualification.
package registry

import (
	"github.com/tsavi/tlve/internal/field"
	"github.com/tsavi/tlve/internal/level"
	"github.com/tsavi/tlve/internal/value"
)

// NoHandle marks an unset reference into one of the registry's tables.
const NoHandle = -1

// TypeMapEntry is one (source-type-string -> value-type) pair.
type TypeMapEntry struct {
	SourceType string
	ValueType  value.Type
}

// TypeMap is an ordered list of TypeMapEntry, looked up by name.
type TypeMap struct {
	Name    string
	Entries []TypeMapEntry
}

// Resolve returns the value-type mapped from sourceType, and whether a
// mapping was found.
func (m *TypeMap) Resolve(sourceType string) (value.Type, bool) {
	if m == nil {
		return 0, false
	}
	for _, e := range m.Entries {
		if e.SourceType == sourceType {
			return e.ValueType, true
		}
	}
	return 0, false
}

// TLSchema is a named triple of Field Descriptors describing how to read a
// triplet's tag, optional type, and length or value-terminator (§3).
type TLSchema struct {
	Name string

	Tag field.Descriptor

	HasType bool
	Type    field.Descriptor

	HasLength       bool
	Length          field.Descriptor
	ValueTerminator []byte // used when HasLength is false

	TLIncluded bool       // length counts the tag/length bytes
	Form       level.Form // definite if Length used, indefinite if terminator used

	DefaultPrintTemplate string // resolved print template name
	TypeMapName          string // resolved type map name, "" if none

	// Resolved handles, populated by Resolve.
	PrintTemplate int
	TypeMapHandle int
}

// TLVRule is a declarative matcher for one recognized tag or tag range
// (§3).
type TLVRule struct {
	StartTag, EndTag string
	Numeric          bool // compare StartNum/EndNum instead of string range
	StartNum, EndNum uint64

	Path       string // "" means unconstrained
	PathSuffix bool   // true for "*suffix" patterns

	Name string

	ContentTLName string // "" means inherit from parent
	ContentTL     int    // resolved handle, NoHandle if ContentTLName == ""

	KindOverride     Kind // KindUnset if not specified
	MaybeConstructor bool
	FormOverride     FormOverride

	ValueType    value.Type
	FromEncoding string
	ToEncoding   string
	Format       string
	LengthAdjust int

	PrintTemplateName string
	PrintTemplate     int // resolved handle, NoHandle for structure default

	HoldName string // "" means no hold binding
}

// Kind mirrors berx.Kind plus an "unset" sentinel for rules that don't
// override the codec-provided kind.
type Kind int

const (
	KindUnset Kind = iota
	KindConstructed
	KindPrimitive
	KindEndOfContents
)

// FormOverride mirrors level.Form plus an "unset" sentinel.
type FormOverride int

const (
	FormUnset FormOverride = iota
	FormDefinite
	FormIndefinite
)

// Structure is the root container referencing one TL schema, an ordered
// list of TLV rules, a filler pattern, and formatting defaults (§3).
type Structure struct {
	Name string

	PrintTemplateName string
	PrintTemplate     int

	TLName    string
	ContentTL int

	Rules []*TLVRule

	Filler  []byte
	HexCaps bool

	cache *lookupCache
}

// Registry bundles the full, resolved configuration model: every named TL
// schema and type map, plus the named structures a run can select with -s.
type Registry struct {
	TLSchemas  []*TLSchema
	TLByName   map[string]int
	TypeMaps   []*TypeMap
	TypeByName map[string]int
	Structures map[string]*Structure
}

// New returns an empty Registry ready to be populated by the config loader.
func New() *Registry {
	return &Registry{
		TLByName:   map[string]int{},
		TypeByName: map[string]int{},
		Structures: map[string]*Structure{},
	}
}

// AddTLSchema registers a TL schema and returns its handle.
func (r *Registry) AddTLSchema(tl *TLSchema) int {
	idx := len(r.TLSchemas)
	r.TLSchemas = append(r.TLSchemas, tl)
	r.TLByName[tl.Name] = idx
	return idx
}

// AddTypeMap registers a type map and returns its handle.
func (r *Registry) AddTypeMap(m *TypeMap) int {
	idx := len(r.TypeMaps)
	r.TypeMaps = append(r.TypeMaps, m)
	r.TypeByName[m.Name] = idx
	return idx
}

// TL returns the TL schema for handle h, or nil if h is NoHandle.
func (r *Registry) TL(h int) *TLSchema {
	if h == NoHandle || h < 0 || h >= len(r.TLSchemas) {
		return nil
	}
	return r.TLSchemas[h]
}

// TypeMapAt returns the type map for handle h, or nil.
func (r *Registry) TypeMapAt(h int) *TypeMap {
	if h == NoHandle || h < 0 || h >= len(r.TypeMaps) {
		return nil
	}
	return r.TypeMaps[h]
}
