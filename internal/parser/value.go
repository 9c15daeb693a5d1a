package parser

import (
	"errors"

	"github.com/tsavi/tlve/internal/field"
	"github.com/tsavi/tlve/internal/level"
	"github.com/tsavi/tlve/internal/registry"
	"github.com/tsavi/tlve/internal/streambuf"
	"github.com/tsavi/tlve/internal/value"
)

var errTerminatorNotFound = errors.New("terminating string was not found for a terminated value")
var errValueTruncated = errors.New("file does not contain enough data to read a value")

// readValue reads t's value bytes out of buf, returning the bytes to decode
// (after length-adjust) and the number of bytes to actually advance the
// buffer by. The two can differ: length-adjust only ever changes how many
// bytes get rendered, never how many are physically consumed (read_value).
func readValue(buf *streambuf.Buffer, tl *registry.TLSchema, rule *registry.TLVRule, t *triplet) (decodeBytes []byte, consumed int, err error) {
	var length int64

	if t.form == level.FormIndefinite {
		idx := searchFrom(buf, 0, tl.ValueTerminator)
		if idx < 0 {
			return nil, 0, errTerminatorNotFound
		}
		length = int64(idx)
		consumed = idx + len(tl.ValueTerminator)
	} else {
		length = t.length
		consumed = int(t.length)
	}

	if !buf.Needed(consumed) {
		return nil, 0, errValueTruncated
	}

	adjusted := length
	if rule != nil && rule.LengthAdjust != 0 {
		if rule.LengthAdjust > 0 {
			adjusted += int64(rule.LengthAdjust)
		} else if int64(-rule.LengthAdjust) <= length {
			adjusted += int64(rule.LengthAdjust)
		}
	}
	if adjusted < 0 {
		adjusted = 0
	}

	window := ensure(buf, int(adjusted))
	if int64(len(window)) < adjusted {
		adjusted = int64(len(window)) // defensive clamp: never slice past the buffered window
	}

	return window[:adjusted], consumed, nil
}

// resolveValueType picks the value-type for an item, per read_value: the
// matched rule's declared type, falling back to the TL schema's type map
// (keyed by the item's own type-field text) only when the rule left the
// type unknown.
func resolveValueType(rule *registry.TLVRule, tl *registry.TLSchema, reg *registry.Registry, typeStr string) value.Type {
	vt := value.TypeUnknown
	if rule != nil {
		vt = rule.ValueType
	}
	if vt == value.TypeUnknown && tl.TypeMapHandle != registry.NoHandle {
		if mapped, ok := reg.TypeMapAt(tl.TypeMapHandle).Resolve(typeStr); ok {
			vt = mapped
		}
	}
	return vt
}

// decodeValue renders raw per the resolved value-type and rule formatting.
func decodeValue(raw []byte, rule *registry.TLVRule, tl *registry.TLSchema, reg *registry.Registry, typeStr string, hexCaps bool) (string, error) {
	vt := resolveValueType(rule, tl, reg, typeStr)

	opts := value.Options{
		HexCaps:   hexCaps,
		BERSource: tl.Tag.Encoding == field.EncBER,
	}
	if rule != nil {
		opts.Format = rule.Format
		opts.LengthAdjust = rule.LengthAdjust
	}

	return value.Decode(raw, vt, opts)
}
