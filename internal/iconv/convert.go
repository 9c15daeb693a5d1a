// Package iconv implements the recode boundary (§4.8) that internal/output
// calls through to translate a decoded value between two
// named character sets. It resolves encoding names through
// golang.org/x/text/encoding/ianaindex (IANA/MIME names such as
// "ISO-8859-1", "UTF-8", "windows-1252") falling back to
// golang.org/x/text/encoding/charmap for names ianaindex does not carry.
package iconv

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// Converter caches the last resolved (from, to) encoding pair, mirroring the
// original tool's single cached iconv_t descriptor: repeated conversions
// between the same two character sets skip the lookup.
type Converter struct {
	prevFrom, prevTo string
	fromEnc, toEnc   encoding.Encoding
	resolved         bool
}

// New returns a ready Converter.
func New() *Converter {
	return &Converter{}
}

// Convert translates data, read as the from character set, into the to
// character set.
func (c *Converter) Convert(data []byte, from, to string) ([]byte, error) {
	if from == to {
		return data, nil
	}

	if !c.resolved || from != c.prevFrom || to != c.prevTo {
		fromEnc, err := lookup(from)
		if err != nil {
			return nil, fmt.Errorf("iconv: %w", err)
		}
		toEnc, err := lookup(to)
		if err != nil {
			return nil, fmt.Errorf("iconv: %w", err)
		}
		c.fromEnc, c.toEnc = fromEnc, toEnc
		c.prevFrom, c.prevTo = from, to
		c.resolved = true
	}

	unicode, err := c.fromEnc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("iconv: %s -> %s: %w", from, to, err)
	}
	out, err := c.toEnc.NewEncoder().Bytes(unicode)
	if err != nil {
		return nil, fmt.Errorf("iconv: %s -> %s: %w", from, to, err)
	}
	return out, nil
}

// lookup resolves a character-set name to an encoding.Encoding, trying
// ianaindex's MIME registry first and falling back to the charmap name
// table for names ianaindex doesn't carry (e.g. a handful of IBM code
// pages the legacy config files in the wild still use).
func lookup(name string) (encoding.Encoding, error) {
	if enc, err := ianaindex.MIME.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	for _, cm := range charmap.All {
		if named, ok := cm.(fmt.Stringer); ok && named.String() == name {
			return cm, nil
		}
	}
	return nil, fmt.Errorf("unknown character set %q", name)
}
