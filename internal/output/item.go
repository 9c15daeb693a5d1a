package output

// Kind classifies a rendered item the way the TLV Parser saw it.
type Kind int

const (
	KindPrimitive Kind = iota
	KindConstructed
	KindEndOfContents
)

// Item is everything the template directives, hold table and expression
// filter need about one parsed triplet. The parser builds one per triplet
// and hands it to Engine.Down/AddItem; this package never reaches back into
// internal/registry or internal/parser.
type Item struct {
	Name string // declared tlv rule name, "" if the rule left it unnamed
	Tag  string

	Kind  Kind
	Level int

	Length         int64
	RawTLLength    int64
	RawValueLength int64
	FileOffset     int64
	TotalOffset    int64

	ConvertedValue string
	RawTL          []byte
	RawValue       []byte

	// SourceEncoding is the item's own declared wire encoding, used as the
	// "from" side of %v/%T recode. "" means no recode is possible.
	SourceEncoding string

	// Template is the print template resolved for this item: the owning
	// tlv rule's override if it has one, else the TL schema's default.
	Template *Template

	// HoldName is the hold variable this item updates once processed, ""
	// for none.
	HoldName string
}

// itemName returns item's display name: its declared Name, or the tag bracketed
// in "[...]" when the owning rule left it unnamed.
func itemName(i *Item) string {
	if i.Name != "" {
		return i.Name
	}
	return string(tagPrefix) + i.Tag + string(tagTrailer)
}
