package surface

import (
	"errors"

	"github.com/loomdoc/loom/internal/engine/doc"
)

// Errors returned by TextBuffer operations.
var (
	ErrRangeInvalid    = errors.New("invalid buffer range")
	ErrLocationInvalid = errors.New("location out of range")
)

// TextBuffer is an in-memory rendering surface: a plain linear buffer with
// cursor, composition and block-attribute bookkeeping. Tests use it to
// assert that the incrementally reconciled buffer matches a full rebuild;
// terminal frontends wrap it as their text store.
type TextBuffer struct {
	text        string
	cursor      Range
	affinity    Affinity
	composing   bool
	composition Range
	markedText  string
	blockAttrs  map[doc.NodeKey]Attributes
}

// NewTextBuffer creates an empty buffer.
func NewTextBuffer() *TextBuffer {
	return &TextBuffer{blockAttrs: make(map[doc.NodeKey]Attributes)}
}

// Text returns the buffer content.
func (b *TextBuffer) Text() string { return b.text }

// Len returns the buffer length in bytes.
func (b *TextBuffer) Len() int { return len(b.text) }

// Cursor returns the last cursor directive.
func (b *TextBuffer) Cursor() (Range, Affinity) { return b.cursor, b.affinity }

// IsComposing reports whether the buffer is in composition mode.
func (b *TextBuffer) IsComposing() bool { return b.composing }

// CompositionRange returns the active marked-text range.
func (b *TextBuffer) CompositionRange() Range { return b.composition }

// MarkedText returns the active marked text.
func (b *TextBuffer) MarkedText() string { return b.markedText }

// BlockAttributes returns the last attributes applied for a block key.
func (b *TextBuffer) BlockAttributes(key doc.NodeKey) (Attributes, bool) {
	attrs, ok := b.blockAttrs[key]
	return attrs, ok
}

// Delete implements Surface.
func (b *TextBuffer) Delete(r Range) error {
	if r.Start < 0 || r.Start > r.End || r.End > len(b.text) {
		return ErrRangeInvalid
	}
	b.text = b.text[:r.Start] + b.text[r.End:]
	return nil
}

// Insert implements Surface.
func (b *TextBuffer) Insert(location int, text string) error {
	if location < 0 || location > len(b.text) {
		return ErrLocationInvalid
	}
	b.text = b.text[:location] + text + b.text[location:]
	return nil
}

// SetCursor implements Surface.
func (b *TextBuffer) SetCursor(r Range, affinity Affinity) error {
	if r.Start < 0 || r.Start > r.End || r.End > len(b.text) {
		return ErrRangeInvalid
	}
	b.cursor = r
	b.affinity = affinity
	b.composing = false
	return nil
}

// BeginComposition implements Surface.
func (b *TextBuffer) BeginComposition(r Range, markedText string, internalSel Range) error {
	if r.Start < 0 || r.Start > r.End || r.End > len(b.text) {
		return ErrRangeInvalid
	}
	b.composing = true
	b.composition = r
	b.markedText = markedText
	b.cursor = Range{Start: r.Start + internalSel.Start, End: r.Start + internalSel.End}
	return nil
}

// ApplyBlockAttributes implements Surface.
func (b *TextBuffer) ApplyBlockAttributes(key doc.NodeKey, attrs Attributes) error {
	b.blockAttrs[key] = attrs
	return nil
}
