package surface

import "github.com/loomdoc/loom/internal/engine/doc"

// Range is a half-open byte range [Start, End) in the flat buffer.
type Range struct {
	Start int
	End   int
}

// Len returns the range length in bytes.
func (r Range) Len() int { return r.End - r.Start }

// IsEmpty reports whether the range covers no bytes.
func (r Range) IsEmpty() bool { return r.End <= r.Start }

// Affinity tells the surface which side of a boundary the cursor leans
// toward when a position is ambiguous (e.g. at a line wrap).
type Affinity uint8

const (
	// AffinityForward leans toward the following content.
	AffinityForward Affinity = iota
	// AffinityBackward leans toward the preceding content.
	AffinityBackward
)

// Attributes is the opaque paragraph-level styling payload handed to the
// surface for each dirty block. The core fills in what it knows about the
// block; the surface's theme decides what the values mean visually.
type Attributes struct {
	Type      string
	Direction doc.Direction
	Indent    int
}

// Surface is the rendering surface consumed by reconciler output: a linear
// styled-text buffer plus cursor and composition directives. Edits arrive
// ordered — deletes in reverse buffer order against the previous content,
// then inserts in forward order against the new content.
type Surface interface {
	// Delete removes the given byte range from the buffer.
	Delete(r Range) error

	// Insert places text at the given byte location.
	Insert(location int, text string) error

	// SetCursor places the visible cursor or selection highlight.
	SetCursor(r Range, affinity Affinity) error

	// BeginComposition puts the surface into input-method composition mode
	// over exactly the marked-text range, with the input method's internal
	// selection relative to the marked text. Issued instead of SetCursor
	// when a composition operation is pending, after all edits have been
	// applied.
	BeginComposition(r Range, markedText string, internalSel Range) error

	// ApplyBlockAttributes restyles the paragraph(s) owned by a block
	// node. Invoked for every node whose subtree became dirty plus all of
	// its ancestors.
	ApplyBlockAttributes(key doc.NodeKey, attrs Attributes) error
}

// Handle is an opaque reference to a decorator's native view. The core
// stores and forwards handles; it never looks inside them.
type Handle any

// Registry owns decorator views. The reconciler calls Create when a
// decorator enters the tree, Remove when it leaves and Redecorate when a
// decorator present in both snapshots is dirty.
type Registry interface {
	Create(key doc.NodeKey) (Handle, error)
	Remove(key doc.NodeKey) error
	Redecorate(key doc.NodeKey) error
}
