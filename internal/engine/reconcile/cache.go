package reconcile

import "github.com/loomdoc/loom/internal/engine/doc"

// CacheItem records where a node's content lives in the flattened buffer: a
// start location plus the lengths of the four segments the node
// contributes, in buffer order (preamble, children, text, postamble).
type CacheItem struct {
	Location     int
	PreambleLen  int
	ChildrenLen  int
	TextLen      int
	PostambleLen int
}

// TotalLen returns the full byte length of the node's buffer slice.
func (it CacheItem) TotalLen() int {
	return it.PreambleLen + it.ChildrenLen + it.TextLen + it.PostambleLen
}

// End returns the buffer location immediately after the node's slice. It
// equals the Location of the node's next sibling, or the end of the
// parent's children region for a last child.
func (it CacheItem) End() int { return it.Location + it.TotalLen() }

// TextStart returns the buffer location of the node's own text segment.
func (it CacheItem) TextStart() int {
	return it.Location + it.PreambleLen + it.ChildrenLen
}

// Cache maps node keys to their buffer slices for one committed snapshot.
type Cache map[doc.NodeKey]CacheItem
