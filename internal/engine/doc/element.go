package doc

// Direction is the text direction of an element.
type Direction string

const (
	// DirectionNeutral means the element has no explicit direction.
	DirectionNeutral Direction = ""
	// DirectionLTR is left-to-right.
	DirectionLTR Direction = "ltr"
	// DirectionRTL is right-to-left.
	DirectionRTL Direction = "rtl"
)

// ElementNode is an interior node with an ordered list of child keys.
// Child order is document order; a key appears at most once.
type ElementNode struct {
	baseNode
	children      []NodeKey
	direction     Direction
	indent        int
	inline        bool
	preserveEmpty bool
}

// NewElementNode allocates a block element of the given type inside the open
// transaction. The node starts detached; attach it with AppendChild or
// InsertBefore/InsertAfter.
func NewElementNode(ctx *Context, nodeType string) *ElementNode {
	el := &ElementNode{}
	el.nodeType = nodeType
	ctx.adopt(el)
	return el
}

// NewInlineElementNode allocates an inline element (e.g. a link). Inline
// elements contribute no block postamble.
func NewInlineElementNode(ctx *Context, nodeType string) *ElementNode {
	el := NewElementNode(ctx, nodeType)
	el.inline = true
	return el
}

// ChildKeys returns the element's children in document order. The returned
// slice is owned by the node and must not be mutated by callers.
func (el *ElementNode) ChildKeys() []NodeKey { return el.children }

// ChildCount returns the number of children.
func (el *ElementNode) ChildCount() int { return len(el.children) }

// IndexOfChild returns the position of key in the child list, or -1.
func (el *ElementNode) IndexOfChild(key NodeKey) int {
	for i, k := range el.children {
		if k == key {
			return i
		}
	}
	return -1
}

// IsInline reports whether the element flows inline with text.
func (el *ElementNode) IsInline() bool { return el.inline }

// Direction returns the element's text direction.
func (el *ElementNode) Direction() Direction { return el.direction }

// Indent returns the element's indent level.
func (el *ElementNode) Indent() int { return el.indent }

// PreservesEmpty reports whether the element may remain in the tree with no
// children. Elements that do not are cascade-removed when their last child
// is detached.
func (el *ElementNode) PreservesEmpty() bool { return el.preserveEmpty }

// SetDirection sets the element's text direction. The receiver must be a
// writable clone obtained from the transaction.
func (el *ElementNode) SetDirection(ctx *Context, d Direction) error {
	w, err := ctx.writableElement(el.key)
	if err != nil {
		return err
	}
	w.direction = d
	return nil
}

// SetIndent sets the element's indent level.
func (el *ElementNode) SetIndent(ctx *Context, indent int) error {
	w, err := ctx.writableElement(el.key)
	if err != nil {
		return err
	}
	w.indent = indent
	return nil
}

// SetPreservesEmpty marks the element as allowed to be empty.
func (el *ElementNode) SetPreservesEmpty(ctx *Context, preserve bool) error {
	w, err := ctx.writableElement(el.key)
	if err != nil {
		return err
	}
	w.preserveEmpty = preserve
	return nil
}

// Kind implements Node.
func (el *ElementNode) Kind() Kind { return KindElement }

// Preamble implements Node. Elements contribute nothing before their
// children.
func (el *ElementNode) Preamble(*State) string { return "" }

// TextContent implements Node. An element's text lives in its children.
func (el *ElementNode) TextContent() string { return "" }

// Postamble implements Node. A block element is separated from a following
// sibling by a newline; the last child of its parent contributes nothing, so
// the flat buffer carries no trailing newline. Inline elements contribute
// nothing either way.
func (el *ElementNode) Postamble(st *State) string {
	if el.inline {
		return ""
	}
	if st.nextSibling(el.key) == "" {
		return ""
	}
	return "\n"
}

// clone implements Node. Children and parent linkage are copied by the
// store.
func (el *ElementNode) clone() Node {
	return &ElementNode{
		direction:     el.direction,
		indent:        el.indent,
		inline:        el.inline,
		preserveEmpty: el.preserveEmpty,
	}
}
