package doc

// Kind identifies the variant of a content node.
type Kind uint8

const (
	// KindElement is an interior node with an ordered list of children.
	KindElement Kind = iota
	// KindText is a leaf carrying text content.
	KindText
	// KindDecorator is a leaf rendered by an externally owned handle.
	KindDecorator
	// KindLineBreak is a leaf contributing only a trailing newline.
	KindLineBreak
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindDecorator:
		return "decorator"
	case KindLineBreak:
		return "linebreak"
	default:
		return "unknown"
	}
}

// ObjectReplacementChar is the placeholder a decorator contributes to the
// flat buffer. The rendering surface overlays the decorator's native view on
// the cell(s) occupied by this character.
const ObjectReplacementChar = "￼"

// Node is the common interface over the four content node kinds.
//
// Content-segment production (Preamble, TextContent, Postamble) is the small
// capability each kind implements for the reconciler: a node's contribution
// to the flat buffer is preamble + children + text + postamble, in that
// order. Preamble and postamble may depend on adjacency, so they take the
// snapshot the node belongs to.
type Node interface {
	// Key returns the node's stable identity.
	Key() NodeKey

	// ParentKey returns the key of the node's parent, or "" if detached.
	ParentKey() NodeKey

	// Kind returns the node's variant tag.
	Kind() Kind

	// Type returns the registered type tag used for constructor lookup
	// (e.g. "paragraph", "text", "linebreak").
	Type() string

	// Version returns the node's clone generation. It increases by one each
	// time a transaction clones the node for writing.
	Version() int

	// Preamble returns the text fragment the node contributes before its
	// children and text content.
	Preamble(st *State) string

	// TextContent returns the node's own text contribution. Elements
	// return "" (their children carry the text).
	TextContent() string

	// Postamble returns the text fragment the node contributes after its
	// children and text content.
	Postamble(st *State) string

	// clone copies kind-specific fields only. Identity, parent linkage and
	// child lists are copied by the store so new node kinds do not need to
	// reimplement the structural contract.
	clone() Node

	base() *baseNode
}

// baseNode carries the fields shared by every node kind.
type baseNode struct {
	key      NodeKey
	parent   NodeKey
	nodeType string
	version  int
}

func (b *baseNode) Key() NodeKey       { return b.key }
func (b *baseNode) ParentKey() NodeKey { return b.parent }
func (b *baseNode) Type() string       { return b.nodeType }
func (b *baseNode) Version() int       { return b.version }

func (b *baseNode) base() *baseNode { return b }
