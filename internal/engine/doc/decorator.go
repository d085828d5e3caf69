package doc

// DecoratorNode is a leaf rendered by an externally owned handle (an
// embedded image, video or widget). It carries no text content of its own;
// its buffer contribution is a single object-replacement character the
// rendering surface decorates.
type DecoratorNode struct {
	baseNode
	payload string
	inline  bool
}

// NewDecoratorNode allocates a decorator of the given type inside the open
// transaction. The payload is opaque to the core; the decorator registry
// interprets it when creating the native view.
func NewDecoratorNode(ctx *Context, nodeType, payload string) *DecoratorNode {
	dn := &DecoratorNode{payload: payload, inline: true}
	dn.nodeType = nodeType
	ctx.adopt(dn)
	return dn
}

// Payload returns the decorator's opaque payload.
func (dn *DecoratorNode) Payload() string { return dn.payload }

// SetPayload replaces the payload. The reconciler schedules a redecorate
// call for the node in the next pass.
func (dn *DecoratorNode) SetPayload(ctx *Context, payload string) error {
	w, err := ctx.writable(dn.key)
	if err != nil {
		return err
	}
	w.(*DecoratorNode).payload = payload
	return nil
}

// Kind implements Node.
func (dn *DecoratorNode) Kind() Kind { return KindDecorator }

// Preamble implements Node.
func (dn *DecoratorNode) Preamble(*State) string { return ObjectReplacementChar }

// TextContent implements Node.
func (dn *DecoratorNode) TextContent() string { return "" }

// Postamble implements Node.
func (dn *DecoratorNode) Postamble(*State) string { return "" }

// clone implements Node.
func (dn *DecoratorNode) clone() Node {
	return &DecoratorNode{payload: dn.payload, inline: dn.inline}
}

// LineBreakNode is a leaf contributing only a trailing newline.
type LineBreakNode struct {
	baseNode
}

// NewLineBreakNode allocates a line break inside the open transaction.
func NewLineBreakNode(ctx *Context) *LineBreakNode {
	ln := &LineBreakNode{}
	ln.nodeType = "linebreak"
	ctx.adopt(ln)
	return ln
}

// Kind implements Node.
func (ln *LineBreakNode) Kind() Kind { return KindLineBreak }

// Preamble implements Node.
func (ln *LineBreakNode) Preamble(*State) string { return "" }

// TextContent implements Node.
func (ln *LineBreakNode) TextContent() string { return "" }

// Postamble implements Node.
func (ln *LineBreakNode) Postamble(*State) string { return "\n" }

// clone implements Node.
func (ln *LineBreakNode) clone() Node { return &LineBreakNode{} }
