package doc

// Mode controls how a text node behaves under editing.
type Mode uint8

const (
	// ModeNormal text is freely editable and mergeable.
	ModeNormal Mode = iota
	// ModeToken text is atomic: the caret cannot land inside it and edits
	// delete it whole.
	ModeToken
	// ModeSegmented text is deleted segment-by-segment; splitting it
	// produces brand-new nodes rather than reusing the original key.
	ModeSegmented
	// ModeInert text is not editable at all.
	ModeInert
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeToken:
		return "token"
	case ModeSegmented:
		return "segmented"
	case ModeInert:
		return "inert"
	default:
		return "unknown"
	}
}

// Format is a bit-set of inline formatting flags.
type Format uint16

const (
	FormatBold Format = 1 << iota
	FormatItalic
	FormatUnderline
	FormatStrikethrough
	FormatCode
	FormatSubscript
	FormatSuperscript
)

// Has reports whether all bits in f2 are set.
func (f Format) Has(f2 Format) bool { return f&f2 == f2 }

// Detail is a bit-set of secondary text flags.
type Detail uint8

const (
	// DetailDirectionless text does not participate in direction
	// resolution.
	DetailDirectionless Detail = 1 << iota
	// DetailUnmergeable text is never merged with adjacent siblings during
	// normalization.
	DetailUnmergeable
)

// Has reports whether all bits in d2 are set.
func (d Detail) Has(d2 Detail) bool { return d&d2 == d2 }

// TextNode is a leaf carrying text content.
type TextNode struct {
	baseNode
	text   string
	mode   Mode
	format Format
	style  string
	detail Detail
}

// NewTextNode allocates a text node inside the open transaction. The node
// starts detached.
func NewTextNode(ctx *Context, text string) *TextNode {
	tn := &TextNode{text: text}
	tn.nodeType = "text"
	ctx.adopt(tn)
	return tn
}

// Text returns the node's content.
func (tn *TextNode) Text() string { return tn.text }

// TextLen returns the content length in bytes.
func (tn *TextNode) TextLen() int { return len(tn.text) }

// Mode returns the node's editing mode.
func (tn *TextNode) Mode() Mode { return tn.mode }

// Format returns the node's format bit-set.
func (tn *TextNode) Format() Format { return tn.format }

// Style returns the node's style string.
func (tn *TextNode) Style() string { return tn.style }

// Detail returns the node's detail flags.
func (tn *TextNode) Detail() Detail { return tn.detail }

// IsPlain reports whether the node is normal-mode with no format, style or
// detail flags. Only plain empty nodes are removed by normalization.
func (tn *TextNode) IsPlain() bool {
	return tn.mode == ModeNormal && tn.format == 0 && tn.style == "" && tn.detail == 0
}

// CanInsertAt reports whether new text may be typed into this node. Token,
// segmented and inert text reject caret insertion; the selection layer
// materializes an adjacent plain node instead.
func (tn *TextNode) CanInsertAt() bool { return tn.mode == ModeNormal }

// CanMergeWith reports whether two adjacent siblings are equivalent for
// normalization: identical mode, format and style, and neither marked
// unmergeable.
func (tn *TextNode) CanMergeWith(other *TextNode) bool {
	if tn.detail.Has(DetailUnmergeable) || other.detail.Has(DetailUnmergeable) {
		return false
	}
	return tn.mode == other.mode && tn.format == other.format && tn.style == other.style
}

// SetText replaces the node's content.
func (tn *TextNode) SetText(ctx *Context, text string) error {
	w, err := ctx.writableText(tn.key)
	if err != nil {
		return err
	}
	w.text = text
	return nil
}

// SetMode sets the node's editing mode.
func (tn *TextNode) SetMode(ctx *Context, m Mode) error {
	w, err := ctx.writableText(tn.key)
	if err != nil {
		return err
	}
	w.mode = m
	return nil
}

// SetFormat replaces the node's format bit-set.
func (tn *TextNode) SetFormat(ctx *Context, f Format) error {
	w, err := ctx.writableText(tn.key)
	if err != nil {
		return err
	}
	w.format = f
	return nil
}

// ToggleFormat flips the given format bits.
func (tn *TextNode) ToggleFormat(ctx *Context, f Format) error {
	w, err := ctx.writableText(tn.key)
	if err != nil {
		return err
	}
	w.format ^= f
	return nil
}

// SetStyle sets the node's style string.
func (tn *TextNode) SetStyle(ctx *Context, style string) error {
	w, err := ctx.writableText(tn.key)
	if err != nil {
		return err
	}
	w.style = style
	return nil
}

// SetDetail replaces the node's detail flags.
func (tn *TextNode) SetDetail(ctx *Context, d Detail) error {
	w, err := ctx.writableText(tn.key)
	if err != nil {
		return err
	}
	w.detail = d
	return nil
}

// SpliceText deletes delCount bytes at offset and inserts newText in their
// place. If moveSelection is true, any collapsed selection caret in this
// node collapses to the end of the inserted text; otherwise points inside
// the spliced region are clamped to stay in bounds.
func (tn *TextNode) SpliceText(ctx *Context, offset, delCount int, newText string, moveSelection bool) error {
	if err := ctx.check(); err != nil {
		return err
	}
	if offset < 0 || delCount < 0 || offset+delCount > len(tn.latest(ctx).text) {
		return ErrOffsetOutOfRange
	}
	w, err := ctx.writableText(tn.key)
	if err != nil {
		return err
	}
	w.text = w.text[:offset] + newText + w.text[offset+delCount:]

	end := offset + len(newText)
	delta := len(newText) - delCount
	ctx.adjustTextPoints(tn.key, func(p *Point) {
		switch {
		case moveSelection && p.Offset >= offset && p.Offset <= offset+delCount:
			p.Offset = end
		case p.Offset > offset+delCount:
			p.Offset += delta
		case p.Offset > offset:
			p.Offset = end
		}
	})
	return nil
}

// latest returns the most recent version of the node in the pending
// snapshot, falling back to the receiver for detached nodes.
func (tn *TextNode) latest(ctx *Context) *TextNode {
	if n, ok := ctx.pending.nodes[tn.key]; ok {
		if t, ok := n.(*TextNode); ok {
			return t
		}
	}
	return tn
}

// Kind implements Node.
func (tn *TextNode) Kind() Kind { return KindText }

// Preamble implements Node.
func (tn *TextNode) Preamble(*State) string { return "" }

// TextContent implements Node.
func (tn *TextNode) TextContent() string { return tn.text }

// Postamble implements Node.
func (tn *TextNode) Postamble(*State) string { return "" }

// clone implements Node.
func (tn *TextNode) clone() Node {
	return &TextNode{
		text:   tn.text,
		mode:   tn.mode,
		format: tn.format,
		style:  tn.style,
		detail: tn.detail,
	}
}
