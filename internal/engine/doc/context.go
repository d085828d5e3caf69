package doc

// Composition describes an in-progress input-method edit: marked text that
// the rendering surface must cover with a single atomic composition
// directive so the input method's internal state never desyncs from the
// visible buffer.
type Composition struct {
	// Key is the text node hosting the marked text.
	Key NodeKey
	// Offset is the byte offset of the marked text within the node.
	Offset int
	// Text is the marked text content.
	Text string
	// SelStart and SelEnd are the input method's internal selection,
	// relative to the start of the marked text.
	SelStart int
	SelEnd   int
}

// Context is the transaction scope through which all tree mutation flows.
// It is valid only for the duration of the enclosing update call; every
// mutation API fails fast when invoked outside that window. Exactly one
// Context may be open per document at a time; nested update calls flatten
// into the same Context.
type Context struct {
	prev        *State
	pending     *State
	keys        KeyFunc
	cloned      map[NodeKey]struct{}
	dirty       map[NodeKey]struct{}
	composition *Composition
	active      bool
}

// Begin opens a transaction over a committed snapshot. The pending snapshot
// starts as a shallow copy: every node is shared with prev until first
// mutated, at which point it is cloned exactly once for the transaction.
func Begin(prev *State, keys KeyFunc) (*Context, error) {
	if !prev.frozen {
		return nil, ErrStateNotCommitted
	}
	nodes := make(map[NodeKey]Node, len(prev.nodes))
	for k, n := range prev.nodes {
		nodes[k] = n
	}
	pending := &State{nodes: nodes}
	if prev.selection != nil {
		pending.selection = prev.selection.Clone()
	}
	return &Context{
		prev:    prev,
		pending: pending,
		keys:    keys,
		cloned:  make(map[NodeKey]struct{}),
		dirty:   make(map[NodeKey]struct{}),
		active:  true,
	}, nil
}

// check returns the usage error preventing mutation, if any.
func (c *Context) check() error {
	if c == nil || !c.active {
		return ErrNoTransaction
	}
	if c.pending.frozen {
		return ErrStateFrozen
	}
	return nil
}

// State returns the pending snapshot. It remains mutable until Commit.
func (c *Context) State() *State { return c.pending }

// Prev returns the committed snapshot the transaction started from.
func (c *Context) Prev() *State { return c.prev }

// Active reports whether the transaction is still open.
func (c *Context) Active() bool { return c.active }

// Dirty returns the set of keys mutated in this transaction. The map is
// owned by the context; callers must treat it as read-only.
func (c *Context) Dirty() map[NodeKey]struct{} { return c.dirty }

// HasDirty reports whether any node was mutated.
func (c *Context) HasDirty() bool { return len(c.dirty) > 0 }

// Node returns the latest version of the node for key.
func (c *Context) Node(key NodeKey) (Node, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	n, ok := c.pending.nodes[key]
	if !ok {
		return nil, ErrNodeNotFound
	}
	return n, nil
}

// Element returns the latest version of the node for key as an element.
func (c *Context) Element(key NodeKey) (*ElementNode, error) {
	n, err := c.Node(key)
	if err != nil {
		return nil, err
	}
	el, ok := n.(*ElementNode)
	if !ok {
		return nil, ErrNotElementNode
	}
	return el, nil
}

// Text returns the latest version of the node for key as a text node.
func (c *Context) Text(key NodeKey) (*TextNode, error) {
	n, err := c.Node(key)
	if err != nil {
		return nil, err
	}
	tn, ok := n.(*TextNode)
	if !ok {
		return nil, ErrNotTextNode
	}
	return tn, nil
}

// Writable returns a mutable clone of the latest version of the node. The
// first call in a transaction clones the node and marks it dirty; later
// calls return the same clone without re-cloning.
func (c *Context) Writable(key NodeKey) (Node, error) {
	return c.writable(key)
}

func (c *Context) writable(key NodeKey) (Node, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	n, ok := c.pending.nodes[key]
	if !ok {
		return nil, ErrNodeNotFound
	}
	if _, done := c.cloned[key]; done {
		c.markDirty(key)
		return n, nil
	}
	cl := n.clone()
	// The store owns identity, parent linkage and child lists; node kinds
	// clone content fields only.
	*cl.base() = *n.base()
	cl.base().version++
	if el, ok := n.(*ElementNode); ok {
		cl.(*ElementNode).children = append([]NodeKey(nil), el.children...)
	}
	c.pending.nodes[key] = cl
	c.cloned[key] = struct{}{}
	c.markDirty(key)
	return cl, nil
}

func (c *Context) writableElement(key NodeKey) (*ElementNode, error) {
	n, err := c.writable(key)
	if err != nil {
		return nil, err
	}
	el, ok := n.(*ElementNode)
	if !ok {
		return nil, ErrNotElementNode
	}
	return el, nil
}

func (c *Context) writableText(key NodeKey) (*TextNode, error) {
	n, err := c.writable(key)
	if err != nil {
		return nil, err
	}
	tn, ok := n.(*TextNode)
	if !ok {
		return nil, ErrNotTextNode
	}
	return tn, nil
}

// markDirty records that the node needs re-reconciliation.
func (c *Context) markDirty(key NodeKey) {
	c.dirty[key] = struct{}{}
}

// adopt registers a freshly constructed node with the pending snapshot,
// assigning its key. Constructing nodes outside an open transaction is a
// programming error and fails fast.
func (c *Context) adopt(n Node) {
	if err := c.check(); err != nil {
		invariantf("adopt", "", "node constructed outside transaction: %v", err)
	}
	b := n.base()
	b.key = c.keys()
	b.version = 1
	if _, exists := c.pending.nodes[b.key]; exists {
		invariantf("adopt", b.key, "key generator returned duplicate key")
	}
	c.pending.nodes[b.key] = n
	c.cloned[b.key] = struct{}{}
	c.markDirty(b.key)
}

// Selection returns the pending selection, or nil.
func (c *Context) Selection() Selection { return c.pending.selection }

// RangeSel returns the pending selection as a RangeSelection.
func (c *Context) RangeSel() (*RangeSelection, error) {
	sel, ok := c.pending.selection.(*RangeSelection)
	if !ok {
		return nil, ErrSelectionMismatch
	}
	return sel, nil
}

// SetSelection replaces the pending selection. Passing nil clears it.
func (c *Context) SetSelection(sel Selection) error {
	if err := c.check(); err != nil {
		return err
	}
	c.pending.selection = sel
	if sel != nil {
		sel.markDirty()
	}
	return nil
}

// SetComposition installs (or, with nil, clears) the pending composition
// operation for the next reconcile pass.
func (c *Context) SetComposition(comp *Composition) error {
	if err := c.check(); err != nil {
		return err
	}
	c.composition = comp
	return nil
}

// Composition returns the pending composition operation, or nil.
func (c *Context) Composition() *Composition { return c.composition }

// adjustPoints runs the selection-owned point repair hook over the pending
// range selection, if there is one. fn reports whether it changed the
// point; any change marks the selection dirty.
func (c *Context) adjustPoints(fn func(p *Point) bool) {
	if sel, ok := c.pending.selection.(*RangeSelection); ok {
		sel.eachPoint(fn)
	}
}

// adjustTextPoints applies mutate to every selection point addressing a
// text offset in the given node.
func (c *Context) adjustTextPoints(key NodeKey, mutate func(*Point)) {
	c.adjustPoints(func(p *Point) bool {
		if p.Kind != PointText || p.Key != key {
			return false
		}
		before := *p
		mutate(p)
		return *p != before
	})
}

// adjustElementPoints shifts child-index points in parent at or after index
// by delta, keeping them valid across a child-list splice.
func (c *Context) adjustElementPoints(parent NodeKey, index, delta int) {
	c.adjustPoints(func(p *Point) bool {
		if p.Kind != PointElement || p.Key != parent || p.Offset < index {
			return false
		}
		p.Offset += delta
		if p.Offset < 0 {
			p.Offset = 0
		}
		return true
	})
}

// Commit validates, garbage-collects and freezes the pending snapshot,
// closing the transaction. On failure the previously committed snapshot is
// untouched and remains current.
func (c *Context) Commit() (st *State, err error) {
	defer RecoverInvariant(&err)
	if !c.active {
		return nil, ErrNoTransaction
	}
	c.pending.collectGarbage()
	if sel := c.pending.selection; sel != nil && !sel.Valid(c.pending) {
		invariantf("Commit", "", "selection references missing node or out-of-bounds offset")
	}
	c.pending.frozen = true
	c.active = false
	return c.pending, nil
}

// Abort closes the transaction and discards the pending snapshot.
func (c *Context) Abort() {
	c.active = false
}
