package reconcile

import (
	"errors"
	"sort"

	"github.com/loomdoc/loom/internal/engine/doc"
	"github.com/loomdoc/loom/internal/engine/surface"
)

// Errors returned by reconciler operations.
var (
	// ErrNotMounted is returned when Run is called before Mount.
	ErrNotMounted = errors.New("reconciler not mounted")

	// ErrSanityCheck is returned when the debug sanity check finds the
	// incrementally produced buffer diverging from a full rebuild.
	ErrSanityCheck = errors.New("incremental buffer diverged from full rebuild")
)

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithSanityCheck enables the debug-only full-rebuild comparison: every run
// is replayed against a shadow buffer and byte-compared with a rebuild of
// the new snapshot from scratch.
func WithSanityCheck() Option {
	return func(r *Reconciler) {
		r.shadow = surface.NewTextBuffer()
	}
}

// Reconciler diffs consecutive document snapshots and patches a rendering
// surface to match. It owns the range cache describing where each node's
// content lives in the flat buffer.
type Reconciler struct {
	surf    surface.Surface
	reg     surface.Registry
	cache   Cache
	mounted bool
	shadow  *surface.TextBuffer
}

// New creates a reconciler writing to surf and driving decorator lifecycle
// through reg.
func New(surf surface.Surface, reg surface.Registry, opts ...Option) *Reconciler {
	r := &Reconciler{surf: surf, reg: reg}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cache returns the committed range cache. Callers must treat it as
// read-only.
func (r *Reconciler) Cache() Cache { return r.cache }

// Mount performs the initial full build of a snapshot into an empty
// surface, seeding the range cache.
func (r *Reconciler) Mount(st *doc.State) (err error) {
	defer doc.RecoverInvariant(&err)

	p := r.newPass(nil, st, nil)
	p.createNode(doc.RootKey)
	if err := p.applyOps(); err != nil {
		return err
	}
	if err := p.applyDecorators(); err != nil {
		return err
	}
	if err := p.applyBlockHooks(true); err != nil {
		return err
	}
	r.cache = p.nextCache
	r.mounted = true
	if err := r.syncCursor(st); err != nil {
		return err
	}
	return r.verify(st)
}

// Run reconciles the committed snapshot prev against the pending snapshot
// next. dirty is the set of keys mutated in the transaction; comp, when
// non-nil, is a pending input-method composition that replaces normal
// cursor reconciliation.
func (r *Reconciler) Run(prev, next *doc.State, dirty map[doc.NodeKey]struct{}, comp *doc.Composition) (err error) {
	defer doc.RecoverInvariant(&err)

	if !r.mounted {
		return ErrNotMounted
	}

	// Fast path: nothing dirty, selection unchanged, no composition.
	if len(dirty) == 0 && comp == nil && selectionsInSync(prev, next) {
		return nil
	}

	if len(dirty) > 0 {
		p := r.newPass(prev, next, dirty)
		p.reconcileNode(doc.RootKey)
		if err := p.applyOps(); err != nil {
			return err
		}
		if err := p.applyDecorators(); err != nil {
			return err
		}
		if err := p.applyBlockHooks(false); err != nil {
			return err
		}
		r.cache = p.nextCache
	}

	if comp != nil {
		if err := r.syncComposition(comp); err != nil {
			return err
		}
	} else if err := r.syncCursor(next); err != nil {
		return err
	}
	return r.verify(next)
}

// verify is the debug sanity check: the shadow buffer, which received the
// same ops as the real surface, must equal a full rebuild of the snapshot.
func (r *Reconciler) verify(st *doc.State) error {
	if r.shadow == nil {
		return nil
	}
	want := st.TextContent()
	if got := r.shadow.Text(); got != want {
		return sanityError(got, want)
	}
	return nil
}

// selectionsInSync reports whether the cursor needs no re-sync: both
// snapshots agree on the selection and it was not marked dirty.
func selectionsInSync(prev, next *doc.State) bool {
	ps, ns := prev.Selection(), next.Selection()
	if ns == nil {
		return ps == nil
	}
	if ps == nil {
		return false
	}
	return !ns.IsDirty() && ns.Equal(ps)
}

// insertOp is a pending forward-order insert against the new buffer.
type insertOp struct {
	loc  int
	text string
}

// pass carries the walk state for one reconcile run.
type pass struct {
	r            *Reconciler
	prev         *doc.State
	next         *doc.State
	prevCache    Cache
	nextCache    Cache
	dirty        map[doc.NodeKey]struct{}
	subtreeDirty map[doc.NodeKey]struct{}
	nextLoc      int
	deletes      []surface.Range
	inserts      []insertOp
	decoAdd      map[doc.NodeKey]struct{}
	decoRemove   map[doc.NodeKey]struct{}
	decoUpdate   map[doc.NodeKey]struct{}
}

func (r *Reconciler) newPass(prev, next *doc.State, dirty map[doc.NodeKey]struct{}) *pass {
	p := &pass{
		r:          r,
		prev:       prev,
		next:       next,
		prevCache:  r.cache,
		nextCache:  make(Cache, len(r.cache)+len(dirty)),
		dirty:      dirty,
		decoAdd:    make(map[doc.NodeKey]struct{}),
		decoRemove: make(map[doc.NodeKey]struct{}),
		decoUpdate: make(map[doc.NodeKey]struct{}),
	}
	// Propagate dirtiness to ancestors so the walk recurses into every
	// chain that leads to a mutated node; only the mutated nodes
	// themselves re-emit segments.
	p.subtreeDirty = make(map[doc.NodeKey]struct{}, len(dirty)*2)
	for key := range dirty {
		p.subtreeDirty[key] = struct{}{}
		if next == nil {
			continue
		}
		if _, ok := next.Node(key); !ok {
			continue
		}
		for _, anc := range ancestorChain(next, key) {
			p.subtreeDirty[anc] = struct{}{}
		}
	}
	return p
}

// ancestorChain returns the keys from the node's parent up to the root.
func ancestorChain(st *doc.State, key doc.NodeKey) []doc.NodeKey {
	var chain []doc.NodeKey
	n, ok := st.Node(key)
	if !ok {
		return nil
	}
	for parent := n.ParentKey(); parent != ""; {
		chain = append(chain, parent)
		pn, ok := st.Node(parent)
		if !ok {
			panic(&doc.InvariantError{Op: "reconcile", Key: parent, Detail: "dangling parent reference"})
		}
		parent = pn.ParentKey()
	}
	return chain
}

// reconcileNode walks one node of the next tree, advancing the running
// next-buffer cursor and filling the next cache.
func (p *pass) reconcileNode(key doc.NodeKey) {
	nextNode, ok := p.next.Node(key)
	if !ok {
		panic(&doc.InvariantError{Op: "reconcile", Key: key, Detail: "visited key missing from next snapshot"})
	}
	prevNode, inPrev := p.prev.Node(key)
	if !inPrev {
		p.createNode(key)
		return
	}

	if _, dirtySubtree := p.subtreeDirty[key]; !dirtySubtree && prevNode == nextNode {
		item, ok := p.prevCache[key]
		if !ok {
			panic(&doc.InvariantError{Op: "reconcile", Key: key, Detail: "cache entry missing for clean node"})
		}
		// Clean subtree: skip in O(1) when unshifted, or re-stamp cached
		// positions without emitting edits when only the position moved.
		p.copySubtree(key, p.nextLoc-item.Location)
		p.nextLoc += item.TotalLen()
		return
	}

	p.reconcileExisting(key, prevNode, nextNode)
}

// reconcileExisting handles a node present in both snapshots that is dirty
// itself or carries a dirty descendant. Dirty nodes re-emit each non-empty
// segment as an independent delete and/or insert; segments are never merged
// into one op. Clean ancestors of dirty nodes keep their segment lengths
// and only recurse.
func (p *pass) reconcileExisting(key doc.NodeKey, prevNode, nextNode doc.Node) {
	prevItem, ok := p.prevCache[key]
	if !ok {
		panic(&doc.InvariantError{Op: "reconcile", Key: key, Detail: "cache entry missing for visited node"})
	}
	_, hard := p.dirty[key]
	item := CacheItem{Location: p.nextLoc}

	// Preamble.
	if hard {
		pre := nextNode.Preamble(p.next)
		p.deleteSegment(prevItem.Location, prevItem.PreambleLen)
		p.insertSegment(pre)
		item.PreambleLen = len(pre)
	} else {
		item.PreambleLen = prevItem.PreambleLen
		p.nextLoc += prevItem.PreambleLen
	}

	// Children.
	if nextEl, isEl := nextNode.(*doc.ElementNode); isEl {
		prevEl, wasEl := prevNode.(*doc.ElementNode)
		if !wasEl {
			panic(&doc.InvariantError{Op: "reconcile", Key: key, Detail: "node changed kind across snapshots"})
		}
		start := p.nextLoc
		p.reconcileChildren(prevEl, nextEl)
		item.ChildrenLen = p.nextLoc - start
	}

	// Text.
	if hard {
		txt := nextNode.TextContent()
		p.deleteSegment(prevItem.TextStart(), prevItem.TextLen)
		p.insertSegment(txt)
		item.TextLen = len(txt)
	} else {
		item.TextLen = prevItem.TextLen
		p.nextLoc += prevItem.TextLen
	}

	// Postamble.
	if hard {
		post := nextNode.Postamble(p.next)
		p.deleteSegment(prevItem.Location+prevItem.PreambleLen+prevItem.ChildrenLen+prevItem.TextLen, prevItem.PostambleLen)
		p.insertSegment(post)
		item.PostambleLen = len(post)
	} else {
		item.PostambleLen = prevItem.PostambleLen
		p.nextLoc += prevItem.PostambleLen
	}

	p.nextCache[key] = item

	// A dirty decorator present in both snapshots is scheduled for
	// redecoration rather than being recreated.
	if hard && nextNode.Kind() == doc.KindDecorator {
		p.decoUpdate[key] = struct{}{}
	}
}

// reconcileChildren performs the keyed list diff: matching prefixes are
// walked in place; after the first mismatch, membership sets classify each
// side. A key present in both lists but out of order is destroyed and
// recreated — a move discards any state tied only to buffer position.
func (p *pass) reconcileChildren(prevEl, nextEl *doc.ElementNode) {
	prevKids := prevEl.ChildKeys()
	nextKids := nextEl.ChildKeys()

	i, j := 0, 0
	for i < len(prevKids) && j < len(nextKids) && prevKids[i] == nextKids[j] {
		p.reconcileNode(prevKids[i])
		i++
		j++
	}
	if i >= len(prevKids) && j >= len(nextKids) {
		return
	}

	// Membership sets are built once, lazily, at the first mismatch.
	prevSet := keySet(prevKids)
	nextSet := keySet(nextKids)

	for i < len(prevKids) || j < len(nextKids) {
		switch {
		case i >= len(prevKids):
			p.createNode(nextKids[j])
			j++
		case j >= len(nextKids):
			p.destroyNode(prevKids[i])
			i++
		case prevKids[i] == nextKids[j]:
			p.reconcileNode(prevKids[i])
			i++
			j++
		default:
			_, prevStays := nextSet[prevKids[i]]
			_, nextExisted := prevSet[nextKids[j]]
			switch {
			case !prevStays:
				p.destroyNode(prevKids[i])
				i++
			case !nextExisted:
				p.createNode(nextKids[j])
				j++
			default:
				p.destroyNode(prevKids[i])
				p.createNode(nextKids[j])
				i++
				j++
			}
		}
	}
}

func keySet(keys []doc.NodeKey) map[doc.NodeKey]struct{} {
	set := make(map[doc.NodeKey]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// createNode emits inserts for a subtree new to the next snapshot.
func (p *pass) createNode(key doc.NodeKey) {
	n, ok := p.next.Node(key)
	if !ok {
		panic(&doc.InvariantError{Op: "reconcile", Key: key, Detail: "created key missing from next snapshot"})
	}
	item := CacheItem{Location: p.nextLoc}

	pre := n.Preamble(p.next)
	p.insertSegment(pre)
	item.PreambleLen = len(pre)

	if el, ok := n.(*doc.ElementNode); ok {
		start := p.nextLoc
		for _, child := range el.ChildKeys() {
			p.createNode(child)
		}
		item.ChildrenLen = p.nextLoc - start
	}

	txt := n.TextContent()
	p.insertSegment(txt)
	item.TextLen = len(txt)

	post := n.Postamble(p.next)
	p.insertSegment(post)
	item.PostambleLen = len(post)

	p.nextCache[key] = item
	if n.Kind() == doc.KindDecorator {
		p.decoAdd[key] = struct{}{}
	}
}

// destroyNode emits one delete spanning a subtree leaving the buffer and
// schedules its decorators for possible removal.
func (p *pass) destroyNode(key doc.NodeKey) {
	prevItem, ok := p.prevCache[key]
	if !ok {
		panic(&doc.InvariantError{Op: "reconcile", Key: key, Detail: "cache entry missing for destroyed node"})
	}
	if prevItem.TotalLen() > 0 {
		p.deletes = append(p.deletes, surface.Range{Start: prevItem.Location, End: prevItem.End()})
	}
	p.collectDecorators(key)
}

// collectDecorators gathers decorator keys in a destroyed prev subtree.
func (p *pass) collectDecorators(key doc.NodeKey) {
	n, ok := p.prev.Node(key)
	if !ok {
		return
	}
	if n.Kind() == doc.KindDecorator {
		p.decoRemove[key] = struct{}{}
	}
	if el, ok := n.(*doc.ElementNode); ok {
		for _, child := range el.ChildKeys() {
			p.collectDecorators(child)
		}
	}
}

// copySubtree carries a clean subtree's cache entries into the next cache,
// shifting locations by delta.
func (p *pass) copySubtree(key doc.NodeKey, delta int) {
	item, ok := p.prevCache[key]
	if !ok {
		panic(&doc.InvariantError{Op: "reconcile", Key: key, Detail: "cache entry missing in clean subtree"})
	}
	item.Location += delta
	p.nextCache[key] = item
	if el, ok := p.next.Node(key); ok {
		if elem, isEl := el.(*doc.ElementNode); isEl {
			for _, child := range elem.ChildKeys() {
				p.copySubtree(child, delta)
			}
		}
	}
}

func (p *pass) insertSegment(text string) {
	if len(text) > 0 {
		p.inserts = append(p.inserts, insertOp{loc: p.nextLoc, text: text})
	}
	p.nextLoc += len(text)
}

func (p *pass) deleteSegment(loc, length int) {
	if length > 0 {
		p.deletes = append(p.deletes, surface.Range{Start: loc, End: loc + length})
	}
}

// applyOps applies the collected deletes in reverse buffer order followed
// by the inserts in forward order, against the real surface and, when the
// sanity check is enabled, the shadow buffer.
func (p *pass) applyOps() error {
	for i := len(p.deletes) - 1; i >= 0; i-- {
		if err := p.r.surf.Delete(p.deletes[i]); err != nil {
			return err
		}
		if p.r.shadow != nil {
			if err := p.r.shadow.Delete(p.deletes[i]); err != nil {
				return err
			}
		}
	}
	for _, op := range p.inserts {
		if err := p.r.surf.Insert(op.loc, op.text); err != nil {
			return err
		}
		if p.r.shadow != nil {
			if err := p.r.shadow.Insert(op.loc, op.text); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyDecorators finalizes the three lifecycle sets and calls into the
// registry. A freshly added decorator is subtracted from both the removal
// and redecorate sets so it never also receives an update call in the same
// pass; removals are confirmed against the new tree.
func (p *pass) applyDecorators() error {
	for key := range p.decoAdd {
		delete(p.decoRemove, key)
		delete(p.decoUpdate, key)
	}
	for _, key := range sortedKeys(p.decoRemove) {
		if p.next.IsAttached(key) {
			continue
		}
		if err := p.r.reg.Remove(key); err != nil {
			return err
		}
	}
	for _, key := range sortedKeys(p.decoAdd) {
		if _, err := p.r.reg.Create(key); err != nil {
			return err
		}
	}
	for _, key := range sortedKeys(p.decoUpdate) {
		if err := p.r.reg.Redecorate(key); err != nil {
			return err
		}
	}
	return nil
}

// applyBlockHooks invokes the block-attribute hook for every element whose
// subtree became dirty plus all of its ancestors, in document order. With
// all set, every element in the snapshot is restyled (initial mount).
func (p *pass) applyBlockHooks(all bool) error {
	var walk func(key doc.NodeKey) error
	walk = func(key doc.NodeKey) error {
		el, ok := nodeAsElement(p.next, key)
		if !ok {
			return nil
		}
		_, dirtySubtree := p.subtreeDirty[key]
		if all || dirtySubtree {
			attrs := surface.Attributes{
				Type:      el.Type(),
				Direction: el.Direction(),
				Indent:    el.Indent(),
			}
			if err := p.r.surf.ApplyBlockAttributes(key, attrs); err != nil {
				return err
			}
		}
		for _, child := range el.ChildKeys() {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(doc.RootKey)
}

func nodeAsElement(st *doc.State, key doc.NodeKey) (*doc.ElementNode, bool) {
	n, ok := st.Node(key)
	if !ok {
		return nil, false
	}
	el, ok := n.(*doc.ElementNode)
	return el, ok
}

func sortedKeys(set map[doc.NodeKey]struct{}) []doc.NodeKey {
	keys := make([]doc.NodeKey, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// syncCursor translates the snapshot's selection into a SetCursor
// directive using the committed range cache.
func (r *Reconciler) syncCursor(st *doc.State) error {
	sel := st.Selection()
	if sel == nil {
		return nil
	}
	switch s := sel.(type) {
	case *doc.RangeSelection:
		anchor := r.absolutePoint(st, s.Anchor())
		focus := r.absolutePoint(st, s.Focus())
		affinity := surface.AffinityForward
		start, end := anchor, focus
		if focus < anchor {
			start, end = focus, anchor
			affinity = surface.AffinityBackward
		}
		return r.surf.SetCursor(surface.Range{Start: start, End: end}, affinity)
	case *doc.NodeSelection:
		keys := s.Keys()
		if len(keys) == 0 {
			return nil
		}
		start, end := -1, -1
		for _, key := range keys {
			item, ok := r.cache[key]
			if !ok {
				panic(&doc.InvariantError{Op: "reconcile", Key: key, Detail: "selected node has no cache entry"})
			}
			if start < 0 || item.Location < start {
				start = item.Location
			}
			if item.End() > end {
				end = item.End()
			}
		}
		return r.surf.SetCursor(surface.Range{Start: start, End: end}, surface.AffinityForward)
	default:
		return nil
	}
}

// absolutePoint resolves a selection point to an absolute buffer location.
func (r *Reconciler) absolutePoint(st *doc.State, p doc.Point) int {
	switch p.Kind {
	case doc.PointText:
		item, ok := r.cache[p.Key]
		if !ok {
			panic(&doc.InvariantError{Op: "reconcile", Key: p.Key, Detail: "selection point has no cache entry"})
		}
		off := p.Offset
		if off > item.TextLen {
			off = item.TextLen
		}
		return item.TextStart() + off
	case doc.PointElement:
		el, ok := nodeAsElement(st, p.Key)
		if !ok {
			panic(&doc.InvariantError{Op: "reconcile", Key: p.Key, Detail: "element point references non-element"})
		}
		item, okItem := r.cache[p.Key]
		if !okItem {
			panic(&doc.InvariantError{Op: "reconcile", Key: p.Key, Detail: "selection point has no cache entry"})
		}
		children := el.ChildKeys()
		if p.Offset < len(children) {
			childItem, ok := r.cache[children[p.Offset]]
			if !ok {
				panic(&doc.InvariantError{Op: "reconcile", Key: children[p.Offset], Detail: "child has no cache entry"})
			}
			return childItem.Location
		}
		return item.Location + item.PreambleLen + item.ChildrenLen
	default:
		return 0
	}
}

// syncComposition suppresses normal cursor reconciliation and issues one
// atomic directive covering exactly the marked-text sub-range, so the
// input method's state never desyncs from the visible buffer.
func (r *Reconciler) syncComposition(comp *doc.Composition) error {
	item, ok := r.cache[comp.Key]
	if !ok {
		panic(&doc.InvariantError{Op: "reconcile", Key: comp.Key, Detail: "composition target has no cache entry"})
	}
	start := item.TextStart() + comp.Offset
	return r.surf.BeginComposition(
		surface.Range{Start: start, End: start + len(comp.Text)},
		comp.Text,
		surface.Range{Start: comp.SelStart, End: comp.SelEnd},
	)
}
