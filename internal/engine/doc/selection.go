package doc

import "sort"

// Selection is the common interface over the two selection shapes.
type Selection interface {
	// IsDirty reports whether the selection changed in the current
	// transaction and the visible cursor must be re-synced.
	IsDirty() bool

	// Clone returns a deep copy of the selection with the dirty flag
	// cleared.
	Clone() Selection

	// Equal reports whether two selections describe the same positions.
	Equal(other Selection) bool

	// Valid reports whether every position the selection references
	// resolves in st with in-bounds offsets.
	Valid(st *State) bool

	markDirty()
}

// RangeSelection is a text range between two points. Anchor is where the
// selection started; focus is where it currently ends. When the two points
// are equal the selection is a caret.
type RangeSelection struct {
	anchor Point
	focus  Point
	dirty  bool
	format Format
}

// NewRangeSelection creates a range selection over the given points.
func NewRangeSelection(anchor, focus Point) *RangeSelection {
	return &RangeSelection{anchor: anchor, focus: focus, dirty: true}
}

// NewCaret creates a collapsed selection at a single point.
func NewCaret(p Point) *RangeSelection {
	return &RangeSelection{anchor: p, focus: p, dirty: true}
}

// Anchor returns a copy of the anchor point.
func (s *RangeSelection) Anchor() Point { return s.anchor }

// Focus returns a copy of the focus point.
func (s *RangeSelection) Focus() Point { return s.focus }

// Format returns the pending format for text inserted at a collapsed
// selection.
func (s *RangeSelection) Format() Format { return s.format }

// IsCollapsed reports whether anchor and focus are the same position.
func (s *RangeSelection) IsCollapsed() bool { return s.anchor.Equal(s.focus) }

// IsBackward reports whether the focus precedes the anchor in document
// order.
func (s *RangeSelection) IsBackward(st *State) bool {
	return s.focus.IsBefore(st, s.anchor)
}

// Ordered returns the selection's points as a (first, last) pair in
// document order.
func (s *RangeSelection) Ordered(st *State) (Point, Point) {
	if s.IsBackward(st) {
		return s.focus, s.anchor
	}
	return s.anchor, s.focus
}

// SetAnchor rebinds the anchor point and marks the selection dirty.
func (s *RangeSelection) SetAnchor(p Point) {
	s.anchor = p
	s.dirty = true
}

// SetFocus rebinds the focus point and marks the selection dirty.
func (s *RangeSelection) SetFocus(p Point) {
	s.focus = p
	s.dirty = true
}

// SetFormat sets the pending insertion format.
func (s *RangeSelection) SetFormat(f Format) {
	s.format = f
	s.dirty = true
}

// Collapse collapses the selection to a caret at the given point.
func (s *RangeSelection) Collapse(p Point) {
	s.anchor = p
	s.focus = p
	s.dirty = true
}

// IsDirty implements Selection.
func (s *RangeSelection) IsDirty() bool { return s.dirty }

// Clone implements Selection.
func (s *RangeSelection) Clone() Selection {
	return &RangeSelection{anchor: s.anchor, focus: s.focus, format: s.format}
}

// Equal implements Selection.
func (s *RangeSelection) Equal(other Selection) bool {
	o, ok := other.(*RangeSelection)
	if !ok {
		return false
	}
	return s.anchor.Equal(o.anchor) && s.focus.Equal(o.focus) && s.format == o.format
}

// Valid implements Selection.
func (s *RangeSelection) Valid(st *State) bool {
	return s.anchor.Valid(st) && s.focus.Valid(st)
}

func (s *RangeSelection) markDirty() { s.dirty = true }

// eachPoint applies fn to the anchor and focus in place and marks the
// selection dirty if fn reports a change. This is the selection-owned point
// mutation path used by tree mutations for selection repair.
func (s *RangeSelection) eachPoint(fn func(p *Point) bool) {
	if fn(&s.anchor) {
		s.dirty = true
	}
	if fn(&s.focus) {
		s.dirty = true
	}
}

// NodeSelection selects whole nodes (e.g. an embedded object) rather than a
// text range.
type NodeSelection struct {
	keys  map[NodeKey]struct{}
	dirty bool
}

// NewNodeSelection creates a node selection over the given keys.
func NewNodeSelection(keys ...NodeKey) *NodeSelection {
	s := &NodeSelection{keys: make(map[NodeKey]struct{}, len(keys)), dirty: true}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

// Has reports whether the key is selected.
func (s *NodeSelection) Has(key NodeKey) bool {
	_, ok := s.keys[key]
	return ok
}

// Add selects an additional node.
func (s *NodeSelection) Add(key NodeKey) {
	s.keys[key] = struct{}{}
	s.dirty = true
}

// Delete deselects a node.
func (s *NodeSelection) Delete(key NodeKey) {
	delete(s.keys, key)
	s.dirty = true
}

// Len returns the number of selected nodes.
func (s *NodeSelection) Len() int { return len(s.keys) }

// Keys returns the selected keys in a stable (sorted) order.
func (s *NodeSelection) Keys() []NodeKey {
	out := make([]NodeKey, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsDirty implements Selection.
func (s *NodeSelection) IsDirty() bool { return s.dirty }

// Clone implements Selection.
func (s *NodeSelection) Clone() Selection {
	keys := make(map[NodeKey]struct{}, len(s.keys))
	for k := range s.keys {
		keys[k] = struct{}{}
	}
	return &NodeSelection{keys: keys}
}

// Equal implements Selection.
func (s *NodeSelection) Equal(other Selection) bool {
	o, ok := other.(*NodeSelection)
	if !ok || len(s.keys) != len(o.keys) {
		return false
	}
	for k := range s.keys {
		if _, ok := o.keys[k]; !ok {
			return false
		}
	}
	return true
}

// Valid implements Selection.
func (s *NodeSelection) Valid(st *State) bool {
	for k := range s.keys {
		if _, ok := st.nodes[k]; !ok {
			return false
		}
	}
	return true
}

func (s *NodeSelection) markDirty() { s.dirty = true }
