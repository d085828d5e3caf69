package doc

import "strings"

// State is an immutable document snapshot: a node tree plus the selection at
// one point in time. A State is born mutable inside a transaction and frozen
// when the transaction commits; once frozen it never changes. Untouched
// subtrees are shared by reference between consecutive snapshots.
type State struct {
	nodes     map[NodeKey]Node
	selection Selection
	frozen    bool
}

// NewState creates a frozen snapshot holding only an empty root element.
func NewState() *State {
	root := &ElementNode{preserveEmpty: true}
	root.key = RootKey
	root.nodeType = "root"
	root.version = 1
	return &State{
		nodes:  map[NodeKey]Node{RootKey: root},
		frozen: true,
	}
}

// Node returns the node for key, or false if the key does not resolve in
// this snapshot.
func (st *State) Node(key NodeKey) (Node, bool) {
	n, ok := st.nodes[key]
	return n, ok
}

// mustNode returns the node for key or raises an invariant violation. It is
// used on paths where a missing key means the tree was left inconsistent.
func (st *State) mustNode(op string, key NodeKey) Node {
	n, ok := st.nodes[key]
	if !ok {
		invariantf(op, key, "key not present in snapshot")
	}
	return n
}

// Root returns the root element.
func (st *State) Root() *ElementNode {
	return st.mustNode("Root", RootKey).(*ElementNode)
}

// Selection returns the snapshot's selection, or nil if there is none.
func (st *State) Selection() Selection { return st.selection }

// NodeCount returns the number of nodes reachable in the snapshot.
func (st *State) NodeCount() int { return len(st.nodes) }

// Frozen reports whether the snapshot has been committed.
func (st *State) Frozen() bool { return st.frozen }

// element returns the node for key as an element, raising an invariant
// violation on a kind mismatch.
func (st *State) element(op string, key NodeKey) *ElementNode {
	el, ok := st.mustNode(op, key).(*ElementNode)
	if !ok {
		invariantf(op, key, "expected element, found %s", st.nodes[key].Kind())
	}
	return el
}

// indexInParent returns the node's parent and its position in the parent's
// child list. Detached nodes return ("", -1).
func (st *State) indexInParent(key NodeKey) (NodeKey, int) {
	n, ok := st.nodes[key]
	if !ok || n.ParentKey() == "" {
		return "", -1
	}
	parent := st.element("indexInParent", n.ParentKey())
	idx := parent.IndexOfChild(key)
	if idx < 0 {
		invariantf("indexInParent", key, "node missing from children of %s", parent.Key())
	}
	return parent.Key(), idx
}

// nextSibling returns the key of the node's next sibling, or "".
func (st *State) nextSibling(key NodeKey) NodeKey {
	parentKey, idx := st.indexInParent(key)
	if parentKey == "" {
		return ""
	}
	children := st.element("nextSibling", parentKey).children
	if idx+1 < len(children) {
		return children[idx+1]
	}
	return ""
}

// prevSibling returns the key of the node's previous sibling, or "".
func (st *State) prevSibling(key NodeKey) NodeKey {
	parentKey, idx := st.indexInParent(key)
	if parentKey == "" || idx == 0 {
		return ""
	}
	return st.element("prevSibling", parentKey).children[idx-1]
}

// IsAttached reports whether the node is reachable from the root.
func (st *State) IsAttached(key NodeKey) bool {
	for key != "" {
		if key == RootKey {
			return true
		}
		n, ok := st.nodes[key]
		if !ok {
			return false
		}
		key = n.ParentKey()
	}
	return false
}

// withinSubtree reports whether key is root itself or one of its
// descendants.
func (st *State) withinSubtree(key, root NodeKey) bool {
	for key != "" {
		if key == root {
			return true
		}
		n, ok := st.nodes[key]
		if !ok {
			return false
		}
		key = n.ParentKey()
	}
	return false
}

// ancestors returns the chain of ancestor keys from the node's parent up to
// and including the root.
func (st *State) ancestors(key NodeKey) []NodeKey {
	var chain []NodeKey
	n, ok := st.nodes[key]
	if !ok {
		return nil
	}
	for p := n.ParentKey(); p != ""; {
		chain = append(chain, p)
		pn, ok := st.nodes[p]
		if !ok {
			invariantf("ancestors", p, "dangling parent reference from %s", key)
		}
		p = pn.ParentKey()
	}
	return chain
}

// TextContent returns the full flat-buffer text of the snapshot, rebuilt
// from scratch: preamble + children + text + postamble per node, in
// document order. The incremental reconciler must always produce a buffer
// byte-identical to this.
func (st *State) TextContent() string {
	var sb strings.Builder
	st.writeText(&sb, RootKey)
	return sb.String()
}

func (st *State) writeText(sb *strings.Builder, key NodeKey) {
	n := st.mustNode("TextContent", key)
	sb.WriteString(n.Preamble(st))
	if el, ok := n.(*ElementNode); ok {
		for _, child := range el.children {
			st.writeText(sb, child)
		}
	}
	sb.WriteString(n.TextContent())
	sb.WriteString(n.Postamble(st))
}

// firstDescendantLeaf returns the deepest first-child leaf under key, or key
// itself if it is a leaf or an empty element.
func (st *State) firstDescendantLeaf(key NodeKey) NodeKey {
	for {
		el, ok := st.nodes[key].(*ElementNode)
		if !ok || len(el.children) == 0 {
			return key
		}
		key = el.children[0]
	}
}

// lastDescendantLeaf returns the deepest last-child leaf under key, or key
// itself if it is a leaf or an empty element.
func (st *State) lastDescendantLeaf(key NodeKey) NodeKey {
	for {
		el, ok := st.nodes[key].(*ElementNode)
		if !ok || len(el.children) == 0 {
			return key
		}
		key = el.children[len(el.children)-1]
	}
}

// collectGarbage drops every node not reachable from the root. Called at
// commit so unreferenced clones and detached subtrees do not accumulate
// across snapshots.
func (st *State) collectGarbage() {
	reachable := make(map[NodeKey]struct{}, len(st.nodes))
	var mark func(NodeKey)
	mark = func(key NodeKey) {
		reachable[key] = struct{}{}
		if el, ok := st.nodes[key].(*ElementNode); ok {
			for _, child := range el.children {
				if _, ok := st.nodes[child]; !ok {
					invariantf("collectGarbage", child, "child of %s missing from snapshot", key)
				}
				mark(child)
			}
		}
	}
	mark(RootKey)
	for key := range st.nodes {
		if _, ok := reachable[key]; !ok {
			delete(st.nodes, key)
		}
	}
}
