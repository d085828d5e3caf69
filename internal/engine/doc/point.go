package doc

// PointKind distinguishes how a Point's offset is interpreted.
type PointKind uint8

const (
	// PointText addresses a byte offset inside a text node.
	PointText PointKind = iota
	// PointElement addresses a child index inside an element node.
	PointElement
)

// String returns the string representation of the point kind.
func (k PointKind) String() string {
	switch k {
	case PointText:
		return "text"
	case PointElement:
		return "element"
	default:
		return "unknown"
	}
}

// Point is an addressable position in the document: a node key plus an
// offset whose meaning depends on the kind. Points are owned by exactly one
// selection; all mutation flows through selection-owned APIs so the
// selection's dirty flag is maintained without back-pointers.
type Point struct {
	Key    NodeKey
	Offset int
	Kind   PointKind
}

// TextPoint returns a point addressing a byte offset in a text node.
func TextPoint(key NodeKey, offset int) Point {
	return Point{Key: key, Offset: offset, Kind: PointText}
}

// ElementPoint returns a point addressing a child index in an element.
func ElementPoint(key NodeKey, offset int) Point {
	return Point{Key: key, Offset: offset, Kind: PointElement}
}

// Equal reports whether two points address the same position byte-for-byte.
func (p Point) Equal(other Point) bool {
	return p.Key == other.Key && p.Offset == other.Offset && p.Kind == other.Kind
}

// Valid reports whether the point resolves to a node present in st with an
// in-bounds offset: text offset <= text length, element offset <= child
// count.
func (p Point) Valid(st *State) bool {
	n, ok := st.nodes[p.Key]
	if !ok || p.Offset < 0 {
		return false
	}
	switch p.Kind {
	case PointText:
		tn, ok := n.(*TextNode)
		return ok && p.Offset <= len(tn.text)
	case PointElement:
		el, ok := n.(*ElementNode)
		return ok && p.Offset <= len(el.children)
	default:
		return false
	}
}

// path returns the point's position as a root-relative index path: the
// child index at each tree level, with the point's own offset appended.
// Lexicographic comparison of two paths is document order; this is the
// common-ancestor walk expressed as one pass.
func (p Point) path(st *State) []int {
	var rev []int
	rev = append(rev, p.Offset)
	key := p.Key
	for key != RootKey {
		parentKey, idx := st.indexInParent(key)
		if parentKey == "" {
			invariantf("Point.path", key, "selection point references detached node")
		}
		rev = append(rev, idx)
		key = parentKey
	}
	// Reverse into root-first order.
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

// IsBefore reports whether p precedes other in document order. Points at
// the same position are not before one another.
func (p Point) IsBefore(st *State, other Point) bool {
	return comparePaths(p.path(st), other.path(st)) < 0
}

// comparePaths compares two index paths lexicographically. A path that is a
// strict prefix of another sorts first: the position at a node's boundary
// precedes positions inside it.
func comparePaths(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
