package doc

import "strconv"

// NodeKey is a stable opaque identifier for a node. Keys are unique within a
// document and survive cloning: cloning a node changes its content, never its
// identity.
type NodeKey string

// RootKey is the key of the root element of every document.
const RootKey NodeKey = "root"

// KeyFunc produces fresh node keys. Implementations must never return the
// same key twice for one document and must never return RootKey.
type KeyFunc func() NodeKey

// SequentialKeys returns a KeyFunc that hands out small decimal keys in
// order. This is the default: keys stay short and deterministic, which keeps
// snapshots cheap to compare in tests.
func SequentialKeys() KeyFunc {
	var next int
	return func() NodeKey {
		next++
		return NodeKey(strconv.Itoa(next))
	}
}
