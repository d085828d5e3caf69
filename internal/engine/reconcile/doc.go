// Package reconcile implements the diff/patch engine that keeps a linear
// rendering-surface buffer synchronized with the document tree. Each run
// compares two snapshots and emits the minimal ordered set of buffer edits,
// decorator lifecycle calls, block-attribute hooks and a cursor or
// composition directive.
//
// A run proceeds through fixed phases: walk the tree computing the next
// range cache and the delete/insert op lists, apply deletes in reverse
// buffer order, apply inserts in forward order, fire side effects
// (decorators, block-level hooks), commit the cache, then reconcile the
// cursor or composition. Clean subtrees whose cached position matches the
// running cursor are skipped in O(1); subtrees that only shifted are
// re-stamped without emitting edits.
//
// An optional debug sanity check replays every run against a shadow buffer
// and asserts byte-equality with a full rebuild of the new snapshot,
// verifying that the incremental algorithm is observationally equivalent to
// rebuilding from scratch.
package reconcile
