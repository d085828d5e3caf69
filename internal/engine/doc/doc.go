// Package doc implements the document model at the heart of the editing
// engine: a key-addressed tree of content nodes with copy-on-write mutation
// semantics, an immutable snapshot type, and a selection model that survives
// arbitrary tree mutations.
//
// The package provides:
//
//   - Tagged content nodes (Element, Text, Decorator, LineBreak) addressed
//     by stable opaque keys
//   - Immutable document snapshots (State) with structural sharing between
//     versions
//   - An explicit transaction scope (Context) through which all mutation
//     flows; the first mutation of a node in a transaction clones it, later
//     mutations reuse the clone
//   - Point, RangeSelection and NodeSelection with repair logic invoked by
//     every structural mutation
//   - Text splitting, merging and normalization primitives
//   - A node-type registry mapping type tags to constructors
//
// Basic usage:
//
//	ctx, _ := doc.Begin(doc.NewState(), doc.SequentialKeys())
//	para := doc.NewElementNode(ctx, "paragraph")
//	_ = ctx.AppendChild(doc.RootKey, para.Key())
//	text := doc.NewTextNode(ctx, "Hello")
//	_ = ctx.AppendChild(para.Key(), text.Key())
//	next, err := ctx.Commit()
//
// Concurrency:
//
// The document model is single-threaded by design. There is exactly one
// writer, one open transaction at a time, and no internal parallelism.
// Callers that need serialization wrap access at a higher layer.
package doc
