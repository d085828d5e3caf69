// Package surface defines the narrow interfaces between the document core
// and its host: the rendering surface that owns the linear styled-text
// buffer, and the decorator registry that owns native views for embedded
// objects. The reconciler drives both; the core never inspects what lives
// behind them.
//
// The package also ships two reference implementations: TextBuffer, an
// in-memory rendering surface used by tests and the demo, and MemRegistry,
// a decorator registry handing out opaque handles.
package surface
