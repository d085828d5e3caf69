package doc

// Constructor builds a detached node of a registered type inside the open
// transaction.
type Constructor func(ctx *Context) Node

// Registry maps node type tags to constructors. It is consulted during
// deserialization and by callers that create nodes by tag; the core itself
// never ranges over it.
type Registry struct {
	constructors map[string]Constructor
}

// NewRegistry creates a registry preloaded with the built-in node types:
// "paragraph", "text" and "linebreak".
func NewRegistry() *Registry {
	r := &Registry{constructors: make(map[string]Constructor)}
	r.Register("paragraph", func(ctx *Context) Node { return NewElementNode(ctx, "paragraph") })
	r.Register("text", func(ctx *Context) Node { return NewTextNode(ctx, "") })
	r.Register("linebreak", func(ctx *Context) Node { return NewLineBreakNode(ctx) })
	return r
}

// Register installs a constructor for a type tag, replacing any previous
// registration.
func (r *Registry) Register(tag string, fn Constructor) {
	r.constructors[tag] = fn
}

// Has reports whether a constructor is registered for the tag.
func (r *Registry) Has(tag string) bool {
	_, ok := r.constructors[tag]
	return ok
}

// New constructs a detached node of the given type inside the transaction.
func (r *Registry) New(ctx *Context, tag string) (Node, error) {
	fn, ok := r.constructors[tag]
	if !ok {
		return nil, ErrTypeNotRegistered
	}
	if err := ctx.check(); err != nil {
		return nil, err
	}
	return fn(ctx), nil
}
