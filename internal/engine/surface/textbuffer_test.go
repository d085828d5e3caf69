package surface

import (
	"errors"
	"testing"
)

func TestTextBufferEdits(t *testing.T) {
	b := NewTextBuffer()
	if err := b.Insert(0, "Hello World"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := b.Delete(Range{Start: 5, End: 11}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := b.Insert(5, "!"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if got := b.Text(); got != "Hello!" {
		t.Fatalf("text = %q, want %q", got, "Hello!")
	}
	if b.Len() != 6 {
		t.Fatalf("len = %d, want 6", b.Len())
	}
}

func TestTextBufferBoundsChecks(t *testing.T) {
	b := NewTextBuffer()
	if err := b.Insert(0, "ab"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := b.Insert(3, "x"); !errors.Is(err, ErrLocationInvalid) {
		t.Fatalf("insert past end: %v, want ErrLocationInvalid", err)
	}
	if err := b.Delete(Range{Start: 1, End: 5}); !errors.Is(err, ErrRangeInvalid) {
		t.Fatalf("delete past end: %v, want ErrRangeInvalid", err)
	}
	if err := b.Delete(Range{Start: 2, End: 1}); !errors.Is(err, ErrRangeInvalid) {
		t.Fatalf("inverted delete: %v, want ErrRangeInvalid", err)
	}
	if err := b.SetCursor(Range{Start: 0, End: 3}, AffinityForward); !errors.Is(err, ErrRangeInvalid) {
		t.Fatalf("cursor past end: %v, want ErrRangeInvalid", err)
	}
}

func TestTextBufferCompositionOverridesCursor(t *testing.T) {
	b := NewTextBuffer()
	if err := b.Insert(0, "Worldka"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := b.SetCursor(Range{Start: 5, End: 5}, AffinityForward); err != nil {
		t.Fatalf("cursor: %v", err)
	}
	if err := b.BeginComposition(Range{Start: 5, End: 7}, "ka", Range{Start: 2, End: 2}); err != nil {
		t.Fatalf("composition: %v", err)
	}
	if !b.IsComposing() {
		t.Fatalf("not composing")
	}
	if got := b.CompositionRange(); got != (Range{Start: 5, End: 7}) {
		t.Fatalf("range = %+v", got)
	}
	if got := b.MarkedText(); got != "ka" {
		t.Fatalf("marked = %q", got)
	}
	// Cursor follows the input method's internal selection.
	cur, _ := b.Cursor()
	if cur != (Range{Start: 7, End: 7}) {
		t.Fatalf("cursor = %+v, want collapsed at 7", cur)
	}

	// A later cursor directive ends composition mode.
	if err := b.SetCursor(Range{Start: 0, End: 0}, AffinityForward); err != nil {
		t.Fatalf("cursor: %v", err)
	}
	if b.IsComposing() {
		t.Fatalf("still composing after cursor directive")
	}
}

func TestMemRegistryLifecycle(t *testing.T) {
	reg := NewMemRegistry()
	h, err := reg.Create("d1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if h == nil {
		t.Fatalf("nil handle")
	}
	if reg.Count() != 1 {
		t.Fatalf("count = %d, want 1", reg.Count())
	}
	if err := reg.Redecorate("d1"); err != nil {
		t.Fatalf("redecorate: %v", err)
	}
	if rev, _ := reg.Revision("d1"); rev != 1 {
		t.Fatalf("revision = %d, want 1", rev)
	}
	if err := reg.Remove("d1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := reg.Remove("d1"); !errors.Is(err, ErrDecoratorNotFound) {
		t.Fatalf("double remove: %v, want ErrDecoratorNotFound", err)
	}
	if err := reg.Redecorate("d1"); !errors.Is(err, ErrDecoratorNotFound) {
		t.Fatalf("redecorate removed: %v, want ErrDecoratorNotFound", err)
	}
}
