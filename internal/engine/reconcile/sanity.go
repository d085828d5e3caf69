package reconcile

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// sanityError builds an ErrSanityCheck wrapping a readable diff between the
// incrementally maintained shadow buffer and a full rebuild of the
// snapshot.
func sanityError(got, want string) error {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(want, got, false)
	dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			fmt.Fprintf(&b, "-%q\n", d.Text)
		case diffmatchpatch.DiffInsert:
			fmt.Fprintf(&b, "+%q\n", d.Text)
		case diffmatchpatch.DiffEqual:
			fmt.Fprintf(&b, " %q\n", d.Text)
		}
	}
	return fmt.Errorf("%w:\n%s", ErrSanityCheck, b.String())
}
