package testutils

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// TextDiff renders a readable diff between expected and actual text for
// end-to-end assertion failure messages.
func TextDiff(expected, actual string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(expected, actual, false)
	return dmp.DiffPrettyText(diffs)
}
