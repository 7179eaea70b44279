package eval

import (
	"strings"

	"golang.org/x/text/cases"
)

var foldCaser = cases.Fold()

// normalize prepares free text for comparison: Unicode case folding
// plus leading/trailing whitespace trim. Internal whitespace is
// preserved.
func normalize(s string) string {
	return foldCaser.String(strings.TrimSpace(s))
}

// textEqual reports whether two strings match under normalization.
func textEqual(a, b string) bool {
	return normalize(a) == normalize(b)
}
