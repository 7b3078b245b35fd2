// Package collate compares page names the way a base-strength locale
// collation does: letter case and diacritics are ignored, every other
// difference is significant.
package collate

import (
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// A Collator keeps internal buffers and is not safe for concurrent use.
var collators = sync.Pool{
	New: func() any {
		return collate.New(language.English, collate.IgnoreCase, collate.IgnoreDiacritics)
	},
}

// BaseEqual reports whether a and b are equal ignoring case and diacritics.
func BaseEqual(a, b string) bool {
	if a == b {
		return true
	}
	c := collators.Get().(*collate.Collator)
	defer collators.Put(c)
	return c.CompareString(a, b) == 0
}
