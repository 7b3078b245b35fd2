package normalize

import (
	"regexp"
	"strings"
)

// redirectMarker matches the leading "REDIRECT" token left over from the
// #REDIRECT markup the target was extracted from. Only a whole token matches,
// so names such as "Redirection" are kept.
var redirectMarker = regexp.MustCompile(`^(?i:redirect)(?:\s+|$)`)

// Pair is a redirect title and target with presentation artifacts removed.
type Pair struct {
	Title  string
	Target string
}

// Title converts a database title (underscores) to its display form.
func Title(raw string) string {
	return strings.ReplaceAll(raw, "_", " ")
}

// Target strips the first leading redirect marker from a raw target.
func Target(raw string) string {
	return redirectMarker.ReplaceAllLiteralString(raw, "")
}

func Normalize(title, rawTarget string) Pair {
	return Pair{Title: Title(title), Target: Target(rawTarget)}
}
