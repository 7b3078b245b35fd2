package normalize

import (
	"regexp"
	"strings"
)

const (
	disambiguationSuffix = " (disambiguation)"
	listPrefix           = "List of "
	article              = "The "
)

var (
	apostrophes = strings.NewReplacer(
		"’", "'", // right single quotation mark
		"‘", "'", // left single quotation mark
		"‛", "'", // single high-reversed-9 quotation mark
		"ʻ", "'", // modifier letter turned comma
		"ʼ", "'", // modifier letter apostrophe
		"＇", "'", // fullwidth apostrophe
	)

	dashes = strings.NewReplacer(
		"‐", "-", // hyphen
		"‑", "-", // non-breaking hyphen
		"‒", "-", // figure dash
		"–", "-", // en dash
		"—", "-", // em dash
		"―", "-", // horizontal bar
		"−", "-", // minus sign
		"﹘", "-", // small em dash
		"﹣", "-", // small hyphen-minus
		"－", "-", // fullwidth hyphen-minus
	)

	spacesAndHyphens = strings.NewReplacer(" ", "", "-", "")

	versus = regexp.MustCompile(`\s+vs?\.?\s+`)
)

// StripDisambiguation removes a trailing " (disambiguation)" qualifier.
func StripDisambiguation(title string) string {
	n := len(title) - len(disambiguationSuffix)
	if n >= 0 && strings.EqualFold(title[n:], disambiguationSuffix) {
		return title[:n]
	}
	return title
}

func Apostrophes(s string) string {
	return apostrophes.Replace(s)
}

// ReorderSurname rewrites "Surname, Given" as "Given Surname". Anything that
// is not exactly two space-free tokens around a single ", " is returned as is.
func ReorderSurname(s string) string {
	surname, given, ok := strings.Cut(s, ", ")
	if !ok || !isNameToken(surname) || !isNameToken(given) {
		return s
	}
	return given + " " + surname
}

func isNameToken(s string) bool {
	return s != "" && !strings.ContainsAny(s, " ,")
}

func WithListPrefix(s string) string {
	return listPrefix + s
}

func StripSpacesAndHyphens(s string) string {
	return spacesAndHyphens.Replace(s)
}

// Versus rewrites lowercase " vs", " vs.", " v" and " v." separators to
// " v. ". An uppercase V is left alone since it is usually a numeral.
func Versus(s string) string {
	return versus.ReplaceAllLiteralString(s, " v. ")
}

// StripArticle removes a leading "The " regardless of case.
func StripArticle(s string) string {
	if len(s) >= len(article) && strings.EqualFold(s[:len(article)], article) {
		return s[len(article):]
	}
	return s
}

func Dashes(s string) string {
	return dashes.Replace(s)
}
