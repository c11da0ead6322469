// Package textfold reduces free text to a comparable form: lower case
// with diacritics removed, so "ÔNIX", "Ônix" and "onix" compare equal.
package textfold

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Separator joins the parts of a composite key. Key never returns it.
const Separator = "\x1f"

// Strip removes diacritics: "Câmbio" becomes "Cambio"
func Strip(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Key lower-cases s and strips its diacritics
func Key(s string) string {
	return strings.ReplaceAll(Strip(strings.ToLower(s)), Separator, "")
}

// Join folds every part and joins them with Separator, so a substring
// match of a folded term never spans two parts
func Join(parts ...string) string {
	keys := make([]string, len(parts))
	for i, p := range parts {
		keys[i] = Key(p)
	}
	return strings.Join(keys, Separator)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikeContains folds term into a LIKE pattern matching it anywhere. The
// pattern expects ESCAPE '\'.
func LikeContains(term string) string {
	return "%" + likeEscaper.Replace(Key(term)) + "%"
}
