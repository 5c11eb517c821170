// Package search builds the retrieval index over the catalog and ranks
// records against free-text queries.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// French stopwords excluded from tokens. Short function words add noise
// to overlap scoring without narrowing the match.
var stopwords = map[string]struct{}{
	"le": {}, "la": {}, "les": {}, "un": {}, "une": {}, "des": {},
	"de": {}, "du": {}, "et": {}, "ou": {}, "en": {}, "au": {},
	"aux": {}, "pour": {}, "avec": {}, "sans": {}, "dans": {},
	"sous": {}, "sur": {}, "par": {}, "est": {}, "sont": {},
	"que": {}, "qui": {}, "quel": {}, "quelle": {}, "quels": {},
	"quelles": {}, "ce": {}, "cette": {}, "ces": {},
}

// Normalize lower-cases the input, strips accents and replaces
// punctuation with spaces. Accent stripping matters for French: a
// query for "medicament" must match "médicament".
func Normalize(s string) string {
	lower := strings.ToLower(s)

	// NFD decomposition then removal of combining marks. The chain is
	// stateful, so build it per call rather than sharing.
	deaccent := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(deaccent, lower)
	if err != nil {
		stripped = lower
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize normalizes the input and returns its tokens minus stopwords.
func Tokenize(s string) []string {
	fields := strings.Fields(Normalize(s))
	out := fields[:0]
	for _, f := range fields {
		if _, isStop := stopwords[f]; isStop {
			continue
		}
		out = append(out, f)
	}
	return out
}

// tokenSet builds a membership set from a token slice.
func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// trigramSet returns the set of letter trigrams of a normalized string,
// padded so that word boundaries produce distinct grams.
func trigramSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range strings.Fields(s) {
		padded := []rune("  " + word + " ")
		for i := 0; i+3 <= len(padded); i++ {
			set[string(padded[i:i+3])] = struct{}{}
		}
	}
	return set
}

// diceCoefficient computes the Sørensen–Dice similarity of two sets.
func diceCoefficient(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	common := 0
	for g := range small {
		if _, ok := large[g]; ok {
			common++
		}
	}
	return 2 * float64(common) / float64(len(a)+len(b))
}
