package matching

import (
	"sort"
	"strings"
	"unicode"

	"github.com/adrg/strutil/metrics"
	"golang.org/x/text/cases"
)

// Normalize folds case and replaces every rune that is neither a letter nor a digit with a space, collapsing runs of whitespace.
func Normalize(s string) string {
	folded := cases.Fold().String(s)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// indel is an edit distance that only inserts and deletes. A replacement costs one of each.
var indel = &metrics.Levenshtein{CaseSensitive: true, InsertCost: 1, DeleteCost: 1, ReplaceCost: 2}

// Ratio returns the Indel similarity of a and b on a 0-100 scale: 100 * (1 - distance / (len(a) + len(b))).
//
// This equals 200 * LCS / (len(a) + len(b)), where LCS is the longest common subsequence.
func Ratio(a, b string) float64 {
	total := len([]rune(a)) + len([]rune(b))
	if total == 0 {
		return 100
	}
	return 100 * (1 - float64(indel.Distance(a, b))/float64(total))
}

// TokenSetRatio compares a and b as sets of normalized tokens, ignoring word order and duplicates.
//
// When one token set contains the other the result is 100. Otherwise the best [Ratio] among the shared tokens
// and each side's full sorted token string is returned.
func TokenSetRatio(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var sect, diffA, diffB []string
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			sect = append(sect, tok)
		} else {
			diffA = append(diffA, tok)
		}
	}
	for tok := range tb {
		if _, ok := ta[tok]; !ok {
			diffB = append(diffB, tok)
		}
	}

	if len(sect) > 0 && (len(diffA) == 0 || len(diffB) == 0) {
		return 100
	}

	sort.Strings(sect)
	sort.Strings(diffA)
	sort.Strings(diffB)

	base := strings.Join(sect, " ")
	combinedA := joinNonEmpty(base, strings.Join(diffA, " "))
	combinedB := joinNonEmpty(base, strings.Join(diffB, " "))

	best := Ratio(combinedA, combinedB)
	if base != "" {
		best = max(best, Ratio(base, combinedA), Ratio(base, combinedB))
	}
	return best
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(Normalize(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
