package entity

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Scorer selects the similarity metric used by the resolver.
type Scorer string

const (
	ScorerRatio     Scorer = "ratio"
	ScorerTokenSort Scorer = "token_sort"
	ScorerTokenSet  Scorer = "token_set"
)

func ParseScorer(v string) (Scorer, error) {
	switch Scorer(strings.ToLower(strings.TrimSpace(v))) {
	case ScorerRatio:
		return ScorerRatio, nil
	case "", ScorerTokenSort:
		return ScorerTokenSort, nil
	case ScorerTokenSet:
		return ScorerTokenSet, nil
	default:
		return "", fmt.Errorf("unknown scorer %q: valid values are %s, %s, %s", v, ScorerRatio, ScorerTokenSort, ScorerTokenSet)
	}
}

// Similarity scores two normalized names in [0, 1].
func Similarity(scorer Scorer, a, b string) float64 {
	switch scorer {
	case ScorerRatio:
		return Ratio(a, b)
	case ScorerTokenSet:
		return TokenSetRatio(a, b)
	default:
		return TokenSortRatio(a, b)
	}
}

// Ratio is (max(len(a), len(b)) - levenshtein(a, b)) / max(len(a), len(b)), measured
// in runes. The single division keeps scores equal to the decimal thresholds they hit.
func Ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}

	dist := levenshtein.ComputeDistance(a, b)
	return float64(longest-dist) / float64(longest)
}

func TokenSortRatio(a, b string) float64 {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

// TokenSetRatio compares the shared tokens against each side's remainder and keeps the
// best of the three pairings. A name whose tokens are a subset of the other scores 1.
func TokenSetRatio(a, b string) float64 {
	left := tokenSet(a)
	right := tokenSet(b)

	var common, onlyLeft, onlyRight []string
	for token := range left {
		if _, ok := right[token]; ok {
			common = append(common, token)
			continue
		}
		onlyLeft = append(onlyLeft, token)
	}
	for token := range right {
		if _, ok := left[token]; !ok {
			onlyRight = append(onlyRight, token)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyLeft)
	sort.Strings(onlyRight)

	base := strings.Join(common, " ")
	withLeft := strings.TrimSpace(base + " " + strings.Join(onlyLeft, " "))
	withRight := strings.TrimSpace(base + " " + strings.Join(onlyRight, " "))

	if base != "" && (len(onlyLeft) == 0 || len(onlyRight) == 0) {
		return 1
	}

	best := Ratio(withLeft, withRight)
	if base != "" {
		if score := Ratio(base, withLeft); score > best {
			best = score
		}
		if score := Ratio(base, withRight); score > best {
			best = score
		}
	}
	return best
}

func sortedTokens(v string) string {
	parts := strings.Fields(v)
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

func tokenSet(v string) map[string]struct{} {
	parts := strings.Fields(v)
	out := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		out[part] = struct{}{}
	}
	return out
}
