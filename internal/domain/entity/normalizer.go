package entity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Unknown is returned for names that carry no comparable content.
const Unknown = "unknown"

// NormalizationRules controls how free-text names collapse to comparable forms.
type NormalizationRules struct {
	// StripTokens are dropped wherever they appear, unless dropping them empties the name.
	StripTokens []string
	// Abbreviations expand a single token before stripping, e.g. "utd" -> "united".
	Abbreviations map[string]string
}

func DefaultNormalizationRules() NormalizationRules {
	return NormalizationRules{
		StripTokens: []string{"fc", "afc", "cf", "club", "jr", "sr"},
		Abbreviations: map[string]string{
			"utd": "united",
			"man": "manchester",
			"st":  "saint",
		},
	}
}

// Normalizer canonicalizes team, player and competition names for comparison.
// It is pure and safe for concurrent use.
type Normalizer struct {
	strip         map[string]struct{}
	abbreviations map[string]string
}

func NewNormalizer(rules NormalizationRules) *Normalizer {
	n := &Normalizer{
		strip:         make(map[string]struct{}, len(rules.StripTokens)),
		abbreviations: make(map[string]string, len(rules.Abbreviations)),
	}
	for _, token := range rules.StripTokens {
		token = foldToken(token)
		if token != "" {
			n.strip[token] = struct{}{}
		}
	}
	for from, to := range rules.Abbreviations {
		from = foldToken(from)
		to = strings.Join(tokens(to), " ")
		if from == "" || to == "" {
			continue
		}
		n.abbreviations[from] = to
	}
	return n
}

func (n *Normalizer) Normalize(raw string) string {
	parts := tokens(raw)
	if len(parts) == 0 {
		return Unknown
	}

	expanded := make([]string, 0, len(parts))
	for _, part := range parts {
		if full, ok := n.abbreviations[part]; ok {
			expanded = append(expanded, strings.Fields(full)...)
			continue
		}
		expanded = append(expanded, part)
	}

	kept := make([]string, 0, len(expanded))
	for _, part := range expanded {
		if _, drop := n.strip[part]; drop {
			continue
		}
		kept = append(kept, part)
	}
	if len(kept) == 0 {
		kept = expanded
	}

	return strings.Join(kept, " ")
}

// foldChain is built per call: transform chains carry state and are not safe to share.
func foldChain() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// tokens folds diacritics and case, and splits on anything that is not a letter or digit.
func tokens(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	folded, _, err := transform.String(foldChain(), raw)
	if err != nil {
		folded = raw
	}
	folded = strings.ToLower(folded)

	// Apostrophes and dots join rather than split: "O'Neil" -> "oneil", "Jr." -> "jr".
	folded = strings.NewReplacer("'", "", "’", "", ".", "").Replace(folded)

	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func foldToken(token string) string {
	return strings.Join(tokens(token), "")
}
