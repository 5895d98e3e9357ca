package entity

import (
	"errors"
	"fmt"
)

var (
	ErrUnresolvable = errors.New("name cannot be resolved")
	ErrAmbiguous    = errors.New("ambiguous name match")
)

// AmbiguityError reports a best match that scored inside the review band.
type AmbiguityError struct {
	Type          Type
	Raw           string
	Normalized    string
	CandidateKey  int64
	CandidateName string
	Score         float64
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("%s %q (normalized %q) is ambiguous: best candidate key=%d %q score=%.3f",
		e.Type, e.Raw, e.Normalized, e.CandidateKey, e.CandidateName, e.Score)
}

func (e *AmbiguityError) Is(target error) bool {
	return target == ErrAmbiguous
}

type Outcome string

const (
	OutcomeExact   Outcome = "exact"
	OutcomeMatched Outcome = "matched"
	OutcomeMinted  Outcome = "minted"
)

type Resolution struct {
	Key        int64
	Normalized string
	Score      float64
	Outcome    Outcome
}

type ResolverConfig struct {
	// AcceptThreshold is inclusive: a best score equal to it is a match.
	AcceptThreshold float64
	// ReviewThreshold opens the ambiguity band [ReviewThreshold, AcceptThreshold).
	// Zero, or any value >= AcceptThreshold, disables the band.
	ReviewThreshold float64
	Scorer          Scorer
}

func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		AcceptThreshold: 0.85,
		ReviewThreshold: 0.70,
		Scorer:          ScorerTokenSort,
	}
}

func (c ResolverConfig) reviewBandEnabled() bool {
	return c.ReviewThreshold > 0 && c.ReviewThreshold < c.AcceptThreshold
}

// Resolver maps raw names onto a registry, minting keys for novel entities.
type Resolver struct {
	normalizer *Normalizer
	registry   *Registry
	cfg        ResolverConfig
}

func NewResolver(normalizer *Normalizer, registry *Registry, cfg ResolverConfig) *Resolver {
	if normalizer == nil {
		normalizer = NewNormalizer(DefaultNormalizationRules())
	}
	if cfg.Scorer == "" {
		cfg.Scorer = ScorerTokenSort
	}
	return &Resolver{
		normalizer: normalizer,
		registry:   registry,
		cfg:        cfg,
	}
}

func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Resolve returns the key for raw. It holds the registry lock for the whole lookup so
// calls against one registry are strictly ordered.
func (r *Resolver) Resolve(raw string) (Resolution, error) {
	normalized := r.normalizer.Normalize(raw)
	if normalized == Unknown {
		return Resolution{Normalized: normalized}, fmt.Errorf("%w: %s %q is empty", ErrUnresolvable, r.registry.kind, raw)
	}

	reg := r.registry
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if key, ok := reg.byForm[normalized]; ok {
		reg.addAlias(reg.byKey[key], raw, r.normalizer)
		return Resolution{Key: key, Normalized: normalized, Score: 1, Outcome: OutcomeExact}, nil
	}

	bestByKey := make(map[int64]float64, len(reg.byKey))
	for _, candidate := range reg.forms {
		score := Similarity(r.cfg.Scorer, normalized, candidate.form)
		if current, seen := bestByKey[candidate.key]; !seen || score > current {
			bestByKey[candidate.key] = score
		}
	}

	bestKey, bestScore := int64(0), -1.0
	for key, score := range bestByKey {
		if bestKey == 0 || r.prefer(key, score, bestKey, bestScore) {
			bestKey, bestScore = key, score
		}
	}

	if bestKey != 0 && bestScore >= r.cfg.AcceptThreshold {
		reg.addAlias(reg.byKey[bestKey], raw, r.normalizer)
		return Resolution{Key: bestKey, Normalized: normalized, Score: bestScore, Outcome: OutcomeMatched}, nil
	}

	if bestKey != 0 && r.cfg.reviewBandEnabled() && bestScore >= r.cfg.ReviewThreshold {
		return Resolution{Normalized: normalized, Score: bestScore}, &AmbiguityError{
			Type:          reg.kind,
			Raw:           raw,
			Normalized:    normalized,
			CandidateKey:  bestKey,
			CandidateName: reg.byKey[bestKey].CanonicalName,
			Score:         bestScore,
		}
	}

	key := reg.mint(normalized, raw, r.normalizer)
	score := 0.0
	if bestKey != 0 {
		score = bestScore
	}
	return Resolution{Key: key, Normalized: normalized, Score: score, Outcome: OutcomeMinted}, nil
}

// Lookup finds the key of an already known spelling without scoring or minting.
func (r *Resolver) Lookup(raw string) (int64, bool) {
	normalized := r.normalizer.Normalize(raw)
	if normalized == Unknown {
		return 0, false
	}

	r.registry.mu.Lock()
	defer r.registry.mu.Unlock()

	key, ok := r.registry.byForm[normalized]
	return key, ok
}

// prefer breaks ties toward the entity with more aliases, then the lower key.
// Caller holds the registry lock.
func (r *Resolver) prefer(key int64, score float64, bestKey int64, bestScore float64) bool {
	if score != bestScore {
		return score > bestScore
	}
	aliases := len(r.registry.byKey[key].Aliases)
	bestAliases := len(r.registry.byKey[bestKey].Aliases)
	if aliases != bestAliases {
		return aliases > bestAliases
	}
	return key < bestKey
}
