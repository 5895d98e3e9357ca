package entity

import (
	"errors"
	"sync"
	"testing"
)

func newTeamResolver(cfg ResolverConfig) *Resolver {
	normalizer := NewNormalizer(NormalizationRules{
		StripTokens:   []string{"fc"},
		Abbreviations: map[string]string{"utd": "united", "man": "manchester"},
	})
	return NewResolver(normalizer, NewRegistry(TypeTeam), cfg)
}

func TestResolveAliasConvergence(t *testing.T) {
	r := newTeamResolver(DefaultResolverConfig())

	var keys []int64
	for _, raw := range []string{"Manchester United", "Man Utd", "MANCHESTER UNITED FC", "Manchester Untied"} {
		res, err := r.Resolve(raw)
		if err != nil {
			t.Fatalf("resolve %q: %v", raw, err)
		}
		keys = append(keys, res.Key)
	}
	for i, key := range keys {
		if key != keys[0] {
			t.Fatalf("name %d resolved to key %d, want %d", i, key, keys[0])
		}
	}

	entity, ok := r.Registry().Get(keys[0])
	if !ok {
		t.Fatalf("expected entity %d in registry", keys[0])
	}
	if entity.CanonicalName != "manchester united" {
		t.Fatalf("unexpected canonical name %q", entity.CanonicalName)
	}
	if len(entity.Aliases) != 4 {
		t.Fatalf("expected 4 aliases, got %+v", entity.Aliases)
	}
	if r.Registry().Len() != 1 {
		t.Fatalf("expected one entity, got %d", r.Registry().Len())
	}
}

func TestResolveThresholdBoundary(t *testing.T) {
	score := Similarity(ScorerTokenSort, "manchester untied", "manchester united")

	atThreshold := newTeamResolver(ResolverConfig{AcceptThreshold: score, Scorer: ScorerTokenSort})
	first, err := atThreshold.Resolve("Manchester United")
	if err != nil {
		t.Fatalf("seed resolve: %v", err)
	}
	got, err := atThreshold.Resolve("Manchester Untied")
	if err != nil {
		t.Fatalf("resolve at threshold: %v", err)
	}
	if got.Key != first.Key || got.Outcome != OutcomeMatched {
		t.Fatalf("expected match at threshold, got %+v", got)
	}

	aboveScore := newTeamResolver(ResolverConfig{AcceptThreshold: score + 1e-9, Scorer: ScorerTokenSort})
	first, err = aboveScore.Resolve("Manchester United")
	if err != nil {
		t.Fatalf("seed resolve: %v", err)
	}
	got, err = aboveScore.Resolve("Manchester Untied")
	if err != nil {
		t.Fatalf("resolve below threshold: %v", err)
	}
	if got.Key == first.Key || got.Outcome != OutcomeMinted {
		t.Fatalf("expected a new key below threshold, got %+v", got)
	}
}

func TestResolveAcceptsConfiguredDecimalThreshold(t *testing.T) {
	canonical, variant := editedPair(25, 8)
	r := newTeamResolver(ResolverConfig{AcceptThreshold: 0.68, Scorer: ScorerRatio})

	first, err := r.Resolve(canonical)
	if err != nil {
		t.Fatalf("seed resolve: %v", err)
	}
	got, err := r.Resolve(variant)
	if err != nil {
		t.Fatalf("resolve variant: %v", err)
	}
	if got.Key != first.Key || got.Outcome != OutcomeMatched {
		t.Fatalf("expected match at threshold 0.68, got %+v", got)
	}
}

func TestResolveAliasConvergenceWithDefaultRules(t *testing.T) {
	r := NewResolver(NewNormalizer(DefaultNormalizationRules()), NewRegistry(TypeTeam), DefaultResolverConfig())

	first, err := r.Resolve("Manchester United")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for _, raw := range []string{"Man Utd", "MANCHESTER UNITED FC"} {
		got, err := r.Resolve(raw)
		if err != nil {
			t.Fatalf("resolve %q: %v", raw, err)
		}
		if got.Key != first.Key {
			t.Fatalf("%q resolved to key %d, want %d", raw, got.Key, first.Key)
		}
	}
}

func TestResolveDistinctBelowThreshold(t *testing.T) {
	r := newTeamResolver(ResolverConfig{AcceptThreshold: 0.6, ReviewThreshold: 0.70, Scorer: ScorerTokenSort})

	psg, err := r.Resolve("PSG")
	if err != nil {
		t.Fatalf("resolve PSG: %v", err)
	}
	paris, err := r.Resolve("Paris Saint-Germain")
	if err != nil {
		t.Fatalf("resolve Paris Saint-Germain: %v", err)
	}
	if psg.Key == paris.Key {
		t.Fatalf("expected distinct keys, both got %d", psg.Key)
	}
	if paris.Score >= 0.6 {
		t.Fatalf("expected score below threshold, got %v", paris.Score)
	}
}

func TestResolveReviewBand(t *testing.T) {
	cfg := DefaultResolverConfig()
	cfg.Scorer = ScorerRatio
	r := newTeamResolver(cfg)
	if _, err := r.Resolve("Manchester United"); err != nil {
		t.Fatalf("seed resolve: %v", err)
	}

	_, err := r.Resolve("Manchester City")
	if !errors.Is(err, ErrAmbiguous) {
		t.Fatalf("expected ErrAmbiguous, got %v", err)
	}
	var ambiguity *AmbiguityError
	if !errors.As(err, &ambiguity) {
		t.Fatalf("expected *AmbiguityError, got %T", err)
	}
	if ambiguity.CandidateName != "manchester united" || ambiguity.Score < 0.70 || ambiguity.Score >= 0.85 {
		t.Fatalf("unexpected ambiguity %+v", ambiguity)
	}
	if r.Registry().Len() != 1 {
		t.Fatalf("ambiguous name must not mint, registry has %d entities", r.Registry().Len())
	}
}

func TestResolveReviewBandDisabled(t *testing.T) {
	r := newTeamResolver(ResolverConfig{AcceptThreshold: 0.85, Scorer: ScorerRatio})
	if _, err := r.Resolve("Manchester United"); err != nil {
		t.Fatalf("seed resolve: %v", err)
	}
	got, err := r.Resolve("Manchester City")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Outcome != OutcomeMinted {
		t.Fatalf("expected mint without review band, got %+v", got)
	}
}

func TestResolveTieBreak(t *testing.T) {
	normalizer := NewNormalizer(NormalizationRules{})
	cfg := ResolverConfig{AcceptThreshold: 0.7, Scorer: ScorerRatio}

	t.Run("most aliases wins", func(t *testing.T) {
		reg := NewRegistry(TypePlayer)
		if err := reg.Seed(Canonical{Key: 1, CanonicalName: "abcd"}, normalizer); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if err := reg.Seed(Canonical{Key: 2, CanonicalName: "abce", Aliases: []string{"ABCE", "Abce"}}, normalizer); err != nil {
			t.Fatalf("seed: %v", err)
		}

		got, err := NewResolver(normalizer, reg, cfg).Resolve("abcx")
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if got.Key != 2 {
			t.Fatalf("expected key 2, got %+v", got)
		}
	})

	t.Run("lowest key on equal aliases", func(t *testing.T) {
		reg := NewRegistry(TypePlayer)
		if err := reg.Seed(Canonical{Key: 7, CanonicalName: "abce"}, normalizer); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if err := reg.Seed(Canonical{Key: 3, CanonicalName: "abcd"}, normalizer); err != nil {
			t.Fatalf("seed: %v", err)
		}

		got, err := NewResolver(normalizer, reg, cfg).Resolve("abcx")
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if got.Key != 3 {
			t.Fatalf("expected key 3, got %+v", got)
		}
	})
}

func TestResolveUnknown(t *testing.T) {
	r := newTeamResolver(DefaultResolverConfig())
	if _, err := r.Resolve("  "); !errors.Is(err, ErrUnresolvable) {
		t.Fatalf("expected ErrUnresolvable, got %v", err)
	}
	if r.Registry().Len() != 0 {
		t.Fatalf("expected empty registry")
	}
}

func TestRegistrySeed(t *testing.T) {
	normalizer := NewNormalizer(DefaultNormalizationRules())
	reg := NewRegistry(TypeTeam)

	if err := reg.Seed(Canonical{Key: 10, CanonicalName: "arsenal", Aliases: []string{"Arsenal FC"}}, normalizer); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := reg.Seed(Canonical{Key: 10, CanonicalName: "chelsea"}, normalizer); err == nil {
		t.Fatalf("expected duplicate key error")
	}
	if err := reg.Seed(Canonical{Key: 11, CanonicalName: "arsenal"}, normalizer); err == nil {
		t.Fatalf("expected duplicate name error")
	}
	if err := reg.Seed(Canonical{Key: 0, CanonicalName: "chelsea"}, normalizer); err == nil {
		t.Fatalf("expected invalid key error")
	}

	r := NewResolver(normalizer, reg, DefaultResolverConfig())
	got, err := r.Resolve("Chelsea")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Key != 11 {
		t.Fatalf("expected minted key after seeded max, got %d", got.Key)
	}
	got, err = r.Resolve("ARSENAL F.C.")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Key != 10 || got.Outcome != OutcomeExact {
		t.Fatalf("expected exact hit on seeded entity, got %+v", got)
	}
}

func TestResolveConcurrentNovelNames(t *testing.T) {
	r := newTeamResolver(DefaultResolverConfig())

	var wg sync.WaitGroup
	keys := make([]int64, 32)
	for i := range keys {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := r.Resolve("Brighton & Hove Albion")
			if err != nil {
				t.Errorf("resolve: %v", err)
				return
			}
			keys[i] = res.Key
		}(i)
	}
	wg.Wait()

	for _, key := range keys {
		if key != keys[0] {
			t.Fatalf("concurrent resolution minted more than one key: %v", keys)
		}
	}
	if r.Registry().Len() != 1 {
		t.Fatalf("expected one entity, got %d", r.Registry().Len())
	}
}
