package entity

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Type names a registry of canonical entities. Keys are unique per type only.
type Type string

const (
	TypeTeam        Type = "team"
	TypePlayer      Type = "player"
	TypeCompetition Type = "competition"
)

// Canonical is the reconciled identity of a team, player or competition name.
type Canonical struct {
	Key           int64
	CanonicalName string
	// Aliases holds every raw spelling linked to the entity, in first-seen order.
	Aliases []string
}

type registryEntry struct {
	Canonical
	aliasSet map[string]struct{}
}

type scoredForm struct {
	form string
	key  int64
}

// Registry holds the canonical entities of one type for the lifetime of a run.
// Every mutation goes through the registry mutex: it is the single-writer point that
// keeps two novel sightings of the same entity from minting two keys.
type Registry struct {
	mu      sync.Mutex
	kind    Type
	byKey   map[int64]*registryEntry
	byForm  map[string]int64
	forms   []scoredForm
	nextKey int64
}

func NewRegistry(kind Type) *Registry {
	return &Registry{
		kind:    kind,
		byKey:   make(map[int64]*registryEntry),
		byForm:  make(map[string]int64),
		nextKey: 1,
	}
}

func (r *Registry) Type() Type {
	return r.kind
}

// Seed registers an entity that already owns a key, e.g. one committed by an earlier run.
// Alias forms that collide with another entity stay attached as aliases but are not indexed.
func (r *Registry) Seed(item Canonical, normalizer *Normalizer) error {
	name := strings.TrimSpace(item.CanonicalName)
	if item.Key <= 0 {
		return fmt.Errorf("seed %s %q: key must be > 0", r.kind, name)
	}
	if name == "" {
		return fmt.Errorf("seed %s key=%d: canonical name is required", r.kind, item.Key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byKey[item.Key]; exists {
		return fmt.Errorf("seed %s key=%d: duplicate key", r.kind, item.Key)
	}
	if owner, exists := r.byForm[name]; exists {
		return fmt.Errorf("seed %s key=%d: canonical name %q already owned by key=%d", r.kind, item.Key, name, owner)
	}

	entry := &registryEntry{
		Canonical: Canonical{Key: item.Key, CanonicalName: name},
		aliasSet:  make(map[string]struct{}, len(item.Aliases)),
	}
	r.byKey[item.Key] = entry
	r.index(name, item.Key)
	for _, alias := range item.Aliases {
		r.addAlias(entry, alias, normalizer)
	}
	if item.Key >= r.nextKey {
		r.nextKey = item.Key + 1
	}

	return nil
}

func (r *Registry) Get(key int64) (Canonical, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.byKey[key]
	if !ok {
		return Canonical{}, false
	}
	return entry.snapshot(), true
}

func (r *Registry) Has(key int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.byKey[key]
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.byKey)
}

// Entities returns a copy of every entity ordered by key.
func (r *Registry) Entities() []Canonical {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Canonical, 0, len(r.byKey))
	for _, entry := range r.byKey {
		out = append(out, entry.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (r *Registry) index(form string, key int64) {
	if _, exists := r.byForm[form]; exists {
		return
	}
	r.byForm[form] = key
	r.forms = append(r.forms, scoredForm{form: form, key: key})
}

func (r *Registry) addAlias(entry *registryEntry, raw string, normalizer *Normalizer) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	if _, exists := entry.aliasSet[raw]; !exists {
		entry.aliasSet[raw] = struct{}{}
		entry.Aliases = append(entry.Aliases, raw)
	}
	if normalizer == nil {
		return
	}
	form := normalizer.Normalize(raw)
	if form == Unknown {
		return
	}
	if _, owned := r.byForm[form]; !owned {
		r.index(form, entry.Key)
	}
}

func (r *Registry) mint(normalized, raw string, normalizer *Normalizer) int64 {
	key := r.nextKey
	r.nextKey++

	entry := &registryEntry{
		Canonical: Canonical{Key: key, CanonicalName: normalized},
		aliasSet:  make(map[string]struct{}, 1),
	}
	r.byKey[key] = entry
	r.index(normalized, key)
	r.addAlias(entry, raw, normalizer)
	return key
}

func (e *registryEntry) snapshot() Canonical {
	out := e.Canonical
	out.Aliases = append([]string(nil), e.Aliases...)
	return out
}
