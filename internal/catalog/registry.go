package catalog

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// ErrSetNotFound is returned when a set code is not present in the registry.
var ErrSetNotFound = errors.New("set not found")

// Registry is the active set registry built from the raw catalog.
// It is built once (or once per catalog reload) and is read-only afterwards,
// apart from the one-time family tagging.
type Registry struct {
	sets  map[string]*Set
	order []string // set codes in first-seen catalog order
	cards []*Card  // every catalog card, including cards of merged contributor sets

	metaByName map[string]SetMeta
	metaByCode map[string]SetMeta
}

// NewRegistry groups cards into sets by set code, attaches set metadata and
// assembles the synthetic combined sets described by rules.
func NewRegistry(cards []*Card, metas []SetMeta, rules CombineRules) *Registry {
	r := &Registry{
		sets:       make(map[string]*Set),
		cards:      make([]*Card, 0, len(cards)),
		metaByName: make(map[string]SetMeta),
		metaByCode: make(map[string]SetMeta),
	}

	for _, m := range metas {
		if m.Name != "" {
			r.metaByName[m.Name] = m
		}
		if m.SetCode != "" {
			r.metaByCode[m.SetCode] = m
		}
	}

	for _, c := range cards {
		if c == nil || c.SetCode == "" {
			continue
		}
		r.cards = append(r.cards, c)

		s, ok := r.sets[c.SetCode]
		if !ok {
			s = &Set{Code: c.SetCode, Name: c.SetName}
			r.sets[c.SetCode] = s
			r.order = append(r.order, c.SetCode)
		}
		s.Cards = append(s.Cards, c)
	}

	combine(r.sets, &r.order, rules.CrossSetPromoCode, rules.CrossSetPromoName, rules.CrossSetPromoSets)
	combine(r.sets, &r.order, rules.VirtualPromoCode, rules.VirtualPromoName, rules.VirtualPromoSets)

	for _, s := range r.sets {
		s.Meta = r.metaFor(s)
	}

	return r
}

// metaFor prefers metadata matched by set name, then by set code.
func (r *Registry) metaFor(s *Set) SetMeta {
	if m, ok := r.metaByName[s.Name]; ok {
		return m
	}
	if m, ok := r.metaByCode[s.Code]; ok {
		return m
	}
	return SetMeta{}
}

// Set returns the set with the given code.
func (r *Registry) Set(code string) (*Set, bool) {
	s, ok := r.sets[code]
	return s, ok
}

// Lookup returns the set with the given code or ErrSetNotFound.
func (r *Registry) Lookup(code string) (*Set, error) {
	s, ok := r.sets[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSetNotFound, code)
	}
	return s, nil
}

// Cards returns every card in the catalog, including cards whose sets were merged
// into a synthetic set.
func (r *Registry) Cards() []*Card {
	return r.cards
}

// CardsInSets returns the catalog cards whose set code is in codes.
// Codes are compared case-insensitively.
func (r *Registry) CardsInSets(codes []string) []*Card {
	wanted := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		wanted[strings.ToUpper(strings.TrimSpace(c))] = struct{}{}
	}

	var out []*Card
	for _, c := range r.cards {
		if _, ok := wanted[strings.ToUpper(c.SetCode)]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Sets returns the active sets in first-seen catalog order.
func (r *Registry) Sets() []*Set {
	out := make([]*Set, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.sets[code])
	}
	return out
}

// Codes returns the active set codes in first-seen catalog order.
func (r *Registry) Codes() []string {
	return slices.Clone(r.order)
}

// Ordered returns the sets for display: codes listed in packOrder first, in that
// order, then the rest alphabetically by name. Hidden sets are left out.
func (r *Registry) Ordered(packOrder, hidden []string) []*Set {
	out := make([]*Set, 0, len(r.order))
	for _, s := range r.Sets() {
		if slices.Contains(hidden, s.Code) {
			continue
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ai := slices.Index(packOrder, out[i].Code)
		bi := slices.Index(packOrder, out[j].Code)
		switch {
		case ai != -1 && bi != -1:
			return ai < bi
		case ai != -1:
			return true
		case bi != -1:
			return false
		default:
			return out[i].Name < out[j].Name
		}
	})
	return out
}

// Filter keeps the sets whose short code or set code is in codes.
// An empty codes list keeps everything.
func Filter(sets []*Set, codes []string) []*Set {
	if len(codes) == 0 {
		return sets
	}

	wanted := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		wanted[strings.ToUpper(strings.TrimSpace(c))] = struct{}{}
	}

	var out []*Set
	for _, s := range sets {
		_, byShort := wanted[strings.ToUpper(s.ShortCode())]
		_, byCode := wanted[strings.ToUpper(s.Code)]
		if byShort || byCode {
			out = append(out, s)
		}
	}
	return out
}

// Tag assigns a family to every set using classify.
func (r *Registry) Tag(classify func(*Set) Family) {
	for _, s := range r.sets {
		s.Family = classify(s)
	}
}
