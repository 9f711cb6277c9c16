package entities

import (
	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
)

// Overlay is a read-only view of entities already known to be persisted.
// The resolver checks it before staging anything.
type Overlay interface {
	Provider(address string) (indexermodels.Provider, bool)
	Spec(id string) (indexermodels.Spec, bool)
	Plan(id string) (indexermodels.Plan, bool)
}

// Snapshot is an immutable Overlay built from a full-state sync. It is safe to
// share between goroutines once constructed.
type Snapshot struct {
	providers map[string]indexermodels.Provider
	specs     map[string]indexermodels.Spec
	plans     map[string]indexermodels.Plan
}

// NewSnapshot copies the given registries into a new Snapshot.
func NewSnapshot(providers []indexermodels.Provider, specs []indexermodels.Spec, plans []indexermodels.Plan) *Snapshot {
	s := &Snapshot{
		providers: make(map[string]indexermodels.Provider, len(providers)),
		specs:     make(map[string]indexermodels.Spec, len(specs)),
		plans:     make(map[string]indexermodels.Plan, len(plans)),
	}
	for _, p := range providers {
		// a later entry only replaces the moniker when it has one
		if prev, ok := s.providers[p.Address]; ok && p.Moniker == "" {
			p.Moniker = prev.Moniker
		}
		s.providers[p.Address] = p
	}
	for _, sp := range specs {
		s.specs[sp.ID] = sp
	}
	for _, pl := range plans {
		s.plans[pl.ID] = pl
	}
	return s
}

func (s *Snapshot) Provider(address string) (indexermodels.Provider, bool) {
	if s == nil {
		return indexermodels.Provider{}, false
	}
	p, ok := s.providers[address]
	return p, ok
}

func (s *Snapshot) Spec(id string) (indexermodels.Spec, bool) {
	if s == nil {
		return indexermodels.Spec{}, false
	}
	sp, ok := s.specs[id]
	return sp, ok
}

func (s *Snapshot) Plan(id string) (indexermodels.Plan, bool) {
	if s == nil {
		return indexermodels.Plan{}, false
	}
	p, ok := s.plans[id]
	return p, ok
}

// Len returns the number of providers, specs and plans held.
func (s *Snapshot) Len() (providers, specs, plans int) {
	if s == nil {
		return 0, 0, 0
	}
	return len(s.providers), len(s.specs), len(s.plans)
}

type emptyOverlay struct{}

func (emptyOverlay) Provider(string) (indexermodels.Provider, bool) { return indexermodels.Provider{}, false }
func (emptyOverlay) Spec(string) (indexermodels.Spec, bool)         { return indexermodels.Spec{}, false }
func (emptyOverlay) Plan(string) (indexermodels.Plan, bool)         { return indexermodels.Plan{}, false }

// Empty returns an overlay that knows nothing.
func Empty() Overlay { return emptyOverlay{} }
