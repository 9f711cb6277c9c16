// Package entities stages the providers, specs, consumers, txs and plans referenced
// while processing one unit of work, so each key is written at most once.
package entities

import (
	"sort"

	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
)

// Resolver is the two-tier entity lookup: an immutable overlay first, then the
// mutable staging maps. A Resolver lives for exactly one block (or one full-state
// sync) and is not safe for concurrent use.
type Resolver struct {
	overlay Overlay

	providers map[string]*indexermodels.Provider
	specs     map[string]*indexermodels.Spec
	consumers map[string]*indexermodels.Consumer
	txs       map[string]*indexermodels.Tx
	plans     map[string]*indexermodels.Plan
}

// NewResolver builds an empty resolver. A nil overlay is treated as empty.
func NewResolver(overlay Overlay) *Resolver {
	if overlay == nil {
		overlay = Empty()
	}
	return &Resolver{
		overlay:   overlay,
		providers: map[string]*indexermodels.Provider{},
		specs:     map[string]*indexermodels.Spec{},
		consumers: map[string]*indexermodels.Consumer{},
		txs:       map[string]*indexermodels.Tx{},
		plans:     map[string]*indexermodels.Plan{},
	}
}

// GetOrSetProvider returns the provider for address, staging it when unknown.
// A staged moniker is replaced only when the new moniker is non-empty or the
// staged one is still empty; a known moniker is never blanked.
// Overlay entries win unless they lack a moniker and one is supplied.
func (r *Resolver) GetOrSetProvider(address, moniker string) indexermodels.Provider {
	if address == "" {
		return indexermodels.Provider{}
	}
	if p, ok := r.providers[address]; ok {
		if moniker != "" || p.Moniker == "" {
			p.Moniker = moniker
		}
		return *p
	}
	// A known provider without a moniker still gets staged when this call
	// brings one, so the upsert can fill it in.
	if p, ok := r.overlay.Provider(address); ok && (p.Moniker != "" || moniker == "") {
		return p
	}
	p := &indexermodels.Provider{Address: address, Moniker: moniker}
	r.providers[address] = p
	return *p
}

func (r *Resolver) GetOrSetSpec(id string) indexermodels.Spec {
	if id == "" {
		return indexermodels.Spec{}
	}
	if s, ok := r.overlay.Spec(id); ok {
		return s
	}
	if s, ok := r.specs[id]; ok {
		return *s
	}
	s := &indexermodels.Spec{ID: id}
	r.specs[id] = s
	return *s
}

// GetOrSetConsumer has no overlay tier; consumers are inserted or ignored.
func (r *Resolver) GetOrSetConsumer(address string) indexermodels.Consumer {
	if address == "" {
		return indexermodels.Consumer{}
	}
	if c, ok := r.consumers[address]; ok {
		return *c
	}
	c := &indexermodels.Consumer{Address: address}
	r.consumers[address] = c
	return *c
}

// GetOrSetPlan stages a plan. A later call refreshes description and price.
func (r *Resolver) GetOrSetPlan(id, description string, price *int64) indexermodels.Plan {
	if id == "" {
		return indexermodels.Plan{}
	}
	if p, ok := r.overlay.Plan(id); ok {
		return p
	}
	if p, ok := r.plans[id]; ok {
		if description != "" {
			p.Description = description
		}
		if price != nil {
			p.Price = price
		}
		return *p
	}
	p := &indexermodels.Plan{ID: id, Description: description, Price: price}
	r.plans[id] = p
	return *p
}

// SetTx stages the transaction once per hash. A nil or empty hash is a no-op.
func (r *Resolver) SetTx(hash *string, height int64) {
	if hash == nil || *hash == "" {
		return
	}
	if _, ok := r.txs[*hash]; ok {
		return
	}
	r.txs[*hash] = &indexermodels.Tx{Hash: *hash, BlockID: height}
}

// Staged returns every staged entity, sorted by key so concurrent writers lock
// rows in the same order.
func (r *Resolver) Staged() indexermodels.EntitySet {
	var set indexermodels.EntitySet
	for _, k := range sortedKeys(r.providers) {
		set.Providers = append(set.Providers, *r.providers[k])
	}
	for _, k := range sortedKeys(r.specs) {
		set.Specs = append(set.Specs, *r.specs[k])
	}
	for _, k := range sortedKeys(r.consumers) {
		set.Consumers = append(set.Consumers, *r.consumers[k])
	}
	for _, k := range sortedKeys(r.txs) {
		set.Txs = append(set.Txs, *r.txs[k])
	}
	for _, k := range sortedKeys(r.plans) {
		set.Plans = append(set.Plans, *r.plans[k])
	}
	return set
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
