// Package dex is the in-process Pokédex: the species catalog, localized
// names, per-species details and media, backed by append-only caches that
// fill lazily from PokeAPI.
package dex

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Species is one catalog entry.
type Species struct {
	ID        int    `json:"id"`
	Slug      string `json:"slug"`
	DisplayEN string `json:"display_en"`
}

// Metadata holds per-species hints shown alongside some rounds.
type Metadata struct {
	Color      string `json:"color"`
	Generation string `json:"generation"`
}

// DisplayName derives an English display name from a slug:
// "mr-mime" becomes "Mr Mime".
func DisplayName(slug string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
}

// Catalog is the list of all species, fetched once per process. A failed
// load is retried on the next call.
type Catalog struct {
	fetch func(context.Context) ([]Species, error)
	sf    singleflight.Group

	mu     sync.RWMutex
	loaded bool
	list   []Species
	byID   map[int]Species
}

// NewCatalog creates a Catalog that loads through fetch.
func NewCatalog(fetch func(context.Context) ([]Species, error)) *Catalog {
	return &Catalog{fetch: fetch}
}

// Set replaces the catalog contents, sorted by id.
func (c *Catalog) Set(list []Species) {
	sorted := append([]Species(nil), list...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	byID := make(map[int]Species, len(sorted))
	for _, s := range sorted {
		byID[s.ID] = s
	}

	c.mu.Lock()
	c.list = sorted
	c.byID = byID
	c.loaded = true
	c.mu.Unlock()
}

// List returns every species ordered by id.
func (c *Catalog) List(ctx context.Context) ([]Species, error) {
	c.mu.RLock()
	if c.loaded {
		list := c.list
		c.mu.RUnlock()
		return list, nil
	}
	c.mu.RUnlock()

	_, err, _ := c.sf.Do("catalog", func() (any, error) {
		list, err := c.fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(list)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.list, nil
}

// Lookup returns the species with id, loading the catalog if needed.
func (c *Catalog) Lookup(ctx context.Context, id int) (Species, bool) {
	if _, err := c.List(ctx); err != nil {
		return Species{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.byID[id]
	return s, ok
}

// IDs returns every species id in order.
func (c *Catalog) IDs(ctx context.Context) ([]int, error) {
	list, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(list))
	for i, s := range list {
		ids[i] = s.ID
	}
	return ids, nil
}
