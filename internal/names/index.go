// Package names keeps a searchable index of species names per language.
//
// A background worker periodically rebuilds the index from the catalog and
// the name cache, so names fetched by warm-up or by earlier rounds become
// searchable without any request paying for the rebuild.
package names

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/jredh-dev/pokeguess/internal/dex"
	"github.com/jredh-dev/pokeguess/internal/generation"
	"github.com/jredh-dev/pokeguess/internal/lang"
	"github.com/jredh-dev/pokeguess/internal/textnorm"
)

const (
	DefaultRefresh = 30 * time.Second

	DefaultLimit = 20
	MaxLimit     = 50

	rebuildTimeout = 20 * time.Second
)

// Source provides the catalog and whatever localized names are cached.
type Source interface {
	ListSpecies(ctx context.Context) ([]dex.Species, error)
	CachedNames(lang string) map[int]string
}

// Entry is one searchable species name.
type Entry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`

	key string
}

type table struct {
	entries []Entry        // ordered by id
	keys    map[string]int // normalized name -> id
}

// Index serves name lookups from pre-built per-language tables.
type Index struct {
	src      Source
	interval time.Duration
	log      *slog.Logger

	mu     sync.RWMutex
	tables map[string]*table

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates an Index. Call Start to begin background refreshes.
func New(src Source, interval time.Duration, log *slog.Logger) *Index {
	if interval <= 0 {
		interval = DefaultRefresh
	}
	if log == nil {
		log = slog.Default()
	}
	return &Index{
		src:      src,
		interval: interval,
		log:      log,
		tables:   map[string]*table{},
		stop:     make(chan struct{}),
	}
}

// Start launches the background worker.
func (x *Index) Start() {
	go x.run()
}

// Stop shuts down the background worker. It is safe to call more than once.
func (x *Index) Stop() {
	x.stopOnce.Do(func() { close(x.stop) })
}

func (x *Index) run() {
	ticker := time.NewTicker(x.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), rebuildTimeout)
			if err := x.Rebuild(ctx); err != nil {
				x.log.Warn("name index rebuild failed", "err", err)
			}
			cancel()
		case <-x.stop:
			return
		}
	}
}

// Rebuild replaces every language table from the current catalog and
// name cache.
func (x *Index) Rebuild(ctx context.Context) error {
	species, err := x.src.ListSpecies(ctx)
	if err != nil {
		return err
	}

	english := x.src.CachedNames(lang.Default)
	tables := make(map[string]*table, len(lang.Supported))
	for _, l := range lang.Supported {
		localized := english
		if l != lang.Default {
			localized = x.src.CachedNames(l)
		}
		tables[l] = buildTable(species, localized, english)
	}

	x.mu.Lock()
	x.tables = tables
	x.mu.Unlock()
	return nil
}

// buildTable indexes each species under its display name in the table's
// language plus its English name, catalog name and slug. On a key
// collision the lower id wins.
func buildTable(species []dex.Species, localized, english map[int]string) *table {
	t := &table{
		entries: make([]Entry, 0, len(species)),
		keys:    make(map[string]int, len(species)*3),
	}
	for _, sp := range species {
		name := lo.CoalesceOrEmpty(localized[sp.ID], english[sp.ID], sp.DisplayEN, sp.Slug)
		key := textnorm.Normalize(name)
		t.entries = append(t.entries, Entry{ID: sp.ID, Name: name, key: key})
		for _, alias := range []string{name, english[sp.ID], sp.DisplayEN, sp.Slug} {
			k := textnorm.Normalize(alias)
			if k == "" {
				continue
			}
			if _, taken := t.keys[k]; !taken {
				t.keys[k] = sp.ID
			}
		}
	}
	sort.SliceStable(t.entries, func(i, j int) bool { return t.entries[i].ID < t.entries[j].ID })
	return t
}

// Ensure builds the index if no build has happened yet.
func (x *Index) Ensure(ctx context.Context) error {
	x.mu.RLock()
	built := len(x.tables) > 0
	x.mu.RUnlock()
	if built {
		return nil
	}
	return x.Rebuild(ctx)
}

func (x *Index) table(lng string) *table {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.tables[lang.Coerce(lng)]
}

// Names returns every species name in lng allowed by gen, ordered by id.
func (x *Index) Names(lng string, gen generation.Filter) []Entry {
	t := x.table(lng)
	if t == nil {
		return nil
	}
	return lo.Filter(t.entries, func(e Entry, _ int) bool { return gen.Allows(e.ID) })
}

// Resolve maps a typed name to a species id. The table for lng is tried
// first, then every other language.
func (x *Index) Resolve(guess, lng string) (int, bool) {
	key := textnorm.Normalize(guess)
	if key == "" {
		return 0, false
	}
	lng = lang.Coerce(lng)
	for _, l := range append([]string{lng}, lang.Others(lng)...) {
		t := x.table(l)
		if t == nil {
			continue
		}
		if id, ok := t.keys[key]; ok {
			return id, true
		}
	}
	return 0, false
}

// Suggest returns names in lng containing query, prefix matches first.
// limit is clamped to [1, MaxLimit]; zero selects DefaultLimit.
func (x *Index) Suggest(query, lng string, gen generation.Filter, limit int) []Entry {
	q := textnorm.Normalize(query)
	t := x.table(lng)
	if q == "" || t == nil {
		return []Entry{}
	}
	switch {
	case limit == 0:
		limit = DefaultLimit
	case limit < 1:
		limit = 1
	case limit > MaxLimit:
		limit = MaxLimit
	}

	var prefix, inner []Entry
	for _, e := range t.entries {
		if !gen.Allows(e.ID) {
			continue
		}
		switch {
		case strings.HasPrefix(e.key, q):
			prefix = append(prefix, e)
		case strings.Contains(e.key, q):
			inner = append(inner, e)
		}
	}
	out := append(prefix, inner...)
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []Entry{}
	}
	return out
}
