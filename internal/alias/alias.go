// Package alias builds the set of accepted answers for a species: every
// name a player could reasonably type, reduced to comparison keys.
package alias

import (
	"context"
	"log/slog"

	"github.com/jredh-dev/pokeguess/internal/dex"
	"github.com/jredh-dev/pokeguess/internal/lang"
	"github.com/jredh-dev/pokeguess/internal/textnorm"
)

// Catalog resolves a species id to its slug and English display name.
type Catalog interface {
	Lookup(ctx context.Context, id int) (dex.Species, bool)
}

// Names resolves localized species names.
type Names interface {
	LocalizedName(ctx context.Context, id int, lang string) (string, error)
	RefreshNames(ctx context.Context, id int) error
}

// Set is a set of normalized names.
type Set map[string]struct{}

// Add normalizes name and adds it. Names that normalize to "" are ignored.
func (s Set) Add(name string) {
	if k := textnorm.Normalize(name); k != "" {
		s[k] = struct{}{}
	}
}

// Has reports whether key, already normalized, is in the set.
func (s Set) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Matches normalizes guess and reports whether it is in the set.
func (s Set) Matches(guess string) bool {
	k := textnorm.Normalize(guess)
	return k != "" && s.Has(k)
}

// Builder assembles alias sets from the catalog and the name cache.
type Builder struct {
	catalog Catalog
	names   Names
	log     *slog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(c Catalog, n Names, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{catalog: c, names: n, log: log}
}

// Build returns the accepted names for species id and the best display name
// for lng. Each source is tried independently; a failing source is skipped.
func (b *Builder) Build(ctx context.Context, id int, lng string) (Set, string) {
	lng = lang.Coerce(lng)
	set := make(Set)

	var slug, displayEN string
	if sp, ok := b.catalog.Lookup(ctx, id); ok {
		slug, displayEN = sp.Slug, sp.DisplayEN
		set.Add(slug)
		set.Add(displayEN)
	}

	localized, err := b.names.LocalizedName(ctx, id, lng)
	if err != nil || localized == "" {
		b.log.Debug("localized name missing, refreshing", "id", id, "lang", lng, "err", err)
		if rerr := b.names.RefreshNames(ctx, id); rerr != nil {
			b.log.Debug("refresh names failed", "id", id, "err", rerr)
		}
		localized, err = b.names.LocalizedName(ctx, id, lng)
		if err != nil {
			b.log.Debug("localized name retry failed", "id", id, "lang", lng, "err", err)
			localized = ""
		}
	}
	set.Add(localized)

	for _, other := range lang.Others(lng) {
		n, err := b.names.LocalizedName(ctx, id, other)
		if err != nil {
			continue
		}
		set.Add(n)
	}

	return set, firstNonEmpty(localized, displayEN, slug)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
