package dex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jredh-dev/pokeguess/internal/generation"
	"github.com/jredh-dev/pokeguess/internal/lang"
	"github.com/jredh-dev/pokeguess/internal/pokeapi"
)

// ErrNotFound marks a definitive upstream miss, as opposed to a transient
// failure.
var ErrNotFound = pokeapi.ErrNotFound

// Upstream is the subset of the PokeAPI client the Service needs.
type Upstream interface {
	SpeciesList(ctx context.Context) ([]pokeapi.NamedResource, error)
	Species(ctx context.Context, id int) (*pokeapi.Species, error)
	Pokemon(ctx context.Context, ref string) (*pokeapi.Pokemon, error)
	PokemonForm(ctx context.Context, slug string) (int, error)
	EvolutionChain(ctx context.Context, url string) ([][]string, error)
}

// Service answers catalog, name, detail, media and form questions from its
// caches, filling them from Upstream on a miss.
type Service struct {
	api Upstream
	log *slog.Logger

	Catalog *Catalog
	Names   *NameCache

	species *Cache[int, *pokeapi.Species]
	pokemon *Cache[string, *pokeapi.Pokemon]
	chains  *Cache[string, [][]string]
}

// NewService wires a Service with empty caches.
func NewService(api Upstream, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		api:     api,
		log:     log,
		Names:   NewNameCache(),
		species: NewCache[int, *pokeapi.Species](),
		pokemon: NewCache[string, *pokeapi.Pokemon](),
		chains:  NewCache[string, [][]string](),
	}
	s.Catalog = NewCatalog(s.fetchCatalog)
	return s
}

func (s *Service) fetchCatalog(ctx context.Context) ([]Species, error) {
	refs, err := s.api.SpeciesList(ctx)
	if err != nil {
		return nil, fmt.Errorf("dex: load catalog: %w", err)
	}
	list := make([]Species, 0, len(refs))
	for _, r := range refs {
		id := r.ID()
		if id == 0 || r.Name == "" {
			continue
		}
		list = append(list, Species{ID: id, Slug: r.Name, DisplayEN: DisplayName(r.Name)})
	}
	s.log.Info("catalog loaded", "species", len(list))
	return list, nil
}

// ListSpecies returns the catalog ordered by id.
func (s *Service) ListSpecies(ctx context.Context) ([]Species, error) {
	return s.Catalog.List(ctx)
}

// Lookup returns the catalog entry for id.
func (s *Service) Lookup(ctx context.Context, id int) (Species, bool) {
	return s.Catalog.Lookup(ctx, id)
}

// IDs returns every species id.
func (s *Service) IDs(ctx context.Context) ([]int, error) {
	return s.Catalog.IDs(ctx)
}

// SpeciesDetail returns /pokemon-species data for id and merges its names
// into the name cache.
func (s *Service) SpeciesDetail(ctx context.Context, id int) (*pokeapi.Species, error) {
	return s.species.GetOrFetch(ctx, id, func(ctx context.Context) (*pokeapi.Species, error) {
		sp, err := s.api.Species(ctx, id)
		if err != nil {
			return nil, err
		}
		s.Names.Merge(id, supportedNames(sp.Names))
		return sp, nil
	})
}

// PokemonDetail returns /pokemon data for a creature id.
func (s *Service) PokemonDetail(ctx context.Context, id int) (*pokeapi.Pokemon, error) {
	return s.pokemonByRef(ctx, strconv.Itoa(id))
}

func (s *Service) pokemonByRef(ctx context.Context, ref string) (*pokeapi.Pokemon, error) {
	return s.pokemon.GetOrFetch(ctx, ref, func(ctx context.Context) (*pokeapi.Pokemon, error) {
		return s.api.Pokemon(ctx, ref)
	})
}

// EvolutionPaths returns the flattened evolution chain at url.
func (s *Service) EvolutionPaths(ctx context.Context, url string) ([][]string, error) {
	if url == "" {
		return nil, nil
	}
	return s.chains.GetOrFetch(ctx, url, func(ctx context.Context) ([][]string, error) {
		return s.api.EvolutionChain(ctx, url)
	})
}

// LocalizedName returns the display name of id in lng. When upstream has no
// translation it falls back to the official English name, then to the
// catalog display name.
func (s *Service) LocalizedName(ctx context.Context, id int, lng string) (string, error) {
	lng = lang.Coerce(lng)
	if n, ok := s.Names.Get(id, lng); ok {
		return n, nil
	}
	if _, err := s.SpeciesDetail(ctx, id); err != nil {
		return "", err
	}
	if n, ok := s.Names.Get(id, lng); ok {
		return n, nil
	}
	if n, ok := s.Names.Get(id, lang.Default); ok {
		return n, nil
	}
	if sp, ok := s.Catalog.Lookup(ctx, id); ok && sp.DisplayEN != "" {
		return sp.DisplayEN, nil
	}
	return "", fmt.Errorf("dex: no name for species %d", id)
}

// CachedName returns a name only if it is already cached.
func (s *Service) CachedName(id int, lng string) (string, bool) {
	return s.Names.Get(id, lang.Coerce(lng))
}

// CachedNames returns every cached name in lng, keyed by species id.
func (s *Service) CachedNames(lng string) map[int]string {
	return s.Names.Snapshot(lang.Coerce(lng))
}

// HasName reports whether id has a cached name in lng.
func (s *Service) HasName(id int, lng string) bool {
	return s.Names.Has(id, lng)
}

// RefreshNames refetches the species record for id, bypassing the cache,
// and merges its names.
func (s *Service) RefreshNames(ctx context.Context, id int) error {
	sp, err := s.api.Species(ctx, id)
	if err != nil {
		return fmt.Errorf("dex: refresh names for %d: %w", id, err)
	}
	s.species.Put(id, sp)
	s.Names.Merge(id, supportedNames(sp.Names))
	return nil
}

// FlavorText returns a cleaned Pokédex entry for id, preferring lng, then
// English, then any language. An empty string means none exists.
func (s *Service) FlavorText(ctx context.Context, id int, lng string) (string, error) {
	sp, err := s.SpeciesDetail(ctx, id)
	if err != nil {
		return "", err
	}
	if t := sp.Flavor[lang.Coerce(lng)]; t != "" {
		return t, nil
	}
	if t := sp.Flavor[lang.Default]; t != "" {
		return t, nil
	}
	return sp.FlavorAny, nil
}

// Metadata returns the color and generation label for id.
func (s *Service) Metadata(ctx context.Context, id int) (Metadata, error) {
	sp, err := s.SpeciesDetail(ctx, id)
	if err != nil {
		return Metadata{}, err
	}
	md := Metadata{Color: sp.Color, Generation: generation.Of(id)}
	if sp.Generation > 0 {
		md.Generation = strconv.Itoa(sp.Generation)
	}
	return md, nil
}

// Sprite returns the best artwork URL for id, or "" when it has none.
func (s *Service) Sprite(ctx context.Context, id int) (string, error) {
	p, err := s.PokemonDetail(ctx, id)
	if err != nil {
		return "", err
	}
	return p.Sprite, nil
}

// Cry returns the cry audio URL for id, or "" when it has none.
func (s *Service) Cry(ctx context.Context, id int) (string, error) {
	p, err := s.PokemonDetail(ctx, id)
	if err != nil {
		return "", err
	}
	return p.Cry, nil
}

// ResolveForm maps a form slug such as "raichu-alola" to the id of the
// creature that owns it. A slug that is neither a form nor a creature
// returns ErrNotFound.
func (s *Service) ResolveForm(ctx context.Context, slug string) (int, error) {
	id, err := s.api.PokemonForm(ctx, slug)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return 0, err
	}
	p, err := s.pokemonByRef(ctx, slug)
	if err != nil {
		return 0, err
	}
	return p.ID, nil
}

// OwningSpecies returns the species id a creature belongs to.
func (s *Service) OwningSpecies(ctx context.Context, creatureID int) (int, error) {
	p, err := s.PokemonDetail(ctx, creatureID)
	if err != nil {
		return 0, err
	}
	if p.SpeciesID == 0 {
		return 0, fmt.Errorf("dex: creature %d has no species", creatureID)
	}
	return p.SpeciesID, nil
}

func supportedNames(all map[string]string) map[string]string {
	out := make(map[string]string, len(lang.Supported))
	for _, l := range lang.Supported {
		if n := all[l]; n != "" {
			out[l] = n
		}
	}
	return out
}
