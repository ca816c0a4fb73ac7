package warmup

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/jredh-dev/pokeguess/internal/dex"
	"github.com/jredh-dev/pokeguess/internal/pokeapi"
)

// countingUpstream serves n species, each named in every supported language.
type countingUpstream struct {
	n       int
	species atomic.Int32
}

func (u *countingUpstream) SpeciesList(context.Context) ([]pokeapi.NamedResource, error) {
	refs := make([]pokeapi.NamedResource, u.n)
	for i := range refs {
		id := i + 1
		refs[i] = pokeapi.NamedResource{
			Name: fmt.Sprintf("mon-%d", id),
			URL:  fmt.Sprintf("https://pokeapi.test/api/v2/pokemon-species/%d/", id),
		}
	}
	return refs, nil
}

func (u *countingUpstream) Species(_ context.Context, id int) (*pokeapi.Species, error) {
	u.species.Add(1)
	return &pokeapi.Species{
		ID:   id,
		Name: fmt.Sprintf("mon-%d", id),
		Names: map[string]string{
			"en": fmt.Sprintf("Mon %d", id),
			"es": fmt.Sprintf("Mon-es %d", id),
			"fr": fmt.Sprintf("Mon-fr %d", id),
			"de": fmt.Sprintf("Mon-de %d", id),
		},
	}, nil
}

func (u *countingUpstream) Pokemon(context.Context, string) (*pokeapi.Pokemon, error) {
	return nil, errors.New("not used")
}

func (u *countingUpstream) PokemonForm(context.Context, string) (int, error) {
	return 0, errors.New("not used")
}

func (u *countingUpstream) EvolutionChain(context.Context, string) ([][]string, error) {
	return nil, errors.New("not used")
}

func TestWarmupFetchesEachSpeciesOnce(t *testing.T) {
	up := &countingUpstream{n: 200}
	svc := dex.NewService(up, nil)
	w := New(svc, 8, nil)

	// Startup plus a request in every other language.
	for i := 0; i < 4; i++ {
		w.Schedule()
	}
	w.Wait()

	if got := up.species.Load(); got != 200 {
		t.Errorf("upstream species fetches = %d, want 200", got)
	}
	for _, lng := range []string{"en", "es", "fr", "de"} {
		if !svc.HasName(200, lng) {
			t.Errorf("species 200 has no %s name after warm-up", lng)
		}
	}
}
