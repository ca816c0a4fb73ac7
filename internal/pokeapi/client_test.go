package pokeapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/pokemon-species", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "20000" {
			t.Errorf("species list limit = %q", r.URL.Query().Get("limit"))
		}
		fmt.Fprintf(w, `{"results":[
			{"name":"bulbasaur","url":"%[1]s/pokemon-species/1/"},
			{"name":"mr-mime","url":"%[1]s/pokemon-species/122/"}]}`, srv.URL)
	})
	mux.HandleFunc("/pokemon-species/122", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id":122,"name":"mr-mime",
			"names":[{"name":"Mr. Mime","language":{"name":"en"}},{"name":"M. Mime","language":{"name":"fr"}}],
			"flavor_text_entries":[
				{"flavor_text":"If interrupted\nwhile it is\fmiming, it will\nslap around\nthe offender.","language":{"name":"en"}},
				{"flavor_text":"Second english entry.","language":{"name":"en"}},
				{"flavor_text":"Il mime.","language":{"name":"fr"}}],
			"color":{"name":"pink"},
			"generation":{"name":"generation-i","url":"%[1]s/generation/1/"},
			"evolution_chain":{"url":"%[1]s/evolution-chain/58/"},
			"varieties":[{"is_default":false,"pokemon":{"url":"%[1]s/pokemon/10168/"}},
			             {"is_default":true,"pokemon":{"url":"%[1]s/pokemon/122/"}}]}`, srv.URL)
	})
	mux.HandleFunc("/pokemon/122", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id":122,"name":"mr-mime","height":13,"weight":545,
			"species":{"name":"mr-mime","url":"%[1]s/pokemon-species/122/"},
			"sprites":{"front_default":"front.png","other":{"official-artwork":{"front_default":"art.png"}}},
			"cries":{"latest":"","legacy":"legacy.ogg"},
			"types":[{"slot":2,"type":{"name":"fairy"}},{"slot":1,"type":{"name":"psychic"}}]}`, srv.URL)
	})
	mux.HandleFunc("/pokemon/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":1,"name":"bulbasaur","sprites":{"front_default":null,
			"other":{"official-artwork":{"front_default":null},"home":{"front_default":"home.png"}}},
			"cries":{"latest":"latest.ogg"},"types":[]}`)
	})
	mux.HandleFunc("/pokemon-form/raichu-alola", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"name":"raichu-alola","pokemon":{"url":"%s/pokemon/10100/"}}`, srv.URL)
	})
	mux.HandleFunc("/evolution-chain/58", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chain":{"species":{"name":"mime-jr"},"evolves_to":[
			{"species":{"name":"mr-mime"},"evolves_to":[{"species":{"name":"mr-rime"},"evolves_to":[]}]}]}}`)
	})
	mux.HandleFunc("/pokemon/500", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSpeciesList(t *testing.T) {
	srv := testServer(t)
	c := New(srv.URL, time.Second)

	got, err := c.SpeciesList(context.Background())
	if err != nil {
		t.Fatalf("SpeciesList: %v", err)
	}
	if len(got) != 2 || got[1].Name != "mr-mime" || got[1].ID() != 122 {
		t.Errorf("SpeciesList = %+v", got)
	}
}

func TestSpecies(t *testing.T) {
	srv := testServer(t)
	c := New(srv.URL, time.Second)

	s, err := c.Species(context.Background(), 122)
	if err != nil {
		t.Fatalf("Species: %v", err)
	}
	if s.Names["en"] != "Mr. Mime" || s.Names["fr"] != "M. Mime" {
		t.Errorf("Names = %v", s.Names)
	}
	if want := "If interrupted while it is miming, it will slap around the offender."; s.Flavor["en"] != want {
		t.Errorf("Flavor[en] = %q, want %q", s.Flavor["en"], want)
	}
	if s.Flavor["fr"] != "Il mime." {
		t.Errorf("Flavor[fr] = %q", s.Flavor["fr"])
	}
	if s.Color != "pink" || s.Generation != 1 || s.DefaultPokemonID != 122 {
		t.Errorf("Color=%q Generation=%d DefaultPokemonID=%d", s.Color, s.Generation, s.DefaultPokemonID)
	}
}

func TestPokemon(t *testing.T) {
	srv := testServer(t)
	c := New(srv.URL, time.Second)

	p, err := c.Pokemon(context.Background(), "122")
	if err != nil {
		t.Fatalf("Pokemon: %v", err)
	}
	if p.Sprite != "art.png" {
		t.Errorf("Sprite = %q, want official artwork", p.Sprite)
	}
	if p.Cry != "legacy.ogg" {
		t.Errorf("Cry = %q, want legacy fallback", p.Cry)
	}
	if !reflect.DeepEqual(p.Types, []string{"psychic", "fairy"}) {
		t.Errorf("Types = %v, want slot order", p.Types)
	}
	if p.SpeciesID != 122 || p.Height != 13 || p.Weight != 545 {
		t.Errorf("SpeciesID=%d Height=%d Weight=%d", p.SpeciesID, p.Height, p.Weight)
	}

	p, err = c.Pokemon(context.Background(), "1")
	if err != nil {
		t.Fatalf("Pokemon(1): %v", err)
	}
	if p.Sprite != "home.png" || p.Cry != "latest.ogg" {
		t.Errorf("Sprite=%q Cry=%q", p.Sprite, p.Cry)
	}
}

func TestErrors(t *testing.T) {
	srv := testServer(t)
	c := New(srv.URL, time.Second)
	c.Backoff = time.Millisecond
	ctx := context.Background()

	if _, err := c.Pokemon(ctx, "missingno"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing pokemon: err = %v, want ErrNotFound", err)
	}

	_, err := c.Pokemon(ctx, "500")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadGateway || !se.Temporary() {
		t.Errorf("bad gateway: err = %v", err)
	}
}

func TestRetries(t *testing.T) {
	tests := []struct {
		name     string
		statuses []int
		wantHits int32
		wantErr  bool
	}{
		{"recovers after 503s", []int{503, 503, 200}, 3, false},
		{"rate limited", []int{429, 200}, 2, false},
		{"gives up", []int{502, 502, 502, 502}, 3, true},
		{"404 is final", []int{404, 200}, 1, true},
		{"400 is final", []int{400, 200}, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := int(hits.Add(1)) - 1
				code := tt.statuses[min(n, len(tt.statuses)-1)]
				if code != http.StatusOK {
					w.WriteHeader(code)
					return
				}
				fmt.Fprint(w, `{"results":[]}`)
			}))
			defer srv.Close()

			c := New(srv.URL, time.Second)
			c.Backoff = time.Millisecond
			_, err := c.SpeciesList(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got := hits.Load(); got != tt.wantHits {
				t.Errorf("upstream hits = %d, want %d", got, tt.wantHits)
			}
		})
	}
}

func TestPokemonForm(t *testing.T) {
	srv := testServer(t)
	c := New(srv.URL, time.Second)

	id, err := c.PokemonForm(context.Background(), "Raichu-Alola")
	if err != nil || id != 10100 {
		t.Errorf("PokemonForm = %d, %v; want 10100", id, err)
	}
	if _, err := c.PokemonForm(context.Background(), "raichu-galar"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown form: err = %v, want ErrNotFound", err)
	}
}

func TestEvolutionChain(t *testing.T) {
	srv := testServer(t)
	c := New(srv.URL, time.Second)

	paths, err := c.EvolutionChain(context.Background(), srv.URL+"/evolution-chain/58")
	if err != nil {
		t.Fatalf("EvolutionChain: %v", err)
	}
	want := [][]string{
		{"mime-jr"},
		{"mime-jr", "mr-mime"},
		{"mime-jr", "mr-mime", "mr-rime"},
	}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
}

func TestIDFromURL(t *testing.T) {
	tests := map[string]int{
		"https://pokeapi.co/api/v2/pokemon-species/25/": 25,
		"https://pokeapi.co/api/v2/pokemon/10100":       10100,
		"https://pokeapi.co/api/v2/pokemon/pikachu/":    0,
		"":                                              0,
	}
	for in, want := range tests {
		if got := IDFromURL(in); got != want {
			t.Errorf("IDFromURL(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestCleanFlavorText(t *testing.T) {
	if got := CleanFlavorText("  A\fB\n\nC\r D  "); got != "A B C D" {
		t.Errorf("CleanFlavorText = %q", got)
	}
}
