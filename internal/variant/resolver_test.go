package variant

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/jredh-dev/pokeguess/internal/dex"
)

// fakeForms knows a handful of PokeAPI form slugs.
type fakeForms struct {
	mu      sync.Mutex
	forms   map[string]int // slug -> creature id
	species map[int]int    // creature id -> species id
	probes  []string
	flaky   bool
}

func newFakeForms() *fakeForms {
	return &fakeForms{
		forms: map[string]int{
			"raichu-alola":     10100,
			"charizard-mega-x": 10034,
			"charizard-mega-y": 10035,
			"charizard-gmax":   10196,
			"giratina-origin":  10007,
			"zacian-crowned":   10188,
			"meowth-galar":     10161,
			"charizard":        6,
		},
		species: map[int]int{10100: 26, 10034: 6, 10035: 6, 10196: 6, 10007: 487, 10188: 888, 10161: 52, 6: 6},
	}
}

func (f *fakeForms) ResolveForm(_ context.Context, slug string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes = append(f.probes, slug)
	if f.flaky {
		return 0, errors.New("timeout")
	}
	if id, ok := f.forms[slug]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("%w: %s", dex.ErrNotFound, slug)
}

func (f *fakeForms) OwningSpecies(_ context.Context, creature int) (int, error) {
	if id, ok := f.species[creature]; ok {
		return id, nil
	}
	return 0, errors.New("no species")
}

func (f *fakeForms) probeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.probes)
}

func TestCandidates(t *testing.T) {
	r := NewResolver(newFakeForms(), nil, nil)

	tests := []struct {
		guess string
		want  []string
	}{
		{"Alolan Raichu", []string{"raichu-alola", "raichu-alolan", "alolan-raichu"}},
		{"Mega Charizard X", []string{"charizard-mega-x", "charizard-mega", "mega-charizard-x"}},
		{"mega-charizard-x", []string{"charizard-mega-x", "charizard-mega", "mega-charizard-x"}},
		{"Mega Venusaur", []string{"venusaur-mega", "venusaur-mega-x", "venusaur-mega-y", "mega-venusaur"}},
		{"Gigantamax Charizard", []string{"charizard-gmax", "gigantamax-charizard"}},
		{"Giratina Origin", []string{"giratina-origin"}},
		{"Crowned_Zacian", []string{"zacian-crowned", "crowned-zacian"}},
		{"Paldean Tauros Combat", []string{
			"tauros-paldea", "tauros-paldean", "tauros-paldea-combat", "tauros-combat", "paldean-tauros-combat",
		}},
		{"Pikachu", []string{"pikachu"}},
		{"Mr. Mime", []string{"mr-mime"}},
		{"Pokémon X", []string{"pokemon-x"}},
		{"   ", nil},
	}
	for _, tt := range tests {
		got := r.Candidates(tt.guess)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Candidates(%q) = %v, want %v", tt.guess, got, tt.want)
		}
	}
}

func TestCandidatesRepeatedQualifiers(t *testing.T) {
	r := NewResolver(newFakeForms(), nil, nil)

	got := r.Candidates("Alolan Alola Raichu alolan")
	want := []string{"raichu-alola", "raichu-alolan", "alolan-alola-raichu-alolan"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Candidates = %v, want %v", got, want)
	}

	long := "raichu " + strings.Repeat("alolan galarian crowned origin ", 500)
	if got := r.Candidates(long); len(got) > 16 {
		t.Errorf("Candidates grew with repeated words: %d slugs", len(got))
	}
}

func TestResolve(t *testing.T) {
	r := NewResolver(newFakeForms(), nil, nil)
	ctx := context.Background()

	tests := []struct {
		guess  string
		want   int
		wantOK bool
	}{
		{"Alolan Raichu", 26, true},
		{"Galarian Meowth", 52, true},
		{"Mega Charizard Y", 6, true},
		{"G-Max Charizard", 0, false}, // "g" and "max" are not vocabulary words
		{"Gmax Charizard", 6, true},
		{"Origin Giratina", 487, true},
		{"Crowned Zacian", 888, true},
		{"Alolan Pikachu", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := r.Resolve(ctx, tt.guess)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Resolve(%q) = %d, %v; want %d, %v", tt.guess, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestResolveDeterministic(t *testing.T) {
	r := NewResolver(newFakeForms(), nil, nil)
	ctx := context.Background()

	a, okA := r.Resolve(ctx, "Mega Charizard X")
	b, okB := r.Resolve(ctx, "mega-charizard-x")
	if !okA || !okB || a != b || a != 6 {
		t.Errorf("Resolve mismatch: %d/%v vs %d/%v", a, okA, b, okB)
	}

	// A fresh resolver with the other spelling first agrees too.
	r2 := NewResolver(newFakeForms(), nil, nil)
	c, okC := r2.Resolve(ctx, "mega-charizard-x")
	if !okC || c != a {
		t.Errorf("fresh Resolve(mega-charizard-x) = %d, %v; want %d", c, okC, a)
	}
}

func TestResolveMemoizes(t *testing.T) {
	forms := newFakeForms()
	r := NewResolver(forms, nil, nil)
	ctx := context.Background()

	r.Resolve(ctx, "Alolan Pikachu")
	n := forms.probeCount()
	if n == 0 {
		t.Fatal("expected probes on first resolve")
	}
	if _, ok := r.Resolve(ctx, "alolan pikachu"); ok {
		t.Error("miss became a hit")
	}
	if forms.probeCount() != n {
		t.Errorf("miss was re-probed: %d probes, want %d", forms.probeCount(), n)
	}

	r.Resolve(ctx, "Alolan Raichu")
	n = forms.probeCount()
	r.Resolve(ctx, "ALOLAN RAICHU")
	if forms.probeCount() != n {
		t.Error("hit was re-probed")
	}
}

func TestResolveTransientNotMemoized(t *testing.T) {
	forms := newFakeForms()
	forms.flaky = true
	r := NewResolver(forms, nil, nil)
	ctx := context.Background()

	if _, ok := r.Resolve(ctx, "Alolan Raichu"); ok {
		t.Fatal("resolved while upstream was failing")
	}
	forms.flaky = false
	if id, ok := r.Resolve(ctx, "Alolan Raichu"); !ok || id != 26 {
		t.Errorf("Resolve after recovery = %d, %v; want 26", id, ok)
	}
}

func TestLoadVocabulary(t *testing.T) {
	v, err := LoadVocabulary("")
	if err != nil {
		t.Fatalf("LoadVocabulary(embedded): %v", err)
	}
	if len(v.Regions) != 4 || v.Regions[0].Adjective() != "alolan" {
		t.Errorf("regions = %+v", v.Regions)
	}

	path := filepath.Join(t.TempDir(), "vocab.yaml")
	doc := "forms: [sunshine]\nmega: [mega]\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	v, err = LoadVocabulary(path)
	if err != nil {
		t.Fatalf("LoadVocabulary(file): %v", err)
	}
	r := NewResolver(newFakeForms(), v, nil)
	got := r.Candidates("Cherrim Sunshine")
	if len(got) == 0 || got[0] != "cherrim-sunshine" {
		t.Errorf("custom vocabulary candidates = %v", got)
	}

	if _, err := ParseVocabulary([]byte("{}")); err == nil {
		t.Error("empty vocabulary should be rejected")
	}
	if _, err := LoadVocabulary(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should error")
	}
}
