// Package variant maps natural-language form names such as "Alolan Raichu"
// or "Mega Charizard X" to the species they belong to.
//
// The resolver guesses upstream form slugs from the words in a guess and
// probes them in order. Only exact slug hits count, so an unknown phrase
// resolves to nothing rather than to a similar-looking species.
package variant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	"github.com/samber/lo"

	"github.com/jredh-dev/pokeguess/internal/dex"
	"github.com/jredh-dev/pokeguess/internal/textnorm"
)

// FormLookup resolves form slugs upstream.
type FormLookup interface {
	// ResolveForm returns the creature owning slug, or an error wrapping
	// dex.ErrNotFound when no such form exists.
	ResolveForm(ctx context.Context, slug string) (int, error)
	OwningSpecies(ctx context.Context, creatureID int) (int, error)
}

type kind int

const (
	kindBase kind = iota
	kindRegion
	kindForm
	kindMega
	kindGmax
	kindQualifier
)

type result struct {
	id int
	ok bool
}

// Resolver turns form phrases into species ids and remembers the answers,
// including misses.
type Resolver struct {
	forms FormLookup
	vocab *Vocabulary
	log   *slog.Logger

	words   map[string]kind
	regions map[string]Region

	mu   sync.RWMutex
	memo map[string]result
}

// NewResolver creates a Resolver. A nil vocab selects DefaultVocabulary.
func NewResolver(forms FormLookup, vocab *Vocabulary, log *slog.Logger) *Resolver {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	if log == nil {
		log = slog.Default()
	}
	r := &Resolver{
		forms:   forms,
		vocab:   vocab,
		log:     log,
		words:   make(map[string]kind),
		regions: make(map[string]Region),
		memo:    make(map[string]result),
	}
	for _, reg := range vocab.Regions {
		for _, w := range append([]string{reg.Suffix}, reg.Words...) {
			r.words[w] = kindRegion
			r.regions[w] = reg
		}
	}
	for _, w := range vocab.Forms {
		r.words[w] = kindForm
	}
	for _, w := range vocab.Mega {
		r.words[w] = kindMega
	}
	for _, w := range vocab.Gigantamax {
		r.words[w] = kindGmax
	}
	return r
}

// Resolve returns the species id named by guess. Results are remembered by
// the normalized guess. A guess for which every candidate was definitively
// absent upstream is remembered as a miss; a guess that hit transient errors
// is retried next time.
func (r *Resolver) Resolve(ctx context.Context, guess string) (int, bool) {
	key := textnorm.Normalize(guess)
	if key == "" {
		return 0, false
	}

	r.mu.RLock()
	res, seen := r.memo[key]
	r.mu.RUnlock()
	if seen {
		return res.id, res.ok
	}

	transient := false
	for _, slug := range r.Candidates(guess) {
		creature, err := r.forms.ResolveForm(ctx, slug)
		if err != nil {
			if !errors.Is(err, dex.ErrNotFound) {
				transient = true
				r.log.Debug("form probe failed", "slug", slug, "err", err)
			}
			continue
		}
		species, err := r.forms.OwningSpecies(ctx, creature)
		if err != nil {
			transient = true
			r.log.Debug("owning species lookup failed", "slug", slug, "creature", creature, "err", err)
			continue
		}
		r.remember(key, result{id: species, ok: true})
		r.log.Debug("variant resolved", "guess", guess, "slug", slug, "species", species)
		return species, true
	}

	if !transient {
		r.remember(key, result{})
	}
	return 0, false
}

func (r *Resolver) remember(key string, res result) {
	r.mu.Lock()
	r.memo[key] = res
	r.mu.Unlock()
}

// Candidates returns the form slugs to probe for guess, most specific first.
func (r *Resolver) Candidates(guess string) []string {
	tokens := tokenize(guess)
	if len(tokens) == 0 {
		return nil
	}

	var (
		base       []string
		regions    []Region
		forms      []string
		qualifiers []string
		mega, gmax bool
	)
	for _, t := range tokens {
		switch r.words[t] {
		case kindRegion:
			regions = append(regions, r.regions[t])
		case kindForm:
			forms = append(forms, t)
		case kindMega:
			mega = true
		case kindGmax:
			gmax = true
		default:
			base = append(base, t)
		}
	}

	regions = lo.UniqBy(regions, func(r Region) string { return r.Suffix })
	forms = lo.Uniq(forms)

	// X and Y only qualify a Mega Evolution; otherwise they are part of the name.
	if mega {
		var rest []string
		for _, t := range base {
			if lo.Contains(r.vocab.Qualifiers, t) {
				qualifiers = append(qualifiers, t)
			} else {
				rest = append(rest, t)
			}
		}
		base = rest
		qualifiers = lo.Uniq(qualifiers)
	}

	var out []string
	if b := strings.Join(base, "-"); b != "" {
		for _, reg := range regions {
			out = append(out, b+"-"+reg.Suffix, b+"-"+reg.Adjective())
			for _, f := range forms {
				out = append(out, b+"-"+reg.Suffix+"-"+f)
			}
		}
		for _, f := range forms {
			out = append(out, b+"-"+f)
		}
		if mega {
			for _, q := range qualifiers {
				out = append(out, b+"-mega-"+q)
			}
			out = append(out, b+"-mega")
			if len(qualifiers) == 0 {
				for _, q := range r.vocab.Qualifiers {
					out = append(out, b+"-mega-"+q)
				}
			}
		}
		if gmax {
			out = append(out, b+"-gmax")
		}
	}
	out = append(out, strings.Join(tokens, "-"))
	return lo.Uniq(out)
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := textnorm.Normalize(f); t != "" {
			out = append(out, t)
		}
	}
	return out
}
