// Package daily implements the once-a-day puzzle: every player gets the same
// species for a UTC date and receives attribute hints after each guess.
//
// The server keeps no per-player state. Progress travels with the client as
// a signed token that expires when the day ends.
package daily

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/jredh-dev/pokeguess/internal/dex"
	"github.com/jredh-dev/pokeguess/internal/game"
	"github.com/jredh-dev/pokeguess/internal/lang"
	"github.com/jredh-dev/pokeguess/internal/pokeapi"
)

const (
	dateLayout = "2006-01-02"

	// MaxTranslate caps the ids accepted by one Translate call.
	MaxTranslate = 256

	translateWorkers = 8
)

// Source provides the species data daily hints are computed from.
type Source interface {
	IDs(ctx context.Context) ([]int, error)
	SpeciesDetail(ctx context.Context, id int) (*pokeapi.Species, error)
	PokemonDetail(ctx context.Context, id int) (*pokeapi.Pokemon, error)
	EvolutionPaths(ctx context.Context, url string) ([][]string, error)
	LocalizedName(ctx context.Context, id int, lang string) (string, error)
}

// NameResolver maps a typed name to a species id without network access.
type NameResolver interface {
	Resolve(guess, lang string) (int, bool)
}

// VariantResolver maps form phrases such as "Alolan Raichu" to a species.
type VariantResolver interface {
	Resolve(ctx context.Context, guess string) (int, bool)
}

// Today is the public state of the current puzzle.
type Today struct {
	Date     string   `json:"date"`
	Progress Progress `json:"state"`
	Token    string   `json:"progress"`
}

// Result is the answer to one daily guess.
type Result struct {
	Correct bool     `json:"correct"`
	Guess   Feedback `json:"guess"`
	// Answer is only revealed once the puzzle is solved.
	Answer   string   `json:"answer,omitempty"`
	Progress Progress `json:"state"`
	Token    string   `json:"progress"`
}

// Game serves the daily puzzle.
type Game struct {
	src      Source
	names    NameResolver
	variants VariantResolver
	tokens   *Tokens
	attrs    *dex.Cache[int, *Attributes]
	log      *slog.Logger

	// Now is the clock; replaced in tests.
	Now func() time.Time
}

// New creates a Game. variants may be nil.
func New(src Source, names NameResolver, variants VariantResolver, tokens *Tokens, log *slog.Logger) *Game {
	if log == nil {
		log = slog.Default()
	}
	return &Game{
		src:      src,
		names:    names,
		variants: variants,
		tokens:   tokens,
		attrs:    dex.NewCache[int, *Attributes](),
		log:      log,
		Now:      time.Now,
	}
}

// PickID chooses the puzzle species for date from ids, which must be in a
// stable order. The choice depends only on the date string.
func PickID(date string, ids []int) int {
	if len(ids) == 0 {
		return 1
	}
	sum := sha256.Sum256([]byte(date))
	n, _ := strconv.ParseUint(hex.EncodeToString(sum[:4]), 16, 32)
	return ids[n%uint64(len(ids))]
}

// Date returns today's puzzle key.
func (g *Game) Date() string {
	return g.Now().UTC().Format(dateLayout)
}

// Start returns today's puzzle state. A valid progress token for today is
// carried over; anything else starts a fresh day.
func (g *Game) Start(progress string) (*Today, error) {
	p := g.progress(progress)
	tok, err := g.tokens.Issue(p)
	if err != nil {
		return nil, err
	}
	return &Today{Date: p.Date, Progress: p, Token: tok}, nil
}

func (g *Game) progress(token string) Progress {
	fresh := Progress{Date: g.Date()}
	if strings.TrimSpace(token) == "" {
		return fresh
	}
	p, err := g.tokens.Parse(token)
	if err != nil {
		if !errors.Is(err, ErrStale) {
			g.log.Debug("discarding daily progress", "err", err)
		}
		return fresh
	}
	if p.Date != fresh.Date {
		return fresh
	}
	return *p
}

// Answer returns today's species id.
func (g *Game) Answer(ctx context.Context) (int, error) {
	ids, err := g.src.IDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("daily: catalog: %w", err)
	}
	return PickID(g.Date(), ids), nil
}

// Guess scores guess against today's species and advances progress.
func (g *Game) Guess(ctx context.Context, guess, lng, progress string) (*Result, error) {
	guess = strings.TrimSpace(guess)
	if guess == "" || utf8.RuneCountInString(guess) > game.MaxGuessRunes {
		return nil, game.ErrInvalidGuess
	}
	lng = lang.Coerce(lng)

	guessID, ok := g.resolve(ctx, guess, lng)
	if !ok {
		return nil, fmt.Errorf("%w: %q", game.ErrUnknownGuess, guess)
	}
	answerID, err := g.Answer(ctx)
	if err != nil {
		return nil, err
	}

	ans, err := g.Attributes(ctx, answerID)
	if err != nil {
		return nil, err
	}
	gus, err := g.Attributes(ctx, guessID)
	if err != nil {
		return nil, err
	}

	fb := Compare(ans, gus)
	fb.Name = g.name(ctx, gus.SpeciesID, lng)

	p := g.progress(progress)
	if !p.Solved {
		p.Guesses++
		p.Solved = fb.correct
	}
	tok, err := g.tokens.Issue(p)
	if err != nil {
		return nil, err
	}

	res := &Result{Correct: fb.correct, Guess: fb, Progress: p, Token: tok}
	if fb.correct {
		res.Answer = g.name(ctx, ans.SpeciesID, lng)
	}
	return res, nil
}

func (g *Game) resolve(ctx context.Context, guess, lng string) (int, bool) {
	if id, ok := g.names.Resolve(guess, lng); ok {
		return id, true
	}
	if g.variants != nil {
		return g.variants.Resolve(ctx, guess)
	}
	return 0, false
}

func (g *Game) name(ctx context.Context, id int, lng string) string {
	n, err := g.src.LocalizedName(ctx, id, lng)
	if err != nil {
		g.log.Debug("daily name lookup failed", "id", id, "lang", lng, "err", err)
		return ""
	}
	return n
}

// Translate returns the localized names of ids, keyed by decimal id.
// Ids whose names cannot be fetched are left out.
func (g *Game) Translate(ctx context.Context, ids []int, lng string) map[string]string {
	lng = lang.Coerce(lng)
	if len(ids) > MaxTranslate {
		ids = ids[:MaxTranslate]
	}

	var mu sync.Mutex
	out := make(map[string]string, len(ids))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(translateWorkers)
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		id := id
		eg.Go(func() error {
			n, err := g.src.LocalizedName(ctx, id, lng)
			if err != nil || n == "" {
				return nil
			}
			mu.Lock()
			out[strconv.Itoa(id)] = n
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()
	return out
}
