// Package game builds guessing rounds and checks answers against them.
//
// A round hands the client a challenge asset and an opaque signed token for
// the species behind it. Nothing about the round is stored server side: the
// Verifier recovers the species from the token alone.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/jredh-dev/pokeguess/internal/dex"
	"github.com/jredh-dev/pokeguess/internal/generation"
	"github.com/jredh-dev/pokeguess/internal/lang"
)

// Catalog lists the species a round may draw from.
type Catalog interface {
	IDs(ctx context.Context) ([]int, error)
	Lookup(ctx context.Context, id int) (dex.Species, bool)
}

// Details provides names, Pokédex text and metadata for a species.
type Details interface {
	LocalizedName(ctx context.Context, id int, lang string) (string, error)
	FlavorText(ctx context.Context, id int, lang string) (string, error)
	Metadata(ctx context.Context, id int) (dex.Metadata, error)
}

// Media provides artwork and cry URLs. An empty URL means none exists.
type Media interface {
	Sprite(ctx context.Context, id int) (string, error)
	Cry(ctx context.Context, id int) (string, error)
}

// Cards provides trading-card artwork by display name.
type Cards interface {
	CardImage(ctx context.Context, name, lang string) (string, error)
}

// Signer issues round tokens.
type Signer interface {
	Sign(id int) string
}

// Round is the client-facing description of a started round.
type Round struct {
	RoundID string `json:"round_id"`
	Token   string `json:"token"`
	Mode    Mode   `json:"mode"`
	Lang    string `json:"lang"`
	// ID is only exposed by modes whose asset already identifies the
	// species to anyone who inspects it.
	ID         int    `json:"id,omitempty"`
	Name       string `json:"name"`
	Sprite     string `json:"sprite,omitempty"`
	Audio      string `json:"audio,omitempty"`
	Image      string `json:"image,omitempty"`
	Entry      string `json:"entry,omitempty"`
	BgSize     string `json:"bg_size,omitempty"`
	BgPos      string `json:"bg_pos,omitempty"`
	Color      string `json:"color,omitempty"`
	Generation string `json:"generation,omitempty"`
}

// Deps groups the collaborators of an Engine.
type Deps struct {
	Catalog Catalog
	Details Details
	Media   Media
	Cards   Cards
	Signer  Signer
	Modes   *Registry
	Logger  *slog.Logger
}

// Engine starts rounds for every mode that has an attempt budget.
type Engine struct {
	catalog Catalog
	details Details
	media   Media
	cards   Cards
	signer  Signer
	modes   *Registry
	log     *slog.Logger

	// Intn draws pool indexes and NewRoundID names rounds; both are
	// replaced in tests.
	Intn       func(n int) int
	NewRoundID func() string
}

// NewEngine creates an Engine. A nil Modes selects NewRegistry.
func NewEngine(d Deps) *Engine {
	if d.Modes == nil {
		d.Modes = NewRegistry()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Engine{
		catalog:    d.Catalog,
		details:    d.Details,
		media:      d.Media,
		cards:      d.Cards,
		signer:     d.Signer,
		modes:      d.Modes,
		log:        d.Logger,
		Intn:       rand.Intn,
		NewRoundID: uuid.NewString,
	}
}

// StartRound draws species from the generation-filtered pool until one has
// a usable asset for mode, then returns the signed round. Every draw uses
// the same filtered pool; an empty pool or an exhausted budget returns
// ErrRoundBuild.
func (e *Engine) StartRound(ctx context.Context, mode Mode, lng, gen string) (*Round, error) {
	info, ok := e.modes.Get(mode)
	if !ok || info.Attempts == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	lng = lang.Coerce(lng)
	filter := generation.Parse(gen)

	ids, err := e.catalog.IDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog: %w", ErrRoundBuild, err)
	}
	pool := filter.Apply(ids)
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: no species in generations %v", ErrRoundBuild, filter.Labels())
	}

	for attempt := 1; attempt <= info.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := pool[e.Intn(len(pool))]
		r, err := e.build(ctx, mode, id, lng)
		switch {
		case err != nil:
			e.log.Debug("round attempt failed", "mode", mode, "id", id, "attempt", attempt, "err", err)
			continue
		case r == nil:
			e.log.Debug("round attempt has no asset", "mode", mode, "id", id, "attempt", attempt)
			continue
		}
		r.RoundID = e.NewRoundID()
		r.Token = e.signer.Sign(id)
		r.Mode = mode
		r.Lang = lng
		return r, nil
	}
	return nil, fmt.Errorf("%w: %s gave up after %d attempts", ErrRoundBuild, mode, info.Attempts)
}

// build fetches the asset for one candidate. A nil round with a nil error
// means the species has no asset for mode.
func (e *Engine) build(ctx context.Context, mode Mode, id int, lng string) (*Round, error) {
	switch mode {
	case ModeSprite:
		sprite, err := e.media.Sprite(ctx, id)
		if err != nil || sprite == "" {
			return nil, err
		}
		return &Round{
			Name:   e.canonicalName(ctx, id, lng),
			Sprite: sprite,
			BgSize: "500% 500%",
			BgPos:  e.randomBgPos(),
		}, nil

	case ModeCry:
		cry, err := e.media.Cry(ctx, id)
		if err != nil || cry == "" {
			return nil, err
		}
		r := &Round{Name: e.canonicalName(ctx, id, lng), Audio: cry}
		// The artwork is only a reveal aid here.
		r.Sprite, _ = e.media.Sprite(ctx, id)
		return r, nil

	case ModeSilhouette, ModePixelate:
		sprite, err := e.media.Sprite(ctx, id)
		if err != nil || sprite == "" {
			return nil, err
		}
		r := &Round{ID: id, Name: e.canonicalName(ctx, id, lng), Sprite: sprite}
		if mode == ModeSilhouette {
			r.BgSize, r.BgPos = "contain", "center center"
		}
		e.addMetadata(ctx, r, id)
		return r, nil

	case ModeTCG:
		sp, ok := e.catalog.Lookup(ctx, id)
		if !ok || sp.DisplayEN == "" {
			return nil, nil
		}
		img, err := e.cards.CardImage(ctx, sp.DisplayEN, lang.Default)
		if err != nil || img == "" {
			return nil, err
		}
		return &Round{
			Name:   e.canonicalName(ctx, id, lng),
			Image:  img,
			BgSize: "contain",
			BgPos:  "center center",
		}, nil

	case ModeEntry:
		text, err := e.details.FlavorText(ctx, id, lng)
		if err != nil || strings.TrimSpace(text) == "" {
			return nil, err
		}
		name := e.canonicalName(ctx, id, lng)
		hide := []string{name}
		if en, err := e.details.LocalizedName(ctx, id, lang.Default); err == nil {
			hide = append(hide, en)
		}
		if sp, ok := e.catalog.Lookup(ctx, id); ok {
			hide = append(hide, sp.DisplayEN)
		}
		r := &Round{ID: id, Name: name, Entry: MaskNames(text, hide...)}
		r.Sprite, _ = e.media.Sprite(ctx, id)
		e.addMetadata(ctx, r, id)
		return r, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}

// canonicalName never fails: it falls back to the catalog display name and
// then the slug.
func (e *Engine) canonicalName(ctx context.Context, id int, lng string) string {
	if n, err := e.details.LocalizedName(ctx, id, lng); err == nil && n != "" {
		return n
	}
	if sp, ok := e.catalog.Lookup(ctx, id); ok {
		if sp.DisplayEN != "" {
			return sp.DisplayEN
		}
		return sp.Slug
	}
	return ""
}

func (e *Engine) addMetadata(ctx context.Context, r *Round, id int) {
	md, err := e.details.Metadata(ctx, id)
	if err != nil {
		e.log.Debug("metadata unavailable", "id", id, "err", err)
		r.Generation = generation.Of(id)
		return
	}
	r.Color, r.Generation = md.Color, md.Generation
}

var bgSteps = []string{"0%", "25%", "50%", "75%", "100%"}

func (e *Engine) randomBgPos() string {
	return bgSteps[e.Intn(len(bgSteps))] + " " + bgSteps[e.Intn(len(bgSteps))]
}

// MaskNames replaces every case-insensitive occurrence of each name in text
// with underscores, one per letter. Spaces and punctuation inside a name
// are kept so the blank has the right shape.
func MaskNames(text string, names ...string) string {
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(n))
		if err != nil {
			continue
		}
		text = re.ReplaceAllStringFunc(text, maskLetters)
	}
	return text
}

func maskLetters(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return '_'
		}
		return r
	}, s)
}
