package game

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"github.com/jredh-dev/pokeguess/internal/alias"
	"github.com/jredh-dev/pokeguess/internal/lang"
	"github.com/jredh-dev/pokeguess/internal/textnorm"
)

// TokenVerifier recovers the species id from a round token.
type TokenVerifier interface {
	Verify(token string) (int, bool)
}

// AliasBuilder returns the accepted names for a species.
type AliasBuilder interface {
	Build(ctx context.Context, id int, lang string) (alias.Set, string)
}

// VariantResolver maps form phrases such as "Alolan Raichu" to a species.
type VariantResolver interface {
	Resolve(ctx context.Context, guess string) (int, bool)
}

// MaxGuessRunes bounds the length of a typed guess.
const MaxGuessRunes = 64

// Verdict is the answer to a guess. Name is always the canonical name of
// the round's species so the client can reveal it.
type Verdict struct {
	Correct bool   `json:"correct"`
	Name    string `json:"name"`
}

// Verifier checks guesses against round tokens.
type Verifier struct {
	tokens   TokenVerifier
	aliases  AliasBuilder
	variants VariantResolver
	log      *slog.Logger
}

// NewVerifier creates a Verifier. variants may be nil, which disables form
// phrase matching.
func NewVerifier(tokens TokenVerifier, aliases AliasBuilder, variants VariantResolver, log *slog.Logger) *Verifier {
	if log == nil {
		log = slog.Default()
	}
	return &Verifier{tokens: tokens, aliases: aliases, variants: variants, log: log}
}

// Verify checks guess against the species signed into token. Exact alias
// matches are tried before the form resolver, which may call upstream.
func (v *Verifier) Verify(ctx context.Context, token, guess, lng string) (*Verdict, error) {
	id, ok := v.tokens.Verify(token)
	if !ok {
		return nil, ErrInvalidToken
	}
	if utf8.RuneCountInString(guess) > MaxGuessRunes {
		return nil, ErrInvalidGuess
	}
	key := textnorm.Normalize(guess)
	if key == "" {
		return nil, ErrInvalidGuess
	}
	lng = lang.Coerce(lng)

	set, name := v.aliases.Build(ctx, id, lng)
	if set.Has(key) {
		return &Verdict{Correct: true, Name: name}, nil
	}

	if v.variants != nil {
		if got, ok := v.variants.Resolve(ctx, guess); ok && got == id {
			v.log.Debug("guess matched a form", "id", id, "guess", guess)
			return &Verdict{Correct: true, Name: name}, nil
		}
	}
	return &Verdict{Correct: false, Name: name}, nil
}
