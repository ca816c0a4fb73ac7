package daily

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const issuer = "pokeguess-daily"

// ErrStale marks a progress token from another day.
var ErrStale = errors.New("daily: progress token is from another day")

// Progress is a player's state for one daily puzzle.
type Progress struct {
	Date    string `json:"date"`
	Guesses int    `json:"guesses"`
	Solved  bool   `json:"solved"`
}

// Claims is the JWT body of a progress token.
type Claims struct {
	Date    string `json:"date"`
	Guesses int    `json:"guesses"`
	Solved  bool   `json:"solved"`
	jwt.RegisteredClaims
}

// Tokens signs and validates progress tokens. Each token expires at the end
// of the UTC day it belongs to.
type Tokens struct {
	signingKey []byte

	// Now is the clock; replaced in tests.
	Now func() time.Time
}

// NewTokens creates a Tokens signing with secret.
func NewTokens(secret string) *Tokens {
	return &Tokens{signingKey: []byte(secret), Now: time.Now}
}

// Issue signs p.
func (t *Tokens) Issue(p Progress) (string, error) {
	day, err := time.Parse(dateLayout, p.Date)
	if err != nil {
		return "", fmt.Errorf("daily: bad progress date %q: %w", p.Date, err)
	}
	claims := Claims{
		Date:    p.Date,
		Guesses: p.Guesses,
		Solved:  p.Solved,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(t.Now()),
			ExpiresAt: jwt.NewNumericDate(day.Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.signingKey)
}

// Parse validates a progress token. An expired token returns ErrStale; any
// other failure is a plain validation error.
func (t *Tokens) Parse(tokenString string) (*Progress, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("daily: parse progress: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Issuer != issuer {
		return nil, errors.New("daily: invalid progress token")
	}
	if claims.ExpiresAt == nil || !t.Now().Before(claims.ExpiresAt.Time) {
		return nil, ErrStale
	}
	return &Progress{Date: claims.Date, Guesses: claims.Guesses, Solved: claims.Solved}, nil
}
