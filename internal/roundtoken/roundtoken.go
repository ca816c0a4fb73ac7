// Package roundtoken signs species ids into opaque round tokens so that any
// server sharing the secret can check a guess without session storage.
//
// A token is "<decimal id>.<hex HMAC-SHA256 of the decimal id>". Tokens never
// expire and may be verified any number of times.
package roundtoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// DevSecret is the signing key used when no secret is configured.
// It is public and must not be used in production.
const DevSecret = "pokeguess-dev-secret-do-not-use-in-production"

const separator = "."

// Codec signs and verifies round tokens.
type Codec struct {
	key []byte
}

// New creates a Codec keyed by secret. An empty secret selects DevSecret.
func New(secret string) *Codec {
	if secret == "" {
		secret = DevSecret
	}
	return &Codec{key: []byte(secret)}
}

// Sign returns the token for id.
func (c *Codec) Sign(id int) string {
	payload := strconv.Itoa(id)
	return payload + separator + c.mac(payload)
}

// Verify returns the id a token was signed for. Malformed tokens and bad
// signatures both report ok=false.
func (c *Codec) Verify(token string) (id int, ok bool) {
	if strings.Count(token, separator) != 1 {
		return 0, false
	}
	payload, sig, _ := strings.Cut(token, separator)

	id, err := strconv.Atoi(payload)
	if err != nil || id <= 0 || strconv.Itoa(id) != payload {
		return 0, false
	}

	if !hmac.Equal([]byte(sig), []byte(c.mac(payload))) {
		return 0, false
	}
	return id, true
}

func (c *Codec) mac(payload string) string {
	h := hmac.New(sha256.New, c.key)
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}
