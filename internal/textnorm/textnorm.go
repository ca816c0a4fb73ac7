// Package textnorm turns free-text Pokémon names and guesses into comparison
// keys. Two labels are "the same name" when their keys are equal: accents,
// case, punctuation, spacing and gender symbols all collapse away.
//
//	Normalize("Mr. Mime")  == "mrmime"
//	Normalize("Nidoran♀")  == "nidoranf"
//	Normalize("Flabébé")   == "flabebe"
package textnorm

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Transformer chains carry state, so each call borrows its own.
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKD,
			runes.Remove(runes.In(unicode.Mn)), // combining marks
			cases.Fold(),
			runes.Remove(runes.In(unicode.Cf)), // ZWSP, ZWJ, BOM
		)
	},
}

var genderSymbols = strings.NewReplacer("♀", "f", "♂", "m")

// Normalize returns the comparison key for s. The result contains only
// ASCII lowercase letters and digits, and Normalize(Normalize(s)) equals
// Normalize(s).
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	folded, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		folded = strings.ToLower(s)
	}

	folded = genderSymbols.Replace(folded)

	var b strings.Builder
	b.Grow(len(folded))
	for i := 0; i < len(folded); i++ {
		c := folded[i]
		if ('a' <= c && c <= 'z') || ('0' <= c && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// NormalizeAny normalizes the string form of v. Nil yields "".
func NormalizeAny(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return Normalize(t)
	case fmt.Stringer:
		return Normalize(t.String())
	default:
		return Normalize(fmt.Sprint(v))
	}
}
