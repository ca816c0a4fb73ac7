// Package lang holds the fixed set of languages the games are played in.
package lang

import "strings"

// Default is used whenever a requested language is missing or unsupported.
const Default = "en"

// Supported lists the playable languages in display order.
var Supported = []string{"en", "es", "fr", "de"}

// IsSupported reports whether code is one of Supported, exactly.
func IsSupported(code string) bool {
	switch code {
	case "en", "es", "fr", "de":
		return true
	}
	return false
}

// Coerce maps a caller-supplied language code onto the supported set.
// Case and surrounding space are ignored; anything else becomes Default.
func Coerce(code string) string {
	c := strings.ToLower(strings.TrimSpace(code))
	if IsSupported(c) {
		return c
	}
	return Default
}

// Others returns the supported languages other than code.
func Others(code string) []string {
	out := make([]string, 0, len(Supported)-1)
	for _, l := range Supported {
		if l != code {
			out = append(out, l)
		}
	}
	return out
}
