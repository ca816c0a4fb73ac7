package game

import (
	"strings"
)

// Mode identifies a game.
type Mode string

const (
	ModeSprite     Mode = "sprite"
	ModeCry        Mode = "cry"
	ModeSilhouette Mode = "silhouette"
	ModePixelate   Mode = "pixelate"
	ModeTCG        Mode = "tcg"
	ModeEntry      Mode = "entry"
	ModeDaily      Mode = "daily"
)

// Info describes a mode for clients browsing the available games.
type Info struct {
	ID          Mode   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	// Endpoint starts a round; GuessEndpoint checks an answer.
	Endpoint      string   `json:"endpoint"`
	GuessEndpoint string   `json:"guess_endpoint"`
	Keywords      []string `json:"keywords"`
	// Attempts is the number of random ids tried before a round build
	// gives up. Zero means the mode has no random rounds.
	Attempts int `json:"-"`
}

// Registry holds the known modes and supports keyword search.
type Registry struct {
	modes []Info
}

// NewRegistry creates a Registry with the built-in modes.
func NewRegistry() *Registry {
	return &Registry{modes: defaultModes()}
}

// Get returns the mode with the given id.
func (r *Registry) Get(id Mode) (Info, bool) {
	for _, m := range r.modes {
		if m.ID == id {
			return m, true
		}
	}
	return Info{}, false
}

// Search returns modes matching query. An empty query returns every mode.
// Matching is case-insensitive substring over title, description and
// keywords.
func (r *Registry) Search(query string) []Info {
	q := strings.ToLower(strings.TrimSpace(query))
	var results []Info
	for _, m := range r.modes {
		if q == "" || matchesQuery(m, q) {
			results = append(results, m)
		}
	}
	return results
}

func matchesQuery(m Info, q string) bool {
	if strings.Contains(string(m.ID), q) {
		return true
	}
	if strings.Contains(strings.ToLower(m.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(m.Description), q) {
		return true
	}
	for _, kw := range m.Keywords {
		if strings.Contains(strings.ToLower(kw), q) {
			return true
		}
	}
	return false
}

func defaultModes() []Info {
	return []Info{
		{
			ID:            ModeSprite,
			Title:         "Who's That Pokémon?",
			Description:   "Guess the Pokémon from a zoomed-in piece of its artwork",
			Endpoint:      "/api/random-sprite",
			GuessEndpoint: "/api/check-guess",
			Keywords:      []string{"sprite", "artwork", "image", "zoom", "picture"},
			Attempts:      12,
		},
		{
			ID:            ModeCry,
			Title:         "Scream",
			Description:   "Guess the Pokémon from its cry",
			Endpoint:      "/api/random-cry",
			GuessEndpoint: "/api/scream/check-guess",
			Keywords:      []string{"cry", "scream", "audio", "sound", "listen"},
			Attempts:      20,
		},
		{
			ID:            ModeSilhouette,
			Title:         "Silhouette",
			Description:   "Guess the Pokémon from its shadow",
			Endpoint:      "/api/silhouette/random",
			GuessEndpoint: "/api/check-guess",
			Keywords:      []string{"silhouette", "shadow", "outline", "dark"},
			Attempts:      15,
		},
		{
			ID:            ModePixelate,
			Title:         "Pixelated",
			Description:   "Guess the Pokémon as its artwork slowly sharpens",
			Endpoint:      "/api/pixelate/random",
			GuessEndpoint: "/api/check-guess",
			Keywords:      []string{"pixel", "pixelate", "blur", "reveal", "mosaic"},
			Attempts:      15,
		},
		{
			ID:            ModeTCG,
			Title:         "Card",
			Description:   "Guess the Pokémon from a trading card",
			Endpoint:      "/api/tcg/random",
			GuessEndpoint: "/api/check-guess",
			Keywords:      []string{"tcg", "card", "trading", "deck"},
			Attempts:      12,
		},
		{
			ID:            ModeEntry,
			Title:         "Pokédex Entry",
			Description:   "Guess the Pokémon from its Pokédex description",
			Endpoint:      "/pokedex/api/random-entry",
			GuessEndpoint: "/pokedex/api/check-guess",
			Keywords:      []string{"pokedex", "entry", "flavor", "text", "read", "description"},
			Attempts:      30,
		},
		{
			ID:            ModeDaily,
			Title:         "Daily",
			Description:   "One Pokémon per day with hints after every guess",
			Endpoint:      "/api/daily",
			GuessEndpoint: "/api/daily/guess",
			Keywords:      []string{"daily", "today", "challenge", "hints", "wordle"},
		},
	}
}
