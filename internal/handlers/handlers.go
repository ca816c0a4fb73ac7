package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jredh-dev/pokeguess/internal/daily"
	"github.com/jredh-dev/pokeguess/internal/game"
	"github.com/jredh-dev/pokeguess/internal/generation"
	"github.com/jredh-dev/pokeguess/internal/lang"
	"github.com/jredh-dev/pokeguess/internal/names"
)

const maxBody = 64 << 10

// Rounds starts game rounds.
type Rounds interface {
	StartRound(ctx context.Context, mode game.Mode, lang, gen string) (*game.Round, error)
}

// Guesses checks answers to rounds.
type Guesses interface {
	Verify(ctx context.Context, token, guess, lang string) (*game.Verdict, error)
}

// Modes lists the available games.
type Modes interface {
	Search(query string) []game.Info
}

// NameIndex serves name lists and suggestions.
type NameIndex interface {
	Ensure(ctx context.Context) error
	Names(lang string, gen generation.Filter) []names.Entry
	Suggest(query, lang string, gen generation.Filter, limit int) []names.Entry
}

// Daily serves the daily puzzle.
type Daily interface {
	Start(progress string) (*daily.Today, error)
	Guess(ctx context.Context, guess, lang, progress string) (*daily.Result, error)
	Translate(ctx context.Context, ids []int, lang string) map[string]string
}

// Warmer fills the localized name cache in the background, once.
type Warmer interface {
	Schedule() bool
}

// Deps groups the collaborators of a Handler. Warmer may be nil.
type Deps struct {
	Rounds  Rounds
	Guesses Guesses
	Modes   Modes
	Names   NameIndex
	Daily   Daily
	Warmer  Warmer
	Logger  *slog.Logger
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	rounds  Rounds
	guesses Guesses
	modes   Modes
	names   NameIndex
	daily   Daily
	warmer  Warmer
	log     *slog.Logger
}

// New creates a new Handler.
func New(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Handler{
		rounds:  d.Rounds,
		guesses: d.Guesses,
		modes:   d.Modes,
		names:   d.Names,
		daily:   d.Daily,
		warmer:  d.Warmer,
		log:     d.Logger,
	}
}

// Routes registers every game route on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/modes", h.ListModes)

		r.Get("/random-sprite", h.Round(game.ModeSprite))
		r.Get("/random-cry", h.Round(game.ModeCry))
		r.Get("/silhouette/random", h.Round(game.ModeSilhouette))
		r.Get("/pixelate/random", h.Round(game.ModePixelate))
		r.Get("/tcg/random", h.Round(game.ModeTCG))
		r.Get("/rounds/{mode}", h.RoundByName)

		r.Post("/check-guess", h.CheckGuess)
		r.Post("/scream/check-guess", h.CheckGuess)

		r.Get("/all-names", h.AllNames)
		r.Get("/pokemon-names", h.PokemonNames)
		r.Get("/pokemon-suggest", h.Suggest)
		r.Get("/scream/all-names", h.AllNames)
		r.Get("/scream/pokemon-names", h.PokemonNames)
		r.Get("/scream/pokemon-suggest", h.Suggest)

		r.Get("/daily", h.DailyStart)
		r.Post("/daily/guess", h.DailyGuess)
		r.Post("/daily/translate", h.DailyTranslate)
	})

	r.Route("/pokedex/api", func(r chi.Router) {
		r.Get("/random-entry", h.Round(game.ModeEntry))
		r.Post("/check-guess", h.CheckGuess)
	})
}

// ListModes handles GET /api/modes
func (h *Handler) ListModes(w http.ResponseWriter, r *http.Request) {
	modes := h.modes.Search(r.URL.Query().Get("q"))
	if modes == nil {
		modes = []game.Info{}
	}
	jsonOK(w, http.StatusOK, map[string]any{"modes": modes})
}

// Round returns the handler that starts a round of mode. It reads the
// optional lang and gen query parameters.
func (h *Handler) Round(mode game.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.startRound(w, r, mode)
	}
}

// RoundByName handles GET /api/rounds/{mode}
func (h *Handler) RoundByName(w http.ResponseWriter, r *http.Request) {
	h.startRound(w, r, game.Mode(strings.ToLower(chi.URLParam(r, "mode"))))
}

func (h *Handler) startRound(w http.ResponseWriter, r *http.Request, mode game.Mode) {
	q := r.URL.Query()
	lng := lang.Coerce(q.Get("lang"))
	h.warm(lng)

	round, err := h.rounds.StartRound(r.Context(), mode, lng, q.Get("gen"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonOK(w, http.StatusOK, round)
}

type guessReq struct {
	Token string `json:"token"`
	Guess string `json:"guess"`
	Lang  string `json:"lang"`
}

// CheckGuess handles POST /api/check-guess and its per-game aliases.
func (h *Handler) CheckGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if !decode(w, r, &req) {
		return
	}
	lng := lang.Coerce(req.Lang)
	h.warm(lng)

	verdict, err := h.guesses.Verify(r.Context(), req.Token, req.Guess, lng)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonOK(w, http.StatusOK, verdict)
}

// AllNames handles GET /api/all-names
func (h *Handler) AllNames(w http.ResponseWriter, r *http.Request) {
	entries, ok := h.nameList(w, r)
	if !ok {
		return
	}
	jsonOK(w, http.StatusOK, map[string]any{"names": entries})
}

// PokemonNames handles GET /api/pokemon-names
func (h *Handler) PokemonNames(w http.ResponseWriter, r *http.Request) {
	entries, ok := h.nameList(w, r)
	if !ok {
		return
	}
	list := make([]string, len(entries))
	for i, e := range entries {
		list[i] = e.Name
	}
	jsonOK(w, http.StatusOK, map[string]any{"names": list})
}

func (h *Handler) nameList(w http.ResponseWriter, r *http.Request) ([]names.Entry, bool) {
	if err := h.names.Ensure(r.Context()); err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	q := r.URL.Query()
	lng := lang.Coerce(q.Get("lang"))
	h.warm(lng)

	entries := h.names.Names(lng, generation.Parse(q.Get("gen")))
	if entries == nil {
		entries = []names.Entry{}
	}
	return entries, true
}

// Suggest handles GET /api/pokemon-suggest
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	if err := h.names.Ensure(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	lng := lang.Coerce(q.Get("lang"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	matches := h.names.Suggest(q.Get("q"), lng, generation.Parse(q.Get("gen")), limit)
	jsonOK(w, http.StatusOK, map[string]any{"suggestions": matches})
}

// DailyStart handles GET /api/daily
func (h *Handler) DailyStart(w http.ResponseWriter, r *http.Request) {
	today, err := h.daily.Start(r.URL.Query().Get("progress"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonOK(w, http.StatusOK, today)
}

type dailyGuessReq struct {
	Guess    string `json:"guess"`
	Lang     string `json:"lang"`
	Progress string `json:"progress"`
}

// DailyGuess handles POST /api/daily/guess
func (h *Handler) DailyGuess(w http.ResponseWriter, r *http.Request) {
	var req dailyGuessReq
	if !decode(w, r, &req) {
		return
	}
	if err := h.names.Ensure(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	lng := lang.Coerce(req.Lang)
	h.warm(lng)

	res, err := h.daily.Guess(r.Context(), req.Guess, lng, req.Progress)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonOK(w, http.StatusOK, res)
}

type translateReq struct {
	IDs  idList `json:"ids"`
	Lang string `json:"lang"`
}

// idList accepts ids as JSON numbers or decimal strings. Anything else is
// skipped.
type idList []int

func (l *idList) UnmarshalJSON(b []byte) error {
	var raw []any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		switch v := v.(type) {
		case float64:
			if v == float64(int(v)) && v > 0 {
				out = append(out, int(v))
			}
		case string:
			if id, err := strconv.Atoi(v); err == nil && id > 0 {
				out = append(out, id)
			}
		}
	}
	*l = out
	return nil
}

// DailyTranslate handles POST /api/daily/translate
func (h *Handler) DailyTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateReq
	if !decode(w, r, &req) {
		return
	}
	named := h.daily.Translate(r.Context(), req.IDs, req.Lang)
	jsonOK(w, http.StatusOK, map[string]any{"names": named})
}

func (h *Handler) warm(lng string) {
	if h.warmer != nil && lng != lang.Default {
		h.warmer.Schedule()
	}
}

// --- helpers ---

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return false
	}
	return true
}

// writeError maps err to a status and a stable error code.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "path", r.URL.Path, "err", err)
		msg = "internal server error"
	} else {
		h.log.Debug("request rejected", "path", r.URL.Path, "code", code, "err", err)
	}
	jsonError(w, status, code, msg)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrInvalidToken):
		return http.StatusBadRequest, "invalid_token"
	case errors.Is(err, game.ErrInvalidGuess):
		return http.StatusBadRequest, "invalid_guess"
	case errors.Is(err, game.ErrUnknownGuess):
		return http.StatusBadRequest, "unknown_guess"
	case errors.Is(err, game.ErrUnknownMode):
		return http.StatusNotFound, "unknown_mode"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, game.ErrRoundBuild):
		return http.StatusServiceUnavailable, "round_build_failed"
	}
	return http.StatusInternalServerError, "internal_error"
}

func jsonOK(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "message": msg})
}
