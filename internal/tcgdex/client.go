// Package tcgdex looks up trading-card artwork for a Pokémon name using the
// public TCGdex API.
package tcgdex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/jredh-dev/pokeguess/internal/lang"
)

// DefaultBaseURL is the public TCGdex v2 endpoint.
const DefaultBaseURL = "https://api.tcgdex.net/v2"

const (
	maxRetries   = 2
	retryBackoff = 400 * time.Millisecond
	maxBody      = 8 << 20
)

// Options configures a Client. Zero values select defaults.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	CacheTTL  time.Duration
	CacheSize int
	Logger    *slog.Logger
}

// Client searches cards by name and caches the image URLs it finds.
type Client struct {
	base  string
	http  *http.Client
	cache *expirable.LRU[string, []string]
	log   *slog.Logger

	// Intn picks a card index; replaced in tests.
	Intn func(n int) int
}

// New creates a Client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 2048
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		base:  strings.TrimRight(opts.BaseURL, "/"),
		http:  &http.Client{Timeout: opts.Timeout},
		cache: expirable.NewLRU[string, []string](opts.CacheSize, nil, opts.CacheTTL),
		log:   opts.Logger,
		Intn:  rand.Intn,
	}
}

type card struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// CardImage returns the image URL of a random card named after name, or ""
// when no card matches. If the full name finds nothing, the first word is
// tried ("Mr. Mime" -> "Mr.").
func (c *Client) CardImage(ctx context.Context, name, lng string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}
	lng = lang.Coerce(lng)

	images, err := c.images(ctx, name, lng)
	if err != nil {
		return "", err
	}
	if len(images) == 0 {
		if first, _, found := strings.Cut(name, " "); found && first != "" {
			if images, err = c.images(ctx, first, lng); err != nil {
				return "", err
			}
		}
	}
	if len(images) == 0 {
		return "", nil
	}
	return images[c.Intn(len(images))], nil
}

func (c *Client) images(ctx context.Context, name, lng string) ([]string, error) {
	key := lng + ":" + strings.ToLower(name)
	if imgs, ok := c.cache.Get(key); ok {
		return imgs, nil
	}

	cards, err := c.search(ctx, name, lng)
	if err != nil {
		return nil, err
	}
	imgs := make([]string, 0, len(cards))
	for _, cd := range cards {
		if cd.Image != "" {
			imgs = append(imgs, HighResImage(cd.Image))
		}
	}
	c.cache.Add(key, imgs)
	c.log.Debug("tcgdex search", "name", name, "lang", lng, "cards", len(imgs))
	return imgs, nil
}

func (c *Client) search(ctx context.Context, name, lng string) ([]card, error) {
	u := fmt.Sprintf("%s/%s/cards?name=%s", c.base, lng, url.QueryEscape(name))

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryBackoff << (attempt - 1)):
			}
		}

		cards, retry, err := c.fetch(ctx, u)
		if err == nil {
			return cards, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) fetch(ctx context.Context, u string) (cards []card, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, fmt.Errorf("tcgdex: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("tcgdex: request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, nil
	case resp.StatusCode == http.StatusBadGateway,
		resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusGatewayTimeout:
		return nil, true, fmt.Errorf("tcgdex: status %d", resp.StatusCode)
	case resp.StatusCode/100 != 2:
		return nil, false, fmt.Errorf("tcgdex: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, false, fmt.Errorf("tcgdex: read: %w", err)
	}
	if err := json.Unmarshal(body, &cards); err != nil {
		return nil, false, fmt.Errorf("tcgdex: decode: %w", err)
	}
	return cards, false, nil
}

// HighResImage turns a TCGdex image base URL into its high-quality PNG.
// URLs that already point at an image file are returned unchanged.
func HighResImage(image string) string {
	switch strings.ToLower(path.Ext(image)) {
	case ".png", ".jpg", ".jpeg", ".webp":
		return image
	}
	return strings.TrimRight(image, "/") + "/high.png"
}
