// Package pokeapi is a small read-only client for the public PokeAPI.
//
// It only decodes the fields the games use. Caching lives one layer up in
// package dex; every call here goes to the network.
package pokeapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the public PokeAPI v2 endpoint.
const DefaultBaseURL = "https://pokeapi.co/api/v2"

const (
	maxBody = 4 << 20

	defaultRetries = 2
	defaultBackoff = 300 * time.Millisecond
)

// ErrNotFound is returned when PokeAPI answers 404 for a resource.
var ErrNotFound = errors.New("pokeapi: not found")

// StatusError reports a non-2xx, non-404 response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pokeapi: status %d for %s", e.Code, e.URL)
}

// Temporary reports whether retrying later may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Client fetches PokeAPI resources. Temporary failures are retried up to
// Retries times, waiting Backoff, then twice that, between attempts.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Retries int
	Backoff time.Duration
}

// New creates a Client rooted at baseURL with a per-request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Retries: defaultRetries,
		Backoff: defaultBackoff,
	}
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.Backoff << (attempt - 1)):
			}
		}

		body, retry, err := c.fetch(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) fetch(ctx context.Context, url string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("pokeapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "pokeguess/1.0")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("pokeapi: request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody)) //nolint:errcheck
		return nil, false, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.StatusCode/100 != 2 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody)) //nolint:errcheck
		se := &StatusError{Code: resp.StatusCode, URL: url}
		return nil, se.Temporary(), se
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, true, fmt.Errorf("pokeapi: read %s: %w", url, err)
	}
	return body, false, nil
}

func (c *Client) resource(parts ...string) string {
	return c.BaseURL + "/" + strings.Join(parts, "/")
}

// IDFromURL extracts the trailing numeric id from a resource URL such as
// "https://pokeapi.co/api/v2/pokemon-species/25/". It returns 0 when the
// last path segment is not a number.
func IDFromURL(u string) int {
	u = strings.TrimRight(u, "/")
	i := strings.LastIndexByte(u, '/')
	id, err := strconv.Atoi(u[i+1:])
	if err != nil || id <= 0 {
		return 0
	}
	return id
}
