// Package pokeapi implements the HTTP client for the public PokéAPI catalog.
// All methods are context-aware and issue exactly one request per call: no
// retries and no caching. Every response is validated against an embedded
// JSON Schema before it is decoded, so upstream drift surfaces as a
// DecodeError rather than a silent zero value.
package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/derickschaefer/dex/internal/model"
)

const (
	defaultBaseURL   = "https://pokeapi.co/api/v2/"
	defaultUserAgent = "dex-cli/1.0"
	maxBodyBytes     = 8 << 20
	maxErrorBody     = 200
)

// Client is the catalog API HTTP client.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	debug      bool
}

// NewClient creates a Client. A ratePerSec of zero or less disables the
// request limiter.
func NewClient(baseURL string, timeout time.Duration, ratePerSec float64, debug bool) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	limit, burst := rate.Inf, 1
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
		if b := int(ratePerSec); b > 1 {
			burst = b
		}
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: defaultUserAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(limit, burst),
		debug:   debug,
	}
}

// SetUserAgent overrides the User-Agent header sent with every request.
func (c *Client) SetUserAgent(ua string) {
	if ua != "" {
		c.userAgent = ua
	}
}

// BaseURL returns the normalised API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ─── Generic Endpoints ────────────────────────────────────────────────────────

// ListEntries fetches one page of the list endpoint for kind.
func (c *Client) ListEntries(ctx context.Context, kind model.Kind, limit, offset int) (*model.Page, error) {
	path := kind.Path()
	if path == "" {
		return nil, fmt.Errorf("list: unknown kind %q", kind)
	}

	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 || limit > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}

	var raw rawPage
	if err := c.get(ctx, path, params, schemaList, &raw); err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return raw.normalize(), nil
}

// GetDetail fetches the detail record for kind/id. The concrete type is
// *model.Creature, *model.Region or *model.TypeRef.
func (c *Client) GetDetail(ctx context.Context, kind model.Kind, id int) (interface{}, error) {
	switch kind {
	case model.KindCreature:
		return c.GetCreature(ctx, id)
	case model.KindRegion:
		return c.GetRegion(ctx, id)
	case model.KindType:
		return c.GetType(ctx, id)
	}
	return nil, fmt.Errorf("detail: unknown kind %q", kind)
}

// ─── Low-level HTTP ───────────────────────────────────────────────────────────

// get performs a single GET request against the API, validates the body
// against the named schema and decodes it into out.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, schema string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}

	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	if c.debug {
		slog.Debug("pokeapi request", "url", reqURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: fmt.Errorf("reading body: %w", err)}
	}

	if c.debug {
		slog.Debug("pokeapi response",
			"status", resp.StatusCode,
			"bytes", len(body),
			"elapsed", time.Since(start).Round(time.Millisecond))
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		msg = truncate(msg, maxErrorBody)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: errors.New(msg)}
	}

	if err := validate(schema, body); err != nil {
		return &DecodeError{Endpoint: endpoint, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Endpoint: endpoint, Err: err}
	}
	return nil
}

// ─── Internal helpers ─────────────────────────────────────────────────────────

type rawPage struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"results"`
}

func (r rawPage) normalize() *model.Page {
	page := &model.Page{
		Count:    r.Count,
		Next:     r.Next,
		Previous: r.Previous,
		Results:  make([]model.EntryRef, len(r.Results)),
	}
	for i, e := range r.Results {
		page.Results[i] = model.EntryRef{Name: e.Name, URL: e.URL}
	}
	return page
}

// checkID rejects identifiers that cannot address a detail endpoint.
func checkID(kind model.Kind, id int) error {
	if id <= 0 {
		return fmt.Errorf("%s: invalid id %d: expected a positive integer", kind, id)
	}
	return nil
}

// truncate cuts s to at most n bytes on a rune boundary, marking the cut
// with an ellipsis.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}
