// Package geocode resolves free-text locations to coordinates via the
// Nominatim search API, with a persistent JSON cache so each distinct
// location is queried at most once across builds.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the public Nominatim search endpoint.
const DefaultBaseURL = "https://nominatim.openstreetmap.org/search"

// DefaultTimeout is the per-request HTTP timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent identifies this tool to Nominatim, as its usage policy
// requires. Override via NOMINATIM_USER_AGENT or config with a real
// contact address.
const DefaultUserAgent = "events-map-builder/1.0 (contact: you@example.com)"

// Result holds a successful geocoding lookup.
type Result struct {
	Lat         float64
	Lon         float64
	DisplayName string
}

// Geocoder is the single capability the pipeline needs from the outside
// world: one textual query in, coordinates or ErrNoResult out. Tests
// substitute a deterministic stub.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*Result, error)
}

// Options configures the Nominatim client.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// DefaultOptions returns sensible defaults for the public endpoint.
func DefaultOptions() *Options {
	return &Options{
		BaseURL:   DefaultBaseURL,
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
	}
}

// Client queries the Nominatim search API over HTTP.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a Nominatim client. A nil opts uses DefaultOptions;
// zero-valued fields fall back individually.
func NewClient(opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// nominatimPlace is the subset of a Nominatim jsonv2 search result the
// builder consumes. Coordinates arrive as strings.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode performs a single search request. Returns ErrNoResult when the
// service answers with an empty result set.
func (c *Client) Geocode(ctx context.Context, query string) (*Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	params.Set("addressdetails", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &LookupError{Query: query, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &LookupError{Query: query, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &LookupError{Query: query, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, &LookupError{Query: query, Message: "failed to decode response", Cause: err}
	}
	if len(places) == 0 {
		return nil, ErrNoResult
	}

	top := places[0]
	lat, err := strconv.ParseFloat(top.Lat, 64)
	if err != nil {
		return nil, &LookupError{Query: query, Message: "invalid latitude in response", Cause: err}
	}
	lon, err := strconv.ParseFloat(top.Lon, 64)
	if err != nil {
		return nil, &LookupError{Query: query, Message: "invalid longitude in response", Cause: err}
	}

	return &Result{Lat: lat, Lon: lon, DisplayName: top.DisplayName}, nil
}
