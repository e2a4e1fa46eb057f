package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is the production marketplace API.
	DefaultBaseURL = "https://api.criblink.com"
	userAgent      = "criblink-cli/1.0"

	listingsPath       = "/listings"
	reverseGeocodePath = "/utils/reverse-geocode"
)

// StatusError reports a non-200 answer from the backend.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

// NotFound reports whether the backend has no such resource.
func (e *StatusError) NotFound() bool {
	return e.Code == http.StatusNotFound || e.Code == http.StatusGone
}

// Client is an HTTP client for the marketplace REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client for the production API.
func NewClient() *Client {
	return NewClientWithBaseURL(DefaultBaseURL)
}

// NewClientWithBaseURL creates a client against a custom base URL (staging, tests).
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, URL: reqURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

func decodeStrict(body []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if err := dec.Decode(new(struct{})); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decoding response: trailing JSON content")
	}
	return nil
}

// FetchListings fetches every listing the backend exposes. The endpoint
// answers with either a bare array or an object wrapping it.
func (c *Client) FetchListings(ctx context.Context) ([]Listing, error) {
	body, err := c.get(ctx, c.baseURL+listingsPath)
	if err != nil {
		return nil, fmt.Errorf("fetching listings: %w", err)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var listings []Listing
		if err := decodeStrict(trimmed, &listings); err != nil {
			return nil, fmt.Errorf("fetching listings: %w", err)
		}
		return listings, nil
	}

	var resp ListingsResponse
	if err := decodeStrict(trimmed, &resp); err != nil {
		return nil, fmt.Errorf("fetching listings: %w", err)
	}
	return resp.Listings, nil
}

// ReverseGeocode resolves coordinates to an address through the backend proxy.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (*GeocodeResponse, error) {
	params := url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}

	body, err := c.get(ctx, c.baseURL+reverseGeocodePath+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("reverse geocoding: %w", err)
	}

	var resp GeocodeResponse
	if err := decodeStrict(body, &resp); err != nil {
		return nil, fmt.Errorf("reverse geocoding: %w", err)
	}
	return &resp, nil
}
