// Package catalog provides a client for the streaming service's catalog API.
package catalog

import (
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
)

const userAgent = "Encore/0.1 (https://github.com/mchabran/encore)"

// Fetcher is the single capability consumers need from the catalog:
// fetch a URL and decode its JSON body.
type Fetcher interface {
	FetchJSON(ctx context.Context, url string) (any, error)
}

// RateLimitError signals that the service rejected a request with HTTP 429.
type RateLimitError struct {
	Status     int
	RetryAfter time.Duration // zero if the service sent no Retry-After header
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (status %d, retry after %s)", e.Status, e.RetryAfter)
	}
	return fmt.Sprintf("rate limited (status %d)", e.Status)
}

// IsRateLimited reports whether err (or anything it wraps) is a rate-limit rejection.
func IsRateLimited(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}

// Client fetches JSON documents from the catalog API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a catalog client for the given API base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// FetchJSON performs a GET request and decodes the JSON response body.
// A 429 response is returned as a *RateLimitError; any other non-2xx
// status is a plain error.
func (c *Client) FetchJSON(ctx context.Context, reqURL string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{
			Status:     resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("API status %d: %s", resp.StatusCode, string(body))
	}

	var result any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return result, nil
}

// ArtistOverviewURL returns the artist overview endpoint for an artist.
func (c *Client) ArtistOverviewURL(artistID string) string {
	return fmt.Sprintf("%s/artists/%s/overview", c.baseURL, url.PathEscape(artistID))
}

// ArtistAlbumsURL returns the paged "albums by artist" endpoint.
func (c *Client) ArtistAlbumsURL(artistID string, offset, limit int) string {
	params := url.Values{}
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(limit))
	return fmt.Sprintf("%s/artists/%s/albums?%s", c.baseURL, url.PathEscape(artistID), params.Encode())
}

// AlbumURL returns the album detail endpoint for a release.
func (c *Client) AlbumURL(albumID string) string {
	return fmt.Sprintf("%s/albums/%s", c.baseURL, url.PathEscape(albumID))
}

// parseRetryAfter parses a Retry-After header value given in seconds.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
