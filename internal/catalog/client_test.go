package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FetchJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"a1"}],"hasNext":false}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	result, err := c.FetchJSON(context.Background(), srv.URL+"/test")
	require.NoError(t, err)

	doc, ok := result.(map[string]any)
	require.True(t, ok, "expected a JSON object")
	assert.Equal(t, false, doc["hasNext"])

	items, ok := doc["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
}

func TestClient_FetchJSON_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.FetchJSON(context.Background(), srv.URL+"/test")
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))

	var rle *RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, http.StatusTooManyRequests, rle.Status)
	assert.Equal(t, 30*time.Second, rle.RetryAfter)
}

func TestClient_FetchJSON_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.FetchJSON(context.Background(), srv.URL+"/test")
	require.Error(t, err)
	assert.False(t, IsRateLimited(err))
}

func TestClient_FetchJSON_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.FetchJSON(context.Background(), srv.URL+"/test")
	require.Error(t, err)
}

func TestIsRateLimited_PlainError(t *testing.T) {
	assert.False(t, IsRateLimited(errors.New("boom")))
	assert.False(t, IsRateLimited(nil))
}

func TestClient_EndpointURLs(t *testing.T) {
	c := NewClient("https://catalog.example.com/v1/")

	assert.Equal(t,
		"https://catalog.example.com/v1/artists/a1/overview",
		c.ArtistOverviewURL("a1"))
	assert.Equal(t,
		"https://catalog.example.com/v1/artists/a1/albums?limit=50&offset=100",
		c.ArtistAlbumsURL("a1", 100, 50))
	assert.Equal(t,
		"https://catalog.example.com/v1/albums/b2",
		c.AlbumURL("b2"))
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"5", 5 * time.Second},
		{"-1", 0},
		{"soon", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseRetryAfter(tt.in), "parseRetryAfter(%q)", tt.in)
	}
}
