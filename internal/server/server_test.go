package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/photofeed/internal/config"
	"github.com/sakif/photofeed/internal/middleware"
)

func testConfig(backend, dbPath string) *config.Config {
	return &config.Config{
		Port:            8080,
		ShutdownTimeout: time.Second,
		StoreBackend:    backend,
		DBPath:          dbPath,
		SeedData:        true,
		ViewerID:        1,
		BCryptCost:      bcrypt.MinCost,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := New(cfg, logger)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return ts
}

func TestServer_MemoryBackendServesSeededFeed(t *testing.T) {
	ts := newTestServer(t, testConfig(config.BackendMemory, ""))

	resp, err := http.Get(ts.URL + "/api/feed")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	var body struct {
		Posts []json.RawMessage `json:"posts"`
		Users []json.RawMessage `json:"users"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Posts, 6)
	assert.Len(t, body.Users, 6)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, testConfig(config.BackendMemory, ""))

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/api/posts/1/like", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := string(raw)
	assert.Contains(t, out, `photofeed_engagements_total{action="like"} 1`)
	assert.Contains(t, out, `photofeed_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
	assert.Contains(t, out, "go_goroutines")
}

func TestServer_SQLiteBackendSeedsOnce(t *testing.T) {
	cfg := testConfig(config.BackendSQLite, filepath.Join(t.TempDir(), "nested", "feed.db"))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	first, err := New(cfg, logger)
	require.NoError(t, err)
	ts := httptest.NewServer(first.Handler())
	resp, err := http.Post(ts.URL+"/api/posts/1/comments", "application/json", strings.NewReader(`{"text":"kept"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	ts.Close()
	require.NoError(t, first.Close())

	// Reopening the same file must not load the sample data a second time.
	ts = newTestServer(t, cfg)
	resp, err = http.Get(ts.URL + "/api/explore")
	require.NoError(t, err)
	defer resp.Body.Close()
	var posts []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&posts))
	assert.Len(t, posts, 6)

	resp2, err := http.Get(ts.URL + "/api/posts/1")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var detail struct {
		Post struct {
			CommentCount int `json:"commentCount"`
		} `json:"post"`
	}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&detail))
	assert.Equal(t, 43, detail.Post.CommentCount)
}

func TestServer_SkipsSeedWhenDisabled(t *testing.T) {
	cfg := testConfig(config.BackendMemory, "")
	cfg.SeedData = false
	ts := newTestServer(t, cfg)

	resp, err := http.Get(ts.URL + "/api/profile")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(testConfig("postgres", ""), slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
