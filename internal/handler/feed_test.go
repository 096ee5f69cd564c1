package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/photofeed/internal/auth"
	"github.com/sakif/photofeed/internal/handler"
	"github.com/sakif/photofeed/internal/metrics"
	"github.com/sakif/photofeed/internal/model"
	"github.com/sakif/photofeed/internal/repository/memory"
	"github.com/sakif/photofeed/internal/seed"
	"github.com/sakif/photofeed/internal/service"
)

const callerID = 1

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newRouter mounts h the way the server does.
func newRouter(h *handler.FeedHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(auth.FixedIdentity(callerID))
		h.Routes(r)
	})
	return r
}

// newSeededAPI serves the API over a freshly seeded memory store.
func newSeededAPI(t *testing.T) http.Handler {
	t.Helper()
	store := memory.New(nil)
	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	_, err = seed.Load(context.Background(), store, hasher)
	require.NoError(t, err)

	svc := service.NewFeedService(store, metrics.New(prometheus.NewRegistry()), testLogger())
	return newRouter(handler.NewFeedHandler(svc, testLogger()))
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}

func TestStories(t *testing.T) {
	api := newSeededAPI(t)

	rr := do(t, api, http.MethodGet, "/api/stories", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	users := decode[[]map[string]any](t, rr)
	assert.Len(t, users, 6)
	for _, u := range users {
		assert.NotContains(t, u, "password")
		assert.Equal(t, true, u["hasStory"])
	}
}

func TestFeed(t *testing.T) {
	api := newSeededAPI(t)

	rr := do(t, api, http.MethodGet, "/api/feed", "")

	require.Equal(t, http.StatusOK, rr.Code)
	feed := decode[model.Feed](t, rr)
	assert.Len(t, feed.Posts, 6)
	assert.Len(t, feed.Users, 6)
	for _, p := range feed.Posts {
		assert.False(t, p.IsLiked)
		assert.False(t, p.IsSaved)
		assert.LessOrEqual(t, len(p.Comments), 2)
	}
}

func TestPost(t *testing.T) {
	api := newSeededAPI(t)

	t.Run("found", func(t *testing.T) {
		rr := do(t, api, http.MethodGet, "/api/posts/1", "")

		require.Equal(t, http.StatusOK, rr.Code)
		detail := decode[model.PostDetail](t, rr)
		assert.Equal(t, int64(1), detail.Post.ID)
		assert.Len(t, detail.Post.Comments, 2)
		require.NotNil(t, detail.User)
		assert.Equal(t, "emma_s", detail.User.Username)
	})

	t.Run("missing", func(t *testing.T) {
		rr := do(t, api, http.MethodGet, "/api/posts/999", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		body := decode[handler.ErrorResponse](t, rr)
		assert.Equal(t, "not_found", body.Error)
	})

	t.Run("non-integer id", func(t *testing.T) {
		rr := do(t, api, http.MethodGet, "/api/posts/abc", "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := decode[handler.ErrorResponse](t, rr)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "id", body.Errors[0].Field)
	})
}

func TestLike_ReflectedInPost(t *testing.T) {
	api := newSeededAPI(t)

	rr := do(t, api, http.MethodPost, "/api/posts/1/like", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())

	// Liking again is a no-op.
	require.Equal(t, http.StatusOK, do(t, api, http.MethodPost, "/api/posts/1/like", "").Code)

	detail := decode[model.PostDetail](t, do(t, api, http.MethodGet, "/api/posts/1", ""))
	assert.Equal(t, 1246, detail.Post.LikeCount)
	assert.False(t, detail.Post.IsLiked)

	rr = do(t, api, http.MethodDelete, "/api/posts/1/like", "")
	require.Equal(t, http.StatusOK, rr.Code)
	detail = decode[model.PostDetail](t, do(t, api, http.MethodGet, "/api/posts/1", ""))
	assert.Equal(t, 1245, detail.Post.LikeCount)
}

func TestSaveAndUnsave(t *testing.T) {
	api := newSeededAPI(t)

	for _, method := range []string{http.MethodPost, http.MethodPost, http.MethodDelete, http.MethodDelete} {
		rr := do(t, api, method, "/api/posts/2/save", "")
		assert.Equal(t, http.StatusOK, rr.Code, method)
		assert.JSONEq(t, `{"success":true}`, rr.Body.String())
	}
}

func TestAddComment(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		api := newSeededAPI(t)

		rr := do(t, api, http.MethodPost, "/api/posts/1/comments", `{"text":"Nice!"}`)

		require.Equal(t, http.StatusCreated, rr.Code)
		c := decode[model.Comment](t, rr)
		assert.NotZero(t, c.ID)
		assert.Equal(t, int64(1), c.PostID)
		assert.Equal(t, int64(callerID), c.UserID)
		assert.Equal(t, "Nice!", c.Text)

		detail := decode[model.PostDetail](t, do(t, api, http.MethodGet, "/api/posts/1", ""))
		assert.Equal(t, 43, detail.Post.CommentCount)
	})

	t.Run("empty text", func(t *testing.T) {
		api := newSeededAPI(t)

		rr := do(t, api, http.MethodPost, "/api/posts/1/comments", `{"text":""}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := decode[handler.ErrorResponse](t, rr)
		assert.Equal(t, "validation_error", body.Error)
		assert.Equal(t, "Invalid comment data", body.Message)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "text", body.Errors[0].Field)
		assert.Equal(t, "required", body.Errors[0].Rule)

		detail := decode[model.PostDetail](t, do(t, api, http.MethodGet, "/api/posts/1", ""))
		assert.Equal(t, 42, detail.Post.CommentCount)
	})

	t.Run("malformed body", func(t *testing.T) {
		api := newSeededAPI(t)

		rr := do(t, api, http.MethodPost, "/api/posts/1/comments", `{"text":`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestProfile(t *testing.T) {
	api := newSeededAPI(t)

	rr := do(t, api, http.MethodGet, "/api/profile", "")

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "me", body["username"])
	assert.Equal(t, float64(583), body["followerCount"])
	assert.NotContains(t, body, "password")
	posts, ok := body["posts"].([]any)
	require.True(t, ok, "posts should be an array")
	for _, p := range posts {
		assert.Equal(t, float64(callerID), p.(map[string]any)["userId"])
	}
}

func TestExplore(t *testing.T) {
	api := newSeededAPI(t)

	rr := do(t, api, http.MethodGet, "/api/explore", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]model.Post](t, rr), 6)
}

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	handler.HandleHealth(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

// brokenService fails every call, for the 500 paths.
type brokenService struct{}

var errBroken = errors.New("store unavailable")

func (brokenService) Stories(context.Context) ([]model.User, error)         { return nil, errBroken }
func (brokenService) Feed(context.Context) (*model.Feed, error)             { return nil, errBroken }
func (brokenService) PostDetail(context.Context, int64) (*model.PostDetail, error) {
	return nil, errBroken
}
func (brokenService) Like(context.Context, int64, int64) error   { return errBroken }
func (brokenService) Unlike(context.Context, int64, int64) error { return errBroken }
func (brokenService) Save(context.Context, int64, int64) error   { return errBroken }
func (brokenService) Unsave(context.Context, int64, int64) error { return errBroken }
func (brokenService) AddComment(context.Context, int64, int64, model.CommentInput) (*model.Comment, error) {
	return nil, errBroken
}
func (brokenService) Profile(context.Context, int64) (*model.Profile, error) { return nil, errBroken }
func (brokenService) Explore(context.Context) ([]model.Post, error)        { return nil, errBroken }

func TestStoreFailuresAreOpaque500s(t *testing.T) {
	api := newRouter(handler.NewFeedHandler(brokenService{}, testLogger()))

	tests := []struct {
		method, path, body, message string
	}{
		{http.MethodGet, "/api/stories", "", "Failed to fetch stories"},
		{http.MethodGet, "/api/feed", "", "Failed to fetch feed"},
		{http.MethodGet, "/api/posts/1", "", "Failed to fetch post"},
		{http.MethodPost, "/api/posts/1/like", "", "Failed to like post"},
		{http.MethodDelete, "/api/posts/1/like", "", "Failed to unlike post"},
		{http.MethodPost, "/api/posts/1/save", "", "Failed to save post"},
		{http.MethodDelete, "/api/posts/1/save", "", "Failed to unsave post"},
		{http.MethodPost, "/api/posts/1/comments", `{"text":"hi"}`, "Failed to add comment"},
		{http.MethodGet, "/api/profile", "", "Failed to fetch profile"},
		{http.MethodGet, "/api/explore", "", "Failed to fetch explore content"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := do(t, api, tt.method, tt.path, tt.body)

			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			body := decode[handler.ErrorResponse](t, rr)
			assert.Equal(t, "internal_error", body.Error)
			assert.Equal(t, tt.message, body.Message)
			assert.NotContains(t, rr.Body.String(), errBroken.Error())
		})
	}
}

func TestMissingIdentityIs500(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/api", handler.NewFeedHandler(brokenService{}, testLogger()).Routes)

	rr := do(t, r, http.MethodGet, "/api/profile", "")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
