package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/photofeed/internal/apperror"
	"github.com/sakif/photofeed/internal/auth"
	"github.com/sakif/photofeed/internal/middleware"
	"github.com/sakif/photofeed/internal/model"
)

// maxCommentBody caps the bytes read from a comment request body.
const maxCommentBody = 64 << 10

// FeedService is what FeedHandler needs from the service layer.
// *service.FeedService satisfies it.
type FeedService interface {
	Stories(ctx context.Context) ([]model.User, error)
	Feed(ctx context.Context) (*model.Feed, error)
	PostDetail(ctx context.Context, id int64) (*model.PostDetail, error)
	Like(ctx context.Context, postID, viewerID int64) error
	Unlike(ctx context.Context, postID, viewerID int64) error
	Save(ctx context.Context, postID, viewerID int64) error
	Unsave(ctx context.Context, postID, viewerID int64) error
	AddComment(ctx context.Context, postID, viewerID int64, in model.CommentInput) (*model.Comment, error)
	Profile(ctx context.Context, viewerID int64) (*model.Profile, error)
	Explore(ctx context.Context) ([]model.Post, error)
}

// FeedHandler serves the JSON API the client renders from.
type FeedHandler struct {
	svc    FeedService
	logger *slog.Logger
}

func NewFeedHandler(svc FeedService, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{svc: svc, logger: logger}
}

// Routes registers every API route on r. The caller mounts r under /api and
// installs auth.FixedIdentity in front of it.
func (h *FeedHandler) Routes(r chi.Router) {
	r.Get("/stories", h.HandleStories)
	r.Get("/feed", h.HandleFeed)
	r.Get("/explore", h.HandleExplore)
	r.Get("/profile", h.HandleProfile)

	r.Route("/posts/{id}", func(r chi.Router) {
		r.Get("/", h.HandlePost)
		r.Post("/like", h.HandleLike)
		r.Delete("/like", h.HandleUnlike)
		r.Post("/save", h.HandleSave)
		r.Delete("/save", h.HandleUnsave)
		r.Post("/comments", h.HandleAddComment)
	})
}

type successResponse struct {
	Success bool `json:"success"`
}

// HandleStories: GET /api/stories
func (h *FeedHandler) HandleStories(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Stories(r.Context())
	if err != nil {
		h.fail(w, r, err, "Failed to fetch stories")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleFeed: GET /api/feed
func (h *FeedHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	feed, err := h.svc.Feed(r.Context())
	if err != nil {
		h.fail(w, r, err, "Failed to fetch feed")
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

// HandlePost: GET /api/posts/{id}
func (h *FeedHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	id, err := postIDParam(r)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch post")
		return
	}
	detail, err := h.svc.PostDetail(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch post")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// HandleLike: POST /api/posts/{id}/like
func (h *FeedHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.svc.Like, "Failed to like post")
}

// HandleUnlike: DELETE /api/posts/{id}/like
func (h *FeedHandler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.svc.Unlike, "Failed to unlike post")
}

// HandleSave: POST /api/posts/{id}/save
func (h *FeedHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.svc.Save, "Failed to save post")
}

// HandleUnsave: DELETE /api/posts/{id}/save
func (h *FeedHandler) HandleUnsave(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.svc.Unsave, "Failed to unsave post")
}

func (h *FeedHandler) toggle(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, postID, viewerID int64) error, failMsg string) {
	postID, err := postIDParam(r)
	if err != nil {
		h.fail(w, r, err, failMsg)
		return
	}
	viewerID, err := viewer(r)
	if err != nil {
		h.fail(w, r, err, failMsg)
		return
	}
	if err := op(r.Context(), postID, viewerID); err != nil {
		h.fail(w, r, err, failMsg)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// HandleAddComment: POST /api/posts/{id}/comments
//
// REQUEST BODY: {"text": "Nice!"}
// Responds 201 with the stored comment, or 400 with the field violations.
func (h *FeedHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	const failMsg = "Failed to add comment"

	postID, err := postIDParam(r)
	if err != nil {
		h.fail(w, r, err, failMsg)
		return
	}
	viewerID, err := viewer(r)
	if err != nil {
		h.fail(w, r, err, failMsg)
		return
	}

	var in model.CommentInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCommentBody)).Decode(&in); err != nil {
		h.fail(w, r, apperror.Invalid("Invalid comment data", []apperror.FieldViolation{{
			Field:   "body",
			Rule:    "json",
			Message: "request body must be a JSON object",
		}}), failMsg)
		return
	}

	comment, err := h.svc.AddComment(r.Context(), postID, viewerID, in)
	if err != nil {
		h.fail(w, r, err, failMsg)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// HandleProfile: GET /api/profile
func (h *FeedHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	viewerID, err := viewer(r)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch profile")
		return
	}
	profile, err := h.svc.Profile(r.Context(), viewerID)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleExplore: GET /api/explore
func (h *FeedHandler) HandleExplore(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.Explore(r.Context())
	if err != nil {
		h.fail(w, r, err, "Failed to fetch explore content")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// fail writes err and logs it when it turned into a 500.
func (h *FeedHandler) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if status := writeError(w, err, fallback); status == http.StatusInternalServerError {
		h.logger.Error(fallback,
			slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}

func postIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.ValidationFailed("id", fmt.Sprintf("post id must be an integer, got %q", raw))
	}
	return id, nil
}

func viewer(r *http.Request) (int64, error) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return 0, fmt.Errorf("handler: no caller identity on request")
	}
	return id, nil
}
