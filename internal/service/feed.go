// Package service contains the business logic layer of the application.
//
// The layering is the usual one:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, orchestrates, records metrics
//	Repository (data layer)  → reads/writes the store
//
// FeedService takes a repository.Store (interface), never a concrete backend,
// so the same service runs over the memory store, SQLite, or a test stub.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/photofeed/internal/apperror"
	"github.com/sakif/photofeed/internal/metrics"
	"github.com/sakif/photofeed/internal/model"
	"github.com/sakif/photofeed/internal/repository"
)

// FeedCommentLimit is how many recent comments each feed post carries.
const FeedCommentLimit = 2

// maxOwnerLookups bounds the concurrent user lookups a feed request makes.
const maxOwnerLookups = 8

// FeedService serves every read and write behind the feed API.
type FeedService struct {
	store    repository.Store
	metrics  *metrics.Metrics
	validate *validator.Validate
	logger   *slog.Logger
}

// NewFeedService creates a FeedService. The validator reports fields by their
// JSON name so violations match what the client sent.
func NewFeedService(store repository.Store, m *metrics.Metrics, logger *slog.Logger) *FeedService {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &FeedService{
		store:    store,
		metrics:  m,
		validate: v,
		logger:   logger,
	}
}

// Stories returns the users that currently have a story.
func (s *FeedService) Stories(ctx context.Context) ([]model.User, error) {
	users, err := s.store.GetStories(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: listing stories: %w", err)
	}
	return users, nil
}

// Feed returns every post newest first, each with its two most recent
// comments, plus the distinct owners of those posts. Owners that no longer
// exist are left out of Users.
func (s *FeedService) Feed(ctx context.Context) (*model.Feed, error) {
	posts, err := s.store.GetPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: listing posts: %w", err)
	}

	users, err := s.resolveOwners(ctx, posts)
	if err != nil {
		return nil, err
	}

	views := make([]model.PostView, 0, len(posts))
	for _, p := range posts {
		comments, err := s.store.GetCommentsByPostID(ctx, p.ID, FeedCommentLimit)
		if err != nil {
			return nil, fmt.Errorf("service: listing comments for post %d: %w", p.ID, err)
		}
		views = append(views, newPostView(p, comments))
	}

	return &model.Feed{Posts: views, Users: users}, nil
}

// resolveOwners looks up the distinct owners of posts concurrently. The
// result keeps the order in which owners first appear in posts.
func (s *FeedService) resolveOwners(ctx context.Context, posts []model.Post) ([]model.User, error) {
	var ids []int64
	seen := make(map[int64]struct{}, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.UserID]; ok {
			continue
		}
		seen[p.UserID] = struct{}{}
		ids = append(ids, p.UserID)
	}

	found := make([]*model.User, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxOwnerLookups)
	for i, id := range ids {
		g.Go(func() error {
			u, err := s.store.GetUser(gctx, id)
			if apperror.IsNotFound(err) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("service: loading user %d: %w", id, err)
			}
			found[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	users := make([]model.User, 0, len(found))
	for _, u := range found {
		if u != nil {
			users = append(users, *u)
		}
	}
	return users, nil
}

// PostDetail returns one post with all its comments and its owner. User is
// nil when the owner no longer exists.
func (s *FeedService) PostDetail(ctx context.Context, id int64) (*model.PostDetail, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: loading post: %w", err)
	}

	var (
		owner    *model.User
		comments []model.Comment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.store.GetUser(gctx, post.UserID)
		if apperror.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("service: loading post owner: %w", err)
		}
		owner = u
		return nil
	})
	g.Go(func() error {
		c, err := s.store.GetCommentsByPostID(gctx, post.ID, 0)
		if err != nil {
			return fmt.Errorf("service: listing comments: %w", err)
		}
		comments = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.PostDetail{Post: newPostView(*post, comments), User: owner}, nil
}

// Like records a like from viewerID. Liking twice is a no-op.
func (s *FeedService) Like(ctx context.Context, postID, viewerID int64) error {
	return s.engage(ctx, metrics.ActionLike, postID, viewerID, s.store.LikePost)
}

// Unlike removes viewerID's like if there is one.
func (s *FeedService) Unlike(ctx context.Context, postID, viewerID int64) error {
	return s.engage(ctx, metrics.ActionUnlike, postID, viewerID, s.store.UnlikePost)
}

// Save bookmarks the post for viewerID. Saving twice is a no-op.
func (s *FeedService) Save(ctx context.Context, postID, viewerID int64) error {
	return s.engage(ctx, metrics.ActionSave, postID, viewerID, s.store.SavePost)
}

// Unsave removes viewerID's bookmark if there is one.
func (s *FeedService) Unsave(ctx context.Context, postID, viewerID int64) error {
	return s.engage(ctx, metrics.ActionUnsave, postID, viewerID, s.store.UnsavePost)
}

func (s *FeedService) engage(ctx context.Context, action string, postID, viewerID int64,
	toggle func(ctx context.Context, postID, userID int64) error) error {
	if err := toggle(ctx, postID, viewerID); err != nil {
		s.logger.Error("engagement failed",
			slog.String("action", action),
			slog.Int64("post_id", postID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("service: %s post %d: %w", action, postID, err)
	}
	s.metrics.Engaged(action)
	s.logger.Info("post engagement",
		slog.String("action", action),
		slog.Int64("post_id", postID),
		slog.Int64("user_id", viewerID),
	)
	return nil
}

// AddComment validates in and stores a comment by viewerID on postID.
//
// The post is not required to exist: the comment is stored either way and
// only the post's comment counter update is skipped.
func (s *FeedService) AddComment(ctx context.Context, postID, viewerID int64, in model.CommentInput) (*model.Comment, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("service: validating comment: %w", commentValidationError(err))
	}

	c := &model.Comment{PostID: postID, UserID: viewerID, Text: in.Text}
	if err := s.store.AddComment(ctx, c); err != nil {
		s.logger.Error("failed to add comment",
			slog.Int64("post_id", postID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service: adding comment: %w", err)
	}

	s.metrics.CommentsCreated.Inc()
	s.logger.Info("comment added",
		slog.Int64("comment_id", c.ID),
		slog.Int64("post_id", postID),
		slog.Int64("user_id", viewerID),
	)
	return c, nil
}

// commentValidationError turns validator output into an apperror validation
// error with one FieldViolation per failed rule.
func commentValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.ValidationFailed("text", err.Error())
	}
	details := make([]apperror.FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, apperror.FieldViolation{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: violationMessage(fe),
		})
	}
	return apperror.Invalid("Invalid comment data", details)
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// Profile returns viewerID's user record together with their posts.
func (s *FeedService) Profile(ctx context.Context, viewerID int64) (*model.Profile, error) {
	user, err := s.store.GetUser(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("service: loading profile user: %w", err)
	}
	posts, err := s.store.GetPostsByUserID(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("service: listing posts for user %d: %w", viewerID, err)
	}
	return &model.Profile{User: *user, Posts: posts}, nil
}

// Explore returns every post. There is no ranking yet; the order is the
// store's newest-first order.
func (s *FeedService) Explore(ctx context.Context) ([]model.Post, error) {
	posts, err := s.store.GetPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: listing explore posts: %w", err)
	}
	return posts, nil
}

func newPostView(p model.Post, comments []model.Comment) model.PostView {
	if comments == nil {
		comments = []model.Comment{}
	}
	return model.PostView{Post: p, Comments: comments}
}
