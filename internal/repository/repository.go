// Package repository defines the data-store contract.
//
// Two backends implement Store: repository/memory (the default, process
// lifetime only) and repository/sqlite (persisted). Services depend on the
// interfaces here and never on a concrete backend.
//
// Shared rules for every implementation:
//   - lookups return an apperror.ErrNotFound error on a miss
//   - Create/Add methods fill in ID and CreatedAt on the passed struct
//   - counter maintenance on a missing related entity is silently skipped
//   - returned values are copies of store state
package repository

import (
	"context"

	"github.com/sakif/photofeed/internal/model"
)

type UserRepository interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	// CreateUser returns an apperror.ErrConflict error if the username is taken.
	CreateUser(ctx context.Context, user *model.User) error
}

type PostRepository interface {
	// GetPosts returns every post, newest first (id descending on equal timestamps).
	GetPosts(ctx context.Context) ([]model.Post, error)
	GetPost(ctx context.Context, id int64) (*model.Post, error)
	GetPostsByUserID(ctx context.Context, userID int64) ([]model.Post, error)
	// CreatePost also increments the owner's PostCount.
	CreatePost(ctx context.Context, post *model.Post) error
}

type CommentRepository interface {
	// GetCommentsByPostID returns the post's comments newest first.
	// limit <= 0 means all of them.
	GetCommentsByPostID(ctx context.Context, postID int64, limit int) ([]model.Comment, error)
	// AddComment also increments the post's CommentCount.
	AddComment(ctx context.Context, comment *model.Comment) error
}

// EngagementRepository holds the idempotent like and save toggles.
type EngagementRepository interface {
	LikePost(ctx context.Context, postID, userID int64) error
	UnlikePost(ctx context.Context, postID, userID int64) error
	SavePost(ctx context.Context, postID, userID int64) error
	UnsavePost(ctx context.Context, postID, userID int64) error
}

type StoryRepository interface {
	// GetStories returns the users that currently have a story, by user id.
	GetStories(ctx context.Context) ([]model.User, error)
	// CreateStory also sets the owner's HasStory and HasUnseenStory.
	CreateStory(ctx context.Context, story *model.Story) error
}

// Store is everything a backend provides.
type Store interface {
	UserRepository
	PostRepository
	CommentRepository
	EngagementRepository
	StoryRepository
}

// Loader inserts records exactly as given, apart from ID and CreatedAt.
// No counters are touched. Used for seeding, where the sample data carries
// its own counter values.
type Loader interface {
	LoadUser(ctx context.Context, user *model.User) error
	LoadPost(ctx context.Context, post *model.Post) error
	LoadComment(ctx context.Context, comment *model.Comment) error
}

// SeedableStore is a Store that can also be bulk loaded.
type SeedableStore interface {
	Store
	Loader
}
