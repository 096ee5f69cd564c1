// Package repotest is a behaviour suite every repository.Store backend must
// pass. Backend packages call Run from their own tests with a constructor
// for a fresh, empty store.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/photofeed/internal/apperror"
	"github.com/sakif/photofeed/internal/clock"
	"github.com/sakif/photofeed/internal/model"
	"github.com/sakif/photofeed/internal/repository"
)

// Factory returns a fresh empty store driven by c.
type Factory func(t *testing.T, c clock.Clock) repository.SeedableStore

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// Run executes the whole suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, newStore Factory)
	}{
		{"CreateUserAssignsSequentialIDs", testCreateUserAssignsSequentialIDs},
		{"CreateUserRejectsDuplicateUsername", testCreateUserRejectsDuplicateUsername},
		{"GetUserNotFound", testGetUserNotFound},
		{"GetUserByUsername", testGetUserByUsername},
		{"ReturnedUserIsACopy", testReturnedUserIsACopy},
		{"CreatePostIncrementsPostCount", testCreatePostIncrementsPostCount},
		{"CreatePostWithMissingOwner", testCreatePostWithMissingOwner},
		{"GetPostsNewestFirst", testGetPostsNewestFirst},
		{"GetPostsTieBreaksOnID", testGetPostsTieBreaksOnID},
		{"GetPostsByUserID", testGetPostsByUserID},
		{"GetPostNotFound", testGetPostNotFound},
		{"AddCommentIncrementsCommentCount", testAddCommentIncrementsCommentCount},
		{"AddCommentWithMissingPost", testAddCommentWithMissingPost},
		{"GetCommentsLimit", testGetCommentsLimit},
		{"LikeIsIdempotent", testLikeIsIdempotent},
		{"UnlikeWithoutLikeIsNoop", testUnlikeWithoutLikeIsNoop},
		{"LikeCountNeverNegative", testLikeCountNeverNegative},
		{"LikesArePerUser", testLikesArePerUser},
		{"LikeMissingPost", testLikeMissingPost},
		{"SaveToggleIsIdempotent", testSaveToggleIsIdempotent},
		{"CreateStoryFlagsOwner", testCreateStoryFlagsOwner},
		{"LoaderLeavesCountersAlone", testLoaderLeavesCountersAlone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore)
		})
	}
}

// ticking returns a store whose clock moves one second per timestamp, so
// creation order and createdAt order agree.
func ticking(t *testing.T, newStore Factory) repository.SeedableStore {
	t.Helper()
	return newStore(t, clock.NewTicking(epoch, time.Second))
}

func mustCreateUser(t *testing.T, s repository.Store, username string) *model.User {
	t.Helper()
	u := &model.User{
		Username:        username,
		Password:        "secret",
		ProfileImageURL: "https://img.example.com/" + username + ".jpg",
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func mustCreatePost(t *testing.T, s repository.Store, userID int64, caption string) *model.Post {
	t.Helper()
	p := &model.Post{UserID: userID, ImageURL: "https://img.example.com/p.jpg", Caption: caption}
	require.NoError(t, s.CreatePost(context.Background(), p))
	return p
}

func mustGetPost(t *testing.T, s repository.Store, id int64) *model.Post {
	t.Helper()
	p, err := s.GetPost(context.Background(), id)
	require.NoError(t, err)
	return p
}

func testCreateUserAssignsSequentialIDs(t *testing.T, newStore Factory) {
	s := ticking(t, newStore)

	first := mustCreateUser(t, s, "first")
	second := mustCreateUser(t, s, "second")

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
}

func testCreateUserRejectsDuplicateUsername(t *testing.T, newStore Factory) {
	s := ticking(t, newStore)
	mustCreateUser(t, s, "emma_s")

	err := s.CreateUser(context.Background(), &model.User{Username: "emma_s", Password: "x"})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func testGetUserNotFound(t *testing.T, newStore Factory) {
	s := ticking(t, newStore)

	_, err := s.GetUser(context.Background(), 404)

	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func testGetUserByUsername(t *testing.T, newStore Factory) {
	s := ticking(t, newStore)
	bio := "Coffee addict"
	created := &model.User{Username: "sofia_92", Password: "x", Bio: &bio, FollowerCount: 18765}
	require.NoError(t, s.CreateUser(context.Background(), created))

	found, err := s.GetUserByUsername(context.Background(), "sofia_92")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, 18765, found.FollowerCount)
	require.NotNil(t, found.Bio)
	assert.Equal(t, "Coffee addict", *found.Bio)
	assert.Nil(t, found.DisplayName)

	_, err = s.GetUserByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func testReturnedUserIsACopy(t *testing.T, newStore Factory) {
	s := ticking(t, newStore)
	u := mustCreateUser(t, s, "me")

	got, err := s.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	got.PostCount = 999
	got.Username = "hijacked"

	again, err := s.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.PostCount)
	assert.Equal(t, "me", again.Username)
}

func testCreatePostIncrementsPostCount(t *testing.T, newStore Factory) {
	s := ticking(t, newStore)
	u := mustCreateUser(t, s, "alex_d")

	const n = 3
	for i := 0; i < n; i++ {
		p := mustCreatePost(t, s, u.ID, "hike")
		assert.NotZero(t, p.ID)
		assert.False(t, p.CreatedAt.IsZero())
	}

	got, err := s.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got.PostCount)
}

func testCreatePostWithMissingOwner(t *testing.T, newStore Factory) {
	s := ticking(t, newStore)

	p := mustCreatePost(t, s, 77, "orphan")

	stored := mustGetPost(t, s, p.ID)
	assert.Equal(t, int64(77), stored.UserID)
	_, err := s.GetUser(context.Background(), 77)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func testGetPostsNewestFirst(t *testing.T, newStore Factory) {
	s := ticking(t, newStore)
	u := mustCreateUser(t, s, "michael")
	for _, caption := range []string{"one", "two", "three"} {
		mustCreatePost(t, s, u.ID, caption)
	}

	posts, err := s.GetPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 3)

	assert.Equal(t, "three", posts[0].Caption)
	assert.Equal(t, "one", posts[2].Caption)
	for i := 1; i < len(posts); i++ {
		assert.False(t, posts[i].CreatedAt.After(posts[i-1].CreatedAt),
			"post %d is newer than post %d", posts[i].ID, posts[i-1].ID)
	}
}

func testGetPostsTieBreaksOnID(t *testing.T, newStore Factory) {
	s := newStore(t, clock.NewStub(epoch))
	u := mustCreateUser(t, s, "david_m")
	a := mustCreatePost(t, s, u.ID, "a")
	b := mustCreatePost(t, s, u.ID, "b")

	posts, err := s.GetPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, b.ID, posts[0].ID)
	assert.Equal(t, a.ID, posts[1].ID)
}

func testGetPostsByUserID(t *testing.T, newStore Factory) {
	s := ticking(t, newStore)
	me := mustCreateUser(t, s, "me")
	other := mustCreateUser(t, s, "jessica")
	mustCreatePost(t, s, me.ID, "mine 1")
	mustCreatePost(t, s, other.ID, "theirs")
	mustCreatePost(t, s, me.ID, "mine 2")

	posts, err := s.GetPostsByUserID(context.Background(), me.ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "mine 2", posts[0].Caption)
	assert.Equal(t, "mine 1", posts[1].Caption)

	none, err := s.GetPostsByUserID(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testGetPostNotFound(t *testing.T, newStore Factory) {
	s := ticking(t, newStore)

	_, err := s.GetPost(context.Background(), 1)

	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func testAddCommentIncrementsCommentCount(t *testing.T, newStore Factory) {
	s := ticking(t, newStore)
	u := mustCreateUser(t, s, "me")
	p := mustCreatePost(t, s, u.ID, "post")

	c := &model.Comment{PostID: p.ID, UserID: u.ID, Text: "Nice!"}
	require.NoError(t, s.AddComment(context.Background(), c))

	assert.NotZero(t, c.ID)
	assert.False(t, c.CreatedAt.IsZero())
	assert.Equal(t, 1, mustGetPost(t, s, p.ID).CommentCount)
}

func testAddCommentWithMissingPost(t *testing.T, newStore Factory) {
	s := ticking(t, newStore)

	c := &model.Comment{PostID: 55, UserID: 1, Text: "into the void"}
	require.NoError(t, s.AddComment(context.Background(), c))

	comments, err := s.GetCommentsByPostID(context.Background(), 55, 0)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "into the void", comments[0].Text)
}

func testGetCommentsLimit(t *testing.T, newStore Factory) {
	s := ticking(t, newStore)
	u := mustCreateUser(t, s, "me")
	p := mustCreatePost(t, s, u.ID, "post")
	other := mustCreatePost(t, s, u.ID, "other")

	for _, text := range []string{"first", "second", "third"} {
		require.NoError(t, s.AddComment(context.Background(),
			&model.Comment{PostID: p.ID, UserID: u.ID, Text: text}))
	}
	require.NoError(t, s.AddComment(context.Background(),
		&model.Comment{PostID: other.ID, UserID: u.ID, Text: "elsewhere"}))

	latest, err := s.GetCommentsByPostID(context.Background(), p.ID, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "third", latest[0].Text)
	assert.Equal(t, "second", latest[1].Text)

	all, err := s.GetCommentsByPostID(context.Background(), p.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	more, err := s.GetCommentsByPostID(context.Background(), p.ID, 10)
	require.NoError(t, err)
	assert.Len(t, more, 3)
}

func testLikeIsIdempotent(t *testing.T, newStore Factory) {
	s := ticking(t, newStore)
	u := mustCreateUser(t, s, "me")
	p := &model.Post{UserID: u.ID, ImageURL: "x", Caption: "c", LikeCount: 1245}
	require.NoError(t, s.CreatePost(context.Background(), p))

	require.NoError(t, s.LikePost(context.Background(), p.ID, u.ID))
	require.NoError(t, s.LikePost(context.Background(), p.ID, u.ID))

	assert.Equal(t, 1246, mustGetPost(t, s, p.ID).LikeCount)

	require.NoError(t, s.UnlikePost(context.Background(), p.ID, u.ID))
	assert.Equal(t, 1245, mustGetPost(t, s, p.ID).LikeCount)
}

func testUnlikeWithoutLikeIsNoop(t *testing.T, newStore Factory) {
	s := ticking(t, newStore)
	u := mustCreateUser(t, s, "me")
	p := &model.Post{UserID: u.ID, ImageURL: "x", Caption: "c", LikeCount: 10}
	require.NoError(t, s.CreatePost(context.Background(), p))

	require.NoError(t, s.UnlikePost(context.Background(), p.ID, u.ID))

	assert.Equal(t, 10, mustGetPost(t, s, p.ID).LikeCount)
}

func testLikeCountNeverNegative(t *testing.T, newStore Factory) {
	s := ticking(t, newStore)
	u := mustCreateUser(t, s, "me")
	p := mustCreatePost(t, s, u.ID, "zero likes")

	require.NoError(t, s.LikePost(context.Background(), p.ID, u.ID))
	for i := 0; i < 3; i++ {
		require.NoError(t, s.UnlikePost(context.Background(), p.ID, u.ID))
	}

	assert.Equal(t, 0, mustGetPost(t, s, p.ID).LikeCount)
}

func testLikesArePerUser(t *testing.T, newStore Factory) {
	s := ticking(t, newStore)
	a := mustCreateUser(t, s, "a")
	b := mustCreateUser(t, s, "b")
	p := mustCreatePost(t, s, a.ID, "shared")

	require.NoError(t, s.LikePost(context.Background(), p.ID, a.ID))
	require.NoError(t, s.LikePost(context.Background(), p.ID, b.ID))
	assert.Equal(t, 2, mustGetPost(t, s, p.ID).LikeCount)

	require.NoError(t, s.UnlikePost(context.Background(), p.ID, a.ID))
	assert.Equal(t, 1, mustGetPost(t, s, p.ID).LikeCount)
}

func testLikeMissingPost(t *testing.T, newStore Factory) {
	s := ticking(t, newStore)

	assert.NoError(t, s.LikePost(context.Background(), 404, 1))
	assert.NoError(t, s.UnlikePost(context.Background(), 404, 1))
}

func testSaveToggleIsIdempotent(t *testing.T, newStore Factory) {
	s := ticking(t, newStore)
	u := mustCreateUser(t, s, "me")
	p := mustCreatePost(t, s, u.ID, "bookmark me")

	require.NoError(t, s.SavePost(context.Background(), p.ID, u.ID))
	require.NoError(t, s.SavePost(context.Background(), p.ID, u.ID))
	require.NoError(t, s.UnsavePost(context.Background(), p.ID, u.ID))
	require.NoError(t, s.UnsavePost(context.Background(), p.ID, u.ID))

	// Saving never touches the like counter.
	assert.Equal(t, 0, mustGetPost(t, s, p.ID).LikeCount)
}

func testCreateStoryFlagsOwner(t *testing.T, newStore Factory) {
	s := ticking(t, newStore)
	quiet := mustCreateUser(t, s, "quiet")
	storyteller := mustCreateUser(t, s, "storyteller")

	none, err := s.GetStories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, none)

	story := &model.Story{UserID: storyteller.ID, ImageURL: "https://img.example.com/s.jpg"}
	require.NoError(t, s.CreateStory(context.Background(), story))
	assert.NotZero(t, story.ID)

	users, err := s.GetStories(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, storyteller.ID, users[0].ID)
	assert.True(t, users[0].HasStory)
	assert.True(t, users[0].HasUnseenStory)

	q, err := s.GetUser(context.Background(), quiet.ID)
	require.NoError(t, err)
	assert.False(t, q.HasStory)

	// A story for a missing user is stored without error.
	assert.NoError(t, s.CreateStory(context.Background(), &model.Story{UserID: 999, ImageURL: "x"}))
}

func testLoaderLeavesCountersAlone(t *testing.T, newStore Factory) {
	s := ticking(t, newStore)
	u := &model.User{Username: "emma_s", Password: "x", PostCount: 142}
	require.NoError(t, s.LoadUser(context.Background(), u))

	p := &model.Post{UserID: u.ID, ImageURL: "x", Caption: "Summer vibes!", LikeCount: 1245, CommentCount: 42}
	require.NoError(t, s.LoadPost(context.Background(), p))
	require.NoError(t, s.LoadComment(context.Background(),
		&model.Comment{PostID: p.ID, UserID: u.ID, Text: "Looking great!"}))

	got, err := s.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 142, got.PostCount)

	post := mustGetPost(t, s, p.ID)
	assert.Equal(t, 1245, post.LikeCount)
	assert.Equal(t, 42, post.CommentCount)
}
