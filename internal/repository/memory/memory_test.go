package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/photofeed/internal/clock"
	"github.com/sakif/photofeed/internal/model"
	"github.com/sakif/photofeed/internal/repository"
	"github.com/sakif/photofeed/internal/repository/repotest"
)

func TestStoreContract(t *testing.T) {
	repotest.Run(t, func(t *testing.T, c clock.Clock) repository.SeedableStore {
		return New(c)
	})
}

// The like toggle is check-then-insert; the store lock must make it atomic
// so racing likes from one user still count once.
func TestConcurrentLikesCountOnce(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	u := &model.User{Username: "me"}
	require.NoError(t, s.CreateUser(ctx, u))
	p := &model.Post{UserID: u.ID, ImageURL: "x", Caption: "race"}
	require.NoError(t, s.CreatePost(ctx, p))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.LikePost(ctx, p.ID, u.ID))
		}()
	}
	wg.Wait()

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikeCount)
	assert.Len(t, s.likes, 1)
}

func TestConcurrentCommentsAllCounted(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	p := &model.Post{UserID: 1, ImageURL: "x", Caption: "busy"}
	require.NoError(t, s.CreatePost(ctx, p))

	const writers = 40
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.AddComment(ctx, &model.Comment{PostID: p.ID, UserID: 1, Text: "hi"}))
		}()
	}
	wg.Wait()

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, writers, got.CommentCount)
}

func TestUnlikeFreesPairForRelike(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	p := &model.Post{UserID: 1, ImageURL: "x"}
	require.NoError(t, s.CreatePost(ctx, p))

	require.NoError(t, s.LikePost(ctx, p.ID, 1))
	require.NoError(t, s.UnlikePost(ctx, p.ID, 1))
	require.NoError(t, s.LikePost(ctx, p.ID, 1))

	// Ids are never reused: the second like gets a fresh one.
	assert.Len(t, s.likes, 1)
	assert.Equal(t, int64(2), s.likeIndex[pair{postID: p.ID, userID: 1}])
}
