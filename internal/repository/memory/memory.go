// Package memory implements repository.Store with in-process maps.
//
// One store instance is created at startup and handed to every handler.
// Each entity kind has its own map and id counter; a single RWMutex guards
// all of them, because several operations touch two maps at once (a like
// and its post's counter) and the like/save existence check must not
// interleave with another insert for the same pair.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"sync"

	"github.com/sakif/photofeed/internal/apperror"
	"github.com/sakif/photofeed/internal/clock"
	"github.com/sakif/photofeed/internal/model"
	"github.com/sakif/photofeed/internal/repository"
)

var (
	_ repository.Store  = (*Store)(nil)
	_ repository.Loader = (*Store)(nil)
)

// pair identifies a (post, user) combination for likes and saved posts.
type pair struct {
	postID int64
	userID int64
}

// Store is the in-memory backend. Use New; the zero value is not usable.
type Store struct {
	mu    sync.RWMutex
	clock clock.Clock

	users      map[int64]*model.User
	posts      map[int64]*model.Post
	comments   map[int64]*model.Comment
	likes      map[int64]*model.Like
	savedPosts map[int64]*model.SavedPost
	stories    map[int64]*model.Story

	// pair -> like/saved post id
	likeIndex  map[pair]int64
	savedIndex map[pair]int64

	nextUserID    int64
	nextPostID    int64
	nextCommentID int64
	nextLikeID    int64
	nextSavedID   int64
	nextStoryID   int64
}

// New returns an empty store that stamps createdAt with c.
func New(c clock.Clock) *Store {
	if c == nil {
		c = clock.NewReal()
	}
	return &Store{
		clock:         c,
		users:         make(map[int64]*model.User),
		posts:         make(map[int64]*model.Post),
		comments:      make(map[int64]*model.Comment),
		likes:         make(map[int64]*model.Like),
		savedPosts:    make(map[int64]*model.SavedPost),
		stories:       make(map[int64]*model.Story),
		likeIndex:     make(map[pair]int64),
		savedIndex:    make(map[pair]int64),
		nextUserID:    1,
		nextPostID:    1,
		nextCommentID: 1,
		nextLikeID:    1,
		nextSavedID:   1,
		nextStoryID:   1,
	}
}

// Close is a no-op; it lets the server treat every backend the same way.
func (s *Store) Close() error {
	return nil
}

// =========================================================================
// USERS
// =========================================================================

func (s *Store) GetUser(_ context.Context, id int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
	}
	return cloneUser(u), nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u := s.findUserByUsername(username); u != nil {
		return cloneUser(u), nil
	}
	return nil, apperror.NotFound("user", username)
}

func (s *Store) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertUser(user)
}

// LoadUser is CreateUser under another name: creating a user has no counter
// side effects.
func (s *Store) LoadUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertUser(user)
}

func (s *Store) insertUser(user *model.User) error {
	if s.findUserByUsername(user.Username) != nil {
		return apperror.Conflict("user", user.Username)
	}
	user.ID = s.nextUserID
	s.nextUserID++
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *Store) findUserByUsername(username string) *model.User {
	for _, u := range s.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

// =========================================================================
// POSTS
// =========================================================================

func (s *Store) GetPosts(_ context.Context) ([]model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]model.Post, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, *p)
	}
	sortPostsNewestFirst(posts)
	return posts, nil
}

func (s *Store) GetPost(_ context.Context, id int64) (*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", strconv.FormatInt(id, 10))
	}
	post := *p
	return &post, nil
}

func (s *Store) GetPostsByUserID(_ context.Context, userID int64) ([]model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := []model.Post{}
	for _, p := range s.posts {
		if p.UserID == userID {
			posts = append(posts, *p)
		}
	}
	sortPostsNewestFirst(posts)
	return posts, nil
}

func (s *Store) CreatePost(_ context.Context, post *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insertPost(post)

	// Soft-fail: a post whose owner does not exist is still stored.
	if owner, ok := s.users[post.UserID]; ok {
		owner.PostCount++
	}
	return nil
}

func (s *Store) LoadPost(_ context.Context, post *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertPost(post)
	return nil
}

func (s *Store) insertPost(post *model.Post) {
	post.ID = s.nextPostID
	s.nextPostID++
	post.CreatedAt = s.clock.Now()
	stored := *post
	s.posts[post.ID] = &stored
}

// =========================================================================
// COMMENTS
// =========================================================================

func (s *Store) GetCommentsByPostID(_ context.Context, postID int64, limit int) ([]model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comments := []model.Comment{}
	for _, c := range s.comments {
		if c.PostID == postID {
			comments = append(comments, *c)
		}
	}
	slices.SortFunc(comments, func(a, b model.Comment) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmpDesc(a.ID, b.ID)
	})

	if limit > 0 && len(comments) > limit {
		comments = comments[:limit]
	}
	return comments, nil
}

func (s *Store) AddComment(_ context.Context, comment *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insertComment(comment)

	if post, ok := s.posts[comment.PostID]; ok {
		post.CommentCount++
	}
	return nil
}

func (s *Store) LoadComment(_ context.Context, comment *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertComment(comment)
	return nil
}

func (s *Store) insertComment(comment *model.Comment) {
	comment.ID = s.nextCommentID
	s.nextCommentID++
	comment.CreatedAt = s.clock.Now()
	stored := *comment
	s.comments[comment.ID] = &stored
}

// =========================================================================
// LIKES & SAVES
// =========================================================================

func (s *Store) LikePost(_ context.Context, postID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pair{postID: postID, userID: userID}
	if _, exists := s.likeIndex[key]; exists {
		return nil
	}

	like := &model.Like{
		ID:        s.nextLikeID,
		PostID:    postID,
		UserID:    userID,
		CreatedAt: s.clock.Now(),
	}
	s.nextLikeID++
	s.likes[like.ID] = like
	s.likeIndex[key] = like.ID

	if post, ok := s.posts[postID]; ok {
		post.LikeCount++
	}
	return nil
}

func (s *Store) UnlikePost(_ context.Context, postID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pair{postID: postID, userID: userID}
	id, exists := s.likeIndex[key]
	if !exists {
		return nil
	}
	delete(s.likes, id)
	delete(s.likeIndex, key)

	if post, ok := s.posts[postID]; ok && post.LikeCount > 0 {
		post.LikeCount--
	}
	return nil
}

func (s *Store) SavePost(_ context.Context, postID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pair{postID: postID, userID: userID}
	if _, exists := s.savedIndex[key]; exists {
		return nil
	}

	saved := &model.SavedPost{
		ID:        s.nextSavedID,
		PostID:    postID,
		UserID:    userID,
		CreatedAt: s.clock.Now(),
	}
	s.nextSavedID++
	s.savedPosts[saved.ID] = saved
	s.savedIndex[key] = saved.ID
	return nil
}

func (s *Store) UnsavePost(_ context.Context, postID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pair{postID: postID, userID: userID}
	id, exists := s.savedIndex[key]
	if !exists {
		return nil
	}
	delete(s.savedPosts, id)
	delete(s.savedIndex, key)
	return nil
}

// =========================================================================
// STORIES
// =========================================================================

func (s *Store) GetStories(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := []model.User{}
	for _, u := range s.users {
		if u.HasStory {
			users = append(users, *cloneUser(u))
		}
	}
	slices.SortFunc(users, func(a, b model.User) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return users, nil
}

func (s *Store) CreateStory(_ context.Context, story *model.Story) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	story.ID = s.nextStoryID
	s.nextStoryID++
	story.CreatedAt = s.clock.Now()
	stored := *story
	s.stories[story.ID] = &stored

	if owner, ok := s.users[story.UserID]; ok {
		owner.HasStory = true
		owner.HasUnseenStory = true
	}
	return nil
}

// =========================================================================
// HELPERS
// =========================================================================

func sortPostsNewestFirst(posts []model.Post) {
	slices.SortFunc(posts, func(a, b model.Post) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmpDesc(a.ID, b.ID)
	})
}

// cmpDesc orders larger ids first.
func cmpDesc(a, b int64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}

// cloneUser copies u including the optional string fields, so callers can
// never write through Bio or DisplayName into the store.
func cloneUser(u *model.User) *model.User {
	c := *u
	if u.Bio != nil {
		bio := *u.Bio
		c.Bio = &bio
	}
	if u.DisplayName != nil {
		name := *u.DisplayName
		c.DisplayName = &name
	}
	return &c
}
