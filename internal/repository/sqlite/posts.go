package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/sakif/photofeed/internal/apperror"
	"github.com/sakif/photofeed/internal/model"
)

const postColumns = `id, user_id, image_url, caption, like_count, comment_count, created_at`

// GetPosts returns every post, newest first.
func (db *DB) GetPosts(ctx context.Context) ([]model.Post, error) {
	posts := []model.Post{}
	err := db.conn.SelectContext(ctx, &posts,
		`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	return posts, nil
}

func (db *DB) GetPost(ctx context.Context, id int64) (*model.Post, error) {
	var p model.Post
	err := db.conn.GetContext(ctx, &p, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("post", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting post %d: %w", id, err)
	}
	return &p, nil
}

func (db *DB) GetPostsByUserID(ctx context.Context, userID int64) ([]model.Post, error) {
	posts := []model.Post{}
	err := db.conn.SelectContext(ctx, &posts,
		`SELECT `+postColumns+` FROM posts WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts for user %d: %w", userID, err)
	}
	return posts, nil
}

// CreatePost inserts the post and bumps the owner's post_count in one
// transaction. A missing owner leaves the UPDATE with nothing to match.
func (db *DB) CreatePost(ctx context.Context, post *model.Post) error {
	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := db.insertPost(ctx, tx, post); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE users SET post_count = post_count + 1 WHERE id = ?`, post.UserID)
		return err
	})
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}
	return nil
}

// LoadPost inserts the post with its counters exactly as given.
func (db *DB) LoadPost(ctx context.Context, post *model.Post) error {
	if err := db.insertPost(ctx, db.conn, post); err != nil {
		return fmt.Errorf("sqlite: loading post: %w", err)
	}
	return nil
}

func (db *DB) insertPost(ctx context.Context, ex sqlx.ExecerContext, post *model.Post) error {
	post.CreatedAt = db.clock.Now()
	id, err := insertID(ctx, ex,
		`INSERT INTO posts (user_id, image_url, caption, like_count, comment_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		post.UserID,
		post.ImageURL,
		post.Caption,
		post.LikeCount,
		post.CommentCount,
		post.CreatedAt,
	)
	if err != nil {
		return err
	}
	post.ID = id
	return nil
}
