package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sakif/photofeed/internal/model"
)

// GetCommentsByPostID returns a post's comments newest first.
// SQLite treats LIMIT -1 as "no limit", which is what limit <= 0 maps to.
func (db *DB) GetCommentsByPostID(ctx context.Context, postID int64, limit int) ([]model.Comment, error) {
	if limit <= 0 {
		limit = -1
	}

	comments := []model.Comment{}
	err := db.conn.SelectContext(ctx, &comments,
		`SELECT id, post_id, user_id, text, created_at
		 FROM comments
		 WHERE post_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		postID, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for post %d: %w", postID, err)
	}
	return comments, nil
}

// AddComment inserts the comment and bumps the post's comment_count.
func (db *DB) AddComment(ctx context.Context, comment *model.Comment) error {
	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := db.insertComment(ctx, tx, comment); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE posts SET comment_count = comment_count + 1 WHERE id = ?`, comment.PostID)
		return err
	})
	if err != nil {
		return fmt.Errorf("sqlite: adding comment to post %d: %w", comment.PostID, err)
	}
	return nil
}

func (db *DB) LoadComment(ctx context.Context, comment *model.Comment) error {
	if err := db.insertComment(ctx, db.conn, comment); err != nil {
		return fmt.Errorf("sqlite: loading comment: %w", err)
	}
	return nil
}

func (db *DB) insertComment(ctx context.Context, ex sqlx.ExecerContext, comment *model.Comment) error {
	comment.CreatedAt = db.clock.Now()
	id, err := insertID(ctx, ex,
		`INSERT INTO comments (post_id, user_id, text, created_at) VALUES (?, ?, ?, ?)`,
		comment.PostID,
		comment.UserID,
		comment.Text,
		comment.CreatedAt,
	)
	if err != nil {
		return err
	}
	comment.ID = id
	return nil
}
