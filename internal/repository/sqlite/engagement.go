package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// LikePost records a like once per (post, user).
//
// INSERT OR IGNORE against UNIQUE(post_id, user_id) is the existence check:
// a repeat like affects zero rows and the counter is left alone.
func (db *DB) LikePost(ctx context.Context, postID, userID int64) error {
	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		inserted, err := insertPair(ctx, tx, "likes", postID, userID, db.clock.Now())
		if err != nil || !inserted {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE posts SET like_count = like_count + 1 WHERE id = ?`, postID)
		return err
	})
	if err != nil {
		return fmt.Errorf("sqlite: liking post %d: %w", postID, err)
	}
	return nil
}

// UnlikePost removes the like if present; like_count never drops below zero.
func (db *DB) UnlikePost(ctx context.Context, postID, userID int64) error {
	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		deleted, err := deletePair(ctx, tx, "likes", postID, userID)
		if err != nil || !deleted {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE posts SET like_count = like_count - 1 WHERE id = ? AND like_count > 0`, postID)
		return err
	})
	if err != nil {
		return fmt.Errorf("sqlite: unliking post %d: %w", postID, err)
	}
	return nil
}

func (db *DB) SavePost(ctx context.Context, postID, userID int64) error {
	if _, err := insertPair(ctx, db.conn, "saved_posts", postID, userID, db.clock.Now()); err != nil {
		return fmt.Errorf("sqlite: saving post %d: %w", postID, err)
	}
	return nil
}

func (db *DB) UnsavePost(ctx context.Context, postID, userID int64) error {
	if _, err := deletePair(ctx, db.conn, "saved_posts", postID, userID); err != nil {
		return fmt.Errorf("sqlite: unsaving post %d: %w", postID, err)
	}
	return nil
}

// insertPair and deletePair report whether a row actually changed.
// table is always one of our own constants, never user input.
func insertPair(ctx context.Context, ex sqlx.ExecerContext, table string, postID, userID int64, at any) (bool, error) {
	res, err := ex.ExecContext(ctx,
		`INSERT OR IGNORE INTO `+table+` (post_id, user_id, created_at) VALUES (?, ?, ?)`,
		postID, userID, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking rows affected: %w", err)
	}
	return n > 0, nil
}

func deletePair(ctx context.Context, ex sqlx.ExecerContext, table string, postID, userID int64) (bool, error) {
	res, err := ex.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE post_id = ? AND user_id = ?`, postID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking rows affected: %w", err)
	}
	return n > 0, nil
}
