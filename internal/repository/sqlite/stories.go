package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sakif/photofeed/internal/model"
)

// GetStories returns the users with an active story, by id.
func (db *DB) GetStories(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	err := db.conn.SelectContext(ctx, &users,
		`SELECT `+userColumns+` FROM users WHERE has_story = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing story users: %w", err)
	}
	return users, nil
}

// CreateStory inserts the story and marks the owner as having an unseen one.
func (db *DB) CreateStory(ctx context.Context, story *model.Story) error {
	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		story.CreatedAt = db.clock.Now()
		id, err := insertID(ctx, tx,
			`INSERT INTO stories (user_id, image_url, created_at) VALUES (?, ?, ?)`,
			story.UserID, story.ImageURL, story.CreatedAt)
		if err != nil {
			return err
		}
		story.ID = id
		_, err = tx.ExecContext(ctx,
			`UPDATE users SET has_story = 1, has_unseen_story = 1 WHERE id = ?`, story.UserID)
		return err
	})
	if err != nil {
		return fmt.Errorf("sqlite: creating story: %w", err)
	}
	return nil
}
