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
	"github.com/sakif/photofeed/internal/repository"
)

var (
	_ repository.Store  = (*DB)(nil)
	_ repository.Loader = (*DB)(nil)
)

const userColumns = `id, username, password, profile_image_url, has_story, has_unseen_story,
	follower_count, following_count, post_count, bio, display_name`

// GetUser retrieves a user by id.
// Returns apperror.ErrNotFound if no user exists with that id.
func (db *DB) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := db.conn.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}
	return &u, nil
}

func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := db.conn.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %q: %w", username, err)
	}
	return &u, nil
}

// CreateUser inserts a user and fills in user.ID.
//
// The username check runs inside the same transaction as the insert so a
// taken name comes back as apperror.ErrConflict instead of a raw UNIQUE
// constraint error.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		var taken int
		if err := tx.GetContext(ctx, &taken,
			`SELECT COUNT(*) FROM users WHERE username = ?`, user.Username); err != nil {
			return fmt.Errorf("checking username: %w", err)
		}
		if taken > 0 {
			return apperror.Conflict("user", user.Username)
		}

		id, err := insertID(ctx, tx,
			`INSERT INTO users (username, password, profile_image_url, has_story, has_unseen_story,
				follower_count, following_count, post_count, bio, display_name)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			user.Username,
			user.Password,
			user.ProfileImageURL,
			user.HasStory,
			user.HasUnseenStory,
			user.FollowerCount,
			user.FollowingCount,
			user.PostCount,
			user.Bio,
			user.DisplayName,
		)
		if err != nil {
			return fmt.Errorf("inserting user: %w", err)
		}
		user.ID = id
		return nil
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return fmt.Errorf("sqlite: creating user %q: %w", user.Username, err)
	}
	return nil
}

// LoadUser is CreateUser: users carry no counters maintained by other rows.
func (db *DB) LoadUser(ctx context.Context, user *model.User) error {
	return db.CreateUser(ctx, user)
}
