// Package sqlite implements repository.Store on SQLite, for deployments that
// want the feed to survive a restart.
//
// The driver is modernc.org/sqlite (pure Go, no CGo); queries go through sqlx
// so rows scan straight into the model structs via their `db` tags.
//
// Behaviour matches repository/memory exactly, including the soft-fail
// counter updates: posts, comments, likes and stories reference users and
// posts by plain integer columns with no FOREIGN KEY clauses, so inserting a
// row that points at a missing parent succeeds and the counter UPDATE simply
// matches zero rows.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sakif/photofeed/internal/clock"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps the sqlx handle and implements repository.Store.
type DB struct {
	conn  *sqlx.DB
	clock clock.Clock
}

// New opens (or creates) the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/photofeed.db" → file-based database
//   - ":memory:"          → in-memory database, used by tests
//
// The pool is capped at one connection. That serializes writers, which the
// toggle and counter updates rely on, and keeps ":memory:" pointing at a
// single database instead of one per pooled connection.
func New(dbPath string, c clock.Clock) (*DB, error) {
	if c == nil {
		c = clock.NewReal()
	}

	conn, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn, clock: c}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE ... IF NOT EXISTS makes it safe to run
// on every start.
//
// AUTOINCREMENT guarantees ids are never reused, even for the like and
// saved-post rows that get deleted.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			username          TEXT NOT NULL UNIQUE,
			password          TEXT NOT NULL,
			profile_image_url TEXT NOT NULL DEFAULT '',
			has_story         BOOLEAN NOT NULL DEFAULT 0,
			has_unseen_story  BOOLEAN NOT NULL DEFAULT 0,
			follower_count    INTEGER NOT NULL DEFAULT 0,
			following_count   INTEGER NOT NULL DEFAULT 0,
			post_count        INTEGER NOT NULL DEFAULT 0,
			bio               TEXT,
			display_name      TEXT
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id       INTEGER NOT NULL,
			image_url     TEXT NOT NULL,
			caption       TEXT NOT NULL DEFAULT '',
			like_count    INTEGER NOT NULL DEFAULT 0,
			comment_count INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id);
		CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating posts table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			post_id    INTEGER NOT NULL,
			user_id    INTEGER NOT NULL,
			text       TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id);
	`)
	if err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	// UNIQUE(post_id, user_id) is the composite key the like/save toggles
	// check against with INSERT OR IGNORE.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS likes (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			post_id    INTEGER NOT NULL,
			user_id    INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			UNIQUE (post_id, user_id)
		);
		CREATE TABLE IF NOT EXISTS saved_posts (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			post_id    INTEGER NOT NULL,
			user_id    INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			UNIQUE (post_id, user_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating engagement tables: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS stories (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL,
			image_url  TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating stories table: %w", err)
	}

	return nil
}

// withTx runs fn inside a transaction, committing on success.
//
// With a single pooled connection, fn must only use tx; touching db.conn
// inside fn would wait forever for the connection the transaction holds.
func (db *DB) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rolling back: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// insertID executes an INSERT and returns the new row id.
func insertID(ctx context.Context, ex sqlx.ExecerContext, query string, args ...any) (int64, error) {
	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
