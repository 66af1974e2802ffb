// Package store persists posts and their dedup fingerprints in an embedded
// SQLite database.
package store

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"lsedump/internal/lse"
	"lsedump/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS posts (
	hash     TEXT PRIMARY KEY,
	username TEXT,
	ticker   TEXT,
	atprice  TEXT,
	opinion  TEXT,
	date     TEXT,
	title    TEXT,
	text     TEXT
)`

// Store is the append-only dedup store. One fingerprint, one row, forever;
// there are no update or delete paths.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dbPath and ensures the schema
// exists. Schema creation is idempotent.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewStorage(dbPath, "failed to open database", err)
	}
	// A single crawl process owns the file; one connection avoids writer
	// contention in the sqlite driver.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.NewStorage(dbPath, "failed to create schema", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Exists reports whether a post with the given fingerprint has been saved
func (s *Store) Exists(ctx context.Context, hash string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM posts WHERE hash = ?`, hash).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewStorage("posts", "existence check failed", err)
	}
	return true, nil
}

// Insert saves a post under its fingerprint. A duplicate fingerprint is not
// an error: the row is left untouched and inserted is false.
func (s *Store) Insert(ctx context.Context, post *lse.Post) (inserted bool, err error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO posts (hash, username, ticker, atprice, opinion, date, title, text)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		post.Fingerprint(), post.Username, post.Ticker, post.Price, post.Opinion,
		post.Date, post.Title, post.Text)
	if err != nil {
		return false, errors.NewStorage("posts", "insert failed", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.NewStorage("posts", "insert failed", err)
	}
	return n > 0, nil
}

// Count returns the number of stored posts
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return 0, errors.NewStorage("posts", "count failed", err)
	}
	return n, nil
}

// Filter narrows Select results. Zero values mean "no constraint".
type Filter struct {
	// DateFrom and DateTo bound the post date (inclusive), in the store's
	// "2006-01-02 15:04:05" format; prefix forms like "2024-01-01" work
	// because the format sorts lexicographically.
	DateFrom string
	DateTo   string
	Ticker   string
	Username string
}

// Select returns stored posts matching the filter, ordered by date
func (s *Store) Select(ctx context.Context, f Filter) ([]lse.Post, error) {
	query := `SELECT username, ticker, atprice, opinion, date, title, text FROM posts WHERE 1=1`
	var args []interface{}

	if f.DateFrom != "" {
		query += ` AND date >= ?`
		args = append(args, f.DateFrom)
	}
	if f.DateTo != "" {
		query += ` AND date <= ?`
		args = append(args, f.DateTo)
	}
	if f.Ticker != "" {
		query += ` AND ticker = ?`
		args = append(args, f.Ticker)
	}
	// Usernames keep the site's display casing; filter without it
	if f.Username != "" {
		query += ` AND username = ? COLLATE NOCASE`
		args = append(args, f.Username)
	}
	query += ` ORDER BY date`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStorage("posts", "select failed", err)
	}
	defer rows.Close()

	var posts []lse.Post
	for rows.Next() {
		var p lse.Post
		if err := rows.Scan(&p.Username, &p.Ticker, &p.Price, &p.Opinion, &p.Date, &p.Title, &p.Text); err != nil {
			return nil, errors.NewStorage("posts", "row scan failed", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorage("posts", "row iteration failed", err)
	}
	return posts, nil
}

// All returns every stored post, ordered by date
func (s *Store) All(ctx context.Context) ([]lse.Post, error) {
	return s.Select(ctx, Filter{})
}
