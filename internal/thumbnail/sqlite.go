package thumbnail

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteBusyTimeoutMS = 5000

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS thumbnails (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    filename TEXT NOT NULL UNIQUE,
    image_data BLOB
);`

// SQLiteStore is a CGO-free single-node Store for local and dev deployments.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the sqlite database at path and bootstraps
// the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("db path is required")
	}
	u := url.URL{Scheme: "file", Path: path}
	db, err := sql.Open("sqlite", u.String())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
		fmt.Sprintf("PRAGMA busy_timeout = %d;", sqliteBusyTimeoutMS),
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("configure sqlite: %w", err)
		}
	}

	// Single writer; sqlite serializes anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Insert creates a new thumbnail record and returns it.
func (s *SQLiteStore) Insert(ctx context.Context, filename string) (*Thumbnail, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO thumbnails (filename) VALUES (?)`,
		filename,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return nil, ErrDuplicateFilename
		}
		return nil, fmt.Errorf("insert thumbnail: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert thumbnail id: %w", err)
	}
	return &Thumbnail{ID: id, Filename: filename}, nil
}

// List returns all thumbnail records.
func (s *SQLiteStore) List(ctx context.Context) ([]Thumbnail, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename FROM thumbnails ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list thumbnails: %w", err)
	}
	defer rows.Close()

	var out []Thumbnail
	for rows.Next() {
		var t Thumbnail
		if err := rows.Scan(&t.ID, &t.Filename); err != nil {
			return nil, fmt.Errorf("scan thumbnail: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list thumbnails: %w", err)
	}
	return out, nil
}

// Get fetches a thumbnail by id.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*Thumbnail, error) {
	t := &Thumbnail{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, filename FROM thumbnails WHERE id = ?`,
		id,
	).Scan(&t.ID, &t.Filename)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get thumbnail: %w", err)
	}
	return t, nil
}

// Delete removes a thumbnail record and reports whether one existed.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM thumbnails WHERE id = ?`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("delete thumbnail: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete thumbnail: %w", err)
	}
	return n > 0, nil
}

// isSQLiteUniqueViolation matches modernc's UNIQUE constraint error text;
// the driver does not expose a typed error code.
func isSQLiteUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
