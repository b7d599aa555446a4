package thumbnail

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the PostgreSQL-backed Store.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Insert creates a new thumbnail record and returns it.
func (r *Repository) Insert(ctx context.Context, filename string) (*Thumbnail, error) {
	t := &Thumbnail{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO thumbnails (filename)
		 VALUES ($1)
		 RETURNING id, filename`,
		filename,
	).Scan(&t.ID, &t.Filename)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateFilename
		}
		return nil, fmt.Errorf("insert thumbnail: %w", err)
	}
	return t, nil
}

// List returns all thumbnail records.
func (r *Repository) List(ctx context.Context) ([]Thumbnail, error) {
	rows, err := r.db.Query(ctx,
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
func (r *Repository) Get(ctx context.Context, id int64) (*Thumbnail, error) {
	t := &Thumbnail{}
	err := r.db.QueryRow(ctx,
		`SELECT id, filename FROM thumbnails WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.Filename)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get thumbnail: %w", err)
	}
	return t, nil
}

// Delete removes a thumbnail record and reports whether one existed.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM thumbnails WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("delete thumbnail: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// isUniqueViolation checks whether an error is a PostgreSQL unique_violation (code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
