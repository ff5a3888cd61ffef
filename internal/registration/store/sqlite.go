package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"regform/internal/registration/models"
	"regform/pkg/platform/sentinel"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	gender TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	country TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
)`

// SQLite is the embedded file-backed store.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		path = "users.db"
	}
	db, err := sql.Open("sqlite3", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection serialises writers; SQLite allows a single writer anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create users table: %w", err)
	}
	return &SQLite{db: db, path: path}, nil
}

// sqliteDSN builds a file: URI for path with the connection pragmas. The path
// is escaped so '?' and '#' stay part of the file name.
func sqliteDSN(path string) string {
	u := url.URL{
		Scheme:   "file",
		OmitHost: true,
		Path:     path,
		RawQuery: "_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)",
	}
	return u.String()
}

func (s *SQLite) Insert(ctx context.Context, sub models.Submission) (models.Record, error) {
	var (
		id      int64
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (name, gender, email, country) VALUES (?, ?, ?, ?) RETURNING id, created_at`,
		sub.Name, sub.Gender, sub.Email, sub.Country,
	).Scan(&id, &created)
	if err != nil {
		if errors.Is(err, sqlite3.CONSTRAINT_UNIQUE) {
			return models.Record{}, fmt.Errorf("insert user: %w", sentinel.ErrConflict)
		}
		return models.Record{}, fmt.Errorf("insert user: %w: %w", sentinel.ErrUnavailable, err)
	}
	createdAt, err := parseTimestamp(created)
	if err != nil {
		return models.Record{}, fmt.Errorf("insert user: %w: %w", sentinel.ErrUnavailable, err)
	}
	return models.NewRecord(id, sub, createdAt), nil
}

func (s *SQLite) List(ctx context.Context) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		var (
			rec     models.Record
			created string
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Gender, &rec.Email, &rec.Country, &created); err != nil {
			return nil, fmt.Errorf("scan user: %w: %w", sentinel.ErrUnavailable, err)
		}
		if rec.CreatedAt, err = parseTimestamp(created); err != nil {
			return nil, fmt.Errorf("scan user %d: %w: %w", rec.ID, sentinel.ErrUnavailable, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w: %w", sentinel.ErrUnavailable, err)
	}
	return records, nil
}

func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w: %w", sentinel.ErrUnavailable, err)
	}
	return n, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
