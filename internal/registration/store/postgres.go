package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"regform/internal/registration/models"
	"regform/pkg/platform/sentinel"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	gender TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	country TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
)`

const pgUniqueViolation = "23505"

// PostgresStore persists records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects with dsn and creates the users table if missing.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := NewPostgres(db)
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgres wraps an existing connection pool.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the users table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, sub models.Submission) (models.Record, error) {
	var (
		id        int64
		createdAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (name, gender, email, country) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		sub.Name, sub.Gender, sub.Email, sub.Country,
	).Scan(&id, &createdAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return models.Record{}, fmt.Errorf("insert user: %w", sentinel.ErrConflict)
		}
		return models.Record{}, fmt.Errorf("insert user: %w: %w", sentinel.ErrUnavailable, err)
	}
	return models.NewRecord(id, sub, createdAt), nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		var rec models.Record
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Gender, &rec.Email, &rec.Country, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w: %w", sentinel.ErrUnavailable, err)
		}
		rec.CreatedAt = rec.CreatedAt.UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w: %w", sentinel.ErrUnavailable, err)
	}
	return records, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w: %w", sentinel.ErrUnavailable, err)
	}
	return n, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
