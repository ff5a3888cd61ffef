// Package store persists registration records. Every backend enforces email
// uniqueness with a constraint in the engine itself, assigns id and created_at
// on insert, and reports failures as sentinel errors:
// sentinel.ErrConflict for a duplicate email, sentinel.ErrUnavailable for
// everything else.
package store

import (
	"context"
	"fmt"
	"time"

	"regform/internal/registration/models"
)

// Drivers accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Backend is the handle returned by Open.
type Backend interface {
	Insert(ctx context.Context, sub models.Submission) (models.Record, error)
	List(ctx context.Context) ([]models.Record, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Config selects and locates a backend.
type Config struct {
	Driver string
	// Path is the SQLite database file.
	Path string
	// DSN is the Postgres connection string.
	DSN string
}

// Open constructs the configured backend and makes sure its table exists.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		return OpenSQLite(ctx, cfg.Path)
	case DriverPostgres:
		return OpenPostgres(ctx, cfg.DSN)
	case DriverMemory:
		return NewInMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

const selectColumns = `id, name, gender, email, country, created_at`

// timestampLayouts covers rows written by this package and by the original
// CURRENT_TIMESTAMP default.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}
