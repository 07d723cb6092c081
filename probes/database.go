package probes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/jonwraymond/healthops/health"
)

// DefaultQuery is the trivial query run by Database.
const DefaultQuery = "SELECT 1"

// ErrNilDB indicates a Database probe was built without a handle.
var ErrNilDB = errors.New("probes: database handle is nil")

// Database checks a SQL database by running a trivial query.
type Database struct {
	base
	db    *sql.DB
	query string
}

// NewDatabase creates a probe on an open handle.
func NewDatabase(name string, db *sql.DB, opts Options) *Database {
	return &Database{base: newBase(name, opts), db: db, query: DefaultQuery}
}

// WithQuery replaces DefaultQuery. The query must return at least one row.
func (d *Database) WithQuery(query string) *Database {
	d.query = query
	return d
}

// Check runs the query and scans its first column.
func (d *Database) Check(ctx context.Context) health.Outcome {
	if d.db == nil {
		return health.Unhealthy("database not configured", ErrNilDB)
	}
	return d.roundTrip(ctx, "database", func(ctx context.Context) error {
		var v any
		if err := d.db.QueryRowContext(ctx, d.query).Scan(&v); err != nil {
			return fmt.Errorf("query %q: %w", d.query, err)
		}
		return nil
	})
}

// OpenPostgres opens a pooled PostgreSQL handle without connecting.
// The probe reports the connection state on every check instead.
func OpenPostgres(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("probes: postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	return db, nil
}

var _ health.Probe = (*Database)(nil)
