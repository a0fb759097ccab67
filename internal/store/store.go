package store

import "context"

// Dialect identifies the SQL flavor of a backend.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// Store is the four-operation contract both backends expose. Read returns
// rows ordered by id; it fails with a schema-mismatch error when the table
// or a declared column is missing, and with a connectivity error on
// connection-level failure. An empty table is an empty result, never an
// error. All writes fail with a storage error when the backend rejects
// them.
type Store interface {
	Read(ctx context.Context, table string) ([]Row, error)
	Insert(ctx context.Context, table string, row Row) error
	Delete(ctx context.Context, table string, pred Predicate) (int64, error)
	ReplaceAll(ctx context.Context, table string, rows []Row) error

	// MissingColumns reports which expected columns the live table lacks.
	// A table that does not exist reports every column missing.
	MissingColumns(ctx context.Context, table string) ([]string, error)

	// Initialize creates any missing tables. Existing tables keep their
	// rows; the call is safe to repeat at any point.
	Initialize(ctx context.Context) error

	Dialect() Dialect
}
