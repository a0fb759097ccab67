package database

import (
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/noah-isme/plant-attendance-api/pkg/config"
)

// NewSQLite opens the durable local fallback store. WAL mode gives
// non-blocking readers with a single writer, which matches the low
// concurrency this deployment model assumes.
func NewSQLite(cfg config.LocalStoreConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}

	// The modernc driver serialises access per connection; a single
	// connection avoids SQLITE_BUSY between the router and the engine.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=OFF",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
