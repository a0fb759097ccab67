package store

import (
	"github.com/jmoiron/sqlx"
)

// RemoteStore is the primary PostgreSQL store, authoritative whenever the
// probe reports it reachable.
type RemoteStore struct {
	*sqlStore
}

// NewRemoteStore wraps a PostgreSQL handle in the store contract. A nil
// handle means no remote is configured; callers must treat that as
// permanently unreachable rather than constructing a RemoteStore.
func NewRemoteStore(db *sqlx.DB) *RemoteStore {
	return &RemoteStore{sqlStore: newSQLStore(db, DialectPostgres)}
}
