package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	appErrors "github.com/noah-isme/plant-attendance-api/pkg/errors"
)

// Change operations recorded in the pending-change queue.
const (
	OpAdd    = "add"
	OpDelete = "delete"
)

// PendingChange is one mutation staged while the remote store was
// unreachable. The payload is a row snapshot for adds and a predicate for
// deletes. Entries live only in the local store and are deleted once the
// reconciliation engine replays them remotely.
type PendingChange struct {
	ID        int64
	Entity    string
	Op        string
	Payload   Row
	CreatedAt time.Time
}

// LocalStore is the durable on-disk SQLite store. It is always available,
// holds live data while offline, and owns the pending-change queue.
type LocalStore struct {
	*sqlStore
}

// NewLocalStore wraps a SQLite handle in the store contract plus the
// queue operations.
func NewLocalStore(db *sqlx.DB) *LocalStore {
	return &LocalStore{sqlStore: newSQLStore(db, DialectSQLite, pendingChangesTable)}
}

// EnqueueChange appends a mutation record for later remote replay.
func (s *LocalStore) EnqueueChange(ctx context.Context, entity, op string, payload Row) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status,
			"encode pending change payload")
	}

	query := `INSERT INTO pending_changes (entity, op, payload, created_at) VALUES (?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, s.db.Rebind(query),
		entity, op, string(encoded), time.Now().UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status,
			"enqueue pending change")
	}
	return nil
}

// PendingChanges returns the queue in enqueue order.
func (s *LocalStore) PendingChanges(ctx context.Context) ([]PendingChange, error) {
	rows, err := s.Read(ctx, TablePendingChanges)
	if err != nil {
		return nil, err
	}

	changes := make([]PendingChange, 0, len(rows))
	for _, row := range rows {
		var payload Row
		if raw := row.String("payload"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &payload); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status,
					fmt.Sprintf("decode pending change %d", row.Int("id")))
			}
		}
		changes = append(changes, PendingChange{
			ID:        int64(row.Int("id")),
			Entity:    row.String("entity"),
			Op:        row.String("op"),
			Payload:   payload,
			CreatedAt: row.Time("created_at"),
		})
	}
	return changes, nil
}

// RemoveChanges deletes successfully replayed entries from the queue.
func (s *LocalStore) RemoveChanges(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In("DELETE FROM pending_changes WHERE id IN (?)", ids)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status,
			"build queue removal")
	}
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status,
			"remove replayed changes")
	}
	return nil
}

// PendingCount reports the queue length for status displays.
func (s *LocalStore) PendingCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM pending_changes"); err != nil {
		return 0, s.readError(TablePendingChanges, err)
	}
	return count, nil
}
