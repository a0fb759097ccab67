package service

import (
	"context"

	"github.com/noah-isme/plant-attendance-api/internal/store"
)

// dataRouter is the slice of the store router the services depend on.
// Tests substitute an in-memory fake.
type dataRouter interface {
	Read(ctx context.Context, table string) ([]store.Row, error)
	Insert(ctx context.Context, table string, row store.Row) error
	Delete(ctx context.Context, table string, pred store.Predicate) (int64, error)
	ReplaceAll(ctx context.Context, table string, rows []store.Row) error
	Online(ctx context.Context) bool
}

// nextID computes the next client-side id for the legacy replaceAll
// flows that rewrite a whole table from an in-memory snapshot.
func nextID(rows []store.Row) int {
	max := 0
	for _, row := range rows {
		if id := row.Int("id"); id > max {
			max = id
		}
	}
	return max + 1
}
