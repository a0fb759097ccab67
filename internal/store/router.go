package store

import (
	"context"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/plant-attendance-api/pkg/errors"
)

// Router forwards every read and write to the store the connectivity
// probe selects. Mutations on queueable entities that land on the local
// store are additionally recorded in the pending-change queue so the
// reconciliation engine can replay them remotely later. Reads are never
// queued, and replaceAll writes are never queued either: bulk rewrites
// made offline do not sync automatically and must be re-entered online.
type Router struct {
	local  *LocalStore
	remote *RemoteStore
	probe  *Probe
	seeder Seeder
	logger *zap.Logger
}

// NewRouter wires the two stores behind the probe. remote may be nil when
// no remote is configured; every call then routes locally.
func NewRouter(local *LocalStore, remote *RemoteStore, probe *Probe, seeder Seeder, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{local: local, remote: remote, probe: probe, seeder: seeder, logger: logger}
}

// Local exposes the local store for the reconciliation engine.
func (r *Router) Local() *LocalStore { return r.local }

// Remote exposes the remote store, or nil when not configured.
func (r *Router) Remote() *RemoteStore { return r.remote }

// Online reports whether calls currently route to the remote store.
func (r *Router) Online(ctx context.Context) bool {
	return r.remote != nil && r.probe.Online(ctx)
}

func (r *Router) route(ctx context.Context) (Store, bool) {
	if r.Online(ctx) {
		return r.remote, true
	}
	return r.local, false
}

// Read returns the chosen store's rows for the entity, self-healing the
// schema when the table is missing or misshapen: re-initialize, reseed,
// retry once. A read that still fails on shape after healing surfaces an
// empty result with a warning rather than an error.
func (r *Router) Read(ctx context.Context, table string) ([]Row, error) {
	st, _ := r.route(ctx)

	healed := false
	if missing, err := st.MissingColumns(ctx, table); err == nil && len(missing) > 0 {
		r.heal(ctx, st, table, missing)
		healed = true
	}

	rows, err := st.Read(ctx, table)
	if err == nil {
		return rows, nil
	}
	if !appErrors.Is(err, appErrors.ErrSchemaMismatch) {
		return nil, err
	}

	if !healed {
		r.heal(ctx, st, table, nil)
	}
	rows, err = st.Read(ctx, table)
	if err == nil {
		return rows, nil
	}
	if appErrors.Is(err, appErrors.ErrSchemaMismatch) {
		r.logger.Warn("table still misshapen after rebuild, returning empty result",
			zap.String("table", table))
		return []Row{}, nil
	}
	return nil, err
}

// Insert routes a single-row write. When it lands locally on a queueable
// entity, a pending add change with the full row snapshot is recorded so
// the mutation can be replayed remotely.
func (r *Router) Insert(ctx context.Context, table string, row Row) error {
	st, online := r.route(ctx)
	if err := st.Insert(ctx, table, row); err != nil {
		return err
	}
	if !online && queueable(table) {
		if err := r.local.EnqueueChange(ctx, table, OpAdd, snapshot(row)); err != nil {
			return err
		}
	}
	return nil
}

// Delete routes a predicate delete, queueing it for replay when offline.
// The predicate must use portable data columns, not local row ids.
func (r *Router) Delete(ctx context.Context, table string, pred Predicate) (int64, error) {
	st, online := r.route(ctx)
	affected, err := st.Delete(ctx, table, pred)
	if err != nil {
		return 0, err
	}
	if !online && queueable(table) {
		if err := r.local.EnqueueChange(ctx, table, OpDelete, Row(pred)); err != nil {
			return affected, err
		}
	}
	return affected, nil
}

// ReplaceAll routes a whole-table rewrite. Never queued.
func (r *Router) ReplaceAll(ctx context.Context, table string, rows []Row) error {
	st, _ := r.route(ctx)
	return st.ReplaceAll(ctx, table, rows)
}

// Initialize creates missing tables and seeds defaults on the local
// store, and on the remote store too when it is reachable.
func (r *Router) Initialize(ctx context.Context) error {
	if err := r.local.Initialize(ctx); err != nil {
		return err
	}
	if err := r.seeder.Seed(ctx, r.local); err != nil {
		return err
	}
	if r.Online(ctx) {
		if err := r.remote.Initialize(ctx); err != nil {
			return err
		}
		if err := r.seeder.Seed(ctx, r.remote); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) heal(ctx context.Context, st Store, table string, missing []string) {
	r.logger.Warn("rebuilding tables",
		zap.String("table", table),
		zap.Strings("missing_columns", missing))
	if err := st.Initialize(ctx); err != nil {
		r.logger.Warn("table rebuild failed", zap.String("table", table), zap.Error(err))
		return
	}
	if err := r.seeder.Seed(ctx, st); err != nil {
		r.logger.Warn("reseed failed", zap.String("table", table), zap.Error(err))
	}
}

// Only worker insert/delete participate in deferred reconciliation.
func queueable(table string) bool {
	return table == TableWorkers
}

func snapshot(row Row) Row {
	copied := make(Row, len(row))
	for k, v := range row {
		if k == "id" {
			continue
		}
		copied[k] = v
	}
	return copied
}
