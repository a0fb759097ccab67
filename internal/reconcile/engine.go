package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/plant-attendance-api/internal/store"
	appErrors "github.com/noah-isme/plant-attendance-api/pkg/errors"
)

// Engine merges locally-staged data into the remote store once
// connectivity returns. It runs three phases in order: the worker merge,
// the attendance merge, then the queued-change drain. The merges run
// first so a worker added offline exists remotely before queued deletes
// referencing it replay. Replay is at-least-once: a failed entry stays
// queued for the next pass, and every replayed insert is guarded by a
// natural-key existence check so retries stay idempotent.
type Engine struct {
	local  *store.LocalStore
	remote store.Store
	logger *zap.Logger
}

// Result reports what one reconciliation pass accomplished.
type Result struct {
	Workers    int `json:"workers"`
	Attendance int `json:"attendance"`
	Updated    int `json:"updated"`
	Replayed   int `json:"replayed"`
	Failed     int `json:"failed"`
}

// New constructs an engine over the two stores.
func New(local *store.LocalStore, remote store.Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{local: local, remote: remote, logger: logger}
}

// workerKey is the natural key detecting "the same worker" across stores.
type workerKey struct {
	name, section, department, shift string
}

func workerKeyOf(row store.Row) workerKey {
	return workerKey{
		name:       row.String("name"),
		section:    row.String("section"),
		department: row.String("department"),
		shift:      row.String("shift"),
	}
}

// attendanceKey is the natural key for attendance rows: one worker, one
// calendar date, time of day stripped.
type attendanceKey struct {
	workerName, date string
}

func attendanceKeyOf(row store.Row) attendanceKey {
	return attendanceKey{
		workerName: row.String("worker_name"),
		date:       store.DateKey(row["date"]),
	}
}

// Run performs one reconciliation pass. When some queued changes fail to
// replay, the partial result is returned together with a
// SYNC_PARTIAL_FAILURE error; the failed entries remain queued.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	var res Result

	remoteWorkers, err := e.mergeWorkers(ctx, &res)
	if err != nil {
		return res, err
	}

	if err := e.mergeAttendance(ctx, &res); err != nil {
		return res, err
	}

	if err := e.drainQueue(ctx, remoteWorkers, &res); err != nil {
		return res, err
	}

	if res.Failed > 0 {
		return res, appErrors.Clone(appErrors.ErrSyncPartial,
			fmt.Sprintf("%d queued change(s) failed to replay and remain queued", res.Failed))
	}
	return res, nil
}

// mergeWorkers inserts workers that exist only locally. Additions only:
// rows already present remotely are never updated or deleted. The
// returned key set reflects the remote table after the merge and guards
// the queue drain's replayed inserts.
func (e *Engine) mergeWorkers(ctx context.Context, res *Result) (map[workerKey]struct{}, error) {
	localRows, err := e.local.Read(ctx, store.TableWorkers)
	if err != nil {
		return nil, err
	}
	remoteRows, err := e.remote.Read(ctx, store.TableWorkers)
	if err != nil {
		return nil, err
	}

	known := make(map[workerKey]struct{}, len(remoteRows))
	for _, row := range remoteRows {
		known[workerKeyOf(row)] = struct{}{}
	}

	for _, row := range localRows {
		key := workerKeyOf(row)
		if _, exists := known[key]; exists {
			continue
		}
		err := e.remote.Insert(ctx, store.TableWorkers, store.Row{
			"name":       key.name,
			"section":    key.section,
			"department": key.department,
			"shift":      key.shift,
			"active":     row.Bool("active"),
		})
		if err != nil {
			return nil, err
		}
		known[key] = struct{}{}
		res.Workers++
	}

	return known, nil
}

// mergeAttendance inserts attendance rows whose (worker, date) pair is
// unknown remotely, and applies last-writer-wins to pairs both sides
// hold: when the local row was recorded later and carries a different
// status, the remote row is replaced.
func (e *Engine) mergeAttendance(ctx context.Context, res *Result) error {
	localRows, err := e.local.Read(ctx, store.TableAttendance)
	if err != nil {
		return err
	}
	remoteRows, err := e.remote.Read(ctx, store.TableAttendance)
	if err != nil {
		return err
	}

	known := make(map[attendanceKey]store.Row, len(remoteRows))
	for _, row := range remoteRows {
		known[attendanceKeyOf(row)] = row
	}

	for _, row := range localRows {
		key := attendanceKeyOf(row)
		remote, exists := known[key]
		if !exists {
			if err := e.remote.Insert(ctx, store.TableAttendance, attendanceSnapshot(row)); err != nil {
				return err
			}
			known[key] = row
			res.Attendance++
			continue
		}

		if row.String("status") == remote.String("status") {
			continue
		}
		if !row.Time("recorded_at").After(remote.Time("recorded_at")) {
			continue
		}
		pred := store.Predicate{"worker_name": key.workerName, "date": key.date}
		if _, err := e.remote.Delete(ctx, store.TableAttendance, pred); err != nil {
			return err
		}
		if err := e.remote.Insert(ctx, store.TableAttendance, attendanceSnapshot(row)); err != nil {
			return err
		}
		known[key] = row
		res.Updated++
	}

	return nil
}

// drainQueue replays every pending change against the remote store.
// Successful replays leave the queue; failures stay for the next pass.
func (e *Engine) drainQueue(ctx context.Context, knownWorkers map[workerKey]struct{}, res *Result) error {
	changes, err := e.local.PendingChanges(ctx)
	if err != nil {
		return err
	}

	var replayed []int64
	for _, change := range changes {
		if change.Entity != store.TableWorkers {
			e.logger.Warn("skipping queued change for unsupported entity",
				zap.Int64("change_id", change.ID), zap.String("entity", change.Entity))
			res.Failed++
			continue
		}

		var replayErr error
		switch change.Op {
		case store.OpAdd:
			key := workerKeyOf(change.Payload)
			if _, exists := knownWorkers[key]; exists {
				break // guarded insert: already present remotely
			}
			replayErr = e.remote.Insert(ctx, store.TableWorkers, store.Row{
				"name":       key.name,
				"section":    key.section,
				"department": key.department,
				"shift":      key.shift,
				"active":     change.Payload.Bool("active"),
			})
			if replayErr == nil {
				knownWorkers[key] = struct{}{}
			}
		case store.OpDelete:
			_, replayErr = e.remote.Delete(ctx, store.TableWorkers, store.Predicate(change.Payload))
		default:
			e.logger.Warn("skipping queued change with unknown op",
				zap.Int64("change_id", change.ID), zap.String("op", change.Op))
			res.Failed++
			continue
		}

		if replayErr != nil {
			e.logger.Warn("queued change replay failed, leaving entry queued",
				zap.Int64("change_id", change.ID), zap.Error(replayErr))
			res.Failed++
			continue
		}
		replayed = append(replayed, change.ID)
		res.Replayed++
	}

	if err := e.local.RemoveChanges(ctx, replayed); err != nil {
		return err
	}
	return nil
}

func attendanceSnapshot(row store.Row) store.Row {
	out := store.Row{
		"worker_name": row.String("worker_name"),
		"date":        store.DateKey(row["date"]),
		"section":     row.String("section"),
		"department":  row.String("department"),
		"shift":       row.String("shift"),
		"status":      row.String("status"),
		"recorded_at": row.Time("recorded_at"),
	}
	if id := row.Int("worker_id"); id > 0 {
		out["worker_id"] = id
	}
	return out
}
