package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	appErrors "github.com/noah-isme/plant-attendance-api/pkg/errors"
)

// sqlStore implements Store over an sqlx handle. The same implementation
// serves both backends; only the dialect-specific pieces (DDL, catalog
// introspection, value encoding) branch.
type sqlStore struct {
	db      *sqlx.DB
	dialect Dialect
	extra   []Table
}

func newSQLStore(db *sqlx.DB, dialect Dialect, extra ...Table) *sqlStore {
	return &sqlStore{db: db, dialect: dialect, extra: extra}
}

func (s *sqlStore) Dialect() Dialect { return s.dialect }

// Read returns every row of the table ordered by id, normalized to
// canonical value shapes.
func (s *sqlStore) Read(ctx context.Context, table string) ([]Row, error) {
	t, ok := s.tableFor(table)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrStorage, fmt.Sprintf("unknown entity %q", table))
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", strings.Join(t.ColumnNames(), ", "), t.Name)
	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, s.readError(table, err)
	}
	defer rows.Close()

	var result []Row
	for rows.Next() {
		raw := map[string]interface{}{}
		if err := rows.MapScan(raw); err != nil {
			return nil, s.readError(table, err)
		}
		result = append(result, normalizeRow(t, raw))
	}
	if err := rows.Err(); err != nil {
		return nil, s.readError(table, err)
	}

	return result, nil
}

// Insert appends one row. The id column is included only when the caller
// supplies it, so both backends can assign their own serial otherwise.
func (s *sqlStore) Insert(ctx context.Context, table string, row Row) error {
	t, ok := s.tableFor(table)
	if !ok {
		return appErrors.Clone(appErrors.ErrStorage, fmt.Sprintf("unknown entity %q", table))
	}

	cols, args := s.insertArgs(t, row)
	query := s.db.Rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.Name, strings.Join(cols, ", "), placeholders(len(cols))))

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status,
			fmt.Sprintf("insert into %s failed", table))
	}
	return nil
}

// Delete removes rows matching the predicate and reports how many went.
func (s *sqlStore) Delete(ctx context.Context, table string, pred Predicate) (int64, error) {
	t, ok := s.tableFor(table)
	if !ok {
		return 0, appErrors.Clone(appErrors.ErrStorage, fmt.Sprintf("unknown entity %q", table))
	}
	if len(pred) == 0 {
		return 0, appErrors.Clone(appErrors.ErrStorage, "refusing delete without predicate")
	}

	where := make([]string, 0, len(pred))
	args := make([]interface{}, 0, len(pred))
	for _, col := range t.ColumnNames() {
		v, ok := pred[col]
		if !ok {
			continue
		}
		kind, _ := t.kindOf(col)
		where = append(where, fmt.Sprintf("%s = ?", col))
		args = append(args, s.encode(kind, v))
	}
	if len(where) != len(pred) {
		return 0, appErrors.Clone(appErrors.ErrStorage, fmt.Sprintf("predicate references unknown columns of %s", table))
	}

	query := s.db.Rebind(fmt.Sprintf("DELETE FROM %s WHERE %s", t.Name, strings.Join(where, " AND ")))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status,
			fmt.Sprintf("delete from %s failed", table))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}

// ReplaceAll atomically swaps the table contents for the given rows.
// On failure the transaction rolls back and the old contents remain.
func (s *sqlStore) ReplaceAll(ctx context.Context, table string, rows []Row) error {
	t, ok := s.tableFor(table)
	if !ok {
		return appErrors.Clone(appErrors.ErrStorage, fmt.Sprintf("unknown entity %q", table))
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status,
			fmt.Sprintf("begin replace of %s", table))
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", t.Name)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status,
			fmt.Sprintf("clear %s", table))
	}

	for _, row := range rows {
		cols, args := s.insertArgs(t, row)
		query := tx.Rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			t.Name, strings.Join(cols, ", "), placeholders(len(cols))))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status,
				fmt.Sprintf("replace %s failed", table))
		}
	}

	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status,
			fmt.Sprintf("commit replace of %s", table))
	}
	committed = true
	return nil
}

// MissingColumns compares the live table against the expected column set.
func (s *sqlStore) MissingColumns(ctx context.Context, table string) ([]string, error) {
	t, ok := s.tableFor(table)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrStorage, fmt.Sprintf("unknown entity %q", table))
	}

	existing, err := s.liveColumns(ctx, t.Name)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, col := range t.ColumnNames() {
		if _, ok := existing[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing, nil
}

// Initialize creates any missing tables for this dialect. Tables that
// already have the correct shape keep their rows.
func (s *sqlStore) Initialize(ctx context.Context) error {
	all := append(Tables(), s.extra...)
	for _, t := range all {
		ddl := t.createPG
		if s.dialect == DialectSQLite {
			ddl = t.createSQL
		}
		if ddl == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status,
				fmt.Sprintf("create table %s", t.Name))
		}
	}
	return nil
}

func (s *sqlStore) tableFor(name string) (Table, bool) {
	if t, ok := TableFor(name); ok {
		return t, true
	}
	for _, t := range s.extra {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

func (s *sqlStore) insertArgs(t Table, row Row) ([]string, []interface{}) {
	var cols []string
	var args []interface{}
	for _, c := range t.Columns {
		v, present := row[c.Name]
		if c.Name == "id" && (!present || v == nil) {
			continue
		}
		if !present {
			continue
		}
		cols = append(cols, c.Name)
		args = append(args, s.encode(c.Kind, v))
	}
	return cols, args
}

// encode renders a value in the form the backend expects for the column
// kind, papering over the local backend's weaker type system.
func (s *sqlStore) encode(kind ColumnKind, v interface{}) interface{} {
	if v == nil {
		return nil
	}
	switch kind {
	case KindBool:
		b := truthy(v)
		if s.dialect == DialectSQLite {
			if b {
				return 1
			}
			return 0
		}
		return b
	case KindDate:
		return DateKey(v)
	case KindTime:
		switch t := v.(type) {
		case time.Time:
			return t.UTC().Format("2006-01-02 15:04:05")
		default:
			return Row{"v": v}.String("v")
		}
	case KindInt:
		return Row{"v": v}.Int("v")
	default:
		return Row{"v": v}.String("v")
	}
}

func (s *sqlStore) liveColumns(ctx context.Context, table string) (map[string]struct{}, error) {
	existing := map[string]struct{}{}

	if s.dialect == DialectSQLite {
		rows, err := s.db.QueryxContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
		if err != nil {
			return nil, s.readError(table, err)
		}
		defer rows.Close()
		for rows.Next() {
			info := map[string]interface{}{}
			if err := rows.MapScan(info); err != nil {
				return nil, s.readError(table, err)
			}
			existing[Row(info).String("name")] = struct{}{}
		}
		return existing, rows.Err()
	}

	var names []string
	err := s.db.SelectContext(ctx, &names,
		"SELECT column_name FROM information_schema.columns WHERE table_name = $1", table)
	if err != nil {
		return nil, s.readError(table, err)
	}
	for _, n := range names {
		existing[n] = struct{}{}
	}
	return existing, nil
}

// readError classifies a read failure: missing tables or columns are
// schema mismatches the router can heal, everything else is treated as a
// connection-level failure.
func (s *sqlStore) readError(table string, err error) error {
	if isSchemaError(err) {
		return appErrors.Wrap(err, appErrors.ErrSchemaMismatch.Code, appErrors.ErrSchemaMismatch.Status,
			fmt.Sprintf("table %s has unexpected shape", table))
	}
	return appErrors.Wrap(err, appErrors.ErrConnectivity.Code, appErrors.ErrConnectivity.Status,
		fmt.Sprintf("read %s failed", table))
}

func isSchemaError(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		// undefined_table / undefined_column
		return pqErr.Code == "42P01" || pqErr.Code == "42703"
	}
	msg := err.Error()
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "no such column")
}

func normalizeRow(t Table, raw map[string]interface{}) Row {
	row := make(Row, len(raw))
	for k, v := range raw {
		row[k] = v
	}
	for _, c := range t.Columns {
		switch c.Kind {
		case KindBool:
			row[c.Name] = truthy(row[c.Name])
		case KindInt:
			row[c.Name] = row.Int(c.Name)
		case KindDate:
			row[c.Name] = row.Date(c.Name)
		case KindTime:
			row[c.Name] = row.Time(c.Name)
		case KindText:
			row[c.Name] = row.String(c.Name)
		}
	}
	return row
}

func placeholders(n int) string {
	marks := make([]string, n)
	for i := range marks {
		marks[i] = "?"
	}
	return strings.Join(marks, ", ")
}
