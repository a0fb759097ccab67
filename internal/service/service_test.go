package service

import (
	"context"

	"github.com/noah-isme/plant-attendance-api/internal/store"
)

// fakeRouter is an in-memory dataRouter for service tests.
type fakeRouter struct {
	tables  map[string][]store.Row
	nextIDs map[string]int
	online  bool

	readErr   error
	insertErr error

	deletes []deleteCall
}

type deleteCall struct {
	table string
	pred  store.Predicate
}

func newFakeRouter() *fakeRouter {
	return &fakeRouter{tables: map[string][]store.Row{}, nextIDs: map[string]int{}}
}

func (f *fakeRouter) Read(_ context.Context, table string) ([]store.Row, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.tables[table], nil
}

func (f *fakeRouter) Insert(_ context.Context, table string, row store.Row) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	copied := store.Row{}
	for k, v := range row {
		copied[k] = v
	}
	// Stores hold calendar dates in canonical YYYY-MM-DD form.
	if t, ok := store.TableFor(table); ok {
		for _, col := range t.Columns {
			if col.Kind == store.KindDate {
				if v, present := copied[col.Name]; present {
					copied[col.Name] = store.DateKey(v)
				}
			}
		}
	}
	if _, ok := copied["id"]; !ok {
		f.nextIDs[table]++
		copied["id"] = f.nextIDs[table]
	}
	f.tables[table] = append(f.tables[table], copied)
	return nil
}

func (f *fakeRouter) Delete(_ context.Context, table string, pred store.Predicate) (int64, error) {
	f.deletes = append(f.deletes, deleteCall{table: table, pred: pred})

	var kept []store.Row
	var removed int64
	for _, row := range f.tables[table] {
		match := true
		for col, want := range pred {
			if row.String(col) != (store.Row{"v": want}).String("v") {
				match = false
				break
			}
		}
		if match {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	f.tables[table] = kept
	return removed, nil
}

func (f *fakeRouter) ReplaceAll(_ context.Context, table string, rows []store.Row) error {
	f.tables[table] = rows
	return nil
}

func (f *fakeRouter) Online(context.Context) bool { return f.online }

func (f *fakeRouter) seedWorker(id int, name, section, department, shift string, active bool) {
	f.tables[store.TableWorkers] = append(f.tables[store.TableWorkers], store.Row{
		"id": id, "name": name, "section": section, "department": department,
		"shift": shift, "active": active,
	})
	if id > f.nextIDs[store.TableWorkers] {
		f.nextIDs[store.TableWorkers] = id
	}
}
