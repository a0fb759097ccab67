package store

// Entity table names shared by both backends.
const (
	TableShifts         = "shifts"
	TableSections       = "sections"
	TableDepartments    = "departments"
	TableUsers          = "users"
	TableWorkers        = "workers"
	TableAttendance     = "attendance"
	TablePendingChanges = "pending_changes"
)

// ColumnKind drives read normalization between the remote store's native
// types and the local store's weaker ones (booleans as 0/1, dates as text).
type ColumnKind int

const (
	KindInt ColumnKind = iota
	KindText
	KindBool
	KindDate
	KindTime
)

// Column describes one entity column.
type Column struct {
	Name string
	Kind ColumnKind
}

// Table describes an entity: its columns and per-dialect DDL.
type Table struct {
	Name      string
	Columns   []Column
	createPG  string
	createSQL string
}

// ColumnNames returns the expected column set in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

func (t Table) kindOf(col string) (ColumnKind, bool) {
	for _, c := range t.Columns {
		if c.Name == col {
			return c.Kind, true
		}
	}
	return KindText, false
}

var tables = map[string]Table{
	TableShifts: {
		Name: TableShifts,
		Columns: []Column{
			{"id", KindInt}, {"name", KindText},
		},
		createPG: `CREATE TABLE IF NOT EXISTS shifts (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL
		)`,
		createSQL: `CREATE TABLE IF NOT EXISTS shifts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL
		)`,
	},
	TableSections: {
		Name: TableSections,
		Columns: []Column{
			{"id", KindInt}, {"name", KindText}, {"description", KindText},
		},
		createPG: `CREATE TABLE IF NOT EXISTS sections (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description VARCHAR(500)
		)`,
		createSQL: `CREATE TABLE IF NOT EXISTS sections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT
		)`,
	},
	TableDepartments: {
		Name: TableDepartments,
		Columns: []Column{
			{"id", KindInt}, {"name", KindText}, {"section_id", KindInt}, {"description", KindText},
		},
		createPG: `CREATE TABLE IF NOT EXISTS departments (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			section_id INTEGER,
			description VARCHAR(500)
		)`,
		createSQL: `CREATE TABLE IF NOT EXISTS departments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			section_id INTEGER,
			description TEXT
		)`,
	},
	TableUsers: {
		Name: TableUsers,
		Columns: []Column{
			{"id", KindInt}, {"name", KindText}, {"username", KindText},
			{"password_hash", KindText}, {"role", KindText}, {"active", KindBool},
			{"assigned_section", KindText}, {"assigned_shift", KindText},
		},
		createPG: `CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			username VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL,
			active BOOLEAN DEFAULT TRUE,
			assigned_section VARCHAR(255),
			assigned_shift VARCHAR(255)
		)`,
		createSQL: `CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL,
			active INTEGER DEFAULT 1,
			assigned_section TEXT,
			assigned_shift TEXT
		)`,
	},
	TableWorkers: {
		Name: TableWorkers,
		Columns: []Column{
			{"id", KindInt}, {"name", KindText}, {"section", KindText},
			{"department", KindText}, {"shift", KindText}, {"active", KindBool},
		},
		createPG: `CREATE TABLE IF NOT EXISTS workers (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			section VARCHAR(255),
			department VARCHAR(255),
			shift VARCHAR(255),
			active BOOLEAN DEFAULT TRUE
		)`,
		createSQL: `CREATE TABLE IF NOT EXISTS workers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			section TEXT,
			department TEXT,
			shift TEXT,
			active INTEGER DEFAULT 1
		)`,
	},
	TableAttendance: {
		Name: TableAttendance,
		Columns: []Column{
			{"id", KindInt}, {"worker_id", KindInt}, {"worker_name", KindText},
			{"date", KindDate}, {"section", KindText}, {"department", KindText},
			{"shift", KindText}, {"status", KindText}, {"recorded_at", KindTime},
		},
		createPG: `CREATE TABLE IF NOT EXISTS attendance (
			id SERIAL PRIMARY KEY,
			worker_id INTEGER,
			worker_name VARCHAR(255) NOT NULL,
			date DATE NOT NULL,
			section VARCHAR(255),
			department VARCHAR(255),
			shift VARCHAR(255),
			status VARCHAR(50) NOT NULL,
			recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		createSQL: `CREATE TABLE IF NOT EXISTS attendance (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			worker_id INTEGER,
			worker_name TEXT NOT NULL,
			date TEXT NOT NULL,
			section TEXT,
			department TEXT,
			shift TEXT,
			status TEXT NOT NULL,
			recorded_at TEXT DEFAULT (datetime('now'))
		)`,
	},
}

// pendingChangesTable exists only in the local store.
var pendingChangesTable = Table{
	Name: TablePendingChanges,
	Columns: []Column{
		{"id", KindInt}, {"entity", KindText}, {"op", KindText},
		{"payload", KindText}, {"created_at", KindTime},
	},
	createSQL: `CREATE TABLE IF NOT EXISTS pending_changes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entity TEXT NOT NULL,
		op TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at TEXT DEFAULT (datetime('now'))
	)`,
}

// Tables lists the shared entity tables in creation order.
func Tables() []Table {
	return []Table{
		tables[TableShifts],
		tables[TableSections],
		tables[TableDepartments],
		tables[TableUsers],
		tables[TableWorkers],
		tables[TableAttendance],
	}
}

// TableFor returns the schema entry for an entity name.
func TableFor(name string) (Table, bool) {
	t, ok := tables[name]
	return t, ok
}

// ExpectedColumns returns the column set callers compare read results
// against when deciding whether a table needs re-initialization.
func ExpectedColumns(name string) []string {
	t, ok := tables[name]
	if !ok {
		return nil
	}
	return t.ColumnNames()
}
