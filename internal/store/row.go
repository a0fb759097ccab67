package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row is one record of an entity table, keyed by column name. Values are
// normalized on read so callers see the same shapes regardless of which
// backend produced them.
type Row map[string]interface{}

// Predicate selects rows by equality on every listed column. Predicates
// travel inside queued changes, so they must only reference portable data
// columns, never backend-assigned ids when the target is the remote store.
type Predicate map[string]interface{}

// String returns the column as a string, or "" when absent.
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Int returns the column as an int, or 0 when absent or unparsable.
func (r Row) Int(col string) int {
	switch v := r[col].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	case []byte:
		n, _ := strconv.Atoi(strings.TrimSpace(string(v)))
		return n
	default:
		return 0
	}
}

// Bool normalizes the looser boolean encodings the local backend produces.
// "true", "1" and "yes" (case-insensitive) all count as true.
func (r Row) Bool(col string) bool {
	return truthy(r[col])
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case string:
		return truthyString(t)
	case []byte:
		return truthyString(string(t))
	default:
		return false
	}
}

func truthyString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// Date returns the column as a calendar date with the time of day
// stripped. The zero time is returned when the value cannot be parsed.
func (r Row) Date(col string) time.Time {
	t := r.Time(col)
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Time parses the column as an instant, accepting native time values and
// the ISO-8601 text forms SQLite stores.
func (r Row) Time(col string) time.Time {
	switch v := r[col].(type) {
	case time.Time:
		return v
	case string:
		return parseTime(v)
	case []byte:
		return parseTime(string(v))
	default:
		return time.Time{}
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// DateKey renders a value as the canonical "YYYY-MM-DD" form used for
// natural-key comparison across backends.
func DateKey(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		return t.Format("2006-01-02")
	case string:
		if parsed := parseTime(t); !parsed.IsZero() {
			return parsed.Format("2006-01-02")
		}
		return t
	case []byte:
		return DateKey(string(t))
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
