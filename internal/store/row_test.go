package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRowString(t *testing.T) {
	row := Row{"name": "Asha", "count": int64(3), "raw": []byte("bytes")}

	assert.Equal(t, "Asha", row.String("name"))
	assert.Equal(t, "3", row.String("count"))
	assert.Equal(t, "bytes", row.String("raw"))
	assert.Equal(t, "", row.String("missing"))
}

func TestRowInt(t *testing.T) {
	row := Row{
		"int":     7,
		"int64":   int64(8),
		"float":   9.0,
		"string":  "10",
		"garbage": "not a number",
	}

	assert.Equal(t, 7, row.Int("int"))
	assert.Equal(t, 8, row.Int("int64"))
	assert.Equal(t, 9, row.Int("float"))
	assert.Equal(t, 10, row.Int("string"))
	assert.Equal(t, 0, row.Int("garbage"))
	assert.Equal(t, 0, row.Int("missing"))
}

func TestRowBoolAcceptsSQLiteAndPostgresShapes(t *testing.T) {
	cases := map[string]struct {
		value interface{}
		want  bool
	}{
		"go bool":        {true, true},
		"sqlite one":     {int64(1), true},
		"sqlite zero":    {int64(0), false},
		"string true":    {"true", true},
		"string TRUE":    {"TRUE", true},
		"string yes":     {"yes", true},
		"string one":     {"1", true},
		"string false":   {"false", false},
		"string empty":   {"", false},
		"string garbage": {"banana", false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			row := Row{"active": tc.value}
			assert.Equal(t, tc.want, row.Bool("active"))
		})
	}
}

func TestRowDateAndTime(t *testing.T) {
	row := Row{
		"as_time":   time.Date(2026, 8, 29, 7, 30, 0, 0, time.UTC),
		"as_string": "2026-08-29",
		"datetime":  "2026-08-29 07:30:00",
	}

	assert.Equal(t, "2026-08-29", row.Date("as_time").Format("2006-01-02"))
	assert.Equal(t, "2026-08-29", row.Date("as_string").Format("2006-01-02"))
	assert.Equal(t, 7, row.Time("datetime").Hour())
	assert.True(t, row.Time("missing").IsZero())
}

func TestDateKeyCanonicalForm(t *testing.T) {
	day := time.Date(2026, 8, 29, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, "2026-08-29", DateKey(day))
	assert.Equal(t, "2026-08-29", DateKey("2026-08-29"))
	assert.Equal(t, "2026-08-29", DateKey("2026-08-29T00:00:00Z"))
	assert.Equal(t, "", DateKey(nil))
}
