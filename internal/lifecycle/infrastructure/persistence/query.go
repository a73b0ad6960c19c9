// Package persistence stores lifecycle subjects, their payment ledgers and
// comment feeds in SQLite or PostgreSQL.
package persistence

import (
	"strings"

	"github.com/lib/pq"

	"github.com/felixgeelhaar/atelier/internal/shared/infrastructure/database"
)

// whereBuilder collects ? conditions for either dialect.
type whereBuilder struct {
	driver database.Driver
	conds  []string
	args   []any
}

func (w *whereBuilder) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

// in matches column against any of values. PostgreSQL binds the set as one
// array parameter; SQLite expands it.
func (w *whereBuilder) in(column string, values []string) {
	if len(values) == 0 {
		return
	}
	if w.driver == database.DriverPostgres {
		w.add(column+" = ANY(?)", pq.Array(values))
		return
	}
	marks := strings.TrimSuffix(strings.Repeat("?,", len(values)), ",")
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	w.add(column+" IN ("+marks+")", args...)
}

func (w *whereBuilder) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}
