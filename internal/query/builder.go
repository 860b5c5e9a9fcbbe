// Package query builds parameterized SQL for the daemon's two SQL log
// store backends (sqlite, postgres), translating the shared "?"
// placeholder style into each driver's expected form.
package query

import (
	"fmt"
	"strings"
)

// Dialect selects the target SQL placeholder style.
type Dialect int

const (
	// DialectQuestion emits "?" placeholders (SQLite, MySQL).
	DialectQuestion Dialect = iota
	// DialectDollar emits "$N" placeholders (PostgreSQL).
	DialectDollar
)

// Builder incrementally assembles a SELECT statement with WHERE, ORDER BY,
// and LIMIT clauses, generalized from the alert-history query builder to
// operate over the "logs" table.
type Builder struct {
	dialect      Dialect
	baseQuery    string
	whereClauses []string
	args         []interface{}
	orderBy      []string
	limit        int
}

// New creates a Builder that selects from table using the given dialect.
func New(dialect Dialect, selectClause string) *Builder {
	return &Builder{
		dialect:   dialect,
		baseQuery: selectClause,
		args:      []interface{}{},
	}
}

// Where adds a WHERE clause with "?"-style placeholders; they are
// translated to the builder's dialect at Build time.
func (b *Builder) Where(clause string, args ...interface{}) {
	b.whereClauses = append(b.whereClauses, clause)
	b.args = append(b.args, args...)
}

// OrderBy appends a raw ORDER BY fragment (e.g. "ts ASC, id ASC").
// Callers are responsible for passing only whitelisted column names.
func (b *Builder) OrderBy(clause string) {
	b.orderBy = append(b.orderBy, clause)
}

// Limit sets the LIMIT clause; values <= 0 omit it.
func (b *Builder) Limit(n int) {
	b.limit = n
}

// Build renders the final query and its positional arguments.
func (b *Builder) Build() (string, []interface{}) {
	var parts []string
	parts = append(parts, b.baseQuery)

	if len(b.whereClauses) > 0 {
		parts = append(parts, "WHERE "+strings.Join(b.whereClauses, " AND "))
	}
	if len(b.orderBy) > 0 {
		parts = append(parts, "ORDER BY "+strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		parts = append(parts, "LIMIT ?")
	}

	query := strings.Join(parts, " ")
	args := b.args
	if b.limit > 0 {
		args = append(args, b.limit)
	}

	if b.dialect == DialectDollar {
		query = toDollarPlaceholders(query)
	}

	return query, args
}

// toDollarPlaceholders rewrites every "?" in query to a sequential "$N".
func toDollarPlaceholders(query string) string {
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString(fmt.Sprintf("$%d", n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
