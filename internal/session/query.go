package session

import (
	"context"
	"strings"
	"time"

	"github.com/koustreak/dbee/internal/coerce"
	"github.com/koustreak/dbee/internal/database"
)

var projectingKeywords = []string{"SELECT", "WITH", "SHOW", "EXPLAIN"}

// IsProjecting reports whether sql is run as a row-returning statement.
// Only the leading keyword is inspected, so INSERT ... RETURNING counts
// as effecting and only its affected-row count is reported.
func IsProjecting(sql string) bool {
	upper := strings.ToUpper(strings.TrimSpace(sql))
	for _, kw := range projectingKeywords {
		if strings.HasPrefix(upper, kw) {
			return true
		}
	}
	return false
}

// ExecuteQuery runs one statement against the live connection. The session
// lock is released before the statement runs, so independent queries on
// the same session proceed concurrently.
func (m *Manager) ExecuteQuery(ctx context.Context, sql string) (*database.QueryResult, error) {
	conn, err := m.handle()
	if err != nil {
		return nil, err
	}

	if IsProjecting(sql) {
		return project(ctx, conn, sql)
	}
	return effect(ctx, conn, sql)
}

func project(ctx context.Context, conn database.Conn, sql string) (*database.QueryResult, error) {
	start := time.Now()

	rows, err := conn.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		columns []string
		buffer  [][]coerce.Cell
	)
	for rows.Next() {
		if columns == nil {
			columns = rows.Columns()
		}
		buffer = append(buffer, rows.Cells())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	result := &database.QueryResult{
		Columns:         []string{},
		Rows:            make([][]coerce.Value, 0, len(buffer)),
		ExecutionTimeMs: elapsed.Milliseconds(),
	}
	if len(buffer) == 0 {
		return result, nil
	}

	result.Columns = columns
	c := conn.Coercer()
	for _, cells := range buffer {
		result.Rows = append(result.Rows, c.Row(cells))
	}
	return result, nil
}

func effect(ctx context.Context, conn database.Conn, sql string) (*database.QueryResult, error) {
	start := time.Now()

	n, err := conn.Exec(ctx, sql)
	if err != nil {
		return nil, err
	}

	return &database.QueryResult{
		Columns:         []string{},
		Rows:            [][]coerce.Value{},
		ExecutionTimeMs: time.Since(start).Milliseconds(),
		RowsAffected:    &n,
	}, nil
}

// Schema introspects the live connection's tables and views.
func (m *Manager) Schema(ctx context.Context) (*database.DatabaseSchema, error) {
	conn, err := m.handle()
	if err != nil {
		return nil, err
	}
	return database.InspectSchema(ctx, conn)
}
