package postgres

import (
	"context"
	"fmt"

	"github.com/koustreak/dbee/internal/database"
)

// ListRelations returns the names of relations of the given kind in the
// public schema, ordered by name.
func (d *Driver) ListRelations(ctx context.Context, kind database.RelationKind) ([]string, error) {
	const q = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_type   = $1
		ORDER BY table_name`

	rows, err := d.pool.Query(ctx, q, string(kind))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("failed to get %s", kind))
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, mapError(err, "failed to get table name")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, fmt.Sprintf("failed to get %s", kind))
	}
	return names, nil
}

// ListColumns returns the columns of relation in ordinal order. A column is
// primary-key iff a PRIMARY KEY constraint of the same relation lists a
// column of the same name.
func (d *Driver) ListColumns(ctx context.Context, relation string) ([]database.ColumnSchema, error) {
	const q = `
		SELECT
			c.column_name,
			c.data_type,
			c.is_nullable,
			pk.column_name IS NOT NULL AS is_primary_key
		FROM information_schema.columns c
		LEFT JOIN (
			SELECT kcu.column_name
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
				ON tc.constraint_name = kcu.constraint_name
				AND tc.table_schema = kcu.table_schema
			WHERE tc.constraint_type = 'PRIMARY KEY'
			  AND tc.table_name   = $1
			  AND tc.table_schema = 'public'
		) pk ON c.column_name = pk.column_name
		WHERE c.table_name   = $1
		  AND c.table_schema = 'public'
		ORDER BY c.ordinal_position`

	rows, err := d.pool.Query(ctx, q, relation)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("failed to get columns for %s", relation))
	}
	defer rows.Close()

	cols := []database.ColumnSchema{}
	for rows.Next() {
		var (
			col      database.ColumnSchema
			nullable string
		)
		if err := rows.Scan(&col.Name, &col.DataType, &nullable, &col.IsPrimaryKey); err != nil {
			return nil, mapError(err, fmt.Sprintf("failed to get columns for %s", relation))
		}
		col.Nullable = nullable == "YES"
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, fmt.Sprintf("failed to get columns for %s", relation))
	}
	return cols, nil
}
