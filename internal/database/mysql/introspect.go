package mysql

import (
	"context"
	"fmt"

	"github.com/koustreak/dbee/internal/database"
)

// ListRelations returns relation names of the given kind in the connected
// database (schema = database in MySQL), ordered by name.
func (d *Driver) ListRelations(ctx context.Context, kind database.RelationKind) ([]string, error) {
	const q = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_type   = ?
		ORDER BY table_name`

	rows, err := d.db.QueryContext(ctx, q, string(kind))
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

// ListColumns returns the columns of relation in ordinal order. MySQL
// records primary-key membership on the column itself (column_key = 'PRI').
func (d *Driver) ListColumns(ctx context.Context, relation string) ([]database.ColumnSchema, error) {
	const q = `
		SELECT
			c.column_name,
			c.data_type,
			c.is_nullable,
			c.column_key = 'PRI' AS is_primary_key
		FROM information_schema.columns c
		WHERE c.table_schema = DATABASE()
		  AND c.table_name   = ?
		ORDER BY c.ordinal_position`

	rows, err := d.db.QueryContext(ctx, q, relation)
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
