package database

import (
	"context"
	"fmt"
)

// RelationKind is the catalog's table_type for a relation.
type RelationKind string

const (
	RelationTable RelationKind = "BASE TABLE"
	RelationView  RelationKind = "VIEW"
)

// ColumnSchema describes a single column of a relation.
type ColumnSchema struct {
	Name         string `json:"name"`
	DataType     string `json:"dataType"` // as reported by the catalog, not a closed set
	Nullable     bool   `json:"nullable"`
	IsPrimaryKey bool   `json:"isPrimaryKey"`
}

// TableSchema describes a table or view; columns are in ordinal order.
type TableSchema struct {
	Name    string         `json:"name"`
	Columns []ColumnSchema `json:"columns"`
}

// DatabaseSchema lists base tables and views, each ordered by name.
type DatabaseSchema struct {
	Tables []TableSchema `json:"tables"`
	Views  []TableSchema `json:"views"`
}

// Introspector reads relations and columns from the default schema.
// Each driver implements the catalog queries; InspectSchema is shared.
type Introspector interface {
	// ListRelations returns relation names of the given kind, by name.
	ListRelations(ctx context.Context, kind RelationKind) ([]string, error)

	// ListColumns returns the columns of relation by ordinal position.
	ListColumns(ctx context.Context, relation string) ([]ColumnSchema, error)
}

// InspectSchema builds the full DatabaseSchema by orchestrating the
// Introspector: tables first, then views, one column query per relation.
// Any failure aborts the whole inspection.
func InspectSchema(ctx context.Context, i Introspector) (*DatabaseSchema, error) {
	tables, err := inspectRelations(ctx, i, RelationTable)
	if err != nil {
		return nil, err
	}
	views, err := inspectRelations(ctx, i, RelationView)
	if err != nil {
		return nil, err
	}
	return &DatabaseSchema{Tables: tables, Views: views}, nil
}

func inspectRelations(ctx context.Context, i Introspector, kind RelationKind) ([]TableSchema, error) {
	names, err := i.ListRelations(ctx, kind)
	if err != nil {
		return nil, err
	}

	out := make([]TableSchema, 0, len(names))
	for _, name := range names {
		cols, err := i.ListColumns(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("inspecting %q: %w", name, err)
		}
		if cols == nil {
			cols = []ColumnSchema{}
		}
		out = append(out, TableSchema{Name: name, Columns: cols})
	}
	return out, nil
}
