package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	relations map[RelationKind][]string
	columns   map[string][]ColumnSchema
	failOn    string
	calls     []string
}

func (f *fakeCatalog) ListRelations(_ context.Context, kind RelationKind) ([]string, error) {
	f.calls = append(f.calls, "relations:"+string(kind))
	if f.failOn == string(kind) {
		return nil, errors.New("catalog unavailable")
	}
	return f.relations[kind], nil
}

func (f *fakeCatalog) ListColumns(_ context.Context, relation string) ([]ColumnSchema, error) {
	f.calls = append(f.calls, "columns:"+relation)
	if f.failOn == relation {
		return nil, errors.New("permission denied for relation")
	}
	return f.columns[relation], nil
}

func TestInspectSchema(t *testing.T) {
	cat := &fakeCatalog{
		relations: map[RelationKind][]string{
			RelationTable: {"accounts", "orders"},
			RelationView:  {"active_accounts"},
		},
		columns: map[string][]ColumnSchema{
			"accounts": {
				{Name: "id", DataType: "integer", IsPrimaryKey: true},
				{Name: "email", DataType: "text", Nullable: true},
			},
			"orders":          {{Name: "id", DataType: "bigint", IsPrimaryKey: true}},
			"active_accounts": {{Name: "id", DataType: "integer", Nullable: true}},
		},
	}

	schema, err := InspectSchema(context.Background(), cat)
	require.NoError(t, err)

	require.Len(t, schema.Tables, 2)
	assert.Equal(t, "accounts", schema.Tables[0].Name)
	assert.Equal(t, "email", schema.Tables[0].Columns[1].Name)
	require.Len(t, schema.Views, 1)
	assert.Equal(t, "active_accounts", schema.Views[0].Name)

	assert.Equal(t, []string{
		"relations:BASE TABLE", "columns:accounts", "columns:orders",
		"relations:VIEW", "columns:active_accounts",
	}, cat.calls)
}

func TestInspectSchema_Empty(t *testing.T) {
	schema, err := InspectSchema(context.Background(), &fakeCatalog{})
	require.NoError(t, err)

	assert.Empty(t, schema.Tables)
	assert.NotNil(t, schema.Tables)
	assert.NotNil(t, schema.Views)
}

func TestInspectSchema_FailureAbortsEverything(t *testing.T) {
	cat := &fakeCatalog{
		relations: map[RelationKind][]string{RelationTable: {"a", "b"}},
		failOn:    "a",
	}

	schema, err := InspectSchema(context.Background(), cat)
	assert.Nil(t, schema)
	assert.ErrorContains(t, err, `inspecting "a"`)

	cat = &fakeCatalog{failOn: string(RelationView)}
	schema, err = InspectSchema(context.Background(), cat)
	assert.Nil(t, schema)
	assert.Error(t, err)
}
