package database

import "github.com/koustreak/dbee/internal/coerce"

// QueryResult is the outcome of one statement. A projecting statement
// fills Columns and Rows and leaves RowsAffected nil; an effecting
// statement leaves Columns and Rows empty and sets RowsAffected.
type QueryResult struct {
	Columns         []string         `json:"columns"`
	Rows            [][]coerce.Value `json:"rows"`
	ExecutionTimeMs int64            `json:"executionTimeMs"`
	RowsAffected    *int64           `json:"rowsAffected"`
}
