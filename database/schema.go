package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/bitrise-steplib/lisa-tools/test/testrun"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// ResultsSchema returns the DDL of the result table.
func ResultsSchema(table string) string {
	return createTable(table, testrun.Columns, nil)
}

// PerfSchema returns the DDL of the performance table.
func PerfSchema(table string) string {
	return createTable(table, testrun.PerfColumns, map[string]string{"Value": "DOUBLE PRECISION"})
}

func createTable(table string, columns []string, types map[string]string) string {
	defs := make([]string, 0, len(columns))
	for _, column := range columns {
		typ, ok := types[column]
		if !ok {
			typ = "TEXT"
		}
		defs = append(defs, fmt.Sprintf("%s %s NOT NULL", pgx.Identifier{column}.Sanitize(), typ))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", pgx.Identifier{table}.Sanitize(), strings.Join(defs, ",\n\t"))
}

// EnsureSchema creates the result and performance tables if they are missing.
func EnsureSchema(ctx context.Context, db execer, tables Tables) error {
	if _, err := db.Exec(ctx, ResultsSchema(tables.Results)); err != nil {
		return fmt.Errorf("create table %s: %w", tables.Results, err)
	}
	if _, err := db.Exec(ctx, PerfSchema(tables.Perf)); err != nil {
		return fmt.Errorf("create table %s: %w", tables.Perf, err)
	}
	return nil
}
