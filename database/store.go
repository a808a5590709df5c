package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/lisa-tools/test/testrun"
	"github.com/jackc/pgx/v5"
)

// Tables names the destination tables.
type Tables struct {
	Results string
	Perf    string
}

// Batch is everything one run inserts.
type Batch struct {
	Rows     []testrun.Row
	PerfRows []testrun.PerfRow
}

type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store writes batches to the configured tables.
type Store struct {
	db     beginner
	tables Tables
	logger log.Logger
}

// NewStore ...
func NewStore(db beginner, tables Tables, logger log.Logger) *Store {
	return &Store{db: db, tables: tables, logger: logger}
}

// Save inserts the batch in a single transaction. Nothing is written when any of the
// copies fails.
func (s *Store) Save(ctx context.Context, batch Batch) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Errorf("Failed to rollback transaction: %s", rbErr)
		}
	}()

	results := make([][]any, 0, len(batch.Rows))
	for _, row := range batch.Rows {
		results = append(results, row.Values())
	}
	if err := s.copy(ctx, tx, s.tables.Results, testrun.Columns, results); err != nil {
		return err
	}

	perf := make([][]any, 0, len(batch.PerfRows))
	for _, row := range batch.PerfRows {
		perf = append(perf, row.Values())
	}
	if err := s.copy(ctx, tx, s.tables.Perf, testrun.PerfColumns, perf); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) copy(ctx context.Context, tx pgx.Tx, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", table, err)
	}
	s.logger.Debugf("Copied %d rows into %s", n, table)
	return nil
}
