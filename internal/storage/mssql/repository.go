// Package mssql persists notice keys in SQL Server, selected with
// storage.driver "mssql". Same contract as the file driver: the whole key
// list is replaced per run, position 0 is the newest.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"rgccr-notice-check/internal/observability"
	"rgccr-notice-check/internal/storage"
)

const stateTable = "TblNoticeState"

type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

func NewRepository(dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{
		db:             db,
		commandTimeout: commandTimeout,
		logger:         logger,
	}, nil
}

func (r *Repository) LoadKeys(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf("SELECT [NoticeKey] FROM %s ORDER BY [Position] ASC", stateTable))
	if err != nil {
		return nil, &storage.StoreIOError{Op: "load", Target: stateTable, Err: err}
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			r.logger.Warn("failed to close rows", "error", closeErr.Error())
		}
	}()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, &storage.StoreIOError{Op: "load", Target: stateTable, Err: err}
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, &storage.StoreIOError{Op: "load", Target: stateTable, Err: err}
	}
	return keys, nil
}

// SaveKeys replaces the table contents in one transaction, the SQL
// equivalent of the file driver's temp-write-then-rename.
func (r *Repository) SaveKeys(ctx context.Context, keys []string) error {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &storage.StoreIOError{Op: "save", Target: stateTable, Err: err}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", stateTable)); err != nil {
		_ = tx.Rollback()
		return &storage.StoreIOError{Op: "save", Target: stateTable, Err: err}
	}

	for i, key := range keys {
		_, err := tx.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s ([Position], [NoticeKey]) VALUES (@Position, @NoticeKey)", stateTable),
			sql.Named("Position", i),
			sql.Named("NoticeKey", key),
		)
		if err != nil {
			_ = tx.Rollback()
			return &storage.StoreIOError{Op: "save", Target: stateTable, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &storage.StoreIOError{Op: "save", Target: stateTable, Err: err}
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

var _ storage.Repository = (*Repository)(nil)
