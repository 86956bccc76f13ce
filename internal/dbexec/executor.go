// Package dbexec provides database query execution abstractions.
// It supports direct execution and transaction-scoped execution, so batch
// loads can observe the same snapshot as a preceding write.
package dbexec

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/go-sql-driver/mysql"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Rows abstracts sql.Rows to allow wrapped cleanup behavior.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	Err() error
	Close() error
}

// QueryExecutor abstracts SQL execution so callers can swap in
// transaction-scoped behavior.
type QueryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
}

// WindowCapable is implemented by executors that can report whether the
// backing datastore supports window functions. Executors that do not
// implement it are treated as unsupported.
type WindowCapable interface {
	SupportsWindowFunctions() bool
}

// StandardExecutor executes queries directly against a database handle.
type StandardExecutor struct {
	db          *sql.DB
	windowFuncs bool
}

// NewStandardExecutor creates an executor that runs queries directly against
// the database. windowFuncs declares whether the target server supports
// window functions (MySQL >= 8.0, TiDB).
func NewStandardExecutor(db *sql.DB, windowFuncs bool) *StandardExecutor {
	return &StandardExecutor{db: db, windowFuncs: windowFuncs}
}

func (e *StandardExecutor) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	if e.db == nil {
		return nil, sql.ErrConnDone
	}
	return e.db.QueryContext(ctx, query, args...)
}

// SupportsWindowFunctions reports the declared window-function capability.
func (e *StandardExecutor) SupportsWindowFunctions() bool {
	return e.windowFuncs
}

// TxExecutor executes queries inside an ambient transaction owned by the
// caller. It never commits or rolls back; it only passes the handle through
// so every batch query in a resolve call shares one snapshot.
type TxExecutor struct {
	tx          *sql.Tx
	windowFuncs bool
}

// NewTxExecutor wraps an existing transaction.
func NewTxExecutor(tx *sql.Tx, windowFuncs bool) *TxExecutor {
	return &TxExecutor{tx: tx, windowFuncs: windowFuncs}
}

func (e *TxExecutor) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	if e.tx == nil {
		return nil, sql.ErrTxDone
	}
	return e.tx.QueryContext(ctx, query, args...)
}

// SupportsWindowFunctions reports the declared window-function capability.
func (e *TxExecutor) SupportsWindowFunctions() bool {
	return e.windowFuncs
}

// PoolConfig holds connection pool parameters.
type PoolConfig struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

// Open opens an instrumented MySQL-protocol database handle. Queries run
// through it emit spans and metrics via the ambient otel providers.
func Open(dsn string, pool PoolConfig) (*sql.DB, error) {
	db, err := otelsql.Open("mysql", dsn,
		otelsql.WithAttributes(semconv.DBSystemMySQL),
		otelsql.WithSpanOptions(otelsql.SpanOptions{DisableErrSkip: true}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if pool.MaxOpen > 0 {
		db.SetMaxOpenConns(pool.MaxOpen)
	}
	if pool.MaxIdle > 0 {
		db.SetMaxIdleConns(pool.MaxIdle)
	}
	if pool.MaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.MaxLifetime)
	}
	return db, nil
}
