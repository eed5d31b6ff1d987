package tx

import (
	"context"
	"database/sql"
	"time"

	dErrors "teranga/pkg/domain-errors"
)

// DefaultTimeout bounds a transaction when the caller context has no deadline.
const DefaultTimeout = 5 * time.Second

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Executor is the subset of *sql.DB and *sql.Tx used by stores.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Exec returns the transaction bound to ctx, or db when there is none.
func Exec(ctx context.Context, db *sql.DB) Executor {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return db
}

// Run executes fn inside a database transaction carried in the context passed
// to fn. Stores reached through that context join the transaction. A context
// without a deadline gets DefaultTimeout.
func Run(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, ok := From(ctx); ok {
		return fn(ctx)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	sqlTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(WithTx(ctx, sqlTx)); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// Runner opens a unit of work. Services depend on it so the same code runs
// against Postgres and the in-memory stores.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// DBRunner runs units of work as Postgres transactions.
type DBRunner struct {
	db *sql.DB
}

func NewRunner(db *sql.DB) *DBRunner {
	return &DBRunner{db: db}
}

func (r *DBRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return Run(ctx, r.db, fn)
}

// NoopRunner calls fn directly. The in-memory stores serialize each call
// under their own locks.
type NoopRunner struct{}

func (NoopRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
