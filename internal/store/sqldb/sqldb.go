// Package sqldb implements the store contract on database/sql, using the pgx stdlib
// driver for Postgres. It lets the service share one *sql.DB with tooling that only
// speaks database/sql, such as the migration runner.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Domenick1991/airreserve/config"
	"github.com/Domenick1991/airreserve/internal/store"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

type Store struct {
	db    *sql.DB
	retry store.RetryPolicy
	log   *zap.Logger
}

// Open connects through the pgx stdlib driver and verifies the connection.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(int(cfg.MaxConns))
	db.SetMaxIdleConns(int(cfg.MaxConns))
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ConnectTimeoutS)*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func New(db *sql.DB, retry store.RetryPolicy, log *zap.Logger) *Store {
	return &Store{
		db:    db,
		retry: retry,
		log:   log.With(zap.String("store", "stdlib")),
	}
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) querier(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.querier(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, store.Translate(err)
	}
	return res.RowsAffected()
}

func (s *Store) Query(ctx context.Context, query string, args ...any) (store.Rows, error) {
	result, err := s.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.Translate(err)
	}
	return &rows{result}, nil
}

func (s *Store) QueryRow(ctx context.Context, query string, args ...any) store.Row {
	return row{s.querier(ctx).QueryRowContext(ctx, query, args...)}
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.inTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.inTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

func (s *Store) inTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	attempt := 0
	return s.retry.Run(ctx, func() error {
		attempt++
		err := s.runTx(ctx, opts, fn)
		if err != nil && store.IsRetryable(err) {
			s.log.Warn("transaction aborted by the database", zap.Int("attempt", attempt), zap.Error(err))
		}
		return err
	})
}

func (s *Store) runTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", store.Translate(err))
	}
	committed = true
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() {
	if err := s.db.Close(); err != nil {
		s.log.Warn("close database", zap.Error(err))
	}
}

type row struct {
	*sql.Row
}

func (r row) Scan(dest ...any) error {
	return store.Translate(r.Row.Scan(dest...))
}

type rows struct {
	*sql.Rows
}

func (r *rows) Scan(dest ...any) error {
	return store.Translate(r.Rows.Scan(dest...))
}

func (r *rows) Err() error {
	return store.Translate(r.Rows.Err())
}

func (r *rows) Close() {
	_ = r.Rows.Close()
}

var _ store.Store = (*Store)(nil)
