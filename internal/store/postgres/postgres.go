// Package postgres implements the store contract on a pgx connection pool.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/airreserve/config"
	"github.com/Domenick1991/airreserve/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

type Store struct {
	pool  *pgxpool.Pool
	retry store.RetryPolicy
	log   *zap.Logger
}

// NewPool builds and pings a connection pool for cfg.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute
	poolConfig.ConnConfig.ConnectTimeout = time.Duration(cfg.ConnectTimeoutS) * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database failed: %w", err)
	}
	return pool, nil
}

func New(pool *pgxpool.Pool, retry store.RetryPolicy, log *zap.Logger) *Store {
	return &Store{
		pool:  pool,
		retry: retry,
		log:   log.With(zap.String("store", "pgxpool")),
	}
}

func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *Store) querier(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return s.pool
}

func (s *Store) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := s.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, store.Translate(err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) Query(ctx context.Context, sql string, args ...any) (store.Rows, error) {
	result, err := s.querier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, store.Translate(err)
	}
	return rows{result}, nil
}

func (s *Store) QueryRow(ctx context.Context, sql string, args ...any) store.Row {
	return row{s.querier(ctx).QueryRow(ctx, sql, args...)}
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.inTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.inTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, fn)
}

func (s *Store) inTx(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
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

func (s *Store) runTx(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context) error) error {
	tx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// no-op once committed; also covers a panic in fn
	defer tx.Rollback(context.WithoutCancel(ctx))

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", store.Translate(err))
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() {
	s.pool.Close()
}

type row struct {
	pgx.Row
}

func (r row) Scan(dest ...any) error {
	return store.Translate(r.Row.Scan(dest...))
}

type rows struct {
	pgx.Rows
}

func (r rows) Scan(dest ...any) error {
	return store.Translate(r.Rows.Scan(dest...))
}

func (r rows) Err() error {
	return store.Translate(r.Rows.Err())
}

var _ store.Store = (*Store)(nil)
