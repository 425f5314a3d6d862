// Package store defines the contract the repositories and the reservation engine use to
// talk to the relational store: statements, queries and transaction scopes.
//
// A transaction opened with WithTx or ReadOnly travels in the context handed to the
// callback. Exec, Query and QueryRow called with that context run inside the
// transaction; called with any other context they run on their own.
package store

import (
	"context"
	"errors"
)

var ErrNoRows = errors.New("no rows in result set")

type Row interface {
	Scan(dest ...any) error
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// Transactor opens transaction scopes. The scope commits when fn returns nil and rolls
// back when fn returns an error or panics. A call made with a context that already
// carries a transaction joins it instead of opening a new one.
type Transactor interface {
	// WithTx runs fn in a read-committed read-write transaction.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// ReadOnly runs fn in a repeatable-read read-only transaction, so every
	// statement in fn sees the same snapshot.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

type Store interface {
	Querier
	Transactor
	Ping(ctx context.Context) error
	Close()
}
