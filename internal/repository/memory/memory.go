// Package memory is an in-process implementation of the repositories and the
// transaction contract. It backs the "memory" database driver and the engine tests.
//
// A transaction holds one mutex for its whole duration, so transactions run one at a
// time. Writes made by a transaction that fails are undone from a snapshot taken when
// it began. Repository calls made outside a transaction take the mutex per call.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/Domenick1991/airreserve/internal/domain"
)

type txKey struct{}

type DB struct {
	mu       sync.Mutex
	flights  map[string]domain.Flight
	bookings map[string]domain.Booking
}

func New() *DB {
	return &DB{
		flights:  make(map[string]domain.Flight),
		bookings: make(map[string]domain.Booking),
	}
}

func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.inTx(ctx, fn)
}

// ReadOnly runs fn under the same lock as WithTx, which already gives fn a stable view.
func (db *DB) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.inTx(ctx, fn)
}

func (db *DB) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	flights, bookings := maps.Clone(db.flights), maps.Clone(db.bookings)
	committed := false
	defer func() {
		if !committed {
			db.flights, db.bookings = flights, bookings
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, db)); err != nil {
		return err
	}
	committed = true
	return nil
}

func (db *DB) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (db *DB) Close() {}

// do runs fn with the data locked, reusing the lock of an enclosing transaction.
func (db *DB) do(ctx context.Context, fn func() error) error {
	if inTx(ctx) {
		return fn()
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn()
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*DB)
	return ok
}
