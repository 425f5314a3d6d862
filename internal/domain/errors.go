package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrSeatTaken         = errors.New("seat is already taken")
	ErrExhausted         = errors.New("no available tickets")
	ErrCapacityViolation = errors.New("capacity below booked seats")
	ErrInvalidInput      = errors.New("invalid input")
	ErrStore             = errors.New("store error")
)

type Kind string

const (
	KindUnknown           Kind = "unknown"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindSeatTaken         Kind = "seat_taken"
	KindExhausted         Kind = "exhausted"
	KindCapacityViolation Kind = "capacity_violation"
	KindInvalidInput      Kind = "invalid_input"
	KindStore             Kind = "store_error"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrInvalidInput, KindInvalidInput},
	{ErrNotFound, KindNotFound},
	{ErrConflict, KindConflict},
	{ErrSeatTaken, KindSeatTaken},
	{ErrExhausted, KindExhausted},
	{ErrCapacityViolation, KindCapacityViolation},
	{ErrStore, KindStore},
}

// KindOf classifies err by the first error kind found in its chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}
