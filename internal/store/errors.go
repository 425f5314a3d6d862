package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type ConstraintKind string

const (
	UniqueViolation     ConstraintKind = "unique"
	ForeignKeyViolation ConstraintKind = "foreign_key"
	CheckViolation      ConstraintKind = "check"
)

// ConstraintError reports a statement rejected by a schema constraint.
type ConstraintError struct {
	Kind       ConstraintKind
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s constraint %q violated: %v", e.Kind, e.Constraint, e.Err)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// postgres SQLSTATE codes
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// Translate maps driver errors onto the store contract: missing rows become ErrNoRows
// and constraint violations become *ConstraintError. Other errors pass through untouched.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return ErrNoRows
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return &ConstraintError{Kind: UniqueViolation, Constraint: pgErr.ConstraintName, Err: err}
		case codeForeignKeyViolation:
			return &ConstraintError{Kind: ForeignKeyViolation, Constraint: pgErr.ConstraintName, Err: err}
		case codeCheckViolation:
			return &ConstraintError{Kind: CheckViolation, Constraint: pgErr.ConstraintName, Err: err}
		}
	}
	return err
}

// IsConstraint reports whether err is a violation of the named constraint.
func IsConstraint(err error, kind ConstraintKind, constraint string) bool {
	var cErr *ConstraintError
	if !errors.As(err, &cErr) {
		return false
	}
	return cErr.Kind == kind && (constraint == "" || cErr.Constraint == constraint)
}

// IsRetryable reports whether the whole transaction that produced err may be replayed.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}
