package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Domenick1991/airreserve/internal/store"
	"github.com/Domenick1991/airreserve/internal/store/sqldb"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockStore(t *testing.T) (*sqldb.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return sqldb.New(db, store.RetryPolicy{}, zap.NewNop()), mock
}

func pgErr(code, constraint string) error {
	return &pgconn.PgError{Code: code, ConstraintName: constraint}
}
