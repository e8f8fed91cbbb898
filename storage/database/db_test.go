package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitsenior/backend/core"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestTransactor_WithTx(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		fn      func(ctx context.Context, exec core.DBExecutor) error
		expect  func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "commit",
			fn: func(ctx context.Context, exec core.DBExecutor) error {
				_, err := exec.ExecContext(ctx, "UPDATE classes SET title = 'x'")
				return err
			},
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("UPDATE classes").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "rollback on error",
			fn:   func(context.Context, core.DBExecutor) error { return boom },
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			wantErr: boom,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tt.expect(mock)

			err := NewTransactor(db).WithTx(context.Background(), tt.fn)
			assert.Equal(t, tt.wantErr, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTransactor_WithTxPanic(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = NewTransactor(db).WithTx(context.Background(), func(context.Context, core.DBExecutor) error {
			panic("oops")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_ExecutorIsTx(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	err := NewTransactor(db).WithTx(context.Background(), func(_ context.Context, exec core.DBExecutor) error {
		_, ok := exec.(sqlx.ExtContext)
		assert.True(t, ok, "repositories need an sqlx.ExtContext")
		return nil
	})
	assert.NoError(t, err)
}

func TestMigrate(t *testing.T) {
	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var gotDir string
	gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, Migrate(context.Background(), nil))
	assert.Equal(t, MigrationsDir, gotDir)

	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("dirty")
	}
	assert.EqualError(t, Migrate(context.Background(), nil), "migrating database: dirty")
}
