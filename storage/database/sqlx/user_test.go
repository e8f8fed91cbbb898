package sqlxrepos

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitsenior/backend/core/user"
)

const testUUID = "0e5b8a4e-4a4c-4d55-9a43-1f2a1b6f5c10"

func TestUserRepository_CheckEmailUniqueness(t *testing.T) {
	tests := []struct {
		name    string
		exists  bool
		wantErr error
	}{
		{name: "free", exists: false},
		{name: "taken", exists: true, wantErr: user.ErrEmailExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewUserRepository(db)

			mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM users WHERE LOWER\(email\) = LOWER\(\$1\)`).
				WithArgs("ana@test.com", sqlmock.AnyArg()).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tt.exists))

			err := repo.CheckEmailUniqueness(context.Background(), "ana@test.com", nil)
			assert.Equal(t, tt.wantErr, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_CreateUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now().UTC()

	mock.ExpectExec(`INSERT INTO users \(id, email, password_hash`).
		WithArgs(sqlmock.AnyArg(), "ana@test.com", []byte("hash"), true, false, nil, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	usr, err := repo.CreateUser(context.Background(), user.User{
		Email:        "ana@test.com",
		PasswordHash: []byte("hash"),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	assert.True(t, isUUID(usr.ID))
	assert.NoError(t, mock.ExpectationsWereMet())

	t.Run("duplicate email", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO users`).WillReturnError(&pq.Error{Code: pqUniqueViolation})
		_, err := repo.CreateUser(context.Background(), user.User{Email: "ana@test.com"})
		assert.Equal(t, user.ErrEmailExists, err)
	})
}

func TestUserRepository_GetUser(t *testing.T) {
	cols := []string{"id", "email", "password_hash", "is_active", "is_admin", "last_login", "created_at", "updated_at"}
	now := time.Now().UTC()

	t.Run("by email", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`(?s)SELECT .+ FROM users WHERE LOWER\(email\) = LOWER\(\$1\)`).
			WithArgs("ana@test.com").
			WillReturnRows(sqlmock.NewRows(cols).AddRow(testUUID, "ana@test.com", []byte("hash"), true, false, nil, now, now))

		usr, err := NewUserRepository(db).GetUser(context.Background(), user.GetFilter{Email: "ana@test.com"})
		require.NoError(t, err)
		assert.Equal(t, testUUID, usr.ID)
		assert.True(t, usr.LastLogin.IsZero())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`(?s)SELECT .+ FROM users WHERE id = \$1`).WithArgs(testUUID).WillReturnError(sql.ErrNoRows)

		_, err := NewUserRepository(db).GetUser(context.Background(), user.GetFilter{ID: testUUID})
		assert.Equal(t, user.ErrNotFound, err)
	})

	t.Run("malformed id", func(t *testing.T) {
		db, mock := newMockDB(t)
		_, err := NewUserRepository(db).GetUser(context.Background(), user.GetFilter{ID: "42"})
		assert.Equal(t, user.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
