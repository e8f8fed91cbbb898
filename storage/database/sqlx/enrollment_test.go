package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitsenior/backend/core/enrollment"
)

func TestEnrollmentRepository_CreateEnrollment(t *testing.T) {
	now := time.Now().UTC()
	newEnrollment := enrollment.Enrollment{UserID: testUUID, ClassID: testUUID, Status: enrollment.StatusEnrolled, CreatedAt: now}

	tests := []struct {
		name    string
		dbErr   error
		wantErr error
	}{
		{name: "created"},
		{name: "duplicate", dbErr: &pq.Error{Code: pqUniqueViolation}, wantErr: enrollment.ErrAlreadyEnrolled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			exp := mock.ExpectExec(`INSERT INTO enrollments \(id, user_id, class_id, student_id, status, created_at\)`).
				WithArgs(sqlmock.AnyArg(), testUUID, testUUID, nil, enrollment.StatusEnrolled, now)
			if tt.dbErr != nil {
				exp.WillReturnError(tt.dbErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			e, err := NewEnrollmentRepository(db).CreateEnrollment(context.Background(), newEnrollment)
			assert.Equal(t, tt.wantErr, err)
			if tt.wantErr == nil {
				assert.True(t, isUUID(e.ID))
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEnrollmentRepository_CountActiveEnrollments(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM enrollments WHERE class_id = \$1 AND status <> \$2`).
		WithArgs(testUUID, enrollment.StatusCancelled).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := NewEnrollmentRepository(db).CountActiveEnrollments(context.Background(), testUUID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepository_FindEnrollmentNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`(?s)SELECT .+ FROM enrollments WHERE user_id = \$1 AND class_id = \$2`).
		WithArgs(testUUID, testUUID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewEnrollmentRepository(db).FindEnrollment(context.Background(), testUUID, testUUID)
	assert.Equal(t, enrollment.ErrNotFound, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
