package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitsenior/backend/core/professional"
	"github.com/fitsenior/backend/core/profile"
	"github.com/fitsenior/backend/core/session"
	"github.com/fitsenior/backend/core/student"
	inmemdb "github.com/fitsenior/backend/storage/database/inmem"
	testutil "github.com/fitsenior/backend/tests"
)

func TestStateOf(t *testing.T) {
	tests := []struct {
		authenticated bool
		role          session.Role
		want          session.State
	}{
		{false, session.RoleNone, session.StateAnonymous},
		{false, session.RoleStudent, session.StateAnonymous},
		{true, session.RoleNone, session.StateOnboarding},
		{true, session.RoleStudent, session.StateReady},
		{true, session.RoleProfessional, session.StateReady},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, session.StateOf(tt.authenticated, tt.role), "StateOf(%v, %q)", tt.authenticated, tt.role)
	}
}

func TestService(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	profileRepo := inmemdb.NewProfileRepository(db)
	studentRepo := inmemdb.NewStudentRepository(db)
	proRepo := inmemdb.NewProfessionalRepository(db)
	svc := session.NewService(profileRepo, studentRepo, proRepo)

	t.Run("no profile", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "nope")
		assert.Equal(t, profile.ErrNotFound, err)
	})

	usr := testutil.CreateUser(t, usrRepo, profileRepo, "Lurdes", "lurdes@test.br", "Secret123", true)

	t.Run("onboarding", func(t *testing.T) {
		sess, err := svc.Resolve(ctx, usr.ID)
		require.NoError(t, err)
		assert.Equal(t, session.RoleNone, sess.Role)
		assert.Equal(t, session.StateOnboarding, sess.State)
		assert.Equal(t, usr.ID, sess.UserID())
		assert.False(t, sess.IsStudent())
		assert.False(t, sess.IsProfessional())
	})

	t.Run("onboard student", func(t *testing.T) {
		s, err := svc.OnboardStudent(ctx, usr.ID, student.NewStudent{
			FullName:  "Lurdes Souza",
			Gender:    "female",
			Phone:     "+55 11 90000-0000",
			Email:     "lurdes@test.br",
			CPF:       "529.982.247-25",
			Address:   "Rua A, 1",
			BirthDate: time.Date(1948, time.May, 20, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.Equal(t, usr.ID, s.UserID)

		sess, err := svc.Resolve(ctx, usr.ID)
		require.NoError(t, err)
		assert.True(t, sess.IsStudent())
		assert.Equal(t, session.StateReady, sess.State)
		require.NotNil(t, sess.Student)
		assert.Equal(t, s.ID, sess.Student.ID)
	})

	t.Run("one role per account", func(t *testing.T) {
		_, err := svc.OnboardProfessional(ctx, usr.ID, professional.NewProfessional{FullName: "Lurdes"})
		assert.Equal(t, session.ErrRoleAssigned, err)
		_, err = svc.OnboardStudent(ctx, usr.ID, student.NewStudent{FullName: "Lurdes"})
		assert.Equal(t, session.ErrRoleAssigned, err)
	})

	t.Run("student record wins", func(t *testing.T) {
		testutil.CreateProfessional(t, proRepo, usr, "Lurdes")
		sess, err := svc.Resolve(ctx, usr.ID)
		require.NoError(t, err)
		assert.Equal(t, session.RoleStudent, sess.Role)
		assert.Nil(t, sess.Professional)
	})

	t.Run("professional", func(t *testing.T) {
		pro := testutil.CreateUser(t, usrRepo, profileRepo, "Carlos", "carlos@test.br", "Secret123", true)
		p := testutil.CreateProfessional(t, proRepo, pro, "Carlos")
		sess, err := svc.Resolve(ctx, pro.ID)
		require.NoError(t, err)
		assert.True(t, sess.IsProfessional())
		assert.Equal(t, p.ID, sess.Professional.ID)
	})
}
