package tests

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/fitsenior/backend/apps/api/echo"
	"github.com/fitsenior/backend/core/user"
)

func Test_userApi_register(t *testing.T) {
	app := setup(t)
	app.createUser(t, "Taken", "taken@test.br")

	body := func(name, email, pwd, confirm string) []byte {
		return marshallObj(t, user.NewUser{FullName: name, Email: email, Password: pwd, PasswordConfirm: confirm})
	}

	tests := []httpTest{
		{
			name: "missing fields", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{
				"full_name":        "this field is required",
				"email":            "this field is required",
				"password":         "this field is required",
				"password_confirm": "this field is required",
			}),
		},
		{
			name: "password too short", body: body("Maria Silva", "maria@test.br", "a1b2", "a1b2"), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"password": "password must contain at least 8 characters"}),
		},
		{
			name: "password all numeric", body: body("Maria Silva", "maria@test.br", "12345678", "12345678"), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"password": "password cannot be entirely numeric"}),
		},
		{
			name: "email taken", body: body("Other", "TAKEN@test.br", "Secret123", "Secret123"), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"email": "a user with this email already exists"}),
		},
		{name: "valid", body: body(" Maria Silva ", "Maria@Test.br", "Secret123", "Secret123"), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/auth/register"
		runTests(t, app, []httpTest{tt})
	}

	usr, err := app.repos.User.GetUser(context.Background(), user.GetFilter{Email: "maria@test.br"})
	require.NoError(t, err)
	p, err := app.repos.Profile.GetProfile(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", p.FullName)
}

func Test_userApi_login(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Ana", "ana@test.br")

	inactive := app.createUser(t, "Inactive", "inactive@test.br")
	inactive.IsActive = false
	_, err := app.repos.User.UpdateUser(context.Background(), inactive)
	require.NoError(t, err)

	login := func(email, pwd string) []byte {
		return marshallObj(t, LoginRequest{Email: email, Password: pwd})
	}
	runTests(t, app, []httpTest{
		{
			name: "bad password", method: http.MethodPost, path: "/api/auth/login", body: login(usr.Email, "wrong-pwd1"),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "invalid credentials"}),
		},
		{
			name: "unknown email", method: http.MethodPost, path: "/api/auth/login", body: login("nobody@test.br", "Secret123"),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "invalid credentials"}),
		},
		{
			name: "deactivated", method: http.MethodPost, path: "/api/auth/login", body: login(inactive.Email, "Secret123"),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "account deactivated"}),
		},
	})

	rec := app.do(http.MethodPost, "/api/auth/login", "", login("ANA@test.br", "Secret123"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LoginResponse
	unmarshall(t, rec, &resp)

	claims := new(Claims)
	_, err = jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(app.conf.SecretKey), nil
	})
	require.NoError(t, err)
	assert.Equal(t, usr.ID, claims.Subject)
	assert.Equal(t, usr.Email, claims.Email)
	assert.False(t, claims.IsAdmin)
	assert.Equal(t, claims.IssuedAt, claims.OrigIssuedAt)

	logged, err := app.repos.User.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
	require.NoError(t, err)
	assert.False(t, logged.LastLogin.IsZero(), "last_login must be set")
}

func Test_authMiddleware(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Ana", "ana@test.br")

	runTests(t, app, []httpTest{
		{name: "no token", path: "/api/me", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{
			name: "garbage token", path: "/api/me", token: "not.a.jwt", wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, httpErr{Error: "invalid or expired token"}),
		},
		{name: "valid token", path: "/api/me", token: app.token(t, usr), wantCode: http.StatusOK},
	})
}

func Test_userApi_refreshToken(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Ana", "ana@test.br")

	rec := app.do(http.MethodPost, "/api/auth/token-refresh", app.token(t, usr))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LoginResponse
	unmarshall(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)

	// the original issue time is far behind the refresh window
	old, err := app.auth.Token(usr, 1)
	require.NoError(t, err)
	runTests(t, app, []httpTest{{
		name: "refresh expired", method: http.MethodPost, path: "/api/auth/token-refresh", token: old,
		wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "refresh has expired"}),
	}})
}

func Test_userApi_passwordReset(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Ana", "ana@test.br")

	success := marshallObj(t, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
	runTests(t, app, []httpTest{
		{
			name: "unknown email", method: http.MethodPost, path: "/api/auth/password-reset",
			body: marshallObj(t, PasswordResetRequest{Email: "nobody@test.br"}), wantCode: http.StatusOK, wantData: success,
		},
	})
	assert.Empty(t, app.mailSvc.Sent())

	rec := app.do(http.MethodPost, "/api/auth/password-reset", "", marshallObj(t, PasswordResetRequest{Email: usr.Email}))
	require.Equal(t, http.StatusOK, rec.Code)
	sent := app.mailSvc.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, usr.Email, sent[0].To[0].Address)
	assert.True(t, strings.Contains(sent[0].TextContent, user.EncodeUID(usr)), "reset link must carry the uid")

	runTests(t, app, []httpTest{{
		name: "bad token", method: http.MethodPost, path: "/api/auth/password-reset-confirm",
		body: marshallObj(t, user.ResetUserPassword{
			UID: user.EncodeUID(usr), Token: "MQ-bad", Password: "NewSecret1", PasswordConfirm: "NewSecret1",
		}),
		wantCode: http.StatusBadRequest,
	}})
}

func Test_userApi_changePassword(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Ana", "ana@test.br")
	token := app.token(t, usr)

	body := func(old, pwd string) []byte {
		return marshallObj(t, user.ChangePassword{OldPassword: old, Password: pwd, PasswordConfirm: pwd})
	}
	runTests(t, app, []httpTest{
		{name: "no token", method: http.MethodPut, path: "/api/auth/password", body: body("Secret123", "NewSecret1"), wantCode: http.StatusUnauthorized},
		{name: "wrong old password", method: http.MethodPut, path: "/api/auth/password", token: token, body: body("nope", "NewSecret1"), wantCode: http.StatusBadRequest},
		{
			name: "changed", method: http.MethodPut, path: "/api/auth/password", token: token, body: body("Secret123", "NewSecret1"),
			wantCode: http.StatusOK, wantData: marshallObj(t, SuccessResponse{Success: "Password has been changed."}),
		},
	})

	rec := app.do(http.MethodPost, "/api/auth/login", "", marshallObj(t, LoginRequest{Email: usr.Email, Password: "NewSecret1"}))
	assert.Equal(t, http.StatusOK, rec.Code)
}
