package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fitsenior/backend/apps/api/di"
	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/user"
	emailsvc "github.com/fitsenior/backend/services/email"
	inmemdb "github.com/fitsenior/backend/storage/database/inmem"
	testutil "github.com/fitsenior/backend/tests"
)

var repos di.Repositories

func setup(t *testing.T) *commandLine {
	conf := &core.Config{
		SecretKey: "test-secret",
		Server:    core.ServerConfig{PasswordResetTimeoutDelta: time.Hour},
	}
	repos = di.MemoryRepositories(inmemdb.Open())
	validate, _ := di.NewValidator()

	// start CLI
	return &commandLine{
		usrSvc:   user.NewService(repos.Tx, repos.User, repos.Profile, emailsvc.NewServiceMock(conf), conf),
		validate: validate,
		out:      io.Discard,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantFields bool // a validation error is expected
	extra      interface{}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	t.Helper()
	switch {
	case err == nil:
		if tt.wantErr != nil || tt.wantErrStr != "" {
			t.Errorf("cli.run() error = nil, wantErr %v%s", tt.wantErr, tt.wantErrStr)
		}
	case tt.wantErr != nil:
		if err != tt.wantErr {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
		}
	default:
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	origRun := gooseRunFunc
	defer func() { gooseRunFunc = origRun }()
	gooseRunFunc = func(_ context.Context, command string, _ *sql.DB, dir string, args ...string) error {
		if dir != "migrations" {
			return fmt.Errorf("unexpected dir %q", dir)
		}
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "payment_method", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}
}

func Test_commandLine_createAdmin(t *testing.T) {
	cli := setup(t)
	testutil.CreateUser(t, repos.User, repos.Profile, "Taken", "taken@test.br", "Secret123", true)

	type extra struct {
		pwd, confirm string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"createadmin"}, wantErr: errHelp},
		{name: "name missing", args: []string{"createadmin", "-email", "root@test.br"}, wantErr: errHelp},
		{name: "weak password", args: []string{"createadmin", "-email", "root@test.br", "-name", "Root"}, extra: extra{"12345678", "12345678"}, wantFields: true},
		{name: "passwords differ", args: []string{"createadmin", "-email", "root@test.br", "-name", "Root"}, extra: extra{"Secret123", "Secret124"}, wantFields: true},
		{name: "email taken", args: []string{"createadmin", "-email", "TAKEN@test.br", "-name", "Root"}, extra: extra{"Secret123", "Secret123"}, wantErr: user.ErrEmailExists},
		{name: "created", args: []string{"createadmin", "-email", " Root@Test.br ", "-name", " Root "}, extra: extra{"Secret123", "Secret123"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		prompts := 0
		readPasswordFunc = func(int) ([]byte, error) {
			prompts++
			if extra, ok := tt.extra.(extra); ok {
				if prompts%2 == 1 {
					return []byte(extra.pwd), nil
				}
				return []byte(extra.confirm), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantFields {
				if _, ok := err.(validator.ValidationErrors); !ok {
					t.Errorf("cli.run() error = %v, want validator.ValidationErrors", err)
				}
				return
			}
			if tt.wantErr == user.ErrEmailExists {
				if verr, ok := err.(*core.ValidationError); !ok || verr.Err != user.ErrEmailExists {
					t.Errorf("cli.run() error = %v, want %v", err, user.ErrEmailExists)
				}
				return
			}
			checkErr(t, tt, err)
		})
	}

	usr, err := repos.User.GetUser(context.Background(), user.GetFilter{Email: "root@test.br"})
	if err != nil {
		t.Fatalf("GetUser() failed, %v", err)
	}
	if !usr.IsAdmin || !usr.IsActive {
		t.Errorf("admin flags = %v/%v; want true/true", usr.IsAdmin, usr.IsActive)
	}
	if err := usr.CheckPassword("Secret123"); err != nil {
		t.Errorf("CheckPassword() failed, %v", err)
	}
	p, err := repos.Profile.GetProfile(context.Background(), usr.ID)
	if err != nil || p.FullName != "Root" {
		t.Errorf("GetProfile() = %v, %v; want Root", p.FullName, err)
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, repos.User, repos.Profile, "User", "ana@test.br", "Secret123", true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.br"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.br"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: extra{pwd: "NewSecret1"}},
		{name: "reset with mixed case email", args: []string{"resetpassword", "-email", "ANA@test.br"}, extra: extra{pwd: "OtherSecret2"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := repos.User.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
				if err != nil {
					t.Fatalf("GetUser() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
				usr = refreshedUsr
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
