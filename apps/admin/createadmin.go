package main

import (
	"context"
	"fmt"

	"github.com/fitsenior/backend/core/user"
)

// createAdmin creates an active admin account along with its profile.
// The password policy of the API applies.
func (cli *commandLine) createAdmin(name, email, pwd, confirm string) error {
	ctx := context.Background()
	nu := user.NewUser{
		FullName:        name,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: confirm,
	}
	if err := nu.Validate(cli.validate, cli.usrSvc); err != nil {
		return err
	}
	usr, err := cli.usrSvc.CreateAdmin(ctx, nu)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "admin %s created\n", usr.Email)
	return nil
}
