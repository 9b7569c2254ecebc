package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/visado/backend/core"
	"github.com/visado/backend/core/user"
)

// addUser creates or updates a super admin user.User.
func (cli *commandLine) addUser(uname, email, pwd string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, uname)
	if err != nil && errors.Cause(err) != user.ErrNotFound {
		return err
	}
	if errors.Cause(err) == user.ErrNotFound {
		if usr, err = cli.usrRepo.GetUserByUsernameOrEmail(ctx, email); err != nil && errors.Cause(err) != user.ErrNotFound {
			return err
		}
	}

	now := time.Now().UTC()
	if usr.ID == "" {
		usr = user.User{
			Name:      uname,
			Username:  uname,
			Email:     email,
			CreatedAt: now,
		}
	}
	usr.Roles = []string{user.RoleSuperAdmin}
	usr.UpdatedAt = now
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	if usr.ID == "" {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		isActive := true
		_, err = cli.usrRepo.UpdateUser(ctx, usr, &isActive)
	}
	return err
}
