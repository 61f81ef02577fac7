package main

import (
	"context"
	"time"

	"github.com/somalabs/soma/core"
	"github.com/somalabs/soma/core/account"
)

// addAccount updates or creates an account.User
func (cli *commandLine) addAccount(email, name, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	name = core.CleanString(name)
	now := time.Now().UTC()

	usr, err := cli.accountRepo.GetAccount(ctx, account.GetFilter{Email: email})
	if err != nil {
		if err != account.ErrNotFound {
			return err
		}
		usr = account.User{
			Email:     email,
			CreatedAt: now,
		}
	}
	if name != "" {
		usr.Name = name
	}
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = now

	if usr.ID == "" {
		_, err = cli.accountRepo.CreateAccount(ctx, usr)
	} else {
		_, err = cli.accountRepo.UpdateAccount(ctx, usr)
	}
	return err
}
