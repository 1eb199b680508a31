package commands

import (
	"context"
	"errors"

	"github.com/mcoot/arenactl/internal/command"
	"github.com/mcoot/arenactl/internal/policy"
	"github.com/mcoot/arenactl/internal/services/auth"
)

func loginCommand(deps Deps) command.Command {
	return command.Command{
		Name:        "login",
		Usage:       "/login <password>",
		Help:        "Log in to a privileged account",
		Category:    command.CategoryAccount,
		Requirement: policy.Anyone,
		Handler: func(ctx context.Context, inv *command.Invocation) error {
			acc, err := deps.Auth.Login(ctx, inv.Session, inv.Arg(0))
			switch {
			case errors.Is(err, auth.ErrMissingPassword):
				return command.Argf("password", "missing password argument!")
			case errors.Is(err, auth.ErrLoginFailed):
				return command.Fail(command.OutcomeLoginFailed, "ERROR: login failed!", err)
			case err != nil:
				return err
			}
			inv.Reply("Login done as " + acc.Name)
			return nil
		},
	}
}

func logoutCommand(deps Deps) command.Command {
	return command.Command{
		Name:        "logout",
		Usage:       "/logout",
		Help:        "Drop back to guest",
		Category:    command.CategoryAccount,
		Requirement: policy.Anyone,
		Handler: func(ctx context.Context, inv *command.Invocation) error {
			if _, err := deps.Auth.Logout(ctx, inv.Session); err != nil {
				if errors.Is(err, auth.ErrNotLoggedIn) {
					return command.Fail(command.OutcomeRejected, "ERROR: not logged in", err)
				}
				return err
			}
			inv.Reply("Logout done")
			return nil
		},
	}
}
