package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/onboarding/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// orPrompt returns v, or asks for it when empty.
func (a *App) orPrompt(v, prompt string) (string, error) {
	if v != "" {
		return v, nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}

func (a *App) Signup(ctx context.Context, name, email string) error {
	name, err := a.orPrompt(name, "Name")
	if err != nil {
		return err
	}
	email, err = a.orPrompt(email, "Email")
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	user, err := a.api.Signup(ctx, name, email, password)
	if err != nil {
		return explain(err)
	}
	a.printf("Welcome, %s! You are signed in as %s.\n", user.Name, user.Email)
	return nil
}

func (a *App) Login(ctx context.Context, email string) error {
	email, err := a.orPrompt(email, "Email")
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	user, err := a.api.Login(ctx, email, password)
	if err != nil {
		return explain(err)
	}
	a.printf("Signed in as %s.\n", user.Email)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.api.Logout(ctx); err != nil {
		return err
	}
	a.printf("Signed out.\n")
	return nil
}

func (a *App) Me(ctx context.Context) error {
	user, err := a.api.Me(ctx)
	if err != nil {
		return explain(err)
	}
	a.printf("id:    %s\nname:  %s\nemail: %s\n", user.ID, user.Name, user.Email)
	return nil
}

// explain turns session errors into an instruction for the user.
func explain(err error) error {
	if errors.Is(err, common.ErrSessionExpired) {
		return fmt.Errorf("not signed in or session expired, run `onboard login`: %w", err)
	}
	return err
}
