package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/yamaphone/internal/client/client"
	"github.com/dmitrijs2005/yamaphone/internal/client/models"
	"github.com/dmitrijs2005/yamaphone/internal/client/session"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

type authCall func(ctx context.Context, username, password string) (*models.Identity, error)

// Login prompts for credentials and opens a session.
func (a *App) Login(ctx context.Context) error {
	return a.authenticate(ctx, "Logged in as", a.session.Login)
}

// Register prompts for credentials, creates the account and opens a session.
func (a *App) Register(ctx context.Context) error {
	return a.authenticate(ctx, "Registered and logged in as", a.session.Register)
}

func (a *App) authenticate(ctx context.Context, greeting string, call authCall) error {
	if id := a.session.Identity(); id != nil {
		a.println("Already logged in as", id.Username)
		return nil
	}

	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	id, err := call(ctx, username, string(password))
	if err != nil {
		return a.report(err)
	}
	a.println(greeting, id.Username)
	return nil
}

// Logout ends the session and forgets the stored credential.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	a.println("Logged out")
	return nil
}

// WhoAmI prints the current identity.
func (a *App) WhoAmI(ctx context.Context) error {
	id := a.session.Identity()
	if id == nil {
		a.println("Not logged in")
		return nil
	}
	role := "user"
	if id.IsAdmin {
		role = "admin"
	}
	a.printf("%s (id %d, %s)\n", id.Username, id.ID, role)
	return nil
}

// report prints a user-facing message for err and returns it unchanged.
func (a *App) report(err error) error {
	if err == nil {
		return nil
	}
	a.println(describe(err))
	return err
}

func describe(err error) string {
	switch {
	case errors.Is(err, client.ErrSessionInvalid):
		return "Your session has expired or was revoked. Please log in again."
	case errors.Is(err, client.ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, client.ErrValidation):
		return "Invalid input: " + err.Error()
	case errors.Is(err, client.ErrTransport):
		return "Backend unavailable, try again later."
	case errors.Is(err, client.ErrForbidden):
		return "You are not allowed to do that."
	case errors.Is(err, client.ErrNotFound):
		return "Not found."
	case errors.Is(err, session.ErrBusy):
		return "Another login is already in progress."
	default:
		return "Error: " + err.Error()
	}
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
