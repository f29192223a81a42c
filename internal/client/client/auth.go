package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/yamaphone/internal/client/models"
	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	loginPath    = "/api/login"
	registerPath = "/api/register"
	mePath       = "/api/me"
)

// AuthAPI wraps the three authentication endpoints of the backend.
type AuthAPI struct {
	doer Doer
}

func NewAuthAPI(d Doer) *AuthAPI {
	return &AuthAPI{doer: d}
}

// ValidateCredentials rejects empty usernames or passwords with ErrValidation.
func ValidateCredentials(c models.Credentials) error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Username, validation.Required),
		validation.Field(&c.Password, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	return nil
}

// Login exchanges username and password for a credential and identity.
func (a *AuthAPI) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	return a.authenticate(ctx, loginPath, models.Credentials{Username: username, Password: password})
}

// Register creates an account; a successful registration is also a login.
func (a *AuthAPI) Register(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	return a.authenticate(ctx, registerPath, models.Credentials{Username: username, Password: password})
}

func (a *AuthAPI) authenticate(ctx context.Context, path string, creds models.Credentials) (*models.AuthResponse, error) {
	if err := ValidateCredentials(creds); err != nil {
		return nil, err
	}

	var resp models.AuthResponse
	err := a.doer.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: creds}, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
			apiErr.Kind = ErrInvalidCredentials
		}
		return nil, err
	}

	if resp.Token == "" || resp.User == nil {
		return nil, &APIError{Op: http.MethodPost + " " + path, Kind: ErrTransport, Message: "response without token or user"}
	}
	return &resp, nil
}

// Me resolves the identity behind token. The token is sent explicitly, so
// this works before any session is established.
func (a *AuthAPI) Me(ctx context.Context, token string) (*models.Identity, error) {
	h := http.Header{}
	h.Set("Authorization", BearerHeader(token))

	var resp models.MeResponse
	if err := a.doer.Do(ctx, Request{Method: http.MethodGet, Path: mePath, Header: h}, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, &APIError{Op: http.MethodGet + " " + mePath, Kind: ErrSessionInvalid, Message: "response without user"}
	}
	return resp.User, nil
}
