package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/yamaphone/internal/client/client"
	"github.com/dmitrijs2005/yamaphone/internal/client/models"
	validation "github.com/go-ozzo/ozzo-validation"
)

const usersPath = "/api/users"

// UserService administers console users. The backend only serves it to
// admins; a non-admin gets client.ErrForbidden.
type UserService interface {
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, in models.UserInput) error
	Delete(ctx context.Context, id int64) error
}

type userService struct {
	doer client.Doer
}

func NewUserService(d client.Doer) UserService {
	return &userService{doer: d}
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	users, err := client.Call[[]models.User](ctx, s.doer, http.MethodGet, usersPath, nil)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *userService) Create(ctx context.Context, in models.UserInput) error {
	err := validated(validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.Required),
		validation.Field(&in.Password, validation.Required),
	))
	if err != nil {
		return err
	}
	if err := s.doer.Do(ctx, client.Request{Method: http.MethodPost, Path: usersPath, Body: in}, nil); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	if err := validID(id); err != nil {
		return err
	}
	path := fmt.Sprintf("%s/%d", usersPath, id)
	if err := s.doer.Do(ctx, client.Request{Method: http.MethodDelete, Path: path}, nil); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}
