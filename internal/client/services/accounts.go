package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/yamaphone/internal/client/client"
	"github.com/dmitrijs2005/yamaphone/internal/client/models"
	validation "github.com/go-ozzo/ozzo-validation"
)

const sipAccountsPath = "/api/sip-accounts"

type AccountService interface {
	List(ctx context.Context) ([]models.SipAccount, error)
	Create(ctx context.Context, in models.SipAccountInput) error
	Update(ctx context.Context, id int64, in models.SipAccountInput) error
	Delete(ctx context.Context, id int64) error
}

type accountService struct {
	doer client.Doer
}

func NewAccountService(d client.Doer) AccountService {
	return &accountService{doer: d}
}

func validateAccount(in models.SipAccountInput) error {
	return validated(validation.ValidateStruct(&in,
		validation.Field(&in.SipURI, validation.Required, validation.By(sipURI)),
		validation.Field(&in.SipPassword, validation.Required),
		validation.Field(&in.RegisterExpiration, validation.Min(0)),
	))
}

func sipURI(v interface{}) error {
	s, _ := v.(string)
	if s != "" && !strings.HasPrefix(s, "sip:") && !strings.HasPrefix(s, "sips:") {
		return errors.New("must start with sip: or sips:")
	}
	return nil
}

func (s *accountService) List(ctx context.Context) ([]models.SipAccount, error) {
	accounts, err := client.Call[[]models.SipAccount](ctx, s.doer, http.MethodGet, sipAccountsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("list sip accounts: %w", err)
	}
	return accounts, nil
}

func (s *accountService) Create(ctx context.Context, in models.SipAccountInput) error {
	if err := validateAccount(in); err != nil {
		return err
	}
	if err := s.doer.Do(ctx, client.Request{Method: http.MethodPost, Path: sipAccountsPath, Body: in}, nil); err != nil {
		return fmt.Errorf("create sip account: %w", err)
	}
	return nil
}

func (s *accountService) Update(ctx context.Context, id int64, in models.SipAccountInput) error {
	if err := validID(id); err != nil {
		return err
	}
	if err := validateAccount(in); err != nil {
		return err
	}
	path := fmt.Sprintf("%s/%d", sipAccountsPath, id)
	if err := s.doer.Do(ctx, client.Request{Method: http.MethodPut, Path: path, Body: in}, nil); err != nil {
		return fmt.Errorf("update sip account %d: %w", id, err)
	}
	return nil
}

func (s *accountService) Delete(ctx context.Context, id int64) error {
	if err := validID(id); err != nil {
		return err
	}
	path := fmt.Sprintf("%s/%d", sipAccountsPath, id)
	if err := s.doer.Do(ctx, client.Request{Method: http.MethodDelete, Path: path}, nil); err != nil {
		return fmt.Errorf("delete sip account %d: %w", id, err)
	}
	return nil
}
