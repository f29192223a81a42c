package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/yamaphone/internal/client/client"
	"github.com/dmitrijs2005/yamaphone/internal/client/models"
	validation "github.com/go-ozzo/ozzo-validation"
)

const contactsPath = "/api/contacts"

type ContactService interface {
	List(ctx context.Context) ([]models.Contact, error)
	Create(ctx context.Context, in models.ContactInput) error
	Update(ctx context.Context, id int64, in models.ContactInput) error
	Delete(ctx context.Context, id int64) error
	// ToggleFavorite flips the favorite flag by rewriting the whole contact.
	ToggleFavorite(ctx context.Context, c models.Contact) error
}

type contactService struct {
	doer   client.Doer
	region string
}

// NewContactService returns a ContactService. region is the ISO country
// code used to read national phone numbers; empty accepts only
// international ones and extensions.
func NewContactService(d client.Doer, region string) ContactService {
	return &contactService{doer: d, region: region}
}

// normalize validates in and rewrites its phone number to canonical form.
func (s *contactService) normalize(in models.ContactInput) (models.ContactInput, error) {
	err := validated(validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.PhoneNumber, validation.Required),
	))
	if err != nil {
		return in, err
	}
	phone, err := NormalizePhone(in.PhoneNumber, s.region)
	if err != nil {
		return in, validated(validation.Errors{"phone_number": err})
	}
	in.PhoneNumber = phone
	return in, nil
}

func (s *contactService) List(ctx context.Context) ([]models.Contact, error) {
	contacts, err := client.Call[[]models.Contact](ctx, s.doer, http.MethodGet, contactsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

func (s *contactService) Create(ctx context.Context, in models.ContactInput) error {
	in, err := s.normalize(in)
	if err != nil {
		return err
	}
	if err := s.doer.Do(ctx, client.Request{Method: http.MethodPost, Path: contactsPath, Body: in}, nil); err != nil {
		return fmt.Errorf("create contact: %w", err)
	}
	return nil
}

func (s *contactService) Update(ctx context.Context, id int64, in models.ContactInput) error {
	if err := validID(id); err != nil {
		return err
	}
	in, err := s.normalize(in)
	if err != nil {
		return err
	}
	path := fmt.Sprintf("%s/%d", contactsPath, id)
	if err := s.doer.Do(ctx, client.Request{Method: http.MethodPut, Path: path, Body: in}, nil); err != nil {
		return fmt.Errorf("update contact %d: %w", id, err)
	}
	return nil
}

func (s *contactService) Delete(ctx context.Context, id int64) error {
	if err := validID(id); err != nil {
		return err
	}
	path := fmt.Sprintf("%s/%d", contactsPath, id)
	if err := s.doer.Do(ctx, client.Request{Method: http.MethodDelete, Path: path}, nil); err != nil {
		return fmt.Errorf("delete contact %d: %w", id, err)
	}
	return nil
}

func (s *contactService) ToggleFavorite(ctx context.Context, c models.Contact) error {
	return s.Update(ctx, c.ID, models.ContactInput{
		Name:        c.Name,
		PhoneNumber: c.PhoneNumber,
		IsFavorite:  !c.IsFavorite,
	})
}
