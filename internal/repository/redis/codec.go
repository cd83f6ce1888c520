package redis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
)

// ContactPayload is the cached JSON shape of a contact.
type ContactPayload struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Surname        string  `json:"surname"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	BirthDate      string  `json:"date_of_birth"`
	AdditionalInfo *string `json:"additional_info"`
	OwnerID        int64   `json:"user_id"`
	CreatedAt      *string `json:"created_at,omitempty"`
	UpdatedAt      *string `json:"updated_at,omitempty"`
}

// UserPayload is the cached session snapshot of a principal. Secrets are not cached.
type UserPayload struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Verified  bool    `json:"verified"`
	AvatarURL *string `json:"avatar"`
	Role      string  `json:"role"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// ToSerializable converts c into its cached form.
func ToSerializable(c domain.Contact) ContactPayload {
	return ContactPayload{
		ID:             c.ID,
		Name:           c.Name,
		Surname:        c.Surname,
		Email:          c.Email,
		Phone:          c.Phone,
		BirthDate:      c.BirthDate.Format(domain.DateLayout),
		AdditionalInfo: c.AdditionalInfo,
		OwnerID:        c.OwnerID,
		CreatedAt:      formatTimestamp(c.CreatedAt),
		UpdatedAt:      formatTimestamp(c.UpdatedAt),
	}
}

// FromSerializable validates p and builds a contact from it.
func FromSerializable(p ContactPayload) (domain.Contact, error) {
	switch {
	case p.ID <= 0:
		return domain.Contact{}, errors.New("contact id must be positive")
	case p.OwnerID <= 0:
		return domain.Contact{}, errors.New("contact user_id must be positive")
	case strings.TrimSpace(p.Name) == "":
		return domain.Contact{}, errors.New("contact name is required")
	case strings.TrimSpace(p.Surname) == "":
		return domain.Contact{}, errors.New("contact surname is required")
	case strings.TrimSpace(p.Email) == "":
		return domain.Contact{}, errors.New("contact email is required")
	case strings.TrimSpace(p.Phone) == "":
		return domain.Contact{}, errors.New("contact phone is required")
	}

	birth, err := domain.ParseDate(p.BirthDate)
	if err != nil {
		return domain.Contact{}, fmt.Errorf("contact date_of_birth: %w", err)
	}
	createdAt, err := parseTimestamp(p.CreatedAt)
	if err != nil {
		return domain.Contact{}, fmt.Errorf("contact created_at: %w", err)
	}
	updatedAt, err := parseTimestamp(p.UpdatedAt)
	if err != nil {
		return domain.Contact{}, fmt.Errorf("contact updated_at: %w", err)
	}

	return domain.Contact{
		ID:             p.ID,
		Name:           p.Name,
		Surname:        p.Surname,
		Email:          p.Email,
		Phone:          p.Phone,
		BirthDate:      birth,
		AdditionalInfo: p.AdditionalInfo,
		OwnerID:        p.OwnerID,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}

// UserToSerializable converts u into its session snapshot.
func UserToSerializable(u domain.User) UserPayload {
	return UserPayload{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Verified:  u.Verified,
		AvatarURL: u.AvatarURL,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: u.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// UserFromSerializable validates p and builds a principal from it.
func UserFromSerializable(p UserPayload) (domain.User, error) {
	if p.ID <= 0 {
		return domain.User{}, errors.New("user id must be positive")
	}
	if strings.TrimSpace(p.Email) == "" {
		return domain.User{}, errors.New("user email is required")
	}
	role := domain.Role(p.Role)
	if !role.Valid() {
		return domain.User{}, fmt.Errorf("user role %q is unknown", p.Role)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, p.CreatedAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("user created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, p.UpdatedAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("user updated_at: %w", err)
	}

	return domain.User{
		ID:        p.ID,
		Username:  p.Username,
		Email:     p.Email,
		Verified:  p.Verified,
		AvatarURL: p.AvatarURL,
		Role:      role,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// decodeStrict unmarshals raw into dst rejecting unknown fields and trailing data.
func decodeStrict(raw []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected trailing data")
	}
	return nil
}

func formatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}

func parseTimestamp(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
