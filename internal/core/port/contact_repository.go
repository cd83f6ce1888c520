package port

import (
	"context"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
)

// ContactRepository exposes owner-scoped persistence for contacts.
type ContactRepository interface {
	GetByID(ctx context.Context, ownerID, id int64) (*domain.Contact, error)
	List(ctx context.Context, ownerID int64, page domain.Page) ([]domain.Contact, error)
	Search(ctx context.Context, ownerID int64, filter domain.ContactFilter) ([]domain.Contact, error)
	ListBirthdays(ctx context.Context, ownerID int64, window domain.BirthdayWindow) ([]domain.Contact, error)
	Create(ctx context.Context, ownerID int64, input domain.ContactInput) (*domain.Contact, error)
	Update(ctx context.Context, ownerID, id int64, input domain.ContactInput) (*domain.Contact, error)
	Delete(ctx context.Context, ownerID, id int64) (*domain.Contact, error)
}
