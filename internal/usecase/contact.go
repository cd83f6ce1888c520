package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
	"github.com/InkyWorld/goit-web-hw-14/internal/core/port"
	"github.com/InkyWorld/goit-web-hw-14/internal/repository"
)

const (
	// DefaultListLimit is applied when the caller does not pass a limit.
	DefaultListLimit = 10
	MinListLimit     = 2
	MaxListLimit     = 500

	maxContactNameLength  = 100
	maxContactEmailLength = 100
	maxAdditionalInfo     = 255
)

var phonePattern = regexp.MustCompile(`^((\+?38)[-\s(.]?\d{3}[-\s).]?|[.(]?0\d{2}[.)]?)?[-\s.]?\d{3}[-\s.]?\d{2}[-\s.]?\d{2}$`)

// ListKey is the cache fingerprint of one page of an owner's contacts.
func ListKey(ownerID int64, page domain.Page) string {
	return "contacts:user=" + strconv.FormatInt(ownerID, 10) +
		":limit=" + strconv.Itoa(page.Limit) +
		":offset=" + strconv.Itoa(page.Offset)
}

// ContactKey is the cache fingerprint of a single owned contact.
func ContactKey(ownerID, id int64) string {
	return "contact:user=" + strconv.FormatInt(ownerID, 10) + ":pk=" + strconv.FormatInt(id, 10)
}

// BirthdaysKey is the cache fingerprint of an owner's birthday window starting at day.
func BirthdaysKey(ownerID int64, day time.Time) string {
	return "birthdays:user=" + strconv.FormatInt(ownerID, 10) + ":date=" + day.Format(domain.DateLayout)
}

// ContactService serves owner-scoped contact operations with cache-aside reads.
type ContactService struct {
	contacts port.ContactRepository
	cache    port.ContactCache
	logger   *zap.Logger
	now      func() time.Time
}

// NewContactService constructs a ContactService. cache may be nil.
func NewContactService(contacts port.ContactRepository, cache port.ContactCache, logger *zap.Logger) *ContactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{
		contacts: contacts,
		cache:    cache,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the internal clock for deterministic tests.
func (s *ContactService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// List returns one page of the owner's contacts ordered by id.
func (s *ContactService) List(ctx context.Context, ownerID int64, page domain.Page) ([]domain.Contact, error) {
	if page.Limit == 0 {
		page.Limit = DefaultListLimit
	}
	if page.Limit < MinListLimit || page.Limit > MaxListLimit {
		return nil, invalid("limit", "limit must be between %d and %d", MinListLimit, MaxListLimit)
	}
	if page.Offset < 0 {
		return nil, invalid("offset", "offset must be greater than or equal to 0")
	}

	key := ListKey(ownerID, page)
	if contacts, ok, err := s.cachedList(ctx, key); err != nil {
		return nil, err
	} else if ok {
		return contacts, nil
	}

	contacts, err := s.contacts.List(ctx, ownerID, page)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	s.storeList(ctx, key, contacts)
	return contacts, nil
}

// Get returns the owner's contact with id.
func (s *ContactService) Get(ctx context.Context, ownerID, id int64) (domain.Contact, error) {
	key := ContactKey(ownerID, id)
	if s.cache != nil {
		cached, ok, err := s.cache.GetOne(ctx, key)
		switch {
		case err != nil && errors.Is(err, repository.ErrDecode):
			return domain.Contact{}, err
		case err != nil:
			s.logger.Warn("contact cache read failed, falling back to database", zap.String("key", key), zap.Error(err))
		case ok:
			return *cached, nil
		}
	}

	contact, err := s.contacts.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Contact{}, ErrContactNotFound
		}
		return domain.Contact{}, fmt.Errorf("get contact: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetOne(ctx, key, *contact); err != nil {
			s.logger.Warn("contact cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return *contact, nil
}

// Search matches the owner's contacts by partial, case-insensitive terms.
// Results are not cached.
func (s *ContactService) Search(ctx context.Context, ownerID int64, filter domain.ContactFilter) ([]domain.Contact, error) {
	contacts, err := s.contacts.Search(ctx, ownerID, filter.Trim())
	if err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}
	return contacts, nil
}

// Birthdays returns the owner's contacts whose birthday falls within the
// next seven days. An empty window is reported as ErrNoUpcomingBirthdays.
func (s *ContactService) Birthdays(ctx context.Context, ownerID int64) ([]domain.Contact, error) {
	window := domain.NewBirthdayWindow(s.now())
	key := BirthdaysKey(ownerID, window.Today)

	if contacts, ok, err := s.cachedList(ctx, key); err != nil {
		return nil, err
	} else if ok && len(contacts) > 0 {
		return contacts, nil
	}

	contacts, err := s.contacts.ListBirthdays(ctx, ownerID, window)
	if err != nil {
		return nil, fmt.Errorf("list birthdays: %w", err)
	}
	if len(contacts) == 0 {
		return nil, ErrNoUpcomingBirthdays
	}
	s.storeList(ctx, key, contacts)
	return contacts, nil
}

// Create validates in and stores it as a new contact of the owner.
func (s *ContactService) Create(ctx context.Context, ownerID int64, in domain.ContactInput) (domain.Contact, error) {
	in, err := ValidateContactInput(in)
	if err != nil {
		return domain.Contact{}, err
	}

	contact, err := s.contacts.Create(ctx, ownerID, in)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.Contact{}, ErrContactExists
		}
		return domain.Contact{}, fmt.Errorf("create contact: %w", err)
	}
	return *contact, nil
}

// Update replaces every writable field of the owner's contact.
func (s *ContactService) Update(ctx context.Context, ownerID, id int64, in domain.ContactInput) (domain.Contact, error) {
	in, err := ValidateContactInput(in)
	if err != nil {
		return domain.Contact{}, err
	}

	contact, err := s.contacts.Update(ctx, ownerID, id, in)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return domain.Contact{}, ErrContactNotFound
		case errors.Is(err, repository.ErrConflict):
			return domain.Contact{}, ErrContactExists
		}
		return domain.Contact{}, fmt.Errorf("update contact: %w", err)
	}
	s.evict(ctx, ContactKey(ownerID, id))
	return *contact, nil
}

// Delete removes the owner's contact and returns it.
func (s *ContactService) Delete(ctx context.Context, ownerID, id int64) (domain.Contact, error) {
	contact, err := s.contacts.Delete(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Contact{}, ErrContactNotFound
		}
		return domain.Contact{}, fmt.Errorf("delete contact: %w", err)
	}
	s.evict(ctx, ContactKey(ownerID, id))
	return *contact, nil
}

// ValidateContactInput trims in and checks every field constraint.
func ValidateContactInput(in domain.ContactInput) (domain.ContactInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Surname = strings.TrimSpace(in.Surname)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	for _, f := range []struct{ field, value string }{{"name", in.Name}, {"surname", in.Surname}} {
		n := utf8.RuneCountInString(f.value)
		if n == 0 || n > maxContactNameLength {
			return in, invalid(f.field, "%s must be between 1 and %d characters", f.field, maxContactNameLength)
		}
	}
	if err := validateEmail(in.Email, maxContactEmailLength); err != nil {
		return in, err
	}
	if !phonePattern.MatchString(in.Phone) {
		return in, invalid("phone", "value does not match the phone number format")
	}
	if in.BirthDate.IsZero() {
		return in, invalid("date_of_birth", "date_of_birth is required")
	}
	if in.AdditionalInfo != nil && utf8.RuneCountInString(*in.AdditionalInfo) > maxAdditionalInfo {
		return in, invalid("additional_info", "additional_info must be at most %d characters", maxAdditionalInfo)
	}
	return in, nil
}

func (s *ContactService) cachedList(ctx context.Context, key string) ([]domain.Contact, bool, error) {
	if s.cache == nil {
		return nil, false, nil
	}
	contacts, ok, err := s.cache.GetList(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrDecode) {
			return nil, false, err
		}
		s.logger.Warn("contact cache read failed, falling back to database", zap.String("key", key), zap.Error(err))
		return nil, false, nil
	}
	return contacts, ok, nil
}

func (s *ContactService) storeList(ctx context.Context, key string, contacts []domain.Contact) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetList(ctx, key, contacts); err != nil {
		s.logger.Warn("contact cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *ContactService) evict(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.logger.Warn("contact cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
}
