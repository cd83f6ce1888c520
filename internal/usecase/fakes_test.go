package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
	"github.com/InkyWorld/goit-web-hw-14/internal/core/port"
	"github.com/InkyWorld/goit-web-hw-14/internal/infra/security"
	"github.com/InkyWorld/goit-web-hw-14/internal/repository"
)

type fakeUserRepository struct {
	users  map[string]*domain.User
	nextID int64

	getErr            error
	getByEmailCalls   int
	updateTokenCalls  int
	markVerifiedCalls int
	updateAvatarCalls int
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: map[string]*domain.User{}}
}

func (f *fakeUserRepository) add(user domain.User) *domain.User {
	f.nextID++
	if user.ID == 0 {
		user.ID = f.nextID
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	f.users[user.Email] = &user
	return &user
}

func (f *fakeUserRepository) Create(_ context.Context, user domain.User) (*domain.User, error) {
	if _, ok := f.users[user.Email]; ok {
		return nil, repository.ErrConflict
	}
	created := f.add(user)
	copy := *created
	return &copy, nil
}

func (f *fakeUserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.getByEmailCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *u
	return &copy, nil
}

func (f *fakeUserRepository) UpdateRefreshToken(_ context.Context, id int64, token *string) error {
	f.updateTokenCalls++
	for _, u := range f.users {
		if u.ID == id {
			u.RefreshToken = token
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeUserRepository) MarkVerified(_ context.Context, email string) error {
	f.markVerifiedCalls++
	u, ok := f.users[email]
	if !ok {
		return repository.ErrNotFound
	}
	u.Verified = true
	return nil
}

func (f *fakeUserRepository) UpdateAvatar(_ context.Context, email string, url *string) (*domain.User, error) {
	f.updateAvatarCalls++
	u, ok := f.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.AvatarURL = url
	copy := *u
	return &copy, nil
}

type fakeSessionCache struct {
	entries map[string]domain.User

	getErr          error
	setErr          error
	getCalls        int
	setCalls        int
	invalidateCalls int
}

func newFakeSessionCache() *fakeSessionCache {
	return &fakeSessionCache{entries: map[string]domain.User{}}
}

func (f *fakeSessionCache) Get(_ context.Context, email string) (*domain.User, bool, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	u, ok := f.entries[email]
	if !ok {
		return nil, false, nil
	}
	return &u, true, nil
}

func (f *fakeSessionCache) Set(_ context.Context, user domain.User) error {
	f.setCalls++
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[user.Email] = user.Sanitized()
	return nil
}

func (f *fakeSessionCache) Invalidate(_ context.Context, email string) error {
	f.invalidateCalls++
	delete(f.entries, email)
	return nil
}

type fakeEventPublisher struct {
	registered   []domain.UserRegisteredEvent
	verification []domain.EmailVerificationRequestedEvent
	reused       []domain.RefreshTokenReusedEvent
	err          error
}

func (f *fakeEventPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	f.registered = append(f.registered, event)
	return f.err
}

func (f *fakeEventPublisher) PublishEmailVerificationRequested(_ context.Context, event domain.EmailVerificationRequestedEvent) error {
	f.verification = append(f.verification, event)
	return f.err
}

func (f *fakeEventPublisher) PublishRefreshTokenReused(_ context.Context, event domain.RefreshTokenReusedEvent) error {
	f.reused = append(f.reused, event)
	return f.err
}

// plainHasher keeps tests fast; argon2 is covered in the security package.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain$" + password, nil }

func (plainHasher) Verify(password, encoded string) (bool, error) {
	if !strings.HasPrefix(encoded, "plain$") {
		return false, errors.New("unexpected hash format")
	}
	return encoded == "plain$"+password, nil
}

type fakeContactRepository struct {
	contacts map[int64]domain.Contact
	nextID   int64

	listCalls      int
	getCalls       int
	birthdayCalls  int
	searchCalls    int
	lastSearchUser int64
	err            error
}

func newFakeContactRepository() *fakeContactRepository {
	return &fakeContactRepository{contacts: map[int64]domain.Contact{}}
}

func (f *fakeContactRepository) seed(ownerID int64, name string, birth time.Time) domain.Contact {
	f.nextID++
	c := domain.Contact{
		ID:        f.nextID,
		Name:      name,
		Surname:   "Doe",
		Email:     strings.ToLower(name) + "@example.com",
		Phone:     "0501234567",
		BirthDate: birth,
		OwnerID:   ownerID,
	}
	f.contacts[c.ID] = c
	return c
}

func (f *fakeContactRepository) owned(ownerID int64) []domain.Contact {
	out := make([]domain.Contact, 0)
	for _, c := range f.contacts {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeContactRepository) GetByID(_ context.Context, ownerID, id int64) (*domain.Contact, error) {
	f.getCalls++
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (f *fakeContactRepository) List(_ context.Context, ownerID int64, page domain.Page) ([]domain.Contact, error) {
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	all := f.owned(ownerID)
	if page.Offset >= len(all) {
		return []domain.Contact{}, nil
	}
	end := page.Offset + page.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[page.Offset:end], nil
}

func (f *fakeContactRepository) Search(_ context.Context, ownerID int64, filter domain.ContactFilter) ([]domain.Contact, error) {
	f.searchCalls++
	f.lastSearchUser = ownerID
	out := make([]domain.Contact, 0)
	for _, c := range f.owned(ownerID) {
		if filter.Name != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filter.Name)) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeContactRepository) ListBirthdays(_ context.Context, ownerID int64, window domain.BirthdayWindow) ([]domain.Contact, error) {
	f.birthdayCalls++
	return window.Filter(f.owned(ownerID)), nil
}

func (f *fakeContactRepository) Create(_ context.Context, ownerID int64, in domain.ContactInput) (*domain.Contact, error) {
	for _, c := range f.contacts {
		if c.Email == in.Email {
			return nil, repository.ErrConflict
		}
	}
	f.nextID++
	c := domain.Contact{
		ID:             f.nextID,
		Name:           in.Name,
		Surname:        in.Surname,
		Email:          in.Email,
		Phone:          in.Phone,
		BirthDate:      in.BirthDate,
		AdditionalInfo: in.AdditionalInfo,
		OwnerID:        ownerID,
	}
	f.contacts[c.ID] = c
	return &c, nil
}

func (f *fakeContactRepository) Update(_ context.Context, ownerID, id int64, in domain.ContactInput) (*domain.Contact, error) {
	c, ok := f.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	c.Name, c.Surname, c.Email, c.Phone = in.Name, in.Surname, in.Email, in.Phone
	c.BirthDate, c.AdditionalInfo = in.BirthDate, in.AdditionalInfo
	f.contacts[id] = c
	return &c, nil
}

func (f *fakeContactRepository) Delete(_ context.Context, ownerID, id int64) (*domain.Contact, error) {
	c, ok := f.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	delete(f.contacts, id)
	return &c, nil
}

type fakeContactCache struct {
	lists map[string][]domain.Contact
	ones  map[string]domain.Contact

	getErr      error
	setErr      error
	setCalls    int
	invalidated []string
}

func newFakeContactCache() *fakeContactCache {
	return &fakeContactCache{lists: map[string][]domain.Contact{}, ones: map[string]domain.Contact{}}
}

func (f *fakeContactCache) GetList(_ context.Context, key string) ([]domain.Contact, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	v, ok := f.lists[key]
	return v, ok, nil
}

func (f *fakeContactCache) SetList(_ context.Context, key string, contacts []domain.Contact) error {
	f.setCalls++
	if f.setErr != nil {
		return f.setErr
	}
	f.lists[key] = contacts
	return nil
}

func (f *fakeContactCache) GetOne(_ context.Context, key string) (*domain.Contact, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	v, ok := f.ones[key]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (f *fakeContactCache) SetOne(_ context.Context, key string, contact domain.Contact) error {
	f.setCalls++
	if f.setErr != nil {
		return f.setErr
	}
	f.ones[key] = contact
	return nil
}

func (f *fakeContactCache) Invalidate(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.lists, k)
		delete(f.ones, k)
	}
	f.invalidated = append(f.invalidated, keys...)
	return nil
}

type fakeAvatarStorage struct {
	url   string
	err   error
	calls int
	owner string
}

func (f *fakeAvatarStorage) UploadAvatar(_ context.Context, ownerEmail string, _ port.AvatarUpload) (string, error) {
	f.calls++
	f.owner = ownerEmail
	return f.url, f.err
}

func newTestTokens(t *testing.T) *security.TokenService {
	t.Helper()
	svc, err := security.NewTokenService(security.TokenConfig{Secret: "usecase-secret", Algorithm: "HS256"})
	if err != nil {
		t.Fatalf("NewTokenService returned error: %v", err)
	}
	return svc
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
