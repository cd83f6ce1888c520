package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
	"github.com/InkyWorld/goit-web-hw-14/internal/core/port"
	"github.com/InkyWorld/goit-web-hw-14/internal/transport/http/middleware"
	"github.com/InkyWorld/goit-web-hw-14/internal/usecase"
)

type fakeAuth struct {
	signupIn     usecase.SignupInput
	signupUser   domain.User
	signupErr    error
	loginEmail   string
	loginPass    string
	pair         domain.TokenPair
	loginErr     error
	refreshToken string
	refreshErr   error
	confirmToken string
	confirmed    bool
	confirmErr   error
	requestHost  string
	requested    bool
	requestErr   error
}

func (f *fakeAuth) Signup(_ context.Context, in usecase.SignupInput) (domain.User, error) {
	f.signupIn = in
	return f.signupUser, f.signupErr
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (domain.TokenPair, error) {
	f.loginEmail, f.loginPass = email, password
	return f.pair, f.loginErr
}

func (f *fakeAuth) Refresh(_ context.Context, token, _ string) (domain.TokenPair, error) {
	f.refreshToken = token
	return f.pair, f.refreshErr
}

func (f *fakeAuth) ConfirmEmail(_ context.Context, token string) (bool, error) {
	f.confirmToken = token
	return f.confirmed, f.confirmErr
}

func (f *fakeAuth) RequestEmail(_ context.Context, _ string, host string) (bool, error) {
	f.requestHost = host
	return f.requested, f.requestErr
}

type fakeContacts struct {
	ownerID  int64
	page     domain.Page
	filter   domain.ContactFilter
	id       int64
	input    domain.ContactInput
	contact  domain.Contact
	contacts []domain.Contact
	err      error
}

func (f *fakeContacts) List(_ context.Context, ownerID int64, page domain.Page) ([]domain.Contact, error) {
	f.ownerID, f.page = ownerID, page
	return f.contacts, f.err
}

func (f *fakeContacts) Get(_ context.Context, ownerID, id int64) (domain.Contact, error) {
	f.ownerID, f.id = ownerID, id
	return f.contact, f.err
}

func (f *fakeContacts) Search(_ context.Context, ownerID int64, filter domain.ContactFilter) ([]domain.Contact, error) {
	f.ownerID, f.filter = ownerID, filter
	return f.contacts, f.err
}

func (f *fakeContacts) Birthdays(_ context.Context, ownerID int64) ([]domain.Contact, error) {
	f.ownerID = ownerID
	return f.contacts, f.err
}

func (f *fakeContacts) Create(_ context.Context, ownerID int64, in domain.ContactInput) (domain.Contact, error) {
	f.ownerID, f.input = ownerID, in
	return f.contact, f.err
}

func (f *fakeContacts) Update(_ context.Context, ownerID, id int64, in domain.ContactInput) (domain.Contact, error) {
	f.ownerID, f.id, f.input = ownerID, id, in
	return f.contact, f.err
}

func (f *fakeContacts) Delete(_ context.Context, ownerID, id int64) (domain.Contact, error) {
	f.ownerID, f.id = ownerID, id
	return f.contact, f.err
}

type fakeProfiles struct {
	email  string
	body   string
	upload port.AvatarUpload
	user   domain.User
	err    error
}

func (f *fakeProfiles) UpdateAvatar(_ context.Context, email string, upload port.AvatarUpload) (domain.User, error) {
	f.email, f.upload = email, upload
	raw, _ := io.ReadAll(upload.Body)
	f.body = string(raw)
	return f.user, f.err
}

// withPrincipal stands in for middleware.RequireAuth.
func withPrincipal(user domain.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.PrincipalKey, user)
		c.Set(middleware.UserIDKey, user.ID)
		c.Next()
	}
}

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.EnrichContext())
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return out
}
