package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
	"github.com/InkyWorld/goit-web-hw-14/internal/repository"
	"github.com/InkyWorld/goit-web-hw-14/internal/usecase"
)

func newContactEngine(contacts *fakeContacts) *gin.Engine {
	r := newTestEngine()
	NewContactHandler(contacts).RegisterRoutes(r.Group("/api/contacts"), withPrincipal(domain.User{ID: 7, Email: "owner@example.com"}))
	return r
}

func sampleContact() domain.Contact {
	info := "met at conference"
	return domain.Contact{
		ID:             3,
		Name:           "Ann",
		Surname:        "Lee",
		Email:          "ann@example.com",
		Phone:          "0501234567",
		BirthDate:      time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC),
		AdditionalInfo: &info,
		OwnerID:        7,
	}
}

func TestListContactsPassesOwnerAndPage(t *testing.T) {
	contacts := &fakeContacts{contacts: []domain.Contact{sampleContact()}}
	r := newContactEngine(contacts)

	rr := doJSON(t, r, http.MethodGet, "/api/contacts?limit=20&offset=40", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if contacts.ownerID != 7 || contacts.page != (domain.Page{Limit: 20, Offset: 40}) {
		t.Fatalf("unexpected owner=%d page=%+v", contacts.ownerID, contacts.page)
	}

	body := decode[[]ContactResponse](t, rr)
	if len(body) != 1 || body[0].DateOfBirth != "1990-06-15" || *body[0].AdditionalInfo != "met at conference" {
		t.Fatalf("unexpected body %+v", body)
	}

	doJSON(t, r, http.MethodGet, "/api/contacts", nil)
	if contacts.page != (domain.Page{Limit: usecase.DefaultListLimit}) {
		t.Fatalf("expected default page, got %+v", contacts.page)
	}
}

func TestListContactsRejectsBadQuery(t *testing.T) {
	r := newContactEngine(&fakeContacts{})

	for _, path := range []string{"/api/contacts?limit=abc", "/api/contacts?limit=0", "/api/contacts?offset=x"} {
		rr := doJSON(t, r, http.MethodGet, path, nil)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: expected 422, got %d", path, rr.Code)
		}
	}
}

func TestSearchContactsMapsQuery(t *testing.T) {
	contacts := &fakeContacts{}
	r := newContactEngine(contacts)

	rr := doJSON(t, r, http.MethodGet, "/api/contacts/search?first_name=an&last_name=le&email=example", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if contacts.filter != (domain.ContactFilter{Name: "an", Surname: "le", Email: "example"}) {
		t.Fatalf("unexpected filter %+v", contacts.filter)
	}
	if body := decode[[]ContactResponse](t, rr); len(body) != 0 {
		t.Fatalf("expected empty array, got %+v", body)
	}
}

func TestBirthdaysEmptyWindowIsNotFound(t *testing.T) {
	r := newContactEngine(&fakeContacts{err: usecase.ErrNoUpcomingBirthdays})

	rr := doJSON(t, r, http.MethodGet, "/api/contacts/birthdays", nil)
	if rr.Code != http.StatusNotFound || decode[ErrorResponse](t, rr).Detail != "No upcoming birthdays found" {
		t.Fatalf("unexpected response %d %s", rr.Code, rr.Body.String())
	}
}

func TestGetContact(t *testing.T) {
	contacts := &fakeContacts{contact: sampleContact()}
	r := newContactEngine(contacts)

	rr := doJSON(t, r, http.MethodGet, "/api/contacts/3", nil)
	if rr.Code != http.StatusOK || contacts.id != 3 {
		t.Fatalf("unexpected response %d id=%d", rr.Code, contacts.id)
	}

	if rr := doJSON(t, r, http.MethodGet, "/api/contacts/zero", nil); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("non numeric id: expected 422, got %d", rr.Code)
	}

	contacts.err = usecase.ErrContactNotFound
	rr = doJSON(t, r, http.MethodGet, "/api/contacts/99", nil)
	if rr.Code != http.StatusNotFound || decode[ErrorResponse](t, rr).Detail != "Contact not found" {
		t.Fatalf("missing contact: %d %s", rr.Code, rr.Body.String())
	}
}

func TestCorruptCacheEntryIsInternalError(t *testing.T) {
	err := &repository.DecodeError{Key: "contact:user=7:pk=3", Err: fmt.Errorf("unexpected end of JSON input")}
	r := newContactEngine(&fakeContacts{err: err})

	rr := doJSON(t, r, http.MethodGet, "/api/contacts/3", nil)
	if rr.Code != http.StatusInternalServerError || decode[ErrorResponse](t, rr).Detail != "Internal server error" {
		t.Fatalf("unexpected response %d %s", rr.Code, rr.Body.String())
	}
}

func TestCreateContact(t *testing.T) {
	contacts := &fakeContacts{contact: sampleContact()}
	r := newContactEngine(contacts)

	payload := ContactRequest{
		Name:        "Ann",
		Surname:     "Lee",
		Email:       "ann@example.com",
		Phone:       "0501234567",
		DateOfBirth: "1990-06-15",
	}
	rr := doJSON(t, r, http.MethodPost, "/api/contacts", payload)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if !contacts.input.BirthDate.Equal(sampleContact().BirthDate) || contacts.input.AdditionalInfo != nil {
		t.Fatalf("unexpected input %+v", contacts.input)
	}

	payload.DateOfBirth = "15.06.1990"
	rr = doJSON(t, r, http.MethodPost, "/api/contacts", payload)
	if rr.Code != http.StatusUnprocessableEntity || decode[ValidationErrorResponse](t, rr).Field != "date_of_birth" {
		t.Fatalf("bad date: %d %s", rr.Code, rr.Body.String())
	}

	payload.DateOfBirth = "1990-06-15"
	contacts.err = usecase.ErrContactExists
	rr = doJSON(t, r, http.MethodPost, "/api/contacts", payload)
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", rr.Code)
	}
}

func TestUpdateAndDeleteContact(t *testing.T) {
	contacts := &fakeContacts{contact: sampleContact()}
	r := newContactEngine(contacts)

	payload := ContactRequest{Name: "Ann", Surname: "Lee", Email: "ann@example.com", Phone: "0501234567", DateOfBirth: "1990-06-15"}
	if rr := doJSON(t, r, http.MethodPut, "/api/contacts/3", payload); rr.Code != http.StatusOK || contacts.id != 3 {
		t.Fatalf("update: %d id=%d", rr.Code, contacts.id)
	}

	rr := doJSON(t, r, http.MethodDelete, "/api/contacts/3", nil)
	if rr.Code != http.StatusOK || decode[ContactResponse](t, rr).ID != 3 {
		t.Fatalf("delete: %d %s", rr.Code, rr.Body.String())
	}

	contacts.err = usecase.ErrContactNotFound
	if rr := doJSON(t, r, http.MethodDelete, "/api/contacts/4", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("delete missing: expected 404, got %d", rr.Code)
	}
}
