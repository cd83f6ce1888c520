package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
	"github.com/InkyWorld/goit-web-hw-14/internal/transport/http/middleware"
	"github.com/InkyWorld/goit-web-hw-14/internal/usecase"
)

// ContactUsecase is the owner-scoped address book consumed by ContactHandler.
type ContactUsecase interface {
	List(ctx context.Context, ownerID int64, page domain.Page) ([]domain.Contact, error)
	Get(ctx context.Context, ownerID, id int64) (domain.Contact, error)
	Search(ctx context.Context, ownerID int64, filter domain.ContactFilter) ([]domain.Contact, error)
	Birthdays(ctx context.Context, ownerID int64) ([]domain.Contact, error)
	Create(ctx context.Context, ownerID int64, in domain.ContactInput) (domain.Contact, error)
	Update(ctx context.Context, ownerID, id int64, in domain.ContactInput) (domain.Contact, error)
	Delete(ctx context.Context, ownerID, id int64) (domain.Contact, error)
}

var contactCases = []ErrorCase{
	{Err: usecase.ErrContactNotFound, Status: http.StatusNotFound, Message: "Contact not found"},
	{Err: usecase.ErrNoUpcomingBirthdays, Status: http.StatusNotFound, Message: "No upcoming birthdays found"},
	{Err: usecase.ErrContactExists, Status: http.StatusConflict, Message: "Contact already exists"},
}

// ContactHandler exposes the contact endpoints. Every route expects
// middleware.RequireAuth ahead of it.
type ContactHandler struct {
	contacts ContactUsecase
}

// NewContactHandler constructs ContactHandler.
func NewContactHandler(contacts ContactUsecase) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// RegisterRoutes binds contact routes; mw run ahead of every handler.
func (h *ContactHandler) RegisterRoutes(r *gin.RouterGroup, mw ...gin.HandlerFunc) {
	g := r.Group("", mw...)
	g.GET("", h.list)
	g.GET("/search", h.search)
	g.GET("/birthdays", h.birthdays)
	g.GET("/:contact_id", h.get)
	g.POST("", h.create)
	g.PUT("/:contact_id", h.update)
	g.DELETE("/:contact_id", h.delete)
}

// List godoc
// @Summary List contacts
// @Tags Contacts
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (2-500)" default(10)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} ContactResponse
// @Failure 422 {object} ValidationErrorResponse
// @Failure 429 {object} middleware.RateLimitResponse
// @Router /api/contacts [get]
func (h *ContactHandler) list(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	contacts, err := h.contacts.List(c.Request.Context(), owner(c), page)
	if err != nil {
		respondError(c, err, contactCases...)
		return
	}
	c.JSON(http.StatusOK, newContactResponses(contacts))
}

// Search godoc
// @Summary Search contacts
// @Description Case-insensitive partial match on any provided term.
// @Tags Contacts
// @Produce json
// @Security BearerAuth
// @Param first_name query string false "Name fragment"
// @Param last_name query string false "Surname fragment"
// @Param email query string false "Email fragment"
// @Success 200 {array} ContactResponse
// @Router /api/contacts/search [get]
func (h *ContactHandler) search(c *gin.Context) {
	contacts, err := h.contacts.Search(c.Request.Context(), owner(c), domain.ContactFilter{
		Name:    c.Query("first_name"),
		Surname: c.Query("last_name"),
		Email:   c.Query("email"),
	})
	if err != nil {
		respondError(c, err, contactCases...)
		return
	}
	c.JSON(http.StatusOK, newContactResponses(contacts))
}

// Birthdays godoc
// @Summary Upcoming birthdays
// @Description Contacts whose birthday falls within the next seven days.
// @Tags Contacts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ContactResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/contacts/birthdays [get]
func (h *ContactHandler) birthdays(c *gin.Context) {
	contacts, err := h.contacts.Birthdays(c.Request.Context(), owner(c))
	if err != nil {
		respondError(c, err, contactCases...)
		return
	}
	c.JSON(http.StatusOK, newContactResponses(contacts))
}

// Get godoc
// @Summary Get a contact
// @Tags Contacts
// @Produce json
// @Security BearerAuth
// @Param contact_id path int true "Contact ID"
// @Success 200 {object} ContactResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/contacts/{contact_id} [get]
func (h *ContactHandler) get(c *gin.Context) {
	id, err := contactID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	contact, err := h.contacts.Get(c.Request.Context(), owner(c), id)
	if err != nil {
		respondError(c, err, contactCases...)
		return
	}
	c.JSON(http.StatusOK, newContactResponse(contact))
}

// Create godoc
// @Summary Create a contact
// @Tags Contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ContactRequest true "Contact"
// @Success 201 {object} ContactResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ValidationErrorResponse
// @Router /api/contacts [post]
func (h *ContactHandler) create(c *gin.Context) {
	in, err := bindContact(c)
	if err != nil {
		respondError(c, err)
		return
	}

	contact, err := h.contacts.Create(c.Request.Context(), owner(c), in)
	if err != nil {
		respondError(c, err, contactCases...)
		return
	}
	c.JSON(http.StatusCreated, newContactResponse(contact))
}

// Update godoc
// @Summary Replace a contact
// @Tags Contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param contact_id path int true "Contact ID"
// @Param request body ContactRequest true "Contact"
// @Success 200 {object} ContactResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ValidationErrorResponse
// @Router /api/contacts/{contact_id} [put]
func (h *ContactHandler) update(c *gin.Context) {
	id, err := contactID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	in, err := bindContact(c)
	if err != nil {
		respondError(c, err)
		return
	}

	contact, err := h.contacts.Update(c.Request.Context(), owner(c), id, in)
	if err != nil {
		respondError(c, err, contactCases...)
		return
	}
	c.JSON(http.StatusOK, newContactResponse(contact))
}

// Delete godoc
// @Summary Delete a contact
// @Description Returns the removed contact.
// @Tags Contacts
// @Produce json
// @Security BearerAuth
// @Param contact_id path int true "Contact ID"
// @Success 200 {object} ContactResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/contacts/{contact_id} [delete]
func (h *ContactHandler) delete(c *gin.Context) {
	id, err := contactID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	contact, err := h.contacts.Delete(c.Request.Context(), owner(c), id)
	if err != nil {
		respondError(c, err, contactCases...)
		return
	}
	c.JSON(http.StatusOK, newContactResponse(contact))
}

func owner(c *gin.Context) int64 {
	id, _ := middleware.GetAuthenticatedUserID(c)
	return id
}

func contactID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("contact_id"), 10, 64)
	if err != nil || id < 1 {
		return 0, &usecase.ValidationError{Field: "contact_id", Message: "contact_id must be a positive integer"}
	}
	return id, nil
}

func pageFromQuery(c *gin.Context) (domain.Page, error) {
	page := domain.Page{Limit: usecase.DefaultListLimit}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &page.Limit}, {"offset", &page.Offset}} {
		raw, ok := c.GetQuery(p.name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return page, &usecase.ValidationError{Field: p.name, Message: p.name + " must be an integer"}
		}
		if p.name == "limit" && n == 0 {
			return page, &usecase.ValidationError{Field: "limit", Message: fmt.Sprintf("limit must be between %d and %d", usecase.MinListLimit, usecase.MaxListLimit)}
		}
		*p.dst = n
	}
	return page, nil
}

func bindContact(c *gin.Context) (domain.ContactInput, error) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return domain.ContactInput{}, &usecase.ValidationError{Message: "invalid request payload"}
	}

	birth, err := domain.ParseDate(req.DateOfBirth)
	if err != nil {
		return domain.ContactInput{}, &usecase.ValidationError{Field: "date_of_birth", Message: "date_of_birth must be YYYY-MM-DD"}
	}

	return domain.ContactInput{
		Name:           req.Name,
		Surname:        req.Surname,
		Email:          req.Email,
		Phone:          req.Phone,
		BirthDate:      birth,
		AdditionalInfo: req.AdditionalInfo,
	}, nil
}
