package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/InkyWorld/goit-web-hw-14/internal/repository"
	"github.com/InkyWorld/goit-web-hw-14/internal/transport/http/middleware"
	"github.com/InkyWorld/goit-web-hw-14/internal/usecase"
)

const internalErrorMessage = "Internal server error"

// ErrorCase maps a sentinel error to an HTTP status code and response message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// commonCases apply after handler specific cases.
var commonCases = []ErrorCase{
	{Err: usecase.ErrUnauthenticated, Status: http.StatusUnauthorized, Message: "Could not validate credentials"},
	{Err: usecase.ErrNotFound, Status: http.StatusNotFound, Message: "Not found"},
	{Err: repository.ErrConflict, Status: http.StatusConflict, Message: "Conflict"},
}

// RespondWithMappedError resolves the provided error against known cases or falls back to a generic response.
// A usecase.ValidationError always maps to 422. Unmatched errors are attached to the context for the access log.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	var vErr *usecase.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{
			Detail:  vErr.Message,
			Field:   vErr.Field,
			TraceID: middleware.GetTraceID(c),
		})
		return
	}

	for _, set := range [][]ErrorCase{cases, commonCases} {
		for _, cs := range set {
			if cs.Err == nil || !errors.Is(err, cs.Err) {
				continue
			}
			if cs.Status == http.StatusUnauthorized {
				c.Header("WWW-Authenticate", "Bearer")
			}
			c.JSON(cs.Status, NewErrorResponse(c, cs.Message))
			return
		}
	}

	_ = c.Error(err)
	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}

func respondError(c *gin.Context, err error, cases ...ErrorCase) {
	RespondWithMappedError(c, err, cases, http.StatusInternalServerError, internalErrorMessage)
}
