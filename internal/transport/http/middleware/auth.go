package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
	"github.com/InkyWorld/goit-web-hw-14/internal/usecase"
)

var (
	// ErrMissingBearer indicates an absent or empty Authorization header.
	ErrMissingBearer = errors.New("missing authorization header")
	// ErrMalformedBearer indicates an Authorization header that is not "Bearer <token>".
	ErrMalformedBearer = errors.New("invalid authorization format: expected 'Bearer <token>'")
)

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Detail  string `json:"detail"`
	TraceID string `json:"trace_id,omitempty"`
}

func newErrorResponse(c *gin.Context, detail string) ErrorResponse {
	return ErrorResponse{
		Detail:  detail,
		TraceID: GetTraceID(c),
	}
}

// Authenticator resolves the principal behind an access token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.User, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) (string, error) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", ErrMissingBearer
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMalformedBearer
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingBearer
	}
	return token, nil
}

// RequireAuth resolves the bearer access token into a domain.User and stores
// it on the context.
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := BearerToken(c)
		if err != nil {
			unauthorized(c, "Not authenticated")
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, usecase.ErrUnauthenticated) {
				unauthorized(c, "Could not validate credentials")
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, newErrorResponse(c, "Internal server error"))
			return
		}

		c.Set(PrincipalKey, user)
		c.Set(UserIDKey, user.ID)
		GetRequestContext(c).UserID = user.ID

		c.Next()
	}
}

// RequireRole admits principals whose role is one of roles. It must run after RequireAuth.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			unauthorized(c, "Not authenticated")
			return
		}

		if !domain.Allow(roles, user.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, newErrorResponse(c, "FORBIDDEN"))
			return
		}

		c.Next()
	}
}

// CurrentUser returns the principal stored by RequireAuth.
func CurrentUser(c *gin.Context) (domain.User, bool) {
	val, exists := c.Get(PrincipalKey)
	if !exists {
		return domain.User{}, false
	}
	user, ok := val.(domain.User)
	return user, ok
}

// GetAuthenticatedUserID retrieves the user ID from context (helper for handlers)
func GetAuthenticatedUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}

func unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, detail))
}
