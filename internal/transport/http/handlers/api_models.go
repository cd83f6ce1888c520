package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
	"github.com/InkyWorld/goit-web-hw-14/internal/transport/http/middleware"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Detail  string `json:"detail"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, detail string) ErrorResponse {
	return ErrorResponse{
		Detail:  detail,
		TraceID: middleware.GetTraceID(c),
	}
}

// ValidationErrorResponse reports the offending field of a rejected request.
type ValidationErrorResponse struct {
	Detail  string `json:"detail"`
	Field   string `json:"field,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// SignupRequest defines the payload for account creation.
type SignupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest accepts either an OAuth2 password form or JSON. Username carries the email.
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// RequestEmailRequest asks for a fresh confirmation email.
type RequestEmailRequest struct {
	Email string `json:"email" binding:"required"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// UserResponse is the public view of a principal.
type UserResponse struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Avatar    *string     `json:"avatar"`
	Role      domain.Role `json:"role"`
	Confirmed bool        `json:"confirmed"`
	CreatedAt time.Time   `json:"created_at"`
}

// SignupResponse wraps the created principal.
type SignupResponse struct {
	User   UserResponse `json:"user"`
	Detail string       `json:"detail"`
}

// ContactRequest is the writable contact payload. DateOfBirth is YYYY-MM-DD.
type ContactRequest struct {
	Name           string  `json:"name" binding:"required"`
	Surname        string  `json:"surname" binding:"required"`
	Email          string  `json:"email" binding:"required"`
	Phone          string  `json:"phone" binding:"required"`
	DateOfBirth    string  `json:"date_of_birth" binding:"required"`
	AdditionalInfo *string `json:"additional_info"`
}

// ContactResponse is the public view of a contact.
type ContactResponse struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Surname        string     `json:"surname"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	DateOfBirth    string     `json:"date_of_birth"`
	AdditionalInfo *string    `json:"additional_info"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// HealthResponse describes liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func newUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Avatar:    u.AvatarURL,
		Role:      u.Role,
		Confirmed: u.Verified,
		CreatedAt: u.CreatedAt,
	}
}

func newTokenResponse(p domain.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
	}
}

func newContactResponse(c domain.Contact) ContactResponse {
	return ContactResponse{
		ID:             c.ID,
		Name:           c.Name,
		Surname:        c.Surname,
		Email:          c.Email,
		Phone:          c.Phone,
		DateOfBirth:    c.BirthDate.Format(domain.DateLayout),
		AdditionalInfo: c.AdditionalInfo,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func newContactResponses(contacts []domain.Contact) []ContactResponse {
	out := make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, newContactResponse(c))
	}
	return out
}
