package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
	"github.com/InkyWorld/goit-web-hw-14/internal/infra/security"
	"github.com/InkyWorld/goit-web-hw-14/internal/transport/http/middleware"
	"github.com/InkyWorld/goit-web-hw-14/internal/usecase"
)

const (
	signupDetail           = "User successfully created. Check your email for confirmation."
	alreadyConfirmedDetail = "Your email is already confirmed"
)

// AuthUsecase is the account lifecycle consumed by AuthHandler.
type AuthUsecase interface {
	Signup(ctx context.Context, in usecase.SignupInput) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.TokenPair, error)
	Refresh(ctx context.Context, token, clientIP string) (domain.TokenPair, error)
	ConfirmEmail(ctx context.Context, token string) (bool, error)
	RequestEmail(ctx context.Context, email, host string) (bool, error)
}

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	auth      AuthUsecase
	publicURL string
}

// AuthHandlerOption configures optional AuthHandler dependencies.
type AuthHandlerOption func(*AuthHandler)

// WithPublicURL fixes the base URL embedded in confirmation links. Without it
// the base URL is derived from the incoming request.
func WithPublicURL(url string) AuthHandlerOption {
	return func(h *AuthHandler) {
		h.publicURL = strings.TrimRight(url, "/")
	}
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth AuthUsecase, opts ...AuthHandlerOption) *AuthHandler {
	handler := &AuthHandler{auth: auth}
	for _, opt := range opts {
		if opt != nil {
			opt(handler)
		}
	}
	return handler
}

// RegisterRoutes binds authentication routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/signup", h.signup)
	r.POST("/login", h.login)
	r.GET("/refresh_token", h.refresh)
	r.GET("/confirmed_email/:token", h.confirmEmail)
	r.POST("/request_email", h.requestEmail)
}

// Signup godoc
// @Summary Register a new user account
// @Description Creates an unverified account and sends a confirmation email.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup payload"
// @Success 201 {object} SignupResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ValidationErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/auth/signup [post]
func (h *AuthHandler) signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c)
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), usecase.SignupInput{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
		Host:     h.baseURL(c),
	})
	if err != nil {
		respondError(c, err, ErrorCase{Err: usecase.ErrAccountExists, Status: http.StatusConflict, Message: "Account already exists"})
		return
	}

	c.JSON(http.StatusCreated, SignupResponse{User: newUserResponse(user), Detail: signupDetail})
}

// Login godoc
// @Summary Exchange credentials for tokens
// @Description Accepts an OAuth2 password form or JSON where username carries the email.
// @Tags Authentication
// @Accept x-www-form-urlencoded
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ValidationErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		badPayload(c)
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err,
			ErrorCase{Err: usecase.ErrInvalidEmail, Status: http.StatusUnauthorized, Message: "Invalid email"},
			ErrorCase{Err: usecase.ErrEmailNotVerified, Status: http.StatusUnauthorized, Message: "Email not verified"},
			ErrorCase{Err: usecase.ErrInvalidPassword, Status: http.StatusUnauthorized, Message: "Invalid password"},
		)
		return
	}

	c.JSON(http.StatusOK, newTokenResponse(pair))
}

// Refresh godoc
// @Summary Rotate the token pair
// @Description Exchanges the stored refresh token, sent as a bearer token, for a new pair.
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} TokenResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/auth/refresh_token [get]
func (h *AuthHandler) refresh(c *gin.Context) {
	token, err := middleware.BearerToken(c)
	if err != nil {
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Not authenticated"))
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), token, c.ClientIP())
	if err != nil {
		respondError(c, err,
			ErrorCase{Err: usecase.ErrInvalidRefreshToken, Status: http.StatusUnauthorized, Message: "Invalid refresh token"},
			ErrorCase{Err: security.ErrWrongScope, Status: http.StatusUnauthorized, Message: "Invalid scope for token"},
		)
		return
	}

	c.JSON(http.StatusOK, newTokenResponse(pair))
}

// ConfirmEmail godoc
// @Summary Confirm an email address
// @Description Marks the token's subject verified. Repeated confirmation is harmless.
// @Tags Authentication
// @Produce json
// @Param token path string true "Email token"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/auth/confirmed_email/{token} [get]
func (h *AuthHandler) confirmEmail(c *gin.Context) {
	already, err := h.auth.ConfirmEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err, ErrorCase{Err: usecase.ErrVerification, Status: http.StatusBadRequest, Message: "Verification error"})
		return
	}

	if already {
		c.JSON(http.StatusOK, MessageResponse{Message: alreadyConfirmedDetail})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Email confirmed"})
}

// RequestEmail godoc
// @Summary Resend the confirmation email
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body RequestEmailRequest true "Recipient"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/auth/request_email [post]
func (h *AuthHandler) requestEmail(c *gin.Context) {
	var req RequestEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c)
		return
	}

	already, err := h.auth.RequestEmail(c.Request.Context(), req.Email, h.baseURL(c))
	if err != nil {
		respondError(c, err, ErrorCase{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "User not found"})
		return
	}

	if already {
		c.JSON(http.StatusOK, MessageResponse{Message: alreadyConfirmedDetail})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Check your email for confirmation."})
}

func (h *AuthHandler) baseURL(c *gin.Context) string {
	if h.publicURL != "" {
		return h.publicURL
	}
	scheme := "http"
	if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

func badPayload(c *gin.Context) {
	c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{
		Detail:  "invalid request payload",
		TraceID: middleware.GetTraceID(c),
	})
}
