package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
	"github.com/InkyWorld/goit-web-hw-14/internal/core/port"
	"github.com/InkyWorld/goit-web-hw-14/internal/transport/http/middleware"
	"github.com/InkyWorld/goit-web-hw-14/internal/usecase"
)

const defaultMaxUploadBytes int64 = 5 << 20

// ProfileUsecase is the profile mutation consumed by UserHandler.
type ProfileUsecase interface {
	UpdateAvatar(ctx context.Context, email string, upload port.AvatarUpload) (domain.User, error)
}

// AvatarUpdatedResponse is returned after a successful avatar upload.
type AvatarUpdatedResponse struct {
	User   UserResponse `json:"user"`
	Detail string       `json:"detail"`
}

// UserHandler exposes the current principal's profile.
type UserHandler struct {
	profiles       ProfileUsecase
	maxUploadBytes int64
}

// NewUserHandler constructs UserHandler. maxUploadBytes <= 0 selects 5 MiB.
func NewUserHandler(profiles ProfileUsecase, maxUploadBytes int64) *UserHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &UserHandler{profiles: profiles, maxUploadBytes: maxUploadBytes}
}

// RegisterRoutes binds profile routes. avatarMiddlewares run ahead of the upload handler only.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup, avatarMiddlewares ...gin.HandlerFunc) {
	r.GET("/me", h.me)

	chain := append([]gin.HandlerFunc{}, avatarMiddlewares...)
	r.PATCH("/avatar", append(chain, h.updateAvatar)...)
}

// Me godoc
// @Summary Current user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/users/me [get]
func (h *UserHandler) me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Not authenticated"))
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

// UpdateAvatar godoc
// @Summary Replace the avatar
// @Tags Users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image"
// @Success 200 {object} AvatarUpdatedResponse
// @Failure 413 {object} ErrorResponse
// @Failure 422 {object} ValidationErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/users/avatar [patch]
func (h *UserHandler) updateAvatar(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Not authenticated"))
		return
	}

	if c.Request.ContentLength > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, NewErrorResponse(c, "File too large"))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, NewErrorResponse(c, "File too large"))
			return
		}
		respondError(c, &usecase.ValidationError{Field: "file", Message: "file is required"})
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	updated, err := h.profiles.UpdateAvatar(c.Request.Context(), user.Email, port.AvatarUpload{
		Body:        file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	})
	if err != nil {
		respondError(c, err,
			ErrorCase{Err: usecase.ErrAvatarStorageDisabled, Status: http.StatusServiceUnavailable, Message: "Avatar storage is not configured"},
			ErrorCase{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "User not found"},
		)
		return
	}

	c.JSON(http.StatusOK, AvatarUpdatedResponse{User: newUserResponse(updated), Detail: "Avatar updated successfully!"})
}
