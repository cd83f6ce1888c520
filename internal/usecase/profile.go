package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
	"github.com/InkyWorld/goit-web-hw-14/internal/core/port"
	"github.com/InkyWorld/goit-web-hw-14/internal/infra/logger"
	"github.com/InkyWorld/goit-web-hw-14/internal/repository"
)

const maxAvatarURLLength = 2083

// ProfileService manages the authenticated principal's own profile.
type ProfileService struct {
	users    port.UserRepository
	sessions port.SessionCache
	storage  port.AvatarStorage
	logger   *zap.Logger
}

// NewProfileService constructs a ProfileService. storage may be nil when
// avatar uploads are disabled.
func NewProfileService(users port.UserRepository, sessions port.SessionCache, storage port.AvatarStorage, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{users: users, sessions: sessions, storage: storage, logger: logger}
}

// UpdateAvatar uploads the image and stores its public URL on the principal.
// The session snapshot is dropped so the next request sees the new avatar.
func (s *ProfileService) UpdateAvatar(ctx context.Context, email string, upload port.AvatarUpload) (domain.User, error) {
	if s.storage == nil {
		return domain.User{}, ErrAvatarStorageDisabled
	}
	if upload.Body == nil {
		return domain.User{}, invalid("file", "file is required")
	}
	if ct := upload.ContentType; ct != "" && !strings.HasPrefix(ct, "image/") {
		return domain.User{}, invalid("file", "file must be an image")
	}

	url, err := s.storage.UploadAvatar(ctx, email, upload)
	if err != nil {
		return domain.User{}, fmt.Errorf("upload avatar: %w", err)
	}
	if len(url) > maxAvatarURLLength {
		return domain.User{}, fmt.Errorf("avatar url exceeds %d characters", maxAvatarURLLength)
	}

	user, err := s.users.UpdateAvatar(ctx, email, &url)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("update avatar: %w", err)
	}

	if s.sessions != nil {
		if err := s.sessions.Invalidate(ctx, email); err != nil {
			s.logger.Warn("session cache invalidate failed", zap.String("email", logger.MaskEmail(email)), zap.Error(err))
		}
	}
	return user.Sanitized(), nil
}
