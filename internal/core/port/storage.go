package port

import (
	"context"
	"io"
)

// AvatarUpload describes an uploaded image.
type AvatarUpload struct {
	Body        io.Reader
	Size        int64
	ContentType string
	Filename    string
}

// AvatarStorage persists avatar images and returns their public URL.
type AvatarStorage interface {
	UploadAvatar(ctx context.Context, ownerEmail string, upload AvatarUpload) (string, error)
}
