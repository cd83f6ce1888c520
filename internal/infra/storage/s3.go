package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/port"
	"github.com/InkyWorld/goit-web-hw-14/internal/infra/config"
	"github.com/InkyWorld/goit-web-hw-14/internal/infra/logger"
)

// ErrBucketRequired indicates storage is enabled without a bucket name.
var ErrBucketRequired = errors.New("storage: bucket is required")

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// AvatarStore uploads avatar images to an S3 compatible bucket.
type AvatarStore struct {
	client  objectPutter
	bucket  string
	folder  string
	baseURL string
	logger  *zap.Logger
	newKey  func() string
}

var _ port.AvatarStorage = (*AvatarStore)(nil)

// NewAvatarStore builds an S3 client from cfg. Static credentials are used
// when both keys are set, otherwise the default AWS credential chain applies.
func NewAvatarStore(ctx context.Context, cfg config.StorageSettings, log *zap.Logger) (*AvatarStore, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, ErrBucketRequired
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newAvatarStore(client, cfg, log), nil
}

func newAvatarStore(client objectPutter, cfg config.StorageSettings, log *zap.Logger) *AvatarStore {
	if log == nil {
		log = zap.NewNop()
	}
	baseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL(cfg)
	}
	return &AvatarStore{
		client:  client,
		bucket:  cfg.Bucket,
		folder:  strings.Trim(cfg.Folder, "/"),
		baseURL: baseURL,
		logger:  log,
		newKey:  uuid.NewString,
	}
}

// UploadAvatar stores the image under <folder>/<uuid><ext> and returns its public URL.
func (s *AvatarStore) UploadAvatar(ctx context.Context, ownerEmail string, upload port.AvatarUpload) (string, error) {
	key := s.objectKey(upload.Filename)

	input := &s3.PutObjectInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(key),
		Body:     upload.Body,
		Metadata: map[string]string{"owner": ownerEmail},
	}
	if upload.ContentType != "" {
		input.ContentType = aws.String(upload.ContentType)
	}
	if upload.Size > 0 {
		input.ContentLength = aws.Int64(upload.Size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	s.logger.Info("avatar uploaded",
		zap.String("key", key),
		zap.String("owner", logger.MaskEmail(ownerEmail)),
		zap.Int64("size", upload.Size),
	)
	return s.baseURL + "/" + key, nil
}

func (s *AvatarStore) objectKey(filename string) string {
	name := s.newKey() + strings.ToLower(path.Ext(filename))
	if s.folder == "" {
		return name
	}
	return s.folder + "/" + name
}

func defaultBaseURL(cfg config.StorageSettings) string {
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	if cfg.UsePathStyle {
		return endpoint + "/" + cfg.Bucket
	}
	scheme, host, ok := strings.Cut(endpoint, "://")
	if !ok {
		return endpoint + "/" + cfg.Bucket
	}
	return scheme + "://" + cfg.Bucket + "." + host
}
