package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"nexuschat/chat-api/internal/config"
)

// ErrStorageDisabled is returned when no S3 backend is configured.
var ErrStorageDisabled = errors.New("object storage backend is not configured; set CHAT_S3_* to enable uploads")

// S3Storage mints presigned upload URLs against S3-compatible storage.
type S3Storage struct {
	bucket    string
	publicURL string
	presigner *s3.PresignClient
	ttl       time.Duration
	log       zerolog.Logger
	disabled  bool
}

func NewS3Storage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*S3Storage, error) {
	logger := log.With().Str("component", "s3-storage").Logger()
	storage := &S3Storage{
		bucket:    cfg.S3Bucket,
		publicURL: cfg.S3PublicURL,
		ttl:       cfg.S3PresignTTL,
		log:       logger,
	}

	if storage.bucket == "" || cfg.S3AccessKeyID == "" || cfg.S3SecretKey == "" {
		logger.Warn().Msg("CHAT_S3_BUCKET or credentials are not set; upload URL minting will be disabled until configured")
		storage.disabled = true
		return storage, nil
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.S3Endpoint != "" {
			return aws.Endpoint{
				URL:           cfg.S3Endpoint,
				PartitionID:   "aws",
				SigningRegion: cfg.S3Region,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretKey, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
	})
	storage.presigner = s3.NewPresignClient(client)
	return storage, nil
}

// Upload describes a minted presigned upload slot.
type Upload struct {
	URL       string
	Key       string
	PublicURL string
}

// PresignUpload mints a presigned PUT URL for a client-side upload. Keys are
// namespaced per user and carry a ULID so concurrent uploads of the same file
// name never collide.
func (s *S3Storage) PresignUpload(ctx context.Context, userID, fileName, contentType string) (*Upload, error) {
	if s.disabled {
		return nil, ErrStorageDisabled
	}

	key := fmt.Sprintf("uploads/%s/%s-%s", userID, ulid.Make().String(), sanitizeFileName(fileName))

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}

	upload := &Upload{URL: req.URL, Key: key}
	if s.publicURL != "" {
		upload.PublicURL = s.publicURL + "/" + key
	}
	return upload, nil
}

// sanitizeFileName strips path separators so client-supplied names cannot
// escape the per-user key prefix.
func sanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if name == "" {
		name = "file"
	}
	return name
}
