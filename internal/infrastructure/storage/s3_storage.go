package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/comfund/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const defaultPresignExpiration = time.Hour

// S3MediaStorage stores uploads in an S3-compatible bucket (AWS, MinIO, R2).
// With a public URL configured references resolve to plain URLs; otherwise
// they resolve to presigned GET URLs.
type S3MediaStorage struct {
	client    *s3.Client
	presign   *s3.PresignClient
	bucket    string
	publicURL string
	logger    *zap.Logger
}

// NewS3MediaStorage creates S3 storage from configuration
func NewS3MediaStorage(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*S3MediaStorage, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("storage s3_bucket is required")
	}
	if cfg.S3AccessKeyID == "" || cfg.S3SecretAccessKey == "" {
		return nil, errors.New("storage s3 credentials are required")
	}
	region := cfg.S3Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
	})

	return &S3MediaStorage{
		client:    client,
		presign:   s3.NewPresignClient(client),
		bucket:    cfg.S3Bucket,
		publicURL: strings.TrimRight(cfg.S3PublicURL, "/"),
		logger:    logger.Named("s3_storage"),
	}, nil
}

// Put implements MediaStorage
func (s *S3MediaStorage) Put(ctx context.Context, folder string, data []byte, contentType string) (string, error) {
	key := objectKey(folder, contentType)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	s.logger.Debug("Object uploaded", zap.String("key", key), zap.Int("size", len(data)))
	return key, nil
}

// URL implements MediaStorage
func (s *S3MediaStorage) URL(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", ErrEmptyReference
	}
	if s.publicURL != "" {
		return s.publicURL + "/" + ref, nil
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	}, s3.WithPresignExpires(defaultPresignExpiration))
	if err != nil {
		return "", fmt.Errorf("failed to presign download URL: %w", err)
	}
	return req.URL, nil
}

// Delete implements MediaStorage
func (s *S3MediaStorage) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return ErrEmptyReference
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

var _ MediaStorage = (*S3MediaStorage)(nil)
