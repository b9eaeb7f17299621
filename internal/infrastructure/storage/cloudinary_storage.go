package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/comfund/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var cloudinaryVersion = regexp.MustCompile(`^v[0-9]+$`)

// CloudinaryMediaStorage uploads to Cloudinary. The reference is the secure
// delivery URL returned by the upload.
type CloudinaryMediaStorage struct {
	cld    *cloudinary.Cloudinary
	root   string
	logger *zap.Logger
}

// NewCloudinaryMediaStorage creates Cloudinary storage from configuration
func NewCloudinaryMediaStorage(cfg config.StorageConfig, logger *zap.Logger) (*CloudinaryMediaStorage, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, errors.New("cloudinary cloud name, api key and api secret are required")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %w", err)
	}
	return &CloudinaryMediaStorage{
		cld:    cld,
		root:   strings.Trim(cfg.CloudinaryFolder, "/"),
		logger: logger.Named("cloudinary_storage"),
	}, nil
}

// Put implements MediaStorage
func (s *CloudinaryMediaStorage) Put(ctx context.Context, folder string, data []byte, _ string) (string, error) {
	resp, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder: path.Join(s.root, folder),
	})
	if err != nil {
		return "", fmt.Errorf("upload error: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("upload error: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// URL implements MediaStorage. Cloudinary references already are URLs.
func (s *CloudinaryMediaStorage) URL(_ context.Context, ref string) (string, error) {
	if ref == "" {
		return "", ErrEmptyReference
	}
	return ref, nil
}

// Delete implements MediaStorage
func (s *CloudinaryMediaStorage) Delete(ctx context.Context, ref string) error {
	publicID, err := cloudinaryPublicID(ref)
	if err != nil {
		return err
	}
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("delete error: %w", err)
	}
	return nil
}

// cloudinaryPublicID extracts "folder/name" from a delivery URL such as
// https://res.cloudinary.com/demo/image/upload/v1712/proofs/abc.jpg
func cloudinaryPublicID(ref string) (string, error) {
	if ref == "" {
		return "", ErrEmptyReference
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid cloudinary URL: %w", err)
	}
	_, after, ok := strings.Cut(u.Path, "/upload/")
	if !ok || after == "" {
		return "", fmt.Errorf("invalid cloudinary URL %q", ref)
	}
	parts := strings.Split(after, "/")
	if len(parts) > 1 && cloudinaryVersion.MatchString(parts[0]) {
		parts = parts[1:]
	}
	id := strings.Join(parts, "/")
	return strings.TrimSuffix(id, path.Ext(id)), nil
}

var _ MediaStorage = (*CloudinaryMediaStorage)(nil)
