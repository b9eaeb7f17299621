// Package storage keeps uploaded payment proofs and activity images.
// Three backends share the MediaStorage contract: S3-compatible object
// storage, Cloudinary, and an in-memory stub for development.
package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/comfund/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Folders used for uploads
const (
	FolderProofs     = "proofs"
	FolderActivities = "activities"
)

var ErrEmptyReference = errors.New("storage reference is required")

// MediaStorage stores binary uploads and hands back a reference that is
// persisted on the owning record.
type MediaStorage interface {
	// Put stores data under folder and returns its reference
	Put(ctx context.Context, folder string, data []byte, contentType string) (string, error)
	// URL resolves a reference to a URL a browser can load
	URL(ctx context.Context, ref string) (string, error)
	// Delete removes the object behind ref. Missing objects are not an error.
	Delete(ctx context.Context, ref string) error
}

// New builds the MediaStorage selected by cfg.Provider
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (MediaStorage, error) {
	switch cfg.Provider {
	case "", "stub":
		logger.Warn("Using in-memory media storage; uploads are lost on restart")
		return NewStubMediaStorage(), nil
	case "s3":
		return NewS3MediaStorage(ctx, cfg, logger)
	case "cloudinary":
		return NewCloudinaryMediaStorage(cfg, logger)
	}
	return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
}

// objectKey builds folder/<uuid><ext> for a content type
func objectKey(folder, contentType string) string {
	ext := ""
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		ext = preferredExtension(exts)
	}
	return path.Join(strings.Trim(folder, "/"), uuid.NewString()+ext)
}

func preferredExtension(exts []string) string {
	for _, e := range exts {
		switch e {
		case ".jpg", ".png", ".webp", ".gif", ".pdf":
			return e
		}
	}
	return exts[0]
}
