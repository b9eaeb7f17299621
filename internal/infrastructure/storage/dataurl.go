package storage

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/comfund/backend/internal/domain/shared"
)

// AllowedContentTypes are the upload types accepted for proofs and images
var AllowedContentTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif", "application/pdf"}

// Upload is a decoded file ready for MediaStorage.Put
type Upload struct {
	Data        []byte
	ContentType string
}

// DecodeDataURL parses a base64 "data:<type>;base64,<payload>" URL
func DecodeDataURL(raw string, maxSize int64) (*Upload, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(raw), "data:")
	if !ok {
		return nil, invalidUpload("Image must be a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, invalidUpload("Image data URL must be base64 encoded")
	}
	if maxSize > 0 && int64(base64.StdEncoding.DecodedLen(len(payload))) > maxSize+2 {
		return nil, tooLarge(maxSize)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, invalidUpload("Image data URL is not valid base64")
	}
	declared := strings.TrimSuffix(meta, ";base64")
	return NewUpload(data, declared, maxSize)
}

// NewUpload validates raw bytes. The content type is sniffed; the declared
// type is only used when sniffing cannot tell.
func NewUpload(data []byte, declared string, maxSize int64) (*Upload, error) {
	if len(data) == 0 {
		return nil, invalidUpload("Upload is empty")
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, tooLarge(maxSize)
	}
	ct := http.DetectContentType(data)
	if ct == "application/octet-stream" && declared != "" {
		ct = declared
	}
	ct, _, _ = strings.Cut(ct, ";")
	if !slices.Contains(AllowedContentTypes, ct) {
		return nil, invalidUpload(fmt.Sprintf("Unsupported file type %s", ct))
	}
	return &Upload{Data: data, ContentType: ct}, nil
}

func invalidUpload(msg string) error {
	return shared.NewDomainError("INVALID_UPLOAD", msg)
}

// ErrUploadTooLarge reports an upload over maxSize bytes
func ErrUploadTooLarge(maxSize int64) error {
	return tooLarge(maxSize)
}

func tooLarge(maxSize int64) error {
	return shared.NewDomainError("UPLOAD_TOO_LARGE", fmt.Sprintf("Upload exceeds %d bytes", maxSize))
}
