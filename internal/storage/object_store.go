package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/edupaper/authoring-service/internal/config"
	"github.com/google/uuid"
)

// ObjectStore is the binary object collaborator for addendum uploads.
// Put returns the public URL of the stored object.
type ObjectStore interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// UploadPolicy carries the explicit upload constraints. It is constructed
// from configuration once and passed to the upload flow, never read from
// ambient state.
type UploadPolicy struct {
	MaxBytes    int64
	AllowedMIME map[string]struct{}
}

func NewUploadPolicy(cfg config.StorageConfig) UploadPolicy {
	allowed := make(map[string]struct{}, len(cfg.AllowedMIMEList))
	for _, m := range cfg.AllowedMIMEList {
		allowed[strings.TrimSpace(m)] = struct{}{}
	}
	return UploadPolicy{
		MaxBytes:    cfg.MaxUploadBytes,
		AllowedMIME: allowed,
	}
}

// Check validates an incoming upload against the policy.
func (p UploadPolicy) Check(contentType string, size int64) error {
	if size > p.MaxBytes {
		return fmt.Errorf("file exceeds the %d byte upload limit", p.MaxBytes)
	}
	if _, ok := p.AllowedMIME[contentType]; !ok {
		return fmt.Errorf("content type %q is not allowed (only PDF, images, and Word documents)", contentType)
	}
	return nil
}

// FileTypeFor maps a MIME type onto the coarse file_type stored with
// addendum metadata.
func FileTypeFor(contentType string) string {
	switch {
	case strings.Contains(contentType, "pdf"):
		return "pdf"
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	default:
		return "document"
	}
}

// ObjectKey derives a collision-free object key preserving the original
// file extension.
func ObjectKey(originalFilename string) string {
	return uuid.NewString() + path.Ext(originalFilename)
}
