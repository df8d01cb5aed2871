// Package storage keeps product images on an external object store.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"storefront-api/apperr"
)

const (
	MaxImageSize     = 1 << 20
	MaxProductImages = 5
)

// ErrDisabled is returned by uploads when no object store is configured.
var ErrDisabled = errors.New("image storage is not configured")

// Image is a stored object as referenced by product rows.
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

type Store interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader, size int64) (Image, error)
	Delete(ctx context.Context, publicID string) error
}

// CheckUpload enforces the image MIME type and size limit.
func CheckUpload(contentType string, size int64) error {
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return apperr.Validation("Only image files are allowed")
	}
	if size <= 0 {
		return apperr.Validation("Image file is empty")
	}
	if size > MaxImageSize {
		return apperr.Validation("Image must be smaller than 1MB")
	}
	return nil
}

func extension(name, contentType string) string {
	if ext := strings.ToLower(path.Ext(name)); ext != "" {
		return ext
	}
	if sub := strings.TrimPrefix(contentType, "image/"); sub != contentType && sub != "" {
		return "." + sub
	}
	return ""
}

// Disabled rejects uploads and ignores deletes.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, string, io.Reader, int64) (Image, error) {
	return Image{}, ErrDisabled
}

func (Disabled) Delete(context.Context, string) error { return nil }
