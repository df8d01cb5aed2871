package products

import (
	"context"
	"errors"
	"io"

	"storefront-api/apperr"
	"storefront-api/models"
	"storefront-api/storage"
)

// UploadImage stores a product image ahead of the product form being saved.
func (s *Service) UploadImage(ctx context.Context, name, contentType string, body io.Reader, size int64) (storage.Image, error) {
	if err := storage.CheckUpload(contentType, size); err != nil {
		return storage.Image{}, err
	}
	img, err := s.images.Upload(ctx, name, contentType, body, size)
	if errors.Is(err, storage.ErrDisabled) {
		return storage.Image{}, apperr.Validation("Image uploads are not available")
	}
	return img, err
}

// DiscardImage deletes an uploaded image that no saved product references.
func (s *Service) DiscardImage(ctx context.Context, publicID string) error {
	if publicID == "" {
		return apperr.Validation("publicId is required")
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.ProductImage{}).Where("public_id = ?", publicID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("Image is still used by a product")
	}
	return s.images.Delete(ctx, publicID)
}
