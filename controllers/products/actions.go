// Package products manages the product catalog: variants, images, archive state and storefront search.
package products

import (
	"context"
	"errors"
	"strings"

	"storefront-api/apperr"
	"storefront-api/models"
	"storefront-api/pricing"
	"storefront-api/slugs"
	"storefront-api/storage"
	"storefront-api/validation"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	images storage.Store
}

func NewService(db *gorm.DB, images storage.Store) *Service {
	return &Service{db: db, images: images}
}

type VariantInput struct {
	ColorID  uint            `json:"colorId" validate:"required"`
	SizeID   uint            `json:"sizeId" validate:"required"`
	Quantity int             `json:"quantity" validate:"min=0"`
	Price    decimal.Decimal `json:"price"`
	Discount int             `json:"discount" validate:"min=0,max=99"`
}

type ImageInput struct {
	URL      string `json:"url" validate:"required,url"`
	PublicID string `json:"publicId"`
	IsMain   bool   `json:"isMain"`
}

type ProductInput struct {
	Name        string         `json:"name" validate:"required,min=2,max=200"`
	SKU         string         `json:"sku" validate:"required,sku"`
	Description string         `json:"description" validate:"max=5000"`
	CategoryID  uint           `json:"categoryId" validate:"required"`
	BrandID     uint           `json:"brandId" validate:"required"`
	Gender      string         `json:"gender" validate:"required,oneof=men women unisex kids"`
	DressStyle  string         `json:"dressStyle" validate:"required,oneof=casual formal party gym"`
	IsArchived  bool           `json:"isArchived"`
	Images      []ImageInput   `json:"images" validate:"min=1,dive"`
	Variants    []VariantInput `json:"variants" validate:"min=1,dive"`
}

// NormalizeImages leaves exactly one image flagged main: the first flagged one,
// or the first image when none is.
func NormalizeImages(images []ImageInput) []ImageInput {
	mainAt := -1
	for i := range images {
		if images[i].IsMain && mainAt < 0 {
			mainAt = i
		}
		images[i].IsMain = false
	}
	if len(images) > 0 {
		if mainAt < 0 {
			mainAt = 0
		}
		images[mainAt].IsMain = true
	}
	return images
}

type combo struct{ color, size uint }

func (s *Service) prepare(ctx context.Context, in *ProductInput) error {
	in.SKU = strings.ToUpper(strings.TrimSpace(in.SKU))
	if err := validation.Struct(in); err != nil {
		return err
	}
	if slugs.Make(in.Name) == "" {
		return apperr.Validation("name must contain letters or digits")
	}
	if len(in.Images) > storage.MaxProductImages {
		return apperr.Validation("A product can have at most %d images", storage.MaxProductImages)
	}
	in.Images = NormalizeImages(in.Images)

	seen := make(map[combo]bool, len(in.Variants))
	colorIDs := make(map[uint]bool)
	sizeIDs := make(map[uint]bool)
	for _, v := range in.Variants {
		key := combo{v.ColorID, v.SizeID}
		if seen[key] {
			return apperr.Validation("Each color and size combination may only appear once")
		}
		seen[key] = true
		if !v.Price.IsPositive() {
			return apperr.Validation("price must be greater than 0")
		}
		colorIDs[v.ColorID] = true
		sizeIDs[v.SizeID] = true
	}

	db := s.db.WithContext(ctx)
	if err := exists(db, &models.Category{}, []uint{in.CategoryID}, "Category not found"); err != nil {
		return err
	}
	if err := exists(db, &models.Brand{}, []uint{in.BrandID}, "Brand not found"); err != nil {
		return err
	}
	if err := exists(db, &models.Color{}, keys(colorIDs), "Color not found"); err != nil {
		return err
	}
	return exists(db, &models.Size{}, keys(sizeIDs), "Size not found")
}

func keys(m map[uint]bool) []uint {
	out := make([]uint, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func exists(db *gorm.DB, model any, ids []uint, msg string) error {
	var count int64
	if err := db.Model(model).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return apperr.Validation("%s", msg)
	}
	return nil
}

func skuTaken(tx *gorm.DB, sku string, id uint) error {
	var count int64
	if err := tx.Model(&models.Product{}).Where("sku = ? AND id <> ?", sku, id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("A product with SKU %s already exists", sku)
	}
	return nil
}

func applyVariant(v *models.ProductVariant, in VariantInput) {
	v.ColorID = in.ColorID
	v.SizeID = in.SizeID
	v.Quantity = in.Quantity
	v.Price = in.Price.Round(2)
	v.Discount = in.Discount
	v.DiscountedPrice = pricing.DiscountedPrice(v.Price, v.Discount)
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := s.prepare(ctx, &in); err != nil {
		return nil, err
	}

	var product models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := skuTaken(tx, in.SKU, 0); err != nil {
			return err
		}
		slug, err := slugs.Unique(ctx, in.Name, "", slugs.TableExists(tx, &models.Product{}))
		if err != nil {
			return err
		}
		product = models.Product{
			Name:        in.Name,
			SKU:         in.SKU,
			Slug:        slug,
			Description: in.Description,
			CategoryID:  in.CategoryID,
			BrandID:     in.BrandID,
			Gender:      in.Gender,
			DressStyle:  in.DressStyle,
			IsArchived:  in.IsArchived,
		}
		for _, img := range in.Images {
			product.Images = append(product.Images, models.ProductImage{URL: img.URL, PublicID: img.PublicID, IsMain: img.IsMain})
		}
		for _, vi := range in.Variants {
			var v models.ProductVariant
			applyVariant(&v, vi)
			product.Variants = append(product.Variants, v)
		}
		product.MinPrice, product.MaxPrice = pricing.PriceRange(product.Variants)
		return tx.Create(&product).Error
	})
	if err != nil {
		return nil, err
	}
	log.Infow("product created", "productId", product.ID, "slug", product.Slug)
	return s.GetProduct(ctx, product.ID)
}

// EditProduct replaces the product's fields, variants and images in one transaction.
// Variants are matched by color and size; stored images dropped from the set are
// removed from the object store only after the transaction commits.
func (s *Service) EditProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	if err := s.prepare(ctx, &in); err != nil {
		return nil, err
	}

	var removed []models.ProductImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Preload("Variants").Preload("Images").First(&product, id).Error; err != nil {
			return notFound(err)
		}
		if err := skuTaken(tx, in.SKU, id); err != nil {
			return err
		}
		slug, err := slugs.Unique(ctx, in.Name, product.Slug, slugs.TableExists(tx, &models.Product{}))
		if err != nil {
			return err
		}

		variants, err := syncVariants(tx, product, in.Variants)
		if err != nil {
			return err
		}
		removed, err = syncImages(tx, product, in.Images)
		if err != nil {
			return err
		}

		minPrice, maxPrice := pricing.PriceRange(variants)
		return tx.Model(&models.Product{}).Where("id = ?", product.ID).Updates(map[string]any{
			"name":        in.Name,
			"sku":         in.SKU,
			"slug":        slug,
			"description": in.Description,
			"category_id": in.CategoryID,
			"brand_id":    in.BrandID,
			"gender":      in.Gender,
			"dress_style": in.DressStyle,
			"is_archived": in.IsArchived,
			"min_price":   minPrice,
			"max_price":   maxPrice,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.deleteStored(ctx, removed)
	return s.GetProduct(ctx, id)
}

func syncVariants(tx *gorm.DB, product models.Product, inputs []VariantInput) ([]models.ProductVariant, error) {
	existing := make(map[combo]models.ProductVariant, len(product.Variants))
	for _, v := range product.Variants {
		existing[combo{v.ColorID, v.SizeID}] = v
	}

	result := make([]models.ProductVariant, 0, len(inputs))
	for _, vi := range inputs {
		key := combo{vi.ColorID, vi.SizeID}
		v, ok := existing[key]
		delete(existing, key)
		if !ok {
			v = models.ProductVariant{ProductID: product.ID}
		}
		applyVariant(&v, vi)
		if err := tx.Save(&v).Error; err != nil {
			return nil, err
		}
		result = append(result, v)
	}

	for _, stale := range existing {
		if err := tx.Delete(&models.ProductVariant{}, stale.ID).Error; err != nil {
			return nil, err
		}
	}
	return result, nil
}

func syncImages(tx *gorm.DB, product models.Product, inputs []ImageInput) ([]models.ProductImage, error) {
	existing := make(map[string]models.ProductImage, len(product.Images))
	for _, img := range product.Images {
		existing[img.URL] = img
	}

	for _, in := range inputs {
		img, ok := existing[in.URL]
		delete(existing, in.URL)
		if !ok {
			img = models.ProductImage{ProductID: product.ID, URL: in.URL, PublicID: in.PublicID}
		}
		img.IsMain = in.IsMain
		if err := tx.Save(&img).Error; err != nil {
			return nil, err
		}
	}

	removed := make([]models.ProductImage, 0, len(existing))
	for _, img := range existing {
		if err := tx.Delete(&models.ProductImage{}, img.ID).Error; err != nil {
			return nil, err
		}
		removed = append(removed, img)
	}
	return removed, nil
}

// deleteStored removes objects from the image store. Failures leave an orphaned
// object behind and are only logged.
func (s *Service) deleteStored(ctx context.Context, images []models.ProductImage) {
	for _, img := range images {
		if img.PublicID == "" {
			continue
		}
		if err := s.images.Delete(ctx, img.PublicID); err != nil {
			log.Errorw("failed to delete product image", "publicId", img.PublicID, "error", err)
		}
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("Product not found")
	}
	return err
}

func (s *Service) SetArchived(ctx context.Context, id uint, archived bool) error {
	res := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("is_archived", archived)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Product not found")
	}
	return nil
}

// DeleteProduct removes the product with its variants, images and reviews.
// Order items keep their snapshot and are left untouched.
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	var images []models.ProductImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Preload("Images").First(&product, id).Error; err != nil {
			return notFound(err)
		}
		images = product.Images
		for _, model := range []any{&models.ProductVariant{}, &models.ProductImage{}, &models.Review{}} {
			if err := tx.Where("product_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&product).Error
	})
	if err != nil {
		return err
	}
	s.deleteStored(ctx, images)
	log.Infow("product deleted", "productId", id)
	return nil
}

func detailed(db *gorm.DB) *gorm.DB {
	return db.Preload("Category").Preload("Brand").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("is_main DESC, id") }).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Variants.Color").Preload("Variants.Size")
}

// GetProduct loads a product with everything the admin form needs.
func (s *Service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := detailed(s.db.WithContext(ctx)).First(&product, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &product, nil
}

// GetBySlug loads a product page. Archived products are hidden unless includeArchived is set.
func (s *Service) GetBySlug(ctx context.Context, slug string, includeArchived bool) (*models.Product, error) {
	var product models.Product
	if err := detailed(s.db.WithContext(ctx)).Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, notFound(err)
	}
	if product.IsArchived && !includeArchived {
		return nil, apperr.NotFound("Product not found")
	}
	return &product, nil
}

// FindVisible returns the non-archived products among ids, keeping the order of ids.
func (s *Service) FindVisible(ctx context.Context, ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var found []models.Product
	err := s.db.WithContext(ctx).Preload("Images").Preload("Brand").
		Where("id IN ? AND is_archived = ?", ids, false).Find(&found).Error
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
