// Package catalog manages brands, categories, colors and sizes.
package catalog

import (
	"context"
	"errors"

	"storefront-api/apperr"
	"storefront-api/models"
	"storefront-api/slugs"
	"storefront-api/validation"

	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type NameInput struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type ColorInput struct {
	Name  string `json:"name" validate:"required,max=50"`
	Value string `json:"value" validate:"required,hexcolor"`
}

type SizeInput struct {
	Name string `json:"name" validate:"required,max=20"`
}

// taxonomySlug returns the slug for name, rejecting it when another row of model owns it.
func (s *Service) taxonomySlug(ctx context.Context, model any, id uint, name, label string) (string, error) {
	slug := slugs.Make(name)
	if slug == "" {
		return "", apperr.Validation("%s name must contain letters or digits", label)
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(model).Where("slug = ? AND id <> ?", slug, id).Count(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		return "", apperr.Conflict("%s with this name already exists", label)
	}
	return slug, nil
}

func (s *Service) usedBy(ctx context.Context, model any, column string, id uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(model).Where(column+" = ?", id).Count(&count).Error
	return count, err
}

func notFound(err error, label string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s not found", label)
	}
	return err
}

// Brands

func (s *Service) ListBrands(ctx context.Context) ([]models.Brand, error) {
	brands := []models.Brand{}
	err := s.db.WithContext(ctx).Order("name").Find(&brands).Error
	return brands, err
}

func (s *Service) GetBrand(ctx context.Context, id uint) (*models.Brand, error) {
	var b models.Brand
	if err := s.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, notFound(err, "Brand")
	}
	return &b, nil
}

func (s *Service) CreateBrand(ctx context.Context, in NameInput) (*models.Brand, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	slug, err := s.taxonomySlug(ctx, &models.Brand{}, 0, in.Name, "Brand")
	if err != nil {
		return nil, err
	}
	b := models.Brand{Name: in.Name, Slug: slug}
	if err := s.db.WithContext(ctx).Create(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Service) EditBrand(ctx context.Context, id uint, in NameInput) (*models.Brand, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	b, err := s.GetBrand(ctx, id)
	if err != nil {
		return nil, err
	}
	slug, err := s.taxonomySlug(ctx, &models.Brand{}, id, in.Name, "Brand")
	if err != nil {
		return nil, err
	}
	b.Name, b.Slug = in.Name, slug
	if err := s.db.WithContext(ctx).Save(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) DeleteBrand(ctx context.Context, id uint) error {
	if _, err := s.GetBrand(ctx, id); err != nil {
		return err
	}
	n, err := s.usedBy(ctx, &models.Product{}, "brand_id", id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict("Cannot delete brand: it is used by %d product(s)", n)
	}
	return s.db.WithContext(ctx).Delete(&models.Brand{}, id).Error
}

// Categories

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := s.db.WithContext(ctx).Order("name").Find(&categories).Error
	return categories, err
}

func (s *Service) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var cat models.Category
	if err := s.db.WithContext(ctx).First(&cat, id).Error; err != nil {
		return nil, notFound(err, "Category")
	}
	return &cat, nil
}

func (s *Service) CreateCategory(ctx context.Context, in NameInput) (*models.Category, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	slug, err := s.taxonomySlug(ctx, &models.Category{}, 0, in.Name, "Category")
	if err != nil {
		return nil, err
	}
	cat := models.Category{Name: in.Name, Slug: slug}
	if err := s.db.WithContext(ctx).Create(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

func (s *Service) EditCategory(ctx context.Context, id uint, in NameInput) (*models.Category, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	cat, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	slug, err := s.taxonomySlug(ctx, &models.Category{}, id, in.Name, "Category")
	if err != nil {
		return nil, err
	}
	cat.Name, cat.Slug = in.Name, slug
	if err := s.db.WithContext(ctx).Save(cat).Error; err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id uint) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}
	n, err := s.usedBy(ctx, &models.Product{}, "category_id", id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict("Cannot delete category: it is used by %d product(s)", n)
	}
	return s.db.WithContext(ctx).Delete(&models.Category{}, id).Error
}

// Colors

func (s *Service) ListColors(ctx context.Context) ([]models.Color, error) {
	colors := []models.Color{}
	err := s.db.WithContext(ctx).Order("name").Find(&colors).Error
	return colors, err
}

func (s *Service) nameTaken(ctx context.Context, model any, id uint, name string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(model).Where("LOWER(name) = LOWER(?) AND id <> ?", name, id).Count(&count).Error
	return count > 0, err
}

func (s *Service) CreateColor(ctx context.Context, in ColorInput) (*models.Color, error) {
	return s.saveColor(ctx, 0, in)
}

func (s *Service) EditColor(ctx context.Context, id uint, in ColorInput) (*models.Color, error) {
	return s.saveColor(ctx, id, in)
}

func (s *Service) saveColor(ctx context.Context, id uint, in ColorInput) (*models.Color, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	color := models.Color{ID: id}
	if id != 0 {
		if err := s.db.WithContext(ctx).First(&color, id).Error; err != nil {
			return nil, notFound(err, "Color")
		}
	}
	taken, err := s.nameTaken(ctx, &models.Color{}, id, in.Name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("Color with this name already exists")
	}
	color.Name = in.Name
	color.Value = in.Value
	if err := s.db.WithContext(ctx).Save(&color).Error; err != nil {
		return nil, err
	}
	return &color, nil
}

func (s *Service) DeleteColor(ctx context.Context, id uint) error {
	var color models.Color
	if err := s.db.WithContext(ctx).First(&color, id).Error; err != nil {
		return notFound(err, "Color")
	}
	n, err := s.usedBy(ctx, &models.ProductVariant{}, "color_id", id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict("Cannot delete color: it is used by %d product variant(s)", n)
	}
	return s.db.WithContext(ctx).Delete(&color).Error
}

// Sizes

func (s *Service) ListSizes(ctx context.Context) ([]models.Size, error) {
	sizes := []models.Size{}
	err := s.db.WithContext(ctx).Order("id").Find(&sizes).Error
	return sizes, err
}

func (s *Service) CreateSize(ctx context.Context, in SizeInput) (*models.Size, error) {
	return s.saveSize(ctx, 0, in)
}

func (s *Service) EditSize(ctx context.Context, id uint, in SizeInput) (*models.Size, error) {
	return s.saveSize(ctx, id, in)
}

func (s *Service) saveSize(ctx context.Context, id uint, in SizeInput) (*models.Size, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	size := models.Size{ID: id}
	if id != 0 {
		if err := s.db.WithContext(ctx).First(&size, id).Error; err != nil {
			return nil, notFound(err, "Size")
		}
	}
	taken, err := s.nameTaken(ctx, &models.Size{}, id, in.Name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("Size with this name already exists")
	}
	size.Name = in.Name
	if err := s.db.WithContext(ctx).Save(&size).Error; err != nil {
		return nil, err
	}
	return &size, nil
}

func (s *Service) DeleteSize(ctx context.Context, id uint) error {
	var size models.Size
	if err := s.db.WithContext(ctx).First(&size, id).Error; err != nil {
		return notFound(err, "Size")
	}
	n, err := s.usedBy(ctx, &models.ProductVariant{}, "size_id", id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict("Cannot delete size: it is used by %d product variant(s)", n)
	}
	return s.db.WithContext(ctx).Delete(&size).Error
}
