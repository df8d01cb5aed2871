package products

import (
	"context"
	"strings"

	"storefront-api/controllers/request"
	"storefront-api/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortRating    = "rating"
)

// SearchQuery holds the storefront filters. Slices are matched as "any of".
type SearchQuery struct {
	Query      string
	Category   string
	Brands     []string
	Gender     string
	DressStyle string
	Colors     []string
	Sizes      []string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Sort       string
	Page       int
	Limit      int
}

type SearchResult struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
}

func lower(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// filtered applies every filter of q to the visible products.
// The price range bounds both ends: the cheapest discounted price must reach
// MinPrice and the highest list price must stay under MaxPrice.
func filtered(db *gorm.DB, q SearchQuery) *gorm.DB {
	tx := db.Model(&models.Product{}).Where("products.is_archived = ?", false)
	if q.Query != "" {
		tx = tx.Where(`LOWER(products.name) LIKE ? ESCAPE '\'`, request.Contains(q.Query))
	}
	if q.Category != "" {
		tx = tx.Where("products.category_id IN (?)", db.Model(&models.Category{}).Select("id").Where("slug = ?", q.Category))
	}
	if brands := lower(q.Brands); len(brands) > 0 {
		tx = tx.Where("products.brand_id IN (?)", db.Model(&models.Brand{}).Select("id").Where("slug IN ?", brands))
	}
	if q.Gender != "" {
		tx = tx.Where("products.gender = ?", q.Gender)
	}
	if q.DressStyle != "" {
		tx = tx.Where("products.dress_style = ?", q.DressStyle)
	}
	if colors := lower(q.Colors); len(colors) > 0 {
		tx = tx.Where("products.id IN (?)", db.Model(&models.ProductVariant{}).
			Select("product_variants.product_id").
			Joins("JOIN colors ON colors.id = product_variants.color_id").
			Where("LOWER(colors.name) IN ?", colors))
	}
	if sizes := lower(q.Sizes); len(sizes) > 0 {
		tx = tx.Where("products.id IN (?)", db.Model(&models.ProductVariant{}).
			Select("product_variants.product_id").
			Joins("JOIN sizes ON sizes.id = product_variants.size_id").
			Where("LOWER(sizes.name) IN ?", sizes))
	}
	if q.MinPrice != nil {
		tx = tx.Where("products.min_price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("products.max_price <= ?", *q.MaxPrice)
	}
	return tx
}

func orderBy(sort string) string {
	switch sort {
	case SortPriceAsc:
		return "products.min_price ASC, products.id DESC"
	case SortPriceDesc:
		return "products.max_price DESC, products.id DESC"
	case SortRating:
		return "products.rating DESC, products.num_reviews DESC, products.id DESC"
	default:
		return "products.created_at DESC, products.id DESC"
	}
}

func (s *Service) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	db := s.db.WithContext(ctx)
	result := &SearchResult{Products: []models.Product{}}
	if err := filtered(db, q).Count(&result.Total).Error; err != nil {
		return nil, err
	}
	err := filtered(db, q).
		Preload("Images").Preload("Brand").Preload("Category").
		Order(orderBy(q.Sort)).
		Offset((q.Page - 1) * q.Limit).Limit(q.Limit).
		Find(&result.Products).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

type FacetCount struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Facets are the options the storefront filter widgets offer.
type Facets struct {
	Categories []FacetCount    `json:"categories"`
	Brands     []FacetCount    `json:"brands"`
	Colors     []models.Color  `json:"colors"`
	Sizes      []models.Size   `json:"sizes"`
	MinPrice   decimal.Decimal `json:"minPrice"`
	MaxPrice   decimal.Decimal `json:"maxPrice"`
}

func (s *Service) Facets(ctx context.Context) (*Facets, error) {
	db := s.db.WithContext(ctx)
	f := &Facets{Categories: []FacetCount{}, Brands: []FacetCount{}, Colors: []models.Color{}, Sizes: []models.Size{}}

	err := db.Model(&models.Category{}).
		Select("categories.slug, categories.name, COUNT(products.id) AS count").
		Joins("JOIN products ON products.category_id = categories.id AND products.is_archived = ?", false).
		Group("categories.id, categories.slug, categories.name").Order("categories.name").
		Scan(&f.Categories).Error
	if err != nil {
		return nil, err
	}
	err = db.Model(&models.Brand{}).
		Select("brands.slug, brands.name, COUNT(products.id) AS count").
		Joins("JOIN products ON products.brand_id = brands.id AND products.is_archived = ?", false).
		Group("brands.id, brands.slug, brands.name").Order("brands.name").
		Scan(&f.Brands).Error
	if err != nil {
		return nil, err
	}

	visible := db.Model(&models.ProductVariant{}).
		Joins("JOIN products ON products.id = product_variants.product_id").
		Where("products.is_archived = ?", false)
	if err := db.Where("id IN (?)", visible.Select("product_variants.color_id")).Order("name").Find(&f.Colors).Error; err != nil {
		return nil, err
	}
	visible = db.Model(&models.ProductVariant{}).
		Joins("JOIN products ON products.id = product_variants.product_id").
		Where("products.is_archived = ?", false)
	if err := db.Where("id IN (?)", visible.Select("product_variants.size_id")).Order("id").Find(&f.Sizes).Error; err != nil {
		return nil, err
	}

	var bounds struct {
		Low  decimal.NullDecimal
		High decimal.NullDecimal
	}
	err = db.Model(&models.Product{}).Select("MIN(min_price) AS low, MAX(max_price) AS high").
		Where("is_archived = ?", false).Scan(&bounds).Error
	if err != nil {
		return nil, err
	}
	f.MinPrice, f.MaxPrice = bounds.Low.Decimal, bounds.High.Decimal
	return f, nil
}

// AdminQuery filters the back office product table.
type AdminQuery struct {
	Query    string
	Archived *bool
	Page     int
	Limit    int
}

func (s *Service) AdminList(ctx context.Context, q AdminQuery) ([]models.Product, int64, error) {
	scope := func() *gorm.DB {
		tx := s.db.WithContext(ctx).Model(&models.Product{})
		if q.Query != "" {
			like := request.Contains(q.Query)
			tx = tx.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(sku) LIKE ? ESCAPE '\'`, like, like)
		}
		if q.Archived != nil {
			tx = tx.Where("is_archived = ?", *q.Archived)
		}
		return tx
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	products := []models.Product{}
	err := scope().Preload("Brand").Preload("Category").Preload("Images").Preload("Variants").
		Order("created_at DESC, id DESC").
		Offset((q.Page - 1) * q.Limit).Limit(q.Limit).
		Find(&products).Error
	return products, total, err
}

// Highlights returns the best rated and newest visible products, optionally for one brand.
func (s *Service) Highlights(ctx context.Context, brand string, limit int) (topRated, newArrivals []models.Product, err error) {
	scope := func() *gorm.DB {
		tx := s.db.WithContext(ctx).Preload("Images").Preload("Brand").Where("is_archived = ?", false)
		if brand != "" {
			tx = tx.Where("brand_id IN (?)", s.db.Model(&models.Brand{}).Select("id").Where("slug = ?", brand))
		}
		return tx.Limit(limit)
	}
	topRated, newArrivals = []models.Product{}, []models.Product{}
	if err = scope().Where("num_reviews > 0").Order("rating DESC, num_reviews DESC").Find(&topRated).Error; err != nil {
		return nil, nil, err
	}
	if err = scope().Order("created_at DESC, id DESC").Find(&newArrivals).Error; err != nil {
		return nil, nil, err
	}
	return topRated, newArrivals, nil
}
