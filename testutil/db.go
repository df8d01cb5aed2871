// Package testutil opens throwaway databases and seeds catalog fixtures for tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"storefront-api/auth"
	"storefront-api/configs"
	"storefront-api/models"
	"storefront-api/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database private to the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := configs.ConnectDB("sqlite", dsn, logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Catalog is a small fixture: one brand, category, two colors, two sizes.
type Catalog struct {
	Brand    models.Brand
	Category models.Category
	Black    models.Color
	White    models.Color
	M        models.Size
	L        models.Size
}

func SeedCatalog(t testing.TB, db *gorm.DB) Catalog {
	t.Helper()
	c := Catalog{
		Brand:    models.Brand{Name: "Acme", Slug: "acme"},
		Category: models.Category{Name: "T-Shirts", Slug: "t-shirts"},
		Black:    models.Color{Name: "Black", Value: "#000000"},
		White:    models.Color{Name: "White", Value: "#FFFFFF"},
		M:        models.Size{Name: "M"},
		L:        models.Size{Name: "L"},
	}
	require.NoError(t, db.Create(&c.Brand).Error)
	require.NoError(t, db.Create(&c.Category).Error)
	require.NoError(t, db.Create(&c.Black).Error)
	require.NoError(t, db.Create(&c.White).Error)
	require.NoError(t, db.Create(&c.M).Error)
	require.NoError(t, db.Create(&c.L).Error)
	return c
}

// VariantSpec describes one variant for SeedProduct.
type VariantSpec struct {
	Color    models.Color
	Size     models.Size
	Quantity int
	Price    string
	Discount int
}

// SeedProduct inserts a product with its variants and derived price range.
func SeedProduct(t testing.TB, db *gorm.DB, c Catalog, name string, variants ...VariantSpec) models.Product {
	t.Helper()
	p := models.Product{
		Name:       name,
		SKU:        "SKU-" + uuid.NewString()[:8],
		Slug:       uuid.NewString(),
		CategoryID: c.Category.ID,
		BrandID:    c.Brand.ID,
		Gender:     models.GenderUnisex,
		DressStyle: models.DressStyleCasual,
		Images:     []models.ProductImage{{URL: "https://cdn.test/" + name + ".png", PublicID: name, IsMain: true}},
	}
	for _, v := range variants {
		price := decimal.RequireFromString(v.Price)
		p.Variants = append(p.Variants, models.ProductVariant{
			ColorID:         v.Color.ID,
			SizeID:          v.Size.ID,
			Quantity:        v.Quantity,
			Price:           price,
			Discount:        v.Discount,
			DiscountedPrice: pricing.DiscountedPrice(price, v.Discount),
		})
	}
	p.MinPrice, p.MaxPrice = pricing.PriceRange(p.Variants)
	require.NoError(t, db.Create(&p).Error)
	return p
}

// SeedUser inserts a verified, active user with password "password123".
func SeedUser(t testing.TB, db *gorm.DB, email, role string) models.User {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	now := time.Now()
	u := models.User{Name: email, Email: email, Password: hash, Role: role, IsActive: true, EmailVerified: &now}
	require.NoError(t, db.Create(&u).Error)
	return u
}
