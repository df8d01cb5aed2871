package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Brand struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Slug      string    `gorm:"size:120;not null;uniqueIndex" json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Slug      string    `gorm:"size:120;not null;uniqueIndex" json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Color struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;not null;uniqueIndex" json:"name"`
	Value     string    `gorm:"size:7;not null" json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Size struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:20;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	GenderMen    = "men"
	GenderWomen  = "women"
	GenderUnisex = "unisex"
	GenderKids   = "kids"

	DressStyleCasual = "casual"
	DressStyleFormal = "formal"
	DressStyleParty  = "party"
	DressStyleGym    = "gym"
)

// RatingDistribution counts reviews per star value, index 0 holding one-star reviews.
type RatingDistribution [5]int

type Product struct {
	ID                 uint                                   `gorm:"primaryKey" json:"id"`
	Name               string                                 `gorm:"size:200;not null" json:"name"`
	SKU                string                                 `gorm:"column:sku;size:32;not null;uniqueIndex" json:"sku"`
	Slug               string                                 `gorm:"size:220;not null;uniqueIndex" json:"slug"`
	Description        string                                 `gorm:"type:text" json:"description"`
	CategoryID         uint                                   `gorm:"index;not null" json:"categoryId"`
	Category           *Category                              `json:"category,omitempty"`
	BrandID            uint                                   `gorm:"index;not null" json:"brandId"`
	Brand              *Brand                                 `json:"brand,omitempty"`
	Gender             string                                 `gorm:"size:10;index" json:"gender"`
	DressStyle         string                                 `gorm:"size:10;index" json:"dressStyle"`
	MinPrice           decimal.Decimal                        `gorm:"type:decimal(12,2);not null;default:0" json:"minPrice"`
	MaxPrice           decimal.Decimal                        `gorm:"type:decimal(12,2);not null;default:0" json:"maxPrice"`
	Rating             float64                                `gorm:"not null;default:0" json:"rating"`
	NumReviews         int                                    `gorm:"not null;default:0" json:"numReviews"`
	RatingDistribution datatypes.JSONType[RatingDistribution] `json:"ratingDistribution"`
	IsArchived         bool                                   `gorm:"not null;default:false;index" json:"isArchived"`
	Images             []ProductImage                         `json:"images"`
	Variants           []ProductVariant                       `json:"variants"`
	CreatedAt          time.Time                              `json:"createdAt"`
	UpdatedAt          time.Time                              `json:"updatedAt"`
}

// MainImage returns the url of the image flagged main, or the first image.
func (p *Product) MainImage() string {
	for _, img := range p.Images {
		if img.IsMain {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}

type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"index;not null" json:"productId"`
	URL       string    `gorm:"size:500;not null" json:"url"`
	PublicID  string    `gorm:"size:255" json:"publicId"`
	IsMain    bool      `gorm:"not null;default:false" json:"isMain"`
	CreatedAt time.Time `json:"createdAt"`
}

type ProductVariant struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	ProductID       uint            `gorm:"not null;uniqueIndex:idx_variant_combo" json:"productId"`
	ColorID         uint            `gorm:"not null;uniqueIndex:idx_variant_combo" json:"colorId"`
	Color           *Color          `json:"color,omitempty"`
	SizeID          uint            `gorm:"not null;uniqueIndex:idx_variant_combo" json:"sizeId"`
	Size            *Size           `json:"size,omitempty"`
	Quantity        int             `gorm:"not null;default:0" json:"quantity"`
	Price           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Discount        int             `gorm:"not null;default:0" json:"discount"`
	DiscountedPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discountedPrice"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (v ProductVariant) ListPrice() decimal.Decimal { return v.Price }
func (v ProductVariant) SalePrice() decimal.Decimal { return v.DiscountedPrice }
