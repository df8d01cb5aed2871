// Package reviews stores product reviews and keeps each product's rating aggregate current.
package reviews

import (
	"context"
	"errors"

	"storefront-api/apperr"
	"storefront-api/controllers/request"
	"storefront-api/models"
	"storefront-api/validation"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type ReviewInput struct {
	ProductID uint   `json:"productId" validate:"required"`
	UserID    uint   `json:"-"`
	Rating    int    `json:"rating" validate:"min=1,max=5"`
	Comment   string `json:"comment" validate:"max=1000"`
}

// Aggregate is the rating summary stored on a product.
type Aggregate struct {
	Average      float64
	Count        int
	Distribution models.RatingDistribution
}

// Summarize folds per-star counts into an aggregate. The average is rounded to two decimals.
func Summarize(counts map[int]int) Aggregate {
	var (
		agg Aggregate
		sum int
	)
	for star, n := range counts {
		if star < 1 || star > 5 || n <= 0 {
			continue
		}
		agg.Distribution[star-1] += n
		agg.Count += n
		sum += star * n
	}
	if agg.Count > 0 {
		agg.Average = decimal.NewFromInt(int64(sum)).
			Div(decimal.NewFromInt(int64(agg.Count))).
			Round(2).InexactFloat64()
	}
	return agg
}

// recompute rebuilds the product's rating fields from every review it has.
func recompute(tx *gorm.DB, productID uint) error {
	var rows []struct {
		Rating int
		Count  int
	}
	err := tx.Model(&models.Review{}).Select("rating, COUNT(*) AS count").
		Where("product_id = ?", productID).Group("rating").Scan(&rows).Error
	if err != nil {
		return err
	}
	counts := make(map[int]int, len(rows))
	for _, r := range rows {
		counts[r.Rating] = r.Count
	}
	agg := Summarize(counts)
	return tx.Model(&models.Product{}).Where("id = ?", productID).Updates(map[string]any{
		"rating":              agg.Average,
		"num_reviews":         agg.Count,
		"rating_distribution": datatypes.NewJSONType(agg.Distribution),
	}).Error
}

func (s *Service) CreateReview(ctx context.Context, in ReviewInput) (*models.Review, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	var review models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Select("id", "is_archived").First(&product, in.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Product not found")
			}
			return err
		}
		if product.IsArchived {
			return apperr.NotFound("Product not found")
		}

		var existing int64
		if err := tx.Model(&models.Review{}).Where("product_id = ? AND user_id = ?", in.ProductID, in.UserID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperr.Conflict("You have already reviewed this product")
		}

		var bought int64
		err := tx.Model(&models.OrderItem{}).
			Joins("JOIN orders ON orders.id = order_items.order_id").
			Where("orders.user_id = ? AND order_items.product_id = ?", in.UserID, in.ProductID).
			Count(&bought).Error
		if err != nil {
			return err
		}

		review = models.Review{
			ProductID:          in.ProductID,
			UserID:             in.UserID,
			Rating:             in.Rating,
			Comment:            in.Comment,
			IsVerifiedPurchase: bought > 0,
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return recompute(tx, in.ProductID)
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// DeleteReview removes a review on behalf of its author or an admin.
func (s *Service) DeleteReview(ctx context.Context, id uint, actor request.Actor) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Review not found")
			}
			return err
		}
		if !actor.IsAdmin() && review.UserID != actor.UserID {
			return apperr.Forbidden("You are not allowed to delete this review")
		}
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		return recompute(tx, review.ProductID)
	})
}

func (s *Service) ListProductReviews(ctx context.Context, productID uint, page, limit int) ([]models.Review, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Review{}).Where("product_id = ?", productID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	reviews := []models.Review{}
	err := s.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "image") }).
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&reviews).Error
	return reviews, total, err
}

func (s *Service) ListUserReviews(ctx context.Context, userID uint) ([]models.Review, error) {
	reviews := []models.Review{}
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&reviews).Error
	return reviews, err
}
