// Package addresses keeps each user's saved delivery addresses.
package addresses

import (
	"context"
	"errors"

	"storefront-api/apperr"
	"storefront-api/models"
	"storefront-api/validation"

	"gorm.io/gorm"
)

const maxAddresses = 10

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type Input struct {
	FirstName  string `json:"firstName" validate:"required,max=100"`
	LastName   string `json:"lastName" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required,max=30"`
	Street     string `json:"street" validate:"required,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=100"`
	IsDefault  bool   `json:"isDefault"`
}

func (in Input) fields() map[string]any {
	return map[string]any{
		"first_name":  in.FirstName,
		"last_name":   in.LastName,
		"email":       in.Email,
		"phone":       in.Phone,
		"street":      in.Street,
		"city":        in.City,
		"postal_code": in.PostalCode,
		"country":     in.Country,
	}
}

func (s *Service) List(ctx context.Context, userID uint) ([]models.Address, error) {
	addresses := make([]models.Address, 0)
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("is_default DESC").Order("id").Find(&addresses).Error
	if err != nil {
		return nil, apperr.Handle(err)
	}
	return addresses, nil
}

func owned(tx *gorm.DB, userID, id uint) (*models.Address, error) {
	var a models.Address
	err := tx.Where("id = ? AND user_id = ?", id, userID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Address not found")
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func clearDefault(tx *gorm.DB, userID uint) error {
	return tx.Model(&models.Address{}).Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}

// Add saves a new address. The first address a user saves becomes the default.
func (s *Service) Add(ctx context.Context, userID uint, in Input) (*models.Address, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	a := models.Address{
		UserID: userID, FirstName: in.FirstName, LastName: in.LastName, Email: in.Email, Phone: in.Phone,
		Street: in.Street, City: in.City, PostalCode: in.PostalCode, Country: in.Country,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Address{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count >= maxAddresses {
			return apperr.Validation("You can save at most %d addresses", maxAddresses)
		}
		a.IsDefault = in.IsDefault || count == 0
		if a.IsDefault {
			if err := clearDefault(tx, userID); err != nil {
				return err
			}
		}
		return tx.Create(&a).Error
	})
	if err != nil {
		return nil, apperr.Handle(err)
	}
	return &a, nil
}

func (s *Service) Edit(ctx context.Context, userID, id uint, in Input) (*models.Address, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	var out *models.Address
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := owned(tx, userID, id)
		if err != nil {
			return err
		}
		fields := in.fields()
		if in.IsDefault && !a.IsDefault {
			if err := clearDefault(tx, userID); err != nil {
				return err
			}
			fields["is_default"] = true
		}
		if err := tx.Model(a).Updates(fields).Error; err != nil {
			return err
		}
		out, err = owned(tx, userID, id)
		return err
	})
	if err != nil {
		return nil, apperr.Handle(err)
	}
	return out, nil
}

func (s *Service) SetDefault(ctx context.Context, userID, id uint) error {
	return apperr.Handle(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := owned(tx, userID, id)
		if err != nil {
			return err
		}
		if err := clearDefault(tx, userID); err != nil {
			return err
		}
		return tx.Model(a).Update("is_default", true).Error
	}))
}

// Delete removes an address. When it was the default, the oldest remaining one takes over.
func (s *Service) Delete(ctx context.Context, userID, id uint) error {
	return apperr.Handle(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := owned(tx, userID, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(a).Error; err != nil {
			return err
		}
		if !a.IsDefault {
			return nil
		}
		var next models.Address
		err = tx.Where("user_id = ?", userID).Order("id").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_default", true).Error
	}))
}
