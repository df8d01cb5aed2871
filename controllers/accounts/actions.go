// Package accounts lets users manage their own account and admins manage everyone's.
package accounts

import (
	"context"
	"errors"
	"strings"

	"storefront-api/apperr"
	"storefront-api/auth"
	"storefront-api/controllers/request"
	"storefront-api/models"
	"storefront-api/validation"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// Verifier mails a confirmation link that moves userID to email once followed.
type Verifier interface {
	SendVerification(ctx context.Context, userID uint, email string) error
}

type Service struct {
	db       *gorm.DB
	verifier Verifier
}

func NewService(db *gorm.DB, verifier Verifier) *Service {
	return &Service{db: db, verifier: verifier}
}

type SettingsInput struct {
	Name               *string `json:"name" validate:"omitempty,max=100"`
	Email              *string `json:"email" validate:"omitempty,email"`
	Password           string  `json:"password"`
	NewPassword        string  `json:"newPassword" validate:"omitempty,min=6"`
	IsTwoFactorEnabled *bool   `json:"isTwoFactorEnabled"`
}

type SettingsResult struct {
	User             *models.User `json:"user"`
	VerificationSent bool         `json:"verificationSent"`
}

type ProfileInput struct {
	Name  string `json:"name" validate:"required,max=100"`
	Image string `json:"profileImage" validate:"omitempty,url,max=500"`
}

func (s *Service) load(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Handle(err)
	}
	return &u, nil
}

// UpdateSettings applies the requested changes. Accounts from an identity
// provider keep their email, password and two-factor setting.
func (s *Service) UpdateSettings(ctx context.Context, userID uint, in SettingsInput) (*SettingsResult, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Name != nil && *in.Name != "" {
		updates["name"] = *in.Name
	}

	var res SettingsResult
	if !u.IsOAuth() {
		if in.Email != nil {
			email := strings.ToLower(*in.Email)
			if email != u.Email {
				var n int64
				if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
					return nil, apperr.Handle(err)
				}
				if n > 0 {
					return nil, apperr.Conflict("Email already in use")
				}
				if err := s.verifier.SendVerification(ctx, u.ID, email); err != nil {
					return nil, err
				}
				res.VerificationSent = true
			}
		}
		if in.NewPassword != "" {
			if !auth.CheckPassword(u.Password, in.Password) {
				return nil, apperr.Validation("Incorrect password")
			}
			hash, err := auth.HashPassword(in.NewPassword)
			if err != nil {
				return nil, apperr.Handle(err)
			}
			updates["password"] = hash
		}
		if in.IsTwoFactorEnabled != nil {
			updates["is_two_factor_enabled"] = *in.IsTwoFactorEnabled
		}
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", u.ID).Updates(updates).Error; err != nil {
			return nil, apperr.Handle(err)
		}
	}
	if res.User, err = s.load(ctx, u.ID); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.User, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]any{"name": in.Name, "image": in.Image})
	if res.Error != nil {
		return nil, apperr.Handle(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("User not found")
	}
	return s.load(ctx, userID)
}

type UserQuery struct {
	Search string
	Page   int
	Limit  int
}

func (s *Service) ListUsers(ctx context.Context, q UserQuery) ([]models.User, int64, error) {
	scope := func() *gorm.DB {
		db := s.db.WithContext(ctx).Model(&models.User{})
		if term := strings.TrimSpace(q.Search); term != "" {
			like := request.Contains(term)
			db = db.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`, like, like)
		}
		return db
	}
	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, apperr.Handle(err)
	}
	users := make([]models.User, 0)
	err := scope().Order("created_at DESC").Order("id DESC").
		Offset((q.Page - 1) * q.Limit).Limit(q.Limit).Find(&users).Error
	if err != nil {
		return nil, 0, apperr.Handle(err)
	}
	return users, total, nil
}

type AdminUpdateInput struct {
	Role     *string `json:"role" validate:"omitempty,oneof=admin user"`
	IsActive *bool   `json:"isActive"`
}

// UpdateUser changes role or active flag. Admins cannot demote or deactivate themselves.
func (s *Service) UpdateUser(ctx context.Context, actorID, id uint, in AdminUpdateInput) (*models.User, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	if actorID == id && ((in.Role != nil && *in.Role != models.RoleAdmin) || (in.IsActive != nil && !*in.IsActive)) {
		return nil, apperr.Forbidden("You cannot demote or deactivate your own account")
	}
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.Role != nil {
		updates["role"] = *in.Role
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if len(updates) == 0 {
		return u, nil
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, apperr.Handle(err)
	}
	log.Infow("user updated by admin", "userId", id, "adminId", actorID)
	return s.load(ctx, id)
}

// DeactivateUser is the admin soft delete. Orders and reviews stay in place.
func (s *Service) DeactivateUser(ctx context.Context, actorID, id uint) error {
	inactive := false
	_, err := s.UpdateUser(ctx, actorID, id, AdminUpdateInput{IsActive: &inactive})
	return err
}
