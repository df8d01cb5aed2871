// Package user registers accounts and issues session tokens.
package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront-api/apperr"
	"storefront-api/auth"
	"storefront-api/mail"
	"storefront-api/models"
	"storefront-api/validation"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

type Service struct {
	db        *gorm.DB
	signer    *auth.Signer
	mailer    *mail.Mailer
	throttle  *auth.Throttle
	providers map[string]IdentityProvider
	now       func() time.Time
}

func NewService(db *gorm.DB, signer *auth.Signer, mailer *mail.Mailer, throttle *auth.Throttle, providers map[string]IdentityProvider) *Service {
	if providers == nil {
		providers = map[string]IdentityProvider{}
	}
	return &Service{db: db, signer: signer, mailer: mailer, throttle: throttle, providers: providers, now: time.Now}
}

type RegisterInput struct {
	Name            string `json:"name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Code     string `json:"code" validate:"omitempty,len=6,numeric"`
}

// LoginResult carries either a session token or the request for a second factor.
type LoginResult struct {
	Token             string       `json:"token,omitempty"`
	User              *models.User `json:"user,omitempty"`
	TwoFactorRequired bool         `json:"twoFactorRequired,omitempty"`
}

type ResetInput struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) findByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperr.Validation("Passwords do not match")
	}
	email := normalizeEmail(in.Email)

	existing, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Handle(err)
	}
	if existing != nil {
		return nil, apperr.Conflict("User with same email already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Handle(err)
	}
	u := models.User{Name: in.Name, Email: email, Password: hash, Role: models.RoleUser, IsActive: true}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, apperr.Handle(err)
	}
	if err := s.SendVerification(ctx, 0, email); err != nil {
		return nil, err
	}
	log.Infow("user registered", "userId", u.ID)
	return &u, nil
}

// SendVerification replaces any pending token for email and mails a fresh link.
// userID is non-zero when an existing account is moving to email.
func (s *Service) SendVerification(ctx context.Context, userID uint, email string) error {
	token := models.VerificationToken{
		UserID:  userID,
		Email:   email,
		Token:   auth.NewToken(),
		Expires: s.now().Add(auth.VerificationTTL),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).Delete(&models.VerificationToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&token).Error
	})
	if err != nil {
		return apperr.Handle(err)
	}
	s.mailer.Deliver(ctx, s.mailer.Verification(email, token.Token))
	return nil
}

func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return apperr.Validation("Missing token")
	}
	db := s.db.WithContext(ctx)

	var vt models.VerificationToken
	err := db.Where("token = ?", token).First(&vt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("Token does not exist")
	}
	if err != nil {
		return apperr.Handle(err)
	}
	if s.now().After(vt.Expires) {
		return apperr.Validation("Token has expired")
	}

	var u models.User
	if vt.UserID != 0 {
		err = db.First(&u, vt.UserID).Error
	} else {
		err = db.Where("email = ?", vt.Email).First(&u).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("Email does not exist")
	}
	if err != nil {
		return apperr.Handle(err)
	}

	updates := map[string]any{"email_verified": s.now()}
	if vt.UserID != 0 && u.Email != vt.Email {
		taken, err := s.findByEmail(ctx, vt.Email)
		if err != nil {
			return apperr.Handle(err)
		}
		if taken != nil {
			return apperr.Conflict("Email already in use")
		}
		updates["email"] = vt.Email
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", u.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Delete(&models.VerificationToken{}, vt.ID).Error
	})
	return apperr.Handle(err)
}

func (s *Service) issue(u *models.User) (*LoginResult, error) {
	token, err := s.signer.Sign(u.ID, u.Role)
	if err != nil {
		return nil, apperr.Handle(err)
	}
	return &LoginResult{Token: token, User: u}, nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	email := normalizeEmail(in.Email)

	u, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Handle(err)
	}
	if u == nil || u.IsOAuth() || !auth.CheckPassword(u.Password, in.Password) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	if !u.IsActive {
		return nil, apperr.Forbidden("Account is deactivated")
	}

	if u.EmailVerified == nil {
		if s.throttle.Allow("verify:" + email) {
			if err := s.SendVerification(ctx, 0, email); err != nil {
				return nil, err
			}
		}
		return nil, apperr.Forbidden("Email not verified, confirmation email sent")
	}

	if u.IsTwoFactorEnabled {
		if in.Code == "" {
			if err := s.sendTwoFactorCode(ctx, email); err != nil {
				return nil, err
			}
			return &LoginResult{TwoFactorRequired: true}, nil
		}
		if err := s.confirmTwoFactor(ctx, u, in.Code); err != nil {
			return nil, err
		}
	}

	log.Infow("user signed in", "userId", u.ID)
	return s.issue(u)
}

func (s *Service) sendTwoFactorCode(ctx context.Context, email string) error {
	if !s.throttle.Allow("2fa:" + email) {
		return apperr.Validation("Too many codes requested, try again later")
	}
	code, err := auth.NewCode()
	if err != nil {
		return apperr.Handle(err)
	}
	token := models.TwoFactorToken{Email: email, Token: code, Expires: s.now().Add(auth.TwoFactorTTL)}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).Delete(&models.TwoFactorToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&token).Error
	})
	if err != nil {
		return apperr.Handle(err)
	}
	s.mailer.Deliver(ctx, s.mailer.TwoFactorCode(email, code))
	return nil
}

// confirmTwoFactor consumes the code, records a confirmation and consumes that too.
func (s *Service) confirmTwoFactor(ctx context.Context, u *models.User, code string) error {
	return apperr.Handle(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.TwoFactorToken
		err := tx.Where("email = ?", u.Email).First(&t).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && t.Token != code) {
			return apperr.Unauthorized("Invalid code")
		}
		if err != nil {
			return err
		}
		if s.now().After(t.Expires) {
			return apperr.Unauthorized("Code expired")
		}
		if err := tx.Delete(&models.TwoFactorToken{}, t.ID).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", u.ID).Delete(&models.TwoFactorConfirmation{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.TwoFactorConfirmation{UserID: u.ID}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", u.ID).Delete(&models.TwoFactorConfirmation{}).Error
	}))
}

func (s *Service) OAuthLogin(ctx context.Context, provider, token string) (*LoginResult, error) {
	p, ok := s.providers[provider]
	if !ok {
		return nil, apperr.Validation("Unsupported provider %q", provider)
	}
	if token == "" {
		return nil, apperr.Validation("Missing token")
	}
	id, err := p.Validate(ctx, token)
	if err != nil {
		log.Warnw("identity token rejected", "provider", provider, "error", err)
		return nil, apperr.Unauthorized("Invalid %s token", provider)
	}
	email := normalizeEmail(id.Email)

	u, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Handle(err)
	}
	db := s.db.WithContext(ctx)
	now := s.now()

	if u == nil {
		u = &models.User{
			Name:              id.Name,
			Email:             email,
			Image:             id.Image,
			Role:              models.RoleUser,
			IsActive:          true,
			EmailVerified:     &now,
			Provider:          provider,
			ProviderAccountID: id.AccountID,
		}
		if err := db.Create(u).Error; err != nil {
			return nil, apperr.Handle(err)
		}
		log.Infow("user created from identity provider", "userId", u.ID, "provider", provider)
		return s.issue(u)
	}

	if !u.IsActive {
		return nil, apperr.Forbidden("Account is deactivated")
	}
	updates := map[string]any{}
	if id.Image != "" && id.Image != u.Image {
		updates["image"] = id.Image
		u.Image = id.Image
	}
	if u.EmailVerified == nil {
		updates["email_verified"] = now
		u.EmailVerified = &now
	}
	if len(updates) > 0 {
		if err := db.Model(&models.User{}).Where("id = ?", u.ID).Updates(updates).Error; err != nil {
			return nil, apperr.Handle(err)
		}
	}
	return s.issue(u)
}

func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	if err := validation.Var("email", email, "required,email"); err != nil {
		return err
	}
	email = normalizeEmail(email)

	u, err := s.findByEmail(ctx, email)
	if err != nil {
		return apperr.Handle(err)
	}
	if u == nil {
		return apperr.NotFound("Email not found")
	}
	if u.IsOAuth() {
		return apperr.Validation("Account signs in with %s", u.Provider)
	}
	if !s.throttle.Allow("reset:" + email) {
		return apperr.Validation("Too many reset requests, try again later")
	}

	token := models.PasswordResetToken{Email: email, Token: auth.NewToken(), Expires: s.now().Add(auth.PasswordResetTTL)}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&token).Error
	})
	if err != nil {
		return apperr.Handle(err)
	}
	s.mailer.Deliver(ctx, s.mailer.PasswordReset(email, token.Token))
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, in ResetInput) error {
	if err := validation.Struct(&in); err != nil {
		return err
	}
	if in.Password != in.ConfirmPassword {
		return apperr.Validation("Passwords do not match")
	}
	db := s.db.WithContext(ctx)

	var rt models.PasswordResetToken
	err := db.Where("token = ?", in.Token).First(&rt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("Invalid token")
	}
	if err != nil {
		return apperr.Handle(err)
	}
	if s.now().After(rt.Expires) {
		return apperr.Validation("Token has expired")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return apperr.Handle(err)
	}
	return apperr.Handle(db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("email = ?", rt.Email).Update("password", hash)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("Email does not exist")
		}
		return tx.Delete(&models.PasswordResetToken{}, rt.ID).Error
	}))
}

func (s *Service) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Handle(err)
	}
	return &u, nil
}
