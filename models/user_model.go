package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Name               string     `gorm:"size:100" json:"name"`
	Email              string     `gorm:"size:200;not null;uniqueIndex" json:"email"`
	Password           string     `gorm:"size:100" json:"-"`
	Image              string     `gorm:"size:500" json:"image,omitempty"`
	Role               string     `gorm:"size:10;not null;default:user" json:"role"`
	IsActive           bool       `gorm:"not null;default:true" json:"isActive"`
	EmailVerified      *time.Time `json:"emailVerified"`
	IsTwoFactorEnabled bool       `gorm:"not null;default:false" json:"isTwoFactorEnabled"`
	Provider           string     `gorm:"size:20" json:"provider,omitempty"`
	ProviderAccountID  string     `gorm:"size:100" json:"-"`
	CreatedAt          time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// IsOAuth reports whether the account was created through an identity provider.
func (u *User) IsOAuth() bool { return u.Provider != "" }

// VerificationToken confirms Email. UserID is set when an existing account
// asked to move to Email, and zero for a fresh registration.
type VerificationToken struct {
	ID      uint      `gorm:"primaryKey"`
	UserID  uint      `gorm:"index"`
	Email   string    `gorm:"size:200;not null;index"`
	Token   string    `gorm:"size:64;not null;uniqueIndex"`
	Expires time.Time `gorm:"not null"`
}

type PasswordResetToken struct {
	ID      uint      `gorm:"primaryKey"`
	Email   string    `gorm:"size:200;not null;index"`
	Token   string    `gorm:"size:64;not null;uniqueIndex"`
	Expires time.Time `gorm:"not null"`
}

type TwoFactorToken struct {
	ID      uint      `gorm:"primaryKey"`
	Email   string    `gorm:"size:200;not null;index"`
	Token   string    `gorm:"size:64;not null;uniqueIndex"`
	Expires time.Time `gorm:"not null"`
}

type TwoFactorConfirmation struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"not null;uniqueIndex"`
}

// All lists every model for auto-migration.
func All() []any {
	return []any{
		&Brand{}, &Category{}, &Color{}, &Size{},
		&Product{}, &ProductImage{}, &ProductVariant{},
		&User{}, &Address{}, &Order{}, &OrderItem{}, &DeliveryAddress{}, &Review{},
		&VerificationToken{}, &PasswordResetToken{}, &TwoFactorToken{}, &TwoFactorConfirmation{},
	}
}
