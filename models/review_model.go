package models

import "time"

type Review struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	ProductID          uint      `gorm:"not null;uniqueIndex:idx_review_author" json:"productId"`
	UserID             uint      `gorm:"not null;uniqueIndex:idx_review_author" json:"userId"`
	User               *User     `json:"user,omitempty"`
	Rating             int       `gorm:"not null" json:"rating"`
	Comment            string    `gorm:"type:text" json:"comment"`
	IsVerifiedPurchase bool      `gorm:"not null;default:false" json:"isVerifiedPurchase"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}
