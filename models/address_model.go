package models

import "time"

// Address is an entry in a user's address book. Checkout copies it into a
// fresh DeliveryAddress so later edits never reach past orders.
type Address struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"userId"`
	FirstName  string    `gorm:"size:100;not null" json:"firstName"`
	LastName   string    `gorm:"size:100;not null" json:"lastName"`
	Email      string    `gorm:"size:200;not null" json:"email"`
	Phone      string    `gorm:"size:30;not null" json:"phone"`
	Street     string    `gorm:"size:200;not null" json:"street"`
	City       string    `gorm:"size:100;not null" json:"city"`
	PostalCode string    `gorm:"size:20;not null" json:"postalCode"`
	Country    string    `gorm:"size:100;not null" json:"country"`
	IsDefault  bool      `gorm:"not null;default:false" json:"isDefault"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
