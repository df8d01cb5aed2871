package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentCard = "card"
	PaymentCash = "cash"

	DeliveryCourier = "courier"
	DeliveryPickup  = "pickup"
)

type Order struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	UserID          uint             `gorm:"index;not null" json:"userId"`
	User            *User            `json:"user,omitempty"`
	TotalPrice      decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"totalPrice"`
	PaymentMethod   string           `gorm:"size:10;not null" json:"paymentMethod"`
	DeliveryMethod  string           `gorm:"size:10;not null" json:"deliveryMethod"`
	IsPaid          bool             `gorm:"not null;default:false;index" json:"isPaid"`
	PaidAt          *time.Time       `json:"paidAt"`
	IsDelivered     bool             `gorm:"not null;default:false;index" json:"isDelivered"`
	DeliveredAt     *time.Time       `json:"deliveredAt"`
	IsRead          bool             `gorm:"not null;default:false" json:"isRead"`
	PaymentRef      string           `gorm:"size:100" json:"paymentRef,omitempty"`
	DeliveryAddress *DeliveryAddress `json:"deliveryAddress,omitempty"`
	Items           []OrderItem      `json:"items"`
	CreatedAt       time.Time        `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// OrderItem is a snapshot of what was bought. Product and variant ids are kept
// only as plain references; the display fields never follow catalog edits.
type OrderItem struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderID         uint            `gorm:"index;not null" json:"orderId"`
	ProductID       uint            `gorm:"index" json:"productId"`
	Product         *Product        `json:"-"`
	VariantID       uint            `json:"variantId"`
	Name            string          `gorm:"size:200;not null" json:"name"`
	Slug            string          `gorm:"size:220;not null" json:"slug"`
	Brand           string          `gorm:"size:100" json:"brand"`
	Category        string          `gorm:"size:100" json:"category"`
	Color           string          `gorm:"size:50" json:"color"`
	Size            string          `gorm:"size:20" json:"size"`
	Price           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	DiscountedPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discountedPrice"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	Image           string          `gorm:"size:500" json:"image"`
}

type DeliveryAddress struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	OrderID    uint   `gorm:"uniqueIndex;not null" json:"orderId"`
	FirstName  string `gorm:"size:100;not null" json:"firstName"`
	LastName   string `gorm:"size:100;not null" json:"lastName"`
	Email      string `gorm:"size:200;not null" json:"email"`
	Phone      string `gorm:"size:30;not null" json:"phone"`
	Street     string `gorm:"size:200;not null" json:"street"`
	City       string `gorm:"size:100;not null" json:"city"`
	PostalCode string `gorm:"size:20;not null" json:"postalCode"`
	Country    string `gorm:"size:100;not null" json:"country"`
}
