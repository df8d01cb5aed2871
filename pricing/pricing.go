// Package pricing derives variant prices, product price ranges and checkout totals.
package pricing

import (
	"github.com/shopspring/decimal"
)

const (
	DeliveryCourier = "courier"
	DeliveryPickup  = "pickup"
)

var hundred = decimal.NewFromInt(100)

// DiscountedPrice is price reduced by discount percent, rounded to cents.
// A zero or negative discount leaves the price untouched.
func DiscountedPrice(price decimal.Decimal, discount int) decimal.Decimal {
	if discount <= 0 {
		return price
	}
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromInt(int64(discount)).Div(hundred))
	return price.Mul(factor).Round(2)
}

// Priced is anything with a list price and a discounted price.
type Priced interface {
	ListPrice() decimal.Decimal
	SalePrice() decimal.Decimal
}

// PriceRange returns the lowest discounted price and the highest list price.
// The bounds come from different fields.
func PriceRange[T Priced](variants []T) (minPrice, maxPrice decimal.Decimal) {
	for i, v := range variants {
		sale, list := v.SalePrice(), v.ListPrice()
		if i == 0 || sale.LessThan(minPrice) {
			minPrice = sale
		}
		if i == 0 || list.GreaterThan(maxPrice) {
			maxPrice = list
		}
	}
	return minPrice, maxPrice
}

// Rules are the delivery fee settings applied at checkout.
type Rules struct {
	DeliveryFee           decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
}

func DefaultRules() Rules {
	return Rules{
		DeliveryFee:           decimal.NewFromInt(15),
		FreeDeliveryThreshold: decimal.NewFromInt(150),
	}
}

// Line is one cart or order line as seen by the totals calculation.
type Line struct {
	Price           decimal.Decimal `json:"price"`
	DiscountedPrice decimal.Decimal `json:"discountedPrice"`
	Quantity        int             `json:"quantity"`
}

type Summary struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	DeliveryFee    decimal.Decimal `json:"deliveryFee"`
	Total          decimal.Decimal `json:"total"`
}

// Summarize totals the lines for the given delivery method.
func (r Rules) Summarize(lines []Line, deliveryMethod string) Summary {
	var s Summary
	for _, l := range lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		s.Subtotal = s.Subtotal.Add(l.Price.Mul(qty))
		s.DiscountAmount = s.DiscountAmount.Add(l.Price.Sub(l.DiscountedPrice).Mul(qty))
	}
	s.DeliveryFee = r.fee(s.Subtotal, deliveryMethod, len(lines) > 0)
	s.Total = s.Subtotal.Sub(s.DiscountAmount).Add(s.DeliveryFee)
	return s
}

func (r Rules) fee(subtotal decimal.Decimal, deliveryMethod string, hasLines bool) decimal.Decimal {
	if !hasLines || deliveryMethod == DeliveryPickup {
		return decimal.Zero
	}
	if subtotal.GreaterThan(r.FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return r.DeliveryFee
}

// OrderTotal is the sum of discounted price times quantity, without delivery.
func OrderTotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.DiscountedPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}
