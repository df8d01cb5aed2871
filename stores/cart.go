package stores

import (
	"context"
	"strings"

	"storefront-api/apperr"
	"storefront-api/pricing"

	"github.com/shopspring/decimal"
)

// MaxLineQuantity bounds a single cart line regardless of stock.
const MaxLineQuantity = 100

type CartItem struct {
	ProductID       uint            `json:"productId"`
	Slug            string          `json:"slug"`
	Name            string          `json:"name"`
	Brand           string          `json:"brand"`
	Image           string          `json:"image"`
	Color           string          `json:"color"`
	Size            string          `json:"size"`
	Price           decimal.Decimal `json:"price"`
	DiscountedPrice decimal.Decimal `json:"discountedPrice"`
	Quantity        int             `json:"quantity"`
	MaxQuantity     int             `json:"maxQuantity"`
}

func (i CartItem) sameLine(productID uint, color, size string) bool {
	return i.ProductID == productID && strings.EqualFold(i.Color, color) && strings.EqualFold(i.Size, size)
}

// Cart is the stored document: its summary is refreshed on every mutation.
type Cart struct {
	Items   []CartItem      `json:"items"`
	Summary pricing.Summary `json:"summary"`
}

// Lines converts the cart to pricing lines.
func (c Cart) Lines() []pricing.Line {
	lines := make([]pricing.Line, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, pricing.Line{Price: it.Price, DiscountedPrice: it.DiscountedPrice, Quantity: it.Quantity})
	}
	return lines
}

// Count is the number of units in the cart.
func (c Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

type CartStore struct {
	kv    KV
	rules pricing.Rules
}

func NewCartStore(kv KV, rules pricing.Rules) *CartStore {
	return &CartStore{kv: kv, rules: rules}
}

func cartKey(clientID string) string { return "cart:" + clientID }

func (s *CartStore) Get(ctx context.Context, clientID string) (Cart, error) {
	var c Cart
	if err := load(ctx, s.kv, cartKey(clientID), &c); err != nil {
		return Cart{}, err
	}
	if c.Items == nil {
		c.Items = []CartItem{}
	}
	return c, nil
}

// Quote totals the cart for a specific delivery method.
func (s *CartStore) Quote(c Cart, deliveryMethod string) pricing.Summary {
	return s.rules.Summarize(c.Lines(), deliveryMethod)
}

func (s *CartStore) put(ctx context.Context, clientID string, c Cart) (Cart, error) {
	c.Summary = s.rules.Summarize(c.Lines(), pricing.DeliveryCourier)
	if err := save(ctx, s.kv, cartKey(clientID), c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Add merges item into the cart by product, color and size.
func (s *CartStore) Add(ctx context.Context, clientID string, item CartItem) (Cart, error) {
	if item.Quantity <= 0 {
		return Cart{}, apperr.Validation("quantity must be at least 1")
	}
	c, err := s.Get(ctx, clientID)
	if err != nil {
		return Cart{}, err
	}

	merged := false
	for i := range c.Items {
		if c.Items[i].sameLine(item.ProductID, item.Color, item.Size) {
			c.Items[i].Quantity += item.Quantity
			c.Items[i].Price = item.Price
			c.Items[i].DiscountedPrice = item.DiscountedPrice
			c.Items[i].MaxQuantity = item.MaxQuantity
			c.Items[i] = capQuantity(c.Items[i])
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(c.Items, capQuantity(item))
	}
	return s.put(ctx, clientID, c)
}

// SetQuantity replaces a line's quantity; zero removes the line.
func (s *CartStore) SetQuantity(ctx context.Context, clientID string, productID uint, color, size string, qty int) (Cart, error) {
	if qty < 0 {
		return Cart{}, apperr.Validation("quantity cannot be negative")
	}
	c, err := s.Get(ctx, clientID)
	if err != nil {
		return Cart{}, err
	}
	for i := range c.Items {
		if !c.Items[i].sameLine(productID, color, size) {
			continue
		}
		if qty == 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		} else {
			c.Items[i].Quantity = qty
			c.Items[i] = capQuantity(c.Items[i])
		}
		return s.put(ctx, clientID, c)
	}
	return Cart{}, apperr.NotFound("Product with specified color and size not found in cart")
}

func (s *CartStore) Remove(ctx context.Context, clientID string, productID uint, color, size string) (Cart, error) {
	return s.SetQuantity(ctx, clientID, productID, color, size, 0)
}

func (s *CartStore) Clear(ctx context.Context, clientID string) error {
	return s.kv.Delete(ctx, cartKey(clientID))
}

func capQuantity(it CartItem) CartItem {
	if it.MaxQuantity > 0 && it.Quantity > it.MaxQuantity {
		it.Quantity = it.MaxQuantity
	}
	if it.Quantity > MaxLineQuantity {
		it.Quantity = MaxLineQuantity
	}
	return it
}
