// Package cart serves the per-client cart, wishlist and browsing history.
package cart

import (
	"context"
	"strings"

	"storefront-api/apperr"
	"storefront-api/models"
	"storefront-api/pricing"
	"storefront-api/stores"
	"storefront-api/validation"
)

// Catalog is the part of the product service the stores resolve against.
type Catalog interface {
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	FindVisible(ctx context.Context, ids []uint) ([]models.Product, error)
}

type Service struct {
	catalog  Catalog
	carts    *stores.CartStore
	wishlist *stores.Wishlist
	history  *stores.History
}

func NewService(catalog Catalog, carts *stores.CartStore, wishlist *stores.Wishlist, history *stores.History) *Service {
	return &Service{catalog: catalog, carts: carts, wishlist: wishlist, history: history}
}

type AddInput struct {
	ProductID uint   `json:"productId" validate:"required"`
	Color     string `json:"color" validate:"required"`
	Size      string `json:"size" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1,max=100"`
}

type QuantityInput struct {
	ProductID uint   `json:"productId" validate:"required"`
	Color     string `json:"color" validate:"required"`
	Size      string `json:"size" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=0,max=100"`
}

// Add puts a variant in the cart, priced and capped from the live catalog.
func (s *Service) Add(ctx context.Context, clientID string, in AddInput) (stores.Cart, error) {
	if err := validation.Struct(&in); err != nil {
		return stores.Cart{}, err
	}
	product, err := s.catalog.GetProduct(ctx, in.ProductID)
	if err != nil {
		return stores.Cart{}, err
	}
	if product.IsArchived {
		return stores.Cart{}, apperr.NotFound("Product not found")
	}

	var variant *models.ProductVariant
	for i := range product.Variants {
		v := &product.Variants[i]
		if v.Color != nil && v.Size != nil &&
			strings.EqualFold(v.Color.Name, in.Color) && strings.EqualFold(v.Size.Name, in.Size) {
			variant = v
			break
		}
	}
	if variant == nil {
		return stores.Cart{}, apperr.NotFound("Variant %s / %s not found", in.Color, in.Size)
	}
	if variant.Quantity <= 0 {
		return stores.Cart{}, apperr.Validation("%s (%s / %s) is out of stock", product.Name, variant.Color.Name, variant.Size.Name)
	}

	item := stores.CartItem{
		ProductID:       product.ID,
		Slug:            product.Slug,
		Name:            product.Name,
		Image:           product.MainImage(),
		Color:           variant.Color.Name,
		Size:            variant.Size.Name,
		Price:           variant.Price,
		DiscountedPrice: variant.DiscountedPrice,
		Quantity:        in.Quantity,
		MaxQuantity:     variant.Quantity,
	}
	if product.Brand != nil {
		item.Brand = product.Brand.Name
	}
	return s.carts.Add(ctx, clientID, item)
}

func (s *Service) SetQuantity(ctx context.Context, clientID string, in QuantityInput) (stores.Cart, error) {
	if err := validation.Struct(&in); err != nil {
		return stores.Cart{}, err
	}
	return s.carts.SetQuantity(ctx, clientID, in.ProductID, in.Color, in.Size, in.Quantity)
}

func (s *Service) Remove(ctx context.Context, clientID string, productID uint, color, size string) (stores.Cart, error) {
	return s.carts.Remove(ctx, clientID, productID, color, size)
}

func (s *Service) Get(ctx context.Context, clientID string) (stores.Cart, error) {
	return s.carts.Get(ctx, clientID)
}

// Totals quotes the cart for deliveryMethod, defaulting to courier.
func (s *Service) Totals(ctx context.Context, clientID, deliveryMethod string) (pricing.Summary, int, error) {
	if deliveryMethod == "" {
		deliveryMethod = pricing.DeliveryCourier
	}
	if err := validation.Var("deliveryMethod", deliveryMethod, "oneof=courier pickup"); err != nil {
		return pricing.Summary{}, 0, err
	}
	c, err := s.carts.Get(ctx, clientID)
	if err != nil {
		return pricing.Summary{}, 0, err
	}
	return s.carts.Quote(c, deliveryMethod), c.Count(), nil
}

func (s *Service) Clear(ctx context.Context, clientID string) error {
	return s.carts.Clear(ctx, clientID)
}

// ToggleWishlist flips productID in the wishlist. Only visible products can be added.
func (s *Service) ToggleWishlist(ctx context.Context, clientID string, productID uint) (bool, []models.Product, error) {
	ids, err := s.wishlist.List(ctx, clientID)
	if err != nil {
		return false, nil, err
	}
	present := false
	for _, id := range ids {
		if id == productID {
			present = true
			break
		}
	}
	if !present {
		visible, err := s.catalog.FindVisible(ctx, []uint{productID})
		if err != nil {
			return false, nil, apperr.Handle(err)
		}
		if len(visible) == 0 {
			return false, nil, apperr.NotFound("Product not found")
		}
	}

	added, ids, err := s.wishlist.Toggle(ctx, clientID, productID)
	if err != nil {
		return false, nil, err
	}
	products, err := s.resolve(ctx, ids)
	return added, products, err
}

func (s *Service) RemoveFromWishlist(ctx context.Context, clientID string, productID uint) ([]models.Product, error) {
	ids, err := s.wishlist.Remove(ctx, clientID, productID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, ids)
}

func (s *Service) Wishlist(ctx context.Context, clientID string) ([]models.Product, error) {
	ids, err := s.wishlist.List(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, ids)
}

func (s *Service) ClearWishlist(ctx context.Context, clientID string) error {
	return s.wishlist.Clear(ctx, clientID)
}

func (s *Service) History(ctx context.Context, clientID string) ([]models.Product, error) {
	ids, err := s.history.List(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, ids)
}

func (s *Service) ClearHistory(ctx context.Context, clientID string) error {
	return s.history.Clear(ctx, clientID)
}

// resolve drops ids whose product is gone or archived.
func (s *Service) resolve(ctx context.Context, ids []uint) ([]models.Product, error) {
	products, err := s.catalog.FindVisible(ctx, ids)
	if err != nil {
		return nil, apperr.Handle(err)
	}
	return products, nil
}
