// Package orders places and deletes orders, manages them in the back office and takes card payments.
package orders

import (
	"context"
	"errors"
	"maps"
	"slices"

	"storefront-api/apperr"
	"storefront-api/controllers/request"
	"storefront-api/events"
	"storefront-api/mail"
	"storefront-api/models"
	"storefront-api/payments"
	"storefront-api/pricing"
	"storefront-api/stores"
	"storefront-api/validation"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Deps are the collaborators of the order service. Nil members fall back to no-ops.
type Deps struct {
	Mailer   *mail.Mailer
	Events   events.Publisher
	Payments payments.Gateway
	Carts    *stores.CartStore
	Rules    pricing.Rules
	Currency string
}

type Service struct {
	db       *gorm.DB
	mailer   *mail.Mailer
	events   events.Publisher
	gateway  payments.Gateway
	carts    *stores.CartStore
	rules    pricing.Rules
	currency string
}

func NewService(db *gorm.DB, deps Deps) *Service {
	s := &Service{
		db:       db,
		mailer:   deps.Mailer,
		events:   deps.Events,
		gateway:  deps.Payments,
		carts:    deps.Carts,
		rules:    deps.Rules,
		currency: deps.Currency,
	}
	if s.events == nil {
		s.events = events.Nop{}
	}
	if s.gateway == nil {
		s.gateway = payments.Disabled{}
	}
	if s.currency == "" {
		s.currency = "INR"
	}
	return s
}

type LineInput struct {
	ProductID uint   `json:"productId" validate:"required"`
	Color     string `json:"color" validate:"required,max=50"`
	Size      string `json:"size" validate:"required,max=20"`
	// max matches stores.MaxLineQuantity so a full cart line always checks out.
	Quantity  int    `json:"quantity" validate:"min=1,max=100"`
}

type AddressInput struct {
	FirstName  string `json:"firstName" validate:"required,max=100"`
	LastName   string `json:"lastName" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required,min=5,max=30"`
	Street     string `json:"street" validate:"required,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=100"`
}

type PlaceOrderInput struct {
	UserID         uint         `json:"-"`
	Items          []LineInput  `json:"items" validate:"dive"`
	PaymentMethod  string       `json:"paymentMethod" validate:"required,oneof=card cash"`
	DeliveryMethod string       `json:"deliveryMethod" validate:"required,oneof=courier pickup"`
	Address        AddressInput `json:"address"`
}

type OrderEvent struct {
	OrderID    uint            `json:"orderId"`
	UserID     uint            `json:"userId"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

func eventFor(o *models.Order) OrderEvent {
	return OrderEvent{OrderID: o.ID, UserID: o.UserID, TotalPrice: o.TotalPrice}
}

func itemLines(items []models.OrderItem) []pricing.Line {
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Line{Price: it.Price, DiscountedPrice: it.DiscountedPrice, Quantity: it.Quantity})
	}
	return lines
}

// resolveVariant finds the variant of productID by color and size name, ignoring case.
func resolveVariant(tx *gorm.DB, productID uint, color, size string) (*models.ProductVariant, error) {
	var v models.ProductVariant
	err := tx.Preload("Color").Preload("Size").
		Joins("JOIN colors ON colors.id = product_variants.color_id").
		Joins("JOIN sizes ON sizes.id = product_variants.size_id").
		Where("product_variants.product_id = ? AND LOWER(colors.name) = LOWER(?) AND LOWER(sizes.name) = LOWER(?)", productID, color, size).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// PlaceOrder turns a cart snapshot into an order. Variant resolution, the stock check,
// the order rows and the stock decrement share one transaction; the confirmation
// email and the order.placed event follow the commit and never undo it.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, apperr.Validation("Cart is empty")
	}
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	var (
		order models.Order
		user  models.User
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, in.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Unauthorized("User not found")
			}
			return err
		}
		if !user.IsActive {
			return apperr.Forbidden("This account has been deactivated")
		}

		requested := make(map[uint]int, len(in.Items))
		items := make([]models.OrderItem, 0, len(in.Items))
		for _, line := range in.Items {
			var product models.Product
			err := tx.Preload("Brand").Preload("Category").Preload("Images").First(&product, line.ProductID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Validation("Product %d does not exist", line.ProductID)
			}
			if err != nil {
				return err
			}
			if product.IsArchived {
				return apperr.Validation("%s is no longer available", product.Name)
			}

			variant, err := resolveVariant(tx, product.ID, line.Color, line.Size)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Validation("%s is not available in %s / %s", product.Name, line.Color, line.Size)
			}
			if err != nil {
				return err
			}

			requested[variant.ID] += line.Quantity
			if requested[variant.ID] > variant.Quantity {
				return apperr.Validation("Not enough stock for %s (%s / %s): %d left",
					product.Name, variant.Color.Name, variant.Size.Name, variant.Quantity)
			}

			item := models.OrderItem{
				ProductID:       product.ID,
				VariantID:       variant.ID,
				Name:            product.Name,
				Slug:            product.Slug,
				Color:           variant.Color.Name,
				Size:            variant.Size.Name,
				Price:           variant.Price,
				DiscountedPrice: variant.DiscountedPrice,
				Quantity:        line.Quantity,
				Image:           product.MainImage(),
			}
			if product.Brand != nil {
				item.Brand = product.Brand.Name
			}
			if product.Category != nil {
				item.Category = product.Category.Name
			}
			items = append(items, item)
		}

		a := in.Address
		order = models.Order{
			UserID:         user.ID,
			TotalPrice:     pricing.OrderTotal(itemLines(items)),
			PaymentMethod:  in.PaymentMethod,
			DeliveryMethod: in.DeliveryMethod,
			DeliveryAddress: &models.DeliveryAddress{
				FirstName: a.FirstName, LastName: a.LastName, Email: a.Email, Phone: a.Phone,
				Street: a.Street, City: a.City, PostalCode: a.PostalCode, Country: a.Country,
			},
			Items: items,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, id := range slices.Sorted(maps.Keys(requested)) {
			err := tx.Model(&models.ProductVariant{}).Where("id = ?", id).
				UpdateColumn("quantity", gorm.Expr("quantity - ?", requested[id])).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Infow("order placed", "orderId", order.ID, "userId", order.UserID, "total", order.TotalPrice.StringFixed(2))
	s.confirm(ctx, user.Email, &order)
	events.Emit(ctx, s.events, events.OrderPlaced, eventFor(&order))
	return &order, nil
}

func (s *Service) confirm(ctx context.Context, to string, order *models.Order) {
	if s.mailer == nil {
		return
	}
	lines := make([]mail.OrderLine, 0, len(order.Items))
	for _, it := range order.Items {
		lines = append(lines, mail.OrderLine{
			Name:     it.Name,
			Color:    it.Color,
			Size:     it.Size,
			Quantity: it.Quantity,
			Amount:   it.DiscountedPrice.Mul(decimal.NewFromInt(int64(it.Quantity))),
		})
	}
	s.mailer.Deliver(ctx, s.mailer.OrderConfirmation(to, order.ID, lines, order.TotalPrice))
}

// DeleteOrder removes an unpaid order and puts its stock back. Items whose
// variant has since been deleted are skipped.
func (s *Service) DeleteOrder(ctx context.Context, orderID uint, actor request.Actor) error {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			return orderNotFound(err)
		}
		if !actor.IsAdmin() && order.UserID != actor.UserID {
			return apperr.Forbidden("You are not allowed to delete this order")
		}
		if order.IsPaid {
			return apperr.Conflict("Paid orders cannot be deleted")
		}

		for _, it := range order.Items {
			if it.VariantID == 0 {
				continue
			}
			res := tx.Model(&models.ProductVariant{}).Where("id = ?", it.VariantID).
				UpdateColumn("quantity", gorm.Expr("quantity + ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				log.Warnw("variant gone, stock not restored", "orderId", order.ID, "variantId", it.VariantID)
			}
		}

		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.DeliveryAddress{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, order.ID).Error
	})
	if err != nil {
		return err
	}

	log.Infow("order deleted", "orderId", order.ID, "by", actor.UserID)
	events.Emit(ctx, s.events, events.OrderDeleted, eventFor(&order))
	return nil
}

func orderNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("Order not found")
	}
	return err
}

type CheckoutInput struct {
	UserID         uint          `json:"-"`
	PaymentMethod  string        `json:"paymentMethod"`
	DeliveryMethod string        `json:"deliveryMethod"`
	AddressID      uint          `json:"addressId"`
	Address        *AddressInput `json:"address"`
}

type CheckoutResult struct {
	Order   *models.Order   `json:"order"`
	Summary pricing.Summary `json:"summary"`
}

// Checkout places an order from the client's stored cart and empties the cart
// once the order exists. A saved address may stand in for an inline one.
func (s *Service) Checkout(ctx context.Context, clientID string, in CheckoutInput) (*CheckoutResult, error) {
	if s.carts == nil || clientID == "" {
		return nil, apperr.Validation("Cart is empty")
	}
	cart, err := s.carts.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}

	place := PlaceOrderInput{
		UserID:         in.UserID,
		PaymentMethod:  in.PaymentMethod,
		DeliveryMethod: in.DeliveryMethod,
	}
	for _, it := range cart.Items {
		place.Items = append(place.Items, LineInput{ProductID: it.ProductID, Color: it.Color, Size: it.Size, Quantity: it.Quantity})
	}

	switch {
	case in.AddressID != 0:
		var saved models.Address
		err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", in.AddressID, in.UserID).First(&saved).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("Address not found or doesn't belong to user")
		}
		if err != nil {
			return nil, err
		}
		place.Address = AddressInput{
			FirstName: saved.FirstName, LastName: saved.LastName, Email: saved.Email, Phone: saved.Phone,
			Street: saved.Street, City: saved.City, PostalCode: saved.PostalCode, Country: saved.Country,
		}
	case in.Address != nil:
		place.Address = *in.Address
	default:
		return nil, apperr.Validation("Delivery address is required")
	}

	order, err := s.PlaceOrder(ctx, place)
	if err != nil {
		return nil, err
	}
	if err := s.carts.Clear(ctx, clientID); err != nil {
		log.Errorw("failed to clear cart after checkout", "orderId", order.ID, "error", err)
	}
	return &CheckoutResult{Order: order, Summary: s.Summary(order)}, nil
}

// Summary prices the order the way the cart did, delivery fee included.
func (s *Service) Summary(order *models.Order) pricing.Summary {
	return s.rules.Summarize(itemLines(order.Items), order.DeliveryMethod)
}
