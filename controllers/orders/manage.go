package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-api/apperr"
	"storefront-api/controllers/request"
	"storefront-api/events"
	"storefront-api/models"
	"storefront-api/payments"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// OrderQuery filters the back office order table.
type OrderQuery struct {
	Paid       *bool
	Delivered  *bool
	UnreadOnly bool
	Page       int
	Limit      int
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Items").Preload("DeliveryAddress").Preload("User")
}

func (s *Service) ListOrders(ctx context.Context, q OrderQuery) ([]models.Order, int64, error) {
	scope := func() *gorm.DB {
		tx := s.db.WithContext(ctx).Model(&models.Order{})
		if q.Paid != nil {
			tx = tx.Where("is_paid = ?", *q.Paid)
		}
		if q.Delivered != nil {
			tx = tx.Where("is_delivered = ?", *q.Delivered)
		}
		if q.UnreadOnly {
			tx = tx.Where("is_read = ?", false)
		}
		return tx
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	orders := []models.Order{}
	err := withDetails(scope()).Order("created_at DESC, id DESC").
		Offset((q.Page - 1) * q.Limit).Limit(q.Limit).Find(&orders).Error
	return orders, total, err
}

func (s *Service) ListUserOrders(ctx context.Context, userID uint, page, limit int) ([]models.Order, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	orders := []models.Order{}
	err := s.db.WithContext(ctx).Preload("Items").Preload("DeliveryAddress").
		Where("user_id = ?", userID).Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).Limit(limit).Find(&orders).Error
	return orders, total, err
}

// GetOrder loads an order for its owner or an admin. An admin opening an order marks it read.
func (s *Service) GetOrder(ctx context.Context, id uint, actor request.Actor) (*models.Order, error) {
	var order models.Order
	if err := withDetails(s.db.WithContext(ctx)).First(&order, id).Error; err != nil {
		return nil, orderNotFound(err)
	}
	if !actor.IsAdmin() && order.UserID != actor.UserID {
		return nil, apperr.Forbidden("You are not allowed to view this order")
	}
	if actor.IsAdmin() && !order.IsRead {
		if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", order.ID).Update("is_read", true).Error; err != nil {
			return nil, err
		}
		order.IsRead = true
	}
	return &order, nil
}

func (s *Service) UnreadCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Order{}).Where("is_read = ?", false).Count(&n).Error
	return n, err
}

func (s *Service) markPaid(ctx context.Context, order *models.Order, ref string) error {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND is_paid = ?", order.ID, false).
		Updates(map[string]any{
			"is_paid":     true,
			"paid_at":     now,
			"payment_ref": ref,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("Order is already paid or no longer exists")
	}
	order.IsPaid, order.PaidAt, order.PaymentRef = true, &now, ref
	log.Infow("order paid", "orderId", order.ID, "ref", ref)
	events.Emit(ctx, s.events, events.OrderPaid, eventFor(order))
	return nil
}

// MarkPaid records a payment taken outside the gateway, such as cash on pickup.
func (s *Service) MarkPaid(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, orderNotFound(err)
	}
	if order.IsPaid {
		return nil, apperr.Conflict("Order is already paid")
	}
	if err := s.markPaid(ctx, &order, order.PaymentRef); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) MarkDelivered(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, orderNotFound(err)
	}
	if order.IsDelivered {
		return nil, apperr.Conflict("Order is already delivered")
	}
	now := time.Now()
	err := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", order.ID).
		Updates(map[string]any{"is_delivered": true, "delivered_at": now}).Error
	if err != nil {
		return nil, err
	}
	order.IsDelivered, order.DeliveredAt = true, &now
	return &order, nil
}

func (s *Service) ownUnpaid(ctx context.Context, orderID, userID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("Items").Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Order not found or doesn't belong to user")
		}
		return nil, err
	}
	if order.IsPaid {
		return nil, apperr.Conflict("Order is already paid")
	}
	return &order, nil
}

// CreatePayment opens a gateway order for an unpaid card order and remembers its id.
func (s *Service) CreatePayment(ctx context.Context, orderID, userID uint) (*payments.GatewayOrder, error) {
	order, err := s.ownUnpaid(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if order.PaymentMethod != models.PaymentCard {
		return nil, apperr.Validation("Only card orders are paid online")
	}

	amount := s.Summary(order).Total
	gw, err := s.gateway.CreateOrder(ctx, amount, s.currency, fmt.Sprintf("receipt_%d", order.ID))
	if errors.Is(err, payments.ErrNotConfigured) {
		return nil, apperr.Validation("Online payments are not available")
	}
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", order.ID).Update("payment_ref", gw.ID).Error; err != nil {
		return nil, err
	}
	return &gw, nil
}

// VerifyPayment checks the gateway signature for the order's gateway id and marks it paid.
func (s *Service) VerifyPayment(ctx context.Context, orderID, userID uint, paymentID, signature string) (*models.Order, error) {
	order, err := s.ownUnpaid(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if order.PaymentRef == "" {
		return nil, apperr.Validation("No payment was started for this order")
	}
	if paymentID == "" || !s.gateway.VerifySignature(order.PaymentRef, paymentID, signature) {
		return nil, apperr.Validation("Invalid payment signature")
	}
	if err := s.markPaid(ctx, order, paymentID); err != nil {
		return nil, err
	}
	return order, nil
}
