// Package payments creates gateway orders for card payments and verifies their signatures.
package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"
)

var ErrNotConfigured = errors.New("payment gateway is not configured")

// GatewayOrder is the gateway-side order a client completes payment against.
type GatewayOrder struct {
	ID       string `json:"razorpayId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId"`
}

type Gateway interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (GatewayOrder, error)
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
}

type Razorpay struct {
	client    *razorpay.Client
	keyID     string
	keySecret string
}

func NewRazorpay(keyID, keySecret string) *Razorpay {
	return &Razorpay{
		client:    razorpay.NewClient(keyID, keySecret),
		keyID:     keyID,
		keySecret: keySecret,
	}
}

func (r *Razorpay) CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (GatewayOrder, error) {
	if err := ctx.Err(); err != nil {
		return GatewayOrder{}, err
	}

	// Razorpay takes amounts in the smallest currency unit.
	minor := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	data := map[string]interface{}{
		"amount":   minor,
		"currency": currency,
		"receipt":  receipt,
	}

	created, err := r.client.Order.Create(data, nil)
	if err != nil {
		return GatewayOrder{}, fmt.Errorf("create razorpay order: %w", err)
	}
	id, ok := created["id"].(string)
	if !ok || id == "" {
		return GatewayOrder{}, errors.New("razorpay order response has no id")
	}
	return GatewayOrder{ID: id, Amount: minor, Currency: currency, KeyID: r.keyID}, nil
}

func (r *Razorpay) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return hmac.Equal([]byte(Sign(r.keySecret, gatewayOrderID, paymentID)), []byte(signature))
}

// Sign computes the hex HMAC-SHA256 of "orderID|paymentID" the gateway sends back.
func Sign(secret, gatewayOrderID, paymentID string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

// Disabled refuses to create orders; used when no keys are configured.
type Disabled struct{}

func (Disabled) CreateOrder(context.Context, decimal.Decimal, string, string) (GatewayOrder, error) {
	return GatewayOrder{}, ErrNotConfigured
}

func (Disabled) VerifySignature(string, string, string) bool { return false }
