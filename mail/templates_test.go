package mail_test

import (
	"context"
	"errors"
	"testing"

	"storefront-api/mail"
	"storefront-api/mail/mailtest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinks(t *testing.T) {
	m := mail.NewMailer(&mailtest.Recorder{}, "https://shop.example/")

	v := m.Verification("ada@example.com", "tok-1")
	assert.Equal(t, "ada@example.com", v.To)
	assert.Contains(t, v.Text, "https://shop.example/auth/new-verification?token=tok-1")
	assert.Contains(t, v.HTML, "tok-1")

	r := m.PasswordReset("ada@example.com", "tok-2")
	assert.Contains(t, r.Text, "https://shop.example/auth/new-password?token=tok-2")

	c := m.TwoFactorCode("ada@example.com", "123456")
	assert.Contains(t, c.HTML, "123456")
}

func TestOrderConfirmation(t *testing.T) {
	m := mail.NewMailer(&mailtest.Recorder{}, "https://shop.example")
	msg := m.OrderConfirmation("ada@example.com", 9, []mail.OrderLine{
		{Name: "Classic Tee", Color: "Black", Size: "M", Quantity: 2, Amount: decimal.RequireFromString("40")},
	}, decimal.RequireFromString("40"))

	assert.Equal(t, "Order #9 confirmed", msg.Subject)
	assert.Contains(t, msg.Text, "Classic Tee (Black / M) x2: 40.00")
	assert.Contains(t, msg.Text, "Total: 40.00")
	assert.Contains(t, msg.HTML, "https://shop.example/orders/9")
}

func TestDeliverSwallowsErrors(t *testing.T) {
	rec := &mailtest.Recorder{Err: errors.New("smtp down")}
	m := mail.NewMailer(rec, "https://shop.example")

	require.NotPanics(t, func() {
		m.Deliver(context.Background(), m.TwoFactorCode("ada@example.com", "111111"))
	})
	assert.Len(t, rec.Messages(), 1)
}
