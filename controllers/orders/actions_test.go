package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-api/apperr"
	"storefront-api/controllers/request"
	"storefront-api/events"
	"storefront-api/mail"
	"storefront-api/mail/mailtest"
	"storefront-api/models"
	"storefront-api/payments"
	"storefront-api/pricing"
	"storefront-api/stores"
	"storefront-api/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeGateway struct {
	secret string
}

func (g fakeGateway) CreateOrder(_ context.Context, amount decimal.Decimal, currency, receipt string) (payments.GatewayOrder, error) {
	return payments.GatewayOrder{ID: "order_" + receipt, Amount: amount.Mul(decimal.NewFromInt(100)).IntPart(), Currency: currency, KeyID: "rzp_test"}, nil
}

func (g fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return payments.Sign(g.secret, orderID, paymentID) == signature
}

type fixture struct {
	db      *gorm.DB
	svc     *Service
	mails   *mailtest.Recorder
	events  *events.Recorder
	carts   *stores.CartStore
	cat     testutil.Catalog
	user    models.User
	product models.Product
}

func setup(t *testing.T) fixture {
	db := testutil.NewDB(t)
	f := fixture{
		db:     db,
		mails:  &mailtest.Recorder{},
		events: &events.Recorder{},
		carts:  stores.NewCartStore(stores.NewMemoryKV(time.Hour), pricing.DefaultRules()),
		cat:    testutil.SeedCatalog(t, db),
	}
	f.svc = NewService(db, Deps{
		Mailer:   mail.NewMailer(f.mails, "https://shop.test"),
		Events:   f.events,
		Payments: fakeGateway{secret: "s3cret"},
		Carts:    f.carts,
		Rules:    pricing.DefaultRules(),
	})
	f.user = testutil.SeedUser(t, db, "buyer@example.com", models.RoleUser)
	f.product = testutil.SeedProduct(t, db, f.cat, "Classic Tee",
		testutil.VariantSpec{Color: f.cat.Black, Size: f.cat.M, Quantity: 5, Price: "40", Discount: 25},
		testutil.VariantSpec{Color: f.cat.White, Size: f.cat.L, Quantity: 1, Price: "40"},
	)
	return f
}

func address() AddressInput {
	return AddressInput{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "+44123456",
		Street: "1 Analytical Way", City: "London", PostalCode: "N1 9GU", Country: "UK",
	}
}

func (f fixture) place(lines ...LineInput) PlaceOrderInput {
	return PlaceOrderInput{
		UserID:         f.user.ID,
		Items:          lines,
		PaymentMethod:  models.PaymentCard,
		DeliveryMethod: models.DeliveryCourier,
		Address:        address(),
	}
}

func (f fixture) stock(t *testing.T, variantID uint) int {
	var v models.ProductVariant
	require.NoError(t, f.db.First(&v, variantID).Error)
	return v.Quantity
}

func (f fixture) count(t *testing.T, model any) int64 {
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func TestPlaceOrderDecrementsStockAndSnapshots(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	blackM := f.product.Variants[0]

	order, err := f.svc.PlaceOrder(ctx, f.place(LineInput{ProductID: f.product.ID, Color: "black", Size: "m", Quantity: 2}))
	require.NoError(t, err)

	assert.Equal(t, 3, f.stock(t, blackM.ID))
	assert.True(t, d("60").Equal(order.TotalPrice), order.TotalPrice.String())
	require.Len(t, order.Items, 1)
	assert.Equal(t, blackM.ID, order.Items[0].VariantID)
	assert.Equal(t, "Black", order.Items[0].Color)
	assert.Equal(t, "M", order.Items[0].Size)
	assert.Equal(t, "Acme", order.Items[0].Brand)
	assert.Equal(t, "T-Shirts", order.Items[0].Category)
	assert.NotEmpty(t, order.Items[0].Image)
	assert.EqualValues(t, 1, f.count(t, &models.DeliveryAddress{}))

	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", f.product.ID).Update("name", "Renamed Tee").Error)
	require.NoError(t, f.db.Model(&models.ProductVariant{}).Where("id = ?", blackM.ID).Update("discounted_price", d("10")).Error)

	var item models.OrderItem
	require.NoError(t, f.db.Where("order_id = ?", order.ID).First(&item).Error)
	assert.Equal(t, "Classic Tee", item.Name)
	assert.True(t, d("30").Equal(item.DiscountedPrice), item.DiscountedPrice.String())

	require.Len(t, f.mails.Messages(), 1)
	assert.Equal(t, "buyer@example.com", f.mails.Last().To)
	assert.Contains(t, f.mails.Last().Text, "Classic Tee (Black / M) x2: 60.00")
	assert.Equal(t, []string{events.OrderPlaced}, f.events.Keys())
}

func TestPlaceOrderInsufficientStockChangesNothing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	blackM := f.product.Variants[0]

	_, err := f.svc.PlaceOrder(ctx, f.place(LineInput{ProductID: f.product.ID, Color: "Black", Size: "M", Quantity: 6}))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	// Two lines for the same variant are checked together.
	_, err = f.svc.PlaceOrder(ctx, f.place(
		LineInput{ProductID: f.product.ID, Color: "Black", Size: "M", Quantity: 3},
		LineInput{ProductID: f.product.ID, Color: "BLACK", Size: "m", Quantity: 3},
	))
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	// A later failing line rolls back the earlier ones.
	_, err = f.svc.PlaceOrder(ctx, f.place(
		LineInput{ProductID: f.product.ID, Color: "Black", Size: "M", Quantity: 1},
		LineInput{ProductID: f.product.ID, Color: "White", Size: "L", Quantity: 2},
	))
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	assert.Equal(t, 5, f.stock(t, blackM.ID))
	assert.Zero(t, f.count(t, &models.Order{}))
	assert.Zero(t, f.count(t, &models.OrderItem{}))
	assert.Zero(t, f.count(t, &models.DeliveryAddress{}))
	assert.Empty(t, f.mails.Messages())
	assert.Empty(t, f.events.Keys())
}

func TestPlaceOrderRejectsBadInput(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	line := LineInput{ProductID: f.product.ID, Color: "Black", Size: "M", Quantity: 1}

	tests := []struct {
		name   string
		mutate func(*PlaceOrderInput)
	}{
		{name: "empty cart", mutate: func(in *PlaceOrderInput) { in.Items = nil }},
		{name: "unknown payment method", mutate: func(in *PlaceOrderInput) { in.PaymentMethod = "crypto" }},
		{name: "unknown delivery method", mutate: func(in *PlaceOrderInput) { in.DeliveryMethod = "drone" }},
		{name: "missing product", mutate: func(in *PlaceOrderInput) { in.Items[0].ProductID = 999 }},
		{name: "unknown color", mutate: func(in *PlaceOrderInput) { in.Items[0].Color = "Purple" }},
		{name: "zero quantity", mutate: func(in *PlaceOrderInput) { in.Items[0].Quantity = 0 }},
		{name: "bad email", mutate: func(in *PlaceOrderInput) { in.Address.Email = "nope" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.place(line)
			tt.mutate(&in)
			_, err := f.svc.PlaceOrder(ctx, in)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation), err.Error())
		})
	}

	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", f.product.ID).Update("is_archived", true).Error)
	_, err := f.svc.PlaceOrder(ctx, f.place(line))
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Zero(t, f.count(t, &models.Order{}))
}

func TestPlaceOrderSurvivesMailFailure(t *testing.T) {
	f := setup(t)
	f.mails.Err = errors.New("smtp down")
	f.events.Err = errors.New("broker down")

	order, err := f.svc.PlaceOrder(context.Background(), f.place(LineInput{ProductID: f.product.ID, Color: "Black", Size: "M", Quantity: 1}))
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.EqualValues(t, 1, f.count(t, &models.Order{}))
}

func TestDeleteOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	blackM := f.product.Variants[0]
	owner := request.Actor{UserID: f.user.ID, Role: models.RoleUser}

	order, err := f.svc.PlaceOrder(ctx, f.place(LineInput{ProductID: f.product.ID, Color: "Black", Size: "M", Quantity: 2}))
	require.NoError(t, err)
	require.Equal(t, 3, f.stock(t, blackM.ID))

	stranger := request.Actor{UserID: f.user.ID + 100, Role: models.RoleUser}
	assert.True(t, apperr.IsKind(f.svc.DeleteOrder(ctx, order.ID, stranger), apperr.KindForbidden))

	require.NoError(t, f.svc.DeleteOrder(ctx, order.ID, owner))
	assert.Equal(t, 5, f.stock(t, blackM.ID))
	assert.Zero(t, f.count(t, &models.Order{}))
	assert.Zero(t, f.count(t, &models.OrderItem{}))
	assert.Zero(t, f.count(t, &models.DeliveryAddress{}))
	assert.Equal(t, []string{events.OrderPlaced, events.OrderDeleted}, f.events.Keys())

	assert.True(t, apperr.IsKind(f.svc.DeleteOrder(ctx, order.ID, owner), apperr.KindNotFound))
}

func TestDeletePaidOrderRejected(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	admin := request.Actor{UserID: 1, Role: models.RoleAdmin}

	order, err := f.svc.PlaceOrder(ctx, f.place(LineInput{ProductID: f.product.ID, Color: "Black", Size: "M", Quantity: 2}))
	require.NoError(t, err)
	_, err = f.svc.MarkPaid(ctx, order.ID)
	require.NoError(t, err)

	err = f.svc.DeleteOrder(ctx, order.ID, admin)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	assert.Equal(t, 3, f.stock(t, f.product.Variants[0].ID))
	assert.EqualValues(t, 1, f.count(t, &models.Order{}))
}

func TestDeleteOrderSkipsVanishedVariant(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	order, err := f.svc.PlaceOrder(ctx, f.place(
		LineInput{ProductID: f.product.ID, Color: "Black", Size: "M", Quantity: 1},
		LineInput{ProductID: f.product.ID, Color: "White", Size: "L", Quantity: 1},
	))
	require.NoError(t, err)
	require.NoError(t, f.db.Delete(&models.ProductVariant{}, f.product.Variants[1].ID).Error)

	require.NoError(t, f.svc.DeleteOrder(ctx, order.ID, request.Actor{UserID: f.user.ID}))
	assert.Equal(t, 5, f.stock(t, f.product.Variants[0].ID))
}

func TestCheckoutFromCart(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	blackM := f.product.Variants[0]

	_, err := f.carts.Add(ctx, "client-1", stores.CartItem{
		ProductID: f.product.ID, Name: f.product.Name, Color: "Black", Size: "M",
		Price: d("40"), DiscountedPrice: d("30"), Quantity: 2, MaxQuantity: 5,
	})
	require.NoError(t, err)

	saved := models.Address{UserID: f.user.ID, FirstName: "Ada", LastName: "L", Email: "ada@example.com",
		Phone: "+44123456", Street: "1 Way", City: "London", PostalCode: "N1", Country: "UK"}
	require.NoError(t, f.db.Create(&saved).Error)

	_, err = f.svc.Checkout(ctx, "client-1", CheckoutInput{UserID: f.user.ID + 1, PaymentMethod: models.PaymentCash, DeliveryMethod: models.DeliveryCourier, AddressID: saved.ID})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	res, err := f.svc.Checkout(ctx, "client-1", CheckoutInput{UserID: f.user.ID, PaymentMethod: models.PaymentCash, DeliveryMethod: models.DeliveryCourier, AddressID: saved.ID})
	require.NoError(t, err)
	assert.True(t, d("60").Equal(res.Order.TotalPrice))
	assert.True(t, d("15").Equal(res.Summary.DeliveryFee), res.Summary.DeliveryFee.String())
	assert.True(t, d("75").Equal(res.Summary.Total), res.Summary.Total.String())
	assert.Equal(t, "1 Way", res.Order.DeliveryAddress.Street)
	assert.Equal(t, 3, f.stock(t, blackM.ID))

	cart, err := f.carts.Get(ctx, "client-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	_, err = f.svc.Checkout(ctx, "client-1", CheckoutInput{UserID: f.user.ID, PaymentMethod: models.PaymentCash, DeliveryMethod: models.DeliveryPickup, AddressID: saved.ID})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestCheckoutMergedCartLineWithinLimit(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	bulk := testutil.SeedProduct(t, f.db, f.cat, "Bulk Tee",
		testutil.VariantSpec{Color: f.cat.Black, Size: f.cat.M, Quantity: 500, Price: "10"},
	)

	line := stores.CartItem{
		ProductID: bulk.ID, Name: bulk.Name, Color: "Black", Size: "M",
		Price: d("10"), DiscountedPrice: d("10"), Quantity: 60, MaxQuantity: 500,
	}
	_, err := f.carts.Add(ctx, "client-bulk", line)
	require.NoError(t, err)
	cart, err := f.carts.Add(ctx, "client-bulk", line)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, stores.MaxLineQuantity, cart.Items[0].Quantity)

	addr := address()
	res, err := f.svc.Checkout(ctx, "client-bulk", CheckoutInput{UserID: f.user.ID, PaymentMethod: models.PaymentCash, DeliveryMethod: models.DeliveryPickup, Address: &addr})
	require.NoError(t, err)
	require.Len(t, res.Order.Items, 1)
	assert.Equal(t, stores.MaxLineQuantity, res.Order.Items[0].Quantity)
	assert.Equal(t, 400, f.stock(t, bulk.Variants[0].ID))
}

func TestAdminReadFlagAndDelivery(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	admin := request.Actor{UserID: 1, Role: models.RoleAdmin}
	owner := request.Actor{UserID: f.user.ID, Role: models.RoleUser}

	order, err := f.svc.PlaceOrder(ctx, f.place(LineInput{ProductID: f.product.ID, Color: "Black", Size: "M", Quantity: 1}))
	require.NoError(t, err)

	n, err := f.svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := f.svc.GetOrder(ctx, order.ID, owner)
	require.NoError(t, err)
	assert.False(t, got.IsRead)

	_, err = f.svc.GetOrder(ctx, order.ID, request.Actor{UserID: f.user.ID + 1})
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	got, err = f.svc.GetOrder(ctx, order.ID, admin)
	require.NoError(t, err)
	assert.True(t, got.IsRead)
	require.NotNil(t, got.User)
	assert.Equal(t, "buyer@example.com", got.User.Email)

	n, err = f.svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	delivered, err := f.svc.MarkDelivered(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	assert.NotNil(t, delivered.DeliveredAt)
	_, err = f.svc.MarkDelivered(ctx, order.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	paid := true
	orders, total, err := f.svc.ListOrders(ctx, OrderQuery{Paid: &paid, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, orders)

	mine, total, err := f.svc.ListUserOrders(ctx, f.user.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, mine, 1)
	assert.Len(t, mine[0].Items, 1)
}

func TestCardPayment(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cash := f.place(LineInput{ProductID: f.product.ID, Color: "Black", Size: "M", Quantity: 1})
	cash.PaymentMethod = models.PaymentCash
	cashOrder, err := f.svc.PlaceOrder(ctx, cash)
	require.NoError(t, err)
	_, err = f.svc.CreatePayment(ctx, cashOrder.ID, f.user.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	order, err := f.svc.PlaceOrder(ctx, f.place(LineInput{ProductID: f.product.ID, Color: "Black", Size: "M", Quantity: 2}))
	require.NoError(t, err)

	_, err = f.svc.VerifyPayment(ctx, order.ID, f.user.ID, "pay_1", "sig")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = f.svc.CreatePayment(ctx, order.ID, f.user.ID+1)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	gw, err := f.svc.CreatePayment(ctx, order.ID, f.user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 7500, gw.Amount)
	assert.Equal(t, "INR", gw.Currency)

	_, err = f.svc.VerifyPayment(ctx, order.ID, f.user.ID, "pay_1", "forged")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	paid, err := f.svc.VerifyPayment(ctx, order.ID, f.user.ID, "pay_1", payments.Sign("s3cret", gw.ID, "pay_1"))
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.NotNil(t, paid.PaidAt)
	assert.Contains(t, f.events.Keys(), events.OrderPaid)

	_, err = f.svc.VerifyPayment(ctx, order.ID, f.user.ID, "pay_1", payments.Sign("s3cret", gw.ID, "pay_1"))
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestMarkPaidOnlyOnce(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	order, err := f.svc.PlaceOrder(ctx, f.place(LineInput{ProductID: f.product.ID, Color: "Black", Size: "M", Quantity: 1}))
	require.NoError(t, err)
	stale := *order

	paid, err := f.svc.MarkPaid(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)

	err = f.svc.markPaid(ctx, &stale, "pay_late")
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	var stored models.Order
	require.NoError(t, f.db.First(&stored, order.ID).Error)
	assert.NotEqual(t, "pay_late", stored.PaymentRef)
	paidEvents := 0
	for _, k := range f.events.Keys() {
		if k == events.OrderPaid {
			paidEvents++
		}
	}
	assert.Equal(t, 1, paidEvents)

	gone, err := f.svc.PlaceOrder(ctx, f.place(LineInput{ProductID: f.product.ID, Color: "Black", Size: "M", Quantity: 1}))
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteOrder(ctx, gone.ID, request.Actor{UserID: f.user.ID}))
	err = f.svc.markPaid(ctx, gone, "pay_gone")
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	assert.EqualValues(t, 1, f.count(t, &models.Order{}))
}
