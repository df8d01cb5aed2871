package cart

import (
	"context"
	"testing"
	"time"

	"storefront-api/apperr"
	"storefront-api/controllers/products"
	"storefront-api/models"
	"storefront-api/pricing"
	"storefront-api/storage/storagetest"
	"storefront-api/stores"
	"storefront-api/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc     *Service
	history *stores.History
	tee     models.Product
	hoodie  models.Product
}

func setup(t *testing.T) fixture {
	db := testutil.NewDB(t)
	cat := testutil.SeedCatalog(t, db)
	kv := stores.NewMemoryKV(time.Hour)
	f := fixture{history: stores.NewHistory(kv)}
	f.svc = NewService(products.NewService(db, storagetest.NewMemory()),
		stores.NewCartStore(kv, pricing.DefaultRules()), stores.NewWishlist(kv), f.history)

	f.tee = testutil.SeedProduct(t, db, cat, "Tee",
		testutil.VariantSpec{Color: cat.Black, Size: cat.M, Quantity: 3, Price: "40", Discount: 25},
		testutil.VariantSpec{Color: cat.White, Size: cat.L, Quantity: 0, Price: "40"},
	)
	f.hoodie = testutil.SeedProduct(t, db, cat, "Hoodie",
		testutil.VariantSpec{Color: cat.Black, Size: cat.L, Quantity: 10, Price: "80"},
	)
	return f
}

func TestAddToCartUsesLiveCatalog(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cart, err := f.svc.Add(ctx, "client-1", AddInput{ProductID: f.tee.ID, Color: "black", Size: "m", Quantity: 2})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	item := cart.Items[0]
	assert.Equal(t, "Black", item.Color)
	assert.Equal(t, "M", item.Size)
	assert.Equal(t, "Acme", item.Brand)
	assert.True(t, item.DiscountedPrice.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, 3, item.MaxQuantity)

	cart, err = f.svc.Add(ctx, "client-1", AddInput{ProductID: f.tee.ID, Color: "Black", Size: "M", Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 3, cart.Items[0].Quantity, "merged line is capped at stock")

	summary, count, err := f.svc.Totals(ctx, "client-1", pricing.DeliveryPickup)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.True(t, summary.DeliveryFee.IsZero())
	assert.True(t, summary.Total.Equal(decimal.NewFromInt(90)))

	_, _, err = f.svc.Totals(ctx, "client-1", "drone")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestAddToCartRejects(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, "c", AddInput{ProductID: f.tee.ID, Color: "White", Size: "L", Quantity: 1})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation), "out of stock")

	_, err = f.svc.Add(ctx, "c", AddInput{ProductID: f.tee.ID, Color: "Red", Size: "M", Quantity: 1})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = f.svc.Add(ctx, "c", AddInput{ProductID: 9999, Color: "Black", Size: "M", Quantity: 1})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = f.svc.Add(ctx, "c", AddInput{ProductID: f.tee.ID, Color: "Black", Size: "M", Quantity: 0})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestCartQuantityAndRemove(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.svc.Add(ctx, "c", AddInput{ProductID: f.hoodie.ID, Color: "Black", Size: "L", Quantity: 1})
	require.NoError(t, err)

	cart, err := f.svc.SetQuantity(ctx, "c", QuantityInput{ProductID: f.hoodie.ID, Color: "Black", Size: "L", Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, cart.Count())

	cart, err = f.svc.Remove(ctx, "c", f.hoodie.ID, "Black", "L")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	require.NoError(t, f.svc.Clear(ctx, "c"))
	cart, err = f.svc.Get(ctx, "c")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestWishlistAndHistoryResolveVisible(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	added, list, err := f.svc.ToggleWishlist(ctx, "c", f.tee.ID)
	require.NoError(t, err)
	assert.True(t, added)
	require.Len(t, list, 1)

	_, list, err = f.svc.ToggleWishlist(ctx, "c", f.hoodie.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, f.hoodie.ID, list[0].ID, "newest first")

	_, _, err = f.svc.ToggleWishlist(ctx, "c", 9999)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	added, list, err = f.svc.ToggleWishlist(ctx, "c", f.tee.ID)
	require.NoError(t, err)
	assert.False(t, added)
	require.Len(t, list, 1)

	list, err = f.svc.RemoveFromWishlist(ctx, "c", f.hoodie.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.history.Record(ctx, "c", f.tee.ID)
	require.NoError(t, err)
	_, err = f.history.Record(ctx, "c", 9999)
	require.NoError(t, err)
	viewed, err := f.svc.History(ctx, "c")
	require.NoError(t, err)
	require.Len(t, viewed, 1, "missing products are dropped")
	assert.Equal(t, f.tee.ID, viewed[0].ID)

	require.NoError(t, f.svc.ClearHistory(ctx, "c"))
	viewed, err = f.svc.History(ctx, "c")
	require.NoError(t, err)
	assert.Empty(t, viewed)
}
