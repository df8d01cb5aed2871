package catalog

import (
	"context"
	"testing"

	"storefront-api/apperr"
	"storefront-api/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrandSlugUniqueness(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testutil.NewDB(t))

	nike, err := svc.CreateBrand(ctx, NameInput{Name: "  Nike Sportswear "})
	require.NoError(t, err)
	assert.Equal(t, "Nike Sportswear", nike.Name)
	assert.Equal(t, "nike-sportswear", nike.Slug)

	_, err = svc.CreateBrand(ctx, NameInput{Name: "NIKE sportswear"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	assert.Equal(t, "Brand with this name already exists", err.Error())

	edited, err := svc.EditBrand(ctx, nike.ID, NameInput{Name: "Nike  Sportswear"})
	require.NoError(t, err)
	assert.Equal(t, "nike-sportswear", edited.Slug)

	adidas, err := svc.CreateBrand(ctx, NameInput{Name: "Adidas"})
	require.NoError(t, err)
	_, err = svc.EditBrand(ctx, adidas.ID, NameInput{Name: "Nike Sportswear"})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	_, err = svc.CreateBrand(ctx, NameInput{Name: " "})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.EditBrand(ctx, 999, NameInput{Name: "Puma"})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestDeleteReferencedTaxonomy(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewService(db)
	cat := testutil.SeedCatalog(t, db)
	testutil.SeedProduct(t, db, cat, "Tee", testutil.VariantSpec{Color: cat.Black, Size: cat.M, Quantity: 1, Price: "10"})

	err := svc.DeleteBrand(ctx, cat.Brand.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	err = svc.DeleteCategory(ctx, cat.Category.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	err = svc.DeleteColor(ctx, cat.Black.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	err = svc.DeleteSize(ctx, cat.M.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	require.NoError(t, svc.DeleteColor(ctx, cat.White.ID))
	require.NoError(t, svc.DeleteSize(ctx, cat.L.ID))

	colors, err := svc.ListColors(ctx)
	require.NoError(t, err)
	assert.Len(t, colors, 1)
}

func TestColorsAndSizes(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testutil.NewDB(t))

	red, err := svc.CreateColor(ctx, ColorInput{Name: "Red", Value: "#FF0000"})
	require.NoError(t, err)

	_, err = svc.CreateColor(ctx, ColorInput{Name: "red", Value: "#EE0000"})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	_, err = svc.CreateColor(ctx, ColorInput{Name: "Blue", Value: "blue"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	renamed, err := svc.EditColor(ctx, red.ID, ColorInput{Name: "RED", Value: "#CC0000"})
	require.NoError(t, err)
	assert.Equal(t, "RED", renamed.Name)
	assert.Equal(t, "#CC0000", renamed.Value)

	_, err = svc.CreateSize(ctx, SizeInput{Name: "XL"})
	require.NoError(t, err)
	_, err = svc.CreateSize(ctx, SizeInput{Name: "xl"})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	sizes, err := svc.ListSizes(ctx)
	require.NoError(t, err)
	assert.Len(t, sizes, 1)
}
