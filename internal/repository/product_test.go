package repository

import (
	"context"
	"order-payment-engine/internal/model"
	"order-payment-engine/internal/testutil"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductUpsert(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := NewProductRepository(db)

	require.NoError(t, repo.Upsert(ctx, []*model.Product{
		{ID: "tee", Name: "Tee", Price: decimal.RequireFromString("799.00"), Currency: "INR", Stock: 4},
		{ID: "mug", Name: "Mug", Price: decimal.RequireFromString("349.50"), Currency: "INR", Stock: 10},
	}))
	require.NoError(t, repo.Upsert(ctx, []*model.Product{
		{ID: "mug", Name: "Large mug", Price: decimal.RequireFromString("399.00"), Currency: "INR", Stock: 3},
	}))
	require.NoError(t, repo.Upsert(ctx, nil))

	products, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "mug", products[0].ID)
	assert.Equal(t, "tee", products[1].ID)

	mug, err := repo.FindByID(ctx, "mug")
	require.NoError(t, err)
	assert.Equal(t, "Large mug", mug.Name)
	assert.True(t, mug.Price.Equal(decimal.RequireFromString("399")), mug.Price.String())
	assert.Equal(t, 3, mug.Stock)
}

func TestProductLookups(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := NewProductRepository(db)
	testutil.SeedProduct(t, db, "mug", 500, 1)
	testutil.SeedProduct(t, db, "tee", 800, 1)

	_, err := repo.FindByID(ctx, "ghost")
	assert.ErrorIs(t, err, model.ErrProductNotFound)

	found, err := repo.FindMany(ctx, nil, []string{"tee", "ghost", "mug"})
	require.NoError(t, err)
	assert.Len(t, found, 2)
}
