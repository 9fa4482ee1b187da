package service

import (
	"context"
	"order-payment-engine/internal/model"
	"order-payment-engine/internal/repository"
	"order-payment-engine/internal/testutil"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogSeed(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	catalog := NewCatalogService(repository.NewProductRepository(db))

	tests := []struct {
		name    string
		product *model.Product
	}{
		{"missing id", &model.Product{Name: "Mug", Currency: "INR"}},
		{"missing currency", &model.Product{ID: "mug", Name: "Mug"}},
		{"negative price", &model.Product{ID: "mug", Name: "Mug", Currency: "INR", Price: decimal.NewFromInt(-1)}},
		{"negative stock", &model.Product{ID: "mug", Name: "Mug", Currency: "INR", Stock: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := catalog.Seed(ctx, []*model.Product{tt.product})
			assert.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}

	require.NoError(t, catalog.Seed(ctx, []*model.Product{
		{ID: "mug", Name: "Mug", Currency: "INR", Price: decimal.NewFromInt(500), Stock: 5},
	}))
	products, err := catalog.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 5, products[0].Stock)
}
