package main

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog(t *testing.T) {
	in := `
products:
  - id: mug-001
    name: Stoneware mug
    price: "500.00"
    stock: 25
  - id: tee-001
    name: Cotton tee
    price: "19.99"
    currency: USD
    stock: 3
`
	products, err := loadCatalog(strings.NewReader(in), "INR")
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "mug-001", products[0].ID)
	assert.True(t, decimal.NewFromInt(500).Equal(products[0].Price))
	assert.Equal(t, "INR", products[0].Currency)
	assert.Equal(t, 25, products[0].Stock)
	assert.Equal(t, "USD", products[1].Currency)
	assert.Equal(t, "19.99", products[1].Price.StringFixed(2))
}

func TestLoadCatalogErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"missing id", "products:\n  - name: x\n    price: \"1\"\n"},
		{"bad price", "products:\n  - id: a\n    price: cheap\n"},
		{"duplicate id", "products:\n  - id: a\n    price: \"1\"\n  - id: a\n    price: \"2\"\n"},
		{"not yaml", "products: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadCatalog(strings.NewReader(tt.in), "INR")
			assert.Error(t, err)
		})
	}
}
