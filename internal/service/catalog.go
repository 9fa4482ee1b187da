package service

import (
	"context"
	"fmt"
	"order-payment-engine/internal/model"
	"order-payment-engine/internal/repository"
)

type CatalogService interface {
	ListProducts(ctx context.Context) ([]*model.Product, error)
	Seed(ctx context.Context, products []*model.Product) error
}

type catalogServiceImpl struct {
	productRepo repository.ProductRepository
}

func NewCatalogService(productRepo repository.ProductRepository) CatalogService {
	return &catalogServiceImpl{
		productRepo: productRepo,
	}
}

func (s *catalogServiceImpl) ListProducts(ctx context.Context) ([]*model.Product, error) {
	return s.productRepo.List(ctx)
}

// Seed upserts catalog rows by sku.
func (s *catalogServiceImpl) Seed(ctx context.Context, products []*model.Product) error {
	for _, p := range products {
		if p.ID == "" || p.Name == "" || p.Currency == "" {
			return fmt.Errorf("%w: product needs id, name and currency", model.ErrInvalidInput)
		}
		if p.Price.IsNegative() || p.Stock < 0 {
			return fmt.Errorf("%w: %s has negative price or stock", model.ErrInvalidInput, p.ID)
		}
	}
	return s.productRepo.Upsert(ctx, products)
}
