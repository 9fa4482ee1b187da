package repository

import (
	"context"
	"fmt"
	"order-payment-engine/internal/model"
	"time"

	"gorm.io/gorm"
)

// InventoryRepository owns every write to products.stock.
type InventoryRepository interface {
	Decrement(ctx context.Context, tx *gorm.DB, productID string, quantity int) error
	Restore(ctx context.Context, tx *gorm.DB, productID string, quantity int) error
}

type inventoryRepoImpl struct{}

func NewInventoryRepository() InventoryRepository {
	return &inventoryRepoImpl{}
}

// Decrement checks and takes stock in one conditional statement, so the row
// lock taken by the update is the only serialisation point.
func (r *inventoryRepoImpl) Decrement(ctx context.Context, tx *gorm.DB, productID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", model.ErrInvalidInput)
	}

	result := tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", quantity),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := tx.WithContext(ctx).Model(&model.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", model.ErrProductNotFound, productID)
	}
	return fmt.Errorf("%w: %s", model.ErrInsufficientStock, productID)
}

func (r *inventoryRepoImpl) Restore(ctx context.Context, tx *gorm.DB, productID string, quantity int) error {
	result := tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", quantity),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", model.ErrProductNotFound, productID)
	}
	return nil
}
