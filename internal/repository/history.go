package repository

import (
	"context"
	"order-payment-engine/internal/model"

	"gorm.io/gorm"
)

type HistoryRepository interface {
	Append(ctx context.Context, tx *gorm.DB, entry *model.OrderStatusHistory) error
	ListByOrder(ctx context.Context, orderID string) ([]model.OrderStatusHistory, error)
}

type historyRepoImpl struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepoImpl{
		db: db,
	}
}

func (r *historyRepoImpl) Append(ctx context.Context, tx *gorm.DB, entry *model.OrderStatusHistory) error {
	return tx.WithContext(ctx).Create(entry).Error
}

func (r *historyRepoImpl) ListByOrder(ctx context.Context, orderID string) ([]model.OrderStatusHistory, error) {
	var entries []model.OrderStatusHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id").
		Find(&entries).Error

	if err != nil {
		return nil, err
	}

	return entries, nil
}
