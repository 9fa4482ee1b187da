package repository

import (
	"context"
	"order-payment-engine/internal/model"
	"sort"

	"gorm.io/gorm"
)

// Ledger is the single entry point that turns a priced cart into a stored
// order. Stock check, decrement, order row, item rows and the creation
// history row commit together or not at all.
type Ledger interface {
	CreateOrderWithStock(ctx context.Context, order *model.Order, actor string) error
}

type ledgerImpl struct {
	transactor    Transactor
	orderRepo     OrderRepository
	inventoryRepo InventoryRepository
	historyRepo   HistoryRepository
}

func NewLedger(
	transactor Transactor,
	orderRepo OrderRepository,
	inventoryRepo InventoryRepository,
	historyRepo HistoryRepository,
) Ledger {
	return &ledgerImpl{
		transactor:    transactor,
		orderRepo:     orderRepo,
		inventoryRepo: inventoryRepo,
		historyRepo:   historyRepo,
	}
}

func (l *ledgerImpl) CreateOrderWithStock(ctx context.Context, order *model.Order, actor string) error {
	if len(order.Items) == 0 {
		return model.ErrNoItems
	}

	demand := make(map[string]int)
	for _, item := range order.Items {
		demand[item.ProductID] += item.Quantity
	}
	// a fixed lock order keeps two carts over the same products from deadlocking
	productIDs := make([]string, 0, len(demand))
	for id := range demand {
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	var created []model.OrderItem
	err := l.transactor.WithTx(ctx, func(tx *gorm.DB) error {
		for _, productID := range productIDs {
			if err := l.inventoryRepo.Decrement(ctx, tx, productID, demand[productID]); err != nil {
				return err
			}
		}

		if err := l.orderRepo.Create(ctx, tx, order); err != nil {
			return err
		}

		created = make([]model.OrderItem, len(order.Items))
		for i, item := range order.Items {
			item.ID = 0
			item.OrderID = order.ID
			created[i] = item
		}
		if err := l.orderRepo.CreateOrderItems(ctx, tx, created); err != nil {
			return err
		}

		return l.historyRepo.Append(ctx, tx, &model.OrderStatusHistory{
			OrderID:       order.ID,
			ToStatus:      order.Status,
			PaymentStatus: order.PaymentStatus,
			Actor:         actor,
			Note:          "order created",
		})
	})
	if err != nil {
		return err
	}

	order.Items = created
	return nil
}
