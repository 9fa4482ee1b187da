package repository

import (
	"context"
	"errors"
	"fmt"
	"order-payment-engine/internal/model"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentOutcome says what MarkPaid changed.
type PaymentOutcome int

const (
	// PaymentApplied: payment recorded and status moved pending -> processing.
	PaymentApplied PaymentOutcome = iota + 1
	// PaymentAppliedNoTransition: payment recorded, status left alone
	// (already processing, or cancelled before the capture arrived).
	PaymentAppliedNoTransition
	// PaymentAlreadyApplied: order was paid before this call; nothing written.
	PaymentAlreadyApplied
)

type OrderFilter struct {
	Status        model.OrderStatus
	PaymentStatus model.PaymentStatus
	Limit         int
	Offset        int
}

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	CreateOrderItems(ctx context.Context, tx *gorm.DB, items []model.OrderItem) error
	FindByID(ctx context.Context, orderID string) (*model.Order, error)
	Get(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*model.Order, error)
	GetOrderItems(ctx context.Context, tx *gorm.DB, orderID string) ([]model.OrderItem, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*model.Order, error)

	UpdateTotal(ctx context.Context, tx *gorm.DB, orderID string, total decimal.Decimal) error
	AttachGatewayOrder(ctx context.Context, orderID, gatewayOrderID string) error
	MarkPaid(ctx context.Context, tx *gorm.DB, orderID, paymentID string) (PaymentOutcome, error)
	MarkFailed(ctx context.Context, tx *gorm.DB, orderID string) (bool, error)
	TransitionStatus(ctx context.Context, tx *gorm.DB, orderID string, from, to model.OrderStatus, fields map[string]interface{}) error
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

var unpaidStatuses = []model.PaymentStatus{model.PaymentStatusPending, model.PaymentStatusFailed}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *orderRepoImpl) CreateOrderItems(ctx context.Context, tx *gorm.DB, items []model.OrderItem) error {
	if len(items) == 0 {
		return model.ErrNoItems
	}
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, orderID string) (*model.Order, error) {
	return r.Get(ctx, r.db, orderID)
}

func (r *orderRepoImpl) Get(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error) {
	var order model.Order
	err := tx.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", model.ErrOrderNotFound, orderID)
		}
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("gateway_order_id = ?", gatewayOrderID).
		First(&order).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: gateway order %s", model.ErrOrderNotFound, gatewayOrderID)
		}
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) GetOrderItems(ctx context.Context, tx *gorm.DB, orderID string) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := tx.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id").
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *orderRepoImpl) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.Order, error) {
	limit, offset = clampPage(limit, offset)

	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) List(ctx context.Context, filter OrderFilter) ([]*model.Order, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)

	query := r.db.WithContext(ctx).Preload("Items")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}

	var orders []*model.Order
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

// UpdateTotal overwrites total_amount while the order is still pending and
// unpaid. A paid order's total is frozen.
func (r *orderRepoImpl) UpdateTotal(ctx context.Context, tx *gorm.DB, orderID string, total decimal.Decimal) error {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND payment_status IN ? AND status = ?", orderID, unpaidStatuses, model.StatusPending).
		Updates(map[string]interface{}{
			"total_amount": total,
			"updated_at":   time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.explainMiss(ctx, tx, orderID)
	}

	return nil
}

func (r *orderRepoImpl) AttachGatewayOrder(ctx context.Context, orderID, gatewayOrderID string) error {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND payment_status IN ?", orderID, unpaidStatuses).
		Updates(map[string]interface{}{
			"gateway_order_id": gatewayOrderID,
			"updated_at":       time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.explainMiss(ctx, r.db, orderID)
	}

	return nil
}

// MarkPaid applies a captured payment. Each write is a single conditional
// update guarded by payment_status, so of any number of concurrent callers
// exactly one sees a row affected.
func (r *orderRepoImpl) MarkPaid(ctx context.Context, tx *gorm.DB, orderID, paymentID string) (PaymentOutcome, error) {
	now := time.Now()

	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND payment_status IN ? AND status = ?", orderID, unpaidStatuses, model.StatusPending).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentStatusPaid,
			"payment_id":     paymentID,
			"status":         model.StatusProcessing,
			"updated_at":     now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 1 {
		return PaymentApplied, nil
	}

	result = tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND payment_status IN ?", orderID, unpaidStatuses).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentStatusPaid,
			"payment_id":     paymentID,
			"updated_at":     now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 1 {
		return PaymentAppliedNoTransition, nil
	}

	var count int64
	if err := tx.WithContext(ctx).Model(&model.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, fmt.Errorf("%w: %s", model.ErrOrderNotFound, orderID)
	}

	return PaymentAlreadyApplied, nil
}

// MarkFailed records a declined attempt. Only a pending payment can fail;
// it reports whether a row changed.
func (r *orderRepoImpl) MarkFailed(ctx context.Context, tx *gorm.DB, orderID string) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND payment_status = ?", orderID, model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentStatusFailed,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// TransitionStatus moves status from -> to only if it is still from.
func (r *orderRepoImpl) TransitionStatus(ctx context.Context, tx *gorm.DB, orderID string, from, to model.OrderStatus, fields map[string]interface{}) error {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range fields {
		updates[k] = v
	}

	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s is no longer %s", model.ErrStatusConflict, orderID, from)
	}

	return nil
}

func (r *orderRepoImpl) explainMiss(ctx context.Context, tx *gorm.DB, orderID string) error {
	var order model.Order
	err := tx.WithContext(ctx).
		Select("id", "payment_status", "status").
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", model.ErrOrderNotFound, orderID)
		}
		return err
	}
	if order.IsPaid() {
		return fmt.Errorf("%w: %s", model.ErrAlreadyPaid, orderID)
	}

	return fmt.Errorf("%w: %s is %s", model.ErrInvalidTransition, orderID, order.Status)
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
