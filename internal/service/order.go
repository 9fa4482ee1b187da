package service

import (
	"context"
	"fmt"
	"order-payment-engine/internal/dto"
	"order-payment-engine/internal/model"
	"order-payment-engine/internal/notifier"
	"order-payment-engine/internal/repository"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	ActorCustomer = "customer"
	ActorGateway  = "gateway"
)

type OrderService interface {
	CreateOrder(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*model.Order, error)
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
	ListUserOrders(ctx context.Context, userID string, limit, offset int) ([]*model.Order, error)
	ListOrders(ctx context.Context, filter repository.OrderFilter) ([]*model.Order, error)
	History(ctx context.Context, orderID string) ([]model.OrderStatusHistory, error)
	UpdateStatus(ctx context.Context, actor, orderID string, req *dto.UpdateStatusRequest) (*model.Order, error)
}

type orderServiceImpl struct {
	transactor    repository.Transactor
	ledger        repository.Ledger
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	inventoryRepo repository.InventoryRepository
	historyRepo   repository.HistoryRepository
	notifier      notifier.Notifier
	log           logrus.FieldLogger
}

func NewOrderService(
	transactor repository.Transactor,
	ledger repository.Ledger,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	inventoryRepo repository.InventoryRepository,
	historyRepo repository.HistoryRepository,
	notifier notifier.Notifier,
	log logrus.FieldLogger,
) OrderService {
	return &orderServiceImpl{
		transactor:    transactor,
		ledger:        ledger,
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		historyRepo:   historyRepo,
		notifier:      notifier,
		log:           log,
	}
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*model.Order, error) {
	if len(req.Items) == 0 {
		return nil, model.ErrNoItems
	}
	method := model.PaymentMethod(req.PaymentMethod)
	if !method.Valid() {
		return nil, fmt.Errorf("%w: payment method %q", model.ErrInvalidInput, req.PaymentMethod)
	}

	productIDs := make([]string, 0, len(req.Items))
	seen := make(map[string]bool)
	for _, item := range req.Items {
		if item == nil || item.ProductID == "" {
			return nil, fmt.Errorf("%w: item without product_id", model.ErrInvalidInput)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", model.ErrInvalidInput)
		}
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			productIDs = append(productIDs, item.ProductID)
		}
	}

	products, err := s.productRepo.FindMany(ctx, nil, productIDs)
	if err != nil {
		return nil, fmt.Errorf("get many products by item ids: %w", err)
	}
	productMap := make(map[string]*model.Product, len(products))
	for _, p := range products {
		productMap[p.ID] = p
	}

	// price and name come from the catalog, whatever the cart displayed
	var currency string
	items := make([]model.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		product, ok := productMap[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", model.ErrProductNotFound, item.ProductID)
		}
		if currency == "" {
			currency = product.Currency
		} else if product.Currency != currency {
			return nil, fmt.Errorf("%w: %s is priced in %s", model.ErrCurrencyMismatch, product.ID, product.Currency)
		}

		items = append(items, model.OrderItem{
			ProductID:       product.ID,
			ProductName:     product.Name,
			Quantity:        item.Quantity,
			PriceAtPurchase: product.Price,
		})
	}

	total := model.SnapshotTotal(items)
	if !total.IsPositive() {
		return nil, model.ErrNonPositiveTotal
	}

	order := &model.Order{
		ID:            uuid.NewString(),
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		ShippingAddress: model.ShippingAddress{
			Street:     req.ShippingAddress.Street,
			City:       req.ShippingAddress.City,
			State:      req.ShippingAddress.State,
			PostalCode: req.ShippingAddress.PostalCode,
			Phone:      req.ShippingAddress.Phone,
		},
		PaymentMethod: method,
		PaymentStatus: model.PaymentStatusPending,
		Status:        model.StatusPending,
		TotalAmount:   total,
		Currency:      currency,
		Items:         items,
	}
	if userID != "" {
		order.UserID = &userID
	}

	if err := s.ledger.CreateOrderWithStock(ctx, order, ActorCustomer); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"order_id":       order.ID,
		"total":          order.TotalAmount.StringFixed(2),
		"payment_method": order.PaymentMethod,
	}).Info("order created")

	if !order.PaymentMethod.Online() {
		s.notifier.OrderConfirmed(order)
	}

	return order, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return s.orderRepo.FindByID(ctx, orderID)
}

func (s *orderServiceImpl) ListUserOrders(ctx context.Context, userID string, limit, offset int) ([]*model.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID, limit, offset)
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]*model.Order, error) {
	return s.orderRepo.List(ctx, filter)
}

func (s *orderServiceImpl) History(ctx context.Context, orderID string) ([]model.OrderStatusHistory, error) {
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.historyRepo.ListByOrder(ctx, orderID)
}

func (s *orderServiceImpl) UpdateStatus(ctx context.Context, actor, orderID string, req *dto.UpdateStatusRequest) (*model.Order, error) {
	next := model.OrderStatus(req.Status)
	if !next.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownStatus, req.Status)
	}
	log := s.log.WithFields(logrus.Fields{"order_id": orderID, "to": next, "actor": actor})

	var updated *model.Order
	err := s.transactor.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.orderRepo.Get(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if err := model.CheckTransition(order, next); err != nil {
			return fmt.Errorf("%s -> %s: %w", order.Status, next, err)
		}

		fields := map[string]interface{}{}
		if next == model.StatusShipped && req.TrackingNumber != "" {
			fields["tracking_number"] = req.TrackingNumber
			if req.Carrier != "" {
				fields["carrier"] = req.Carrier
			}
		}
		if err := s.orderRepo.TransitionStatus(ctx, tx, orderID, order.Status, next, fields); err != nil {
			return err
		}

		if err := s.historyRepo.Append(ctx, tx, &model.OrderStatusHistory{
			OrderID:       orderID,
			FromStatus:    order.Status,
			ToStatus:      next,
			PaymentStatus: order.PaymentStatus,
			Actor:         actor,
			Note:          req.Note,
		}); err != nil {
			return err
		}

		if next == model.StatusCancelled {
			if err := s.restoreStock(ctx, tx, order.Items); err != nil {
				return fmt.Errorf("restore stock: %w", err)
			}
		}

		updated, err = s.orderRepo.Get(ctx, tx, orderID)
		return err
	})
	if err != nil {
		log.WithError(err).Warn("status update rejected")
		return nil, err
	}

	log.WithField("payment_status", updated.PaymentStatus).Info("order status updated")

	if next == model.StatusShipped && updated.TrackingNumber != nil {
		s.notifier.OrderShipped(updated)
	}
	if next == model.StatusCancelled && updated.IsPaid() {
		log.Warn("paid order cancelled, refund must be issued by an operator")
	}

	return updated, nil
}

func (s *orderServiceImpl) restoreStock(ctx context.Context, tx *gorm.DB, items []model.OrderItem) error {
	quantities := make(map[string]int)
	for _, item := range items {
		quantities[item.ProductID] += item.Quantity
	}
	productIDs := make([]string, 0, len(quantities))
	for id := range quantities {
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	for _, id := range productIDs {
		if err := s.inventoryRepo.Restore(ctx, tx, id, quantities[id]); err != nil {
			return err
		}
	}
	return nil
}

// trustedTotal prices items from the given product rows. Items whose product
// no longer exists make the total unusable.
func trustedTotal(items []model.OrderItem, products []*model.Product) (decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal, len(products))
	for _, p := range products {
		prices[p.ID] = p.Price
	}

	total := decimal.Zero
	for _, item := range items {
		price, ok := prices[item.ProductID]
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: product %s no longer exists", model.ErrNoItems, item.ProductID)
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total, nil
}
