package service

import (
	"context"
	"fmt"
	"order-payment-engine/internal/model"
	"order-payment-engine/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PricingGate computes the amount a payment session may charge. The amount
// is derived from the product table at the moment of the call and written
// back to the order before anything is sent to the gateway.
type PricingGate interface {
	Recompute(ctx context.Context, orderID string) (*model.Order, error)
}

type pricingGateImpl struct {
	transactor  repository.Transactor
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	log         logrus.FieldLogger
}

func NewPricingGate(
	transactor repository.Transactor,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	log logrus.FieldLogger,
) PricingGate {
	return &pricingGateImpl{
		transactor:  transactor,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		log:         log,
	}
}

func (g *pricingGateImpl) Recompute(ctx context.Context, orderID string) (*model.Order, error) {
	log := g.log.WithField("order_id", orderID)

	var order *model.Order
	err := g.transactor.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		order, err = g.orderRepo.Get(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.IsPaid() {
			return fmt.Errorf("%w: %s", model.ErrAlreadyPaid, orderID)
		}
		if order.Status != model.StatusPending {
			return fmt.Errorf("%w: %s is %s", model.ErrInvalidTransition, orderID, order.Status)
		}
		if len(order.Items) == 0 {
			return fmt.Errorf("%w: %s", model.ErrNoItems, orderID)
		}

		productIDs := make([]string, 0, len(order.Items))
		for _, item := range order.Items {
			productIDs = append(productIDs, item.ProductID)
		}
		products, err := g.productRepo.FindMany(ctx, tx, productIDs)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}

		total, err := trustedTotal(order.Items, products)
		if err != nil {
			return err
		}
		if !total.IsPositive() {
			return fmt.Errorf("%w: %s", model.ErrNonPositiveTotal, total.StringFixed(2))
		}

		if snapshot := model.SnapshotTotal(order.Items); !snapshot.Equal(total) {
			log.WithFields(logrus.Fields{
				"snapshot_total": snapshot.StringFixed(2),
				"trusted_total":  total.StringFixed(2),
			}).Warn("catalog price changed since order creation")
		}

		if !total.Equal(order.TotalAmount) {
			if err := g.orderRepo.UpdateTotal(ctx, tx, orderID, total); err != nil {
				return err
			}
			order.TotalAmount = total
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("pricing gate rejected order")
		return nil, err
	}

	return order, nil
}
