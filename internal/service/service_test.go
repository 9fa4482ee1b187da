package service

import (
	"context"
	"encoding/json"
	"fmt"
	"order-payment-engine/internal/client"
	"order-payment-engine/internal/config"
	"order-payment-engine/internal/dto"
	"order-payment-engine/internal/model"
	"order-payment-engine/internal/repository"
	"order-payment-engine/internal/signature"
	"order-payment-engine/internal/testutil"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testKeySecret     = "key_secret"
	testWebhookSecret = "whsec_test"
)

type fakeGateway struct {
	mu       sync.Mutex
	requests []client.CreateGatewayOrderRequest
	err      error
}

func (g *fakeGateway) CreateOrder(ctx context.Context, req client.CreateGatewayOrderRequest) (*model.GatewayOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.requests = append(g.requests, req)
	return &model.GatewayOrder{
		ID:       fmt.Sprintf("order_gw_%d", len(g.requests)),
		Entity:   "order",
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.OrderID,
		Status:   "created",
		Notes:    model.Notes{OrderID: req.OrderID},
	}, nil
}

func (g *fakeGateway) lastAmount(t *testing.T) int64 {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	require.NotEmpty(t, g.requests)
	return g.requests[len(g.requests)-1].Amount
}

type fakeNotifier struct {
	mu        sync.Mutex
	confirmed []string
	shipped   []string
}

func (n *fakeNotifier) OrderConfirmed(order *model.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, order.ID)
}

func (n *fakeNotifier) OrderShipped(order *model.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.shipped = append(n.shipped, order.ID)
}

func (n *fakeNotifier) Close(context.Context) error { return nil }

func (n *fakeNotifier) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.confirmed), len(n.shipped)
}

type fixture struct {
	db       *gorm.DB
	orders   OrderService
	payments PaymentService
	gateway  *fakeGateway
	notifier *fakeNotifier
	hook     *test.Hook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	log, hook := test.NewNullLogger()

	transactor := repository.NewTransactor(db, 3)
	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	inventoryRepo := repository.NewInventoryRepository()
	historyRepo := repository.NewHistoryRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)
	ledger := repository.NewLedger(transactor, orderRepo, inventoryRepo, historyRepo)

	gateway := &fakeGateway{}
	notifier := &fakeNotifier{}

	pricing := NewPricingGate(transactor, orderRepo, productRepo, log)
	orders := NewOrderService(transactor, ledger, orderRepo, productRepo, inventoryRepo, historyRepo, notifier, log)
	payments := NewPaymentService(config.Gateway{
		KeyID:         "rzp_test",
		KeySecret:     testKeySecret,
		WebhookSecret: testWebhookSecret,
		Currency:      "INR",
		Timeout:       time.Second,
	}, gateway, pricing, transactor, orderRepo, historyRepo, webhookEventRepo, notifier, log)

	return &fixture{
		db:       db,
		orders:   orders,
		payments: payments,
		gateway:  gateway,
		notifier: notifier,
		hook:     hook,
	}
}

func cart(method model.PaymentMethod, items ...*dto.Item) *dto.CreateOrderRequest {
	return &dto.CreateOrderRequest{
		CustomerName:  "Asha Rao",
		CustomerEmail: "asha@example.com",
		CustomerPhone: "+919800000000",
		ShippingAddress: dto.ShippingAddress{
			Street:     "12 MG Road",
			City:       "Bengaluru",
			State:      "KA",
			PostalCode: "560001",
		},
		PaymentMethod: string(method),
		Items:         items,
	}
}

func line(productID string, quantity int) *dto.Item {
	return &dto.Item{ProductID: productID, Quantity: quantity}
}

func capturedEvent(t *testing.T, event, orderID, gatewayOrderID, paymentID string, amount int64) []byte {
	t.Helper()
	body, err := json.Marshal(model.GatewayWebhookEvent{
		Entity:   "event",
		Event:    event,
		Contains: []string{"payment"},
		Payload: model.WebhookPayload{
			Payment: model.PaymentWrapper{Entity: model.PaymentEntity{
				ID:       paymentID,
				Entity:   "payment",
				Amount:   amount,
				Currency: "INR",
				Status:   "captured",
				OrderID:  gatewayOrderID,
				Method:   "card",
				Notes:    model.Notes{OrderID: orderID},
			}},
		},
		CreatedAt: time.Now().Unix(),
	})
	require.NoError(t, err)
	return body
}

func confirmRequest(orderID, gatewayOrderID, paymentID string) *dto.ConfirmPaymentRequest {
	return &dto.ConfirmPaymentRequest{
		OrderID:          orderID,
		GatewayOrderID:   gatewayOrderID,
		GatewayPaymentID: paymentID,
		GatewaySignature: signature.Sign(testKeySecret, signature.PaymentMessage(gatewayOrderID, paymentID)),
	}
}

func (f *fixture) historyStatuses(t *testing.T, orderID string) []model.OrderStatus {
	t.Helper()
	var statuses []model.OrderStatus
	for _, h := range testutil.History(t, f.db, orderID) {
		statuses = append(statuses, h.ToStatus)
	}
	return statuses
}
