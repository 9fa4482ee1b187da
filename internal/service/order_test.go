package service

import (
	"context"
	"order-payment-engine/internal/dto"
	"order-payment-engine/internal/model"
	"order-payment-engine/internal/repository"
	"order-payment-engine/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testutil.SeedProduct(t, f.db, "mug", 500, 1)
	usd := testutil.SeedProduct(t, f.db, "usd-mug", 5, 10)
	require.NoError(t, f.db.Model(usd).Update("currency", "USD").Error)

	tests := []struct {
		name string
		req  *dto.CreateOrderRequest
		want error
	}{
		{"no items", cart(model.PaymentMethodCard), model.ErrNoItems},
		{"unknown payment method", cart("crypto", line("mug", 1)), model.ErrInvalidInput},
		{"zero quantity", cart(model.PaymentMethodCard, line("mug", 0)), model.ErrInvalidInput},
		{"unknown product", cart(model.PaymentMethodCard, line("ghost", 1)), model.ErrProductNotFound},
		{"mixed currencies", cart(model.PaymentMethodCard, line("mug", 1), line("usd-mug", 1)), model.ErrCurrencyMismatch},
		{"insufficient stock", cart(model.PaymentMethodCard, line("mug", 2)), model.ErrInsufficientStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.CreateOrder(ctx, "", tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, 1, testutil.Stock(t, f.db, "mug"))
	orders, err := f.orders.ListOrders(ctx, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrderForUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testutil.SeedProduct(t, f.db, "mug", 500, 5)

	order, err := f.orders.CreateOrder(ctx, "user-7", cart(model.PaymentMethodCard, line("mug", 1), line("mug", 1)))
	require.NoError(t, err)
	require.NotNil(t, order.UserID)
	assert.Equal(t, "user-7", *order.UserID)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, 3, testutil.Stock(t, f.db, "mug"))

	mine, err := f.orders.ListUserOrders(ctx, "user-7", 0, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, order.ID, mine[0].ID)

	confirmed, _ := f.notifier.counts()
	assert.Zero(t, confirmed, "online orders confirm on payment")
}

func TestStatusTransitionLegality(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testutil.SeedProduct(t, f.db, "mug", 500, 5)

	order, err := f.orders.CreateOrder(ctx, "", cart(model.PaymentMethodCOD, line("mug", 1)))
	require.NoError(t, err)
	confirmed, _ := f.notifier.counts()
	assert.Equal(t, 1, confirmed, "cash on delivery confirms at creation")

	move := func(to model.OrderStatus) error {
		_, err := f.orders.UpdateStatus(ctx, "admin-1", order.ID, &dto.UpdateStatusRequest{Status: string(to)})
		return err
	}

	assert.ErrorIs(t, move(model.StatusDelivered), model.ErrInvalidTransition)
	assert.ErrorIs(t, move(model.StatusShipped), model.ErrInvalidTransition)
	_, err = f.orders.UpdateStatus(ctx, "admin-1", order.ID, &dto.UpdateStatusRequest{Status: "lost"})
	assert.ErrorIs(t, err, model.ErrUnknownStatus)

	require.NoError(t, move(model.StatusProcessing))
	require.NoError(t, move(model.StatusShipped))
	require.NoError(t, move(model.StatusDelivered))

	history, err := f.orders.History(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, model.StatusPending, history[0].ToStatus)
	for i, want := range []model.OrderStatus{model.StatusProcessing, model.StatusShipped, model.StatusDelivered} {
		assert.Equal(t, history[i].ToStatus, history[i+1].FromStatus)
		assert.Equal(t, want, history[i+1].ToStatus)
		assert.Equal(t, "admin-1", history[i+1].Actor)
	}

	_, shipped := f.notifier.counts()
	assert.Zero(t, shipped, "no tracking number, no shipment mail")

	require.NoError(t, move(model.StatusReturned))
	assert.ErrorIs(t, move(model.StatusProcessing), model.ErrInvalidTransition)
}

func TestOnlineOrderMustBePaidBeforeProcessing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testutil.SeedProduct(t, f.db, "mug", 500, 5)
	order, err := f.orders.CreateOrder(ctx, "", cart(model.PaymentMethodCard, line("mug", 1)))
	require.NoError(t, err)

	_, err = f.orders.UpdateStatus(ctx, "admin-1", order.ID, &dto.UpdateStatusRequest{Status: string(model.StatusProcessing)})
	assert.ErrorIs(t, err, model.ErrPaymentRequired)

	stored, err := f.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)
	assert.Len(t, testutil.History(t, f.db, order.ID), 1)
}

func TestCancelRestoresStockAndIsTerminal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testutil.SeedProduct(t, f.db, "mug", 500, 5)
	testutil.SeedProduct(t, f.db, "tee", 800, 2)

	order, err := f.orders.CreateOrder(ctx, "", cart(model.PaymentMethodCard, line("mug", 2), line("tee", 2), line("mug", 1)))
	require.NoError(t, err)
	assert.Equal(t, 2, testutil.Stock(t, f.db, "mug"))
	assert.Equal(t, 0, testutil.Stock(t, f.db, "tee"))

	cancelled, err := f.orders.UpdateStatus(ctx, "admin-1", order.ID, &dto.UpdateStatusRequest{
		Status: string(model.StatusCancelled),
		Note:   "customer request",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)
	assert.Equal(t, 5, testutil.Stock(t, f.db, "mug"))
	assert.Equal(t, 2, testutil.Stock(t, f.db, "tee"))

	_, err = f.orders.UpdateStatus(ctx, "admin-1", order.ID, &dto.UpdateStatusRequest{Status: string(model.StatusProcessing)})
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	_, err = f.orders.UpdateStatus(ctx, "admin-1", order.ID, &dto.UpdateStatusRequest{Status: string(model.StatusCancelled)})
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	assert.Equal(t, 5, testutil.Stock(t, f.db, "mug"), "stock restored once")

	history := testutil.History(t, f.db, order.ID)
	require.Len(t, history, 2)
	assert.Equal(t, "customer request", history[1].Note)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.orders.UpdateStatus(context.Background(), "admin-1", "missing", &dto.UpdateStatusRequest{Status: string(model.StatusCancelled)})
	assert.ErrorIs(t, err, model.ErrOrderNotFound)

	_, err = f.orders.History(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}
