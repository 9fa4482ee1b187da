package notifier

import (
	"context"
	"errors"
	"order-payment-engine/internal/client"
	"order-payment-engine/internal/config"
	"order-payment-engine/internal/model"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu    sync.Mutex
	sent  []client.Email
	gate  chan struct{}
	fails bool
}

func (m *recordingMailer) Send(ctx context.Context, email client.Email) error {
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	if m.fails {
		return errors.New("provider down")
	}
	return nil
}

func (m *recordingMailer) Sent() []client.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]client.Email(nil), m.sent...)
}

func sampleOrder() *model.Order {
	tracking, carrier := "TRK123", "BlueDart"
	return &model.Order{
		ID:             "ord-1",
		CustomerName:   "Asha",
		CustomerEmail:  "asha@example.com",
		PaymentMethod:  model.PaymentMethodCard,
		TotalAmount:    decimal.NewFromInt(1000),
		Currency:       "INR",
		TrackingNumber: &tracking,
		Carrier:        &carrier,
		Items: []model.OrderItem{
			{ProductName: "Mug", Quantity: 2, PriceAtPurchase: decimal.NewFromInt(500)},
		},
	}
}

func TestDispatcherSends(t *testing.T) {
	log, _ := test.NewNullLogger()
	mailer := &recordingMailer{}
	n := NewDispatcher(config.Notifier{QueueSize: 4, Workers: 1}, mailer, log)

	n.OrderConfirmed(sampleOrder())
	n.OrderShipped(sampleOrder())
	require.NoError(t, n.Close(context.Background()))

	sent := mailer.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "Order ord-1 confirmed", sent[0].Subject)
	assert.Contains(t, sent[0].Text, "2 x Mug  1000.00 INR")
	assert.Contains(t, sent[0].Text, "Total: 1000.00 INR")
	assert.Equal(t, "Order ord-1 shipped", sent[1].Subject)
	assert.Contains(t, sent[1].Text, "Tracking number: TRK123")
	assert.Contains(t, sent[1].Text, "Carrier: BlueDart")
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	log, hook := test.NewNullLogger()
	mailer := &recordingMailer{gate: make(chan struct{})}
	n := NewDispatcher(config.Notifier{QueueSize: 1, Workers: 1}, mailer, log)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			n.OrderConfirmed(sampleOrder())
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a stalled mailer")
	}

	close(mailer.gate)
	require.NoError(t, n.Close(context.Background()))

	sent := len(mailer.Sent())
	assert.GreaterOrEqual(t, sent, 1)
	assert.LessOrEqual(t, sent, 2)

	dropped := 0
	for _, entry := range hook.AllEntries() {
		if entry.Message == "notification queue full, dropping notification" {
			dropped++
		}
	}
	assert.Equal(t, 5-sent, dropped)
}

func TestDispatcherLogsSendFailure(t *testing.T) {
	log, hook := test.NewNullLogger()
	mailer := &recordingMailer{fails: true}
	n := NewDispatcher(config.Notifier{QueueSize: 1, Workers: 1}, mailer, log)

	n.OrderConfirmed(sampleOrder())
	require.NoError(t, n.Close(context.Background()))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "ord-1", entry.Data["order_id"])
}

func TestDispatcherIgnoresAfterClose(t *testing.T) {
	log, _ := test.NewNullLogger()
	mailer := &recordingMailer{}
	n := NewDispatcher(config.Notifier{QueueSize: 1, Workers: 1}, mailer, log)
	require.NoError(t, n.Close(context.Background()))

	n.OrderConfirmed(sampleOrder())
	require.NoError(t, n.Close(context.Background()))
	assert.Empty(t, mailer.Sent())
}

func TestCloseHonoursDeadline(t *testing.T) {
	log, _ := test.NewNullLogger()
	mailer := &recordingMailer{gate: make(chan struct{})}
	defer close(mailer.gate)
	n := NewDispatcher(config.Notifier{QueueSize: 1, Workers: 1}, mailer, log)
	n.OrderConfirmed(sampleOrder())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, n.Close(ctx), context.DeadlineExceeded)
}
