// Package notifier sends customer emails off the request path. Enqueueing
// never blocks the caller and a failed send never reaches the order flow.
package notifier

import (
	"context"
	"fmt"
	"order-payment-engine/internal/client"
	"order-payment-engine/internal/config"
	"order-payment-engine/internal/model"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const sendTimeout = 15 * time.Second

type Notifier interface {
	OrderConfirmed(order *model.Order)
	OrderShipped(order *model.Order)
	Close(ctx context.Context) error
}

type job struct {
	kind    string
	orderID string
	email   client.Email
}

type dispatcherImpl struct {
	mailer client.MailClient
	log    logrus.FieldLogger
	queue  chan job
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(cfg config.Notifier, mailer client.MailClient, log logrus.FieldLogger) Notifier {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	d := &dispatcherImpl{
		mailer: mailer,
		log:    log.WithField("component", "notifier"),
		queue:  make(chan job, cfg.QueueSize),
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

func (d *dispatcherImpl) OrderConfirmed(order *model.Order) {
	d.enqueue(job{
		kind:    "order_confirmed",
		orderID: order.ID,
		email:   confirmationEmail(order),
	})
}

func (d *dispatcherImpl) OrderShipped(order *model.Order) {
	d.enqueue(job{
		kind:    "order_shipped",
		orderID: order.ID,
		email:   shippedEmail(order),
	})
}

func (d *dispatcherImpl) enqueue(j job) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entry := d.log.WithFields(logrus.Fields{"kind": j.kind, "order_id": j.orderID})
	if d.closed {
		entry.Warn("notifier closed, dropping notification")
		return
	}
	if j.email.To == "" {
		entry.Warn("order has no customer email, skipping notification")
		return
	}

	select {
	case d.queue <- j:
	default:
		entry.Warn("notification queue full, dropping notification")
	}
}

func (d *dispatcherImpl) work() {
	defer d.wg.Done()

	for j := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		err := d.mailer.Send(ctx, j.email)
		cancel()

		entry := d.log.WithFields(logrus.Fields{"kind": j.kind, "order_id": j.orderID})
		if err != nil {
			entry.WithError(err).Error("send notification")
			continue
		}
		entry.Info("notification sent")
	}
}

// Close stops intake and waits for queued notifications until ctx is done.
func (d *dispatcherImpl) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain notifications: %w", ctx.Err())
	}
}

func confirmationEmail(order *model.Order) client.Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThanks for your order %s.\n\n", order.CustomerName, order.ID)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %d x %s  %s %s\n", item.Quantity, item.ProductName, item.LineTotal().StringFixed(2), order.Currency)
	}
	fmt.Fprintf(&b, "\nTotal: %s %s\n", order.TotalAmount.StringFixed(2), order.Currency)
	if order.PaymentMethod == model.PaymentMethodCOD {
		b.WriteString("Payment will be collected on delivery.\n")
	}

	return client.Email{
		To:      order.CustomerEmail,
		Subject: fmt.Sprintf("Order %s confirmed", order.ID),
		Text:    b.String(),
	}
}

func shippedEmail(order *model.Order) client.Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nYour order %s is on its way.\n", order.CustomerName, order.ID)
	if order.Carrier != nil {
		fmt.Fprintf(&b, "Carrier: %s\n", *order.Carrier)
	}
	if order.TrackingNumber != nil {
		fmt.Fprintf(&b, "Tracking number: %s\n", *order.TrackingNumber)
	}

	return client.Email{
		To:      order.CustomerEmail,
		Subject: fmt.Sprintf("Order %s shipped", order.ID),
		Text:    b.String(),
	}
}
