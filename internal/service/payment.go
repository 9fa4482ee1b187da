package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"order-payment-engine/internal/client"
	"order-payment-engine/internal/config"
	"order-payment-engine/internal/dto"
	"order-payment-engine/internal/model"
	"order-payment-engine/internal/notifier"
	"order-payment-engine/internal/repository"
	"order-payment-engine/internal/signature"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type WebhookOutcome string

const (
	WebhookPaid         WebhookOutcome = "paid"
	WebhookAlreadyPaid  WebhookOutcome = "already_paid"
	WebhookFailed       WebhookOutcome = "failed"
	WebhookIgnored      WebhookOutcome = "ignored"
	WebhookUnknownOrder WebhookOutcome = "unknown_order"
)

type WebhookResult struct {
	Event       string         `json:"event"`
	OrderID     string         `json:"order_id,omitempty"`
	Outcome     WebhookOutcome `json:"outcome"`
	Redelivered bool           `json:"redelivered,omitempty"`
}

type PaymentService interface {
	CreateSession(ctx context.Context, orderID string) (*dto.CreateSessionResponse, error)
	ConfirmPayment(ctx context.Context, req *dto.ConfirmPaymentRequest) (*dto.ConfirmPaymentResponse, error)
	HandleWebhook(ctx context.Context, sig, eventID string, body []byte) (*WebhookResult, error)
}

type paymentServiceImpl struct {
	cfg              config.Gateway
	gateway          client.PaymentGateway
	pricing          PricingGate
	transactor       repository.Transactor
	orderRepo        repository.OrderRepository
	historyRepo      repository.HistoryRepository
	webhookEventRepo repository.WebhookEventRepository
	notifier         notifier.Notifier
	log              logrus.FieldLogger
}

func NewPaymentService(
	cfg config.Gateway,
	gateway client.PaymentGateway,
	pricing PricingGate,
	transactor repository.Transactor,
	orderRepo repository.OrderRepository,
	historyRepo repository.HistoryRepository,
	webhookEventRepo repository.WebhookEventRepository,
	notifier notifier.Notifier,
	log logrus.FieldLogger,
) PaymentService {
	return &paymentServiceImpl{
		cfg:              cfg,
		gateway:          gateway,
		pricing:          pricing,
		transactor:       transactor,
		orderRepo:        orderRepo,
		historyRepo:      historyRepo,
		webhookEventRepo: webhookEventRepo,
		notifier:         notifier,
		log:              log,
	}
}

func (s *paymentServiceImpl) CreateSession(ctx context.Context, orderID string) (*dto.CreateSessionResponse, error) {
	order, err := s.pricing.Recompute(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.PaymentMethod.Online() {
		return nil, fmt.Errorf("%w: %s is cash on delivery", model.ErrInvalidInput, orderID)
	}
	if s.cfg.Currency != "" && order.Currency != s.cfg.Currency {
		return nil, fmt.Errorf("%w: order in %s, gateway settles %s", model.ErrCurrencyMismatch, order.Currency, s.cfg.Currency)
	}

	amount := model.MinorUnits(order.TotalAmount)

	gwCtx := ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		gwCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	gwOrder, err := s.gateway.CreateOrder(gwCtx, client.CreateGatewayOrderRequest{
		OrderID:  order.ID,
		Amount:   amount,
		Currency: order.Currency,
	})
	if err != nil {
		s.log.WithError(err).WithField("order_id", orderID).Error("gateway create order")
		if errors.Is(err, model.ErrGatewayUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", model.ErrGatewayUnavailable, err)
	}
	if gwOrder.Amount != 0 && gwOrder.Amount != amount {
		s.log.WithFields(logrus.Fields{
			"order_id":       orderID,
			"amount":         amount,
			"gateway_amount": gwOrder.Amount,
		}).Warn("gateway echoed a different amount")
	}

	if err := s.orderRepo.AttachGatewayOrder(ctx, order.ID, gwOrder.ID); err != nil {
		return nil, fmt.Errorf("attach gateway order: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"order_id":         order.ID,
		"gateway_order_id": gwOrder.ID,
		"amount":           amount,
	}).Info("payment session created")

	return &dto.CreateSessionResponse{
		KeyID:          s.cfg.KeyID,
		GatewayOrderID: gwOrder.ID,
		Amount:         amount,
		Currency:       order.Currency,
		Receipt:        order.ID,
	}, nil
}

func (s *paymentServiceImpl) ConfirmPayment(ctx context.Context, req *dto.ConfirmPaymentRequest) (*dto.ConfirmPaymentResponse, error) {
	log := s.log.WithFields(logrus.Fields{
		"order_id":           req.OrderID,
		"gateway_order_id":   req.GatewayOrderID,
		"gateway_payment_id": req.GatewayPaymentID,
	})

	message := signature.PaymentMessage(req.GatewayOrderID, req.GatewayPaymentID)
	if !signature.Verify(s.cfg.KeySecret, message, req.GatewaySignature) {
		log.Warn("payment confirmation signature mismatch")
		return nil, model.ErrInvalidSignature
	}

	order, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.GatewayOrderID == nil || *order.GatewayOrderID != req.GatewayOrderID {
		log.Warn("signed gateway order does not belong to this order")
		return nil, fmt.Errorf("%w: gateway order %s is not bound to %s", model.ErrInvalidSignature, req.GatewayOrderID, req.OrderID)
	}

	settled, alreadyPaid, err := s.settle(ctx, order.ID, req.GatewayPaymentID, 0, "redirect confirmation")
	if err != nil {
		return nil, err
	}

	return &dto.ConfirmPaymentResponse{
		OrderID:       settled.ID,
		PaymentStatus: settled.PaymentStatus,
		Status:        settled.Status,
		AlreadyPaid:   alreadyPaid,
	}, nil
}

// HandleWebhook verifies the raw body before anything else reads it. An
// error means the delivery was not accepted and the provider should retry.
func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, sig, eventID string, body []byte) (*WebhookResult, error) {
	if !signature.Verify(s.cfg.WebhookSecret, body, sig) {
		s.log.WithField("event_id", eventID).Warn("webhook signature mismatch")
		return nil, model.ErrInvalidSignature
	}

	var event model.GatewayWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: webhook body: %v", model.ErrInvalidInput, err)
	}

	result := &WebhookResult{Event: event.Event}
	log := s.log.WithFields(logrus.Fields{"event": event.Event, "event_id": eventID})

	if eventID != "" {
		seen, err := s.webhookEventRepo.Exists(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("check webhook event: %w", err)
		}
		result.Redelivered = seen
	}

	switch event.Event {
	case model.EventPaymentCaptured, model.EventOrderPaid:
		order, err := s.resolveOrder(ctx, &event)
		if err != nil {
			return nil, err
		}
		if order == nil {
			log.WithField("gateway_order_id", event.GatewayOrderID()).Warn("webhook for unknown order")
			result.Outcome = WebhookUnknownOrder
			break
		}
		result.OrderID = order.ID

		payment := event.Payload.Payment.Entity
		if payment.ID == "" {
			return nil, fmt.Errorf("%w: %s without payment id", model.ErrInvalidInput, event.Event)
		}

		_, alreadyPaid, err := s.settle(ctx, order.ID, payment.ID, payment.Amount, "webhook "+event.Event)
		if err != nil {
			return nil, err
		}
		result.Outcome = WebhookPaid
		if alreadyPaid {
			result.Outcome = WebhookAlreadyPaid
		}

	case model.EventPaymentFailed:
		order, err := s.resolveOrder(ctx, &event)
		if err != nil {
			return nil, err
		}
		if order == nil {
			log.Warn("payment failure for unknown order")
			result.Outcome = WebhookUnknownOrder
			break
		}
		result.OrderID = order.ID

		var changed bool
		err = s.transactor.WithTx(ctx, func(tx *gorm.DB) error {
			var err error
			changed, err = s.orderRepo.MarkFailed(ctx, tx, order.ID)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("mark payment failed: %w", err)
		}
		result.Outcome = WebhookIgnored
		if changed {
			result.Outcome = WebhookFailed
			log.WithField("order_id", order.ID).Info("payment attempt failed")
		}

	default:
		result.Outcome = WebhookIgnored
	}

	if eventID != "" {
		if err := s.webhookEventRepo.MarkProcessed(ctx, eventID, event.Event, result.OrderID); err != nil {
			return nil, fmt.Errorf("record webhook event: %w", err)
		}
	}

	log.WithFields(logrus.Fields{"order_id": result.OrderID, "outcome": result.Outcome}).Info("webhook handled")
	return result, nil
}

// resolveOrder finds the order a gateway event refers to, by the order id
// we put in the notes and then by gateway order id. A nil order with a nil
// error means the event is not ours.
func (s *paymentServiceImpl) resolveOrder(ctx context.Context, event *model.GatewayWebhookEvent) (*model.Order, error) {
	if orderID := event.OrderID(); orderID != "" {
		order, err := s.orderRepo.FindByID(ctx, orderID)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, model.ErrOrderNotFound) {
			return nil, err
		}
	}

	if gatewayOrderID := event.GatewayOrderID(); gatewayOrderID != "" {
		order, err := s.orderRepo.FindByGatewayOrderID(ctx, gatewayOrderID)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, model.ErrOrderNotFound) {
			return nil, err
		}
	}

	return nil, nil
}

// settle is the one place an order becomes paid. Both confirmation paths
// end here; the conditional update in MarkPaid decides which of them wins.
func (s *paymentServiceImpl) settle(ctx context.Context, orderID, paymentID string, capturedAmount int64, source string) (*model.Order, bool, error) {
	log := s.log.WithFields(logrus.Fields{"order_id": orderID, "payment_id": paymentID, "source": source})

	var (
		outcome repository.PaymentOutcome
		order   *model.Order
	)
	err := s.transactor.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		outcome, err = s.orderRepo.MarkPaid(ctx, tx, orderID, paymentID)
		if err != nil {
			return err
		}

		if outcome == repository.PaymentApplied {
			if err := s.historyRepo.Append(ctx, tx, &model.OrderStatusHistory{
				OrderID:       orderID,
				FromStatus:    model.StatusPending,
				ToStatus:      model.StatusProcessing,
				PaymentStatus: model.PaymentStatusPaid,
				Actor:         ActorGateway,
				Note:          "payment captured via " + source,
			}); err != nil {
				return err
			}
		}

		order, err = s.orderRepo.Get(ctx, tx, orderID)
		return err
	})
	if err != nil {
		log.WithError(err).Error("settle payment")
		return nil, false, fmt.Errorf("settle payment: %w", err)
	}

	if outcome == repository.PaymentAlreadyApplied {
		log.Info("payment already recorded")
		return order, true, nil
	}

	if expected := model.MinorUnits(order.TotalAmount); capturedAmount != 0 && capturedAmount != expected {
		log.WithFields(logrus.Fields{
			"captured_amount": capturedAmount,
			"expected_amount": expected,
		}).Warn("captured amount differs from order total")
	}

	switch {
	case outcome == repository.PaymentApplied:
		log.Info("order paid")
		s.notifier.OrderConfirmed(order)
	case order.Status == model.StatusCancelled:
		log.Warn("payment captured for a cancelled order, refund must be issued by an operator")
	default:
		log.WithField("status", order.Status).Info("payment recorded without status change")
		if order.PaymentMethod.Online() {
			s.notifier.OrderConfirmed(order)
		}
	}

	return order, false, nil
}
