package model

const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
	EventOrderPaid       = "order.paid"
)

// Notes is the free-form metadata the gateway echoes back on every entity
// created from a session.
type Notes struct {
	OrderID string `json:"order_id"`
}

type GatewayOrder struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
	Notes    Notes  `json:"notes"`
}

type PaymentEntity struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	OrderID  string `json:"order_id"`
	Method   string `json:"method"`
	Notes    Notes  `json:"notes"`
}

type PaymentWrapper struct {
	Entity PaymentEntity `json:"entity"`
}

type OrderWrapper struct {
	Entity GatewayOrder `json:"entity"`
}

type WebhookPayload struct {
	Payment PaymentWrapper `json:"payment"`
	Order   OrderWrapper   `json:"order"`
}

type GatewayWebhookEvent struct {
	Entity    string         `json:"entity"`
	AccountID string         `json:"account_id"`
	Event     string         `json:"event"`
	Contains  []string       `json:"contains"`
	Payload   WebhookPayload `json:"payload"`
	CreatedAt int64          `json:"created_at"`
}

// OrderID resolves our order id from the notes we attached at session time,
// preferring the payment entity.
func (e *GatewayWebhookEvent) OrderID() string {
	if id := e.Payload.Payment.Entity.Notes.OrderID; id != "" {
		return id
	}
	return e.Payload.Order.Entity.Notes.OrderID
}

func (e *GatewayWebhookEvent) GatewayOrderID() string {
	if id := e.Payload.Payment.Entity.OrderID; id != "" {
		return id
	}
	return e.Payload.Order.Entity.ID
}
