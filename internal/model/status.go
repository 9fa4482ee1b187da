package model

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusReturned   OrderStatus = "returned"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type PaymentMethod string

const (
	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodNetBanking PaymentMethod = "netbanking"
	PaymentMethodWallet     PaymentMethod = "wallet"
	PaymentMethodCOD        PaymentMethod = "cod"
)

// transitions is the complete set of allowed status moves. Anything not
// listed, including every move out of cancelled and returned, is rejected.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusReturned},
	StatusDelivered:  {StatusReturned},
	StatusCancelled:  nil,
	StatusReturned:   nil,
}

func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodUPI, PaymentMethodNetBanking, PaymentMethodWallet, PaymentMethodCOD:
		return true
	default:
		return false
	}
}

// Online reports whether the method settles through the payment gateway.
func (m PaymentMethod) Online() bool {
	return m != PaymentMethodCOD
}

// CheckTransition applies the transition table plus the payment gate on
// processing: online orders must be paid first, cash-on-delivery need not.
func CheckTransition(order *Order, next OrderStatus) error {
	if !next.Valid() {
		return ErrUnknownStatus
	}
	if !order.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	if next == StatusProcessing && order.PaymentMethod.Online() && order.PaymentStatus != PaymentStatusPaid {
		return ErrPaymentRequired
	}
	return nil
}
