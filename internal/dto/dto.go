package dto

import "order-payment-engine/internal/model"

// Item is one cart line. Price and Name are what the storefront displayed;
// they are accepted for the UI's benefit and never stored.
type Item struct {
	ProductID string   `json:"product_id" validate:"required,max=64"`
	Quantity  int      `json:"quantity" validate:"required,gt=0,lte=1000"`
	Price     *float64 `json:"price,omitempty"`
	Name      string   `json:"name,omitempty"`
}

type ShippingAddress struct {
	Street     string `json:"street" validate:"required,max=255"`
	City       string `json:"city" validate:"required,max=128"`
	State      string `json:"state" validate:"required,max=128"`
	PostalCode string `json:"postal_code" validate:"required,max=32"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
}

type CreateOrderRequest struct {
	CustomerName    string          `json:"customer_name" validate:"required,max=255"`
	CustomerEmail   string          `json:"customer_email" validate:"required,email,max=255"`
	CustomerPhone   string          `json:"customer_phone" validate:"required,max=32"`
	ShippingAddress ShippingAddress `json:"shipping_address" validate:"required"`
	PaymentMethod   string          `json:"payment_method" validate:"required,oneof=card upi netbanking wallet cod"`
	Items           []*Item         `json:"items" validate:"required,min=1,max=100,dive,required"`
	// TotalAmount is ignored; the total is always priced server side.
	TotalAmount *float64 `json:"total_amount,omitempty"`
}

type UpdateStatusRequest struct {
	Status         string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled returned"`
	TrackingNumber string `json:"tracking_number" validate:"omitempty,max=64"`
	Carrier        string `json:"carrier" validate:"omitempty,max=64"`
	Note           string `json:"note" validate:"omitempty,max=255"`
}

type CreateSessionRequest struct {
	OrderID string `json:"order_id" validate:"required,max=36"`
}

// CreateSessionResponse is what the storefront hands to the provider's
// checkout widget.
type CreateSessionResponse struct {
	KeyID          string `json:"key_id"`
	GatewayOrderID string `json:"gateway_order_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
}

type ConfirmPaymentRequest struct {
	OrderID          string `json:"order_id" validate:"required,max=36"`
	GatewayOrderID   string `json:"gateway_order_id" validate:"required,max=64"`
	GatewayPaymentID string `json:"gateway_payment_id" validate:"required,max=64"`
	GatewaySignature string `json:"gateway_signature" validate:"required,hexadecimal"`
}

type ConfirmPaymentResponse struct {
	OrderID       string              `json:"order_id"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
	Status        model.OrderStatus   `json:"status"`
	AlreadyPaid   bool                `json:"already_paid"`
}

type OrderListQuery struct {
	Status        string `query:"status" validate:"omitempty,oneof=pending processing shipped delivered cancelled returned"`
	PaymentStatus string `query:"payment_status" validate:"omitempty,oneof=pending paid failed"`
	Limit         int    `query:"limit" validate:"omitempty,gte=0,lte=100"`
	Offset        int    `query:"offset" validate:"omitempty,gte=0"`
}

type OrderDetail struct {
	Order   *model.Order               `json:"order"`
	History []model.OrderStatusHistory `json:"history,omitempty"`
}
