package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ShippingAddress struct {
	Street     string `gorm:"size:255;not null" json:"street"`
	City       string `gorm:"size:128;not null" json:"city"`
	State      string `gorm:"size:128;not null" json:"state"`
	PostalCode string `gorm:"size:32;not null" json:"postal_code"`
	Phone      string `gorm:"size:32" json:"phone"`
}

type Order struct {
	ID              string          `gorm:"primaryKey;size:36;not null" json:"id"`
	UserID          *string         `gorm:"size:64;index" json:"user_id,omitempty"` // nil for guest checkout
	CustomerName    string          `gorm:"size:255;not null" json:"customer_name"`
	CustomerEmail   string          `gorm:"size:255;not null" json:"customer_email"`
	CustomerPhone   string          `gorm:"size:32;not null" json:"customer_phone"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	PaymentMethod   PaymentMethod   `gorm:"size:16;not null" json:"payment_method"`
	PaymentStatus   PaymentStatus   `gorm:"size:16;index;not null" json:"payment_status"`
	Status          OrderStatus     `gorm:"size:32;index;not null" json:"status"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Currency        string          `gorm:"size:8;not null" json:"currency"`
	GatewayOrderID  *string         `gorm:"size:64;index" json:"gateway_order_id,omitempty"`
	PaymentID       *string         `gorm:"size:64" json:"payment_id,omitempty"` // set iff payment_status = paid
	TrackingNumber  *string         `gorm:"size:64" json:"tracking_number,omitempty"`
	Carrier         *string         `gorm:"size:64" json:"carrier,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem snapshots name and unit price at purchase time. Neither is
// updated after insert.
type OrderItem struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderID         string          `gorm:"size:36;index;not null" json:"order_id"`
	ProductID       string          `gorm:"size:64;index;not null" json:"product_id"`
	ProductName     string          `gorm:"size:255;not null" json:"product_name"`
	Quantity        int             `gorm:"not null;check:chk_order_items_quantity,quantity > 0" json:"quantity"`
	PriceAtPurchase decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price_at_purchase"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.PriceAtPurchase.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SnapshotTotal sums price_at_purchase × quantity over the given items.
func SnapshotTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// MinorUnits converts a major-unit amount to the gateway's integer minor
// units, rounding half away from zero.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

func (o *Order) BelongsTo(userID string) bool {
	return o.UserID != nil && *o.UserID == userID
}
