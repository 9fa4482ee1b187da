package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        string          `gorm:"primaryKey;size:64;not null" json:"id"` // product sku
	Name      string          `gorm:"size:255;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Currency  string          `gorm:"size:8;not null" json:"currency"`
	Stock     int             `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OrderStatusHistory is append-only. Rows are written in the same
// transaction as the status change they describe.
type OrderStatusHistory struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	OrderID       string        `gorm:"size:36;index;not null" json:"order_id"`
	FromStatus    OrderStatus   `gorm:"size:32" json:"from_status"`
	ToStatus      OrderStatus   `gorm:"size:32;not null" json:"to_status"`
	PaymentStatus PaymentStatus `gorm:"size:16;not null" json:"payment_status"`
	Actor         string        `gorm:"size:128;not null" json:"actor"`
	Note          string        `gorm:"size:255" json:"note,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

func (OrderStatusHistory) TableName() string {
	return "order_status_history"
}

// WebhookEvent records provider deliveries that passed signature checks.
// Idempotency is enforced on the order row, this table is an audit trail.
type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	OrderID     string `gorm:"size:36;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}

// Tables lists every entity managed by AutoMigrate.
func Tables() []any {
	return []any{
		&Product{},
		&Order{},
		&OrderItem{},
		&OrderStatusHistory{},
		&WebhookEvent{},
	}
}
