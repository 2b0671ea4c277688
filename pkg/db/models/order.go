package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradeyard/tradeyard-backend/pkg/enums"
)

// Order is either a parent order (ParentID nil, ShopID nil) aggregating a
// customer checkout, or a per-shop child order hanging off a parent. Money
// only ever settles from child orders; SettledAt marks that the child has
// been credited to its shop exactly once.
type Order struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	TrackingNumber string               `gorm:"column:tracking_number;not null;uniqueIndex"`
	ParentID       *uuid.UUID           `gorm:"column:parent_id;type:uuid;index"`
	ShopID         *uuid.UUID           `gorm:"column:shop_id;type:uuid;index"`
	CustomerID     uuid.UUID            `gorm:"column:customer_id;type:uuid;not null;index"`
	Amount         decimal.Decimal      `gorm:"column:amount;type:decimal(12,2);not null"`
	SalesTax       decimal.Decimal      `gorm:"column:sales_tax;type:decimal(12,2);not null;default:0"`
	DeliveryFee    decimal.Decimal      `gorm:"column:delivery_fee;type:decimal(12,2);not null;default:0"`
	Discount       decimal.Decimal      `gorm:"column:discount;type:decimal(12,2);not null;default:0"`
	Total          decimal.Decimal      `gorm:"column:total;type:decimal(12,2);not null"`
	PaidTotal      decimal.Decimal      `gorm:"column:paid_total;type:decimal(12,2);not null"`
	OrderStatus    enums.OrderStatus    `gorm:"column:order_status;type:order_status;not null;default:'order-pending'"`
	PaymentGateway enums.PaymentGateway `gorm:"column:payment_gateway;type:payment_gateway;not null"`
	SettledAt      *time.Time           `gorm:"column:settled_at"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// IsParent reports whether the order is a checkout-level parent.
func (o *Order) IsParent() bool {
	return o.ParentID == nil
}

func (m *Order) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
