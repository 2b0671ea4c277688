package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradeyard/tradeyard-backend/pkg/enums"
)

// Refund is a customer's request to unwind an order's money movement.
// ShopID is nil when the refund targets a parent order and the reversal
// fans out across the child shops.
type Refund struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	OrderID    uuid.UUID          `gorm:"column:order_id;type:uuid;not null;index"`
	CustomerID uuid.UUID          `gorm:"column:customer_id;type:uuid;not null;index"`
	ShopID     *uuid.UUID         `gorm:"column:shop_id;type:uuid;index"`
	Amount     decimal.Decimal    `gorm:"column:amount;type:decimal(12,2);not null"`
	Status     enums.RefundStatus `gorm:"column:status;type:refund_status;not null;default:'refund-pending'"`
	Reason     *string            `gorm:"column:reason"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *Refund) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
