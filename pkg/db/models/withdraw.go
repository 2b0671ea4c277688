package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradeyard/tradeyard-backend/pkg/enums"
)

// Withdraw is a shop owner's payout request. The amount is debited from the
// shop balance when the row is created, so a pending withdraw already holds
// its money in reserve.
type Withdraw struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	ShopID        uuid.UUID            `gorm:"column:shop_id;type:uuid;not null;index"`
	Amount        decimal.Decimal      `gorm:"column:amount;type:decimal(12,2);not null"`
	Status        enums.WithdrawStatus `gorm:"column:status;type:withdraw_status;not null;default:'pending'"`
	PaymentMethod *string              `gorm:"column:payment_method"`
	Details       *string              `gorm:"column:details"`
	Note          *string              `gorm:"column:note"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *Withdraw) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
