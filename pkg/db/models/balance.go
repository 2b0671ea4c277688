package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Balance is the per-shop money ledger. CurrentBalance is the withdrawable
// figure; TotalEarnings and WithdrawnAmount are lifetime counters and
// TotalRefunded accumulates reversals so gross lifetime volume stays
// reconstructable after refunds.
type Balance struct {
	ID                  uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ShopID              uuid.UUID       `gorm:"column:shop_id;type:uuid;not null;uniqueIndex"`
	AdminCommissionRate decimal.Decimal `gorm:"column:admin_commission_rate;type:decimal(5,2);not null;default:0"`
	IsCustomCommission  bool            `gorm:"column:is_custom_commission;not null;default:false"`
	TotalEarnings       decimal.Decimal `gorm:"column:total_earnings;type:decimal(12,2);not null;default:0"`
	TotalRefunded       decimal.Decimal `gorm:"column:total_refunded;type:decimal(12,2);not null;default:0"`
	WithdrawnAmount     decimal.Decimal `gorm:"column:withdrawn_amount;type:decimal(12,2);not null;default:0"`
	CurrentBalance      decimal.Decimal `gorm:"column:current_balance;type:decimal(12,2);not null;default:0"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *Balance) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
