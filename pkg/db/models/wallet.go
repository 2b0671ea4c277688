package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet holds a customer's loyalty points. AvailablePoints is spendable;
// TotalPoints and PointsUsed are lifetime counters.
type Wallet struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID      uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;uniqueIndex"`
	TotalPoints     decimal.Decimal `gorm:"column:total_points;type:decimal(12,2);not null;default:0"`
	AvailablePoints decimal.Decimal `gorm:"column:available_points;type:decimal(12,2);not null;default:0"`
	PointsUsed      decimal.Decimal `gorm:"column:points_used;type:decimal(12,2);not null;default:0"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *Wallet) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
