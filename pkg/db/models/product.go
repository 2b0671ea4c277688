package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradeyard/tradeyard-backend/pkg/enums"
)

// Product is the storefront listing a child order line references.
type Product struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	ShopID      uuid.UUID           `gorm:"column:shop_id;type:uuid;not null;index"`
	Name        string              `gorm:"column:name;not null"`
	Slug        string              `gorm:"column:slug;not null;uniqueIndex"`
	Description *string             `gorm:"column:description"`
	Status      enums.ProductStatus `gorm:"column:status;type:product_status;not null;default:'draft'"`
	Price       decimal.Decimal     `gorm:"column:price;type:decimal(12,2);not null"`
	SalePrice   *decimal.Decimal    `gorm:"column:sale_price;type:decimal(12,2)"`
	Quantity    int                 `gorm:"column:quantity;not null;default:0"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *Product) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
