package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"github.com/lib/pq"
)

// Shop represents the canonical vendor tenant model.
type Shop struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID     uuid.UUID      `gorm:"column:owner_id;type:uuid;not null"`
	Name        string         `gorm:"column:name;not null"`
	Slug        string         `gorm:"column:slug;not null;uniqueIndex"`
	Description *string        `gorm:"column:description"`
	IsActive    bool           `gorm:"column:is_active;not null;default:false"`
	Categories  pq.StringArray `gorm:"column:categories;type:text[]"`
	CoverURL    *string        `gorm:"column:cover_url"`
	LogoURL     *string        `gorm:"column:logo_url"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *Shop) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
