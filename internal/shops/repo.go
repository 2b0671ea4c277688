package shops

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradeyard/tradeyard-backend/pkg/db/models"
	"github.com/tradeyard/tradeyard-backend/pkg/enums"
)

// Repository manages persistence for shops and the product visibility flips
// that ride along with moderation.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, shop *models.Shop) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	FlipProductStatus(ctx context.Context, shopID uuid.UUID, from, to enums.ProductStatus) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a shop repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, shop *models.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Shop{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

// FlipProductStatus moves every product of the shop from one visibility
// status to the other and reports how many rows changed.
func (r *repository) FlipProductStatus(ctx context.Context, shopID uuid.UUID, from, to enums.ProductStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("shop_id = ? AND status = ?", shopID, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}
