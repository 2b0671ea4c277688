package withdraws

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgdb "github.com/tradeyard/tradeyard-backend/pkg/db"
	"github.com/tradeyard/tradeyard-backend/pkg/db/models"
	"github.com/tradeyard/tradeyard-backend/pkg/enums"
	"github.com/tradeyard/tradeyard-backend/pkg/pagination"
)

// Repository manages persistence for withdrawal requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, withdraw *models.Withdraw) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Withdraw, error)
	LockByID(ctx context.Context, id uuid.UUID) (*models.Withdraw, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.WithdrawStatus, note *string) error
	ListByShop(ctx context.Context, shopID uuid.UUID, params pagination.Params) ([]models.Withdraw, *pagination.Cursor, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a withdraws repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, withdraw *models.Withdraw) error {
	return r.db.WithContext(ctx).Create(withdraw).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Withdraw, error) {
	var withdraw models.Withdraw
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&withdraw).Error; err != nil {
		return nil, err
	}
	return &withdraw, nil
}

// LockByID acquires the row lock that serializes status transitions on the
// withdrawal within the surrounding transaction.
func (r *repository) LockByID(ctx context.Context, id uuid.UUID) (*models.Withdraw, error) {
	var withdraw models.Withdraw
	if err := pkgdb.ForUpdate(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&withdraw).Error; err != nil {
		return nil, err
	}
	return &withdraw, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.WithdrawStatus, note *string) error {
	updates := map[string]any{"status": status}
	if note != nil {
		updates["note"] = *note
	}
	return r.db.WithContext(ctx).
		Model(&models.Withdraw{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ListByShop(ctx context.Context, shopID uuid.UUID, params pagination.Params) ([]models.Withdraw, *pagination.Cursor, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}
	query := r.db.WithContext(ctx).Where("shop_id = ?", shopID)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Withdraw
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[pageSize-1]
		return rows, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}
