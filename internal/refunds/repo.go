package refunds

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgdb "github.com/tradeyard/tradeyard-backend/pkg/db"
	"github.com/tradeyard/tradeyard-backend/pkg/db/models"
	"github.com/tradeyard/tradeyard-backend/pkg/enums"
	"github.com/tradeyard/tradeyard-backend/pkg/pagination"
)

// Repository manages persistence for refund requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, refund *models.Refund) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Refund, error)
	LockByID(ctx context.Context, id uuid.UUID) (*models.Refund, error)
	HasOpenByOrderID(ctx context.Context, orderID uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.RefundStatus) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Refund, *pagination.Cursor, error)
	ListByShop(ctx context.Context, shopID uuid.UUID, params pagination.Params) ([]models.Refund, *pagination.Cursor, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a refunds repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, refund *models.Refund) error {
	return r.db.WithContext(ctx).Create(refund).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Refund, error) {
	var refund models.Refund
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&refund).Error; err != nil {
		return nil, err
	}
	return &refund, nil
}

// LockByID acquires the row lock that serializes terminal-state decisions on
// the refund within the surrounding transaction.
func (r *repository) LockByID(ctx context.Context, id uuid.UUID) (*models.Refund, error) {
	var refund models.Refund
	if err := pkgdb.ForUpdate(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&refund).Error; err != nil {
		return nil, err
	}
	return &refund, nil
}

// HasOpenByOrderID reports whether the order already carries a refund that is
// not rejected.
func (r *repository) HasOpenByOrderID(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Refund{}).
		Where("order_id = ? AND status <> ?", orderID, enums.RefundStatusRejected).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.RefundStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Refund{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Refund, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Where("customer_id = ?", customerID)
	return r.listPage(query, params)
}

func (r *repository) ListByShop(ctx context.Context, shopID uuid.UUID, params pagination.Params) ([]models.Refund, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Where("shop_id = ?", shopID)
	return r.listPage(query, params)
}

func (r *repository) listPage(query *gorm.DB, params pagination.Params) ([]models.Refund, *pagination.Cursor, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Refund
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
