package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	pkgdb "github.com/tradeyard/tradeyard-backend/pkg/db"
	"github.com/tradeyard/tradeyard-backend/pkg/db/models"
)

// Repository manages persistence for customer wallets. Mutations are single
// arithmetic UPDATEs; point debits are conditional on sufficient available
// points.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, wallet *models.Wallet) error
	GetByCustomerID(ctx context.Context, customerID uuid.UUID) (*models.Wallet, error)
	LockByCustomerID(ctx context.Context, customerID uuid.UUID) (*models.Wallet, error)
	CreditPoints(ctx context.Context, customerID uuid.UUID, points decimal.Decimal) error
	DebitPoints(ctx context.Context, customerID uuid.UUID, points decimal.Decimal) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, wallet *models.Wallet) error {
	return r.db.WithContext(ctx).Create(wallet).Error
}

func (r *repository) GetByCustomerID(ctx context.Context, customerID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) LockByCustomerID(ctx context.Context, customerID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := pkgdb.ForUpdate(r.db.WithContext(ctx)).
		Where("customer_id = ?", customerID).
		First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// CreditPoints grows both the lifetime and available counters.
func (r *repository) CreditPoints(ctx context.Context, customerID uuid.UUID, points decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("customer_id = ?", customerID).
		Updates(map[string]any{
			"total_points":     gorm.Expr("total_points + ?", points),
			"available_points": gorm.Expr("available_points + ?", points),
		}).Error
}

// DebitPoints consumes available points. The guard clause refuses overdrafts;
// the boolean reports whether the debit applied.
func (r *repository) DebitPoints(ctx context.Context, customerID uuid.UUID, points decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("customer_id = ? AND available_points >= ?", customerID, points).
		Updates(map[string]any{
			"available_points": gorm.Expr("available_points - ?", points),
			"points_used":      gorm.Expr("points_used + ?", points),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
