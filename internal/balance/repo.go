package balance

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	pkgdb "github.com/tradeyard/tradeyard-backend/pkg/db"
	"github.com/tradeyard/tradeyard-backend/pkg/db/models"
)

// Repository manages persistence for shop balances. The mutating methods are
// single arithmetic UPDATEs so that concurrent settlements, refunds and
// withdrawals on the same shop cannot lose increments even outside a lock.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, balance *models.Balance) error
	GetByShopID(ctx context.Context, shopID uuid.UUID) (*models.Balance, error)
	LockByShopID(ctx context.Context, shopID uuid.UUID) (*models.Balance, error)
	UpdateCommission(ctx context.Context, shopID uuid.UUID, rate decimal.Decimal, isCustom bool) error
	CreditEarnings(ctx context.Context, shopID uuid.UUID, amount decimal.Decimal) error
	ReverseEarnings(ctx context.Context, shopID uuid.UUID, amount decimal.Decimal) (bool, error)
	DebitForWithdraw(ctx context.Context, shopID uuid.UUID, amount decimal.Decimal) (bool, error)
	CreditWithdrawReversal(ctx context.Context, shopID uuid.UUID, amount decimal.Decimal) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a balance repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, balance *models.Balance) error {
	return r.db.WithContext(ctx).Create(balance).Error
}

func (r *repository) GetByShopID(ctx context.Context, shopID uuid.UUID) (*models.Balance, error) {
	var balance models.Balance
	if err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		First(&balance).Error; err != nil {
		return nil, err
	}
	return &balance, nil
}

// LockByShopID acquires the row lock that serializes money movements for the
// shop within the surrounding transaction.
func (r *repository) LockByShopID(ctx context.Context, shopID uuid.UUID) (*models.Balance, error) {
	var balance models.Balance
	if err := pkgdb.ForUpdate(r.db.WithContext(ctx)).
		Where("shop_id = ?", shopID).
		First(&balance).Error; err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *repository) UpdateCommission(ctx context.Context, shopID uuid.UUID, rate decimal.Decimal, isCustom bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Balance{}).
		Where("shop_id = ?", shopID).
		Updates(map[string]any{
			"admin_commission_rate": rate,
			"is_custom_commission":  isCustom,
		}).Error
}

// CreditEarnings adds a settled net amount to both lifetime earnings and the
// withdrawable balance.
func (r *repository) CreditEarnings(ctx context.Context, shopID uuid.UUID, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Balance{}).
		Where("shop_id = ?", shopID).
		Updates(map[string]any{
			"total_earnings":  gorm.Expr("total_earnings + ?", amount),
			"current_balance": gorm.Expr("current_balance + ?", amount),
		}).Error
}

// ReverseEarnings unwinds a settled amount on refund approval. The debit is
// guarded the same way as withdrawals: the balance row never goes negative,
// and the boolean reports whether the reversal applied.
func (r *repository) ReverseEarnings(ctx context.Context, shopID uuid.UUID, amount decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Balance{}).
		Where("shop_id = ? AND current_balance >= ?", shopID, amount).
		Updates(map[string]any{
			"total_earnings":  gorm.Expr("total_earnings - ?", amount),
			"current_balance": gorm.Expr("current_balance - ?", amount),
			"total_refunded":  gorm.Expr("total_refunded + ?", amount),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DebitForWithdraw moves funds from the withdrawable balance into the
// withdrawn counter. The guard clause makes the debit a no-op when the
// balance cannot cover it; the boolean reports whether the debit applied.
func (r *repository) DebitForWithdraw(ctx context.Context, shopID uuid.UUID, amount decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Balance{}).
		Where("shop_id = ? AND current_balance >= ?", shopID, amount).
		Updates(map[string]any{
			"current_balance":  gorm.Expr("current_balance - ?", amount),
			"withdrawn_amount": gorm.Expr("withdrawn_amount + ?", amount),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CreditWithdrawReversal returns a rejected withdrawal's reserved amount to
// the withdrawable balance.
func (r *repository) CreditWithdrawReversal(ctx context.Context, shopID uuid.UUID, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Balance{}).
		Where("shop_id = ?", shopID).
		Updates(map[string]any{
			"current_balance":  gorm.Expr("current_balance + ?", amount),
			"withdrawn_amount": gorm.Expr("withdrawn_amount - ?", amount),
		}).Error
}
