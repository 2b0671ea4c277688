package analytics

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradeyard/tradeyard-backend/pkg/db/models"
	"github.com/tradeyard/tradeyard-backend/pkg/enums"
)

// Repository answers the aggregate read paths. Platform totals read parent
// order rows so cross-shop charges (delivery fee, sales tax) count once;
// shop totals read child rows and sum paid_total only, because those charges
// belong to the platform, not the shop.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	PlatformOrderTotals(ctx context.Context) (*OrderTotals, error)
	ShopOrderTotals(ctx context.Context, shopID uuid.UUID) (*OrderTotals, error)
	PlatformRefundTotal(ctx context.Context) (decimal.Decimal, error)
	ShopRefundTotal(ctx context.Context, shopID uuid.UUID) (decimal.Decimal, error)
	PlatformLedgerTotals(ctx context.Context) (*LedgerTotals, error)
	ActiveShopCount(ctx context.Context) (int64, error)
}

// OrderTotals is one aggregate row over orders.
type OrderTotals struct {
	OrderCount int64           `gorm:"column:order_count"`
	Revenue    decimal.Decimal `gorm:"column:revenue"`
}

// LedgerTotals is one aggregate row over shop balances.
type LedgerTotals struct {
	TotalEarnings   decimal.Decimal `gorm:"column:total_earnings"`
	TotalRefunded   decimal.Decimal `gorm:"column:total_refunded"`
	WithdrawnAmount decimal.Decimal `gorm:"column:withdrawn_amount"`
	CurrentBalance  decimal.Decimal `gorm:"column:current_balance"`
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an analytics repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// PlatformOrderTotals counts parent orders and sums their paid_total, which
// carries delivery fee and sales tax exactly once per checkout.
func (r *repository) PlatformOrderTotals(ctx context.Context) (*OrderTotals, error) {
	var totals OrderTotals
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COUNT(*) AS order_count, COALESCE(SUM(paid_total), 0) AS revenue").
		Where("parent_id IS NULL").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

// ShopOrderTotals counts the shop's child orders and sums paid_total only.
func (r *repository) ShopOrderTotals(ctx context.Context, shopID uuid.UUID) (*OrderTotals, error) {
	var totals OrderTotals
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COUNT(*) AS order_count, COALESCE(SUM(paid_total), 0) AS revenue").
		Where("parent_id IS NOT NULL AND shop_id = ?", shopID).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r *repository) PlatformRefundTotal(ctx context.Context) (decimal.Decimal, error) {
	return r.refundTotal(ctx, r.db.WithContext(ctx).Model(&models.Refund{}))
}

func (r *repository) ShopRefundTotal(ctx context.Context, shopID uuid.UUID) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Refund{}).
		Where("shop_id = ?", shopID)
	return r.refundTotal(ctx, query)
}

func (r *repository) refundTotal(ctx context.Context, query *gorm.DB) (decimal.Decimal, error) {
	var out struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	err := query.
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("status = ?", enums.RefundStatusApproved).
		Scan(&out).Error
	if err != nil {
		return decimal.Zero, err
	}
	return out.Total, nil
}

func (r *repository) PlatformLedgerTotals(ctx context.Context) (*LedgerTotals, error) {
	var totals LedgerTotals
	err := r.db.WithContext(ctx).
		Model(&models.Balance{}).
		Select("COALESCE(SUM(total_earnings), 0) AS total_earnings, " +
			"COALESCE(SUM(total_refunded), 0) AS total_refunded, " +
			"COALESCE(SUM(withdrawn_amount), 0) AS withdrawn_amount, " +
			"COALESCE(SUM(current_balance), 0) AS current_balance").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r *repository) ActiveShopCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Shop{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}
