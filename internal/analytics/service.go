package analytics

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradeyard/tradeyard-backend/internal/balance"
	"github.com/tradeyard/tradeyard-backend/pkg/db/models"
	pkgerrors "github.com/tradeyard/tradeyard-backend/pkg/errors"
)

// Service exposes the two summary shapes. They aggregate differently on
// purpose: the platform view reads parent orders so delivery fee and sales
// tax count once, the shop view reads that shop's child orders and never
// sees those charges.
type Service interface {
	PlatformSummary(ctx context.Context) (*PlatformSummary, error)
	ShopSummary(ctx context.Context, shopID uuid.UUID) (*ShopSummary, error)
}

// PlatformSummary is the admin-facing aggregate across the marketplace.
type PlatformSummary struct {
	TotalOrders     int64           `json:"total_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalRefunds    decimal.Decimal `json:"total_refunds"`
	TotalEarnings   decimal.Decimal `json:"total_earnings"`
	TotalRefunded   decimal.Decimal `json:"total_refunded"`
	WithdrawnAmount decimal.Decimal `json:"withdrawn_amount"`
	ShopBalances    decimal.Decimal `json:"shop_balances"`
	ActiveShops     int64           `json:"active_shops"`
}

// ShopSummary is the owner-facing aggregate for one shop.
type ShopSummary struct {
	ShopID          uuid.UUID       `json:"shop_id"`
	TotalOrders     int64           `json:"total_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalRefunds    decimal.Decimal `json:"total_refunds"`
	TotalEarnings   decimal.Decimal `json:"total_earnings"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	WithdrawnAmount decimal.Decimal `json:"withdrawn_amount"`
}

type service struct {
	repo     Repository
	balances balance.Repository
}

// NewService builds an analytics service with the required dependencies.
func NewService(repo Repository, balances balance.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	if balances == nil {
		return nil, fmt.Errorf("balance repository required")
	}
	return &service{repo: repo, balances: balances}, nil
}

func (s *service) PlatformSummary(ctx context.Context) (*PlatformSummary, error) {
	orderTotals, err := s.repo.PlatformOrderTotals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate platform orders")
	}
	refunds, err := s.repo.PlatformRefundTotal(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate platform refunds")
	}
	ledger, err := s.repo.PlatformLedgerTotals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate shop ledgers")
	}
	activeShops, err := s.repo.ActiveShopCount(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active shops")
	}

	return &PlatformSummary{
		TotalOrders:     orderTotals.OrderCount,
		TotalRevenue:    orderTotals.Revenue,
		TotalRefunds:    refunds,
		TotalEarnings:   ledger.TotalEarnings,
		TotalRefunded:   ledger.TotalRefunded,
		WithdrawnAmount: ledger.WithdrawnAmount,
		ShopBalances:    ledger.CurrentBalance,
		ActiveShops:     activeShops,
	}, nil
}

func (s *service) ShopSummary(ctx context.Context, shopID uuid.UUID) (*ShopSummary, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}

	orderTotals, err := s.repo.ShopOrderTotals(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate shop orders")
	}
	refunds, err := s.repo.ShopRefundTotal(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate shop refunds")
	}

	ledger, err := s.balances.GetByShopID(ctx, shopID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop balance")
	}
	if ledger == nil {
		ledger = &models.Balance{
			TotalEarnings:   decimal.Zero,
			CurrentBalance:  decimal.Zero,
			WithdrawnAmount: decimal.Zero,
		}
	}

	return &ShopSummary{
		ShopID:          shopID,
		TotalOrders:     orderTotals.OrderCount,
		TotalRevenue:    orderTotals.Revenue,
		TotalRefunds:    refunds,
		TotalEarnings:   ledger.TotalEarnings,
		CurrentBalance:  ledger.CurrentBalance,
		WithdrawnAmount: ledger.WithdrawnAmount,
	}, nil
}
