package balance

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	pkgdb "github.com/tradeyard/tradeyard-backend/pkg/db"
	"github.com/tradeyard/tradeyard-backend/pkg/db/models"
	pkgerrors "github.com/tradeyard/tradeyard-backend/pkg/errors"
)

// Service exposes the read side of the shop ledger. Money movements go
// through the settlement, refund and withdrawal services, which compose the
// repository inside their own transactions.
type Service interface {
	GetByShopID(ctx context.Context, shopID uuid.UUID) (*models.Balance, error)
	GetOrCreate(ctx context.Context, shopID uuid.UUID, defaultRate decimal.Decimal) (*models.Balance, error)
}

type service struct {
	repo Repository
}

// NewService wires a balance service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("balance repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetByShopID(ctx context.Context, shopID uuid.UUID) (*models.Balance, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}
	record, err := s.repo.GetByShopID(ctx, shopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "balance not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetch balance")
	}
	return record, nil
}

// GetOrCreate fetches the shop's ledger row, creating it with the default
// commission rate when the shop has never been settled before. Lost races on
// creation fall back to the winner's row.
func (s *service) GetOrCreate(ctx context.Context, shopID uuid.UUID, defaultRate decimal.Decimal) (*models.Balance, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}

	record, err := s.repo.GetByShopID(ctx, shopID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetch balance")
	}

	fresh := &models.Balance{
		ShopID:              shopID,
		AdminCommissionRate: defaultRate,
		TotalEarnings:       decimal.Zero,
		TotalRefunded:       decimal.Zero,
		WithdrawnAmount:     decimal.Zero,
		CurrentBalance:      decimal.Zero,
	}
	if err := s.repo.Create(ctx, fresh); err != nil {
		if pkgdb.IsUniqueViolation(err, "idx_balances_shop_id") {
			return s.GetByShopID(ctx, shopID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create balance")
	}
	return fresh, nil
}
