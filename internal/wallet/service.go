package wallet

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

// Service manages customer loyalty points. Refund approvals credit wallets
// through the repository inside the refund transaction; this service covers
// the standalone operations: reads, signup grants and manual admin credits.
type Service interface {
	GetByCustomerID(ctx context.Context, customerID uuid.UUID) (*models.Wallet, error)
	GetOrCreate(ctx context.Context, customerID uuid.UUID) (*models.Wallet, error)
	Credit(ctx context.Context, customerID uuid.UUID, points decimal.Decimal) (*models.Wallet, error)
}

type service struct {
	repo Repository
}

// NewService wires a wallet service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetByCustomerID(ctx context.Context, customerID uuid.UUID) (*models.Wallet, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	record, err := s.repo.GetByCustomerID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wallet not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetch wallet")
	}
	return record, nil
}

func (s *service) GetOrCreate(ctx context.Context, customerID uuid.UUID) (*models.Wallet, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	record, err := s.repo.GetByCustomerID(ctx, customerID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetch wallet")
	}

	fresh := &models.Wallet{
		CustomerID:      customerID,
		TotalPoints:     decimal.Zero,
		AvailablePoints: decimal.Zero,
		PointsUsed:      decimal.Zero,
	}
	if err := s.repo.Create(ctx, fresh); err != nil {
		if pkgdb.IsUniqueViolation(err, "idx_wallets_customer_id") {
			return s.GetByCustomerID(ctx, customerID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create wallet")
	}
	return fresh, nil
}

// Credit grants points to a customer, creating the wallet on first use.
func (s *service) Credit(ctx context.Context, customerID uuid.UUID, points decimal.Decimal) (*models.Wallet, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if !points.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "points must be positive")
	}

	if _, err := s.GetOrCreate(ctx, customerID); err != nil {
		return nil, err
	}
	if err := s.repo.CreditPoints(ctx, customerID, points); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "credit wallet")
	}
	return s.GetByCustomerID(ctx, customerID)
}
