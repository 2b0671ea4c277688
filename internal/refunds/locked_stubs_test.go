package refunds

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradeyard/tradeyard-backend/internal/balance"
	"github.com/tradeyard/tradeyard-backend/internal/wallet"
	"github.com/tradeyard/tradeyard-backend/pkg/db/models"
	"github.com/tradeyard/tradeyard-backend/pkg/enums"
	"github.com/tradeyard/tradeyard-backend/pkg/pagination"
)

// Mutex-guarded stub variants for tests that approve from multiple
// goroutines. The plain stubs stay lock-free to keep failures obvious.

type lockedRefundsRepo struct {
	mu    sync.Mutex
	inner *stubRefundsRepo
}

func newLockedRefundsRepo(rows ...*models.Refund) *lockedRefundsRepo {
	return &lockedRefundsRepo{inner: newStubRefundsRepo(rows...)}
}

func (s *lockedRefundsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *lockedRefundsRepo) Create(ctx context.Context, refund *models.Refund) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Create(ctx, refund)
}

func (s *lockedRefundsRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Refund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.GetByID(ctx, id)
}

func (s *lockedRefundsRepo) LockByID(ctx context.Context, id uuid.UUID) (*models.Refund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.LockByID(ctx, id)
}

func (s *lockedRefundsRepo) HasOpenByOrderID(ctx context.Context, orderID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.HasOpenByOrderID(ctx, orderID)
}

func (s *lockedRefundsRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.RefundStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.UpdateStatus(ctx, id, status)
}

func (s *lockedRefundsRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Refund, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (s *lockedRefundsRepo) ListByShop(ctx context.Context, shopID uuid.UUID, params pagination.Params) ([]models.Refund, *pagination.Cursor, error) {
	return nil, nil, nil
}

type lockedBalances struct {
	balance.Repository
	mu    sync.Mutex
	inner *stubBalances
}

func newLockedBalances(records ...*models.Balance) *lockedBalances {
	return &lockedBalances{inner: newStubBalances(records...)}
}

func (s *lockedBalances) WithTx(tx *gorm.DB) balance.Repository { return s }

func (s *lockedBalances) LockByShopID(ctx context.Context, shopID uuid.UUID) (*models.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.inner.LockByShopID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	copied := *record
	return &copied, nil
}

func (s *lockedBalances) ReverseEarnings(ctx context.Context, shopID uuid.UUID, amount decimal.Decimal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.ReverseEarnings(ctx, shopID, amount)
}

func (s *lockedBalances) get(shopID uuid.UUID) *models.Balance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.byShop[shopID]
}

type lockedWallets struct {
	wallet.Repository
	mu    sync.Mutex
	inner *stubWallets
}

func newLockedWallets(records ...*models.Wallet) *lockedWallets {
	return &lockedWallets{inner: newStubWallets(records...)}
}

func (s *lockedWallets) WithTx(tx *gorm.DB) wallet.Repository { return s }

func (s *lockedWallets) LockByCustomerID(ctx context.Context, customerID uuid.UUID) (*models.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.inner.LockByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	copied := *record
	return &copied, nil
}

func (s *lockedWallets) Create(ctx context.Context, record *models.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Create(ctx, record)
}

func (s *lockedWallets) CreditPoints(ctx context.Context, customerID uuid.UUID, points decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.CreditPoints(ctx, customerID, points)
}

func (s *lockedWallets) get(customerID uuid.UUID) *models.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.byCustomer[customerID]
}
