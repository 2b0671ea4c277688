package shops

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradeyard/tradeyard-backend/internal/balance"
	"github.com/tradeyard/tradeyard-backend/internal/commission"
	"github.com/tradeyard/tradeyard-backend/pkg/db/models"
	"github.com/tradeyard/tradeyard-backend/pkg/enums"
	pkgerrors "github.com/tradeyard/tradeyard-backend/pkg/errors"
	"github.com/tradeyard/tradeyard-backend/pkg/outbox"
	"github.com/tradeyard/tradeyard-backend/pkg/outbox/payloads"
)

type stubShopsRepo struct {
	shop      *models.Shop
	active    *bool
	flipFrom  enums.ProductStatus
	flipTo    enums.ProductStatus
	flipCount int64
	getErr    error
}

func (s *stubShopsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubShopsRepo) Create(ctx context.Context, shop *models.Shop) error { return nil }

func (s *stubShopsRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.shop == nil || s.shop.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.shop, nil
}

func (s *stubShopsRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	s.active = &active
	return nil
}

func (s *stubShopsRepo) FlipProductStatus(ctx context.Context, shopID uuid.UUID, from, to enums.ProductStatus) (int64, error) {
	s.flipFrom = from
	s.flipTo = to
	return s.flipCount, nil
}

type stubBalanceRepo struct {
	balance.Repository
	record    *models.Balance
	created   *models.Balance
	setRate   *decimal.Decimal
	setCustom bool
}

func (s *stubBalanceRepo) WithTx(tx *gorm.DB) balance.Repository { return s }

func (s *stubBalanceRepo) GetByShopID(ctx context.Context, shopID uuid.UUID) (*models.Balance, error) {
	if s.record == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.record, nil
}

func (s *stubBalanceRepo) Create(ctx context.Context, record *models.Balance) error {
	s.created = record
	s.record = record
	return nil
}

func (s *stubBalanceRepo) UpdateCommission(ctx context.Context, shopID uuid.UUID, rate decimal.Decimal, isCustom bool) error {
	s.setRate = &rate
	s.setCustom = isCustom
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOutboxPublisher struct {
	called bool
	event  outbox.DomainEvent
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.called = true
	s.event = event
	return nil
}

func newTestService(t *testing.T, repo Repository, balances balance.Repository, publisher outboxPublisher) Service {
	t.Helper()
	engine := commission.NewEngine(decimal.NewFromInt(10))
	svc, err := NewService(repo, balances, engine, decimal.NewFromInt(10), stubTxRunner{}, publisher)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func TestApproveComputesTieredRate(t *testing.T) {
	shopID := uuid.New()
	repo := &stubShopsRepo{shop: &models.Shop{ID: shopID}, flipCount: 3}
	balances := &stubBalanceRepo{record: &models.Balance{
		ShopID:        shopID,
		TotalEarnings: decimal.NewFromInt(12000),
	}}
	publisher := &stubOutboxPublisher{}
	svc := newTestService(t, repo, balances, publisher)

	err := svc.Approve(context.Background(), ApproveInput{
		ShopID:      shopID,
		ActorUserID: uuid.New(),
		ActorRole:   "super_admin",
	})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if repo.active == nil || !*repo.active {
		t.Fatal("expected shop activated")
	}
	if repo.flipFrom != enums.ProductStatusDraft || repo.flipTo != enums.ProductStatusPublish {
		t.Fatalf("expected draft -> publish flip, got %s -> %s", repo.flipFrom, repo.flipTo)
	}
	if balances.setRate == nil || !balances.setRate.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected tiered rate 5 for 12000 earnings, got %v", balances.setRate)
	}
	if balances.setCustom {
		t.Fatal("tiered approval must not set the custom flag")
	}
	if !publisher.called || publisher.event.EventType != enums.EventShopApproved {
		t.Fatalf("expected shop_approved event, got %+v", publisher.event)
	}
	payload, ok := publisher.event.Data.(payloads.ShopModerationEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", publisher.event.Data)
	}
	if payload.ProductsFlipped != 3 {
		t.Fatalf("expected 3 flipped products in payload, got %d", payload.ProductsFlipped)
	}
}

func TestApproveCustomRateOverridesSchedule(t *testing.T) {
	shopID := uuid.New()
	repo := &stubShopsRepo{shop: &models.Shop{ID: shopID}}
	balances := &stubBalanceRepo{record: &models.Balance{
		ShopID:        shopID,
		TotalEarnings: decimal.NewFromInt(100000),
	}}
	svc := newTestService(t, repo, balances, &stubOutboxPublisher{})

	custom := decimal.RequireFromString("3.25")
	err := svc.Approve(context.Background(), ApproveInput{
		ShopID:     shopID,
		UseCustom:  true,
		CustomRate: &custom,
	})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if balances.setRate == nil || !balances.setRate.Equal(custom) {
		t.Fatalf("expected custom rate %s, got %v", custom, balances.setRate)
	}
	if !balances.setCustom {
		t.Fatal("expected custom commission flag set")
	}
}

func TestApproveCreatesMissingBalance(t *testing.T) {
	shopID := uuid.New()
	repo := &stubShopsRepo{shop: &models.Shop{ID: shopID}}
	balances := &stubBalanceRepo{}
	svc := newTestService(t, repo, balances, &stubOutboxPublisher{})

	if err := svc.Approve(context.Background(), ApproveInput{ShopID: shopID}); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if balances.created == nil {
		t.Fatal("expected balance row created on first approval")
	}
	if !balances.created.CurrentBalance.IsZero() {
		t.Fatalf("fresh balance should start at zero, got %s", balances.created.CurrentBalance)
	}
	if balances.setRate == nil || !balances.setRate.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected default rate 10 for zero earnings, got %v", balances.setRate)
	}
}

func TestApproveValidation(t *testing.T) {
	repo := &stubShopsRepo{}
	svc := newTestService(t, repo, &stubBalanceRepo{}, &stubOutboxPublisher{})

	err := svc.Approve(context.Background(), ApproveInput{ShopID: uuid.Nil})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for nil shop id, got %v", err)
	}

	err = svc.Approve(context.Background(), ApproveInput{ShopID: uuid.New(), UseCustom: true})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing custom rate, got %v", err)
	}

	bad := decimal.NewFromInt(101)
	err = svc.Approve(context.Background(), ApproveInput{ShopID: uuid.New(), UseCustom: true, CustomRate: &bad})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for out-of-range rate, got %v", err)
	}
}

func TestDisapproveLeavesCommissionUntouched(t *testing.T) {
	shopID := uuid.New()
	repo := &stubShopsRepo{shop: &models.Shop{ID: shopID, IsActive: true}}
	balances := &stubBalanceRepo{record: &models.Balance{ShopID: shopID}}
	publisher := &stubOutboxPublisher{}
	svc := newTestService(t, repo, balances, publisher)

	if err := svc.Disapprove(context.Background(), DisapproveInput{ShopID: shopID}); err != nil {
		t.Fatalf("disapprove failed: %v", err)
	}
	if repo.active == nil || *repo.active {
		t.Fatal("expected shop deactivated")
	}
	if repo.flipFrom != enums.ProductStatusPublish || repo.flipTo != enums.ProductStatusDraft {
		t.Fatalf("expected publish -> draft flip, got %s -> %s", repo.flipFrom, repo.flipTo)
	}
	if balances.setRate != nil {
		t.Fatalf("disapproval must not touch the commission rate, got %v", balances.setRate)
	}
	if !publisher.called || publisher.event.EventType != enums.EventShopDisapproved {
		t.Fatalf("expected shop_disapproved event, got %+v", publisher.event)
	}
}

func TestApproveShopNotFound(t *testing.T) {
	svc := newTestService(t, &stubShopsRepo{}, &stubBalanceRepo{}, &stubOutboxPublisher{})

	err := svc.Approve(context.Background(), ApproveInput{ShopID: uuid.New()})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
