package orders

import (
	"context"
	"testing"
	"time"

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
	"github.com/tradeyard/tradeyard-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	parent   *models.Order
	children []*models.Order
	statuses map[uuid.UUID]enums.OrderStatus
}

func newStubOrdersRepo(parent *models.Order, children ...*models.Order) *stubOrdersRepo {
	return &stubOrdersRepo{
		parent:   parent,
		children: children,
		statuses: map[uuid.UUID]enums.OrderStatus{},
	}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) error { return nil }

func (s *stubOrdersRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.parent != nil && s.parent.ID == id {
		return s.parent, nil
	}
	for _, child := range s.children {
		if child.ID == id {
			return child, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) ListChildren(ctx context.Context, parentID uuid.UUID) ([]models.Order, error) {
	var out []models.Order
	for _, child := range s.children {
		if child.ParentID != nil && *child.ParentID == parentID {
			out = append(out, *child)
		}
	}
	return out, nil
}

func (s *stubOrdersRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Order, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (s *stubOrdersRepo) ListByShop(ctx context.Context, shopID uuid.UUID, params pagination.Params) ([]models.Order, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (s *stubOrdersRepo) MarkSettled(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	for _, child := range s.children {
		if child.ID == id {
			if child.SettledAt != nil {
				return false, nil
			}
			stamped := at
			child.SettledAt = &stamped
			return true, nil
		}
	}
	return false, nil
}

func (s *stubOrdersRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	s.statuses[id] = status
	return nil
}

type stubBalances struct {
	balance.Repository
	byShop  map[uuid.UUID]*models.Balance
	credits map[uuid.UUID]decimal.Decimal
}

func newStubBalances(records ...*models.Balance) *stubBalances {
	s := &stubBalances{
		byShop:  map[uuid.UUID]*models.Balance{},
		credits: map[uuid.UUID]decimal.Decimal{},
	}
	for _, record := range records {
		s.byShop[record.ShopID] = record
	}
	return s
}

func (s *stubBalances) WithTx(tx *gorm.DB) balance.Repository { return s }

func (s *stubBalances) LockByShopID(ctx context.Context, shopID uuid.UUID) (*models.Balance, error) {
	record, ok := s.byShop[shopID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (s *stubBalances) Create(ctx context.Context, record *models.Balance) error {
	record.ID = uuid.New()
	s.byShop[record.ShopID] = record
	return nil
}

func (s *stubBalances) CreditEarnings(ctx context.Context, shopID uuid.UUID, amount decimal.Decimal) error {
	record := s.byShop[shopID]
	record.TotalEarnings = record.TotalEarnings.Add(amount)
	record.CurrentBalance = record.CurrentBalance.Add(amount)
	prev, ok := s.credits[shopID]
	if !ok {
		prev = decimal.Zero
	}
	s.credits[shopID] = prev.Add(amount)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOutboxPublisher struct {
	events []outbox.DomainEvent
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *stubOutboxPublisher) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	for _, queued := range s.events {
		if queued.EventType == event.EventType && queued.AggregateID == event.AggregateID {
			return nil
		}
	}
	s.events = append(s.events, event)
	return nil
}

func newSettleFixture(t *testing.T) (*stubOrdersRepo, *stubBalances, *stubOutboxPublisher, Service, *models.Order) {
	t.Helper()

	parent := &models.Order{
		ID:          uuid.New(),
		CustomerID:  uuid.New(),
		Amount:      decimal.RequireFromString("300.00"),
		OrderStatus: enums.OrderStatusPending,
	}
	shopA, shopB := uuid.New(), uuid.New()
	childA := &models.Order{
		ID:         uuid.New(),
		ParentID:   &parent.ID,
		ShopID:     &shopA,
		CustomerID: parent.CustomerID,
		Amount:     decimal.RequireFromString("100.00"),
	}
	childB := &models.Order{
		ID:         uuid.New(),
		ParentID:   &parent.ID,
		ShopID:     &shopB,
		CustomerID: parent.CustomerID,
		Amount:     decimal.RequireFromString("200.00"),
	}
	repo := newStubOrdersRepo(parent, childA, childB)
	balances := newStubBalances(
		&models.Balance{ShopID: shopA, AdminCommissionRate: decimal.NewFromInt(10)},
		&models.Balance{ShopID: shopB, AdminCommissionRate: decimal.NewFromInt(20), IsCustomCommission: true},
	)
	publisher := &stubOutboxPublisher{}
	engine := commission.NewEngine(decimal.NewFromInt(10))
	svc, err := NewService(repo, balances, engine, decimal.NewFromInt(10), stubTxRunner{}, publisher, nil)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return repo, balances, publisher, svc, parent
}

func TestSettleCreditsEachShopNet(t *testing.T) {
	repo, balances, publisher, svc, parent := newSettleFixture(t)

	result, err := svc.Settle(context.Background(), SettleInput{ParentOrderID: parent.ID})
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if result.SettledCount != 2 || result.SkippedCount != 0 {
		t.Fatalf("unexpected result %+v", result)
	}

	// Shop A: zero earnings puts it on the default 10% tier, net 90.00.
	// Shop B: custom 20% rate, net 160.00.
	var shopA, shopB uuid.UUID
	for shopID, record := range balances.byShop {
		if record.IsCustomCommission {
			shopB = shopID
		} else {
			shopA = shopID
		}
	}
	if got := balances.credits[shopA]; !got.Equal(decimal.RequireFromString("90.00")) {
		t.Fatalf("shop A credit = %s, want 90.00", got)
	}
	if got := balances.credits[shopB]; !got.Equal(decimal.RequireFromString("160.00")) {
		t.Fatalf("shop B credit = %s, want 160.00", got)
	}
	if !result.TotalNet.Equal(decimal.RequireFromString("250.00")) {
		t.Fatalf("total net = %s, want 250.00", result.TotalNet)
	}

	if len(publisher.events) != 2 {
		t.Fatalf("expected 2 settlement events, got %d", len(publisher.events))
	}
	for _, event := range publisher.events {
		if event.EventType != enums.EventOrderSettled {
			t.Fatalf("unexpected event type %s", event.EventType)
		}
		payload, ok := event.Data.(payloads.OrderSettledEvent)
		if !ok {
			t.Fatalf("unexpected payload type %T", event.Data)
		}
		if !payload.Commission.Add(payload.NetAmount).Equal(payload.GrossAmount) {
			t.Fatalf("event violates conservation: %+v", payload)
		}
	}
	if repo.statuses[parent.ID] != enums.OrderStatusProcessing {
		t.Fatalf("parent status = %s, want processing", repo.statuses[parent.ID])
	}
}

func TestSettleIsIdempotentPerChild(t *testing.T) {
	_, balances, publisher, svc, parent := newSettleFixture(t)

	if _, err := svc.Settle(context.Background(), SettleInput{ParentOrderID: parent.ID}); err != nil {
		t.Fatalf("first settle failed: %v", err)
	}
	result, err := svc.Settle(context.Background(), SettleInput{ParentOrderID: parent.ID})
	if err != nil {
		t.Fatalf("second settle failed: %v", err)
	}
	if result.SettledCount != 0 || result.SkippedCount != 2 {
		t.Fatalf("second pass should skip both children, got %+v", result)
	}
	if len(publisher.events) != 2 {
		t.Fatalf("second pass must not emit more events, got %d", len(publisher.events))
	}
	for shopID, credit := range balances.credits {
		record := balances.byShop[shopID]
		if !record.CurrentBalance.Equal(credit) {
			t.Fatalf("double credit detected for shop %s: balance %s vs single credit %s", shopID, record.CurrentBalance, credit)
		}
	}
}

func TestSettleCreatesMissingBalance(t *testing.T) {
	parent := &models.Order{ID: uuid.New(), CustomerID: uuid.New(), OrderStatus: enums.OrderStatusPending}
	shopID := uuid.New()
	child := &models.Order{
		ID:         uuid.New(),
		ParentID:   &parent.ID,
		ShopID:     &shopID,
		CustomerID: parent.CustomerID,
		Amount:     decimal.RequireFromString("50.00"),
	}
	repo := newStubOrdersRepo(parent, child)
	balances := newStubBalances()
	engine := commission.NewEngine(decimal.NewFromInt(10))
	svc, err := NewService(repo, balances, engine, decimal.NewFromInt(10), stubTxRunner{}, &stubOutboxPublisher{}, nil)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	result, err := svc.Settle(context.Background(), SettleInput{ParentOrderID: parent.ID})
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if result.SettledCount != 1 {
		t.Fatalf("expected one settled child, got %+v", result)
	}
	record, ok := balances.byShop[shopID]
	if !ok {
		t.Fatal("expected balance row created during settlement")
	}
	if !record.CurrentBalance.Equal(decimal.RequireFromString("45.00")) {
		t.Fatalf("balance = %s, want 45.00 net of default 10%% commission", record.CurrentBalance)
	}
}

func TestSettleRejectsChildTarget(t *testing.T) {
	repo, _, _, svc, parent := newSettleFixture(t)

	children, _ := repo.ListChildren(context.Background(), parent.ID)
	_, err := svc.Settle(context.Background(), SettleInput{ParentOrderID: children[0].ID})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for child target, got %v", err)
	}
}

func TestSettleRefusesTerminalParent(t *testing.T) {
	_, _, _, svc, parent := newSettleFixture(t)
	parent.OrderStatus = enums.OrderStatusCancelled

	_, err := svc.Settle(context.Background(), SettleInput{ParentOrderID: parent.ID})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestSettleParentNotFound(t *testing.T) {
	_, _, _, svc, _ := newSettleFixture(t)

	_, err := svc.Settle(context.Background(), SettleInput{ParentOrderID: uuid.New()})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
