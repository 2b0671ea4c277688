package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradeyard/tradeyard-backend/pkg/db/models"
	pkgerrors "github.com/tradeyard/tradeyard-backend/pkg/errors"
)

type fakeRepo struct {
	Repository
	byCustomer map[uuid.UUID]*models.Wallet
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byCustomer: map[uuid.UUID]*models.Wallet{}}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) GetByCustomerID(ctx context.Context, customerID uuid.UUID) (*models.Wallet, error) {
	record, ok := f.byCustomer[customerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (f *fakeRepo) Create(ctx context.Context, wallet *models.Wallet) error {
	wallet.ID = uuid.New()
	f.byCustomer[wallet.CustomerID] = wallet
	return nil
}

func (f *fakeRepo) CreditPoints(ctx context.Context, customerID uuid.UUID, points decimal.Decimal) error {
	record := f.byCustomer[customerID]
	record.TotalPoints = record.TotalPoints.Add(points)
	record.AvailablePoints = record.AvailablePoints.Add(points)
	return nil
}

func TestCreditCreatesWalletOnFirstUse(t *testing.T) {
	svc, err := NewService(newFakeRepo())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	customerID := uuid.New()
	record, err := svc.Credit(context.Background(), customerID, decimal.RequireFromString("50.00"))
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if !record.AvailablePoints.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("available = %s, want 50.00", record.AvailablePoints)
	}
	if !record.TotalPoints.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("total = %s, want 50.00", record.TotalPoints)
	}
}

func TestCreditRejectsNonPositivePoints(t *testing.T) {
	svc, err := NewService(newFakeRepo())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	for _, points := range []string{"0", "-1"} {
		_, err := svc.Credit(context.Background(), uuid.New(), decimal.RequireFromString(points))
		appErr := pkgerrors.As(err)
		if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
			t.Fatalf("Credit(%s): expected VALIDATION_ERROR, got %v", points, err)
		}
	}
}

func TestGetByCustomerIDNotFound(t *testing.T) {
	svc, err := NewService(newFakeRepo())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.GetByCustomerID(context.Background(), uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
