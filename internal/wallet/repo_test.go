package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tradeyard/tradeyard-backend/pkg/db/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:wallet_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Wallet{}); err != nil {
		t.Fatalf("migrate wallets: %v", err)
	}
	return db
}

func seedWallet(t *testing.T, db *gorm.DB, customerID uuid.UUID, available string) {
	t.Helper()
	record := &models.Wallet{
		CustomerID:      customerID,
		TotalPoints:     decimal.RequireFromString(available),
		AvailablePoints: decimal.RequireFromString(available),
		PointsUsed:      decimal.Zero,
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("seed wallet: %v", err)
	}
}

func reloadWallet(t *testing.T, db *gorm.DB, customerID uuid.UUID) *models.Wallet {
	t.Helper()
	var record models.Wallet
	if err := db.Where("customer_id = ?", customerID).First(&record).Error; err != nil {
		t.Fatalf("reload wallet: %v", err)
	}
	return &record
}

func TestCreditPoints(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	customerID := uuid.New()
	seedWallet(t, db, customerID, "10.00")

	if err := repo.CreditPoints(ctx, customerID, decimal.RequireFromString("25.50")); err != nil {
		t.Fatalf("credit points: %v", err)
	}

	got := reloadWallet(t, db, customerID)
	if !got.AvailablePoints.Equal(decimal.RequireFromString("35.50")) {
		t.Fatalf("available = %s, want 35.50", got.AvailablePoints)
	}
	if !got.TotalPoints.Equal(decimal.RequireFromString("35.50")) {
		t.Fatalf("total = %s, want 35.50", got.TotalPoints)
	}
}

func TestDebitPoints(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	customerID := uuid.New()
	seedWallet(t, db, customerID, "30.00")

	ok, err := repo.DebitPoints(ctx, customerID, decimal.RequireFromString("12.00"))
	if err != nil {
		t.Fatalf("debit points: %v", err)
	}
	if !ok {
		t.Fatalf("expected debit to apply")
	}

	got := reloadWallet(t, db, customerID)
	if !got.AvailablePoints.Equal(decimal.RequireFromString("18.00")) {
		t.Fatalf("available = %s, want 18.00", got.AvailablePoints)
	}
	if !got.PointsUsed.Equal(decimal.RequireFromString("12.00")) {
		t.Fatalf("used = %s, want 12.00", got.PointsUsed)
	}
}

func TestDebitPointsOverdraftRefused(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	customerID := uuid.New()
	seedWallet(t, db, customerID, "5.00")

	ok, err := repo.DebitPoints(ctx, customerID, decimal.RequireFromString("5.01"))
	if err != nil {
		t.Fatalf("debit points: %v", err)
	}
	if ok {
		t.Fatalf("expected overdraft to be refused")
	}
	if got := reloadWallet(t, db, customerID); !got.AvailablePoints.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("available mutated to %s on refused debit", got.AvailablePoints)
	}
}
