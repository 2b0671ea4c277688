package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradeyard/tradeyard-backend/internal/balance"
	"github.com/tradeyard/tradeyard-backend/internal/commission"
	"github.com/tradeyard/tradeyard-backend/pkg/db/models"
	"github.com/tradeyard/tradeyard-backend/pkg/enums"
	pkgerrors "github.com/tradeyard/tradeyard-backend/pkg/errors"
	"github.com/tradeyard/tradeyard-backend/pkg/logger"
	"github.com/tradeyard/tradeyard-backend/pkg/outbox"
	"github.com/tradeyard/tradeyard-backend/pkg/outbox/payloads"
	"github.com/tradeyard/tradeyard-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service settles paid parent orders into per-shop balance credits.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListByShop(ctx context.Context, shopID uuid.UUID, params pagination.Params) (*OrderList, error)
	Settle(ctx context.Context, input SettleInput) (*SettleResult, error)
}

// OrderList is one page of orders plus the cursor for the next page.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// SettleInput identifies the paid parent order to settle.
type SettleInput struct {
	ParentOrderID uuid.UUID
	ActorUserID   uuid.UUID
	ActorRole     string
}

// SettleResult reports what the settlement pass did.
type SettleResult struct {
	SettledCount int
	SkippedCount int
	TotalNet     decimal.Decimal
}

type service struct {
	repo        Repository
	balances    balance.Repository
	engine      *commission.Engine
	defaultRate decimal.Decimal
	tx          txRunner
	outbox      outboxPublisher
	logg        *logger.Logger
}

// NewService builds a settlement service with the required dependencies.
func NewService(repo Repository, balances balance.Repository, engine *commission.Engine, defaultRate decimal.Decimal, tx txRunner, publisher outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if balances == nil {
		return nil, fmt.Errorf("balance repository required")
	}
	if engine == nil {
		return nil, fmt.Errorf("commission engine required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:        repo,
		balances:    balances,
		engine:      engine,
		defaultRate: defaultRate,
		tx:          tx,
		outbox:      publisher,
		logg:        logg,
	}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	rows, next, err := s.repo.ListByCustomer(ctx, customerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer orders")
	}
	return buildOrderList(rows, next), nil
}

func (s *service) ListByShop(ctx context.Context, shopID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}
	rows, next, err := s.repo.ListByShop(ctx, shopID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shop orders")
	}
	return buildOrderList(rows, next), nil
}

func buildOrderList(rows []models.Order, next *pagination.Cursor) *OrderList {
	list := &OrderList{Orders: rows}
	if next != nil {
		list.NextCursor = pagination.EncodeCursor(*next)
	}
	return list
}

// Settle walks every unsettled child of a paid parent order and credits each
// shop with its net share. A child settles at most once: the settled_at
// check-and-set decides the winner and every other caller skips it.
func (s *service) Settle(ctx context.Context, input SettleInput) (*SettleResult, error) {
	if input.ParentOrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "parent order id is required")
	}

	result := &SettleResult{TotalNet: decimal.Zero}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		balances := s.balances.WithTx(tx)

		parent, err := repo.GetByID(ctx, input.ParentOrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parent order")
		}
		if !parent.IsParent() {
			return pkgerrors.New(pkgerrors.CodeValidation, "settlement targets a parent order")
		}
		switch parent.OrderStatus {
		case enums.OrderStatusCancelled, enums.OrderStatusFailed, enums.OrderStatusRefunded:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot settle in current state")
		}

		children, err := repo.ListChildren(ctx, parent.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list child orders")
		}

		now := time.Now().UTC()
		for _, child := range children {
			if child.ShopID == nil {
				result.SkippedCount++
				continue
			}
			won, err := repo.MarkSettled(ctx, child.ID, now)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark child settled")
			}
			if !won {
				result.SkippedCount++
				continue
			}

			ledger, err := s.lockOrCreateBalance(ctx, balances, *child.ShopID)
			if err != nil {
				return err
			}
			rate := ledger.AdminCommissionRate
			if !ledger.IsCustomCommission {
				rate = s.engine.RateFor(ledger.TotalEarnings)
			}
			commissionAmount, net := s.engine.Split(child.Amount, rate)

			if err := balances.CreditEarnings(ctx, *child.ShopID, net); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit shop balance")
			}
			if err := repo.UpdateStatus(ctx, child.ID, enums.OrderStatusProcessing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance child status")
			}

			event := outbox.DomainEvent{
				EventType:     enums.EventOrderSettled,
				AggregateType: enums.AggregateOrder,
				AggregateID:   child.ID,
				Version:       1,
				Actor:         buildActor(input.ActorUserID, input.ActorRole),
				Data: payloads.OrderSettledEvent{
					OrderID:        child.ID,
					ParentOrderID:  parent.ID,
					ShopID:         *child.ShopID,
					CustomerID:     child.CustomerID,
					GrossAmount:    child.Amount,
					CommissionRate: rate,
					Commission:     commissionAmount,
					NetAmount:      net,
					SettledAt:      now,
				},
			}
			if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
				return err
			}

			result.SettledCount++
			result.TotalNet = result.TotalNet.Add(net)
		}

		if result.SettledCount > 0 && parent.OrderStatus == enums.OrderStatusPending {
			if err := repo.UpdateStatus(ctx, parent.ID, enums.OrderStatusProcessing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance parent status")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// lockOrCreateBalance locks the shop ledger row for the settlement credit,
// seeding it at the default rate when the shop was never moderated.
func (s *service) lockOrCreateBalance(ctx context.Context, balances balance.Repository, shopID uuid.UUID) (*models.Balance, error) {
	ledger, err := balances.LockByShopID(ctx, shopID)
	if err == nil {
		return ledger, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock balance")
	}
	if s.logg != nil {
		s.logg.Warn(s.logg.WithShopID(ctx, shopID.String()), "settling into a shop without a balance row")
	}
	fresh := &models.Balance{
		ShopID:              shopID,
		AdminCommissionRate: s.defaultRate,
		TotalEarnings:       decimal.Zero,
		TotalRefunded:       decimal.Zero,
		WithdrawnAmount:     decimal.Zero,
		CurrentBalance:      decimal.Zero,
	}
	if err := balances.Create(ctx, fresh); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create balance")
	}
	return fresh, nil
}

func buildActor(userID uuid.UUID, role string) *outbox.ActorRef {
	if userID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: userID, Role: role}
}
