package shops

import (
	"context"
	"errors"
	"fmt"

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

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service moderates shops. Approval activates the shop, publishes its draft
// products and pins its commission rate; disapproval is the inverse except
// the commission rate is left untouched.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	Approve(ctx context.Context, input ApproveInput) error
	Disapprove(ctx context.Context, input DisapproveInput) error
}

// ApproveInput carries the moderation decision for activating a shop.
type ApproveInput struct {
	ShopID      uuid.UUID
	UseCustom   bool
	CustomRate  *decimal.Decimal
	ActorUserID uuid.UUID
	ActorRole   string
}

// DisapproveInput deactivates a shop.
type DisapproveInput struct {
	ShopID      uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   string
}

type service struct {
	repo        Repository
	balances    balance.Repository
	engine      *commission.Engine
	defaultRate decimal.Decimal
	tx          txRunner
	outbox      outboxPublisher
}

// NewService builds a shop moderation service with the required dependencies.
func NewService(repo Repository, balances balance.Repository, engine *commission.Engine, defaultRate decimal.Decimal, tx txRunner, publisher outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shops repository required")
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
	}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}
	shop, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	return shop, nil
}

func (s *service) Approve(ctx context.Context, input ApproveInput) error {
	if input.ShopID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}
	if input.UseCustom {
		if input.CustomRate == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "custom commission rate is required")
		}
		if input.CustomRate.IsNegative() || input.CustomRate.GreaterThan(decimal.NewFromInt(100)) {
			return pkgerrors.New(pkgerrors.CodeValidation, "commission rate must be between 0 and 100")
		}
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		balances := s.balances.WithTx(tx)

		shop, err := repo.GetByID(ctx, input.ShopID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
		}

		if err := repo.SetActive(ctx, shop.ID, true); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate shop")
		}
		flipped, err := repo.FlipProductStatus(ctx, shop.ID, enums.ProductStatusDraft, enums.ProductStatusPublish)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish shop products")
		}

		ledger, err := s.getOrCreateBalance(ctx, balances, shop.ID)
		if err != nil {
			return err
		}

		rate := s.engine.RateFor(ledger.TotalEarnings)
		if input.UseCustom {
			rate = *input.CustomRate
		}
		if err := balances.UpdateCommission(ctx, shop.ID, rate, input.UseCustom); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set commission rate")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventShopApproved,
			AggregateType: enums.AggregateShop,
			AggregateID:   shop.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorRole),
			Data: payloads.ShopModerationEvent{
				ShopID:          shop.ID,
				Active:          true,
				CommissionRate:  rate,
				CustomRate:      input.UseCustom,
				ProductsFlipped: flipped,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
}

func (s *service) Disapprove(ctx context.Context, input DisapproveInput) error {
	if input.ShopID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		shop, err := repo.GetByID(ctx, input.ShopID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
		}

		if err := repo.SetActive(ctx, shop.ID, false); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate shop")
		}
		flipped, err := repo.FlipProductStatus(ctx, shop.ID, enums.ProductStatusPublish, enums.ProductStatusDraft)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unpublish shop products")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventShopDisapproved,
			AggregateType: enums.AggregateShop,
			AggregateID:   shop.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorRole),
			Data: payloads.ShopModerationEvent{
				ShopID:          shop.ID,
				Active:          false,
				ProductsFlipped: flipped,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
}

// getOrCreateBalance fetches the shop ledger inside the moderation
// transaction, seeding it at the default rate on first approval.
func (s *service) getOrCreateBalance(ctx context.Context, balances balance.Repository, shopID uuid.UUID) (*models.Balance, error) {
	ledger, err := balances.GetByShopID(ctx, shopID)
	if err == nil {
		return ledger, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load balance")
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
