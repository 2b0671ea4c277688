package withdraws

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradeyard/tradeyard-backend/internal/balance"
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
}

// Service runs the payout workflow. The balance debit happens when the
// request is filed, so the reserved money is out of reach the moment the
// pending row exists. Approval is a status flip only; rejection credits the
// reservation back.
type Service interface {
	Request(ctx context.Context, input RequestInput) (*models.Withdraw, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Withdraw, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Withdraw, error)
	ListByShop(ctx context.Context, shopID uuid.UUID, params pagination.Params) (*WithdrawList, error)
}

// WithdrawList is one page of withdrawals plus the cursor for the next page.
type WithdrawList struct {
	Withdraws  []models.Withdraw `json:"withdraws"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// RequestInput files a withdrawal for a shop.
type RequestInput struct {
	ShopID        uuid.UUID
	Amount        decimal.Decimal
	PaymentMethod *string
	Details       *string
	ActorUserID   uuid.UUID
	ActorRole     string
}

// UpdateStatusInput moves a withdrawal to a new status.
type UpdateStatusInput struct {
	WithdrawID  uuid.UUID
	Status      enums.WithdrawStatus
	Note        *string
	ActorUserID uuid.UUID
	ActorRole   string
}

type service struct {
	repo     Repository
	balances balance.Repository
	tx       txRunner
	outbox   outboxPublisher
	logg     *logger.Logger
}

// NewService builds a withdraws service with the required dependencies.
func NewService(repo Repository, balances balance.Repository, tx txRunner, publisher outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("withdraws repository required")
	}
	if balances == nil {
		return nil, fmt.Errorf("balance repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:     repo,
		balances: balances,
		tx:       tx,
		outbox:   publisher,
		logg:     logg,
	}, nil
}

// Request debits the shop balance and files the pending withdrawal in one
// transaction. The debit is conditional on sufficient funds, so two racing
// requests can never overdraw the shop.
func (s *service) Request(ctx context.Context, input RequestInput) (*models.Withdraw, error) {
	if input.ShopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeWithdrawNoShop, "withdrawal must name a shop")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "withdraw amount must be positive")
	}

	var created *models.Withdraw
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		balances := s.balances.WithTx(tx)

		if _, err := balances.LockByShopID(ctx, input.ShopID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "shop has no balance")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock balance")
		}

		debited, err := balances.DebitForWithdraw(ctx, input.ShopID, input.Amount)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit balance")
		}
		if !debited {
			return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "withdraw amount exceeds current balance")
		}

		created = &models.Withdraw{
			ShopID:        input.ShopID,
			Amount:        input.Amount,
			Status:        enums.WithdrawStatusPending,
			PaymentMethod: input.PaymentMethod,
			Details:       input.Details,
		}
		if err := repo.Create(ctx, created); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create withdraw")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventWithdrawRequested,
			AggregateType: enums.AggregateWithdraw,
			AggregateID:   created.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorRole),
			Data: payloads.WithdrawRequestedEvent{
				WithdrawID: created.ID,
				ShopID:     created.ShopID,
				Amount:     created.Amount,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Withdraw, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "withdraw id is required")
	}
	withdraw, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "withdraw not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load withdraw")
	}
	return withdraw, nil
}

// UpdateStatus moves a withdrawal to a new status. Terminal rows never move
// again. Approval pays out the money that was already reserved, so the ledger
// is untouched; rejection returns the reservation to the shop balance.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Withdraw, error) {
	if input.WithdrawID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "withdraw id is required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid withdraw status")
	}

	var resolved *models.Withdraw
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		withdraw, err := repo.LockByID(ctx, input.WithdrawID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "withdraw not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock withdraw")
		}
		if withdraw.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "withdraw already resolved")
		}
		if withdraw.Status == input.Status {
			resolved = withdraw
			return nil
		}

		if err := repo.UpdateStatus(ctx, withdraw.ID, input.Status, input.Note); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update withdraw status")
		}
		withdraw.Status = input.Status
		if input.Note != nil {
			withdraw.Note = input.Note
		}

		recredited := false
		if input.Status == enums.WithdrawStatusRejected {
			balances := s.balances.WithTx(tx)
			if _, err := balances.LockByShopID(ctx, withdraw.ShopID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock balance")
			}
			if err := balances.CreditWithdrawReversal(ctx, withdraw.ShopID, withdraw.Amount); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "return reserved funds")
			}
			recredited = true
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventWithdrawResolved,
			AggregateType: enums.AggregateWithdraw,
			AggregateID:   withdraw.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorRole),
			Data: payloads.WithdrawResolvedEvent{
				WithdrawID: withdraw.ID,
				ShopID:     withdraw.ShopID,
				Amount:     withdraw.Amount,
				Status:     withdraw.Status,
				Recredited: recredited,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		resolved = withdraw
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

func (s *service) ListByShop(ctx context.Context, shopID uuid.UUID, params pagination.Params) (*WithdrawList, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}
	rows, next, err := s.repo.ListByShop(ctx, shopID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shop withdraws")
	}
	list := &WithdrawList{Withdraws: rows}
	if next != nil {
		list.NextCursor = pagination.EncodeCursor(*next)
	}
	return list, nil
}

func buildActor(userID uuid.UUID, role string) *outbox.ActorRef {
	if userID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: userID, Role: role}
}
