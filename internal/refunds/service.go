package refunds

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradeyard/tradeyard-backend/internal/balance"
	"github.com/tradeyard/tradeyard-backend/internal/orders"
	"github.com/tradeyard/tradeyard-backend/internal/wallet"
	pkgdb "github.com/tradeyard/tradeyard-backend/pkg/db"
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

// Service runs the refund workflow. Approval is terminal and carries the
// ledger reversal: shop balances are debited and the customer wallet is
// credited in the same transaction that flips the status.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Refund, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Refund, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Refund, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*RefundList, error)
	ListByShop(ctx context.Context, shopID uuid.UUID, params pagination.Params) (*RefundList, error)
}

// RefundList is one page of refunds plus the cursor for the next page.
type RefundList struct {
	Refunds    []models.Refund `json:"refunds"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// CreateInput files a refund request against an order.
type CreateInput struct {
	OrderID     uuid.UUID
	CustomerID  uuid.UUID
	Amount      decimal.Decimal
	Reason      *string
	ActorUserID uuid.UUID
	ActorRole   string
}

// UpdateStatusInput resolves a pending refund.
type UpdateStatusInput struct {
	RefundID    uuid.UUID
	Status      enums.RefundStatus
	ActorUserID uuid.UUID
	ActorRole   string
}

type service struct {
	repo          Repository
	ordersRepo    orders.Repository
	balances      balance.Repository
	wallets       wallet.Repository
	pointsPerUnit decimal.Decimal
	tx            txRunner
	outbox        outboxPublisher
	logg          *logger.Logger
}

// NewService builds a refund service with the required dependencies.
func NewService(repo Repository, ordersRepo orders.Repository, balances balance.Repository, wallets wallet.Repository, pointsPerUnit decimal.Decimal, tx txRunner, publisher outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("refunds repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if balances == nil {
		return nil, fmt.Errorf("balance repository required")
	}
	if wallets == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if !pointsPerUnit.IsPositive() {
		return nil, fmt.Errorf("points per unit must be positive")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:          repo,
		ordersRepo:    ordersRepo,
		balances:      balances,
		wallets:       wallets,
		pointsPerUnit: pointsPerUnit,
		tx:            tx,
		outbox:        publisher,
		logg:          logg,
	}, nil
}

// Create files a pending refund. Only completed orders are refundable, and
// one open refund per order: a second request while the first is unresolved
// is a conflict.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Refund, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	var created *models.Refund
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		order, err := ordersRepo.GetByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.CustomerID != input.CustomerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
		}
		if order.OrderStatus != enums.OrderStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeConflict, "refund requires a completed order")
		}

		open, err := repo.HasOpenByOrderID(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check open refunds")
		}
		if open {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already has an open refund")
		}

		amount := input.Amount
		if amount.IsZero() {
			amount = order.PaidTotal
		}
		if !amount.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
		}
		if amount.GreaterThan(order.PaidTotal) {
			return pkgerrors.New(pkgerrors.CodeValidation, "refund amount exceeds paid total")
		}

		created = &models.Refund{
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			ShopID:     order.ShopID,
			Amount:     amount,
			Status:     enums.RefundStatusPending,
			Reason:     input.Reason,
		}
		if err := repo.Create(ctx, created); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create refund")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Refund, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund id is required")
	}
	refund, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "refund not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load refund")
	}
	return refund, nil
}

// UpdateStatus resolves a refund. Approval locks the refund row, writes the
// status, reverses every affected shop balance and credits the customer
// wallet, all in one transaction. Approving twice is a conflict and never
// touches the ledger again.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Refund, error) {
	if input.RefundID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund id is required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid refund status")
	}

	var resolved *models.Refund
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		refund, err := repo.LockByID(ctx, input.RefundID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "refund not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock refund")
		}
		if refund.Status == enums.RefundStatusApproved {
			return pkgerrors.New(pkgerrors.CodeAlreadyRefunded, "refund already approved")
		}
		if refund.Status == input.Status {
			resolved = refund
			return nil
		}

		if err := repo.UpdateStatus(ctx, refund.ID, input.Status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update refund status")
		}
		refund.Status = input.Status

		points := decimal.Zero
		if input.Status == enums.RefundStatusApproved {
			points, err = s.reverse(ctx, tx, refund)
			if err != nil {
				return err
			}
		}

		eventType := enums.EventRefundRejected
		if input.Status == enums.RefundStatusApproved {
			eventType = enums.EventRefundApproved
		}
		if input.Status == enums.RefundStatusApproved || input.Status == enums.RefundStatusRejected {
			event := outbox.DomainEvent{
				EventType:     eventType,
				AggregateType: enums.AggregateRefund,
				AggregateID:   refund.ID,
				Version:       1,
				Actor:         buildActor(input.ActorUserID, input.ActorRole),
				Data: payloads.RefundResolvedEvent{
					RefundID:   refund.ID,
					OrderID:    refund.OrderID,
					CustomerID: refund.CustomerID,
					ShopID:     refund.ShopID,
					Amount:     refund.Amount,
					Status:     refund.Status,
					PointsPaid: points,
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}
		}

		resolved = refund
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// reverse unwinds the settled money for the refund's order. A parent order
// fans out across its children; a child order reverses only its own shop.
// Returns the points credited to the customer wallet.
func (s *service) reverse(ctx context.Context, tx *gorm.DB, refund *models.Refund) (decimal.Decimal, error) {
	ordersRepo := s.ordersRepo.WithTx(tx)
	balances := s.balances.WithTx(tx)
	wallets := s.wallets.WithTx(tx)

	order, err := ordersRepo.GetByID(ctx, refund.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "refunded order not found")
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load refunded order")
	}

	if order.IsParent() {
		children, err := ordersRepo.ListChildren(ctx, order.ID)
		if err != nil {
			return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list child orders")
		}
		for _, child := range children {
			if child.ShopID == nil {
				continue
			}
			if err := s.reverseShop(ctx, balances, *child.ShopID, child.Amount); err != nil {
				return decimal.Zero, err
			}
		}
	} else if order.ShopID != nil {
		if err := s.reverseShop(ctx, balances, *order.ShopID, refund.Amount); err != nil {
			return decimal.Zero, err
		}
	}

	points := refund.Amount.Mul(s.pointsPerUnit)
	if err := s.creditWallet(ctx, wallets, refund.CustomerID, points); err != nil {
		return decimal.Zero, err
	}
	return points, nil
}

// reverseShop locks and debits one shop ledger. A missing balance row is
// skipped rather than failed so a refund never strands on a shop that was
// never settled; the skip is logged because it means shop-side money went
// untracked.
func (s *service) reverseShop(ctx context.Context, balances balance.Repository, shopID uuid.UUID, amount decimal.Decimal) error {
	if _, err := balances.LockByShopID(ctx, shopID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if s.logg != nil {
				s.logg.Warn(s.logg.WithShopID(ctx, shopID.String()), "refund reversal skipped shop without balance row")
			}
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock balance")
	}
	applied, err := balances.ReverseEarnings(ctx, shopID, amount)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reverse shop earnings")
	}
	if !applied {
		return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "shop balance cannot cover refund reversal")
	}
	return nil
}

// creditWallet locks the customer wallet, creating it at zero when absent,
// and credits the refund points. A create that loses the race on the unique
// customer index falls back to locking the row the winner inserted.
func (s *service) creditWallet(ctx context.Context, wallets wallet.Repository, customerID uuid.UUID, points decimal.Decimal) error {
	if _, err := wallets.LockByCustomerID(ctx, customerID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock wallet")
		}
		fresh := &models.Wallet{
			CustomerID:      customerID,
			TotalPoints:     decimal.Zero,
			AvailablePoints: decimal.Zero,
			PointsUsed:      decimal.Zero,
		}
		if err := wallets.Create(ctx, fresh); err != nil {
			if !pkgdb.IsUniqueViolation(err, "idx_wallets_customer_id") {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create wallet")
			}
			if _, err := wallets.LockByCustomerID(ctx, customerID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock wallet after create race")
			}
		}
	}
	if err := wallets.CreditPoints(ctx, customerID, points); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit wallet points")
	}
	return nil
}

func (s *service) ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*RefundList, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	rows, next, err := s.repo.ListByCustomer(ctx, customerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer refunds")
	}
	return buildRefundList(rows, next), nil
}

func (s *service) ListByShop(ctx context.Context, shopID uuid.UUID, params pagination.Params) (*RefundList, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}
	rows, next, err := s.repo.ListByShop(ctx, shopID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shop refunds")
	}
	return buildRefundList(rows, next), nil
}

func buildRefundList(rows []models.Refund, next *pagination.Cursor) *RefundList {
	list := &RefundList{Refunds: rows}
	if next != nil {
		list.NextCursor = pagination.EncodeCursor(*next)
	}
	return list
}

func buildActor(userID uuid.UUID, role string) *outbox.ActorRef {
	if userID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: userID, Role: role}
}
