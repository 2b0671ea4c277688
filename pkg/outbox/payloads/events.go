package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradeyard/tradeyard-backend/pkg/enums"
)

// OrderSettledEvent is emitted once per child order when settlement credits
// the shop balance.
type OrderSettledEvent struct {
	OrderID        uuid.UUID       `json:"order_id"`
	ParentOrderID  uuid.UUID       `json:"parent_order_id"`
	ShopID         uuid.UUID       `json:"shop_id"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	GrossAmount    decimal.Decimal `json:"gross_amount"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	Commission     decimal.Decimal `json:"commission"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	SettledAt      time.Time       `json:"settled_at"`
}

// RefundResolvedEvent is emitted when a refund reaches a terminal status.
type RefundResolvedEvent struct {
	RefundID   uuid.UUID          `json:"refund_id"`
	OrderID    uuid.UUID          `json:"order_id"`
	CustomerID uuid.UUID          `json:"customer_id"`
	ShopID     *uuid.UUID         `json:"shop_id,omitempty"`
	Amount     decimal.Decimal    `json:"amount"`
	Status     enums.RefundStatus `json:"status"`
	PointsPaid decimal.Decimal    `json:"points_paid"`
}

// WithdrawRequestedEvent is emitted when a payout request reserves funds.
type WithdrawRequestedEvent struct {
	WithdrawID uuid.UUID       `json:"withdraw_id"`
	ShopID     uuid.UUID       `json:"shop_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// WithdrawResolvedEvent is emitted on any status transition after the request.
type WithdrawResolvedEvent struct {
	WithdrawID uuid.UUID            `json:"withdraw_id"`
	ShopID     uuid.UUID            `json:"shop_id"`
	Amount     decimal.Decimal      `json:"amount"`
	Status     enums.WithdrawStatus `json:"status"`
	Recredited bool                 `json:"recredited"`
}

// ShopModerationEvent is emitted when an admin approves or disapproves a shop.
type ShopModerationEvent struct {
	ShopID          uuid.UUID       `json:"shop_id"`
	Active          bool            `json:"active"`
	CommissionRate  decimal.Decimal `json:"commission_rate"`
	CustomRate      bool            `json:"custom_rate"`
	ProductsFlipped int64           `json:"products_flipped"`
}

// WalletCreditedEvent is emitted when a customer wallet gains points outside
// the refund flow.
type WalletCreditedEvent struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	Points     decimal.Decimal `json:"points"`
	Reason     string          `json:"reason,omitempty"`
}
