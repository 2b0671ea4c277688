package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrder    OutboxAggregateType = "order"
	AggregateShop     OutboxAggregateType = "shop"
	AggregateBalance  OutboxAggregateType = "balance"
	AggregateWallet   OutboxAggregateType = "wallet"
	AggregateRefund   OutboxAggregateType = "refund"
	AggregateWithdraw OutboxAggregateType = "withdraw"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateShop,
	AggregateBalance,
	AggregateWallet,
	AggregateRefund,
	AggregateWithdraw,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventOrderSettled      OutboxEventType = "order_settled"
	EventRefundApproved    OutboxEventType = "refund_approved"
	EventRefundRejected    OutboxEventType = "refund_rejected"
	EventWithdrawRequested OutboxEventType = "withdraw_requested"
	EventWithdrawResolved  OutboxEventType = "withdraw_resolved"
	EventShopApproved      OutboxEventType = "shop_approved"
	EventShopDisapproved   OutboxEventType = "shop_disapproved"
	EventWalletCredited    OutboxEventType = "wallet_credited"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderSettled,
	EventRefundApproved,
	EventRefundRejected,
	EventWithdrawRequested,
	EventWithdrawResolved,
	EventShopApproved,
	EventShopDisapproved,
	EventWalletCredited,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

// OutboxDLQErrorReason classifies why an outbox row was dead-lettered.
type OutboxDLQErrorReason string

const (
	DLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts_exceeded"
	DLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)

// IsValid reports whether the value matches the canonical DLQ reason enum.
func (d OutboxDLQErrorReason) IsValid() bool {
	return d == DLQReasonMaxAttempts || d == DLQReasonNonRetryable
}
