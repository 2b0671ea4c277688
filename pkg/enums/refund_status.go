package enums

import "fmt"

// RefundStatus tracks the refund workflow. Approved is terminal: once a
// refund reaches it the ledger reversal has been applied exactly once.
type RefundStatus string

const (
	RefundStatusPending    RefundStatus = "refund-pending"
	RefundStatusApproved   RefundStatus = "refund-approved"
	RefundStatusRejected   RefundStatus = "refund-rejected"
	RefundStatusProcessing RefundStatus = "refund-processing"
)

var validRefundStatuses = []RefundStatus{
	RefundStatusPending,
	RefundStatusApproved,
	RefundStatusRejected,
	RefundStatusProcessing,
}

// String implements fmt.Stringer.
func (r RefundStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RefundStatus.
func (r RefundStatus) IsValid() bool {
	for _, candidate := range validRefundStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRefundStatus converts raw input into a RefundStatus.
func ParseRefundStatus(value string) (RefundStatus, error) {
	for _, candidate := range validRefundStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid refund status %q", value)
}
