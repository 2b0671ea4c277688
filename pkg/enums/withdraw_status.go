package enums

import "fmt"

// WithdrawStatus tracks a withdrawal request. The balance debit happens at
// request time; status transitions after that never move money, except the
// rejection path which credits the reserved amount back.
type WithdrawStatus string

const (
	WithdrawStatusPending    WithdrawStatus = "pending"
	WithdrawStatusApproved   WithdrawStatus = "approved"
	WithdrawStatusRejected   WithdrawStatus = "rejected"
	WithdrawStatusProcessing WithdrawStatus = "processing"
	WithdrawStatusOnHold     WithdrawStatus = "on_hold"
)

var validWithdrawStatuses = []WithdrawStatus{
	WithdrawStatusPending,
	WithdrawStatusApproved,
	WithdrawStatusRejected,
	WithdrawStatusProcessing,
	WithdrawStatusOnHold,
}

// String implements fmt.Stringer.
func (w WithdrawStatus) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WithdrawStatus.
func (w WithdrawStatus) IsValid() bool {
	for _, candidate := range validWithdrawStatuses {
		if candidate == w {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (w WithdrawStatus) IsTerminal() bool {
	return w == WithdrawStatusApproved || w == WithdrawStatusRejected
}

// ParseWithdrawStatus converts raw input into a WithdrawStatus.
func ParseWithdrawStatus(value string) (WithdrawStatus, error) {
	for _, candidate := range validWithdrawStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid withdraw status %q", value)
}
