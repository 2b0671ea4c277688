package enums

import "fmt"

// OrderStatus tracks the lifecycle of a parent or child order.
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "order-pending"
	OrderStatusProcessing      OrderStatus = "order-processing"
	OrderStatusCompleted       OrderStatus = "order-completed"
	OrderStatusCancelled       OrderStatus = "order-cancelled"
	OrderStatusFailed          OrderStatus = "order-failed"
	OrderStatusAtLocalFacility OrderStatus = "order-at-local-facility"
	OrderStatusOutForDelivery  OrderStatus = "order-out-for-delivery"
	OrderStatusRefunded        OrderStatus = "order-refunded"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusCompleted,
	OrderStatusCancelled,
	OrderStatusFailed,
	OrderStatusAtLocalFacility,
	OrderStatusOutForDelivery,
	OrderStatusRefunded,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
