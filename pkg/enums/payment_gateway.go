package enums

import "fmt"

// PaymentGateway names the external payment method attached to an order.
// The settlement core only consumes gateway confirmations; the adapters
// themselves live outside this service.
type PaymentGateway string

const (
	PaymentGatewayCashOnDelivery PaymentGateway = "cash_on_delivery"
	PaymentGatewayCash           PaymentGateway = "cash"
	PaymentGatewayFullWallet     PaymentGateway = "full_wallet_payment"
	PaymentGatewayStripe         PaymentGateway = "stripe"
	PaymentGatewayPaypal         PaymentGateway = "paypal"
	PaymentGatewayRazorpay       PaymentGateway = "razorpay"
	PaymentGatewayMollie         PaymentGateway = "mollie"
)

var validPaymentGateways = []PaymentGateway{
	PaymentGatewayCashOnDelivery,
	PaymentGatewayCash,
	PaymentGatewayFullWallet,
	PaymentGatewayStripe,
	PaymentGatewayPaypal,
	PaymentGatewayRazorpay,
	PaymentGatewayMollie,
}

// String implements fmt.Stringer.
func (p PaymentGateway) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentGateway.
func (p PaymentGateway) IsValid() bool {
	for _, candidate := range validPaymentGateways {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentGateway converts raw input into a PaymentGateway.
func ParsePaymentGateway(value string) (PaymentGateway, error) {
	for _, candidate := range validPaymentGateways {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment gateway %q", value)
}
