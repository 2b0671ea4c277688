package commission

import "github.com/shopspring/decimal"

// Tier maps a minimum lifetime-earnings threshold to the platform rate a
// shop at or above that threshold pays. Tiers are evaluated highest
// threshold first.
type Tier struct {
	MinEarnings decimal.Decimal
	Rate        decimal.Decimal
}

// defaultTiers rewards cumulative volume with a lower platform cut.
var defaultTiers = []Tier{
	{MinEarnings: decimal.NewFromInt(50000), Rate: decimal.RequireFromString("2.5")},
	{MinEarnings: decimal.NewFromInt(10000), Rate: decimal.NewFromInt(5)},
	{MinEarnings: decimal.NewFromInt(1000), Rate: decimal.RequireFromString("7.5")},
}

// Engine computes commission rates from a tiered schedule. It is pure and
// safe for concurrent use.
type Engine struct {
	tiers       []Tier
	defaultRate decimal.Decimal
}

// NewEngine builds an Engine over the standard schedule. defaultRate applies
// to shops below the lowest tier threshold.
func NewEngine(defaultRate decimal.Decimal) *Engine {
	return &Engine{tiers: defaultTiers, defaultRate: defaultRate}
}

// RateFor returns the percent rate for a shop with the given lifetime
// earnings. Deterministic, no side effects.
func (e *Engine) RateFor(totalEarnings decimal.Decimal) decimal.Decimal {
	for _, tier := range e.tiers {
		if totalEarnings.GreaterThanOrEqual(tier.MinEarnings) {
			return tier.Rate
		}
	}
	return e.defaultRate
}

// Split divides a gross amount into the platform commission and the shop's
// net earnings at the given percent rate. The commission is rounded to two
// places and the net is the exact remainder, so commission + net always
// equals amount.
func (e *Engine) Split(amount, rate decimal.Decimal) (commissionAmount, net decimal.Decimal) {
	commissionAmount = amount.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
	net = amount.Sub(commissionAmount)
	return commissionAmount, net
}
