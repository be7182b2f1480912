package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Conversion constants for the loyalty program.
//
// 1 point is worth PointValue currency units. A purchase earns
// amount/PurchaseEarnDivisor points, i.e. 5% of the purchase value
// expressed in points.
const (
	PointValue          = 5000
	PurchaseEarnDivisor = 100000
)

// Defaults for the tunable knobs. Overridable via environment in cmd/.
const (
	// DefaultSettlementDelay is the holding period before a pending
	// credit becomes spendable.
	DefaultSettlementDelay = 48 * time.Hour

	// DefaultVirtualCardPrefix marks the reserved mobile-number range
	// used by virtual card identities. Reconciliation never overwrites
	// balances of these subscribers.
	DefaultVirtualCardPrefix = "000"
)

// DefaultReconciliationTolerance is the allowed absolute drift between
// stored and calculated balance, in currency units.
var DefaultReconciliationTolerance = decimal.NewFromInt(1)

var (
	pointValue          = decimal.NewFromInt(PointValue)
	purchaseEarnDivisor = decimal.NewFromInt(PurchaseEarnDivisor)
)

// PurchasePoints converts a purchase amount in currency units into earned
// points, rounded to 2 decimals.
func PurchasePoints(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount).DivRound(purchaseEarnDivisor, 2)
}

// GiftPoints converts a gift amount in currency units into points,
// rounded to 2 decimals.
func GiftPoints(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount).DivRound(pointValue, 2)
}

// CurrencyValue converts points back into currency units.
func CurrencyValue(points decimal.Decimal) decimal.Decimal {
	return points.Mul(pointValue)
}

// UsageAmount is the currency value of a credit usage, truncated to a
// whole currency amount for storage.
func UsageAmount(points decimal.Decimal) int64 {
	return CurrencyValue(points).IntPart()
}

// ClampDebit applies a debit to a balance, flooring the result at zero.
// It reports whether the floor kicked in so callers can record the event.
// All balance-reducing compensation goes through this single helper.
func ClampDebit(balance, points decimal.Decimal) (newBalance decimal.Decimal, floored bool) {
	newBalance = balance.Sub(points)
	if newBalance.IsNegative() {
		return decimal.Zero, true
	}
	return newBalance, false
}
