package ledger

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount rejects non-positive amounts and point values before
// any transaction is opened.
var ErrInvalidAmount = errors.New("amount must be positive")

// PurchaseReceipt is returned by RecordPurchase.
type PurchaseReceipt struct {
	PurchaseID      int64
	PendingCreditID int64 // 0 when the purchase earns no credit
	Points          decimal.Decimal
}

// GiftReceipt is returned by AddGiftCredit.
type GiftReceipt struct {
	GiftCreditID int64
	Points       decimal.Decimal
	NewBalance   decimal.Decimal
}

// UsageReceipt is returned by UseCredit. Callers notify the subscriber
// with the new balance.
type UsageReceipt struct {
	UsageID    int64
	Points     decimal.Decimal
	NewBalance decimal.Decimal
}
