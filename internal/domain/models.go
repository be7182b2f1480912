// Package domain holds the ledger's entities and point arithmetic.
// Repos persist these types; services implement the operations on them.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordState is the lifecycle of a soft-deletable event row.
type RecordState uint8

const (
	StateActive RecordState = iota
	StateDeactivated
)

// StateOf maps the stored active flag to a RecordState.
func StateOf(active bool) RecordState {
	if active {
		return StateActive
	}
	return StateDeactivated
}

func (s RecordState) Active() bool { return s == StateActive }

func (s RecordState) String() string {
	if s == StateActive {
		return "active"
	}
	return "deactivated"
}

// Subscriber carries the denormalized spendable balance. The balance is
// mutated only by the ledger, settlement, deactivation and reconciliation
// services; it never goes negative.
type Subscriber struct {
	ID        int64
	Mobile    string
	Name      string
	Balance   decimal.Decimal
	CreatedAt time.Time
}

// Purchase is immutable once created except for its state.
type Purchase struct {
	ID                 int64
	SubscriberID       int64
	Amount             int64 // currency units
	ExcludedFromCredit bool
	State              RecordState
	CreatedAt          time.Time
}

// PendingCredit is the delayed credit earned by a purchase. At most one
// active row exists per purchase. Transferred rows stay in place as
// historical evidence even after the purchase is deactivated.
type PendingCredit struct {
	ID            int64
	SubscriberID  int64
	PurchaseID    int64
	Points        decimal.Decimal
	State         RecordState
	Transferred   bool
	TransferredAt *time.Time
	CreatedAt     time.Time
}

// GiftCredit is credited to the balance immediately at creation.
type GiftCredit struct {
	ID           int64
	SubscriberID int64
	Amount       int64 // currency units
	Points       decimal.Decimal
	State        RecordState
	Note         string
	CreatedAt    time.Time
}

// CreditUsage records a balance deduction. IsRefund is metadata only and
// does not change the sign of the deduction.
type CreditUsage struct {
	ID           int64
	SubscriberID int64
	Amount       int64 // currency units
	Points       decimal.Decimal
	IsRefund     bool
	State        RecordState
	CreatedAt    time.Time
}

// PendingCreditDisposition tells the deactivation compensator which
// compensation a purchase needs.
type PendingCreditDisposition uint8

const (
	// DispositionNone: no active pending credit exists; credit is assumed
	// to have been applied directly (legacy rows).
	DispositionNone PendingCreditDisposition = iota

	// DispositionUntransferred: the pending credit was never settled, so
	// deactivating it is compensation enough.
	DispositionUntransferred

	// DispositionTransferred: settlement already added the points, so the
	// balance must be debited back.
	DispositionTransferred
)

func (d PendingCreditDisposition) String() string {
	switch d {
	case DispositionUntransferred:
		return "pending_not_transferred"
	case DispositionTransferred:
		return "pending_transferred"
	default:
		return "no_pending_credit"
	}
}

// DispositionOf classifies a pending credit lookup result.
func DispositionOf(pc *PendingCredit) PendingCreditDisposition {
	switch {
	case pc == nil:
		return DispositionNone
	case pc.Transferred:
		return DispositionTransferred
	default:
		return DispositionUntransferred
	}
}

// Audit actions for balance_audit_log rows.
const (
	AuditPurchaseDeactivated   = "purchase_deactivated"
	AuditGiftCreditDeactivated = "gift_credit_deactivated"
	AuditReconciliationFix     = "reconciliation_fix"
)

// FlooredReasonSuffix is appended to an audit reason when the zero floor
// truncated a debit.
const FlooredReasonSuffix = ";balance_floored"

// AuditEntry records a silent balance correction with its before/after
// values so corrections stay traceable.
type AuditEntry struct {
	ID            int64
	SubscriberID  int64
	Action        string
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Reason        string
	CreatedAt     time.Time
}

// ReconciliationRow compares a subscriber's stored balance against the
// balance recomputed from the event streams.
type ReconciliationRow struct {
	SubscriberID int64
	Mobile       string
	Stored       decimal.Decimal
	Calculated   decimal.Decimal
	Delta        decimal.Decimal // Stored - Calculated
	Mismatched   bool
}
