package api

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/prodominocode/bamboclub-ledger/internal/repos/giftcredits"
	"github.com/prodominocode/bamboclub-ledger/internal/repos/pendingcredits"
	"github.com/prodominocode/bamboclub-ledger/internal/repos/purchases"
	"github.com/prodominocode/bamboclub-ledger/internal/repos/subscribers"
	"github.com/prodominocode/bamboclub-ledger/internal/services/ledger"
	"github.com/prodominocode/bamboclub-ledger/internal/services/reconciliation"
)

// --- Subscribers ---

type createSubscriberRequest struct {
	Mobile string `json:"mobile"`
	Name   string `json:"name"`
}

// CreateSubscriberHandler handles POST /subscribers
func (h *HandlerProvider) CreateSubscriberHandler(w http.ResponseWriter, r *http.Request) {
	var req createSubscriberRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.Mobile == "" {
		writeError(w, http.StatusBadRequest, "mobile required")
		return
	}

	id, err := h.ledger.RegisterSubscriber(r.Context(), req.Mobile, req.Name)
	if err != nil {
		if errors.Is(err, subscribers.ErrDuplicateMobile) {
			writeError(w, http.StatusConflict, "mobile already registered")
			return
		}

		internalError(w, "create subscriber", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"subscriberId": id})
}

// GetBalanceHandler handles GET /subscriber/{subscriberId}/balance
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := pathID(r, "subscriberId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subscriberId in path")
		return
	}

	balance, err := h.ledger.GetBalance(r.Context(), subscriberID)
	if err != nil {
		if errors.Is(err, subscribers.ErrSubscriberNotFound) {
			writeError(w, http.StatusNotFound, "subscriber not found")
			return
		}

		internalError(w, "get balance", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"subscriberId": subscriberID,
		"balance":      balance.StringFixed(2),
	})
}

// --- Purchases ---

type recordPurchaseRequest struct {
	Amount             int64 `json:"amount"`
	ExcludedFromCredit bool  `json:"excludedFromCredit"`
}

// RecordPurchaseHandler handles POST /subscriber/{subscriberId}/purchase
func (h *HandlerProvider) RecordPurchaseHandler(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := pathID(r, "subscriberId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subscriberId in path")
		return
	}

	var req recordPurchaseRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	receipt, err := h.ledger.RecordPurchase(r.Context(), subscriberID, req.Amount, req.ExcludedFromCredit)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, "amount must be positive")
		case errors.Is(err, subscribers.ErrSubscriberNotFound):
			writeError(w, http.StatusNotFound, "subscriber not found")
		default:
			internalError(w, "record purchase", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"purchaseId": receipt.PurchaseID,
		"points":     receipt.Points.StringFixed(2),
	})
}

type accrueCreditRequest struct {
	Points string `json:"points"`
}

// AccrueCreditHandler handles POST /subscriber/{subscriberId}/purchase/{purchaseId}/credit
func (h *HandlerProvider) AccrueCreditHandler(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := pathID(r, "subscriberId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subscriberId in path")
		return
	}

	purchaseID, err := pathID(r, "purchaseId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid purchaseId in path")
		return
	}

	var req accrueCreditRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	points, err := decimal.NewFromString(req.Points)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid points")
		return
	}

	pendingID, err := h.ledger.AccruePurchaseCredit(r.Context(), subscriberID, purchaseID, points)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, "points must be positive")
		case errors.Is(err, pendingcredits.ErrDuplicatePendingCredit):
			writeError(w, http.StatusConflict, "pending credit already exists")
		case errors.Is(err, subscribers.ErrSubscriberNotFound):
			writeError(w, http.StatusNotFound, "subscriber not found")
		case errors.Is(err, purchases.ErrPurchaseNotFound):
			writeError(w, http.StatusNotFound, "purchase not found")
		default:
			internalError(w, "accrue credit", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"pendingCreditId": pendingID})
}

// DeactivatePurchaseHandler handles DELETE /purchase/{purchaseId}
func (h *HandlerProvider) DeactivatePurchaseHandler(w http.ResponseWriter, r *http.Request) {
	purchaseID, err := pathID(r, "purchaseId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid purchaseId in path")
		return
	}

	result, err := h.compensate.DeactivatePurchase(r.Context(), purchaseID)
	if err != nil {
		if errors.Is(err, purchases.ErrPurchaseNotFound) {
			writeError(w, http.StatusNotFound, "purchase not found")
			return
		}

		internalError(w, "deactivate purchase", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"subscriberId": result.SubscriberID,
		"balance":      result.BalanceAfter.StringFixed(2),
	})
}

// --- Gift credits ---

type giftCreditRequest struct {
	Amount int64  `json:"amount"`
	Note   string `json:"note"`
}

// AddGiftCreditHandler handles POST /subscriber/{subscriberId}/gift
func (h *HandlerProvider) AddGiftCreditHandler(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := pathID(r, "subscriberId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subscriberId in path")
		return
	}

	var req giftCreditRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	receipt, err := h.ledger.AddGiftCredit(r.Context(), subscriberID, req.Amount, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, "amount must be positive")
		case errors.Is(err, subscribers.ErrSubscriberNotFound):
			writeError(w, http.StatusNotFound, "subscriber not found")
		default:
			internalError(w, "add gift credit", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"giftCreditId": receipt.GiftCreditID,
		"points":       receipt.Points.StringFixed(2),
		"balance":      receipt.NewBalance.StringFixed(2),
	})
}

// DeactivateGiftCreditHandler handles DELETE /gift/{giftCreditId}
func (h *HandlerProvider) DeactivateGiftCreditHandler(w http.ResponseWriter, r *http.Request) {
	giftCreditID, err := pathID(r, "giftCreditId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid giftCreditId in path")
		return
	}

	result, err := h.compensate.DeactivateGiftCredit(r.Context(), giftCreditID)
	if err != nil {
		if errors.Is(err, giftcredits.ErrGiftCreditNotFound) {
			writeError(w, http.StatusNotFound, "gift credit not found")
			return
		}

		internalError(w, "deactivate gift credit", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"subscriberId": result.SubscriberID,
		"balance":      result.BalanceAfter.StringFixed(2),
	})
}

// --- Credit usage ---

type useCreditRequest struct {
	Points   string `json:"points"`
	IsRefund bool   `json:"isRefund"`
}

// UseCreditHandler handles POST /subscriber/{subscriberId}/usage
func (h *HandlerProvider) UseCreditHandler(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := pathID(r, "subscriberId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subscriberId in path")
		return
	}

	var req useCreditRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	points, err := decimal.NewFromString(req.Points)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid points")
		return
	}

	receipt, err := h.ledger.UseCredit(r.Context(), subscriberID, points, req.IsRefund)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, "points must be positive")
		case errors.Is(err, subscribers.ErrInsufficientBalance):
			writeError(w, http.StatusConflict, "insufficient balance")
		case errors.Is(err, subscribers.ErrSubscriberNotFound):
			writeError(w, http.StatusNotFound, "subscriber not found")
		default:
			internalError(w, "use credit", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"usageId": receipt.UsageID,
		"balance": receipt.NewBalance.StringFixed(2),
	})
}

// --- Admin: settlement, reconciliation, audit ---

// RunSettlementHandler handles POST /admin/settlement/run
func (h *HandlerProvider) RunSettlementHandler(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := optionalSubscriberID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subscriberId")
		return
	}

	summary, err := h.settlement.Settle(r.Context(), subscriberID)
	if err != nil {
		internalError(w, "settlement run", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"eligible":    summary.Eligible,
		"transferred": summary.Transferred,
		"skipped":     summary.Skipped,
		"faults":      summary.Faults,
		"points":      summary.Points.StringFixed(2),
	})
}

// ReconciliationReportHandler handles GET /admin/reconciliation
func (h *HandlerProvider) ReconciliationReportHandler(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := optionalSubscriberID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subscriberId")
		return
	}

	rows, err := h.reconcile.Compute(r.Context(), subscriberID)
	if err != nil {
		if errors.Is(err, subscribers.ErrSubscriberNotFound) {
			writeError(w, http.StatusNotFound, "subscriber not found")
			return
		}

		internalError(w, "reconciliation report", err)
		return
	}

	type reportRow struct {
		SubscriberID int64  `json:"subscriberId"`
		Mobile       string `json:"mobile"`
		Stored       string `json:"stored"`
		Calculated   string `json:"calculated"`
		Delta        string `json:"delta"`
		Mismatched   bool   `json:"mismatched"`
	}

	report := make([]reportRow, 0, len(rows))
	for _, row := range rows {
		report = append(report, reportRow{
			SubscriberID: row.SubscriberID,
			Mobile:       row.Mobile,
			Stored:       row.Stored.StringFixed(2),
			Calculated:   row.Calculated.StringFixed(2),
			Delta:        row.Delta.StringFixed(2),
			Mismatched:   row.Mismatched,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"rows": report})
}

// ApplyFixHandler handles POST /admin/reconciliation/{subscriberId}/fix
func (h *HandlerProvider) ApplyFixHandler(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := pathID(r, "subscriberId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subscriberId in path")
		return
	}

	result, err := h.reconcile.ApplyFix(r.Context(), subscriberID)
	if err != nil {
		switch {
		case errors.Is(err, subscribers.ErrSubscriberNotFound):
			writeError(w, http.StatusNotFound, "subscriber not found")
		case errors.Is(err, reconciliation.ErrWithinTolerance):
			writeError(w, http.StatusConflict, "balance within tolerance")
		case errors.Is(err, reconciliation.ErrNegativeCalculated):
			writeError(w, http.StatusConflict, "calculated balance is negative")
		case errors.Is(err, reconciliation.ErrVirtualCardSubscriber):
			writeError(w, http.StatusForbidden, "virtual card subscriber")
		default:
			internalError(w, "apply fix", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"subscriberId": result.SubscriberID,
		"oldBalance":   result.OldBalance.StringFixed(2),
		"newBalance":   result.NewBalance.StringFixed(2),
	})
}

// FixAllHandler handles POST /admin/reconciliation/fix
func (h *HandlerProvider) FixAllHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reconcile.FixAll(r.Context())
	if err != nil {
		internalError(w, "fix all", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"examined": summary.Examined,
		"fixed":    summary.Fixed,
		"skipped":  summary.Skipped,
		"faults":   summary.Faults,
	})
}

// AuditLogHandler handles GET /admin/subscriber/{subscriberId}/audit
func (h *HandlerProvider) AuditLogHandler(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := pathID(r, "subscriberId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subscriberId in path")
		return
	}

	entries, err := h.audit.ListBySubscriber(r.Context(), subscriberID, 100)
	if err != nil {
		internalError(w, "audit log", err)
		return
	}

	type auditRow struct {
		ID            int64  `json:"id"`
		Action        string `json:"action"`
		BalanceBefore string `json:"balanceBefore"`
		BalanceAfter  string `json:"balanceAfter"`
		Reason        string `json:"reason"`
		CreatedAt     string `json:"createdAt"`
	}

	report := make([]auditRow, 0, len(entries))
	for _, e := range entries {
		report = append(report, auditRow{
			ID:            e.ID,
			Action:        e.Action,
			BalanceBefore: e.BalanceBefore.StringFixed(2),
			BalanceAfter:  e.BalanceAfter.StringFixed(2),
			Reason:        e.Reason,
			CreatedAt:     e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": report})
}
