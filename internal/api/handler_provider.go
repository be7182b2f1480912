package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/prodominocode/bamboclub-ledger/internal/repos/auditlog"
	"github.com/prodominocode/bamboclub-ledger/internal/services/deactivation"
	"github.com/prodominocode/bamboclub-ledger/internal/services/ledger"
	"github.com/prodominocode/bamboclub-ledger/internal/services/reconciliation"
	"github.com/prodominocode/bamboclub-ledger/internal/services/settlement"
)

// HandlerProvider wraps the ledger services and exposes HTTP handlers.
type HandlerProvider struct {
	ledger     *ledger.Service
	settlement *settlement.Engine
	compensate *deactivation.Compensator
	reconcile  *reconciliation.Engine
	audit      auditlog.AuditLog
}

// NewHandler returns a new handler provider.
func NewHandler(
	ldg *ledger.Service,
	stl *settlement.Engine,
	cmp *deactivation.Compensator,
	rec *reconciliation.Engine,
	audit auditlog.AuditLog,
) *HandlerProvider {
	return &HandlerProvider{
		ledger:     ldg,
		settlement: stl,
		compensate: cmp,
		reconcile:  rec,
		audit:      audit,
	}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
		http.Error(w, `{"error":"internal json encode failure"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// internalError hides balance-adjustment internals from end users; the
// cause is logged server-side only.
func internalError(w http.ResponseWriter, op string, err error) {
	slog.Error("operation failed", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, "operation failed")
}

func pathID(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	if idStr == "" {
		return 0, fmt.Errorf("missing %s", name)
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}

	return id, nil
}

// optionalSubscriberID reads the subscriberId query parameter used by the
// batch endpoints; nil means system-wide.
func optionalSubscriberID(r *http.Request) (*int64, error) {
	raw := r.URL.Query().Get("subscriberId")
	if raw == "" {
		return nil, nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid subscriberId")
	}

	return &id, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB cap
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
