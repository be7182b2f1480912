package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter constructs the router with all ledger and admin endpoints.
func NewRouter(h *HandlerProvider) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Post("/subscribers", h.CreateSubscriberHandler)
	r.Get("/subscriber/{subscriberId}/balance", h.GetBalanceHandler)
	r.Post("/subscriber/{subscriberId}/purchase", h.RecordPurchaseHandler)
	r.Post("/subscriber/{subscriberId}/purchase/{purchaseId}/credit", h.AccrueCreditHandler)
	r.Post("/subscriber/{subscriberId}/gift", h.AddGiftCreditHandler)
	r.Post("/subscriber/{subscriberId}/usage", h.UseCreditHandler)

	r.Delete("/purchase/{purchaseId}", h.DeactivatePurchaseHandler)
	r.Delete("/gift/{giftCreditId}", h.DeactivateGiftCreditHandler)

	r.Post("/admin/settlement/run", h.RunSettlementHandler)
	r.Get("/admin/reconciliation", h.ReconciliationReportHandler)
	r.Post("/admin/reconciliation/fix", h.FixAllHandler)
	r.Post("/admin/reconciliation/{subscriberId}/fix", h.ApplyFixHandler)
	r.Get("/admin/subscriber/{subscriberId}/audit", h.AuditLogHandler)

	return r
}
