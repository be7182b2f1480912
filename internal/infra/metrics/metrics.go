package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SettlementTransfersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loyalty_settlement_transfers_total",
			Help: "Pending credits promoted into spendable balance",
		},
	)

	SettlementPointsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loyalty_settlement_points_total",
			Help: "Total points transferred by the settlement engine",
		},
	)

	SettlementFaultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loyalty_settlement_faults_total",
			Help: "Pending credits skipped because their transfer failed",
		},
	)

	ReconciliationMismatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loyalty_reconciliation_mismatches_total",
			Help: "Subscribers whose stored balance drifted beyond tolerance",
		},
	)

	ReconciliationFixesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loyalty_reconciliation_fixes_total",
			Help: "Stored balances overwritten with the calculated value",
		},
	)

	ReconciliationFaultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loyalty_reconciliation_faults_total",
			Help: "Subscribers skipped during reconciliation because recompute failed",
		},
	)

	BalanceFloorClampsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loyalty_balance_floor_clamps_total",
			Help: "Debits truncated by the non-negative balance floor",
		},
	)
)
