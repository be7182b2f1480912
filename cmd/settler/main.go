// Command settler runs a single settlement pass over the eligible pending
// credits and optionally prints a reconciliation report. It is meant to be
// invoked from cron.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/prodominocode/bamboclub-ledger/internal/config"
	"github.com/prodominocode/bamboclub-ledger/internal/infra/logging"
	"github.com/prodominocode/bamboclub-ledger/internal/infra/pgutils"
	"github.com/prodominocode/bamboclub-ledger/internal/services/reconciliation"
	"github.com/prodominocode/bamboclub-ledger/internal/services/settlement"
	"github.com/prodominocode/bamboclub-ledger/pkg/envconf"
)

type settlerConfig struct {
	LogLevel slog.Level `env:"APP_LOG_LEVEL"`
	// WithReport also computes balance deltas after the settlement pass
	// and writes the mismatched rows to stdout as JSON.
	WithReport bool `env:"SETTLER_WITH_REPORT,optional"`
	Postgres   config.PostgresConfig
	Loyalty    config.LoyaltyConfig
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		slog.Error("settlement run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := new(settlerConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	//nolint:errcheck
	defer db.Close()

	engine := settlement.New(db, cfg.Loyalty.SettlementDelay)

	summary, err := engine.Settle(ctx, nil)
	if err != nil {
		return fmt.Errorf("settle: %w", err)
	}

	slog.Info("settlement pass finished",
		"eligible", summary.Eligible,
		"transferred", summary.Transferred,
		"skipped", summary.Skipped,
		"faults", summary.Faults,
		"points", summary.Points.StringFixed(2),
	)

	if !cfg.WithReport {
		return nil
	}

	recon := reconciliation.New(db,
		decimal.NewFromInt(cfg.Loyalty.ReconciliationEpsilon),
		cfg.Loyalty.VirtualCardPrefix,
	)

	rows, err := recon.Compute(ctx, nil)
	if err != nil {
		return fmt.Errorf("reconciliation report: %w", err)
	}

	mismatched := rows[:0]
	for _, row := range rows {
		if row.Mismatched {
			mismatched = append(mismatched, row)
		}
	}

	err = json.NewEncoder(os.Stdout).Encode(mismatched)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	return nil
}
