package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prodominocode/bamboclub-ledger/internal/api"
	"github.com/prodominocode/bamboclub-ledger/internal/config"
	"github.com/prodominocode/bamboclub-ledger/internal/infra/logging"
	"github.com/prodominocode/bamboclub-ledger/internal/infra/pgutils"
	pgauditlog "github.com/prodominocode/bamboclub-ledger/internal/repos/auditlog/postgres"
	"github.com/prodominocode/bamboclub-ledger/internal/services/deactivation"
	"github.com/prodominocode/bamboclub-ledger/internal/services/ledger"
	"github.com/prodominocode/bamboclub-ledger/internal/services/reconciliation"
	"github.com/prodominocode/bamboclub-ledger/internal/services/settlement"
	"github.com/prodominocode/bamboclub-ledger/pkg/envconf"
	"github.com/prodominocode/bamboclub-ledger/pkg/shutdownqueue"
)

type apiConfig struct {
	Port            uint16        `env:"APP_PORT"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT"`
	Postgres        config.PostgresConfig
	Loyalty         config.LoyaltyConfig
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add(func(context.Context) error {
		return db.Close()
	})

	// --- Services ---
	handler := api.NewHandler(
		ledger.New(db),
		settlement.New(db, cfg.Loyalty.SettlementDelay),
		deactivation.New(db),
		reconciliation.New(db,
			decimal.NewFromInt(cfg.Loyalty.ReconciliationEpsilon),
			cfg.Loyalty.VirtualCardPrefix,
		),
		pgauditlog.New(db),
	)

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, handler)

	shutdownqueue.Add(func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("loyalty ledger API started", "port", cfg.Port)

	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
