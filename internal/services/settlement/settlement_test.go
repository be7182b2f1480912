package settlement

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/prodominocode/bamboclub-ledger/internal/infra/pgtestutil"
	"github.com/prodominocode/bamboclub-ledger/internal/services/ledger"
)

func TestEngine_Settle_TransfersAfterHoldingPeriod(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	ctx := t.Context()
	ldg := ledger.New(db)
	engine := New(db, 48*time.Hour)

	subID, err := ldg.RegisterSubscriber(ctx, "79991112233", "Settling Subscriber")
	require.NoError(t, err)

	// 50000 currency units => 10 points credited immediately
	_, err = ldg.AddGiftCredit(ctx, subID, 50000, "welcome")
	require.NoError(t, err)

	// 500000 currency units => 5 pending points
	receipt, err := ldg.RecordPurchase(ctx, subID, 500000, false)
	require.NoError(t, err)
	require.True(t, receipt.Points.Equal(decimal.RequireFromString("5")))

	// fresh pending credit is inside the holding period
	summary, err := engine.Settle(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 0, summary.Eligible)

	balance, err := ldg.GetBalance(ctx, subID)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.RequireFromString("10")), "balance %s", balance)

	_, err = db.Exec(`UPDATE pending_credits SET created_at = now() - INTERVAL '49 hours' WHERE id = $1`,
		receipt.PendingCreditID)
	require.NoError(t, err)

	summary, err = engine.Settle(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Eligible)
	require.Equal(t, 1, summary.Transferred)
	require.Equal(t, 0, summary.Faults)
	require.True(t, summary.Points.Equal(decimal.RequireFromString("5")))

	balance, err = ldg.GetBalance(ctx, subID)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.RequireFromString("15")), "balance %s", balance)
}

func TestEngine_Settle_Idempotent(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	ctx := t.Context()
	ldg := ledger.New(db)
	engine := New(db, 48*time.Hour)

	subID, err := ldg.RegisterSubscriber(ctx, "79991112244", "Idempotent Subscriber")
	require.NoError(t, err)

	receipt, err := ldg.RecordPurchase(ctx, subID, 1000000, false)
	require.NoError(t, err)

	_, err = db.Exec(`UPDATE pending_credits SET created_at = now() - INTERVAL '72 hours' WHERE id = $1`,
		receipt.PendingCreditID)
	require.NoError(t, err)

	first, err := engine.Settle(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, first.Transferred)

	// the transferred row no longer matches the eligibility predicate
	second, err := engine.Settle(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 0, second.Eligible)
	require.Equal(t, 0, second.Transferred)

	balance, err := ldg.GetBalance(ctx, subID)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.RequireFromString("10")), "balance %s", balance)
}

func TestEngine_Settle_SubscriberScoped(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	ctx := t.Context()
	ldg := ledger.New(db)
	engine := New(db, 48*time.Hour)

	firstID, err := ldg.RegisterSubscriber(ctx, "79991112255", "First")
	require.NoError(t, err)
	secondID, err := ldg.RegisterSubscriber(ctx, "79991112266", "Second")
	require.NoError(t, err)

	_, err = ldg.RecordPurchase(ctx, firstID, 500000, false)
	require.NoError(t, err)
	_, err = ldg.RecordPurchase(ctx, secondID, 500000, false)
	require.NoError(t, err)

	_, err = db.Exec(`UPDATE pending_credits SET created_at = now() - INTERVAL '49 hours'`)
	require.NoError(t, err)

	summary, err := engine.Settle(ctx, &firstID)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Transferred)

	firstBalance, err := ldg.GetBalance(ctx, firstID)
	require.NoError(t, err)
	require.True(t, firstBalance.Equal(decimal.RequireFromString("5")))

	secondBalance, err := ldg.GetBalance(ctx, secondID)
	require.NoError(t, err)
	require.True(t, secondBalance.IsZero(), "untouched subscriber got %s", secondBalance)
}

// A credit whose transfer fails must not abort the run; the remaining
// credits still settle and the failure is counted.
func TestEngine_Settle_FaultIsolation(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	ctx := t.Context()
	ldg := ledger.New(db)
	engine := New(db, 48*time.Hour)

	brokenID, err := ldg.RegisterSubscriber(ctx, "79991112277", "Broken Credit")
	require.NoError(t, err)
	healthyID, err := ldg.RegisterSubscriber(ctx, "79991112288", "Healthy Credit")
	require.NoError(t, err)

	brokenReceipt, err := ldg.RecordPurchase(ctx, brokenID, 500000, false)
	require.NoError(t, err)
	_, err = ldg.RecordPurchase(ctx, healthyID, 500000, false)
	require.NoError(t, err)

	_, err = db.Exec(`UPDATE pending_credits SET created_at = now() - INTERVAL '49 hours'`)
	require.NoError(t, err)

	// corrupt one credit so its transfer trips the non-negative balance
	// constraint on the subscriber row
	_, err = db.Exec(`UPDATE pending_credits SET points = -100 WHERE id = $1`,
		brokenReceipt.PendingCreditID)
	require.NoError(t, err)

	summary, err := engine.Settle(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Eligible)
	require.Equal(t, 1, summary.Transferred)
	require.Equal(t, 1, summary.Faults)
	require.True(t, summary.Points.Equal(decimal.RequireFromString("5")))

	healthyBalance, err := ldg.GetBalance(ctx, healthyID)
	require.NoError(t, err)
	require.True(t, healthyBalance.Equal(decimal.RequireFromString("5")), "got %s", healthyBalance)

	brokenBalance, err := ldg.GetBalance(ctx, brokenID)
	require.NoError(t, err)
	require.True(t, brokenBalance.IsZero(), "failed transfer must not move the balance, got %s", brokenBalance)

	// the failed credit is still untransferred and retried next run
	var transferred bool
	err = db.QueryRow(`SELECT transferred FROM pending_credits WHERE id = $1`,
		brokenReceipt.PendingCreditID).Scan(&transferred)
	require.NoError(t, err)
	require.False(t, transferred)
}
