package purchases

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/prodominocode/bamboclub-ledger/internal/domain"
)

// ActivePoints rounds per purchase, matching how accrual converts each
// purchase on its own, so reconciliation and accrual can't drift apart
// on rounding.
func (r *purchasesRepo) ActivePoints(ctx context.Context, subscriberID int64) (decimal.Decimal, error) {
	var points decimal.Decimal

	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(ROUND(amount::numeric / $2, 2)), 0)
		FROM purchases
		WHERE subscriber_id = $1
		  AND active
		  AND NOT excluded_from_credit
	`, subscriberID, domain.PurchaseEarnDivisor).Scan(&points)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum active purchase points: %w", err)
	}

	return points, nil
}
