package auditlog

import (
	"context"
	"fmt"

	"github.com/prodominocode/bamboclub-ledger/internal/domain"
)

func (r *auditLogRepo) ListBySubscriber(ctx context.Context, subscriberID int64, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, subscriber_id, action, balance_before, balance_after, reason, created_at
		FROM balance_audit_log
		WHERE subscriber_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, subscriberID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry

	for rows.Next() {
		var e domain.AuditEntry

		err = rows.Scan(&e.ID, &e.SubscriberID, &e.Action, &e.BalanceBefore, &e.BalanceAfter, &e.Reason, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}

		entries = append(entries, e)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}

	return entries, nil
}
