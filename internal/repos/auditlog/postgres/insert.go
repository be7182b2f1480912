package auditlog

import (
	"database/sql"
	"fmt"

	"github.com/prodominocode/bamboclub-ledger/internal/domain"
)

func (r *auditLogRepo) Insert(tx *sql.Tx, entry domain.AuditEntry) error {
	_, err := tx.Exec(`
		INSERT INTO balance_audit_log (subscriber_id, action, balance_before, balance_after, reason)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.SubscriberID, entry.Action, entry.BalanceBefore, entry.BalanceAfter, entry.Reason)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	return nil
}
