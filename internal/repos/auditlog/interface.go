package auditlog

import (
	"context"
	"database/sql"

	"github.com/prodominocode/bamboclub-ledger/internal/domain"
)

// AuditLog is append-only. Balance corrections are silent from the
// subscriber's point of view, so every one of them leaves a row here.
type AuditLog interface {
	Insert(tx *sql.Tx, entry domain.AuditEntry) error
	ListBySubscriber(ctx context.Context, subscriberID int64, limit int) ([]domain.AuditEntry, error)
}
