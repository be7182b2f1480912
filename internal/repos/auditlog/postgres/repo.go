package auditlog

import (
	"database/sql"

	"github.com/prodominocode/bamboclub-ledger/internal/repos/auditlog"
)

var _ auditlog.AuditLog = (*auditLogRepo)(nil)

type auditLogRepo struct{ db *sql.DB }

func New(db *sql.DB) *auditLogRepo {
	return &auditLogRepo{db: db}
}
