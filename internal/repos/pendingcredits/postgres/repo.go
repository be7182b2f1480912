package pendingcredits

import (
	"database/sql"

	"github.com/prodominocode/bamboclub-ledger/internal/repos/pendingcredits"
)

var _ pendingcredits.PendingCredits = (*pendingCreditsRepo)(nil)

type pendingCreditsRepo struct{ db *sql.DB }

func New(db *sql.DB) *pendingCreditsRepo {
	return &pendingCreditsRepo{db: db}
}
