package creditusages

import (
	"database/sql"

	"github.com/prodominocode/bamboclub-ledger/internal/repos/creditusages"
)

var _ creditusages.CreditUsages = (*creditUsagesRepo)(nil)

type creditUsagesRepo struct{ db *sql.DB }

func New(db *sql.DB) *creditUsagesRepo {
	return &creditUsagesRepo{db: db}
}
