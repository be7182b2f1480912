package giftcredits

import (
	"database/sql"

	"github.com/prodominocode/bamboclub-ledger/internal/repos/giftcredits"
)

var _ giftcredits.GiftCredits = (*giftCreditsRepo)(nil)

type giftCreditsRepo struct{ db *sql.DB }

func New(db *sql.DB) *giftCreditsRepo {
	return &giftCreditsRepo{db: db}
}
