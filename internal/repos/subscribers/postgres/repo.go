package subscribers

import (
	"database/sql"

	"github.com/prodominocode/bamboclub-ledger/internal/repos/subscribers"
)

var _ subscribers.Subscribers = (*subscribersRepo)(nil)

type subscribersRepo struct{ db *sql.DB }

func New(db *sql.DB) *subscribersRepo {
	return &subscribersRepo{db: db}
}
