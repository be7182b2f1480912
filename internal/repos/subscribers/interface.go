package subscribers

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/prodominocode/bamboclub-ledger/internal/domain"
)

var (
	ErrSubscriberNotFound  = errors.New("subscriber not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateMobile     = errors.New("mobile number already registered")
)

// Subscribers is the balance row. Methods taking *sql.Tx participate in a
// transaction owned by the calling service; LockAndGetBalance must be
// called before any read-then-write of the balance.
type Subscribers interface {
	Create(ctx context.Context, mobile, name string) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Subscriber, error)
	List(ctx context.Context) ([]domain.Subscriber, error)
	Exists(tx *sql.Tx, id int64) error
	GetBalance(ctx context.Context, id int64) (decimal.Decimal, error)
	LockAndGetBalance(tx *sql.Tx, id int64) (decimal.Decimal, error)
	IncreaseBalance(tx *sql.Tx, id int64, points decimal.Decimal) error
	DecreaseBalance(tx *sql.Tx, id int64, points decimal.Decimal) error
	SetBalance(tx *sql.Tx, id int64, balance decimal.Decimal) error
}
