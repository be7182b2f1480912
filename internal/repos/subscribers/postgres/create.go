package subscribers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/prodominocode/bamboclub-ledger/internal/repos/subscribers"
)

func (r *subscribersRepo) Create(ctx context.Context, mobile, name string) (int64, error) {
	var id int64

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO subscribers (mobile, name)
		VALUES ($1, $2)
		RETURNING id
	`, mobile, name).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return 0, subscribers.ErrDuplicateMobile
		}

		return 0, fmt.Errorf("insert subscriber: %w", err)
	}

	return id, nil
}
