package subscribers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prodominocode/bamboclub-ledger/internal/domain"
	"github.com/prodominocode/bamboclub-ledger/internal/repos/subscribers"
)

func (r *subscribersRepo) Get(ctx context.Context, id int64) (*domain.Subscriber, error) {
	var s domain.Subscriber

	err := r.db.QueryRowContext(ctx, `
		SELECT id, mobile, name, balance, created_at
		FROM subscribers
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Mobile, &s.Name, &s.Balance, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, subscribers.ErrSubscriberNotFound
		}

		return nil, fmt.Errorf("get subscriber: %w", err)
	}

	return &s, nil
}

func (r *subscribersRepo) List(ctx context.Context) ([]domain.Subscriber, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, mobile, name, balance, created_at
		FROM subscribers
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	var subs []domain.Subscriber

	for rows.Next() {
		var s domain.Subscriber

		err = rows.Scan(&s.ID, &s.Mobile, &s.Name, &s.Balance, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}

		subs = append(subs, s)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", err)
	}

	return subs, nil
}
