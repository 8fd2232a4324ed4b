package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quizearn/quizearn/internal/repos/accounts"
)

func (r *accountsRepo) Get(ctx context.Context, id int64) (*accounts.Account, error) {
	var acc accounts.Account

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, username, balance, referral_count, referred_by, quiz_played, banned, created_at
		FROM accounts
		WHERE id = $1
	`, id).Scan(
		&acc.ID,
		&acc.Name,
		&acc.Username,
		&acc.Balance,
		&acc.ReferralCount,
		&acc.ReferredBy,
		&acc.QuizPlayed,
		&acc.Banned,
		&acc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accounts.ErrAccountNotFound
		}

		return nil, fmt.Errorf("get account: %w", err)
	}

	return &acc, nil
}
