package accounts

import (
	"context"
	"fmt"

	"github.com/quizearn/quizearn/internal/repos/accounts"
)

func (r *accountsRepo) SetBanned(ctx context.Context, id int64, banned bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET banned = $2
		WHERE id = $1
	`, id, banned)
	if err != nil {
		return fmt.Errorf("set banned: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return accounts.ErrAccountNotFound
	}

	return nil
}

func (r *accountsRepo) ListActive(ctx context.Context) ([]accounts.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, username, balance, referral_count, referred_by, quiz_played, banned, created_at
		FROM accounts
		WHERE NOT banned
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("list active accounts: %w", err)
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// TopReferrers orders by referral count descending, ties broken by
// registration order via the seq column.
func (r *accountsRepo) TopReferrers(ctx context.Context, limit int) ([]accounts.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, username, balance, referral_count, referred_by, quiz_played, banned, created_at
		FROM accounts
		WHERE referral_count > 0
		ORDER BY referral_count DESC, seq ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("top referrers: %w", err)
	}
	defer rows.Close()

	return scanAccounts(rows)
}
