package accounts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/quizearn/quizearn/internal/repos/accounts"
)

func (r *accountsRepo) LockBalance(tx *sql.Tx, id int64) (int64, error) {
	var balance int64

	err := tx.QueryRow(`
		SELECT balance
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("lock/get balance: %w", err)
	}

	return balance, nil
}

// ApplyDelta is the only balance mutation path besides the admin override:
// a single atomic add, never read-modify-write at the caller.
func (r *accountsRepo) ApplyDelta(tx *sql.Tx, id int64, delta int64) (bool, error) {
	res, err := tx.Exec(`
		UPDATE accounts
		SET balance = balance + $2
		WHERE id = $1
	`, id, delta)
	if err != nil {
		return false, fmt.Errorf("apply balance delta: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return affected == 1, nil
}

func (r *accountsRepo) SetBalance(ctx context.Context, id int64, amount int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET balance = $2
		WHERE id = $1
	`, id, amount)
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
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
