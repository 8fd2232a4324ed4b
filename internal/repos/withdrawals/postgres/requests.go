package withdrawals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quizearn/quizearn/internal/repos/withdrawals"
)

func (r *withdrawalsRepo) Insert(tx *sql.Tx, req withdrawals.NewRequest) (int64, error) {
	var id int64

	err := tx.QueryRow(`
		INSERT INTO withdraw_requests (account_id, amount, net_amount, method, number, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, req.AccountID, req.Amount, req.NetAmount, req.Method, req.Number, withdrawals.StatusPending).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert withdraw request: %w", err)
	}

	return id, nil
}

func (r *withdrawalsRepo) Get(ctx context.Context, id int64) (*withdrawals.Request, error) {
	var req withdrawals.Request

	err := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, amount, net_amount, method, number, status, requested_at, processed_at
		FROM withdraw_requests
		WHERE id = $1
	`, id).Scan(
		&req.ID,
		&req.AccountID,
		&req.Amount,
		&req.NetAmount,
		&req.Method,
		&req.Number,
		&req.Status,
		&req.RequestedAt,
		&req.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, withdrawals.ErrRequestNotFound
		}

		return nil, fmt.Errorf("get withdraw request: %w", err)
	}

	return &req, nil
}

func (r *withdrawalsRepo) ListByStatus(ctx context.Context, status string) ([]withdrawals.Request, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, amount, net_amount, method, number, status, requested_at, processed_at
		FROM withdraw_requests
		WHERE status = $1
		ORDER BY id DESC
	`, status)
	if err != nil {
		return nil, fmt.Errorf("list withdraw requests: %w", err)
	}
	defer rows.Close()

	var out []withdrawals.Request

	for rows.Next() {
		var req withdrawals.Request

		err := rows.Scan(
			&req.ID,
			&req.AccountID,
			&req.Amount,
			&req.NetAmount,
			&req.Method,
			&req.Number,
			&req.Status,
			&req.RequestedAt,
			&req.ProcessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan withdraw request: %w", err)
		}

		out = append(out, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate withdraw requests: %w", err)
	}

	return out, nil
}

func (r *withdrawalsRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM withdraw_requests WHERE status = $1
	`, status).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count withdraw requests: %w", err)
	}

	return n, nil
}

// SetStatus only ever transitions out of pending. The status predicate in the
// UPDATE is the guard: a second approve or reject affects zero rows.
func (r *withdrawalsRepo) SetStatus(ctx context.Context, id int64, status string) error {
	if status != withdrawals.StatusApproved && status != withdrawals.StatusRejected {
		return fmt.Errorf("invalid target status %q", status)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE withdraw_requests
		SET status = $2, processed_at = now()
		WHERE id = $1
		  AND status = $3
	`, id, status, withdrawals.StatusPending)
	if err != nil {
		return fmt.Errorf("update withdraw status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 1 {
		return nil
	}

	// Zero rows: either the id is unknown or the request is terminal.
	_, err = r.Get(ctx, id)
	if err != nil {
		return err
	}

	return withdrawals.ErrAlreadyProcessed
}
