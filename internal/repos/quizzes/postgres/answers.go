package quizzes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/quizearn/quizearn/internal/repos/quizzes"
)

// RecordAnswer relies on the primary key over (account_id, quiz_id) as the
// anti-replay guard; the application never does check-then-act here.
func (r *quizzesRepo) RecordAnswer(tx *sql.Tx, accountID, quizID int64, correct bool) error {
	_, err := tx.Exec(`
		INSERT INTO quiz_answers (account_id, quiz_id, correct)
		VALUES ($1, $2, $3)
	`, accountID, quizID, correct)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return quizzes.ErrAlreadyAnswered
			}
		}

		return fmt.Errorf("insert answer record: %w", err)
	}

	return nil
}

func (r *quizzesRepo) HasAnswered(ctx context.Context, accountID, quizID int64) (bool, error) {
	var answered bool

	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM quiz_answers WHERE account_id = $1 AND quiz_id = $2
		)
	`, accountID, quizID).Scan(&answered)
	if err != nil {
		return false, fmt.Errorf("check answered: %w", err)
	}

	return answered, nil
}

func (r *quizzesRepo) CountCorrect(ctx context.Context, accountID int64) (int, error) {
	var n int

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM quiz_answers WHERE account_id = $1 AND correct
	`, accountID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count correct answers: %w", err)
	}

	return n, nil
}
