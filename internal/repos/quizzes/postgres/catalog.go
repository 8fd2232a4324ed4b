package quizzes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quizearn/quizearn/internal/repos/quizzes"
)

func (r *quizzesRepo) Add(ctx context.Context, question string, options [4]string, correct int) (int64, error) {
	if correct < 1 || correct > 4 {
		return 0, fmt.Errorf("correct option %d out of range", correct)
	}

	var id int64

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO quizzes (question, option1, option2, option3, option4, correct_option)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, question, options[0], options[1], options[2], options[3], correct).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert quiz: %w", err)
	}

	return id, nil
}

func (r *quizzesRepo) Get(ctx context.Context, id int64) (*quizzes.Quiz, error) {
	q, err := scanQuiz(r.db.QueryRowContext(ctx, `
		SELECT id, question, option1, option2, option3, option4, correct_option
		FROM quizzes
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, quizzes.ErrQuizNotFound
		}

		return nil, fmt.Errorf("get quiz: %w", err)
	}

	return q, nil
}

// PickUnanswered excludes the account's full answered history; fine for the
// small catalogs this serves. At larger scale this would need a "remaining"
// index instead of NOT IN over the ledger.
func (r *quizzesRepo) PickUnanswered(ctx context.Context, accountID int64) (*quizzes.Quiz, error) {
	q, err := scanQuiz(r.db.QueryRowContext(ctx, `
		SELECT id, question, option1, option2, option3, option4, correct_option
		FROM quizzes
		WHERE id NOT IN (
			SELECT quiz_id FROM quiz_answers WHERE account_id = $1
		)
		ORDER BY random()
		LIMIT 1
	`, accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, quizzes.ErrNoQuizAvailable
		}

		return nil, fmt.Errorf("pick unanswered quiz: %w", err)
	}

	return q, nil
}

func (r *quizzesRepo) Total(ctx context.Context) (int, error) {
	var n int

	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quizzes`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count quizzes: %w", err)
	}

	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row rowScanner) (*quizzes.Quiz, error) {
	var q quizzes.Quiz

	err := row.Scan(
		&q.ID,
		&q.Question,
		&q.Options[0],
		&q.Options[1],
		&q.Options[2],
		&q.Options[3],
		&q.Correct,
	)
	if err != nil {
		return nil, err
	}

	return &q, nil
}
