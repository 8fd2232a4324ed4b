package quizzes

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrNoQuizAvailable means the account has answered the whole catalog
	// (or the catalog is empty).
	ErrNoQuizAvailable = errors.New("no unanswered quiz available")
	// ErrAlreadyAnswered is the anti-replay guard surfacing: the
	// (account, quiz) pair already exists in the answer ledger.
	ErrAlreadyAnswered = errors.New("quiz already answered")
)

type Quiz struct {
	ID       int64
	Question string
	Options  [4]string
	Correct  int // 1..4
}

type Catalog interface {
	Add(ctx context.Context, question string, options [4]string, correct int) (int64, error)
	Get(ctx context.Context, id int64) (*Quiz, error)
	// PickUnanswered selects uniformly at random among quizzes the account
	// has never answered.
	PickUnanswered(ctx context.Context, accountID int64) (*Quiz, error)
	HasAnswered(ctx context.Context, accountID, quizID int64) (bool, error)
	// RecordAnswer inserts the unique (account, quiz) pair. A duplicate
	// insert returns ErrAlreadyAnswered with no effect; two concurrent
	// scoring attempts race on this single statement and only one wins.
	RecordAnswer(tx *sql.Tx, accountID, quizID int64, correct bool) error
	CountCorrect(ctx context.Context, accountID int64) (int, error)
	Total(ctx context.Context) (int, error)
}
