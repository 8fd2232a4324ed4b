// Package quizplay drives the per-account quiz session: present an
// unanswered quiz, then score the answer against the ledger. The active quiz
// is session scratch state held in memory only; a restart drops it with no
// money at stake, since nothing durable happens before scoring.
package quizplay

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/quizearn/quizearn/internal/infra/pgutils"
	"github.com/quizearn/quizearn/internal/repos/accounts"
	"github.com/quizearn/quizearn/internal/repos/quizzes"
	"github.com/quizearn/quizearn/internal/repos/settings"
)

var (
	ErrAccountBanned = errors.New("account is banned")
	// ErrSessionExpired means no quiz is currently presented to the account.
	ErrSessionExpired = errors.New("quiz session expired")
	ErrInvalidOption  = errors.New("option must be between 1 and 4")
)

// InsufficientBalanceError reports the deficit against the quiz cost.
type InsufficientBalanceError struct {
	Need int64
	Have int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: need %d, have %d", e.Need, e.Have)
}

type Service struct {
	db       *sql.DB
	accounts accounts.Accounts
	catalog  quizzes.Catalog
	settings settings.Settings

	mu     sync.Mutex
	active map[int64]int64 // account id -> presented quiz id
}

func New(db *sql.DB, accs accounts.Accounts, cat quizzes.Catalog, set settings.Settings) *Service {
	return &Service{
		db:       db,
		accounts: accs,
		catalog:  cat,
		settings: set,
		active:   make(map[int64]int64),
	}
}

type Presented struct {
	QuizID   int64
	Question string
	Options  [4]string
	Reward   int64
	Cost     int64
}

// Present checks the account can afford a round, picks a random unanswered
// quiz and stores it as the session's active quiz. The correct index never
// leaves the service.
func (s *Service) Present(ctx context.Context, accountID int64) (*Presented, error) {
	acc, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			return nil, accounts.ErrAccountNotFound
		}

		return nil, fmt.Errorf("get account: %w", err)
	}

	if acc.Banned {
		return nil, ErrAccountBanned
	}

	cost, err := s.settings.GetInt64(ctx, settings.KeyQuizCost)
	if err != nil {
		return nil, fmt.Errorf("read quiz cost: %w", err)
	}

	if acc.Balance < cost {
		return nil, &InsufficientBalanceError{Need: cost, Have: acc.Balance}
	}

	reward, err := s.settings.GetInt64(ctx, settings.KeyQuizReward)
	if err != nil {
		return nil, fmt.Errorf("read quiz reward: %w", err)
	}

	quiz, err := s.catalog.PickUnanswered(ctx, accountID)
	if err != nil {
		if errors.Is(err, quizzes.ErrNoQuizAvailable) {
			return nil, quizzes.ErrNoQuizAvailable
		}

		return nil, fmt.Errorf("pick unanswered quiz: %w", err)
	}

	s.mu.Lock()
	s.active[accountID] = quiz.ID
	s.mu.Unlock()

	return &Presented{
		QuizID:   quiz.ID,
		Question: quiz.Question,
		Options:  quiz.Options,
		Reward:   reward,
		Cost:     cost,
	}, nil
}

// Skip clears the active quiz with no balance effect.
func (s *Service) Skip(accountID int64) {
	s.mu.Lock()
	delete(s.active, accountID)
	s.mu.Unlock()
}

type Outcome struct {
	Correct       bool
	Reward        int64 // credited on a correct answer
	Cost          int64 // always charged for the attempt
	CorrectOption string // set on a wrong answer, for display
}

// Answer scores the active quiz exactly once. The answer-record insert runs
// first inside the transaction: a duplicate tap or a concurrent scoring
// attempt hits the ledger's uniqueness constraint and nothing is charged
// twice. The cost is charged for the attempt, win or lose; the balance is not
// re-validated here (it was checked at Present time) and may briefly go
// negative under concurrent debits, which is accepted since no withdrawal is
// permitted against a negative balance.
func (s *Service) Answer(ctx context.Context, accountID int64, option int) (*Outcome, error) {
	if option < 1 || option > 4 {
		return nil, ErrInvalidOption
	}

	s.mu.Lock()
	quizID, ok := s.active[accountID]
	s.mu.Unlock()

	if !ok {
		return nil, ErrSessionExpired
	}

	quiz, err := s.catalog.Get(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}

	cost, err := s.settings.GetInt64(ctx, settings.KeyQuizCost)
	if err != nil {
		return nil, fmt.Errorf("read quiz cost: %w", err)
	}

	reward, err := s.settings.GetInt64(ctx, settings.KeyQuizReward)
	if err != nil {
		return nil, fmt.Errorf("read quiz reward: %w", err)
	}

	correct := option == quiz.Correct

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		err := s.catalog.RecordAnswer(tx, accountID, quizID, correct)
		if err != nil {
			return fmt.Errorf("record answer: %w", err)
		}

		_, err = s.accounts.ApplyDelta(tx, accountID, -cost)
		if err != nil {
			return fmt.Errorf("debit quiz cost: %w", err)
		}

		if correct {
			_, err = s.accounts.ApplyDelta(tx, accountID, reward)
			if err != nil {
				return fmt.Errorf("credit quiz reward: %w", err)
			}
		}

		err = s.accounts.IncrementQuizPlayed(tx, accountID)
		if err != nil {
			return fmt.Errorf("increment quiz played: %w", err)
		}

		return nil
	})

	// The session is spent either way: on success the quiz is answered, on
	// a duplicate it was answered before.
	if err == nil || errors.Is(err, quizzes.ErrAlreadyAnswered) {
		s.mu.Lock()
		delete(s.active, accountID)
		s.mu.Unlock()
	}

	if err != nil {
		if errors.Is(err, quizzes.ErrAlreadyAnswered) {
			return nil, quizzes.ErrAlreadyAnswered
		}

		return nil, fmt.Errorf("score answer: %w", err)
	}

	out := &Outcome{Correct: correct, Reward: reward, Cost: cost}
	if !correct {
		out.Reward = 0
		out.CorrectOption = quiz.Options[quiz.Correct-1]
	}

	return out, nil
}
