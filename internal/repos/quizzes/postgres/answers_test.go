package quizzes

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/quizearn/quizearn/internal/infra/pgtestutil"
	"github.com/quizearn/quizearn/internal/repos/quizzes"
)

func seedAccount(t *testing.T, db *sql.DB, id int64) {
	t.Helper()

	_, err := db.Exec(`INSERT INTO accounts (id, name) VALUES ($1, 'seed')`, id)
	if err != nil {
		t.Fatalf("seed account %d: %v", id, err)
	}
}

func addQuiz(t *testing.T, repo *quizzesRepo, question string) int64 {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := repo.Add(ctx, question, [4]string{"a", "b", "c", "d"}, 2)
	if err != nil {
		t.Fatalf("add quiz: %v", err)
	}

	return id
}

func TestQuizzes_RecordAnswer_DuplicateRejected(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	seedAccount(t, db, 1)
	quizID := addQuiz(t, repo, "q1")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	record := func(correct bool) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("begin tx: %v", err)
		}
		defer func() { _ = tx.Rollback() }()

		err = repo.RecordAnswer(tx, 1, quizID, correct)
		if err != nil {
			return err
		}

		return tx.Commit()
	}

	err := record(true)
	if err != nil {
		t.Fatalf("first record: %v", err)
	}

	err = record(false)
	if !errors.Is(err, quizzes.ErrAlreadyAnswered) {
		t.Fatalf("want ErrAlreadyAnswered, got %v", err)
	}

	// the losing insert must not have flipped the stored verdict
	answered, err := repo.HasAnswered(ctx, 1, quizID)
	if err != nil {
		t.Fatalf("has answered: %v", err)
	}
	if !answered {
		t.Fatalf("answer record missing")
	}

	correct, err := repo.CountCorrect(ctx, 1)
	if err != nil {
		t.Fatalf("count correct: %v", err)
	}
	if correct != 1 {
		t.Fatalf("correct count: want 1, got %d", correct)
	}
}

// Two transactions racing on the same (account, quiz) pair: exactly one
// commits, the other surfaces the duplicate.
func TestQuizzes_RecordAnswer_ConcurrentSingleWinner(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	seedAccount(t, db, 2)
	quizID := addQuiz(t, repo, "race")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	resCh := make(chan error, 2)

	worker := func() {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			resCh <- err
			return
		}
		defer func() { _ = tx.Rollback() }()

		err = repo.RecordAnswer(tx, 2, quizID, true)
		if err != nil {
			resCh <- err
			return
		}

		resCh <- tx.Commit()
	}

	go worker()
	go worker()

	var wins, dups int

	for i := 0; i < 2; i++ {
		err := <-resCh

		switch {
		case err == nil:
			wins++
		case errors.Is(err, quizzes.ErrAlreadyAnswered):
			dups++
		default:
			t.Fatalf("unexpected worker error: %v", err)
		}
	}

	if wins != 1 || dups != 1 {
		t.Fatalf("want exactly one winner and one duplicate, got wins=%d dups=%d", wins, dups)
	}
}
