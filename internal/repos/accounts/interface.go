package accounts

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrAccountNotFound = errors.New("account not found")

type Account struct {
	ID            int64
	Name          string
	Username      string
	Balance       int64 // minor units
	ReferralCount int
	ReferredBy    *int64
	QuizPlayed    int
	Banned        bool
	CreatedAt     time.Time
}

type NewAccount struct {
	ID         int64
	Name       string
	Username   string
	ReferredBy *int64
}

type Accounts interface {
	// Create is idempotent: it reports false and leaves the existing row
	// untouched when the account id is already registered.
	Create(tx *sql.Tx, acc NewAccount) (bool, error)
	Get(ctx context.Context, id int64) (*Account, error)
	LockBalance(tx *sql.Tx, id int64) (int64, error)
	// ApplyDelta adds delta (positive or negative) to the stored balance in a
	// single statement. It reports false when the account does not exist.
	ApplyDelta(tx *sql.Tx, id int64, delta int64) (bool, error)
	SetBalance(ctx context.Context, id int64, amount int64) error
	IncrementReferrals(tx *sql.Tx, id int64) error
	IncrementQuizPlayed(tx *sql.Tx, id int64) error
	SetBanned(ctx context.Context, id int64, banned bool) error
	ListActive(ctx context.Context) ([]Account, error)
	TopReferrers(ctx context.Context, limit int) ([]Account, error)
}
