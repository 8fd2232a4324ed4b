package withdrawals

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrRequestNotFound = errors.New("withdraw request not found")
	// ErrAlreadyProcessed means the request left pending before this
	// transition ran; a duplicate approve/reject tap lands here.
	ErrAlreadyProcessed = errors.New("withdraw request already processed")
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Request struct {
	ID          int64
	AccountID   int64
	Amount      int64 // debited from the account, minor units
	NetAmount   int64 // paid out after fee, minor units
	Method      string
	Number      string
	Status      string
	RequestedAt time.Time
	ProcessedAt *time.Time
}

type NewRequest struct {
	AccountID int64
	Amount    int64
	NetAmount int64
	Method    string
	Number    string
}

type Requests interface {
	// Insert creates the durable pending request. It runs inside the same
	// transaction as the balance debit so the two apply as one unit.
	Insert(tx *sql.Tx, req NewRequest) (int64, error)
	Get(ctx context.Context, id int64) (*Request, error)
	ListByStatus(ctx context.Context, status string) ([]Request, error)
	CountByStatus(ctx context.Context, status string) (int, error)
	// SetStatus transitions pending -> status in one guarded statement;
	// a request already in a terminal state returns ErrAlreadyProcessed.
	SetStatus(ctx context.Context, id int64, status string) error
}
