package withdraw

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quizearn/quizearn/internal/repos/withdrawals"
)

// Approve transitions the request pending -> approved. A request already in
// a terminal state returns withdrawals.ErrAlreadyProcessed and is never
// transitioned twice. Rejection does not re-credit the debited amount; funds
// are held for manual reconciliation.
func (s *Service) Approve(ctx context.Context, requestID int64) error {
	err := s.requests.SetStatus(ctx, requestID, withdrawals.StatusApproved)
	if err != nil {
		return fmt.Errorf("approve request: %w", err)
	}

	return nil
}

func (s *Service) Reject(ctx context.Context, requestID int64) error {
	err := s.requests.SetStatus(ctx, requestID, withdrawals.StatusRejected)
	if err != nil {
		return fmt.Errorf("reject request: %w", err)
	}

	return nil
}

func (s *Service) ListPending(ctx context.Context) ([]withdrawals.Request, error) {
	reqs, err := s.requests.ListByStatus(ctx, withdrawals.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}

	return reqs, nil
}

// RemindPending publishes a best-effort reminder with the current pending
// count to the administrative channel. It takes no ledger locks.
func (s *Service) RemindPending(ctx context.Context) error {
	pending, err := s.requests.CountByStatus(ctx, withdrawals.StatusPending)
	if err != nil {
		return fmt.Errorf("count pending requests: %w", err)
	}

	if pending == 0 {
		return nil
	}

	err = s.notifier.PendingReminder(ctx, pending)
	if err != nil {
		return fmt.Errorf("publish pending reminder: %w", err)
	}

	return nil
}

func logNotifyFailure(requestID int64, err error) {
	slog.Error("failed to notify admin channel", "request_id", requestID, "error", err)
}
