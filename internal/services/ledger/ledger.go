package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quizearn/quizearn/internal/infra/pgutils"
	"github.com/quizearn/quizearn/internal/repos/accounts"
	"github.com/quizearn/quizearn/internal/repos/quizzes"
	"github.com/quizearn/quizearn/internal/repos/settings"
)

// Service owns registration (including the one-shot referral credit) and the
// administrative account operations.
type Service struct {
	db       *sql.DB
	accounts accounts.Accounts
	quizzes  quizzes.Catalog
	settings settings.Settings
}

func New(db *sql.DB, accs accounts.Accounts, cat quizzes.Catalog, set settings.Settings) *Service {
	return &Service{
		db:       db,
		accounts: accs,
		quizzes:  cat,
		settings: set,
	}
}

type RegisterInput struct {
	ID         int64
	Name       string
	Username   string
	ReferrerID *int64
}

// Register creates the account if it does not exist yet and, only on that
// first creation, credits the referrer. The referral credit is gated on the
// insert's created flag inside the same transaction, so a retried
// registration can never pay the bonus twice.
func (s *Service) Register(ctx context.Context, in RegisterInput) (bool, error) {
	referrerID := in.ReferrerID
	if referrerID != nil && *referrerID == in.ID {
		// self-referral is silently ignored, not an error
		referrerID = nil
	}

	bonus, err := s.settings.GetInt64(ctx, settings.KeyReferralBonus)
	if err != nil {
		return false, fmt.Errorf("read referral bonus: %w", err)
	}

	var created bool

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error

		created, err = s.accounts.Create(tx, accounts.NewAccount{
			ID:         in.ID,
			Name:       in.Name,
			Username:   in.Username,
			ReferredBy: referrerID,
		})
		if err != nil {
			return fmt.Errorf("create account: %w", err)
		}

		if !created || referrerID == nil {
			return nil
		}

		// ApplyDelta reports false for an unknown referrer; the
		// registration itself still succeeds.
		applied, err := s.accounts.ApplyDelta(tx, *referrerID, bonus)
		if err != nil {
			return fmt.Errorf("credit referral bonus: %w", err)
		}

		if !applied {
			return nil
		}

		err = s.accounts.IncrementReferrals(tx, *referrerID)
		if err != nil {
			return fmt.Errorf("increment referral count: %w", err)
		}

		return nil
	})
	if err != nil {
		return false, fmt.Errorf("register: %w", err)
	}

	return created, nil
}

type Profile struct {
	Account        accounts.Account
	CorrectAnswers int
	TotalQuizzes   int
}

func (s *Service) Profile(ctx context.Context, id int64) (*Profile, error) {
	acc, err := s.accounts.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	correct, err := s.quizzes.CountCorrect(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count correct answers: %w", err)
	}

	total, err := s.quizzes.Total(ctx)
	if err != nil {
		return nil, fmt.Errorf("count quizzes: %w", err)
	}

	return &Profile{Account: *acc, CorrectAnswers: correct, TotalQuizzes: total}, nil
}

func (s *Service) TopReferrers(ctx context.Context, limit int) ([]accounts.Account, error) {
	refs, err := s.accounts.TopReferrers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("top referrers: %w", err)
	}

	return refs, nil
}

// AdjustBalance applies an administrative delta (positive add, negative
// deduct) as a single atomic operation.
func (s *Service) AdjustBalance(ctx context.Context, id int64, delta int64) error {
	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		applied, err := s.accounts.ApplyDelta(tx, id, delta)
		if err != nil {
			return fmt.Errorf("apply delta: %w", err)
		}

		if !applied {
			return accounts.ErrAccountNotFound
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			return accounts.ErrAccountNotFound
		}

		return fmt.Errorf("adjust balance: %w", err)
	}

	return nil
}

// SetBalance is the administrative absolute override.
func (s *Service) SetBalance(ctx context.Context, id int64, amount int64) error {
	err := s.accounts.SetBalance(ctx, id, amount)
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}

	return nil
}

func (s *Service) SetBanned(ctx context.Context, id int64, banned bool) error {
	err := s.accounts.SetBanned(ctx, id, banned)
	if err != nil {
		return fmt.Errorf("set banned: %w", err)
	}

	return nil
}

func (s *Service) UpdateSetting(ctx context.Context, key, value string) error {
	err := s.settings.Set(ctx, key, value)
	if err != nil {
		return fmt.Errorf("update setting: %w", err)
	}

	return nil
}

func (s *Service) GetSetting(ctx context.Context, key string) (string, error) {
	value, err := s.settings.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("get setting: %w", err)
	}

	return value, nil
}
