// Package withdraw drives the multi-step withdrawal wizard and the
// administrative approve/reject transitions. Wizard fields are session
// scratch state in memory only; nothing durable happens until Confirm, so a
// restart discards in-progress wizards without losing money.
package withdraw

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/quizearn/quizearn/internal/infra/pgutils"
	"github.com/quizearn/quizearn/internal/repos/accounts"
	"github.com/quizearn/quizearn/internal/repos/settings"
	"github.com/quizearn/quizearn/internal/repos/withdrawals"
)

var (
	ErrAccountBanned = errors.New("account is banned")
	// ErrWrongStep means the inbound event does not match the wizard's
	// current state (e.g. an amount arrived before a number).
	ErrWrongStep     = errors.New("unexpected wizard step")
	ErrInvalidMethod = errors.New("unknown payout method")
	// ErrInvalidNumber re-prompts the same step: exactly 11 digits,
	// starting with 01.
	ErrInvalidNumber = errors.New("invalid destination number")
)

// InsufficientBalanceError reports the deficit against the minimum or the
// requested amount.
type InsufficientBalanceError struct {
	Need int64
	Have int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: need %d, have %d", e.Need, e.Have)
}

// ReferralDeficitError reports how many referrals are still missing.
type ReferralDeficitError struct {
	Need int
	Have int
}

func (e *ReferralDeficitError) Error() string {
	return fmt.Sprintf("insufficient referrals: need %d, have %d", e.Need, e.Have)
}

// AmountBelowMinimumError re-prompts the amount step.
type AmountBelowMinimumError struct {
	Min int64
}

func (e *AmountBelowMinimumError) Error() string {
	return fmt.Sprintf("amount below minimum withdraw of %d", e.Min)
}

// Methods accepted by the payout flow.
var Methods = []string{"bKash", "Nagad"}

type wizardState int

const (
	// absence from the wizards map is the idle state
	stateMethodSelect wizardState = iota + 1
	stateNumberInput
	stateAmountInput
	stateConfirmPending
)

type wizard struct {
	state  wizardState
	method string
	number string
	amount int64
	net    int64
}

// RequestNotice is the event published to the administrative channel when a
// withdrawal request is created.
type RequestNotice struct {
	EventID   string `json:"event_id"`
	RequestID int64  `json:"request_id"`
	AccountID int64  `json:"account_id"`
	Name      string `json:"name"`
	Amount    int64  `json:"amount"`
	NetAmount int64  `json:"net_amount"`
	Method    string `json:"method"`
	Number    string `json:"number"`
}

// Notifier delivers best-effort messages to the administrative channel.
// Failures never roll back the ledger mutation they follow.
type Notifier interface {
	WithdrawalRequested(ctx context.Context, notice RequestNotice) error
	PendingReminder(ctx context.Context, pending int) error
}

// NopNotifier is used when no notification transport is configured.
type NopNotifier struct{}

func (NopNotifier) WithdrawalRequested(context.Context, RequestNotice) error { return nil }
func (NopNotifier) PendingReminder(context.Context, int) error               { return nil }

type Service struct {
	db       *sql.DB
	accounts accounts.Accounts
	requests withdrawals.Requests
	settings settings.Settings
	notifier Notifier

	mu      sync.Mutex
	wizards map[int64]*wizard
}

func New(db *sql.DB, accs accounts.Accounts, reqs withdrawals.Requests, set settings.Settings, notifier Notifier) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &Service{
		db:       db,
		accounts: accs,
		requests: reqs,
		settings: set,
		notifier: notifier,
		wizards:  make(map[int64]*wizard),
	}
}

type StartInfo struct {
	Balance     int64
	MinWithdraw int64
	Methods     []string
}

// Start gates eligibility and opens a fresh wizard, discarding any stale one
// so old fields can never leak into a new attempt.
func (s *Service) Start(ctx context.Context, accountID int64) (*StartInfo, error) {
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

	minReferral, err := s.settings.GetInt64(ctx, settings.KeyMinReferral)
	if err != nil {
		return nil, fmt.Errorf("read min referral: %w", err)
	}

	if int64(acc.ReferralCount) < minReferral {
		return nil, &ReferralDeficitError{Need: int(minReferral), Have: acc.ReferralCount}
	}

	minWithdraw, err := s.settings.GetInt64(ctx, settings.KeyMinWithdraw)
	if err != nil {
		return nil, fmt.Errorf("read min withdraw: %w", err)
	}

	if acc.Balance < minWithdraw {
		return nil, &InsufficientBalanceError{Need: minWithdraw, Have: acc.Balance}
	}

	s.mu.Lock()
	s.wizards[accountID] = &wizard{state: stateMethodSelect}
	s.mu.Unlock()

	return &StartInfo{
		Balance:     acc.Balance,
		MinWithdraw: minWithdraw,
		Methods:     Methods,
	}, nil
}

func (s *Service) ChooseMethod(accountID int64, method string) error {
	var chosen string

	for _, m := range Methods {
		if m == method {
			chosen = m
			break
		}
	}

	if chosen == "" {
		return ErrInvalidMethod
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wizards[accountID]
	if !ok || w.state != stateMethodSelect {
		return ErrWrongStep
	}

	w.method = chosen
	w.state = stateNumberInput

	return nil
}

func (s *Service) SubmitNumber(accountID int64, number string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wizards[accountID]
	if !ok || w.state != stateNumberInput {
		return ErrWrongStep
	}

	if !validNumber(number) {
		// state unchanged, caller re-prompts
		return ErrInvalidNumber
	}

	w.number = number
	w.state = stateAmountInput

	return nil
}

// validNumber checks the fixed local mobile format: 11 digits starting 01.
func validNumber(number string) bool {
	if len(number) != 11 {
		return false
	}

	for _, c := range number {
		if c < '0' || c > '9' {
			return false
		}
	}

	return number[0] == '0' && number[1] == '1'
}

type Confirmation struct {
	Amount    int64
	Fee       int64
	NetAmount int64
	Method    string
	Number    string
}

// SubmitAmount validates the requested amount against the minimum and the
// current balance (re-read here, not just at Start) and computes the net
// payable. The fee never drives the payout negative; if it would, the full
// amount is paid.
func (s *Service) SubmitAmount(ctx context.Context, accountID int64, amount int64) (*Confirmation, error) {
	s.mu.Lock()
	w, ok := s.wizards[accountID]
	if !ok || w.state != stateAmountInput {
		s.mu.Unlock()
		return nil, ErrWrongStep
	}
	s.mu.Unlock()

	minWithdraw, err := s.settings.GetInt64(ctx, settings.KeyMinWithdraw)
	if err != nil {
		return nil, fmt.Errorf("read min withdraw: %w", err)
	}

	if amount < minWithdraw {
		return nil, &AmountBelowMinimumError{Min: minWithdraw}
	}

	acc, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	if amount > acc.Balance {
		return nil, &InsufficientBalanceError{Need: amount, Have: acc.Balance}
	}

	fee, err := s.settings.GetInt64(ctx, settings.KeyWithdrawFee)
	if err != nil {
		return nil, fmt.Errorf("read withdraw fee: %w", err)
	}

	net := amount - fee
	if net < 0 {
		net = amount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok = s.wizards[accountID]
	if !ok || w.state != stateAmountInput {
		return nil, ErrWrongStep
	}

	w.amount = amount
	w.net = net
	w.state = stateConfirmPending

	return &Confirmation{
		Amount:    amount,
		Fee:       fee,
		NetAmount: net,
		Method:    w.method,
		Number:    w.number,
	}, nil
}

type Receipt struct {
	RequestID int64
	Amount    int64
	NetAmount int64
	Method    string
	Number    string
}

// Confirm re-validates the balance one final time under a row lock, debits
// the full requested amount and creates the pending request as a single
// transaction: no debit without a request, no request without the debit. On
// any failure the wizard terminates with no durable effect.
func (s *Service) Confirm(ctx context.Context, accountID int64) (*Receipt, error) {
	s.mu.Lock()
	w, ok := s.wizards[accountID]
	if !ok || w.state != stateConfirmPending {
		s.mu.Unlock()
		return nil, ErrWrongStep
	}

	// The wizard is spent from here on, whichever way Confirm goes.
	delete(s.wizards, accountID)
	s.mu.Unlock()

	acc, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	var requestID int64

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		balance, err := s.accounts.LockBalance(tx, accountID)
		if err != nil {
			return fmt.Errorf("lock balance: %w", err)
		}

		// balance may have dropped since the amount step, e.g. from a
		// quiz loss in another session
		if balance < w.amount {
			return &InsufficientBalanceError{Need: w.amount, Have: balance}
		}

		applied, err := s.accounts.ApplyDelta(tx, accountID, -w.amount)
		if err != nil {
			return fmt.Errorf("debit balance: %w", err)
		}

		if !applied {
			return accounts.ErrAccountNotFound
		}

		requestID, err = s.requests.Insert(tx, withdrawals.NewRequest{
			AccountID: accountID,
			Amount:    w.amount,
			NetAmount: w.net,
			Method:    w.method,
			Number:    w.number,
		})
		if err != nil {
			return fmt.Errorf("insert request: %w", err)
		}

		return nil
	})
	if err != nil {
		var insufficient *InsufficientBalanceError
		if errors.As(err, &insufficient) {
			return nil, insufficient
		}

		return nil, fmt.Errorf("confirm withdraw: %w", err)
	}

	// Best effort: the request is the source of truth, notification is not.
	nerr := s.notifier.WithdrawalRequested(ctx, RequestNotice{
		EventID:   uuid.NewString(),
		RequestID: requestID,
		AccountID: accountID,
		Name:      acc.Name,
		Amount:    w.amount,
		NetAmount: w.net,
		Method:    w.method,
		Number:    w.number,
	})
	if nerr != nil {
		logNotifyFailure(requestID, nerr)
	}

	return &Receipt{
		RequestID: requestID,
		Amount:    w.amount,
		NetAmount: w.net,
		Method:    w.method,
		Number:    w.number,
	}, nil
}

// Cancel discards the wizard from any step with no durable effect.
func (s *Service) Cancel(accountID int64) {
	s.mu.Lock()
	delete(s.wizards, accountID)
	s.mu.Unlock()
}
