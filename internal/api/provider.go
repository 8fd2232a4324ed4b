package api

import (
	"github.com/quizearn/quizearn/internal/services/ledger"
	"github.com/quizearn/quizearn/internal/services/quizplay"
	"github.com/quizearn/quizearn/internal/services/withdraw"
)

// HandlerProvider wraps the ledger, quiz session and withdrawal services and
// exposes their HTTP handlers.
type HandlerProvider struct {
	ledger   *ledger.Service
	quiz     *quizplay.Service
	withdraw *withdraw.Service
}

// NewHandler returns a new Handler provider.
func NewHandler(led *ledger.Service, quiz *quizplay.Service, wd *withdraw.Service) *HandlerProvider {
	return &HandlerProvider{ledger: led, quiz: quiz, withdraw: wd}
}
