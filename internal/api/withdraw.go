package api

import (
	"errors"
	"net/http"

	"github.com/quizearn/quizearn/internal/repos/accounts"
	"github.com/quizearn/quizearn/internal/services/withdraw"
)

// StartWithdrawHandler handles POST /account/{accountId}/withdraw/start
func (h *HandlerProvider) StartWithdrawHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	info, err := h.withdraw.Start(r.Context(), accountID)
	if err != nil {
		var (
			insufficient *withdraw.InsufficientBalanceError
			referrals    *withdraw.ReferralDeficitError
		)

		switch {
		case errors.Is(err, accounts.ErrAccountNotFound):
			writeError(w, http.StatusNotFound, "account not found")
		case errors.Is(err, withdraw.ErrAccountBanned):
			writeError(w, http.StatusForbidden, "account is banned")
		case errors.As(err, &insufficient):
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":  "insufficient balance",
				"reason": "insufficient_balance",
				"need":   formatAmount(insufficient.Need),
				"have":   formatAmount(insufficient.Have),
			})
		case errors.As(err, &referrals):
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":  "insufficient referrals",
				"reason": "insufficient_referrals",
				"need":   referrals.Need,
				"have":   referrals.Have,
			})
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"balance":     formatAmount(info.Balance),
		"minWithdraw": formatAmount(info.MinWithdraw),
		"methods":     info.Methods,
	})
}

type methodRequest struct {
	Method string `json:"method"`
}

// ChooseMethodHandler handles POST /account/{accountId}/withdraw/method
func (h *HandlerProvider) ChooseMethodHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	var req methodRequest

	err = decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	err = h.withdraw.ChooseMethod(accountID, req.Method)
	if err != nil {
		switch {
		case errors.Is(err, withdraw.ErrInvalidMethod):
			writeError(w, http.StatusBadRequest, "unknown payout method")
		case errors.Is(err, withdraw.ErrWrongStep):
			writeError(w, http.StatusConflict, "no withdrawal in progress at this step")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}

		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"next": "number"})
}

type numberRequest struct {
	Number string `json:"number"`
}

// SubmitNumberHandler handles POST /account/{accountId}/withdraw/number
func (h *HandlerProvider) SubmitNumberHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	var req numberRequest

	err = decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	err = h.withdraw.SubmitNumber(accountID, req.Number)
	if err != nil {
		switch {
		case errors.Is(err, withdraw.ErrInvalidNumber):
			// validation error: state unchanged, caller re-prompts
			writeError(w, http.StatusBadRequest, "number must be 11 digits starting with 01")
		case errors.Is(err, withdraw.ErrWrongStep):
			writeError(w, http.StatusConflict, "no withdrawal in progress at this step")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}

		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"next": "amount"})
}

type amountRequest struct {
	Amount string `json:"amount"`
}

// SubmitAmountHandler handles POST /account/{accountId}/withdraw/amount
func (h *HandlerProvider) SubmitAmountHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	var req amountRequest

	err = decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conf, err := h.withdraw.SubmitAmount(r.Context(), accountID, amount)
	if err != nil {
		var (
			belowMin     *withdraw.AmountBelowMinimumError
			insufficient *withdraw.InsufficientBalanceError
		)

		switch {
		case errors.As(err, &belowMin):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error": "amount below minimum",
				"min":   formatAmount(belowMin.Min),
			})
		case errors.As(err, &insufficient):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error": "amount exceeds balance",
				"need":  formatAmount(insufficient.Need),
				"have":  formatAmount(insufficient.Have),
			})
		case errors.Is(err, withdraw.ErrWrongStep):
			writeError(w, http.StatusConflict, "no withdrawal in progress at this step")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"amount":    formatAmount(conf.Amount),
		"fee":       formatAmount(conf.Fee),
		"netAmount": formatAmount(conf.NetAmount),
		"method":    conf.Method,
		"number":    conf.Number,
		"next":      "confirm",
	})
}

// ConfirmWithdrawHandler handles POST /account/{accountId}/withdraw/confirm
func (h *HandlerProvider) ConfirmWithdrawHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	receipt, err := h.withdraw.Confirm(r.Context(), accountID)
	if err != nil {
		var insufficient *withdraw.InsufficientBalanceError

		switch {
		case errors.As(err, &insufficient):
			writeJSON(w, http.StatusConflict, map[string]any{
				"error": "insufficient balance",
				"need":  formatAmount(insufficient.Need),
				"have":  formatAmount(insufficient.Have),
			})
		case errors.Is(err, withdraw.ErrWrongStep):
			writeError(w, http.StatusConflict, "no withdrawal in progress at this step")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"requestId": receipt.RequestID,
		"amount":    formatAmount(receipt.Amount),
		"netAmount": formatAmount(receipt.NetAmount),
		"method":    receipt.Method,
		"number":    receipt.Number,
		"status":    "pending",
	})
}

// CancelWithdrawHandler handles POST /account/{accountId}/withdraw/cancel
func (h *HandlerProvider) CancelWithdrawHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	h.withdraw.Cancel(accountID)

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
