package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quizearn/quizearn/internal/repos/accounts"
	"github.com/quizearn/quizearn/internal/repos/settings"
	"github.com/quizearn/quizearn/internal/repos/withdrawals"
)

func parseRequestIDFromPath(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "requestId")
	if idStr == "" {
		return 0, fmt.Errorf("missing requestId")
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid requestId")
	}

	return id, nil
}

// ListWithdrawalsHandler handles GET /admin/withdrawals
func (h *HandlerProvider) ListWithdrawalsHandler(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.withdraw.ListPending(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	type entry struct {
		RequestID   int64  `json:"requestId"`
		AccountID   int64  `json:"accountId"`
		Amount      string `json:"amount"`
		NetAmount   string `json:"netAmount"`
		Method      string `json:"method"`
		Number      string `json:"number"`
		RequestedAt string `json:"requestedAt"`
	}

	out := make([]entry, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, entry{
			RequestID:   req.ID,
			AccountID:   req.AccountID,
			Amount:      formatAmount(req.Amount),
			NetAmount:   formatAmount(req.NetAmount),
			Method:      req.Method,
			Number:      req.Number,
			RequestedAt: req.RequestedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"pending": out})
}

func (h *HandlerProvider) transitionWithdrawal(w http.ResponseWriter, r *http.Request, approve bool) {
	requestID, err := parseRequestIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid requestId in path")
		return
	}

	if approve {
		err = h.withdraw.Approve(r.Context(), requestID)
	} else {
		err = h.withdraw.Reject(r.Context(), requestID)
	}

	if err != nil {
		switch {
		case errors.Is(err, withdrawals.ErrRequestNotFound):
			writeError(w, http.StatusNotFound, "withdraw request not found")
		case errors.Is(err, withdrawals.ErrAlreadyProcessed):
			// duplicate tap on the admin button: benign no-op
			writeError(w, http.StatusConflict, "request already processed")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}

		return
	}

	status := withdrawals.StatusRejected
	if approve {
		status = withdrawals.StatusApproved
	}

	writeJSON(w, http.StatusOK, map[string]any{"requestId": requestID, "status": status})
}

// ApproveWithdrawalHandler handles POST /admin/withdrawals/{requestId}/approve
func (h *HandlerProvider) ApproveWithdrawalHandler(w http.ResponseWriter, r *http.Request) {
	h.transitionWithdrawal(w, r, true)
}

// RejectWithdrawalHandler handles POST /admin/withdrawals/{requestId}/reject
func (h *HandlerProvider) RejectWithdrawalHandler(w http.ResponseWriter, r *http.Request) {
	h.transitionWithdrawal(w, r, false)
}

// GetSettingHandler handles GET /admin/settings/{key}
func (h *HandlerProvider) GetSettingHandler(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	value, err := h.ledger.GetSetting(r.Context(), key)
	if err != nil {
		if errors.Is(err, settings.ErrUnknownKey) {
			writeError(w, http.StatusNotFound, "unknown setting key")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := map[string]string{"key": key, "value": value}
	if settings.IsMoneyKey(key) {
		minor, perr := strconv.ParseInt(value, 10, 64)
		if perr == nil {
			resp["value"] = formatAmount(minor)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type settingRequest struct {
	Value string `json:"value"`
}

// UpdateSettingHandler handles PUT /admin/settings/{key}. Money values are
// decimal strings; counters are plain integers. The store is read fresh on
// every decision point, so the change applies to in-flight sessions on their
// next read.
func (h *HandlerProvider) UpdateSettingHandler(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req settingRequest

	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var stored string

	if settings.IsMoneyKey(key) {
		minor, perr := parseDecimalMinor(req.Value)
		if perr != nil || minor < 0 {
			writeError(w, http.StatusBadRequest, "value must be a non-negative decimal amount")
			return
		}

		stored = strconv.FormatInt(minor, 10)
	} else {
		n, perr := strconv.ParseInt(req.Value, 10, 64)
		if perr != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "value must be a non-negative integer")
			return
		}

		stored = strconv.FormatInt(n, 10)
	}

	err = h.ledger.UpdateSetting(r.Context(), key, stored)
	if err != nil {
		if errors.Is(err, settings.ErrUnknownKey) {
			writeError(w, http.StatusNotFound, "unknown setting key")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": req.Value})
}

type balanceOpRequest struct {
	Op     string `json:"op"` // add | deduct | set
	Amount string `json:"amount"`
}

// AdminBalanceHandler handles POST /admin/accounts/{accountId}/balance
func (h *HandlerProvider) AdminBalanceHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	var req balanceOpRequest

	err = decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	switch req.Op {
	case "add", "deduct":
		amount, perr := parseAmount(req.Amount)
		if perr != nil {
			writeError(w, http.StatusBadRequest, perr.Error())
			return
		}

		if req.Op == "deduct" {
			amount = -amount
		}

		err = h.ledger.AdjustBalance(r.Context(), accountID, amount)
	case "set":
		amount, perr := parseDecimalMinor(req.Amount)
		if perr != nil {
			writeError(w, http.StatusBadRequest, perr.Error())
			return
		}

		err = h.ledger.SetBalance(r.Context(), accountID, amount)
	default:
		writeError(w, http.StatusBadRequest, "op must be add, deduct or set")
		return
	}

	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HandlerProvider) setBanned(w http.ResponseWriter, r *http.Request, banned bool) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	err = h.ledger.SetBanned(r.Context(), accountID, banned)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"accountId": accountID, "banned": banned})
}

// BanAccountHandler handles POST /admin/accounts/{accountId}/ban
func (h *HandlerProvider) BanAccountHandler(w http.ResponseWriter, r *http.Request) {
	h.setBanned(w, r, true)
}

// UnbanAccountHandler handles POST /admin/accounts/{accountId}/unban
func (h *HandlerProvider) UnbanAccountHandler(w http.ResponseWriter, r *http.Request) {
	h.setBanned(w, r, false)
}

// UploadQuizzesHandler handles POST /admin/quizzes with the raw quiz text
// file as the request body.
func (h *HandlerProvider) UploadQuizzesHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 4<<20) // 4MB cap
	defer r.Body.Close()

	added, skipped, err := h.ledger.ImportQuizzes(r.Context(), r.Body)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"added": added, "skipped": skipped})
}
