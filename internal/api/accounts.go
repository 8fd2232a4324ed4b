package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/quizearn/quizearn/internal/repos/accounts"
	"github.com/quizearn/quizearn/internal/services/ledger"
)

type registerRequest struct {
	Name       string `json:"name"`
	Username   string `json:"username"`
	ReferrerID *int64 `json:"referrerId"`
}

// RegisterHandler handles POST /account/{accountId}/register
func (h *HandlerProvider) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	var req registerRequest

	err = decodeJSON(w, r, &req)
	if err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "empty body")
			return
		}

		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return
	}

	created, err := h.ledger.Register(r.Context(), ledger.RegisterInput{
		ID:         accountID,
		Name:       req.Name,
		Username:   req.Username,
		ReferrerID: req.ReferrerID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	writeJSON(w, status, map[string]any{"accountId": accountID, "created": created})
}

// ProfileHandler handles GET /account/{accountId}
func (h *HandlerProvider) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	profile, err := h.ledger.Profile(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accountId":      profile.Account.ID,
		"name":           profile.Account.Name,
		"username":       profile.Account.Username,
		"balance":        formatAmount(profile.Account.Balance),
		"referralCount":  profile.Account.ReferralCount,
		"quizPlayed":     profile.Account.QuizPlayed,
		"correctAnswers": profile.CorrectAnswers,
		"totalQuizzes":   profile.TotalQuizzes,
		"banned":         profile.Account.Banned,
	})
}

// LeaderboardHandler handles GET /leaderboard/referrers
func (h *HandlerProvider) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	limit := 10

	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}

		limit = n
	}

	refs, err := h.ledger.TopReferrers(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	type entry struct {
		AccountID     int64  `json:"accountId"`
		Name          string `json:"name"`
		ReferralCount int    `json:"referralCount"`
	}

	out := make([]entry, 0, len(refs))
	for _, ref := range refs {
		out = append(out, entry{AccountID: ref.ID, Name: ref.Name, ReferralCount: ref.ReferralCount})
	}

	writeJSON(w, http.StatusOK, map[string]any{"referrers": out})
}
