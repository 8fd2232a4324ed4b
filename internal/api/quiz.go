package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/quizearn/quizearn/internal/repos/accounts"
	"github.com/quizearn/quizearn/internal/repos/quizzes"
	"github.com/quizearn/quizearn/internal/services/quizplay"
)

// PresentQuizHandler handles POST /account/{accountId}/quiz/present
func (h *HandlerProvider) PresentQuizHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	presented, err := h.quiz.Present(r.Context(), accountID)
	if err != nil {
		var insufficient *quizplay.InsufficientBalanceError

		switch {
		case errors.Is(err, accounts.ErrAccountNotFound):
			writeError(w, http.StatusNotFound, "account not found")
		case errors.Is(err, quizplay.ErrAccountBanned):
			writeError(w, http.StatusForbidden, "account is banned")
		case errors.As(err, &insufficient):
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":  "insufficient balance",
				"reason": "insufficient_balance",
				"need":   formatAmount(insufficient.Need),
				"have":   formatAmount(insufficient.Have),
			})
		case errors.Is(err, quizzes.ErrNoQuizAvailable):
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":  "no quiz available",
				"reason": "no_quiz_available",
			})
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"quizId":   presented.QuizID,
		"question": presented.Question,
		"options":  presented.Options,
		"reward":   formatAmount(presented.Reward),
		"cost":     formatAmount(presented.Cost),
	})
}

type answerRequest struct {
	Option int `json:"option"`
}

// AnswerQuizHandler handles POST /account/{accountId}/quiz/answer
func (h *HandlerProvider) AnswerQuizHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	var req answerRequest

	err = decodeJSON(w, r, &req)
	if err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "empty body")
			return
		}

		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	outcome, err := h.quiz.Answer(r.Context(), accountID, req.Option)
	if err != nil {
		switch {
		case errors.Is(err, quizplay.ErrInvalidOption):
			writeError(w, http.StatusBadRequest, "option must be between 1 and 4")
		case errors.Is(err, quizplay.ErrSessionExpired):
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":  "quiz session expired",
				"reason": "session_expired",
			})
		case errors.Is(err, quizzes.ErrAlreadyAnswered):
			// benign race: duplicate tap or concurrent scoring attempt
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":  "quiz already answered",
				"reason": "already_answered",
			})
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}

		return
	}

	resp := map[string]any{
		"correct": outcome.Correct,
		"cost":    formatAmount(outcome.Cost),
		"reward":  formatAmount(outcome.Reward),
	}
	if !outcome.Correct {
		resp["correctOption"] = outcome.CorrectOption
	}

	writeJSON(w, http.StatusOK, resp)
}

// SkipQuizHandler handles POST /account/{accountId}/quiz/skip
func (h *HandlerProvider) SkipQuizHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	h.quiz.Skip(accountID)

	writeJSON(w, http.StatusOK, map[string]string{"status": "skipped"})
}
