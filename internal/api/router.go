package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// NewRouter constructs the chi router with all API endpoints registered.
// Privileged routes sit behind the admin JWT middleware.
func NewRouter(h *HandlerProvider, adminAuth func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/account/{accountId}", func(r chi.Router) {
		r.Post("/register", h.RegisterHandler)
		r.Get("/", h.ProfileHandler)

		r.Route("/quiz", func(r chi.Router) {
			r.Post("/present", h.PresentQuizHandler)
			r.Post("/answer", h.AnswerQuizHandler)
			r.Post("/skip", h.SkipQuizHandler)
		})

		r.Route("/withdraw", func(r chi.Router) {
			r.Post("/start", h.StartWithdrawHandler)
			r.Post("/method", h.ChooseMethodHandler)
			r.Post("/number", h.SubmitNumberHandler)
			r.Post("/amount", h.SubmitAmountHandler)
			r.Post("/confirm", h.ConfirmWithdrawHandler)
			r.Post("/cancel", h.CancelWithdrawHandler)
		})
	})

	r.Get("/leaderboard/referrers", h.LeaderboardHandler)

	r.Route("/admin", func(r chi.Router) {
		r.Use(adminAuth)

		r.Get("/withdrawals", h.ListWithdrawalsHandler)
		r.Post("/withdrawals/{requestId}/approve", h.ApproveWithdrawalHandler)
		r.Post("/withdrawals/{requestId}/reject", h.RejectWithdrawalHandler)

		r.Get("/settings/{key}", h.GetSettingHandler)
		r.Put("/settings/{key}", h.UpdateSettingHandler)

		r.Post("/accounts/{accountId}/balance", h.AdminBalanceHandler)
		r.Post("/accounts/{accountId}/ban", h.BanAccountHandler)
		r.Post("/accounts/{accountId}/unban", h.UnbanAccountHandler)

		r.Post("/quizzes", h.UploadQuizzesHandler)
	})

	return r
}
