package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/quizearn/quizearn/internal/api"
	"github.com/quizearn/quizearn/internal/infra/logging"
	"github.com/quizearn/quizearn/internal/infra/pgutils"
	"github.com/quizearn/quizearn/internal/notify"
	pgaccounts "github.com/quizearn/quizearn/internal/repos/accounts/postgres"
	pgquizzes "github.com/quizearn/quizearn/internal/repos/quizzes/postgres"
	pgsettings "github.com/quizearn/quizearn/internal/repos/settings/postgres"
	pgwithdrawals "github.com/quizearn/quizearn/internal/repos/withdrawals/postgres"
	"github.com/quizearn/quizearn/internal/services/ledger"
	"github.com/quizearn/quizearn/internal/services/quizplay"
	"github.com/quizearn/quizearn/internal/services/withdraw"
	"github.com/quizearn/quizearn/pkg/envconf"
	"github.com/quizearn/quizearn/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	dbConns, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add(func(context.Context) error {
		return dbConns.Close()
	})

	var notifier withdraw.Notifier = withdraw.NopNotifier{}

	if cfg.AMQPURL != "" {
		producer, perr := notify.NewProducer(cfg.AMQPURL, cfg.NotifyExchange)
		if perr != nil {
			return fmt.Errorf("connect amqp: %w", perr)
		}

		shutdownqueue.Add(func(context.Context) error {
			return producer.Close()
		})

		notifier = producer
	}

	// --- Services ---
	accountsRepo := pgaccounts.New(dbConns)
	quizzesRepo := pgquizzes.New(dbConns)
	settingsRepo := pgsettings.New(dbConns)
	withdrawalsRepo := pgwithdrawals.New(dbConns)

	ledgerSrv := ledger.New(dbConns, accountsRepo, quizzesRepo, settingsRepo)
	quizSrv := quizplay.New(dbConns, accountsRepo, quizzesRepo, settingsRepo)
	withdrawSrv := withdraw.New(dbConns, accountsRepo, withdrawalsRepo, settingsRepo, notifier)

	// --- Pending-withdrawal reminder ---
	if cfg.ReminderCron != "" {
		scheduler := cron.New()

		_, err = scheduler.AddFunc(cfg.ReminderCron, func() {
			rerr := withdrawSrv.RemindPending(context.Background())
			if rerr != nil {
				slog.Error("pending withdrawal reminder failed", "error", rerr)
			}
		})
		if err != nil {
			return fmt.Errorf("schedule reminder: %w", err)
		}

		scheduler.Start()

		shutdownqueue.Add(func(c context.Context) error {
			select {
			case <-scheduler.Stop().Done():
				return nil
			case <-c.Done():
				return fmt.Errorf("stop scheduler: %w", c.Err())
			}
		})
	}

	// --- HTTP server ---
	handlers := api.NewHandler(ledgerSrv, quizSrv, withdrawSrv)
	adminAuth := api.AdminAuth(cfg.AdminJWTSecret, cfg.AdminAccountID)
	srv := api.NewServer(cfg.Port, handlers, adminAuth)

	// Register HTTP server graceful shutdown
	shutdownqueue.Add(func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	// Run server
	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started")

	// --- Wait until either context cancels or server errors out ---
	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
