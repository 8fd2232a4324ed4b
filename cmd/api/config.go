package main

import (
	"log/slog"
	"time"

	"github.com/quizearn/quizearn/internal/config"
)

type apiConfig struct {
	Port            uint16        `env:"APP_PORT"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" envdefault:"INFO"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envdefault:"10s"`

	AdminAccountID int64  `env:"ADMIN_ACCOUNT_ID"`
	AdminJWTSecret string `env:"ADMIN_JWT_SECRET"`

	// empty AMQP URL disables admin-channel notifications
	AMQPURL        string `env:"AMQP_URL" envdefault:""`
	NotifyExchange string `env:"NOTIFY_EXCHANGE" envdefault:"quizearn.events"`

	// empty cron spec disables the pending-withdrawal reminder
	ReminderCron string `env:"WITHDRAW_REMINDER_CRON" envdefault:""`

	Postgres config.PostgresConfig
}
