package app

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/aisistems/coursebot/core/database"
	"github.com/aisistems/coursebot/core/logger"
	coretelegram "github.com/aisistems/coursebot/core/telegram"
	"github.com/aisistems/coursebot/core/telegram/state"
	"github.com/aisistems/coursebot/internal/account"
	"github.com/aisistems/coursebot/internal/bot"
	"github.com/aisistems/coursebot/internal/course"
	"github.com/aisistems/coursebot/internal/payment"
)

// App holds the constructed application graph.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	handlers *bot.Handlers
	fsm      state.Manager
	started  time.Time
}

// Bootstrap initializes logging, storage and services from configuration.
func Bootstrap(cfg *Config) (*App, error) {
	if err := logger.Init(cfg.CoreConfig()); err != nil {
		return nil, fmt.Errorf("app: logger init: %w", err)
	}

	if err := database.RunMigrations(cfg.Database); err != nil {
		return nil, fmt.Errorf("app: migrations: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("app: database: %w", err)
	}

	repo := account.NewRepository(db)

	var gateway course.Gateway
	if cfg.PaymentsEnabled() {
		gateway = payment.NewClient(payment.Options{
			ShopID:      cfg.YooKassa.ShopID,
			SecretKey:   cfg.YooKassa.SecretKey,
			BaseURL:     cfg.YooKassa.APIBaseURL,
			Price:       cfg.Course.Price,
			Currency:    cfg.Course.Currency,
			ReturnURL:   cfg.Course.ReturnURL,
			Description: cfg.Course.Description,
		})
	}

	svc := course.NewService(repo, gateway, course.Timeouts{
		DB:      cfg.Timeouts.DB(),
		Gateway: cfg.Timeouts.Gateway(),
		Invite:  cfg.Timeouts.Edit(),
	})

	fsm := state.NewMemoryManager()
	handlers := bot.NewHandlers(svc, repo, fsm, bot.Options{
		IsAdmin:          cfg.IsAdmin,
		GroupChatID:      cfg.Course.GroupChatID,
		SiteURL:          cfg.Course.SiteURL,
		PrivacyURL:       cfg.Course.PrivacyURL,
		DataPolicyURL:    cfg.Course.DataPolicyURL,
		SupportExtra:     cfg.Course.SupportExtra,
		WelcomeImagePath: cfg.Course.WelcomeImagePath,
		OfferFilePath:    cfg.Course.OfferFilePath,
		DBTimeout:        cfg.Timeouts.DB(),
		BroadcastDelay:   cfg.Timeouts.BroadcastDelay(),
	})

	return &App{
		cfg:      cfg,
		db:       db,
		handlers: handlers,
		fsm:      fsm,
		started:  time.Now(),
	}, nil
}

// TelegramRunOptions builds options for the bot runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	opts := bot.BuildRunOptions(a.handlers, a.fsm, bot.WireOptions{
		Core:            a.cfg.CoreConfig(),
		HTTPAddr:        a.cfg.HTTPAddr(),
		ServiceName:     "coursebot",
		PaymentsEnabled: a.cfg.PaymentsEnabled(),
		IsAdmin:         a.cfg.IsAdmin,
	})

	prevStart := opts.OnStart
	opts.OnStart = func(ctx context.Context, rt coretelegram.Runtime) error {
		if prevStart != nil {
			if err := prevStart(ctx, rt); err != nil {
				return err
			}
		}
		logger.L.With("component", "app").Info("app ready",
			slog.String("event", "ready"),
			slog.Duration("startup_duration", logger.RoundMS(time.Since(a.started))),
		)
		return nil
	}

	prevStop := opts.OnStop
	opts.OnStop = func(ctx context.Context, rt coretelegram.Runtime) error {
		logger.L.With("component", "app").Info("shutting down...",
			slog.String("event", "shutdown"),
		)
		var stopErr error
		if prevStop != nil {
			stopErr = prevStop(ctx, rt)
		}
		if err := a.db.Close(); err != nil && stopErr == nil {
			stopErr = err
		}
		return stopErr
	}
	return opts, nil
}
