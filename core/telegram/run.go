package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	coreconfig "github.com/aisistems/coursebot/core/config"
	"github.com/aisistems/coursebot/core/logger"
	tghelpers "github.com/aisistems/coursebot/core/telegram/helpers"
	tgsender "github.com/aisistems/coursebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
	"log/slog"
)

// Middleware describes a global bot middleware to be registered via bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route declares a single bot handler bound to an arbitrary endpoint.
// Endpoint values are passed directly to tele.Bot.Handle.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls the behaviour of RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	DispatcherOptions tgsender.Options
	Dispatcher        *tgsender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	DisableWebhookCleanup   bool
	DisableHelperDispatcher bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes runtime components to lifecycle hooks.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// BotSettings derives telebot settings from the core config. With
// max_concurrent_updates at 1 the bot runs synchronously: telebot then
// executes each handler inline instead of spawning a goroutine per
// update, so per-user records see one write at a time.
func BotSettings(cfg *coreconfig.Config) tele.Settings {
	return tele.Settings{
		Token:       cfg.Telegram.Token,
		Synchronous: cfg.Telegram.MaxConcurrentUpdates <= 1,
		Client:      BuildHTTPClient(),
	}
}

// RunTelegram composes and runs a Telegram bot until the provided context is done.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return fmt.Errorf("telegram: nil config provided")
	}

	cfg := opts.Config
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	poller := BuildPoller(PollerOptions{
		RunMode:                cfg.Telegram.RunMode,
		LongPollTimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds,
		Webhook: WebhookOptions{
			Listen:    cfg.Webhook.Listen,
			Port:      cfg.Webhook.Port,
			PublicURL: cfg.WebhookURL(),
		},
	})

	buildStart := time.Now()
	settings := BotSettings(cfg)
	settings.Poller = poller
	bot, err := tele.NewBot(settings)
	if err != nil {
		return fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	buildTook := time.Since(buildStart)

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = tgsender.NewDispatcher(opts.DispatcherOptions)
	}
	useHelperDispatcher := !opts.DisableHelperDispatcher
	if useHelperDispatcher {
		tghelpers.SetDispatcher(dispatcher)
	}

	rt := Runtime{
		Bot:        bot,
		Dispatcher: dispatcher,
		Registry:   reg,
	}

	switch p := poller.(type) {
	case *tele.Webhook:
		// Re-registration happens on every start; pending updates are
		// dropped only when the stored registration points elsewhere,
		// since those updates were queued for a different endpoint.
		if !opts.DisableWebhookCleanup {
			current, err := bot.Webhook()
			if err != nil {
				logger.TG.Warn("webhook info fetch failed",
					slog.String("event", "webhook_info"),
					slog.String("err", err.Error()),
				)
			} else if staleWebhook(current, p.Endpoint.PublicURL) {
				p.DropUpdates = true
				logger.TG.Info("stale webhook registration",
					slog.String("event", "webhook_stale"),
					slog.String("current_url", currentWebhookURL(current)),
					slog.String("public_url", p.Endpoint.PublicURL),
					slog.Bool("drop_pending", true),
				)
			}
		}
		logger.TG.LogAttrs(ctx, slog.LevelInfo, "webhook mode",
			slog.String("event", "mode"),
			slog.String("mode", "webhook"),
			slog.String("listen", p.Listen),
			slog.String("public_url", p.Endpoint.PublicURL),
			slog.Bool("drop_pending", p.DropUpdates),
			slog.Duration("duration", logger.RoundMS(buildTook)),
		)
	default:
		timeoutSec := cfg.Telegram.LongPollTimeoutSeconds
		if timeoutSec <= 0 {
			timeoutSec = 10
		}
		logger.TG.Info("polling mode",
			slog.String("event", "mode"),
			slog.String("mode", "polling"),
			slog.Int("timeout_seconds", timeoutSec),
			slog.Duration("duration", logger.RoundMS(buildTook)),
		)

		// A stale webhook registration starves long polling, so drop it.
		if !opts.DisableWebhookCleanup {
			if err := bot.RemoveWebhook(); err != nil {
				logger.TG.Warn("failed to delete webhook",
					slog.String("event", "delete_webhook"),
					slog.String("err", err.Error()),
				)
			}
		}
	}

	for _, mw := range opts.Middlewares {
		if mw.Use == nil {
			continue
		}
		bot.Use(mw.Use)
	}

	for _, route := range opts.Routes {
		if route.Endpoint == nil || route.Handler == nil {
			continue
		}
		bot.Handle(route.Endpoint, route.Handler)
	}

	InitBotCommands(bot, reg)

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			dispatcher.Close()
			if useHelperDispatcher {
				tghelpers.SetDispatcher(nil)
			}
			return err
		}
	}

	runDone := make(chan struct{})
	go func() {
		bot.Start()
		close(runDone)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		bot.Stop()
		<-runDone
		runErr = ctx.Err()
	case <-runDone:
	}

	var stopErr error
	if opts.OnStop != nil {
		stopErr = opts.OnStop(ctx, rt)
	}

	dispatcher.Close()
	if useHelperDispatcher {
		tghelpers.SetDispatcher(nil)
	}

	if stopErr != nil {
		return stopErr
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

// staleWebhook reports whether the registration Telegram currently holds
// points somewhere other than the expected public URL. getWebhookInfo
// returns the registered url in the Listen field.
func staleWebhook(current *tele.Webhook, expected string) bool {
	return current == nil || current.Listen != expected
}

func currentWebhookURL(current *tele.Webhook) string {
	if current == nil {
		return ""
	}
	return current.Listen
}
