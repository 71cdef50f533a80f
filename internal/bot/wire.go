package bot

import (
	"context"
	"time"

	coreconfig "github.com/aisistems/coursebot/core/config"
	coretelegram "github.com/aisistems/coursebot/core/telegram"
	"github.com/aisistems/coursebot/core/telegram/commands"
	"github.com/aisistems/coursebot/core/telegram/router"
	"github.com/aisistems/coursebot/core/telegram/state"
	"github.com/aisistems/coursebot/internal/health"
)

// WireOptions carries the transport-level knobs for assembling the bot.
type WireOptions struct {
	Core            *coreconfig.Config
	HTTPAddr        string
	ServiceName     string
	PaymentsEnabled bool
	IsAdmin         func(userID int64) bool
}

// BuildRunOptions assembles registry, routes, middleware and lifecycle
// hooks into options for the bot runtime. The auxiliary HTTP server is
// started once the bot is up and stopped on shutdown.
func BuildRunOptions(h *Handlers, fsm state.Manager, wopts WireOptions) coretelegram.RunOptions {
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.Start,
		Description: "Начать",
	})

	_ = reg.RegisterCallback(cbPay, h.Pay)
	_ = reg.RegisterCallback(cbCheck, h.Check)
	_ = reg.RegisterCallback(cbAbout, h.About)
	_ = reg.RegisterCallback(cbSupport, h.Support)
	_ = reg.RegisterCallback(cbPolicies, h.Policies)
	_ = reg.RegisterCallback(cbOffer, h.Offer)
	_ = reg.RegisterCallback(cbBack, h.Back)
	_ = reg.RegisterCallback(cbBroadcastMenu, h.BroadcastMenu)
	_ = reg.RegisterCallback(cbBroadcastPaid, h.BroadcastChoosePaid)
	_ = reg.RegisterCallback(cbBroadcastUnpaid, h.BroadcastChooseUnpaid)
	_ = reg.RegisterCallback(cbBroadcastSend, h.BroadcastSend)
	_ = reg.RegisterCallback(cbBroadcastCancel, h.BroadcastCancel)

	state.RegisterHandler(StateAwaitingEmail, h.OnEmail)
	state.RegisterHandler(StateBroadcastText, h.OnBroadcastText)

	routes := router.Build(reg, fsm, router.Options{IsAdmin: wopts.IsAdmin})

	var srv *health.Server

	return coretelegram.RunOptions{
		Config:      wopts.Core,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(wopts.Core),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			hopts := health.Options{
				Addr:            wopts.HTTPAddr,
				ServiceName:     wopts.ServiceName,
				PaymentsEnabled: wopts.PaymentsEnabled,
			}
			if wopts.Core.Telegram.RunMode == coreconfig.RunModeWebhook {
				hopts.ExpectedWebhookURL = wopts.Core.WebhookURL()
				hopts.API = rt.Bot
			}
			srv = health.NewServer(hopts)
			srv.Start()
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			if srv == nil {
				return nil
			}
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(stopCtx)
		},
	}
}
