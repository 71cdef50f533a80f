package router

import (
	"time"

	"github.com/aisistems/coursebot/core/logger"
	tg "github.com/aisistems/coursebot/core/telegram"
	"github.com/aisistems/coursebot/core/telegram/callbacks"
	"github.com/aisistems/coursebot/core/telegram/commands"
	"github.com/aisistems/coursebot/core/telegram/middleware"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// FSM is the slice of the session manager the text route needs.
type FSM interface {
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// Options wires admin checks and fallbacks into the routes.
type Options struct {
	IsAdmin       func(userID int64) bool
	OnAdminReject tele.HandlerFunc
	OnUnknownText tele.HandlerFunc
}

// Build assembles every route the bot serves: slash commands from the
// registry, a single dispatcher for inline callbacks, and a text route
// where an active session takes priority over command lookup.
func Build(reg *tg.Registry, fsm FSM, opts Options) []tg.Route {
	if reg == nil {
		return nil
	}

	routes := make([]tg.Route, 0, len(reg.Commands())+2)
	for endpoint, def := range reg.Commands() {
		routes = append(routes, tg.Route{Endpoint: endpoint, Handler: wrapCommand(def, opts)})
	}
	routes = append(routes,
		tg.Route{Endpoint: tele.OnCallback, Handler: wrap(dispatchCallback(reg))},
		tg.Route{Endpoint: tele.OnText, Handler: wrap(dispatchText(reg, fsm, opts))},
	)

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}

func wrap(h tele.HandlerFunc) tele.HandlerFunc {
	return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
}

func wrapCommand(def commands.Command, opts Options) tele.HandlerFunc {
	h := wrap(def.Handler)
	if def.AdminOnly {
		h = middleware.AdminOnlyMiddleware(middleware.AdminOptions{
			IsAdmin:  opts.IsAdmin,
			OnReject: opts.OnAdminReject,
		})(h)
	}
	return h
}

// dispatchCallback acknowledges the callback right away and hands it to
// the registered handler, or to the registry's not-found fallback.
func dispatchCallback(reg *tg.Registry) tele.HandlerFunc {
	return func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}
		start := time.Now()
		key := callbacks.CallbackKey(c)
		name := "callback." + normalizeHandlerName(key)

		_ = c.Respond()

		handler, ok := reg.GetCallback(key)
		if !ok || handler == nil {
			handler = reg.CallbackNotFound()
			if handler == nil {
				logHandlerSummary(c, name, start, "skip", "ok", nil, slog.String("cb_key", key))
				return nil
			}
			return handleWithSummary(c, name, start, "", "", func() error {
				return handler(c)
			}, slog.String("cb_key", key), slog.String("reason", "not_found"))
		}
		return handleWithSummary(c, name, start, "", "", func() error {
			return handler(c)
		}, slog.String("cb_key", key))
	}
}

func dispatchText(reg *tg.Registry, fsm FSM, opts Options) tele.HandlerFunc {
	return func(c tele.Context) error {
		start := time.Now()

		if fsm != nil && fsm.InProgress(c.Sender().ID) {
			return handleWithSummary(c, "fsm", start, "", "", func() error {
				return fsm.ManagerHandler(c)
			})
		}

		if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil {
			return handleWithSummary(c, normalizeHandlerName(key), start, "", "", func() error {
				return cmd.Handler(c)
			})
		}
		if fb := reg.TextFallback(); fb != nil {
			return handleWithSummary(c, "fallback", start, "", "", func() error {
				return fb(c)
			})
		}
		if opts.OnUnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.OnUnknownText(c)
			})
		}
		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}
}
