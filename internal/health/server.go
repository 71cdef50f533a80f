// Package health exposes the auxiliary HTTP surface: liveness probes
// for the hosting platform and webhook debug endpoints for operators.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/aisistems/coursebot/core/logger"
)

// WebhookAPI is the slice of the bot API the debug endpoints use.
type WebhookAPI interface {
	Webhook() (*tele.Webhook, error)
	SetWebhook(w *tele.Webhook) error
}

// Options configures the server.
type Options struct {
	Addr            string
	ServiceName     string
	PaymentsEnabled bool
	// ExpectedWebhookURL and API enable the /debug endpoints. Both stay
	// empty in long-polling mode.
	ExpectedWebhookURL string
	API                WebhookAPI
}

// Server is a small standalone HTTP server next to the bot transport.
type Server struct {
	opts Options
	srv  *http.Server
}

// NewServer builds the server and its routes.
func NewServer(opts Options) *Server {
	if opts.ServiceName == "" {
		opts.ServiceName = "coursebot"
	}
	s := &Server{opts: opts}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	if opts.API != nil && opts.ExpectedWebhookURL != "" {
		mux.HandleFunc("/debug/webhook", s.handleDebugWebhook)
		mux.HandleFunc("/debug/reset-webhook", s.handleResetWebhook)
	}

	s.srv = &http.Server{
		Addr:              opts.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start serves in a background goroutine until Shutdown.
func (s *Server) Start() {
	go func() {
		ctx := context.Background()
		logger.Info(ctx, "http", "listen",
			slog.String("status", "ok"),
			slog.String("listen", s.opts.Addr),
		)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "http", "serve",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		}
	}()
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !allowGetHead(w, r) {
		return
	}
	writeJSON(w, map[string]any{
		"ok":               true,
		"service":          s.opts.ServiceName,
		"payments_enabled": s.opts.PaymentsEnabled,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowGetHead(w, r) {
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

func (s *Server) handleDebugWebhook(w http.ResponseWriter, r *http.Request) {
	if !allowGetHead(w, r) {
		return
	}
	info, err := s.opts.API.Webhook()
	if err != nil {
		writeError(w, err)
		return
	}
	if info == nil {
		info = &tele.Webhook{}
	}

	writeJSON(w, map[string]any{
		"expected":             s.opts.ExpectedWebhookURL,
		"current_url":          info.Listen,
		"pending_update_count": info.PendingUpdates,
		"last_error_date":      info.ErrorUnixtime,
		"last_error_message":   info.ErrorMessage,
	})
}

func (s *Server) handleResetWebhook(w http.ResponseWriter, r *http.Request) {
	if !allowGetHead(w, r) {
		return
	}
	err := s.opts.API.SetWebhook(&tele.Webhook{
		DropUpdates: true,
		Endpoint:    &tele.WebhookEndpoint{PublicURL: s.opts.ExpectedWebhookURL},
	})
	if err != nil {
		writeError(w, err)
		return
	}
	logger.Info(r.Context(), "http", "webhook.reset",
		slog.String("status", "ok"),
		slog.String("public_url", s.opts.ExpectedWebhookURL),
	)
	writeJSON(w, map[string]any{"ok": true, "set_to": s.opts.ExpectedWebhookURL})
}

func allowGetHead(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	w.WriteHeader(http.StatusMethodNotAllowed)
	return false
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":    false,
		"error": err.Error(),
	})
}
