// Package broadcast delivers admin announcements to a snapshot of users.
package broadcast

import (
	"context"
	"log/slog"
	"time"

	"github.com/aisistems/coursebot/core/logger"
)

// Sender delivers one message to one user.
type Sender interface {
	Send(ctx context.Context, userID int64, text string) error
}

// Summary is the per-run delivery report.
type Summary struct {
	Total  int
	Sent   int
	Failed int
}

// Options tunes the delivery loop.
type Options struct {
	// Delay between consecutive sends, to stay under Telegram rate limits.
	Delay time.Duration
	// PerSendTimeout bounds each individual delivery.
	PerSendTimeout time.Duration
}

// Runner sends a text to every user id in an audience snapshot,
// sequentially. A failed recipient is counted and skipped, never retried.
type Runner struct {
	sender Sender
	opts   Options
}

// NewRunner builds a Runner with defaults for unset options.
func NewRunner(sender Sender, opts Options) *Runner {
	if opts.Delay <= 0 {
		opts.Delay = 50 * time.Millisecond
	}
	if opts.PerSendTimeout <= 0 {
		opts.PerSendTimeout = 10 * time.Second
	}
	return &Runner{sender: sender, opts: opts}
}

// Run delivers text to every id in audience. Cancelling ctx stops the
// loop early; already attempted recipients stay counted.
func (r *Runner) Run(ctx context.Context, audience []int64, text string) Summary {
	sum := Summary{Total: len(audience)}
	start := time.Now()

	for _, userID := range audience {
		if ctx.Err() != nil {
			break
		}

		sendCtx, cancel := context.WithTimeout(ctx, r.opts.PerSendTimeout)
		err := r.sender.Send(sendCtx, userID, text)
		cancel()

		if err != nil {
			sum.Failed++
			logger.Debug(ctx, "broadcast", "deliver",
				slog.String("status", "fail"),
				slog.Int64("user_id", userID),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		} else {
			sum.Sent++
		}

		select {
		case <-ctx.Done():
		case <-time.After(r.opts.Delay):
		}
	}

	logger.Info(ctx, "broadcast", "run.finished",
		slog.String("status", "ok"),
		slog.Int("total", sum.Total),
		slog.Int("sent", sum.Sent),
		slog.Int("failed", sum.Failed),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return sum
}
