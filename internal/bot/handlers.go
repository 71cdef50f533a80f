// Package bot wires the Telegram surface of the course shop: menu
// navigation, the payment flow and the admin broadcast.
package bot

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/aisistems/coursebot/core/logger"
	tghelpers "github.com/aisistems/coursebot/core/telegram/helpers"
	"github.com/aisistems/coursebot/core/telegram/state"
	"github.com/aisistems/coursebot/internal/course"
)

// FSM states used by the bot.
const (
	// StateAwaitingEmail is set after the bot asked for a receipt email.
	StateAwaitingEmail state.State = "awaiting_email"
	// StateBroadcastText is set while an admin is typing the broadcast text.
	StateBroadcastText state.State = "broadcast_text"
)

// Session temp-data keys.
const (
	tempBroadcastPaid = "bcast_paid"
	tempBroadcastText = "bcast_text"
)

// AudienceSource lists broadcast recipients.
type AudienceSource interface {
	ListPaidIDs(ctx context.Context) ([]int64, error)
	ListUnpaidIDs(ctx context.Context) ([]int64, error)
}

// Options carries everything the handlers need beyond their services.
type Options struct {
	IsAdmin func(userID int64) bool

	GroupChatID      int64
	SiteURL          string
	PrivacyURL       string
	DataPolicyURL    string
	SupportExtra     string
	WelcomeImagePath string
	OfferFilePath    string

	DBTimeout      time.Duration
	BroadcastDelay time.Duration
}

// Handlers glues the Telegram surface to the course and broadcast services.
type Handlers struct {
	svc      *course.Service
	audience AudienceSource
	fsm      state.Manager
	opts     Options
}

// NewHandlers builds the handler set.
func NewHandlers(svc *course.Service, audience AudienceSource, fsm state.Manager, opts Options) *Handlers {
	if opts.IsAdmin == nil {
		opts.IsAdmin = func(int64) bool { return false }
	}
	if opts.DBTimeout <= 0 {
		opts.DBTimeout = 6 * time.Second
	}
	return &Handlers{svc: svc, audience: audience, fsm: fsm, opts: opts}
}

func (h *Handlers) isAdmin(c tele.Context) bool {
	sender := c.Sender()
	return sender != nil && h.opts.IsAdmin(sender.ID)
}

// Start greets the user with the welcome photo and main menu, recording
// the account on the way. A missing image degrades to a text greeting.
func (h *Handlers) Start(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	sender := c.Sender()

	h.fsm.Clear(sender.ID)
	h.svc.Start(ctx, sender.ID, sender.Username)

	menu := mainMenu(h.isAdmin(c))
	if h.opts.WelcomeImagePath != "" {
		photo := &tele.Photo{
			File:    tele.FromDisk(h.opts.WelcomeImagePath),
			Caption: welcomeCaption,
		}
		err := c.Send(photo, &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: menu})
		if err == nil {
			return nil
		}
		logger.Warn(ctx, "tg", "welcome.photo",
			slog.String("status", "fail"),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
	return tghelpers.SendHTML(c, welcomeCaption, menu)
}

// About shows the course description.
func (h *Handlers) About(c tele.Context) error {
	return editInPlace(c, aboutCaption, aboutMenu(h.opts.SiteURL))
}

// Support shows the support contacts.
func (h *Handlers) Support(c tele.Context) error {
	return editInPlace(c, supportCaption(h.opts.SupportExtra), backMenu())
}

// Policies shows policy links.
func (h *Handlers) Policies(c tele.Context) error {
	return editInPlace(c, policiesCaption, policiesMenu(h.opts.PrivacyURL, h.opts.DataPolicyURL))
}

// Offer sends the public offer as a document.
func (h *Handlers) Offer(c tele.Context) error {
	doc := &tele.Document{
		File:     tele.FromDisk(h.opts.OfferFilePath),
		FileName: filepath.Base(h.opts.OfferFilePath),
		Caption:  "📄 Публичная оферта (PDF)",
	}
	if err := c.Send(doc); err != nil {
		ctx := tghelpers.BuildContext(c)
		logger.Error(ctx, "tg", "offer.send",
			slog.String("status", "fail"),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return editInPlace(c, offerFailedCaption, backMenu())
	}
	return editInPlace(c, offerSentCaption, backMenu())
}

// Back returns to the main menu and drops any in-flight session.
func (h *Handlers) Back(c tele.Context) error {
	h.fsm.Clear(c.Sender().ID)
	return editInPlace(c, welcomeCaption, mainMenu(h.isAdmin(c)))
}
