package bot

import (
	"context"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/aisistems/coursebot/core/guard"
	tghelpers "github.com/aisistems/coursebot/core/telegram/helpers"
	"github.com/aisistems/coursebot/internal/broadcast"
)

// BroadcastMenu opens the audience picker for admins.
func (h *Handlers) BroadcastMenu(c tele.Context) error {
	if !h.isAdmin(c) {
		return editInPlace(c, noAccessCaption, backMenu())
	}
	return editInPlace(c, broadcastMenuCaption, broadcastAudienceMenu())
}

// BroadcastChoosePaid targets the broadcast at paid users.
func (h *Handlers) BroadcastChoosePaid(c tele.Context) error {
	return h.chooseAudience(c, true)
}

// BroadcastChooseUnpaid targets the broadcast at unpaid users.
func (h *Handlers) BroadcastChooseUnpaid(c tele.Context) error {
	return h.chooseAudience(c, false)
}

func (h *Handlers) chooseAudience(c tele.Context, paid bool) error {
	if !h.isAdmin(c) {
		return nil
	}
	userID := c.Sender().ID
	h.fsm.SetTemp(userID, tempBroadcastPaid, paid)
	h.fsm.SetState(userID, StateBroadcastText)
	return editInPlace(c, broadcastAskTextCaption, broadcastCancelMenu())
}

// OnBroadcastText captures the broadcast body and shows the confirmation.
func (h *Handlers) OnBroadcastText(c tele.Context) error {
	if !h.isAdmin(c) {
		h.fsm.Clear(c.Sender().ID)
		return nil
	}

	text := strings.TrimSpace(c.Text())
	if text == "" {
		return tghelpers.SendText(c, broadcastEmptyText)
	}

	userID := c.Sender().ID
	h.fsm.SetTemp(userID, tempBroadcastText, text)
	h.fsm.ClearState(userID)

	paid, _ := h.fsm.GetTempBool(userID, tempBroadcastPaid)
	return tghelpers.SendHTML(c, broadcastPreviewCaption(paid, text), broadcastConfirmMenu())
}

// BroadcastSend snapshots the audience and delivers the stored text,
// then reports totals.
func (h *Handlers) BroadcastSend(c tele.Context) error {
	if !h.isAdmin(c) {
		return nil
	}

	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	text, ok := h.fsm.GetTempString(userID, tempBroadcastText)
	if !ok || text == "" {
		h.clearBroadcastSession(userID)
		return editInPlace(c, broadcastLostCaption, backMenu())
	}
	paid, _ := h.fsm.GetTempBool(userID, tempBroadcastPaid)

	audience, err := guard.Call[[]int64](ctx, h.opts.DBTimeout, nil, func(dbCtx context.Context) ([]int64, error) {
		if paid {
			return h.audience.ListPaidIDs(dbCtx)
		}
		return h.audience.ListUnpaidIDs(dbCtx)
	})
	if err != nil {
		audience = nil
	}

	if editErr := editInPlace(c, broadcastStartedCaption(len(audience)), backMenu()); editErr != nil {
		return editErr
	}

	runner := broadcast.NewRunner(&telegramSender{bot: c.Bot()}, broadcast.Options{
		Delay: h.opts.BroadcastDelay,
	})
	sum := runner.Run(ctx, audience, text)

	h.clearBroadcastSession(userID)
	return editInPlace(c, broadcastSummaryCaption(sum.Total, sum.Sent, sum.Failed), mainMenu(true))
}

// BroadcastCancel aborts the flow and returns to the main menu.
func (h *Handlers) BroadcastCancel(c tele.Context) error {
	h.clearBroadcastSession(c.Sender().ID)
	return editInPlace(c, welcomeCaption, mainMenu(h.isAdmin(c)))
}

func (h *Handlers) clearBroadcastSession(userID int64) {
	h.fsm.ClearTemp(userID, tempBroadcastPaid)
	h.fsm.ClearTemp(userID, tempBroadcastText)
	h.fsm.ClearState(userID)
}

// telegramSender adapts the bot API to the broadcast runner.
type telegramSender struct {
	bot tele.API
}

// Send delivers one HTML message. The bot API call is not cancelable,
// so the context deadline is enforced around it.
func (s *telegramSender) Send(ctx context.Context, userID int64, text string) error {
	done := make(chan error, 1)
	go func() {
		_, err := s.bot.Send(tele.ChatID(userID), text, &tele.SendOptions{
			ParseMode:             tele.ModeHTML,
			DisableWebPagePreview: true,
		})
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
