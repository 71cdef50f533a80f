package bot

import (
	"context"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/aisistems/coursebot/core/logger"
	tghelpers "github.com/aisistems/coursebot/core/telegram/helpers"
)

// editInPlace rewrites the menu message under the user's finger instead
// of posting a new one. The greeting arrives as a photo, so a caption
// edit is tried before a text edit, first as HTML and then without
// parse mode. As a last resort only the keyboard is swapped, which is
// logged since the user then sees stale text.
func editInPlace(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	msg := c.Message()
	if msg == nil {
		return tghelpers.SendHTML(c, text, markup)
	}

	htmlOpts := &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		ReplyMarkup:           markup,
		DisableWebPagePreview: true,
	}
	plainOpts := &tele.SendOptions{
		ReplyMarkup:           markup,
		DisableWebPagePreview: true,
	}

	ctx := tghelpers.BuildContext(c)

	if msg.Caption != "" {
		err := c.EditCaption(text, htmlOpts)
		if err == nil {
			return nil
		}
		logEditStep(ctx, "edit_caption_html", err)
	}
	if msg.Text != "" {
		err := c.Edit(text, htmlOpts)
		if err == nil {
			return nil
		}
		logEditStep(ctx, "edit_text_html", err)
	}

	// Without a parse mode Telegram renders the text verbatim, which
	// still beats losing the screen when the HTML variant is rejected.
	if msg.Caption != "" {
		err := c.EditCaption(text, plainOpts)
		if err == nil {
			return nil
		}
		logEditStep(ctx, "edit_caption_plain", err)
	}
	if msg.Text != "" {
		err := c.Edit(text, plainOpts)
		if err == nil {
			return nil
		}
		logEditStep(ctx, "edit_text_plain", err)
	}

	_, err := c.Bot().EditReplyMarkup(msg, markup)
	logger.Warn(ctx, "tg", "edit.markup_only",
		slog.String("status", statusOf(err)),
		slog.Int64("chat_id", msg.Chat.ID),
	)
	return err
}

func logEditStep(ctx context.Context, step string, err error) {
	logger.Debug(ctx, "tg", "edit.fallback",
		slog.String("status", "fail"),
		slog.String("payload", step),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	)
}

func statusOf(err error) string {
	if err != nil {
		return "fail"
	}
	return "ok"
}
