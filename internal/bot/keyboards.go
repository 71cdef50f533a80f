package bot

import (
	tele "gopkg.in/telebot.v4"

	"github.com/aisistems/coursebot/core/telegram/format"
	"github.com/aisistems/coursebot/core/telegram/keyboard"
)

// Callback keys for inline buttons.
const (
	cbPay             = "pay"
	cbCheck           = "check"
	cbAbout           = "about"
	cbSupport         = "support"
	cbPolicies        = "policies"
	cbOffer           = "offer"
	cbBack            = "back"
	cbBroadcastMenu   = "admin_broadcast"
	cbBroadcastPaid   = "broadcast_paid"
	cbBroadcastUnpaid = "broadcast_unpaid"
	cbBroadcastSend   = "broadcast_send"
	cbBroadcastCancel = "broadcast_cancel"
)

func mainMenu(isAdmin bool) *tele.ReplyMarkup {
	rows := [][]keyboard.InlineBtn{
		{{Text: "💳 Оплатить курс — 1000₽", Unique: cbPay}},
		{{Text: "📚 О курсе", Unique: cbAbout}},
		{{Text: "🆘 Поддержка", Unique: cbSupport}},
		{{Text: "🔐 Политики", Unique: cbPolicies}},
		{{Text: "📄 Оферта", Unique: cbOffer}},
	}
	if isAdmin {
		rows = append(rows, []keyboard.InlineBtn{{Text: "📣 Рассылка (админ)", Unique: cbBroadcastMenu}})
	}
	return keyboard.InlineButtonsRows(rows...)
}

func backMenu() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "⬅️ Назад", Unique: cbBack},
	})
}

func aboutMenu(siteURL string) *tele.ReplyMarkup {
	var rows [][]keyboard.InlineBtn
	if u := format.NormalizeURL(siteURL); u != "" {
		rows = append(rows, []keyboard.InlineBtn{{Text: "Подробнее на сайте", URL: u}})
	}
	rows = append(rows, []keyboard.InlineBtn{{Text: "⬅️ Назад", Unique: cbBack}})
	return keyboard.InlineButtonsRows(rows...)
}

// policiesMenu drops policy buttons whose URL cannot be normalized, so a
// misconfigured link never produces a dead button.
func policiesMenu(privacyURL, dataPolicyURL string) *tele.ReplyMarkup {
	var rows [][]keyboard.InlineBtn
	if u := format.NormalizeURL(privacyURL); u != "" {
		rows = append(rows, []keyboard.InlineBtn{{Text: "Политика конфиденциальности", URL: u}})
	}
	if u := format.NormalizeURL(dataPolicyURL); u != "" {
		rows = append(rows, []keyboard.InlineBtn{{Text: "Политика обработки данных", URL: u}})
	}
	rows = append(rows, []keyboard.InlineBtn{{Text: "⬅️ Назад", Unique: cbBack}})
	return keyboard.InlineButtonsRows(rows...)
}

func payMenu(payURL string) *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "🔗 Перейти к оплате", URL: payURL}},
		[]keyboard.InlineBtn{{Text: "✅ Проверить оплату", Unique: cbCheck}},
		[]keyboard.InlineBtn{{Text: "⬅️ Назад", Unique: cbBack}},
	)
}

func checkMenu() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "✅ Проверить оплату", Unique: cbCheck}},
		[]keyboard.InlineBtn{{Text: "⬅️ Назад", Unique: cbBack}},
	)
}

func broadcastAudienceMenu() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "✅ Оплатили", Unique: cbBroadcastPaid}},
		[]keyboard.InlineBtn{{Text: "❌ Не оплатили", Unique: cbBroadcastUnpaid}},
		[]keyboard.InlineBtn{{Text: "⬅️ Назад", Unique: cbBack}},
	)
}

func broadcastCancelMenu() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "❌ Отмена", Unique: cbBroadcastCancel},
	})
}

func broadcastConfirmMenu() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "🚀 Отправить", Unique: cbBroadcastSend}},
		[]keyboard.InlineBtn{{Text: "❌ Отмена", Unique: cbBroadcastCancel}},
	)
}
