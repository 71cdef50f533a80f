package bot

import (
	"fmt"

	"github.com/aisistems/coursebot/core/telegram/format"
)

// User-facing texts, HTML parse mode.
const (
	welcomeCaption = "👋 Привет! Добро пожаловать в курс <b>«Telegram-бот за вечер»</b>.\n\n" +
		"🚀 Соберёшь бота с нуля и запустишь 24/7.\n" +
		"Python → BotFather → Supabase → GitHub → Render → UptimeRobot + GPT.\n\n" +
		"💳 Цена: <b>1000₽</b> (доступ навсегда после оплаты)."

	aboutCaption = "📚 <b>О курсе</b>\n\n" +
		"Курс из 4 видео: введение + 3 урока.\n" +
		"Собираем бота, подключаем базу, деплоим в облако и (опционально) добавляем ИИ.\n\n" +
		"🔎 Подробности — на сайте."

	supportCaptionBase = "🆘 <b>Поддержка</b>\n\n" +
		"• Telegram: <b>@ai_sistems</b>\n" +
		"• Email: <b>ai.sistems59@gmail.com</b>"

	paymentsDisabledCaption = "⛔️ <b>Оплата временно недоступна</b>\n\n" +
		"Сейчас бот запущен в тестовом режиме — ЮKassa ещё не подключена.\n" +
		"Доступ к курсу пока не выдаётся.\n\n" +
		"Скоро включим оплату — и всё заработает автоматически."

	policiesCaption = "🔐 <b>Политики</b>"

	needEmailCaption = "📧 <b>Нужен email для чека</b>\n\n" +
		"Отправь, пожалуйста, свой email одним сообщением (пример: name@gmail.com)."

	badEmailText = "❌ Это не похоже на email. Пришли в формате name@example.com"

	payInstructions = "💳 <b>Оплата курса</b>\n\n" +
		"1) Нажми «Перейти к оплате» и оплати 1000₽.\n" +
		"2) Вернись сюда и нажми «Проверить оплату».\n\n" +
		"После успешной оплаты я дам ссылку на вход в группу (доступ навсегда)."

	noPaymentYetCaption = "Пока не вижу созданного платежа.\n" +
		"Нажми «Оплатить курс — 1000₽» и создай ссылку на оплату."

	paymentPendingCaption = "⏳ Платёж ещё не завершён.\n" +
		"Если ты уже оплатил(а), подожди 10–30 секунд и нажми «Проверить оплату» ещё раз."

	paymentCanceledCaption = "❌ Платёж отменён.\n" +
		"Нажми «Оплатить курс — 1000₽», чтобы создать новую ссылку."

	offerSentCaption = "📄 Оферта отправлена файлом ниже."

	offerFailedCaption = "❌ Не смог отправить оферту.\n" +
		"Проверь, что файл есть в репозитории и путь к нему верный."

	broadcastMenuCaption    = "📣 <b>Рассылка</b>\n\nКому отправляем?"
	broadcastAskTextCaption = "✍️ Пришли текст рассылки одним сообщением."
	broadcastEmptyText      = "Пришли текст одним сообщением."
	broadcastLostCaption    = "Текст рассылки не найден. Начни заново."
	noAccessCaption         = "⛔️ Нет доступа."
)

func supportCaption(extra string) string {
	if extra == "" {
		return supportCaptionBase
	}
	return supportCaptionBase + "\n\n" + format.EscapeHTML(extra)
}

func alreadyPaidCaption(inviteLink string) string {
	caption := "✅ <b>У тебя уже открыт доступ.</b>"
	if inviteLink != "" {
		return caption + "\n\nВход в группу с курсом:\n" + format.EscapeHTML(inviteLink)
	}
	return caption + "\n\nЕсли нужна ссылка — напиши в поддержку."
}

func accessOpenCaption(inviteLink string) string {
	caption := "✅ <b>Доступ уже открыт.</b>"
	if inviteLink != "" {
		return caption + "\n\nВход в группу:\n" + format.EscapeHTML(inviteLink)
	}
	return caption + "\n\nЕсли нужна ссылка — напиши в поддержку."
}

func paidCaption(inviteLink string) string {
	return "✅ <b>Оплата прошла!</b>\n\n" +
		"Вот вход в группу с курсом (доступ навсегда):\n" +
		format.EscapeHTML(inviteLink)
}

func paidInviteFailedCaption(err error) string {
	return "✅ Оплата прошла!\n\n" +
		"Но я не смог создать инвайт-ссылку автоматически.\n" +
		"Напиши в поддержку — вручную дадим доступ.\n\n" +
		format.EscapeHTML(err.Error())
}

func createPaymentFailedCaption(err error) string {
	return "❌ Не получилось создать платёж.\n\n" + format.EscapeHTML(err.Error())
}

func checkPaymentFailedCaption(err error) string {
	return "❌ Не получилось проверить платёж.\n\n" + format.EscapeHTML(err.Error())
}

func unknownStatusCaption(status string) string {
	return fmt.Sprintf("Статус платежа: %s\nЕсли уверен(а), что оплатил(а), напиши в поддержку.",
		format.EscapeHTML(status))
}

func broadcastPreviewCaption(paid bool, text string) string {
	audience := "❌ не оплатившим"
	if paid {
		audience = "✅ оплатившим"
	}
	return fmt.Sprintf("📣 <b>Подтверждение рассылки</b>\n\nКому: <b>%s</b>\n\nТекст:\n\n%s\n\nОтправить?",
		audience, text)
}

func broadcastStartedCaption(total int) string {
	return fmt.Sprintf("⏳ Отправляю... получателей: <b>%d</b>", total)
}

func broadcastSummaryCaption(total, sent, failed int) string {
	return fmt.Sprintf("✅ <b>Рассылка завершена</b>\n\nПолучателей: <b>%d</b>\nОтправлено: <b>%d</b>\nОшибок: <b>%d</b>",
		total, sent, failed)
}
