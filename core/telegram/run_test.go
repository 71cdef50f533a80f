package telegram

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/aisistems/coursebot/core/config"
)

func testUpdate(id int) tele.Update {
	return tele.Update{
		ID: id,
		Message: &tele.Message{
			ID:     id,
			Text:   "привет",
			Chat:   &tele.Chat{ID: 42},
			Sender: &tele.User{ID: 42},
		},
	}
}

func TestBotSettingsSynchronousByDefault(t *testing.T) {
	cfg := &coreconfig.Config{}
	cfg.Telegram.MaxConcurrentUpdates = 1
	assert.True(t, BotSettings(cfg).Synchronous)

	cfg.Telegram.MaxConcurrentUpdates = 8
	assert.False(t, BotSettings(cfg).Synchronous)
}

// Two rapid presses of the same button must never run their handlers
// concurrently: a second payment check racing the first could mint a
// second invite link and overwrite the stored one.
func TestUpdatesHandledOneAtATime(t *testing.T) {
	cfg := &coreconfig.Config{}
	cfg.Telegram.Token = "123:token"
	cfg.Telegram.MaxConcurrentUpdates = 1

	settings := BotSettings(cfg)
	settings.Offline = true

	bot, err := tele.NewBot(settings)
	require.NoError(t, err)

	var inFlight, maxSeen int32
	bot.Handle(tele.OnText, func(tele.Context) error {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxSeen)
			if cur <= m || atomic.CompareAndSwapInt32(&maxSeen, m, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil
	})

	for i := 1; i <= 3; i++ {
		bot.ProcessUpdate(testUpdate(i))
	}

	assert.EqualValues(t, 1, atomic.LoadInt32(&maxSeen))
	assert.EqualValues(t, 0, atomic.LoadInt32(&inFlight))
}

func TestStaleWebhookDetection(t *testing.T) {
	const expected = "https://bot.example/bot/webhook/s3cret"

	assert.True(t, staleWebhook(nil, expected))
	assert.True(t, staleWebhook(&tele.Webhook{Listen: "https://old.example/hook"}, expected))
	assert.False(t, staleWebhook(&tele.Webhook{Listen: expected}, expected))

	assert.Equal(t, "", currentWebhookURL(nil))
	assert.Equal(t, expected, currentWebhookURL(&tele.Webhook{Listen: expected}))
}
