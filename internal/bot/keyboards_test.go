package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainMenuAdminRow(t *testing.T) {
	plain := mainMenu(false)
	assert.Len(t, plain.InlineKeyboard, 5)

	admin := mainMenu(true)
	require.Len(t, admin.InlineKeyboard, 6)
	assert.Contains(t, admin.InlineKeyboard[5][0].Text, "Рассылка")
}

func TestPoliciesMenuSkipsBadURLs(t *testing.T) {
	m := policiesMenu("not a url", "")
	require.Len(t, m.InlineKeyboard, 1)
	assert.Contains(t, m.InlineKeyboard[0][0].Text, "Назад")

	m = policiesMenu("telegra.ph/privacy", "www.example.com/policy")
	require.Len(t, m.InlineKeyboard, 3)
	assert.Equal(t, "https://telegra.ph/privacy", m.InlineKeyboard[0][0].URL)
	assert.Equal(t, "https://www.example.com/policy", m.InlineKeyboard[1][0].URL)
}

func TestPayMenuLinksConfirmation(t *testing.T) {
	m := payMenu("https://pay.example/confirm")
	require.Len(t, m.InlineKeyboard, 3)
	assert.Equal(t, "https://pay.example/confirm", m.InlineKeyboard[0][0].URL)
	assert.Equal(t, cbCheck, m.InlineKeyboard[1][0].Unique)
}

func TestBroadcastConfirmMenu(t *testing.T) {
	m := broadcastConfirmMenu()
	require.Len(t, m.InlineKeyboard, 2)
	assert.Equal(t, cbBroadcastSend, m.InlineKeyboard[0][0].Unique)
	assert.Equal(t, cbBroadcastCancel, m.InlineKeyboard[1][0].Unique)
}
