package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalYAML = `
core:
  telegram:
    token: "123:abc"
    run_mode: longpoll
course:
  group_chat_id: -1001234567890
admin_ids: "10, 20;30"
`

func TestLoadMinimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "1000.00", cfg.Course.Price)
	assert.Equal(t, "RUB", cfg.Course.Currency)
	assert.Equal(t, int64(-1001234567890), cfg.Course.GroupChatID)
	assert.False(t, cfg.PaymentsEnabled())

	assert.True(t, cfg.IsAdmin(10))
	assert.True(t, cfg.IsAdmin(20))
	assert.True(t, cfg.IsAdmin(30))
	assert.False(t, cfg.IsAdmin(40))
	assert.Len(t, cfg.Admins(), 3)

	assert.Equal(t, 1, cfg.Core.Telegram.MaxConcurrentUpdates)
}

func TestLoadRequiresGroupChat(t *testing.T) {
	_, err := Load(writeConfig(t, `
core:
  telegram:
    token: "123:abc"
`))
	assert.ErrorContains(t, err, "group_chat_id")
}

func TestLoadRejectsBadAdminID(t *testing.T) {
	_, err := Load(writeConfig(t, `
core:
  telegram:
    token: "123:abc"
course:
  group_chat_id: -100
admin_ids: "10,abc"
`))
	assert.ErrorContains(t, err, "invalid admin id")
}

func TestPaymentsEnabledNeedsBothCredentials(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML+`
yookassa:
  shop_id: "shop-1"
`))
	require.NoError(t, err)
	assert.False(t, cfg.PaymentsEnabled())

	cfg, err = Load(writeConfig(t, minimalYAML+`
yookassa:
  shop_id: "shop-1"
  secret_key: "sk-1"
`))
	require.NoError(t, err)
	assert.True(t, cfg.PaymentsEnabled())
}

func TestTimeoutDefaults(t *testing.T) {
	var tc TimeoutsConfig
	assert.Equal(t, 6*time.Second, tc.DB())
	assert.Equal(t, 6*time.Second, tc.Edit())
	assert.Equal(t, 12*time.Second, tc.Gateway())
	assert.Equal(t, 50*time.Millisecond, tc.BroadcastDelay())

	tc = TimeoutsConfig{DBMS: 1000, GatewayMS: 2000}
	assert.Equal(t, time.Second, tc.DB())
	assert.Equal(t, 2*time.Second, tc.Gateway())
}
