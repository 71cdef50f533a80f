package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

type fakeWebhookAPI struct {
	info    *tele.Webhook
	infoErr error
	set     *tele.Webhook
	setErr  error
}

func (f *fakeWebhookAPI) Webhook() (*tele.Webhook, error) {
	return f.info, f.infoErr
}

func (f *fakeWebhookAPI) SetWebhook(w *tele.Webhook) error {
	f.set = w
	return f.setErr
}

func serve(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRootReportsService(t *testing.T) {
	s := NewServer(Options{PaymentsEnabled: true})

	rec := serve(t, s, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "coursebot", body["service"])
	assert.Equal(t, true, body["payments_enabled"])
}

func TestRootAllowsHead(t *testing.T) {
	s := NewServer(Options{})
	rec := serve(t, s, http.MethodHead, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRootRejectsPost(t *testing.T) {
	s := NewServer(Options{})
	rec := serve(t, s, http.MethodPost, "/")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	s := NewServer(Options{})
	for _, method := range []string{http.MethodGet, http.MethodHead} {
		rec := serve(t, s, method, "/health")
		assert.Equal(t, http.StatusOK, rec.Code, method)
	}
}

func TestDebugEndpointsAbsentWithoutWebhook(t *testing.T) {
	s := NewServer(Options{})
	rec := serve(t, s, http.MethodGet, "/debug/webhook")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDebugWebhookReportsState(t *testing.T) {
	api := &fakeWebhookAPI{info: &tele.Webhook{
		Listen:         "https://bot.example/bot/webhook/s3cret",
		PendingUpdates: 3,
		ErrorMessage:   "bad gateway",
	}}
	s := NewServer(Options{
		ExpectedWebhookURL: "https://bot.example/bot/webhook/s3cret",
		API:                api,
	})

	rec := serve(t, s, http.MethodGet, "/debug/webhook")
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "https://bot.example/bot/webhook/s3cret", body["expected"])
	assert.Equal(t, "https://bot.example/bot/webhook/s3cret", body["current_url"])
	assert.Equal(t, float64(3), body["pending_update_count"])
	assert.Equal(t, "bad gateway", body["last_error_message"])
}

func TestDebugWebhookGatewayError(t *testing.T) {
	api := &fakeWebhookAPI{infoErr: errors.New("telegram unreachable")}
	s := NewServer(Options{ExpectedWebhookURL: "https://bot.example/hook", API: api})

	rec := serve(t, s, http.MethodGet, "/debug/webhook")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, false, body["ok"])
}

func TestResetWebhookDropsPending(t *testing.T) {
	api := &fakeWebhookAPI{}
	s := NewServer(Options{ExpectedWebhookURL: "https://bot.example/hook", API: api})

	rec := serve(t, s, http.MethodGet, "/debug/reset-webhook")
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, api.set)
	assert.True(t, api.set.DropUpdates)
	require.NotNil(t, api.set.Endpoint)
	assert.Equal(t, "https://bot.example/hook", api.set.Endpoint.PublicURL)

	body := decode(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "https://bot.example/hook", body["set_to"])
}
