package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{
		ShopID:      "shop-1",
		SecretKey:   "secret-1",
		BaseURL:     srv.URL,
		Price:       "1000.00",
		Currency:    "RUB",
		ReturnURL:   "https://example.com/",
		Description: "Course access",
	})
}

func TestCreateSendsReceiptAndAuth(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payments", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "shop-1", user)
		assert.Equal(t, "secret-1", pass)
		assert.NotEmpty(t, r.Header.Get("Idempotence-Key"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":           "pay-123",
			"status":       "pending",
			"confirmation": map[string]string{"confirmation_url": "https://pay.example/confirm"},
		})
	})

	res, err := client.Create(context.Background(), CreateRequest{TelegramID: 42, CustomerEmail: "name@gmail.com"})
	require.NoError(t, err)
	assert.Equal(t, "pay-123", res.PaymentID)
	assert.Equal(t, "https://pay.example/confirm", res.ConfirmationURL)

	amountMap := got["amount"].(map[string]any)
	assert.Equal(t, "1000.00", amountMap["value"])
	assert.Equal(t, "RUB", amountMap["currency"])
	assert.Equal(t, true, got["capture"])

	receiptMap := got["receipt"].(map[string]any)
	customer := receiptMap["customer"].(map[string]any)
	assert.Equal(t, "name@gmail.com", customer["email"])
	assert.Equal(t, float64(2), receiptMap["tax_system_code"])

	items := receiptMap["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, float64(1), item["vat_code"])
	assert.Equal(t, "full_payment", item["payment_mode"])
	assert.Equal(t, "service", item["payment_subject"])

	meta := got["metadata"].(map[string]any)
	assert.Equal(t, "42", meta["telegram_id"])
}

func TestCreateRejectsMissingConfirmation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "pay-123", "status": "pending"})
	})

	_, err := client.Create(context.Background(), CreateRequest{TelegramID: 1, CustomerEmail: "a@b.c"})
	assert.Error(t, err)
}

func TestStatusNormalizes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/payments/pay-123", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "pay-123", "status": "  SUCCEEDED \n"})
	})

	status, err := client.Status(context.Background(), "pay-123")
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, status)
}

func TestStatusGatewayError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"type":"error"}`, http.StatusUnauthorized)
	})

	_, err := client.Status(context.Background(), "pay-404")
	assert.ErrorContains(t, err, "401")
}
