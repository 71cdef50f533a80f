// Package payment talks to the YooKassa REST API: payment creation with
// a fiscal receipt and status polling.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aisistems/coursebot/core/logger"
)

// Normalized payment statuses as reported by the gateway.
const (
	StatusSucceeded         = "succeeded"
	StatusPending           = "pending"
	StatusWaitingForCapture = "waiting_for_capture"
	StatusCanceled          = "canceled"
)

const defaultBaseURL = "https://api.yookassa.ru/v3"

// CreateRequest carries everything needed to create a course payment.
type CreateRequest struct {
	TelegramID    int64
	CustomerEmail string
}

// CreateResult is the outcome of a successful payment creation.
type CreateResult struct {
	PaymentID       string
	ConfirmationURL string
}

// Options configures a Client.
type Options struct {
	ShopID      string
	SecretKey   string
	BaseURL     string
	Price       string
	Currency    string
	ReturnURL   string
	Description string
	HTTPClient  *http.Client
}

// Client is an authenticated YooKassa API client.
type Client struct {
	http        *http.Client
	baseURL     string
	shopID      string
	secretKey   string
	price       string
	currency    string
	returnURL   string
	description string
}

// NewClient builds a gateway client. The HTTP client's timeout bounds
// each API call; callers additionally guard with their own deadlines.
func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	return &Client{
		http:        httpClient,
		baseURL:     base,
		shopID:      opts.ShopID,
		secretKey:   opts.SecretKey,
		price:       opts.Price,
		currency:    opts.Currency,
		returnURL:   opts.ReturnURL,
		description: opts.Description,
	}
}

type amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type receiptItem struct {
	Description    string `json:"description"`
	Quantity       string `json:"quantity"`
	Amount         amount `json:"amount"`
	VatCode        int    `json:"vat_code"`
	PaymentMode    string `json:"payment_mode"`
	PaymentSubject string `json:"payment_subject"`
}

type receiptCustomer struct {
	Email string `json:"email"`
}

type receipt struct {
	Customer      receiptCustomer `json:"customer"`
	TaxSystemCode int             `json:"tax_system_code"`
	Items         []receiptItem   `json:"items"`
}

type createPayload struct {
	Amount       amount            `json:"amount"`
	Confirmation map[string]string `json:"confirmation"`
	Capture      bool              `json:"capture"`
	Description  string            `json:"description"`
	Metadata     map[string]string `json:"metadata"`
	Receipt      receipt           `json:"receipt"`
}

type paymentResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Confirmation struct {
		ConfirmationURL string `json:"confirmation_url"`
	} `json:"confirmation"`
}

// Create registers a new payment and returns its id plus the
// confirmation URL the user must visit. Each call carries a fresh
// idempotence key.
func (c *Client) Create(ctx context.Context, req CreateRequest) (CreateResult, error) {
	payload := createPayload{
		Amount:       amount{Value: c.price, Currency: c.currency},
		Confirmation: map[string]string{"type": "redirect", "return_url": c.returnURL},
		Capture:      true,
		Description:  c.description,
		Metadata:     map[string]string{"telegram_id": fmt.Sprintf("%d", req.TelegramID)},
	}
	payload.Receipt.Customer.Email = req.CustomerEmail
	payload.Receipt.TaxSystemCode = 2
	payload.Receipt.Items = []receiptItem{{
		Description:    c.description,
		Quantity:       "1.00",
		Amount:         amount{Value: c.price, Currency: c.currency},
		VatCode:        1,
		PaymentMode:    "full_payment",
		PaymentSubject: "service",
	}}

	body, err := json.Marshal(payload)
	if err != nil {
		return CreateResult{}, fmt.Errorf("payment create: encode: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return CreateResult{}, fmt.Errorf("payment create: request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotence-Key", uuid.NewString())
	httpReq.SetBasicAuth(c.shopID, c.secretKey)

	resp, err := c.do(ctx, httpReq, "payment.create")
	if err != nil {
		return CreateResult{}, err
	}

	if resp.ID == "" || resp.Confirmation.ConfirmationURL == "" {
		return CreateResult{}, fmt.Errorf("payment create: response missing id or confirmation_url")
	}
	return CreateResult{PaymentID: resp.ID, ConfirmationURL: resp.Confirmation.ConfirmationURL}, nil
}

// Status returns the normalized (lowercased, trimmed) status of a payment.
func (c *Client) Status(ctx context.Context, paymentID string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/payments/"+paymentID, nil)
	if err != nil {
		return "", fmt.Errorf("payment status: request: %w", err)
	}
	httpReq.SetBasicAuth(c.shopID, c.secretKey)

	resp, err := c.do(ctx, httpReq, "payment.status")
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(resp.Status)), nil
}

func (c *Client) do(ctx context.Context, req *http.Request, event string) (*paymentResponse, error) {
	start := time.Now()
	httpResp, err := c.http.Do(req)
	if err != nil {
		logger.Error(ctx, "payments", event,
			slog.String("status", "fail"),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, fmt.Errorf("%s: %w", event, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: read: %w", event, err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		logger.Error(ctx, "payments", event,
			slog.String("status", "fail"),
			slog.Int("err_code", httpResp.StatusCode),
			slog.String("payload", logger.SanitizeLimit(string(raw), 256)),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, fmt.Errorf("%s: gateway returned %d", event, httpResp.StatusCode)
	}

	var resp paymentResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", event, err)
	}

	logger.Debug(ctx, "payments", event,
		slog.String("status", "ok"),
		slog.String("payment_id", resp.ID),
		slog.String("payment_status", resp.Status),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return &resp, nil
}
