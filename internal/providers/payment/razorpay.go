package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/infra"
)

// ErrMissingCredentials indicates that the client was configured without an API key pair.
var ErrMissingCredentials = errors.New("razorpay: key id and secret are required")

// Options configures the Razorpay client.
type Options struct {
	KeyID          string
	KeySecret      string
	WebhookSecret  string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Razorpay performs HTTP calls to the Razorpay orders and payments API.
type Razorpay struct {
	keyID         string
	keySecret     string
	webhookSecret string
	baseURL       string
	httpClient    *http.Client
	logger        *infra.Logger
}

type orderPayload struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type refundPayload struct {
	Amount int64 `json:"amount,omitempty"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// NewRazorpay constructs a client with defaults and injected dependencies.
func NewRazorpay(opts Options) (*Razorpay, error) {
	keyID := strings.TrimSpace(opts.KeyID)
	keySecret := strings.TrimSpace(opts.KeySecret)
	if keyID == "" || keySecret == "" {
		return nil, ErrMissingCredentials
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.razorpay.com/v1"
	}
	logger := opts.Logger
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	return &Razorpay{
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: strings.TrimSpace(opts.WebhookSecret),
		baseURL:       baseURL,
		httpClient:    httpClient,
		logger:        logger,
	}, nil
}

func (c *Razorpay) KeyID() string {
	return c.keyID
}

// CreateOrder opens an order for the amount in paise.
func (c *Razorpay) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	payload := orderPayload{
		Amount:   req.Amount.Paise(),
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	}
	raw, err := c.post(ctx, "/orders", payload)
	if err != nil {
		return nil, err
	}
	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("%w: razorpay: decode order: %v", domain.ErrGateway, err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: razorpay: order without id", domain.ErrGateway)
	}
	order.Raw = raw
	c.logger.Debug().
		Str("order_id", order.ID).
		Int64("amount", order.Amount).
		Str("receipt", req.Receipt).
		Msg("razorpay: order created")
	return &order, nil
}

func (c *Razorpay) VerifyPayment(orderID, paymentID, signature string) bool {
	return validSignature(c.keySecret, []byte(orderID+"|"+paymentID), signature)
}

func (c *Razorpay) VerifyWebhook(body []byte, signature string) bool {
	return validSignature(c.webhookSecret, body, signature)
}

// Refund refunds amount of a captured payment. A zero amount refunds in full.
func (c *Razorpay) Refund(ctx context.Context, paymentID string, amount domain.Money) (*Refund, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, fmt.Errorf("%w: razorpay: payment id is required for a refund", domain.ErrGateway)
	}
	raw, err := c.post(ctx, "/payments/"+paymentID+"/refund", refundPayload{Amount: amount.Paise()})
	if err != nil {
		return nil, err
	}
	var decoded struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: razorpay: decode refund: %v", domain.ErrGateway, err)
	}
	return &Refund{ID: decoded.ID, Status: decoded.Status, Raw: raw}, nil
}

func (c *Razorpay) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("razorpay: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("razorpay: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: razorpay: http request: %v", domain.ErrGateway, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: razorpay: read response: %v", domain.ErrGateway, err)
	}
	if resp.StatusCode >= 300 {
		var detail errorResponse
		if err := json.Unmarshal(raw, &detail); err == nil && detail.Error.Description != "" {
			return nil, fmt.Errorf("%w: razorpay: %s (%s)", domain.ErrGateway, detail.Error.Description, detail.Error.Code)
		}
		return nil, fmt.Errorf("%w: razorpay: status %d", domain.ErrGateway, resp.StatusCode)
	}
	return raw, nil
}

var _ Gateway = (*Razorpay)(nil)
