// Package paystack implements the Paystack REST API calls used for
// invoice payments and subscription upgrades.
package paystack

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/bizflow/internal/config"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.paystack.co"

var (
	ErrNotConfigured = errors.New("paystack secret key not configured")
	ErrUnavailable   = errors.New("payment gateway unavailable")
	ErrDeclined      = errors.New("transaction declined")
)

type InitializeRequest struct {
	Email       string
	AmountNaira float64
	Reference   string
	Metadata    map[string]any
}

type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

type VerifyResult struct {
	Reference   string
	Status      string
	AmountKobo  int64
	Currency    string
	Channel     string
	GatewayResp string
	PaidAt      time.Time
}

// Client talks to the Paystack transaction API.
type Client struct {
	log       *zap.Logger
	secretKey string
	baseURL   string
	client    *http.Client
}

func New(log *zap.Logger, cfg config.Config) *Client {
	baseURL := strings.TrimSpace(cfg.PaystackBaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		log:       log.Named("paystack"),
		secretKey: strings.TrimSpace(cfg.PaystackSecretKey),
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: 12 * time.Second},
	}
}

// NewReference returns a unique transaction reference.
func NewReference() string {
	return "BF-" + ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// ToKobo converts a naira amount to the integer kobo unit Paystack expects.
func ToKobo(naira float64) int64 {
	return int64(math.Round(naira * 100))
}

func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		reference = NewReference()
	}
	payload := map[string]any{
		"email":     req.Email,
		"amount":    ToKobo(req.AmountNaira),
		"currency":  "NGN",
		"reference": reference,
	}
	if len(req.Metadata) > 0 {
		payload["metadata"] = req.Metadata
	}

	var data struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	}
	if err := c.doRequest(ctx, http.MethodPost, "/transaction/initialize", payload, &data); err != nil {
		return nil, err
	}
	return &InitializeResult{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

func (c *Client) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, errors.New("reference required")
	}

	var data struct {
		Reference       string    `json:"reference"`
		Status          string    `json:"status"`
		Amount          int64     `json:"amount"`
		Currency        string    `json:"currency"`
		Channel         string    `json:"channel"`
		GatewayResponse string    `json:"gateway_response"`
		PaidAt          time.Time `json:"paid_at"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &data); err != nil {
		return nil, err
	}
	return &VerifyResult{
		Reference:   data.Reference,
		Status:      data.Status,
		AmountKobo:  data.Amount,
		Currency:    data.Currency,
		Channel:     data.Channel,
		GatewayResp: data.GatewayResponse,
		PaidAt:      data.PaidAt,
	}, nil
}

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload any, out any) error {
	if c.secretKey == "" {
		return ErrNotConfigured
	}

	var bodyReader *strings.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		bodyReader = strings.NewReader(string(body))
	} else {
		bodyReader = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
			c.log.Warn("paystack unreachable", zap.String("path", path), zap.Error(err))
			return ErrUnavailable
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		c.log.Warn("paystack server error", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return ErrUnavailable
	}

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return fmt.Errorf("decode paystack response: %w", err)
	}
	if !api.Status {
		message := strings.TrimSpace(api.Message)
		if message == "" {
			message = "paystack_request_failed"
		}
		return fmt.Errorf("%w: %s", ErrDeclined, message)
	}
	if out != nil && len(api.Data) > 0 {
		if err := json.Unmarshal(api.Data, out); err != nil {
			return fmt.Errorf("decode paystack data: %w", err)
		}
	}
	return nil
}
