package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/config"
)

// GatewayService talks to the payment gateway's REST API. Amounts cross the
// wire in minor units.
type GatewayService struct {
	secretKey   string
	baseURL     string
	callbackURL string
	client      *http.Client
}

// NewGatewayService creates a gateway client from config
func NewGatewayService(cfg config.GatewayConfig) *GatewayService {
	return &GatewayService{
		secretKey:   cfg.SecretKey,
		baseURL:     cfg.BaseURL,
		callbackURL: cfg.CallbackURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// PaymentIntent is the gateway-side handle for a transaction that has been
// initialized but not yet completed.
type PaymentIntent struct {
	IntentID         string
	Reference        string
	AuthorizationURL string
}

type initializeRequest struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Reference   string            `json:"reference"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// InitializeTransaction creates a payment intent for the given reference and
// returns the hosted checkout URL the buyer is redirected to.
func (s *GatewayService) InitializeTransaction(ctx context.Context, reference, email string, amount decimal.Decimal, currency string, metadata map[string]string) (*PaymentIntent, error) {
	payload := initializeRequest{
		Email:       email,
		Amount:      amount.Mul(decimal.NewFromInt(100)).IntPart(),
		Currency:    currency,
		Reference:   reference,
		CallbackURL: s.callbackURL,
		Metadata:    metadata,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initialize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create initialize request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result initializeResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse gateway response: %w", err)
	}

	if !result.Status {
		return nil, fmt.Errorf("gateway rejected transaction: %s", result.Message)
	}

	return &PaymentIntent{
		IntentID:         result.Data.AccessCode,
		Reference:        result.Data.Reference,
		AuthorizationURL: result.Data.AuthorizationURL,
	}, nil
}

// VerifySignature checks the webhook signature header against the raw request
// body. The gateway signs deliveries with HMAC-SHA512 over the body using the
// secret key.
func (s *GatewayService) VerifySignature(body []byte, signature string) bool {
	if s.secretKey == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha512.New, []byte(s.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
