package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"joincloud-billing/internal/apperrors"
	"joincloud-billing/internal/config"
)

type RazorpayClient interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*RazorpayOrder, error)
}

type RazorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type razorpayClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	keyID      string
	keySecret  string
}

func NewRazorpayClient(rzpCfg *config.Razorpay) RazorpayClient {
	return &razorpayClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: rzpCfg.BaseApiURL,
		keyID:      rzpCfg.KeyID,
		keySecret:  rzpCfg.KeySecret,
	}
}

// razorpayError mirrors the gateway's error envelope so a rejection can carry
// the gateway's own description back to the caller.
type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (c *razorpayClientImpl) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*RazorpayOrder, error) {
	payload := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/orders", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	auth := base64.StdEncoding.EncodeToString([]byte(c.keyID + ":" + c.keySecret))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.UpstreamUnavailable,
			"could not reach the payment gateway", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		msg := "failed to create order"
		var rzpErr razorpayError
		if json.Unmarshal(b, &rzpErr) == nil && rzpErr.Error.Description != "" {
			msg = rzpErr.Error.Description
		}
		return nil, apperrors.Wrap(apperrors.UpstreamRejected, msg,
			fmt.Errorf("razorpay error %d: %s", resp.StatusCode, string(b)))
	}

	var order RazorpayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode razorpay response: %w", err)
	}

	return &order, nil
}
