package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"joincloud-billing/internal/apperrors"
	"joincloud-billing/internal/config"
)

// AuthorityClient talks to the license authority ("control plane") that owns
// all account and license state. This service only requests mutations; it
// never writes license state itself.
type AuthorityClient interface {
	ForwardPayment(ctx context.Context, req *ForwardPaymentRequest) (licenseID string, err error)
	DevActivate(ctx context.Context, req *DevActivateRequest) (licenseID string, err error)
	IssueDesktopToken(ctx context.Context, deviceID, bearerToken string) (token string, err error)
	PaymentMode(ctx context.Context) (string, error)
}

// ForwardPaymentRequest is the verified assertion forwarded to the
// authority's webhook-equivalent endpoint. Fields mirror the Razorpay
// checkout result plus the plan selection.
type ForwardPaymentRequest struct {
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	AccountID         string `json:"account_id,omitempty"`
	Plan              string `json:"plan"`
	DeviceLimit       string `json:"device_limit"`
}

type DevActivateRequest struct {
	AccountID string `json:"account_id"`
	Plan      string `json:"plan"`
	DeviceID  string `json:"device_id,omitempty"`
}

type authorityClientImpl struct {
	httpClient *http.Client
	baseURL    string
}

func NewAuthorityClient(authorityCfg *config.Authority) AuthorityClient {
	return &authorityClientImpl{
		httpClient: &http.Client{
			Timeout: authorityCfg.Timeout,
		},
		baseURL: authorityCfg.URL,
	}
}

// authorityError mirrors the authority's error envelope.
type authorityError struct {
	Message string `json:"message"`
}

func (c *authorityClientImpl) post(ctx context.Context, path, bearerToken string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.UpstreamUnavailable,
			"could not reach the license authority", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		msg := "license authority rejected the request"
		var authErr authorityError
		if json.Unmarshal(b, &authErr) == nil && authErr.Message != "" {
			msg = authErr.Message
		}
		return apperrors.Wrap(apperrors.UpstreamRejected, msg,
			fmt.Errorf("authority error %d: %s", resp.StatusCode, string(b)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode authority response: %w", err)
		}
	}
	return nil
}

func (c *authorityClientImpl) ForwardPayment(ctx context.Context, req *ForwardPaymentRequest) (string, error) {
	var res struct {
		LicenseID string `json:"license_id"`
	}
	if err := c.post(ctx, "/api/v1/webhooks/razorpay-manual", "", req, &res); err != nil {
		return "", fmt.Errorf("forward payment: %w", err)
	}
	return res.LicenseID, nil
}

func (c *authorityClientImpl) DevActivate(ctx context.Context, req *DevActivateRequest) (string, error) {
	var res struct {
		LicenseID string `json:"license_id"`
	}
	if err := c.post(ctx, "/api/v1/licenses/dev-activate", "", req, &res); err != nil {
		return "", fmt.Errorf("dev activate: %w", err)
	}
	return res.LicenseID, nil
}

func (c *authorityClientImpl) IssueDesktopToken(ctx context.Context, deviceID, bearerToken string) (string, error) {
	payload := map[string]string{"deviceId": deviceID}
	var res struct {
		Token string `json:"token"`
	}
	if err := c.post(ctx, "/api/v1/auth/desktop-token", bearerToken, payload, &res); err != nil {
		return "", fmt.Errorf("issue desktop token: %w", err)
	}
	if res.Token == "" {
		return "", apperrors.New(apperrors.UpstreamRejected,
			"license authority returned no desktop token")
	}
	return res.Token, nil
}

func (c *authorityClientImpl) PaymentMode(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v1/config", nil)
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.Wrap(apperrors.UpstreamUnavailable,
			"could not reach the license authority", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperrors.New(apperrors.UpstreamRejected,
			fmt.Sprintf("authority config endpoint returned %d", resp.StatusCode))
	}

	var res struct {
		PaymentMode string `json:"payment_mode"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode config response: %w", err)
	}
	return res.PaymentMode, nil
}
