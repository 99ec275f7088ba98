package dto

type CreateOrderRequest struct {
	AmountPaise int64  `json:"amount_paise"`
	Receipt     string `json:"receipt,omitempty"`
}

type CreateOrderResponse struct {
	OrderID  string `json:"order_id"`
	KeyID    string `json:"key_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// VerifyPaymentRequest carries the untrusted payment assertion the browser
// submits after Razorpay checkout completes.
type VerifyPaymentRequest struct {
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	AccountID         string `json:"account_id,omitempty"`
	DeviceID          string `json:"device_id,omitempty"`
	Plan              string `json:"plan"`
	DeviceLimit       string `json:"device_limit"`
}

type VerifyPaymentResponse struct {
	Success   bool   `json:"success"`
	LicenseID string `json:"license_id,omitempty"`
	// Warning is set on the qualified-success path: the payment is recorded
	// but license sync is still pending at the authority.
	Warning     string `json:"warning,omitempty"`
	RefreshLink string `json:"refresh_link,omitempty"`
}

type DevActivateRequest struct {
	Plan     string `json:"plan"`
	DeviceID string `json:"device_id,omitempty"`
}

type DevActivateResponse struct {
	Success   bool   `json:"success"`
	LicenseID string `json:"license_id,omitempty"`
}

type DesktopTokenRequest struct {
	DeviceID string `json:"device_id"`
}

// DesktopTokenResponse describes how the one-time token is being delivered to
// the local app. The token itself only ever appears inside URL; it is never
// logged or stored.
type DesktopTokenResponse struct {
	Delivery string `json:"delivery"` // "loopback" or "deeplink"
	URL      string `json:"url"`
	// Instructions is set on the deep-link fallback so the front end can show
	// an explicit "open the app, then click" affordance instead of retrying
	// silently.
	Instructions string `json:"instructions,omitempty"`
}

type BillingModeResponse struct {
	PaymentMode string `json:"payment_mode"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
