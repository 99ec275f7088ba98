package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"joincloud-billing/internal/apperrors"
	"joincloud-billing/internal/client"
	"joincloud-billing/internal/config"
	"joincloud-billing/internal/dto"
	"joincloud-billing/internal/model"
	"joincloud-billing/internal/repository"
	"joincloud-billing/internal/signature"
)

// ErrDevModeDisabled marks a dev-activation attempt while billing runs in
// LIVE mode. The route is refused outright; no client-sent flag can reopen it.
var ErrDevModeDisabled = errors.New("dev activation is disabled in LIVE mode")

const syncPendingWarning = "Payment recorded but license update could not be confirmed. It will sync automatically."

// ActivationService converts a verified payment (or, in DEV mode, an
// authenticated request) into a license-state mutation at the license
// authority.
type ActivationService interface {
	VerifyAndActivate(ctx context.Context, req *dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error)
	DevActivate(ctx context.Context, accountID string, req *dto.DevActivateRequest) (*dto.DevActivateResponse, error)
}

type activationServiceImpl struct {
	authorityClient client.AuthorityClient
	activationRepo  repository.ActivationRepository
	modeResolver    ModeResolver
	razorpayCfg     *config.Razorpay
	deepLinkScheme  string
}

func NewActivationService(
	authorityClient client.AuthorityClient,
	activationRepo repository.ActivationRepository,
	modeResolver ModeResolver,
	razorpayCfg *config.Razorpay,
	deepLinkScheme string,
) ActivationService {
	return &activationServiceImpl{
		authorityClient: authorityClient,
		activationRepo:  activationRepo,
		modeResolver:    modeResolver,
		razorpayCfg:     razorpayCfg,
		deepLinkScheme:  deepLinkScheme,
	}
}

// VerifyAndActivate is the LIVE protocol. Signature verification comes first
// and is terminal on failure; the authority is never contacted for an
// unverified assertion. A replayed (order_id, payment_id) pair that already
// succeeded is answered from the journal without re-applying anything.
func (s *activationServiceImpl) VerifyAndActivate(ctx context.Context, req *dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error) {
	if s.razorpayCfg.KeySecret == "" {
		return nil, apperrors.New(apperrors.NotConfigured, "Razorpay not configured.")
	}

	if req.RazorpayPaymentID == "" || req.RazorpayOrderID == "" || req.RazorpaySignature == "" {
		return nil, apperrors.New(apperrors.InvalidInput, "Missing Razorpay payment fields.")
	}

	if !signature.Verify(req.RazorpayOrderID, req.RazorpayPaymentID,
		req.RazorpaySignature, s.razorpayCfg.KeySecret) {
		return nil, apperrors.New(apperrors.SignatureInvalid,
			"Payment signature verification failed.")
	}

	plan, ok := model.LookupPlan(req.Plan)
	if !ok {
		return nil, apperrors.New(apperrors.InvalidInput,
			fmt.Sprintf("Unknown plan %q.", req.Plan))
	}

	prior, err := s.activationRepo.Find(ctx, req.RazorpayOrderID, req.RazorpayPaymentID)
	if err != nil {
		return nil, fmt.Errorf("look up activation journal: %w", err)
	}
	if prior != nil && prior.Status == model.ActivationApplied {
		return &dto.VerifyPaymentResponse{
			Success:     true,
			LicenseID:   prior.LicenseID,
			RefreshLink: s.refreshLink(req.AccountID, req.DeviceID),
		}, nil
	}

	deviceLimit := req.DeviceLimit
	if deviceLimit == "" {
		deviceLimit = fmt.Sprintf("%d", plan.DeviceLimit)
	}

	licenseID, err := s.authorityClient.ForwardPayment(ctx, &client.ForwardPaymentRequest{
		RazorpayPaymentID: req.RazorpayPaymentID,
		RazorpayOrderID:   req.RazorpayOrderID,
		RazorpaySignature: req.RazorpaySignature,
		AccountID:         req.AccountID,
		Plan:              plan.Tier,
		DeviceLimit:       deviceLimit,
	})

	switch {
	case err == nil:
		s.journalApplied(ctx, req, plan.Tier, licenseID, prior)
		return &dto.VerifyPaymentResponse{
			Success:     true,
			LicenseID:   licenseID,
			RefreshLink: s.refreshLink(req.AccountID, req.DeviceID),
		}, nil

	case apperrors.IsKind(err, apperrors.UpstreamRejected):
		// Authority reachable but said no. The caller gets the authority's
		// own message; nothing is journaled because nothing was applied.
		return nil, err

	default:
		// The payment itself is valid and recorded at the gateway; only the
		// license sync is pending. A paying customer must never see a hard
		// failure here, and must never be told everything succeeded either.
		slog.WarnContext(ctx, "license authority unreachable, returning qualified success",
			"order_id", req.RazorpayOrderID, "error", err)
		s.journalPending(ctx, req, plan.Tier, prior)
		return &dto.VerifyPaymentResponse{
			Success: true,
			Warning: syncPendingWarning,
		}, nil
	}
}

// DevActivate is the payment-bypass protocol, reachable only while the
// server-resolved billing mode is DEV.
func (s *activationServiceImpl) DevActivate(ctx context.Context, accountID string, req *dto.DevActivateRequest) (*dto.DevActivateResponse, error) {
	if s.modeResolver.Resolve(ctx) != model.ModeDev {
		return nil, ErrDevModeDisabled
	}

	plan, ok := model.LookupPlan(req.Plan)
	if !ok {
		return nil, apperrors.New(apperrors.InvalidInput,
			fmt.Sprintf("Unknown plan %q.", req.Plan))
	}

	licenseID, err := s.authorityClient.DevActivate(ctx, &client.DevActivateRequest{
		AccountID: accountID,
		Plan:      plan.Tier,
		DeviceID:  req.DeviceID,
	})
	if err != nil {
		return nil, fmt.Errorf("authority dev activate: %w", err)
	}

	return &dto.DevActivateResponse{
		Success:   true,
		LicenseID: licenseID,
	}, nil
}

func (s *activationServiceImpl) journalApplied(ctx context.Context, req *dto.VerifyPaymentRequest, tier, licenseID string, prior *model.ActivationRecord) {
	var err error
	if prior != nil {
		err = s.activationRepo.PromoteToApplied(ctx, req.RazorpayOrderID, req.RazorpayPaymentID, licenseID)
	} else {
		err = s.activationRepo.MarkApplied(ctx, req.RazorpayOrderID, req.RazorpayPaymentID,
			req.AccountID, tier, licenseID)
	}
	if err != nil {
		// The authority already applied the mutation; a journal write failure
		// must not fail the customer. The pair will simply be re-forwarded on
		// a retry and deduplicated upstream.
		slog.ErrorContext(ctx, "failed to journal applied activation",
			"order_id", req.RazorpayOrderID, "error", err)
	}
}

func (s *activationServiceImpl) journalPending(ctx context.Context, req *dto.VerifyPaymentRequest, tier string, prior *model.ActivationRecord) {
	if prior != nil {
		return // already journaled as pending
	}
	if err := s.activationRepo.MarkPendingSync(ctx, req.RazorpayOrderID, req.RazorpayPaymentID,
		req.AccountID, tier); err != nil {
		slog.ErrorContext(ctx, "failed to journal pending activation",
			"order_id", req.RazorpayOrderID, "error", err)
	}
}

// refreshLink is the deep link the success page offers so the desktop app can
// re-fetch license state immediately.
func (s *activationServiceImpl) refreshLink(accountID, deviceID string) string {
	q := url.Values{}
	if accountID != "" {
		q.Set("accountId", accountID)
	}
	if deviceID != "" {
		q.Set("deviceId", deviceID)
	}
	link := s.deepLinkScheme + "://refresh"
	if encoded := q.Encode(); encoded != "" {
		link += "?" + encoded
	}
	return link
}
