package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"joincloud-billing/internal/apperrors"
	"joincloud-billing/internal/client"
	"joincloud-billing/internal/config"
	"joincloud-billing/internal/dto"
	"joincloud-billing/internal/model"
	"joincloud-billing/internal/repository"
)

const testKeySecret = "key_secret"

func signPair(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testKeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func newActivationService(t *testing.T, authority *fakeAuthorityClient, mode model.BillingMode) ActivationService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.ActivationRecord{}))

	return NewActivationService(
		authority,
		repository.NewActivationRepository(db),
		&staticModeResolver{mode: mode},
		&config.Razorpay{KeyID: "rzp_test_key", KeySecret: testKeySecret},
		"joincloud",
	)
}

func validVerifyRequest() *dto.VerifyPaymentRequest {
	return &dto.VerifyPaymentRequest{
		RazorpayPaymentID: "pay_1",
		RazorpayOrderID:   "order_1",
		RazorpaySignature: signPair("order_1", "pay_1"),
		AccountID:         "acc_1",
		Plan:              "pro",
		DeviceLimit:       "5",
	}
}

func TestVerifyAndActivateHappyPath(t *testing.T) {
	authority := &fakeAuthorityClient{
		forwardFn: func(req *client.ForwardPaymentRequest) (string, error) {
			assert.Equal(t, "pro", req.Plan)
			assert.Equal(t, "5", req.DeviceLimit)
			assert.Equal(t, "acc_1", req.AccountID)
			return "lic_1", nil
		},
	}
	svc := newActivationService(t, authority, model.ModeLive)

	resp, err := svc.VerifyAndActivate(context.Background(), validVerifyRequest())
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "lic_1", resp.LicenseID)
	assert.Empty(t, resp.Warning)
	assert.Contains(t, resp.RefreshLink, "joincloud://refresh")
}

func TestVerifyAndActivateMutatedSignatureIsTerminal(t *testing.T) {
	authority := &fakeAuthorityClient{
		forwardFn: func(*client.ForwardPaymentRequest) (string, error) { return "lic_1", nil },
	}
	svc := newActivationService(t, authority, model.ModeLive)

	req := validVerifyRequest()
	// Flip one hex character.
	sig := []byte(req.RazorpaySignature)
	if sig[0] == 'a' {
		sig[0] = 'b'
	} else {
		sig[0] = 'a'
	}
	req.RazorpaySignature = string(sig)

	_, err := svc.VerifyAndActivate(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.SignatureInvalid))
	// A forged assertion never reaches the authority.
	assert.Zero(t, authority.forwardCalls)
}

func TestVerifyAndActivateMissingFields(t *testing.T) {
	authority := &fakeAuthorityClient{}
	svc := newActivationService(t, authority, model.ModeLive)

	req := validVerifyRequest()
	req.RazorpayPaymentID = ""

	_, err := svc.VerifyAndActivate(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.InvalidInput))
	assert.Zero(t, authority.forwardCalls)
}

func TestVerifyAndActivateUnknownPlanRejectedBeforeNetwork(t *testing.T) {
	authority := &fakeAuthorityClient{}
	svc := newActivationService(t, authority, model.ModeLive)

	req := validVerifyRequest()
	req.Plan = "enterprise"

	_, err := svc.VerifyAndActivate(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.InvalidInput))
	assert.Zero(t, authority.forwardCalls)
}

func TestVerifyAndActivateAuthorityRejected(t *testing.T) {
	authority := &fakeAuthorityClient{
		forwardFn: func(*client.ForwardPaymentRequest) (string, error) {
			return "", apperrors.New(apperrors.UpstreamRejected, "malformed plan")
		},
	}
	svc := newActivationService(t, authority, model.ModeLive)

	_, err := svc.VerifyAndActivate(context.Background(), validVerifyRequest())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.UpstreamRejected))
	assert.Equal(t, "malformed plan", apperrors.MessageOf(err))
}

func TestVerifyAndActivateAuthorityUnreachableIsQualifiedSuccess(t *testing.T) {
	authority := &fakeAuthorityClient{
		forwardFn: func(*client.ForwardPaymentRequest) (string, error) {
			return "", apperrors.New(apperrors.UpstreamUnavailable, "could not reach the license authority")
		},
	}
	svc := newActivationService(t, authority, model.ModeLive)

	resp, err := svc.VerifyAndActivate(context.Background(), validVerifyRequest())
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Warning, "sync")
	assert.Empty(t, resp.LicenseID)
}

func TestVerifyAndActivateReplayDoesNotReForward(t *testing.T) {
	authority := &fakeAuthorityClient{
		forwardFn: func(*client.ForwardPaymentRequest) (string, error) { return "lic_1", nil },
	}
	svc := newActivationService(t, authority, model.ModeLive)

	first, err := svc.VerifyAndActivate(context.Background(), validVerifyRequest())
	require.NoError(t, err)
	require.Equal(t, "lic_1", first.LicenseID)
	require.Equal(t, 1, authority.forwardCalls)

	// The same verified pair submitted again is answered from the journal.
	second, err := svc.VerifyAndActivate(context.Background(), validVerifyRequest())
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.Equal(t, "lic_1", second.LicenseID)
	assert.Equal(t, 1, authority.forwardCalls)
}

func TestVerifyAndActivatePendingPairRetriesAndPromotes(t *testing.T) {
	down := true
	authority := &fakeAuthorityClient{
		forwardFn: func(*client.ForwardPaymentRequest) (string, error) {
			if down {
				return "", apperrors.New(apperrors.UpstreamUnavailable, "down")
			}
			return "lic_1", nil
		},
	}
	svc := newActivationService(t, authority, model.ModeLive)

	resp, err := svc.VerifyAndActivate(context.Background(), validVerifyRequest())
	require.NoError(t, err)
	require.NotEmpty(t, resp.Warning)

	// A pending pair is retried once the authority is back, then cached.
	down = false
	resp, err = svc.VerifyAndActivate(context.Background(), validVerifyRequest())
	require.NoError(t, err)
	assert.Equal(t, "lic_1", resp.LicenseID)
	assert.Equal(t, 2, authority.forwardCalls)

	resp, err = svc.VerifyAndActivate(context.Background(), validVerifyRequest())
	require.NoError(t, err)
	assert.Equal(t, "lic_1", resp.LicenseID)
	assert.Equal(t, 2, authority.forwardCalls)
}

func TestVerifyAndActivateNotConfigured(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.ActivationRecord{}))

	svc := NewActivationService(
		&fakeAuthorityClient{},
		repository.NewActivationRepository(db),
		&staticModeResolver{mode: model.ModeLive},
		&config.Razorpay{},
		"joincloud",
	)

	_, err = svc.VerifyAndActivate(context.Background(), validVerifyRequest())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.NotConfigured))
}

func TestDevActivateRefusedInLiveMode(t *testing.T) {
	authority := &fakeAuthorityClient{
		devFn: func(*client.DevActivateRequest) (string, error) { return "lic_dev", nil },
	}
	svc := newActivationService(t, authority, model.ModeLive)

	_, err := svc.DevActivate(context.Background(), "acc_1", &dto.DevActivateRequest{Plan: "pro"})
	require.ErrorIs(t, err, ErrDevModeDisabled)
	assert.Zero(t, authority.devCalls)
}

func TestDevActivateInDevMode(t *testing.T) {
	authority := &fakeAuthorityClient{
		devFn: func(req *client.DevActivateRequest) (string, error) {
			assert.Equal(t, "acc_1", req.AccountID)
			assert.Equal(t, "team", req.Plan)
			return "lic_dev", nil
		},
	}
	svc := newActivationService(t, authority, model.ModeDev)

	resp, err := svc.DevActivate(context.Background(), "acc_1", &dto.DevActivateRequest{Plan: "team"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "lic_dev", resp.LicenseID)
}

func TestDevActivateUnknownPlan(t *testing.T) {
	svc := newActivationService(t, &fakeAuthorityClient{}, model.ModeDev)

	_, err := svc.DevActivate(context.Background(), "acc_1", &dto.DevActivateRequest{Plan: "custom"})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.InvalidInput))
}
