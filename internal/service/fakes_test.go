package service

import (
	"context"
	"errors"

	"joincloud-billing/internal/client"
	"joincloud-billing/internal/model"
)

type fakeAuthorityClient struct {
	forwardFn func(*client.ForwardPaymentRequest) (string, error)
	devFn     func(*client.DevActivateRequest) (string, error)
	tokenFn   func(deviceID, bearer string) (string, error)
	modeFn    func() (string, error)

	forwardCalls int
	devCalls     int
	modeCalls    int
}

func (f *fakeAuthorityClient) ForwardPayment(_ context.Context, req *client.ForwardPaymentRequest) (string, error) {
	f.forwardCalls++
	if f.forwardFn == nil {
		return "", errors.New("forward not stubbed")
	}
	return f.forwardFn(req)
}

func (f *fakeAuthorityClient) DevActivate(_ context.Context, req *client.DevActivateRequest) (string, error) {
	f.devCalls++
	if f.devFn == nil {
		return "", errors.New("dev activate not stubbed")
	}
	return f.devFn(req)
}

func (f *fakeAuthorityClient) IssueDesktopToken(_ context.Context, deviceID, bearer string) (string, error) {
	if f.tokenFn == nil {
		return "", errors.New("token not stubbed")
	}
	return f.tokenFn(deviceID, bearer)
}

func (f *fakeAuthorityClient) PaymentMode(_ context.Context) (string, error) {
	f.modeCalls++
	if f.modeFn == nil {
		return "", errors.New("mode not stubbed")
	}
	return f.modeFn()
}

type fakeRazorpayClient struct {
	createFn func(amountPaise int64, currency, receipt string) (*client.RazorpayOrder, error)

	lastReceipt string
}

func (f *fakeRazorpayClient) CreateOrder(_ context.Context, amountPaise int64, currency, receipt string) (*client.RazorpayOrder, error) {
	f.lastReceipt = receipt
	return f.createFn(amountPaise, currency, receipt)
}

type staticModeResolver struct {
	mode model.BillingMode
}

func (r *staticModeResolver) Resolve(context.Context) model.BillingMode { return r.mode }

type fakeProber struct {
	reachable bool
	probed    []string
}

func (p *fakeProber) Probe(_ context.Context, healthURL string) bool {
	p.probed = append(p.probed, healthURL)
	return p.reachable
}
