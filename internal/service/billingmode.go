package service

import (
	"context"
	"log/slog"
	"sync"

	"joincloud-billing/internal/client"
	"joincloud-billing/internal/model"
)

// ModeResolver decides whether real payment is required before activation.
// The mode is resolved server-side from the license authority; a client can
// never switch it.
type ModeResolver interface {
	Resolve(ctx context.Context) model.BillingMode
}

type modeResolverImpl struct {
	authorityClient client.AuthorityClient

	mu       sync.Mutex
	resolved bool
	mode     model.BillingMode
}

func NewModeResolver(authorityClient client.AuthorityClient) ModeResolver {
	return &modeResolverImpl{authorityClient: authorityClient}
}

// Resolve queries the authority's public config endpoint on first use and
// caches the answer for the life of the process. Any failure resolves to
// LIVE: defaulting to DEV would silently waive payment, so the only safe
// fallback is to require it.
func (r *modeResolverImpl) Resolve(ctx context.Context) model.BillingMode {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resolved {
		return r.mode
	}

	raw, err := r.authorityClient.PaymentMode(ctx)
	if err != nil {
		// Not cached: a later call may reach the authority. Until then the
		// answer is LIVE.
		slog.WarnContext(ctx, "billing mode query failed, defaulting to LIVE",
			"error", err)
		return model.ModeLive
	}

	r.resolved = true
	r.mode = model.ParseBillingMode(raw)
	return r.mode
}
