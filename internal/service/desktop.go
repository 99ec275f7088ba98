package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"joincloud-billing/internal/apperrors"
	"joincloud-billing/internal/client"
	"joincloud-billing/internal/config"
	"joincloud-billing/internal/dto"
)

// Prober checks whether the local desktop process answers on its loopback
// health endpoint. Injected so tests can fake liveness.
type Prober interface {
	Probe(ctx context.Context, healthURL string) bool
}

type httpProber struct {
	httpClient *http.Client
}

func NewHTTPProber(desktopCfg config.Desktop) Prober {
	return &httpProber{
		httpClient: &http.Client{Timeout: desktopCfg.ProbeTimeout},
	}
}

func (p *httpProber) Probe(ctx context.Context, healthURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// transportStrategy produces a delivery descriptor for the token, or reports
// that it cannot (app not running, platform blocks the probe). Strategies are
// tried in order; the first success wins.
type transportStrategy interface {
	Deliver(ctx context.Context, token, mode string) (*dto.DesktopTokenResponse, bool)
}

// loopbackStrategy hands the token over via an HTTP callback on the local
// app's loopback listener. The browser can navigate to it directly since it
// targets the user's own machine.
type loopbackStrategy struct {
	prober Prober
	port   int
}

func (s *loopbackStrategy) Deliver(ctx context.Context, token, mode string) (*dto.DesktopTokenResponse, bool) {
	base := fmt.Sprintf("http://127.0.0.1:%d", s.port)
	if !s.prober.Probe(ctx, base+"/health") {
		return nil, false
	}

	q := url.Values{}
	q.Set("token", token)
	q.Set("mode", mode)
	return &dto.DesktopTokenResponse{
		Delivery: "loopback",
		URL:      base + "/auth/callback?" + q.Encode(),
	}, true
}

// deepLinkStrategy relies on the OS's registered-handler mechanism. It always
// succeeds, so it terminates the strategy list; the caller is shown an
// explicit affordance instead of a silent retry.
type deepLinkStrategy struct {
	scheme string
}

func (s *deepLinkStrategy) Deliver(_ context.Context, token, _ string) (*dto.DesktopTokenResponse, bool) {
	q := url.Values{}
	q.Set("token", token)
	return &dto.DesktopTokenResponse{
		Delivery:     "deeplink",
		URL:          s.scheme + "://auth?" + q.Encode(),
		Instructions: "Open the JoinCloud app, then click this link.",
	}, true
}

// DesktopService requests a single-use device-scoped token from the license
// authority and transports it to the locally running desktop app. The token
// is opaque here: never logged, never persisted beyond the response.
type DesktopService interface {
	Handoff(ctx context.Context, deviceID, bearerToken string) (*dto.DesktopTokenResponse, error)
}

type desktopServiceImpl struct {
	authorityClient client.AuthorityClient
	modeResolver    ModeResolver
	strategies      []transportStrategy
}

func NewDesktopService(
	authorityClient client.AuthorityClient,
	modeResolver ModeResolver,
	prober Prober,
	desktopCfg *config.Desktop,
) DesktopService {
	return &desktopServiceImpl{
		authorityClient: authorityClient,
		modeResolver:    modeResolver,
		strategies: []transportStrategy{
			&loopbackStrategy{prober: prober, port: desktopCfg.LoopbackPort},
			&deepLinkStrategy{scheme: desktopCfg.DeepLinkScheme},
		},
	}
}

// validDeviceID matches the desktop app's device identifier contract: 8 to
// 128 characters and not the placeholder "host".
func validDeviceID(deviceID string) bool {
	return deviceID != "host" && len(deviceID) >= 8 && len(deviceID) <= 128
}

func (s *desktopServiceImpl) Handoff(ctx context.Context, deviceID, bearerToken string) (*dto.DesktopTokenResponse, error) {
	if !validDeviceID(deviceID) {
		return nil, apperrors.New(apperrors.InvalidInput,
			"Invalid device ID. Open JoinCloud on this computer and click Sign In from the app.")
	}

	token, err := s.authorityClient.IssueDesktopToken(ctx, deviceID, bearerToken)
	if err != nil {
		return nil, fmt.Errorf("request desktop token: %w", err)
	}

	mode := string(s.modeResolver.Resolve(ctx))
	for _, strategy := range s.strategies {
		if resp, ok := strategy.Deliver(ctx, token, mode); ok {
			return resp, nil
		}
	}

	// Unreachable while deepLinkStrategy terminates the list; kept so a
	// future reordering cannot silently drop the token.
	return nil, fmt.Errorf("no transport strategy could deliver the desktop token")
}
