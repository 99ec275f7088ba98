package model

// BillingMode gates whether real payment is required before activation. It is
// resolved server-side from the license authority and never trusted from
// client input.
type BillingMode string

const (
	ModeLive BillingMode = "LIVE"
	ModeDev  BillingMode = "DEV"
)

// ParseBillingMode maps the authority's payment_mode value onto a tagged
// constant. Anything unrecognized resolves to LIVE: failing open to the
// payment bypass is forbidden.
func ParseBillingMode(s string) BillingMode {
	if s == string(ModeDev) {
		return ModeDev
	}
	return ModeLive
}

// Plan is a client-facing plan key with the authority-side tier it maps to.
// The table is fixed; an unrecognized key is rejected before any network
// call. The "custom" plan is quoted over email and never passes through the
// payment protocol.
type Plan struct {
	Tier        string
	DeviceLimit int
}

var plans = map[string]Plan{
	"pro":  {Tier: "pro", DeviceLimit: 5},
	"team": {Tier: "team", DeviceLimit: 5},
}

// LookupPlan normalizes a client plan key to the authority's tier vocabulary.
func LookupPlan(key string) (Plan, bool) {
	p, ok := plans[key]
	return p, ok
}
