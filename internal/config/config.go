package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL      string `env:"BASE_URL"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"joincloud-billing.db"`

	Razorpay  Razorpay  `envPrefix:"RAZORPAY_"`
	Authority Authority `envPrefix:"CONTROL_PLANE_"`
	Session   Session   `envPrefix:"SESSION_"`
	Desktop   Desktop   `envPrefix:"DESKTOP_"`
}

type Razorpay struct {
	BaseApiURL string `env:"BASE_API_URL" envDefault:"https://api.razorpay.com"`
	KeyID      string `env:"KEY_ID"`
	KeySecret  string `env:"KEY_SECRET"`
}

// Configured reports whether server-side gateway credentials are present.
// Absence degrades order creation to a clean "not configured" error instead
// of an empty-string Basic auth header.
func (r Razorpay) Configured() bool {
	return r.KeyID != "" && r.KeySecret != ""
}

type Authority struct {
	URL     string        `env:"URL"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type Session struct {
	JWTSecret string        `env:"JWT_SECRET"`
	TTL       time.Duration `env:"TTL" envDefault:"1h"`
}

type Desktop struct {
	// Loopback port the desktop app listens on for the auth callback.
	LoopbackPort int `env:"LOOPBACK_PORT" envDefault:"47815"`
	// Budget for the liveness probe; kept short so a stopped app never hangs
	// the browser UI.
	ProbeTimeout time.Duration `env:"PROBE_TIMEOUT" envDefault:"500ms"`
	// URI scheme registered by the desktop app's installer.
	DeepLinkScheme string `env:"DEEP_LINK_SCHEME" envDefault:"joincloud"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
