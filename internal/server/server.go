package server

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"joincloud-billing/internal/config"
	"joincloud-billing/internal/handler"
	"joincloud-billing/internal/middleware"
	"joincloud-billing/internal/service"
)

type Server struct {
	echo           *echo.Echo
	sessionCfg     *config.Session
	billingHandler *handler.BillingHandler
	desktopHandler *handler.DesktopHandler
}

func NewServer(
	sessionCfg *config.Session,
	orderService service.OrderService,
	activationService service.ActivationService,
	desktopService service.DesktopService,
	modeResolver service.ModeResolver,
	logger *slog.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.RequestID())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
				logger.Error("request", attrs...)
			} else {
				logger.Info("request", attrs...)
			}
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:           e,
		sessionCfg:     sessionCfg,
		billingHandler: handler.NewBillingHandler(orderService, activationService, modeResolver),
		desktopHandler: handler.NewDesktopHandler(desktopService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// -------- payment & activation --------
	razorpay := api.Group("/razorpay")
	razorpay.POST("/create-order", s.billingHandler.CreateOrder)
	razorpay.POST("/verify", s.billingHandler.VerifyPayment)

	api.GET("/billing/mode", s.billingHandler.BillingMode)

	// -------- session-authenticated --------
	auth := middleware.SessionAuth(s.sessionCfg.JWTSecret)
	api.POST("/license/dev-activate", s.billingHandler.DevActivate, auth)
	api.POST("/auth/desktop-token", s.desktopHandler.DesktopToken, auth)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}

// Echo exposes the underlying router for handler-level tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
