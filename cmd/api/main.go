package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"joincloud-billing/internal/client"
	"joincloud-billing/internal/config"
	"joincloud-billing/internal/repository"
	"joincloud-billing/internal/server"
	"joincloud-billing/internal/service"
)

func newLogger(logCfg config.Log) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(logCfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if logCfg.Format == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(h)
}

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	db, err := client.InitSqliteClient(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open activation journal", "error", err)
		os.Exit(1)
	}

	razorpayClient := client.NewRazorpayClient(&cfg.Razorpay)
	authorityClient := client.NewAuthorityClient(&cfg.Authority)

	activationRepo := repository.NewActivationRepository(db)

	modeResolver := service.NewModeResolver(authorityClient)
	orderService := service.NewOrderService(razorpayClient, &cfg.Razorpay)
	activationService := service.NewActivationService(
		authorityClient,
		activationRepo,
		modeResolver,
		&cfg.Razorpay,
		cfg.Desktop.DeepLinkScheme,
	)
	desktopService := service.NewDesktopService(
		authorityClient,
		modeResolver,
		service.NewHTTPProber(cfg.Desktop),
		&cfg.Desktop,
	)

	srv := server.NewServer(
		&cfg.Session,
		orderService,
		activationService,
		desktopService,
		modeResolver,
		logger,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	logger.Info("starting HTTP server", "addr", serverAddr, "env", cfg.Environment.Name)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
		os.Exit(1)
	}
}
