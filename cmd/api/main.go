package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"moment-ticketing/internal/client"
	"moment-ticketing/internal/config"
	"moment-ticketing/internal/logger"
	"moment-ticketing/internal/model"
	"moment-ticketing/internal/notify"
	"moment-ticketing/internal/repository"
	"moment-ticketing/internal/server"
	"moment-ticketing/internal/service"
)

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

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer zap.L().Sync()

	db := client.InitDB(cfg.DatabaseURL)
	gatewayClient := client.NewGatewayClient(&cfg.Gateway)

	var notifier notify.Notifier = notify.NoopNotifier{}
	if cfg.AMQP.URL != "" {
		amqpNotifier, err := notify.NewAMQPNotifier(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			zap.L().Fatal("connect notification broker", zap.Error(err))
		}
		defer amqpNotifier.Close()
		notifier = amqpNotifier
	}

	momentRepo := repository.NewMomentRepository(db)
	sessionRepo := repository.NewPaymentSessionRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	if cfg.Environment.Name == "development" {
		seedDemoMoment(momentRepo)
	}

	ticketingService := service.NewTicketingService(
		db, gatewayClient, notifier, cfg.BaseURL,
		momentRepo,
		sessionRepo,
		participantRepo,
		webhookEventRepo,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(ticketingService, cfg.Auth.JWTSecret)

	zap.L().Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	zap.L().Info("signal received, starting graceful shutdown")

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		zap.L().Fatal("HTTP server shutdown error", zap.Error(err))
	}
}

func seedDemoMoment(momentRepo repository.MomentRepository) {
	ctx := context.Background()
	count, err := momentRepo.Count(ctx)
	if err != nil || count > 0 {
		return
	}
	err = momentRepo.Create(ctx, &model.Moment{
		ID:                    uuid.NewString(),
		Title:                 "Rooftop supper club",
		HostID:                uuid.NewString(),
		BasePriceCents:        2000,
		Currency:              "USD",
		MaxParticipants:       12,
		PlatformFeePercentage: 10,
		PaymentRequired:       true,
	})
	if err != nil {
		zap.L().Warn("seed demo moment", zap.Error(err))
	}
}
