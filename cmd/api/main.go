package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"order-payment-engine/internal/client"
	"order-payment-engine/internal/config"
	"order-payment-engine/internal/logger"
	"order-payment-engine/internal/notifier"
	"order-payment-engine/internal/repository"
	"order-payment-engine/internal/server"
	"order-payment-engine/internal/service"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	envErr := godotenv.Load()

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)
	if envErr != nil {
		log.Info("no .env file found (ok in prod)")
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	db, err := client.InitDBClient(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("init database")
	}

	gateway := client.NewRazorpayClient(cfg.Gateway)

	var mailer client.MailClient = notifier.LogMailer{Log: log}
	if cfg.Mail.APIKey != "" {
		mailer = client.NewMailClient(cfg.Mail)
	}
	dispatcher := notifier.NewDispatcher(cfg.Notifier, mailer, log)

	transactor := repository.NewTransactor(db, cfg.Database.TxMaxAttempts)
	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	inventoryRepo := repository.NewInventoryRepository()
	historyRepo := repository.NewHistoryRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)
	ledger := repository.NewLedger(transactor, orderRepo, inventoryRepo, historyRepo)

	orderService := service.NewOrderService(
		transactor,
		ledger,
		orderRepo,
		productRepo,
		inventoryRepo,
		historyRepo,
		dispatcher,
		log,
	)
	catalogService := service.NewCatalogService(productRepo)
	pricingGate := service.NewPricingGate(transactor, orderRepo, productRepo, log)
	paymentService := service.NewPaymentService(
		cfg.Gateway,
		gateway,
		pricingGate,
		transactor,
		orderRepo,
		historyRepo,
		webhookEventRepo,
		dispatcher,
		log,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(cfg, log, orderService, catalogService, paymentService)

	log.WithField("addr", serverAddr).Info("starting HTTP server")
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.WithError(err).Warn("notifications left unsent")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("shutdown complete")
}
