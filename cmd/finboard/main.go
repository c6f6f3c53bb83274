package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/auth"
	"finboard/internal/cli"
	apphttp "finboard/internal/http"
	"finboard/internal/log"
	"finboard/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)

	cfg := cli.LoadAndValidateConfig(logger)
	stores := cli.OpenStores(logger, cfg)
	if stores.Close != nil {
		defer stores.Close()
	}

	opts := apphttp.Options{ReadyCheck: stores.Ready}

	// An empty AMQP URL runs the server without the broker: alert
	// events are not forwarded and async exports return 503.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		opts.Publisher = amqpClient
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	var alertPublisher services.AlertPublisher
	if amqpClient != nil {
		alertPublisher = amqpClient
	}
	txService := services.NewTransactionService(stores.Transactions, stores.Settings, alertPublisher)
	settingsService := services.NewSettingsService(stores.Settings)

	authService := auth.NewService(stores.Users, cfg.SessionCacheCap, cfg.SessionTTL)
	authService.StartSessionReaper(10 * time.Minute)
	defer authService.StopSessionReaper()

	srv := apphttp.NewServer(":"+cfg.Port, txService, settingsService, authService, stores.Transactions, opts)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := cli.NotifyShutdown()
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting finboard server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
