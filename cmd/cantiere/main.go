package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"cantiere/internal/amqp"
	"cantiere/internal/backend"
	"cantiere/internal/cli"
	apphttp "cantiere/internal/http"
	"cantiere/internal/log"
	"cantiere/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	adapterCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	adapters, err := backend.NewFactory(logger.Logger).CreateAdapters(context.Background(), adapterCfg)
	if err != nil {
		logger.Error("Failed to initialize backends", log.FieldError, err)
		os.Exit(1)
	}

	receipts := services.NewReceiptService(repo, adapters.Analyzer, cfg.DataDir)

	// Scan jobs go through AMQP when configured, so the worker process runs
	// them. Without AMQP but with an inbox, scans run in-process. Without
	// either, the scan endpoint answers 503.
	var scans services.ScanDispatcher
	switch {
	case cfg.AMQPURL != "":
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		scans = services.NewQueueDispatcher(amqpClient)
		logger.Info("Scan jobs dispatched over AMQP", "queue", cfg.AMQPQueue)
	case adapters.Inbox != nil:
		ingestion := services.NewIngestionService(repo, receipts, adapters.Inbox, int64(cfg.ScanBatchSize))
		scans = services.NewLocalDispatcher(ingestion)
		logger.Info("Scan jobs run in-process")
	default:
		logger.Warn("No inbox and no AMQP configured, scan requests will be rejected")
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Projects:    services.NewProjectService(repo),
		Entries:     services.NewEntryService(repo),
		Taxonomy:    services.NewTaxonomyService(repo),
		Stats:       services.NewStatsService(repo),
		Receipts:    receipts,
		Connections: services.NewConnectionService(repo),
		Export:      services.NewExportService(repo),
		Scans:       scans,
		APIToken:    cfg.APIToken,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting cantiere server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
