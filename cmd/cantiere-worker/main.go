package main

import (
	"context"
	"os"
	"time"

	"cantiere/internal/amqp"
	"cantiere/internal/backend"
	"cantiere/internal/cli"
	"cantiere/internal/log"
	"cantiere/internal/services"
	"cantiere/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger().WithComponent(log.ComponentWorker)

	logger.Info("Starting cantiere-worker")

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
	if adapters.Inbox == nil {
		logger.Error("No inbox configured, the worker has nothing to scan")
		os.Exit(1)
	}

	receipts := services.NewReceiptService(repo, adapters.Analyzer, cfg.DataDir)
	ingestion := services.NewIngestionService(repo, receipts, adapters.Inbox, int64(cfg.ScanBatchSize))
	scanWorker := worker.NewScanWorker(ingestion, repo)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// Recover connections a previous run left mid-sync before taking new work.
	if err := scanWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup check failed", log.FieldError, err)
	}

	scheduler := worker.NewScheduler(ingestion, repo, cfg.ScanSchedule, cfg.ScanProjectID)
	if err := scheduler.Start(); err != nil {
		logger.Error("Failed to start scheduler", log.FieldError, err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		go func() {
			handler := func(msg *amqp.ScanJobMessage) error {
				return scanWorker.HandleScanJob(ctx, msg)
			}
			if err := amqpClient.ConsumeScanJobs(ctx, handler); err != nil && err != context.Canceled {
				logger.Error("Scan job consumption stopped", log.FieldError, err)
			}
		}()
	} else {
		logger.Info("AMQP not configured, running scheduled scans only")
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
