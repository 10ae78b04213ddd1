package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brickline-erp/brickline-erp/internal/app"
	"github.com/brickline-erp/brickline-erp/internal/hardware"
	"github.com/brickline-erp/brickline-erp/internal/sales"
	"github.com/brickline-erp/brickline-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	client, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()

	hardwareRepo := hardware.NewRepository(pool)
	hardwareService := hardware.NewService(hardwareRepo, nil)

	salesRepo := sales.NewRepository(pool)
	salesService := sales.NewService(salesRepo, hardwareRepo, nil)

	mailer := &jobs.SMTPMailer{
		Addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		From: cfg.SMTPFrom,
	}

	quoteExpiryJob := jobs.NewQuoteExpiryJob(salesService, client, logger, cfg.SalesDeskEmail)
	lowStockJob := jobs.NewLowStockScanJob(hardwareService, client, logger, cfg.StoresEmail)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: jobs.NewSendEmailHandler(logger, mailer)},
			{Type: jobs.TaskTypeQuoteExpirySweep, Handler: quoteExpiryJob.Handle},
			{Type: jobs.TaskTypeLowStockScan, Handler: lowStockJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 6 * * *", Task: jobs.NewQuoteExpirySweepTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 6 * * *", Task: jobs.NewLowStockScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
