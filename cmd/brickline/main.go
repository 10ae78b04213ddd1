package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/brickline-erp/brickline-erp/internal/app"
	"github.com/brickline-erp/brickline-erp/internal/attendance"
	"github.com/brickline-erp/brickline-erp/internal/auth"
	"github.com/brickline-erp/brickline-erp/internal/hardware"
	"github.com/brickline-erp/brickline-erp/internal/platform/cache"
	"github.com/brickline-erp/brickline-erp/internal/platform/db"
	"github.com/brickline-erp/brickline-erp/internal/procurement"
	"github.com/brickline-erp/brickline-erp/internal/rbac"
	"github.com/brickline-erp/brickline-erp/internal/sales"
	"github.com/brickline-erp/brickline-erp/internal/shared"
	"github.com/brickline-erp/brickline-erp/internal/users"
	"github.com/brickline-erp/brickline-erp/internal/workers"
	"github.com/brickline-erp/brickline-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "brickline_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(pool)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)

	rbacMiddleware := rbac.Middleware{Accounts: usersService, Logger: logger}

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(usersRepo, authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager, rbacMiddleware)

	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)

	workersRepo := workers.NewRepository(pool)
	workersService := workers.NewService(workersRepo, auditLogger)
	workersHandler := workers.NewHandler(logger, workersService, rbacMiddleware)

	attendanceRepo := attendance.NewRepository(pool)
	attendanceService := attendance.NewService(attendanceRepo, workersService, auditLogger)
	attendanceHandler := attendance.NewHandler(logger, attendanceService, rbacMiddleware)

	hardwareRepo := hardware.NewRepository(pool)
	hardwareService := hardware.NewService(hardwareRepo, auditLogger)
	hardwareHandler := hardware.NewHandler(logger, hardwareService, rbacMiddleware)

	procurementRepo := procurement.NewRepository(pool)
	procurementService := procurement.NewService(procurementRepo, hardwareRepo, auditLogger)
	procurementHandler := procurement.NewHandler(logger, procurementService, rbacMiddleware)

	salesRepo := sales.NewRepository(pool)
	salesService := sales.NewService(salesRepo, hardwareRepo, auditLogger)
	salesHandler := sales.NewHandler(logger, salesService, rbacMiddleware)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()
	salesService.SetNotifier(jobsClient)

	jobsInspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsInspector.Close(); err != nil {
			logger.Warn("jobs inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(jobsInspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		WorkersHandler:     workersHandler,
		AttendanceHandler:  attendanceHandler,
		HardwareHandler:    hardwareHandler,
		ProcurementHandler: procurementHandler,
		SalesHandler:       salesHandler,
		JobsHandler:        jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("run", slog.Any("error", err))
		os.Exit(1)
	}
}
