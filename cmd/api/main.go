package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sangkips/tailorbook-api/internal/application/service"
	"github.com/sangkips/tailorbook-api/internal/config"
	"github.com/sangkips/tailorbook-api/internal/domain/reconciliation"
	domainRepo "github.com/sangkips/tailorbook-api/internal/domain/repository"
	"github.com/sangkips/tailorbook-api/internal/infrastructure/database"
	"github.com/sangkips/tailorbook-api/internal/infrastructure/lock"
	"github.com/sangkips/tailorbook-api/internal/infrastructure/logger"
	"github.com/sangkips/tailorbook-api/internal/infrastructure/repository"
	"github.com/sangkips/tailorbook-api/internal/presentation/http/handler"
	"github.com/sangkips/tailorbook-api/internal/presentation/http/middleware"
	"github.com/sangkips/tailorbook-api/internal/presentation/http/routes"
	"github.com/sangkips/tailorbook-api/pkg/printer"
	"github.com/sangkips/tailorbook-api/pkg/utils"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const idempotencySweepInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log, cfg.App.Env)
	defer log.Sync() //nolint:errcheck

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	gormLevel := gormlogger.Warn
	if cfg.App.Debug {
		gormLevel = gormlogger.Info
	}
	db, err := database.Open(&cfg.Database, logger.NewGormLogger(log, gormLevel, 200*time.Millisecond), log)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db, log); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Lock.Driver == config.LockDriverRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr(), err)
		}
		log.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr()))
	}

	locker, err := lock.New(cfg.Lock, redisClient, log)
	if err != nil {
		return err
	}
	log.Info("Bill lock ready", zap.String("driver", cfg.Lock.Driver))

	reconciler := reconciliation.New(reconciliation.Policy{
		OverpaymentTolerance: cfg.Reconcile.OverpaymentTolerance,
		StrictTax:            cfg.Reconcile.StrictTax,
	})

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpiryHours)

	// Repositories
	billRepo := repository.NewBillRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	taxRepo := repository.NewTaxRepository(db)
	seqRepo := repository.NewSequenceRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	tx := repository.NewTransactor(db)

	// Services
	customerService := service.NewCustomerService(customerRepo)
	taxService := service.NewTaxService(taxRepo)
	billService := service.NewBillService(billRepo, receiptRepo, customerRepo, seqRepo, tx, locker, reconciler)
	receiptService := service.NewReceiptService(billRepo, receiptRepo, seqRepo, taxService, tx, locker, reconciler)

	thermalPrinter, err := printer.New(printer.Options{
		Type:    cfg.Printer.Type,
		USBPath: cfg.Printer.USBPath,
		Address: cfg.Printer.Address,
	})
	if err != nil {
		log.Warn("Failed to initialize printer, printing disabled", zap.Error(err))
		thermalPrinter, _ = printer.New(printer.Options{Type: printer.TypeNone})
	}
	printerService := service.NewPrinterService(thermalPrinter, billService, receiptService, cfg.Printer)

	rateLimiter := middleware.NewShopRateLimiter(middleware.RateLimiterConfigFrom(cfg.RateLimit))
	defer rateLimiter.Stop()

	handlers := &routes.Handlers{
		Customer: handler.NewCustomerHandler(customerService),
		Tax:      handler.NewTaxHandler(taxService),
		Bill:     handler.NewBillHandler(billService, receiptService),
		Receipt:  handler.NewReceiptHandler(receiptService),
		Printer:  handler.NewPrinterHandler(printerService),
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		Logger:          log,
		DB:              db,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweepIdempotencyKeys(ctx, idempotencyRepo, log)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server",
			zap.String("name", cfg.App.Name),
			zap.String("port", cfg.App.Port),
			zap.String("env", cfg.App.Env),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("Server stopped")
	return nil
}

// sweepIdempotencyKeys deletes expired idempotency keys until ctx is done
func sweepIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, log *zap.Logger) {
	ticker := time.NewTicker(idempotencySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := repo.DeleteExpired(ctx)
			if err != nil {
				log.Warn("Failed to delete expired idempotency keys", zap.Error(err))
				continue
			}
			if deleted > 0 {
				log.Info("Deleted expired idempotency keys", zap.Int64("count", deleted))
			}
		}
	}
}
