package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/slmbngl/order-management-api/internal/app"
	"github.com/slmbngl/order-management-api/internal/auth"
	"github.com/slmbngl/order-management-api/internal/clock"
	"github.com/slmbngl/order-management-api/internal/config"
	"github.com/slmbngl/order-management-api/internal/events"
	"github.com/slmbngl/order-management-api/internal/storage/postgres"
	transporthttp "github.com/slmbngl/order-management-api/internal/transport/http"
	"github.com/slmbngl/order-management-api/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load(logger)

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() { _ = redisClient.Close() }()
	if err := redisClient.Ping(startupCtx).Err(); err != nil {
		logger.Fatal("redis ping", zap.Error(err))
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer func() { _ = kafkaPub.Close() }()
		publisher = kafkaPub
		logger.Info("order events enabled", zap.Strings("brokers", cfg.KafkaBrokers))
	} else {
		logger.Info("KAFKA_BROKERS not set, order events disabled")
	}

	clk := clock.NewSystem()

	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	ledger := app.NewLedger(productRepo, logger)
	orderSvc := app.NewOrderService(orderRepo, ledger, clk, publisher, logger)
	catalogSvc := app.NewCatalogService(productRepo)
	customerSvc := app.NewCustomerService(customerRepo)

	tokens := auth.NewRedisTokenStore(redisClient, cfg.TokenTTL)
	authSvc := auth.NewService(userRepo, tokens, clk)

	handler := transporthttp.NewRouter(transporthttp.RouterDeps{
		Orders:    orderSvc,
		Products:  catalogSvc,
		Customers: customerSvc,
		Auth:      authSvc,
		Tokens:    tokens,
		Logger:    logger,
		CORS:      cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Info("api listening", zap.String("port", cfg.Port))

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}
