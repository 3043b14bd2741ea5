package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zidoyvelg-be/internal/api"
	"zidoyvelg-be/internal/auth"
	"zidoyvelg-be/internal/cart"
	"zidoyvelg-be/internal/category"
	"zidoyvelg-be/internal/config"
	"zidoyvelg-be/internal/db"
	"zidoyvelg-be/internal/idempotency"
	"zidoyvelg-be/internal/logger"
	"zidoyvelg-be/internal/metrics"
	"zidoyvelg-be/internal/middleware"
	"zidoyvelg-be/internal/order"
	"zidoyvelg-be/internal/payment"
	"zidoyvelg-be/internal/product"
	"zidoyvelg-be/internal/storage"
	"zidoyvelg-be/internal/tracing"
	"zidoyvelg-be/internal/user"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const serviceName = "zidoyvelg-api"

var (
	initDBFunc      = db.InitDB
	startServerFunc = serve
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server exited", zap.Error(err))
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database := initDBFunc(cfg)
	defer database.Close()

	handler, cleanup, err := newServer(ctx, cfg, database)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.L().Info("server starting",
		zap.String("addr", srv.Addr),
		zap.String("env", cfg.AppEnv),
	)
	return startServerFunc(ctx, srv, cfg.ShutdownTimeout)
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
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

	logger.L().Info("shutting down", zap.Duration("timeout", shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newServer wires tracing, repositories, services and the router. The
// returned cleanup flushes spans and releases the Redis client, if one was
// opened.
func newServer(ctx context.Context, cfg *config.Config, database *sql.DB) (http.Handler, func(), error) {
	tp, err := tracing.Init(ctx, serviceName, cfg.TracingExporter)
	if err != nil {
		return nil, nil, err
	}
	closers := []func(){func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.L().Warn("tracer shutdown failed", zap.Error(err))
		}
	}}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	files := storage.NewLocal(cfg.UploadDir, cfg.UploadBaseURL, cfg.MaxUploadBytes())
	payments := payment.NewCatalog(cfg.PaymentAccounts, cfg.PaymentAccountHolder)

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo, files)
	facetSvc := category.NewService(category.NewRepository(database))

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, productRepo, files, payments)

	cartSvc := cart.NewService(productRepo)

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo, tokens)

	deps := api.Deps{
		Products:     productSvc,
		Facets:       facetSvc,
		Orders:       orderSvc,
		Carts:        cartSvc,
		Users:        userSvc,
		Payments:     payments,
		Metrics:      metrics.Default,
		Tracer:       tp,
		DB:           database,
		MaxUpload:    cfg.MaxUploadBytes(),
		SecureCookie: cfg.IsProduction(),
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		deps.Idempotency = idempotency.NewRedisStore(rdb, cfg.IdempotencyTTL)
		closers = append(closers, func() { _ = rdb.Close() })
		logger.L().Info("idempotency keys enabled", zap.String("redis", cfg.RedisAddr))
	}

	limiter := middleware.NewRateLimiter()
	go limiter.Run(ctx)

	return setupRouter(cfg, api.NewHandler(deps), tokens, limiter, files), cleanup, nil
}

func setupRouter(cfg *config.Config, h *api.Handler, tokens middleware.TokenParser, limiter *middleware.RateLimiter, files *storage.Local) http.Handler {
	r := chi.NewRouter()

	r.Use(logger.RequestIDMiddleware)
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.Authenticate(tokens))
	r.Use(middleware.LoggingMiddleware)
	r.Use(limiter.Middleware)

	r.Get("/health", h.Health)
	r.Mount("/api", h.Routes())
	r.Mount(cfg.UploadBaseURL, files.Handler())

	return r
}
