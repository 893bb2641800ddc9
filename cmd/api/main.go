package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/vacancy-parser/internal/auth"
	"github.com/justsurfingit/vacancy-parser/internal/config"
	"github.com/justsurfingit/vacancy-parser/internal/database"
	"github.com/justsurfingit/vacancy-parser/internal/handlers"
	"github.com/justsurfingit/vacancy-parser/internal/llm"
	"github.com/justsurfingit/vacancy-parser/internal/logger"
	"github.com/justsurfingit/vacancy-parser/internal/metrics"
	"github.com/justsurfingit/vacancy-parser/internal/ratelimit"
	"github.com/justsurfingit/vacancy-parser/internal/server"
	"github.com/justsurfingit/vacancy-parser/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	redis "github.com/redis/go-redis/v9"
)

const serviceName = "vacancy-parser"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "vacancy-parser:", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Configuration and logging
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.GinMode == gin.DebugMode})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	validator := auth.NewBearerValidator(cfg.APISecret)
	if !validator.Configured() {
		log.Warn("API_SECRET is not set, every ingest request will be rejected")
	}

	// 2. Database
	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("Closing database failed", logger.Error(err))
		}
	}()
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	checks := map[string]handlers.HealthCheck{"database": sqlDB.PingContext}

	// 3. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// 4. Rate limiting
	var store ratelimit.Store
	switch cfg.RateLimit.Store {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = client.Close() }()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		store = ratelimit.NewRedisStore(client)
	default:
		mem := ratelimit.NewMemoryStore()
		m.TrackClients(func() float64 { return float64(mem.Len()) })
		store = mem
	}
	limiter, err := ratelimit.New(store, ratelimit.Config{
		MaxRequests:   cfg.RateLimit.MaxRequests,
		Window:        cfg.RateLimit.Window,
		BlockDuration: cfg.RateLimit.BlockDuration,
		SweepInterval: cfg.RateLimit.SweepInterval,
	},
		ratelimit.WithObserver(func(d ratelimit.Decision) { m.ObserveRateLimit(d.Allowed) }),
		ratelimit.WithLogger(log),
	)
	if err != nil {
		return err
	}
	go limiter.RunSweeper(ctx)

	// 5. Classification
	completer, err := llm.New(ctx, llm.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
	})
	if err != nil {
		return err
	}
	classifier := services.NewLLMService(completer, services.LLMConfig{
		MaxRetries: cfg.LLM.MaxRetries,
		RetryDelay: cfg.LLM.RetryDelay,
		Timeout:    cfg.LLM.ClassifyTimeout,
	}, services.WithLLMLogger(log), services.WithLLMMetrics(m))

	// 6. Pipeline and routes
	vacancies := services.NewVacancyService(database.NewVacancyStore(db), classifier,
		services.WithMaxTextLength(cfg.MaxTextLength),
	)
	router := server.NewRouter(server.Deps{
		Log:       log,
		Validator: validator,
		Limiter:   limiter,
		Vacancies: handlers.NewVacancyHandler(vacancies,
			handlers.WithMetrics(m),
			handlers.WithLegacyValidationStatus(cfg.LegacyValidationStatus),
		),
		Health:         handlers.NewHealthHandler(serviceName, checks),
		Metrics:        m.Handler(),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	log.Info("Vacancy parser configured",
		logger.String("llm_provider", cfg.LLM.Provider),
		logger.String("rate_limit_store", cfg.RateLimit.Store),
		logger.Int("rate_limit_max_requests", cfg.RateLimit.MaxRequests),
		logger.Bool("legacy_validation_status", cfg.LegacyValidationStatus),
		logger.Bool("auth_configured", validator.Configured()),
	)
	return server.New(":"+cfg.Port, router, log).Run(ctx)
}
