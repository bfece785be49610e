package app

import (
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mvucinic/billsight/internal/ai"
	"github.com/mvucinic/billsight/internal/auth"
	"github.com/mvucinic/billsight/internal/config"
	"github.com/mvucinic/billsight/internal/limits"
	"github.com/mvucinic/billsight/internal/observability"
	analysissvc "github.com/mvucinic/billsight/internal/services/analysis"
	billsvc "github.com/mvucinic/billsight/internal/services/bills"
	transactionsvc "github.com/mvucinic/billsight/internal/services/transactions"
	usersvc "github.com/mvucinic/billsight/internal/services/users"
)

// Container aggregates runtime dependencies for handlers and services.
type Container struct {
	Config        *config.Config
	Logger        *slog.Logger
	DBPool        *pgxpool.Pool
	Redis         *redis.Client
	Users         *usersvc.Store
	Bills         *billsvc.Store
	Transactions  *transactionsvc.Store
	Auth          *auth.Service
	Analysis      *analysissvc.Service
	RequestLimits *limits.RequestLimiter
	Observability *observability.Provider
}

// NewContainer builds a dependency container from the provided primitives.
// observability may be nil when metrics and tracing are disabled.
func NewContainer(cfg *config.Config, logger *slog.Logger, pool *pgxpool.Pool, redisClient *redis.Client, obs *observability.Provider) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if pool == nil {
		return nil, fmt.Errorf("db pool is required")
	}
	if redisClient == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	userStore := usersvc.NewStore(pool)
	billStore := billsvc.NewStore(pool)
	transactionStore := transactionsvc.NewStore(pool)
	analysisStore := analysissvc.NewStore(pool)

	authSvc, err := auth.NewService(cfg.Auth, userStore)
	if err != nil {
		return nil, fmt.Errorf("build auth service: %w", err)
	}

	// With no API key every analysis uses the local fallback computation.
	var model ai.TextGenerator
	if cfg.AI.APIKey != "" {
		client, err := ai.NewOpenAI(cfg.AI)
		if err != nil {
			return nil, fmt.Errorf("build model client: %w", err)
		}
		model = client
	} else {
		logger.Warn("no model API key configured, analyses use local computation only")
	}

	var metrics analysissvc.AIMetrics
	if obs != nil {
		metrics = obs
	}
	aggregator := analysissvc.NewAggregator(billStore, nil)
	generator := analysissvc.NewGenerator(model, metrics, logger)
	analysisService := analysissvc.NewService(analysisStore, aggregator, generator, cfg.Analysis, logger)

	return &Container{
		Config:        cfg,
		Logger:        logger,
		DBPool:        pool,
		Redis:         redisClient,
		Users:         userStore,
		Bills:         billStore,
		Transactions:  transactionStore,
		Auth:          authSvc,
		Analysis:      analysisService,
		RequestLimits: limits.NewRequestLimiter(redisClient),
		Observability: obs,
	}, nil
}

// Close releases pooled resources. Safe to call on a partially built container.
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.DBPool != nil {
		c.DBPool.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
