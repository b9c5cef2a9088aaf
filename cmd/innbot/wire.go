package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"innbot/internal/platform/config"
	"innbot/internal/platform/health"
	platformredis "innbot/internal/platform/redis"
	"innbot/internal/platform/tracing"
	"innbot/internal/registry/metrics"
	"innbot/internal/registry/orchestrator"
	"innbot/internal/registry/providers"
	"innbot/internal/registry/providers/dadata"
	"innbot/internal/registry/service"
	"innbot/internal/registry/store"
	"innbot/internal/registry/tracer"
)

// Provider IDs in chain order.
const (
	primaryProviderID  = "dadata"
	fallbackProviderID = "dadata-fallback"
)

// app holds the lookup pipeline and the resources that must be released.
type app struct {
	cfg          config.Config
	logger       *slog.Logger
	registry     *prometheus.Registry
	metrics      *metrics.Metrics
	tracing      *tracing.Provider
	redis        *platformredis.Client
	orchestrator *orchestrator.Orchestrator
	service      *service.Service
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		metrics:  metrics.New(reg),
	}

	tp, err := tracing.NewProvider(ctx, cfg.Tracing)
	if err != nil {
		return nil, err
	}
	a.tracing = tp
	var tr tracer.Tracer = tracer.NewNoop()
	if tp.Enabled() {
		tr = tracer.NewOTel(tracer.WithTracerProvider(tp.TracerProvider()))
	}

	registry := providers.NewProviderRegistry()
	if err := registry.Register(dadata.New(primaryProviderID, cfg.DaData.BaseURL, cfg.DaData.APIKey, cfg.DaData.Timeout)); err != nil {
		return nil, a.closeWith(err)
	}
	chain := []string{primaryProviderID}
	if cfg.DaData.FallbackURL != "" {
		if err := registry.Register(dadata.New(fallbackProviderID, cfg.DaData.FallbackURL, cfg.DaData.APIKey, cfg.DaData.Timeout)); err != nil {
			return nil, a.closeWith(err)
		}
		chain = append(chain, fallbackProviderID)
	}
	if cfg.DaData.APIKey == "" {
		logger.Warn("dadata api key is empty; registry calls will be rejected")
	}

	maxRetries := cfg.Retry.MaxRetries
	if maxRetries == 0 {
		maxRetries = -1
	}
	a.orchestrator = orchestrator.NewOrchestrator(orchestrator.OrchestratorConfig{
		Registry: registry,
		Chain:    chain,
		Backoff: orchestrator.BackoffConfig{
			InitialDelay: cfg.Retry.InitialDelay,
			MaxDelay:     cfg.Retry.MaxDelay,
			MaxRetries:   maxRetries,
			Multiplier:   cfg.Retry.Multiplier,
		},
		Breaker: orchestrator.BreakerConfig{
			FailureThreshold: cfg.Breaker.FailureThreshold,
			SuccessThreshold: cfg.Breaker.SuccessThreshold,
			Cooldown:         cfg.Breaker.Cooldown,
		},
		Metrics: a.metrics,
		Tracer:  tr,
		Logger:  logger,
	})

	cache, err := a.newCache(ctx)
	if err != nil {
		return nil, a.closeWith(err)
	}

	a.service = service.New(a.orchestrator, cache,
		service.WithTimeout(cfg.Lookup.Timeout),
		service.WithMetrics(a.metrics),
		service.WithTracer(tr),
		service.WithLogger(logger),
	)
	return a, nil
}

// newCache returns nil for the "none" backend so the service skips caching.
func (a *app) newCache(ctx context.Context) (service.CacheStore, error) {
	switch a.cfg.Cache.Backend {
	case config.CacheMemory:
		return store.NewMemoryCache(a.cfg.Cache.TTL, a.metrics), nil
	case config.CacheRedis:
		client, err := platformredis.New(ctx, a.cfg.Redis, platformredis.NewPoolMetrics(a.registry))
		if err != nil {
			return nil, err
		}
		a.redis = client
		return store.NewRedisCache(client.Client, a.cfg.Cache.TTL, a.metrics), nil
	default:
		return nil, nil
	}
}

// registerChecks adds readiness checks for every external dependency.
func (a *app) registerChecks(h *health.Handler) {
	if a.redis != nil {
		h.RegisterCheck("redis", a.redis.Health)
	}
	h.RegisterCheck("registry", func(ctx context.Context) error {
		var errs []error
		for id, err := range a.orchestrator.HealthCheck(ctx) {
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", id, err))
			}
		}
		return errors.Join(errs...)
	})
}

func (a *app) closeWith(err error) error {
	return errors.Join(err, a.close(context.Background()))
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.tracing != nil {
		errs = append(errs, a.tracing.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
