package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"innbot/internal/registry/metrics"
	"innbot/internal/registry/models"
	"innbot/internal/registry/providers"
	"innbot/internal/registry/tracer"
	"innbot/pkg/platform/circuit"
)

// BackoffConfig configures retry backoff for retryable errors
type BackoffConfig struct {
	InitialDelay time.Duration // Initial delay before first retry (default: 100ms)
	MaxDelay     time.Duration // Maximum delay between retries (default: 2s)
	MaxRetries   int           // Maximum number of retries (default: 3, negative disables retries)
	Multiplier   float64       // Multiplier for exponential backoff (default: 2.0)
}

// BreakerConfig configures the per-provider circuit breakers
type BreakerConfig struct {
	FailureThreshold int           // Consecutive failures that open the circuit (default: 5)
	SuccessThreshold int           // Consecutive successes that close it again (default: 3)
	Cooldown         time.Duration // Time between probes while open (default: 30s)
}

// OrchestratorConfig configures the registry orchestrator
type OrchestratorConfig struct {
	Registry *providers.ProviderRegistry

	// Chain lists provider IDs in the order they are tried. The first is the
	// primary; the rest are fallbacks. Empty means registration order.
	Chain []string

	// Backoff configures retry behavior for retryable errors
	Backoff BackoffConfig

	Breaker BreakerConfig

	Metrics *metrics.Metrics
	Tracer  tracer.Tracer
	Logger  *slog.Logger
}

// Orchestrator fetches registry replies through a primary provider with
// ordered fallbacks, retrying transient failures and short-circuiting
// providers that keep failing.
type Orchestrator struct {
	registry *providers.ProviderRegistry
	chain    []string
	backoff  BackoffConfig
	breakers map[string]*circuit.Breaker
	metrics  *metrics.Metrics
	tracer   tracer.Tracer
	logger   *slog.Logger
}

// NewOrchestrator creates a new registry orchestrator
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.Registry == nil {
		cfg.Registry = providers.NewProviderRegistry()
	}

	// Apply backoff defaults
	if cfg.Backoff.InitialDelay == 0 {
		cfg.Backoff.InitialDelay = 100 * time.Millisecond
	}
	if cfg.Backoff.MaxDelay == 0 {
		cfg.Backoff.MaxDelay = 2 * time.Second
	}
	if cfg.Backoff.MaxRetries == 0 {
		cfg.Backoff.MaxRetries = 3
	}
	if cfg.Backoff.MaxRetries < 0 {
		cfg.Backoff.MaxRetries = 0
	}
	if cfg.Backoff.Multiplier == 0 {
		cfg.Backoff.Multiplier = 2.0
	}

	if cfg.Tracer == nil {
		cfg.Tracer = tracer.NewNoop()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	chain := cfg.Chain
	if len(chain) == 0 {
		for _, p := range cfg.Registry.All() {
			chain = append(chain, p.ID())
		}
	}

	breakers := make(map[string]*circuit.Breaker, len(chain))
	for _, id := range chain {
		breakers[id] = circuit.New(id,
			circuit.WithFailureThreshold(cfg.Breaker.FailureThreshold),
			circuit.WithSuccessThreshold(cfg.Breaker.SuccessThreshold),
			circuit.WithCooldown(cfg.Breaker.Cooldown),
		)
	}

	return &Orchestrator{
		registry: cfg.Registry,
		chain:    chain,
		backoff:  cfg.Backoff,
		breakers: breakers,
		metrics:  cfg.Metrics,
		tracer:   cfg.Tracer,
		logger:   cfg.Logger,
	}
}

// Fetch returns the registry reply for a validated identifier.
//
// Providers are tried in chain order. A not_found error is authoritative and
// returned as-is without consulting fallbacks. When every provider fails the
// error wraps providers.ErrAllProvidersFailed together with the last
// provider's error, so the category of that failure stays inspectable.
func (o *Orchestrator) Fetch(ctx context.Context, query string) (_ *models.LookupResult, err error) {
	if len(o.chain) == 0 {
		return nil, providers.ErrNoProvidersAvailable
	}

	ctx, span := o.tracer.Start(ctx, tracer.SpanRegistryFetch)
	defer func() { span.End(err) }()

	var lastErr error
	for i, providerID := range o.chain {
		result, err := o.tryProviderWithBackoff(ctx, providerID, query)
		if err == nil {
			span.SetAttributes(tracer.String(tracer.AttrProviderID, providerID))
			return result, nil
		}
		if providers.GetCategory(err) == providers.ErrorNotFound {
			span.SetAttributes(tracer.String(tracer.AttrProviderID, providerID))
			return nil, err
		}

		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if i+1 < len(o.chain) {
			o.logger.WarnContext(ctx, "registry provider failed, falling back",
				"provider_id", providerID,
				"next_provider_id", o.chain[i+1],
				"error_category", string(providers.GetCategory(err)),
				"error", err,
			)
		}
	}

	return nil, fmt.Errorf("%w: %w", providers.ErrAllProvidersFailed, lastErr)
}

// tryProviderWithBackoff attempts one provider with exponential backoff for retryable errors
func (o *Orchestrator) tryProviderWithBackoff(ctx context.Context, providerID, query string) (*models.LookupResult, error) {
	provider, ok := o.registry.Get(providerID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", providers.ErrProviderNotFound, providerID)
	}
	breaker := o.breakers[providerID]

	var lastErr error
	delay := o.backoff.InitialDelay

	for attempt := 0; attempt <= o.backoff.MaxRetries; attempt++ {
		// Wait before retry (skip on first attempt)
		if attempt > 0 {
			if err := sleep(ctx, delay); err != nil {
				return nil, interrupted(providerID, err, lastErr)
			}

			// Calculate next delay with exponential backoff
			delay = time.Duration(float64(delay) * o.backoff.Multiplier)
			if delay > o.backoff.MaxDelay {
				delay = o.backoff.MaxDelay
			}
		}

		if !breaker.Allow() {
			err := providers.NewProviderError(providers.ErrorCircuitOpen, providerID, "circuit open", lastErr)
			o.recordError(providerID, err)
			return nil, err
		}

		result, err := o.call(ctx, provider, query, attempt)
		if err == nil || providers.GetCategory(err) == providers.ErrorNotFound {
			o.recordSuccess(providerID, breaker)
			return result, err
		}

		lastErr = err
		o.recordFailure(ctx, providerID, breaker, err)

		// Only retry if error is retryable
		if !providers.IsRetryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

func (o *Orchestrator) call(ctx context.Context, p providers.Provider, query string, attempt int) (_ *models.LookupResult, err error) {
	ctx, span := o.tracer.Start(ctx, tracer.SpanProviderCall,
		tracer.String(tracer.AttrProviderID, p.ID()),
		tracer.Int64(tracer.AttrAttempt, int64(attempt+1)),
	)
	defer func() {
		if err != nil {
			span.SetAttributes(tracer.String(tracer.AttrErrorCategory, string(providers.GetCategory(err))))
		}
		span.End(err)
	}()

	start := time.Now()
	result, err := p.Lookup(ctx, query)
	if o.metrics != nil {
		o.metrics.ObserveProviderCall(p.ID(), time.Since(start).Seconds())
	}
	return result, err
}

func (o *Orchestrator) recordSuccess(providerID string, b *circuit.Breaker) {
	if _, change := b.RecordSuccess(); change.Closed {
		o.logger.Info("registry provider circuit closed", "provider_id", providerID)
		if o.metrics != nil {
			o.metrics.SetBreakerOpen(providerID, false)
		}
	}
}

func (o *Orchestrator) recordFailure(ctx context.Context, providerID string, b *circuit.Breaker, err error) {
	o.recordError(providerID, err)
	if _, change := b.RecordFailure(); change.Opened {
		o.logger.WarnContext(ctx, "registry provider circuit opened", "provider_id", providerID, "error", err)
		if o.metrics != nil {
			o.metrics.SetBreakerOpen(providerID, true)
		}
	}
}

func (o *Orchestrator) recordError(providerID string, err error) {
	if o.metrics != nil {
		o.metrics.RecordProviderError(providerID, string(providers.GetCategory(err)))
	}
}

// interrupted classifies a context that ended while waiting to retry.
func interrupted(providerID string, ctxErr, lastErr error) error {
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		return providers.NewProviderError(providers.ErrorTimeout, providerID, "deadline exceeded while retrying", lastErr)
	}
	return ctxErr
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Providers returns the chain of provider IDs in the order they are tried.
func (o *Orchestrator) Providers() []string {
	return append([]string(nil), o.chain...)
}

// HealthCheck checks the health of every provider in the chain
func (o *Orchestrator) HealthCheck(ctx context.Context) map[string]error {
	results := make(map[string]error, len(o.chain))

	for _, id := range o.chain {
		prov, ok := o.registry.Get(id)
		if !ok {
			results[id] = providers.ErrProviderNotFound
			continue
		}
		results[id] = prov.Health(ctx)
	}

	return results
}
