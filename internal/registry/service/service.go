// Package service runs a single registry lookup end to end: classify the
// identifier, consult the cache, fetch from the provider chain, normalize the
// reply and render the report.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"innbot/internal/registry/domain/identifier"
	"innbot/internal/registry/domain/organization"
	"innbot/internal/registry/metrics"
	"innbot/internal/registry/models"
	"innbot/internal/registry/providers"
	"innbot/internal/registry/report"
	"innbot/internal/registry/store"
	"innbot/internal/registry/tracer"
	dErrors "innbot/pkg/domain-errors"
	"innbot/pkg/platform/sync"
	"innbot/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Fetcher,CacheStore

// DefaultLookupTimeout bounds one lookup including cache access and retries.
const DefaultLookupTimeout = 5 * time.Second

// Fetcher retrieves the registry reply for a validated identifier.
type Fetcher interface {
	Fetch(ctx context.Context, query string) (*models.LookupResult, error)
}

// CacheStore caches raw registry replies keyed by identifier.
type CacheStore interface {
	FindParty(ctx context.Context, identifier string) (*models.LookupResult, error)
	SaveParty(ctx context.Context, identifier string, result *models.LookupResult) error
}

// Reply is the transport-neutral answer to one lookup.
type Reply struct {
	Valid   bool
	Kind    identifier.Kind
	Outcome organization.Outcome
	Text    string
	Cached  bool
}

// Service coordinates registry lookups with caching.
type Service struct {
	fetcher  Fetcher
	cache    CacheStore
	inFlight *sync.ShardedMutex
	timeout  time.Duration
	metrics  *metrics.Metrics
	tracer   tracer.Tracer
	logger   *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics records lookup outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer sets the tracer for lookup spans.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithTimeout overrides DefaultLookupTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a lookup service. cache may be nil to disable caching.
func New(fetcher Fetcher, cache CacheStore, opts ...Option) *Service {
	s := &Service{
		fetcher:  fetcher,
		cache:    cache,
		inFlight: sync.NewShardedMutex(),
		timeout:  DefaultLookupTimeout,
		tracer:   tracer.NewNoop(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup answers one user query.
//
// Invalid identifiers produce a Reply with Valid false and the invalid-input
// text without touching the cache or the registry. A provider not_found is a
// NotFound outcome, not an error. Any other registry failure is returned as a
// domain error whose message is suitable for report.LookupFailureMessage.
func (s *Service) Lookup(ctx context.Context, raw string) (_ *Reply, err error) {
	kind := identifier.Classify(raw)

	ctx, span := s.tracer.Start(ctx, tracer.SpanRegistryLookup,
		tracer.String(tracer.AttrIdentifierHash, tracer.HashIdentifier(raw)),
		tracer.String(tracer.AttrIdentifierKind, kind.String()),
	)
	defer func() { span.End(err) }()

	if !kind.Valid() {
		s.recordOutcome(metrics.OutcomeInvalid)
		return &Reply{Kind: kind, Text: report.InvalidInputMessage}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, cached, err := s.fetch(ctx, raw)
	span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, cached))
	if err != nil {
		if providers.GetCategory(err) != providers.ErrorNotFound {
			s.recordOutcome(metrics.OutcomeFailed)
			s.logger.ErrorContext(ctx, "registry lookup failed",
				"identifier_suffix", identifier.Redact(raw),
				"kind", kind.String(),
				"error_category", string(providers.GetCategory(err)),
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			return nil, translateFetchError(err)
		}
		result = nil
	}

	outcome := organization.Normalize(result)
	span.SetAttributes(tracer.Bool(tracer.AttrFound, outcome.Found))
	if outcome.Found {
		s.recordOutcome(metrics.OutcomeFound)
	} else {
		s.recordOutcome(metrics.OutcomeNotFound)
	}

	s.logger.InfoContext(ctx, "registry lookup completed",
		"identifier_suffix", identifier.Redact(raw),
		"kind", kind.String(),
		"found", outcome.Found,
		"cached", cached,
		"channel", requestcontext.Channel(ctx),
		"request_id", requestcontext.RequestID(ctx),
	)

	return &Reply{
		Valid:   true,
		Kind:    kind,
		Outcome: outcome,
		Text:    report.Format(outcome),
		Cached:  cached,
	}, nil
}

// fetch consults the cache before the provider chain. Cache failures are
// logged and treated as misses; only successful replies are cached.
// Concurrent misses for the same identifier wait for the first one and then
// read its cached reply.
func (s *Service) fetch(ctx context.Context, query string) (*models.LookupResult, bool, error) {
	if s.cache == nil {
		result, err := s.fetcher.Fetch(ctx, query)
		return result, false, err
	}

	if cached, ok := s.findCached(ctx, query); ok {
		return cached, true, nil
	}

	unlock, err := s.inFlight.Lock(ctx, query)
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	if cached, ok := s.findCached(ctx, query); ok {
		return cached, true, nil
	}

	result, err := s.fetcher.Fetch(ctx, query)
	if err != nil {
		return nil, false, err
	}

	if err := s.cache.SaveParty(ctx, query, result); err != nil {
		s.logger.WarnContext(ctx, "registry cache write failed",
			"identifier_suffix", identifier.Redact(query),
			"error", err,
		)
	}
	return result, false, nil
}

func (s *Service) findCached(ctx context.Context, query string) (*models.LookupResult, bool) {
	cached, err := s.cache.FindParty(ctx, query)
	switch {
	case err == nil:
		return cached, true
	case !errors.Is(err, store.ErrNotFound):
		s.logger.WarnContext(ctx, "registry cache read failed",
			"identifier_suffix", identifier.Redact(query),
			"error", err,
		)
	}
	return nil, false
}

func (s *Service) recordOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordLookup(outcome)
	}
}

// FailureReason is the user-visible part of a Lookup error, suitable for
// report.LookupFailureMessage.
func FailureReason(err error) string {
	return dErrors.MessageOf(err, "registry lookup failed")
}

// translateFetchError converts orchestrator and provider errors to domain errors.
func translateFetchError(err error) error {
	if errors.Is(err, providers.ErrNoProvidersAvailable) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "no registry providers configured")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "registry lookup timed out")
	}

	var pe *providers.ProviderError
	if !errors.As(err, &pe) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "registry lookup failed")
	}
	switch pe.Category {
	case providers.ErrorTimeout:
		return dErrors.Wrap(err, dErrors.CodeTimeout, "registry lookup timed out")
	case providers.ErrorProviderOutage:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "registry unavailable")
	case providers.ErrorCircuitOpen:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "registry temporarily disabled after repeated failures")
	case providers.ErrorRateLimited:
		return dErrors.Wrap(err, dErrors.CodeRateLimited, "registry rate limit exceeded")
	case providers.ErrorAuthentication:
		return dErrors.Wrap(err, dErrors.CodeInternal, "registry authentication failed")
	case providers.ErrorBadData, providers.ErrorContractMismatch:
		return dErrors.Wrap(err, dErrors.CodeInternal, "registry returned an unreadable reply")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "registry lookup failed")
	}
}
