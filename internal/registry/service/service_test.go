package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"innbot/internal/registry/domain/identifier"
	"innbot/internal/registry/metrics"
	"innbot/internal/registry/models"
	"innbot/internal/registry/providers"
	"innbot/internal/registry/report"
	"innbot/internal/registry/service/mocks"
	"innbot/internal/registry/store"
	dErrors "innbot/pkg/domain-errors"
	"innbot/pkg/testutil"
)

type ServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	fetcher *mocks.MockFetcher
	cache   *mocks.MockCacheStore
	metrics *metrics.Metrics
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.fetcher = mocks.NewMockFetcher(s.ctrl)
	s.cache = mocks.NewMockCacheStore(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(s.fetcher, s.cache,
		WithMetrics(s.metrics),
		WithLogger(slog.New(slog.DiscardHandler)),
	)
}

func (s *ServiceSuite) lookups(outcome string) float64 {
	return promtest.ToFloat64(s.metrics.LookupsTotal.WithLabelValues(outcome))
}

func (s *ServiceSuite) TestInvalidIdentifierNeverReachesRegistry() {
	for _, raw := range []string{"abc", "12345", "", " 7710137066", "77101370661"} {
		reply, err := s.service.Lookup(context.Background(), raw)
		s.Require().NoError(err)
		s.False(reply.Valid, "input %q", raw)
		s.Equal(identifier.KindInvalid, reply.Kind)
		s.Equal(report.InvalidInputMessage, reply.Text)
	}
	s.Equal(5.0, s.lookups(metrics.OutcomeInvalid))
}

func (s *ServiceSuite) TestCacheMissFetchesAndSaves() {
	result := testutil.MustDecode(testutil.MinimalPartyReply)
	gomock.InOrder(
		s.cache.EXPECT().FindParty(gomock.Any(), testutil.TaxID10).Return(nil, store.ErrNotFound).Times(2),
		s.fetcher.EXPECT().Fetch(gomock.Any(), testutil.TaxID10).Return(result, nil),
		s.cache.EXPECT().SaveParty(gomock.Any(), testutil.TaxID10, result).Return(nil),
	)

	reply, err := s.service.Lookup(context.Background(), testutil.TaxID10)

	s.Require().NoError(err)
	s.True(reply.Valid)
	s.False(reply.Cached)
	s.Equal(identifier.KindTenDigit, reply.Kind)
	s.True(reply.Outcome.Found)
	s.Equal(testutil.MinimalPartyReport, reply.Text)
	s.Equal(1.0, s.lookups(metrics.OutcomeFound))
}

func (s *ServiceSuite) TestCacheHitSkipsFetch() {
	s.cache.EXPECT().FindParty(gomock.Any(), testutil.RegistrationID).
		Return(testutil.MustDecode(testutil.MinimalPartyReply), nil)

	reply, err := s.service.Lookup(context.Background(), testutil.RegistrationID)

	s.Require().NoError(err)
	s.True(reply.Cached)
	s.Equal(identifier.KindThirteenDigit, reply.Kind)
	s.Equal(testutil.MinimalPartyReport, reply.Text)
}

func (s *ServiceSuite) TestCacheFailuresDegradeToFetch() {
	result := testutil.MustDecode(testutil.MinimalPartyReply)
	s.cache.EXPECT().FindParty(gomock.Any(), testutil.TaxID12).Return(nil, errors.New("connection refused")).Times(2)
	s.fetcher.EXPECT().Fetch(gomock.Any(), testutil.TaxID12).Return(result, nil)
	s.cache.EXPECT().SaveParty(gomock.Any(), testutil.TaxID12, result).Return(errors.New("connection refused"))

	reply, err := s.service.Lookup(context.Background(), testutil.TaxID12)

	s.Require().NoError(err)
	s.True(reply.Outcome.Found)
}

func (s *ServiceSuite) TestEmptyReplyIsNotFound() {
	result := testutil.MustDecode(testutil.EmptyReply)
	s.cache.EXPECT().FindParty(gomock.Any(), gomock.Any()).Return(nil, store.ErrNotFound).Times(2)
	s.fetcher.EXPECT().Fetch(gomock.Any(), testutil.TaxID10).Return(result, nil)
	s.cache.EXPECT().SaveParty(gomock.Any(), testutil.TaxID10, result).Return(nil)

	reply, err := s.service.Lookup(context.Background(), testutil.TaxID10)

	s.Require().NoError(err)
	s.True(reply.Valid)
	s.False(reply.Outcome.Found)
	s.Equal(report.NotFoundMessage, reply.Text)
	s.Equal(1.0, s.lookups(metrics.OutcomeNotFound))
}

func (s *ServiceSuite) TestProviderNotFoundIsNotFoundOutcome() {
	s.cache.EXPECT().FindParty(gomock.Any(), gomock.Any()).Return(nil, store.ErrNotFound).Times(2)
	s.fetcher.EXPECT().Fetch(gomock.Any(), testutil.TaxID10).
		Return(nil, providers.NewProviderError(providers.ErrorNotFound, "dadata", "no such party", nil))

	reply, err := s.service.Lookup(context.Background(), testutil.TaxID10)

	s.Require().NoError(err)
	s.False(reply.Outcome.Found)
	s.Equal(report.NotFoundMessage, reply.Text)
}

func (s *ServiceSuite) TestFetchFailuresBecomeDomainErrors() {
	tests := []struct {
		name     string
		err      error
		code     dErrors.Code
		contains string
	}{
		{
			name:     "timeout",
			err:      providers.NewProviderError(providers.ErrorTimeout, "dadata", "request timed out", context.DeadlineExceeded),
			code:     dErrors.CodeTimeout,
			contains: "timed out",
		},
		{
			name:     "outage after fallbacks",
			err:      fmt.Errorf("%w: %w", providers.ErrAllProvidersFailed, providers.NewProviderError(providers.ErrorProviderOutage, "dadata", "status 502", nil)),
			code:     dErrors.CodeUnavailable,
			contains: "unavailable",
		},
		{
			name:     "circuit open",
			err:      providers.NewProviderError(providers.ErrorCircuitOpen, "dadata", "circuit open", nil),
			code:     dErrors.CodeUnavailable,
			contains: "temporarily disabled",
		},
		{
			name:     "rate limited",
			err:      providers.NewProviderError(providers.ErrorRateLimited, "dadata", "status 429", nil),
			code:     dErrors.CodeRateLimited,
			contains: "rate limit",
		},
		{
			name:     "bad credentials",
			err:      providers.NewProviderError(providers.ErrorAuthentication, "dadata", "status 403", nil),
			code:     dErrors.CodeInternal,
			contains: "authentication",
		},
		{
			name:     "no providers",
			err:      providers.ErrNoProvidersAvailable,
			code:     dErrors.CodeUnavailable,
			contains: "no registry providers",
		},
		{
			name:     "unknown",
			err:      errors.New("boom"),
			code:     dErrors.CodeInternal,
			contains: "lookup failed",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.cache.EXPECT().FindParty(gomock.Any(), gomock.Any()).Return(nil, store.ErrNotFound).Times(2)
			s.fetcher.EXPECT().Fetch(gomock.Any(), testutil.TaxID10).Return(nil, tt.err)

			reply, err := s.service.Lookup(context.Background(), testutil.TaxID10)

			s.Nil(reply)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, tt.code), "got %v", err)
			s.Contains(err.Error(), tt.contains)
			s.ErrorIs(err, tt.err)
		})
	}
	s.Equal(float64(len(tests)), s.lookups(metrics.OutcomeFailed))
}

func TestLookupAppliesTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), testutil.TaxID10).DoAndReturn(
		func(ctx context.Context, _ string) (*models.LookupResult, error) {
			deadline, ok := ctx.Deadline()
			require.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 40*time.Millisecond)
			<-ctx.Done()
			return nil, ctx.Err()
		})

	svc := New(fetcher, nil, WithTimeout(50*time.Millisecond), WithLogger(slog.New(slog.DiscardHandler)))
	_, err := svc.Lookup(context.Background(), testutil.TaxID10)

	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
}

func TestLookupWithoutCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), testutil.TaxID10).Return(testutil.MustDecode(testutil.FullPartyReply), nil)

	reply, err := New(fetcher, nil).Lookup(context.Background(), testutil.TaxID10)

	require.NoError(t, err)
	assert.True(t, reply.Outcome.Found)
	assert.Contains(t, reply.Text, "Разработка компьютерного программного обеспечения")
}

func TestConcurrentMissesShareOneFetch(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	fetcher := fetcherFunc(func(ctx context.Context, _ string) (*models.LookupResult, error) {
		calls.Add(1)
		<-release
		return testutil.MustDecode(testutil.MinimalPartyReply), nil
	})
	cache := store.NewMemoryCache(time.Minute, nil)
	svc := New(fetcher, cache, WithLogger(slog.New(slog.DiscardHandler)))

	var wg sync.WaitGroup
	replies := make([]*Reply, 4)
	for i := range replies {
		wg.Go(func() {
			reply, err := svc.Lookup(context.Background(), testutil.TaxID10)
			assert.NoError(t, err)
			replies[i] = reply
		})
	}
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	cached := 0
	for _, reply := range replies {
		require.NotNil(t, reply)
		assert.Equal(t, testutil.MinimalPartyReport, reply.Text)
		if reply.Cached {
			cached++
		}
	}
	assert.Equal(t, len(replies)-1, cached)
}

type fetcherFunc func(ctx context.Context, query string) (*models.LookupResult, error)

func (f fetcherFunc) Fetch(ctx context.Context, query string) (*models.LookupResult, error) {
	return f(ctx, query)
}

func TestFailureReason(t *testing.T) {
	assert.Equal(t, "registry lookup timed out", FailureReason(dErrors.New(dErrors.CodeTimeout, "registry lookup timed out")))
	assert.Equal(t, "registry lookup failed", FailureReason(errors.New("boom")))
	assert.Equal(t, "registry lookup failed", FailureReason(dErrors.New(dErrors.CodeInternal, "")))
}
