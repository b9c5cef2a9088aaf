package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordLookup(OutcomeFound)
	m.RecordLookup(OutcomeFound)
	m.RecordLookup(OutcomeInvalid)
	m.RecordProviderError("dadata", "timeout")
	m.SetBreakerOpen("dadata", true)
	m.RecordCacheHit("memory")
	m.RecordCacheMiss("memory")
	m.ObserveLookupDuration("memory", 0.001)
	m.ObserveProviderCall("dadata", 0.2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LookupsTotal.WithLabelValues(OutcomeFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LookupsTotal.WithLabelValues(OutcomeInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderErrorsTotal.WithLabelValues("dadata", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BreakerOpen.WithLabelValues("dadata")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("memory")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("memory")))

	m.SetBreakerOpen("dadata", false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.BreakerOpen.WithLabelValues("dadata")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}

func TestCacheHitRate(t *testing.T) {
	assert.Equal(t, 0.0, CacheHitRate(0, 0))
	assert.Equal(t, 0.75, CacheHitRate(3, 1))
}
