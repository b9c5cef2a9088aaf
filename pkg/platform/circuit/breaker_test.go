package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(clock *fakeClock) *Breaker {
	return New("registry",
		WithFailureThreshold(2),
		WithSuccessThreshold(2),
		WithCooldown(time.Second),
		WithClock(clock.Now),
	)
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := newTestBreaker(&fakeClock{t: time.Unix(0, 0)})

	useFallback, change := b.RecordFailure()
	assert.False(t, useFallback)
	assert.False(t, change.Opened)
	assert.Equal(t, StateClosed, b.State())

	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback)
	assert.True(t, change.Opened)
	assert.True(t, b.IsOpen())
	assert.Equal(t, "registry", b.Name())
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := newTestBreaker(&fakeClock{t: time.Unix(0, 0)})

	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_AllowProbesAfterCooldown(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := newTestBreaker(clock)
	b.RecordFailure()
	b.RecordFailure()
	require.True(t, b.IsOpen())

	assert.False(t, b.Allow(), "open circuit rejects during cooldown")

	clock.Advance(time.Second)
	assert.True(t, b.Allow(), "probe admitted after cooldown")
	assert.False(t, b.Allow(), "only one probe per cooldown")

	t.Run("failed probe restarts cooldown", func(t *testing.T) {
		b.RecordFailure()
		clock.Advance(500 * time.Millisecond)
		assert.False(t, b.Allow())
		clock.Advance(500 * time.Millisecond)
		assert.True(t, b.Allow())
	})

	t.Run("successful probes close the circuit", func(t *testing.T) {
		usePrimary, change := b.RecordSuccess()
		assert.False(t, usePrimary)
		assert.False(t, change.Closed)
		assert.True(t, b.Allow(), "calls flow once a probe succeeded")

		usePrimary, change = b.RecordSuccess()
		assert.True(t, usePrimary)
		assert.True(t, change.Closed)
		assert.Equal(t, StateClosed, b.State())
	})
}

func TestBreaker_Reset(t *testing.T) {
	b := newTestBreaker(&fakeClock{t: time.Unix(0, 0)})
	b.RecordFailure()
	b.RecordFailure()
	require.True(t, b.IsOpen())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestNew_IgnoresInvalidOptions(t *testing.T) {
	b := New("x", WithFailureThreshold(0), WithSuccessThreshold(-1), WithCooldown(0), WithClock(nil), nil)
	assert.Equal(t, 5, b.failureThreshold)
	assert.Equal(t, 3, b.successThreshold)
	assert.Equal(t, 30*time.Second, b.cooldown)
	assert.NotNil(t, b.now)
}
