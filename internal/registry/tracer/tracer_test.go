package tracer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"innbot/internal/registry/tracer"
)

func TestNoopTracer_Start(t *testing.T) {
	tr := tracer.NewNoop()
	ctx := context.Background()

	newCtx, span := tr.Start(ctx, "test.span",
		tracer.String("key", "value"),
		tracer.Bool("flag", true),
	)

	// Context should be returned unchanged
	assert.Equal(t, ctx, newCtx)
	// Span should not be nil
	require.NotNil(t, span)

	// Span methods should not panic
	span.SetAttributes(tracer.String("another", "attr"))
	span.AddEvent("test.event", tracer.Int64("count", 42))
	span.End(nil)
}

func TestNoopTracer_SpanEndWithError(t *testing.T) {
	tr := tracer.NewNoop()
	ctx := context.Background()

	_, span := tr.Start(ctx, "test.span")
	require.NotNil(t, span)

	// Should not panic when ending with error
	span.End(errors.New("test error"))
}

func TestHashIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLen  int
		wantSame bool
	}{
		{
			name:    "empty string returns empty",
			input:   "",
			wantLen: 0,
		},
		{
			name:    "short ID produces 16 char hash",
			input:   "123",
			wantLen: 16,
		},
		{
			name:    "long ID produces 16 char hash",
			input:   "123456789012345",
			wantLen: 16,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tracer.HashIdentifier(tt.input)
			assert.Len(t, result, tt.wantLen)
		})
	}
}

func TestHashIdentifier_Deterministic(t *testing.T) {
	id := "123456789"
	hash1 := tracer.HashIdentifier(id)
	hash2 := tracer.HashIdentifier(id)
	assert.Equal(t, hash1, hash2, "same input should produce same hash")
}

func TestHashIdentifier_DifferentInputs(t *testing.T) {
	hash1 := tracer.HashIdentifier("123456789")
	hash2 := tracer.HashIdentifier("987654321")
	assert.NotEqual(t, hash1, hash2, "different inputs should produce different hashes")
}

func TestAttributeConstructors(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		attr := tracer.String("key", "value")
		assert.Equal(t, "key", attr.Key)
		assert.Equal(t, "value", attr.Value)
	})

	t.Run("Bool", func(t *testing.T) {
		attr := tracer.Bool("flag", true)
		assert.Equal(t, "flag", attr.Key)
		assert.Equal(t, true, attr.Value)
	})

	t.Run("Int64", func(t *testing.T) {
		attr := tracer.Int64("count", 42)
		assert.Equal(t, "count", attr.Key)
		assert.Equal(t, int64(42), attr.Value)
	})

	t.Run("Float64", func(t *testing.T) {
		attr := tracer.Float64("ratio", 3.14)
		assert.Equal(t, "ratio", attr.Key)
		assert.Equal(t, 3.14, attr.Value)
	})

	t.Run("Duration", func(t *testing.T) {
		attr := tracer.Duration("latency", 150*1e6) // 150ms in nanoseconds
		assert.Equal(t, "latency", attr.Key)
		assert.Equal(t, int64(150), attr.Value)
	})
}

func TestOTelTracer_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	tr := tracer.NewOTel(tracer.WithOTelTracer(provider.Tracer("test")))

	ctx, parent := tr.Start(context.Background(), tracer.SpanRegistryLookup,
		tracer.String(tracer.AttrIdentifierKind, "ten_digit"),
	)
	_, child := tr.Start(ctx, tracer.SpanRegistryFetch, tracer.Int64(tracer.AttrAttempt, 1))
	child.AddEvent(tracer.EventRetry)
	child.End(errors.New("registry unavailable"))
	parent.SetAttributes(tracer.Bool(tracer.AttrFound, true))
	parent.End(nil)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	fetch, lookup := spans[0], spans[1]
	assert.Equal(t, tracer.SpanRegistryFetch, fetch.Name())
	assert.Equal(t, codes.Error, fetch.Status().Code)
	assert.Len(t, fetch.Events(), 2) // retry event and recorded error
	assert.Equal(t, lookup.SpanContext().SpanID(), fetch.Parent().SpanID())

	assert.Equal(t, tracer.SpanRegistryLookup, lookup.Name())
	assert.Equal(t, codes.Unset, lookup.Status().Code)
	assert.Contains(t, lookup.Attributes(), attribute.String(tracer.AttrIdentifierKind, "ten_digit"))
	assert.Contains(t, lookup.Attributes(), attribute.Bool(tracer.AttrFound, true))
}
