package adapters

//go:generate mockgen -source=http.go -destination=mocks/mocks.go -package=mocks HTTPDoer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"innbot/internal/registry/providers"
	"innbot/internal/registry/providers/adapters/mocks"
)

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func newTestAdapter(client HTTPDoer) *HTTPAdapter {
	return New(HTTPAdapterConfig{
		ID:         "test-registry",
		BaseURL:    "http://registry.test/api/",
		Path:       "/findById/party",
		APIKey:     "secret",
		Timeout:    time.Second,
		HTTPClient: client,
		Capabilities: providers.Capabilities{
			Protocol: providers.ProtocolHTTP,
			Type:     providers.ProviderTypeParty,
		},
	})
}

func TestHTTPAdapter_Lookup(t *testing.T) {
	t.Run("posts the query with token authorization", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockHTTPDoer(ctrl)

		client.EXPECT().
			Do(gomock.Any()).
			DoAndReturn(func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, http.MethodPost, req.Method)
				assert.Equal(t, "http://registry.test/api/findById/party", req.URL.String())
				assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
				assert.Equal(t, "application/json", req.Header.Get("Accept"))
				assert.Equal(t, "Token secret", req.Header.Get("Authorization"))

				var body map[string]string
				require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
				assert.Equal(t, map[string]string{"query": "7710137066"}, body)

				_, hasDeadline := req.Context().Deadline()
				assert.True(t, hasDeadline)

				return response(http.StatusOK, `{"suggestions":[{"data":{"inn":"7710137066"}}]}`), nil
			})

		result, err := newTestAdapter(client).Lookup(context.Background(), "7710137066")
		require.NoError(t, err)
		require.Len(t, result.Suggestions, 1)
		assert.NotEmpty(t, result.Raw())
	})

	t.Run("omits authorization without api key", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockHTTPDoer(ctrl)
		client.EXPECT().
			Do(gomock.Any()).
			DoAndReturn(func(req *http.Request) (*http.Response, error) {
				assert.Empty(t, req.Header.Get("Authorization"))
				return response(http.StatusOK, `{"suggestions":[]}`), nil
			})

		adapter := New(HTTPAdapterConfig{ID: "anon", BaseURL: "http://registry.test", HTTPClient: client})
		result, err := adapter.Lookup(context.Background(), "7710137066")
		require.NoError(t, err)
		assert.True(t, result.Empty())
	})
}

func TestHTTPAdapter_LookupErrors(t *testing.T) {
	tests := []struct {
		name          string
		resp          *http.Response
		err           error
		wantCategory  providers.ErrorCategory
		wantRetryable bool
	}{
		{"unauthorized", response(http.StatusUnauthorized, ""), nil, providers.ErrorAuthentication, false},
		{"forbidden", response(http.StatusForbidden, ""), nil, providers.ErrorAuthentication, false},
		{"not found", response(http.StatusNotFound, ""), nil, providers.ErrorNotFound, false},
		{"rate limited", response(http.StatusTooManyRequests, ""), nil, providers.ErrorRateLimited, true},
		{"server error", response(http.StatusInternalServerError, ""), nil, providers.ErrorProviderOutage, true},
		{"unavailable", response(http.StatusServiceUnavailable, ""), nil, providers.ErrorProviderOutage, true},
		{"gateway timeout", response(http.StatusGatewayTimeout, ""), nil, providers.ErrorTimeout, true},
		{"bad request", response(http.StatusBadRequest, "{}"), nil, providers.ErrorInternal, false},
		{"not json", response(http.StatusOK, "<html>"), nil, providers.ErrorBadData, false},
		{"deadline exceeded", nil, context.DeadlineExceeded, providers.ErrorTimeout, true},
		{"connection refused", nil, errors.New("dial tcp: connection refused"), providers.ErrorProviderOutage, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mocks.NewMockHTTPDoer(ctrl)
			client.EXPECT().Do(gomock.Any()).Return(tt.resp, tt.err)

			result, err := newTestAdapter(client).Lookup(context.Background(), "7710137066")
			require.Error(t, err)
			assert.Nil(t, result)

			var pe *providers.ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.wantCategory, pe.Category)
			assert.Equal(t, "test-registry", pe.ProviderID)
			assert.Equal(t, tt.wantRetryable, providers.IsRetryable(err))
		})
	}
}

func TestHTTPAdapter_Health(t *testing.T) {
	tests := []struct {
		name    string
		resp    *http.Response
		err     error
		wantErr bool
	}{
		{"ok", response(http.StatusOK, ""), nil, false},
		{"method not allowed is reachable", response(http.StatusMethodNotAllowed, ""), nil, false},
		{"server error", response(http.StatusBadGateway, ""), nil, true},
		{"transport error", nil, errors.New("no route to host"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mocks.NewMockHTTPDoer(ctrl)
			client.EXPECT().
				Do(gomock.Any()).
				DoAndReturn(func(req *http.Request) (*http.Response, error) {
					assert.Equal(t, http.MethodGet, req.Method)
					assert.Equal(t, "http://registry.test/api", req.URL.String())
					return tt.resp, tt.err
				})

			err := newTestAdapter(client).Health(context.Background())
			if tt.wantErr {
				assert.Equal(t, providers.ErrorProviderOutage, providers.GetCategory(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}
