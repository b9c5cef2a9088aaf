package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "innbot/pkg/domain-errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type queryRequest struct {
	Query string `json:"query"`
}

type preparedRequest struct {
	Query      string `json:"query"`
	normalized bool
}

func (r *preparedRequest) Normalize() {
	r.normalized = true
}

func (r *preparedRequest) Validate() error {
	if r.Query == "" {
		return errors.New("query is required")
	}
	return nil
}

type domainErrorRequest struct {
	Query string `json:"query"`
}

func (r *domainErrorRequest) Validate() error {
	if r.Query == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "query is required")
	}
	return nil
}

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var errResp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	return errResp
}

func TestDecodeJSON(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	t.Run("decodes a lookup body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/lookup", strings.NewReader(`{"query":"7710137066"}`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[queryRequest](w, req, logger)

		assert.True(t, ok)
		require.NotNil(t, result)
		assert.Equal(t, "7710137066", result.Query)
	})

	tests := []struct {
		name        string
		body        string
		description string
	}{
		{"malformed JSON", `{invalid json}`, "invalid request body"},
		{"empty body", ``, "request body is empty"},
		{"unknown field", `{"query":"1","extra":true}`, "invalid request body"},
		{"trailing object", `{"query":"1"}{"query":"2"}`, "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/lookup", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			result, ok := DecodeJSON[queryRequest](w, req, logger)

			assert.False(t, ok)
			assert.Nil(t, result)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			errResp := decodeErrorBody(t, w)
			assert.Equal(t, "bad_request", errResp["error"])
			assert.Equal(t, tt.description, errResp["error_description"])
		})
	}

	t.Run("body over MaxBytesReader cap", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/lookup", strings.NewReader(`{"query":"`+strings.Repeat("1", 64)+`"}`))
		w := httptest.NewRecorder()
		req.Body = http.MaxBytesReader(w, req.Body, 16)

		_, ok := DecodeJSON[queryRequest](w, req, logger)

		assert.False(t, ok)
		assert.Equal(t, "request body too large", decodeErrorBody(t, w)["error_description"])
	})
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	t.Run("normalizes and validates", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/lookup", strings.NewReader(`{"query":"7710137066"}`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[preparedRequest](w, req, logger)

		assert.True(t, ok)
		require.NotNil(t, result)
		assert.True(t, result.normalized)
	})

	t.Run("plain validation error maps to validation_error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/lookup", strings.NewReader(`{"query":""}`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[preparedRequest](w, req, logger)

		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		errResp := decodeErrorBody(t, w)
		assert.Equal(t, "validation_error", errResp["error"])
		assert.Equal(t, "query is required", errResp["error_description"])
	})

	t.Run("domain error from Validate keeps its code", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/lookup", strings.NewReader(`{"query":""}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[domainErrorRequest](w, req, logger)

		assert.False(t, ok)
		assert.Equal(t, "bad_request", decodeErrorBody(t, w)["error"])
	})
}

func TestPrepareRequest(t *testing.T) {
	assert.NoError(t, PrepareRequest(&queryRequest{}))
	assert.EqualError(t, PrepareRequest(&preparedRequest{}), "query is required")
	assert.NoError(t, PrepareRequest(&preparedRequest{Query: "7710137066"}))
}
