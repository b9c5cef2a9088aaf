package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "innbot/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantDesc   string
	}{
		{"invalid input", dErrors.New(dErrors.CodeInvalidInput, "bad identifier"), http.StatusBadRequest, "bad_request", "bad identifier"},
		{"validation", dErrors.New(dErrors.CodeValidation, "query is required"), http.StatusBadRequest, "validation_error", "query is required"},
		{"not found", dErrors.New(dErrors.CodeNotFound, ""), http.StatusNotFound, "not_found", ""},
		{"timeout", dErrors.New(dErrors.CodeTimeout, "slow"), http.StatusGatewayTimeout, "registry_timeout", "slow"},
		{"unavailable", dErrors.New(dErrors.CodeUnavailable, "down"), http.StatusBadGateway, "registry_unavailable", "down"},
		{"rate limited", dErrors.New(dErrors.CodeRateLimited, "throttled"), http.StatusServiceUnavailable, "registry_rate_limited", "throttled"},
		{"internal", dErrors.New(dErrors.CodeInternal, "boom"), http.StatusInternalServerError, "internal_error", "boom"},
		{"plain error", errors.New("secret detail"), http.StatusInternalServerError, "internal_error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["error"])
			assert.Equal(t, tt.wantDesc, body["error_description"])
		})
	}
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusCreated, map[string]bool{"ok": true})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusGatewayTimeout, StatusFor(dErrors.CodeTimeout))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(dErrors.Code("unknown")))
}
