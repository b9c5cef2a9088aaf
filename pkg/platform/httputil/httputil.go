// Package httputil writes JSON responses and maps domain error codes onto
// HTTP statuses and wire error codes.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "innbot/pkg/domain-errors"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

type errorMapping struct {
	status int
	code   string
}

var errorMappings = map[dErrors.Code]errorMapping{
	dErrors.CodeNotFound:     {http.StatusNotFound, "not_found"},
	dErrors.CodeBadRequest:   {http.StatusBadRequest, "bad_request"},
	dErrors.CodeInvalidInput: {http.StatusBadRequest, "bad_request"},
	dErrors.CodeValidation:   {http.StatusBadRequest, "validation_error"},
	dErrors.CodeTimeout:      {http.StatusGatewayTimeout, "registry_timeout"},
	dErrors.CodeUnavailable:  {http.StatusBadGateway, "registry_unavailable"},
	dErrors.CodeRateLimited:  {http.StatusServiceUnavailable, "registry_rate_limited"},
}

var internalMapping = errorMapping{http.StatusInternalServerError, "internal_error"}

// WriteJSON encodes response with the given status. Encoding errors are
// dropped since the status line is already sent.
func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError renders err as an ErrorResponse. Errors without a domain code
// become a bare internal_error so causes never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	m := mappingFor(code)
	WriteJSON(w, m.status, ErrorResponse{
		Error:       m.code,
		Description: dErrors.MessageOf(err, ""),
	})
}

// StatusFor returns the HTTP status for a domain code.
func StatusFor(code dErrors.Code) int {
	return mappingFor(code).status
}

func mappingFor(code dErrors.Code) errorMapping {
	if m, ok := errorMappings[code]; ok {
		return m
	}
	return internalMapping
}
