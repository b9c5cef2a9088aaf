package request

import (
	"net/http"
)

// DefaultMaxBodyBytes is generous for a lookup body, which carries a single identifier.
const DefaultMaxBodyBytes int64 = 4 << 10

// BodyLimit caps request bodies at maxBytes. A declared Content-Length over
// the cap is rejected up front with 413; undeclared bodies are wrapped in
// http.MaxBytesReader so the decoder fails once the cap is crossed.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				_, _ = w.Write([]byte(`{"error":"body_too_large","error_description":"request body too large"}`)) //nolint:errcheck // headers already sent
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
