// Command mockregistry serves a local stand-in for the DaData findById/party
// endpoint with deterministic replies keyed by identifier.
package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"innbot/pkg/testutil"
)

const (
	defaultPort      = "8081"
	defaultAPIKey    = "mock-registry-secret-key"
	defaultLatencyMs = "50"
)

// Magic identifiers with a fixed reply. Any other identifier is not found.
const (
	idFull        = testutil.TaxID10
	idFullByOGRN  = testutil.RegistrationID
	idMinimal     = testutil.TaxID12
	idNullLaden   = "7700000001"
	idServerError = "7700000500"
	idRateLimited = "7700000429"
)

type partyRequest struct {
	Query string `json:"query"`
}

type errorResponse struct {
	Family  string `json:"family"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type fixture struct {
	status int
	body   string
}

var fixtures = map[string]fixture{
	idFull:        {status: http.StatusOK, body: testutil.FullPartyReply},
	idFullByOGRN:  {status: http.StatusOK, body: testutil.FullPartyReply},
	idMinimal:     {status: http.StatusOK, body: testutil.MinimalPartyReply},
	idNullLaden:   {status: http.StatusOK, body: testutil.NullPartyReply},
	idServerError: {status: http.StatusInternalServerError},
	idRateLimited: {status: http.StatusTooManyRequests},
}

type server struct {
	apiKey  string
	latency time.Duration
	logger  *slog.Logger
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	port := getEnv("PORT", defaultPort)

	s := &server{
		apiKey:  getEnv("API_KEY", defaultAPIKey),
		latency: time.Duration(getEnvInt(logger, "LATENCY_MS", defaultLatencyMs)) * time.Millisecond,
		logger:  logger,
	}

	logger.Info("mock registry starting",
		"port", port,
		"latency", s.latency,
	)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("mock registry stopped", "error", err)
		os.Exit(1)
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", handleHealth)
	r.Post("/findById/party", s.handlePartyLookup)
	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "mock-registry",
		"version": "1.0.0",
	})
}

func (s *server) handlePartyLookup(w http.ResponseWriter, r *http.Request) {
	if s.latency > 0 {
		select {
		case <-time.After(s.latency):
		case <-r.Context().Done():
			return
		}
	}

	if r.Header.Get("Authorization") != "Token "+s.apiKey {
		s.sendError(w, http.StatusForbidden, "invalid or missing API key")
		return
	}

	var req partyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		s.sendError(w, http.StatusBadRequest, "query is required")
		return
	}

	fx, ok := fixtures[req.Query]
	if !ok {
		fx = fixture{status: http.StatusOK, body: testutil.EmptyReply}
	}
	if fx.status != http.StatusOK {
		s.sendError(w, fx.status, http.StatusText(fx.status))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(fx.body))

	s.logger.Info("party lookup served", "query_known", ok)
}

func (s *server) sendError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorResponse{
		Family:  "CLIENT_ERROR",
		Reason:  http.StatusText(code),
		Message: message,
	})
	s.logger.Warn("error response", "status", code, "message", message)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(logger *slog.Logger, key, defaultValue string) int {
	value := getEnv(key, defaultValue)
	intValue, err := strconv.Atoi(value)
	if err != nil {
		logger.Warn("invalid integer value, using default", "key", key, "default", defaultValue)
		intValue, _ = strconv.Atoi(defaultValue)
	}
	return intValue
}
