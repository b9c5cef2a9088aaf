package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"innbot/internal/registry/models"
	"innbot/internal/registry/providers"
)

const defaultTimeout = 5 * time.Second

// HTTPAdapter wraps HTTP-based registry providers
type HTTPAdapter struct {
	id         string
	baseURL    string
	path       string
	healthPath string
	apiKey     string
	client     HTTPDoer
	timeout    time.Duration
	capabs     providers.Capabilities
	parser     ResponseParser
}

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ResponseParser converts a successful HTTP response body to a registry reply
type ResponseParser func(statusCode int, body []byte) (*models.LookupResult, error)

// HTTPAdapterConfig configures an HTTP adapter
type HTTPAdapterConfig struct {
	ID           string
	BaseURL      string
	Path         string // Lookup endpoint relative to BaseURL
	HealthPath   string // Optional; the base URL is probed when empty
	APIKey       string
	Timeout      time.Duration
	HTTPClient   HTTPDoer
	Capabilities providers.Capabilities
	Parser       ResponseParser
}

// New creates a new HTTP protocol adapter
func New(cfg HTTPAdapterConfig) *HTTPAdapter {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Parser == nil {
		cfg.Parser = DecodeParser
	}

	return &HTTPAdapter{
		id:         cfg.ID,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		path:       cfg.Path,
		healthPath: cfg.HealthPath,
		apiKey:     cfg.APIKey,
		client:     selectHTTPClient(cfg),
		timeout:    cfg.Timeout,
		capabs:     cfg.Capabilities,
		parser:     cfg.Parser,
	}
}

func selectHTTPClient(cfg HTTPAdapterConfig) HTTPDoer {
	if cfg.HTTPClient != nil {
		return cfg.HTTPClient
	}

	return &http.Client{
		Timeout: cfg.Timeout,
	}
}

// DecodeParser decodes the body as a registry reply.
func DecodeParser(_ int, body []byte) (*models.LookupResult, error) {
	return models.DecodeLookupResult(body)
}

// ID returns the provider identifier
func (a *HTTPAdapter) ID() string {
	return a.id
}

// Capabilities returns what this provider supports
func (a *HTTPAdapter) Capabilities() providers.Capabilities {
	return a.capabs
}

type lookupRequest struct {
	Query string `json:"query"`
}

// Lookup POSTs {"query": query} to the lookup endpoint.
func (a *HTTPAdapter) Lookup(ctx context.Context, query string) (*models.LookupResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	bodyBytes, err := json.Marshal(lookupRequest{Query: query})
	if err != nil {
		return nil, providers.NewProviderError(
			providers.ErrorInternal,
			a.id,
			"failed to marshal request",
			err,
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+a.path, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, providers.NewProviderError(
			providers.ErrorInternal,
			a.id,
			"failed to create request",
			err,
		)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	a.authorize(req)

	resp, err := a.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, providers.NewProviderError(
				providers.ErrorTimeout,
				a.id,
				"request timeout",
				err,
			)
		}
		return nil, providers.NewProviderError(
			providers.ErrorProviderOutage,
			a.id,
			"failed to execute request",
			err,
		)
	}
	defer resp.Body.Close()

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, providers.NewProviderError(
				providers.ErrorTimeout,
				a.id,
				"response read timeout",
				err,
			)
		}
		return nil, providers.NewProviderError(
			providers.ErrorBadData,
			a.id,
			"failed to read response",
			err,
		)
	}

	if err := classifyStatus(a.id, resp.StatusCode); err != nil {
		return nil, err
	}

	result, err := a.parser(resp.StatusCode, respBodyBytes)
	if err != nil {
		return nil, providers.NewProviderError(
			providers.ErrorBadData,
			a.id,
			"failed to parse response",
			err,
		)
	}

	return result, nil
}

// classifyStatus maps non-2xx status codes onto the provider error taxonomy.
func classifyStatus(id string, status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return providers.NewProviderError(
			providers.ErrorAuthentication,
			id,
			fmt.Sprintf("authentication failed: %d", status),
			nil,
		)
	case status == http.StatusNotFound:
		return providers.NewProviderError(
			providers.ErrorNotFound,
			id,
			"record not found",
			nil,
		)
	case status == http.StatusTooManyRequests:
		return providers.NewProviderError(
			providers.ErrorRateLimited,
			id,
			"rate limit exceeded",
			nil,
		)
	case status == http.StatusGatewayTimeout:
		return providers.NewProviderError(
			providers.ErrorTimeout,
			id,
			fmt.Sprintf("upstream timeout: %d", status),
			nil,
		)
	case status >= 500:
		return providers.NewProviderError(
			providers.ErrorProviderOutage,
			id,
			fmt.Sprintf("provider unavailable: %d", status),
			nil,
		)
	default:
		return providers.NewProviderError(
			providers.ErrorInternal,
			id,
			fmt.Sprintf("unexpected status: %d", status),
			nil,
		)
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (a *HTTPAdapter) authorize(req *http.Request) {
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Token "+a.apiKey)
	}
}

// Health checks if the provider is reachable. Any response below 500 counts
// as healthy since registry APIs rarely expose a dedicated probe.
func (a *HTTPAdapter) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+a.healthPath, nil)
	if err != nil {
		return err
	}
	a.authorize(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return providers.NewProviderError(
			providers.ErrorProviderOutage,
			a.id,
			"health check failed",
			err,
		)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return providers.NewProviderError(
			providers.ErrorProviderOutage,
			a.id,
			fmt.Sprintf("unhealthy status: %d", resp.StatusCode),
			nil,
		)
	}

	return nil
}
