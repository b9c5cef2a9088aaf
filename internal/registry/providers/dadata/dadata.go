// Package dadata implements the DaData party registry provider.
package dadata

import (
	"fmt"
	"net/http"
	"time"

	"innbot/internal/registry/models"
	"innbot/internal/registry/providers"
	"innbot/internal/registry/providers/adapters"
)

const (
	// DefaultBaseURL is the public suggestions API.
	DefaultBaseURL = "https://suggestions.dadata.ru/suggestions/api/4_1/rs"

	// PartyPath looks up a party by INN or OGRN.
	PartyPath = "/findById/party"

	version = "4_1"
)

// New constructs a DaData party provider backed by the default HTTP adapter.
func New(id, baseURL, apiKey string, timeout time.Duration) providers.Provider {
	return NewWithClient(id, baseURL, apiKey, timeout, nil)
}

// NewWithClient constructs a DaData party provider with an optional HTTP client override.
func NewWithClient(
	id, baseURL, apiKey string,
	timeout time.Duration,
	client adapters.HTTPDoer,
) providers.Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return adapters.New(adapters.HTTPAdapterConfig{
		ID:         id,
		BaseURL:    baseURL,
		Path:       PartyPath,
		APIKey:     apiKey,
		Timeout:    timeout,
		HTTPClient: client,
		Capabilities: providers.Capabilities{
			Protocol: providers.ProtocolHTTP,
			Type:     providers.ProviderTypeParty,
			Version:  version,
			Filters:  []string{"inn", "ogrn"},
		},
		Parser: parsePartyResponse,
	})
}

// parsePartyResponse decodes a findById/party reply.
func parsePartyResponse(statusCode int, body []byte) (*models.LookupResult, error) {
	if statusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", statusCode)
	}

	result, err := models.DecodeLookupResult(body)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal party response: %w", err)
	}
	return result, nil
}
