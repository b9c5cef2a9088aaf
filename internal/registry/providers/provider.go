package providers

import (
	"context"
	"fmt"

	"innbot/internal/registry/models"
)

// Protocol defines the supported communication protocols for registry providers
type Protocol string

const (
	ProtocolHTTP Protocol = "http"
)

// ProviderType identifies the kind of record a provider can return
type ProviderType string

const (
	ProviderTypeParty ProviderType = "party" // Legal entities and sole proprietors
)

// Capabilities describes what a provider supports
type Capabilities struct {
	Protocol Protocol
	Type     ProviderType
	Version  string   // Provider API version
	Filters  []string // Supported identifier kinds, e.g. "inn", "ogrn"
}

// Provider is the universal interface all registry sources must implement.
//
// Implementations wrap external registry APIs behind a common interface so the
// orchestrator can chain a primary source with fallbacks without coupling to
// their protocols.
type Provider interface {
	// ID returns a unique identifier for this provider instance (e.g., "dadata-party").
	ID() string

	// Capabilities returns what this provider supports.
	Capabilities() Capabilities

	// Lookup fetches the registry reply for a validated identifier.
	// Returns a ProviderError on failure with normalized error categories for retry decisions.
	Lookup(ctx context.Context, query string) (*models.LookupResult, error)

	// Health checks if the provider is available and responding.
	Health(ctx context.Context) error
}

// ProviderRegistry maintains all registered providers indexed by their unique ID.
//
// Note: This implementation is not thread-safe; register all providers during initialization.
type ProviderRegistry struct {
	providers map[string]Provider
	order     []string
}

func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the registry, keyed by its ID.
// Returns an error if a provider with the same ID is already registered.
func (r *ProviderRegistry) Register(p Provider) error {
	id := p.ID()
	if _, exists := r.providers[id]; exists {
		return fmt.Errorf("provider %s already registered", id)
	}
	r.providers[id] = p
	r.order = append(r.order, id)
	return nil
}

func (r *ProviderRegistry) Get(id string) (Provider, bool) {
	p, ok := r.providers[id]
	return p, ok
}

// All returns the providers in registration order.
func (r *ProviderRegistry) All() []Provider {
	result := make([]Provider, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.providers[id])
	}
	return result
}
