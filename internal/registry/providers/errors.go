package providers

import (
	"errors"
	"fmt"
)

// ErrorCategory is the normalized failure class of a registry call. The
// orchestrator decides retry and fallback from the category alone.
type ErrorCategory string

// Transient categories: worth another attempt or the next provider.
const (
	ErrorTimeout        ErrorCategory = "timeout"
	ErrorProviderOutage ErrorCategory = "provider_outage"
	ErrorRateLimited    ErrorCategory = "rate_limited"
	ErrorCircuitOpen    ErrorCategory = "circuit_open"
)

// Terminal categories: the same request will fail the same way.
const (
	ErrorBadData          ErrorCategory = "bad_data"
	ErrorAuthentication   ErrorCategory = "authentication"
	ErrorContractMismatch ErrorCategory = "contract_mismatch"
	ErrorNotFound         ErrorCategory = "not_found"
	ErrorInternal         ErrorCategory = "internal"
)

var transientCategories = map[ErrorCategory]bool{
	ErrorTimeout:        true,
	ErrorProviderOutage: true,
	ErrorRateLimited:    true,
	ErrorCircuitOpen:    true,
}

// Retryable reports whether failures of this category are transient.
func (c ErrorCategory) Retryable() bool {
	return transientCategories[c]
}

// ProviderError is a categorized failure of one provider.
type ProviderError struct {
	Category   ErrorCategory
	ProviderID string
	Message    string
	Underlying error
	Retryable  bool
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("provider %s [%s]: %s", e.ProviderID, e.Category, e.Message)
	if e.Underlying != nil {
		msg += ": " + e.Underlying.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

// NewProviderError builds a ProviderError with Retryable derived from category.
func NewProviderError(category ErrorCategory, providerID, message string, underlying error) *ProviderError {
	return &ProviderError{
		Category:   category,
		ProviderID: providerID,
		Message:    message,
		Underlying: underlying,
		Retryable:  category.Retryable(),
	}
}

// IsRetryable reports whether err carries a retryable ProviderError.
func IsRetryable(err error) bool {
	pe, ok := asProviderError(err)
	return ok && pe.Retryable
}

// GetCategory returns the category of the ProviderError in err's chain, or
// ErrorInternal when there is none.
func GetCategory(err error) ErrorCategory {
	if pe, ok := asProviderError(err); ok {
		return pe.Category
	}
	return ErrorInternal
}

func asProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	ok := errors.As(err, &pe)
	return pe, ok
}

// Orchestrator-level failures, distinct from a single provider's ProviderError.
var (
	ErrProviderNotFound     = errors.New("provider not found")
	ErrNoProvidersAvailable = errors.New("no providers available")
	ErrAllProvidersFailed   = errors.New("all providers failed")
)
