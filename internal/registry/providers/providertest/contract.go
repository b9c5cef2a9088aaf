// Package providertest holds a reusable contract suite for registry providers.
package providertest

import (
	"context"
	"testing"

	"innbot/internal/registry/models"
	"innbot/internal/registry/providers"
)

// ContractTest defines a test case for provider contract validation
type ContractTest struct {
	Name         string
	Provider     providers.Provider
	Query        string
	ValidateFunc func(result *models.LookupResult) error
}

// ContractSuite is a collection of contract tests for a provider
type ContractSuite struct {
	ProviderID   string
	ProviderType providers.ProviderType
	Tests        []ContractTest
}

// Run executes all contract tests in the suite
func (s *ContractSuite) Run(t *testing.T) {
	for _, test := range s.Tests {
		t.Run(test.Name, func(t *testing.T) {
			if test.Provider.ID() != s.ProviderID {
				t.Errorf("expected provider ID %s, got %s", s.ProviderID, test.Provider.ID())
			}
			if got := test.Provider.Capabilities().Type; got != s.ProviderType {
				t.Errorf("expected type %s, got %s", s.ProviderType, got)
			}

			result, err := test.Provider.Lookup(context.Background(), test.Query)
			if err != nil {
				t.Fatalf("provider lookup failed: %v", err)
			}
			if result == nil {
				t.Fatal("provider returned nil result without error")
			}
			if len(result.Raw()) == 0 {
				t.Error("raw reply not retained")
			}

			if test.ValidateFunc != nil {
				if err := test.ValidateFunc(result); err != nil {
					t.Errorf("custom validation failed: %v", err)
				}
			}
		})
	}
}
