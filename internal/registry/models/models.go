// Package models holds the wire representation of the party registry reply.
//
// The shape follows the DaData "findById/party" response:
//
//	{ "suggestions": [ { "value": ..., "data": {
//	    "name": {"short_with_opf": ...}, "inn": ..., "ogrn": ..., "kpp": ...,
//	    "address": {"value": ..., "data": {"metro": [{"name", "line", "distance"}]}},
//	    "capital": {"value", "type"}, "management": {"name", "post"},
//	    "okveds": [{"name", "main"}] } } ] }
//
// Every key is optional at every level and null is treated as absent.
package models

import (
	"encoding/json"
	"fmt"
)

// LookupResult is the raw registry reply for a single query.
type LookupResult struct {
	Suggestions List[Suggestion] `json:"suggestions"`

	raw []byte
}

// Suggestion is one candidate match. The registry ranks the best match first.
type Suggestion struct {
	Value Text            `json:"value"`
	Data  Optional[Party] `json:"data"`
}

// Party is the organization payload of a suggestion.
type Party struct {
	Name       Optional[PartyName]  `json:"name"`
	INN        Text                 `json:"inn"`
	OGRN       Text                 `json:"ogrn"`
	KPP        Text                 `json:"kpp"`
	Address    Optional[Address]    `json:"address"`
	Capital    Optional[Capital]    `json:"capital"`
	Management Optional[Management] `json:"management"`
	Okveds     List[Okved]          `json:"okveds"`
}

// PartyName holds the name variants of an organization.
type PartyName struct {
	ShortWithOpf Text `json:"short_with_opf"`
	FullWithOpf  Text `json:"full_with_opf"`
}

// Address is the registered address with its structured details.
type Address struct {
	Value Text                  `json:"value"`
	Data  Optional[AddressData] `json:"data"`
}

// AddressData carries structured address attributes.
type AddressData struct {
	Metro List[Metro] `json:"metro"`
}

// Metro is a metro station near the address.
type Metro struct {
	Name     Text `json:"name"`
	Line     Text `json:"line"`
	Distance Text `json:"distance"`
}

// Capital is the registered (charter) capital.
type Capital struct {
	Value Text `json:"value"`
	Type  Text `json:"type"`
}

// Management is the head of the organization.
type Management struct {
	Name Text `json:"name"`
	Post Text `json:"post"`
}

// Okved is an economic activity code entry.
type Okved struct {
	Code Text `json:"code"`
	Name Text `json:"name"`
	Main Flag `json:"main"`
}

// DecodeLookupResult parses a registry reply. Only syntactically invalid JSON
// is an error; any well-formed document decodes, with unexpected shapes
// degrading to absent values. The original bytes are retained for caching.
func DecodeLookupResult(body []byte) (*LookupResult, error) {
	if !json.Valid(body) {
		return nil, fmt.Errorf("registry reply is not valid JSON")
	}
	var result LookupResult
	if isObject(body) {
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("decode registry reply: %w", err)
		}
	}
	result.raw = append([]byte(nil), body...)
	return &result, nil
}

// Raw returns the bytes the result was decoded from, or nil for results
// built in code.
func (r *LookupResult) Raw() []byte {
	if r == nil {
		return nil
	}
	return r.raw
}

// Empty reports whether the reply carries no suggestions.
func (r *LookupResult) Empty() bool {
	return r == nil || len(r.Suggestions) == 0
}
