// Package domain contains the pure model of the registry lookup context.
//
//	registry/domain/
//	├── identifier/    # syntactic classification of user input (ИНН / ОГРН)
//	└── organization/  # normalized organization record built from a registry reply
//
// Domain packages perform no I/O, take no context.Context and never read the
// clock. Fetching, caching and retries are the application layer's job
// (registry/service and registry/orchestrator); rendering lives in
// registry/report.
package domain
