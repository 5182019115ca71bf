// Package app provides the application service layer.
//
// Orchestrates use cases: chunked spin deletion, caller authentication and
// admin capability issuance, catalogue lookups. Sits between the transport
// adapters and domain repositories. Depends on domain interfaces, not
// concrete implementations.
package app
