// Copyright (c) CouncilFlow Authors.
// Licensed under the MIT License.

// Package provider defines the boundary between the deliberation engine
// and whatever produces perspectives: an LLM call, a rules engine, a
// human console, a recorded script.
//
// # Overview
//
// A Provider answers one Request with one types.Perspective. The engine
// never constructs perspectives itself; it resolves a Provider per role
// through a Resolver (usually a Registry) and invokes each one once per
// round.
//
// Provider output is untrusted. The middleware in this package hardens
// the boundary the same way an HTTP client stack would: Validate
// rejects malformed output and stamps the authoritative role and round,
// Retry repeats transient failures with exponential backoff, Timeout
// bounds each attempt, RateLimit spreads calls under a shared limiter,
// Recover converts a panicking provider into an error, and Logging
// records call outcomes. Compose them with a Chain, outermost first.
//
// Providers must honor context cancellation; a provider that ignores
// its context holds its round open until it returns.
package provider
