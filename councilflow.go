// Package councilflow provides a top-level convenience entry point for
// running deliberation sessions with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/councilflow"
//
//	reg := councilflow.NewProviderRegistry()
//	reg.Register("security", securityProvider)
//	reg.Register("finance", financeProvider)
//
//	orch := councilflow.New(nil, reg)
//	result, err := orch.Run(ctx, councilflow.SessionConfig{
//		Topic:    "Adopt a managed Kubernetes service",
//		Roster:   []councilflow.RoleID{"security", "finance"},
//		Strategy: councilflow.StrategyConsensus,
//	})
//
// This is a thin wrapper around [deliberation.New]; both produce identical
// results. Use this package when you prefer the shorter import path.
package councilflow

import (
	"github.com/BaSui01/councilflow/deliberation"
	"github.com/BaSui01/councilflow/provider"
	"github.com/BaSui01/councilflow/types"
)

// Core session types, re-exported so callers never need to import types/.
type (
	RoleID          = types.RoleID
	SessionConfig   = types.SessionConfig
	RosterConfig    = types.RosterConfig
	StrategyParams  = types.StrategyParams
	SessionResult   = types.SessionResult
	Perspective     = types.Perspective
	Conflict        = types.Conflict
	ProviderGap     = types.ProviderGap
	VetoSignal      = types.VetoSignal
	SynthesisResult = types.SynthesisResult
)

// Provider-side types, re-exported from provider/.
type (
	Provider        = provider.Provider
	ProviderFunc    = provider.Func
	ProviderRequest = provider.Request
)

// Orchestration types, re-exported from deliberation/.
type (
	Orchestrator = deliberation.Orchestrator
	Config       = deliberation.Config
	Option       = deliberation.Option
	Observer     = deliberation.Observer
	Event        = deliberation.Event
)

// Synthesis strategy names.
const (
	StrategyConsensus   = types.StrategyConsensus
	StrategyWeighted    = types.StrategyWeighted
	StrategyFacilitator = types.StrategyFacilitator
)

// Session visibility levels.
const (
	VisibilityFull     = types.VisibilityFull
	VisibilityProgress = types.VisibilityProgress
	VisibilitySummary  = types.VisibilitySummary
)

// Terminal session statuses.
const (
	StatusCompleted = types.StatusCompleted
	StatusVetoed    = types.StatusVetoed
	StatusCancelled = types.StatusCancelled
	StatusFailed    = types.StatusFailed
)

// New creates an orchestrator over the given provider resolver. A nil
// cfg uses [DefaultConfig].
func New(cfg *Config, resolver provider.Resolver, opts ...Option) *Orchestrator {
	return deliberation.New(cfg, resolver, opts...)
}

// NewProviderRegistry creates an empty role-to-provider registry.
func NewProviderRegistry() *provider.Registry {
	return provider.NewRegistry()
}

// NewObserver creates a session event observer with the given buffer
// size. A non-positive size uses the default.
func NewObserver(buffer int) *Observer {
	return deliberation.NewObserver(buffer)
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() *Config {
	return deliberation.DefaultConfig()
}

// Re-export orchestrator options so callers never need to import
// deliberation/.

// WithLogger sets the zap logger shared by the orchestrator and its
// collaborators.
var WithLogger = deliberation.WithLogger

// WithObserver attaches a session event observer.
var WithObserver = deliberation.WithObserver

// WithMetrics enables Prometheus metrics under a namespace.
var WithMetrics = deliberation.WithMetrics

// WithTracer enables OpenTelemetry spans per session, round and
// provider call.
var WithTracer = deliberation.WithTracer

// WithSelector replaces the automatic roster selector.
var WithSelector = deliberation.WithSelector

// WithRoleRegistry builds the default selector over a custom role
// registry.
var WithRoleRegistry = deliberation.WithRoleRegistry

// WithDetector replaces the conflict detector.
var WithDetector = deliberation.WithDetector

// WithSynthesisEngine replaces the synthesis engine.
var WithSynthesisEngine = deliberation.WithSynthesisEngine

// DefaultVetoTriggers returns the default veto trigger phrases.
var DefaultVetoTriggers = types.DefaultVetoTriggers

// DefaultRosterConfig returns the default roster constraints.
var DefaultRosterConfig = types.DefaultRosterConfig
