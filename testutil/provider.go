package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/BaSui01/councilflow/provider"
	"github.com/BaSui01/councilflow/types"
)

// ProviderCall records a single scripted provider invocation.
type ProviderCall struct {
	Request provider.Request
	Err     error
}

// ScriptedProvider is a provider.Provider for tests: it returns a
// scripted perspective, optionally varying by round, with injectable
// failures and delays. All methods are safe for concurrent use.
type ScriptedProvider struct {
	mu sync.RWMutex

	// scripted output
	position   string
	confidence float64
	reasoning  []string
	concerns   []string
	priorities []string
	perRound   map[int]types.Perspective

	// behavior controls
	err        error
	failFirst  int
	delay      time.Duration
	invokeFunc func(ctx context.Context, req provider.Request) (*types.Perspective, error)

	// call recording
	calls []ProviderCall
}

// NewScriptedProvider creates a provider that agrees with everything at
// moderate confidence until scripted otherwise.
func NewScriptedProvider() *ScriptedProvider {
	return &ScriptedProvider{
		position:   "No objection.",
		confidence: 0.8,
	}
}

// NewStaticProvider creates a provider that always returns the given
// position and confidence.
func NewStaticProvider(position string, confidence float64) *ScriptedProvider {
	return NewScriptedProvider().WithPosition(position).WithConfidence(confidence)
}

// NewFailingProvider creates a provider that always fails with err.
func NewFailingProvider(err error) *ScriptedProvider {
	if err == nil {
		err = errors.New("scripted failure")
	}
	return NewScriptedProvider().WithError(err)
}

// NewVetoProvider creates a provider whose position asserts the default
// veto trigger.
func NewVetoProvider(reason string) *ScriptedProvider {
	return NewScriptedProvider().
		WithPosition("I veto this proposal: " + reason).
		WithConfidence(0.95)
}

// WithPosition sets the scripted position.
func (s *ScriptedProvider) WithPosition(position string) *ScriptedProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = position
	return s
}

// WithConfidence sets the scripted confidence.
func (s *ScriptedProvider) WithConfidence(confidence float64) *ScriptedProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confidence = confidence
	return s
}

// WithReasoning sets the scripted reasoning items.
func (s *ScriptedProvider) WithReasoning(reasoning ...string) *ScriptedProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reasoning = reasoning
	return s
}

// WithConcerns sets the scripted concerns.
func (s *ScriptedProvider) WithConcerns(concerns ...string) *ScriptedProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.concerns = concerns
	return s
}

// WithPriorities sets the scripted priorities.
func (s *ScriptedProvider) WithPriorities(priorities ...string) *ScriptedProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.priorities = priorities
	return s
}

// WithRound overrides the scripted perspective for one specific round.
// Role and round are stamped from the request at invoke time.
func (s *ScriptedProvider) WithRound(round int, p types.Perspective) *ScriptedProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.perRound == nil {
		s.perRound = make(map[int]types.Perspective)
	}
	s.perRound[round] = p
	return s
}

// WithError makes every invocation fail with err.
func (s *ScriptedProvider) WithError(err error) *ScriptedProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	return s
}

// WithFailuresBeforeSuccess makes the first n invocations fail with a
// transient error, then succeed. Useful for retry paths.
func (s *ScriptedProvider) WithFailuresBeforeSuccess(n int) *ScriptedProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failFirst = n
	return s
}

// WithDelay makes every invocation wait before responding. The wait
// honors context cancellation.
func (s *ScriptedProvider) WithDelay(d time.Duration) *ScriptedProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
	return s
}

// WithInvokeFunc replaces the scripted behavior entirely. Calls are
// still recorded.
func (s *ScriptedProvider) WithInvokeFunc(fn func(ctx context.Context, req provider.Request) (*types.Perspective, error)) *ScriptedProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invokeFunc = fn
	return s
}

// Invoke implements provider.Provider.
func (s *ScriptedProvider) Invoke(ctx context.Context, req provider.Request) (*types.Perspective, error) {
	s.mu.Lock()
	callIndex := len(s.calls)
	s.calls = append(s.calls, ProviderCall{Request: req})
	delay := s.delay
	fn := s.invokeFunc
	scriptedErr := s.err
	transient := callIndex < s.failFirst
	scripted, hasOverride := s.perRound[req.Round]
	out := types.Perspective{
		Role:       req.Role,
		Round:      req.Round,
		Position:   s.position,
		Reasoning:  append([]string(nil), s.reasoning...),
		Concerns:   append([]string(nil), s.concerns...),
		Confidence: s.confidence,
		Priorities: append([]string(nil), s.priorities...),
	}
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			s.recordErr(callIndex, ctx.Err())
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if fn != nil {
		p, err := fn(ctx, req)
		s.recordErr(callIndex, err)
		return p, err
	}
	if scriptedErr != nil {
		s.recordErr(callIndex, scriptedErr)
		return nil, scriptedErr
	}
	if transient {
		err := errors.New("scripted transient failure")
		s.recordErr(callIndex, err)
		return nil, err
	}

	if hasOverride {
		scripted.Role = req.Role
		scripted.Round = req.Round
		return &scripted, nil
	}
	return &out, nil
}

func (s *ScriptedProvider) recordErr(callIndex int, err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[callIndex].Err = err
}

// Calls returns a copy of the recorded invocations in order.
func (s *ScriptedProvider) Calls() []ProviderCall {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ProviderCall(nil), s.calls...)
}

// CallCount returns the number of invocations so far.
func (s *ScriptedProvider) CallCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.calls)
}

// Reset clears the call history but keeps the scripted behavior.
func (s *ScriptedProvider) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// BuildRegistry wires providers into a fresh registry.
func BuildRegistry(providers map[types.RoleID]provider.Provider) *provider.Registry {
	reg := provider.NewRegistry()
	for role, p := range providers {
		reg.Register(role, p)
	}
	return reg
}
