package provider

import (
	"context"
	"sync"

	"github.com/BaSui01/councilflow/types"
)

// Request carries everything a provider needs to produce one
// perspective: the role it speaks for, the topic under deliberation,
// caller-supplied background, the current round number and a digest of
// what the other roles said in the prior round. PriorSummary is empty
// in round one.
type Request struct {
	Role         types.RoleID `json:"role"`
	Topic        string       `json:"topic"`
	Context      string       `json:"context,omitempty"`
	Round        int          `json:"round"`
	PriorSummary string       `json:"prior_summary,omitempty"`
}

// Provider produces one role's perspective for one round.
type Provider interface {
	Invoke(ctx context.Context, req Request) (*types.Perspective, error)
}

// Func adapts an ordinary function to the Provider interface.
type Func func(ctx context.Context, req Request) (*types.Perspective, error)

// Invoke implements Provider.
func (f Func) Invoke(ctx context.Context, req Request) (*types.Perspective, error) {
	return f(ctx, req)
}

// Resolver maps a role to the provider that speaks for it. The
// orchestrator requires every selected role to resolve before the
// first round starts.
type Resolver interface {
	Resolve(role types.RoleID) (Provider, bool)
}

// Registry is a thread-safe Resolver backed by a map. Registering the
// same role twice replaces the earlier provider.
type Registry struct {
	providers map[types.RoleID]Provider
	mu        sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[types.RoleID]Provider),
	}
}

// Register adds a provider for the given role.
func (r *Registry) Register(role types.RoleID, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[role] = p
}

// Resolve implements Resolver.
func (r *Registry) Resolve(role types.RoleID) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[role]
	return p, ok
}

// Unregister removes the provider for a role, if any.
func (r *Registry) Unregister(role types.RoleID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.providers, role)
}

// Roles returns the registered roles in canonical order.
func (r *Registry) Roles() []types.RoleID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roles := make([]types.RoleID, 0, len(r.providers))
	for role := range r.providers {
		roles = append(roles, role)
	}
	types.SortRoles(roles)
	return roles
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
