package roster

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/BaSui01/councilflow/types"
)

// Category groups roles for balance-strategy purposes.
type Category string

const (
	CategoryTechnical  Category = "technical"
	CategoryBusiness   Category = "business"
	CategoryGovernance Category = "governance"
)

func validCategory(c Category) bool {
	return c == CategoryTechnical || c == CategoryBusiness || c == CategoryGovernance
}

// RoleDefinition describes a participant role known to the engine.
type RoleDefinition struct {
	ID       types.RoleID `json:"id" yaml:"id"`
	Category Category     `json:"category" yaml:"category"`

	// Keywords boost the role's score when they appear in the session
	// topic or context.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords"`

	// DecisionTypes boost the role when the classified decision type of
	// the topic matches one of them.
	DecisionTypes []DecisionType `json:"decision_types,omitempty" yaml:"decision_types"`

	// Priority breaks score ties deterministically; lower values win.
	Priority int `json:"priority" yaml:"priority"`

	Description string `json:"description,omitempty" yaml:"description"`
}

// Registry holds the role definitions available for selection. Registration
// happens at process startup; at session time the registry is read-only and
// may be shared across concurrent sessions.
type Registry struct {
	mu    sync.RWMutex
	roles map[types.RoleID]RoleDefinition
}

// NewRegistry creates an empty role registry.
func NewRegistry() *Registry {
	return &Registry{roles: make(map[types.RoleID]RoleDefinition)}
}

// Register adds or replaces a role definition.
func (r *Registry) Register(def RoleDefinition) error {
	if def.ID == "" {
		return types.NewError(types.ErrInvalidConstraint, "role definition has empty ID")
	}
	if !validCategory(def.Category) {
		return types.NewError(types.ErrInvalidConstraint,
			fmt.Sprintf("role %s: invalid category %q", def.ID, def.Category))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[def.ID] = def
	return nil
}

// Get returns the definition for a role.
func (r *Registry) Get(id types.RoleID) (RoleDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.roles[id]
	return def, ok
}

// List returns all definitions in deterministic order: priority ascending,
// ties broken by role ID.
func (r *Registry) List() []RoleDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RoleDefinition, 0, len(r.roles))
	for _, def := range r.roles {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Roles returns all role IDs in the same order as List.
func (r *Registry) Roles() []types.RoleID {
	defs := r.List()
	out := make([]types.RoleID, len(defs))
	for i, def := range defs {
		out[i] = def.ID
	}
	return out
}

// Len returns the number of registered roles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.roles)
}

// DefaultRegistry returns the built-in role table. Priorities implement the
// fixed tiebreak ordering security > architecture > product > finance >
// generalist.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, def := range builtinRoles {
		// Built-in definitions are statically valid.
		_ = r.Register(def)
	}
	return r
}

var builtinRoles = []RoleDefinition{
	{
		ID:       "security",
		Category: CategoryTechnical,
		Priority: 0,
		Keywords: []string{
			"security", "authentication", "authorization", "mfa", "credential",
			"vulnerability", "encryption", "compliance", "breach", "threat",
			"access control", "audit", "secret", "token",
		},
		DecisionTypes: []DecisionType{DecisionSecurityReview},
		Description:   "risk-first review of access, data protection and abuse paths",
	},
	{
		ID:       "architecture",
		Category: CategoryTechnical,
		Priority: 1,
		Keywords: []string{
			"architecture", "design", "scalability", "migration", "refactor",
			"infrastructure", "latency", "database", "api", "platform",
			"integration", "reliability", "technical debt",
		},
		DecisionTypes: []DecisionType{DecisionArchitectureReview},
		Description:   "system structure, evolution cost and operational fit",
	},
	{
		ID:       "product",
		Category: CategoryBusiness,
		Priority: 2,
		Keywords: []string{
			"product", "user", "customer", "feature", "roadmap", "experience",
			"adoption", "market", "launch", "usability", "retention",
		},
		DecisionTypes: []DecisionType{DecisionProductDecision},
		Description:   "user value, scope and sequencing",
	},
	{
		ID:       "finance",
		Category: CategoryBusiness,
		Priority: 3,
		Keywords: []string{
			"cost", "budget", "revenue", "pricing", "spend", "roi",
			"investment", "saving", "license", "headcount", "forecast",
		},
		DecisionTypes: []DecisionType{DecisionCostAnalysis},
		Description:   "cost, pricing and return on investment",
	},
	{
		ID:       "generalist",
		Category: CategoryGovernance,
		Priority: 4,
		Keywords: []string{
			"decision", "tradeoff", "risk", "policy", "process",
			"stakeholder", "alignment", "timeline",
		},
		DecisionTypes: []DecisionType{DecisionGeneral},
		Description:   "cross-cutting tradeoffs and process hygiene",
	},
}

// registryFile is the YAML document shape for role tables.
type registryFile struct {
	Roles []RoleDefinition `yaml:"roles"`
}

// ParseRegistry builds a registry from YAML bytes.
func ParseRegistry(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse role registry: %w", err)
	}
	if len(file.Roles) == 0 {
		return nil, types.NewError(types.ErrInvalidConstraint, "role registry contains no roles")
	}
	r := NewRegistry()
	for _, def := range file.Roles {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// LoadRegistry reads a role table from a YAML file.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read role registry %s: %w", path, err)
	}
	return ParseRegistry(data)
}
