package types

import "time"

// RoleID identifies a participant role in a deliberation session.
// Roles are opaque capability identifiers; the engine attaches no meaning
// to them beyond registry lookup and canonical ordering.
type RoleID string

// Roster size and round bounds shared by configuration validation.
const (
	MinRosterSize     = 2
	MaxRosterSize     = 6
	DefaultRosterSize = 4
	MinSessionRounds  = 1
	MaxSessionRounds  = 5
	DefaultRounds     = 3

	// Quorum is the minimum number of successful perspectives a round
	// needs to be valid.
	Quorum = 2
)

// BalanceStrategy controls how automatic roster selection weighs role
// categories against each other.
type BalanceStrategy string

const (
	BalanceTechnical BalanceStrategy = "technical"
	BalanceBusiness  BalanceStrategy = "business"
	BalanceBalanced  BalanceStrategy = "balanced"
)

// Visibility controls what the session surfaces to observers while it runs.
// It never affects the outcome.
type Visibility string

const (
	// VisibilityFull streams every perspective as it is produced.
	VisibilityFull Visibility = "full"
	// VisibilityProgress streams round completion and conflict summaries only.
	VisibilityProgress Visibility = "progress"
	// VisibilitySummary emits nothing until the session is done.
	VisibilitySummary Visibility = "summary"
)

// StrategyName selects the synthesis strategy in a serializable form.
// The synthesis package converts it into its closed Strategy variant.
type StrategyName string

const (
	StrategyConsensus   StrategyName = "consensus"
	StrategyWeighted    StrategyName = "weighted"
	StrategyFacilitator StrategyName = "facilitator"
)

// SessionStatus is the terminal state of a session.
type SessionStatus string

const (
	StatusCompleted SessionStatus = "completed"
	StatusVetoed    SessionStatus = "vetoed"
	StatusCancelled SessionStatus = "cancelled"
	StatusFailed    SessionStatus = "failed"
)

// RosterConfig constrains automatic roster selection.
//
// Invariants: Required and Excluded are disjoint, and len(Required) never
// exceeds MaxParticipants. Violations fail selection with INVALID_CONSTRAINT.
type RosterConfig struct {
	// MaxParticipants bounds the roster size (2..6). Zero means the
	// default of DefaultRosterSize.
	MaxParticipants int `json:"max_participants,omitempty" yaml:"max_participants" validate:"omitempty,min=2,max=6"`

	// Required roles are always selected, before any scoring.
	Required []RoleID `json:"required,omitempty" yaml:"required"`

	// Excluded roles are never selected, regardless of score.
	Excluded []RoleID `json:"excluded,omitempty" yaml:"excluded"`

	// BalanceStrategy biases selection toward technical or business
	// categories, or rebalances a one-sided roster when "balanced".
	BalanceStrategy BalanceStrategy `json:"balance_strategy,omitempty" yaml:"balance_strategy" validate:"omitempty,oneof=technical business balanced"`
}

// DefaultRosterConfig returns a roster configuration with the default
// participant cap and balanced selection.
func DefaultRosterConfig() RosterConfig {
	return RosterConfig{
		MaxParticipants: DefaultRosterSize,
		BalanceStrategy: BalanceBalanced,
	}
}

// StrategyParams carries the per-strategy parameters. Which fields are
// required depends on SessionConfig.Strategy; the synthesis package rejects
// missing or malformed parameters with INVALID_PARAMS.
type StrategyParams struct {
	// Weights maps roles to relative influence for the weighted strategy.
	// The set values must sum to at most 1; participants without an entry
	// share the remainder equally.
	Weights map[RoleID]float64 `json:"weights,omitempty" yaml:"weights"`

	// FacilitatorRole names the role whose final position the facilitator
	// strategy packages as the recommendation.
	FacilitatorRole RoleID `json:"facilitator_role,omitempty" yaml:"facilitator_role"`
}

// SessionConfig is the immutable request that creates a deliberation session.
type SessionConfig struct {
	// Topic is the decision question. Never mutated after session start.
	Topic string `json:"topic" yaml:"topic" validate:"required"`

	// Context is a free-text background blob attached at session start.
	Context string `json:"context,omitempty" yaml:"context"`

	// Roster names the participant roles explicitly. Empty means automatic
	// selection using RosterConfig.
	Roster []RoleID `json:"roster,omitempty" yaml:"roster"`

	// RosterConfig constrains automatic selection and validates an
	// explicit roster.
	RosterConfig RosterConfig `json:"roster_config,omitempty" yaml:"roster_config"`

	// MaxRounds bounds the deliberation (1..5). Zero means DefaultRounds.
	MaxRounds int `json:"max_rounds,omitempty" yaml:"max_rounds" validate:"omitempty,min=1,max=5"`

	// Visibility controls observer output during the run. Empty means
	// VisibilitySummary.
	Visibility Visibility `json:"visibility,omitempty" yaml:"visibility" validate:"omitempty,oneof=full progress summary"`

	// Strategy selects the synthesis algorithm.
	Strategy StrategyName `json:"strategy" yaml:"strategy" validate:"required,oneof=consensus weighted facilitator"`

	// StrategyParams carries the strategy-specific parameters.
	StrategyParams StrategyParams `json:"strategy_params,omitempty" yaml:"strategy_params"`

	// VetoRole optionally designates a role whose asserted trigger phrase
	// terminates the session before synthesis.
	VetoRole RoleID `json:"veto_role,omitempty" yaml:"veto_role"`

	// VetoTriggers are the phrases that, when asserted by VetoRole's own
	// perspective, raise a veto. Empty means DefaultVetoTriggers.
	VetoTriggers []string `json:"veto_triggers,omitempty" yaml:"veto_triggers"`
}

// DefaultVetoTriggers returns the phrases that raise a veto when asserted by
// the designated veto role. Matching is case-insensitive.
func DefaultVetoTriggers() []string {
	return []string{
		"veto",
		"must not proceed",
		"hard block",
		"non-negotiable",
	}
}

// VetoSignal records the terminal interrupt raised by the veto role.
// At most one exists per session; once set, no further rounds run and no
// synthesis is produced.
type VetoSignal struct {
	Role          RoleID `json:"role"`
	Reason        string `json:"reason"`
	RaisedInRound int    `json:"raised_in_round"`
}

// ProviderGap records a provider call that failed or timed out in a round.
// Gaps never abort a round on their own; they matter only when they drop the
// round below quorum.
type ProviderGap struct {
	Role   RoleID `json:"role"`
	Round  int    `json:"round"`
	Reason string `json:"reason"`
}

// SessionResult is the terminal record of a deliberation session. It is
// fully inspectable on every path: contributions, conflicts and gaps are
// never discarded, only Synthesis is absent when synthesis did not run.
type SessionResult struct {
	SessionID string        `json:"session_id"`
	Topic     string        `json:"topic"`
	Status    SessionStatus `json:"status"`

	// RoundsRun counts the rounds that actually executed.
	RoundsRun int `json:"rounds_run"`

	// Contributions holds every perspective from every round, for audit.
	Contributions []Perspective `json:"contributions"`

	// Conflicts holds the conflicts detected across all rounds.
	Conflicts []Conflict `json:"conflicts,omitempty"`

	// Gaps records provider calls that produced no perspective.
	Gaps []ProviderGap `json:"gaps,omitempty"`

	// Veto is set when the session terminated by veto. A vetoed session
	// never has a Synthesis.
	Veto *VetoSignal `json:"veto,omitempty"`

	// Synthesis is set only when the session completed normally.
	Synthesis *SynthesisResult `json:"synthesis,omitempty"`

	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
	Duration    time.Duration `json:"duration"`
}

// PerspectivesForRound returns the contributions recorded for one round, in
// canonical role order.
func (r *SessionResult) PerspectivesForRound(round int) []Perspective {
	var out []Perspective
	for _, p := range r.Contributions {
		if p.Round == round {
			out = append(out, p)
		}
	}
	SortPerspectives(out)
	return out
}

// HasRole reports whether any contribution was recorded for the role.
func (r *SessionResult) HasRole(role RoleID) bool {
	for _, p := range r.Contributions {
		if p.Role == role {
			return true
		}
	}
	return false
}
