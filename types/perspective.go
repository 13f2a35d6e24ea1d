package types

import (
	"fmt"
	"math"
	"sort"
)

// Perspective is one role's contribution for one round: a stated position,
// its supporting reasoning, open concerns, a confidence value and the
// priorities the role is optimizing for. Perspectives are owned by the round
// that produced them and retained unmodified for the life of the session.
type Perspective struct {
	Role       RoleID   `json:"role"`
	Round      int      `json:"round"`
	Position   string   `json:"position"`
	Reasoning  []string `json:"reasoning,omitempty"`
	Concerns   []string `json:"concerns,omitempty"`
	Confidence float64  `json:"confidence"`
	Priorities []string `json:"priorities,omitempty"`
}

// Validate checks the fields a provider cannot be trusted to set correctly.
// Confidence must be a real number in [0,1].
func (p Perspective) Validate() error {
	if math.IsNaN(p.Confidence) || math.IsInf(p.Confidence, 0) {
		return NewError(ErrInvalidPerspective, "confidence is not a finite number").WithRole(p.Role)
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return NewError(ErrInvalidPerspective,
			fmt.Sprintf("confidence %.3f out of range [0,1]", p.Confidence)).WithRole(p.Role)
	}
	return nil
}

// SortRoles orders role identifiers lexicographically, in place. This is the
// canonical role ordering used everywhere determinism matters.
func SortRoles(roles []RoleID) {
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
}

// SortPerspectives orders perspectives canonically: by role, then by round.
// Aggregation always runs over canonically ordered input so that provider
// completion order never influences the outcome.
func SortPerspectives(ps []Perspective) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Role != ps[j].Role {
			return ps[i].Role < ps[j].Role
		}
		return ps[i].Round < ps[j].Round
	})
}

// Conflict is a detected disagreement dimension between two or more
// perspectives. Conflicts are derived values, recomputed each round.
type Conflict struct {
	// Dimension names the topic area the involved roles disagree about.
	Dimension string `json:"dimension"`

	// InvolvedRoles lists the disagreeing roles in canonical order.
	InvolvedRoles []RoleID `json:"involved_roles"`

	// Magnitude is the aggregate disagreement strength in [0,1].
	Magnitude float64 `json:"magnitude"`

	Description string `json:"description,omitempty"`
}

// SortConflicts orders conflicts canonically: magnitude descending, ties
// broken by dimension name.
func SortConflicts(cs []Conflict) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Magnitude != cs[j].Magnitude {
			return cs[i].Magnitude > cs[j].Magnitude
		}
		return cs[i].Dimension < cs[j].Dimension
	})
}
