package types

// ConfidenceLevel grades how strongly the synthesized recommendation is
// supported by the perspective set.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// DissentWeight grades how much standing a dissenting position retains in
// the final result.
type DissentWeight string

const (
	// DissentAdvisory marks minority positions under the consensus strategy.
	DissentAdvisory DissentWeight = "advisory"
	// DissentNoted marks low-weight dissenters under the weighted strategy.
	DissentNoted DissentWeight = "noted"
	// DissentAcknowledged marks dissenters whose weight is significant.
	DissentAcknowledged DissentWeight = "acknowledged"
)

// DissentEntry records one participant's position that the recommendation
// does not adopt.
type DissentEntry struct {
	Role       RoleID        `json:"role"`
	Position   string        `json:"position"`
	Weight     DissentWeight `json:"weight"`
	Resolution string        `json:"resolution,omitempty"`
}

// SynthesisResult is the aggregated outcome of a finished perspective set.
// Identical inputs always produce identical results, field for field.
type SynthesisResult struct {
	// Recommendation is the single aggregated position.
	Recommendation string `json:"recommendation"`

	Confidence ConfidenceLevel `json:"confidence"`

	// ConsensusPoints lists the claims shared by at least two participants,
	// phrased as shared ground.
	ConsensusPoints []string `json:"consensus_points,omitempty"`

	// Dissent lists every position the recommendation does not adopt.
	Dissent []DissentEntry `json:"dissent,omitempty"`

	// NextSteps collects the actionable (imperative-mood) statements found
	// across all perspectives, deduplicated.
	NextSteps []string `json:"next_steps,omitempty"`

	// RevisitTriggers collects the conditions under which the decision
	// should be reopened, extracted from conditional-phrased concerns.
	RevisitTriggers []string `json:"revisit_triggers,omitempty"`
}
