package synthesis

import (
	"github.com/BaSui01/councilflow/types"
)

// significantWeight is the individual weight at or above which a
// non-winning participant's dissent is acknowledged rather than noted.
const significantWeight = 0.25

// apply implements the weighted strategy: each stance group scores the
// sum of its members' effective weights and the highest-scoring group
// carries the recommendation.
func (s Weighted) apply(ps []types.Perspective) (*types.SynthesisResult, error) {
	effective, roles := s.resolveWeights(ps)

	total := 0.0
	for _, role := range roles {
		total += effective[role]
	}

	groups := groupPositions(ps)
	scores := make([]float64, len(groups))
	for i, g := range groups {
		for _, m := range g.members {
			scores[i] += effective[m.Role]
		}
	}

	topIdx := 0
	for i := range scores {
		if scores[i] > scores[topIdx] {
			topIdx = i
		}
	}
	winner, topScore := groups[topIdx], scores[topIdx]

	second := 0.0
	for i := range scores {
		if i != topIdx && scores[i] > second {
			second = scores[i]
		}
	}

	confidence := types.ConfidenceLow
	switch {
	case total > 0 && topScore > total/2:
		confidence = types.ConfidenceHigh
	case topScore-second >= 0.15:
		confidence = types.ConfidenceMedium
	}

	best := winner.members[0]
	for _, m := range winner.members[1:] {
		if effective[m.Role] > effective[best.Role] {
			best = m
		}
	}

	var dissent []types.DissentEntry
	for _, g := range groups {
		if g == winner {
			continue
		}
		for _, m := range g.members {
			weight := types.DissentNoted
			if effective[m.Role] >= significantWeight {
				weight = types.DissentAcknowledged
			}
			dissent = append(dissent, types.DissentEntry{
				Role:     m.Role,
				Position: m.Position,
				Weight:   weight,
			})
		}
	}
	sortDissent(dissent)

	return &types.SynthesisResult{
		Recommendation: best.Position,
		Confidence:     confidence,
		Dissent:        dissent,
	}, nil
}

// resolveWeights computes the effective weight for every role present
// in the perspective set. Configured weights apply as-is; roles
// without an entry split the residual (1 minus the configured total)
// equally. All sums run in sorted role order so repeated calls are
// bit-identical.
func (s Weighted) resolveWeights(ps []types.Perspective) (map[types.RoleID]float64, []types.RoleID) {
	var roles []types.RoleID
	seen := make(map[types.RoleID]bool)
	for _, p := range ps {
		if !seen[p.Role] {
			seen[p.Role] = true
			roles = append(roles, p.Role)
		}
	}

	configured := make([]types.RoleID, 0, len(s.Weights))
	for role := range s.Weights {
		configured = append(configured, role)
	}
	types.SortRoles(configured)

	remainder := 1.0
	for _, role := range configured {
		remainder -= s.Weights[role]
	}
	if remainder < 0 {
		remainder = 0
	}

	unset := 0
	for _, role := range roles {
		if _, ok := s.Weights[role]; !ok {
			unset++
		}
	}
	share := 0.0
	if unset > 0 {
		share = remainder / float64(unset)
	}

	effective := make(map[types.RoleID]float64, len(roles))
	for _, role := range roles {
		if w, ok := s.Weights[role]; ok {
			effective[role] = w
		} else {
			effective[role] = share
		}
	}
	return effective, roles
}
