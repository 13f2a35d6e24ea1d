package synthesis

import (
	"github.com/BaSui01/councilflow/types"
)

// apply implements the consensus strategy: the largest stance group
// carries the recommendation, everyone outside it dissents with
// advisory weight.
func (Consensus) apply(ps []types.Perspective) (*types.SynthesisResult, error) {
	groups := groupPositions(ps)
	majority := largestGroup(groups)

	confidence := types.ConfidenceLow
	switch {
	case len(majority.members) == len(ps):
		confidence = types.ConfidenceHigh
	case len(majority.members)*2 > len(ps):
		confidence = types.ConfidenceMedium
	}

	var dissent []types.DissentEntry
	for _, g := range groups {
		if g == majority {
			continue
		}
		for _, m := range g.members {
			dissent = append(dissent, types.DissentEntry{
				Role:     m.Role,
				Position: m.Position,
				Weight:   types.DissentAdvisory,
			})
		}
	}
	sortDissent(dissent)

	return &types.SynthesisResult{
		Recommendation: majority.mostConfident().Position,
		Confidence:     confidence,
		Dissent:        dissent,
	}, nil
}
