package synthesis

import (
	"fmt"
	"strings"

	"github.com/BaSui01/councilflow/internal/textkit"
	"github.com/BaSui01/councilflow/types"
)

// concernReferenceFloor is the fraction of a concern's content tokens
// that must appear in the facilitator's position for the concern to
// count as engaged.
const concernReferenceFloor = 0.5

// affirmationMarkers signal agreement with a named participant. A role
// counts as affirmed only when a marker and the role's name share a
// sentence of the facilitator position.
var affirmationMarkers = []string{
	"agree with", "agrees with",
	"support", "supports",
	"endorse", "endorses",
	"affirm", "affirms",
	"concur with", "concurs with",
	"as argued by", "echo", "echoes",
}

// apply implements the facilitator strategy: the designated role's own
// position becomes the recommendation, provided it engages at least
// one other participant's concern.
func (s Facilitator) apply(ps []types.Perspective) (*types.SynthesisResult, error) {
	var fac *types.Perspective
	var others []types.Perspective
	for i := range ps {
		if ps[i].Role == s.Role && fac == nil {
			fac = &ps[i]
		} else {
			others = append(others, ps[i])
		}
	}
	if fac == nil {
		return nil, types.NewError(types.ErrFacilitatorIncomplete,
			fmt.Sprintf("no perspective from facilitator role %q", s.Role)).WithRole(s.Role)
	}

	referenced := rolesWithReferencedConcern(fac.Position, others)
	if len(referenced) == 0 {
		return nil, types.NewError(types.ErrFacilitatorIncomplete,
			"facilitator position does not engage any other participant's concern").WithRole(s.Role)
	}

	affirmed := affirmedRoles(fac.Position, others)
	confidence := types.ConfidenceMedium
	if len(affirmed) >= 2 {
		confidence = types.ConfidenceHigh
	}

	var dissent []types.DissentEntry
	for _, o := range others {
		if affirmed[o.Role] {
			continue
		}
		entry := types.DissentEntry{
			Role:     o.Role,
			Position: o.Position,
			Weight:   types.DissentNoted,
		}
		if referenced[o.Role] {
			entry.Resolution = "concern addressed in facilitator position"
		}
		dissent = append(dissent, entry)
	}
	sortDissent(dissent)

	return &types.SynthesisResult{
		Recommendation: fac.Position,
		Confidence:     confidence,
		Dissent:        dissent,
	}, nil
}

// rolesWithReferencedConcern returns the roles that stated at least
// one concern whose content tokens are substantially contained in the
// facilitator's position.
func rolesWithReferencedConcern(position string, others []types.Perspective) map[types.RoleID]bool {
	posTokens := textkit.ContentSet(position)
	referenced := make(map[types.RoleID]bool)
	for _, o := range others {
		for _, concern := range o.Concerns {
			tokens := textkit.ContentSet(concern)
			if len(tokens) == 0 {
				continue
			}
			if containment(tokens, posTokens) >= concernReferenceFloor {
				referenced[o.Role] = true
				break
			}
		}
	}
	return referenced
}

// affirmedRoles returns the roles the facilitator's position
// explicitly agrees with: a sentence naming the role while carrying an
// affirmation marker.
func affirmedRoles(position string, others []types.Perspective) map[types.RoleID]bool {
	affirmed := make(map[types.RoleID]bool)
	for _, sentence := range textkit.SplitSentences(position) {
		norm := textkit.NormalizePhrase(sentence)
		marked := false
		for _, marker := range affirmationMarkers {
			if strings.Contains(norm, marker) {
				marked = true
				break
			}
		}
		if !marked {
			continue
		}
		for _, o := range others {
			if name := textkit.NormalizePhrase(string(o.Role)); name != "" && strings.Contains(norm, name) {
				affirmed[o.Role] = true
			}
		}
	}
	return affirmed
}

// containment is the fraction of subset's tokens present in within.
func containment(subset, within map[string]bool) float64 {
	if len(subset) == 0 {
		return 0
	}
	hit := 0
	for tok := range subset {
		if within[tok] {
			hit++
		}
	}
	return float64(hit) / float64(len(subset))
}
