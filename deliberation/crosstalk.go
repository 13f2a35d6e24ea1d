package deliberation

import (
	"fmt"
	"strings"

	"github.com/BaSui01/councilflow/types"
)

// digest condenses a finished round into the prior-round summary passed
// to providers in the next round: every position, each role's leading
// concern, and the open conflicts. The result is trimmed to the
// cross-talk token budget by dropping whole trailing lines.
//
// Perspectives must already be in canonical order so repeated runs
// produce the same digest.
func (o *Orchestrator) digest(perspectives []types.Perspective, conflicts []types.Conflict) string {
	if len(perspectives) == 0 {
		return ""
	}

	lines := make([]string, 0, 2*len(perspectives)+len(conflicts)+3)
	lines = append(lines, "Prior round positions:")
	for _, p := range perspectives {
		lines = append(lines, fmt.Sprintf("- %s (confidence %.2f): %s", p.Role, p.Confidence, p.Position))
	}

	var concernLines []string
	for _, p := range perspectives {
		if len(p.Concerns) > 0 {
			concernLines = append(concernLines, fmt.Sprintf("- %s: %s", p.Role, p.Concerns[0]))
		}
	}
	if len(concernLines) > 0 {
		lines = append(lines, "Top concerns:")
		lines = append(lines, concernLines...)
	}

	if len(conflicts) > 0 {
		lines = append(lines, "Open conflicts:")
		for _, c := range conflicts {
			lines = append(lines, fmt.Sprintf("- %s (magnitude %.2f): %s", c.Dimension, c.Magnitude, joinRoles(c.InvolvedRoles)))
		}
	}

	return o.trimToBudget(lines)
}

// trimToBudget keeps leading whole lines while they fit the token
// budget. A single oversized line yields an empty digest rather than a
// truncated sentence.
func (o *Orchestrator) trimToBudget(lines []string) string {
	budget := o.cfg.CrosstalkTokenBudget
	var b strings.Builder
	used := 0
	for _, line := range lines {
		n, err := o.counter.Count(line)
		if err != nil {
			n = len(line) / 4
		}
		if used+n > budget {
			break
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		used += n
	}
	return b.String()
}

func joinRoles(roles []types.RoleID) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}
