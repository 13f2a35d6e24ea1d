package deliberation

import (
	"strings"

	"github.com/BaSui01/councilflow/internal/textkit"
	"github.com/BaSui01/councilflow/types"
)

// checkVeto scans the veto role's perspective from this round for an
// asserted trigger phrase. Only the designated role can raise a veto,
// and only with its own words; another role quoting a trigger phrase
// changes nothing.
func checkVeto(vetoRole types.RoleID, triggers []string, roundPerspectives []types.Perspective, round int) *types.VetoSignal {
	if vetoRole == "" || len(triggers) == 0 {
		return nil
	}
	for _, p := range roundPerspectives {
		if p.Role != vetoRole {
			continue
		}
		if reason, ok := assertedTrigger(p, triggers); ok {
			return &types.VetoSignal{
				Role:          vetoRole,
				Reason:        reason,
				RaisedInRound: round,
			}
		}
	}
	return nil
}

// assertedTrigger returns the first statement containing a trigger
// phrase, scanning position sentences first, then concerns, then
// reasoning. Matching is case-insensitive substring matching, so the
// statement around the trigger becomes the recorded veto reason.
func assertedTrigger(p types.Perspective, triggers []string) (string, bool) {
	statements := textkit.SplitSentences(p.Position)
	statements = append(statements, p.Concerns...)
	statements = append(statements, p.Reasoning...)

	for _, stmt := range statements {
		low := strings.ToLower(stmt)
		for _, trigger := range triggers {
			if trigger == "" {
				continue
			}
			if strings.Contains(low, strings.ToLower(trigger)) {
				return strings.TrimSpace(stmt), true
			}
		}
	}
	return "", false
}
