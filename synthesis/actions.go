package synthesis

import (
	"fmt"
	"strings"

	"github.com/BaSui01/councilflow/internal/textkit"
	"github.com/BaSui01/councilflow/types"
)

// imperativeVerbs open an actionable sentence. A position sentence
// starting with one of these reads as a directive rather than an
// opinion and is collected as a next step.
var imperativeVerbs = map[string]bool{
	"add": true, "adopt": true, "align": true, "allocate": true, "audit": true,
	"benchmark": true, "build": true, "cap": true, "confirm": true, "create": true,
	"decide": true, "define": true, "disable": true, "document": true, "draft": true,
	"enable": true, "establish": true, "evaluate": true, "finalize": true,
	"gather": true, "implement": true, "limit": true, "measure": true,
	"migrate": true, "negotiate": true, "pause": true, "pilot": true, "plan": true,
	"prepare": true, "prototype": true, "publish": true, "renegotiate": true,
	"require": true, "review": true, "run": true, "schedule": true, "set": true,
	"ship": true, "start": true, "stop": true, "test": true, "validate": true,
	"verify": true, "write": true,
}

// conditionalLeads open a conditional clause.
var conditionalLeads = map[string]bool{
	"if": true, "when": true, "unless": true, "once": true,
}

// reopenVerbs mark a concern as a reopen condition wherever they
// appear in it.
var reopenVerbs = map[string]bool{
	"revisit": true, "reconsider": true, "reopen": true, "reevaluate": true,
}

// nextSteps collects the actionable sentences from all position
// statements, deduplicated by normalized form, in canonical order of
// first appearance.
func nextSteps(ps []types.Perspective) []string {
	var steps []string
	seen := make(map[string]bool)
	for _, p := range ps {
		for _, sentence := range textkit.SplitSentences(p.Position) {
			if !isImperative(sentence) {
				continue
			}
			norm := textkit.NormalizePhrase(sentence)
			if norm == "" || seen[norm] {
				continue
			}
			seen[norm] = true
			steps = append(steps, strings.TrimLeft(sentence, "-*• \t"))
		}
	}
	return steps
}

func isImperative(sentence string) bool {
	if strings.HasSuffix(strings.TrimSpace(sentence), "?") {
		return false
	}
	toks := textkit.Tokens(sentence)
	return len(toks) > 0 && imperativeVerbs[toks[0]]
}

// revisitTriggers collects the conditional-phrased concerns from all
// perspectives, deduplicated, in canonical order of first appearance.
func revisitTriggers(ps []types.Perspective) []string {
	var triggers []string
	seen := make(map[string]bool)
	for _, p := range ps {
		for _, concern := range p.Concerns {
			if !isConditional(concern) {
				continue
			}
			norm := textkit.NormalizePhrase(concern)
			if norm == "" || seen[norm] {
				continue
			}
			seen[norm] = true
			triggers = append(triggers, strings.TrimSpace(concern))
		}
	}
	return triggers
}

func isConditional(concern string) bool {
	toks := textkit.Tokens(concern)
	if len(toks) == 0 {
		return false
	}
	if conditionalLeads[toks[0]] {
		return true
	}
	for _, tok := range toks {
		if reopenVerbs[tok] {
			return true
		}
	}
	return false
}

// sharedClaims lists every position or reasoning item asserted by at
// least two distinct participants, phrased as shared ground. Claims
// match on normalized form; the first-seen original text is kept for
// display.
func sharedClaims(ps []types.Perspective) []string {
	type claim struct {
		text  string
		roles map[types.RoleID]bool
	}
	var order []string
	claims := make(map[string]*claim)

	add := func(role types.RoleID, text string) {
		norm := textkit.NormalizePhrase(text)
		if norm == "" {
			return
		}
		c := claims[norm]
		if c == nil {
			c = &claim{text: strings.TrimSpace(text), roles: make(map[types.RoleID]bool)}
			claims[norm] = c
			order = append(order, norm)
		}
		c.roles[role] = true
	}

	for _, p := range ps {
		add(p.Role, p.Position)
		for _, r := range p.Reasoning {
			add(p.Role, r)
		}
	}

	var points []string
	for _, norm := range order {
		c := claims[norm]
		if len(c.roles) >= 2 {
			points = append(points, fmt.Sprintf("Shared by %d participants: %s", len(c.roles), c.text))
		}
	}
	return points
}
