package synthesis

import (
	"sort"

	"github.com/BaSui01/councilflow/internal/textkit"
	"github.com/BaSui01/councilflow/types"
)

// positionSimilarityFloor is the content-token Jaccard at or above
// which two positions count as the same stance.
const positionSimilarityFloor = 0.5

// positionGroup collects the perspectives that hold one stance. The
// exemplar is the first member in canonical order; its content set
// anchors similarity checks for the whole group.
type positionGroup struct {
	exemplar types.Perspective
	tokens   map[string]bool
	members  []types.Perspective
}

// groupPositions partitions canonically ordered perspectives into
// stance groups. Greedy and order-stable: each perspective joins the
// first existing group whose exemplar it matches, so identical inputs
// always produce identical groups in identical order.
func groupPositions(ps []types.Perspective) []*positionGroup {
	var groups []*positionGroup

	for _, p := range ps {
		tokens := textkit.ContentSet(p.Position)
		joined := false
		for _, g := range groups {
			if textkit.Jaccard(tokens, g.tokens) >= positionSimilarityFloor {
				g.members = append(g.members, p)
				joined = true
				break
			}
		}
		if !joined {
			groups = append(groups, &positionGroup{
				exemplar: p,
				tokens:   tokens,
				members:  []types.Perspective{p},
			})
		}
	}

	return groups
}

// mostConfident returns the group member with the highest confidence,
// keeping the earliest member on ties.
func (g *positionGroup) mostConfident() types.Perspective {
	best := g.members[0]
	for _, m := range g.members[1:] {
		if m.Confidence > best.Confidence {
			best = m
		}
	}
	return best
}

// contains reports whether role is a member of the group.
func (g *positionGroup) contains(role types.RoleID) bool {
	for _, m := range g.members {
		if m.Role == role {
			return true
		}
	}
	return false
}

// largestGroup returns the group with the most members, keeping the
// first-formed group on ties.
func largestGroup(groups []*positionGroup) *positionGroup {
	best := groups[0]
	for _, g := range groups[1:] {
		if len(g.members) > len(best.members) {
			best = g
		}
	}
	return best
}

// sortDissent orders dissent entries canonically by role.
func sortDissent(entries []types.DissentEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Role < entries[j].Role })
}
