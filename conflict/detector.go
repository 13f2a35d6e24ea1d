package conflict

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/councilflow/internal/textkit"
	"github.com/BaSui01/councilflow/types"
)

// subjectOverlapFloor is the minimum content-token similarity two
// positions need before a one-sided negation counts as opposition.
// Below it the texts are about different subjects, not in disagreement.
const subjectOverlapFloor = 0.3

// PairFn assesses one pair of perspectives. It reports whether the pair
// is in tension, the magnitude of the tension in [0,1] and the named
// dimension the pair disagrees about. Implementations must be pure:
// identical inputs yield identical outputs.
type PairFn func(a, b types.Perspective) (magnitude float64, dimension string, ok bool)

// Detector finds disagreement dimensions in a set of perspectives.
// It is stateless between calls and safe for concurrent use once
// constructed.
type Detector struct {
	assess PairFn
	logger *zap.Logger
}

// NewDetector creates a detector with the default keyword-table pair
// heuristic.
func NewDetector(logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		assess: AssessPair,
		logger: logger.With(zap.String("component", "conflict")),
	}
}

// WithPairFn replaces the pair heuristic.
func (d *Detector) WithPairFn(fn PairFn) *Detector {
	if fn != nil {
		d.assess = fn
	}
	return d
}

// Detect compares every pair of perspectives, groups qualifying pairs
// into named dimensions and returns one Conflict per dimension whose
// aggregate magnitude is at least threshold. The input slice is not
// modified. Output order is canonical: magnitude descending, ties by
// dimension name.
func (d *Detector) Detect(perspectives []types.Perspective, threshold float64) []types.Conflict {
	if len(perspectives) < 2 {
		return nil
	}

	ordered := make([]types.Perspective, len(perspectives))
	copy(ordered, perspectives)
	types.SortPerspectives(ordered)

	type dimensionAgg struct {
		total float64
		pairs int
		roles map[types.RoleID]bool
	}
	dims := make(map[string]*dimensionAgg)

	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			magnitude, dimension, ok := d.assess(ordered[i], ordered[j])
			if !ok {
				continue
			}
			agg := dims[dimension]
			if agg == nil {
				agg = &dimensionAgg{roles: make(map[types.RoleID]bool)}
				dims[dimension] = agg
			}
			agg.total += magnitude
			agg.pairs++
			agg.roles[ordered[i].Role] = true
			agg.roles[ordered[j].Role] = true
		}
	}

	names := make([]string, 0, len(dims))
	for name := range dims {
		names = append(names, name)
	}
	sort.Strings(names)

	var conflicts []types.Conflict
	for _, name := range names {
		agg := dims[name]
		magnitude := agg.total / float64(agg.pairs)
		if magnitude < threshold {
			continue
		}
		roles := make([]types.RoleID, 0, len(agg.roles))
		for role := range agg.roles {
			roles = append(roles, role)
		}
		types.SortRoles(roles)
		conflicts = append(conflicts, types.Conflict{
			Dimension:     name,
			InvolvedRoles: roles,
			Magnitude:     magnitude,
			Description:   describeConflict(name, roles),
		})
	}
	types.SortConflicts(conflicts)

	d.logger.Debug("conflict detection complete",
		zap.Int("perspectives", len(ordered)),
		zap.Int("dimensions_assessed", len(dims)),
		zap.Int("conflicts", len(conflicts)),
		zap.Float64("threshold", threshold))

	return conflicts
}

func describeConflict(dimension string, roles []types.RoleID) string {
	parts := make([]string, len(roles))
	for i, role := range roles {
		parts[i] = string(role)
	}
	return fmt.Sprintf("opposing positions on %q between %s", dimension, strings.Join(parts, ", "))
}

// AssessPair is the default PairFn. A pair is in tension when the two
// perspectives share no stated priority and their positions read as
// opposing. Magnitude is (1 - priority token overlap) weighted by the
// average of the two confidences.
func AssessPair(a, b types.Perspective) (float64, string, bool) {
	if sharesPriority(a.Priorities, b.Priorities) {
		return 0, "", false
	}
	opposing, antonymName := opposingPositions(a.Position, b.Position)
	if !opposing {
		return 0, "", false
	}

	overlap := textkit.Jaccard(prioritySet(a.Priorities), prioritySet(b.Priorities))
	magnitude := (1 - overlap) * (a.Confidence + b.Confidence) / 2
	return magnitude, dimensionName(a.Position, b.Position, antonymName), true
}

// sharesPriority reports whether any priority item appears in both
// lists after phrase normalization.
func sharesPriority(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	seen := make(map[string]bool, len(a))
	for _, p := range a {
		if n := textkit.NormalizePhrase(p); n != "" {
			seen[n] = true
		}
	}
	for _, p := range b {
		if seen[textkit.NormalizePhrase(p)] {
			return true
		}
	}
	return false
}

// prioritySet is the union of content tokens across all priority
// phrases. Token-level comparison lets "user experience" and
// "developer experience" register partial overlap even though the
// phrases differ.
func prioritySet(priorities []string) map[string]bool {
	set := make(map[string]bool)
	for _, p := range priorities {
		for tok := range textkit.ContentSet(p) {
			set[tok] = true
		}
	}
	return set
}
