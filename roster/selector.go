package roster

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/BaSui01/councilflow/types"
)

// Selector chooses the participant roles for a session. It is stateless
// between calls and safe for concurrent use once constructed.
type Selector struct {
	registry *Registry
	score    ScoreFn
	logger   *zap.Logger
}

// NewSelector creates a selector over the given registry. A nil registry
// uses the built-in role table.
func NewSelector(registry *Registry, logger *zap.Logger) *Selector {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{
		registry: registry,
		score:    KeywordScore,
		logger:   logger.With(zap.String("component", "roster")),
	}
}

// WithScoreFn replaces the scoring heuristic.
func (s *Selector) WithScoreFn(fn ScoreFn) *Selector {
	if fn != nil {
		s.score = fn
	}
	return s
}

type scoredRole struct {
	def      RoleDefinition
	score    float64
	required bool
}

// Select picks the roster for a topic under the given constraints.
//
// Required roles are always included; excluded roles never are. Remaining
// slots fill by descending score with the fixed priority tiebreak. Zero
// scoring roles are only drafted as far as the 2-role quorum floor. The
// result size is within [max(2, len(required)), MaxParticipants].
func (s *Selector) Select(topic, context string, cfg types.RosterConfig) ([]types.RoleID, error) {
	max := cfg.MaxParticipants
	if max == 0 {
		max = types.DefaultRosterSize
	}
	if max < types.MinRosterSize || max > types.MaxRosterSize {
		return nil, types.NewError(types.ErrInvalidConstraint,
			fmt.Sprintf("max participants %d outside [%d,%d]", max, types.MinRosterSize, types.MaxRosterSize))
	}

	excluded := make(map[types.RoleID]bool, len(cfg.Excluded))
	for _, id := range cfg.Excluded {
		excluded[id] = true
	}

	// Required roles: disjoint from excluded, registered, deduplicated.
	chosen := make(map[types.RoleID]bool, len(cfg.Required))
	var required []RoleDefinition
	for _, id := range cfg.Required {
		if excluded[id] {
			return nil, types.NewError(types.ErrInvalidConstraint,
				fmt.Sprintf("role %s is both required and excluded", id))
		}
		if chosen[id] {
			continue
		}
		def, ok := s.registry.Get(id)
		if !ok {
			return nil, types.NewError(types.ErrInvalidConstraint,
				fmt.Sprintf("required role %s is not registered", id))
		}
		chosen[id] = true
		required = append(required, def)
	}
	if len(required) > max {
		return nil, types.NewError(types.ErrInvalidConstraint,
			fmt.Sprintf("%d required roles exceed max participants %d", len(required), max))
	}

	var bias Category
	switch cfg.BalanceStrategy {
	case types.BalanceTechnical:
		bias = CategoryTechnical
	case types.BalanceBusiness:
		bias = CategoryBusiness
	}

	var candidates []scoredRole
	for _, def := range s.registry.List() {
		if excluded[def.ID] || chosen[def.ID] {
			continue
		}
		sc := s.score(topic, context, def)
		if bias != "" && def.Category == bias {
			sc *= categoryBiasFactor
		}
		candidates = append(candidates, scoredRole{def: def, score: sc})
	}
	sortByScore(candidates)

	roster := make([]scoredRole, 0, max)
	for _, def := range required {
		roster = append(roster, scoredRole{
			def:      def,
			score:    s.score(topic, context, def),
			required: true,
		})
	}

	// Fill remaining slots with positively scored roles.
	next := 0
	for len(roster) < max && next < len(candidates) && candidates[next].score > 0 {
		roster = append(roster, candidates[next])
		next++
	}
	// Draft zero-scoring roles only as far as the quorum floor.
	for len(roster) < types.MinRosterSize && next < len(candidates) {
		roster = append(roster, candidates[next])
		next++
	}

	if len(roster) < types.MinRosterSize {
		return nil, types.NewError(types.ErrInsufficientRoster,
			fmt.Sprintf("only %d selectable roles, need at least %d", len(roster), types.MinRosterSize))
	}

	if cfg.BalanceStrategy == types.BalanceBalanced {
		s.rebalance(roster, candidates[next:])
	}

	sort.Slice(roster, func(i, j int) bool {
		if roster[i].def.Priority != roster[j].def.Priority {
			return roster[i].def.Priority < roster[j].def.Priority
		}
		return roster[i].def.ID < roster[j].def.ID
	})

	ids := make([]types.RoleID, len(roster))
	scores := make([]float64, len(roster))
	for i, r := range roster {
		ids[i] = r.def.ID
		scores[i] = r.score
	}
	s.logger.Debug("roster selected",
		zap.String("topic", topic),
		zap.Int("size", len(ids)),
		zap.Strings("roles", roleStrings(ids)),
		zap.Float64s("scores", scores),
	)
	return ids, nil
}

// rebalance swaps the lowest-scoring filled role for the best unchosen role
// of an unrepresented category when the entire roster sits in one category.
// Required roles never leave the roster.
func (s *Selector) rebalance(roster []scoredRole, rest []scoredRole) {
	cats := make(map[Category]bool, 3)
	for _, r := range roster {
		cats[r.def.Category] = true
	}
	if len(cats) != 1 {
		return
	}

	out := -1
	for i, r := range roster {
		if r.required {
			continue
		}
		if out == -1 || swapsOutBefore(r, roster[out]) {
			out = i
		}
	}
	if out == -1 {
		return
	}

	// rest is already sorted by score; the first foreign-category entry is
	// the best swap-in.
	for _, c := range rest {
		if !cats[c.def.Category] {
			s.logger.Debug("rebalanced roster",
				zap.String("out", string(roster[out].def.ID)),
				zap.String("in", string(c.def.ID)),
			)
			roster[out] = c
			return
		}
	}
}

// swapsOutBefore orders swap-out candidates: lowest score leaves first, ties
// broken by weakest priority, then reverse role ID.
func swapsOutBefore(a, b scoredRole) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	if a.def.Priority != b.def.Priority {
		return a.def.Priority > b.def.Priority
	}
	return a.def.ID > b.def.ID
}

func sortByScore(cs []scoredRole) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].score != cs[j].score {
			return cs[i].score > cs[j].score
		}
		if cs[i].def.Priority != cs[j].def.Priority {
			return cs[i].def.Priority < cs[j].def.Priority
		}
		return cs[i].def.ID < cs[j].def.ID
	})
}

func roleStrings(ids []types.RoleID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
