package synthesis

import (
	"fmt"

	"github.com/BaSui01/councilflow/types"
)

// weightSumTolerance absorbs float accumulation error when validating
// that configured weights sum to at most 1.
const weightSumTolerance = 1e-9

// Strategy is one of the three synthesis algorithms. The set is
// closed: the unexported apply method keeps implementations inside
// this package.
type Strategy interface {
	Name() types.StrategyName

	// apply fills Recommendation, Confidence and Dissent from a
	// canonically ordered, non-empty perspective set. The engine owns
	// the strategy-independent fields.
	apply(ps []types.Perspective) (*types.SynthesisResult, error)
}

// Consensus groups perspectives by position similarity and recommends
// the majority position.
type Consensus struct{}

// Weighted scores positions by configured role weights. Roles absent
// from Weights share the residual weight equally.
type Weighted struct {
	Weights map[types.RoleID]float64
}

// Facilitator packages the designated role's position as the
// recommendation.
type Facilitator struct {
	Role types.RoleID
}

// FromConfig converts a serializable strategy selection into its
// closed variant. An empty name selects Consensus. Unknown names fail
// with ErrUnknownStrategy; missing or malformed parameters for the
// chosen strategy fail with ErrInvalidParams. Both are configuration
// errors raised before any provider call is made.
func FromConfig(name types.StrategyName, params types.StrategyParams) (Strategy, error) {
	switch name {
	case "", types.StrategyConsensus:
		return Consensus{}, nil

	case types.StrategyWeighted:
		if len(params.Weights) == 0 {
			return nil, types.NewError(types.ErrInvalidParams, "weighted strategy requires weights")
		}
		total := 0.0
		for role, w := range params.Weights {
			if w < 0 || w > 1 {
				return nil, types.NewError(types.ErrInvalidParams,
					fmt.Sprintf("weight %.3f for role %q out of range [0,1]", w, role))
			}
			total += w
		}
		if total > 1+weightSumTolerance {
			return nil, types.NewError(types.ErrInvalidParams,
				fmt.Sprintf("weights sum to %.3f, must not exceed 1", total))
		}
		return Weighted{Weights: params.Weights}, nil

	case types.StrategyFacilitator:
		if params.FacilitatorRole == "" {
			return nil, types.NewError(types.ErrInvalidParams, "facilitator strategy requires a facilitator role")
		}
		return Facilitator{Role: params.FacilitatorRole}, nil

	default:
		return nil, types.NewError(types.ErrUnknownStrategy,
			fmt.Sprintf("unknown synthesis strategy %q", name))
	}
}

// Name implements Strategy.
func (Consensus) Name() types.StrategyName { return types.StrategyConsensus }

// Name implements Strategy.
func (Weighted) Name() types.StrategyName { return types.StrategyWeighted }

// Name implements Strategy.
func (Facilitator) Name() types.StrategyName { return types.StrategyFacilitator }
