package synthesis

import (
	"go.uber.org/zap"

	"github.com/BaSui01/councilflow/types"
)

// Engine runs a synthesis strategy over a perspective set and fills in
// the strategy-independent result fields. It is stateless between
// calls and safe for concurrent use.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a synthesis engine.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger.With(zap.String("component", "synthesis"))}
}

// Synthesize aggregates perspectives into a single result using the
// given strategy. The input slice is not modified; perspectives are
// processed in canonical order so identical inputs yield identical
// results. An empty perspective set fails with ErrEmptyInput, a nil
// strategy with ErrUnknownStrategy; strategy-specific failures carry
// their own codes. None of these are retryable.
func (e *Engine) Synthesize(perspectives []types.Perspective, strategy Strategy) (*types.SynthesisResult, error) {
	if strategy == nil {
		return nil, types.NewError(types.ErrUnknownStrategy, "nil synthesis strategy")
	}
	if len(perspectives) == 0 {
		return nil, types.NewError(types.ErrEmptyInput, "no perspectives to synthesize")
	}

	ordered := make([]types.Perspective, len(perspectives))
	copy(ordered, perspectives)
	types.SortPerspectives(ordered)

	result, err := strategy.apply(ordered)
	if err != nil {
		e.logger.Warn("synthesis failed",
			zap.String("strategy", string(strategy.Name())),
			zap.Error(err))
		return nil, err
	}

	result.ConsensusPoints = sharedClaims(ordered)
	result.NextSteps = nextSteps(ordered)
	result.RevisitTriggers = revisitTriggers(ordered)

	e.logger.Debug("synthesis complete",
		zap.String("strategy", string(strategy.Name())),
		zap.String("confidence", string(result.Confidence)),
		zap.Int("dissent", len(result.Dissent)),
		zap.Int("next_steps", len(result.NextSteps)),
		zap.Int("revisit_triggers", len(result.RevisitTriggers)))

	return result, nil
}
