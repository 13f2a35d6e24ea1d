package deliberation

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/BaSui01/councilflow/types"
)

// Engine-level defaults.
const (
	DefaultCallTimeout       = 30 * time.Second
	DefaultProviderRetries   = 1
	DefaultConflictThreshold = 0.6
	DefaultCrosstalkBudget   = 1200
)

// Config tunes an Orchestrator. It is fixed at construction and shared
// by every session the orchestrator runs.
type Config struct {
	// CallTimeout bounds each provider call. Zero means DefaultCallTimeout.
	CallTimeout time.Duration `yaml:"call_timeout"`

	// ProviderRetries is the number of retries after a failed provider
	// call before the round records a gap.
	ProviderRetries int `yaml:"provider_retries"`

	// ConflictThreshold is the minimum magnitude a conflict dimension
	// needs to be reported. Zero means DefaultConflictThreshold.
	ConflictThreshold float64 `yaml:"conflict_threshold"`

	// EarlyTermination lets the round loop exit before maxRounds once a
	// round produces no conflicts above the threshold. Running every
	// round instead is equally correct, just slower.
	EarlyTermination bool `yaml:"early_termination"`

	// MaxParallel caps concurrent provider calls within a round.
	// Zero means one goroutine per roster role.
	MaxParallel int `yaml:"max_parallel"`

	// CrosstalkTokenBudget bounds the prior-round digest passed to
	// providers in rounds after the first. Zero means DefaultCrosstalkBudget.
	CrosstalkTokenBudget int `yaml:"crosstalk_token_budget"`

	// TokenModel selects the token counting model for the cross-talk
	// budget. Empty falls back to a character-ratio estimate.
	TokenModel string `yaml:"token_model"`
}

// DefaultConfig returns the engine defaults: 30s calls with one retry,
// conflict threshold 0.6, early termination on, unbounded fan-out.
func DefaultConfig() *Config {
	return &Config{
		CallTimeout:          DefaultCallTimeout,
		ProviderRetries:      DefaultProviderRetries,
		ConflictThreshold:    DefaultConflictThreshold,
		EarlyTermination:     true,
		CrosstalkTokenBudget: DefaultCrosstalkBudget,
	}
}

// normalize fills zero values whose zero form is unusable and clamps
// nonsense.
func (c *Config) normalize() {
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	if c.ProviderRetries < 0 {
		c.ProviderRetries = 0
	}
	if c.ConflictThreshold <= 0 {
		c.ConflictThreshold = DefaultConflictThreshold
	}
	if c.ConflictThreshold > 1 {
		c.ConflictThreshold = 1
	}
	if c.MaxParallel < 0 {
		c.MaxParallel = 0
	}
	if c.CrosstalkTokenBudget <= 0 {
		c.CrosstalkTokenBudget = DefaultCrosstalkBudget
	}
}

var validate = validator.New()

// validateSessionConfig checks field-level constraints before anything
// runs. Violations map onto the configuration error taxonomy by field,
// so an unknown strategy name is UNKNOWN_STRATEGY while a malformed
// roster cap is INVALID_CONSTRAINT.
func validateSessionConfig(cfg *types.SessionConfig) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return types.NewError(types.ErrInvalidParams, "invalid session config").WithCause(err)
	}
	return mapFieldError(verrs[0])
}

func mapFieldError(fe validator.FieldError) *types.Error {
	switch fe.StructField() {
	case "Topic":
		return types.NewError(types.ErrInvalidParams, "topic is required")
	case "Strategy":
		if fe.Tag() == "oneof" {
			return types.NewError(types.ErrUnknownStrategy,
				fmt.Sprintf("unknown strategy %q", fe.Value()))
		}
		return types.NewError(types.ErrInvalidParams, "strategy is required")
	case "MaxRounds":
		return types.NewError(types.ErrInvalidParams,
			fmt.Sprintf("max rounds %v outside [%d,%d]", fe.Value(), types.MinSessionRounds, types.MaxSessionRounds))
	case "Visibility":
		return types.NewError(types.ErrInvalidParams,
			fmt.Sprintf("unknown visibility %q", fe.Value()))
	case "MaxParticipants":
		return types.NewError(types.ErrInvalidConstraint,
			fmt.Sprintf("max participants %v outside [%d,%d]", fe.Value(), types.MinRosterSize, types.MaxRosterSize))
	case "BalanceStrategy":
		return types.NewError(types.ErrInvalidConstraint,
			fmt.Sprintf("unknown balance strategy %q", fe.Value()))
	default:
		return types.NewError(types.ErrInvalidParams,
			fmt.Sprintf("invalid session config field %s", fe.StructField()))
	}
}
