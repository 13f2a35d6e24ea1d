package deliberation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"pgregory.net/rapid"

	"github.com/BaSui01/councilflow/internal/tokens"
	"github.com/BaSui01/councilflow/provider"
	"github.com/BaSui01/councilflow/testutil"
	"github.com/BaSui01/councilflow/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	roleArchitecture = types.RoleID("architecture")
	roleFinance      = types.RoleID("finance")
	roleOperations   = types.RoleID("operations")
	roleSecurity     = types.RoleID("security")
)

// agreeingRegistry builds one static provider per role, all answering
// with the same position so that no conflict clears the threshold.
func agreeingRegistry(position string, roles ...types.RoleID) (*provider.Registry, map[types.RoleID]*testutil.ScriptedProvider) {
	providers := make(map[types.RoleID]*testutil.ScriptedProvider, len(roles))
	entries := make(map[types.RoleID]provider.Provider, len(roles))
	for _, role := range roles {
		p := testutil.NewStaticProvider(position, 0.85)
		providers[role] = p
		entries[role] = p
	}
	return testutil.BuildRegistry(entries), providers
}

func drainEvents(obs *Observer) []Event {
	var events []Event
	for {
		select {
		case ev := <-obs.Events():
			events = append(events, ev)
		default:
			return events
		}
	}
}

func countByType(events []Event) map[EventType]int {
	counts := make(map[EventType]int)
	for _, ev := range events {
		counts[ev.Type]++
	}
	return counts
}

func TestRun_TwoRoleSessionCompletes(t *testing.T) {
	t.Parallel()

	position := "Adopt the managed service with quarterly cost reviews."
	sec := testutil.NewStaticProvider(position, 0.9)
	fin := testutil.NewStaticProvider(position, 0.85)
	reg := testutil.BuildRegistry(map[types.RoleID]provider.Provider{
		roleSecurity: sec,
		roleFinance:  fin,
	})

	orch := New(nil, reg)
	res, err := orch.Run(testutil.TestContext(t), types.SessionConfig{
		Topic:     "Adopt a managed Kubernetes service",
		Roster:    []types.RoleID{roleSecurity, roleFinance},
		Strategy:  types.StrategyConsensus,
		MaxRounds: 1,
	})

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, types.StatusCompleted, res.Status)
	assert.Equal(t, 1, res.RoundsRun)
	assert.NotEmpty(t, res.SessionID)
	assert.Nil(t, res.Veto)
	assert.Empty(t, res.Gaps)

	require.Len(t, res.Contributions, 2)
	assert.Equal(t, roleFinance, res.Contributions[0].Role)
	assert.Equal(t, roleSecurity, res.Contributions[1].Role)

	require.NotNil(t, res.Synthesis)
	assert.Equal(t, types.ConfidenceHigh, res.Synthesis.Confidence)
	assert.Empty(t, res.Synthesis.Dissent)
	assert.Contains(t, res.Synthesis.Recommendation, "managed service")

	assert.Equal(t, 1, sec.CallCount())
	assert.Equal(t, 1, fin.CallCount())
	assert.False(t, res.CompletedAt.Before(res.StartedAt))
}

func TestRun_WeightedStrategyFavorsHeavyRole(t *testing.T) {
	t.Parallel()

	arch := testutil.NewStaticProvider("Adopt the managed queue service this quarter.", 0.85)
	fin := testutil.NewStaticProvider("Defer any migration until next fiscal year.", 0.85)
	reg := testutil.BuildRegistry(map[types.RoleID]provider.Provider{
		roleArchitecture: arch,
		roleFinance:      fin,
	})

	orch := New(nil, reg)
	res, err := orch.Run(testutil.TestContext(t), types.SessionConfig{
		Topic:    "Migrate the message queue to a managed service",
		Roster:   []types.RoleID{roleArchitecture, roleFinance},
		Strategy: types.StrategyWeighted,
		StrategyParams: types.StrategyParams{
			Weights: map[types.RoleID]float64{
				roleArchitecture: 0.65,
				roleFinance:      0.35,
			},
		},
		MaxRounds: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, res.Status)

	require.NotNil(t, res.Synthesis)
	assert.Equal(t, types.ConfidenceHigh, res.Synthesis.Confidence)
	assert.Contains(t, res.Synthesis.Recommendation, "managed queue")

	require.Len(t, res.Synthesis.Dissent, 1)
	assert.Equal(t, roleFinance, res.Synthesis.Dissent[0].Role)
	assert.Equal(t, types.DissentAcknowledged, res.Synthesis.Dissent[0].Weight)
}

func TestRun_VetoEndsSessionWithoutSynthesis(t *testing.T) {
	t.Parallel()

	sec := testutil.NewVetoProvider("the data residency exposure is unbounded")
	fin := testutil.NewStaticProvider("Proceed with the rollout.", 0.8)
	arch := testutil.NewStaticProvider("Proceed with the rollout.", 0.8)
	reg := testutil.BuildRegistry(map[types.RoleID]provider.Provider{
		roleSecurity:     sec,
		roleFinance:      fin,
		roleArchitecture: arch,
	})

	orch := New(nil, reg)
	res, err := orch.Run(testutil.TestContext(t), types.SessionConfig{
		Topic:     "Move customer data to a new region",
		Roster:    []types.RoleID{roleArchitecture, roleFinance, roleSecurity},
		Strategy:  types.StrategyConsensus,
		MaxRounds: 3,
		VetoRole:  roleSecurity,
	})

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, types.StatusVetoed, res.Status)
	assert.Equal(t, 1, res.RoundsRun)
	assert.Nil(t, res.Synthesis)

	require.NotNil(t, res.Veto)
	assert.Equal(t, roleSecurity, res.Veto.Role)
	assert.Equal(t, 1, res.Veto.RaisedInRound)
	assert.Contains(t, res.Veto.Reason, "veto")

	assert.Equal(t, 1, sec.CallCount())
	assert.Equal(t, 1, fin.CallCount())
	assert.Len(t, res.Contributions, 3)
}

func TestRun_TriggerFromNonVetoRoleIsIgnored(t *testing.T) {
	t.Parallel()

	fin := testutil.NewStaticProvider("I would veto the spend here if I could.", 0.8)
	sec := testutil.NewStaticProvider("No objection from the threat model.", 0.8)
	reg := testutil.BuildRegistry(map[types.RoleID]provider.Provider{
		roleSecurity: sec,
		roleFinance:  fin,
	})

	orch := New(nil, reg)
	res, err := orch.Run(testutil.TestContext(t), types.SessionConfig{
		Topic:     "Expand the build fleet",
		Roster:    []types.RoleID{roleFinance, roleSecurity},
		Strategy:  types.StrategyConsensus,
		MaxRounds: 1,
		VetoRole:  roleSecurity,
	})

	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, res.Status)
	assert.Nil(t, res.Veto)
	require.NotNil(t, res.Synthesis)
}

func TestRun_SlowProviderBecomesGapAndRoundProceeds(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.CallTimeout = 30 * time.Millisecond
	cfg.ProviderRetries = 0

	position := "Stage the rollout behind a feature flag."
	slow := testutil.NewStaticProvider(position, 0.7).WithDelay(500 * time.Millisecond)
	reg := testutil.BuildRegistry(map[types.RoleID]provider.Provider{
		roleArchitecture: testutil.NewStaticProvider(position, 0.8),
		roleFinance:      slow,
		roleOperations:   testutil.NewStaticProvider(position, 0.8),
		roleSecurity:     testutil.NewStaticProvider(position, 0.8),
	})

	orch := New(cfg, reg)
	res, err := orch.Run(testutil.TestContext(t), types.SessionConfig{
		Topic:     "Roll out the new ingestion pipeline",
		Roster:    []types.RoleID{roleArchitecture, roleFinance, roleOperations, roleSecurity},
		Strategy:  types.StrategyConsensus,
		MaxRounds: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, res.Status)
	assert.Equal(t, 1, res.RoundsRun)
	assert.Len(t, res.Contributions, 3)
	assert.False(t, res.HasRole(roleFinance))
	require.NotNil(t, res.Synthesis)

	require.Len(t, res.Gaps, 1)
	assert.Equal(t, roleFinance, res.Gaps[0].Role)
	assert.Equal(t, 1, res.Gaps[0].Round)
	assert.Contains(t, res.Gaps[0].Reason, "no perspective within")
}

func TestRun_BelowQuorumFailsWithPartialResult(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.ProviderRetries = 0

	reg := testutil.BuildRegistry(map[types.RoleID]provider.Provider{
		roleSecurity: testutil.NewStaticProvider("Proceed.", 0.8),
		roleFinance:  testutil.NewFailingProvider(errors.New("upstream quota exhausted")),
	})

	orch := New(cfg, reg)
	res, err := orch.Run(testutil.TestContext(t), types.SessionConfig{
		Topic:     "Renew the data warehouse contract",
		Roster:    []types.RoleID{roleFinance, roleSecurity},
		Strategy:  types.StrategyConsensus,
		MaxRounds: 1,
	})

	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrQuorumNotMet))
	assert.Contains(t, err.Error(), "quorum")

	require.NotNil(t, res)
	assert.Equal(t, types.StatusFailed, res.Status)
	assert.Nil(t, res.Synthesis)
	assert.Len(t, res.Contributions, 1)
	require.Len(t, res.Gaps, 1)
	assert.Equal(t, roleFinance, res.Gaps[0].Role)
}

func TestRun_FacilitatorGapFailsSynthesisButKeepsRecord(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.ProviderRetries = 0

	reg := testutil.BuildRegistry(map[types.RoleID]provider.Provider{
		roleArchitecture: testutil.NewStaticProvider("Split the rollout into two phases.", 0.8),
		roleFinance:      testutil.NewStaticProvider("Phase two must fit this year's budget.", 0.8),
		roleSecurity:     testutil.NewFailingProvider(errors.New("backend unavailable")),
	})

	orch := New(cfg, reg)
	res, err := orch.Run(testutil.TestContext(t), types.SessionConfig{
		Topic:     "Phase the platform rollout",
		Roster:    []types.RoleID{roleArchitecture, roleFinance, roleSecurity},
		Strategy:  types.StrategyFacilitator,
		MaxRounds: 1,
		StrategyParams: types.StrategyParams{
			FacilitatorRole: roleSecurity,
		},
	})

	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrFacilitatorIncomplete))

	require.NotNil(t, res)
	assert.Equal(t, types.StatusFailed, res.Status)
	assert.Nil(t, res.Synthesis)
	assert.Len(t, res.Contributions, 2)
	require.Len(t, res.Gaps, 1)
	assert.Equal(t, roleSecurity, res.Gaps[0].Role)
}

func TestRun_CancellationMidRound(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tripwire := testutil.NewScriptedProvider().WithInvokeFunc(
		func(c context.Context, req provider.Request) (*types.Perspective, error) {
			cancel()
			<-c.Done()
			return nil, c.Err()
		})
	reg := testutil.BuildRegistry(map[types.RoleID]provider.Provider{
		roleSecurity: testutil.NewStaticProvider("Proceed.", 0.8),
		roleFinance:  tripwire,
	})

	orch := New(nil, reg)
	res, err := orch.Run(ctx, types.SessionConfig{
		Topic:     "Decommission the legacy queue",
		Roster:    []types.RoleID{roleFinance, roleSecurity},
		Strategy:  types.StrategyConsensus,
		MaxRounds: 3,
	})

	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrSessionCancelled))
	assert.ErrorIs(t, err, context.Canceled)

	require.NotNil(t, res)
	assert.Equal(t, types.StatusCancelled, res.Status)
	assert.Equal(t, 1, res.RoundsRun)
	assert.Nil(t, res.Synthesis)
}

func TestRun_PreCancelledContextRunsNoProviders(t *testing.T) {
	t.Parallel()

	sec := testutil.NewStaticProvider("Proceed.", 0.8)
	fin := testutil.NewStaticProvider("Proceed.", 0.8)
	reg := testutil.BuildRegistry(map[types.RoleID]provider.Provider{
		roleSecurity: sec,
		roleFinance:  fin,
	})

	orch := New(nil, reg)
	res, err := orch.Run(testutil.CancelledContext(), types.SessionConfig{
		Topic:    "Anything at all",
		Roster:   []types.RoleID{roleFinance, roleSecurity},
		Strategy: types.StrategyConsensus,
	})

	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrSessionCancelled))
	require.NotNil(t, res)
	assert.Equal(t, types.StatusCancelled, res.Status)
	assert.Equal(t, 0, res.RoundsRun)
	assert.Equal(t, 0, sec.CallCount())
	assert.Equal(t, 0, fin.CallCount())
}

func TestRun_StableAgreementEndsEarly(t *testing.T) {
	t.Parallel()

	reg, providers := agreeingRegistry("Ship it as proposed.",
		roleArchitecture, roleFinance, roleSecurity)

	orch := New(nil, reg)
	res, err := orch.Run(testutil.TestContext(t), types.SessionConfig{
		Topic:     "Enable the new cache tier",
		Roster:    []types.RoleID{roleArchitecture, roleFinance, roleSecurity},
		Strategy:  types.StrategyConsensus,
		MaxRounds: 3,
	})

	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, res.Status)
	assert.Equal(t, 1, res.RoundsRun)
	assert.Empty(t, res.Conflicts)
	for role, p := range providers {
		assert.Equal(t, 1, p.CallCount(), "role %s", role)
	}
}

func TestRun_SecondRoundSeesPriorRoundDigest(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.EarlyTermination = false

	sec := testutil.NewStaticProvider("Harden the perimeter before launch.", 0.85)
	fin := testutil.NewStaticProvider("The budget supports a staged launch.", 0.8)
	reg := testutil.BuildRegistry(map[types.RoleID]provider.Provider{
		roleSecurity: sec,
		roleFinance:  fin,
	})

	orch := New(cfg, reg)
	orch.counter = tokens.NewEstimator()

	res, err := orch.Run(testutil.TestContext(t), types.SessionConfig{
		Topic:     "Launch the partner portal",
		Roster:    []types.RoleID{roleFinance, roleSecurity},
		Strategy:  types.StrategyConsensus,
		MaxRounds: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, res.Status)
	assert.Equal(t, 2, res.RoundsRun)
	assert.Len(t, res.Contributions, 4)

	calls := sec.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, 1, calls[0].Request.Round)
	assert.Empty(t, calls[0].Request.PriorSummary)
	assert.Equal(t, 2, calls[1].Request.Round)
	assert.Contains(t, calls[1].Request.PriorSummary, "Prior round positions:")
	assert.Contains(t, calls[1].Request.PriorSummary, "finance")
	assert.Contains(t, calls[1].Request.PriorSummary, "staged launch")
}

func TestRun_TransientProviderFailureIsRetried(t *testing.T) {
	t.Parallel()

	flaky := testutil.NewStaticProvider("Proceed with monitoring.", 0.8).
		WithFailuresBeforeSuccess(1)
	reg := testutil.BuildRegistry(map[types.RoleID]provider.Provider{
		roleSecurity: testutil.NewStaticProvider("Proceed with monitoring.", 0.8),
		roleFinance:  flaky,
	})

	orch := New(nil, reg)
	res, err := orch.Run(testutil.TestContext(t), types.SessionConfig{
		Topic:     "Enable verbose audit logging",
		Roster:    []types.RoleID{roleFinance, roleSecurity},
		Strategy:  types.StrategyConsensus,
		MaxRounds: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, res.Status)
	assert.Empty(t, res.Gaps)
	assert.Len(t, res.Contributions, 2)
	assert.Equal(t, 2, flaky.CallCount())
}

func TestRun_ConfigErrorsSurfaceBeforeAnyProviderCall(t *testing.T) {
	t.Parallel()

	base := func() types.SessionConfig {
		return types.SessionConfig{
			Topic:    "Choose the primary database",
			Roster:   []types.RoleID{roleFinance, roleSecurity},
			Strategy: types.StrategyConsensus,
		}
	}

	tests := []struct {
		name     string
		mutate   func(*types.SessionConfig)
		wantCode types.ErrorCode
	}{
		{
			name:     "empty topic",
			mutate:   func(c *types.SessionConfig) { c.Topic = "" },
			wantCode: types.ErrInvalidParams,
		},
		{
			name:     "unknown strategy",
			mutate:   func(c *types.SessionConfig) { c.Strategy = "vibes" },
			wantCode: types.ErrUnknownStrategy,
		},
		{
			name:     "max rounds above bound",
			mutate:   func(c *types.SessionConfig) { c.MaxRounds = 7 },
			wantCode: types.ErrInvalidParams,
		},
		{
			name:     "single-role roster",
			mutate:   func(c *types.SessionConfig) { c.Roster = []types.RoleID{roleSecurity} },
			wantCode: types.ErrInsufficientRoster,
		},
		{
			name: "duplicate roster entry",
			mutate: func(c *types.SessionConfig) {
				c.Roster = []types.RoleID{roleSecurity, roleSecurity}
			},
			wantCode: types.ErrInvalidConstraint,
		},
		{
			name: "roster includes excluded role",
			mutate: func(c *types.SessionConfig) {
				c.RosterConfig.Excluded = []types.RoleID{roleFinance}
			},
			wantCode: types.ErrInvalidConstraint,
		},
		{
			name: "roster missing required role",
			mutate: func(c *types.SessionConfig) {
				c.RosterConfig.Required = []types.RoleID{roleArchitecture}
			},
			wantCode: types.ErrInvalidConstraint,
		},
		{
			name: "roster above participant cap",
			mutate: func(c *types.SessionConfig) {
				c.Roster = []types.RoleID{roleArchitecture, roleFinance, roleSecurity}
				c.RosterConfig.MaxParticipants = 2
			},
			wantCode: types.ErrInvalidConstraint,
		},
		{
			name: "role without a provider",
			mutate: func(c *types.SessionConfig) {
				c.Roster = []types.RoleID{roleSecurity, types.RoleID("quality")}
			},
			wantCode: types.ErrInsufficientRoster,
		},
		{
			name:     "weighted strategy without weights",
			mutate:   func(c *types.SessionConfig) { c.Strategy = types.StrategyWeighted },
			wantCode: types.ErrInvalidParams,
		},
		{
			name:     "facilitator strategy without a role",
			mutate:   func(c *types.SessionConfig) { c.Strategy = types.StrategyFacilitator },
			wantCode: types.ErrInvalidParams,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sec := testutil.NewStaticProvider("Proceed.", 0.8)
			fin := testutil.NewStaticProvider("Proceed.", 0.8)
			reg := testutil.BuildRegistry(map[types.RoleID]provider.Provider{
				roleSecurity: sec,
				roleFinance:  fin,
			})

			cfg := base()
			tt.mutate(&cfg)

			res, err := New(nil, reg).Run(testutil.TestContext(t), cfg)

			require.Error(t, err)
			assert.True(t, types.IsCode(err, tt.wantCode),
				"got %v, want code %s", err, tt.wantCode)
			assert.Nil(t, res)
			assert.Equal(t, 0, sec.CallCount())
			assert.Equal(t, 0, fin.CallCount())
		})
	}
}

func TestRun_ObserverSeesWhatVisibilityAllows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		visibility types.Visibility
		want       map[EventType]int
	}{
		{
			name:       "full streams everything",
			visibility: types.VisibilityFull,
			want: map[EventType]int{
				EventSessionStarted:      1,
				EventRoundStarted:        1,
				EventPerspectiveReceived: 2,
				EventRoundCompleted:      1,
				EventSessionCompleted:    1,
			},
		},
		{
			name:       "progress omits perspectives",
			visibility: types.VisibilityProgress,
			want: map[EventType]int{
				EventSessionStarted:   1,
				EventRoundStarted:     1,
				EventRoundCompleted:   1,
				EventSessionCompleted: 1,
			},
		},
		{
			name:       "summary emits only the terminal event",
			visibility: types.VisibilitySummary,
			want: map[EventType]int{
				EventSessionCompleted: 1,
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reg, _ := agreeingRegistry("Proceed as planned.", roleFinance, roleSecurity)
			obs := NewObserver(64)
			defer obs.Close()

			orch := New(nil, reg, WithObserver(obs))
			res, err := orch.Run(testutil.TestContext(t), types.SessionConfig{
				Topic:      "Tune the autoscaler",
				Roster:     []types.RoleID{roleFinance, roleSecurity},
				Strategy:   types.StrategyConsensus,
				MaxRounds:  1,
				Visibility: tt.visibility,
			})
			require.NoError(t, err)

			events := drainEvents(obs)
			assert.Equal(t, tt.want, countByType(events))
			assert.Equal(t, uint64(0), obs.Dropped())

			for _, ev := range events {
				assert.Equal(t, res.SessionID, ev.SessionID)
				assert.False(t, ev.Timestamp.IsZero())
			}
			require.NotEmpty(t, events)
			assert.Equal(t, EventSessionCompleted, events[len(events)-1].Type)
			assert.Equal(t, types.StatusCompleted, events[len(events)-1].Status)
		})
	}
}

func TestRun_MetricsAreRegisteredAndRecorded(t *testing.T) {
	t.Parallel()

	promReg := prometheus.NewRegistry()
	reg, _ := agreeingRegistry("Proceed as planned.", roleFinance, roleSecurity)

	orch := New(nil, reg, WithMetrics("counciltest", promReg))
	_, err := orch.Run(testutil.TestContext(t), types.SessionConfig{
		Topic:     "Consolidate the CI runners",
		Roster:    []types.RoleID{roleFinance, roleSecurity},
		Strategy:  types.StrategyConsensus,
		MaxRounds: 1,
	})
	require.NoError(t, err)

	families, err := promReg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["counciltest_sessions_total"])
	assert.True(t, names["counciltest_provider_calls_total"])
	assert.True(t, names["counciltest_round_duration_seconds"])
}

func TestRun_VetoAndSynthesisAreMutuallyExclusive(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		const maxRounds = 3
		vetoRound := rapid.IntRange(1, maxRounds+1).Draw(rt, "veto_round")
		rosterSize := rapid.IntRange(2, 4).Draw(rt, "roster_size")

		allRoles := []types.RoleID{roleArchitecture, roleFinance, roleOperations, roleSecurity}
		roles := allRoles[:rosterSize]

		entries := make(map[types.RoleID]provider.Provider, len(roles))
		for _, role := range roles {
			p := testutil.NewStaticProvider("No objection to the plan.", 0.8)
			if role == roleSecurity {
				p.WithRound(vetoRound, types.Perspective{
					Position:   "I veto this plan until the audit finishes.",
					Confidence: 0.9,
				})
			}
			entries[role] = p
		}

		cfg := DefaultConfig()
		cfg.EarlyTermination = false
		orch := New(cfg, testutil.BuildRegistry(entries))
		orch.counter = tokens.NewEstimator()

		res, err := orch.Run(context.Background(), types.SessionConfig{
			Topic:     "Migrate the billing service",
			Roster:    roles,
			Strategy:  types.StrategyConsensus,
			MaxRounds: maxRounds,
			VetoRole:  roleSecurity,
		})
		require.NoError(rt, err)
		require.NotNil(rt, res)

		vetoPossible := vetoRound <= maxRounds && res.HasRole(roleSecurity)
		if vetoPossible {
			require.NotNil(rt, res.Veto, "roster %v, veto round %d", roles, vetoRound)
			assert.Nil(rt, res.Synthesis)
			assert.Equal(rt, types.StatusVetoed, res.Status)
			assert.Equal(rt, vetoRound, res.Veto.RaisedInRound)
			assert.Equal(rt, vetoRound, res.RoundsRun)
		} else {
			assert.Nil(rt, res.Veto)
			require.NotNil(rt, res.Synthesis)
			assert.Equal(rt, types.StatusCompleted, res.Status)
			assert.Equal(rt, maxRounds, res.RoundsRun)
		}
	})
}

func TestRun_ProvidersSeeSessionScopeInContext(t *testing.T) {
	t.Parallel()

	type scope struct {
		sessionID string
		round     int
	}
	var seen []scope
	var mu sync.Mutex
	record := func(c context.Context, req provider.Request) (*types.Perspective, error) {
		id, _ := types.SessionID(c)
		round, _ := types.Round(c)
		mu.Lock()
		seen = append(seen, scope{sessionID: id, round: round})
		mu.Unlock()
		return &types.Perspective{Position: "Proceed.", Confidence: 0.8}, nil
	}

	reg := testutil.BuildRegistry(map[types.RoleID]provider.Provider{
		roleSecurity: testutil.NewScriptedProvider().WithInvokeFunc(record),
		roleFinance:  testutil.NewScriptedProvider().WithInvokeFunc(record),
	})

	orch := New(nil, reg)
	res, err := orch.Run(testutil.TestContext(t), types.SessionConfig{
		Topic:     "Pick the queue technology",
		Roster:    []types.RoleID{roleFinance, roleSecurity},
		Strategy:  types.StrategyConsensus,
		MaxRounds: 1,
	})

	require.NoError(t, err)
	require.Len(t, seen, 2)
	for _, s := range seen {
		assert.Equal(t, res.SessionID, s.sessionID)
		assert.Equal(t, 1, s.round)
	}
}

func TestNew_NilConfigAndOptions(t *testing.T) {
	t.Parallel()

	reg, _ := agreeingRegistry("Proceed.", roleFinance, roleSecurity)
	orch := New(nil, reg)

	require.NotNil(t, orch.cfg)
	assert.Equal(t, DefaultCallTimeout, orch.cfg.CallTimeout)
	assert.True(t, orch.cfg.EarlyTermination)
	assert.Nil(t, orch.metrics)
	assert.Nil(t, orch.observer)
	require.NotNil(t, orch.logger)
	require.NotNil(t, orch.chain)
}

func TestNew_CopiesAndNormalizesConfig(t *testing.T) {
	t.Parallel()

	cfg := &Config{CallTimeout: -1 * time.Second, ConflictThreshold: 3}
	reg, _ := agreeingRegistry("Proceed.", roleFinance, roleSecurity)
	orch := New(cfg, reg)

	assert.Equal(t, DefaultCallTimeout, orch.cfg.CallTimeout)
	assert.Equal(t, 1.0, orch.cfg.ConflictThreshold)
	assert.Equal(t, -1*time.Second, cfg.CallTimeout, "caller's config must not be mutated")
}

func TestRun_ConcurrentSessionsDoNotInterfere(t *testing.T) {
	t.Parallel()

	reg, _ := agreeingRegistry("Proceed as planned.",
		roleArchitecture, roleFinance, roleSecurity)
	orch := New(nil, reg)

	const sessions = 8
	type outcome struct {
		res *types.SessionResult
		err error
	}
	results := make(chan outcome, sessions)
	for i := 0; i < sessions; i++ {
		go func(n int) {
			res, err := orch.Run(context.Background(), types.SessionConfig{
				Topic:     fmt.Sprintf("Decision %d", n),
				Roster:    []types.RoleID{roleFinance, roleSecurity},
				Strategy:  types.StrategyConsensus,
				MaxRounds: 1,
			})
			results <- outcome{res: res, err: err}
		}(i)
	}

	ids := make(map[string]bool, sessions)
	for i := 0; i < sessions; i++ {
		out, ok := testutil.WaitForChannel(results, 5*time.Second)
		require.True(t, ok)
		require.NoError(t, out.err)
		assert.Equal(t, types.StatusCompleted, out.res.Status)
		ids[out.res.SessionID] = true
	}
	assert.Len(t, ids, sessions)
}
