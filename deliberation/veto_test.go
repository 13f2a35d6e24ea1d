package deliberation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/councilflow/types"
)

func TestCheckVeto_RequiresRoleAndTriggers(t *testing.T) {
	t.Parallel()

	ps := []types.Perspective{
		{Role: "security", Position: "I veto this plan.", Confidence: 0.9},
	}

	assert.Nil(t, checkVeto("", types.DefaultVetoTriggers(), ps, 1))
	assert.Nil(t, checkVeto("security", nil, ps, 1))
	assert.Nil(t, checkVeto("security", []string{}, ps, 1))
}

func TestCheckVeto_OnlyTheDesignatedRoleCanVeto(t *testing.T) {
	t.Parallel()

	ps := []types.Perspective{
		{Role: "finance", Position: "I veto the extra spend.", Confidence: 0.8},
		{Role: "security", Position: "No objection here.", Confidence: 0.8},
	}

	assert.Nil(t, checkVeto("security", types.DefaultVetoTriggers(), ps, 1))

	signal := checkVeto("finance", types.DefaultVetoTriggers(), ps, 1)
	require.NotNil(t, signal)
	assert.Equal(t, types.RoleID("finance"), signal.Role)
}

func TestCheckVeto_ReasonIsTheAssertingStatement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		p          types.Perspective
		triggers   []string
		wantReason string
	}{
		{
			name: "trigger sentence from position",
			p: types.Perspective{
				Role:       "security",
				Position:   "The plan is rushed. I veto this rollout. Budget aside, timing is wrong.",
				Confidence: 0.9,
			},
			triggers:   types.DefaultVetoTriggers(),
			wantReason: "I veto this rollout.",
		},
		{
			name: "trigger in a concern",
			p: types.Perspective{
				Role:       "security",
				Position:   "The rollout needs more review.",
				Concerns:   []string{"Unpatched dependencies.", "This is a hard block until the audit lands."},
				Confidence: 0.9,
			},
			triggers:   types.DefaultVetoTriggers(),
			wantReason: "This is a hard block until the audit lands.",
		},
		{
			name: "trigger in reasoning",
			p: types.Perspective{
				Role:       "security",
				Position:   "Pause the rollout.",
				Reasoning:  []string{"Compliance sign-off is pending.", "The residency requirement is non-negotiable."},
				Confidence: 0.9,
			},
			triggers:   types.DefaultVetoTriggers(),
			wantReason: "The residency requirement is non-negotiable.",
		},
		{
			name: "case-insensitive match",
			p: types.Perspective{
				Role:       "security",
				Position:   "VETO. Absolutely not.",
				Confidence: 0.9,
			},
			triggers:   types.DefaultVetoTriggers(),
			wantReason: "VETO.",
		},
		{
			name: "custom trigger phrase",
			p: types.Perspective{
				Role:       "security",
				Position:   "This proposal is dead on arrival for us.",
				Confidence: 0.9,
			},
			triggers:   []string{"dead on arrival"},
			wantReason: "This proposal is dead on arrival for us.",
		},
		{
			name: "position sentence wins over later concern",
			p: types.Perspective{
				Role:       "security",
				Position:   "I must veto the launch window.",
				Concerns:   []string{"Also a veto from the audit side."},
				Confidence: 0.9,
			},
			triggers:   types.DefaultVetoTriggers(),
			wantReason: "I must veto the launch window.",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			signal := checkVeto("security", tt.triggers, []types.Perspective{tt.p}, 2)
			require.NotNil(t, signal)
			assert.Equal(t, types.RoleID("security"), signal.Role)
			assert.Equal(t, tt.wantReason, signal.Reason)
			assert.Equal(t, 2, signal.RaisedInRound)
		})
	}
}

func TestCheckVeto_NoTriggerMeansNoVeto(t *testing.T) {
	t.Parallel()

	ps := []types.Perspective{
		{
			Role:       "security",
			Position:   "Proceed once the pen test passes.",
			Concerns:   []string{"Key rotation cadence."},
			Reasoning:  []string{"The threat model is unchanged."},
			Confidence: 0.85,
		},
	}
	assert.Nil(t, checkVeto("security", types.DefaultVetoTriggers(), ps, 1))
}

func TestCheckVeto_EmptyTriggerStringNeverMatches(t *testing.T) {
	t.Parallel()

	ps := []types.Perspective{
		{Role: "security", Position: "Anything at all.", Confidence: 0.8},
	}
	assert.Nil(t, checkVeto("security", []string{""}, ps, 1))
}

func TestAssertedTrigger_RecordsRoundFromCaller(t *testing.T) {
	t.Parallel()

	ps := []types.Perspective{
		{Role: "security", Position: "I veto this.", Confidence: 0.9},
	}
	for round := 1; round <= 3; round++ {
		signal := checkVeto("security", types.DefaultVetoTriggers(), ps, round)
		require.NotNil(t, signal)
		assert.Equal(t, round, signal.RaisedInRound)
	}
}
