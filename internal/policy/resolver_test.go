package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() *Policy {
	return &Policy{
		Defaults: EffectiveConfig{
			Model:              "llama-3.3-70b-versatile",
			MaxTokens:          800,
			ToolLoops:          5,
			History:            HistoryPersist,
			OverridePermission: OverrideAll,
		},
		Recursion: RecursionPolicy{MaxDepth: 1},
	}
}

func TestResolveDefaultsOnly(t *testing.T) {
	eff := Resolve(testPolicy(), 0, Overrides{})

	assert.Equal(t, "llama-3.3-70b-versatile", eff.Model)
	assert.Equal(t, 800, eff.MaxTokens)
	assert.Equal(t, 5, eff.ToolLoops)
	assert.Equal(t, HistoryPersist, eff.History)
	assert.Equal(t, OverrideAll, eff.OverridePermission)
}

func TestResolveProfileMergesOverDefaults(t *testing.T) {
	pol := testPolicy()
	pol.Profiles = map[int]map[string]any{
		1: {
			"history":    "temp",
			"tool_loops": 3,
		},
	}

	eff := Resolve(pol, 1, Overrides{})

	assert.Equal(t, HistoryTemp, eff.History)
	assert.Equal(t, 3, eff.ToolLoops)
	// Untouched keys keep their default values.
	assert.Equal(t, 800, eff.MaxTokens)
	assert.Equal(t, "llama-3.3-70b-versatile", eff.Model)
}

func TestResolveProfileCoercesWeaklyTypedValues(t *testing.T) {
	pol := testPolicy()
	pol.Profiles = map[int]map[string]any{
		// JSON numbers arrive as float64; strings should coerce too.
		1: {"max_tokens": float64(400), "tool_loops": "2"},
	}

	eff := Resolve(pol, 1, Overrides{})

	assert.Equal(t, 400, eff.MaxTokens)
	assert.Equal(t, 2, eff.ToolLoops)
}

func TestResolveProfileIgnoresUnknownKeys(t *testing.T) {
	pol := testPolicy()
	pol.Profiles = map[int]map[string]any{
		0: {"max_tokens": 100, "frobnicate": true},
	}

	eff := Resolve(pol, 0, Overrides{})
	assert.Equal(t, 100, eff.MaxTokens)
}

func TestResolveNormalizesFloors(t *testing.T) {
	pol := testPolicy()
	pol.Profiles = map[int]map[string]any{
		0: {"max_tokens": -5, "tool_loops": 0, "history": "bogus"},
	}

	eff := Resolve(pol, 0, Overrides{})

	assert.Equal(t, 1, eff.MaxTokens)
	assert.Equal(t, 1, eff.ToolLoops)
	assert.Equal(t, HistoryPersist, eff.History)
}

func TestResolveCapClampsNumericFields(t *testing.T) {
	pol := testPolicy()
	pol.Caps = map[int]Cap{
		1: {MaxTokens: 200, ToolLoops: 2},
	}

	eff := Resolve(pol, 1, Overrides{})

	assert.Equal(t, 200, eff.MaxTokens)
	assert.Equal(t, 2, eff.ToolLoops)
}

func TestResolveCapReplacesDisallowedHistoryWithMostRestrictive(t *testing.T) {
	pol := testPolicy()
	pol.Caps = map[int]Cap{
		1: {History: []HistoryMode{HistoryTemp, HistoryNone}},
	}

	eff := Resolve(pol, 1, Overrides{})

	// persist is disallowed; the most restrictive allowed mode wins.
	assert.Equal(t, HistoryNone, eff.History)
}

func TestResolveCapKeepsAllowedHistory(t *testing.T) {
	pol := testPolicy()
	pol.Caps = map[int]Cap{
		0: {History: []HistoryMode{HistoryPersist, HistoryTemp}},
	}

	eff := Resolve(pol, 0, Overrides{})
	assert.Equal(t, HistoryPersist, eff.History)
}

func TestClampIdempotent(t *testing.T) {
	cap := Cap{MaxTokens: 300, ToolLoops: 2, History: []HistoryMode{HistoryTemp}}
	eff := EffectiveConfig{
		Model:     "m",
		MaxTokens: 800,
		ToolLoops: 5,
		History:   HistoryPersist,
	}

	once := clamp(eff, cap)
	twice := clamp(once, cap)

	assert.Equal(t, once, twice)
}

func TestResolveCapWinsOverOverride(t *testing.T) {
	pol := testPolicy()
	pol.Caps = map[int]Cap{
		0: {MaxTokens: 500},
	}

	eff := Resolve(pol, 0, Overrides{MaxTokens: 4000})

	// Override is applied under "all", then re-clamped to the cap.
	assert.Equal(t, 500, eff.MaxTokens)
}

func TestResolveOverrideAllReplacesFields(t *testing.T) {
	eff := Resolve(testPolicy(), 0, Overrides{
		Model:     "llama-3.1-8b-instant",
		MaxTokens: 1200,
		ToolLoops: 2,
		History:   HistoryTemp,
	})

	assert.Equal(t, "llama-3.1-8b-instant", eff.Model)
	assert.Equal(t, 1200, eff.MaxTokens)
	assert.Equal(t, 2, eff.ToolLoops)
	assert.Equal(t, HistoryTemp, eff.History)
}

func TestResolveOverrideAllIgnoresNonPositiveNumbers(t *testing.T) {
	eff := Resolve(testPolicy(), 0, Overrides{MaxTokens: -1, ToolLoops: 0})

	assert.Equal(t, 800, eff.MaxTokens)
	assert.Equal(t, 5, eff.ToolLoops)
}

func TestResolveOverrideNoneIgnoresEverything(t *testing.T) {
	pol := testPolicy()
	pol.Defaults.OverridePermission = OverrideNone

	base := Resolve(pol, 0, Overrides{})
	overridden := Resolve(pol, 0, Overrides{
		Model:     "other",
		MaxTokens: 10,
		ToolLoops: 1,
		History:   HistoryNone,
	})

	assert.Equal(t, base, overridden)
}

func TestResolveOverrideSafeOnlyTightens(t *testing.T) {
	pol := testPolicy()
	pol.Defaults.OverridePermission = OverrideSafe

	t.Run("smaller budgets accepted", func(t *testing.T) {
		eff := Resolve(pol, 0, Overrides{MaxTokens: 100, ToolLoops: 2})
		assert.Equal(t, 100, eff.MaxTokens)
		assert.Equal(t, 2, eff.ToolLoops)
	})

	t.Run("larger budgets rejected", func(t *testing.T) {
		eff := Resolve(pol, 0, Overrides{MaxTokens: 4000, ToolLoops: 50})
		assert.Equal(t, 800, eff.MaxTokens)
		assert.Equal(t, 5, eff.ToolLoops)
	})

	t.Run("history toward less persistence accepted", func(t *testing.T) {
		eff := Resolve(pol, 0, Overrides{History: HistoryNone})
		assert.Equal(t, HistoryNone, eff.History)
	})

	t.Run("model override ignored", func(t *testing.T) {
		eff := Resolve(pol, 0, Overrides{Model: "other"})
		assert.Equal(t, "llama-3.3-70b-versatile", eff.Model)
	})
}

func TestScenarioToolLoopsFlagAtDepthZero(t *testing.T) {
	// depth=0, policy defaults (tokens=800, loops=5, history=persist,
	// override=all), caller passes --tool-loops 2.
	eff := Resolve(testPolicy(), 0, Overrides{ToolLoops: 2})
	assert.Equal(t, 2, eff.ToolLoops)
}

func TestScenarioSafeRejectsHistoryTowardPersistence(t *testing.T) {
	// depth=1, profile sets history=temp and override=safe; caller asks
	// for persist, which ranks below temp and must be rejected.
	pol := testPolicy()
	pol.Profiles = map[int]map[string]any{
		1: {"history": "temp", "override": "safe"},
	}

	eff := Resolve(pol, 1, Overrides{History: HistoryPersist})

	require.Equal(t, OverrideSafe, eff.OverridePermission)
	assert.Equal(t, HistoryTemp, eff.History)
}

func TestHistoryModeRankOrdering(t *testing.T) {
	assert.Less(t, HistoryPersist.Rank(), HistoryTemp.Rank())
	assert.Less(t, HistoryTemp.Rank(), HistoryNone.Rank())
	assert.Equal(t, -1, HistoryMode("bogus").Rank())
}

func TestDeepMergeNestedMaps(t *testing.T) {
	dst := map[string]any{"a": map[string]any{"x": 1, "y": 2}, "b": 1}
	src := map[string]any{"a": map[string]any{"y": 3}, "c": 4}

	out := deepMerge(dst, src)

	assert.Equal(t, map[string]any{"x": 1, "y": 3}, out["a"])
	assert.Equal(t, 1, out["b"])
	assert.Equal(t, 4, out["c"])
}
