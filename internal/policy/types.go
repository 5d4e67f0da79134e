package policy

// HistoryMode controls how conversation history is kept across invocations.
type HistoryMode string

const (
	// HistoryPersist appends turns to the durable on-disk log.
	HistoryPersist HistoryMode = "persist"
	// HistoryTemp uses a process-scoped file under the temp directory.
	HistoryTemp HistoryMode = "temp"
	// HistoryNone disables history entirely.
	HistoryNone HistoryMode = "none"
)

// Rank orders modes by decreasing durability: persist < temp < none.
// A higher rank is more restrictive (less persistence).
func (m HistoryMode) Rank() int {
	switch m {
	case HistoryPersist:
		return 0
	case HistoryTemp:
		return 1
	case HistoryNone:
		return 2
	default:
		return -1
	}
}

// Valid reports whether m is one of the three known modes.
func (m HistoryMode) Valid() bool {
	return m.Rank() >= 0
}

// OverridePermission gates how caller-supplied overrides are applied
// during resolution.
type OverridePermission string

const (
	// OverrideAll accepts any supplied override outright.
	OverrideAll OverridePermission = "all"
	// OverrideSafe accepts overrides only when they tighten budgets or
	// move history toward less persistence.
	OverrideSafe OverridePermission = "safe"
	// OverrideNone ignores all overrides.
	OverrideNone OverridePermission = "none"
)

// Valid reports whether p is one of the three known permission modes.
func (p OverridePermission) Valid() bool {
	switch p {
	case OverrideAll, OverrideSafe, OverrideNone:
		return true
	}
	return false
}

// EffectiveConfig is the fully resolved, capped, override-applied set of
// runtime limits for one invocation. It is computed once and never mutated
// afterwards.
type EffectiveConfig struct {
	Model              string             `json:"model" mapstructure:"model"`
	MaxTokens          int                `json:"max_tokens" mapstructure:"max_tokens"`
	ToolLoops          int                `json:"tool_loops" mapstructure:"tool_loops"`
	History            HistoryMode        `json:"history" mapstructure:"history"`
	OverridePermission OverridePermission `json:"override" mapstructure:"override"`
}

// Cap is a hard, non-overridable ceiling on policy fields for a given depth.
// Zero numeric fields and an empty History set mean "no ceiling".
type Cap struct {
	MaxTokens int           `mapstructure:"max_tokens"`
	ToolLoops int           `mapstructure:"tool_loops"`
	History   []HistoryMode `mapstructure:"history"`
}

// RecursionPolicy bounds self-invocation depth.
type RecursionPolicy struct {
	MaxDepth int `mapstructure:"max_depth"`
}

// Policy is the process-wide, read-only policy store: defaults, per-depth
// profile fragments, per-depth hard caps, and the recursion ceiling.
// Profiles stay loosely typed so fragments deep-merge key-wise over the
// defaults before being coerced back into an EffectiveConfig.
type Policy struct {
	Defaults  EffectiveConfig
	Profiles  map[int]map[string]any
	Caps      map[int]Cap
	Recursion RecursionPolicy
}

// Overrides carries caller-supplied configuration overrides. Zero values
// mean "not supplied".
type Overrides struct {
	Model     string
	MaxTokens int
	ToolLoops int
	History   HistoryMode
}

// Default returns the built-in policy used when no policy file exists:
// tokens=800, loops=5, history=persist, override=all, recursion disabled.
func Default() *Policy {
	return &Policy{
		Defaults: EffectiveConfig{
			Model:              "llama-3.3-70b-versatile",
			MaxTokens:          800,
			ToolLoops:          5,
			History:            HistoryPersist,
			OverridePermission: OverrideAll,
		},
		Recursion: RecursionPolicy{MaxDepth: 0},
	}
}
