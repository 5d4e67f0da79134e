package policy

import (
	"github.com/mitchellh/mapstructure"
)

// Resolve computes the effective runtime configuration for one invocation:
// defaults, deep-merged per-depth profile, normalization, cap clamp,
// caller overrides, and a final unconditional re-clamp so caps remain a
// true ceiling regardless of the override outcome.
func Resolve(p *Policy, depth int, ov Overrides) EffectiveConfig {
	if p == nil {
		p = Default()
	}

	eff := p.Defaults
	if profile, ok := p.Profiles[depth]; ok {
		eff = mergeProfile(eff, profile)
	}
	eff = normalize(eff, p.Defaults)

	cap, capped := p.Caps[depth]
	if capped {
		eff = clamp(eff, cap)
	}

	eff = applyOverrides(eff, ov)

	if capped {
		eff = clamp(eff, cap)
	}
	return eff
}

// mergeProfile deep-merges a loosely typed profile fragment over the running
// configuration, profile values winning per-key, then coerces the result
// back into a typed EffectiveConfig. Unknown keys are dropped; values that
// cannot be coerced leave the running configuration untouched.
func mergeProfile(base EffectiveConfig, profile map[string]any) EffectiveConfig {
	merged := deepMerge(configMap(base), profile)

	out := base
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return base
	}
	if err := dec.Decode(merged); err != nil {
		return base
	}
	return out
}

// configMap renders an EffectiveConfig as the loosely typed map form used
// during merging.
func configMap(c EffectiveConfig) map[string]any {
	return map[string]any{
		"model":      c.Model,
		"max_tokens": c.MaxTokens,
		"tool_loops": c.ToolLoops,
		"history":    string(c.History),
		"override":   string(c.OverridePermission),
	}
}

// deepMerge merges src over dst key-wise. Nested maps merge recursively
// rather than replacing wholesale; all other values from src win.
func deepMerge(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := out[k].(map[string]any)
		if srcIsMap && dstIsMap {
			out[k] = deepMerge(dstMap, srcMap)
			continue
		}
		out[k] = v
	}
	return out
}

// normalize coerces every field to its required floor and replaces
// unrecognized enum values with the default (falling back to the most
// durable, least surprising choices when the defaults themselves are bad).
func normalize(eff, defaults EffectiveConfig) EffectiveConfig {
	if eff.MaxTokens < 1 {
		eff.MaxTokens = 1
	}
	if eff.ToolLoops < 1 {
		eff.ToolLoops = 1
	}
	if !eff.History.Valid() {
		if defaults.History.Valid() {
			eff.History = defaults.History
		} else {
			eff.History = HistoryPersist
		}
	}
	if !eff.OverridePermission.Valid() {
		if defaults.OverridePermission.Valid() {
			eff.OverridePermission = defaults.OverridePermission
		} else {
			eff.OverridePermission = OverrideNone
		}
	}
	return eff
}

// clamp applies a hard cap: numeric fields are clamped via minimum, and a
// history mode outside the cap's allowed set is replaced with the most
// restrictive allowed mode (highest rank). Idempotent by construction.
func clamp(eff EffectiveConfig, cap Cap) EffectiveConfig {
	if cap.MaxTokens > 0 && eff.MaxTokens > cap.MaxTokens {
		eff.MaxTokens = cap.MaxTokens
	}
	if cap.ToolLoops > 0 && eff.ToolLoops > cap.ToolLoops {
		eff.ToolLoops = cap.ToolLoops
	}
	if len(cap.History) > 0 && !historyAllowed(cap.History, eff.History) {
		eff.History = mostRestrictive(cap.History)
	}
	return eff
}

func historyAllowed(allowed []HistoryMode, m HistoryMode) bool {
	for _, a := range allowed {
		if a == m {
			return true
		}
	}
	return false
}

func mostRestrictive(allowed []HistoryMode) HistoryMode {
	best := HistoryMode("")
	for _, a := range allowed {
		if !a.Valid() {
			continue
		}
		if best == "" || a.Rank() > best.Rank() {
			best = a
		}
	}
	if best == "" {
		return HistoryNone
	}
	return best
}

// applyOverrides applies caller overrides under the resolved permission
// mode. Numeric overrides must be >0 to be considered at all. Under "safe"
// a numeric override is accepted only when strictly smaller than the
// current value, and a history override only when it does not move toward
// more persistence.
func applyOverrides(eff EffectiveConfig, ov Overrides) EffectiveConfig {
	switch eff.OverridePermission {
	case OverrideNone:
		return eff
	case OverrideAll:
		if ov.Model != "" {
			eff.Model = ov.Model
		}
		if ov.MaxTokens > 0 {
			eff.MaxTokens = ov.MaxTokens
		}
		if ov.ToolLoops > 0 {
			eff.ToolLoops = ov.ToolLoops
		}
		if ov.History.Valid() {
			eff.History = ov.History
		}
	case OverrideSafe:
		if ov.MaxTokens > 0 && ov.MaxTokens < eff.MaxTokens {
			eff.MaxTokens = ov.MaxTokens
		}
		if ov.ToolLoops > 0 && ov.ToolLoops < eff.ToolLoops {
			eff.ToolLoops = ov.ToolLoops
		}
		if ov.History.Valid() && ov.History.Rank() >= eff.History.Rank() {
			eff.History = ov.History
		}
	}
	return eff
}
