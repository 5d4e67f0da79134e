package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeCallArguments parses the raw JSON argument string from a tool
// call. An empty string means no arguments; anything else must be a
// JSON object.
func decodeCallArguments(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("parse argument object: %w", err)
	}
	return args, nil
}
