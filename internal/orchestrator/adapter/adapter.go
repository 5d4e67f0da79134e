// Package adapter bridges the model-facing tool contract to the local
// tool implementations. Each adapter owns its schema, decodes the raw
// argument object leniently, and renders every outcome as text.
package adapter

import (
	"context"
	"fmt"

	"aido/internal/provider/model"

	"github.com/mitchellh/mapstructure"
)

// Tool is the contract the agent loop dispatches against.
type Tool interface {
	// Name returns the wire name the model invokes the tool by.
	Name() string
	// Description explains the tool to the model.
	Description() string
	// Definition returns the schema advertised to the model.
	Definition() model.ToolDefinition
	// Execute runs the tool with the decoded argument object. The string
	// is the text injected back into the conversation; an error is
	// reserved for argument decoding problems, not tool outcomes.
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// decodeArgs maps the raw argument object onto target, coercing
// friendly mismatches like "200" for an int the same way the policy
// layer does.
func decodeArgs(args map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("build argument decoder: %w", err)
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}
