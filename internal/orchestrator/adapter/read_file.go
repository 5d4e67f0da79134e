package adapter

import (
	"context"

	"aido/internal/provider/model"
	"aido/internal/tool/file"
)

// ReadFile returns file content, truncated past a byte bound.
type ReadFile struct{}

// NewReadFile returns the read_file adapter.
func NewReadFile() *ReadFile { return &ReadFile{} }

func (t *ReadFile) Name() string { return "read_file" }

func (t *ReadFile) Description() string {
	return "Read a text file and return its content, truncated with a notice when it exceeds max_bytes."
}

func (t *ReadFile) Definition() model.ToolDefinition {
	return model.ToolDefinition{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &model.ParameterSchema{
			Type: "object",
			Properties: map[string]model.PropertySchema{
				"path": {
					Type:        "string",
					Description: "File path to read.",
				},
				"max_bytes": {
					Type:        "integer",
					Description: "Maximum bytes to return (default 200000).",
				},
			},
			Required: []string{"path"},
		},
	}
}

type readFileArgs struct {
	Path     string `mapstructure:"path"`
	MaxBytes int    `mapstructure:"max_bytes"`
}

func (t *ReadFile) Execute(_ context.Context, args map[string]any) (string, error) {
	var req readFileArgs
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}
	return file.Read(req.Path, req.MaxBytes).Text(), nil
}
