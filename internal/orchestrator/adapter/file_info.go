package adapter

import (
	"context"

	"aido/internal/provider/model"
	"aido/internal/tool/file"
)

// FileInfo reports existence, size, hash and leading bytes for a path so
// the model can verify its own writes.
type FileInfo struct{}

// NewFileInfo returns the file_info adapter.
func NewFileInfo() *FileInfo { return &FileInfo{} }

func (t *FileInfo) Name() string { return "file_info" }

func (t *FileInfo) Description() string {
	return "Report existence, size, mode, modification time, SHA-256 and leading bytes of a path as JSON."
}

func (t *FileInfo) Definition() model.ToolDefinition {
	return model.ToolDefinition{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &model.ParameterSchema{
			Type: "object",
			Properties: map[string]model.PropertySchema{
				"path": {
					Type:        "string",
					Description: "Path to inspect.",
				},
				"head_bytes": {
					Type:        "integer",
					Description: "Leading bytes to include in the report (default 16).",
				},
			},
			Required: []string{"path"},
		},
	}
}

type fileInfoArgs struct {
	Path      string `mapstructure:"path"`
	HeadBytes int    `mapstructure:"head_bytes"`
}

func (t *FileInfo) Execute(_ context.Context, args map[string]any) (string, error) {
	var req fileInfoArgs
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}
	return file.Info(req.Path, req.HeadBytes).Text(), nil
}
