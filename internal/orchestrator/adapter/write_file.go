package adapter

import (
	"context"

	"aido/internal/provider/model"
	"aido/internal/tool/file"
)

// WriteFile writes content to a path atomically. Parent creation and
// overwriting default to enabled; the model opts out explicitly.
type WriteFile struct{}

// NewWriteFile returns the write_file adapter.
func NewWriteFile() *WriteFile { return &WriteFile{} }

func (t *WriteFile) Name() string { return "write_file" }

func (t *WriteFile) Description() string {
	return "Write text content to a file, creating parent directories and overwriting unless disabled."
}

func (t *WriteFile) Definition() model.ToolDefinition {
	return model.ToolDefinition{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &model.ParameterSchema{
			Type: "object",
			Properties: map[string]model.PropertySchema{
				"path": {
					Type:        "string",
					Description: "Destination file path.",
				},
				"content": {
					Type:        "string",
					Description: "Full text content to write.",
				},
				"mkdirp": {
					Type:        "boolean",
					Description: "Create missing parent directories (default true).",
				},
				"overwrite": {
					Type:        "boolean",
					Description: "Replace an existing file (default true).",
				},
			},
			Required: []string{"path", "content"},
		},
	}
}

type writeFileArgs struct {
	Path      string `mapstructure:"path"`
	Content   string `mapstructure:"content"`
	Mkdirp    *bool  `mapstructure:"mkdirp"`
	Overwrite *bool  `mapstructure:"overwrite"`
}

func (t *WriteFile) Execute(_ context.Context, args map[string]any) (string, error) {
	var req writeFileArgs
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}
	result := file.Write(file.WriteRequest{
		Path:      req.Path,
		Content:   req.Content,
		MkdirAll:  boolOr(req.Mkdirp, true),
		Overwrite: boolOr(req.Overwrite, true),
	})
	return result.Text(), nil
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
