package adapter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"aido/internal/recursion"
	"aido/internal/tool/shell"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunCommand(t *testing.T, depth, maxDepth int) *RunCommand {
	t.Helper()
	return NewRunCommand(
		shell.NewExecutor(30*time.Second),
		recursion.NewGuard("/usr/local/bin/aido", maxDepth),
		depth,
	)
}

func TestRunCommandExecutes(t *testing.T) {
	out, err := newRunCommand(t, 0, 2).Execute(context.Background(), map[string]any{
		"command": "echo hello",
	})

	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestRunCommandAtDepthLimitRefusesSelfInvocation(t *testing.T) {
	out, err := newRunCommand(t, 2, 2).Execute(context.Background(), map[string]any{
		"command": "aido do something",
	})

	require.NoError(t, err)
	assert.Contains(t, out, "recursion depth limit reached")
}

func TestRunCommandBadArgsError(t *testing.T) {
	_, err := newRunCommand(t, 0, 2).Execute(context.Background(), map[string]any{
		"command": map[string]any{"not": "a string"},
	})

	assert.Error(t, err)
}

func TestWriteFileDefaultsCreateParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.txt")

	out, err := NewWriteFile().Execute(context.Background(), map[string]any{
		"path":    path,
		"content": "payload",
	})

	require.NoError(t, err)
	assert.Contains(t, out, "wrote 7 bytes")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestWriteFileRespectsOverwriteFalse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	out, err := NewWriteFile().Execute(context.Background(), map[string]any{
		"path":      path,
		"content":   "replacement",
		"overwrite": false,
	})

	require.NoError(t, err)
	assert.Contains(t, out, "error (refused)")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestReadFileReturnsContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("some content"), 0o644))

	out, err := NewReadFile().Execute(context.Background(), map[string]any{
		"path": path,
	})

	require.NoError(t, err)
	assert.Equal(t, "some content", out)
}

func TestReadFileCoercesStringMaxBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 100)), 0o644))

	out, err := NewReadFile().Execute(context.Background(), map[string]any{
		"path":      path,
		"max_bytes": "10",
	})

	require.NoError(t, err)
	assert.Contains(t, out, "[truncated: showing first 10 of 100 bytes]")
}

func TestFileInfoMissingPathIsStructuredNotError(t *testing.T) {
	out, err := NewFileInfo().Execute(context.Background(), map[string]any{
		"path": filepath.Join(t.TempDir(), "absent.txt"),
	})

	require.NoError(t, err)
	assert.Contains(t, out, `"exists": false`)
}

func TestDefinitionsNameRequiredParameters(t *testing.T) {
	tools := []Tool{
		newRunCommand(t, 0, 1),
		NewWriteFile(),
		NewReadFile(),
		NewFileInfo(),
	}

	names := make(map[string]bool)
	for _, tool := range tools {
		def := tool.Definition()
		assert.Equal(t, tool.Name(), def.Name)
		require.NotNil(t, def.Parameters)
		assert.NotEmpty(t, def.Parameters.Required)
		names[tool.Name()] = true
	}
	assert.Len(t, names, 4)
}
