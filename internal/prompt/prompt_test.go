package prompt

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"aido/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileFallsBackToBuiltin(t *testing.T) {
	text, err := Load(filepath.Join(t.TempDir(), "prompt.md"))

	require.NoError(t, err)
	assert.Equal(t, DefaultBase, text)
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.md")
	require.NoError(t, os.WriteFile(path, []byte("custom prompt\n"), 0o644))

	text, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "custom prompt", text)
}

func TestLoadEmptyFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.md")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))

	text, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, DefaultBase, text)
}

func TestSystemMessageContainsRuntimeContext(t *testing.T) {
	msg := SystemMessage("base prompt", ContextInfo{
		Now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		WorkDir:  "/work",
		Host:     "devbox",
		OS:       "linux",
		Depth:    1,
		MaxDepth: 2,
		Config: policy.EffectiveConfig{
			Model:     "llama-3.3-70b-versatile",
			MaxTokens: 800,
			ToolLoops: 5,
			History:   policy.HistoryTemp,
		},
	})

	assert.Contains(t, msg, "2026-03-01T12:00:00Z")
	assert.Contains(t, msg, "working directory: /work")
	assert.Contains(t, msg, "host: devbox (linux)")
	assert.Contains(t, msg, "recursion depth: 1 of max 2")
	assert.Contains(t, msg, "tool loops: 5")
	assert.Contains(t, msg, "history: temp")
	assert.True(t, len(msg) > len("base prompt"))
	assert.Contains(t, msg, "base prompt")
}
