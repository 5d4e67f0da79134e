package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"aido/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func persistStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(policy.HistoryPersist, filepath.Join(t.TempDir(), "history.json"))
}

func TestLoadMissingFileYieldsEmptyLog(t *testing.T) {
	s := persistStore(t)

	require.NoError(t, s.Load())
	assert.Zero(t, s.Len())
}

func TestAppendSaveLoadRoundTrip(t *testing.T) {
	s := persistStore(t)
	require.NoError(t, s.Load())

	s.Append("user", "what time is it")
	s.Append("assistant", "tool time")
	require.NoError(t, s.Save())

	reloaded := NewStore(policy.HistoryPersist, s.Path())
	require.NoError(t, reloaded.Load())
	require.Equal(t, 2, reloaded.Len())
	assert.Equal(t, []Entry{
		{Role: "user", Content: "what time is it"},
		{Role: "assistant", Content: "tool time"},
	}, reloaded.Recent(10))
}

func TestSaveWritesHumanReadableJSON(t *testing.T) {
	s := persistStore(t)
	s.Append("user", "hi")
	require.NoError(t, s.Save())

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  {")

	var entries []Entry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 1)
}

func TestRecentReturnsTrailingWindow(t *testing.T) {
	s := persistStore(t)
	for i := 0; i < 15; i++ {
		s.Append("user", fmt.Sprintf("message %d", i))
	}

	recent := s.Recent(ContextWindow)

	require.Len(t, recent, ContextWindow)
	assert.Equal(t, "message 5", recent[0].Content)
	assert.Equal(t, "message 14", recent[len(recent)-1].Content)
}

func TestNoneModeIsInert(t *testing.T) {
	s := NewStore(policy.HistoryNone, filepath.Join(t.TempDir(), "history.json"))

	assert.False(t, s.Enabled())
	require.NoError(t, s.Load())
	s.Append("user", "should vanish")
	require.NoError(t, s.Save())

	assert.Zero(t, s.Len())
	assert.Empty(t, s.Path())
}

func TestTempModeIsPidScoped(t *testing.T) {
	s := NewStore(policy.HistoryTemp, "ignored")

	assert.Contains(t, s.Path(), fmt.Sprintf("aido-history-%d.json", os.Getpid()))
}

func TestLoadCorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	s := NewStore(policy.HistoryPersist, path)

	assert.Error(t, s.Load())
}

func TestClearTruncatesLog(t *testing.T) {
	s := persistStore(t)
	s.Append("user", "hello")
	require.NoError(t, s.Save())

	require.NoError(t, s.Clear())

	reloaded := NewStore(policy.HistoryPersist, s.Path())
	require.NoError(t, reloaded.Load())
	assert.Zero(t, reloaded.Len())
}

func TestClearedLogStaysAnOrderedList(t *testing.T) {
	s := persistStore(t)
	s.Append("user", "hello")
	require.NoError(t, s.Save())

	require.NoError(t, s.Clear())

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	var entries []Entry
	require.NoError(t, json.Unmarshal(data, &entries))
	assert.Empty(t, entries)
}
