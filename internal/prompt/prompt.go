// Package prompt assembles the system message: a runtime context header
// (when, where, and under which resolved limits this invocation runs)
// followed by the base prompt text.
package prompt

import (
	"fmt"
	"os"
	"strings"
	"time"

	"aido/internal/policy"
)

// DefaultBase is the built-in base prompt used when no prompt file exists.
const DefaultBase = `You are aido, a command-line assistant with access to local tools.
Use run_command, write_file, read_file and file_info to inspect and change
the machine when the task calls for it. Prefer small, verifiable steps and
report what you actually did. When you are done, answer in plain text.`

// Load returns the base prompt text, preferring the file at path. A
// missing file falls back to the built-in default; an existing but
// unreadable file is an error.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultBase, nil
		}
		return "", fmt.Errorf("read prompt file: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return DefaultBase, nil
	}
	return text, nil
}

// ContextInfo carries the runtime facts prepended to the base prompt.
type ContextInfo struct {
	Now      time.Time
	WorkDir  string
	Host     string
	OS       string
	Depth    int
	MaxDepth int
	Config   policy.EffectiveConfig
}

// SystemMessage renders the full system message for one invocation.
func SystemMessage(base string, info ContextInfo) string {
	var b strings.Builder
	b.WriteString("Runtime context:\n")
	fmt.Fprintf(&b, "- time: %s\n", info.Now.Format(time.RFC3339))
	fmt.Fprintf(&b, "- working directory: %s\n", info.WorkDir)
	fmt.Fprintf(&b, "- host: %s (%s)\n", info.Host, info.OS)
	fmt.Fprintf(&b, "- recursion depth: %d of max %d\n", info.Depth, info.MaxDepth)
	fmt.Fprintf(&b, "- model: %s, max tokens: %d, tool loops: %d, history: %s\n",
		info.Config.Model, info.Config.MaxTokens, info.Config.ToolLoops, info.Config.History)
	b.WriteString("\n")
	b.WriteString(base)
	return b.String()
}
